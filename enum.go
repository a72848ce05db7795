package tspoet

import (
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/elliotchance/orderedmap/v3"
)

// EnumSpec is an enum declaration. Constants keep declaration order.
type EnumSpec struct {
	name      string
	doc       CodeBlock
	modifiers []Modifier
	constants *orderedmap.OrderedMap[string, CodeBlock]
	tags      Tags
}

func (s *EnumSpec) Name() string          { return s.name }
func (s *EnumSpec) Doc() CodeBlock        { return s.doc }
func (s *EnumSpec) Modifiers() []Modifier { return slices.Clone(s.modifiers) }
func (s *EnumSpec) Tags() Tags            { return s.tags.clone() }

// ConstantNames returns the constant names in declaration order.
func (s *EnumSpec) ConstantNames() []string {
	return slices.Collect(s.constants.Keys())
}

// Constant returns the initializer of the named constant. The block is
// empty for constants without one.
func (s *EnumSpec) Constant(name string) (CodeBlock, bool) {
	return s.constants.Get(name)
}

// ToBuilder returns a builder seeded with every field of s.
func (s *EnumSpec) ToBuilder() *EnumBuilder {
	return &EnumBuilder{
		Name:      s.name,
		Doc:       s.doc,
		Modifiers: slices.Clone(s.modifiers),
		Constants: s.constants.Copy(),
		Tags:      s.tags.clone(),
	}
}

// Emit writes the enum followed by a blank line. Constants are not
// separated by blank lines.
func (s *EnumSpec) Emit(w *CodeWriter) error {
	if err := s.emit(w); err != nil {
		return errors.Wrapf(err, "enum %s", s.name)
	}
	return nil
}

func (s *EnumSpec) emit(w *CodeWriter) error {
	if err := w.emitDoc(s.doc); err != nil {
		return err
	}
	w.emitModifiers(s.modifiers)
	w.emitText("enum " + s.name + " {\n")
	w.Indent()
	i := 0
	for name, init := range s.constants.AllFromFront() {
		if i > 0 {
			w.emitText(",\n")
		}
		i++
		if needsQuoting(name) {
			if err := w.Emit("%S", name); err != nil {
				return err
			}
		} else {
			w.emitText(name)
		}
		if !init.IsEmpty() {
			w.emitText(" = ")
			if err := w.EmitCode(init); err != nil {
				return errors.Wrapf(err, "constant %s", name)
			}
		}
	}
	if i > 0 {
		w.emitText("\n")
	}
	if err := w.Unindent(); err != nil {
		return err
	}
	w.emitText("}\n\n")
	return nil
}

// EnumBuilder accumulates an EnumSpec.
type EnumBuilder struct {
	Name      string
	Doc       CodeBlock
	Modifiers []Modifier
	Constants *orderedmap.OrderedMap[string, CodeBlock]
	Tags      Tags

	errs builderErrors
}

// Enum starts an enum declaration.
func Enum(name string) *EnumBuilder {
	return &EnumBuilder{
		Name:      name,
		Constants: orderedmap.NewOrderedMap[string, CodeBlock](),
		Tags:      Tags{},
	}
}

// AddDoc appends to the doc comment.
func (b *EnumBuilder) AddDoc(format string, args ...any) *EnumBuilder {
	b.Doc = b.Doc.ToBuilder().Add(format, args...).Build()
	return b
}

// AddModifiers adds modifiers; duplicates are ignored. Const makes a
// `const enum`.
func (b *EnumBuilder) AddModifiers(mods ...Modifier) *EnumBuilder {
	b.Modifiers = addModifiers(b.Modifiers, mods...)
	return b
}

// AddConstant appends a constant. An empty format declares it without an
// initializer: AddConstant("A", "10"), AddConstant("Red", "%S", "red").
func (b *EnumBuilder) AddConstant(name, format string, args ...any) *EnumBuilder {
	var init CodeBlock
	if format != "" {
		init = CodeBlockOf(format, args...)
	}
	return b.AddConstantCode(name, init)
}

// AddConstantCode appends a constant with an initializer block. Constant
// names must be unique.
func (b *EnumBuilder) AddConstantCode(name string, init CodeBlock) *EnumBuilder {
	if b.Constants == nil {
		b.Constants = orderedmap.NewOrderedMap[string, CodeBlock]()
	}
	if b.Constants.Has(name) {
		b.errs.failf("duplicate constant %s", name)
		return b
	}
	b.Constants.Set(name, init)
	return b
}

// Tag stores value under key, replacing any earlier value.
func (b *EnumBuilder) Tag(key TagKey, value any) *EnumBuilder {
	if b.Tags == nil {
		b.Tags = Tags{}
	}
	b.Tags[key] = value
	return b
}

// Build validates and returns the enum.
func (b *EnumBuilder) Build() (*EnumSpec, error) {
	if err := b.validate(); err != nil {
		return nil, errors.Wrapf(err, "enum %s", b.Name)
	}
	constants := orderedmap.NewOrderedMap[string, CodeBlock]()
	if b.Constants != nil {
		constants = b.Constants.Copy()
	}
	return &EnumSpec{
		name:      b.Name,
		doc:       b.Doc,
		modifiers: addModifiers(nil, b.Modifiers...),
		constants: constants,
		tags:      b.Tags.clone(),
	}, nil
}

func (b *EnumBuilder) validate() error {
	if b.errs.err != nil {
		return b.errs.err
	}
	if err := checkDeclarationName("enum", b.Name); err != nil {
		return err
	}
	if err := b.Doc.Err(); err != nil {
		return errors.Wrap(err, "doc")
	}
	if b.Constants == nil {
		return nil
	}
	for name, init := range b.Constants.AllFromFront() {
		if name == "" {
			return builderErrorf("constant has no name")
		}
		if err := init.Err(); err != nil {
			return errors.Wrapf(err, "constant %s", name)
		}
	}
	return nil
}

// MustBuild is like Build but panics on error.
func (b *EnumBuilder) MustBuild() *EnumSpec {
	return must(b.Build())
}
