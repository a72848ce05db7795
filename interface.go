package tspoet

import (
	"slices"

	"github.com/cockroachdb/errors"
)

// InterfaceSpec is an interface declaration.
type InterfaceSpec struct {
	name            string
	doc             CodeBlock
	modifiers       []Modifier
	typeVariables   []*TypeVariable
	superInterfaces []TypeName
	properties      []*PropertySpec
	functions       []*FunctionSpec
	indexables      []*FunctionSpec
	callable        *FunctionSpec
	tags            Tags
}

func (s *InterfaceSpec) Name() string                   { return s.name }
func (s *InterfaceSpec) Doc() CodeBlock                 { return s.doc }
func (s *InterfaceSpec) Modifiers() []Modifier          { return slices.Clone(s.modifiers) }
func (s *InterfaceSpec) TypeVariables() []*TypeVariable { return slices.Clone(s.typeVariables) }
func (s *InterfaceSpec) SuperInterfaces() []TypeName    { return slices.Clone(s.superInterfaces) }
func (s *InterfaceSpec) Properties() []*PropertySpec    { return slices.Clone(s.properties) }
func (s *InterfaceSpec) Functions() []*FunctionSpec     { return slices.Clone(s.functions) }
func (s *InterfaceSpec) Indexables() []*FunctionSpec    { return slices.Clone(s.indexables) }

// Callable returns the call signature, or nil.
func (s *InterfaceSpec) Callable() *FunctionSpec { return s.callable }

func (s *InterfaceSpec) Tags() Tags { return s.tags.clone() }

// ToBuilder returns a builder seeded with every field of s.
func (s *InterfaceSpec) ToBuilder() *InterfaceBuilder {
	return &InterfaceBuilder{
		Name:            s.name,
		Doc:             s.doc,
		Modifiers:       slices.Clone(s.modifiers),
		TypeVariables:   slices.Clone(s.typeVariables),
		SuperInterfaces: slices.Clone(s.superInterfaces),
		Properties:      slices.Clone(s.properties),
		Functions:       slices.Clone(s.functions),
		Indexables:      slices.Clone(s.indexables),
		CallSignature:   s.callable,
		Tags:            s.tags.clone(),
	}
}

// Emit writes the interface followed by a blank line. Every member is
// preceded by a blank line, and a non-empty body ends with one.
func (s *InterfaceSpec) Emit(w *CodeWriter) error {
	if err := s.emit(w); err != nil {
		return errors.Wrapf(err, "interface %s", s.name)
	}
	return nil
}

func (s *InterfaceSpec) emit(w *CodeWriter) error {
	if err := w.emitDoc(s.doc); err != nil {
		return err
	}
	w.emitModifiers(s.modifiers)
	w.emitText("interface " + s.name)
	if err := w.emitTypeVariables(s.typeVariables); err != nil {
		return err
	}
	if len(s.superInterfaces) > 0 {
		supers := make([]CodeBlock, len(s.superInterfaces))
		for i, t := range s.superInterfaces {
			supers[i] = CodeBlockOf("%T", t)
		}
		if err := w.EmitCode(JoinCodeWith(supers, ", ", " extends ", "")); err != nil {
			return err
		}
	}
	w.emitText(" {\n")
	w.Indent()

	members := 0
	for _, p := range s.properties {
		w.emitText("\n")
		if err := p.emit(w, p.modifiers, []Modifier{Public}, true); err != nil {
			return err
		}
		members++
	}
	var callable []*FunctionSpec
	if s.callable != nil {
		callable = []*FunctionSpec{s.callable}
	}
	for _, f := range slices.Concat(callable, s.indexables, s.functions) {
		w.emitText("\n")
		if err := f.emit(w, []Modifier{Public, Abstract}, true, false); err != nil {
			return err
		}
		members++
	}

	if err := w.Unindent(); err != nil {
		return err
	}
	if members > 0 {
		w.emitText("\n")
	}
	w.emitText("}\n\n")
	return nil
}

// InterfaceBuilder accumulates an InterfaceSpec.
type InterfaceBuilder struct {
	Name            string
	Doc             CodeBlock
	Modifiers       []Modifier
	TypeVariables   []*TypeVariable
	SuperInterfaces []TypeName
	Properties      []*PropertySpec
	Functions       []*FunctionSpec
	Indexables      []*FunctionSpec
	CallSignature   *FunctionSpec
	Tags            Tags

	errs builderErrors
}

// Interface starts an interface declaration.
func Interface(name string) *InterfaceBuilder {
	return &InterfaceBuilder{Name: name, Tags: Tags{}}
}

// AddDoc appends to the doc comment.
func (b *InterfaceBuilder) AddDoc(format string, args ...any) *InterfaceBuilder {
	b.Doc = b.Doc.ToBuilder().Add(format, args...).Build()
	return b
}

// AddModifiers adds modifiers; duplicates are ignored.
func (b *InterfaceBuilder) AddModifiers(mods ...Modifier) *InterfaceBuilder {
	b.Modifiers = addModifiers(b.Modifiers, mods...)
	return b
}

// AddTypeVariable appends a type parameter.
func (b *InterfaceBuilder) AddTypeVariable(tv *TypeVariable) *InterfaceBuilder {
	b.TypeVariables = append(b.TypeVariables, tv)
	return b
}

// AddSuperInterface appends to the extends list.
func (b *InterfaceBuilder) AddSuperInterface(t TypeName) *InterfaceBuilder {
	b.SuperInterfaces = append(b.SuperInterfaces, t)
	return b
}

// AddProperty appends a property with the given modifiers.
func (b *InterfaceBuilder) AddProperty(name string, typ TypeName, optional bool, mods ...Modifier) *InterfaceBuilder {
	p, err := Property(name, typ, mods...).SetOptional(optional).Build()
	if err != nil {
		b.errs.fail(err)
		return b
	}
	return b.AddPropertySpec(p)
}

// AddPropertySpec appends a built property. Property names must be unique.
func (b *InterfaceBuilder) AddPropertySpec(p *PropertySpec) *InterfaceBuilder {
	if p != nil && slices.ContainsFunc(b.Properties, func(q *PropertySpec) bool { return q.name == p.name }) {
		b.errs.failf("duplicate property %s", p.name)
		return b
	}
	b.Properties = append(b.Properties, p)
	return b
}

// AddFunction appends a method signature.
func (b *InterfaceBuilder) AddFunction(f *FunctionSpec) *InterfaceBuilder {
	if f != nil && f.kind != FunctionNamed {
		b.errs.failf("%s is not a method; use AddIndexable or Callable", f.name)
		return b
	}
	b.Functions = append(b.Functions, f)
	return b
}

// AddIndexable appends an index signature.
func (b *InterfaceBuilder) AddIndexable(f *FunctionSpec) *InterfaceBuilder {
	if f != nil && f.kind != FunctionIndexable {
		b.errs.failf("%s is not an index signature", f.name)
		return b
	}
	b.Indexables = append(b.Indexables, f)
	return b
}

// Callable sets the call signature. An interface has at most one.
func (b *InterfaceBuilder) Callable(f *FunctionSpec) *InterfaceBuilder {
	if f != nil && f.kind != FunctionCallable {
		b.errs.failf("%s is not a call signature", f.name)
		return b
	}
	if b.CallSignature != nil {
		b.errs.failf("interface already has a call signature")
		return b
	}
	b.CallSignature = f
	return b
}

// Tag stores value under key, replacing any earlier value.
func (b *InterfaceBuilder) Tag(key TagKey, value any) *InterfaceBuilder {
	if b.Tags == nil {
		b.Tags = Tags{}
	}
	b.Tags[key] = value
	return b
}

// Build validates and returns the interface.
func (b *InterfaceBuilder) Build() (*InterfaceSpec, error) {
	if err := b.validate(); err != nil {
		return nil, errors.Wrapf(err, "interface %s", b.Name)
	}
	return &InterfaceSpec{
		name:            b.Name,
		doc:             b.Doc,
		modifiers:       addModifiers(nil, b.Modifiers...),
		typeVariables:   slices.Clone(b.TypeVariables),
		superInterfaces: slices.Clone(b.SuperInterfaces),
		properties:      slices.Clone(b.Properties),
		functions:       slices.Clone(b.Functions),
		indexables:      slices.Clone(b.Indexables),
		callable:        b.CallSignature,
		tags:            b.Tags.clone(),
	}, nil
}

func (b *InterfaceBuilder) validate() error {
	if b.errs.err != nil {
		return b.errs.err
	}
	if err := checkDeclarationName("interface", b.Name); err != nil {
		return err
	}
	if err := b.Doc.Err(); err != nil {
		return errors.Wrap(err, "doc")
	}
	if slices.Contains(b.TypeVariables, nil) || slices.Contains(b.SuperInterfaces, nil) {
		return builderErrorf("nil type")
	}
	seen := make(map[string]bool, len(b.Properties))
	for _, p := range b.Properties {
		if p == nil {
			return builderErrorf("nil property")
		}
		if seen[p.name] {
			return builderErrorf("duplicate property %s", p.name)
		}
		seen[p.name] = true
	}
	if slices.Contains(b.Functions, nil) || slices.Contains(b.Indexables, nil) {
		return builderErrorf("nil function")
	}
	return nil
}

// MustBuild is like Build but panics on error.
func (b *InterfaceBuilder) MustBuild() *InterfaceSpec {
	return must(b.Build())
}
