package tspoet

import (
	"slices"

	"github.com/cockroachdb/errors"
)

// PropertySpec is an interface or class property, or a top-level variable.
type PropertySpec struct {
	name        string
	typ         TypeName
	optional    bool
	doc         CodeBlock
	decorators  []*DecoratorSpec
	modifiers   []Modifier
	initializer CodeBlock
	tags        Tags
}

func (p *PropertySpec) Name() string                 { return p.name }
func (p *PropertySpec) Type() TypeName               { return p.typ }
func (p *PropertySpec) Optional() bool               { return p.optional }
func (p *PropertySpec) Doc() CodeBlock               { return p.doc }
func (p *PropertySpec) Decorators() []*DecoratorSpec { return slices.Clone(p.decorators) }
func (p *PropertySpec) Modifiers() []Modifier        { return slices.Clone(p.modifiers) }
func (p *PropertySpec) Initializer() CodeBlock       { return p.initializer }
func (p *PropertySpec) Tags() Tags                   { return p.tags.clone() }

// ToBuilder returns a builder seeded with every field of p.
func (p *PropertySpec) ToBuilder() *PropertyBuilder {
	return &PropertyBuilder{
		Name:        p.name,
		Type:        p.typ,
		Optional:    p.optional,
		Doc:         p.doc,
		Decorators:  slices.Clone(p.decorators),
		Modifiers:   slices.Clone(p.modifiers),
		Initializer: p.initializer,
		Tags:        p.tags.clone(),
	}
}

// Emit writes p as a top-level variable statement followed by a blank line.
// Without an explicit const, let or var the statement is declared with let.
func (p *PropertySpec) Emit(w *CodeWriter) error {
	mods := p.modifiers
	if !slices.ContainsFunc(mods, func(m Modifier) bool { return m == Const || m == Let || m == Var }) {
		mods = append(slices.Clone(mods), Let)
	}
	if err := p.emit(w, mods, nil, true); err != nil {
		return err
	}
	w.emitText("\n")
	return nil
}

// emit writes the property as a member. implicit modifiers are omitted.
func (p *PropertySpec) emit(w *CodeWriter, mods, implicit []Modifier, asStatement bool) error {
	if err := p.emitParts(w, mods, implicit, asStatement); err != nil {
		return errors.Wrapf(err, "property %s", p.name)
	}
	return nil
}

func (p *PropertySpec) emitParts(w *CodeWriter, mods, implicit []Modifier, asStatement bool) error {
	if err := w.emitDoc(p.doc); err != nil {
		return err
	}
	if err := w.emitDecorators(p.decorators, false); err != nil {
		return err
	}
	w.emitModifiers(mods, implicit...)
	if needsQuoting(p.name) {
		if err := w.Emit("%S", p.name); err != nil {
			return err
		}
	} else {
		w.emitText(p.name)
	}
	if p.optional {
		w.emitText("?")
	}
	if p.typ != nil {
		if err := w.Emit(": %T", p.typ); err != nil {
			return err
		}
	}
	if !p.initializer.IsEmpty() {
		w.emitText(" = ")
		if err := w.EmitCode(p.initializer); err != nil {
			return errors.Wrap(err, "initializer")
		}
	}
	if asStatement {
		w.emitText(";\n")
	}
	return nil
}

// PropertyBuilder accumulates a PropertySpec.
type PropertyBuilder struct {
	Name        string
	Type        TypeName
	Optional    bool
	Doc         CodeBlock
	Decorators  []*DecoratorSpec
	Modifiers   []Modifier
	Initializer CodeBlock
	Tags        Tags
}

// Property starts a property. A nil type omits the annotation.
func Property(name string, typ TypeName, mods ...Modifier) *PropertyBuilder {
	return &PropertyBuilder{Name: name, Type: typ, Modifiers: addModifiers(nil, mods...), Tags: Tags{}}
}

// AddDoc appends to the doc comment.
func (b *PropertyBuilder) AddDoc(format string, args ...any) *PropertyBuilder {
	b.Doc = b.Doc.ToBuilder().Add(format, args...).Build()
	return b
}

// AddModifiers adds modifiers; duplicates are ignored.
func (b *PropertyBuilder) AddModifiers(mods ...Modifier) *PropertyBuilder {
	b.Modifiers = addModifiers(b.Modifiers, mods...)
	return b
}

// AddDecorator appends a decorator.
func (b *PropertyBuilder) AddDecorator(d *DecoratorSpec) *PropertyBuilder {
	b.Decorators = append(b.Decorators, d)
	return b
}

// SetOptional marks the property optional (`name?: T`).
func (b *PropertyBuilder) SetOptional(optional bool) *PropertyBuilder {
	b.Optional = optional
	return b
}

// Initialize sets the initializer expression.
func (b *PropertyBuilder) Initialize(format string, args ...any) *PropertyBuilder {
	b.Initializer = CodeBlockOf(format, args...)
	return b
}

// Tag stores value under key, replacing any earlier value.
func (b *PropertyBuilder) Tag(key TagKey, value any) *PropertyBuilder {
	if b.Tags == nil {
		b.Tags = Tags{}
	}
	b.Tags[key] = value
	return b
}

// Build validates and returns the property.
func (b *PropertyBuilder) Build() (*PropertySpec, error) {
	if b.Name == "" {
		return nil, builderErrorf("property has no name")
	}
	if err := b.Doc.Err(); err != nil {
		return nil, errors.Wrapf(err, "property %s: doc", b.Name)
	}
	if err := b.Initializer.Err(); err != nil {
		return nil, errors.Wrapf(err, "property %s: initializer", b.Name)
	}
	if slices.Contains(b.Decorators, nil) {
		return nil, builderErrorf("property %s: nil decorator", b.Name)
	}
	return &PropertySpec{
		name:        b.Name,
		typ:         b.Type,
		optional:    b.Optional,
		doc:         b.Doc,
		decorators:  slices.Clone(b.Decorators),
		modifiers:   addModifiers(nil, b.Modifiers...),
		initializer: b.Initializer,
		tags:        b.Tags.clone(),
	}, nil
}

// MustBuild is like Build but panics on error.
func (b *PropertyBuilder) MustBuild() *PropertySpec {
	return must(b.Build())
}
