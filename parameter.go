package tspoet

import (
	"slices"

	"github.com/cockroachdb/errors"
)

// ParameterSpec is a function or constructor parameter. Modifiers on a
// constructor parameter declare a parameter property.
type ParameterSpec struct {
	name         string
	typ          TypeName
	optional     bool
	rest         bool
	modifiers    []Modifier
	decorators   []*DecoratorSpec
	defaultValue CodeBlock
	tags         Tags
}

func (p *ParameterSpec) Name() string                 { return p.name }
func (p *ParameterSpec) Type() TypeName               { return p.typ }
func (p *ParameterSpec) Optional() bool               { return p.optional }
func (p *ParameterSpec) Rest() bool                   { return p.rest }
func (p *ParameterSpec) Modifiers() []Modifier        { return slices.Clone(p.modifiers) }
func (p *ParameterSpec) Decorators() []*DecoratorSpec { return slices.Clone(p.decorators) }
func (p *ParameterSpec) DefaultValue() CodeBlock      { return p.defaultValue }
func (p *ParameterSpec) Tags() Tags                   { return p.tags.clone() }

// ToBuilder returns a builder seeded with every field of p.
func (p *ParameterSpec) ToBuilder() *ParameterBuilder {
	return &ParameterBuilder{
		Name:         p.name,
		Type:         p.typ,
		Optional:     p.optional,
		Rest:         p.rest,
		Modifiers:    slices.Clone(p.modifiers),
		Decorators:   slices.Clone(p.decorators),
		DefaultValue: p.defaultValue,
		Tags:         p.tags.clone(),
	}
}

func (p *ParameterSpec) code() CodeBlock {
	b := NewCodeBlock()
	for _, d := range p.decorators {
		b.AddCode(d.code(true)).Add(" ")
	}
	b.Add(RenderModifiers(p.modifiers))
	if p.rest {
		b.Add("...")
	}
	b.Add("%L", p.name)
	if p.optional {
		b.Add("?")
	}
	if p.typ != nil {
		b.Add(": %T", p.typ)
	}
	if !p.defaultValue.IsEmpty() {
		b.Add(" = ").AddCode(p.defaultValue)
	}
	return b.Build()
}

// ParameterBuilder accumulates a ParameterSpec.
type ParameterBuilder struct {
	Name         string
	Type         TypeName
	Optional     bool
	Rest         bool
	Modifiers    []Modifier
	Decorators   []*DecoratorSpec
	DefaultValue CodeBlock
	Tags         Tags
}

// Parameter starts a parameter. A nil type omits the annotation.
func Parameter(name string, typ TypeName) *ParameterBuilder {
	return &ParameterBuilder{Name: name, Type: typ, Tags: Tags{}}
}

// AddModifiers adds modifiers; duplicates are ignored.
func (b *ParameterBuilder) AddModifiers(mods ...Modifier) *ParameterBuilder {
	b.Modifiers = addModifiers(b.Modifiers, mods...)
	return b
}

// AddDecorator appends a decorator.
func (b *ParameterBuilder) AddDecorator(d *DecoratorSpec) *ParameterBuilder {
	b.Decorators = append(b.Decorators, d)
	return b
}

// SetOptional marks the parameter optional (`name?: T`).
func (b *ParameterBuilder) SetOptional(optional bool) *ParameterBuilder {
	b.Optional = optional
	return b
}

// SetRest marks the parameter as a rest parameter (`...name: T`).
func (b *ParameterBuilder) SetRest(rest bool) *ParameterBuilder {
	b.Rest = rest
	return b
}

// Default sets the default value.
func (b *ParameterBuilder) Default(format string, args ...any) *ParameterBuilder {
	b.DefaultValue = CodeBlockOf(format, args...)
	return b
}

// Tag stores value under key, replacing any earlier value.
func (b *ParameterBuilder) Tag(key TagKey, value any) *ParameterBuilder {
	if b.Tags == nil {
		b.Tags = Tags{}
	}
	b.Tags[key] = value
	return b
}

// Build validates and returns the parameter.
func (b *ParameterBuilder) Build() (*ParameterSpec, error) {
	if !IsValidIdentifier(b.Name) {
		return nil, builderErrorf("parameter name %q is not a valid identifier", b.Name)
	}
	if b.Rest && b.Optional {
		return nil, builderErrorf("parameter %s: rest parameter cannot be optional", b.Name)
	}
	if err := b.DefaultValue.Err(); err != nil {
		return nil, errors.Wrapf(err, "parameter %s: default value", b.Name)
	}
	if slices.Contains(b.Decorators, nil) {
		return nil, builderErrorf("parameter %s: nil decorator", b.Name)
	}
	return &ParameterSpec{
		name:         b.Name,
		typ:          b.Type,
		optional:     b.Optional,
		rest:         b.Rest,
		modifiers:    addModifiers(nil, b.Modifiers...),
		decorators:   slices.Clone(b.Decorators),
		defaultValue: b.DefaultValue,
		tags:         b.Tags.clone(),
	}, nil
}

// MustBuild is like Build but panics on error.
func (b *ParameterBuilder) MustBuild() *ParameterSpec {
	return must(b.Build())
}
