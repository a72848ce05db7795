package tspoet

import (
	"slices"

	"github.com/cockroachdb/errors"
)

// DecoratorSpec is `@name` or `@name(args...)` applied to a class, member or
// parameter.
type DecoratorSpec struct {
	name    TypeName
	args    []CodeBlock
	factory bool
}

// Name returns the decorator name as written.
func (d *DecoratorSpec) Name() string { return d.name.String() }

// Type returns the decorator reference.
func (d *DecoratorSpec) Type() TypeName { return d.name }

// Args returns the call arguments.
func (d *DecoratorSpec) Args() []CodeBlock { return slices.Clone(d.args) }

// ToBuilder returns a builder seeded with every field of d.
func (d *DecoratorSpec) ToBuilder() *DecoratorBuilder {
	return &DecoratorBuilder{
		Name:    d.name,
		Args:    slices.Clone(d.args),
		Factory: d.factory,
	}
}

// code renders the decorator. Inline decorators (on parameters) never wrap
// their arguments.
func (d *DecoratorSpec) code(inline bool) CodeBlock {
	b := NewCodeBlock().Add("@%T", d.name)
	if d.factory || len(d.args) > 0 {
		sep := ",%W"
		if inline {
			sep = ", "
		}
		b.Add("(").AddCode(JoinCode(d.args, sep)).Add(")")
	}
	return b.Build()
}

// DecoratorBuilder accumulates a DecoratorSpec.
type DecoratorBuilder struct {
	Name TypeName
	Args []CodeBlock
	// Factory renders empty parentheses when there are no arguments.
	Factory bool
}

// Decorator starts a decorator referencing name, e.g.
// Decorator(TypeNameOf("Component@@angular/core")).
func Decorator(name TypeName) *DecoratorBuilder {
	return &DecoratorBuilder{Name: name}
}

// AddArgument appends a call argument.
func (b *DecoratorBuilder) AddArgument(format string, args ...any) *DecoratorBuilder {
	b.Args = append(b.Args, CodeBlockOf(format, args...))
	b.Factory = true
	return b
}

// AsFactory marks the decorator as a call even without arguments.
func (b *DecoratorBuilder) AsFactory() *DecoratorBuilder {
	b.Factory = true
	return b
}

// Build returns the decorator.
func (b *DecoratorBuilder) Build() (*DecoratorSpec, error) {
	if b.Name == nil {
		return nil, builderErrorf("decorator has no name")
	}
	for i, a := range b.Args {
		if a.err != nil {
			return nil, errors.Wrapf(a.err, "decorator %s: argument %d", b.Name, i)
		}
	}
	return &DecoratorSpec{name: b.Name, args: slices.Clone(b.Args), factory: b.Factory}, nil
}

// MustBuild is like Build but panics on error.
func (b *DecoratorBuilder) MustBuild() *DecoratorSpec {
	return must(b.Build())
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
