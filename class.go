package tspoet

import (
	"slices"

	"github.com/cockroachdb/errors"
)

// ClassSpec is a class declaration.
type ClassSpec struct {
	name          string
	doc           CodeBlock
	decorators    []*DecoratorSpec
	modifiers     []Modifier
	typeVariables []*TypeVariable
	superClass    TypeName
	mixins        []TypeName
	properties    []*PropertySpec
	constructor   *FunctionSpec
	functions     []*FunctionSpec
	tags          Tags
}

func (s *ClassSpec) Name() string                   { return s.name }
func (s *ClassSpec) Doc() CodeBlock                 { return s.doc }
func (s *ClassSpec) Decorators() []*DecoratorSpec   { return slices.Clone(s.decorators) }
func (s *ClassSpec) Modifiers() []Modifier          { return slices.Clone(s.modifiers) }
func (s *ClassSpec) TypeVariables() []*TypeVariable { return slices.Clone(s.typeVariables) }

// SuperClass returns the extended class, or nil.
func (s *ClassSpec) SuperClass() TypeName { return s.superClass }

// Mixins returns the implemented interfaces.
func (s *ClassSpec) Mixins() []TypeName          { return slices.Clone(s.mixins) }
func (s *ClassSpec) Properties() []*PropertySpec { return slices.Clone(s.properties) }
func (s *ClassSpec) Constructor() *FunctionSpec  { return s.constructor }
func (s *ClassSpec) Functions() []*FunctionSpec  { return slices.Clone(s.functions) }
func (s *ClassSpec) Tags() Tags                  { return s.tags.clone() }

// ToBuilder returns a builder seeded with every field of s.
func (s *ClassSpec) ToBuilder() *ClassBuilder {
	return &ClassBuilder{
		Name:            s.name,
		Doc:             s.doc,
		Decorators:      slices.Clone(s.decorators),
		Modifiers:       slices.Clone(s.modifiers),
		TypeVariables:   slices.Clone(s.typeVariables),
		SuperClass:      s.superClass,
		Mixins:          slices.Clone(s.mixins),
		Properties:      slices.Clone(s.properties),
		ConstructorSpec: s.constructor,
		Functions:       slices.Clone(s.functions),
		Tags:            s.tags.clone(),
	}
}

// Emit writes the class followed by a blank line. Members are laid out like
// interface members: properties, constructor, then methods.
func (s *ClassSpec) Emit(w *CodeWriter) error {
	if err := s.emit(w); err != nil {
		return errors.Wrapf(err, "class %s", s.name)
	}
	return nil
}

func (s *ClassSpec) emit(w *CodeWriter) error {
	if err := w.emitDoc(s.doc); err != nil {
		return err
	}
	if err := w.emitDecorators(s.decorators, false); err != nil {
		return err
	}
	w.emitModifiers(s.modifiers)
	w.emitText("class " + s.name)
	if err := w.emitTypeVariables(s.typeVariables); err != nil {
		return err
	}
	if s.superClass != nil {
		if err := w.Emit(" extends %T", s.superClass); err != nil {
			return err
		}
	}
	if len(s.mixins) > 0 {
		mixins := make([]CodeBlock, len(s.mixins))
		for i, t := range s.mixins {
			mixins[i] = CodeBlockOf("%T", t)
		}
		if err := w.EmitCode(JoinCodeWith(mixins, ", ", " implements ", "")); err != nil {
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
	if s.constructor != nil {
		w.emitText("\n")
		if err := s.constructor.emit(w, []Modifier{Public}, false, false); err != nil {
			return err
		}
		members++
	}
	declared := slices.Contains(s.modifiers, Declare)
	for _, f := range s.functions {
		w.emitText("\n")
		if err := f.emit(w, []Modifier{Public}, declared, false); err != nil {
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

// ClassBuilder accumulates a ClassSpec.
type ClassBuilder struct {
	Name            string
	Doc             CodeBlock
	Decorators      []*DecoratorSpec
	Modifiers       []Modifier
	TypeVariables   []*TypeVariable
	SuperClass      TypeName
	Mixins          []TypeName
	Properties      []*PropertySpec
	ConstructorSpec *FunctionSpec
	Functions       []*FunctionSpec
	Tags            Tags

	errs builderErrors
}

// Class starts a class declaration.
func Class(name string) *ClassBuilder {
	return &ClassBuilder{Name: name, Tags: Tags{}}
}

// AddDoc appends to the doc comment.
func (b *ClassBuilder) AddDoc(format string, args ...any) *ClassBuilder {
	b.Doc = b.Doc.ToBuilder().Add(format, args...).Build()
	return b
}

// AddDecorator appends a decorator.
func (b *ClassBuilder) AddDecorator(d *DecoratorSpec) *ClassBuilder {
	b.Decorators = append(b.Decorators, d)
	return b
}

// AddModifiers adds modifiers; duplicates are ignored.
func (b *ClassBuilder) AddModifiers(mods ...Modifier) *ClassBuilder {
	b.Modifiers = addModifiers(b.Modifiers, mods...)
	return b
}

// AddTypeVariable appends a type parameter.
func (b *ClassBuilder) AddTypeVariable(tv *TypeVariable) *ClassBuilder {
	b.TypeVariables = append(b.TypeVariables, tv)
	return b
}

// Superclass sets the extended class.
func (b *ClassBuilder) Superclass(t TypeName) *ClassBuilder {
	if b.SuperClass != nil {
		b.errs.failf("superclass already set to %s", b.SuperClass)
		return b
	}
	b.SuperClass = t
	return b
}

// AddMixin appends an implemented interface.
func (b *ClassBuilder) AddMixin(t TypeName) *ClassBuilder {
	b.Mixins = append(b.Mixins, t)
	return b
}

// AddProperty appends a property with the given modifiers.
func (b *ClassBuilder) AddProperty(name string, typ TypeName, optional bool, mods ...Modifier) *ClassBuilder {
	p, err := Property(name, typ, mods...).SetOptional(optional).Build()
	if err != nil {
		b.errs.fail(err)
		return b
	}
	return b.AddPropertySpec(p)
}

// AddPropertySpec appends a built property. Property names must be unique.
func (b *ClassBuilder) AddPropertySpec(p *PropertySpec) *ClassBuilder {
	if p != nil && slices.ContainsFunc(b.Properties, func(q *PropertySpec) bool { return q.name == p.name }) {
		b.errs.failf("duplicate property %s", p.name)
		return b
	}
	b.Properties = append(b.Properties, p)
	return b
}

// Constructor sets the constructor. A class has at most one.
func (b *ClassBuilder) Constructor(f *FunctionSpec) *ClassBuilder {
	if f != nil && f.kind != FunctionConstructor {
		b.errs.failf("%s is not a constructor", f.name)
		return b
	}
	if b.ConstructorSpec != nil {
		b.errs.failf("class already has a constructor")
		return b
	}
	b.ConstructorSpec = f
	return b
}

// AddFunction appends a method.
func (b *ClassBuilder) AddFunction(f *FunctionSpec) *ClassBuilder {
	if f != nil && f.kind != FunctionNamed {
		b.errs.failf("%s is not a method", f.name)
		return b
	}
	b.Functions = append(b.Functions, f)
	return b
}

// Tag stores value under key, replacing any earlier value.
func (b *ClassBuilder) Tag(key TagKey, value any) *ClassBuilder {
	if b.Tags == nil {
		b.Tags = Tags{}
	}
	b.Tags[key] = value
	return b
}

// Build validates and returns the class.
func (b *ClassBuilder) Build() (*ClassSpec, error) {
	if err := b.validate(); err != nil {
		return nil, errors.Wrapf(err, "class %s", b.Name)
	}
	return &ClassSpec{
		name:          b.Name,
		doc:           b.Doc,
		decorators:    slices.Clone(b.Decorators),
		modifiers:     addModifiers(nil, b.Modifiers...),
		typeVariables: slices.Clone(b.TypeVariables),
		superClass:    b.SuperClass,
		mixins:        slices.Clone(b.Mixins),
		properties:    slices.Clone(b.Properties),
		constructor:   b.ConstructorSpec,
		functions:     slices.Clone(b.Functions),
		tags:          b.Tags.clone(),
	}, nil
}

func (b *ClassBuilder) validate() error {
	if b.errs.err != nil {
		return b.errs.err
	}
	if err := checkDeclarationName("class", b.Name); err != nil {
		return err
	}
	if err := b.Doc.Err(); err != nil {
		return errors.Wrap(err, "doc")
	}
	if slices.Contains(b.Decorators, nil) {
		return builderErrorf("nil decorator")
	}
	if slices.Contains(b.TypeVariables, nil) || slices.Contains(b.Mixins, nil) {
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
	if slices.Contains(b.Functions, nil) {
		return builderErrorf("nil function")
	}
	if !slices.Contains(b.Modifiers, Abstract) {
		for _, f := range b.Functions {
			if f.IsAbstract() {
				return builderErrorf("abstract method %s in non-abstract class", f.name)
			}
		}
	}
	return nil
}

// MustBuild is like Build but panics on error.
func (b *ClassBuilder) MustBuild() *ClassSpec {
	return must(b.Build())
}
