package tspoet

import (
	"slices"

	"github.com/cockroachdb/errors"
)

// FunctionKind distinguishes named functions from the signature forms that
// have no name of their own.
type FunctionKind int

const (
	FunctionNamed FunctionKind = iota
	FunctionConstructor
	FunctionCallable  // (a: A): R
	FunctionIndexable // [key: K]: V
)

// Names reported by Name for the unnamed function kinds.
const (
	ConstructorName = "constructor()"
	CallableName    = "callable()"
	IndexableName   = "indexable()"
)

// FunctionSpec is a function, method, constructor, call signature or index
// signature.
type FunctionSpec struct {
	name          string
	kind          FunctionKind
	doc           CodeBlock
	decorators    []*DecoratorSpec
	modifiers     []Modifier
	typeVariables []*TypeVariable
	parameters    []*ParameterSpec
	returns       TypeName
	body          CodeBlock
	tags          Tags
}

// Name returns the function name, or one of ConstructorName, CallableName
// and IndexableName.
func (f *FunctionSpec) Name() string                   { return f.name }
func (f *FunctionSpec) Kind() FunctionKind             { return f.kind }
func (f *FunctionSpec) Doc() CodeBlock                 { return f.doc }
func (f *FunctionSpec) Decorators() []*DecoratorSpec   { return slices.Clone(f.decorators) }
func (f *FunctionSpec) Modifiers() []Modifier          { return slices.Clone(f.modifiers) }
func (f *FunctionSpec) TypeVariables() []*TypeVariable { return slices.Clone(f.typeVariables) }
func (f *FunctionSpec) Parameters() []*ParameterSpec   { return slices.Clone(f.parameters) }
func (f *FunctionSpec) Returns() TypeName              { return f.returns }
func (f *FunctionSpec) Body() CodeBlock                { return f.body }
func (f *FunctionSpec) Tags() Tags                     { return f.tags.clone() }

// IsAbstract reports whether the function is declared without a body.
func (f *FunctionSpec) IsAbstract() bool {
	return slices.Contains(f.modifiers, Abstract)
}

// ToBuilder returns a builder seeded with every field of f.
func (f *FunctionSpec) ToBuilder() *FunctionBuilder {
	return &FunctionBuilder{
		Name:          f.name,
		Kind:          f.kind,
		Doc:           f.doc,
		Decorators:    slices.Clone(f.decorators),
		Modifiers:     slices.Clone(f.modifiers),
		TypeVariables: slices.Clone(f.typeVariables),
		Parameters:    slices.Clone(f.parameters),
		ReturnType:    f.returns,
		Body:          f.body.ToBuilder(),
		Tags:          f.tags.clone(),
	}
}

// Emit writes f as a top-level function declaration followed by a blank
// line. Declared functions get no body.
func (f *FunctionSpec) Emit(w *CodeWriter) error {
	if err := f.emit(w, nil, slices.Contains(f.modifiers, Declare), true); err != nil {
		return err
	}
	w.emitText("\n")
	return nil
}

// emit writes f as a member. A bodiless function (interface members,
// abstract methods, declarations) ends with a semicolon.
func (f *FunctionSpec) emit(w *CodeWriter, implicit []Modifier, bodiless, topLevel bool) error {
	if err := f.emitParts(w, implicit, bodiless, topLevel); err != nil {
		return errors.Wrapf(err, "function %s", f.name)
	}
	return nil
}

func (f *FunctionSpec) emitParts(w *CodeWriter, implicit []Modifier, bodiless, topLevel bool) error {
	if err := w.emitDoc(f.doc); err != nil {
		return err
	}
	if err := w.emitDecorators(f.decorators, false); err != nil {
		return err
	}
	w.emitModifiers(f.modifiers, implicit...)

	switch f.kind {
	case FunctionConstructor:
		w.emitText("constructor")
	case FunctionNamed:
		if topLevel {
			w.emitText("function ")
		}
		if needsQuoting(f.name) {
			if err := w.Emit("%S", f.name); err != nil {
				return err
			}
		} else {
			w.emitText(f.name)
		}
	}
	if err := w.emitTypeVariables(f.typeVariables); err != nil {
		return err
	}

	open, closing := "(", ")"
	if f.kind == FunctionIndexable {
		open, closing = "[", "]"
	}
	params := make([]CodeBlock, len(f.parameters))
	for i, p := range f.parameters {
		params[i] = p.code()
	}
	w.emitText(open)
	w.Indent()
	w.Indent()
	if err := w.EmitCode(JoinCode(params, ",%W")); err != nil {
		return errors.Wrap(err, "parameters")
	}
	w.indentLevel -= 2
	w.emitText(closing)

	if f.returns != nil && f.kind != FunctionConstructor {
		if err := w.Emit(": %T", f.returns); err != nil {
			return err
		}
	}

	if bodiless || f.IsAbstract() || f.kind == FunctionCallable || f.kind == FunctionIndexable {
		w.emitText(";\n")
		return nil
	}
	w.emitText(" {\n")
	w.Indent()
	if err := w.EmitCode(f.body); err != nil {
		return errors.Wrap(err, "body")
	}
	if !w.trailingNewline {
		w.emitText("\n")
	}
	if err := w.Unindent(); err != nil {
		return errors.Wrap(err, "body")
	}
	w.emitText("}\n")
	return nil
}

// FunctionBuilder accumulates a FunctionSpec.
type FunctionBuilder struct {
	Name          string
	Kind          FunctionKind
	Doc           CodeBlock
	Decorators    []*DecoratorSpec
	Modifiers     []Modifier
	TypeVariables []*TypeVariable
	Parameters    []*ParameterSpec
	ReturnType    TypeName
	Body          *CodeBlockBuilder
	Tags          Tags

	errs builderErrors
}

func newFunctionBuilder(name string, kind FunctionKind) *FunctionBuilder {
	return &FunctionBuilder{Name: name, Kind: kind, Body: NewCodeBlock(), Tags: Tags{}}
}

// Function starts a named function or method.
func Function(name string) *FunctionBuilder {
	return newFunctionBuilder(name, FunctionNamed)
}

// Constructor starts a class constructor.
func Constructor() *FunctionBuilder {
	return newFunctionBuilder(ConstructorName, FunctionConstructor)
}

// CallSignature starts an interface call signature.
func CallSignature() *FunctionBuilder {
	return newFunctionBuilder(CallableName, FunctionCallable)
}

// IndexSignature starts an interface index signature.
func IndexSignature() *FunctionBuilder {
	return newFunctionBuilder(IndexableName, FunctionIndexable)
}

// AddDoc appends to the doc comment.
func (b *FunctionBuilder) AddDoc(format string, args ...any) *FunctionBuilder {
	b.Doc = b.Doc.ToBuilder().Add(format, args...).Build()
	return b
}

// AddDecorator appends a decorator.
func (b *FunctionBuilder) AddDecorator(d *DecoratorSpec) *FunctionBuilder {
	b.Decorators = append(b.Decorators, d)
	return b
}

// AddModifiers adds modifiers; duplicates are ignored.
func (b *FunctionBuilder) AddModifiers(mods ...Modifier) *FunctionBuilder {
	b.Modifiers = addModifiers(b.Modifiers, mods...)
	return b
}

// AddTypeVariable appends a type parameter.
func (b *FunctionBuilder) AddTypeVariable(tv *TypeVariable) *FunctionBuilder {
	b.TypeVariables = append(b.TypeVariables, tv)
	return b
}

// AddParameter appends a plain parameter.
func (b *FunctionBuilder) AddParameter(name string, typ TypeName) *FunctionBuilder {
	return b.addParameter(Parameter(name, typ))
}

// AddOptionalParameter appends `name?: typ`.
func (b *FunctionBuilder) AddOptionalParameter(name string, typ TypeName) *FunctionBuilder {
	return b.addParameter(Parameter(name, typ).SetOptional(true))
}

// RestParameter appends `...name: typ`. It must be the last parameter.
func (b *FunctionBuilder) RestParameter(name string, typ TypeName) *FunctionBuilder {
	return b.addParameter(Parameter(name, typ).SetRest(true))
}

func (b *FunctionBuilder) addParameter(pb *ParameterBuilder) *FunctionBuilder {
	p, err := pb.Build()
	if err != nil {
		b.errs.fail(err)
		return b
	}
	return b.AddParameterSpec(p)
}

// AddParameterSpec appends a built parameter.
func (b *FunctionBuilder) AddParameterSpec(p *ParameterSpec) *FunctionBuilder {
	b.Parameters = append(b.Parameters, p)
	return b
}

// Returns sets the return type.
func (b *FunctionBuilder) Returns(t TypeName) *FunctionBuilder {
	b.ReturnType = t
	return b
}

// AddCode appends format to the body.
func (b *FunctionBuilder) AddCode(format string, args ...any) *FunctionBuilder {
	b.Body.Add(format, args...)
	return b
}

// AddCodeBlock appends c to the body.
func (b *FunctionBuilder) AddCodeBlock(c CodeBlock) *FunctionBuilder {
	b.Body.AddCode(c)
	return b
}

// AddStatement appends a statement to the body.
func (b *FunctionBuilder) AddStatement(format string, args ...any) *FunctionBuilder {
	b.Body.AddStatement(format, args...)
	return b
}

// BeginControlFlow opens a block in the body.
func (b *FunctionBuilder) BeginControlFlow(controlFlow string, args ...any) *FunctionBuilder {
	b.Body.BeginControlFlow(controlFlow, args...)
	return b
}

// NextControlFlow continues a block in the body, e.g. "else".
func (b *FunctionBuilder) NextControlFlow(controlFlow string, args ...any) *FunctionBuilder {
	b.Body.NextControlFlow(controlFlow, args...)
	return b
}

// EndControlFlow closes a block in the body.
func (b *FunctionBuilder) EndControlFlow() *FunctionBuilder {
	b.Body.EndControlFlow()
	return b
}

// Tag stores value under key, replacing any earlier value.
func (b *FunctionBuilder) Tag(key TagKey, value any) *FunctionBuilder {
	if b.Tags == nil {
		b.Tags = Tags{}
	}
	b.Tags[key] = value
	return b
}

// Build validates and returns the function.
func (b *FunctionBuilder) Build() (*FunctionSpec, error) {
	if err := b.validate(); err != nil {
		return nil, errors.Wrapf(err, "function %s", b.Name)
	}
	var body CodeBlock
	if b.Body != nil {
		body = b.Body.Build()
	}
	return &FunctionSpec{
		name:          b.Name,
		kind:          b.Kind,
		doc:           b.Doc,
		decorators:    slices.Clone(b.Decorators),
		modifiers:     addModifiers(nil, b.Modifiers...),
		typeVariables: slices.Clone(b.TypeVariables),
		parameters:    slices.Clone(b.Parameters),
		returns:       b.ReturnType,
		body:          body,
		tags:          b.Tags.clone(),
	}, nil
}

func (b *FunctionBuilder) validate() error {
	if b.errs.err != nil {
		return b.errs.err
	}
	switch b.Kind {
	case FunctionNamed:
		if b.Name == "" {
			return builderErrorf("function has no name")
		}
	case FunctionConstructor:
		if b.ReturnType != nil {
			return builderErrorf("constructor cannot declare a return type")
		}
		if len(b.TypeVariables) > 0 {
			return builderErrorf("constructor cannot declare type variables")
		}
	case FunctionIndexable:
		if len(b.Parameters) != 1 {
			return builderErrorf("index signature needs exactly one parameter, has %d", len(b.Parameters))
		}
		if b.ReturnType == nil {
			return builderErrorf("index signature needs a value type")
		}
	case FunctionCallable:
	default:
		return builderErrorf("unknown function kind %d", b.Kind)
	}
	if err := b.Doc.Err(); err != nil {
		return errors.Wrap(err, "doc")
	}
	if b.Body != nil && b.Body.err != nil {
		return errors.Wrap(b.Body.err, "body")
	}
	if slices.Contains(b.Decorators, nil) {
		return builderErrorf("nil decorator")
	}
	if slices.Contains(b.TypeVariables, nil) {
		return builderErrorf("nil type variable")
	}
	seen := make(map[string]bool, len(b.Parameters))
	for i, p := range b.Parameters {
		if p == nil {
			return builderErrorf("parameter %d is nil", i)
		}
		if seen[p.name] {
			return builderErrorf("duplicate parameter %s", p.name)
		}
		seen[p.name] = true
		if p.rest && i != len(b.Parameters)-1 {
			return builderErrorf("rest parameter %s must be last", p.name)
		}
	}
	return nil
}

// MustBuild is like Build but panics on error.
func (b *FunctionBuilder) MustBuild() *FunctionSpec {
	return must(b.Build())
}
