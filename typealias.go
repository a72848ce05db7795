package tspoet

import (
	"slices"

	"github.com/cockroachdb/errors"
)

// TypeAliasSpec is `type Name<T> = Type;`.
type TypeAliasSpec struct {
	name          string
	typ           TypeName
	doc           CodeBlock
	modifiers     []Modifier
	typeVariables []*TypeVariable
	tags          Tags
}

func (s *TypeAliasSpec) Name() string                   { return s.name }
func (s *TypeAliasSpec) Type() TypeName                 { return s.typ }
func (s *TypeAliasSpec) Doc() CodeBlock                 { return s.doc }
func (s *TypeAliasSpec) Modifiers() []Modifier          { return slices.Clone(s.modifiers) }
func (s *TypeAliasSpec) TypeVariables() []*TypeVariable { return slices.Clone(s.typeVariables) }
func (s *TypeAliasSpec) Tags() Tags                     { return s.tags.clone() }

// ToBuilder returns a builder seeded with every field of s.
func (s *TypeAliasSpec) ToBuilder() *TypeAliasBuilder {
	return &TypeAliasBuilder{
		Name:          s.name,
		Type:          s.typ,
		Doc:           s.doc,
		Modifiers:     slices.Clone(s.modifiers),
		TypeVariables: slices.Clone(s.typeVariables),
		Tags:          s.tags.clone(),
	}
}

// Emit writes the alias followed by a blank line.
func (s *TypeAliasSpec) Emit(w *CodeWriter) error {
	if err := s.emit(w); err != nil {
		return errors.Wrapf(err, "type alias %s", s.name)
	}
	return nil
}

func (s *TypeAliasSpec) emit(w *CodeWriter) error {
	if err := w.emitDoc(s.doc); err != nil {
		return err
	}
	w.emitModifiers(s.modifiers)
	w.emitText("type " + s.name)
	if err := w.emitTypeVariables(s.typeVariables); err != nil {
		return err
	}
	return w.Emit(" = %T;\n\n", s.typ)
}

// TypeAliasBuilder accumulates a TypeAliasSpec.
type TypeAliasBuilder struct {
	Name          string
	Type          TypeName
	Doc           CodeBlock
	Modifiers     []Modifier
	TypeVariables []*TypeVariable
	Tags          Tags
}

// TypeAlias starts an alias of typ.
func TypeAlias(name string, typ TypeName) *TypeAliasBuilder {
	return &TypeAliasBuilder{Name: name, Type: typ, Tags: Tags{}}
}

// AddDoc appends to the doc comment.
func (b *TypeAliasBuilder) AddDoc(format string, args ...any) *TypeAliasBuilder {
	b.Doc = b.Doc.ToBuilder().Add(format, args...).Build()
	return b
}

// AddModifiers adds modifiers; duplicates are ignored.
func (b *TypeAliasBuilder) AddModifiers(mods ...Modifier) *TypeAliasBuilder {
	b.Modifiers = addModifiers(b.Modifiers, mods...)
	return b
}

// AddTypeVariable appends a type parameter.
func (b *TypeAliasBuilder) AddTypeVariable(tv *TypeVariable) *TypeAliasBuilder {
	b.TypeVariables = append(b.TypeVariables, tv)
	return b
}

// Tag stores value under key, replacing any earlier value.
func (b *TypeAliasBuilder) Tag(key TagKey, value any) *TypeAliasBuilder {
	if b.Tags == nil {
		b.Tags = Tags{}
	}
	b.Tags[key] = value
	return b
}

// Build validates and returns the alias.
func (b *TypeAliasBuilder) Build() (*TypeAliasSpec, error) {
	if err := checkDeclarationName("type alias", b.Name); err != nil {
		return nil, err
	}
	if b.Type == nil {
		return nil, builderErrorf("type alias %s has no type", b.Name)
	}
	if err := b.Doc.Err(); err != nil {
		return nil, errors.Wrapf(err, "type alias %s: doc", b.Name)
	}
	if slices.Contains(b.TypeVariables, nil) {
		return nil, builderErrorf("type alias %s: nil type variable", b.Name)
	}
	return &TypeAliasSpec{
		name:          b.Name,
		typ:           b.Type,
		doc:           b.Doc,
		modifiers:     addModifiers(nil, b.Modifiers...),
		typeVariables: slices.Clone(b.TypeVariables),
		tags:          b.Tags.clone(),
	}, nil
}

// MustBuild is like Build but panics on error.
func (b *TypeAliasBuilder) MustBuild() *TypeAliasSpec {
	return must(b.Build())
}
