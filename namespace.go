package tspoet

import (
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
)

// ModuleKind selects how a ModuleSpec is declared.
type ModuleKind int

const (
	// KindNamespace renders `namespace A.B {`.
	KindNamespace ModuleKind = iota
	// KindAmbientModule renders `module "name" {`, usually with Declare.
	KindAmbientModule
)

// ModuleSpec is a namespace or ambient module holding nested declarations.
type ModuleSpec struct {
	name      string
	kind      ModuleKind
	doc       CodeBlock
	modifiers []Modifier
	members   []Emitter
	tags      Tags
}

func (s *ModuleSpec) Name() string          { return s.name }
func (s *ModuleSpec) Kind() ModuleKind      { return s.kind }
func (s *ModuleSpec) Doc() CodeBlock        { return s.doc }
func (s *ModuleSpec) Modifiers() []Modifier { return slices.Clone(s.modifiers) }
func (s *ModuleSpec) Members() []Emitter    { return slices.Clone(s.members) }
func (s *ModuleSpec) Tags() Tags            { return s.tags.clone() }

// ToBuilder returns a builder seeded with every field of s.
func (s *ModuleSpec) ToBuilder() *ModuleBuilder {
	return &ModuleBuilder{
		Name:      s.name,
		Kind:      s.kind,
		Doc:       s.doc,
		Modifiers: slices.Clone(s.modifiers),
		Members:   slices.Clone(s.members),
		Tags:      s.tags.clone(),
	}
}

// Emit writes the module followed by a blank line. Members are emitted in
// declaration form, each ending with a blank line.
func (s *ModuleSpec) Emit(w *CodeWriter) error {
	if err := s.emit(w); err != nil {
		return errors.Wrapf(err, "module %s", s.name)
	}
	return nil
}

func (s *ModuleSpec) emit(w *CodeWriter) error {
	if err := w.emitDoc(s.doc); err != nil {
		return err
	}
	w.emitModifiers(s.modifiers)
	if s.kind == KindAmbientModule {
		if err := w.Emit("module %S {\n", s.name); err != nil {
			return err
		}
	} else {
		w.emitText("namespace " + s.name + " {\n")
	}
	w.Indent()
	if len(s.members) > 0 {
		w.emitText("\n")
	}
	for _, m := range s.members {
		if err := m.Emit(w); err != nil {
			return err
		}
	}
	if err := w.Unindent(); err != nil {
		return err
	}
	w.emitText("}\n\n")
	return nil
}

// ModuleBuilder accumulates a ModuleSpec.
type ModuleBuilder struct {
	Name      string
	Kind      ModuleKind
	Doc       CodeBlock
	Modifiers []Modifier
	Members   []Emitter
	Tags      Tags
}

// Namespace starts `namespace name`. name may be dotted.
func Namespace(name string) *ModuleBuilder {
	return &ModuleBuilder{Name: name, Kind: KindNamespace, Tags: Tags{}}
}

// AmbientModule starts `declare module "name"`.
func AmbientModule(name string) *ModuleBuilder {
	return &ModuleBuilder{Name: name, Kind: KindAmbientModule, Modifiers: []Modifier{Declare}, Tags: Tags{}}
}

// AddDoc appends to the doc comment.
func (b *ModuleBuilder) AddDoc(format string, args ...any) *ModuleBuilder {
	b.Doc = b.Doc.ToBuilder().Add(format, args...).Build()
	return b
}

// AddModifiers adds modifiers; duplicates are ignored.
func (b *ModuleBuilder) AddModifiers(mods ...Modifier) *ModuleBuilder {
	b.Modifiers = addModifiers(b.Modifiers, mods...)
	return b
}

// AddMember appends a nested declaration: an interface, class, enum, type
// alias, function, property, module or raw CodeBlock.
func (b *ModuleBuilder) AddMember(m Emitter) *ModuleBuilder {
	b.Members = append(b.Members, m)
	return b
}

// Tag stores value under key, replacing any earlier value.
func (b *ModuleBuilder) Tag(key TagKey, value any) *ModuleBuilder {
	if b.Tags == nil {
		b.Tags = Tags{}
	}
	b.Tags[key] = value
	return b
}

// Build validates and returns the module.
func (b *ModuleBuilder) Build() (*ModuleSpec, error) {
	if err := b.validate(); err != nil {
		return nil, errors.Wrapf(err, "module %s", b.Name)
	}
	return &ModuleSpec{
		name:      b.Name,
		kind:      b.Kind,
		doc:       b.Doc,
		modifiers: addModifiers(nil, b.Modifiers...),
		members:   slices.Clone(b.Members),
		tags:      b.Tags.clone(),
	}, nil
}

// MustBuild is like Build but panics on error.
func (b *ModuleBuilder) MustBuild() *ModuleSpec {
	return must(b.Build())
}

func (b *ModuleBuilder) validate() error {
	switch b.Kind {
	case KindNamespace:
		for _, seg := range strings.Split(b.Name, ".") {
			if err := checkDeclarationName("namespace", seg); err != nil {
				return err
			}
		}
	case KindAmbientModule:
		if b.Name == "" {
			return builderErrorf("ambient module has no name")
		}
	default:
		return builderErrorf("unknown module kind %d", b.Kind)
	}
	if err := b.Doc.Err(); err != nil {
		return errors.Wrap(err, "doc")
	}
	for i, m := range b.Members {
		if m == nil {
			return builderErrorf("member %d is nil", i)
		}
	}
	return checkUniqueNames(b.Members)
}

// checkUniqueNames rejects two named declarations of the same kind with the
// same name. Interfaces and namespaces may merge, functions may overload.
func checkUniqueNames(members []Emitter) error {
	seen := make(map[string]string)
	for _, m := range members {
		var kind string
		switch m.(type) {
		case *ClassSpec:
			kind = "class"
		case *EnumSpec:
			kind = "enum"
		case *TypeAliasSpec:
			kind = "type alias"
		case *PropertySpec:
			kind = "variable"
		default:
			continue
		}
		name := m.(Nameable).Name()
		if prev, ok := seen[name]; ok {
			return builderErrorf("%s %s conflicts with %s of the same name", kind, name, prev)
		}
		seen[name] = kind
	}
	return nil
}

// declaredNames returns the names members bind in their scope.
func declaredNames(members []Emitter) []string {
	var names []string
	for _, m := range members {
		n, ok := m.(Nameable)
		if !ok {
			continue
		}
		name := n.Name()
		if ms, ok := m.(*ModuleSpec); ok {
			if ms.kind == KindAmbientModule {
				continue
			}
			name = firstSegment(name)
		}
		if IsValidIdentifier(name) {
			names = append(names, name)
		}
	}
	return names
}
