// Package gosource converts Go packages into TypeScript declarations. Each
// loaded Go package becomes one tspoet file; references between loaded
// packages become relative imports.
package gosource

import (
	"cmp"
	"context"
	"fmt"
	"go/token"
	"go/types"
	"log/slog"
	"path"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/tools/go/packages"

	"github.com/broady/tspoet"
	"github.com/broady/tspoet/config"
)

// Tags attached to generated files and declarations.
const (
	// PackageTag holds the Go import path a file was generated from.
	PackageTag tspoet.TagKey = "gosource.package"
	// GoTypeTag holds the qualified Go type a declaration was generated
	// from, e.g. "example.com/api.User".
	GoTypeTag tspoet.TagKey = "gosource.go_type"
	// GoFieldTag holds the Go field name a property was generated from.
	GoFieldTag tspoet.TagKey = "gosource.go_field"
)

// Options configures Load.
type Options struct {
	// Packages are the Go package patterns to convert.
	Packages []string
	// Dir is the directory the patterns are resolved in. Empty means the
	// current directory.
	Dir string
	// Config controls output layout and naming. Nil means config.Default().
	Config *config.Config
	// Logger receives per-declaration debug logs and warnings. Nil means
	// slog.Default().
	Logger *slog.Logger
}

// Warning describes a Go construct that was skipped or approximated.
type Warning struct {
	Code     string
	Message  string
	Package  string
	TypeName string
}

// Warning codes.
const (
	WarnUnsupportedType = "UNSUPPORTED_TYPE"
	WarnCustomMarshaler = "CUSTOM_MARSHALER"
	WarnInterfaceType   = "INTERFACE_TYPE"
	WarnExternalType    = "EXTERNAL_TYPE"
)

// Result is the outcome of Load.
type Result struct {
	// Files holds one file per loaded package, sorted by Go import path.
	Files    []*tspoet.FileSpec
	Warnings []Warning
}

var errUnsupported = errors.New("unsupported Go type")

func unsupportedf(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), errUnsupported)
}

// Load type-checks the packages matching opts.Packages and converts their
// exported type declarations.
func Load(ctx context.Context, opts Options) (*Result, error) {
	if len(opts.Packages) == 0 {
		return nil, errors.New("no packages specified")
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	pcfg := &packages.Config{
		Context: ctx,
		Dir:     opts.Dir,
		Mode: packages.NeedName |
			packages.NeedFiles |
			packages.NeedImports |
			packages.NeedTypes |
			packages.NeedSyntax |
			packages.NeedTypesInfo |
			packages.NeedModule,
	}
	pkgs, err := packages.Load(pcfg, opts.Packages...)
	if err != nil {
		return nil, errors.Wrap(err, "load packages")
	}
	if len(pkgs) == 0 {
		return nil, errors.Newf("no packages match %s", strings.Join(opts.Packages, " "))
	}
	for _, pkg := range pkgs {
		if len(pkg.Errors) > 0 {
			return nil, errors.Newf("package %s has errors: %v", pkg.PkgPath, pkg.Errors)
		}
	}
	slices.SortFunc(pkgs, func(a, b *packages.Package) int { return cmp.Compare(a.PkgPath, b.PkgPath) })

	b := newBuilder(cfg, logger)
	owners := make(map[string]string, len(pkgs))
	for _, pkg := range pkgs {
		module := modulePath(cfg, pkg)
		if other, ok := owners[module]; ok {
			return nil, errors.Newf("packages %s and %s both map to module %s", other, pkg.PkgPath, module)
		}
		owners[module] = pkg.PkgPath
		b.modules[pkg.PkgPath] = module
	}

	res := &Result{}
	for _, pkg := range pkgs {
		f, err := b.convertPackage(pkg)
		if err != nil {
			return nil, err
		}
		res.Files = append(res.Files, f)
	}
	res.Warnings = b.warnings
	return res, nil
}

// modulePath returns the generated module of pkg: its path inside the Go
// module, below ModuleRoot, ending in FileName.
func modulePath(cfg *config.Config, pkg *packages.Package) string {
	rel := pkg.PkgPath
	if pkg.Module != nil {
		rel = strings.TrimPrefix(strings.TrimPrefix(rel, pkg.Module.Path), "/")
	}
	return path.Join(cfg.ModuleRoot, rel, cfg.FileName)
}

// builder converts the declarations of one package at a time.
type builder struct {
	cfg      *config.Config
	logger   *slog.Logger
	mappings map[string]tspoet.TypeName
	// modules maps loaded Go import paths to generated module paths.
	modules  map[string]string
	warnings []Warning

	pkg     *packages.Package
	docs    map[token.Pos]string
	current string
}

func newBuilder(cfg *config.Config, logger *slog.Logger) *builder {
	b := &builder{
		cfg:      cfg,
		logger:   logger,
		mappings: make(map[string]tspoet.TypeName, len(cfg.TypeMappings)),
		modules:  make(map[string]string),
	}
	for goType, tsType := range cfg.TypeMappings {
		b.mappings[goType] = parseMapping(tsType)
	}
	return b
}

func (b *builder) warn(code, format string, args ...any) {
	w := Warning{
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Package:  b.pkg.PkgPath,
		TypeName: b.current,
	}
	b.warnings = append(b.warnings, w)
	b.logger.Warn(w.Message, "code", code, "package", w.Package, "type", w.TypeName)
}

func (b *builder) convertPackage(pkg *packages.Package) (*tspoet.FileSpec, error) {
	b.pkg = pkg
	b.docs = collectDocs(pkg.Syntax)
	b.current = ""

	fb := tspoet.File(b.modules[pkg.PkgPath]).Tag(PackageTag, pkg.PkgPath)
	fb.Indent = b.cfg.Indent
	fb.MaxColumn = b.cfg.MaxColumn
	if b.cfg.Header != "" {
		fb.AddComment("%L", b.cfg.Header)
	}

	scope := pkg.Types.Scope()
	for _, name := range scope.Names() {
		tn, ok := scope.Lookup(name).(*types.TypeName)
		if !ok || !tn.Exported() {
			continue
		}
		b.current = name
		decl, err := b.convertDecl(tn)
		switch {
		case errors.Is(err, errUnsupported):
			b.warn(WarnUnsupportedType, "skipped %s: %v", name, err)
			continue
		case err != nil:
			return nil, errors.Wrapf(err, "%s.%s", pkg.PkgPath, name)
		case decl == nil:
			continue
		}
		fb.AddMember(decl)
		b.logger.Debug("converted declaration", "package", pkg.PkgPath, "name", name, "kind", declKind(decl))
	}

	f, err := fb.Build()
	if err != nil {
		return nil, errors.Wrapf(err, "package %s", pkg.PkgPath)
	}
	return f, nil
}

func declKind(e tspoet.Emitter) string {
	switch e.(type) {
	case *tspoet.InterfaceSpec:
		return "interface"
	case *tspoet.EnumSpec:
		return "enum"
	case *tspoet.TypeAliasSpec:
		return "type"
	default:
		return "code"
	}
}

func qualifiedName(obj types.Object) string {
	if obj.Pkg() == nil {
		return obj.Name()
	}
	return obj.Pkg().Path() + "." + obj.Name()
}

func (b *builder) declModifiers() []tspoet.Modifier {
	var mods []tspoet.Modifier
	if b.cfg.Export {
		mods = append(mods, tspoet.Export)
	}
	if b.cfg.Declare {
		mods = append(mods, tspoet.Declare)
	}
	return mods
}

// convertDecl converts one exported type declaration. It returns nil for
// types replaced by a type mapping.
func (b *builder) convertDecl(tn *types.TypeName) (tspoet.Emitter, error) {
	doc := b.docs[tn.Pos()]
	if tn.IsAlias() {
		t, err := b.typeOf(types.Unalias(tn.Type()))
		if err != nil {
			return nil, err
		}
		return b.typeAlias(tn, t, nil, doc)
	}
	named, ok := tn.Type().(*types.Named)
	if !ok {
		return nil, unsupportedf("%s is not a named type", tn.Name())
	}
	if _, mapped := b.mappings[qualifiedName(tn)]; mapped {
		b.logger.Debug("type mapped, declaration skipped", "type", qualifiedName(tn))
		return nil, nil
	}
	switch {
	case hasMethod(named, "MarshalJSON"):
		b.warn(WarnCustomMarshaler, "%s implements json.Marshaler, mapped to any", tn.Name())
		return b.typeAlias(tn, tspoet.Any, nil, doc)
	case hasMethod(named, "MarshalText"):
		return b.typeAlias(tn, tspoet.String, nil, doc)
	}

	tvars, err := b.typeVariables(named.TypeParams())
	if err != nil {
		return nil, err
	}
	switch u := named.Underlying().(type) {
	case *types.Struct:
		return b.structInterface(tn, u, tvars, doc)
	case *types.Interface:
		if set, ok, err := b.typeSet(u); err != nil {
			return nil, err
		} else if ok {
			return b.typeAlias(tn, set, tvars, doc)
		}
		if !u.Empty() {
			b.warn(WarnInterfaceType, "interface type %s mapped to any", tn.Name())
		}
		return b.typeAlias(tn, tspoet.Any, tvars, doc)
	case *types.Basic:
		if consts := enumConstants(named); len(consts) > 0 {
			return b.enum(tn, u, consts, doc)
		}
	}
	t, err := b.typeOf(named.Underlying())
	if err != nil {
		return nil, err
	}
	return b.typeAlias(tn, t, tvars, doc)
}

func (b *builder) typeAlias(tn *types.TypeName, t tspoet.TypeName, tvars []*tspoet.TypeVariable, doc string) (*tspoet.TypeAliasSpec, error) {
	ab := tspoet.TypeAlias(tn.Name(), t).
		AddModifiers(b.declModifiers()...).
		Tag(GoTypeTag, qualifiedName(tn))
	for _, tv := range tvars {
		ab.AddTypeVariable(tv)
	}
	if doc != "" {
		ab.AddDoc("%L", doc)
	}
	return ab.Build()
}

// structInterface converts a struct to an interface following encoding/json
// rules: json tag names, omitted fields, and embedded structs as super
// interfaces.
func (b *builder) structInterface(tn *types.TypeName, st *types.Struct, tvars []*tspoet.TypeVariable, doc string) (*tspoet.InterfaceSpec, error) {
	ib := tspoet.Interface(tn.Name()).
		AddModifiers(b.declModifiers()...).
		Tag(GoTypeTag, qualifiedName(tn))
	for _, tv := range tvars {
		ib.AddTypeVariable(tv)
	}
	if doc != "" {
		ib.AddDoc("%L", doc)
	}

	for i := range st.NumFields() {
		field := st.Field(i)
		if !field.Exported() {
			continue
		}
		tag := parseJSONTag(st.Tag(i))
		if tag.skip {
			continue
		}

		if field.Embedded() && tag.name == "" {
			if super, ok := b.superInterface(field); ok {
				ib.AddSuperInterface(super)
				continue
			}
		}

		p, err := b.property(field, tag)
		if errors.Is(err, errUnsupported) {
			b.warn(WarnUnsupportedType, "skipped field %s.%s: %v", tn.Name(), field.Name(), err)
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "field %s", field.Name())
		}
		ib.AddPropertySpec(p)
	}
	return ib.Build()
}

// superInterface returns the interface an embedded struct field extends.
func (b *builder) superInterface(field *types.Var) (tspoet.TypeName, bool) {
	t := types.Unalias(field.Type())
	if ptr, ok := t.(*types.Pointer); ok {
		t = types.Unalias(ptr.Elem())
	}
	named, ok := t.(*types.Named)
	if !ok || named.Obj().Pkg() == nil {
		return nil, false
	}
	if _, ok := named.Underlying().(*types.Struct); !ok {
		return nil, false
	}
	if _, loaded := b.modules[named.Obj().Pkg().Path()]; !loaded {
		b.warn(WarnExternalType, "embedded %s is not in a loaded package, its fields are omitted", qualifiedName(named.Obj()))
		return nil, false
	}
	super, err := b.typeOf(named)
	if err != nil {
		return nil, false
	}
	return super, true
}

func (b *builder) property(field *types.Var, tag jsonTag) (*tspoet.PropertySpec, error) {
	name := tag.name
	if name == "" {
		name = b.fieldName(field.Name())
	}
	optional := tag.omitEmpty
	ft := types.Unalias(field.Type())
	if ptr, ok := ft.(*types.Pointer); ok {
		optional = true
		ft = ptr.Elem()
	}

	var typ tspoet.TypeName
	if tag.asString && isScalar(ft) {
		typ = tspoet.String
	} else {
		var err error
		if typ, err = b.typeOf(ft); err != nil {
			return nil, err
		}
	}

	pb := tspoet.Property(name, typ).
		SetOptional(optional).
		Tag(GoFieldTag, field.Name())
	if doc := b.docs[field.Pos()]; doc != "" {
		pb.AddDoc("%L", doc)
	}
	return pb.Build()
}

// enumConstant is a constant of an enum-like type.
type enumConstant struct {
	name string
	pos  token.Pos
	lit  string
}

// enumConstants returns the exported constants of type named in declaration
// order.
func enumConstants(named *types.Named) []enumConstant {
	pkg := named.Obj().Pkg()
	if pkg == nil {
		return nil
	}
	var consts []enumConstant
	scope := pkg.Scope()
	for _, name := range scope.Names() {
		c, ok := scope.Lookup(name).(*types.Const)
		if !ok || !c.Exported() || !types.Identical(c.Type(), named) {
			continue
		}
		consts = append(consts, enumConstant{name: c.Name(), pos: c.Pos(), lit: constantLiteral(c)})
	}
	slices.SortFunc(consts, func(a, b enumConstant) int { return cmp.Compare(a.pos, b.pos) })
	return consts
}

func (b *builder) enum(tn *types.TypeName, basic *types.Basic, consts []enumConstant, doc string) (tspoet.Emitter, error) {
	style := b.cfg.EnumStyle
	if basic.Info()&types.IsBoolean != 0 {
		style = config.EnumStyleUnion
	}
	if style == config.EnumStyleUnion {
		var members []tspoet.TypeName
		for _, c := range consts {
			lit := tspoet.Named(c.lit, "")
			if !slices.ContainsFunc(members, func(m tspoet.TypeName) bool { return tspoet.Equal(m, lit) }) {
				members = append(members, lit)
			}
		}
		var t tspoet.TypeName = members[0]
		if len(members) > 1 {
			t = tspoet.Union(members...)
		}
		return b.typeAlias(tn, t, nil, doc)
	}

	eb := tspoet.Enum(tn.Name()).
		AddModifiers(b.declModifiers()...).
		Tag(GoTypeTag, qualifiedName(tn))
	if style == config.EnumStyleConstEnum {
		eb.AddModifiers(tspoet.Const)
	}
	if doc != "" {
		eb.AddDoc("%L", doc)
	}
	names := memberNames(tn.Name(), consts)
	for i, c := range consts {
		eb.AddConstant(names[i], "%L", c.lit)
	}
	return eb.Build()
}

// memberNames drops the type name prefix Go constants conventionally carry
// (StatusActive becomes Active) unless that leaves an empty, invalid or
// duplicate name.
func memberNames(typeName string, consts []enumConstant) []string {
	names := make([]string, len(consts))
	seen := make(map[string]bool, len(consts))
	for i, c := range consts {
		name, ok := strings.CutPrefix(c.name, typeName)
		if !ok || !tspoet.IsValidIdentifier(name) || seen[name] {
			return fullNames(consts)
		}
		seen[name] = true
		names[i] = name
	}
	return names
}

func fullNames(consts []enumConstant) []string {
	names := make([]string, len(consts))
	for i, c := range consts {
		names[i] = c.name
	}
	return names
}
