package gosource

import (
	"go/constant"
	"go/types"
	"slices"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/iancoleman/strcase"

	"github.com/broady/tspoet"
	"github.com/broady/tspoet/config"
)

var primitives = map[string]*tspoet.PrimitiveType{
	"any":       tspoet.Any,
	"unknown":   tspoet.Unknown,
	"never":     tspoet.Never,
	"void":      tspoet.Void,
	"undefined": tspoet.Undefined,
	"null":      tspoet.Null,
	"number":    tspoet.Number,
	"bigint":    tspoet.BigInt,
	"string":    tspoet.String,
	"boolean":   tspoet.Boolean,
	"object":    tspoet.Object,
}

// parseMapping reads the TypeScript side of a type mapping: a keyword type
// or a symbol spec such as "Decimal@decimal.js".
func parseMapping(ts string) tspoet.TypeName {
	if p, ok := primitives[ts]; ok {
		return p
	}
	return tspoet.TypeNameOf(ts)
}

var record = tspoet.Named("Record", "")

// typeOf converts a Go type as it appears in a field or alias. Pointers
// convert to their element type; nil-ness is expressed by optional
// properties.
func (b *builder) typeOf(t types.Type) (tspoet.TypeName, error) {
	switch typ := t.(type) {
	case *types.Basic:
		return basicType(typ), nil
	case *types.Alias:
		return b.typeOf(types.Unalias(typ))
	case *types.Named:
		return b.namedType(typ)
	case *types.Pointer:
		return b.typeOf(typ.Elem())
	case *types.Slice:
		if isByte(typ.Elem()) {
			// encoding/json writes []byte as base64.
			return tspoet.String, nil
		}
		return b.arrayOf(typ.Elem())
	case *types.Array:
		return b.arrayOf(typ.Elem())
	case *types.Map:
		key, err := b.mapKey(typ.Key())
		if err != nil {
			return nil, err
		}
		value, err := b.typeOf(typ.Elem())
		if err != nil {
			return nil, err
		}
		return tspoet.Parameterized(record, key, value), nil
	case *types.Interface:
		if !typ.Empty() {
			b.warn(WarnInterfaceType, "interface type %s mapped to any", typ)
		}
		return tspoet.Any, nil
	case *types.TypeParam:
		return tspoet.TypeVar(typ.Obj().Name()), nil
	case *types.Struct:
		return nil, unsupportedf("anonymous struct %s", typ)
	default:
		return nil, unsupportedf("%s", t)
	}
}

func (b *builder) arrayOf(elem types.Type) (tspoet.TypeName, error) {
	e, err := b.typeOf(elem)
	if err != nil {
		return nil, err
	}
	return tspoet.ArrayOf(e), nil
}

// namedType converts a reference to a defined type. Types of loaded
// packages become references to their generated declarations; other types
// go through the type mappings, their marshalers, or their underlying type.
func (b *builder) namedType(named *types.Named) (tspoet.TypeName, error) {
	obj := named.Obj()
	if mapped, ok := b.mappings[qualifiedName(obj)]; ok {
		return mapped, nil
	}
	if obj.Pkg() == nil {
		// error
		return tspoet.Any, nil
	}
	module, loaded := b.modules[obj.Pkg().Path()]
	if !loaded {
		return b.externalType(named)
	}

	ref := tspoet.Named(obj.Name(), tspoet.LocalModulePrefix+module)
	targs := named.TypeArgs()
	if targs.Len() == 0 {
		return ref, nil
	}
	args := make([]tspoet.TypeName, targs.Len())
	for i := range targs.Len() {
		arg, err := b.typeOf(targs.At(i))
		if err != nil {
			return nil, err
		}
		args[i] = arg
	}
	return tspoet.Parameterized(ref, args...), nil
}

func (b *builder) externalType(named *types.Named) (tspoet.TypeName, error) {
	name := qualifiedName(named.Obj())
	switch {
	case hasMethod(named, "MarshalJSON"):
		b.warn(WarnCustomMarshaler, "%s implements json.Marshaler, mapped to any", name)
		return tspoet.Any, nil
	case hasMethod(named, "MarshalText"):
		return tspoet.String, nil
	}
	t, err := b.typeOf(named.Underlying())
	if errors.Is(err, errUnsupported) {
		b.warn(WarnExternalType, "%s is not in a loaded package, mapped to any", name)
		return tspoet.Any, nil
	}
	return t, err
}

// mapKey converts a map key type. encoding/json accepts string and integer
// kinds and encoding.TextMarshaler implementations.
func (b *builder) mapKey(t types.Type) (tspoet.TypeName, error) {
	t = types.Unalias(t)
	if named, ok := t.(*types.Named); ok && hasMethod(named, "MarshalText") {
		return tspoet.String, nil
	}
	basic, ok := t.Underlying().(*types.Basic)
	if !ok {
		return nil, unsupportedf("map key type %s", t)
	}
	switch info := basic.Info(); {
	case info&types.IsString != 0:
		if _, named := t.(*types.Named); named {
			return b.typeOf(t)
		}
		return tspoet.String, nil
	case info&types.IsInteger != 0:
		return tspoet.Number, nil
	default:
		return nil, unsupportedf("map key type %s", t)
	}
}

func basicType(basic *types.Basic) tspoet.TypeName {
	info := basic.Info()
	switch {
	case info&types.IsBoolean != 0:
		return tspoet.Boolean
	case info&types.IsString != 0:
		return tspoet.String
	case info&(types.IsInteger|types.IsFloat) != 0:
		return tspoet.Number
	default:
		return tspoet.Any
	}
}

func isByte(t types.Type) bool {
	basic, ok := types.Unalias(t).(*types.Basic)
	return ok && basic.Kind() == types.Uint8
}

// isScalar reports whether the json ",string" option applies to t.
func isScalar(t types.Type) bool {
	basic, ok := t.Underlying().(*types.Basic)
	return ok && basic.Info()&(types.IsBoolean|types.IsNumeric|types.IsString) != 0
}

// hasMethod reports whether named declares a nullary method returning two
// values, the shape of MarshalJSON and MarshalText.
func hasMethod(named *types.Named, name string) bool {
	for i := range named.NumMethods() {
		m := named.Method(i)
		if m.Name() != name {
			continue
		}
		sig := m.Type().(*types.Signature)
		return sig.Params().Len() == 0 && sig.Results().Len() == 2
	}
	return false
}

// typeVariables converts type parameters. any and comparable add no
// bound.
func (b *builder) typeVariables(tparams *types.TypeParamList) ([]*tspoet.TypeVariable, error) {
	if tparams == nil {
		return nil, nil
	}
	tvars := make([]*tspoet.TypeVariable, tparams.Len())
	for i := range tparams.Len() {
		tp := tparams.At(i)
		bound, ok, err := b.constraint(tp.Constraint())
		if err != nil {
			return nil, err
		}
		if ok {
			tvars[i] = tspoet.TypeVar(tp.Obj().Name(), tspoet.BoundOf(bound))
		} else {
			tvars[i] = tspoet.TypeVar(tp.Obj().Name())
		}
	}
	return tvars, nil
}

func (b *builder) constraint(c types.Type) (tspoet.TypeName, bool, error) {
	switch t := c.(type) {
	case *types.Alias:
		return b.constraint(types.Unalias(t))
	case *types.Named:
		if t.Obj().Pkg() == nil {
			// comparable
			return nil, false, nil
		}
		if _, loaded := b.modules[t.Obj().Pkg().Path()]; loaded {
			ref, err := b.typeOf(t)
			return ref, err == nil, err
		}
		return b.constraint(t.Underlying())
	case *types.Interface:
		return b.typeSet(t)
	}
	return nil, false, nil
}

// typeSet converts the type terms of a constraint interface, e.g.
// ~string | ~int, to a union. ok is false for interfaces without terms.
func (b *builder) typeSet(iface *types.Interface) (tspoet.TypeName, bool, error) {
	var members []tspoet.TypeName
	add := func(t types.Type) error {
		m, err := b.typeOf(t)
		if err != nil {
			return err
		}
		if !slices.ContainsFunc(members, func(x tspoet.TypeName) bool { return tspoet.Equal(x, m) }) {
			members = append(members, m)
		}
		return nil
	}
	for i := range iface.NumEmbeddeds() {
		switch e := iface.EmbeddedType(i).(type) {
		case *types.Union:
			for j := range e.Len() {
				if err := add(e.Term(j).Type()); err != nil {
					return nil, false, err
				}
			}
		case *types.Basic:
			if err := add(e); err != nil {
				return nil, false, err
			}
		}
	}
	switch len(members) {
	case 0:
		return nil, false, nil
	case 1:
		return members[0], true, nil
	default:
		return tspoet.Union(members...), true, nil
	}
}

// constantLiteral renders the value of c as a TypeScript literal.
func constantLiteral(c *types.Const) string {
	v := c.Val()
	switch v.Kind() {
	case constant.String:
		return strconv.Quote(constant.StringVal(v))
	case constant.Int:
		return v.ExactString()
	case constant.Float:
		f, _ := constant.Float64Val(v)
		return strconv.FormatFloat(f, 'g', -1, 64)
	case constant.Bool:
		return strconv.FormatBool(constant.BoolVal(v))
	default:
		return v.String()
	}
}

// fieldName derives the property name of a field without a json name.
func (b *builder) fieldName(goName string) string {
	switch b.cfg.FieldCase {
	case config.FieldCaseCamel:
		return strcase.ToLowerCamel(goName)
	case config.FieldCasePascal:
		return strcase.ToCamel(goName)
	case config.FieldCaseSnake:
		return strcase.ToSnake(goName)
	case config.FieldCaseKebab:
		return strcase.ToKebab(goName)
	default:
		return goName
	}
}
