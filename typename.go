package tspoet

import (
	"slices"
	"strings"
)

// TypeKind identifies the variant of a TypeName.
type TypeKind int

const (
	KindPrimitive TypeKind = iota
	KindNamed
	KindParameterized
	KindUnion
	KindIntersection
	KindTuple
	KindArray
	KindFunction
	KindTypeVariable
)

func (k TypeKind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindNamed:
		return "named"
	case KindParameterized:
		return "parameterized"
	case KindUnion:
		return "union"
	case KindIntersection:
		return "intersection"
	case KindTuple:
		return "tuple"
	case KindArray:
		return "array"
	case KindFunction:
		return "function"
	case KindTypeVariable:
		return "type variable"
	default:
		return "unknown"
	}
}

// TypeName is a reference to a TypeScript type. The set of implementations
// is closed; all of them are immutable.
type TypeName interface {
	// Kind returns the variant.
	Kind() TypeKind
	// String renders the type using unaliased symbol names.
	String() string

	isTypeName()
}

// PrimitiveType is a built-in keyword type.
type PrimitiveType struct {
	keyword string
}

// Built-in types.
var (
	Any        = &PrimitiveType{keyword: "any"}
	Unknown    = &PrimitiveType{keyword: "unknown"}
	Never      = &PrimitiveType{keyword: "never"}
	Void       = &PrimitiveType{keyword: "void"}
	Undefined  = &PrimitiveType{keyword: "undefined"}
	Null       = &PrimitiveType{keyword: "null"}
	Number     = &PrimitiveType{keyword: "number"}
	BigInt     = &PrimitiveType{keyword: "bigint"}
	String     = &PrimitiveType{keyword: "string"}
	Boolean    = &PrimitiveType{keyword: "boolean"}
	Object     = &PrimitiveType{keyword: "object"}
	SymbolType = &PrimitiveType{keyword: "symbol"}
)

func (*PrimitiveType) Kind() TypeKind   { return KindPrimitive }
func (t *PrimitiveType) String() string { return t.keyword }
func (*PrimitiveType) isTypeName()      {}

// Keyword returns the type keyword, e.g. "number".
func (t *PrimitiveType) Keyword() string { return t.keyword }

// NamedType references a declared type through a Symbol.
type NamedType struct {
	name   string
	symbol Symbol
}

// Named returns a reference to name declared in module. An empty module
// means the name is global or declared in the same file. A module starting
// with LocalModulePrefix is a generated module addressed relative to the
// source root.
func Named(name, module string) *NamedType {
	sym := Symbol{Value: firstSegment(name), Module: module}
	if module != "" {
		sym.Import = ImportNamed
	}
	return &NamedType{name: name, symbol: sym}
}

// NamedSymbol returns a reference to name bound through sym.
func NamedSymbol(name string, sym Symbol) *NamedType {
	return &NamedType{name: name, symbol: sym}
}

// TypeNameOf parses a symbol spec (see ParseSymbol) into a named type,
// e.g. TypeNameOf("Observable@rxjs") or TypeNameOf("*Rx.Subject@rxjs").
func TypeNameOf(spec string) *NamedType {
	name, sym := ParseSymbol(spec)
	return &NamedType{name: name, symbol: sym}
}

func (*NamedType) Kind() TypeKind   { return KindNamed }
func (t *NamedType) String() string { return t.name }
func (*NamedType) isTypeName()      {}

// Name returns the (possibly qualified) name as written at use sites.
func (t *NamedType) Name() string { return t.name }

// Symbol returns the import binding.
func (t *NamedType) Symbol() Symbol { return t.symbol }

// ParameterizedType applies type arguments to a generic base.
type ParameterizedType struct {
	base TypeName
	args []TypeName
}

// Parameterized returns base<args...>.
func Parameterized(base TypeName, args ...TypeName) *ParameterizedType {
	return &ParameterizedType{base: base, args: slices.Clone(args)}
}

func (*ParameterizedType) Kind() TypeKind   { return KindParameterized }
func (t *ParameterizedType) String() string { return renderType(t, nil) }
func (*ParameterizedType) isTypeName()      {}

func (t *ParameterizedType) Base() TypeName   { return t.base }
func (t *ParameterizedType) Args() []TypeName { return slices.Clone(t.args) }

// UnionType is A | B | ...
type UnionType struct {
	members []TypeName
}

// Union returns the union of members in the given order. An empty union
// renders as never.
func Union(members ...TypeName) *UnionType {
	return &UnionType{members: slices.Clone(members)}
}

func (*UnionType) Kind() TypeKind        { return KindUnion }
func (t *UnionType) String() string      { return renderType(t, nil) }
func (*UnionType) isTypeName()           {}
func (t *UnionType) Members() []TypeName { return slices.Clone(t.members) }

// IntersectionType is A & B & ...
type IntersectionType struct {
	members []TypeName
}

// Intersection returns the intersection of members in the given order. An
// empty intersection renders as unknown.
func Intersection(members ...TypeName) *IntersectionType {
	return &IntersectionType{members: slices.Clone(members)}
}

func (*IntersectionType) Kind() TypeKind        { return KindIntersection }
func (t *IntersectionType) String() string      { return renderType(t, nil) }
func (*IntersectionType) isTypeName()           {}
func (t *IntersectionType) Members() []TypeName { return slices.Clone(t.members) }

// TupleType is [A, B, ...].
type TupleType struct {
	elements []TypeName
}

// Tuple returns a tuple of elements.
func Tuple(elements ...TypeName) *TupleType {
	return &TupleType{elements: slices.Clone(elements)}
}

func (*TupleType) Kind() TypeKind         { return KindTuple }
func (t *TupleType) String() string       { return renderType(t, nil) }
func (*TupleType) isTypeName()            {}
func (t *TupleType) Elements() []TypeName { return slices.Clone(t.elements) }

// ArrayType is T[].
type ArrayType struct {
	elem TypeName
}

// ArrayOf returns elem[].
func ArrayOf(elem TypeName) *ArrayType {
	return &ArrayType{elem: elem}
}

func (*ArrayType) Kind() TypeKind   { return KindArray }
func (t *ArrayType) String() string { return renderType(t, nil) }
func (*ArrayType) isTypeName()      {}
func (t *ArrayType) Elem() TypeName { return t.elem }

// FuncParam is a parameter of a function type.
type FuncParam struct {
	Name     string
	Type     TypeName
	Optional bool
	Rest     bool
}

// FunctionType is (a: A, b?: B) => R.
type FunctionType struct {
	params  []FuncParam
	returns TypeName
}

// FuncType returns a function type. A nil returns renders as void.
func FuncType(returns TypeName, params ...FuncParam) *FunctionType {
	if returns == nil {
		returns = Void
	}
	return &FunctionType{params: slices.Clone(params), returns: returns}
}

func (*FunctionType) Kind() TypeKind        { return KindFunction }
func (t *FunctionType) String() string      { return renderType(t, nil) }
func (*FunctionType) isTypeName()           {}
func (t *FunctionType) Params() []FuncParam { return slices.Clone(t.params) }
func (t *FunctionType) Returns() TypeName   { return t.returns }

// BoundCombiner joins a bound to the preceding ones.
type BoundCombiner int

const (
	CombineUnion BoundCombiner = iota
	CombineIntersect
)

// Bound is one constraint of a type variable. The first bound of a variable
// is introduced by `extends`; later ones are joined with `&` or `|`.
type Bound struct {
	Type     TypeName
	Combiner BoundCombiner
	KeyOf    bool
}

// BoundOf returns a plain bound.
func BoundOf(t TypeName) Bound {
	return Bound{Type: t}
}

// IntersectBound returns a bound joined with `&`.
func IntersectBound(t TypeName) Bound {
	return Bound{Type: t, Combiner: CombineIntersect}
}

// UnionBound returns a bound joined with `|`, optionally as `keyof T`.
func UnionBound(t TypeName, keyOf bool) Bound {
	return Bound{Type: t, Combiner: CombineUnion, KeyOf: keyOf}
}

// TypeVariable is a generic type parameter. Used as a type it renders as its
// name; declarations render its bounds.
type TypeVariable struct {
	name   string
	bounds []Bound
}

// TypeVar returns a type variable with the given bounds in declaration order.
func TypeVar(name string, bounds ...Bound) *TypeVariable {
	return &TypeVariable{name: name, bounds: slices.Clone(bounds)}
}

func (*TypeVariable) Kind() TypeKind   { return KindTypeVariable }
func (t *TypeVariable) String() string { return t.name }
func (*TypeVariable) isTypeName()      {}
func (t *TypeVariable) Name() string   { return t.name }
func (t *TypeVariable) Bounds() []Bound {
	return slices.Clone(t.bounds)
}

// Declaration renders the variable with its bounds, e.g.
// "Z extends Test5 | keyof Test6".
func (t *TypeVariable) Declaration() string {
	return renderTypeVariable(t, nil)
}

// Equal reports whether a and b are structurally identical.
func Equal(a, b TypeName) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch x := a.(type) {
	case *PrimitiveType:
		return x.keyword == b.(*PrimitiveType).keyword
	case *NamedType:
		y := b.(*NamedType)
		return x.name == y.name && x.symbol == y.symbol
	case *ParameterizedType:
		y := b.(*ParameterizedType)
		return Equal(x.base, y.base) && equalAll(x.args, y.args)
	case *UnionType:
		return equalAll(x.members, b.(*UnionType).members)
	case *IntersectionType:
		return equalAll(x.members, b.(*IntersectionType).members)
	case *TupleType:
		return equalAll(x.elements, b.(*TupleType).elements)
	case *ArrayType:
		return Equal(x.elem, b.(*ArrayType).elem)
	case *FunctionType:
		y := b.(*FunctionType)
		if len(x.params) != len(y.params) || !Equal(x.returns, y.returns) {
			return false
		}
		for i, p := range x.params {
			q := y.params[i]
			if p.Name != q.Name || p.Optional != q.Optional || p.Rest != q.Rest || !Equal(p.Type, q.Type) {
				return false
			}
		}
		return true
	case *TypeVariable:
		y := b.(*TypeVariable)
		if x.name != y.name || len(x.bounds) != len(y.bounds) {
			return false
		}
		for i, bd := range x.bounds {
			o := y.bounds[i]
			if bd.Combiner != o.Combiner || bd.KeyOf != o.KeyOf || !Equal(bd.Type, o.Type) {
				return false
			}
		}
		return true
	}
	return false
}

func equalAll(a, b []TypeName) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// nameFunc spells a named type at a use site. A nil nameFunc spells every
// named type as declared.
type nameFunc func(*NamedType) string

// renderType renders t. Composite members of unions, intersections and array
// element types are parenthesized when they are unions, intersections or
// function types.
func renderType(t TypeName, name nameFunc) string {
	var b strings.Builder
	writeType(&b, t, name)
	return b.String()
}

func writeType(b *strings.Builder, t TypeName, name nameFunc) {
	switch x := t.(type) {
	case *PrimitiveType:
		b.WriteString(x.keyword)
	case *NamedType:
		if name != nil {
			b.WriteString(name(x))
		} else {
			b.WriteString(x.name)
		}
	case *ParameterizedType:
		writeType(b, x.base, name)
		b.WriteByte('<')
		writeList(b, x.args, ", ", name, false)
		b.WriteByte('>')
	case *UnionType:
		if len(x.members) == 0 {
			b.WriteString("never")
			break
		}
		writeList(b, x.members, " | ", name, true)
	case *IntersectionType:
		if len(x.members) == 0 {
			b.WriteString("unknown")
			break
		}
		writeList(b, x.members, " & ", name, true)
	case *TupleType:
		b.WriteByte('[')
		writeList(b, x.elements, ", ", name, false)
		b.WriteByte(']')
	case *ArrayType:
		writeOperand(b, x.elem, name)
		b.WriteString("[]")
	case *FunctionType:
		b.WriteByte('(')
		for i, p := range x.params {
			if i > 0 {
				b.WriteString(", ")
			}
			if p.Rest {
				b.WriteString("...")
			}
			b.WriteString(p.Name)
			if p.Optional {
				b.WriteByte('?')
			}
			b.WriteString(": ")
			writeType(b, p.Type, name)
		}
		b.WriteString(") => ")
		writeType(b, x.returns, name)
	case *TypeVariable:
		b.WriteString(x.name)
	}
}

func writeList(b *strings.Builder, types []TypeName, sep string, name nameFunc, operands bool) {
	for i, t := range types {
		if i > 0 {
			b.WriteString(sep)
		}
		if operands {
			writeOperand(b, t, name)
		} else {
			writeType(b, t, name)
		}
	}
}

func writeOperand(b *strings.Builder, t TypeName, name nameFunc) {
	if needsParens(t) {
		b.WriteByte('(')
		writeType(b, t, name)
		b.WriteByte(')')
		return
	}
	writeType(b, t, name)
}

func needsParens(t TypeName) bool {
	if t == nil {
		return false
	}
	switch x := t.(type) {
	case *UnionType:
		return len(x.members) > 0
	case *IntersectionType:
		return len(x.members) > 0
	case *FunctionType:
		return true
	}
	return false
}

func renderTypeVariable(tv *TypeVariable, name nameFunc) string {
	var b strings.Builder
	b.WriteString(tv.name)
	for i, bd := range tv.bounds {
		switch {
		case i == 0:
			b.WriteString(" extends ")
		case bd.Combiner == CombineIntersect:
			b.WriteString(" & ")
		default:
			b.WriteString(" | ")
		}
		if bd.KeyOf {
			b.WriteString("keyof ")
			writeOperand(&b, bd.Type, name)
			continue
		}
		if len(tv.bounds) > 1 {
			writeOperand(&b, bd.Type, name)
			continue
		}
		writeType(&b, bd.Type, name)
	}
	return b.String()
}

// walkType calls fn for every named type reachable from t, including type
// arguments, members and function signatures. A type variable used as a
// type references only itself; its bounds belong to the declaration.
func walkType(t TypeName, fn func(*NamedType)) {
	switch x := t.(type) {
	case *NamedType:
		fn(x)
	case *ParameterizedType:
		walkType(x.base, fn)
		for _, a := range x.args {
			walkType(a, fn)
		}
	case *UnionType:
		for _, m := range x.members {
			walkType(m, fn)
		}
	case *IntersectionType:
		for _, m := range x.members {
			walkType(m, fn)
		}
	case *TupleType:
		for _, e := range x.elements {
			walkType(e, fn)
		}
	case *ArrayType:
		walkType(x.elem, fn)
	case *FunctionType:
		for _, p := range x.params {
			walkType(p.Type, fn)
		}
		walkType(x.returns, fn)
	}
}
