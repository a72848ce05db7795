package tspoet

import (
	"testing"
)

func TestTypeName_String(t *testing.T) {
	observable := TypeNameOf("Observable@rxjs")
	tests := []struct {
		name string
		typ  TypeName
		want string
	}{
		{name: "primitive", typ: Number, want: "number"},
		{name: "named", typ: observable, want: "Observable"},
		{name: "qualified", typ: TypeNameOf("*Rx.Subject@rxjs"), want: "Rx.Subject"},
		{name: "parameterized", typ: Parameterized(observable, String), want: "Observable<string>"},
		{name: "nested parameterized", typ: Parameterized(TypeNameOf("Map"), String, Parameterized(observable, Number)), want: "Map<string, Observable<number>>"},
		{name: "union", typ: Union(String, Number, Null), want: "string | number | null"},
		{name: "intersection", typ: Intersection(TypeNameOf("A"), TypeNameOf("B")), want: "A & B"},
		{name: "empty union", typ: Union(), want: "never"},
		{name: "empty intersection", typ: Intersection(), want: "unknown"},
		{name: "array of empty union", typ: ArrayOf(Union()), want: "never[]"},
		{name: "tuple", typ: Tuple(String, Number), want: "[string, number]"},
		{name: "array", typ: ArrayOf(String), want: "string[]"},
		{name: "array of array", typ: ArrayOf(ArrayOf(Number)), want: "number[][]"},
		{name: "function", typ: FuncType(Boolean,
			FuncParam{Name: "a", Type: String},
			FuncParam{Name: "b", Type: Number, Optional: true},
			FuncParam{Name: "rest", Type: ArrayOf(Any), Rest: true},
		), want: "(a: string, b?: number, ...rest: any[]) => boolean"},
		{name: "function without return", typ: FuncType(nil), want: "() => void"},
		{name: "type variable", typ: TypeVar("T", BoundOf(String)), want: "T"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.typ.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTypeName_Parenthesization(t *testing.T) {
	a, b, c := TypeNameOf("A"), TypeNameOf("B"), TypeNameOf("C")
	fn := FuncType(Void)
	tests := []struct {
		name string
		typ  TypeName
		want string
	}{
		{name: "union in intersection", typ: Intersection(a, Union(b, c)), want: "A & (B | C)"},
		{name: "intersection in union", typ: Union(a, Intersection(b, c)), want: "A | (B & C)"},
		{name: "union in union", typ: Union(a, Union(b, c)), want: "A | (B | C)"},
		{name: "function in union", typ: Union(fn, Null), want: "(() => void) | null"},
		{name: "function in intersection", typ: Intersection(fn, a), want: "(() => void) & A"},
		{name: "union array", typ: ArrayOf(Union(String, Number)), want: "(string | number)[]"},
		{name: "function array", typ: ArrayOf(fn), want: "(() => void)[]"},
		{name: "union type argument", typ: Parameterized(a, Union(b, c)), want: "A<B | C>"},
		{name: "union tuple element", typ: Tuple(Union(b, c), a), want: "[B | C, A]"},
		{name: "union function return", typ: FuncType(Union(b, c)), want: "() => B | C"},
		{name: "parameterized in union", typ: Union(Parameterized(a, b), c), want: "A<B> | C"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.typ.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTypeVariable_Declaration(t *testing.T) {
	tests := []struct {
		tv   *TypeVariable
		want string
	}{
		{tv: TypeVar("T"), want: "T"},
		{tv: TypeVar("X", BoundOf(TypeNameOf("Test2"))), want: "X extends Test2"},
		{tv: TypeVar("Y", BoundOf(TypeNameOf("Test3")), IntersectBound(TypeNameOf("Test4"))), want: "Y extends Test3 & Test4"},
		{tv: TypeVar("Z", BoundOf(TypeNameOf("Test5")), UnionBound(TypeNameOf("Test6"), true)), want: "Z extends Test5 | keyof Test6"},
		{tv: TypeVar("K", UnionBound(TypeNameOf("Obj"), true)), want: "K extends keyof Obj"},
		{tv: TypeVar("U", BoundOf(String), UnionBound(Number, false)), want: "U extends string | number"},
		{tv: TypeVar("F", BoundOf(FuncType(Void)), IntersectBound(TypeNameOf("A"))), want: "F extends (() => void) & A"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.tv.Declaration(); got != tt.want {
				t.Errorf("Declaration() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b TypeName
		want bool
	}{
		{name: "same primitive", a: String, b: String, want: true},
		{name: "different primitive", a: String, b: Number, want: false},
		{name: "named same module", a: Named("A", "m"), b: TypeNameOf("A@m"), want: true},
		{name: "named different module", a: Named("A", "m"), b: Named("A", "n"), want: false},
		{name: "union same order", a: Union(String, Number), b: Union(String, Number), want: true},
		{name: "union different order", a: Union(String, Number), b: Union(Number, String), want: false},
		{name: "union vs intersection", a: Union(String, Number), b: Intersection(String, Number), want: false},
		{name: "parameterized", a: Parameterized(Named("A", ""), String), b: Parameterized(Named("A", ""), String), want: true},
		{name: "function params", a: FuncType(Void, FuncParam{Name: "a", Type: String}), b: FuncType(Void, FuncParam{Name: "a", Type: String, Optional: true}), want: false},
		{name: "type variable bounds", a: TypeVar("T", BoundOf(String)), b: TypeVar("T", BoundOf(String)), want: true},
		{name: "type variable keyof", a: TypeVar("T", UnionBound(String, true)), b: TypeVar("T", UnionBound(String, false)), want: false},
		{name: "nil", a: nil, b: nil, want: true},
		{name: "nil and type", a: nil, b: String, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestParseSymbol(t *testing.T) {
	tests := []struct {
		spec     string
		wantName string
		want     Symbol
	}{
		{spec: "Date", wantName: "Date", want: Symbol{Value: "Date"}},
		{spec: "Observable@rxjs", wantName: "Observable", want: Symbol{Value: "Observable", Module: "rxjs", Import: ImportNamed}},
		{spec: "*Rx.Subject@rxjs", wantName: "Rx.Subject", want: Symbol{Value: "Rx", Module: "rxjs", Import: ImportAll}},
		{spec: "=Moment@moment", wantName: "Moment", want: Symbol{Value: "Moment", Module: "moment", Import: ImportDefault}},
		{spec: "Component@@angular/core", wantName: "Component", want: Symbol{Value: "Component", Module: "@angular/core", Import: ImportNamed}},
		{spec: "Api@!generated/api/Api", wantName: "Api", want: Symbol{Value: "Api", Module: "!generated/api/Api", Import: ImportNamed}},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			name, sym := ParseSymbol(tt.spec)
			if name != tt.wantName {
				t.Errorf("name = %q, want %q", name, tt.wantName)
			}
			if sym != tt.want {
				t.Errorf("symbol = %#v, want %#v", sym, tt.want)
			}
		})
	}

	if got := (Symbol{Value: "Rx", Module: "rxjs", Import: ImportAll}).String(); got != "*Rx@rxjs" {
		t.Errorf("String() = %q, want %q", got, "*Rx@rxjs")
	}

	_, local := ParseSymbol("Api@!generated/api/Api")
	if !local.IsLocal() || local.LocalModule() != "generated/api/Api" {
		t.Errorf("LocalModule() = %q, IsLocal() = %v", local.LocalModule(), local.IsLocal())
	}
	_, implied := ParseSymbol("Observable@rxjs")
	if implied.IsLocal() || implied.LocalModule() != "" {
		t.Errorf("implied module reported as local: %#v", implied)
	}
}

func TestModifiers(t *testing.T) {
	tests := []struct {
		name     string
		mods     []Modifier
		implicit []Modifier
		want     string
	}{
		{name: "empty", want: ""},
		{name: "canonical order", mods: []Modifier{Readonly, Static, Private, Export}, want: "export private static readonly "},
		{name: "input order ignored", mods: []Modifier{Export, Private, Static, Readonly}, want: "export private static readonly "},
		{name: "declare const", mods: []Modifier{Const, Declare, Export}, want: "export declare const "},
		{name: "implicit removed", mods: []Modifier{Public, Abstract, Readonly}, implicit: []Modifier{Public, Abstract}, want: "readonly "},
		{name: "duplicates collapse", mods: []Modifier{Async, Async}, want: "async "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RenderModifiers(tt.mods, tt.implicit...); got != tt.want {
				t.Errorf("RenderModifiers() = %q, want %q", got, tt.want)
			}
		})
	}

	for m := Export; m <= Async; m++ {
		got, ok := ParseModifier(m.String())
		if !ok || got != m {
			t.Errorf("ParseModifier(%q) = %v, %v", m.String(), got, ok)
		}
	}
	if _, ok := ParseModifier("final"); ok {
		t.Error(`ParseModifier("final") succeeded`)
	}
}
