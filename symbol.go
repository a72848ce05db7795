package tspoet

import (
	"strings"
)

// ImportKind selects the import statement form used for a Symbol.
type ImportKind int

const (
	// ImportNone is a global or locally declared name; no import is emitted.
	ImportNone ImportKind = iota
	// ImportNamed emits `import {Value} from "module"`.
	ImportNamed
	// ImportAll emits `import * as Value from "module"`.
	ImportAll
	// ImportDefault emits `import Value from "module"`.
	ImportDefault
)

// LocalModulePrefix marks a module identifier as a path inside the generated
// source tree. Such modules are imported with relative paths; all other
// module identifiers are passed through verbatim.
const LocalModulePrefix = "!"

// Symbol is an importable name: the local binding Value brought in from
// Module. Symbol is comparable and is used as the reference registry key.
type Symbol struct {
	Value  string
	Module string
	Import ImportKind
}

// IsLocal reports whether the symbol's module lives in the generated tree.
func (s Symbol) IsLocal() bool {
	return strings.HasPrefix(s.Module, LocalModulePrefix)
}

// IsImported reports whether referencing the symbol requires an import.
func (s Symbol) IsImported() bool {
	return s.Import != ImportNone
}

// LocalModule returns the module path without the local marker, or "" for
// implied modules.
func (s Symbol) LocalModule() string {
	if !s.IsLocal() {
		return ""
	}
	return strings.TrimPrefix(s.Module, LocalModulePrefix)
}

func (s Symbol) String() string {
	if s.Import == ImportNone {
		return s.Value
	}
	var prefix string
	switch s.Import {
	case ImportAll:
		prefix = "*"
	case ImportDefault:
		prefix = "="
	}
	return prefix + s.Value + "@" + s.Module
}

// ParseSymbol parses a symbol spec of the form
//
//	Name            global or locally declared, never imported
//	Name@module     import {Name} from "module"
//	*Name@module    import * as Name from "module"
//	=Name@module    import Name from "module"
//
// Name may be qualified ("Rx.Observable"); only the first segment is bound
// by the import. It returns the full qualified name alongside the symbol.
func ParseSymbol(spec string) (name string, sym Symbol) {
	kind := ImportNamed
	switch {
	case strings.HasPrefix(spec, "*"):
		kind = ImportAll
		spec = spec[1:]
	case strings.HasPrefix(spec, "="):
		kind = ImportDefault
		spec = spec[1:]
	}
	at := strings.IndexByte(spec, '@')
	if at <= 0 {
		return spec, Symbol{Value: firstSegment(spec)}
	}
	name = spec[:at]
	return name, Symbol{Value: firstSegment(name), Module: spec[at+1:], Import: kind}
}

func firstSegment(name string) string {
	if i := strings.IndexByte(name, '.'); i >= 0 {
		return name[:i]
	}
	return name
}
