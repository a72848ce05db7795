package tspoet

import (
	"cmp"
	"path"
	"slices"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/elliotchance/orderedmap/v3"
)

// ImportPath returns the module specifier a file at importer uses to import
// module. importer is a slash-separated module path (no extension) relative
// to root. A module marked with LocalModulePrefix is resolved relative to the
// importer's directory; any other module is an implied module and is
// returned unchanged.
//
//	ImportPath("/", "generated/src/main/impl/Impl", "!generated/src/main/api/Api") == "../api/Api"
//	ImportPath("/", "generated/src/main/api/Api2", "!generated/src/main/api/Api") == "./Api"
//	ImportPath("/", "Api2", "!Api")                                              == "./Api"
//	ImportPath("/", "generated/src/main/impl/Impl", "rxjs/Observable")           == "rxjs/Observable"
func ImportPath(root, importer, module string) (string, error) {
	if module == "" {
		return "", resolutionErrorf("empty module identifier")
	}
	local, ok := strings.CutPrefix(module, LocalModulePrefix)
	if !ok {
		return module, nil
	}

	importerSegs, err := moduleSegments(root, importer)
	if err != nil {
		return "", errors.Wrapf(err, "importer %q", importer)
	}
	importSegs, err := moduleSegments(root, local)
	if err != nil {
		return "", errors.Wrapf(err, "module %q", module)
	}
	if len(importSegs) == 0 {
		return "", resolutionErrorf("module %q names no file", module)
	}

	// Compare directories only; the last segment is the file.
	importerDir := importerSegs[:max(len(importerSegs)-1, 0)]
	importDir := importSegs[:len(importSegs)-1]
	common := 0
	for common < len(importerDir) && common < len(importDir) && importerDir[common] == importDir[common] {
		common++
	}

	var segs []string
	for range importerDir[common:] {
		segs = append(segs, "..")
	}
	segs = append(segs, importSegs[common:]...)
	rel := strings.Join(segs, "/")
	if !strings.HasPrefix(rel, "./") && !strings.HasPrefix(rel, "../") {
		rel = "./" + rel
	}
	return rel, nil
}

// moduleSegments cleans p relative to root and splits it into segments.
// Paths that climb out of root are rejected.
func moduleSegments(root, p string) ([]string, error) {
	if c := path.Clean(p); c == ".." || strings.HasPrefix(c, "../") {
		return nil, resolutionErrorf("path %q escapes source root %q", p, root)
	}
	root = path.Clean("/" + strings.Trim(root, "/"))
	full := path.Clean(path.Join(root, p))
	if path.IsAbs(p) {
		full = path.Clean(p)
	}
	rel, ok := strings.CutPrefix(full, root)
	if !ok || (root != "/" && rel != "" && rel[0] != '/') {
		return nil, resolutionErrorf("path %q escapes source root %q", p, root)
	}
	rel = strings.Trim(rel, "/")
	if rel == "" {
		return nil, nil
	}
	return strings.Split(rel, "/"), nil
}

// importStatement is one rendered import line.
type importStatement struct {
	path    string
	kind    ImportKind
	binding string // ImportAll and ImportDefault
	names   []importedName
}

type importedName struct {
	name  string
	alias string
}

// importTable is the result of resolving a file's references.
type importTable struct {
	aliases    map[Symbol]string
	statements []importStatement
}

// resolveImports computes the import statements for a file at importer and
// the local spelling of every referenced symbol. Names declared in the file
// and referenced globals are reserved; an imported symbol whose name is taken
// is aliased with the lowest free numeric suffix, in first-seen order.
func resolveImports(root, importer string, refs []Symbol, declared []string) (*importTable, error) {
	taken := make(map[string]bool)
	for _, name := range declared {
		taken[name] = true
	}
	self := LocalModulePrefix + importer
	for _, sym := range refs {
		if !sym.IsImported() || sym.Module == self {
			taken[sym.Value] = true
		}
	}

	table := &importTable{aliases: make(map[Symbol]string)}
	byModule := orderedmap.NewOrderedMap[string, []Symbol]()
	bound := make(map[string]Symbol)

	for _, sym := range refs {
		if !sym.IsImported() || sym.Module == self {
			continue
		}
		if sym.Value == "" {
			return nil, resolutionErrorf("symbol imported from %q has no name", sym.Module)
		}
		if !IsValidIdentifier(sym.Value) {
			return nil, resolutionErrorf("symbol %q imported from %q is not a valid identifier", sym.Value, sym.Module)
		}
		p, err := ImportPath(root, importer, sym.Module)
		if err != nil {
			return nil, errors.Wrapf(err, "symbol %s", sym)
		}

		local := sym.Value
		if other, ok := bound[local]; (ok && other != sym) || taken[local] {
			local = freeName(sym.Value, taken, bound)
		}
		bound[local] = sym
		table.aliases[sym] = local

		syms, _ := byModule.Get(p)
		byModule.Set(p, append(syms, sym))
	}

	for p, syms := range byModule.AllFromFront() {
		table.statements = append(table.statements, moduleStatements(p, syms, table.aliases)...)
	}
	slices.SortStableFunc(table.statements, func(a, b importStatement) int {
		return cmp.Or(cmp.Compare(a.path, b.path), cmp.Compare(a.kind, b.kind), cmp.Compare(a.binding, b.binding))
	})
	return table, nil
}

func freeName(base string, taken map[string]bool, bound map[string]Symbol) string {
	for n := 2; ; n++ {
		candidate := base + strconv.Itoa(n)
		if _, ok := bound[candidate]; !ok && !taken[candidate] {
			return candidate
		}
	}
}

// moduleStatements groups the symbols imported from one module: one
// statement for all named imports, one per namespace or default binding.
func moduleStatements(p string, syms []Symbol, aliases map[Symbol]string) []importStatement {
	var out []importStatement
	named := importStatement{path: p, kind: ImportNamed}
	for _, sym := range syms {
		switch sym.Import {
		case ImportNamed:
			n := importedName{name: sym.Value}
			if local := aliases[sym]; local != sym.Value {
				n.alias = local
			}
			named.names = append(named.names, n)
		case ImportAll, ImportDefault:
			out = append(out, importStatement{path: p, kind: sym.Import, binding: aliases[sym]})
		}
	}
	if len(named.names) > 0 {
		slices.SortFunc(named.names, func(a, b importedName) int {
			return cmp.Or(cmp.Compare(a.name, b.name), cmp.Compare(a.alias, b.alias))
		})
		out = append(out, named)
	}
	return out
}

// emit writes the statement through w so the module path is escaped.
func (s importStatement) emit(w *CodeWriter) error {
	switch s.kind {
	case ImportAll:
		return w.Emit("import * as %L from %S;\n", s.binding, s.path)
	case ImportDefault:
		return w.Emit("import %L from %S;\n", s.binding, s.path)
	}
	names := make([]string, len(s.names))
	for i, n := range s.names {
		if n.alias != "" {
			names[i] = n.name + " as " + n.alias
		} else {
			names[i] = n.name
		}
	}
	return w.Emit("import {%L} from %S;\n", strings.Join(names, ", "), s.path)
}
