package gosource

import (
	"go/ast"
	"go/token"
	"reflect"
	"slices"
	"strings"
)

// collectDocs indexes the doc comments of type specs, struct fields and
// constants by the position of the declared name, which is the Pos of the
// corresponding types.Object.
func collectDocs(files []*ast.File) map[token.Pos]string {
	docs := make(map[token.Pos]string)
	add := func(name *ast.Ident, groups ...*ast.CommentGroup) {
		for _, cg := range groups {
			if text := formatDoc(cg); text != "" {
				docs[name.Pos()] = text
				return
			}
		}
	}
	for _, file := range files {
		ast.Inspect(file, func(n ast.Node) bool {
			switch n := n.(type) {
			case *ast.GenDecl:
				for _, spec := range n.Specs {
					switch s := spec.(type) {
					case *ast.TypeSpec:
						if len(n.Specs) == 1 {
							add(s.Name, s.Doc, n.Doc)
						} else {
							add(s.Name, s.Doc)
						}
					case *ast.ValueSpec:
						for _, name := range s.Names {
							add(name, s.Doc, s.Comment)
						}
					}
				}
			case *ast.Field:
				for _, name := range n.Names {
					add(name, n.Doc, n.Comment)
				}
			}
			return true
		})
	}
	return docs
}

// formatDoc returns the text of a Go doc comment as JSDoc text. A
// "Deprecated:" paragraph becomes a @deprecated tag.
func formatDoc(cg *ast.CommentGroup) string {
	if cg == nil {
		return ""
	}
	lines := strings.Split(strings.TrimSpace(cg.Text()), "\n")
	if i := slices.IndexFunc(lines, func(l string) bool { return strings.HasPrefix(l, "Deprecated:") }); i >= 0 {
		msg := strings.TrimSpace(strings.TrimPrefix(lines[i], "Deprecated:"))
		lines[i] = strings.TrimSpace("@deprecated " + msg)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// jsonTag is a parsed `json:"..."` struct tag.
type jsonTag struct {
	name      string
	skip      bool
	omitEmpty bool
	asString  bool
}

func parseJSONTag(tag string) jsonTag {
	value, ok := reflect.StructTag(tag).Lookup("json")
	if !ok {
		return jsonTag{}
	}
	if value == "-" {
		return jsonTag{skip: true}
	}
	name, opts, _ := strings.Cut(value, ",")
	t := jsonTag{name: name}
	for opt := range strings.SplitSeq(opts, ",") {
		switch opt {
		case "omitempty", "omitzero":
			t.omitEmpty = true
		case "string":
			t.asString = true
		}
	}
	return t
}
