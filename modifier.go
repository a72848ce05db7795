package tspoet

import (
	"slices"
	"strconv"
	"strings"
)

// Modifier is a declaration keyword that precedes a declaration.
// The numeric order of the constants is the canonical rendering order.
type Modifier int

const (
	Export Modifier = iota
	Declare
	Default
	Public
	Protected
	Private
	Abstract
	Static
	Readonly
	Const
	Let
	Var
	Get
	Set
	Async
)

var modifierKeywords = [...]string{
	Export:    "export",
	Declare:   "declare",
	Default:   "default",
	Public:    "public",
	Protected: "protected",
	Private:   "private",
	Abstract:  "abstract",
	Static:    "static",
	Readonly:  "readonly",
	Const:     "const",
	Let:       "let",
	Var:       "var",
	Get:       "get",
	Set:       "set",
	Async:     "async",
}

// String returns the TypeScript keyword.
func (m Modifier) String() string {
	if m < 0 || int(m) >= len(modifierKeywords) {
		return "modifier(" + strconv.Itoa(int(m)) + ")"
	}
	return modifierKeywords[m]
}

// ParseModifier returns the modifier for a keyword.
func ParseModifier(keyword string) (Modifier, bool) {
	for i, kw := range modifierKeywords {
		if kw == keyword {
			return Modifier(i), true
		}
	}
	return 0, false
}

// addModifiers appends mods to set, skipping ones already present. The set
// keeps insertion order; rendering is always canonical.
func addModifiers(set []Modifier, mods ...Modifier) []Modifier {
	for _, m := range mods {
		if !slices.Contains(set, m) {
			set = append(set, m)
		}
	}
	return set
}

// canonicalModifiers returns mods minus implicit, in canonical order.
func canonicalModifiers(mods []Modifier, implicit ...Modifier) []Modifier {
	out := make([]Modifier, 0, len(mods))
	for _, m := range mods {
		if slices.Contains(implicit, m) || slices.Contains(out, m) {
			continue
		}
		out = append(out, m)
	}
	slices.Sort(out)
	return out
}

// RenderModifiers renders mods in canonical order, each followed by a space.
func RenderModifiers(mods []Modifier, implicit ...Modifier) string {
	var b strings.Builder
	for _, m := range canonicalModifiers(mods, implicit...) {
		b.WriteString(m.String())
		b.WriteByte(' ')
	}
	return b.String()
}
