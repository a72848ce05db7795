package tspoet

import (
	"unicode"
)

// reservedWords cannot be used as declaration names (interfaces, classes,
// enums, type aliases, functions). Property and method names may use them.
var reservedWords = map[string]bool{
	"break":      true,
	"case":       true,
	"catch":      true,
	"class":      true,
	"const":      true,
	"continue":   true,
	"debugger":   true,
	"default":    true,
	"delete":     true,
	"do":         true,
	"else":       true,
	"enum":       true,
	"export":     true,
	"extends":    true,
	"false":      true,
	"finally":    true,
	"for":        true,
	"function":   true,
	"if":         true,
	"import":     true,
	"in":         true,
	"instanceof": true,
	"new":        true,
	"null":       true,
	"return":     true,
	"super":      true,
	"switch":     true,
	"this":       true,
	"throw":      true,
	"true":       true,
	"try":        true,
	"typeof":     true,
	"var":        true,
	"void":       true,
	"while":      true,
	"with":       true,
}

// IsValidIdentifier reports whether name is syntactically a TypeScript
// identifier: a letter, '_' or '$' followed by letters, digits, '_' or '$'.
func IsValidIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_' || r == '$' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}

// IsReservedWord reports whether name is a reserved word.
func IsReservedWord(name string) bool {
	return reservedWords[name]
}

// needsQuoting reports whether a property name must be written as a string
// literal.
func needsQuoting(name string) bool {
	return !IsValidIdentifier(name)
}

// checkDeclarationName validates the name of a top-level declaration.
func checkDeclarationName(kind, name string) error {
	if !IsValidIdentifier(name) {
		return builderErrorf("%s name %q is not a valid identifier", kind, name)
	}
	if reservedWords[name] {
		return builderErrorf("%s name %q is a reserved word", kind, name)
	}
	return nil
}
