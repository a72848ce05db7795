package tspoet

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

type partKind int

const (
	partText           partKind = iota
	partLiteral                 // %L
	partString                  // %S
	partName                    // %N
	partType                    // %T
	partIndent                  // %>
	partUnindent                // %<
	partStatementBegin          // %[
	partStatementEnd            // %]
	partWrap                    // %W
)

var placeholders = map[byte]partKind{
	'L': partLiteral,
	'S': partString,
	'N': partName,
	'T': partType,
	'>': partIndent,
	'<': partUnindent,
	'[': partStatementBegin,
	']': partStatementEnd,
	'W': partWrap,
}

func (k partKind) consumesArg() bool {
	switch k {
	case partLiteral, partString, partName, partType:
		return true
	}
	return false
}

func (k partKind) placeholder() string {
	for c, pk := range placeholders {
		if pk == k {
			return "%" + string(c)
		}
	}
	return ""
}

type formatPart struct {
	kind partKind
	text string // partText, or the identifier for partName
	arg  any    // resolved argument for partLiteral, partString, partType
}

// CodeBlock is a fragment of code built from a format string. Placeholders:
//
//	%L  literal, emitted as is (CodeBlocks and TypeNames are emitted recursively)
//	%S  string, emitted as a double-quoted literal
//	%N  name, an identifier string or anything with a Name() string method
//	%T  type, a TypeName; registers it for import
//	%%  a literal percent sign
//	%>  increase the indentation level
//	%<  decrease the indentation level
//	%[  begin a statement; wrapped lines get one extra level
//	%]  end a statement
//	%W  space, or a newline if the line would exceed the column limit
//
// Arguments are consumed in order (%L), by index (%1L) or by name
// (%name:L, see CodeBlockBuilder.AddNamed). The zero CodeBlock is empty.
type CodeBlock struct {
	parts []formatPart
	err   error
}

// CodeBlockOf builds a CodeBlock from a single format string.
func CodeBlockOf(format string, args ...any) CodeBlock {
	return NewCodeBlock().Add(format, args...).Build()
}

// IsEmpty reports whether the block has no parts.
func (c CodeBlock) IsEmpty() bool {
	return len(c.parts) == 0
}

// Err returns the template error recorded while building the block, if any.
func (c CodeBlock) Err() error {
	return c.err
}

// FormatParts returns the literal text segments and placeholders that make up
// the block, in order.
func (c CodeBlock) FormatParts() []string {
	out := make([]string, len(c.parts))
	for i, p := range c.parts {
		if p.kind == partText {
			out[i] = p.text
		} else {
			out[i] = p.kind.placeholder()
		}
	}
	return out
}

// ToBuilder returns a builder seeded with this block's parts.
func (c CodeBlock) ToBuilder() *CodeBlockBuilder {
	b := NewCodeBlock()
	b.parts = append(b.parts, c.parts...)
	b.err = c.err
	return b
}

// Emit writes the block to w, so raw code can sit among file members.
func (c CodeBlock) Emit(w *CodeWriter) error {
	return w.EmitCode(c)
}

// String renders the block without import aliasing or line wrapping.
func (c CodeBlock) String() string {
	var sb strings.Builder
	w := NewCodeWriter(&sb, WithMaxColumn(0))
	if err := w.EmitCode(c); err != nil {
		return "<" + err.Error() + ">"
	}
	if err := w.Flush(); err != nil {
		return "<" + err.Error() + ">"
	}
	return sb.String()
}

// CodeBlockBuilder accumulates a CodeBlock. The first template error is kept
// and carried by the built block; emitting that block fails with it.
type CodeBlockBuilder struct {
	parts []formatPart
	err   error
}

// NewCodeBlock returns an empty builder.
func NewCodeBlock() *CodeBlockBuilder {
	return &CodeBlockBuilder{}
}

// IsEmpty reports whether nothing has been added.
func (b *CodeBlockBuilder) IsEmpty() bool {
	return len(b.parts) == 0
}

// FormatParts returns the parts accumulated so far, see CodeBlock.FormatParts.
func (b *CodeBlockBuilder) FormatParts() []string {
	return CodeBlock{parts: b.parts}.FormatParts()
}

func (b *CodeBlockBuilder) fail(err error) *CodeBlockBuilder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// Add appends format, consuming args positionally or by index.
func (b *CodeBlockBuilder) Add(format string, args ...any) *CodeBlockBuilder {
	parts, err := parseFormat(format, args, nil)
	if err != nil {
		return b.fail(err)
	}
	b.parts = append(b.parts, parts...)
	return b
}

// AddNamed appends format, resolving %name:X placeholders against args.
// Argument names must start with a lowercase letter.
func (b *CodeBlockBuilder) AddNamed(format string, args map[string]any) *CodeBlockBuilder {
	for name := range args {
		if !isArgName(name) {
			return b.fail(templateErrorf("argument name %q must start with a lowercase letter and contain only letters, digits and '_'", name))
		}
	}
	parts, err := parseFormat(format, nil, args)
	if err != nil {
		return b.fail(err)
	}
	b.parts = append(b.parts, parts...)
	return b
}

// AddCode appends the parts of another block.
func (b *CodeBlockBuilder) AddCode(c CodeBlock) *CodeBlockBuilder {
	if c.err != nil {
		return b.fail(c.err)
	}
	b.parts = append(b.parts, c.parts...)
	return b
}

// AddStatement appends format as a single statement terminated by ";\n".
func (b *CodeBlockBuilder) AddStatement(format string, args ...any) *CodeBlockBuilder {
	b.Add("%[")
	b.Add(format, args...)
	return b.Add(";\n%]")
}

// BeginControlFlow opens a block, e.g. BeginControlFlow("if (%L)", cond).
func (b *CodeBlockBuilder) BeginControlFlow(controlFlow string, args ...any) *CodeBlockBuilder {
	b.Add(controlFlow+" {\n", args...)
	return b.Indent()
}

// NextControlFlow closes the current block and opens another, e.g. "else".
func (b *CodeBlockBuilder) NextControlFlow(controlFlow string, args ...any) *CodeBlockBuilder {
	b.Unindent()
	b.Add("} "+controlFlow+" {\n", args...)
	return b.Indent()
}

// EndControlFlow closes the current block.
func (b *CodeBlockBuilder) EndControlFlow() *CodeBlockBuilder {
	b.Unindent()
	return b.Add("}\n")
}

// Indent appends %>.
func (b *CodeBlockBuilder) Indent() *CodeBlockBuilder {
	b.parts = append(b.parts, formatPart{kind: partIndent})
	return b
}

// Unindent appends %<.
func (b *CodeBlockBuilder) Unindent() *CodeBlockBuilder {
	b.parts = append(b.parts, formatPart{kind: partUnindent})
	return b
}

// Build returns the accumulated block.
func (b *CodeBlockBuilder) Build() CodeBlock {
	parts := make([]formatPart, len(b.parts))
	copy(parts, b.parts)
	return CodeBlock{parts: parts, err: b.err}
}

// JoinCode joins blocks with separator, e.g. JoinCode(params, ", ").
func JoinCode(blocks []CodeBlock, separator string) CodeBlock {
	return JoinCodeWith(blocks, separator, "", "")
}

// JoinCodeWith joins blocks with separator, wrapped in prefix and suffix.
// Nothing is emitted for an empty list.
func JoinCodeWith(blocks []CodeBlock, separator, prefix, suffix string) CodeBlock {
	if len(blocks) == 0 {
		return CodeBlock{}
	}
	b := NewCodeBlock()
	if prefix != "" {
		b.parts = append(b.parts, formatPart{kind: partText, text: prefix})
	}
	for i, c := range blocks {
		if i > 0 {
			b.parts = append(b.parts, parseSeparator(separator)...)
		}
		b.AddCode(c)
	}
	if suffix != "" {
		b.parts = append(b.parts, formatPart{kind: partText, text: suffix})
	}
	return b.Build()
}

// parseSeparator allows separators like ",%W" to carry wrap points.
func parseSeparator(sep string) []formatPart {
	parts, err := parseFormat(sep, nil, nil)
	if err != nil {
		return []formatPart{{kind: partText, text: sep}}
	}
	return parts
}

func isArgName(s string) bool {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return false
	}
	for i := 1; i < len(s); i++ {
		c := s[i]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_') {
			return false
		}
	}
	return true
}

// parseFormat splits format into parts. Exactly one of args (positional or
// indexed) or named is used.
func parseFormat(format string, args []any, named map[string]any) ([]formatPart, error) {
	var (
		parts       []formatPart
		hasRelative bool
		hasIndexed  bool
		relative    int
		used        = make([]bool, len(args))
	)
	for p := 0; p < len(format); {
		if format[p] != '%' {
			next := strings.IndexByte(format[p:], '%')
			if next < 0 {
				next = len(format) - p
			}
			parts = append(parts, formatPart{kind: partText, text: format[p : p+next]})
			p += next
			continue
		}

		start := p
		p++
		if p >= len(format) {
			return nil, templateErrorf("dangling %% at end of format %q", format)
		}

		// Named argument: %name:X
		if named != nil && format[p] >= 'a' && format[p] <= 'z' {
			colon := strings.IndexByte(format[p:], ':')
			if colon > 0 && p+colon+1 < len(format) {
				argName := format[p : p+colon]
				c := format[p+colon+1]
				if isArgName(argName) {
					kind, ok := placeholders[c]
					if !ok || !kind.consumesArg() {
						return nil, templateErrorf("invalid placeholder %%%s:%c in format %q", argName, c, format)
					}
					arg, ok := named[argName]
					if !ok {
						return nil, templateErrorf("missing named argument for %%%s in format %q", argName, format)
					}
					part, err := newArgPart(kind, arg)
					if err != nil {
						return nil, errors.Wrapf(err, "argument %q", argName)
					}
					parts = append(parts, part)
					p += colon + 2
					continue
				}
			}
		}

		indexStart := p
		for p < len(format) && format[p] >= '0' && format[p] <= '9' {
			p++
		}
		if p >= len(format) {
			return nil, templateErrorf("dangling format characters %q in format %q", format[start:], format)
		}
		c := format[p]
		p++
		hasIndex := p-1 > indexStart

		if c == '%' {
			if hasIndex {
				return nil, templateErrorf("%%%% may not have an index in format %q", format)
			}
			parts = append(parts, formatPart{kind: partText, text: "%"})
			continue
		}
		kind, ok := placeholders[c]
		if !ok {
			return nil, templateErrorf("unknown placeholder %%%c in format %q", c, format)
		}
		if !kind.consumesArg() {
			if hasIndex {
				return nil, templateErrorf("%%%c may not have an index in format %q", c, format)
			}
			parts = append(parts, formatPart{kind: kind})
			continue
		}
		if named != nil {
			return nil, templateErrorf("positional placeholder %%%c used with named arguments in format %q", c, format)
		}

		var index int
		if hasIndex {
			n, err := strconv.Atoi(format[indexStart : p-1])
			if err != nil {
				return nil, templateErrorf("bad index in format %q: %v", format, err)
			}
			index = n - 1
			hasIndexed = true
		} else {
			index = relative
			relative++
			hasRelative = true
		}
		if hasIndexed && hasRelative {
			return nil, templateErrorf("cannot mix indexed and positional arguments in format %q", format)
		}
		if index < 0 || index >= len(args) {
			if hasIndex {
				return nil, templateErrorf("index %d for %%%c not in range (received %d arguments) in format %q", index+1, c, len(args), format)
			}
			return nil, templateErrorf("not enough arguments for %%%c at position %d (received %d arguments) in format %q", c, index, len(args), format)
		}
		used[index] = true
		part, err := newArgPart(kind, args[index])
		if err != nil {
			return nil, errors.Wrapf(err, "argument %d", index)
		}
		parts = append(parts, part)
	}

	if hasRelative && relative < len(args) {
		return nil, templateErrorf("unused arguments: expected %d, received %d in format %q", relative, len(args), format)
	}
	if hasIndexed {
		var unused []string
		for i, u := range used {
			if !u {
				unused = append(unused, "%"+strconv.Itoa(i+1))
			}
		}
		if len(unused) > 0 {
			return nil, templateErrorf("unused argument(s) %s in format %q", strings.Join(unused, ", "), format)
		}
	}
	if !hasRelative && !hasIndexed && len(args) > 0 {
		return nil, templateErrorf("unused arguments: expected 0, received %d in format %q", len(args), format)
	}
	return parts, nil
}

// Nameable is implemented by specs so they can be passed to %N.
type Nameable interface {
	Name() string
}

func newArgPart(kind partKind, arg any) (formatPart, error) {
	switch kind {
	case partName:
		var name string
		switch v := arg.(type) {
		case string:
			name = v
		case Nameable:
			name = v.Name()
		default:
			return formatPart{}, templateErrorf("expected name but was %T", arg)
		}
		if !IsValidIdentifier(name) {
			return formatPart{}, templateErrorf("%q is not a valid identifier", name)
		}
		return formatPart{kind: partName, text: name}, nil
	case partType:
		t, ok := arg.(TypeName)
		if !ok || t == nil {
			return formatPart{}, templateErrorf("expected type but was %T", arg)
		}
		return formatPart{kind: partType, arg: t}, nil
	case partString:
		switch v := arg.(type) {
		case nil, string:
			return formatPart{kind: partString, arg: v}, nil
		case fmt.Stringer:
			return formatPart{kind: partString, arg: v.String()}, nil
		default:
			return formatPart{kind: partString, arg: fmt.Sprint(v)}, nil
		}
	default:
		return formatPart{kind: partLiteral, arg: arg}, nil
	}
}

// stringLiteral quotes s as a double-quoted TypeScript string.
func stringLiteral(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\u2028':
			b.WriteString(`\u2028`)
		case '\u2029':
			b.WriteString(`\u2029`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\u%04x`, r)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
