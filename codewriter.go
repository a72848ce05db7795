package tspoet

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/elliotchance/orderedmap/v3"
)

// DefaultIndent is the indentation unit for one nesting level.
const DefaultIndent = "  "

// DefaultMaxColumn is the column at which %W wrap points break lines.
const DefaultMaxColumn = 100

// Emitter is implemented by every declaration spec.
type Emitter interface {
	Emit(w *CodeWriter) error
}

// WriterOption configures a CodeWriter.
type WriterOption func(*CodeWriter)

// WithIndent sets the indentation unit.
func WithIndent(unit string) WriterOption {
	return func(w *CodeWriter) { w.indent = unit }
}

// WithMaxColumn sets the wrapping column. Zero disables wrapping.
func WithMaxColumn(n int) WriterOption {
	return func(w *CodeWriter) { w.maxColumn = n }
}

// withAliases makes the writer spell imported symbols with their resolved
// local names.
func withAliases(aliases map[Symbol]string) WriterOption {
	return func(w *CodeWriter) { w.aliases = aliases }
}

// CodeWriter turns CodeBlocks into indented, wrapped text. Output is
// buffered in memory and only reaches the underlying io.Writer on Flush,
// so a failed emission never leaves partial output behind.
//
// A CodeWriter records every symbol referenced through %T; FileSpec uses the
// registry to compute imports. A CodeWriter must not be shared between
// goroutines.
type CodeWriter struct {
	out       io.Writer
	indent    string
	maxColumn int
	aliases   map[Symbol]string

	buf     strings.Builder
	wrapper *lineWrapper

	indentLevel     int
	doc             bool
	comment         bool
	trailingNewline bool
	statementLine   int

	refs *orderedmap.OrderedMap[Symbol, struct{}]
}

// NewCodeWriter returns a writer that flushes to out.
func NewCodeWriter(out io.Writer, opts ...WriterOption) *CodeWriter {
	w := &CodeWriter{
		out:             out,
		indent:          DefaultIndent,
		maxColumn:       DefaultMaxColumn,
		trailingNewline: true,
		statementLine:   -1,
		refs:            orderedmap.NewOrderedMap[Symbol, struct{}](),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.wrapper = newLineWrapper(&w.buf, w.indent, w.maxColumn)
	return w
}

// Emit formats and emits a single CodeBlock.
func (w *CodeWriter) Emit(format string, args ...any) error {
	return w.EmitCode(CodeBlockOf(format, args...))
}

// EmitCode emits c.
func (w *CodeWriter) EmitCode(c CodeBlock) error {
	if c.err != nil {
		return c.err
	}
	for i, part := range c.parts {
		if err := w.emitPart(part); err != nil {
			if part.kind == partText {
				return err
			}
			return errors.Wrapf(err, "%s at part %d", part.kind.placeholder(), i)
		}
	}
	return nil
}

func (w *CodeWriter) emitPart(part formatPart) error {
	switch part.kind {
	case partText:
		w.emitText(part.text)
	case partLiteral:
		return w.emitLiteral(part.arg)
	case partString:
		if part.arg == nil {
			w.emitText("null")
		} else {
			w.emitText(stringLiteral(part.arg.(string)))
		}
	case partName:
		w.emitText(part.text)
	case partType:
		return w.emitType(part.arg.(TypeName))
	case partIndent:
		w.Indent()
	case partUnindent:
		return w.Unindent()
	case partStatementBegin:
		if w.statementLine != -1 {
			return templateErrorf("statement enter %%[ followed by statement enter %%[")
		}
		w.statementLine = 0
	case partStatementEnd:
		if w.statementLine == -1 {
			return templateErrorf("statement exit %%] has no matching statement enter %%[")
		}
		if w.statementLine > 0 {
			w.indentLevel--
		}
		w.statementLine = -1
	case partWrap:
		level := w.indentLevel
		if w.statementLine >= 0 {
			level++
		}
		w.wrapper.wrappingSpace(level)
	}
	return nil
}

func (w *CodeWriter) emitLiteral(arg any) error {
	switch v := arg.(type) {
	case nil:
		w.emitText("null")
	case CodeBlock:
		return w.EmitCode(v)
	case *CodeBlock:
		return w.EmitCode(*v)
	case TypeName:
		return w.emitType(v)
	case Emitter:
		return v.Emit(w)
	case string:
		w.emitText(v)
	default:
		w.emitText(fmt.Sprint(v))
	}
	return nil
}

// Indent increases the indentation level by one.
func (w *CodeWriter) Indent() {
	w.indentLevel++
}

// Unindent decreases the indentation level by one. Unindenting past zero is
// a template error.
func (w *CodeWriter) Unindent() error {
	if w.indentLevel <= 0 {
		return templateErrorf("cannot unindent below level zero")
	}
	w.indentLevel--
	return nil
}

// IndentLevel returns the current nesting depth.
func (w *CodeWriter) IndentLevel() int {
	return w.indentLevel
}

// References returns the symbols referenced so far, in first-seen order.
func (w *CodeWriter) References() []Symbol {
	return slices.Collect(w.refs.Keys())
}

// Flush writes the buffered text to the underlying writer.
func (w *CodeWriter) Flush() error {
	w.wrapper.close()
	if w.out == nil {
		w.buf.Reset()
		return nil
	}
	if _, err := io.WriteString(w.out, w.buf.String()); err != nil {
		return errors.Wrap(err, "flush generated code")
	}
	w.buf.Reset()
	return nil
}

// emitText writes literal text, indenting each new line and prefixing doc
// and comment lines.
func (w *CodeWriter) emitText(s string) {
	first := true
	for _, line := range strings.Split(s, "\n") {
		if !first {
			if (w.doc || w.comment) && w.trailingNewline {
				w.emitIndentation()
				if w.doc {
					w.wrapper.append(" *")
				} else {
					w.wrapper.append("//")
				}
			}
			w.wrapper.append("\n")
			w.trailingNewline = true
			if w.statementLine != -1 {
				if w.statementLine == 0 {
					w.indentLevel++
				}
				w.statementLine++
			}
		}
		first = false
		if line == "" {
			continue
		}
		if w.trailingNewline {
			w.emitIndentation()
			switch {
			case w.doc:
				w.wrapper.append(" * ")
			case w.comment:
				w.wrapper.append("// ")
			}
		}
		w.wrapper.append(line)
		w.trailingNewline = false
	}
}

func (w *CodeWriter) emitIndentation() {
	for i := 0; i < w.indentLevel; i++ {
		w.wrapper.append(w.indent)
	}
}

func (w *CodeWriter) emitType(t TypeName) error {
	if err := w.registerAll(t); err != nil {
		return err
	}
	w.emitText(renderType(t, w.spell))
	return nil
}

func (w *CodeWriter) register(n *NamedType) error {
	if n.name == "" {
		return templateErrorf("type name is empty")
	}
	if !w.refs.Has(n.symbol) {
		w.refs.Set(n.symbol, struct{}{})
	}
	return nil
}

// spell returns the use-site spelling of n after import aliasing.
func (w *CodeWriter) spell(n *NamedType) string {
	alias, ok := w.aliases[n.symbol]
	if !ok || alias == n.symbol.Value {
		return n.name
	}
	rest, found := strings.CutPrefix(n.name, n.symbol.Value)
	if !found || (rest != "" && rest[0] != '.') {
		return n.name
	}
	return alias + rest
}

// emitDoc writes doc as a /** ... */ block.
func (w *CodeWriter) emitDoc(doc CodeBlock) error {
	if doc.IsEmpty() {
		return nil
	}
	w.emitText("/**\n")
	w.doc = true
	err := w.EmitCode(doc)
	if err == nil && !w.trailingNewline {
		w.emitText("\n")
	}
	w.doc = false
	if err != nil {
		return errors.Wrap(err, "doc")
	}
	w.emitText(" */\n")
	return nil
}

// emitComment writes c as // line comments.
func (w *CodeWriter) emitComment(c CodeBlock) error {
	if c.IsEmpty() {
		return nil
	}
	w.comment = true
	err := w.EmitCode(c)
	if err == nil && !w.trailingNewline {
		w.emitText("\n")
	}
	w.comment = false
	return err
}

func (w *CodeWriter) emitModifiers(mods []Modifier, implicit ...Modifier) {
	w.emitText(RenderModifiers(mods, implicit...))
}

func (w *CodeWriter) emitTypeVariables(tvs []*TypeVariable) error {
	if len(tvs) == 0 {
		return nil
	}
	w.emitText("<")
	for i, tv := range tvs {
		if i > 0 {
			w.emitText(", ")
		}
		for _, bd := range tv.bounds {
			if err := w.registerAll(bd.Type); err != nil {
				return errors.Wrapf(err, "type variable %s", tv.name)
			}
		}
		w.emitText(renderTypeVariable(tv, w.spell))
	}
	w.emitText(">")
	return nil
}

func (w *CodeWriter) registerAll(t TypeName) error {
	var err error
	walkType(t, func(n *NamedType) {
		if err == nil {
			err = w.register(n)
		}
	})
	return err
}

func (w *CodeWriter) emitDecorators(decorators []*DecoratorSpec, inline bool) error {
	for _, d := range decorators {
		if err := w.EmitCode(d.code(inline)); err != nil {
			return errors.Wrapf(err, "decorator %s", d.Name())
		}
		if inline {
			w.emitText(" ")
		} else {
			w.emitText("\n")
		}
	}
	return nil
}

// Render emits e into a fresh CodeWriter and returns the text. Imports are
// not resolved; use FileSpec for complete files.
func Render(e Emitter, opts ...WriterOption) (string, error) {
	var sb strings.Builder
	w := NewCodeWriter(&sb, opts...)
	if err := e.Emit(w); err != nil {
		return "", err
	}
	if err := w.Flush(); err != nil {
		return "", err
	}
	return sb.String(), nil
}
