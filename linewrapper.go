package tspoet

import (
	"strings"
	"unicode/utf8"
)

type flushType int

const (
	flushNone  flushType = iota
	flushWrap            // newline followed by indentation
	flushSpace           // a single space
)

// lineWrapper appends text to out, deferring each wrapping space until the
// text that follows it is known. If that text would run past columnLimit,
// the space becomes a newline plus indentation. A columnLimit of zero or
// less disables wrapping.
type lineWrapper struct {
	out         *strings.Builder
	indent      string
	columnLimit int

	pending     strings.Builder
	column      int
	indentLevel int
	next        flushType
}

func newLineWrapper(out *strings.Builder, indent string, columnLimit int) *lineWrapper {
	return &lineWrapper{out: out, indent: indent, columnLimit: columnLimit, indentLevel: -1}
}

func (lw *lineWrapper) append(s string) {
	if s == "" {
		return
	}
	if lw.next != flushNone {
		nl := strings.IndexByte(s, '\n')
		if nl < 0 && (lw.columnLimit <= 0 || lw.column+width(s) <= lw.columnLimit) {
			lw.pending.WriteString(s)
			lw.column += width(s)
			return
		}
		wrap := lw.columnLimit > 0 && (nl < 0 || lw.column+width(s[:nl]) > lw.columnLimit)
		if wrap {
			lw.flush(flushWrap)
		} else {
			lw.flush(lw.next)
		}
	}

	lw.out.WriteString(s)
	if nl := strings.LastIndexByte(s, '\n'); nl >= 0 {
		lw.column = width(s[nl+1:])
	} else {
		lw.column += width(s)
	}
}

// wrappingSpace emits a space, or a newline indented to indentLevel if the
// following text does not fit.
func (lw *lineWrapper) wrappingSpace(indentLevel int) {
	if lw.next != flushNone {
		lw.flush(lw.next)
	}
	// The space is counted now even though it is written by flush.
	lw.column++
	lw.next = flushSpace
	lw.indentLevel = indentLevel
}

func (lw *lineWrapper) flush(t flushType) {
	switch t {
	case flushWrap:
		lw.out.WriteByte('\n')
		for i := 0; i < lw.indentLevel; i++ {
			lw.out.WriteString(lw.indent)
		}
		lw.column = lw.indentLevel*width(lw.indent) + width(lw.pending.String())
	case flushSpace:
		lw.out.WriteByte(' ')
	}
	lw.out.WriteString(lw.pending.String())
	lw.pending.Reset()
	lw.indentLevel = -1
	lw.next = flushNone
}

func (lw *lineWrapper) close() {
	if lw.next != flushNone {
		lw.flush(lw.next)
	}
}

func width(s string) int {
	return utf8.RuneCountInString(s)
}
