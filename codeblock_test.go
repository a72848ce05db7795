package tspoet

import (
	"slices"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
)

func TestCodeBlock_Placeholders(t *testing.T) {
	tests := []struct {
		name string
		code CodeBlock
		want string
	}{
		{name: "literal", code: CodeBlockOf("x = %L;", 42), want: "x = 42;"},
		{name: "string", code: CodeBlockOf("x = %S;", "a\"b\\c\nd"), want: `x = "a\"b\\c\nd";`},
		{name: "string control chars", code: CodeBlockOf("%S", "\t\x01\u2028\u2029"), want: `"\t\u0001\u2028\u2029"`},
		{name: "null string", code: CodeBlockOf("%S", nil), want: "null"},
		{name: "name", code: CodeBlockOf("let %N", "value"), want: "let value"},
		{name: "name from spec", code: CodeBlockOf("%N()", Function("run").MustBuild()), want: "run()"},
		{name: "type", code: CodeBlockOf("let x: %T", Parameterized(TypeNameOf("Observable@rxjs"), String)), want: "let x: Observable<string>"},
		{name: "literal code block", code: CodeBlockOf("[%L]", CodeBlockOf("%S", "a")), want: `["a"]`},
		{name: "literal type", code: CodeBlockOf("%L", Number), want: "number"},
		{name: "literal nil", code: CodeBlockOf("%L", nil), want: "null"},
		{name: "percent", code: CodeBlockOf("100%%"), want: "100%"},
		{name: "indexed", code: CodeBlockOf("%2L %1L %2L", "a", "b"), want: "b a b"},
		{name: "indent", code: CodeBlockOf("{\n%>a;\n%<}\n"), want: "{\n  a;\n}\n"},
		{name: "named", code: NewCodeBlock().AddNamed("%name:N: %type:T = %value:L", map[string]any{
			"name":  "count",
			"type":  Number,
			"value": 0,
		}).Build(), want: "count: number = 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.code.Err(); err != nil {
				t.Fatalf("Err() = %v", err)
			}
			if got := tt.code.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCodeBlock_TemplateErrors(t *testing.T) {
	tests := []struct {
		name    string
		code    CodeBlock
		errText string
	}{
		{name: "too few arguments", code: CodeBlockOf("%L %L", 1), errText: "not enough arguments"},
		{name: "too many arguments", code: CodeBlockOf("%L", 1, 2), errText: "unused arguments"},
		{name: "arguments without placeholders", code: CodeBlockOf("x", 1), errText: "unused arguments"},
		{name: "unknown placeholder", code: CodeBlockOf("%Q", 1), errText: "unknown placeholder %Q"},
		{name: "dangling percent", code: CodeBlockOf("50%"), errText: "dangling"},
		{name: "mixed styles", code: CodeBlockOf("%1L %L", 1, 2), errText: "cannot mix"},
		{name: "index out of range", code: CodeBlockOf("%3L", 1), errText: "index 3"},
		{name: "unused indexed argument", code: CodeBlockOf("%1L", 1, 2), errText: "unused argument(s) %2"},
		{name: "index on control placeholder", code: CodeBlockOf("%1>"), errText: "may not have an index"},
		{name: "invalid identifier", code: CodeBlockOf("%N", "1abc"), errText: "not a valid identifier"},
		{name: "name of wrong type", code: CodeBlockOf("%N", 7), errText: "expected name"},
		{name: "type of wrong type", code: CodeBlockOf("%T", "string"), errText: "expected type"},
		{name: "nil type", code: CodeBlockOf("%T", nil), errText: "expected type"},
		{name: "missing named argument", code: NewCodeBlock().AddNamed("%missing:L", map[string]any{}).Build(), errText: "missing named argument"},
		{name: "bad argument name", code: NewCodeBlock().AddNamed("%Bad:L", map[string]any{"Bad": 1}).Build(), errText: "must start with a lowercase letter"},
		{name: "positional with named", code: NewCodeBlock().AddNamed("%L", map[string]any{"a": 1}).Build(), errText: "positional placeholder"},
		{name: "first error sticks", code: NewCodeBlock().Add("%L").Add("ok").Build(), errText: "not enough arguments"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.code.Err()
			if err == nil {
				t.Fatal("Err() = nil, want template error")
			}
			if !errors.Is(err, ErrTemplate) {
				t.Errorf("Err() = %v, want ErrTemplate", err)
			}
			if !strings.Contains(err.Error(), tt.errText) {
				t.Errorf("Err() = %q, want it to contain %q", err, tt.errText)
			}
			if err := NewCodeWriter(nil).EmitCode(tt.code); !errors.Is(err, ErrTemplate) {
				t.Errorf("EmitCode() = %v, want ErrTemplate", err)
			}
		})
	}
}

func TestCodeBlock_FormatParts(t *testing.T) {
	tests := []struct {
		code CodeBlock
		want []string
	}{
		{code: CodeBlockOf("this is a comment\n"), want: []string{"this is a comment\n"}},
		{code: CodeBlockOf("a %L b", 1), want: []string{"a ", "%L", " b"}},
		{code: CodeBlockOf("%[%T%W%S%]", String, "x"), want: []string{"%[", "%T", "%W", "%S", "%]"}},
		{code: CodeBlock{}, want: []string{}},
	}
	for _, tt := range tests {
		if got := tt.code.FormatParts(); !slices.Equal(got, tt.want) {
			t.Errorf("FormatParts() = %q, want %q", got, tt.want)
		}
	}
}

func TestCodeBlock_ControlFlow(t *testing.T) {
	code := NewCodeBlock().
		BeginControlFlow("if (%L)", "ready").
		AddStatement("return %L", 1).
		NextControlFlow("else").
		AddStatement("return %L", 2).
		EndControlFlow().
		Build()
	want := "if (ready) {\n  return 1;\n} else {\n  return 2;\n}\n"
	if got := code.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestCodeBlock_Builder(t *testing.T) {
	b := NewCodeBlock()
	if !b.IsEmpty() {
		t.Error("new builder is not empty")
	}
	b.Add("a")
	c := b.Build()
	b.Add("b")
	if got := c.String(); got != "a" {
		t.Errorf("built block changed after builder mutation: %q", got)
	}
	if got := c.ToBuilder().Add("c").Build().String(); got != "ac" {
		t.Errorf("ToBuilder().Add() = %q, want %q", got, "ac")
	}
	if got := c.String(); got != "a" {
		t.Errorf("ToBuilder mutated the original: %q", got)
	}
}

func TestJoinCode(t *testing.T) {
	blocks := []CodeBlock{CodeBlockOf("%S", "a"), CodeBlockOf("%L", 2), CodeBlockOf("%T", Boolean)}
	if got := JoinCode(blocks, ", ").String(); got != `"a", 2, boolean` {
		t.Errorf("JoinCode() = %q", got)
	}
	if got := JoinCodeWith(blocks, ", ", "[", "]").String(); got != `["a", 2, boolean]` {
		t.Errorf("JoinCodeWith() = %q", got)
	}
	if got := JoinCodeWith(nil, ", ", "[", "]"); !got.IsEmpty() {
		t.Errorf("JoinCodeWith(nil) = %q, want empty", got.String())
	}
	if got := JoinCode(blocks, ",%W").FormatParts(); !slices.Contains(got, "%W") {
		t.Errorf("JoinCode separator wrap point lost: %q", got)
	}
}
