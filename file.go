package tspoet

import (
	"context"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/broady/tspoet/sink"
)

// FileSpec is one generated module: a header comment, imports and members.
// The module path is slash-separated, relative to the source root and has
// no extension, e.g. "generated/src/main/api/Api".
type FileSpec struct {
	modulePath string
	comment    CodeBlock
	members    []Emitter
	root       string
	indent     string
	maxColumn  int
	tags       Tags
}

func (f *FileSpec) ModulePath() string { return f.modulePath }
func (f *FileSpec) Comment() CodeBlock { return f.comment }
func (f *FileSpec) Members() []Emitter { return slices.Clone(f.members) }
func (f *FileSpec) Tags() Tags         { return f.tags.clone() }

// Path returns the output path of the file relative to the source root.
func (f *FileSpec) Path() string {
	return f.modulePath + ".ts"
}

// ToBuilder returns a builder seeded with every field of f.
func (f *FileSpec) ToBuilder() *FileBuilder {
	return &FileBuilder{
		ModulePath: f.modulePath,
		Comment:    f.comment,
		Members:    slices.Clone(f.members),
		Root:       f.root,
		Indent:     f.indent,
		MaxColumn:  f.maxColumn,
		Tags:       f.tags.clone(),
	}
}

func (f *FileSpec) writerOptions() []WriterOption {
	return []WriterOption{WithIndent(f.indent), WithMaxColumn(f.maxColumn)}
}

// Render emits the file. Emission runs twice: the first pass records every
// referenced symbol, then imports and aliases are resolved, and the second
// pass writes the final text using the resolved spellings. The result ends
// with a single newline.
func (f *FileSpec) Render() (string, error) {
	collector := NewCodeWriter(nil, f.writerOptions()...)
	if err := f.emitMembers(collector); err != nil {
		return "", errors.Wrapf(err, "file %s", f.modulePath)
	}
	table, err := resolveImports(f.root, f.modulePath, collector.References(), declaredNames(f.members))
	if err != nil {
		return "", errors.Wrapf(err, "file %s", f.modulePath)
	}

	var sb strings.Builder
	w := NewCodeWriter(&sb, append(f.writerOptions(), withAliases(table.aliases))...)
	if err := w.emitComment(f.comment); err != nil {
		return "", errors.Wrapf(err, "file %s: comment", f.modulePath)
	}
	if !f.comment.IsEmpty() {
		w.emitText("\n")
	}
	for _, s := range table.statements {
		if err := s.emit(w); err != nil {
			return "", errors.Wrapf(err, "file %s: import %s", f.modulePath, s.path)
		}
	}
	if len(table.statements) > 0 {
		w.emitText("\n")
	}
	if err := f.emitMembers(w); err != nil {
		return "", errors.Wrapf(err, "file %s", f.modulePath)
	}
	if err := w.Flush(); err != nil {
		return "", err
	}
	return strings.TrimRight(sb.String(), "\n") + "\n", nil
}

func (f *FileSpec) emitMembers(w *CodeWriter) error {
	for _, m := range f.members {
		if err := m.Emit(w); err != nil {
			return err
		}
	}
	if w.IndentLevel() != 0 {
		return templateErrorf("unbalanced indentation: level %d at end of file", w.IndentLevel())
	}
	return nil
}

// WriteToSink renders the file and writes it to s at Path. Nothing is written
// if rendering fails.
func (f *FileSpec) WriteToSink(ctx context.Context, s sink.OutputSink) error {
	content, err := f.Render()
	if err != nil {
		return err
	}
	return s.WriteFile(ctx, f.Path(), []byte(content))
}

// FileBuilder accumulates a FileSpec.
type FileBuilder struct {
	ModulePath string
	Comment    CodeBlock
	Members    []Emitter
	// Root is the source root local module paths are resolved against.
	Root      string
	Indent    string
	MaxColumn int
	Tags      Tags
}

// File starts a file for modulePath.
func File(modulePath string) *FileBuilder {
	return &FileBuilder{
		ModulePath: modulePath,
		Root:       "/",
		Indent:     DefaultIndent,
		MaxColumn:  DefaultMaxColumn,
		Tags:       Tags{},
	}
}

// AddComment appends to the header comment.
func (b *FileBuilder) AddComment(format string, args ...any) *FileBuilder {
	b.Comment = b.Comment.ToBuilder().Add(format, args...).Build()
	return b
}

// AddMember appends a top-level declaration or raw CodeBlock.
func (b *FileBuilder) AddMember(m Emitter) *FileBuilder {
	b.Members = append(b.Members, m)
	return b
}

// AddCode appends raw code.
func (b *FileBuilder) AddCode(format string, args ...any) *FileBuilder {
	return b.AddMember(CodeBlockOf(format, args...))
}

// Tag stores value under key, replacing any earlier value.
func (b *FileBuilder) Tag(key TagKey, value any) *FileBuilder {
	if b.Tags == nil {
		b.Tags = Tags{}
	}
	b.Tags[key] = value
	return b
}

// Build validates and returns the file.
func (b *FileBuilder) Build() (*FileSpec, error) {
	if err := b.validate(); err != nil {
		return nil, errors.Wrapf(err, "file %s", b.ModulePath)
	}
	indent := b.Indent
	if indent == "" {
		indent = DefaultIndent
	}
	return &FileSpec{
		modulePath: b.ModulePath,
		comment:    b.Comment,
		members:    slices.Clone(b.Members),
		root:       b.Root,
		indent:     indent,
		maxColumn:  b.MaxColumn,
		tags:       b.Tags.clone(),
	}, nil
}

func (b *FileBuilder) validate() error {
	if b.ModulePath == "" {
		return builderErrorf("file has no module path")
	}
	if strings.HasSuffix(b.ModulePath, ".ts") {
		return builderErrorf("module path %q must not have an extension", b.ModulePath)
	}
	if _, err := moduleSegments(b.Root, b.ModulePath); err != nil {
		return err
	}
	if err := b.Comment.Err(); err != nil {
		return errors.Wrap(err, "comment")
	}
	for i, m := range b.Members {
		if m == nil {
			return builderErrorf("member %d is nil", i)
		}
		if c, ok := m.(CodeBlock); ok && c.Err() != nil {
			return errors.Wrapf(c.Err(), "member %d", i)
		}
	}
	return checkUniqueNames(b.Members)
}

// MustBuild is like Build but panics on error.
func (b *FileBuilder) MustBuild() *FileSpec {
	return must(b.Build())
}
