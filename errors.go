package tspoet

import (
	"github.com/cockroachdb/errors"
)

// Error classes. Every error returned by this package is marked with exactly
// one of these, so callers can branch with errors.Is without parsing messages.
var (
	// ErrTemplate marks malformed CodeBlocks: placeholder/argument count
	// mismatches, unknown placeholders, invalid identifiers passed to %N,
	// unbalanced indentation or statement markers.
	ErrTemplate = errors.New("template error")

	// ErrResolution marks failures computing imports: module paths that
	// escape the source root or symbols with an empty module.
	ErrResolution = errors.New("import resolution error")

	// ErrBuilder marks declarations rejected at Build time, such as duplicate
	// member names or a second callable signature.
	ErrBuilder = errors.New("invalid declaration")
)

func templateErrorf(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrTemplate)
}

func resolutionErrorf(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrResolution)
}

func builderErrorf(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrBuilder)
}

// builderErrors accumulates the first misuse of a builder so that chained
// calls stay fluent and the failure surfaces from Build.
type builderErrors struct {
	err error
}

func (b *builderErrors) fail(err error) {
	if b.err == nil && err != nil {
		b.err = err
	}
}

func (b *builderErrors) failf(format string, args ...any) {
	b.fail(builderErrorf(format, args...))
}
