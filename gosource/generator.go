package gosource

import (
	"context"
	"log/slog"
	"maps"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/broady/tspoet"
	"github.com/broady/tspoet/config"
	"github.com/broady/tspoet/sink"
)

// Generator provides a fluent API for generation.
// Create with FromPackages and configure with method chaining.
//
// Example:
//
//	res, err := gosource.FromPackages("./api/...").
//	    WithConfig(cfg).
//	    ToSink(ctx, sink.NewFilesystemSink("./web/src/gen"))
type Generator struct {
	packages []string
	dir      string
	cfg      *config.Config
	logger   *slog.Logger
}

// FromPackages creates a Generator for the given Go package patterns. When
// no patterns are given the config's Packages are used.
func FromPackages(patterns ...string) *Generator {
	return &Generator{packages: slices.Clone(patterns)}
}

// WithConfig sets the configuration. The Generator keeps its own copy.
func (g *Generator) WithConfig(cfg *config.Config) *Generator {
	c := *cfg
	c.Packages = slices.Clone(cfg.Packages)
	c.TypeMappings = maps.Clone(cfg.TypeMappings)
	g.cfg = &c
	return g
}

// Dir sets the directory package patterns are resolved in.
func (g *Generator) Dir(dir string) *Generator {
	g.dir = dir
	return g
}

// Logger sets the logger for per-declaration logs and warnings.
func (g *Generator) Logger(l *slog.Logger) *Generator {
	g.logger = l
	return g
}

// TypeMapping maps a qualified Go type to a TypeScript type in symbol
// notation, e.g. TypeMapping("github.com/google/uuid.UUID", "string").
func (g *Generator) TypeMapping(goType, tsType string) *Generator {
	cfg := g.config()
	if cfg.TypeMappings == nil {
		cfg.TypeMappings = make(map[string]string)
	}
	cfg.TypeMappings[goType] = tsType
	return g
}

func (g *Generator) config() *config.Config {
	if g.cfg == nil {
		g.cfg = config.Default()
	}
	return g.cfg
}

func (g *Generator) log() *slog.Logger {
	if g.logger == nil {
		return slog.Default()
	}
	return g.logger
}

// Generate loads the packages and returns the converted files without
// rendering them.
func (g *Generator) Generate(ctx context.Context) (*Result, error) {
	cfg := g.config()
	patterns := g.packages
	if len(patterns) == 0 {
		patterns = cfg.Packages
	}
	return Load(ctx, Options{
		Packages: patterns,
		Dir:      g.dir,
		Config:   cfg,
		Logger:   g.log(),
	})
}

// ToSink generates and writes every file to s. Nothing is written unless
// every file renders.
func (g *Generator) ToSink(ctx context.Context, s sink.OutputSink) (*Result, error) {
	res, err := g.Generate(ctx)
	if err != nil {
		return nil, err
	}
	if err := WriteFiles(ctx, res.Files, s); err != nil {
		return nil, err
	}
	g.log().Info("generated", "files", len(res.Files), "warnings", len(res.Warnings))
	return res, nil
}

// ToDir generates files below dir.
func (g *Generator) ToDir(ctx context.Context, dir string) (*Result, error) {
	return g.ToSink(ctx, sink.NewFilesystemSink(dir))
}

// WriteFiles renders files concurrently and then writes them to s. If any
// file fails to render, nothing is written and the first error is returned.
func WriteFiles(ctx context.Context, files []*tspoet.FileSpec, s sink.OutputSink) error {
	rendered := make([]string, len(files))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i, f := range files {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			content, err := f.Render()
			if err != nil {
				return err
			}
			rendered[i] = content
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	eg, egCtx = errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i, f := range files {
		eg.Go(func() error {
			return s.WriteFile(egCtx, f.Path(), []byte(rendered[i]))
		})
	}
	return eg.Wait()
}
