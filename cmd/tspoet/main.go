package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
	"github.com/cockroachdb/errors"

	"github.com/broady/tspoet/config"
	"github.com/broady/tspoet/gosource"
	"github.com/broady/tspoet/sink"
)

type CLI struct {
	Verbose bool `help:"Log every converted declaration." short:"v"`

	Version VersionCmd `cmd:"" help:"Print version information."`
	Gen     GenCmd     `cmd:"" help:"Generate TypeScript declarations from Go packages."`
	Check   CheckCmd   `cmd:"" help:"Report generated files that are missing or out of date."`
}

// env is bound into every command's Run method.
type env struct {
	ctx    context.Context
	logger *slog.Logger
	stdout io.Writer
}

type VersionCmd struct{}

func (c *VersionCmd) Run(e *env) error {
	fmt.Fprintln(e.stdout, Version())
	return nil
}

// SourceFlags are shared by gen and check.
type SourceFlags struct {
	Packages []string `arg:"" optional:"" help:"Go package patterns (default: packages from the config file)."`
	Config   string   `help:"Config file (.yaml, .yml or .toml)." short:"c" type:"path"`
	Options  []string `help:"Override a config key, e.g. -o max_column=80." short:"o" name:"option" sep:"none" placeholder:"KEY=VALUE"`
	Out      string   `help:"Output directory (default: out_dir from the config file, else the current directory)." short:"d" type:"path"`
}

// config assembles the configuration: defaults, then the config file, then
// -o overrides, then arguments.
func (f *SourceFlags) config() (*config.Config, error) {
	cfg := config.Default()
	if f.Config != "" {
		loaded, err := config.Load(f.Config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := cfg.ApplyOverrides(f.Options); err != nil {
		return nil, err
	}
	if len(f.Packages) > 0 {
		cfg.Packages = f.Packages
	}
	if f.Out != "" {
		cfg.OutDir = f.Out
	}
	if cfg.OutDir == "" {
		cfg.OutDir = "."
	}
	if len(cfg.Packages) == 0 {
		return nil, errors.WithHint(
			errors.New("no packages to generate"),
			"pass package patterns or set packages in the config file")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

type GenCmd struct {
	SourceFlags `embed:""`
}

func (c *GenCmd) Run(e *env) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}
	res, err := gosource.FromPackages().
		WithConfig(cfg).
		Logger(e.logger).
		ToDir(e.ctx, cfg.OutDir)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "wrote %d files to %s\n", len(res.Files), cfg.OutDir)
	return nil
}

type CheckCmd struct {
	SourceFlags `embed:""`
}

func (c *CheckCmd) Run(e *env) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}
	s := sink.NewCheckSink(cfg.OutDir)
	res, err := gosource.FromPackages().
		WithConfig(cfg).
		Logger(e.logger).
		ToSink(e.ctx, s)
	if err != nil {
		return err
	}
	if stale := s.Stale(); len(stale) > 0 {
		for _, p := range stale {
			fmt.Fprintln(e.stdout, p)
		}
		return errors.WithHint(
			errors.Newf("%d of %d generated files are out of date", len(stale), len(res.Files)),
			"run tspoet gen")
	}
	fmt.Fprintf(e.stdout, "%d files up to date\n", len(res.Files))
	return nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("tspoet"),
		kong.Description("Generate TypeScript declarations from Go types."),
		kong.Writers(stdout, stderr),
	)
	if err != nil {
		return err
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	return unjoin(kctx.Run(&env{ctx: ctx, logger: logger, stdout: stdout}))
}

// unjoin returns the only error inside a joined error so hints and marks
// stay reachable.
func unjoin(err error) error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		if errs := j.Unwrap(); len(errs) == 1 {
			return errs[0]
		}
	}
	return err
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "tspoet: %v\n", err)
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintf(os.Stderr, "hint: %s\n", hint)
		}
		stop()
		os.Exit(1)
	}
}
