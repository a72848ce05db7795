package main

import (
	"bytes"
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broady/tspoet/config"
)

const modelPkg = "github.com/broady/tspoet/gosource/testdata/model"

func runCLI(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err = run(context.Background(), args, &out, &errOut)
	return out.String(), errOut.String(), err
}

func TestVersion(t *testing.T) {
	out, _, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "0.1.0")
}

func TestGenAndCheck(t *testing.T) {
	dir := t.TempDir()
	generated := filepath.Join(dir, "gosource", "testdata", "model", "types.ts")

	_, _, err := runCLI(t, "check", "--out", dir, modelPkg)
	require.Error(t, err, "check before gen")

	out, _, err := runCLI(t, "gen", "--out", dir, modelPkg)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote 1 files")

	content, err := os.ReadFile(generated)
	require.NoError(t, err)
	assert.Contains(t, string(content), "export interface Account extends Base {")

	out, _, err = runCLI(t, "check", "--out", dir, modelPkg)
	require.NoError(t, err)
	assert.Contains(t, out, "1 files up to date")

	require.NoError(t, os.WriteFile(generated, []byte("stale\n"), 0o644))
	out, _, err = runCLI(t, "check", "--out", dir, modelPkg)
	require.Error(t, err)
	assert.Contains(t, out, "gosource/testdata/model/types.ts")
	assert.Contains(t, errors.FlattenHints(err), "tspoet gen")
}

func TestGen_Overrides(t *testing.T) {
	dir := t.TempDir()
	_, _, err := runCLI(t, "gen", "-d", dir,
		"-o", "enum_style=enum",
		"-o", "module_root=gen",
		"-o", "type_mappings.time.Time=Date",
		modelPkg)
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(dir, "gen", "gosource", "testdata", "model", "types.ts"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "export enum Priority {")
	assert.Contains(t, string(content), "created: Date;")
}

func TestGen_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Packages = []string{modelPkg}
	cfg.OutDir = filepath.Join(dir, "out")
	cfg.Header = "generated"
	path := filepath.Join(dir, "tspoet.yaml")
	require.NoError(t, cfg.Save(path))

	out, _, err := runCLI(t, "gen", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, cfg.OutDir)

	content, err := os.ReadFile(filepath.Join(cfg.OutDir, "gosource", "testdata", "model", "types.ts"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "// generated\n")
}

func TestUnjoin(t *testing.T) {
	inner := errors.WithHint(errors.New("boom"), "try again")
	assert.Equal(t, inner, unjoin(stderrors.Join(inner)))
	assert.Equal(t, []string{"try again"}, errors.GetAllHints(unjoin(stderrors.Join(inner))))

	multi := stderrors.Join(errors.New("a"), errors.New("b"))
	assert.Equal(t, multi, unjoin(multi))
	assert.NoError(t, unjoin(nil))
}

func TestGen_Verbose(t *testing.T) {
	_, stderr, err := runCLI(t, "--verbose", "gen", "--out", t.TempDir(), modelPkg)
	require.NoError(t, err)
	assert.Contains(t, stderr, "converted declaration")
	assert.Contains(t, stderr, "level=WARN")
}

func TestGen_Errors(t *testing.T) {
	t.Run("no packages", func(t *testing.T) {
		_, _, err := runCLI(t, "gen", "--out", t.TempDir())
		require.Error(t, err)
		assert.Contains(t, errors.FlattenHints(err), "config file")
		assert.Equal(t, []string{"pass package patterns or set packages in the config file"}, errors.GetAllHints(err))
	})
	t.Run("bad override", func(t *testing.T) {
		_, _, err := runCLI(t, "gen", "--out", t.TempDir(), "-o", "max_column=wide", modelPkg)
		require.Error(t, err)
		assert.True(t, errors.Is(err, config.ErrInvalid))
	})
	t.Run("invalid value", func(t *testing.T) {
		_, _, err := runCLI(t, "gen", "--out", t.TempDir(), "-o", "enum_style=bitflags", modelPkg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "enum_style")
	})
	t.Run("unknown flag", func(t *testing.T) {
		_, _, err := runCLI(t, "gen", "--colour")
		assert.Error(t, err)
	})
}
