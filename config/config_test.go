package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "  ", cfg.Indent)
	assert.Equal(t, EnumStyleUnion, cfg.EnumStyle)
	assert.Equal(t, "string", cfg.TypeMappings["time.Time"])
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "tspoet.yaml", `
indent: "    "
max_column: 80
enum_style: const_enum
field_case: camel
module_root: generated
packages:
  - ./api/...
type_mappings:
  github.com/shopspring/decimal.Decimal: Decimal@decimal.js
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "    ", cfg.Indent)
	assert.Equal(t, 80, cfg.MaxColumn)
	assert.Equal(t, EnumStyleConstEnum, cfg.EnumStyle)
	assert.Equal(t, FieldCaseCamel, cfg.FieldCase)
	assert.Equal(t, "generated", cfg.ModuleRoot)
	assert.Equal(t, []string{"./api/..."}, cfg.Packages)
	assert.Equal(t, "Decimal@decimal.js", cfg.TypeMappings["github.com/shopspring/decimal.Decimal"])
	assert.Equal(t, "string", cfg.TypeMappings["time.Time"], "defaults are kept")
	assert.True(t, cfg.Export, "unset keys keep their default")
}

func TestLoad_TOML(t *testing.T) {
	path := writeFile(t, "tspoet.toml", `
max_column = 0
export = false
declare = true
enum_style = "enum"
header = "generated"

[type_mappings]
"net/netip.Addr" = "string"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 0, cfg.MaxColumn)
	assert.False(t, cfg.Export)
	assert.True(t, cfg.Declare)
	assert.Equal(t, EnumStyleEnum, cfg.EnumStyle)
	assert.Equal(t, "generated", cfg.Header)
	assert.Equal(t, "string", cfg.TypeMappings["net/netip.Addr"])
}

func TestLoad_Errors(t *testing.T) {
	t.Run("unknown yaml key", func(t *testing.T) {
		_, err := Load(writeFile(t, "c.yaml", "max_colum: 80\n"))
		require.Error(t, err)
	})
	t.Run("unknown toml key", func(t *testing.T) {
		_, err := Load(writeFile(t, "c.toml", "max_colum = 80\n"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalid))
		assert.Contains(t, err.Error(), "max_colum")
	})
	t.Run("unsupported extension", func(t *testing.T) {
		_, err := Load(writeFile(t, "c.json", "{}"))
		require.Error(t, err)
		assert.Contains(t, errors.FlattenHints(err), ".toml")
	})
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
	})
}

func TestSave_RoundTrip(t *testing.T) {
	cfg := Default()
	cfg.MaxColumn = 120
	cfg.Packages = []string{"./..."}
	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestApplyOverrides(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyOverrides([]string{
		"max_column=72",
		"enum_style=enum",
		"export=false",
		"packages=./a",
		"packages=./b",
		"type_mappings.time.Time=Date",
	})
	require.NoError(t, err)

	assert.Equal(t, 72, cfg.MaxColumn)
	assert.Equal(t, EnumStyleEnum, cfg.EnumStyle)
	assert.False(t, cfg.Export)
	assert.Equal(t, []string{"./a", "./b"}, cfg.Packages)
	assert.Equal(t, "Date", cfg.TypeMappings["time.Time"])
	assert.Equal(t, "  ", cfg.Indent, "untouched keys keep their value")
}

func TestApplyOverrides_Errors(t *testing.T) {
	tests := []struct {
		name      string
		overrides []string
	}{
		{name: "missing equals", overrides: []string{"max_column"}},
		{name: "empty key", overrides: []string{"=1"}},
		{name: "unknown key", overrides: []string{"colour=blue"}},
		{name: "bad int", overrides: []string{"max_column=wide"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Default().ApplyOverrides(tt.overrides)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalid))
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   []string
	}{
		{
			name:   "enum style",
			mutate: func(c *Config) { c.EnumStyle = "bitflags" },
			want:   []string{"enum_style: must be one of: enum const_enum union"},
		},
		{
			name:   "negative column",
			mutate: func(c *Config) { c.MaxColumn = -1 },
			want:   []string{"max_column: must be at least 0"},
		},
		{
			name:   "indent",
			mutate: func(c *Config) { c.Indent = "->" },
			want:   []string{"indent: must contain only spaces or tabs"},
		},
		{
			name: "several fields",
			mutate: func(c *Config) {
				c.FieldCase = "screaming"
				c.FileName = ""
				c.Packages = []string{""}
			},
			want: []string{
				"field_case: must be one of: preserve camel pascal snake kebab",
				"file_name: required",
				"packages[0]: required",
			},
		},
		{
			name:   "module root escapes",
			mutate: func(c *Config) { c.ModuleRoot = "../out" },
			want:   []string{`module_root: must not contain ".."`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalid))
			for _, want := range tt.want {
				assert.Contains(t, err.Error(), want)
			}
		})
	}
}
