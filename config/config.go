// Package config holds the settings that control TypeScript generation from
// Go packages: output layout, formatting and naming.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
	"gopkg.in/yaml.v3"
)

// ErrInvalid marks configuration values that fail validation.
var ErrInvalid = errors.New("invalid configuration")

// EnumStyle selects how a Go type with a const group is rendered.
type EnumStyle string

const (
	// EnumStyleEnum renders `enum Status { ... }`.
	EnumStyleEnum EnumStyle = "enum"
	// EnumStyleConstEnum renders `const enum Status { ... }`.
	EnumStyleConstEnum EnumStyle = "const_enum"
	// EnumStyleUnion renders `type Status = "a" | "b"`.
	EnumStyleUnion EnumStyle = "union"
)

// FieldCase selects how property names are derived from Go struct fields.
// json tag names are always used verbatim; the case applies to fields
// without one.
type FieldCase string

const (
	FieldCasePreserve FieldCase = "preserve"
	FieldCaseCamel    FieldCase = "camel"
	FieldCasePascal   FieldCase = "pascal"
	FieldCaseSnake    FieldCase = "snake"
	FieldCaseKebab    FieldCase = "kebab"
)

// Config controls generation. The zero value is not usable; start from
// Default.
type Config struct {
	// Indent is one level of indentation in the generated files.
	Indent string `yaml:"indent" toml:"indent" schema:"indent" validate:"required,whitespace"`
	// MaxColumn is the column at which long lines wrap. Zero disables
	// wrapping.
	MaxColumn int `yaml:"max_column" toml:"max_column" schema:"max_column" validate:"gte=0,lte=1000"`
	// Export adds the export modifier to every generated declaration.
	Export bool `yaml:"export" toml:"export" schema:"export"`
	// Declare renders ambient declarations (`declare`), for .d.ts style output.
	Declare bool `yaml:"declare" toml:"declare" schema:"declare"`

	EnumStyle EnumStyle `yaml:"enum_style" toml:"enum_style" schema:"enum_style" validate:"oneof=enum const_enum union"`
	FieldCase FieldCase `yaml:"field_case" toml:"field_case" schema:"field_case" validate:"oneof=preserve camel pascal snake kebab"`

	// ModuleRoot is the module path prefix of every generated file, e.g.
	// "generated" puts package example.com/m/api at generated/api/types.
	ModuleRoot string `yaml:"module_root" toml:"module_root" schema:"module_root" validate:"excludes=.."`
	// FileName is the base name of the file generated per Go package.
	FileName string `yaml:"file_name" toml:"file_name" schema:"file_name" validate:"required,excludesall=/."`
	// Header is written as a line comment at the top of every file.
	Header string `yaml:"header" toml:"header" schema:"header"`

	// Packages are the Go package patterns to load.
	Packages []string `yaml:"packages" toml:"packages" schema:"packages" validate:"dive,required"`
	// OutDir is the directory generated files are written under.
	OutDir string `yaml:"out_dir" toml:"out_dir" schema:"out_dir"`
	// TypeMappings maps qualified Go types ("time.Time") to TypeScript
	// types in symbol notation ("string", "Decimal@decimal.js").
	TypeMappings map[string]string `yaml:"type_mappings" toml:"type_mappings" schema:"-" validate:"dive,keys,required,endkeys,required"`
}

// DefaultHeader marks files as generated.
const DefaultHeader = "Code generated by tspoet. DO NOT EDIT."

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Indent:     "  ",
		MaxColumn:  100,
		Export:     true,
		EnumStyle:  EnumStyleUnion,
		FieldCase:  FieldCasePreserve,
		ModuleRoot: "",
		FileName:   "types",
		Header:     DefaultHeader,
		TypeMappings: map[string]string{
			"time.Time":     "string",
			"time.Duration": "number",
		},
	}
}

// Load reads a YAML (.yaml, .yml) or TOML (.toml) file on top of Default.
// Unknown keys are rejected.
func Load(path string) (*Config, error) {
	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrap(err, "open config")
		}
		defer f.Close()
		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil {
			return nil, errors.Wrapf(err, "decode %s", path)
		}
	case ".toml":
		md, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, errors.Wrapf(err, "decode %s", path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return nil, errors.Mark(errors.Newf("%s: unknown keys %s", path, strings.Join(keys, ", ")), ErrInvalid)
		}
	default:
		return nil, errors.WithHint(
			errors.Newf("unsupported config format %q", ext),
			"use a .yaml, .yml or .toml file")
	}
	return cfg, nil
}

// Save writes c as YAML.
func (c *Config) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create config")
	}
	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		f.Close()
		return errors.Wrapf(err, "encode %s", path)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return errors.Wrapf(err, "encode %s", path)
	}
	return f.Close()
}

// TypeMappingPrefix introduces a type mapping override:
// "type_mappings.time.Time=string".
const TypeMappingPrefix = "type_mappings."

var decoder = newDecoder()

func newDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.SetAliasTag("schema")
	d.IgnoreUnknownKeys(false)
	return d
}

// ApplyOverrides applies key=value pairs such as "max_column=80" or
// "enum_style=enum". Keys are the YAML key names. Repeating a list key
// ("packages") collects every value.
func (c *Config) ApplyOverrides(overrides []string) error {
	values := url.Values{}
	for _, o := range overrides {
		key, value, ok := strings.Cut(o, "=")
		if !ok || key == "" {
			return errors.Mark(errors.Newf("override %q is not key=value", o), ErrInvalid)
		}
		if goType, ok := strings.CutPrefix(key, TypeMappingPrefix); ok {
			if c.TypeMappings == nil {
				c.TypeMappings = make(map[string]string)
			}
			c.TypeMappings[goType] = value
			continue
		}
		values.Add(key, value)
	}
	if len(values) == 0 {
		return nil
	}
	if err := decoder.Decode(c, values); err != nil {
		return errors.Mark(errors.Wrap(err, "apply overrides"), ErrInvalid)
	}
	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("whitespace", func(fl validator.FieldLevel) bool {
		return strings.Trim(fl.Field().String(), " \t") == ""
	})
	return v
}

// Validate checks every field and reports all failures in one error marked
// with ErrInvalid.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var valErrs validator.ValidationErrors
	if !errors.As(err, &valErrs) {
		return errors.Wrap(err, "validate config")
	}
	messages := make([]string, 0, len(valErrs))
	for _, ve := range valErrs {
		messages = append(messages, fieldPath(ve)+": "+formatValidationError(ve))
	}
	return errors.Mark(errors.Newf("%s", strings.Join(messages, "; ")), ErrInvalid)
}

// fieldPath drops the struct name from the namespace: "Config.packages[0]"
// becomes "packages[0]".
func fieldPath(ve validator.FieldError) string {
	_, path, ok := strings.Cut(ve.Namespace(), ".")
	if !ok {
		return ve.Field()
	}
	return path
}

// formatValidationError converts a validator.FieldError to a human-readable message.
func formatValidationError(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required":
		return "required"
	case "whitespace":
		return "must contain only spaces or tabs"
	case "gte":
		return fmt.Sprintf("must be at least %s", ve.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", ve.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", ve.Param())
	case "excludes", "excludesall":
		return fmt.Sprintf("must not contain %q", ve.Param())
	default:
		if ve.Param() != "" {
			return fmt.Sprintf("failed %s=%s validation", ve.Tag(), ve.Param())
		}
		return fmt.Sprintf("failed %s validation", ve.Tag())
	}
}
