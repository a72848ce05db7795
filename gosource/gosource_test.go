package gosource

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broady/tspoet"
	"github.com/broady/tspoet/config"
	"github.com/broady/tspoet/sink"
)

const (
	modelPkg = "github.com/broady/tspoet/gosource/testdata/model"
	apiPkg   = "github.com/broady/tspoet/gosource/testdata/api"
)

func load(t *testing.T, cfg *config.Config, patterns ...string) *Result {
	t.Helper()
	res, err := Load(context.Background(), Options{Packages: patterns, Config: cfg})
	require.NoError(t, err)
	return res
}

func render(t *testing.T, f *tspoet.FileSpec) string {
	t.Helper()
	out, err := f.Render()
	require.NoError(t, err)
	return out
}

const wantModel = `// Code generated by tspoet. DO NOT EDIT.

/**
 * Account is a user account.
 *
 * @deprecated use Profile.
 */
export interface Account extends Base {

  /**
   * Name is the display name.
   */
  name: string;

  email?: string;

  tags?: string[];

  status: Status;

  labels: Record<string, string>;

  avatar?: string;

  count: string;

  timeout: number;

  NoTag: boolean;

}

/**
 * Base holds fields shared by every record.
 */
export interface Base {

  id: string;

  created: string;

}

/**
 * Handler processes accounts.
 */
export type Handler = any;

/**
 * ID identifies a record.
 */
export type ID = string;

/**
 * Index maps keys to values.
 */
export interface Index<K extends Key, V> {

  first: K;

  entries: Record<string, V>;

}

/**
 * Key constrains index keys.
 */
export type Key = string | number;

/**
 * Page is one page of results.
 */
export interface Page<T> {

  items: T[];

  next?: Page<T>;

}

/**
 * Priority orders work items.
 */
export type Priority = 0 | 1;

/**
 * Status is the lifecycle state of an account.
 */
export type Status = "active" | "disabled";
`

func TestLoad_Model(t *testing.T) {
	res := load(t, nil, modelPkg)
	require.Len(t, res.Files, 1)

	f := res.Files[0]
	assert.Equal(t, "gosource/testdata/model/types.ts", f.Path())
	pkg, ok := tspoet.TagValue[string](f.Tags(), PackageTag)
	assert.True(t, ok)
	assert.Equal(t, modelPkg, pkg)
	assert.Equal(t, wantModel, render(t, f))
}

func TestLoad_Warnings(t *testing.T) {
	res := load(t, nil, modelPkg)

	codes := make(map[string]string)
	for _, w := range res.Warnings {
		codes[w.TypeName] = w.Code
		assert.Equal(t, modelPkg, w.Package)
	}
	assert.Equal(t, WarnUnsupportedType, codes["Account"], "chan field is skipped")
	assert.Equal(t, WarnInterfaceType, codes["Handler"])
}

func TestLoad_CrossPackage(t *testing.T) {
	res := load(t, nil, modelPkg, apiPkg)
	require.Len(t, res.Files, 2)
	assert.Equal(t, "gosource/testdata/api/types.ts", res.Files[0].Path())
	assert.Equal(t, "gosource/testdata/model/types.ts", res.Files[1].Path())

	want := `// Code generated by tspoet. DO NOT EDIT.

import {Account, Page, Status as Status2} from "../model/types";

/**
 * ListResponse is a page of accounts.
 */
export interface ListResponse {

  accounts: Page<Account>;

  health: Status;

}

/**
 * Status reports service health.
 */
export interface Status {

  code: number;

  account: Status2;

}
`
	assert.Equal(t, want, render(t, res.Files[0]))
}

func TestLoad_ExternalPackage(t *testing.T) {
	res := load(t, nil, apiPkg)
	require.Len(t, res.Files, 1)

	out := render(t, res.Files[0])
	assert.NotContains(t, out, "import")
	assert.Contains(t, out, "\n  accounts: any;\n")
	assert.Contains(t, out, "\n  account: string;\n")

	require.NotEmpty(t, res.Warnings)
	assert.Equal(t, WarnExternalType, res.Warnings[0].Code)
	assert.Equal(t, "ListResponse", res.Warnings[0].TypeName)
}

func TestLoad_Config(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		path    string
		want    []string
		notWant []string
	}{
		{
			name:   "enum style",
			mutate: func(c *config.Config) { c.EnumStyle = config.EnumStyleEnum },
			want: []string{
				"export enum Status {\n  Active = \"active\",\n  Disabled = \"disabled\"\n}\n",
				"export enum Priority {\n  Low = 0,\n  High = 1\n}\n",
			},
		},
		{
			name:   "const enum style",
			mutate: func(c *config.Config) { c.EnumStyle = config.EnumStyleConstEnum },
			want:   []string{"export const enum Priority {\n"},
		},
		{
			name:   "snake case fields",
			mutate: func(c *config.Config) { c.FieldCase = config.FieldCaseSnake },
			want:   []string{"\n  no_tag: boolean;\n", "\n  name: string;\n"},
		},
		{
			name: "ambient declarations without export",
			mutate: func(c *config.Config) {
				c.Export = false
				c.Declare = true
			},
			want:    []string{"\ndeclare interface Base {\n", "\ndeclare type ID = string;\n"},
			notWant: []string{"export "},
		},
		{
			name: "module root and file name",
			mutate: func(c *config.Config) {
				c.ModuleRoot = "gen"
				c.FileName = "index"
			},
			path: "gen/gosource/testdata/model/index.ts",
		},
		{
			name:    "no header",
			mutate:  func(c *config.Config) { c.Header = "" },
			notWant: []string{"//"},
		},
		{
			name: "type mapping to an import",
			mutate: func(c *config.Config) {
				c.TypeMappings["time.Time"] = "DateTime@luxon"
			},
			want: []string{
				"import {DateTime} from \"luxon\";\n",
				"\n  created: DateTime;\n",
			},
		},
		{
			name: "mapped declaration is skipped",
			mutate: func(c *config.Config) {
				c.TypeMappings[modelPkg+".ID"] = "string"
			},
			notWant: []string{"type ID"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(cfg)
			res := load(t, cfg, modelPkg)
			require.Len(t, res.Files, 1)
			if tt.path != "" {
				assert.Equal(t, tt.path, res.Files[0].Path())
			}
			out := render(t, res.Files[0])
			for _, s := range tt.want {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.notWant {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestLoad_Tags(t *testing.T) {
	res := load(t, nil, modelPkg)
	var account *tspoet.InterfaceSpec
	for _, m := range res.Files[0].Members() {
		if i, ok := m.(*tspoet.InterfaceSpec); ok && i.Name() == "Account" {
			account = i
		}
	}
	require.NotNil(t, account)

	goType, ok := tspoet.TagValue[string](account.Tags(), GoTypeTag)
	assert.True(t, ok)
	assert.Equal(t, modelPkg+".Account", goType)

	props := account.Properties()
	require.NotEmpty(t, props)
	field, ok := tspoet.TagValue[string](props[0].Tags(), GoFieldTag)
	assert.True(t, ok)
	assert.Equal(t, "Name", field)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(context.Background(), Options{})
	assert.Error(t, err)

	cfg := config.Default()
	cfg.EnumStyle = "bitflags"
	_, err = Load(context.Background(), Options{Packages: []string{modelPkg}, Config: cfg})
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrInvalid))

	_, err = Load(context.Background(), Options{Packages: []string{"github.com/broady/tspoet/gosource/testdata/missing"}})
	assert.Error(t, err)
}

func TestLoad_Logging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	_, err := Load(context.Background(), Options{Packages: []string{modelPkg}, Logger: logger})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "converted declaration")
	assert.Contains(t, out, "name=Account kind=interface")
	assert.Contains(t, out, "code=INTERFACE_TYPE")
}

func TestGenerator_ToSink(t *testing.T) {
	s := sink.NewMemorySink()
	res, err := FromPackages(apiPkg, modelPkg).
		WithConfig(config.Default()).
		TypeMapping("time.Time", "Date").
		Logger(slog.New(slog.DiscardHandler)).
		ToSink(context.Background(), s)
	require.NoError(t, err)
	require.Len(t, res.Files, 2)

	assert.Equal(t, []string{
		"gosource/testdata/api/types.ts",
		"gosource/testdata/model/types.ts",
	}, s.Paths())
	for _, f := range res.Files {
		assert.Equal(t, render(t, f), string(s.Get(f.Path())))
	}
	assert.Contains(t, string(s.Get("gosource/testdata/model/types.ts")), "\n  created: Date;\n")
}

func TestGenerator_ConfigPackages(t *testing.T) {
	cfg := config.Default()
	cfg.Packages = []string{modelPkg}
	res, err := FromPackages().WithConfig(cfg).Generate(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Files, 1)

	FromPackages().WithConfig(cfg).TypeMapping("time.Time", "Date")
	assert.Equal(t, "string", cfg.TypeMappings["time.Time"], "caller config is not modified")
}

func TestWriteFiles_RenderFailure(t *testing.T) {
	good := tspoet.File("ok").AddMember(tspoet.TypeAlias("A", tspoet.String).MustBuild()).MustBuild()
	bad := tspoet.File("a/bad").
		AddMember(tspoet.TypeAlias("B", tspoet.TypeNameOf("X@!../../x")).MustBuild()).
		MustBuild()

	s := sink.NewMemorySink()
	err := WriteFiles(context.Background(), []*tspoet.FileSpec{good, bad}, s)
	require.Error(t, err)
	assert.True(t, errors.Is(err, tspoet.ErrResolution))
	assert.Empty(t, s.Paths())
}

func TestParseJSONTag(t *testing.T) {
	tests := []struct {
		tag  string
		want jsonTag
	}{
		{tag: ``, want: jsonTag{}},
		{tag: `json:"-"`, want: jsonTag{skip: true}},
		{tag: `json:"-,"`, want: jsonTag{name: "-"}},
		{tag: `json:"id"`, want: jsonTag{name: "id"}},
		{tag: `json:",omitempty"`, want: jsonTag{omitEmpty: true}},
		{tag: `json:"n,omitzero,string"`, want: jsonTag{name: "n", omitEmpty: true, asString: true}},
		{tag: `yaml:"y" json:"j"`, want: jsonTag{name: "j"}},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			assert.Equal(t, tt.want, parseJSONTag(tt.tag))
		})
	}
}

func TestMemberNames(t *testing.T) {
	consts := func(names ...string) []enumConstant {
		out := make([]enumConstant, len(names))
		for i, n := range names {
			out[i] = enumConstant{name: n}
		}
		return out
	}
	assert.Equal(t, []string{"Low", "High"}, memberNames("Priority", consts("PriorityLow", "PriorityHigh")))
	assert.Equal(t, []string{"Priority", "PriorityHigh"}, memberNames("Priority", consts("Priority", "PriorityHigh")))
	assert.Equal(t, []string{"Mode1", "Mode2"}, memberNames("Mode", consts("Mode1", "Mode2")))
	assert.Equal(t, []string{"Red", "ColorBlue"}, memberNames("Color", consts("Red", "ColorBlue")))
}
