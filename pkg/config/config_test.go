package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/solutionmap/pkg/collapsible"
	errs "github.com/matzehuels/solutionmap/pkg/errors"
	"github.com/matzehuels/solutionmap/pkg/records"
)

const sample = `
[source]
kind = "mongo"
uri = "mongodb://localhost:27017"
database = "solutions"
labelize = true

[source.collections]
categories = "cats"

[tree]
width = 1200
duration = "250ms"
sibling_separation = 1.5

[tree.margin]
top = 10
right = 20

[icicle]
padding = 0
separator = " / "

[server]
addr = ":9000"
`

func TestDecode(t *testing.T) {
	cfg, err := Decode(sample)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Source.Collections.Categories != "cats" || cfg.Source.Database != "solutions" {
		t.Errorf("source = %+v", cfg.Source)
	}
	if cfg.Server.Addr != ":9000" || time.Duration(cfg.Server.SessionTTL) != DefaultSessionTTL {
		t.Errorf("server = %+v", cfg.Server)
	}

	tree := cfg.TreeOptions()
	if tree.Width != 1200 || tree.Duration != 250*time.Millisecond {
		t.Errorf("tree options = %+v", tree)
	}
	if tree.Margin != (collapsible.Margin{Top: 10, Right: 20}) {
		t.Errorf("margin = %+v", tree.Margin)
	}
	if got := tree.Layout.Separation(true); got != 1.5 {
		t.Errorf("sibling separation = %v", got)
	}
	if got := tree.Layout.Separation(false); got != 2.0 {
		t.Errorf("cousin separation = %v", got)
	}

	ic := cfg.IcicleOptions(nil)
	ic.SetDefaults()
	if ic.Padding != 0 {
		t.Errorf("explicit zero padding = %v", ic.Padding)
	}
	if ic.Separator != " / " {
		t.Errorf("separator = %q", ic.Separator)
	}
	sb := cfg.SunburstOptions(nil)
	sb.SetDefaults()
	if sb.Padding != 1 {
		t.Errorf("default sunburst padding = %v", sb.Padding)
	}
}

func TestDefaultsKeepPackageDefaults(t *testing.T) {
	opts := Default().TreeOptions()
	opts.SetDefaults()
	if opts.Width != collapsible.DefaultWidth || opts.Duration != collapsible.DefaultDuration {
		t.Errorf("defaults lost: %+v", opts)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"unknown kind", "[source]\nkind = \"airtable\""},
		{"mongo without database", "[source]\nkind = \"mongo\""},
		{"reserved collection", "[source]\nkind = \"mongo\"\ndatabase = \"d\"\n[source.collections]\nsolutions = \"system.users\""},
		{"negative width", "[tree]\nwidth = -1"},
		{"opacity", "[tree]\nlink_opacity = 2.0"},
		{"bad duration", "[tree]\nduration = \"soon\""},
		{"unknown key", "[tree]\nwdth = 3"},
		{"unknown section", "[treemap]\nwidth = 3"},
		{"unknown nested key", "[tree.margin]\nmiddle = 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(tt.text); !errs.Is(err, errs.ErrCodeInvalidConfig) {
				t.Errorf("got %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte("[cache]\nredis_url = \"redis://localhost:6379/0\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Cache.RedisURL != "redis://localhost:6379/0" {
		t.Errorf("cache = %+v", cfg.Cache)
	}

	os.WriteFile(path, []byte("[tree]\nwdth = 3\n"), 0644)
	if _, err := Load(path); !errs.Is(err, errs.ErrCodeInvalidConfig) {
		t.Errorf("unknown key: got %v", err)
	}

	cfg, err = LoadOptional(filepath.Join(dir, "missing.toml"))
	if err != nil || cfg.Server.Addr != DefaultAddr {
		t.Errorf("LoadOptional(missing) = %+v, %v", cfg.Server, err)
	}
}

func TestRecordSource(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		src  SourceConfig
		want any
	}{
		{"csv dir inferred", SourceConfig{Path: dir}, records.CSVDir{Dir: dir}},
		{"json inferred", SourceConfig{Path: filepath.Join(dir, "b.json")}, records.JSONSource{Path: filepath.Join(dir, "b.json")}},
		{"mongo", SourceConfig{Kind: SourceMongo, Database: "d"}, records.MongoSource{Database: "d"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Config{Source: tt.src}.RecordSource()
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
		})
	}
	if _, err := (Config{}).RecordSource(); !errs.Is(err, errs.ErrCodeInvalidConfig) {
		t.Errorf("empty source: %v", err)
	}
}
