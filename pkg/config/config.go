// Package config loads solutionmap settings from a TOML file.
//
// Every section is optional; missing keys keep the defaults of the
// package that consumes them. A minimal file:
//
//	[source]
//	kind = "mongo"
//	uri = "mongodb://localhost:27017"
//	database = "solutions"
//
//	[tree]
//	width = 1200
//	duration = "250ms"
//
//	[cache]
//	redis_url = "redis://localhost:6379/0"
//
// Command-line flags override file values.
package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/solutionmap/pkg/anim"
	"github.com/matzehuels/solutionmap/pkg/collapsible"
	errs "github.com/matzehuels/solutionmap/pkg/errors"
	"github.com/matzehuels/solutionmap/pkg/layout"
	"github.com/matzehuels/solutionmap/pkg/records"
	"github.com/matzehuels/solutionmap/pkg/zoom"
)

// FileName is the config file looked up in the working directory.
const FileName = "solutionmap.toml"

// Duration is a time.Duration written as a Go duration string in TOML.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Source kinds.
const (
	SourceJSON  = "json"
	SourceCSV   = "csv"
	SourceMongo = "mongo"
)

// Config is the whole settings file.
type Config struct {
	Source   SourceConfig   `toml:"source"`
	Tree     TreeConfig     `toml:"tree"`
	Icicle   IcicleConfig   `toml:"icicle"`
	Sunburst SunburstConfig `toml:"sunburst"`
	Cache    CacheConfig    `toml:"cache"`
	Server   ServerConfig   `toml:"server"`
}

// SourceConfig selects where records come from.
type SourceConfig struct {
	// Kind is json, csv or mongo. Empty infers json or csv from Path.
	Kind string `toml:"kind"`
	// Path is the bundle file (json) or directory (csv).
	Path        string                   `toml:"path"`
	URI         string                   `toml:"uri"`
	Database    string                   `toml:"database"`
	Collections records.MongoCollections `toml:"collections"`
	// Labelize replaces record ids in parent lists with names.
	Labelize bool `toml:"labelize"`
}

// TreeConfig maps onto [collapsible.Options].
type TreeConfig struct {
	Width         float64            `toml:"width"`
	Height        float64            `toml:"height"`
	Margin        collapsible.Margin `toml:"margin"`
	NodeRadius    float64            `toml:"node_radius"`
	Duration      Duration           `toml:"duration"`
	ScrollDelay   Duration           `toml:"scroll_delay"`
	LinkOpacity   float64            `toml:"link_opacity"`
	MaxLabelWords int                `toml:"max_label_words"`
	NodeBreadth   float64            `toml:"node_breadth"`
	NodeDepth     float64            `toml:"node_depth"`
	DepthSpacing  float64            `toml:"depth_spacing"`
	RootOffset    float64            `toml:"root_offset"`
	Siblings      float64            `toml:"sibling_separation"`
	Cousins       float64            `toml:"cousin_separation"`
}

// IcicleConfig maps onto [zoom.IcicleOptions].
type IcicleConfig struct {
	Width     float64  `toml:"width"`
	Height    float64  `toml:"height"`
	MarginTop float64  `toml:"margin_top"`
	Padding   *float64 `toml:"padding"`
	Duration  Duration `toml:"duration"`
	Separator string   `toml:"separator"`
}

// SunburstConfig maps onto [zoom.SunburstOptions].
type SunburstConfig struct {
	Width    float64  `toml:"width"`
	Padding  *float64 `toml:"padding"`
	Duration Duration `toml:"duration"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	// Dir holds the file cache. Empty uses the user cache directory.
	Dir string `toml:"dir"`
	// RedisURL, when set, makes the server cache in Redis.
	RedisURL string `toml:"redis_url"`
	// Disabled turns caching off.
	Disabled bool `toml:"disabled"`
}

// ServerConfig configures `solutionmap serve`.
type ServerConfig struct {
	Addr       string   `toml:"addr"`
	SessionTTL Duration `toml:"session_ttl"`
	// Tick is the animation clock interval.
	Tick Duration `toml:"tick"`
}

// Server defaults.
const (
	DefaultAddr       = "127.0.0.1:8080"
	DefaultSessionTTL = 30 * time.Minute
	DefaultTick       = 16 * time.Millisecond
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:       DefaultAddr,
			SessionTTL: Duration(DefaultSessionTTL),
			Tick:       Duration(DefaultTick),
		},
	}
}

// Load reads path over the defaults. A missing file is an error; use
// [LoadOptional] to fall back to defaults.
func Load(path string) (Config, error) {
	if err := errs.ValidatePath(path); err != nil {
		return Default(), err
	}
	text, err := os.ReadFile(path)
	if err != nil {
		return Default(), errs.Wrap(errs.ErrCodeInvalidConfig, err, "read %s", path)
	}
	return decode(string(text), path)
}

// LoadOptional loads path if it exists and returns the defaults otherwise.
func LoadOptional(path string) (Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// Decode parses TOML text over the defaults. Unknown keys are rejected,
// as they are by [Load].
func Decode(text string) (Config, error) {
	return decode(text, "config")
}

func decode(text, name string) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(text, &cfg)
	if err != nil {
		return cfg, errs.Wrap(errs.ErrCodeInvalidConfig, err, "parse %s", name)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, errs.New(errs.ErrCodeInvalidConfig, "unknown key %q in %s", undecoded[0].String(), name)
	}
	cfg.fillServer()
	return cfg, cfg.Validate()
}

func (c *Config) fillServer() {
	d := Default().Server
	if c.Server.Addr == "" {
		c.Server.Addr = d.Addr
	}
	if c.Server.SessionTTL <= 0 {
		c.Server.SessionTTL = d.SessionTTL
	}
	if c.Server.Tick <= 0 {
		c.Server.Tick = d.Tick
	}
}

// Validate checks values a zero default cannot repair.
func (c Config) Validate() error {
	switch c.Source.Kind {
	case "", SourceJSON, SourceCSV:
	case SourceMongo:
		if c.Source.Database == "" {
			return errs.New(errs.ErrCodeInvalidConfig, "source.database is required for mongo")
		}
		for _, name := range []string{c.Source.Collections.Categories, c.Source.Collections.Subcategories, c.Source.Collections.Solutions} {
			if name == "" {
				continue
			}
			if err := errs.ValidateCollectionName(name); err != nil {
				return err
			}
		}
	default:
		return errs.New(errs.ErrCodeInvalidConfig, "unknown source kind %q", c.Source.Kind)
	}
	for name, v := range map[string]float64{
		"tree.width": c.Tree.Width, "tree.height": c.Tree.Height,
		"icicle.width": c.Icicle.Width, "icicle.height": c.Icicle.Height,
		"sunburst.width": c.Sunburst.Width,
	} {
		if v < 0 {
			return errs.New(errs.ErrCodeInvalidConfig, "%s must not be negative", name)
		}
	}
	if c.Tree.LinkOpacity < 0 || c.Tree.LinkOpacity > 1 {
		return errs.New(errs.ErrCodeInvalidConfig, "tree.link_opacity must be within [0, 1]")
	}
	return nil
}

// RecordSource builds the configured source. Labelize wraps it.
func (c Config) RecordSource() (records.Source, error) {
	s := c.Source
	var src records.Source
	switch s.Kind {
	case SourceMongo:
		src = records.MongoSource{URI: s.URI, Database: s.Database, Collections: s.Collections}
	case SourceCSV:
		src = records.CSVDir{Dir: s.Path}
	case SourceJSON:
		src = records.JSONSource{Path: s.Path}
	case "":
		if s.Path == "" {
			return nil, errs.New(errs.ErrCodeInvalidConfig, "no record source configured")
		}
		if fi, err := os.Stat(s.Path); err == nil && fi.IsDir() {
			src = records.CSVDir{Dir: s.Path}
		} else {
			src = records.JSONSource{Path: s.Path}
		}
	default:
		return nil, errs.New(errs.ErrCodeInvalidConfig, "unknown source kind %q", s.Kind)
	}
	if s.Labelize {
		src = records.Labelized(src)
	}
	return src, nil
}

// TreeOptions returns collapsible tree options. Zero fields keep the
// package defaults.
func (c Config) TreeOptions() collapsible.Options {
	t := c.Tree
	lay := layout.DefaultTidyOptions()
	if t.NodeBreadth > 0 {
		lay.NodeSize[0] = t.NodeBreadth
	}
	if t.NodeDepth > 0 {
		lay.NodeSize[1] = t.NodeDepth
	}
	if t.DepthSpacing != 0 {
		lay.DepthSpacing = t.DepthSpacing
	}
	if t.RootOffset != 0 {
		lay.RootOffset = t.RootOffset
	}
	if t.Siblings > 0 || t.Cousins > 0 {
		sib, cous := t.Siblings, t.Cousins
		if sib <= 0 {
			sib = layout.DefaultSiblingSeparation
		}
		if cous <= 0 {
			cous = layout.DefaultCousinSeparation
		}
		lay.Separation = layout.SiblingSeparation(sib, cous)
	}
	return collapsible.Options{
		Width:         t.Width,
		Height:        t.Height,
		Margin:        t.Margin,
		NodeRadius:    t.NodeRadius,
		Duration:      time.Duration(t.Duration),
		ScrollDelay:   time.Duration(t.ScrollDelay),
		LinkOpacity:   t.LinkOpacity,
		MaxLabelWords: t.MaxLabelWords,
		Layout:        lay,
	}
}

// IcicleOptions returns icicle options sharing tl.
func (c Config) IcicleOptions(tl *anim.Timeline) zoom.IcicleOptions {
	return zoom.IcicleOptions{
		Common: zoom.Common{
			Duration:  time.Duration(c.Icicle.Duration),
			Separator: c.Icicle.Separator,
			Timeline:  tl,
		},
		Width:     c.Icicle.Width,
		Height:    c.Icicle.Height,
		MarginTop: c.Icicle.MarginTop,
		Padding:   padding(c.Icicle.Padding),
	}
}

// SunburstOptions returns sunburst options sharing tl.
func (c Config) SunburstOptions(tl *anim.Timeline) zoom.SunburstOptions {
	o := zoom.SunburstOptions{
		Common: zoom.Common{
			Duration: time.Duration(c.Sunburst.Duration),
			Timeline: tl,
		},
		Width:   c.Sunburst.Width,
		Padding: padding(c.Sunburst.Padding),
	}
	return o
}

// padding maps an optional file value onto the zoom convention: zero
// means default and negative means none.
func padding(p *float64) float64 {
	switch {
	case p == nil:
		return 0
	case *p == 0:
		return -1
	default:
		return *p
	}
}
