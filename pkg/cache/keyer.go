package cache

import "time"

// Default entry lifetimes.
const (
	TreeTTL     = 24 * time.Hour
	ArtifactTTL = 7 * 24 * time.Hour
)

// ArtifactKeyOpts are the render options an artifact depends on.
type ArtifactKeyOpts struct {
	View   string   `json:"view"`
	Format string   `json:"format"`
	Width  float64  `json:"width,omitempty"`
	Height float64  `json:"height,omitempty"`
	Clicks []string `json:"clicks,omitempty"`
	// Settled artifacts were rendered after every transition finished.
	Settled bool `json:"settled,omitempty"`
	// Settings hashes the view configuration.
	Settings string `json:"settings,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	// TreeKey keys a hierarchy built from records with the given hash.
	TreeKey(recordsHash string) string
	// ArtifactKey keys a document rendered from a tree with the given hash.
	ArtifactKey(treeHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer is the unscoped [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns the unscoped keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// TreeKey returns "tree:<hash>".
func (DefaultKeyer) TreeKey(recordsHash string) string {
	return hashKey("tree", recordsHash)
}

// ArtifactKey returns "artifact:<hash>" over the tree hash and options.
func (DefaultKeyer) ArtifactKey(treeHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", treeHash, opts)
}

// ScopedKeyer prefixes every key of an inner [Keyer], so datasets from
// different MongoDB databases can share one Redis or file cache.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer scopes inner (the [DefaultKeyer] when nil) under prefix,
// e.g. "db:solutions:".
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = DefaultKeyer{}
	}
	return ScopedKeyer{inner: inner, prefix: prefix}
}

func (k ScopedKeyer) TreeKey(recordsHash string) string {
	return k.prefix + k.inner.TreeKey(recordsHash)
}

func (k ScopedKeyer) ArtifactKey(treeHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(treeHash, opts)
}
