package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// ArtifactKeyOpts lists everything besides the date that changes an artifact.
type ArtifactKeyOpts struct {
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Style    string `json:"style"`
	Palette  string `json:"palette,omitempty"`  // explicit palette override, if any
	Registry string `json:"registry,omitempty"` // palette registry fingerprint
	Format   string `json:"format"`
}

// Keyer builds cache keys.
type Keyer interface {
	ArtifactKey(date string, opts ArtifactKeyOpts) string
}

// DefaultKeyer produces "artifact:<sha256>" over the date and options.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ArtifactKey generates a key for an encoded image.
func (DefaultKeyer) ArtifactKey(date string, opts ArtifactKeyOpts) string {
	// Marshaling a struct of scalars cannot fail.
	data, _ := json.Marshal(struct {
		Date string `json:"date"`
		ArtifactKeyOpts
	}{date, opts})
	return "artifact:" + Hash(data)
}

// Hash returns the hex SHA-256 digest of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

var _ Keyer = DefaultKeyer{}

// ScopedKeyer prefixes every key of an inner Keyer, so deployments or key
// schema versions can share one Redis.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or the default keyer when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) ArtifactKey(date string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(date, opts)
}
