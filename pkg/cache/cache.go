// Package cache stores exported netlists and rendered schematics.
//
// # Overview
//
// A [Cache] is a byte store with per-entry TTLs. Three backends exist:
//
//   - [FileCache]: one file per entry under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for the HTTP service
//   - [NullCache]: stores nothing, for --no-cache
//
// Keys come from a [Keyer]. Artifact keys combine the hash of the design
// description with every option that changes the output bytes, so two
// exports that would differ never share an entry.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with expiring entries.
type Cache interface {
	// Get returns the data stored under key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// TTLArtifact is the default lifetime of exported and rendered artifacts.
const TTLArtifact = 7 * 24 * time.Hour

// Keyer builds cache keys.
type Keyer interface {
	// ArtifactKey identifies an output produced from a design.
	ArtifactKey(designHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts holds every option that changes an artifact's bytes.
type ArtifactKeyOpts struct {
	Kind         string  `json:"kind"` // "json" or a render format
	Creator      string  `json:"creator,omitempty"`
	Order        string  `json:"order,omitempty"`
	StrictQuotes bool    `json:"strict_quotes,omitempty"`
	Gzip         bool    `json:"gzip,omitempty"`
	Detailed     bool    `json:"detailed,omitempty"`
	Scale        float64 `json:"scale,omitempty"`
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns a [DefaultKeyer].
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ArtifactKey returns "artifact:<hash of design hash and opts>".
func (DefaultKeyer) ArtifactKey(designHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", designHash, opts)
}
