package cache

// ScopedKeyer wraps a Keyer with a prefix so that several frontends can
// share one backend without colliding.
//
//	// HTTP service entries live beside CLI entries in the same Redis
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "serve:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(designHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(designHash, opts)
}
