package cache

// ScopedKeyer wraps a Keyer with a prefix so separate deployments or
// projects sharing one Redis instance get disjoint key namespaces.
//
// Example usage:
//
//	// Per-project keys on a shared backend
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "project:atlas:")
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

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(kind, inputHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(kind, inputHash, opts)
}

// Ensure ScopedKeyer implements Keyer.
var _ Keyer = (*ScopedKeyer)(nil)
