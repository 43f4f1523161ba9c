package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation.
// The serve command builds one from --cache-prefix so instances
// sharing a Redis database keep their entries apart.
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

// RunKey generates a prefixed key for a slicing run.
func (k *ScopedKeyer) RunKey(sourceHash, profileHash string) string {
	return k.prefix + k.inner.RunKey(sourceHash, profileHash)
}
