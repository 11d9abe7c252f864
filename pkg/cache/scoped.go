package cache

// ScopedKeyer prefixes every key of an inner Keyer. Scenes that point the
// same basemap source at different upstream servers use it to keep their
// tiles apart.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// the default keyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// HTTPKey generates a prefixed HTTP key.
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

// TileKey generates a prefixed tile key.
func (k *ScopedKeyer) TileKey(source string, z, x, y uint32) string {
	return k.prefix + k.inner.TileKey(source, z, x, y)
}

// ExportKey generates a prefixed export key.
func (k *ScopedKeyer) ExportKey(opts ExportKeyOpts) string {
	return k.prefix + k.inner.ExportKey(opts)
}
