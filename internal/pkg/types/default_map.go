package types

// DefaultMap is a generic map wrapper that materializes default values for
// missing keys, avoiding key-existence checks at every accumulation site.
//
//	m := NewDefaultMap[string](func() int { return 0 })
//	count := m.Get("key") // 0, entry created
type DefaultMap[K comparable, V any] struct {
	data        map[K]V  // underlying key-value storage
	defaultFunc func() V // produces the default value for missing keys
}

// NewDefaultMap creates a DefaultMap with the given default-value function.
func NewDefaultMap[K comparable, V any](defaultFunc func() V) DefaultMap[K, V] {
	return DefaultMap[K, V]{
		data:        make(map[K]V),
		defaultFunc: defaultFunc,
	}
}

// Get retrieves the value for key, creating and storing a default value if
// the key is not yet present.
func (d *DefaultMap[K, V]) Get(key K) V {
	val, ok := d.data[key]
	if ok {
		return val
	}

	val = d.defaultFunc()
	d.data[key] = val
	return val
}

// Set assigns a value to the given key.
func (d *DefaultMap[K, V]) Set(key K, val V) {
	d.data[key] = val
}

// Len returns the number of entries currently stored.
func (d *DefaultMap[K, V]) Len() int {
	return len(d.data)
}

// ToMap returns the underlying map for iteration or bulk operations.
func (d *DefaultMap[K, V]) ToMap() map[K]V {
	return d.data
}
