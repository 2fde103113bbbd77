package persist

// MemoryMedium keeps values in a map. The zero value is ready to use.
type MemoryMedium struct {
	values map[string]string
}

func (m *MemoryMedium) Get(key string) (string, error) {
	return m.values[key], nil
}

func (m *MemoryMedium) Put(key, value string) error {
	if m.values == nil {
		m.values = make(map[string]string)
	}
	m.values[key] = value
	return nil
}
