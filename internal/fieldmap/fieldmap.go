// Package fieldmap turns a raw secret payload into the named byte fields
// written to one Kubernetes secret.
package fieldmap

// Field is one named byte payload.
type Field struct {
	Name  string
	Value []byte
}

// FieldMap is an ordered set of uniquely named fields. Order is fixed at
// insertion and survives overwrites, so identical input always produces
// identical output.
type FieldMap struct {
	fields []Field
	index  map[string]int
}

// New returns an empty FieldMap.
func New() *FieldMap {
	return &FieldMap{index: make(map[string]int)}
}

// Set adds a field or overwrites an existing one in place.
func (m *FieldMap) Set(name string, value []byte) {
	if i, ok := m.index[name]; ok {
		m.fields[i].Value = value
		return
	}
	m.index[name] = len(m.fields)
	m.fields = append(m.fields, Field{Name: name, Value: value})
}

// Get returns the value of a field.
func (m *FieldMap) Get(name string) ([]byte, bool) {
	i, ok := m.index[name]
	if !ok {
		return nil, false
	}
	return m.fields[i].Value, true
}

// Len returns the number of fields.
func (m *FieldMap) Len() int {
	return len(m.fields)
}

// Fields returns the fields in insertion order.
func (m *FieldMap) Fields() []Field {
	return m.fields
}

// Names returns the field names in insertion order.
func (m *FieldMap) Names() []string {
	names := make([]string, len(m.fields))
	for i, f := range m.fields {
		names[i] = f.Name
	}
	return names
}

// Bytes returns the fields as the map shape the Kubernetes API expects.
func (m *FieldMap) Bytes() map[string][]byte {
	out := make(map[string][]byte, len(m.fields))
	for _, f := range m.fields {
		out[f.Name] = f.Value
	}
	return out
}
