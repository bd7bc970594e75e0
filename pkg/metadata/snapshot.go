package metadata

import "strings"

// Snapshot is a case-insensitive view of one table's canonical field
// metadata. It indexes fields by lower-cased name while keeping the
// original field order and casing, and accumulates description edits to be
// written back in a single batched schema rewrite.
type Snapshot struct {
	fields []Field
	index  map[string]int
}

// NewSnapshot builds a Snapshot from a table's field schema. When two
// fields collide on lower-cased name the later one wins, matching the
// store's own case-insensitive column semantics.
func NewSnapshot(table *Table) *Snapshot {
	s := &Snapshot{
		fields: make([]Field, len(table.Fields)),
		index:  make(map[string]int, len(table.Fields)),
	}
	copy(s.fields, table.Fields)
	for i, f := range s.fields {
		s.index[strings.ToLower(f.Name)] = i
	}
	return s
}

// Len returns the number of fields in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.fields)
}

// Lookup returns the field matching name case-insensitively.
func (s *Snapshot) Lookup(name string) (Field, bool) {
	i, ok := s.index[strings.ToLower(name)]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// Contains reports whether a field matching name exists.
func (s *Snapshot) Contains(name string) bool {
	_, ok := s.index[strings.ToLower(name)]
	return ok
}

// SetDescription replaces the stored description of the field matching name
// case-insensitively. It reports whether the field was found.
func (s *Snapshot) SetDescription(name, description string) bool {
	i, ok := s.index[strings.ToLower(name)]
	if !ok {
		return false
	}
	s.fields[i].Description = description
	return true
}

// Fields returns the snapshot's fields in schema order. The returned slice
// reflects any description edits made through SetDescription.
func (s *Snapshot) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Names returns the lower-cased field names in schema order.
func (s *Snapshot) Names() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = strings.ToLower(f.Name)
	}
	return names
}
