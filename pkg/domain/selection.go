package domain

import "encoding/json"

// SelectionSet is an ordered set of item ids.
// It remembers insertion order and answers membership in constant time.
// The zero value is an empty set ready to use.
type SelectionSet struct {
	ids []string
	pos map[string]int
}

// NewSelectionSet creates a set holding ids in the given order.
// Duplicates are ignored.
func NewSelectionSet(ids ...string) SelectionSet {
	var s SelectionSet
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add inserts id at the end of the set. It reports whether the set changed.
func (s *SelectionSet) Add(id string) bool {
	if _, ok := s.pos[id]; ok {
		return false
	}
	if s.pos == nil {
		s.pos = make(map[string]int)
	}
	s.pos[id] = len(s.ids)
	s.ids = append(s.ids, id)
	return true
}

// Remove deletes id from the set. It reports whether the set changed.
func (s *SelectionSet) Remove(id string) bool {
	i, ok := s.pos[id]
	if !ok {
		return false
	}
	delete(s.pos, id)
	s.ids = append(s.ids[:i], s.ids[i+1:]...)
	for j := i; j < len(s.ids); j++ {
		s.pos[s.ids[j]] = j
	}
	return true
}

// Has reports whether id is in the set.
func (s SelectionSet) Has(id string) bool {
	_, ok := s.pos[id]
	return ok
}

// Len returns the number of ids in the set.
func (s SelectionSet) Len() int {
	return len(s.ids)
}

// IDs returns the ids in insertion order. The slice is a copy.
func (s SelectionSet) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// Clear empties the set. It reports whether the set changed.
func (s *SelectionSet) Clear() bool {
	if len(s.ids) == 0 {
		return false
	}
	s.ids = nil
	s.pos = nil
	return true
}

// Clone returns an independent copy of the set.
func (s SelectionSet) Clone() SelectionSet {
	c := SelectionSet{ids: s.IDs()}
	if len(s.pos) > 0 {
		c.pos = make(map[string]int, len(s.pos))
		for k, v := range s.pos {
			c.pos[k] = v
		}
	}
	return c
}

// Equal reports whether both sets hold the same ids, ignoring order.
func (s SelectionSet) Equal(other SelectionSet) bool {
	if s.Len() != other.Len() {
		return false
	}
	for _, id := range s.ids {
		if !other.Has(id) {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the set as a JSON list in insertion order.
func (s SelectionSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.IDs())
}

// UnmarshalJSON decodes a JSON list into the set.
func (s *SelectionSet) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewSelectionSet(ids...)
	return nil
}
