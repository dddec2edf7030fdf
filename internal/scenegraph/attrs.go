package scenegraph

import (
	"encoding/json"
	"sort"
)

// AttrSet is a set of attribute values.
type AttrSet map[string]struct{}

// NewAttrSet returns a set holding values.
func NewAttrSet(values ...string) AttrSet {
	s := make(AttrSet, len(values))
	for _, v := range values {
		s.Add(v)
	}
	return s
}

// Add inserts v.
func (s AttrSet) Add(v string) {
	s[v] = struct{}{}
}

// Has reports whether v is in the set.
func (s AttrSet) Has(v string) bool {
	_, ok := s[v]
	return ok
}

// Sorted returns the members in ascending order.
func (s AttrSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Intersect returns the members shared with other, sorted.
func (s AttrSet) Intersect(other AttrSet) []string {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	var out []string
	for v := range small {
		if large.Has(v) {
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

// Clone returns an independent copy.
func (s AttrSet) Clone() AttrSet {
	out := make(AttrSet, len(s))
	for v := range s {
		out[v] = struct{}{}
	}
	return out
}

// MarshalJSON encodes the set as a sorted array.
func (s AttrSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON decodes an array of values.
func (s *AttrSet) UnmarshalJSON(data []byte) error {
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	*s = NewAttrSet(values...)
	return nil
}
