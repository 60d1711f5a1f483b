// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "encoding/json"

// UserSet is a set of user ids that remembers insertion order.
// The zero value is an empty set ready to use. Mutations copy the
// underlying storage first, so a copied UserSet never changes when the
// original does.
type UserSet struct {
	ids   []string
	index map[string]int
}

// NewUserSet builds a set from ids, dropping duplicates.
func NewUserSet(ids ...string) UserSet {
	unique := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	var s UserSet
	s.rebuild(unique)
	return s
}

func (s UserSet) Has(id string) bool {
	_, ok := s.index[id]
	return ok
}

// Add inserts id and reports whether it was newly added.
func (s *UserSet) Add(id string) bool {
	if s.Has(id) {
		return false
	}
	ids := make([]string, len(s.ids), len(s.ids)+1)
	copy(ids, s.ids)
	s.rebuild(append(ids, id))
	return true
}

// Remove deletes id and reports whether it was present.
func (s *UserSet) Remove(id string) bool {
	i, ok := s.index[id]
	if !ok {
		return false
	}
	ids := make([]string, 0, len(s.ids)-1)
	ids = append(ids, s.ids[:i]...)
	ids = append(ids, s.ids[i+1:]...)
	s.rebuild(ids)
	return true
}

// rebuild points s at fresh storage holding ids
func (s *UserSet) rebuild(ids []string) {
	index := make(map[string]int, len(ids))
	for i, id := range ids {
		index[id] = i
	}
	s.ids = ids
	s.index = index
}

// Toggle adds id if absent, removes it otherwise. It returns true when id
// is in the set afterwards.
func (s *UserSet) Toggle(id string) bool {
	if s.Remove(id) {
		return false
	}
	s.Add(id)
	return true
}

func (s UserSet) Len() int {
	return len(s.ids)
}

// IDs returns a copy of the members in insertion order.
func (s UserSet) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

func (s UserSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.IDs())
}

func (s *UserSet) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewUserSet(ids...)
	return nil
}
