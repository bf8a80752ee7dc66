package model

import (
	"maps"
	"slices"
)

// TagIDSet is a set of tag ids. The zero value is an empty, read-only set.
type TagIDSet map[uint64]struct{}

// NewTagIDSet builds a set from ids, dropping duplicates.
func NewTagIDSet(ids ...uint64) TagIDSet {
	s := make(TagIDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s TagIDSet) Len() int { return len(s) }

func (s TagIDSet) Contains(id uint64) bool {
	_, ok := s[id]
	return ok
}

// Union returns a new set holding the ids of s and other.
func (s TagIDSet) Union(other TagIDSet) TagIDSet {
	out := maps.Clone(s)
	if out == nil {
		out = make(TagIDSet, len(other))
	}
	maps.Copy(out, other)
	return out
}

// Difference returns a new set holding the ids of s that are not in other.
func (s TagIDSet) Difference(other TagIDSet) TagIDSet {
	out := make(TagIDSet, len(s))
	for id := range s {
		if !other.Contains(id) {
			out[id] = struct{}{}
		}
	}
	return out
}

// Intersect returns a new set holding the ids present in both s and other.
func (s TagIDSet) Intersect(other TagIDSet) TagIDSet {
	out := make(TagIDSet)
	for id := range s {
		if other.Contains(id) {
			out[id] = struct{}{}
		}
	}
	return out
}

func (s TagIDSet) Equal(other TagIDSet) bool {
	if len(s) != len(other) {
		return false
	}
	for id := range s {
		if !other.Contains(id) {
			return false
		}
	}
	return true
}

// Slice returns the ids in ascending order.
func (s TagIDSet) Slice() []uint64 {
	return slices.Sorted(maps.Keys(s))
}
