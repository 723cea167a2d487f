// Package unionfind groups string keys into disjoint sets. The merge
// workflow uses it to tie the "ours" and "theirs" revisions of a
// conflicting path together once a resolution is chosen.
package unionfind

import (
	"slices"
	"sort"
)

type node struct {
	parent string
	rank   int
}

// Set is a forest of disjoint sets keyed by string.
type Set struct {
	nodes     map[string]*node
	conflicts map[string]*Conflict
}

// New returns an empty Set.
func New() *Set {
	return &Set{
		nodes:     make(map[string]*node),
		conflicts: make(map[string]*Conflict),
	}
}

// Len is the number of keys.
func (s *Set) Len() int { return len(s.nodes) }

// MakeSet creates a singleton set for key. Existing keys are left alone.
func (s *Set) MakeSet(key string) {
	if _, ok := s.nodes[key]; ok {
		return
	}
	s.nodes[key] = &node{parent: key}
}

// Find returns the representative of key, compressing the path it walks.
func (s *Set) Find(key string) (string, bool) {
	if _, ok := s.nodes[key]; !ok {
		return "", false
	}
	root := key
	for s.nodes[root].parent != root {
		root = s.nodes[root].parent
	}
	for cur := key; cur != root; {
		n := s.nodes[cur]
		cur, n.parent = n.parent, root
	}
	return root, true
}

// Union merges the sets holding a and b. It returns false when either key
// is unknown or both are already in the same set.
func (s *Set) Union(a, b string) bool {
	ra, ok := s.Find(a)
	if !ok {
		return false
	}
	rb, ok := s.Find(b)
	if !ok || ra == rb {
		return false
	}
	na, nb := s.nodes[ra], s.nodes[rb]
	switch {
	case na.rank < nb.rank:
		na.parent = rb
	case na.rank > nb.rank:
		nb.parent = ra
	default:
		nb.parent = ra
		na.rank++
	}
	return true
}

// Connected reports whether a and b share a representative.
func (s *Set) Connected(a, b string) bool {
	ra, ok := s.Find(a)
	if !ok {
		return false
	}
	rb, ok := s.Find(b)
	return ok && ra == rb
}

// Components returns every set with its keys sorted; sets are ordered by
// their first key.
func (s *Set) Components() [][]string {
	groups := make(map[string][]string)
	for key := range s.nodes {
		root, _ := s.Find(key)
		groups[root] = append(groups[root], key)
	}
	out := make([][]string, 0, len(groups))
	for _, g := range groups {
		slices.Sort(g)
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}

// Element is the persisted form of one key.
type Element struct {
	Key    string `json:"key"`
	Parent string `json:"parent"`
	Rank   int    `json:"rank"`
}

// Elements returns every key with its parent and rank, sorted by key.
func (s *Set) Elements() []Element {
	out := make([]Element, 0, len(s.nodes))
	for k, n := range s.nodes {
		out = append(out, Element{Key: k, Parent: n.parent, Rank: n.rank})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Restore replaces the forest with elems. Parents that name unknown keys
// are reset to self.
func (s *Set) Restore(elems []Element) {
	s.nodes = make(map[string]*node, len(elems))
	for _, e := range elems {
		s.nodes[e.Key] = &node{parent: e.Parent, rank: e.Rank}
	}
	for k, n := range s.nodes {
		if _, ok := s.nodes[n.parent]; !ok {
			n.parent = k
		}
	}
}
