package unionfind

import "sort"

// Conflict is a path changed on both sides of a merge.
type Conflict struct {
	Path       string `json:"path"`
	Base       string `json:"base"`
	Ours       string `json:"ours"`
	Theirs     string `json:"theirs"`
	Resolved   bool   `json:"resolved"`
	Resolution string `json:"resolution,omitempty"`
}

// OursKey and TheirsKey name the two revisions of path inside the Set.
func OursKey(path string) string   { return path + "#ours" }
func TheirsKey(path string) string { return path + "#theirs" }

// DetectConflicts registers both revisions of every candidate and returns
// the ones still unresolved. A candidate whose path is already resolved is
// kept as is.
func (s *Set) DetectConflicts(candidates []Conflict) []Conflict {
	var open []Conflict
	for _, c := range candidates {
		if prev, ok := s.conflicts[c.Path]; ok && prev.Resolved {
			continue
		}
		s.MakeSet(OursKey(c.Path))
		s.MakeSet(TheirsKey(c.Path))
		c.Resolved = false
		c.Resolution = ""
		cp := c
		s.conflicts[c.Path] = &cp
		open = append(open, c)
	}
	return open
}

// ResolveConflict records resolution for path and joins its two revisions.
func (s *Set) ResolveConflict(path, resolution string) bool {
	c, ok := s.conflicts[path]
	if !ok {
		return false
	}
	s.Union(OursKey(path), TheirsKey(path))
	c.Resolved = true
	c.Resolution = resolution
	return true
}

// Conflict looks up the conflict recorded for path.
func (s *Set) Conflict(path string) (Conflict, bool) {
	c, ok := s.conflicts[path]
	if !ok {
		return Conflict{}, false
	}
	return *c, true
}

// Conflicts returns every recorded conflict sorted by path.
func (s *Set) Conflicts() []Conflict {
	out := make([]Conflict, 0, len(s.conflicts))
	for _, c := range s.conflicts {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Unresolved returns the open conflicts sorted by path.
func (s *Set) Unresolved() []Conflict {
	var out []Conflict
	for _, c := range s.Conflicts() {
		if !c.Resolved {
			out = append(out, c)
		}
	}
	return out
}

// RestoreConflicts replaces the recorded conflicts.
func (s *Set) RestoreConflicts(cs []Conflict) {
	s.conflicts = make(map[string]*Conflict, len(cs))
	for _, c := range cs {
		cp := c
		s.conflicts[c.Path] = &cp
	}
}
