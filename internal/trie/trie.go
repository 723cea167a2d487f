// Package trie tracks file paths and their lifecycle status in a byte-wise
// prefix tree.
package trie

import (
	"fmt"
	"slices"
	"strings"
)

// Status is the lifecycle state of a tracked path.
type Status uint8

const (
	Untracked Status = iota
	Staged
	Committed
	Modified
)

func (s Status) String() string {
	switch s {
	case Untracked:
		return "untracked"
	case Staged:
		return "staged"
	case Committed:
		return "committed"
	case Modified:
		return "modified"
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

// ParseStatus is the inverse of Status.String.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(s) {
	case "untracked":
		return Untracked, nil
	case "staged":
		return Staged, nil
	case "committed":
		return Committed, nil
	case "modified":
		return Modified, nil
	}
	return Untracked, fmt.Errorf("trie: unknown status %q", s)
}

// File is one tracked path.
type File struct {
	Path   string
	Status Status
}

type node struct {
	children map[byte]*node
	end      bool
	status   Status
}

func newNode() *node {
	return &node{children: make(map[byte]*node)}
}

// Trie maps paths to a Status. Entries are never removed.
type Trie struct {
	root  *node
	count int
}

// New returns an empty trie.
func New() *Trie {
	return &Trie{root: newNode()}
}

// Insert marks path as tracked with status, overwriting any previous status.
// The empty path is rejected.
func (t *Trie) Insert(path string, status Status) bool {
	if path == "" {
		return false
	}
	n := t.root
	for i := 0; i < len(path); i++ {
		c := path[i]
		child, ok := n.children[c]
		if !ok {
			child = newNode()
			n.children[c] = child
		}
		n = child
	}
	if !n.end {
		t.count++
	}
	n.end = true
	n.status = status
	return true
}

// walk returns the node reached by path, or nil.
func (t *Trie) walk(path string) *node {
	n := t.root
	for i := 0; i < len(path); i++ {
		child, ok := n.children[path[i]]
		if !ok {
			return nil
		}
		n = child
	}
	return n
}

// Search reports whether path itself was inserted. A prefix of a tracked
// path does not match.
func (t *Trie) Search(path string) bool {
	n := t.walk(path)
	return n != nil && n.end
}

// UpdateStatus changes the status of an already tracked path.
func (t *Trie) UpdateStatus(path string, status Status) bool {
	n := t.walk(path)
	if n == nil || !n.end {
		return false
	}
	n.status = status
	return true
}

// Status returns the status of path; ok is false if it was never inserted.
func (t *Trie) Status(path string) (Status, bool) {
	n := t.walk(path)
	if n == nil || !n.end {
		return Untracked, false
	}
	return n.status, true
}

// Len is the number of tracked paths.
func (t *Trie) Len() int { return t.count }

// Files returns every tracked path in ascending byte order.
func (t *Trie) Files() []File {
	files := make([]File, 0, t.count)
	collect(t.root, nil, &files)
	return files
}

// FilesByStatus returns the tracked paths currently in status, sorted.
func (t *Trie) FilesByStatus(status Status) []string {
	var paths []string
	for _, f := range t.Files() {
		if f.Status == status {
			paths = append(paths, f.Path)
		}
	}
	return paths
}

// FilesWithPrefix returns the tracked paths beginning with prefix, sorted.
func (t *Trie) FilesWithPrefix(prefix string) []File {
	n := t.walk(prefix)
	if n == nil {
		return nil
	}
	var files []File
	collect(n, []byte(prefix), &files)
	return files
}

func collect(n *node, path []byte, out *[]File) {
	if n.end {
		*out = append(*out, File{Path: string(path), Status: n.status})
	}
	keys := make([]byte, 0, len(n.children))
	for c := range n.children {
		keys = append(keys, c)
	}
	slices.Sort(keys)
	for _, c := range keys {
		collect(n.children[c], append(path, c), out)
	}
}
