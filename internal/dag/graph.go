package dag

import (
	"maps"
	"slices"
	"sort"
	"time"
)

// Commit is an immutable snapshot of the staged tree.
type Commit struct {
	ID        string            `json:"id"`
	Message   string            `json:"message"`
	Author    string            `json:"author"`
	Timestamp time.Time         `json:"timestamp"`
	Parents   []string          `json:"parents"`
	Files     map[string]string `json:"files"`
}

// Clone returns a deep copy of c.
func (c Commit) Clone() Commit {
	c.Parents = slices.Clone(c.Parents)
	c.Files = maps.Clone(c.Files)
	return c
}

// IsMerge reports whether c has more than one parent.
func (c Commit) IsMerge() bool { return len(c.Parents) > 1 }

// Node is a commit placed in the graph. Edges are commit ids resolved
// through the owning DAG.
type Node struct {
	commit   Commit
	children []string
}

// ID is the commit id.
func (n *Node) ID() string { return n.commit.ID }

// Commit returns a copy of the stored commit.
func (n *Node) Commit() Commit { return n.commit.Clone() }

// Timestamp is the commit time.
func (n *Node) Timestamp() time.Time { return n.commit.Timestamp }

// File returns the snapshot value recorded for path.
func (n *Node) File(path string) (string, bool) {
	v, ok := n.commit.Files[path]
	return v, ok
}

// Parents returns the parent ids in insertion order.
func (n *Node) Parents() []string { return slices.Clone(n.commit.Parents) }

// Children returns the ids of commits that name n as a parent.
func (n *Node) Children() []string { return slices.Clone(n.children) }

// DAG is the commit history. Every parent exists before its children, so
// the graph cannot contain a cycle.
type DAG struct {
	nodes map[string]*Node
	head  string
}

// New returns an empty DAG.
func New() *DAG {
	return &DAG{nodes: make(map[string]*Node)}
}

// Len is the number of commits.
func (d *DAG) Len() int { return len(d.nodes) }

// AddCommit inserts c with the given parents. It fails when the id is
// empty or taken, or when any parent is unknown. A root commit, or the
// first commit of an empty graph, becomes head.
func (d *DAG) AddCommit(c Commit, parents []string) (*Node, bool) {
	if c.ID == "" {
		return nil, false
	}
	if _, ok := d.nodes[c.ID]; ok {
		return nil, false
	}
	for _, p := range parents {
		if _, ok := d.nodes[p]; !ok {
			return nil, false
		}
	}

	c.Parents = slices.Clone(parents)
	if c.Parents == nil {
		c.Parents = []string{}
	}
	c.Files = maps.Clone(c.Files)
	if c.Files == nil {
		c.Files = map[string]string{}
	}

	n := &Node{commit: c}
	for _, p := range parents {
		parent := d.nodes[p]
		if !slices.Contains(parent.children, c.ID) {
			parent.children = append(parent.children, c.ID)
		}
	}
	empty := len(d.nodes) == 0
	d.nodes[c.ID] = n
	if len(parents) == 0 || empty {
		d.head = c.ID
	}
	return n, true
}

// Get looks up a commit by id.
func (d *DAG) Get(id string) (*Node, bool) {
	n, ok := d.nodes[id]
	return n, ok
}

// SetHead moves head to id.
func (d *DAG) SetHead(id string) bool {
	if _, ok := d.nodes[id]; !ok {
		return false
	}
	d.head = id
	return true
}

// Head returns the head commit, if any.
func (d *DAG) Head() (*Node, bool) {
	if d.head == "" {
		return nil, false
	}
	return d.Get(d.head)
}

// BreadthFirst visits head and then its descendants level by level.
func (d *DAG) BreadthFirst() []*Node {
	head, ok := d.Head()
	if !ok {
		return nil
	}
	return d.bfs(head.ID(), func(n *Node) []string { return n.children }, true)
}

// DepthFirst visits head and its descendants in pre-order.
func (d *DAG) DepthFirst() []*Node {
	head, ok := d.Head()
	if !ok {
		return nil
	}
	var out []*Node
	seen := make(map[string]bool)
	var visit func(id string)
	visit = func(id string) {
		if seen[id] {
			return
		}
		seen[id] = true
		n := d.nodes[id]
		out = append(out, n)
		for _, c := range n.children {
			visit(c)
		}
	}
	visit(head.ID())
	return out
}

// Ancestors returns every commit reachable from id through parent links,
// nearest first. id itself is not included.
func (d *DAG) Ancestors(id string) []*Node {
	if _, ok := d.nodes[id]; !ok {
		return nil
	}
	return d.bfs(id, func(n *Node) []string { return n.commit.Parents }, false)
}

func (d *DAG) bfs(start string, next func(*Node) []string, includeStart bool) []*Node {
	var out []*Node
	seen := map[string]bool{start: true}
	queue := []string{start}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		n := d.nodes[id]
		if id != start || includeStart {
			out = append(out, n)
		}
		for _, nb := range next(n) {
			if !seen[nb] {
				seen[nb] = true
				queue = append(queue, nb)
			}
		}
	}
	return out
}

// Merge adds c with parents ours and theirs. The two heads must be
// distinct and known.
func (d *DAG) Merge(c Commit, ours, theirs string) (*Node, bool) {
	if ours == theirs {
		return nil, false
	}
	return d.AddCommit(c, []string{ours, theirs})
}

// IsAncestor reports whether a is b or reachable from b through parents.
func (d *DAG) IsAncestor(a, b string) bool {
	if _, ok := d.nodes[a]; !ok {
		return false
	}
	if a == b {
		_, ok := d.nodes[b]
		return ok
	}
	for _, n := range d.Ancestors(b) {
		if n.ID() == a {
			return true
		}
	}
	return false
}

// MergeBase returns the common ancestor of a and b nearest to b.
func (d *DAG) MergeBase(a, b string) (string, bool) {
	if _, ok := d.nodes[a]; !ok {
		return "", false
	}
	if _, ok := d.nodes[b]; !ok {
		return "", false
	}
	fromA := map[string]bool{a: true}
	for _, n := range d.Ancestors(a) {
		fromA[n.ID()] = true
	}
	if fromA[b] {
		return b, true
	}
	for _, n := range d.Ancestors(b) {
		if fromA[n.ID()] {
			return n.ID(), true
		}
	}
	return "", false
}

// Commits returns every commit by ascending timestamp, ties broken by id.
func (d *DAG) Commits() []*Node {
	out := make([]*Node, 0, len(d.nodes))
	for _, n := range d.nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		ti, tj := out[i].commit.Timestamp, out[j].commit.Timestamp
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return out[i].ID() < out[j].ID()
	})
	return out
}
