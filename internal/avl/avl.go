// Package avl keeps branch references in a self-balancing binary search
// tree keyed by branch name.
package avl

import "time"

// BranchInfo is a named pointer to a commit.
type BranchInfo struct {
	Name       string    `json:"name"`
	CommitID   string    `json:"commit_id"`
	Created    time.Time `json:"created"`
	LastCommit time.Time `json:"last_commit"`
}

// NewBranch returns a branch created at t pointing at commitID.
func NewBranch(name, commitID string, t time.Time) BranchInfo {
	return BranchInfo{Name: name, CommitID: commitID, Created: t, LastCommit: t}
}

type node struct {
	branch      BranchInfo
	height      int
	left, right *node
}

func height(n *node) int {
	if n == nil {
		return 0
	}
	return n.height
}

func (n *node) balanceFactor() int {
	return height(n.left) - height(n.right)
}

func (n *node) fix() {
	n.height = 1 + max(height(n.left), height(n.right))
}

//	    y            x
//	   / \          / \
//	  x   c   ->   a   y
//	 / \              / \
//	a   b            b   c
func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	y.fix()
	x.fix()
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	x.fix()
	y.fix()
	return y
}

// rebalance restores |balance| <= 1 at n, assuming both subtrees are AVL.
func rebalance(n *node) *node {
	n.fix()
	bf := n.balanceFactor()
	switch {
	case bf > 1:
		if n.left.balanceFactor() < 0 {
			n.left = rotateLeft(n.left)
		}
		return rotateRight(n)
	case bf < -1:
		if n.right.balanceFactor() > 0 {
			n.right = rotateRight(n.right)
		}
		return rotateLeft(n)
	}
	return n
}

// Tree holds branches ordered by name.
type Tree struct {
	root *node
	size int
}

// New returns an empty tree.
func New() *Tree { return &Tree{} }

// Len is the number of branches.
func (t *Tree) Len() int { return t.size }

// Height of the tree; zero when empty.
func (t *Tree) Height() int { return height(t.root) }

// Insert adds b. It fails when the name is empty or already present.
func (t *Tree) Insert(b BranchInfo) bool {
	if b.Name == "" {
		return false
	}
	var inserted bool
	t.root = insert(t.root, b, &inserted)
	if inserted {
		t.size++
	}
	return inserted
}

func insert(n *node, b BranchInfo, inserted *bool) *node {
	if n == nil {
		*inserted = true
		return &node{branch: b, height: 1}
	}
	switch {
	case b.Name < n.branch.Name:
		n.left = insert(n.left, b, inserted)
	case b.Name > n.branch.Name:
		n.right = insert(n.right, b, inserted)
	default:
		return n
	}
	if !*inserted {
		return n
	}
	return rebalance(n)
}

// Remove deletes the branch called name.
func (t *Tree) Remove(name string) bool {
	var removed bool
	t.root = remove(t.root, name, &removed)
	if removed {
		t.size--
	}
	return removed
}

func remove(n *node, name string, removed *bool) *node {
	if n == nil {
		return nil
	}
	switch {
	case name < n.branch.Name:
		n.left = remove(n.left, name, removed)
	case name > n.branch.Name:
		n.right = remove(n.right, name, removed)
	default:
		*removed = true
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		succ := minNode(n.right)
		n.branch = succ.branch
		n.right = remove(n.right, succ.branch.Name, removed)
	}
	if !*removed {
		return n
	}
	return rebalance(n)
}

func minNode(n *node) *node {
	for n.left != nil {
		n = n.left
	}
	return n
}

func (t *Tree) lookup(name string) *node {
	n := t.root
	for n != nil {
		switch {
		case name < n.branch.Name:
			n = n.left
		case name > n.branch.Name:
			n = n.right
		default:
			return n
		}
	}
	return nil
}

// Find returns a copy of the named branch.
func (t *Tree) Find(name string) (BranchInfo, bool) {
	n := t.lookup(name)
	if n == nil {
		return BranchInfo{}, false
	}
	return n.branch, true
}

// UpdateCommit moves the branch head to commitID at time at.
func (t *Tree) UpdateCommit(name, commitID string, at time.Time) bool {
	n := t.lookup(name)
	if n == nil {
		return false
	}
	n.branch.CommitID = commitID
	n.branch.LastCommit = at
	return true
}

// All returns every branch in ascending name order.
func (t *Tree) All() []BranchInfo {
	out := make([]BranchInfo, 0, t.size)
	var walk func(*node)
	walk = func(n *node) {
		if n == nil {
			return
		}
		walk(n.left)
		out = append(out, n.branch)
		walk(n.right)
	}
	walk(t.root)
	return out
}
