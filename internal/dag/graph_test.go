package dag

import (
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func commit(id string, minutes int) Commit {
	return Commit{ID: id, Message: "msg " + id, Author: "tester", Timestamp: t0.Add(time.Duration(minutes) * time.Minute)}
}

func ids(nodes []*Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID()
	}
	return out
}

func TestBreadthFirstFromRoot(t *testing.T) {
	d := New()
	_, ok := d.AddCommit(commit("C1", 0), nil)
	require.True(t, ok)
	_, ok = d.AddCommit(commit("C2", 1), []string{"C1"})
	require.True(t, ok)
	_, ok = d.AddCommit(commit("C3", 2), []string{"C1"})
	require.True(t, ok)

	head, ok := d.Head()
	require.True(t, ok)
	require.Equal(t, "C1", head.ID())

	got := ids(d.BreadthFirst())
	require.Len(t, got, 3)
	require.Equal(t, "C1", got[0])
	assert.ElementsMatch(t, []string{"C1", "C2", "C3"}, got)
}

func TestAddCommitRejects(t *testing.T) {
	d := New()
	_, ok := d.AddCommit(commit("", 0), nil)
	require.False(t, ok, "empty id")

	_, ok = d.AddCommit(commit("a", 0), []string{"missing"})
	require.False(t, ok, "unknown parent")
	require.Zero(t, d.Len())

	_, ok = d.AddCommit(commit("a", 0), nil)
	require.True(t, ok)
	_, ok = d.AddCommit(commit("a", 1), nil)
	require.False(t, ok, "duplicate id")

	_, ok = d.AddCommit(commit("b", 1), []string{"a", "nope"})
	require.False(t, ok, "one unknown parent fails the whole add")
	a, _ := d.Get("a")
	require.Empty(t, a.Children())
}

func TestHeadRules(t *testing.T) {
	d := New()
	_, ok := d.Head()
	require.False(t, ok)
	require.Empty(t, d.BreadthFirst())

	d.AddCommit(commit("a", 0), nil)
	d.AddCommit(commit("b", 1), []string{"a"})
	head, _ := d.Head()
	require.Equal(t, "a", head.ID(), "child does not move head")

	require.False(t, d.SetHead("zzz"))
	require.True(t, d.SetHead("b"))
	head, _ = d.Head()
	require.Equal(t, "b", head.ID())

	d.AddCommit(commit("r", 2), nil)
	head, _ = d.Head()
	require.Equal(t, "r", head.ID(), "new root becomes head")
}

func TestDepthFirstPreOrder(t *testing.T) {
	d := New()
	d.AddCommit(commit("a", 0), nil)
	d.AddCommit(commit("b", 1), []string{"a"})
	d.AddCommit(commit("c", 2), []string{"b"})
	d.AddCommit(commit("d", 3), []string{"a"})
	require.Equal(t, []string{"a", "b", "c", "d"}, ids(d.DepthFirst()))
	require.Equal(t, []string{"a", "b", "d", "c"}, ids(d.BreadthFirst()))
}

func TestAncestors(t *testing.T) {
	d := New()
	d.AddCommit(commit("a", 0), nil)
	d.AddCommit(commit("b", 1), []string{"a"})
	d.AddCommit(commit("c", 2), []string{"a"})
	m, ok := d.Merge(commit("m", 3), "b", "c")
	require.True(t, ok)
	require.True(t, m.Commit().IsMerge())
	require.Equal(t, []string{"b", "c"}, m.Parents())

	require.Equal(t, []string{"b", "c", "a"}, ids(d.Ancestors("m")))
	require.Empty(t, d.Ancestors("a"))
	require.Nil(t, d.Ancestors("missing"))
}

func TestMergeRejects(t *testing.T) {
	d := New()
	d.AddCommit(commit("a", 0), nil)
	_, ok := d.Merge(commit("m", 1), "a", "a")
	require.False(t, ok)
	_, ok = d.Merge(commit("m", 1), "a", "missing")
	require.False(t, ok)
}

func TestMergeBaseAndIsAncestor(t *testing.T) {
	d := New()
	d.AddCommit(commit("root", 0), nil)
	d.AddCommit(commit("base", 1), []string{"root"})
	d.AddCommit(commit("ours", 2), []string{"base"})
	d.AddCommit(commit("theirs1", 3), []string{"base"})
	d.AddCommit(commit("theirs2", 4), []string{"theirs1"})

	base, ok := d.MergeBase("ours", "theirs2")
	require.True(t, ok)
	require.Equal(t, "base", base)

	base, ok = d.MergeBase("theirs2", "base")
	require.True(t, ok)
	require.Equal(t, "base", base)

	_, ok = d.MergeBase("ours", "missing")
	require.False(t, ok)

	require.True(t, d.IsAncestor("root", "theirs2"))
	require.True(t, d.IsAncestor("ours", "ours"))
	require.False(t, d.IsAncestor("ours", "theirs2"))
	require.False(t, d.IsAncestor("missing", "ours"))
}

func TestStoredCommitIsCopied(t *testing.T) {
	d := New()
	files := map[string]string{"a.txt": "h1"}
	parents := []string{}
	c := commit("a", 0)
	c.Files = files
	d.AddCommit(c, parents)
	files["a.txt"] = "changed"

	n, _ := d.Get("a")
	require.Equal(t, "h1", n.Commit().Files["a.txt"])

	got := n.Commit()
	got.Files["a.txt"] = "tampered"
	got.Parents = append(got.Parents, "x")
	v, ok := n.File("a.txt")
	require.True(t, ok)
	require.Equal(t, "h1", v)
	require.Empty(t, n.Parents())
	require.Equal(t, c.Timestamp, n.Timestamp())
}

func TestCommitsSortedByTime(t *testing.T) {
	d := New()
	d.AddCommit(commit("z", 0), nil)
	d.AddCommit(commit("b", 2), []string{"z"})
	d.AddCommit(commit("a", 2), []string{"z"})
	d.AddCommit(commit("m", 1), []string{"z"})
	require.Equal(t, []string{"z", "m", "a", "b"}, ids(d.Commits()))
}

// Random graphs built only through AddCommit never contain a cycle.
func TestRandomGraphIsAcyclic(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 9))
	d := New()
	var known []string
	for i := 0; i < 300; i++ {
		id := fmt.Sprintf("c%03d", i)
		var parents []string
		if len(known) > 0 {
			for j := 0; j < 1+rng.IntN(2); j++ {
				p := known[rng.IntN(len(known))]
				if len(parents) == 0 || parents[0] != p {
					parents = append(parents, p)
				}
			}
		}
		if rng.IntN(20) == 0 {
			parents = append(parents, "ghost")
		}
		if _, ok := d.AddCommit(commit(id, i), parents); ok {
			known = append(known, id)
		}
	}

	for _, id := range known {
		for _, a := range d.Ancestors(id) {
			require.NotEqual(t, id, a.ID(), "%s is its own ancestor", id)
		}
	}
}
