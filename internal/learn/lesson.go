package learn

import (
	"fmt"
	"io"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/systemshift/gg/internal/avl"
	"github.com/systemshift/gg/internal/bloom"
	"github.com/systemshift/gg/internal/dag"
	"github.com/systemshift/gg/internal/skiplist"
	"github.com/systemshift/gg/internal/trie"
	"github.com/systemshift/gg/internal/unionfind"
)

// Lesson is the printable content of a topic.
type Lesson struct {
	Topic   Topic
	Title   string
	Points  []string
	Diagram string
	// InGG says where the structure shows up in gg.
	InGG string
}

// For returns the lesson for t.
func For(t Topic) Lesson {
	switch t {
	case DAG:
		return Lesson{
			Topic: DAG,
			Title: "Directed Acyclic Graph",
			Points: []string{
				"Commits point at their parents; edges never loop back",
				"A merge commit has two parents",
				"History is any walk from a commit through its parents",
			},
			Diagram: "" +
				"  C1 --- C2 --- C4 (merge)\n" +
				"    \\          /\n" +
				"     `--- C3 -'\n",
			InGG: "every commit is a DAG node; log walks the ancestors of HEAD",
		}
	case Trie:
		return Lesson{
			Topic: Trie,
			Title: "Trie (prefix tree)",
			Points: []string{
				"One edge per byte of the key",
				"Paths sharing a prefix share nodes",
				"Lookups cost the length of the key, not the number of keys",
			},
			Diagram: "" +
				"  (root) - s - r - c - / -+- a - p - p - . - g - o\n" +
				"                          `- m - a - i - n - . - g - o\n",
			InGG: "tracks every added path and its status",
		}
	case AVL:
		return Lesson{
			Topic: AVL,
			Title: "AVL tree",
			Points: []string{
				"A binary search tree that rebalances itself",
				"Subtree heights differ by at most one at every node",
				"Insert, remove and find all run in O(log n)",
			},
			Diagram: "" +
				"      main\n" +
				"     /    \\\n" +
				"   dev   release\n" +
				"   /\n" +
				" bugfix\n",
			InGG: "stores branches ordered by name",
		}
	case SkipList:
		return Lesson{
			Topic: SkipList,
			Title: "Skip list",
			Points: []string{
				"A sorted linked list with express lanes",
				"Each node joins the next lane up with probability 1/2",
				"Expected O(log n) search without any rebalancing",
			},
			Diagram: "" +
				"L2: H ------------------> 7f ----------> nil\n" +
				"L1: H -------> 3a ------> 7f ---> c2 --> nil\n" +
				"L0: H -> 1b -> 3a -> 5e -> 7f -> c2 --> nil\n",
			InGG: "indexes commit ids for fast lookup",
		}
	case DisjointSet:
		return Lesson{
			Topic: DisjointSet,
			Title: "Disjoint set (union-find)",
			Points: []string{
				"Tracks which elements belong to the same group",
				"Find follows parents to the group's root, flattening the path",
				"Union hangs the shorter tree under the taller one",
			},
			Diagram: "" +
				"   A        D        G\n" +
				"  / \\      / \\      /\n" +
				" B   C    E   F    H\n",
			InGG: "ties the two sides of a merge conflict together once resolved",
		}
	case Bloom:
		return Lesson{
			Topic: Bloom,
			Title: "Bloom filter",
			Points: []string{
				"A bit array plus several hash functions",
				"No false negatives; occasional false positives",
				"Tiny compared to storing the keys themselves",
			},
			Diagram: "" +
				"bits:  [0][0][1][0][1][0][0][1][0][0][1][0][0][0][0][1]\n" +
				"index:  0  1  2  3  4  5  6  7  8  9 10 11 12 13 14 15\n",
			InGG: "lets status skip tracked paths while scanning the working tree",
		}
	}
	return Lesson{Topic: t, Title: t.String()}
}

// Render writes the lesson for t followed by a live demonstration.
func Render(w io.Writer, t Topic, rng *rand.Rand) error {
	l := For(t)
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\n\n", strings.ToUpper(l.Title), strings.Repeat("=", len(l.Title)))
	for _, p := range l.Points {
		fmt.Fprintf(&b, "  * %s\n", p)
	}
	fmt.Fprintf(&b, "\n%s\nIn gg: %s\n\nTry it:\n", l.Diagram, l.InGG)
	for _, line := range Demo(t, rng) {
		fmt.Fprintf(&b, "  %s\n", line)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

var demoTime = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// Demo exercises the real structure behind t and describes what happened.
func Demo(t Topic, rng *rand.Rand) []string {
	switch t {
	case DAG:
		d := dag.New()
		d.AddCommit(dag.Commit{ID: "C1", Timestamp: demoTime}, nil)
		d.AddCommit(dag.Commit{ID: "C2", Timestamp: demoTime.Add(time.Minute)}, []string{"C1"})
		d.AddCommit(dag.Commit{ID: "C3", Timestamp: demoTime.Add(2 * time.Minute)}, []string{"C1"})
		d.Merge(dag.Commit{ID: "C4", Timestamp: demoTime.Add(3 * time.Minute)}, "C2", "C3")
		_, accepted := d.AddCommit(dag.Commit{ID: "C5"}, []string{"C9"})
		return []string{
			"breadth-first from C1: " + nodeIDs(d.BreadthFirst()),
			"ancestors of C4:       " + nodeIDs(d.Ancestors("C4")),
			fmt.Sprintf("adding C5 under unknown C9 accepted: %v", accepted),
		}
	case Trie:
		tr := trie.New()
		tr.Insert("src/app.go", trie.Committed)
		tr.Insert("src/main.go", trie.Staged)
		tr.Insert("README.md", trie.Modified)
		out := []string{fmt.Sprintf("tracked paths: %d", tr.Len())}
		for _, f := range tr.FilesWithPrefix("src/") {
			out = append(out, fmt.Sprintf("src/ -> %-12s %s", f.Path, f.Status))
		}
		out = append(out, fmt.Sprintf("search \"src\": %v", tr.Search("src")))
		return out
	case AVL:
		tree := avl.New()
		for _, n := range []string{"a", "b", "c", "d", "e", "f", "g"} {
			tree.Insert(avl.NewBranch(n, "0000", demoTime))
		}
		return []string{
			"inserted a..g in sorted order",
			fmt.Sprintf("height %d (a plain BST would be 7)", tree.Height()),
		}
	case SkipList:
		l := skiplist.New(rng)
		for i := 0; i < 16; i++ {
			l.Insert(fmt.Sprintf("%08x", rng.Uint32()), demoTime.Add(time.Duration(i)*time.Minute))
		}
		ids := l.All()
		return []string{
			fmt.Sprintf("16 ids spread over %d levels", l.Level()+1),
			"smallest: " + ids[0] + "  largest: " + ids[len(ids)-1],
		}
	case DisjointSet:
		s := unionfind.New()
		for _, k := range []string{"A", "B", "C", "D", "E", "F", "G", "H"} {
			s.MakeSet(k)
		}
		s.Union("A", "B")
		s.Union("A", "C")
		s.Union("D", "E")
		s.Union("D", "F")
		s.Union("G", "H")
		before := len(s.Components())
		s.Union("A", "D")
		return []string{
			fmt.Sprintf("groups before Union(A, D): %d", before),
			fmt.Sprintf("groups after:              %d", len(s.Components())),
			fmt.Sprintf("B and F connected: %v", s.Connected("B", "F")),
		}
	case Bloom:
		f := bloom.New(16)
		f.Add("file.txt")
		return []string{
			fmt.Sprintf("add \"file.txt\" sets bits %v", f.Positions("file.txt")),
			fmt.Sprintf("might contain \"file.txt\": %v", f.MightContain("file.txt")),
			fmt.Sprintf("false positive estimate: %.4f", f.FalsePositiveProbability()),
		}
	}
	return nil
}

func nodeIDs(nodes []*dag.Node) string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID()
	}
	return strings.Join(ids, " ")
}
