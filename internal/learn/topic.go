// Package learn renders short lessons about the data structures gg is
// built on, each followed by a live run of the real implementation.
package learn

import (
	"fmt"
	"strings"
)

// Topic is one lesson.
type Topic int

const (
	DAG Topic = iota
	Trie
	AVL
	SkipList
	DisjointSet
	Bloom
)

// Topics lists every topic in presentation order.
var Topics = []Topic{DAG, Trie, AVL, SkipList, DisjointSet, Bloom}

func (t Topic) String() string {
	switch t {
	case DAG:
		return "dag"
	case Trie:
		return "trie"
	case AVL:
		return "avl"
	case SkipList:
		return "skiplist"
	case DisjointSet:
		return "disjoint"
	case Bloom:
		return "bloom"
	}
	return fmt.Sprintf("topic(%d)", int(t))
}

// ParseTopic resolves a topic name. "disjointset" is accepted for
// DisjointSet.
func ParseTopic(s string) (Topic, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dag":
		return DAG, nil
	case "trie":
		return Trie, nil
	case "avl":
		return AVL, nil
	case "skiplist":
		return SkipList, nil
	case "disjoint", "disjointset":
		return DisjointSet, nil
	case "bloom":
		return Bloom, nil
	}
	return 0, fmt.Errorf("unknown topic %q (topics: %s)", s, names())
}

func names() string {
	out := make([]string, len(Topics))
	for i, t := range Topics {
		out[i] = t.String()
	}
	return strings.Join(out, ", ")
}
