// Package skiplist indexes commit ids in a probabilistic layered list.
//
// Nodes are ordered by commit id compared as plain strings. Level 0 links
// every node; each higher level links a random subset roughly half the size
// of the one below, so search and insert skip whole runs of nodes.
package skiplist

import "time"

// MaxLevel caps the number of levels a node may span.
const MaxLevel = 16

// RandSource supplies the coin flips used for level selection.
// *rand.Rand from math/rand/v2 satisfies it.
type RandSource interface {
	Float64() float64
}

// Entry is one commit reference stored in the list.
type Entry struct {
	CommitID  string
	Timestamp time.Time
}

type node struct {
	entry Entry
	next  []*node
}

// List is a skip list of commit references. Duplicate ids are kept.
type List struct {
	head  *node
	level int // highest level index currently in use
	size  int
	rng   RandSource
}

// New returns an empty list drawing levels from rng.
func New(rng RandSource) *List {
	return &List{
		head: &node{next: make([]*node, MaxLevel)},
		rng:  rng,
	}
}

// randomLevel flips a fair coin until tails; P(level >= k) = 2^-k.
func (l *List) randomLevel() int {
	lvl := 0
	for lvl < MaxLevel-1 && l.rng.Float64() < 0.5 {
		lvl++
	}
	return lvl
}

// Len is the number of entries, duplicates included.
func (l *List) Len() int { return l.size }

// Level is the highest level index in use.
func (l *List) Level() int { return l.level }

// predecessors fills update with the last node before id on every level.
func (l *List) predecessors(id string, update *[MaxLevel]*node) {
	x := l.head
	for i := l.level; i >= 0; i-- {
		for x.next[i] != nil && x.next[i].entry.CommitID < id {
			x = x.next[i]
		}
		update[i] = x
	}
}

// Insert links a new entry. It always succeeds; an existing id gains a
// duplicate placed ahead of the older entries.
func (l *List) Insert(id string, ts time.Time) bool {
	var update [MaxLevel]*node
	l.predecessors(id, &update)

	lvl := l.randomLevel()
	if lvl > l.level {
		for i := l.level + 1; i <= lvl; i++ {
			update[i] = l.head
		}
		l.level = lvl
	}

	n := &node{entry: Entry{CommitID: id, Timestamp: ts}, next: make([]*node, lvl+1)}
	for i := 0; i <= lvl; i++ {
		n.next[i] = update[i].next[i]
		update[i].next[i] = n
	}
	l.size++
	return true
}

func (l *List) find(id string) *node {
	x := l.head
	for i := l.level; i >= 0; i-- {
		for x.next[i] != nil && x.next[i].entry.CommitID < id {
			x = x.next[i]
		}
	}
	x = x.next[0]
	if x != nil && x.entry.CommitID == id {
		return x
	}
	return nil
}

// Seek returns the first id not less than key.
func (l *List) Seek(key string) (string, bool) {
	x := l.head
	for i := l.level; i >= 0; i-- {
		for x.next[i] != nil && x.next[i].entry.CommitID < key {
			x = x.next[i]
		}
	}
	if x.next[0] == nil {
		return "", false
	}
	return x.next[0].entry.CommitID, true
}

// Search reports whether id is in the list.
func (l *List) Search(id string) bool {
	return l.find(id) != nil
}

// Remove unlinks one entry for id.
func (l *List) Remove(id string) bool {
	var update [MaxLevel]*node
	l.predecessors(id, &update)

	target := update[0].next[0]
	if target == nil || target.entry.CommitID != id {
		return false
	}
	for i := 0; i < len(target.next); i++ {
		if update[i].next[i] != target {
			break
		}
		update[i].next[i] = target.next[i]
	}
	for l.level > 0 && l.head.next[l.level] == nil {
		l.level--
	}
	l.size--
	return true
}

// All returns every commit id in ascending order.
func (l *List) All() []string {
	ids := make([]string, 0, l.size)
	for x := l.head.next[0]; x != nil; x = x.next[0] {
		ids = append(ids, x.entry.CommitID)
	}
	return ids
}

// Entries returns every entry in list order.
func (l *List) Entries() []Entry {
	out := make([]Entry, 0, l.size)
	for x := l.head.next[0]; x != nil; x = x.next[0] {
		out = append(out, x.entry)
	}
	return out
}

// Latest returns the id with the greatest timestamp. Ties go to the entry
// further along the list.
func (l *List) Latest() (string, bool) {
	var best *node
	for x := l.head.next[0]; x != nil; x = x.next[0] {
		if best == nil || !x.entry.Timestamp.Before(best.entry.Timestamp) {
			best = x
		}
	}
	if best == nil {
		return "", false
	}
	return best.entry.CommitID, true
}

// Next returns the id following the first entry for id.
func (l *List) Next(id string) (string, bool) {
	x := l.find(id)
	if x == nil || x.next[0] == nil {
		return "", false
	}
	return x.next[0].entry.CommitID, true
}

// Prev returns the id preceding the first entry for id.
func (l *List) Prev(id string) (string, bool) {
	var update [MaxLevel]*node
	l.predecessors(id, &update)
	target := update[0].next[0]
	if target == nil || target.entry.CommitID != id || update[0] == l.head {
		return "", false
	}
	return update[0].entry.CommitID, true
}
