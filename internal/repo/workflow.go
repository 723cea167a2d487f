package repo

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/systemshift/gg/internal/dag"
	"github.com/systemshift/gg/internal/trie"
)

// relPath maps a user supplied path to a clean slash-separated path
// relative to the working tree.
func (r *Repository) relPath(p string) (string, error) {
	abs := p
	if !filepath.IsAbs(p) {
		abs = filepath.Join(r.root, p)
	}
	rel, err := filepath.Rel(r.root, abs)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrInvalidOperation, p, err)
	}
	rel = filepath.ToSlash(rel)
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("%w: %s is outside the working tree", ErrInvalidOperation, p)
	}
	if rel == DirName || strings.HasPrefix(rel, DirName+"/") {
		return "", fmt.Errorf("%w: %s is inside %s", ErrInvalidOperation, p, DirName)
	}
	return rel, nil
}

// Add stages paths. Directories are staged recursively. It returns the
// staged paths in sorted order.
func (r *Repository) Add(paths ...string) ([]string, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no paths given", ErrInvalidOperation)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var staged []string
	for _, p := range paths {
		rel, err := r.relPath(p)
		if err != nil {
			return nil, err
		}
		full := filepath.Join(r.root, filepath.FromSlash(rel))
		info, err := os.Stat(full)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, p)
		}
		if !info.IsDir() {
			staged = append(staged, rel)
			continue
		}
		found, err := r.walkFiles(full)
		if err != nil {
			return nil, err
		}
		staged = append(staged, found...)
	}

	sort.Strings(staged)
	err := r.mutate(func() error {
		for _, p := range staged {
			r.files.Insert(p, trie.Staged)
			r.seen.Add(p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	r.log.WithField("paths", len(staged)).Debug("staged")
	return staged, nil
}

// walkFiles lists regular files under dir as working-tree relative paths,
// skipping the repository directory.
func (r *Repository) walkFiles(dir string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == DirName && filepath.Dir(path) == r.root {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(r.root, path)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	return out, nil
}

// Commit records the staged paths as a new commit on the current branch.
// Each path's snapshot value is the id of the commit that last recorded it.
func (r *Repository) Commit(message string) (dag.Commit, error) {
	if strings.TrimSpace(message) == "" {
		return dag.Commit{}, fmt.Errorf("%w: empty commit message", ErrInvalidOperation)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	staged := r.files.FilesByStatus(trie.Staged)
	if len(staged) == 0 {
		return dag.Commit{}, ErrNothingToCommit
	}
	branch, ok := r.branches.Find(r.current)
	if !ok {
		return dag.Commit{}, fmt.Errorf("%w: branch %s", ErrNotFound, r.current)
	}
	parent, ok := r.commits.Get(branch.CommitID)
	if !ok {
		return dag.Commit{}, fmt.Errorf("%w: commit %s", ErrNotFound, branch.CommitID)
	}

	now := r.now()
	c := dag.Commit{
		ID:        r.newCommitID(),
		Message:   message,
		Author:    r.cfg.Author,
		Timestamp: now,
		Files:     parent.Commit().Files,
	}
	if c.Files == nil {
		c.Files = make(map[string]string, len(staged))
	}
	for _, p := range staged {
		c.Files[p] = c.ID
	}
	err := r.mutate(func() error {
		if err := r.addCommit(c, []string{parent.ID()}); err != nil {
			return err
		}
		for _, p := range staged {
			r.files.UpdateStatus(p, trie.Committed)
		}
		r.branches.UpdateCommit(r.current, c.ID, now)
		return nil
	})
	if err != nil {
		return dag.Commit{}, err
	}
	r.record("commit", c.ID+" "+firstLine(message))
	r.log.WithFields(logrus.Fields{
		"commit": c.ID,
		"branch": r.current,
		"files":  len(staged),
	}).Debug("commit created")

	n, _ := r.commits.Get(c.ID)
	return n.Commit(), nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// MarkModified flags a committed path as changed in the working tree.
func (r *Repository) MarkModified(path string) error {
	rel, err := r.relPath(path)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.files.Status(rel)
	if !ok {
		return fmt.Errorf("%w: %s is not tracked", ErrNotFound, rel)
	}
	if st != trie.Committed {
		return fmt.Errorf("%w: %s is %s, not committed", ErrInvalidOperation, rel, st)
	}
	return r.mutate(func() error {
		r.files.UpdateStatus(rel, trie.Modified)
		return nil
	})
}

// Status describes the working tree.
type Status struct {
	Branch    string
	Head      string
	Staged    []string
	Modified  []string
	Committed []string
	Untracked []string
}

// Clean reports whether nothing is staged, modified or untracked.
func (s Status) Clean() bool {
	return len(s.Staged) == 0 && len(s.Modified) == 0 && len(s.Untracked) == 0
}

// Status classifies tracked paths from the trie and finds untracked files
// by walking the working tree. The Bloom filter answers most membership
// checks; only its positives are confirmed against the trie.
func (r *Repository) Status() (Status, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	st := Status{
		Branch:    r.current,
		Staged:    r.files.FilesByStatus(trie.Staged),
		Modified:  r.files.FilesByStatus(trie.Modified),
		Committed: r.files.FilesByStatus(trie.Committed),
	}
	if head, ok := r.commits.Head(); ok {
		st.Head = head.ID()
	}

	onDisk, err := r.walkFiles(r.root)
	if err != nil {
		return Status{}, err
	}
	var confirmed int
	for _, p := range onDisk {
		if r.seen.MightContain(p) {
			confirmed++
			if r.files.Search(p) {
				continue
			}
		}
		st.Untracked = append(st.Untracked, p)
	}
	r.log.WithFields(logrus.Fields{
		"scanned":      len(onDisk),
		"bloom_hits":   confirmed,
		"fp_estimate":  r.seen.FalsePositiveProbability(),
		"tracked_size": r.files.Len(),
	}).Debug("status scan")
	return st, nil
}

// Files returns every tracked path with its status.
func (r *Repository) Files() []trie.File {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.files.Files()
}

// Log returns up to n commits reachable from head, newest first. n <= 0
// returns all of them.
func (r *Repository) Log(n int) []dag.Commit {
	r.mu.RLock()
	defer r.mu.RUnlock()

	head, ok := r.commits.Head()
	if !ok {
		return nil
	}
	nodes := append([]*dag.Node{head}, r.commits.Ancestors(head.ID())...)
	sort.SliceStable(nodes, func(i, j int) bool {
		ti, tj := nodes[i].Timestamp(), nodes[j].Timestamp()
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return nodes[i].ID() > nodes[j].ID()
	})
	if n > 0 && len(nodes) > n {
		nodes = nodes[:n]
	}
	out := make([]dag.Commit, len(nodes))
	for i, node := range nodes {
		out[i] = node.Commit()
	}
	return out
}

// ResolveCommit finds the commit whose id is ref or starts with ref.
func (r *Repository) ResolveCommit(ref string) (dag.Commit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, err := r.resolveID(ref)
	if err != nil {
		return dag.Commit{}, err
	}
	n, _ := r.commits.Get(id)
	return n.Commit(), nil
}

func (r *Repository) resolveID(ref string) (string, error) {
	if ref == "" {
		return "", fmt.Errorf("%w: empty commit id", ErrInvalidOperation)
	}
	if r.index.Search(ref) {
		return ref, nil
	}
	first, ok := r.index.Seek(ref)
	if !ok || !strings.HasPrefix(first, ref) {
		return "", fmt.Errorf("%w: commit %s", ErrNotFound, ref)
	}
	if next, ok := r.index.Next(first); ok && next != first && strings.HasPrefix(next, ref) {
		return "", fmt.Errorf("%w: %s matches %s and %s", ErrAmbiguous, ref, first, next)
	}
	return first, nil
}
