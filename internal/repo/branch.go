package repo

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/sirupsen/logrus"

	"github.com/systemshift/gg/internal/avl"
	"github.com/systemshift/gg/internal/trie"
)

func validBranchName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty branch name", ErrInvalidOperation)
	case strings.HasPrefix(name, "-"), strings.HasPrefix(name, "/"), strings.HasSuffix(name, "/"):
		return fmt.Errorf("%w: bad branch name %q", ErrInvalidOperation, name)
	case strings.Contains(name, ".."), strings.Contains(name, "//"):
		return fmt.Errorf("%w: bad branch name %q", ErrInvalidOperation, name)
	case strings.IndexFunc(name, unicode.IsSpace) >= 0:
		return fmt.Errorf("%w: branch name %q contains whitespace", ErrInvalidOperation, name)
	}
	return nil
}

// Branches returns every branch sorted by name.
func (r *Repository) Branches() []avl.BranchInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.branches.All()
}

// Branch looks up one branch.
func (r *Repository) Branch(name string) (avl.BranchInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.branches.Find(name)
	if !ok {
		return avl.BranchInfo{}, fmt.Errorf("%w: branch %s", ErrNotFound, name)
	}
	return b, nil
}

// CreateBranch starts a new branch at the current head.
func (r *Repository) CreateBranch(name string) (avl.BranchInfo, error) {
	if err := validBranchName(name); err != nil {
		return avl.BranchInfo{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	head, ok := r.commits.Head()
	if !ok {
		return avl.BranchInfo{}, fmt.Errorf("%w: no head commit", ErrNotFound)
	}
	if _, exists := r.branches.Find(name); exists {
		return avl.BranchInfo{}, fmt.Errorf("%w: branch %s", ErrAlreadyExists, name)
	}
	b := avl.NewBranch(name, head.ID(), r.now())
	err := r.mutate(func() error {
		r.branches.Insert(b)
		return nil
	})
	if err != nil {
		return avl.BranchInfo{}, err
	}
	r.record("branch", name+" "+head.ID())
	r.log.WithFields(logrus.Fields{"branch": name, "commit": head.ID()}).Debug("branch created")
	return b, nil
}

// DeleteBranch removes a branch other than the current one. Its commits
// stay in history.
func (r *Repository) DeleteBranch(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if name == r.current {
		return fmt.Errorf("%w: cannot delete the checked-out branch %s", ErrInvalidOperation, name)
	}
	if _, ok := r.branches.Find(name); !ok {
		return fmt.Errorf("%w: branch %s", ErrNotFound, name)
	}
	err := r.mutate(func() error {
		r.branches.Remove(name)
		return nil
	})
	if err != nil {
		return err
	}
	r.record("branch-delete", name)
	return nil
}

// Checkout switches to branch name. Staged changes block the switch.
// Paths recorded in the target commit become Committed unless they are
// marked Modified.
func (r *Repository) Checkout(name string) (avl.BranchInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.branches.Find(name)
	if !ok {
		return avl.BranchInfo{}, fmt.Errorf("%w: branch %s", ErrNotFound, name)
	}
	if staged := r.files.FilesByStatus(trie.Staged); len(staged) > 0 {
		return avl.BranchInfo{}, fmt.Errorf("%w: %d staged paths; commit them first", ErrInvalidOperation, len(staged))
	}
	target, ok := r.commits.Get(b.CommitID)
	if !ok {
		return avl.BranchInfo{}, fmt.Errorf("%w: commit %s", ErrNotFound, b.CommitID)
	}
	prev := r.current
	err := r.mutate(func() error {
		r.commits.SetHead(b.CommitID)
		for p := range target.Commit().Files {
			if st, ok := r.files.Status(p); ok && st == trie.Modified {
				continue
			}
			r.files.Insert(p, trie.Committed)
			r.seen.Add(p)
		}
		r.current = name
		return nil
	})
	if err != nil {
		return avl.BranchInfo{}, err
	}
	r.record("checkout", name)
	r.log.WithFields(logrus.Fields{"from": prev, "to": name}).Debug("checked out")
	return b, nil
}
