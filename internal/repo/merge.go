package repo

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/systemshift/gg/internal/config"
	"github.com/systemshift/gg/internal/dag"
	"github.com/systemshift/gg/internal/trie"
	"github.com/systemshift/gg/internal/unionfind"
)

// MergeResult describes a completed merge.
type MergeResult struct {
	Commit    dag.Commit
	Base      string
	Conflicts []unionfind.Conflict
}

// Merge joins branch source into the current branch with a two-parent
// commit. Conflicts are simulated: every third tracked path, counted in
// trie order, that is Committed is treated as changed on both sides. Each
// conflict is grouped in the disjoint set and resolved with the configured
// merge strategy.
func (r *Repository) Merge(source string) (MergeResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if source == r.current {
		return MergeResult{}, fmt.Errorf("%w: cannot merge a branch into itself", ErrInvalidOperation)
	}
	theirs, ok := r.branches.Find(source)
	if !ok {
		return MergeResult{}, fmt.Errorf("%w: branch %s", ErrNotFound, source)
	}
	ours, ok := r.branches.Find(r.current)
	if !ok {
		return MergeResult{}, fmt.Errorf("%w: branch %s", ErrNotFound, r.current)
	}
	if r.commits.IsAncestor(theirs.CommitID, ours.CommitID) {
		return MergeResult{}, fmt.Errorf("%w: %s is already up to date with %s", ErrInvalidOperation, r.current, source)
	}
	oursNode, ok := r.commits.Get(ours.CommitID)
	if !ok {
		return MergeResult{}, fmt.Errorf("%w: commit %s", ErrNotFound, ours.CommitID)
	}
	theirsNode, ok := r.commits.Get(theirs.CommitID)
	if !ok {
		return MergeResult{}, fmt.Errorf("%w: commit %s", ErrNotFound, theirs.CommitID)
	}
	oursCommit, theirsCommit := oursNode.Commit(), theirsNode.Commit()

	var baseFiles map[string]string
	base, ok := r.commits.MergeBase(ours.CommitID, theirs.CommitID)
	if ok {
		n, _ := r.commits.Get(base)
		baseFiles = n.Commit().Files
	}

	var candidates []unionfind.Conflict
	for i, f := range r.files.Files() {
		if i%3 != 0 || f.Status != trie.Committed {
			continue
		}
		candidates = append(candidates, unionfind.Conflict{
			Path:   f.Path,
			Base:   baseFiles[f.Path],
			Ours:   oursCommit.Files[f.Path],
			Theirs: theirsCommit.Files[f.Path],
		})
	}

	strategy := r.cfg.MergeStrategy
	files := oursCommit.Files
	for p, v := range theirsCommit.Files {
		if _, mine := files[p]; !mine {
			files[p] = v
		}
	}

	now := r.now()
	mc := dag.Commit{
		ID:        r.newCommitID(),
		Message:   fmt.Sprintf("Merge branch '%s' into %s", source, r.current),
		Author:    r.cfg.Author,
		Timestamp: now,
		Parents:   []string{ours.CommitID, theirs.CommitID},
		Files:     files,
	}

	var open []unionfind.Conflict
	err := r.mutate(func() error {
		open = r.conflicts.DetectConflicts(candidates)
		for _, c := range open {
			r.conflicts.ResolveConflict(c.Path, strategy)
			if strategy == config.StrategyTheirs && c.Theirs != "" {
				mc.Files[c.Path] = c.Theirs
			}
		}
		addr, err := r.objects.PutCommit(mc)
		if err != nil {
			return err
		}
		if _, ok := r.commits.Merge(mc, ours.CommitID, theirs.CommitID); !ok {
			return fmt.Errorf("%w: merge commit rejected", ErrInvalidOperation)
		}
		r.commits.SetHead(mc.ID)
		r.index.Insert(mc.ID, now)
		r.addrs[mc.ID] = addr
		r.branches.UpdateCommit(r.current, mc.ID, now)
		for p := range theirsCommit.Files {
			if _, ok := r.files.Status(p); !ok {
				r.files.Insert(p, trie.Committed)
				r.seen.Add(p)
			}
		}
		return nil
	})
	if err != nil {
		return MergeResult{}, err
	}

	r.record("merge", fmt.Sprintf("%s %s into %s", mc.ID, source, r.current))
	r.log.WithFields(logrus.Fields{
		"commit":    mc.ID,
		"source":    source,
		"base":      base,
		"conflicts": len(open),
		"strategy":  strategy,
	}).Debug("merged")

	resolved := make([]unionfind.Conflict, 0, len(open))
	for _, c := range open {
		c.Resolved = true
		c.Resolution = strategy
		resolved = append(resolved, c)
	}
	n, _ := r.commits.Get(mc.ID)
	return MergeResult{Commit: n.Commit(), Base: base, Conflicts: resolved}, nil
}

// Conflicts lists every conflict recorded by past merges.
func (r *Repository) Conflicts() []unionfind.Conflict {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.conflicts.Conflicts()
}

// ConflictGroups returns the disjoint-set components over conflict
// revision keys.
func (r *Repository) ConflictGroups() [][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.conflicts.Components()
}

// Resolve records resolution for a conflicted path, replacing any earlier
// resolution.
func (r *Repository) Resolve(path, resolution string) error {
	if resolution == "" {
		return fmt.Errorf("%w: empty resolution", ErrInvalidOperation)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conflicts.Conflict(path); !ok {
		return fmt.Errorf("%w: no conflict recorded for %s", ErrNotFound, path)
	}
	err := r.mutate(func() error {
		r.conflicts.ResolveConflict(path, resolution)
		return nil
	})
	if err != nil {
		return err
	}
	r.record("resolve", path+" "+resolution)
	return nil
}
