package repo

import (
	"encoding/json"
	"fmt"
	"maps"
	"sort"

	bolt "go.etcd.io/bbolt"

	"github.com/systemshift/gg/internal/avl"
	"github.com/systemshift/gg/internal/bloom"
	"github.com/systemshift/gg/internal/dag"
	"github.com/systemshift/gg/internal/skiplist"
	"github.com/systemshift/gg/internal/trie"
	"github.com/systemshift/gg/internal/unionfind"
)

var (
	bucketMeta     = []byte("meta")
	bucketCommits  = []byte("commits")
	bucketBranches = []byte("branches")
	bucketFiles    = []byte("files")
	bucketMerge    = []byte("merge")

	keyBranch    = []byte("branch")
	keyHead      = []byte("head")
	keyBloom     = []byte("bloom")
	keyElements  = []byte("elements")
	keyConflicts = []byte("conflicts")
)

var errClosed = fmt.Errorf("%w: repository closed", ErrInvalidOperation)

// snapshot is the persisted form of every structure.
type snapshot struct {
	current   string
	head      string
	addrs     map[string]string // commit id -> object address
	commits   []dag.Commit
	branches  []avl.BranchInfo
	files     []trie.File
	bloom     []byte
	elements  []unionfind.Element
	conflicts []unionfind.Conflict
}

func (r *Repository) capture() (snapshot, error) {
	filter, err := r.seen.MarshalBinary()
	if err != nil {
		return snapshot{}, err
	}
	s := snapshot{
		current:   r.current,
		addrs:     maps.Clone(r.addrs),
		branches:  r.branches.All(),
		files:     r.files.Files(),
		bloom:     filter,
		elements:  r.conflicts.Elements(),
		conflicts: r.conflicts.Conflicts(),
	}
	if head, ok := r.commits.Head(); ok {
		s.head = head.ID()
	}
	for _, n := range r.commits.Commits() {
		s.commits = append(s.commits, n.Commit())
	}
	return s, nil
}

// restore replaces every structure with the contents of s.
func (r *Repository) restore(s snapshot) error {
	r.files = trie.New()
	r.commits = dag.New()
	r.branches = avl.New()
	r.index = skiplist.New(r.rng)
	r.conflicts = unionfind.New()
	r.seen = bloom.New(r.cfg.BloomBits)

	r.current = s.current
	r.addrs = maps.Clone(s.addrs)
	if r.addrs == nil {
		r.addrs = make(map[string]string)
	}
	if err := r.rebuildHistory(s.commits); err != nil {
		return err
	}
	if s.head != "" && !r.commits.SetHead(s.head) {
		return fmt.Errorf("%w: head commit %s", ErrNotFound, s.head)
	}
	for _, b := range s.branches {
		r.branches.Insert(b)
	}
	for _, f := range s.files {
		r.files.Insert(f.Path, f.Status)
	}
	if len(s.bloom) > 0 {
		if err := r.seen.UnmarshalBinary(s.bloom); err != nil {
			return fmt.Errorf("decode bloom filter: %w", err)
		}
	}
	r.conflicts.Restore(s.elements)
	r.conflicts.RestoreConflicts(s.conflicts)
	return nil
}

// mutate applies fn to the live structures and persists the result. When
// fn or the save fails, every structure is put back as it was before the
// call. Callers hold r.mu.
func (r *Repository) mutate(fn func() error) error {
	if r.db == nil {
		return errClosed
	}
	before, err := r.capture()
	if err != nil {
		return err
	}
	err = fn()
	if err == nil {
		err = r.save()
	}
	if err != nil {
		if rerr := r.restore(before); rerr != nil {
			r.log.WithError(rerr).Warn("rollback failed")
		}
		return err
	}
	return nil
}

// save writes every structure to the state database in one transaction.
// Commit objects are already in the object store; only their addresses
// are recorded here.
func (r *Repository) save() error {
	if r.db == nil {
		return errClosed
	}
	s, err := r.capture()
	if err != nil {
		return err
	}
	return r.db.Update(func(tx *bolt.Tx) error {
		meta, err := tx.CreateBucketIfNotExists(bucketMeta)
		if err != nil {
			return err
		}
		if err := meta.Put(keyBranch, []byte(s.current)); err != nil {
			return err
		}
		if s.head != "" {
			if err := meta.Put(keyHead, []byte(s.head)); err != nil {
				return err
			}
		}
		if err := meta.Put(keyBloom, s.bloom); err != nil {
			return err
		}

		commits, err := tx.CreateBucketIfNotExists(bucketCommits)
		if err != nil {
			return err
		}
		for id, addr := range s.addrs {
			if err := commits.Put([]byte(id), []byte(addr)); err != nil {
				return err
			}
		}

		// Branches and files are rewritten so removals are reflected.
		branches, err := recreateBucket(tx, bucketBranches)
		if err != nil {
			return err
		}
		for _, b := range s.branches {
			data, err := json.Marshal(b)
			if err != nil {
				return err
			}
			if err := branches.Put([]byte(b.Name), data); err != nil {
				return err
			}
		}

		files, err := recreateBucket(tx, bucketFiles)
		if err != nil {
			return err
		}
		for _, f := range s.files {
			if err := files.Put([]byte(f.Path), []byte(f.Status.String())); err != nil {
				return err
			}
		}

		merge, err := tx.CreateBucketIfNotExists(bucketMerge)
		if err != nil {
			return err
		}
		if err := putJSON(merge, keyElements, s.elements); err != nil {
			return err
		}
		return putJSON(merge, keyConflicts, s.conflicts)
	})
}

func recreateBucket(tx *bolt.Tx, name []byte) (*bolt.Bucket, error) {
	if tx.Bucket(name) != nil {
		if err := tx.DeleteBucket(name); err != nil {
			return nil, err
		}
	}
	return tx.CreateBucket(name)
}

func putJSON(b *bolt.Bucket, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return b.Put(key, data)
}

// load rebuilds every structure from the state database and object store.
func (r *Repository) load() error {
	s := snapshot{addrs: make(map[string]string)}
	err := r.db.View(func(tx *bolt.Tx) error {
		meta := tx.Bucket(bucketMeta)
		if meta == nil {
			return fmt.Errorf("%w: state database has no metadata", ErrNotRepository)
		}
		s.current = string(meta.Get(keyBranch))
		s.head = string(meta.Get(keyHead))
		s.bloom = append([]byte(nil), meta.Get(keyBloom)...)

		if b := tx.Bucket(bucketCommits); b != nil {
			err := b.ForEach(func(k, v []byte) error {
				c, err := r.objects.GetCommit(string(v))
				if err != nil {
					return fmt.Errorf("commit %s: %w", k, err)
				}
				s.addrs[string(k)] = string(v)
				s.commits = append(s.commits, c)
				return nil
			})
			if err != nil {
				return err
			}
		}

		if b := tx.Bucket(bucketBranches); b != nil {
			err := b.ForEach(func(_, v []byte) error {
				var bi avl.BranchInfo
				if err := json.Unmarshal(v, &bi); err != nil {
					return fmt.Errorf("decode branch: %w", err)
				}
				s.branches = append(s.branches, bi)
				return nil
			})
			if err != nil {
				return err
			}
		}

		if b := tx.Bucket(bucketFiles); b != nil {
			err := b.ForEach(func(k, v []byte) error {
				st, err := trie.ParseStatus(string(v))
				if err != nil {
					return err
				}
				s.files = append(s.files, trie.File{Path: string(k), Status: st})
				return nil
			})
			if err != nil {
				return err
			}
		}

		if b := tx.Bucket(bucketMerge); b != nil {
			if data := b.Get(keyElements); data != nil {
				if err := json.Unmarshal(data, &s.elements); err != nil {
					return fmt.Errorf("decode merge sets: %w", err)
				}
			}
			if data := b.Get(keyConflicts); data != nil {
				if err := json.Unmarshal(data, &s.conflicts); err != nil {
					return fmt.Errorf("decode conflicts: %w", err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	return r.restore(s)
}

// rebuildHistory adds commits parents-first. Commits are tried oldest
// first and a commit waits until all of its parents are present.
func (r *Repository) rebuildHistory(stored []dag.Commit) error {
	sort.Slice(stored, func(i, j int) bool {
		if !stored[i].Timestamp.Equal(stored[j].Timestamp) {
			return stored[i].Timestamp.Before(stored[j].Timestamp)
		}
		return stored[i].ID < stored[j].ID
	})
	pending := stored
	for len(pending) > 0 {
		var rest []dag.Commit
		for _, c := range pending {
			if _, ok := r.commits.AddCommit(c, c.Parents); !ok {
				rest = append(rest, c)
				continue
			}
			r.index.Insert(c.ID, c.Timestamp)
		}
		if len(rest) == len(pending) {
			return fmt.Errorf("%w: %d commits have missing parents", ErrNotFound, len(rest))
		}
		pending = rest
	}
	return nil
}
