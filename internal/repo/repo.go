// Package repo ties the gg data structures into a working repository:
// a trie of tracked paths, a commit DAG, an AVL tree of branches, a skip
// list of commit ids, a disjoint set of merge conflicts and a Bloom filter
// of seen paths. State is persisted in a bbolt database and commit objects
// in a content-addressed object store, both under .gg/.
package repo

import (
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"

	"github.com/systemshift/gg/internal/avl"
	"github.com/systemshift/gg/internal/bloom"
	"github.com/systemshift/gg/internal/config"
	"github.com/systemshift/gg/internal/dag"
	"github.com/systemshift/gg/internal/skiplist"
	"github.com/systemshift/gg/internal/trie"
	"github.com/systemshift/gg/internal/unionfind"
)

const (
	// DirName is the repository directory inside the working tree.
	DirName = ".gg"

	// DefaultBranch is created by Init.
	DefaultBranch = "main"

	initialMessage = "Initial commit"
	stateFile      = "state.db"
	journalFile    = "journal"
	configFile     = "config.yaml"
)

// Option customizes a Repository.
type Option func(*Repository)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *logrus.Logger) Option {
	return func(r *Repository) { r.log = l }
}

// WithRand sets the source of commit ids and skip-list levels.
func WithRand(rng *rand.Rand) Option {
	return func(r *Repository) { r.rng = rng }
}

// WithClock sets the time source for commit and branch timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// Repository is an open gg repository. All methods are safe for
// concurrent use.
type Repository struct {
	mu sync.RWMutex

	root string
	cfg  *config.Config
	log  *logrus.Logger
	rng  *rand.Rand
	now  func() time.Time

	files     *trie.Trie
	commits   *dag.DAG
	branches  *avl.Tree
	index     *skiplist.List
	conflicts *unionfind.Set
	seen      *bloom.Filter

	current string
	addrs   map[string]string // commit id -> object address

	objects *dag.ObjectStore
	db      *bolt.DB
}

func newRepository(root string, cfg *config.Config, opts []Option) *Repository {
	r := &Repository{
		root:  root,
		cfg:   cfg,
		now:   func() time.Time { return time.Now().UTC() },
		addrs: make(map[string]string),
	}
	for _, o := range opts {
		o(r)
	}
	if r.log == nil {
		r.log = logrus.New()
		r.log.SetOutput(io.Discard)
	}
	if r.rng == nil {
		r.rng = cfg.Rand()
	}
	r.files = trie.New()
	r.commits = dag.New()
	r.branches = avl.New()
	r.index = skiplist.New(r.rng)
	r.conflicts = unionfind.New()
	r.seen = bloom.New(cfg.BloomBits)
	return r
}

func ggDir(root string) string { return filepath.Join(root, DirName) }

func absRoot(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", dir, err)
	}
	return root, nil
}

// Init creates a repository in cfg.Dir with a root commit on DefaultBranch.
func Init(cfg *config.Config, opts ...Option) (*Repository, error) {
	root, err := absRoot(cfg.Dir)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(ggDir(root)); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyExists, ggDir(root))
	}

	r := newRepository(root, cfg, opts)
	if err := r.openStorage(); err != nil {
		return nil, err
	}
	if err := config.Write(filepath.Join(ggDir(root), configFile), cfg); err != nil {
		r.log.WithError(err).Warn("could not write default config")
	}

	now := r.now()
	c := dag.Commit{
		ID:        r.newCommitID(),
		Message:   initialMessage,
		Author:    cfg.Author,
		Timestamp: now,
	}
	if err := r.addCommit(c, nil); err != nil {
		r.Close()
		return nil, err
	}
	r.branches.Insert(avl.NewBranch(DefaultBranch, c.ID, now))
	r.current = DefaultBranch

	if err := r.save(); err != nil {
		r.Close()
		return nil, err
	}
	r.record("init", c.ID)
	r.log.WithFields(logrus.Fields{"root": root, "commit": c.ID}).Debug("repository initialized")
	return r, nil
}

// Open loads the repository rooted at cfg.Dir.
func Open(cfg *config.Config, opts ...Option) (*Repository, error) {
	root, err := absRoot(cfg.Dir)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(ggDir(root))
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotRepository, root)
	}

	r := newRepository(root, cfg, opts)
	if err := r.openStorage(); err != nil {
		return nil, err
	}
	if err := r.load(); err != nil {
		r.Close()
		return nil, err
	}
	r.log.WithFields(logrus.Fields{
		"root":    root,
		"branch":  r.current,
		"commits": r.commits.Len(),
	}).Debug("repository opened")
	return r, nil
}

func (r *Repository) openStorage() error {
	dir := ggDir(r.root)
	objects, err := dag.OpenObjectStore(filepath.Join(dir, "objects"))
	if err != nil {
		return err
	}
	db, err := bolt.Open(filepath.Join(dir, stateFile), 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		if errors.Is(err, bolt.ErrTimeout) {
			return fmt.Errorf("state database is locked by another gg process: %w", err)
		}
		return fmt.Errorf("open state database: %w", err)
	}
	r.objects = objects
	r.db = db
	return nil
}

// Close releases the state database.
func (r *Repository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

// Root is the working tree directory.
func (r *Repository) Root() string { return r.root }

// CurrentBranch is the checked-out branch name.
func (r *Repository) CurrentBranch() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Head returns the commit the current branch points at.
func (r *Repository) Head() (dag.Commit, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.commits.Head()
	if !ok {
		return dag.Commit{}, false
	}
	return n.Commit(), true
}

// newCommitID draws 8 hex characters, retrying on collision.
func (r *Repository) newCommitID() string {
	for {
		id := fmt.Sprintf("%08x", r.rng.Uint32())
		if _, taken := r.commits.Get(id); !taken {
			return id
		}
	}
}

// addCommit stores c, links it into the DAG, indexes it and moves head.
func (r *Repository) addCommit(c dag.Commit, parents []string) error {
	c.Parents = parents
	addr, err := r.objects.PutCommit(c)
	if err != nil {
		return err
	}
	if _, ok := r.commits.AddCommit(c, parents); !ok {
		return fmt.Errorf("%w: commit %s rejected by history", ErrInvalidOperation, c.ID)
	}
	r.commits.SetHead(c.ID)
	r.index.Insert(c.ID, c.Timestamp)
	r.addrs[c.ID] = addr
	return nil
}

// record appends one line to the operation journal. Failures are logged.
func (r *Repository) record(op, detail string) {
	line := fmt.Sprintf("%s %s %s\n", r.now().Format(time.RFC3339), op, detail)
	if err := dag.SafeAppend(filepath.Join(ggDir(r.root), journalFile), []byte(line)); err != nil {
		r.log.WithError(err).Warn("journal append failed")
	}
}
