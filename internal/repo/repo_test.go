package repo

import (
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systemshift/gg/internal/config"
	"github.com/systemshift/gg/internal/trie"
)

type fixture struct {
	cfg  *config.Config
	opts []Option
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := config.Default()
	cfg.Dir = t.TempDir()
	cfg.Author = "tester"

	tick := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		tick = tick.Add(time.Minute)
		return tick
	}
	return &fixture{
		cfg: cfg,
		opts: []Option{
			WithRand(rand.New(rand.NewPCG(1, 2))),
			WithClock(clock),
		},
	}
}

func (f *fixture) init(t *testing.T) *Repository {
	t.Helper()
	r, err := Init(f.cfg, f.opts...)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func (f *fixture) write(t *testing.T, rel, content string) {
	t.Helper()
	full := filepath.Join(f.cfg.Dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func TestInitCreatesRootCommit(t *testing.T) {
	f := newFixture(t)
	r := f.init(t)

	head, ok := r.Head()
	require.True(t, ok)
	assert.Equal(t, "Initial commit", head.Message)
	assert.Equal(t, "tester", head.Author)
	assert.Empty(t, head.Parents)
	assert.Len(t, head.ID, 8)

	assert.Equal(t, DefaultBranch, r.CurrentBranch())
	b, err := r.Branch(DefaultBranch)
	require.NoError(t, err)
	assert.Equal(t, head.ID, b.CommitID)

	assert.DirExists(t, filepath.Join(f.cfg.Dir, DirName, "objects"))
	assert.FileExists(t, filepath.Join(f.cfg.Dir, DirName, "state.db"))
	assert.FileExists(t, filepath.Join(f.cfg.Dir, DirName, "config.yaml"))
}

func TestInitTwiceFails(t *testing.T) {
	f := newFixture(t)
	f.init(t)
	_, err := Init(f.cfg, f.opts...)
	require.ErrorIs(t, err, ErrAlreadyExists)
}

func TestOpenWithoutRepository(t *testing.T) {
	cfg := config.Default()
	cfg.Dir = t.TempDir()
	_, err := Open(cfg)
	require.ErrorIs(t, err, ErrNotRepository)
}

func TestAddAndCommit(t *testing.T) {
	f := newFixture(t)
	r := f.init(t)
	f.write(t, "README.md", "hi")
	f.write(t, "src/main.go", "package main")
	f.write(t, "src/util.go", "package main")

	staged, err := r.Add("README.md", "src")
	require.NoError(t, err)
	require.Equal(t, []string{"README.md", "src/main.go", "src/util.go"}, staged)

	st, err := r.Status()
	require.NoError(t, err)
	assert.Equal(t, staged, st.Staged)
	assert.Empty(t, st.Untracked)

	c, err := r.Commit("first")
	require.NoError(t, err)
	assert.Len(t, c.Parents, 1)
	assert.Equal(t, map[string]string{
		"README.md":   c.ID,
		"src/main.go": c.ID,
		"src/util.go": c.ID,
	}, c.Files)

	st, err = r.Status()
	require.NoError(t, err)
	assert.Empty(t, st.Staged)
	assert.Equal(t, staged, st.Committed)
	assert.Equal(t, c.ID, st.Head)
	assert.True(t, st.Clean())

	b, _ := r.Branch(DefaultBranch)
	assert.Equal(t, c.ID, b.CommitID)
}

func TestAddRejects(t *testing.T) {
	f := newFixture(t)
	r := f.init(t)

	_, err := r.Add()
	require.ErrorIs(t, err, ErrInvalidOperation)
	_, err = r.Add("missing.txt")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = r.Add("../outside")
	require.ErrorIs(t, err, ErrInvalidOperation)
	_, err = r.Add(".gg/state.db")
	require.ErrorIs(t, err, ErrInvalidOperation)
}

func TestCommitRequiresStagedFiles(t *testing.T) {
	f := newFixture(t)
	r := f.init(t)

	_, err := r.Commit("nothing")
	require.ErrorIs(t, err, ErrNothingToCommit)

	f.write(t, "a.txt", "a")
	_, err = r.Add("a.txt")
	require.NoError(t, err)
	_, err = r.Commit("   ")
	require.ErrorIs(t, err, ErrInvalidOperation)
}

func TestStatusFindsUntracked(t *testing.T) {
	f := newFixture(t)
	r := f.init(t)
	f.write(t, "tracked.txt", "x")
	f.write(t, "new.txt", "y")
	f.write(t, "dir/other.txt", "z")
	_, err := r.Add("tracked.txt")
	require.NoError(t, err)

	st, err := r.Status()
	require.NoError(t, err)
	assert.Equal(t, []string{"dir/other.txt", "new.txt"}, st.Untracked)
	assert.False(t, st.Clean())
}

func TestMarkModified(t *testing.T) {
	f := newFixture(t)
	r := f.init(t)
	f.write(t, "a.txt", "a")
	_, err := r.Add("a.txt")
	require.NoError(t, err)

	require.ErrorIs(t, r.MarkModified("a.txt"), ErrInvalidOperation, "staged, not committed")
	_, err = r.Commit("add a")
	require.NoError(t, err)

	require.NoError(t, r.MarkModified("a.txt"))
	require.ErrorIs(t, r.MarkModified("b.txt"), ErrNotFound)

	st, err := r.Status()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt"}, st.Modified)

	// Re-adding stages the modified file again.
	_, err = r.Add("a.txt")
	require.NoError(t, err)
	st, _ = r.Status()
	assert.Equal(t, []string{"a.txt"}, st.Staged)
}

func TestLogNewestFirst(t *testing.T) {
	f := newFixture(t)
	r := f.init(t)
	for _, name := range []string{"a", "b", "c"} {
		f.write(t, name, name)
		_, err := r.Add(name)
		require.NoError(t, err)
		_, err = r.Commit("add " + name)
		require.NoError(t, err)
	}

	log := r.Log(0)
	require.Len(t, log, 4)
	msgs := make([]string, len(log))
	for i, c := range log {
		msgs[i] = c.Message
	}
	assert.Equal(t, []string{"add c", "add b", "add a", "Initial commit"}, msgs)
	assert.Len(t, r.Log(2), 2)
}

func TestResolveCommitByPrefix(t *testing.T) {
	f := newFixture(t)
	r := f.init(t)
	head, _ := r.Head()

	c, err := r.ResolveCommit(head.ID[:4])
	require.NoError(t, err)
	assert.Equal(t, head.ID, c.ID)

	c, err = r.ResolveCommit(head.ID)
	require.NoError(t, err)
	assert.Equal(t, head.ID, c.ID)

	_, err = r.ResolveCommit("zzzz")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = r.ResolveCommit("")
	require.ErrorIs(t, err, ErrInvalidOperation)
}

func TestReturnedCommitIsACopy(t *testing.T) {
	f := newFixture(t)
	r := f.init(t)
	f.write(t, "a.txt", "a")
	_, err := r.Add("a.txt")
	require.NoError(t, err)
	c, err := r.Commit("a")
	require.NoError(t, err)

	c.Files["a.txt"] = "tampered"
	head, _ := r.Head()
	assert.Equal(t, c.ID, head.Files["a.txt"])
}

func TestStateSurvivesReopen(t *testing.T) {
	f := newFixture(t)
	r := f.init(t)
	f.write(t, "a.txt", "a")
	f.write(t, "b.txt", "b")
	_, err := r.Add("a.txt")
	require.NoError(t, err)
	first, err := r.Commit("a")
	require.NoError(t, err)
	_, err = r.CreateBranch("dev")
	require.NoError(t, err)
	_, err = r.Add("b.txt")
	require.NoError(t, err)
	require.NoError(t, r.Close())

	r2, err := Open(f.cfg, f.opts...)
	require.NoError(t, err)
	defer r2.Close()

	assert.Equal(t, DefaultBranch, r2.CurrentBranch())
	head, ok := r2.Head()
	require.True(t, ok)
	assert.Equal(t, first.ID, head.ID)
	assert.Len(t, r2.Log(0), 2)

	names := []string{}
	for _, b := range r2.Branches() {
		names = append(names, b.Name)
	}
	assert.Equal(t, []string{"dev", "main"}, names)

	assert.Equal(t, []trie.File{
		{Path: "a.txt", Status: trie.Committed},
		{Path: "b.txt", Status: trie.Staged},
	}, r2.Files())

	st, err := r2.Status()
	require.NoError(t, err)
	assert.Empty(t, st.Untracked)

	c, err := r2.ResolveCommit(first.ID[:3])
	require.NoError(t, err)
	assert.Equal(t, first.ID, c.ID)
}

func TestJournalRecordsOperations(t *testing.T) {
	f := newFixture(t)
	r := f.init(t)
	f.write(t, "a.txt", "a")
	_, err := r.Add("a.txt")
	require.NoError(t, err)
	_, err = r.Commit("a\nbody")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(f.cfg.Dir, DirName, "journal"))
	require.NoError(t, err)
	assert.Contains(t, string(data), " init ")
	assert.Contains(t, string(data), " commit ")
	assert.NotContains(t, string(data), "body")
}
