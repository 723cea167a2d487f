package fuse

import (
	"encoding/json"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systemshift/gg/internal/config"
	"github.com/systemshift/gg/internal/dag"
	"github.com/systemshift/gg/internal/repo"
)

func TestEscapeNameRoundTrip(t *testing.T) {
	for _, p := range []string{"a.txt", "src/main.go", "100%/x", "%2F", "feature/a/b"} {
		name := escapeName(p)
		assert.NotContains(t, name, "/")
		assert.Equal(t, p, unescapeName(name), p)
	}
	assert.Equal(t, "src%2Fmain.go", escapeName("src/main.go"))
}

func TestStableIno(t *testing.T) {
	assert.Equal(t, stableIno("log/0"), stableIno("log/0"))
	assert.NotEqual(t, stableIno("log/0"), stableIno("log/1"))
}

func TestReadAt(t *testing.T) {
	data := []byte("abcdef")
	assert.Equal(t, []byte("abc"), readAt(data, make([]byte, 3), 0))
	assert.Equal(t, []byte("ef"), readAt(data, make([]byte, 3), 4))
	assert.Nil(t, readAt(data, make([]byte, 3), 6))
}

func newRepo(t *testing.T) *repo.Repository {
	t.Helper()
	cfg := config.Default()
	cfg.Dir = t.TempDir()
	r, err := repo.Init(cfg, repo.WithRand(rand.New(rand.NewPCG(7, 7))))
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })

	full := filepath.Join(cfg.Dir, "src", "main.go")
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte("package main"), 0o644))
	_, err = r.Add("src/main.go")
	require.NoError(t, err)
	_, err = r.Commit("add main")
	require.NoError(t, err)
	_, err = r.CreateBranch("feature/x")
	require.NoError(t, err)
	return r
}

func TestViewContent(t *testing.T) {
	r := newRepo(t)
	head, ok := r.Head()
	require.True(t, ok)

	assert.Equal(t, "main "+head.ID+"\n", string(headBytes(r)))

	var names []string
	for _, e := range branchEntries(r) {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"feature%2Fx", "main"}, names)
	data, ok := branchBytes(r, "feature%2Fx")
	require.True(t, ok)
	assert.Equal(t, head.ID+"\n", string(data))
	_, ok = branchBytes(r, "nope")
	assert.False(t, ok)

	files := fileEntries(r)
	require.Len(t, files, 1)
	assert.Equal(t, "src%2Fmain.go", files[0].Name)
	data, ok = fileStatusBytes(r, "src%2Fmain.go")
	require.True(t, ok)
	assert.Equal(t, "committed\n", string(data))

	assert.Len(t, logEntries(r), 2)
	c, ok := logCommit(r, "0")
	require.True(t, ok)
	assert.Equal(t, head.ID, c.ID)
	_, ok = logCommit(r, "2")
	assert.False(t, ok)
	_, ok = logCommit(r, "x")
	assert.False(t, ok)

	var decoded dag.Commit
	require.NoError(t, json.Unmarshal(commitBytes(c), &decoded))
	assert.Equal(t, "add main", decoded.Message)
	assert.Equal(t, c.Files, decoded.Files)
}
