package unionfind

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetectAndResolve(t *testing.T) {
	s := New()
	open := s.DetectConflicts([]Conflict{
		{Path: "b.txt", Base: "h0", Ours: "h1", Theirs: "h2"},
		{Path: "a.txt", Base: "h0", Ours: "h3", Theirs: "h4"},
	})
	require.Len(t, open, 2)
	require.Equal(t, 4, s.Len())
	require.False(t, s.Connected(OursKey("a.txt"), TheirsKey("a.txt")))

	require.False(t, s.ResolveConflict("c.txt", "ours"))
	require.True(t, s.ResolveConflict("a.txt", "theirs"))
	require.True(t, s.Connected(OursKey("a.txt"), TheirsKey("a.txt")))
	require.False(t, s.Connected(OursKey("a.txt"), OursKey("b.txt")))

	all := s.Conflicts()
	require.Equal(t, "a.txt", all[0].Path)
	require.True(t, all[0].Resolved)
	require.Equal(t, "theirs", all[0].Resolution)

	un := s.Unresolved()
	require.Len(t, un, 1)
	require.Equal(t, "b.txt", un[0].Path)
}

func TestDetectSkipsResolvedPaths(t *testing.T) {
	s := New()
	s.DetectConflicts([]Conflict{{Path: "a.txt"}})
	s.ResolveConflict("a.txt", "ours")

	open := s.DetectConflicts([]Conflict{{Path: "a.txt"}, {Path: "b.txt"}})
	require.Len(t, open, 1)
	require.Equal(t, "b.txt", open[0].Path)
}

func TestRestoreConflicts(t *testing.T) {
	s := New()
	s.RestoreConflicts([]Conflict{{Path: "x", Resolved: true, Resolution: "ours"}})
	require.Len(t, s.Conflicts(), 1)
	require.Empty(t, s.Unresolved())
}

func TestConflictLookup(t *testing.T) {
	s := New()
	s.DetectConflicts([]Conflict{{Path: "a.txt", Ours: "h1", Theirs: "h2"}})

	c, ok := s.Conflict("a.txt")
	require.True(t, ok)
	require.Equal(t, "h2", c.Theirs)
	require.False(t, c.Resolved)

	c.Resolved = true
	again, _ := s.Conflict("a.txt")
	require.False(t, again.Resolved)

	_, ok = s.Conflict("b.txt")
	require.False(t, ok)
}
