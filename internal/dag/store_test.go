package dag

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestObjectStorePutGet(t *testing.T) {
	s, err := OpenObjectStore(t.TempDir())
	require.NoError(t, err)

	c, err := s.Put([]byte("hello"))
	require.NoError(t, err)
	require.True(t, s.Has(c))

	again, err := s.Put([]byte("hello"))
	require.NoError(t, err)
	require.Equal(t, c, again)

	data, err := s.Get(c)
	require.NoError(t, err)
	require.Equal(t, "hello", string(data))

	other, err := Sum([]byte("absent"))
	require.NoError(t, err)
	_, err = s.Get(other)
	require.ErrorIs(t, err, ErrObjectNotFound)
}

func TestEncodeDecodeCID(t *testing.T) {
	c, err := Sum([]byte("x"))
	require.NoError(t, err)
	s := EncodeCID(c)
	require.Equal(t, byte('b'), s[0], "base32 multibase prefix")

	back, err := DecodeCID(s)
	require.NoError(t, err)
	require.True(t, c.Equals(back))

	_, err = DecodeCID("not an address")
	require.Error(t, err)
}

func TestPutGetCommit(t *testing.T) {
	s, err := OpenObjectStore(t.TempDir())
	require.NoError(t, err)

	c := commit("a1b2c3d4", 0)
	c.Parents = []string{"00000000"}
	c.Files = map[string]string{"a.txt": "h1"}

	addr, err := s.PutCommit(c)
	require.NoError(t, err)

	back, err := s.GetCommit(addr)
	require.NoError(t, err)
	require.Equal(t, c.ID, back.ID)
	require.Equal(t, c.Parents, back.Parents)
	require.Equal(t, c.Files, back.Files)
	require.True(t, c.Timestamp.Equal(back.Timestamp))

	addr2, err := s.PutCommit(c)
	require.NoError(t, err)
	require.Equal(t, addr, addr2, "same commit, same address")
}

func TestPutCommitNormalizesEmpty(t *testing.T) {
	s, err := OpenObjectStore(t.TempDir())
	require.NoError(t, err)

	addr, err := s.PutCommit(commit("root", 0))
	require.NoError(t, err)
	back, err := s.GetCommit(addr)
	require.NoError(t, err)
	require.Equal(t, []string{}, back.Parents)
	require.Equal(t, map[string]string{}, back.Files)
}
