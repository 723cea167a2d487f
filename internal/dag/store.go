package dag

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	gocid "github.com/ipfs/go-cid"
	"github.com/multiformats/go-multibase"
	"github.com/multiformats/go-multihash"
)

// ErrObjectNotFound is returned by Get for an address with no object.
var ErrObjectNotFound = errors.New("dag: object not found")

// ObjectStore keeps immutable objects on disk, one file per object, named
// by the base32 encoding of its CID.
type ObjectStore struct {
	dir string
}

// OpenObjectStore creates dir if needed and returns a store rooted there.
func OpenObjectStore(dir string) (*ObjectStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create objects dir: %w", err)
	}
	return &ObjectStore{dir: dir}, nil
}

// Sum returns the CIDv1 (raw codec, SHA2-256) of data.
func Sum(data []byte) (gocid.Cid, error) {
	mh, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return gocid.Undef, fmt.Errorf("multihash: %w", err)
	}
	return gocid.NewCidV1(gocid.Raw, mh), nil
}

// EncodeCID renders c as base32 lower, the form used for filenames and
// stored addresses.
func EncodeCID(c gocid.Cid) string {
	s, _ := multibase.Encode(multibase.Base32, c.Bytes())
	return s
}

// DecodeCID parses an address produced by EncodeCID.
func DecodeCID(s string) (gocid.Cid, error) {
	_, raw, err := multibase.Decode(s)
	if err != nil {
		return gocid.Undef, fmt.Errorf("decode address %q: %w", s, err)
	}
	return gocid.Cast(raw)
}

func (s *ObjectStore) path(c gocid.Cid) string {
	return filepath.Join(s.dir, EncodeCID(c))
}

// Put stores data and returns its CID. Storing the same bytes twice is a no-op.
func (s *ObjectStore) Put(data []byte) (gocid.Cid, error) {
	c, err := Sum(data)
	if err != nil {
		return gocid.Undef, err
	}
	if s.Has(c) {
		return c, nil
	}
	if err := SafeWrite(s.path(c), data, 0o644); err != nil {
		return gocid.Undef, fmt.Errorf("write object: %w", err)
	}
	return c, nil
}

// Get reads the object addressed by c.
func (s *ObjectStore) Get(c gocid.Cid) ([]byte, error) {
	data, err := os.ReadFile(s.path(c))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, c)
	}
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", c, err)
	}
	return data, nil
}

// Has reports whether c is stored.
func (s *ObjectStore) Has(c gocid.Cid) bool {
	_, err := os.Stat(s.path(c))
	return err == nil
}
