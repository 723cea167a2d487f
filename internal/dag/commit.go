package dag

import (
	"encoding/json"
	"fmt"
)

// commitObject is the on-disk envelope of a commit.
type commitObject struct {
	V      int    `json:"v"`
	Commit Commit `json:"commit"`
}

const commitVersion = 1

// PutCommit serializes c canonically and stores it, returning its address.
func (s *ObjectStore) PutCommit(c Commit) (string, error) {
	if c.Parents == nil {
		c.Parents = []string{}
	}
	if c.Files == nil {
		c.Files = map[string]string{}
	}
	data, err := CanonicalJSON(commitObject{V: commitVersion, Commit: c})
	if err != nil {
		return "", fmt.Errorf("serialize commit %s: %w", c.ID, err)
	}
	addr, err := s.Put(data)
	if err != nil {
		return "", fmt.Errorf("store commit %s: %w", c.ID, err)
	}
	return EncodeCID(addr), nil
}

// GetCommit loads the commit stored at addr.
func (s *ObjectStore) GetCommit(addr string) (Commit, error) {
	c, err := DecodeCID(addr)
	if err != nil {
		return Commit{}, err
	}
	data, err := s.Get(c)
	if err != nil {
		return Commit{}, err
	}
	var obj commitObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return Commit{}, fmt.Errorf("unmarshal commit: %w", err)
	}
	if obj.V != commitVersion {
		return Commit{}, fmt.Errorf("commit %s: unsupported version %d", addr, obj.V)
	}
	return obj.Commit, nil
}
