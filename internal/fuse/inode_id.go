package fuse

import (
	"hash/fnv"
	"strings"
)

// stableIno returns a stable inode number for a given path string.
func stableIno(path string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(path))
	return h.Sum64()
}

var (
	nameEscaper   = strings.NewReplacer("%", "%25", "/", "%2F")
	nameUnescaper = strings.NewReplacer("%2F", "/", "%25", "%")
)

// escapeName turns a slash-separated path into a single directory entry.
func escapeName(p string) string { return nameEscaper.Replace(p) }

// unescapeName reverses escapeName.
func unescapeName(name string) string { return nameUnescaper.Replace(name) }
