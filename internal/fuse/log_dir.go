package fuse

import (
	"context"
	"encoding/json"
	"strconv"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/systemshift/gg/internal/dag"
	"github.com/systemshift/gg/internal/repo"
)

const maxLogEntries = 64

// LogDir exposes recent commits as files in the FUSE tree.
// Layout: log/0 (newest commit JSON), log/1, ...
type LogDir struct {
	fs.Inode
	repo *repo.Repository
}

var _ = (fs.NodeLookuper)((*LogDir)(nil))
var _ = (fs.NodeReaddirer)((*LogDir)(nil))
var _ = (fs.NodeGetattrer)((*LogDir)(nil))

func (d *LogDir) Getattr(ctx context.Context, fh fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	out.Mode = 0555
	out.Ino = stableIno("log")
	return fs.OK
}

func logEntries(r *repo.Repository) []fuse.DirEntry {
	commits := r.Log(maxLogEntries)
	entries := make([]fuse.DirEntry, len(commits))
	for i := range commits {
		name := strconv.Itoa(i)
		entries[i] = fuse.DirEntry{
			Name: name,
			Mode: syscall.S_IFREG,
			Ino:  stableIno("log/" + name),
		}
	}
	return entries
}

func (d *LogDir) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	return fs.NewListDirStream(logEntries(d.repo)), fs.OK
}

// logCommit returns the commit at position name in the log.
func logCommit(r *repo.Repository, name string) (dag.Commit, bool) {
	idx, err := strconv.Atoi(name)
	if err != nil || idx < 0 || idx >= maxLogEntries {
		return dag.Commit{}, false
	}
	commits := r.Log(idx + 1)
	if idx >= len(commits) {
		return dag.Commit{}, false
	}
	return commits[idx], true
}

func (d *LogDir) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	c, ok := logCommit(d.repo, name)
	if !ok {
		return nil, syscall.ENOENT
	}
	// The entry is a snapshot of the commit at lookup time.
	data := commitBytes(c)
	return newTextInode(ctx, &d.Inode, "log/"+name, func() []byte { return data }), fs.OK
}

func commitBytes(c dag.Commit) []byte {
	data, _ := json.MarshalIndent(c, "", "  ")
	return append(data, '\n')
}
