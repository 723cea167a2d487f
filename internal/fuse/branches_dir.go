package fuse

import (
	"context"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/systemshift/gg/internal/repo"
)

// BranchesDir has one file per branch holding its commit id.
type BranchesDir struct {
	fs.Inode
	repo *repo.Repository
}

var _ = (fs.NodeLookuper)((*BranchesDir)(nil))
var _ = (fs.NodeReaddirer)((*BranchesDir)(nil))
var _ = (fs.NodeGetattrer)((*BranchesDir)(nil))

func (d *BranchesDir) Getattr(ctx context.Context, fh fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	out.Mode = 0555
	out.Ino = stableIno("branches")
	return fs.OK
}

func branchEntries(r *repo.Repository) []fuse.DirEntry {
	branches := r.Branches()
	entries := make([]fuse.DirEntry, len(branches))
	for i, b := range branches {
		name := escapeName(b.Name)
		entries[i] = fuse.DirEntry{
			Name: name,
			Mode: syscall.S_IFREG,
			Ino:  stableIno("branches/" + name),
		}
	}
	return entries
}

func (d *BranchesDir) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	return fs.NewListDirStream(branchEntries(d.repo)), fs.OK
}

func branchBytes(r *repo.Repository, name string) ([]byte, bool) {
	b, err := r.Branch(unescapeName(name))
	if err != nil {
		return nil, false
	}
	return []byte(b.CommitID + "\n"), true
}

func (d *BranchesDir) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	if _, ok := branchBytes(d.repo, name); !ok {
		return nil, syscall.ENOENT
	}
	return newTextInode(ctx, &d.Inode, "branches/"+name, func() []byte {
		data, _ := branchBytes(d.repo, name)
		return data
	}), fs.OK
}
