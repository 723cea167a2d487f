package fuse

import (
	"context"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/systemshift/gg/internal/repo"
)

// FilesDir lists tracked paths. Each file holds the path's status.
type FilesDir struct {
	fs.Inode
	repo *repo.Repository
}

var _ = (fs.NodeLookuper)((*FilesDir)(nil))
var _ = (fs.NodeReaddirer)((*FilesDir)(nil))
var _ = (fs.NodeGetattrer)((*FilesDir)(nil))

func (d *FilesDir) Getattr(ctx context.Context, fh fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	out.Mode = 0555
	out.Ino = stableIno("files")
	return fs.OK
}

func fileEntries(r *repo.Repository) []fuse.DirEntry {
	files := r.Files()
	entries := make([]fuse.DirEntry, len(files))
	for i, f := range files {
		name := escapeName(f.Path)
		entries[i] = fuse.DirEntry{
			Name: name,
			Mode: syscall.S_IFREG,
			Ino:  stableIno("files/" + name),
		}
	}
	return entries
}

func (d *FilesDir) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	return fs.NewListDirStream(fileEntries(d.repo)), fs.OK
}

func fileStatusBytes(r *repo.Repository, name string) ([]byte, bool) {
	path := unescapeName(name)
	for _, f := range r.Files() {
		if f.Path == path {
			return []byte(f.Status.String() + "\n"), true
		}
	}
	return nil, false
}

func (d *FilesDir) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	if _, ok := fileStatusBytes(d.repo, name); !ok {
		return nil, syscall.ENOENT
	}
	return newTextInode(ctx, &d.Inode, "files/"+name, func() []byte {
		data, _ := fileStatusBytes(d.repo, name)
		return data
	}), fs.OK
}
