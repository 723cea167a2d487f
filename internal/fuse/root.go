package fuse

import (
	"context"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/systemshift/gg/internal/repo"
)

// RootNode is the mountpoint directory. Contains "HEAD", "branches/",
// "log/" and "files/".
type RootNode struct {
	fs.Inode
	repo *repo.Repository
}

var _ = (fs.NodeOnAdder)((*RootNode)(nil))
var _ = (fs.NodeGetattrer)((*RootNode)(nil))

func (r *RootNode) OnAdd(ctx context.Context) {
	head := &TextFile{ino: stableIno("HEAD"), content: func() []byte { return headBytes(r.repo) }}
	r.AddChild("HEAD", r.NewPersistentInode(ctx, head, fs.StableAttr{
		Mode: syscall.S_IFREG,
		Ino:  stableIno("HEAD"),
	}), true)

	branchesDir := &BranchesDir{repo: r.repo}
	r.AddChild("branches", r.NewPersistentInode(ctx, branchesDir, fs.StableAttr{
		Mode: syscall.S_IFDIR,
		Ino:  stableIno("branches"),
	}), true)

	logDir := &LogDir{repo: r.repo}
	r.AddChild("log", r.NewPersistentInode(ctx, logDir, fs.StableAttr{
		Mode: syscall.S_IFDIR,
		Ino:  stableIno("log"),
	}), true)

	filesDir := &FilesDir{repo: r.repo}
	r.AddChild("files", r.NewPersistentInode(ctx, filesDir, fs.StableAttr{
		Mode: syscall.S_IFDIR,
		Ino:  stableIno("files"),
	}), true)
}

func (r *RootNode) Getattr(ctx context.Context, fh fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	out.Mode = 0555
	out.Ino = stableIno("/")
	return fs.OK
}

func headBytes(r *repo.Repository) []byte {
	head, ok := r.Head()
	if !ok {
		return []byte("(none)\n")
	}
	return []byte(r.CurrentBranch() + " " + head.ID + "\n")
}

// TextFile is a read-only file whose content is computed on every access.
type TextFile struct {
	fs.Inode
	ino     uint64
	content func() []byte
}

var _ = (fs.NodeGetattrer)((*TextFile)(nil))
var _ = (fs.NodeReader)((*TextFile)(nil))
var _ = (fs.NodeOpener)((*TextFile)(nil))

func (f *TextFile) Getattr(ctx context.Context, fh fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	out.Mode = 0444
	out.Size = uint64(len(f.content()))
	out.Ino = f.ino
	return fs.OK
}

func (f *TextFile) Open(ctx context.Context, flags uint32) (fs.FileHandle, uint32, syscall.Errno) {
	if flags&(syscall.O_WRONLY|syscall.O_RDWR) != 0 {
		return nil, 0, syscall.EROFS
	}
	return nil, fuse.FOPEN_DIRECT_IO, fs.OK
}

func (f *TextFile) Read(ctx context.Context, fh fs.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	return fuse.ReadResultData(readAt(f.content(), dest, off)), fs.OK
}

func readAt(data, dest []byte, off int64) []byte {
	if off >= int64(len(data)) {
		return nil
	}
	end := off + int64(len(dest))
	if end > int64(len(data)) {
		end = int64(len(data))
	}
	return data[off:end]
}

// newTextInode creates a child inode for a TextFile keyed by path.
func newTextInode(ctx context.Context, parent *fs.Inode, path string, content func() []byte) *fs.Inode {
	ino := stableIno(path)
	return parent.NewInode(ctx, &TextFile{ino: ino, content: content}, fs.StableAttr{
		Mode: syscall.S_IFREG,
		Ino:  ino,
	})
}
