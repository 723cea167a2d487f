// Package fuse mounts a read-only view of a gg repository:
//
//	HEAD                 checked-out branch and commit id
//	branches/<name>      commit id each branch points at
//	log/0, log/1, ...    commit JSON, newest first
//	files/<path>         status of each tracked path
//
// Names that contain a slash are escaped with escapeName.
package fuse

import (
	"github.com/hanwen/go-fuse/v2/fs"
	gofuse "github.com/hanwen/go-fuse/v2/fuse"

	"github.com/systemshift/gg/internal/repo"
)

// Mount serves r at mountpoint. Call Wait on the returned server to block
// and Unmount to stop.
func Mount(mountpoint string, r *repo.Repository, debug bool) (*gofuse.Server, error) {
	root := &RootNode{repo: r}

	opts := &fs.Options{
		MountOptions: gofuse.MountOptions{
			FsName:        "gg",
			Name:          "gg",
			DisableXAttrs: true,
			Debug:         debug,
		},
	}

	server, err := fs.Mount(mountpoint, root, opts)
	if err != nil {
		return nil, err
	}
	return server, nil
}
