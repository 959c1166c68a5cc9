// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package lfs

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/navwar/goicon/pkg/fs"
)

const (
	Root = "file://"
)

type LocalFileSystem struct {
	root string
	fs   afero.Fs
}

func (lfs *LocalFileSystem) Dir(name string) string {
	return filepath.Dir(name)
}

func (lfs *LocalFileSystem) IsNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}

func (lfs *LocalFileSystem) IsPermission(err error) bool {
	return errors.Is(err, os.ErrPermission)
}

func (lfs *LocalFileSystem) Join(name ...string) string {
	return filepath.Join(name...)
}

func (lfs *LocalFileSystem) MkdirAll(ctx context.Context, name string, mode os.FileMode) error {
	return lfs.fs.MkdirAll(name, mode)
}

func (lfs *LocalFileSystem) Open(ctx context.Context, name string) (fs.File, error) {
	f, err := lfs.fs.Open(name)
	if err != nil {
		return nil, err
	}
	return NewLocalFile(f), nil
}

func (lfs *LocalFileSystem) OpenFile(ctx context.Context, name string, flag int, perm os.FileMode) (fs.File, error) {
	f, err := lfs.fs.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	return NewLocalFile(f), nil
}

func (lfs *LocalFileSystem) Root() string {
	return lfs.root
}

// SameFile reports whether both infos describe the same underlying file, following hard links and symlinks.
func (lfs *LocalFileSystem) SameFile(a fs.FileInfo, b fs.FileInfo) bool {
	la, ok := a.(*LocalFileInfo)
	if !ok {
		return false
	}
	lb, ok := b.(*LocalFileInfo)
	if !ok {
		return false
	}
	return os.SameFile(la.fi, lb.fi)
}

func (lfs *LocalFileSystem) Stat(ctx context.Context, name string) (fs.FileInfo, error) {
	fi, err := lfs.fs.Stat(name)
	if err != nil {
		return nil, err
	}
	return NewLocalFileInfo(fi), nil
}

// NewFileSystem returns a local file system backed by the given afero file system.
func NewFileSystem(afs afero.Fs) *LocalFileSystem {
	return &LocalFileSystem{
		root: Root,
		fs:   afs,
	}
}

func NewLocalFileSystem() *LocalFileSystem {
	return NewFileSystem(afero.NewOsFs())
}

func NewReadOnlyLocalFileSystem() *LocalFileSystem {
	return NewFileSystem(afero.NewReadOnlyFs(afero.NewOsFs()))
}
