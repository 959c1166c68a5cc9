// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package fs

import (
	"context"
	"os"
)

type FileSystem interface {
	Dir(name string) string
	IsNotExist(err error) bool
	IsPermission(err error) bool
	Join(name ...string) string
	MkdirAll(ctx context.Context, name string, mode os.FileMode) error
	Open(ctx context.Context, name string) (File, error)
	OpenFile(ctx context.Context, name string, flag int, perm os.FileMode) (File, error)
	Root() string
	SameFile(a FileInfo, b FileInfo) bool
	Stat(ctx context.Context, name string) (FileInfo, error)
}
