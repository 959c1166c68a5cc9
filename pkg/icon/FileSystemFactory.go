// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package icon

import (
	"context"
	"fmt"
	"strings"

	"github.com/navwar/goicon/pkg/fs"
	"github.com/navwar/goicon/pkg/lfs"
	"github.com/navwar/goicon/pkg/s3fs"
)

// FileSystemFactory returns the file system holding the resolved uri and the name of the file within it.
type FileSystemFactory func(ctx context.Context, uri string, readOnly bool) (fs.FileSystem, string, error)

// LocalFileSystemFactory serves local paths from the operating system's file system.
func LocalFileSystemFactory(ctx context.Context, uri string, readOnly bool) (fs.FileSystem, string, error) {
	if strings.HasPrefix(uri, s3fs.Scheme) {
		return nil, "", fmt.Errorf("no S3 client configured for %q", uri)
	}
	if readOnly {
		return lfs.NewReadOnlyLocalFileSystem(), uri, nil
	}
	return lfs.NewLocalFileSystem(), uri, nil
}
