// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package icon

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/navwar/goicon/pkg/lfs"
	"github.com/navwar/goicon/pkg/s3fs"
)

// Default locations, relative to the anchor directory.
const (
	DefaultSource      = "../../logo.png"
	DefaultDestination = "../android/app/src/main/res/drawable/notification_icon.png"
)

// AnchorDirectory returns the directory containing the running executable, with symlinks resolved.
// The working directory of the caller is never consulted.
func AnchorDirectory() (string, error) {
	executable, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("error locating executable: %w", err)
	}
	executable, err = filepath.EvalSymlinks(executable)
	if err != nil {
		return "", fmt.Errorf("error resolving symlinks for executable %q: %w", executable, err)
	}
	return filepath.Dir(executable), nil
}

// ResolveURI resolves a local path against the anchor directory.
// S3 URIs are returned unchanged.
func ResolveURI(anchor string, uri string) string {
	if strings.HasPrefix(uri, s3fs.Scheme) {
		return uri
	}
	uri = strings.TrimPrefix(uri, lfs.Root)
	if filepath.IsAbs(uri) {
		return filepath.Clean(uri)
	}
	return filepath.Join(anchor, uri)
}
