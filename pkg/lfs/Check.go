// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package lfs

import (
	"fmt"
	"path/filepath"
)

// Check returns an error if the source and destination are the same path or one is a parent of the other.
func Check(source string, destination string) error {
	sourceDirectories := Split(filepath.Clean(source))
	destinationDirectories := Split(filepath.Clean(destination))
	i := 0
	for ; i < len(sourceDirectories) && i < len(destinationDirectories); i++ {
		if sourceDirectories[i] != destinationDirectories[i] {
			return nil
		}
	}
	if len(sourceDirectories)-i > 0 {
		return fmt.Errorf("destination %q is a parent of source %q", destination, source)
	} else if len(destinationDirectories)-i > 0 {
		return fmt.Errorf("source %q is a parent of destination %q", source, destination)
	}
	return fmt.Errorf("source and destination must be different: %q", "file://"+source)
}
