// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package fs

type CopyInput struct {
	SourceName            string
	SourceFileSystem      FileSystem
	DestinationName       string
	DestinationFileSystem FileSystem
	Logger                Logger
	MakeParents           bool
}
