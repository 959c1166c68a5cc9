// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package fs

import (
	"context"
	"io"
	"os"
)

// CheckDifferent returns an error if the source and destination name the same file.
func CheckDifferent(sourceName string, sourceFileSystem FileSystem, destinationName string, destinationFileSystem FileSystem) error {
	if sourceFileSystem.Root() != destinationFileSystem.Root() {
		return nil
	}
	if sourceFileSystem.Join(sourceName) != destinationFileSystem.Join(destinationName) {
		return nil
	}
	return newCopyError("source and destination must be different", sourceName, ErrIOFailure, nil)
}

// Copy copies the contents of the source file to the destination file, replacing the destination if it exists.
// The source is opened before the destination is touched, so a missing source leaves the destination unmodified.
// Returns the number of bytes written.
func Copy(ctx context.Context, input *CopyInput) (int64, error) {
	if input.Logger != nil {
		_ = input.Logger.Log("Copying file", map[string]interface{}{
			"src": input.SourceName,
			"dst": input.DestinationName,
		})
	}

	if err := CheckDifferent(input.SourceName, input.SourceFileSystem, input.DestinationName, input.DestinationFileSystem); err != nil {
		return 0, err
	}

	// stat source file
	sourceFileInfo, err := input.SourceFileSystem.Stat(ctx, input.SourceName)
	if err != nil {
		return 0, sourceError(input.SourceFileSystem, "error stating source file", input.SourceName, err)
	}
	if sourceFileInfo.IsDir() {
		return 0, newCopyError("source is a directory", input.SourceName, ErrIOFailure, nil)
	}

	// an existing destination may be a link to the source
	if input.SourceFileSystem.Root() == input.DestinationFileSystem.Root() {
		if destinationFileInfo, err := input.DestinationFileSystem.Stat(ctx, input.DestinationName); err == nil {
			if input.DestinationFileSystem.SameFile(sourceFileInfo, destinationFileInfo) {
				return 0, newCopyError("source and destination are the same file", input.DestinationName, ErrIOFailure, nil)
			}
		}
	}

	// open source file
	sourceFile, err := input.SourceFileSystem.Open(ctx, input.SourceName)
	if err != nil {
		return 0, sourceError(input.SourceFileSystem, "error opening source file", input.SourceName, err)
	}

	// check parent directory and create it if allowed
	parent := input.DestinationFileSystem.Dir(input.DestinationName)
	if _, err := input.DestinationFileSystem.Stat(ctx, parent); err != nil {
		if !input.DestinationFileSystem.IsNotExist(err) {
			_ = sourceFile.Close() // silently close source file
			return 0, destinationError(input.DestinationFileSystem, "error stating destination parent", parent, err)
		}
		if !input.MakeParents {
			_ = sourceFile.Close() // silently close source file
			return 0, newCopyError("parent directory for destination does not exist", input.DestinationName, ErrIOFailure, err)
		}
		if err := input.DestinationFileSystem.MkdirAll(ctx, parent, 0755); err != nil {
			_ = sourceFile.Close() // silently close source file
			return 0, destinationError(input.DestinationFileSystem, "error creating parent directories", parent, err)
		}
	}

	// open destination file
	destinationFile, err := input.DestinationFileSystem.OpenFile(ctx, input.DestinationName, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0666)
	if err != nil {
		_ = sourceFile.Close() // silently close source file
		return 0, destinationError(input.DestinationFileSystem, "error creating destination file", input.DestinationName, err)
	}

	// copy bytes from source to destination
	written, err := io.Copy(destinationFile, sourceFile)
	if err != nil {
		_ = sourceFile.Close()      // silently close source file
		_ = destinationFile.Close() // silently close destination file
		return written, newCopyError("error copying to destination", input.DestinationName, ErrIOFailure, err)
	}

	err = sourceFile.Close()
	if err != nil {
		_ = destinationFile.Close() // silently close destination file
		return written, newCopyError("error closing source file after copying", input.SourceName, ErrIOFailure, err)
	}

	err = destinationFile.Close()
	if err != nil {
		return written, destinationError(input.DestinationFileSystem, "error closing destination file after copying", input.DestinationName, err)
	}

	if input.Logger != nil {
		_ = input.Logger.Log("Done copying file", map[string]interface{}{
			"src":     input.SourceName,
			"dst":     input.DestinationName,
			"written": written,
		})
	}

	return written, nil
}
