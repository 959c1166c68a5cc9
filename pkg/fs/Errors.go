// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package fs

import (
	"errors"
	"fmt"
)

// Kinds of copy failures.  Every error returned by Copy wraps exactly one of them.
var (
	ErrFileNotFound     = errors.New("file not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrIOFailure        = errors.New("i/o failure")
)

type CopyError struct {
	Op   string
	Path string
	Kind error
	Err  error
}

func (e *CopyError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %q: %s", e.Op, e.Path, e.Kind)
	}
	return fmt.Sprintf("%s %q: %s: %s", e.Op, e.Path, e.Kind, e.Err)
}

func (e *CopyError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Kind returns the kind of copy failure wrapped by err, or nil if err is not a copy failure.
func Kind(err error) error {
	for _, kind := range []error{ErrFileNotFound, ErrPermissionDenied, ErrIOFailure} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

func newCopyError(op string, path string, kind error, err error) *CopyError {
	return &CopyError{Op: op, Path: path, Kind: kind, Err: err}
}

// sourceError classifies an error raised while accessing the source.
func sourceError(fileSystem FileSystem, op string, path string, err error) *CopyError {
	switch {
	case fileSystem.IsNotExist(err):
		return newCopyError(op, path, ErrFileNotFound, err)
	case fileSystem.IsPermission(err):
		return newCopyError(op, path, ErrPermissionDenied, err)
	}
	return newCopyError(op, path, ErrIOFailure, err)
}

// destinationError classifies an error raised while accessing the destination.
// A missing destination directory is an i/o failure, not a missing file.
func destinationError(fileSystem FileSystem, op string, path string, err error) *CopyError {
	if fileSystem.IsPermission(err) {
		return newCopyError(op, path, ErrPermissionDenied, err)
	}
	return newCopyError(op, path, ErrIOFailure, err)
}
