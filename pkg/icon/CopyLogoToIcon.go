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
	"io"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/navwar/goicon/pkg/fs"
	"github.com/navwar/goicon/pkg/lfs"
	"github.com/navwar/goicon/pkg/s3fs"
)

type CopyLogoToIconInput struct {
	// Anchor is the directory relative paths are resolved against.  Defaults to the directory of the executable.
	Anchor       string
	Source       string
	Destinations []string
	FileSystems  FileSystemFactory
	Logger       fs.Logger
	MakeParents  bool
	MaxThreads   int
	Output       io.Writer
}

type Result struct {
	Source      string
	Destination string
	Written     int64
}

// CopyLogoToIcon copies the logo to each destination and writes a confirmation line for every completed copy.
// Destinations are copied in order unless MaxThreads is greater than one.  No destination is started after a failure.
func CopyLogoToIcon(ctx context.Context, input *CopyLogoToIconInput) ([]Result, error) {
	anchor := input.Anchor
	if len(anchor) == 0 {
		a, err := AnchorDirectory()
		if err != nil {
			return nil, err
		}
		anchor = a
	}

	source := DefaultSource
	if len(input.Source) > 0 {
		source = input.Source
	}
	source = ResolveURI(anchor, source)

	destinations := []string{DefaultDestination}
	if len(input.Destinations) > 0 {
		// duplicates are dropped so no two copies write the same file
		destinations = make([]string, 0, len(input.Destinations))
		seen := map[string]struct{}{}
		for _, destination := range input.Destinations {
			destination = ResolveURI(anchor, destination)
			if _, ok := seen[destination]; ok {
				continue
			}
			seen[destination] = struct{}{}
			destinations = append(destinations, destination)
		}
	} else {
		destinations[0] = ResolveURI(anchor, destinations[0])
	}

	fileSystems := input.FileSystems
	if fileSystems == nil {
		fileSystems = LocalFileSystemFactory
	}

	if input.Logger != nil {
		_ = input.Logger.Log("Resolved paths", map[string]interface{}{
			"anchor":       anchor,
			"source":       source,
			"destinations": destinations,
		})
	}

	for _, destination := range destinations {
		if isLocal(source) && isLocal(destination) {
			if err := lfs.Check(source, destination); err != nil {
				return nil, &fs.CopyError{Op: "invalid destination", Path: destination, Kind: fs.ErrIOFailure, Err: err}
			}
		}
	}

	sourceFileSystem, sourceName, err := fileSystems(ctx, source, true)
	if err != nil {
		return nil, fmt.Errorf("error creating file system for source %q: %w", source, err)
	}

	maxThreads := input.MaxThreads
	if maxThreads < 1 {
		maxThreads = 1
	}

	results := make([]Result, len(destinations))
	outputMutex := &sync.Mutex{}

	wg, gctx := errgroup.WithContext(ctx)
	wg.SetLimit(maxThreads)
	for i, destination := range destinations {
		i, destination := i, destination
		wg.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			destinationFileSystem, destinationName, err := fileSystems(gctx, destination, false)
			if err != nil {
				return fmt.Errorf("error creating file system for destination %q: %w", destination, err)
			}
			written, err := fs.Copy(gctx, &fs.CopyInput{
				SourceName:            sourceName,
				SourceFileSystem:      sourceFileSystem,
				DestinationName:       destinationName,
				DestinationFileSystem: destinationFileSystem,
				Logger:                input.Logger,
				MakeParents:           input.MakeParents,
			})
			if err != nil {
				return err
			}
			results[i] = Result{Source: source, Destination: destination, Written: written}
			if input.Output != nil {
				outputMutex.Lock()
				defer outputMutex.Unlock()
				if _, err := fmt.Fprintf(input.Output, "Copied %s to %s\n", source, destination); err != nil {
					return fmt.Errorf("error writing confirmation: %w", err)
				}
			}
			return nil
		})
	}

	if err := wg.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

func isLocal(uri string) bool {
	return !strings.HasPrefix(uri, s3fs.Scheme)
}
