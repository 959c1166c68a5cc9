// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package fs_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navwar/goicon/pkg/fs"
	"github.com/navwar/goicon/pkg/lfs"
)

var logo = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d, 'I', 'H', 'D', 'R'}

type testLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *testLogger) Log(msg string, fields ...map[string]interface{}) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, msg)
	return nil
}

func newMemoryFileSystem(t *testing.T, dirs ...string) (afero.Fs, *lfs.LocalFileSystem) {
	t.Helper()
	afs := afero.NewMemMapFs()
	for _, dir := range dirs {
		require.NoError(t, afs.MkdirAll(dir, 0755))
	}
	return afs, lfs.NewFileSystem(afs)
}

func TestCopy(t *testing.T) {
	ctx := context.Background()
	afs, fileSystem := newMemoryFileSystem(t, "/project", "/project/res/drawable")
	require.NoError(t, afero.WriteFile(afs, "/project/logo.png", logo, 0644))

	logger := &testLogger{}
	written, err := fs.Copy(ctx, &fs.CopyInput{
		SourceName:            "/project/logo.png",
		SourceFileSystem:      fileSystem,
		DestinationName:       "/project/res/drawable/notification_icon.png",
		DestinationFileSystem: fileSystem,
		Logger:                logger,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(len(logo)), written)

	b, err := afero.ReadFile(afs, "/project/res/drawable/notification_icon.png")
	require.NoError(t, err)
	assert.Equal(t, logo, b)
	assert.Equal(t, []string{"Copying file", "Done copying file"}, logger.messages)
}

func TestCopyIdempotent(t *testing.T) {
	ctx := context.Background()
	afs, fileSystem := newMemoryFileSystem(t, "/project", "/project/res")
	require.NoError(t, afero.WriteFile(afs, "/project/logo.png", logo, 0644))

	input := &fs.CopyInput{
		SourceName:            "/project/logo.png",
		SourceFileSystem:      fileSystem,
		DestinationName:       "/project/res/notification_icon.png",
		DestinationFileSystem: fileSystem,
	}

	_, err := fs.Copy(ctx, input)
	require.NoError(t, err)
	first, err := afero.ReadFile(afs, "/project/res/notification_icon.png")
	require.NoError(t, err)

	_, err = fs.Copy(ctx, input)
	require.NoError(t, err)
	second, err := afero.ReadFile(afs, "/project/res/notification_icon.png")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, logo, second)
}

func TestCopyOverwrite(t *testing.T) {
	ctx := context.Background()
	afs, fileSystem := newMemoryFileSystem(t, "/project", "/project/res")
	require.NoError(t, afero.WriteFile(afs, "/project/logo.png", logo, 0644))
	require.NoError(t, afero.WriteFile(afs, "/project/res/notification_icon.png", []byte("an older and much longer icon that must be truncated"), 0644))

	_, err := fs.Copy(ctx, &fs.CopyInput{
		SourceName:            "/project/logo.png",
		SourceFileSystem:      fileSystem,
		DestinationName:       "/project/res/notification_icon.png",
		DestinationFileSystem: fileSystem,
	})
	require.NoError(t, err)

	b, err := afero.ReadFile(afs, "/project/res/notification_icon.png")
	require.NoError(t, err)
	assert.Equal(t, logo, b)
}

func TestCopySourceNotFound(t *testing.T) {
	ctx := context.Background()
	afs, fileSystem := newMemoryFileSystem(t, "/project", "/project/res", "/project/other")
	require.NoError(t, afero.WriteFile(afs, "/project/other/notification_icon.png", []byte("existing"), 0644))

	_, err := fs.Copy(ctx, &fs.CopyInput{
		SourceName:            "/project/logo.png",
		SourceFileSystem:      fileSystem,
		DestinationName:       "/project/res/notification_icon.png",
		DestinationFileSystem: fileSystem,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrFileNotFound))
	assert.Equal(t, fs.ErrFileNotFound, fs.Kind(err))

	// destination is not created
	exists, err := afero.Exists(afs, "/project/res/notification_icon.png")
	require.NoError(t, err)
	assert.False(t, exists)

	// existing destination is not truncated
	_, err = fs.Copy(ctx, &fs.CopyInput{
		SourceName:            "/project/logo.png",
		SourceFileSystem:      fileSystem,
		DestinationName:       "/project/other/notification_icon.png",
		DestinationFileSystem: fileSystem,
	})
	require.Error(t, err)
	b, err := afero.ReadFile(afs, "/project/other/notification_icon.png")
	require.NoError(t, err)
	assert.Equal(t, "existing", string(b))
}

func TestCopyDestinationDirectoryMissing(t *testing.T) {
	ctx := context.Background()
	afs, fileSystem := newMemoryFileSystem(t, "/project")
	require.NoError(t, afero.WriteFile(afs, "/project/logo.png", logo, 0644))

	_, err := fs.Copy(ctx, &fs.CopyInput{
		SourceName:            "/project/logo.png",
		SourceFileSystem:      fileSystem,
		DestinationName:       "/project/android/res/drawable/notification_icon.png",
		DestinationFileSystem: fileSystem,
	})
	require.Error(t, err)
	assert.Equal(t, fs.ErrIOFailure, fs.Kind(err))
	assert.False(t, errors.Is(err, fs.ErrFileNotFound))
}

func TestCopyMakeParents(t *testing.T) {
	ctx := context.Background()
	afs, fileSystem := newMemoryFileSystem(t, "/project")
	require.NoError(t, afero.WriteFile(afs, "/project/logo.png", logo, 0644))

	_, err := fs.Copy(ctx, &fs.CopyInput{
		SourceName:            "/project/logo.png",
		SourceFileSystem:      fileSystem,
		DestinationName:       "/project/android/res/drawable/notification_icon.png",
		DestinationFileSystem: fileSystem,
		MakeParents:           true,
	})
	require.NoError(t, err)

	b, err := afero.ReadFile(afs, "/project/android/res/drawable/notification_icon.png")
	require.NoError(t, err)
	assert.Equal(t, logo, b)
}

func TestCopyPermissionDenied(t *testing.T) {
	ctx := context.Background()
	afs, sourceFileSystem := newMemoryFileSystem(t, "/project", "/project/res")
	require.NoError(t, afero.WriteFile(afs, "/project/logo.png", logo, 0644))

	_, err := fs.Copy(ctx, &fs.CopyInput{
		SourceName:            "/project/logo.png",
		SourceFileSystem:      sourceFileSystem,
		DestinationName:       "/project/res/notification_icon.png",
		DestinationFileSystem: lfs.NewFileSystem(afero.NewReadOnlyFs(afs)),
	})
	require.Error(t, err)
	assert.Equal(t, fs.ErrPermissionDenied, fs.Kind(err))

	exists, err := afero.Exists(afs, "/project/res/notification_icon.png")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCopySourceIsDirectory(t *testing.T) {
	ctx := context.Background()
	_, fileSystem := newMemoryFileSystem(t, "/project/logo.png", "/project/res")

	_, err := fs.Copy(ctx, &fs.CopyInput{
		SourceName:            "/project/logo.png",
		SourceFileSystem:      fileSystem,
		DestinationName:       "/project/res/notification_icon.png",
		DestinationFileSystem: fileSystem,
	})
	require.Error(t, err)
	assert.Equal(t, fs.ErrIOFailure, fs.Kind(err))
}

func TestCopySameFile(t *testing.T) {
	ctx := context.Background()
	afs, fileSystem := newMemoryFileSystem(t, "/project")
	require.NoError(t, afero.WriteFile(afs, "/project/logo.png", logo, 0644))

	_, err := fs.Copy(ctx, &fs.CopyInput{
		SourceName:            "/project/logo.png",
		SourceFileSystem:      fileSystem,
		DestinationName:       "/project/res/../logo.png",
		DestinationFileSystem: fileSystem,
	})
	require.Error(t, err)
	assert.Equal(t, fs.ErrIOFailure, fs.Kind(err))

	b, err := afero.ReadFile(afs, "/project/logo.png")
	require.NoError(t, err)
	assert.Equal(t, logo, b)
}
