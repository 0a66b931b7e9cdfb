package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leafscan/internal/errors"
)

func TestWatcherFsnotify(t *testing.T) {
	tempDir := t.TempDir()

	w, err := NewWatcher(10)
	require.NoError(t, err, "New watcher creation failed")
	require.NoError(t, w.AddDirectory(tempDir), "Failed to add directory to watcher")
	require.NoError(t, w.Start(), "Failed to start watcher")
	defer w.Stop()

	assert.True(t, w.IsRunning())
	assert.Equal(t, []string{tempDir}, w.Directories())

	// Allow a brief moment for fsnotify to initialize watches
	time.Sleep(100 * time.Millisecond)

	testFilePath := filepath.Join(tempDir, "leaf.jpg")
	file, err := os.Create(testFilePath)
	require.NoError(t, err, "Failed to create test file")
	require.NoError(t, file.Close())

	select {
	case event := <-w.Events():
		assert.Equal(t, testFilePath, event.Path, "Event path mismatch")
		assert.True(t, event.Op.Has(fsnotify.Create), "Expected Create operation")
		require.NotNil(t, event.Info, "Event info should not be nil")
		assert.Equal(t, "leaf.jpg", event.Info.Name())
	case <-time.After(3 * time.Second):
		t.Fatal("Timeout waiting for CREATE event")
	}

	require.NoError(t, os.WriteFile(testFilePath, []byte("hello world"), 0644))

	timeout := time.After(3 * time.Second)
	for {
		select {
		case event := <-w.Events():
			if event.Path == testFilePath && event.Op.Has(fsnotify.Write) {
				return
			}
		case <-timeout:
			t.Fatal("Timeout waiting for WRITE event")
		}
	}
}

func TestWatcherIgnoresDirectories(t *testing.T) {
	tempDir := t.TempDir()

	w, err := NewWatcher(10)
	require.NoError(t, err)
	require.NoError(t, w.AddDirectory(tempDir))
	require.NoError(t, w.Start())
	defer w.Stop()
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.Mkdir(filepath.Join(tempDir, "sub"), 0755))

	select {
	case event := <-w.Events():
		t.Fatalf("unexpected event for %s", event.Path)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherAddDirectoryErrors(t *testing.T) {
	w, err := NewWatcher(0)
	require.NoError(t, err)
	defer w.Stop()

	err = w.AddDirectory(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.True(t, errors.IsFileNotFound(err))

	filePath := filepath.Join(t.TempDir(), "plain.txt")
	require.NoError(t, os.WriteFile(filePath, nil, 0644))
	err = w.AddDirectory(filePath)
	require.Error(t, err)
	assert.Equal(t, errors.FileReadFailed, errors.KindOf(err))
}

func TestWatcherStartTwice(t *testing.T) {
	w, err := NewWatcher(1)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	assert.Error(t, w.Start())
	w.Stop()
	assert.False(t, w.IsRunning())
	w.Stop()
}

func TestWatcherStopBeforeStart(t *testing.T) {
	w, err := NewWatcher(1)
	require.NoError(t, err)
	require.NoError(t, w.AddDirectory(t.TempDir()))

	w.Stop()
	assert.False(t, w.IsRunning())
	assert.Error(t, w.Start())
}

func TestWatcherAddDirectoryTwice(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(1)
	require.NoError(t, err)
	defer w.Stop()

	require.NoError(t, w.AddDirectory(dir))
	require.NoError(t, w.AddDirectory(dir))
	assert.Equal(t, []string{dir}, w.Directories())
}
