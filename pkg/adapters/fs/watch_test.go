package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YaroslavMizgirev/shelf/pkg/adapters/fs"
	"github.com/YaroslavMizgirev/shelf/pkg/core"
)

func waitEvent(t *testing.T, events <-chan core.Event) core.Event {
	t.Helper()
	select {
	case e, ok := <-events:
		require.True(t, ok, "events channel closed")
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return core.Event{}
	}
}

func TestWatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo, path := setupRepo(t)
	require.NoError(t, repo.Write(ctx, "lib.csv", []byte("v1")))

	events, err := repo.Watch(ctx, "lib.csv")
	require.NoError(t, err)

	// Unrelated files are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(path, "notes.txt"), []byte("x"), 0644))

	require.NoError(t, repo.Write(ctx, "lib.csv", []byte("v2")))
	e := waitEvent(t, events)
	assert.Equal(t, "lib.csv", e.Name)
	assert.NotEqual(t, core.EventDelete, e.Type)

	state := repo.State().(fs.RepositoryState)
	assert.True(t, state.WatcherActive)

	require.NoError(t, os.Remove(filepath.Join(path, "lib.csv")))
	e = waitEvent(t, events)
	assert.Equal(t, core.EventDelete, e.Type)

	cancel()
	select {
	case _, ok := <-events:
		for ok {
			_, ok = <-events
		}
	case <-time.After(2 * time.Second):
		t.Fatal("events channel not closed after cancel")
	}
}

func TestWatch_RejectsOutsidePaths(t *testing.T) {
	repo, _ := setupRepo(t)
	_, err := repo.Watch(context.Background(), "../lib.csv")
	assert.Error(t, err)
}
