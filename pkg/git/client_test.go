package git

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoClient(t *testing.T) *Client {
	t.Helper()
	if !IsInstalled() {
		t.Skip("git not installed")
	}
	client := NewClient(t.TempDir(), nil)
	require.NoError(t, client.Init(context.Background()))
	return client
}

func TestClient_Init(t *testing.T) {
	client := newRepoClient(t)
	assert.True(t, client.IsRepo())
	assert.DirExists(t, filepath.Join(client.WorkDir, ".git"))

	require.NoError(t, client.Init(context.Background()), "re-init")
}

func TestClient_IsRepo_Plain(t *testing.T) {
	client := NewClient(t.TempDir(), nil)
	assert.False(t, client.IsRepo())
}

func TestClient_Run_NoCommand(t *testing.T) {
	_, err := NewClient(t.TempDir(), nil).Run(context.Background())
	assert.Error(t, err)
}

func TestClient_CommitAndLog(t *testing.T) {
	ctx := context.Background()
	client := newRepoClient(t)
	file := filepath.Join(client.WorkDir, "lib.csv")

	write := func(content, msg string) {
		t.Helper()
		require.NoError(t, os.WriteFile(file, []byte(content), 0644))
		require.NoError(t, client.Add(ctx, "lib.csv"))
		changed, err := client.Changed(ctx, "lib.csv")
		require.NoError(t, err)
		require.True(t, changed)
		require.NoError(t, client.Commit(ctx, msg))
	}

	entries, err := client.Log(ctx, "lib.csv")
	assert.Error(t, err, "log of an empty repository")
	assert.Empty(t, entries)

	write("v1", "add Dune")
	write("v2", "update lib.csv")

	changed, err := client.Changed(ctx, "lib.csv")
	require.NoError(t, err)
	assert.False(t, changed)

	entries, err = client.Log(ctx, "lib.csv")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "update lib.csv", entries[0].Subject)
	assert.Equal(t, "add Dune", entries[1].Subject)
	assert.NotEmpty(t, entries[0].Hash)
	assert.False(t, entries[0].When.IsZero())

	other, err := client.Log(ctx, "other.csv")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestClient_Add_NoFiles(t *testing.T) {
	assert.NoError(t, NewClient(t.TempDir(), nil).Add(context.Background()))
}
