package fs_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YaroslavMizgirev/shelf/pkg/adapters/fs"
	"github.com/YaroslavMizgirev/shelf/pkg/core"
	"github.com/YaroslavMizgirev/shelf/pkg/git"
)

// setupRepo creates an initialized repository in a fresh library directory.
// It returns the repository and the library path.
func setupRepo(t *testing.T, opts ...func(*fs.Config)) (*fs.Repository, string) {
	t.Helper()

	libPath := filepath.Join(t.TempDir(), "library")
	cfg := fs.Config{
		Path:     libPath,
		AutoInit: true,
		Gitless:  true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	repo := fs.NewRepository(cfg)
	require.NoError(t, repo.Initialize(context.Background()))
	return repo, libPath
}

func requireGit(t *testing.T) {
	t.Helper()
	if !fs.IsGitInstalled() {
		t.Skip("git is not installed")
	}
}

func TestInitialize(t *testing.T) {
	t.Run("Creates Directory if Missing", func(t *testing.T) {
		_, path := setupRepo(t)
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("Fails if MustExist and Missing", func(t *testing.T) {
		repo := fs.NewRepository(fs.Config{
			Path:      filepath.Join(t.TempDir(), "missing"),
			MustExist: true,
			Gitless:   true,
		})
		assert.Error(t, repo.Initialize(context.Background()))
	})

	t.Run("Fails if Path Is a File", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "lib.csv")
		require.NoError(t, os.WriteFile(file, nil, 0644))
		repo := fs.NewRepository(fs.Config{Path: file, MustExist: true, Gitless: true})
		assert.Error(t, repo.Initialize(context.Background()))
	})

	t.Run("Inits Git Repo and Ignores System Dir", func(t *testing.T) {
		requireGit(t)
		_, path := setupRepo(t, func(c *fs.Config) { c.Gitless = false })

		_, err := os.Stat(filepath.Join(path, ".git"))
		require.NoError(t, err)

		ignore, err := os.ReadFile(filepath.Join(path, ".gitignore"))
		require.NoError(t, err)
		assert.Contains(t, string(ignore), ".shelf/")
	})

	t.Run("Refuses Non Repo Without AutoInit", func(t *testing.T) {
		requireGit(t)
		dir := t.TempDir()
		repo := fs.NewRepository(fs.Config{Path: dir, MustExist: true})
		assert.Error(t, repo.Initialize(context.Background()))
	})
}

func TestReadWrite(t *testing.T) {
	ctx := context.Background()

	t.Run("Round Trips a Document", func(t *testing.T) {
		repo, path := setupRepo(t)

		require.NoError(t, repo.Write(ctx, "lib.csv", []byte("id,title\n1,Dune")))

		onDisk, err := os.ReadFile(filepath.Join(path, "lib.csv"))
		require.NoError(t, err)
		assert.Equal(t, "id,title\n1,Dune", string(onDisk))

		got, err := repo.Read(ctx, "lib.csv")
		require.NoError(t, err)
		assert.Equal(t, onDisk, got)
	})

	t.Run("Missing Document Is Not Exist", func(t *testing.T) {
		repo, _ := setupRepo(t)
		_, err := repo.Read(ctx, "lib.csv")
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})

	t.Run("Creates Nested Directories", func(t *testing.T) {
		repo, path := setupRepo(t)
		require.NoError(t, repo.Write(ctx, "catalogs/home.csv", []byte("x")))
		_, err := os.Stat(filepath.Join(path, "catalogs", "home.csv"))
		assert.NoError(t, err)
	})

	t.Run("Rejects Paths Outside the Library", func(t *testing.T) {
		repo, _ := setupRepo(t)
		for _, name := range []string{"../escape.csv", "", "a/../../b.csv"} {
			assert.Error(t, repo.Write(ctx, name, []byte("x")), "name %q", name)
			_, err := repo.Read(ctx, name)
			assert.Error(t, err, "name %q", name)
		}
	})

	t.Run("Read Only Rejects Writes", func(t *testing.T) {
		dir := t.TempDir()
		repo := fs.NewRepository(fs.Config{Path: dir, ReadOnly: true})
		require.NoError(t, repo.Initialize(ctx))

		err := repo.Write(ctx, "lib.csv", []byte("x"))
		assert.ErrorIs(t, err, core.ErrReadOnly)
		_, statErr := os.Stat(filepath.Join(dir, "lib.csv"))
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("Honors Cancelled Context On Read", func(t *testing.T) {
		repo, _ := setupRepo(t)
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := repo.Read(cctx, "lib.csv")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestWrite_Versioned(t *testing.T) {
	requireGit(t)
	ctx := context.Background()
	repo, path := setupRepo(t, func(c *fs.Config) { c.Gitless = false })

	reasonCtx := context.WithValue(ctx, core.ChangeReasonKey, "add Dune")
	require.NoError(t, repo.Write(reasonCtx, "lib.csv", []byte("1,Dune")))
	require.NoError(t, repo.Write(ctx, "lib.csv", []byte("1,Dune\n2,Emma")))

	t.Run("Identical Write Adds No Commit", func(t *testing.T) {
		require.NoError(t, repo.Write(ctx, "lib.csv", []byte("1,Dune\n2,Emma")))
	})

	client := git.NewClient(path, nil)
	status, err := client.Run(ctx, "status", "--porcelain")
	require.NoError(t, err)
	assert.Empty(t, status)

	revs, err := repo.History(ctx, "lib.csv")
	require.NoError(t, err)
	require.Len(t, revs, 2)
	assert.Equal(t, "update lib.csv", revs[0].Reason)
	assert.Equal(t, "add Dune", revs[1].Reason)
	assert.NotEmpty(t, revs[0].ID)
	assert.False(t, revs[0].When.IsZero())
}

func TestWrite_CommitFailureKeepsDocument(t *testing.T) {
	requireGit(t)
	ctx := context.Background()
	repo, path := setupRepo(t, func(c *fs.Config) { c.Gitless = false })

	// A stale index lock makes 'git add' fail after the rename.
	require.NoError(t, os.WriteFile(filepath.Join(path, ".git", "index.lock"), nil, 0644))

	require.NoError(t, repo.Write(ctx, "lib.csv", []byte("1,Dune")))

	got, err := os.ReadFile(filepath.Join(path, "lib.csv"))
	require.NoError(t, err)
	assert.Equal(t, "1,Dune", string(got))

	state := repo.State().(fs.RepositoryState)
	assert.Equal(t, 1, state.Writes)
	assert.Equal(t, 1, state.Uncommitted)
}

func TestHistory_Gitless(t *testing.T) {
	repo, _ := setupRepo(t)
	_, err := repo.History(context.Background(), "lib.csv")
	assert.Error(t, err)
}

func TestState(t *testing.T) {
	repo, path := setupRepo(t)
	require.NoError(t, repo.Write(context.Background(), "lib.csv", []byte("x")))

	state, ok := repo.State().(fs.RepositoryState)
	require.True(t, ok)
	assert.Equal(t, path, state.Path)
	assert.Equal(t, ".shelf", state.SystemDir)
	assert.True(t, state.Gitless)
	assert.Equal(t, 1, state.Writes)
	require.NotNil(t, state.LastWrite)
	assert.Equal(t, "fs-repository", repo.ComponentType())
}
