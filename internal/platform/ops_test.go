package platform_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YaroslavMizgirev/shelf/internal/platform"
	"github.com/YaroslavMizgirev/shelf/pkg/adapters/fs"
	"github.com/YaroslavMizgirev/shelf/pkg/adapters/sqlite"
	"github.com/YaroslavMizgirev/shelf/pkg/core"
	"github.com/YaroslavMizgirev/shelf/pkg/git"
)

func TestInit_FS(t *testing.T) {
	t.Run("AutoInit Creates Directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "library")

		repo, err := platform.Init(path, platform.WithAutoInit(true), platform.WithVersioning(false))
		require.NoError(t, err)

		fsRepo, ok := repo.(*fs.Repository)
		require.True(t, ok, "expected fs repository, got %T", repo)
		assert.Equal(t, path, fsRepo.Path)
		assert.DirExists(t, path)
		assert.NoDirExists(t, filepath.Join(path, ".git"))
	})

	t.Run("Missing Directory Without AutoInit", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing")
		_, err := platform.Init(path, platform.WithMustExist(true))
		assert.Error(t, err)
	})

	t.Run("AutoInit With Git", func(t *testing.T) {
		if !git.IsInstalled() {
			t.Skip("git not installed")
		}
		path := filepath.Join(t.TempDir(), "versioned")

		repo, err := platform.Init(path, platform.WithAutoInit(true))
		require.NoError(t, err)
		assert.DirExists(t, filepath.Join(path, ".git"))

		state := repo.(*fs.Repository).State().(fs.RepositoryState)
		assert.False(t, state.Gitless)
	})

	t.Run("Custom System Dir", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "custom")
		repo, err := platform.Init(path,
			platform.WithAutoInit(true),
			platform.WithVersioning(false),
			platform.WithSystemDir(".books"),
		)
		require.NoError(t, err)
		require.NoError(t, repo.Write(context.Background(), core.DefaultDocument, []byte("id,title\n")))
		assert.FileExists(t, filepath.Join(path, ".books", "write.lock"))
		assert.NoDirExists(t, filepath.Join(path, platform.DefaultSystemDir))
	})

	t.Run("Unknown Adapter", func(t *testing.T) {
		_, err := platform.Init(t.TempDir(), platform.WithAdapter("tape"))
		assert.ErrorContains(t, err, "unknown adapter")
	})
}

func TestInit_SQLite(t *testing.T) {
	t.Run("Directory Gets Default Database", func(t *testing.T) {
		dir := t.TempDir()
		repo, err := platform.Init(dir, platform.WithAdapter("sqlite"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = repo.(*sqlite.Repository).Close() })

		assert.FileExists(t, filepath.Join(dir, sqlite.DefaultFilename))
	})

	t.Run("Explicit Database File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "books.db")
		repo, err := platform.Init(path, platform.WithAdapter("sqlite"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = repo.(*sqlite.Repository).Close() })

		assert.FileExists(t, path)
	})

	t.Run("Must Exist", func(t *testing.T) {
		_, err := platform.Init(t.TempDir(), platform.WithAdapter("sqlite"), platform.WithMustExist(true))
		assert.Error(t, err)
	})
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	for _, adapter := range []string{"fs", "sqlite"} {
		t.Run(adapter, func(t *testing.T) {
			dir := t.TempDir()
			svc, err := platform.New(dir,
				platform.WithAdapter(adapter),
				platform.WithAutoInit(true),
				platform.WithVersioning(false),
				platform.WithCatalog("books.csv"),
				platform.WithConfirmer(core.ConfirmFunc(func(context.Context, string) bool { return true })),
			)
			require.NoError(t, err)
			t.Cleanup(func() { _ = svc.Close() })

			assert.Equal(t, "books.csv", svc.Document())

			_, err = svc.Add(ctx, core.Book{ID: "1", Title: "Dune"})
			require.NoError(t, err)
			ok, err := svc.Remove(ctx, "1")
			require.NoError(t, err)
			assert.True(t, ok)
			_, err = svc.Add(ctx, core.Book{ID: "2", Title: "Emma"})
			require.NoError(t, err)

			require.NoError(t, svc.Load(ctx))
			books := svc.Books()
			require.Len(t, books, 1)
			assert.Equal(t, "Emma", books[0].Title)
		})
	}
}

func TestNew_WithRepository(t *testing.T) {
	repo := fs.NewRepository(fs.Config{Path: t.TempDir(), Gitless: true, AutoInit: true})
	require.NoError(t, repo.Initialize(context.Background()))

	svc, err := platform.New("ignored", platform.WithRepository(repo))
	require.NoError(t, err)
	assert.Same(t, repo, svc.Repository())
}

func TestNew_Strict(t *testing.T) {
	dir := t.TempDir()
	svc, err := platform.New(dir, platform.WithAutoInit(true), platform.WithVersioning(false), platform.WithStrict(true))
	require.NoError(t, err)

	_, err = svc.LoadAll(context.Background(), []byte("1,Dune,Frank Herbert,soon,,,,true,Novel\n"))
	assert.ErrorIs(t, err, core.ErrMalformedField)
}
