package infrastructure

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/mediagrab-go/internal/domain"
)

func setupTestRepo(t *testing.T) *SQLiteDownloadRepository {
	t.Helper()
	repo, err := NewSQLiteDownloadRepository(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

// repoContract runs the same behaviour checks against every history store.
func repoContract(t *testing.T, newRepo func(t *testing.T) domain.DownloadRepository) {
	t.Run("create and find", func(t *testing.T) {
		repo := newRepo(t)
		rec := domain.NewDownloadRecord(domain.FetchRequest{
			URL: "https://www.youtube.com/watch?v=abc", Kind: domain.KindVideo, FormatID: "22", UserID: "u1",
		})
		require.NoError(t, repo.Create(rec))

		found, err := repo.FindByID(rec.ID)
		require.NoError(t, err)
		assert.Equal(t, rec.URL, found.URL)
		assert.Equal(t, domain.KindVideo, found.Kind)
		assert.Equal(t, domain.PlatformYouTube, found.Platform)
		assert.Equal(t, domain.StatusProcessing, found.Status)
	})

	t.Run("update persists completion", func(t *testing.T) {
		repo := newRepo(t)
		rec := domain.NewDownloadRecord(domain.FetchRequest{URL: "https://x.com/a/status/1", Kind: domain.KindReel, UserID: "u1"})
		require.NoError(t, repo.Create(rec))

		rec.MarkCompleted([]domain.FileInfo{
			{Filename: "a.mp4", Filepath: "/d/a.mp4", Filesize: 2048},
			{Filename: "b.mp4", Filepath: "/d/b.mp4", Filesize: 10},
		})
		require.NoError(t, repo.Update(rec))

		found, err := repo.FindByID(rec.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCompleted, found.Status)
		assert.Equal(t, "a.mp4", found.FileName)
		assert.Equal(t, int64(2048), found.FileSize)
		require.NotNil(t, found.CompletedAt)
		assert.Equal(t, []string{"/d/a.mp4", "/d/b.mp4"}, found.FilePaths())
	})

	t.Run("find by status is oldest first across users", func(t *testing.T) {
		repo := newRepo(t)
		base := time.Now().Add(-time.Hour)
		var running []string
		for i, user := range []string{"u1", "u2"} {
			rec := domain.NewDownloadRecord(domain.FetchRequest{URL: "https://youtu.be/x", Kind: domain.KindAudio, UserID: user})
			rec.CreatedAt = base.Add(time.Duration(i) * time.Minute)
			require.NoError(t, repo.Create(rec))
			running = append(running, rec.ID)
		}
		done := domain.NewDownloadRecord(domain.FetchRequest{URL: "https://youtu.be/y", Kind: domain.KindAudio, UserID: "u1"})
		done.MarkCompleted(nil)
		require.NoError(t, repo.Create(done))

		records, err := repo.FindByStatus(domain.StatusProcessing)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, running[0], records[0].ID)
		assert.Equal(t, running[1], records[1].ID)
	})

	t.Run("missing record is not_found", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.FindByID("nope")
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrRecordNotFound)
		assert.Equal(t, domain.ErrKindNotFound, domain.KindOf(err))

		err = repo.Delete("nope")
		assert.ErrorIs(t, err, domain.ErrRecordNotFound)
	})

	t.Run("delete removes record", func(t *testing.T) {
		repo := newRepo(t)
		rec := domain.NewDownloadRecord(domain.FetchRequest{URL: "https://x.com/a/status/1", Kind: domain.KindVideo, UserID: "u1"})
		require.NoError(t, repo.Create(rec))
		require.NoError(t, repo.Delete(rec.ID))

		_, err := repo.FindByID(rec.ID)
		assert.ErrorIs(t, err, domain.ErrRecordNotFound)
	})

	t.Run("find by user is scoped newest first and limited", func(t *testing.T) {
		repo := newRepo(t)
		base := time.Now().Add(-time.Hour)
		var ids []string
		for i := 0; i < 3; i++ {
			rec := domain.NewDownloadRecord(domain.FetchRequest{URL: "https://youtu.be/x", Kind: domain.KindAudio, UserID: "u1"})
			rec.CreatedAt = base.Add(time.Duration(i) * time.Minute)
			require.NoError(t, repo.Create(rec))
			ids = append(ids, rec.ID)
		}
		other := domain.NewDownloadRecord(domain.FetchRequest{URL: "https://youtu.be/y", Kind: domain.KindAudio, UserID: "u2"})
		require.NoError(t, repo.Create(other))

		records, err := repo.FindByUser("u1", 0)
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, ids[2], records[0].ID)
		assert.Equal(t, ids[0], records[2].ID)

		limited, err := repo.FindByUser("u1", 2)
		require.NoError(t, err)
		assert.Len(t, limited, 2)

		none, err := repo.FindByUser("u3", 10)
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("stats count by status per user", func(t *testing.T) {
		repo := newRepo(t)
		done := domain.NewDownloadRecord(domain.FetchRequest{URL: "https://youtu.be/a", Kind: domain.KindVideo, UserID: "u1"})
		done.MarkCompleted(nil)
		failed := domain.NewDownloadRecord(domain.FetchRequest{URL: "https://youtu.be/b", Kind: domain.KindVideo, UserID: "u1"})
		failed.MarkFailed(assert.AnError)
		running := domain.NewDownloadRecord(domain.FetchRequest{URL: "https://youtu.be/c", Kind: domain.KindVideo, UserID: "u1"})
		foreign := domain.NewDownloadRecord(domain.FetchRequest{URL: "https://youtu.be/d", Kind: domain.KindVideo, UserID: "u2"})
		for _, rec := range []*domain.DownloadRecord{done, failed, running, foreign} {
			require.NoError(t, repo.Create(rec))
		}

		stats, err := repo.GetStats("u1")
		require.NoError(t, err)
		assert.Equal(t, &domain.DownloadStats{Total: 3, Processing: 1, Completed: 1, Failed: 1}, stats)
	})
}

func TestSQLiteDownloadRepository(t *testing.T) {
	repoContract(t, func(t *testing.T) domain.DownloadRepository { return setupTestRepo(t) })
}

func TestSQLiteDownloadRepository_ReopenKeepsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	repo, err := NewSQLiteDownloadRepository(path)
	require.NoError(t, err)
	rec := domain.NewDownloadRecord(domain.FetchRequest{URL: "https://youtu.be/a", Kind: domain.KindShort, UserID: "u1"})
	require.NoError(t, repo.Create(rec))
	require.NoError(t, repo.Close())

	reopened, err := NewSQLiteDownloadRepository(path)
	require.NoError(t, err)
	defer reopened.Close()

	found, err := reopened.FindByID(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.KindShort, found.Kind)
}
