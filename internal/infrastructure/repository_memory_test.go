package infrastructure

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/mediagrab-go/internal/domain"
)

func TestMemoryDownloadRepository(t *testing.T) {
	repoContract(t, func(t *testing.T) domain.DownloadRepository { return NewMemoryDownloadRepository(0) })
}

func TestMemoryDownloadRepository_ReturnsCopies(t *testing.T) {
	repo := NewMemoryDownloadRepository(0)
	rec := domain.NewDownloadRecord(domain.FetchRequest{URL: "https://youtu.be/a", Kind: domain.KindVideo, UserID: "u1"})
	rec.MarkCompleted([]domain.FileInfo{{Filename: "a.mp4", Filepath: "/d/a.mp4"}})
	require.NoError(t, repo.Create(rec))

	rec.Title = "changed after create"
	rec.Files[0].Filepath = "/changed"
	found, err := repo.FindByID(rec.ID)
	require.NoError(t, err)
	assert.Empty(t, found.Title)
	assert.Equal(t, "/d/a.mp4", found.Files[0].Filepath)

	found.Title = "changed after find"
	found.Files[0].Filepath = "/changed"
	again, err := repo.FindByID(rec.ID)
	require.NoError(t, err)
	assert.Empty(t, again.Title)
	assert.Equal(t, "/d/a.mp4", again.Files[0].Filepath)
}

func TestMemoryDownloadRepository_CapsRecordsPerUser(t *testing.T) {
	repo := NewMemoryDownloadRepository(3)
	base := time.Now().Add(-time.Hour)

	newRecord := func(user string, minute int, finished bool) *domain.DownloadRecord {
		rec := domain.NewDownloadRecord(domain.FetchRequest{URL: "https://youtu.be/a", Kind: domain.KindAudio, UserID: user})
		rec.CreatedAt = base.Add(time.Duration(minute) * time.Minute)
		if finished {
			rec.MarkCompleted(nil)
		}
		return rec
	}

	running := newRecord("u1", 0, false)
	oldest := newRecord("u1", 1, true)
	older := newRecord("u1", 2, true)
	for _, rec := range []*domain.DownloadRecord{running, oldest, older, newRecord("u2", 0, true)} {
		require.NoError(t, repo.Create(rec))
	}

	require.NoError(t, repo.Create(newRecord("u1", 3, true)))
	_, err := repo.FindByID(oldest.ID)
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)
	_, err = repo.FindByID(running.ID)
	assert.NoError(t, err, "processing records are kept")

	records, err := repo.FindByUser("u1", 0)
	require.NoError(t, err)
	assert.Len(t, records, 3)

	others, err := repo.FindByUser("u2", 0)
	require.NoError(t, err)
	assert.Len(t, others, 1)

	// the cap holds as more records arrive
	for i := 4; i < 10; i++ {
		require.NoError(t, repo.Create(newRecord("u1", i, true)))
	}
	records, err = repo.FindByUser("u1", 0)
	require.NoError(t, err)
	assert.Len(t, records, 3)
}
