package infrastructure

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/mediagrab-go/internal/domain"
)

func writeFile(t *testing.T, dir, name string, size int) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), make([]byte, size), 0644))
}

func TestScanOutputs_MatchesTokenAndExtension(t *testing.T) {
	dir := t.TempDir()
	token := domain.OutputToken("20240309_140507_abc123")

	writeFile(t, dir, "Clip_20240309_140507_abc123_22.mp4", 1536)
	writeFile(t, dir, "Clip_20240309_140507_abc123_137.mp4", 10)
	writeFile(t, dir, "Clip_20240309_140507_abc123.mp4.part", 99)
	writeFile(t, dir, "Clip_20240309_140507_abc123.webm", 99)
	writeFile(t, dir, "Clip_20240309_140507_ffffff_22.mp4", 99)
	writeFile(t, dir, "unrelated.mp4", 99)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "dir_20240309_140507_abc123.mp4"), 0755))

	files, err := ScanOutputs(dir, token, "mp4")
	require.NoError(t, err)

	require.Len(t, files, 2)
	assert.Equal(t, "Clip_20240309_140507_abc123_137.mp4", files[0].Filename)
	assert.Equal(t, "Clip_20240309_140507_abc123_22.mp4", files[1].Filename)
	assert.Equal(t, filepath.Join(dir, "Clip_20240309_140507_abc123_22.mp4"), files[1].Filepath)
	assert.Equal(t, int64(1536), files[1].Filesize)
	assert.Equal(t, "1.5 KB", files[1].SizeStr)
}

func TestScanOutputs_NoMatches(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "other.mp3", 10)

	files, err := ScanOutputs(dir, domain.OutputToken("20240309_140507_abc123"), "mp3")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestScanOutputs_MissingDirectory(t *testing.T) {
	_, err := ScanOutputs(filepath.Join(t.TempDir(), "missing"), domain.OutputToken("tok"), "mp4")
	require.Error(t, err)
	assert.Equal(t, domain.ErrKindFilesystem, domain.KindOf(err))
}
