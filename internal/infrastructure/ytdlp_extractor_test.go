package infrastructure

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/mediagrab-go/internal/domain"
)

// fakeEngine writes an executable shell script standing in for yt-dlp
func fakeEngine(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script engine stub requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "yt-dlp")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0755))
	return path
}

const probeJSON = `{
  "title": "Test Clip",
  "thumbnail": "https://i.ytimg.com/vi/abc/hq.jpg",
  "duration": 212.5,
  "uploader": null,
  "formats": [
    {"format_id": "18", "vcodec": "avc1", "acodec": "mp4a", "width": 640, "height": 360, "filesize": 1048576, "ext": "mp4", "format_note": "360p"},
    {"format_id": "140", "vcodec": "none", "acodec": "mp4a", "filesize_approx": 3145728.4, "ext": "m4a", "format_note": "medium"},
    {"format_id": "sb0", "vcodec": "none", "acodec": "none", "ext": "mhtml", "format_note": "storyboard"}
  ]
}`

func TestParseMediaInfo(t *testing.T) {
	info, err := ParseMediaInfo([]byte(probeJSON))
	require.NoError(t, err)

	assert.Equal(t, "Test Clip", info.Title)
	assert.Equal(t, "Unknown", info.Uploader)
	assert.Equal(t, 212.5, info.Duration)
	assert.Equal(t, "https://i.ytimg.com/vi/abc/hq.jpg", info.Thumbnail)
	require.Len(t, info.Formats, 3)
	assert.Equal(t, "18", info.Formats[0].FormatID)
	assert.Equal(t, float64(1048576), info.Formats[0].Filesize)
	assert.InDelta(t, 3145728.4, info.Formats[1].FilesizeApprox, 0.01)
	assert.Zero(t, info.Formats[2].Filesize)
}

func TestParseMediaInfo_Defaults(t *testing.T) {
	info, err := ParseMediaInfo([]byte(`{"formats": []}`))
	require.NoError(t, err)
	assert.Equal(t, "Unknown", info.Title)
	assert.Equal(t, "Unknown", info.Uploader)
	assert.Empty(t, info.Formats)

	_, err = ParseMediaInfo([]byte("not json"))
	assert.Error(t, err)
}

func TestBuildFetchArgs_Video(t *testing.T) {
	args := BuildFetchArgs("https://youtu.be/abc", domain.FetchOptions{
		Format:         "137+140",
		OutputDir:      "/srv/my downloads",
		OutputTemplate: "%(title)s_tok_%(format_id)s.%(ext)s",
		MergeFormat:    "mp4",
	})

	assert.Equal(t, "https://youtu.be/abc", args[len(args)-1])
	assert.Contains(t, args, "--restrict-filenames")
	assertFlag(t, args, "-f", "137+140")
	assertFlag(t, args, "-o", "%(title)s_tok_%(format_id)s.%(ext)s")
	assertFlag(t, args, "-P", "/srv/my downloads")
	assertFlag(t, args, "--merge-output-format", "mp4")
	assert.NotContains(t, args, "-x")
	assert.NotContains(t, args, "--no-playlist")
	assert.NotContains(t, args, "--cookies")
}

func TestBuildFetchArgs_AudioShortAndCookies(t *testing.T) {
	cookieFile := filepath.Join(t.TempDir(), "cookies.txt")
	require.NoError(t, os.WriteFile(cookieFile, []byte("# Netscape HTTP Cookie File\n"), 0644))

	args := BuildFetchArgs("https://youtu.be/abc", domain.FetchOptions{
		Format:       "bestaudio/best",
		OutputDir:    "/out",
		ExtractAudio: true,
		AudioFormat:  "mp3",
		AudioQuality: "192",
		NoPlaylist:   true,
		CookieFile:   cookieFile,
	})

	assert.Contains(t, args, "-x")
	assertFlag(t, args, "--audio-format", "mp3")
	assertFlag(t, args, "--audio-quality", "192K")
	assert.Contains(t, args, "--no-playlist")
	assertFlag(t, args, "--cookies", cookieFile)

	missing := BuildFetchArgs("https://youtu.be/abc", domain.FetchOptions{CookieFile: "/nonexistent/cookies.txt"})
	assert.NotContains(t, missing, "--cookies")
}

func assertFlag(t *testing.T, args []string, flag, value string) {
	t.Helper()
	for i, a := range args {
		if a == flag {
			require.Less(t, i+1, len(args), "flag %s has no value", flag)
			assert.Equal(t, value, args[i+1])
			return
		}
	}
	t.Errorf("flag %s not found in %v", flag, args)
}

func TestLastEngineError(t *testing.T) {
	stderr := "WARNING: something\nERROR: [youtube] abc: Video unavailable\n\n"
	assert.Equal(t, "[youtube] abc: Video unavailable", lastEngineError(stderr))
	assert.Equal(t, "plain failure", lastEngineError("first\nplain failure\n"))
	assert.Equal(t, "", lastEngineError(""))
}

func TestYTDLPExtractor_Probe(t *testing.T) {
	bin := fakeEngine(t, "cat <<'JSON'\n"+probeJSON+"\nJSON\n")
	extractor := NewYTDLPExtractor(&domain.ExtractorConfig{Binary: bin, ProbeTimeout: 10 * time.Second}, "", nil)

	info, err := extractor.Probe(context.Background(), "https://youtu.be/abc", domain.ProbeOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Test Clip", info.Title)
	assert.Len(t, info.Formats, 3)
}

func TestYTDLPExtractor_ProbeFailure(t *testing.T) {
	bin := fakeEngine(t, "echo 'ERROR: [youtube] abc: Private video' >&2\nexit 1\n")
	extractor := NewYTDLPExtractor(&domain.ExtractorConfig{Binary: bin}, "", nil)

	_, err := extractor.Probe(context.Background(), "https://youtu.be/abc", domain.ProbeOptions{})
	require.Error(t, err)
	assert.Equal(t, domain.ErrKindExtraction, domain.KindOf(err))
	assert.Equal(t, "[youtube] abc: Private video", domain.MessageOf(err))
}

func TestYTDLPExtractor_ProbeTimeout(t *testing.T) {
	bin := fakeEngine(t, "exec sleep 5\n")
	extractor := NewYTDLPExtractor(&domain.ExtractorConfig{Binary: bin, ProbeTimeout: 100 * time.Millisecond}, "", nil)

	_, err := extractor.Probe(context.Background(), "https://youtu.be/abc", domain.ProbeOptions{})
	require.Error(t, err)
	assert.Equal(t, domain.ErrKindExtraction, domain.KindOf(err))
	assert.Contains(t, err.Error(), "timed out")
}

func TestYTDLPExtractor_MissingBinary(t *testing.T) {
	extractor := NewYTDLPExtractor(&domain.ExtractorConfig{Binary: "definitely-not-a-real-engine-binary"}, "", nil)

	_, err := extractor.Probe(context.Background(), "https://youtu.be/abc", domain.ProbeOptions{})
	require.Error(t, err)
	assert.Equal(t, domain.ErrKindExtraction, domain.KindOf(err))
	assert.Contains(t, err.Error(), "not found")
}

func TestYTDLPExtractor_FetchWritesEngineLog(t *testing.T) {
	bin := fakeEngine(t, "echo '[download] 100% of 1.00MiB'\n")
	logsDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "out")
	extractor := NewYTDLPExtractor(&domain.ExtractorConfig{Binary: bin, FetchTimeout: 10 * time.Second}, logsDir, nil)

	err := extractor.Fetch(context.Background(), "https://youtu.be/abc", domain.FetchOptions{
		Format:         "18",
		OutputDir:      outDir,
		OutputTemplate: "%(title)s_tok.%(ext)s",
		Label:          "record-1",
	})
	require.NoError(t, err)

	assert.DirExists(t, outDir)
	data, err := os.ReadFile(filepath.Join(logsDir, "engine-"+time.Now().Format("20060102")+".log"))
	require.NoError(t, err)
	log := string(data)
	assert.Contains(t, log, "Fetch: record-1")
	assert.Contains(t, log, "[download] 100% of 1.00MiB")
	assert.Contains(t, log, "SUCCESS")
	assert.True(t, strings.HasSuffix(log, "=== END ===\n\n"))
}

func TestYTDLPExtractor_FetchFailure(t *testing.T) {
	bin := fakeEngine(t, "echo 'ERROR: Requested format is not available' >&2\nexit 1\n")
	extractor := NewYTDLPExtractor(&domain.ExtractorConfig{Binary: bin}, t.TempDir(), nil)

	err := extractor.Fetch(context.Background(), "https://youtu.be/abc", domain.FetchOptions{
		Format:    "999",
		OutputDir: t.TempDir(),
	})
	require.Error(t, err)
	assert.Equal(t, domain.ErrKindExtraction, domain.KindOf(err))
	assert.Equal(t, "Requested format is not available", domain.MessageOf(err))
}
