//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/mediagrab-go/api"
	"github.com/yourusername/mediagrab-go/internal/app"
	"github.com/yourusername/mediagrab-go/internal/domain"
	"github.com/yourusername/mediagrab-go/internal/infrastructure"
	"github.com/yourusername/mediagrab-go/pkg/logger"
)

const testToken = "integration-token"

// setupServer wires the real yt-dlp engine and SQLite history behind the router.
// Set MEDIAGRAB_TEST_URL to a short public video to run these tests.
func setupServer(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	url := os.Getenv("MEDIAGRAB_TEST_URL")
	if url == "" {
		t.Skip("MEDIAGRAB_TEST_URL not set")
	}
	config := domain.DefaultConfig()
	if _, err := exec.LookPath(config.Extractor.Binary); err != nil {
		t.Skipf("%s not installed", config.Extractor.Binary)
	}

	gin.SetMode(gin.TestMode)
	tmpDir := t.TempDir()
	config.Download.OutputDir = tmpDir

	repo, err := infrastructure.NewSQLiteDownloadRepository(tmpDir + "/history.db")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	ml, err := logger.NewMultiLogger(logger.MultiLoggerConfig{Level: "info", LogsDir: tmpDir + "/logs"})
	require.NoError(t, err)
	t.Cleanup(func() { ml.Close() })

	extractor := infrastructure.NewYTDLPExtractor(&config.Extractor, tmpDir+"/logs", nil)
	router := api.SetupRouter(api.Deps{
		FormatService:   app.NewFormatService(extractor, config, nil),
		DownloadManager: app.NewDownloadManager(extractor, repo, config, nil, ml),
		Verifier:        infrastructure.NewStaticTokenVerifier([]domain.TokenEntry{{Token: testToken, UserID: "it"}}),
		MultiLogger:     ml,
	})
	return router, url
}

func post(t *testing.T, router *gin.Engine, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+testToken)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec, out
}

func TestFormats_RealEngine(t *testing.T) {
	router, url := setupServer(t)

	rec, body := post(t, router, "/formats", map[string]string{"url": url})
	require.Equal(t, http.StatusOK, rec.Code, body)

	info := body["video_info"].(map[string]interface{})
	assert.NotEmpty(t, info["title"])

	formats := body["formats"].(map[string]interface{})
	for _, bucket := range []string{"video_audio", "video_audio_blocked", "video_only", "audio_only"} {
		assert.Contains(t, formats, bucket)
	}
}

func TestAudioDownload_RealEngine(t *testing.T) {
	router, url := setupServer(t)

	rec, body := post(t, router, "/download/audio", map[string]string{"url": url})
	require.Equal(t, http.StatusOK, rec.Code, body)
	assert.Equal(t, true, body["success"])

	files := body["files"].([]interface{})
	require.NotEmpty(t, files)
	for _, f := range files {
		entry := f.(map[string]interface{})
		assert.FileExists(t, entry["filepath"].(string))
		assert.Regexp(t, `\.mp3$`, entry["filename"])
	}
}

func TestUnsupportedURL_RealEngine(t *testing.T) {
	router, _ := setupServer(t)

	rec, body := post(t, router, "/formats", map[string]string{"url": "https://example.invalid/nothing"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "extraction", body["error_kind"])
}
