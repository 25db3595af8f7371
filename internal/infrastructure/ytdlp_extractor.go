package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/mediagrab-go/internal/domain"
)

// engineWaitDelay bounds how long output pipes are drained after the engine
// is killed, since ffmpeg children may hold them open
const engineWaitDelay = 5 * time.Second

// YTDLPExtractor implements domain.Extractor on top of the yt-dlp binary
type YTDLPExtractor struct {
	config  *domain.ExtractorConfig
	logsDir string
	logger  *zap.Logger
}

// NewYTDLPExtractor creates a new yt-dlp extractor. Engine output of fetches
// is appended to a daily log file in logsDir when it is set.
func NewYTDLPExtractor(config *domain.ExtractorConfig, logsDir string, logger *zap.Logger) *YTDLPExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &YTDLPExtractor{
		config:  config,
		logsDir: logsDir,
		logger:  logger,
	}
}

// ytdlpInfo mirrors the parts of `yt-dlp -J` output we use
type ytdlpInfo struct {
	Title     *string            `json:"title"`
	Thumbnail string             `json:"thumbnail"`
	Duration  float64            `json:"duration"`
	Uploader  *string            `json:"uploader"`
	Formats   []domain.RawFormat `json:"formats"`
}

// Probe returns metadata and formats without downloading
func (e *YTDLPExtractor) Probe(ctx context.Context, url string, opts domain.ProbeOptions) (*domain.MediaInfo, error) {
	if e.config.ProbeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.ProbeTimeout)
		defer cancel()
	}

	args := []string{"-J", "--no-warnings", "--skip-download"}
	if opts.CookieFile != "" && fileExists(opts.CookieFile) {
		args = append(args, "--cookies", opts.CookieFile)
	}
	args = append(args, url)

	e.logger.Debug("Probing URL", zap.String("cmd", CommandLine(e.config.Binary, args...)))

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.config.Binary, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = engineWaitDelay

	if err := cmd.Run(); err != nil {
		return nil, domain.NewError(domain.ErrKindExtraction, "probe", engineFailure(ctx, err, stderr.String()))
	}

	info, err := ParseMediaInfo(stdout.Bytes())
	if err != nil {
		return nil, domain.NewError(domain.ErrKindExtraction, "probe", err)
	}
	return info, nil
}

// ParseMediaInfo decodes `yt-dlp -J` output
func ParseMediaInfo(data []byte) (*domain.MediaInfo, error) {
	var raw ytdlpInfo
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse engine output: %w", err)
	}

	info := &domain.MediaInfo{
		Title:     "Unknown",
		Thumbnail: raw.Thumbnail,
		Duration:  raw.Duration,
		Uploader:  "Unknown",
		Formats:   raw.Formats,
	}
	if raw.Title != nil && *raw.Title != "" {
		info.Title = *raw.Title
	}
	if raw.Uploader != nil && *raw.Uploader != "" {
		info.Uploader = *raw.Uploader
	}
	return info, nil
}

// Fetch downloads the URL into opts.OutputDir
func (e *YTDLPExtractor) Fetch(ctx context.Context, url string, opts domain.FetchOptions) error {
	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return domain.NewError(domain.ErrKindFilesystem, "fetch", fmt.Errorf("failed to create output directory: %w", err))
	}

	if e.config.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.FetchTimeout)
		defer cancel()
	}

	args := BuildFetchArgs(url, opts)

	engineLog, err := e.openLogFile()
	if err != nil {
		e.logger.Warn("Engine log unavailable", zap.Error(err))
		engineLog = nopWriteCloser{io.Discard}
	}
	defer engineLog.Close()

	cmdLine := CommandLine(e.config.Binary, args...)
	writeLogHeader(engineLog, opts.Label, cmdLine)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.config.Binary, args...)
	cmd.Stdout = engineLog
	cmd.Stderr = io.MultiWriter(engineLog, &stderr)
	cmd.WaitDelay = engineWaitDelay

	if err := cmd.Run(); err != nil {
		failure := engineFailure(ctx, err, stderr.String())
		writeLogFooter(engineLog, false, failure.Error())
		return domain.NewError(domain.ErrKindExtraction, "fetch", failure)
	}

	writeLogFooter(engineLog, true, "engine exited cleanly")
	return nil
}

// BuildFetchArgs builds the yt-dlp argument list for a transfer
func BuildFetchArgs(url string, opts domain.FetchOptions) []string {
	args := []string{
		"--no-warnings",
		"--newline",
		"--restrict-filenames",
		"-f", opts.Format,
		"-o", opts.OutputTemplate,
		"-P", opts.OutputDir,
	}

	if opts.MergeFormat != "" {
		args = append(args, "--merge-output-format", opts.MergeFormat)
	}

	if opts.ExtractAudio {
		args = append(args, "-x")
		if opts.AudioFormat != "" {
			args = append(args, "--audio-format", opts.AudioFormat)
		}
		if opts.AudioQuality != "" {
			quality := opts.AudioQuality
			if !strings.HasSuffix(strings.ToUpper(quality), "K") {
				quality += "K"
			}
			args = append(args, "--audio-quality", quality)
		}
	}

	if opts.NoPlaylist {
		args = append(args, "--no-playlist")
	}

	if opts.CookieFile != "" && fileExists(opts.CookieFile) {
		args = append(args, "--cookies", opts.CookieFile)
	}

	return append(args, url)
}

// engineFailure turns a failed run into an error carrying the engine's message
func engineFailure(ctx context.Context, runErr error, stderr string) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("engine timed out")
	}
	if errors.Is(runErr, exec.ErrNotFound) {
		return fmt.Errorf("engine binary not found: %w", runErr)
	}
	if msg := lastEngineError(stderr); msg != "" {
		return errors.New(msg)
	}
	return fmt.Errorf("engine failed: %w", runErr)
}

// lastEngineError returns the last "ERROR:" line of engine stderr, or the
// last non-empty line when none is tagged
func lastEngineError(stderr string) string {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	fallback := ""
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "ERROR:") {
			return strings.TrimSpace(strings.TrimPrefix(line, "ERROR:"))
		}
		if fallback == "" {
			fallback = line
		}
	}
	return fallback
}

// openLogFile opens the engine log file for today
func (e *YTDLPExtractor) openLogFile() (io.WriteCloser, error) {
	if e.logsDir == "" {
		return nopWriteCloser{io.Discard}, nil
	}
	if err := os.MkdirAll(e.logsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	dateStr := time.Now().Format("20060102")
	path := filepath.Join(e.logsDir, "engine-"+dateStr+".log")
	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
}

func writeLogHeader(w io.Writer, label, cmdLine string) {
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	fmt.Fprintf(w, "\n=== [%s] Fetch: %s ===\n", timestamp, label)
	fmt.Fprintf(w, "$ %s\n", cmdLine)
}

func writeLogFooter(w io.Writer, success bool, message string) {
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	status := "SUCCESS"
	if !success {
		status = "FAILED"
	}
	fmt.Fprintf(w, "[%s] %s: %s\n", timestamp, status, message)
	fmt.Fprint(w, "=== END ===\n\n")
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
