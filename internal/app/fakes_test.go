package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/yourusername/mediagrab-go/internal/domain"
)

// fakeExtractor renders the output template the way the engine would and
// writes the resulting files into the output directory
type fakeExtractor struct {
	mu sync.Mutex

	info     *domain.MediaInfo
	probeErr error
	fetchErr error
	// extensions written per fetch; defaults to the requested container
	writeExts []string
	// titles written per extension; defaults to the probed title
	titles []string
	sizes  []int

	probes  []domain.ProbeOptions
	fetches []domain.FetchOptions
}

func newFakeExtractor() *fakeExtractor {
	return &fakeExtractor{
		info: &domain.MediaInfo{
			Title:     "Sample Clip",
			Thumbnail: "https://img.example/thumb.jpg",
			Duration:  42,
			Uploader:  "someone",
		},
	}
}

func (f *fakeExtractor) Probe(_ context.Context, _ string, opts domain.ProbeOptions) (*domain.MediaInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.probes = append(f.probes, opts)
	if f.probeErr != nil {
		return nil, f.probeErr
	}
	info := *f.info
	return &info, nil
}

func (f *fakeExtractor) Fetch(_ context.Context, _ string, opts domain.FetchOptions) error {
	f.mu.Lock()
	f.fetches = append(f.fetches, opts)
	fetchErr, exts, sizes, titles := f.fetchErr, f.writeExts, f.sizes, f.titles
	if titles == nil {
		titles = []string{f.info.Title}
	}
	f.mu.Unlock()

	if fetchErr != nil {
		return fetchErr
	}
	if exts == nil {
		ext := opts.MergeFormat
		if opts.ExtractAudio {
			ext = opts.AudioFormat
		}
		exts = []string{ext}
	}

	i := 0
	for _, title := range titles {
		for _, ext := range exts {
			name := strings.NewReplacer(
				"%(title)s", strings.ReplaceAll(title, " ", "_"),
				"%(format_id)s", opts.Format,
				"%(ext)s", ext,
			).Replace(opts.OutputTemplate)
			size := 1024
			if i < len(sizes) {
				size = sizes[i]
			}
			i++
			if err := os.WriteFile(filepath.Join(opts.OutputDir, name), make([]byte, size), 0644); err != nil {
				return err
			}
		}
	}
	return nil
}

func (f *fakeExtractor) lastFetch() domain.FetchOptions {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches[len(f.fetches)-1]
}

func (f *fakeExtractor) calls() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.probes), len(f.fetches)
}

// failingRepo rejects every write
type failingRepo struct {
	domain.DownloadRepository
}

var errStoreDown = errors.New("store unavailable")

func (failingRepo) Create(*domain.DownloadRecord) error { return errStoreDown }
func (failingRepo) Update(*domain.DownloadRecord) error { return errStoreDown }
