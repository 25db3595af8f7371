package domain

import "context"

// MediaInfo is the metadata returned by an engine probe
type MediaInfo struct {
	Title     string      `json:"title"`
	Thumbnail string      `json:"thumbnail"`
	Duration  float64     `json:"duration"`
	Uploader  string      `json:"uploader"`
	Formats   []RawFormat `json:"formats"`
}

// ProbeOptions configures a metadata-only engine call
type ProbeOptions struct {
	CookieFile string
}

// FetchOptions configures an engine transfer
type FetchOptions struct {
	Format         string
	OutputDir      string
	OutputTemplate string
	MergeFormat    string
	ExtractAudio   bool
	AudioFormat    string
	AudioQuality   string
	NoPlaylist     bool
	CookieFile     string
	Label          string // identifies the call in engine logs
}

// Extractor is the external media-extraction engine
type Extractor interface {
	// Probe returns metadata and the format list without downloading
	Probe(ctx context.Context, url string, opts ProbeOptions) (*MediaInfo, error)

	// Fetch downloads the URL into opts.OutputDir
	Fetch(ctx context.Context, url string, opts FetchOptions) error
}
