package domain

import (
	"fmt"
	"sort"
	"strings"
)

// RawFormat is one format descriptor as reported by the extraction engine
type RawFormat struct {
	FormatID       string  `json:"format_id"`
	VCodec         string  `json:"vcodec"`
	ACodec         string  `json:"acodec"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	Filesize       float64 `json:"filesize"`
	FilesizeApprox float64 `json:"filesize_approx"`
	Ext            string  `json:"ext"`
	FormatNote     string  `json:"format_note"`
}

// StreamVariant is a classified, presentable format
type StreamVariant struct {
	ID         string `json:"id"`
	Ext        string `json:"ext"`
	Res        string `json:"res"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Filesize   int64  `json:"filesize"`
	SizeStr    string `json:"size_str"`
	FormatNote string `json:"format_note"`
	HasVideo   bool   `json:"has_video"`
	HasAudio   bool   `json:"has_audio"`
}

// ClassifiedFormats holds the four disjoint variant buckets
type ClassifiedFormats struct {
	VideoAudio        []StreamVariant `json:"video_audio"`
	VideoAudioBlocked []StreamVariant `json:"video_audio_blocked"`
	VideoOnly         []StreamVariant `json:"video_only"`
	AudioOnly         []StreamVariant `json:"audio_only"`
}

// SizeLimit caps the file size acceptable up to a given height
type SizeLimit struct {
	MaxHeight int   `mapstructure:"max_height" yaml:"max_height" json:"max_height"`
	MaxBytes  int64 `mapstructure:"max_bytes" yaml:"max_bytes" json:"max_bytes"`
}

// SizePolicy is a height-banded size table, ordered by MaxHeight.
// The last band also covers every height above it.
type SizePolicy []SizeLimit

const (
	mb = int64(1024 * 1024)
	gb = 1024 * mb
)

// DefaultSizePolicy returns the default reasonableness table
func DefaultSizePolicy() SizePolicy {
	return SizePolicy{
		{MaxHeight: 240, MaxBytes: 100 * mb},
		{MaxHeight: 360, MaxBytes: 250 * mb},
		{MaxHeight: 480, MaxBytes: 500 * mb},
		{MaxHeight: 720, MaxBytes: 1 * gb},
		{MaxHeight: 1080, MaxBytes: 2 * gb},
		{MaxHeight: 1440, MaxBytes: 4 * gb},
		{MaxHeight: 2160, MaxBytes: 8 * gb},
	}
}

// Validate checks that heights and sizes are strictly increasing
func (p SizePolicy) Validate() error {
	if len(p) == 0 {
		return fmt.Errorf("size policy has no bands")
	}
	for i, band := range p {
		if band.MaxHeight <= 0 || band.MaxBytes <= 0 {
			return fmt.Errorf("size policy band %d must have positive height and size", i)
		}
		if i == 0 {
			continue
		}
		prev := p[i-1]
		if band.MaxHeight <= prev.MaxHeight || band.MaxBytes <= prev.MaxBytes {
			return fmt.Errorf("size policy band %d is not increasing", i)
		}
	}
	return nil
}

// IsReasonable reports whether a combined variant of the given size is an
// acceptable default at the given height
func (p SizePolicy) IsReasonable(sizeBytes int64, height int) bool {
	if len(p) == 0 {
		return true
	}
	limit := p[len(p)-1].MaxBytes
	for _, band := range p {
		if height <= band.MaxHeight {
			limit = band.MaxBytes
			break
		}
	}
	return sizeBytes <= limit
}

// Classify partitions raw engine formats into ranked buckets. Descriptors
// without an id or a size are skipped.
func Classify(raw []RawFormat, policy SizePolicy) ClassifiedFormats {
	result := ClassifiedFormats{
		VideoAudio:        []StreamVariant{},
		VideoAudioBlocked: []StreamVariant{},
		VideoOnly:         []StreamVariant{},
		AudioOnly:         []StreamVariant{},
	}

	videoOnly := make(map[string]StreamVariant)
	var videoOnlyKeys []string

	for _, f := range raw {
		variant, ok := newStreamVariant(f)
		if !ok {
			continue
		}

		switch {
		case variant.HasVideo && variant.HasAudio:
			if policy.IsReasonable(variant.Filesize, variant.Height) {
				result.VideoAudio = append(result.VideoAudio, variant)
			} else {
				result.VideoAudioBlocked = append(result.VideoAudioBlocked, variant)
			}
		case variant.HasVideo:
			key := fmt.Sprintf("%dx%d", variant.Width, variant.Height)
			prev, exists := videoOnly[key]
			if !exists {
				videoOnlyKeys = append(videoOnlyKeys, key)
			}
			if !exists || variant.Filesize > prev.Filesize {
				videoOnly[key] = variant
			}
		case variant.HasAudio:
			if strings.Contains(variant.FormatNote, "low") || strings.Contains(variant.FormatNote, "tiny") {
				continue
			}
			result.AudioOnly = append(result.AudioOnly, variant)
		}
	}

	for _, key := range videoOnlyKeys {
		result.VideoOnly = append(result.VideoOnly, videoOnly[key])
	}

	byHeight := func(v []StreamVariant) {
		sort.SliceStable(v, func(i, j int) bool { return v[i].Height > v[j].Height })
	}
	byHeight(result.VideoAudio)
	byHeight(result.VideoAudioBlocked)
	byHeight(result.VideoOnly)
	sort.SliceStable(result.AudioOnly, func(i, j int) bool {
		return result.AudioOnly[i].Filesize > result.AudioOnly[j].Filesize
	})

	return result
}

// newStreamVariant builds the display record for a raw descriptor
func newStreamVariant(f RawFormat) (StreamVariant, bool) {
	size := int64(f.Filesize)
	if size <= 0 {
		size = int64(f.FilesizeApprox)
	}
	if f.FormatID == "" || size <= 0 {
		return StreamVariant{}, false
	}

	width, height := f.Width, f.Height
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}

	ext := f.Ext
	if ext == "" {
		ext = "unknown"
	}

	note := strings.ToLower(f.FormatNote)
	res := note
	if width > 0 && height > 0 {
		res = fmt.Sprintf("%dx%d", width, height)
	}

	return StreamVariant{
		ID:         f.FormatID,
		Ext:        ext,
		Res:        res,
		Width:      width,
		Height:     height,
		Filesize:   size,
		SizeStr:    SizeLabel(size),
		FormatNote: note,
		HasVideo:   codecPresent(f.VCodec),
		HasAudio:   codecPresent(f.ACodec),
	}, true
}

// codecPresent follows the engine convention: only "none" marks a missing stream
func codecPresent(codec string) bool {
	return codec != "none"
}
