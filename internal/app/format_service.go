package app

import (
	"context"

	"github.com/yourusername/mediagrab-go/internal/domain"
	"go.uber.org/zap"
)

// VideoInfo is the descriptive part of a format listing
type VideoInfo struct {
	Title     string  `json:"title"`
	Thumbnail string  `json:"thumbnail"`
	Duration  float64 `json:"duration"`
	Uploader  string  `json:"uploader"`
}

// FormatListing is the result of a formats lookup
type FormatListing struct {
	VideoInfo VideoInfo                `json:"video_info"`
	Formats   domain.ClassifiedFormats `json:"formats"`
}

// FormatService lists and classifies the variants offered by a URL
type FormatService struct {
	extractor   domain.Extractor
	policy      domain.SizePolicy
	cookieFiles map[string]string
	logger      *zap.Logger
}

// NewFormatService creates a new format service
func NewFormatService(extractor domain.Extractor, config *domain.Config, logger *zap.Logger) *FormatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FormatService{
		extractor:   extractor,
		policy:      domain.SizePolicy(config.Formats.SizeLimits),
		cookieFiles: config.Extractor.CookieFiles,
		logger:      logger,
	}
}

// ListFormats probes url and classifies its variants. Nothing is downloaded.
func (s *FormatService) ListFormats(ctx context.Context, url string) (*FormatListing, error) {
	if err := domain.ValidateMediaURL(url); err != nil {
		return nil, err
	}

	info, err := s.extractor.Probe(ctx, url, domain.ProbeOptions{
		CookieFile: cookieFileFor(s.cookieFiles, url),
	})
	if err != nil {
		s.logger.Warn("Format probe failed", zap.String("url", url), zap.Error(err))
		return nil, asKind(err, domain.ErrKindExtraction, "list formats")
	}

	formats := domain.Classify(info.Formats, s.policy)
	s.logger.Debug("Formats classified",
		zap.String("url", url),
		zap.Int("raw", len(info.Formats)),
		zap.Int("video_audio", len(formats.VideoAudio)),
		zap.Int("video_audio_blocked", len(formats.VideoAudioBlocked)),
		zap.Int("video_only", len(formats.VideoOnly)),
		zap.Int("audio_only", len(formats.AudioOnly)))

	return &FormatListing{
		VideoInfo: VideoInfo{
			Title:     info.Title,
			Thumbnail: info.Thumbnail,
			Duration:  info.Duration,
			Uploader:  info.Uploader,
		},
		Formats: formats,
	}, nil
}

// cookieFileFor picks the session cookie file for the URL's platform
func cookieFileFor(files map[string]string, url string) string {
	return files[string(domain.DetectPlatform(url))]
}

// asKind tags err with kind unless it already carries one
func asKind(err error, kind domain.ErrorKind, op string) error {
	if domain.KindOf(err) != domain.ErrKindInternal {
		return err
	}
	return domain.NewError(kind, op, err)
}
