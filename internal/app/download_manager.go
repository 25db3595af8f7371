package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/mediagrab-go/internal/domain"
	"github.com/yourusername/mediagrab-go/internal/infrastructure"
	"github.com/yourusername/mediagrab-go/pkg/logger"
)

// DownloadManager runs fetches end to end and keeps the caller's history
type DownloadManager struct {
	extractor   domain.Extractor
	repo        domain.DownloadRepository
	outputDir   string
	extractCfg  domain.ExtractorConfig
	listLimit   int
	logger      *zap.Logger
	multiLogger *logger.MultiLogger
	now         func() time.Time
}

// NewDownloadManager creates a new download manager
func NewDownloadManager(
	extractor domain.Extractor,
	repo domain.DownloadRepository,
	config *domain.Config,
	zapLogger *zap.Logger,
	multiLogger *logger.MultiLogger,
) *DownloadManager {
	if zapLogger == nil {
		zapLogger = zap.NewNop()
	}
	return &DownloadManager{
		extractor:   extractor,
		repo:        repo,
		outputDir:   config.Download.OutputDir,
		extractCfg:  config.Extractor,
		listLimit:   config.History.ListLimit,
		logger:      zapLogger,
		multiLogger: multiLogger,
		now:         time.Now,
	}
}

// OutputDir returns the directory fetched files are written to
func (dm *DownloadManager) OutputDir() string {
	return dm.outputDir
}

// Fetch downloads req.URL with the options of req.Kind and returns the files
// the engine produced. Request validation happens before the engine or the
// history store is touched.
func (dm *DownloadManager) Fetch(ctx context.Context, req domain.FetchRequest) (*domain.DownloadResult, error) {
	if err := domain.ValidateMediaURL(req.URL); err != nil {
		return nil, err
	}
	profile, err := domain.ProfileFor(req.Kind)
	if err != nil {
		return nil, err
	}
	format, err := profile.FormatSelector(req.FormatID)
	if err != nil {
		return nil, err
	}

	token := domain.NewOutputToken(dm.now())
	record := domain.NewDownloadRecord(req)
	dm.saveRecord(record, true)

	dm.multiLogger.LogFetchEvent("fetch_started",
		zap.String("id", record.ID),
		zap.String(logger.FieldUserID, req.UserID),
		zap.String("kind", string(req.Kind)),
		zap.String("url", req.URL),
		zap.String("format", format))
	dm.logger.Debug("Fetch started", zap.String("id", record.ID), zap.String("token", token.String()))

	result, err := dm.run(ctx, record, profile, format, token)
	if err != nil {
		record.MarkFailed(err)
		dm.saveRecord(record, false)
		dm.logger.Warn("Fetch failed",
			zap.String("id", record.ID),
			zap.String("url", req.URL),
			zap.String("kind", string(req.Kind)),
			zap.Error(err))
		dm.multiLogger.LogAppError("fetch_failed",
			zap.String("id", record.ID),
			zap.String(logger.FieldUserID, req.UserID),
			zap.String("kind", string(req.Kind)),
			zap.String("error_kind", string(domain.KindOf(err))),
			zap.Error(err))
		return nil, err
	}

	record.MarkCompleted(result.Files)
	dm.saveRecord(record, false)

	dm.logger.Info("Fetch completed",
		zap.String("id", record.ID),
		zap.String("url", req.URL),
		zap.String("kind", string(req.Kind)),
		zap.Int("files", len(result.Files)))
	dm.multiLogger.LogFetchEvent("fetch_completed",
		zap.String("id", record.ID),
		zap.String(logger.FieldUserID, req.UserID),
		zap.String("kind", string(req.Kind)),
		zap.String("title", result.Title),
		zap.Int("files", len(result.Files)))

	return result, nil
}

func (dm *DownloadManager) run(
	ctx context.Context,
	record *domain.DownloadRecord,
	profile domain.KindProfile,
	format string,
	token domain.OutputToken,
) (*domain.DownloadResult, error) {
	cookieFile := cookieFileFor(dm.extractCfg.CookieFiles, record.URL)

	info, err := dm.extractor.Probe(ctx, record.URL, domain.ProbeOptions{CookieFile: cookieFile})
	if err != nil {
		return nil, asKind(err, domain.ErrKindExtraction, "probe metadata")
	}
	record.SetMetadata(info.Title, info.Thumbnail)
	dm.saveRecord(record, false)

	opts := domain.FetchOptions{
		Format:         format,
		OutputDir:      dm.outputDir,
		OutputTemplate: token.Template(profile),
		MergeFormat:    profile.MergeFormat,
		ExtractAudio:   profile.ExtractAudio,
		NoPlaylist:     profile.NoPlaylist,
		CookieFile:     cookieFile,
		Label:          fmt.Sprintf("%s %s", profile.Kind, record.ID),
	}
	if profile.ExtractAudio {
		opts.AudioFormat = profile.Container
		opts.AudioQuality = dm.extractCfg.AudioQuality
	}

	if err := dm.extractor.Fetch(ctx, record.URL, opts); err != nil {
		return nil, asKind(err, domain.ErrKindExtraction, "fetch")
	}

	files, err := infrastructure.ScanOutputs(dm.outputDir, token, profile.Container)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, domain.NewError(domain.ErrKindNoOutput, "match output",
			fmt.Errorf("%w (token %s, extension .%s)", domain.ErrNoOutputFiles, token, profile.Container))
	}

	return &domain.DownloadResult{
		ID:        record.ID,
		Title:     info.Title,
		Thumbnail: info.Thumbnail,
		Files:     files,
	}, nil
}

// saveRecord writes history without failing the fetch
func (dm *DownloadManager) saveRecord(record *domain.DownloadRecord, create bool) {
	var err error
	if create {
		err = dm.repo.Create(record)
	} else {
		err = dm.repo.Update(record)
	}
	if err != nil {
		dm.logger.Error("Failed to save download history",
			zap.String("id", record.ID),
			zap.String("status", string(record.Status)),
			zap.Error(err))
		dm.multiLogger.LogAppError("history_write_failed",
			zap.String("id", record.ID),
			zap.String(logger.FieldUserID, record.UserID),
			zap.Error(err))
	}
}

// FailInterrupted marks records a previous run left processing as failed
// and returns how many it changed. Call it before serving requests.
func (dm *DownloadManager) FailInterrupted() (int, error) {
	records, err := dm.repo.FindByStatus(domain.StatusProcessing)
	if err != nil {
		return 0, fmt.Errorf("failed to find interrupted downloads: %w", err)
	}
	for i, record := range records {
		record.MarkFailed(domain.NewError(domain.ErrKindInternal, "fetch", domain.ErrInterrupted))
		if err := dm.repo.Update(record); err != nil {
			return i, fmt.Errorf("failed to update download %s: %w", record.ID, err)
		}
	}
	return len(records), nil
}

// ListDownloads returns the user's most recent records
func (dm *DownloadManager) ListDownloads(userID string) ([]*domain.DownloadRecord, error) {
	records, err := dm.repo.FindByUser(userID, dm.listLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list downloads: %w", err)
	}
	return records, nil
}

// GetDownload returns one of the user's records
func (dm *DownloadManager) GetDownload(userID, id string) (*domain.DownloadRecord, error) {
	record, err := dm.repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	// other users' records are reported as absent
	if record.UserID != userID {
		return nil, domain.NewError(domain.ErrKindNotFound, "find download "+id, domain.ErrRecordNotFound)
	}
	return record, nil
}

// DeleteDownload removes one of the user's records and every file it produced
func (dm *DownloadManager) DeleteDownload(userID, id string) error {
	record, err := dm.GetDownload(userID, id)
	if err != nil {
		return err
	}

	paths := record.FilePaths()
	for _, path := range paths {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return domain.NewError(domain.ErrKindFilesystem, "delete file", err)
		}
	}

	if err := dm.repo.Delete(id); err != nil {
		return err
	}

	dm.logger.Info("Download deleted", zap.String("id", id), zap.Strings("files", paths))
	dm.multiLogger.LogFetchEvent("download_deleted", zap.String("id", id), zap.String(logger.FieldUserID, userID))
	return nil
}

// GetStats returns the user's download statistics
func (dm *DownloadManager) GetStats(userID string) (*domain.DownloadStats, error) {
	stats, err := dm.repo.GetStats(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}
	return stats, nil
}
