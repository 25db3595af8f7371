package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogCategory represents different log categories
type LogCategory string

const (
	CategoryFetch LogCategory = "fetch" // fetch lifecycle events (JSON)
	CategoryError LogCategory = "error" // application errors (JSON)
)

const dateLayout = "20060102"

// MultiLogger writes categorised JSON event logs to daily files under a
// logs directory. Raw engine output goes to engine-YYYYMMDD.log and is
// written by the extractor, not through this logger.
//
// A nil *MultiLogger is valid and discards everything.
type MultiLogger struct {
	config MultiLoggerConfig

	mu          sync.Mutex
	currentDate string
	loggers     map[LogCategory]*zap.Logger
	files       []*os.File
	now         func() time.Time
}

// MultiLoggerConfig contains configuration for multi-output logging
type MultiLoggerConfig struct {
	Level   string // debug, info, warn, error
	LogsDir string
}

// NewMultiLogger creates a new multi-output logger
func NewMultiLogger(config MultiLoggerConfig) (*MultiLogger, error) {
	if config.LogsDir == "" {
		return nil, fmt.Errorf("logs_dir must be specified")
	}
	if err := os.MkdirAll(config.LogsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	ml := &MultiLogger{config: config, now: time.Now}
	if err := ml.rotate(ml.now().Format(dateLayout)); err != nil {
		return nil, err
	}
	return ml, nil
}

// rotate reopens every category file for date. Caller holds mu or owns ml.
func (ml *MultiLogger) rotate(date string) error {
	level, err := zapcore.ParseLevel(ml.config.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	loggers := make(map[LogCategory]*zap.Logger, 2)
	var files []*os.File
	for category, lvl := range map[LogCategory]zapcore.Level{
		CategoryFetch: level,
		CategoryError: zapcore.ErrorLevel,
	} {
		file, err := os.OpenFile(CategoryLogPath(ml.config.LogsDir, category, date), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			for _, f := range files {
				f.Close()
			}
			return fmt.Errorf("failed to open %s log: %w", category, err)
		}
		files = append(files, file)
		loggers[category] = zap.New(zapcore.NewCore(jsonEncoder(), zapcore.AddSync(file), lvl))
	}

	for _, f := range ml.files {
		f.Close()
	}
	ml.loggers = loggers
	ml.files = files
	ml.currentDate = date
	return nil
}

func jsonEncoder() zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.CallerKey = ""
	return zapcore.NewJSONEncoder(cfg)
}

// CategoryLogPath returns the file holding a category's events for a date
func CategoryLogPath(logsDir string, category LogCategory, date string) string {
	return filepath.Join(logsDir, fmt.Sprintf("%s-%s.log", category, date))
}

// LogsDir returns the logs directory path
func (ml *MultiLogger) LogsDir() string {
	if ml == nil {
		return ""
	}
	return ml.config.LogsDir
}

// GetLogger returns the logger for a category, rotating files at midnight
func (ml *MultiLogger) GetLogger(category LogCategory) *zap.Logger {
	if ml == nil {
		return zap.NewNop()
	}

	ml.mu.Lock()
	defer ml.mu.Unlock()

	if date := ml.now().Format(dateLayout); date != ml.currentDate {
		// keep yesterday's files on failure rather than dropping events
		_ = ml.rotate(date)
	}
	if logger, ok := ml.loggers[category]; ok {
		return logger
	}
	return ml.loggers[CategoryError]
}

// FieldUserID is the event field naming the user an event belongs to
const FieldUserID = "user_id"

// LogFetchEvent logs a fetch lifecycle event
func (ml *MultiLogger) LogFetchEvent(event string, fields ...zap.Field) {
	ml.GetLogger(CategoryFetch).Info(event, fields...)
}

// LogAppError logs an application-level error
func (ml *MultiLogger) LogAppError(msg string, fields ...zap.Field) {
	ml.GetLogger(CategoryError).Error(msg, fields...)
}

// Sync flushes all loggers
func (ml *MultiLogger) Sync() error {
	if ml == nil {
		return nil
	}
	ml.mu.Lock()
	defer ml.mu.Unlock()

	var lastErr error
	for _, logger := range ml.loggers {
		if err := logger.Sync(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// Close flushes and closes all category files
func (ml *MultiLogger) Close() error {
	if ml == nil {
		return nil
	}
	ml.mu.Lock()
	defer ml.mu.Unlock()

	var lastErr error
	for _, logger := range ml.loggers {
		_ = logger.Sync()
	}
	for _, f := range ml.files {
		if err := f.Close(); err != nil {
			lastErr = err
		}
	}
	ml.files = nil
	return lastErr
}
