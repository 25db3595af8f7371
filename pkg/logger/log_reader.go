package logger

import (
	"bufio"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"
)

// LogEntry is one decoded line of a category log
type LogEntry struct {
	Timestamp string                 `json:"ts"`
	Level     string                 `json:"level"`
	Message   string                 `json:"msg"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// LogReader reads category logs written by MultiLogger
type LogReader struct {
	logsDir string
}

// NewLogReader creates a new log reader
func NewLogReader(logsDir string) *LogReader {
	return &LogReader{logsDir: logsDir}
}

// ReadLogs returns the last limit entries of a category for a date whose
// message or fields contain query (case-insensitive). Empty query matches all.
func (lr *LogReader) ReadLogs(category LogCategory, date time.Time, query string, limit int) ([]LogEntry, error) {
	return lr.read(category, date, query, limit, nil)
}

// ReadUserLogs is ReadLogs restricted to entries whose user_id field is
// userID. Entries without a user_id are never returned.
func (lr *LogReader) ReadUserLogs(category LogCategory, date time.Time, query, userID string, limit int) ([]LogEntry, error) {
	return lr.read(category, date, query, limit, func(e LogEntry) bool {
		owner, _ := e.Fields[FieldUserID].(string)
		return userID != "" && owner == userID
	})
}

func (lr *LogReader) read(category LogCategory, date time.Time, query string, limit int, keep func(LogEntry) bool) ([]LogEntry, error) {
	if lr.logsDir == "" {
		return []LogEntry{}, nil
	}
	file, err := os.Open(CategoryLogPath(lr.logsDir, category, date.Format(dateLayout)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []LogEntry{}, nil
		}
		return nil, err
	}
	defer file.Close()

	query = strings.ToLower(query)
	entries := []LogEntry{}
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(line), query) {
			continue
		}
		entry := decodeEntry(line)
		if keep != nil && !keep(entry) {
			continue
		}
		entries = append(entries, entry)
		if limit > 0 && len(entries) > limit {
			entries = entries[1:]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// decodeEntry splits the fixed zap keys from event fields. Lines that are
// not JSON are returned as a bare message.
func decodeEntry(line string) LogEntry {
	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return LogEntry{Message: line}
	}

	entry := LogEntry{}
	entry.Timestamp, _ = raw["ts"].(string)
	entry.Level, _ = raw["level"].(string)
	entry.Message, _ = raw["msg"].(string)
	delete(raw, "ts")
	delete(raw, "level")
	delete(raw, "msg")
	if len(raw) > 0 {
		entry.Fields = raw
	}
	return entry
}
