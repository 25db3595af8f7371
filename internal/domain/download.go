package domain

import (
	"time"

	"github.com/google/uuid"
)

// DownloadStatus represents the current status of a download
type DownloadStatus string

const (
	StatusProcessing DownloadStatus = "processing"
	StatusCompleted  DownloadStatus = "completed"
	StatusFailed     DownloadStatus = "failed"
)

// FetchRequest is a request to fetch one URL
type FetchRequest struct {
	URL      string
	FormatID string
	Kind     DownloadKind
	UserID   string
}

// FileInfo describes one output file found after a fetch
type FileInfo struct {
	Filename string `json:"filename"`
	Filepath string `json:"filepath"`
	Filesize int64  `json:"filesize"`
	SizeStr  string `json:"size_str"`
}

// DownloadResult is the outcome of a successful fetch
type DownloadResult struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Thumbnail string     `json:"thumbnail"`
	Files     []FileInfo `json:"files"`
}

// DownloadRecord is one entry of a user's download history
type DownloadRecord struct {
	ID           string         `json:"id" gorm:"primaryKey"`
	UserID       string         `json:"user_id" gorm:"not null;index"`
	URL          string         `json:"url" gorm:"not null"`
	Kind         DownloadKind   `json:"kind" gorm:"not null"`
	FormatID     string         `json:"format_id,omitempty"`
	Platform     Platform       `json:"platform"`
	Status       DownloadStatus `json:"status" gorm:"not null;index"`
	Title        string         `json:"title,omitempty"`
	Thumbnail    string         `json:"thumbnail,omitempty"`
	FileName     string         `json:"file_name,omitempty"`
	FilePath     string         `json:"file_path,omitempty"`
	FileSize     int64          `json:"file_size,omitempty"`
	FileCount    int            `json:"file_count"`
	Files        []FileInfo     `json:"files,omitempty" gorm:"serializer:json"`
	ErrorMessage string         `json:"error_message,omitempty"`
	ErrorKind    ErrorKind      `json:"error_kind,omitempty"`
	CreatedAt    time.Time      `json:"created_at" gorm:"autoCreateTime;index"`
	UpdatedAt    time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
}

// NewDownloadRecord creates a history record for a fetch that is starting
func NewDownloadRecord(req FetchRequest) *DownloadRecord {
	now := time.Now()
	return &DownloadRecord{
		ID:        uuid.New().String(),
		UserID:    req.UserID,
		URL:       req.URL,
		Kind:      req.Kind,
		FormatID:  req.FormatID,
		Platform:  DetectPlatform(req.URL),
		Status:    StatusProcessing,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SetMetadata records probe metadata
func (r *DownloadRecord) SetMetadata(title, thumbnail string) {
	r.Title = title
	r.Thumbnail = thumbnail
	r.UpdatedAt = time.Now()
}

// MarkCompleted marks the record as completed. The File* fields describe
// the first output file; Files keeps all of them.
func (r *DownloadRecord) MarkCompleted(files []FileInfo) {
	r.Status = StatusCompleted
	r.FileCount = len(files)
	r.Files = append([]FileInfo(nil), files...)
	if len(files) > 0 {
		r.FileName = files[0].Filename
		r.FilePath = files[0].Filepath
		r.FileSize = files[0].Filesize
	}
	now := time.Now()
	r.CompletedAt = &now
	r.UpdatedAt = now
}

// MarkFailed marks the record as failed
func (r *DownloadRecord) MarkFailed(err error) {
	r.Status = StatusFailed
	r.ErrorMessage = MessageOf(err)
	r.ErrorKind = KindOf(err)
	r.UpdatedAt = time.Now()
}

// FilePaths returns the paths of every file the download produced
func (r *DownloadRecord) FilePaths() []string {
	paths := make([]string, 0, len(r.Files))
	for _, f := range r.Files {
		if f.Filepath != "" {
			paths = append(paths, f.Filepath)
		}
	}
	if len(paths) == 0 && r.FilePath != "" {
		paths = append(paths, r.FilePath)
	}
	return paths
}

// IsTerminal checks if the record is in a terminal state
func (r *DownloadRecord) IsTerminal() bool {
	return r.Status == StatusCompleted || r.Status == StatusFailed
}

// SizeStr returns the readable size of the recorded file
func (r *DownloadRecord) SizeStr() string {
	if r.FileSize <= 0 {
		return "Unknown"
	}
	return SizeLabel(r.FileSize)
}
