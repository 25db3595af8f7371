package domain

// DownloadRepository defines the interface for download history persistence
type DownloadRepository interface {
	// Create creates a new record
	Create(record *DownloadRecord) error

	// Update updates an existing record
	Update(record *DownloadRecord) error

	// Delete deletes a record by ID
	Delete(id string) error

	// FindByID finds a record by ID, returning ErrRecordNotFound if absent
	FindByID(id string) (*DownloadRecord, error)

	// FindByStatus returns all records in a status, oldest first
	FindByStatus(status DownloadStatus) ([]*DownloadRecord, error)

	// FindByUser returns a user's records, newest first
	FindByUser(userID string, limit int) ([]*DownloadRecord, error)

	// GetStats returns a user's download statistics
	GetStats(userID string) (*DownloadStats, error)
}

// DownloadStats represents download statistics
type DownloadStats struct {
	Total      int64 `json:"total"`
	Processing int64 `json:"processing"`
	Completed  int64 `json:"completed"`
	Failed     int64 `json:"failed"`
}
