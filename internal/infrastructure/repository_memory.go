package infrastructure

import (
	"sort"
	"sync"

	"github.com/yourusername/mediagrab-go/internal/domain"
)

// MemoryDownloadRepository keeps download history in process memory.
// Records are copied in and out so callers never share state with the store.
// With maxPerUser > 0, each user keeps at most that many records; creating
// one more evicts the user's oldest finished records.
type MemoryDownloadRepository struct {
	mu         sync.RWMutex
	records    map[string]domain.DownloadRecord
	maxPerUser int
}

// NewMemoryDownloadRepository creates an empty in-memory repository.
// maxPerUser <= 0 keeps every record.
func NewMemoryDownloadRepository(maxPerUser int) *MemoryDownloadRepository {
	return &MemoryDownloadRepository{
		records:    make(map[string]domain.DownloadRecord),
		maxPerUser: maxPerUser,
	}
}

func (r *MemoryDownloadRepository) Create(record *domain.DownloadRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[record.ID] = cloneRecord(record)
	r.evictLocked(record.UserID)
	return nil
}

// evictLocked drops the user's oldest terminal records beyond the cap.
// Processing records are never evicted, so a user with that many running
// fetches can briefly exceed the cap.
func (r *MemoryDownloadRepository) evictLocked(userID string) {
	if r.maxPerUser <= 0 {
		return
	}
	var owned, finished []domain.DownloadRecord
	for _, rec := range r.records {
		if rec.UserID != userID {
			continue
		}
		owned = append(owned, rec)
		if rec.IsTerminal() {
			finished = append(finished, rec)
		}
	}
	excess := len(owned) - r.maxPerUser
	if excess <= 0 {
		return
	}
	sort.Slice(finished, func(i, j int) bool {
		return finished[i].CreatedAt.Before(finished[j].CreatedAt)
	})
	for i := 0; i < excess && i < len(finished); i++ {
		delete(r.records, finished[i].ID)
	}
}

func (r *MemoryDownloadRepository) Update(record *domain.DownloadRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[record.ID] = cloneRecord(record)
	return nil
}

func (r *MemoryDownloadRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[id]; !ok {
		return notFound(id)
	}
	delete(r.records, id)
	return nil
}

func (r *MemoryDownloadRepository) FindByID(id string) (*domain.DownloadRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, notFound(id)
	}
	out := cloneRecord(&rec)
	return &out, nil
}

func (r *MemoryDownloadRepository) FindByStatus(status domain.DownloadStatus) ([]*domain.DownloadRecord, error) {
	records := r.collect(func(rec *domain.DownloadRecord) bool { return rec.Status == status })
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
	return records, nil
}

func (r *MemoryDownloadRepository) FindByUser(userID string, limit int) ([]*domain.DownloadRecord, error) {
	records := r.collect(func(rec *domain.DownloadRecord) bool { return rec.UserID == userID })
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (r *MemoryDownloadRepository) collect(match func(*domain.DownloadRecord) bool) []*domain.DownloadRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	records := make([]*domain.DownloadRecord, 0)
	for _, rec := range r.records {
		if match(&rec) {
			out := cloneRecord(&rec)
			records = append(records, &out)
		}
	}
	return records
}

func (r *MemoryDownloadRepository) GetStats(userID string) (*domain.DownloadStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stats := &domain.DownloadStats{}
	for _, rec := range r.records {
		if rec.UserID != userID {
			continue
		}
		stats.Total++
		switch rec.Status {
		case domain.StatusProcessing:
			stats.Processing++
		case domain.StatusCompleted:
			stats.Completed++
		case domain.StatusFailed:
			stats.Failed++
		}
	}
	return stats, nil
}

func cloneRecord(record *domain.DownloadRecord) domain.DownloadRecord {
	out := *record
	if record.Files != nil {
		out.Files = append([]domain.FileInfo(nil), record.Files...)
	}
	if record.CompletedAt != nil {
		completed := *record.CompletedAt
		out.CompletedAt = &completed
	}
	return out
}
