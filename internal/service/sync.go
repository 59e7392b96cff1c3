package service

import (
	"context"
	"time"

	"github.com/dsavelev/kosyncd/internal/errs"
	"github.com/dsavelev/kosyncd/internal/model"
	"github.com/dsavelev/kosyncd/internal/repository"
)

// SyncService defines push/pull of reading progress.
type SyncService interface {
	// Push stamps the write time and stores the record, replacing any
	// previous one for the same document. Returns the stored record.
	Push(ctx context.Context, username string, upd model.ProgressUpdate) (*model.Progress, error)
	// Pull returns the last stored record for the document.
	Pull(ctx context.Context, username, document string) (*model.Progress, error)
}

type SyncServiceImpl struct {
	repo repository.ProgressRepository
	now  func() time.Time
}

// NewSyncService constructs SyncService.
func NewSyncService(repo repository.ProgressRepository) *SyncServiceImpl {
	return &SyncServiceImpl{repo: repo, now: time.Now}
}

// Push validates the document key, stamps the current unix time and writes
// the record. Last push wins: there is no merge or version check.
func (s *SyncServiceImpl) Push(ctx context.Context, username string, upd model.ProgressUpdate) (*model.Progress, error) {
	if !validDocumentID(upd.Document) {
		return nil, errs.ErrInvalidDocumentID
	}
	p := &model.Progress{
		Document:   upd.Document,
		Progress:   upd.Progress,
		Percentage: upd.Percentage,
		Device:     upd.Device,
		DeviceID:   upd.DeviceID,
		Timestamp:  s.now().Unix(),
	}
	if err := s.repo.Put(ctx, username, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Pull returns the stored record, or errs.ErrNotFound if the user never
// pushed progress for the document.
func (s *SyncServiceImpl) Pull(ctx context.Context, username, document string) (*model.Progress, error) {
	if !validDocumentID(document) {
		return nil, errs.ErrInvalidDocumentID
	}
	return s.repo.Get(ctx, username, document)
}
