package activity

import (
	"context"
	"time"
)

const defaultQueryLimit = 50

type (
	Repository interface {
		CreateEntry(ctx context.Context, entry Entry) (Entry, error)
		// QueryRecentEntries returns up to limit entries, newest first.
		QueryRecentEntries(ctx context.Context, limit int) ([]Entry, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Log appends an audit trail entry. Entries are never updated or deleted.
func (svc *Service) Log(ctx context.Context, action, entityType, entityID, performedBy string, details map[string]interface{}) (Entry, error) {
	entry := Entry{
		Action:      action,
		EntityType:  entityType,
		EntityID:    entityID,
		PerformedBy: performedBy,
		Details:     details,
		Timestamp:   time.Now().UTC(),
	}
	return svc.repo.CreateEntry(ctx, entry)
}

func (svc *Service) QueryRecent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	return svc.repo.QueryRecentEntries(ctx, limit)
}
