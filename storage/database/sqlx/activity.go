package sqlxrepos

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/sanaa/core/activity"
)

type activityRow struct {
	ID          string    `db:"id"`
	Action      string    `db:"action"`
	EntityType  string    `db:"entity_type"`
	EntityID    string    `db:"entity_id"`
	PerformedBy string    `db:"performed_by"`
	Details     []byte    `db:"details"`
	Timestamp   time.Time `db:"ts"`
}

func (row activityRow) toEntry() (activity.Entry, error) {
	entry := activity.Entry{
		ID:          row.ID,
		Action:      row.Action,
		EntityType:  row.EntityType,
		EntityID:    row.EntityID,
		PerformedBy: row.PerformedBy,
		Timestamp:   row.Timestamp,
	}
	if len(row.Details) > 0 {
		if err := json.Unmarshal(row.Details, &entry.Details); err != nil {
			return activity.Entry{}, errors.Wrap(err, "decoding entry details")
		}
	}
	return entry, nil
}

type activityRepository struct {
	db *sqlx.DB
}

var _ activity.Repository = (*activityRepository)(nil)

func NewActivityRepository(db *sqlx.DB) activity.Repository {
	return &activityRepository{db: db}
}

func (repo *activityRepository) CreateEntry(ctx context.Context, entry activity.Entry) (activity.Entry, error) {
	entry.ID = uuid.New().String()

	var details []byte
	if entry.Details != nil {
		var err error
		if details, err = json.Marshal(entry.Details); err != nil {
			return activity.Entry{}, errors.Wrap(err, "encoding entry details")
		}
	}
	row := activityRow{
		ID:          entry.ID,
		Action:      entry.Action,
		EntityType:  entry.EntityType,
		EntityID:    entry.EntityID,
		PerformedBy: entry.PerformedBy,
		Details:     details,
		Timestamp:   entry.Timestamp,
	}

	const q = `
		INSERT INTO activity_log (id, action, entity_type, entity_id, performed_by, details, ts)
		VALUES (:id, :action, :entity_type, :entity_id, :performed_by, :details, :ts)`
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		return activity.Entry{}, errors.Wrap(err, "inserting entry")
	}
	return entry, nil
}

func (repo *activityRepository) QueryRecentEntries(ctx context.Context, limit int) ([]activity.Entry, error) {
	var rows []activityRow
	const q = `SELECT * FROM activity_log ORDER BY ts DESC LIMIT $1`
	if err := repo.db.SelectContext(ctx, &rows, q, limit); err != nil {
		return nil, errors.Wrap(err, "selecting entries")
	}

	entries := make([]activity.Entry, len(rows))
	for i, row := range rows {
		entry, err := row.toEntry()
		if err != nil {
			return nil, err
		}
		entries[i] = entry
	}
	return entries, nil
}
