package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/olp/portal/internal/models"
)

// syncJournalRepository implements the editor journal on MySQL
type syncJournalRepository struct {
	db *sql.DB
}

// NewSyncJournalRepository creates a new sync journal repository
func NewSyncJournalRepository(db *sql.DB) *syncJournalRepository {
	return &syncJournalRepository{
		db: db,
	}
}

// Record inserts one journal entry
func (r *syncJournalRepository) Record(ctx context.Context, entry *models.SyncEntry) error {
	query := `
		INSERT INTO sync_journal (run_id, course_id, seq, action, entity_id, resolved_id, status, message, username, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		entry.RunID,
		entry.CourseID,
		entry.Seq,
		entry.Action,
		entry.EntityID,
		nullString(entry.ResolvedID),
		entry.Status,
		nullString(entry.Message),
		nullString(entry.Username),
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert sync journal entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get inserted id: %w", err)
	}
	entry.ID = id

	return nil
}

// GetByCourseID retrieves the latest journal entries of a course, newest first
func (r *syncJournalRepository) GetByCourseID(ctx context.Context, courseID string, limit int) ([]models.SyncEntry, error) {
	query := `
		SELECT ` + journalColumns + `
		FROM sync_journal
		WHERE course_id = ?
		ORDER BY created_at DESC, seq DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, courseID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync journal: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// GetFailed retrieves the latest failed steps over all courses
// A failed step ends its run, so every row stands for one partially applied save
func (r *syncJournalRepository) GetFailed(ctx context.Context, limit int) ([]models.SyncEntry, error) {
	query := `
		SELECT ` + journalColumns + `
		FROM sync_journal
		WHERE status = ?
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, models.SyncStatusFailed, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query failed sync runs: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

const journalColumns = "id, run_id, course_id, seq, action, entity_id, resolved_id, status, message, username, created_at"

func scanEntries(rows *sql.Rows) ([]models.SyncEntry, error) {
	entries := []models.SyncEntry{}
	for rows.Next() {
		var (
			entry                       models.SyncEntry
			resolvedID, message, author sql.NullString
		)
		err := rows.Scan(
			&entry.ID,
			&entry.RunID,
			&entry.CourseID,
			&entry.Seq,
			&entry.Action,
			&entry.EntityID,
			&resolvedID,
			&entry.Status,
			&message,
			&author,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sync journal entry: %w", err)
		}
		entry.ResolvedID = resolvedID.String
		entry.Message = message.String
		entry.Username = author.String
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return entries, nil
}

func nullString(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}
