package models

import "time"

// SyncStatus is the outcome of one editor save step
type SyncStatus string

const (
	SyncStatusApplied SyncStatus = "applied"
	SyncStatusFailed  SyncStatus = "failed"
)

// SyncEntry is a journal row describing one remote call of an editor save
// Saves are not atomic, the journal tells which steps of a run reached the platform
type SyncEntry struct {
	ID         int64      `json:"id"`
	RunID      string     `json:"runId"`
	CourseID   string     `json:"courseId"`
	Seq        int        `json:"seq"`
	Action     string     `json:"action"`
	EntityID   string     `json:"entityId"`
	ResolvedID string     `json:"resolvedId,omitempty"`
	Status     SyncStatus `json:"status"`
	Message    string     `json:"message,omitempty"`
	Username   string     `json:"username,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}
