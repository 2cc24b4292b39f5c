package services

import (
	"context"
	"fmt"

	"github.com/olp/portal/internal/models"
)

const (
	defaultJournalLimit = 50
	maxJournalLimit     = 500
)

// SyncJournalRepository is the interface that wraps the sync journal queries
type SyncJournalRepository interface {
	// GetByCourseID retrieves the latest journal entries of a course, newest first
	//
	// "ctx" is the context for the request.
	// "courseID" is the ID of the course.
	// "limit" is the maximum number of entries.
	//
	// Returns the entries and an error if any.
	GetByCourseID(ctx context.Context, courseID string, limit int) ([]models.SyncEntry, error)
	// GetFailed retrieves the latest failed steps over all courses
	//
	// "ctx" is the context for the request.
	// "limit" is the maximum number of entries.
	//
	// Returns the entries and an error if any.
	GetFailed(ctx context.Context, limit int) ([]models.SyncEntry, error)
}

// JournalService exposes the sync journal to operators
type JournalService struct {
	repo SyncJournalRepository
}

// NewJournalService creates a new journal service
func NewJournalService(repo SyncJournalRepository) *JournalService {
	return &JournalService{
		repo: repo,
	}
}

// CourseJournal retrieves the recorded save steps of a course
func (s *JournalService) CourseJournal(ctx context.Context, courseID string, limit int) ([]models.SyncEntry, error) {
	if courseID == "" {
		return nil, fmt.Errorf("course ID is required")
	}

	entries, err := s.repo.GetByCourseID(ctx, courseID, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to get sync journal: %w", err)
	}
	return entries, nil
}

// FailedRuns retrieves the steps that ended a save early, one per partially applied save
func (s *JournalService) FailedRuns(ctx context.Context, limit int) ([]models.SyncEntry, error) {
	entries, err := s.repo.GetFailed(ctx, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to get failed runs: %w", err)
	}
	return entries, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultJournalLimit
	}
	if limit > maxJournalLimit {
		return maxJournalLimit
	}
	return limit
}
