package services

import (
	"context"
	"errors"
	"testing"

	"github.com/olp/portal/internal/models"
	"github.com/stretchr/testify/assert"
)

// mockSyncJournalRepository is a mock implementation of SyncJournalRepository
type mockSyncJournalRepository struct {
	entries   []models.SyncEntry
	err       error
	lastLimit int
}

func (m *mockSyncJournalRepository) GetByCourseID(ctx context.Context, courseID string, limit int) ([]models.SyncEntry, error) {
	m.lastLimit = limit
	if m.err != nil {
		return nil, m.err
	}
	return m.entries, nil
}

func (m *mockSyncJournalRepository) GetFailed(ctx context.Context, limit int) ([]models.SyncEntry, error) {
	m.lastLimit = limit
	if m.err != nil {
		return nil, m.err
	}
	return m.entries, nil
}

func TestNewJournalService(t *testing.T) {
	repo := &mockSyncJournalRepository{}

	svc := NewJournalService(repo)

	assert.NotNil(t, svc)
	assert.Equal(t, repo, svc.repo)
}

func TestJournalService_CourseJournal(t *testing.T) {
	tests := []struct {
		name          string
		courseID      string
		limit         int
		repo          *mockSyncJournalRepository
		expectedError bool
		expectedLimit int
	}{
		{
			name:          "default limit",
			courseID:      "c1",
			limit:         0,
			repo:          &mockSyncJournalRepository{entries: []models.SyncEntry{{RunID: "r1"}}},
			expectedLimit: defaultJournalLimit,
		},
		{
			name:          "limit capped",
			courseID:      "c1",
			limit:         10000,
			repo:          &mockSyncJournalRepository{},
			expectedLimit: maxJournalLimit,
		},
		{
			name:          "missing course id",
			courseID:      "",
			repo:          &mockSyncJournalRepository{},
			expectedError: true,
		},
		{
			name:          "repository error",
			courseID:      "c1",
			limit:         5,
			repo:          &mockSyncJournalRepository{err: errors.New("database error")},
			expectedError: true,
			expectedLimit: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewJournalService(tt.repo)

			entries, err := svc.CourseJournal(context.Background(), tt.courseID, tt.limit)

			if tt.expectedError {
				assert.Error(t, err)
				assert.Nil(t, entries)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expectedLimit, tt.repo.lastLimit)
		})
	}
}

func TestJournalService_FailedRuns(t *testing.T) {
	repo := &mockSyncJournalRepository{entries: []models.SyncEntry{{RunID: "r1", Status: models.SyncStatusFailed}}}
	svc := NewJournalService(repo)

	entries, err := svc.FailedRuns(context.Background(), 20)

	assert.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, 20, repo.lastLimit)
}
