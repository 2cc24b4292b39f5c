package services

import (
	"context"
	"testing"
	"time"

	"github.com/olp/portal/internal/models"
	"github.com/olp/portal/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func sessionWithRole(role models.Role) *session.Session {
	sess := session.New(time.Hour)
	sess.AccessToken = "access"
	sess.RefreshToken = "refresh"
	sess.Username = "ann"
	sess.Role = role
	return sess
}

func catalogPlatform() *mockPlatform {
	platform := newMockPlatform()
	platform.courses = &models.Page[models.Course]{
		Content: []models.Course{
			{ID: "c1", Title: "Go", IsPublished: true},
			{ID: "c2", Title: "Rust", IsPublished: true},
			{ID: "c3", Title: "Draft", IsPublished: false},
		},
		TotalElements: 3,
		TotalPages:    1,
	}
	platform.enrolled = &models.Page[models.Course]{
		Content: []models.Course{{ID: "c2"}},
	}
	return platform
}

func TestCatalogService_Catalog(t *testing.T) {
	tests := []struct {
		name          string
		role          models.Role
		expectedCalls []string
		canEnroll     map[string]bool
	}{
		{
			name:          "student sees enroll only for published courses not enrolled yet",
			role:          models.RoleStudent,
			expectedCalls: []string{"list_courses go", "enrolled_courses"},
			canEnroll:     map[string]bool{"c1": true, "c2": false, "c3": false},
		},
		{
			name:          "instructor never sees enroll",
			role:          models.RoleInstructor,
			expectedCalls: []string{"list_courses go"},
			canEnroll:     map[string]bool{"c1": false, "c2": false, "c3": false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			platform := catalogPlatform()
			svc := NewCatalogService(platform.connector(nil), zap.NewNop())

			view, err := svc.Catalog(context.Background(), sessionWithRole(tt.role), "go", models.PageRequest{})

			require.NoError(t, err)
			assert.Equal(t, tt.expectedCalls, platform.calls)
			require.Len(t, view.Courses, 3)
			for _, entry := range view.Courses {
				assert.Equal(t, tt.canEnroll[entry.ID], entry.CanEnroll, entry.ID)
			}
			assert.Equal(t, 3, view.TotalElements)
		})
	}
}

func TestCatalogService_CatalogReadsEveryEnrollmentPage(t *testing.T) {
	platform := catalogPlatform()
	platform.enrolledPages = []*models.Page[models.Course]{
		{Content: []models.Course{{ID: "c9"}}, TotalPages: 2, Number: 0},
		{Content: []models.Course{{ID: "c1"}}, TotalPages: 2, Number: 1},
	}
	svc := NewCatalogService(platform.connector(nil), zap.NewNop())

	view, err := svc.Catalog(context.Background(), sessionWithRole(models.RoleStudent), "go", models.PageRequest{})

	require.NoError(t, err)
	assert.Equal(t, []string{"list_courses go", "enrolled_courses 0", "enrolled_courses 1"}, platform.calls)
	require.Len(t, view.Courses, 3)
	// c1 sits on the second page of enrollments
	assert.True(t, view.Courses[0].Enrolled)
	assert.False(t, view.Courses[0].CanEnroll)
	assert.True(t, view.Courses[1].CanEnroll)
}

func TestCatalogService_CourseDetail(t *testing.T) {
	platform := catalogPlatform()
	platform.course = &models.Course{
		ID:          "c3",
		IsPublished: false,
		Sections:    []models.Section{{ID: "S1", Lessons: []models.Lesson{{ID: "L1"}, {ID: "L2"}}}},
	}
	svc := NewCatalogService(platform.connector(nil), zap.NewNop())

	view, err := svc.CourseDetail(context.Background(), sessionWithRole(models.RoleStudent), "c3")

	require.NoError(t, err)
	assert.False(t, view.CanEnroll)
	assert.False(t, view.Enrolled)
	assert.Equal(t, 2, view.LessonCount)
	assert.NotEmpty(t, view.Notice)
}

func TestCatalogService_Enroll(t *testing.T) {
	tests := []struct {
		name          string
		course        *models.Course
		expectedError error
		expectedCalls []string
	}{
		{
			name:          "published course",
			course:        &models.Course{ID: "c1", IsPublished: true},
			expectedCalls: []string{"get_course c1", "enroll c1"},
		},
		{
			name:          "unpublished course is rejected without enroll call",
			course:        &models.Course{ID: "c1", IsPublished: false},
			expectedError: ErrNotEnrollable,
			expectedCalls: []string{"get_course c1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			platform := newMockPlatform()
			platform.course = tt.course
			svc := NewCatalogService(platform.connector(nil), zap.NewNop())

			err := svc.Enroll(context.Background(), sessionWithRole(models.RoleStudent), "c1")

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expectedCalls, platform.calls)
		})
	}
}
