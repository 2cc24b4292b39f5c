package services

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/olp/portal/internal/apiclient"
	"github.com/olp/portal/internal/certimage"
	"github.com/olp/portal/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func certificatePlatform() *mockPlatform {
	platform := newMockPlatform()
	platform.enrolled = &models.Page[models.Course]{
		Content: []models.Course{{ID: "c1"}, {ID: "c2"}, {ID: "c3"}},
	}
	platform.certificates["c2"] = &models.Certificate{
		Eligible:          true,
		CertificateNumber: "CERT-1",
		StudentName:       "Ann Lee",
		CourseName:        "Rust",
	}
	return platform
}

func TestCertificateService_MyCourses(t *testing.T) {
	t.Run("checks every course and attaches eligible results only", func(t *testing.T) {
		platform := certificatePlatform()
		svc := NewCertificateService(platform.connector(nil), zap.NewNop())

		view, err := svc.MyCourses(context.Background(), sessionWithRole(models.RoleStudent))

		require.NoError(t, err)
		assert.Equal(t, []string{
			"enrolled_courses",
			"check_certificate c1",
			"check_certificate c2",
			"check_certificate c3",
		}, platform.calls)
		require.Len(t, view.Courses, 3)
		assert.Nil(t, view.Courses[0].Certificate)
		assert.Equal(t, "CERT-1", view.Courses[1].Certificate.CertificateNumber)
		require.Len(t, view.Completed, 1)
		assert.Equal(t, "c2", view.Completed[0].ID)
	})

	t.Run("a failed check leaves the course without certificate", func(t *testing.T) {
		platform := certificatePlatform()
		platform.errs["check_certificate"] = errors.New("boom")
		svc := NewCertificateService(platform.connector(nil), zap.NewNop())

		view, err := svc.MyCourses(context.Background(), sessionWithRole(models.RoleStudent))

		require.NoError(t, err)
		assert.Len(t, view.Courses, 3)
		assert.Empty(t, view.Completed)
	})

	t.Run("every enrollment page is listed", func(t *testing.T) {
		platform := certificatePlatform()
		platform.enrolledPages = []*models.Page[models.Course]{
			{Content: []models.Course{{ID: "c1"}}, TotalPages: 2},
			{Content: []models.Course{{ID: "c2"}}, TotalPages: 2, Number: 1},
		}
		svc := NewCertificateService(platform.connector(nil), zap.NewNop())

		view, err := svc.MyCourses(context.Background(), sessionWithRole(models.RoleStudent))

		require.NoError(t, err)
		assert.Equal(t, []string{
			"enrolled_courses 0",
			"enrolled_courses 1",
			"check_certificate c1",
			"check_certificate c2",
		}, platform.calls)
		assert.Len(t, view.Courses, 2)
		require.Len(t, view.Completed, 1)
	})

	t.Run("expired session stops the checks", func(t *testing.T) {
		platform := certificatePlatform()
		platform.errs["check_certificate"] = apiclient.ErrSessionExpired
		svc := NewCertificateService(platform.connector(nil), zap.NewNop())

		_, err := svc.MyCourses(context.Background(), sessionWithRole(models.RoleStudent))

		assert.ErrorIs(t, err, apiclient.ErrSessionExpired)
		assert.Equal(t, []string{"enrolled_courses", "check_certificate c1"}, platform.calls)
	})
}

func TestCertificateService_Certificate(t *testing.T) {
	tests := []struct {
		name             string
		courseID         string
		expectedEligible bool
	}{
		{name: "eligible", courseID: "c2", expectedEligible: true},
		{name: "not eligible surfaces a reason", courseID: "c1", expectedEligible: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			platform := certificatePlatform()
			svc := NewCertificateService(platform.connector(nil), zap.NewNop())

			view, err := svc.Certificate(context.Background(), sessionWithRole(models.RoleStudent), tt.courseID)

			require.NoError(t, err)
			assert.Equal(t, tt.expectedEligible, view.Eligible)
			if tt.expectedEligible {
				assert.NotNil(t, view.Certificate)
				assert.Empty(t, view.Reason)
			} else {
				assert.Nil(t, view.Certificate)
				assert.NotEmpty(t, view.Reason)
			}
		})
	}
}

func TestCertificateService_CertificateImage(t *testing.T) {
	platform := certificatePlatform()
	svc := NewCertificateService(platform.connector(nil), zap.NewNop())

	image, err := svc.CertificateImage(context.Background(), sessionWithRole(models.RoleStudent), "c2")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(image, []byte("\x89PNG")))

	_, err = svc.CertificateImage(context.Background(), sessionWithRole(models.RoleStudent), "c1")
	assert.ErrorIs(t, err, certimage.ErrNotEligible)
}
