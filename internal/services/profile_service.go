package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/olp/portal/internal/models"
	"github.com/olp/portal/internal/session"
	"github.com/olp/portal/libs/validation"
	"go.uber.org/zap"
)

// ErrUnsupportedFile is returned for uploads of a type the screen does not accept
var ErrUnsupportedFile = errors.New("unsupported file type")

var (
	imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}
	videoExtensions = map[string]bool{".mp4": true, ".webm": true, ".mov": true, ".mkv": true, ".avi": true}
)

// ProfileService composes the profile screen and file uploads
type ProfileService struct {
	connect Connector
	logger  *zap.Logger
}

// NewProfileService creates a new profile service
func NewProfileService(connect Connector, logger *zap.Logger) *ProfileService {
	return &ProfileService{
		connect: connect,
		logger:  logger,
	}
}

// Get retrieves the profile of the session user
func (s *ProfileService) Get(ctx context.Context, sess *session.Session) (*models.Profile, error) {
	profile, err := s.connect(sess).GetProfile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

// Update updates the non-empty profile fields
func (s *ProfileService) Update(ctx context.Context, sess *session.Session, req models.UpdateProfileRequest) (*models.Profile, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	profile, err := s.connect(sess).UpdateProfile(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return profile, nil
}

// ChangePassword changes the password of the session user
func (s *ProfileService) ChangePassword(ctx context.Context, sess *session.Session, req models.ChangePasswordRequest) error {
	if err := validation.Struct(req); err != nil {
		return err
	}

	if err := s.connect(sess).ChangePassword(ctx, req); err != nil {
		return fmt.Errorf("failed to change password: %w", err)
	}
	s.logger.Info("password changed", zap.String("username", sess.Username))
	return nil
}

// UploadPicture uploads an image and makes it the profile picture
func (s *ProfileService) UploadPicture(ctx context.Context, sess *session.Session, filename string, content io.Reader) (*models.Profile, error) {
	if !imageExtensions[extension(filename)] {
		return nil, ErrUnsupportedFile
	}

	api := s.connect(sess)

	url, err := api.UploadFile(ctx, filename, content)
	if err != nil {
		return nil, fmt.Errorf("failed to upload picture: %w", err)
	}

	profile, err := api.UpdateProfile(ctx, models.UpdateProfileRequest{ProfilePicture: url})
	if err != nil {
		return nil, fmt.Errorf("failed to update profile picture: %w", err)
	}
	return profile, nil
}

// UploadVideo uploads a lesson video and returns its URL
func (s *ProfileService) UploadVideo(ctx context.Context, sess *session.Session, filename string, content io.Reader) (string, error) {
	if !videoExtensions[extension(filename)] {
		return "", ErrUnsupportedFile
	}

	url, err := s.connect(sess).UploadFile(ctx, filename, content)
	if err != nil {
		return "", fmt.Errorf("failed to upload video: %w", err)
	}

	s.logger.Info("video uploaded", zap.String("filename", filename), zap.String("username", sess.Username))
	return url, nil
}

func extension(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}
