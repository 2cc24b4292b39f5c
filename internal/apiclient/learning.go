package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/olp/portal/internal/models"
)

// CreateQuiz creates the quiz of a section
func (c *Client) CreateQuiz(ctx context.Context, sectionID string, payload *models.QuizPayload) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := c.call(ctx, http.MethodPost, "/quiz/section/"+url.PathEscape(sectionID), nil, payload, &quiz); err != nil {
		return nil, err
	}
	return &quiz, nil
}

// GetSectionQuiz returns the quiz of a section, a section without quiz yields a 404 APIError
func (c *Client) GetSectionQuiz(ctx context.Context, sectionID string) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := c.call(ctx, http.MethodGet, "/quiz/section/"+url.PathEscape(sectionID), nil, nil, &quiz); err != nil {
		return nil, err
	}
	return &quiz, nil
}

// DeleteSectionQuiz deletes the quiz of a section
func (c *Client) DeleteSectionQuiz(ctx context.Context, sectionID string) error {
	return c.call(ctx, http.MethodDelete, "/quiz/section/"+url.PathEscape(sectionID), nil, nil, nil)
}

// SubmitQuiz sends the selected option per question for grading
func (c *Client) SubmitQuiz(ctx context.Context, quizID string, answers models.QuizAnswers) (*models.QuizResult, error) {
	var result models.QuizResult
	if err := c.call(ctx, http.MethodPost, "/quiz/"+url.PathEscape(quizID)+"/submit", nil, answers, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// QuizStatus returns the latest attempt state of a quiz
func (c *Client) QuizStatus(ctx context.Context, quizID string) (*models.QuizStatus, error) {
	var status models.QuizStatus
	if err := c.call(ctx, http.MethodGet, "/quiz/"+url.PathEscape(quizID)+"/status", nil, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// CourseProgress returns the lesson completion state of the current student
func (c *Client) CourseProgress(ctx context.Context, courseID string) (*models.Progress, error) {
	var progress models.Progress
	if err := c.call(ctx, http.MethodGet, "/progress/course/"+url.PathEscape(courseID), nil, nil, &progress); err != nil {
		return nil, err
	}
	return &progress, nil
}

// CompleteLesson marks a lesson as completed
func (c *Client) CompleteLesson(ctx context.Context, lessonID string) error {
	return c.call(ctx, http.MethodPost, "/progress/lesson/"+url.PathEscape(lessonID)+"/complete", nil, nil, nil)
}

// CheckCertificate checks eligibility and issues the certificate when eligible
func (c *Client) CheckCertificate(ctx context.Context, courseID string) (*models.Certificate, error) {
	var certificate models.Certificate
	if err := c.call(ctx, http.MethodPost, "/certificate/course/"+url.PathEscape(courseID), nil, nil, &certificate); err != nil {
		return nil, err
	}
	return &certificate, nil
}

// GetCertificate returns the certificate of a course
func (c *Client) GetCertificate(ctx context.Context, courseID string) (*models.Certificate, error) {
	var certificate models.Certificate
	if err := c.call(ctx, http.MethodGet, "/certificate/course/"+url.PathEscape(courseID), nil, nil, &certificate); err != nil {
		return nil, err
	}
	return &certificate, nil
}
