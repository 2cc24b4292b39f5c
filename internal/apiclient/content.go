package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/olp/portal/internal/models"
)

// The section and lesson endpoints answer with the whole updated course

func sectionsPath(courseID string) string {
	return "/courses/" + url.PathEscape(courseID) + "/sections"
}

func lessonsPath(courseID string) string {
	return "/courses/" + url.PathEscape(courseID) + "/lessons"
}

// CreateSection appends a section to a course
func (c *Client) CreateSection(ctx context.Context, courseID string, req models.SectionRequest) (*models.Course, error) {
	return c.courseCall(ctx, http.MethodPost, sectionsPath(courseID), req)
}

// UpdateSection updates title, description and order of a section
func (c *Client) UpdateSection(ctx context.Context, courseID, sectionID string, req models.SectionRequest) (*models.Course, error) {
	return c.courseCall(ctx, http.MethodPut, sectionsPath(courseID)+"/"+url.PathEscape(sectionID), req)
}

// DeleteSection deletes a section with its lessons
func (c *Client) DeleteSection(ctx context.Context, courseID, sectionID string) (*models.Course, error) {
	return c.courseCall(ctx, http.MethodDelete, sectionsPath(courseID)+"/"+url.PathEscape(sectionID), nil)
}

// CreateLesson adds a lesson to the section named in the request
func (c *Client) CreateLesson(ctx context.Context, courseID string, req models.LessonRequest) (*models.Course, error) {
	return c.courseCall(ctx, http.MethodPost, lessonsPath(courseID), req)
}

// UpdateLesson updates a lesson, possibly moving it to another section
func (c *Client) UpdateLesson(ctx context.Context, courseID, lessonID string, req models.LessonRequest) (*models.Course, error) {
	return c.courseCall(ctx, http.MethodPut, lessonsPath(courseID)+"/"+url.PathEscape(lessonID), req)
}

// DeleteLesson deletes a lesson
func (c *Client) DeleteLesson(ctx context.Context, courseID, lessonID string) (*models.Course, error) {
	return c.courseCall(ctx, http.MethodDelete, lessonsPath(courseID)+"/"+url.PathEscape(lessonID), nil)
}

func (c *Client) courseCall(ctx context.Context, method, path string, body any) (*models.Course, error) {
	var course models.Course
	if err := c.call(ctx, method, path, nil, body, &course); err != nil {
		return nil, err
	}
	return &course, nil
}
