package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/olp/portal/internal/models"
)

// ListCourses returns a page of published courses, optionally filtered by tag
func (c *Client) ListCourses(ctx context.Context, tag string, page models.PageRequest) (*models.Page[models.Course], error) {
	query := pageQuery(page)
	if tag != "" {
		query.Set("tag", tag)
	}

	var result models.Page[models.Course]
	if err := c.call(ctx, http.MethodGet, "/courses", query, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetCourse returns a course with its sections and lessons
func (c *Client) GetCourse(ctx context.Context, courseID string) (*models.Course, error) {
	var course models.Course
	if err := c.call(ctx, http.MethodGet, "/courses/"+url.PathEscape(courseID), nil, nil, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

// CreateCourse creates a course, sections and lessons in the request included
func (c *Client) CreateCourse(ctx context.Context, req models.CourseRequest) (*models.Course, error) {
	var course models.Course
	if err := c.call(ctx, http.MethodPost, "/courses", nil, req, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

// UpdateCourse updates the scalar fields of a course
func (c *Client) UpdateCourse(ctx context.Context, courseID string, req models.CourseRequest) (*models.Course, error) {
	// Sections are reconciled with their own calls
	req.Sections = nil

	var course models.Course
	if err := c.call(ctx, http.MethodPut, "/courses/"+url.PathEscape(courseID), nil, req, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

// DeleteCourse deletes a course
func (c *Client) DeleteCourse(ctx context.Context, courseID string) error {
	return c.call(ctx, http.MethodDelete, "/courses/"+url.PathEscape(courseID), nil, nil, nil)
}

// PublishCourse makes a course visible in the catalog
func (c *Client) PublishCourse(ctx context.Context, courseID string) (*models.Course, error) {
	var course models.Course
	if err := c.call(ctx, http.MethodPost, "/courses/"+url.PathEscape(courseID)+"/publish", nil, nil, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

// EnrollCourse enrolls the current student in a course
func (c *Client) EnrollCourse(ctx context.Context, courseID string) error {
	return c.call(ctx, http.MethodPost, "/courses/"+url.PathEscape(courseID)+"/enroll", nil, nil, nil)
}

// EnrolledCourses returns the courses the current student is enrolled in
func (c *Client) EnrolledCourses(ctx context.Context, page models.PageRequest) (*models.Page[models.Course], error) {
	var result models.Page[models.Course]
	if err := c.call(ctx, http.MethodGet, "/courses/enrolled", pageQuery(page), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// InstructorCourses returns the courses owned by the current instructor
func (c *Client) InstructorCourses(ctx context.Context, page models.PageRequest) (*models.Page[models.Course], error) {
	var result models.Page[models.Course]
	if err := c.call(ctx, http.MethodGet, "/courses/instructor/my-courses", pageQuery(page), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CourseStudents returns the students enrolled in a course
func (c *Client) CourseStudents(ctx context.Context, courseID string, page models.PageRequest) (*models.Page[models.Student], error) {
	var result models.Page[models.Student]
	if err := c.call(ctx, http.MethodGet, "/courses/"+url.PathEscape(courseID)+"/students", pageQuery(page), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
