package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TempIDPrefix marks identifiers generated on the client for entities the server has not stored yet
const TempIDPrefix = "temp-"

// NewTempID generates a client-side placeholder identifier
func NewTempID() string {
	return TempIDPrefix + uuid.New().String()
}

// IsTempID reports whether the identifier is a client-side placeholder
func IsTempID(id string) bool {
	return strings.HasPrefix(id, TempIDPrefix)
}

// Course represents a course as returned by the platform API
type Course struct {
	ID             string    `json:"id"`
	InstructorID   string    `json:"instructorId"`
	InstructorName string    `json:"instructorName,omitempty"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	IsPublished    bool      `json:"isPublished"`
	Tags           []string  `json:"tags"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
	Sections       []Section `json:"sections,omitempty"`
}

// CanEnroll reports whether the enroll action is offered to a user with the given role
// Only students see it, and only for published courses they are not enrolled in yet
func (c *Course) CanEnroll(role Role, enrolled bool) bool {
	return c.IsPublished && role == RoleStudent && !enrolled
}

// LessonCount returns the number of lessons over all sections
func (c *Course) LessonCount() int {
	total := 0
	for _, section := range c.Sections {
		total += len(section.Lessons)
	}
	return total
}

// SectionIDs returns the set of section identifiers of the course
func (c *Course) SectionIDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(c.Sections))
	for _, section := range c.Sections {
		ids[section.ID] = struct{}{}
	}
	return ids
}

// Section is an ordered grouping of lessons, optionally owning one quiz
type Section struct {
	ID          string   `json:"id"`
	CourseID    string   `json:"courseId,omitempty"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	SortOrder   int      `json:"sortOrder"`
	Lessons     []Lesson `json:"lessons,omitempty"`
}

// Lesson represents a single lesson inside a section
type Lesson struct {
	ID        string `json:"id"`
	CourseID  string `json:"courseId,omitempty"`
	SectionID string `json:"sectionId,omitempty"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	VideoURL  string `json:"videoUrl,omitempty"`
	SortOrder int    `json:"sortOrder"`
}

// CourseRequest is the body of course create and update calls
type CourseRequest struct {
	Title       string           `json:"title" validate:"notblank"`
	Description string           `json:"description"`
	Tags        []string         `json:"tags"`
	Sections    []SectionRequest `json:"sections,omitempty" validate:"dive"`
}

// SectionRequest is the body of section create and update calls
type SectionRequest struct {
	Title       string          `json:"title" validate:"notblank"`
	Description string          `json:"description"`
	SortOrder   int             `json:"sortOrder" validate:"gte=0"`
	Lessons     []LessonRequest `json:"lessons,omitempty" validate:"dive"`
}

// LessonRequest is the body of lesson create and update calls
type LessonRequest struct {
	Title     string `json:"title" validate:"notblank"`
	Content   string `json:"content"`
	VideoURL  string `json:"videoUrl"`
	SortOrder int    `json:"sortOrder" validate:"gte=0"`
	SectionID string `json:"sectionId,omitempty"`
}

// Student is an enrolled student as listed for instructors
type Student struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Page is a page of results as returned by the platform API
type Page[T any] struct {
	Content       []T `json:"content"`
	TotalElements int `json:"totalElements"`
	TotalPages    int `json:"totalPages"`
	Number        int `json:"number"`
	Size          int `json:"size"`
}

// PageRequest holds optional paging query parameters
type PageRequest struct {
	Page int
	Size int
}
