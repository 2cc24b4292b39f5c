// Package editor converges a persisted course tree with the draft tree edited by an instructor
package editor

import (
	"github.com/olp/portal/internal/models"
)

// Draft is the in-memory course tree of an edit session
// Sections and lessons carry either a persisted id or a temporary one
type Draft struct {
	Title       string         `json:"title" validate:"notblank"`
	Description string         `json:"description"`
	Tags        []string       `json:"tags"`
	Sections    []DraftSection `json:"sections" validate:"dive"`
	// Base lists the persisted ids the edit session started from
	// Only entities listed here are deleted when the draft no longer holds them
	Base DraftBase `json:"base"`
}

// DraftBase is the snapshot of persisted ids a draft was loaded with
type DraftBase struct {
	SectionIDs []string `json:"sectionIds"`
	LessonIDs  []string `json:"lessonIds"`
}

// DraftSection is a section of the draft
type DraftSection struct {
	ID          string        `json:"id"`
	Title       string        `json:"title" validate:"notblank"`
	Description string        `json:"description"`
	SortOrder   int           `json:"sortOrder" validate:"gte=0"`
	Lessons     []DraftLesson `json:"lessons" validate:"dive"`
	// HasQuiz tells that a quiz for the section is persisted on the platform
	HasQuiz bool `json:"hasQuiz"`
	// PendingQuiz is created once the section exists on the platform
	PendingQuiz *models.QuizPayload `json:"pendingQuiz,omitempty"`
}

// DraftLesson is a lesson of the draft
type DraftLesson struct {
	ID        string `json:"id"`
	Title     string `json:"title" validate:"notblank"`
	Content   string `json:"content"`
	VideoURL  string `json:"videoUrl"`
	SortOrder int    `json:"sortOrder" validate:"gte=0"`
}

// DraftFromCourse builds the starting draft of an edit session from a persisted course
// quizzes holds the ids of sections with a persisted quiz
func DraftFromCourse(course *models.Course, quizzes map[string]bool) *Draft {
	draft := &Draft{
		Title:       course.Title,
		Description: course.Description,
		Tags:        append([]string(nil), course.Tags...),
		Sections:    make([]DraftSection, 0, len(course.Sections)),
	}

	for _, section := range course.Sections {
		ds := DraftSection{
			ID:          section.ID,
			Title:       section.Title,
			Description: section.Description,
			SortOrder:   section.SortOrder,
			Lessons:     make([]DraftLesson, 0, len(section.Lessons)),
			HasQuiz:     quizzes[section.ID],
		}
		for _, lesson := range section.Lessons {
			draft.Base.LessonIDs = append(draft.Base.LessonIDs, lesson.ID)
			ds.Lessons = append(ds.Lessons, DraftLesson{
				ID:        lesson.ID,
				Title:     lesson.Title,
				Content:   lesson.Content,
				VideoURL:  lesson.VideoURL,
				SortOrder: lesson.SortOrder,
			})
		}
		draft.Sections = append(draft.Sections, ds)
		draft.Base.SectionIDs = append(draft.Base.SectionIDs, section.ID)
	}
	return draft
}

// AssignTempIDs gives every section and lesson without id a temporary one
// Browsers may post new entities without ids, they are new by definition
func (d *Draft) AssignTempIDs() {
	for i := range d.Sections {
		if d.Sections[i].ID == "" {
			d.Sections[i].ID = models.NewTempID()
		}
		for j := range d.Sections[i].Lessons {
			if d.Sections[i].Lessons[j].ID == "" {
				d.Sections[i].Lessons[j].ID = models.NewTempID()
			}
		}
	}
}

func (s *DraftSection) request() models.SectionRequest {
	return models.SectionRequest{
		Title:       s.Title,
		Description: s.Description,
		SortOrder:   s.SortOrder,
	}
}

func (l *DraftLesson) request(sectionID string) models.LessonRequest {
	return models.LessonRequest{
		Title:     l.Title,
		Content:   l.Content,
		VideoURL:  l.VideoURL,
		SortOrder: l.SortOrder,
		SectionID: sectionID,
	}
}
