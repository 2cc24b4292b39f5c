package editor

import (
	"context"
	"fmt"
	"sort"

	"github.com/olp/portal/internal/models"
	"go.uber.org/zap"
)

// CreateCourse creates a course from a draft in one call, then the quizzes of its sections
// Section ids are taken from the create answer by position in sort order
func (a *Applier) CreateCourse(ctx context.Context, api CourseAPI, draft *Draft) (*models.Course, error) {
	request := models.CourseRequest{
		Title:       draft.Title,
		Description: draft.Description,
		Tags:        draft.Tags,
		Sections:    make([]models.SectionRequest, 0, len(draft.Sections)),
	}

	ordered := make([]*DraftSection, 0, len(draft.Sections))
	for i := range draft.Sections {
		ordered = append(ordered, &draft.Sections[i])
	}
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].SortOrder < ordered[j].SortOrder })

	for _, section := range ordered {
		sectionRequest := section.request()
		for i := range section.Lessons {
			sectionRequest.Lessons = append(sectionRequest.Lessons, section.Lessons[i].request(""))
		}
		request.Sections = append(request.Sections, sectionRequest)
	}

	course, err := api.CreateCourse(ctx, request)
	if err != nil {
		return nil, err
	}

	a.logger.Info("course created",
		zap.String("course_id", course.ID),
		zap.Int("sections", len(course.Sections)),
	)

	created := append([]models.Section(nil), course.Sections...)
	sort.SliceStable(created, func(i, j int) bool { return created[i].SortOrder < created[j].SortOrder })

	for i, section := range ordered {
		if section.PendingQuiz == nil {
			continue
		}
		if len(created) != len(ordered) {
			return course, fmt.Errorf("%w: course has %d sections, draft has %d", ErrSectionUnresolved, len(created), len(ordered))
		}
		if _, err := api.CreateQuiz(ctx, created[i].ID, section.PendingQuiz); err != nil {
			return course, fmt.Errorf("course created but quiz for section %q failed: %w", section.Title, err)
		}
	}

	return course, nil
}

// QuizRemover deletes persisted quizzes
type QuizRemover interface {
	DeleteSectionQuiz(ctx context.Context, sectionID string) error
}

// RemoveQuiz removes the quiz of a draft section
// A pending quiz is only dropped from the draft, a persisted one is deleted on the platform.
// It reports whether a remote call was made
func RemoveQuiz(ctx context.Context, api QuizRemover, section *DraftSection) (bool, error) {
	if section.PendingQuiz != nil {
		section.PendingQuiz = nil
		return false, nil
	}
	if !section.HasQuiz || models.IsTempID(section.ID) {
		return false, nil
	}

	if err := api.DeleteSectionQuiz(ctx, section.ID); err != nil {
		return false, err
	}
	section.HasQuiz = false
	return true, nil
}
