package editor

import (
	"slices"

	"github.com/olp/portal/internal/models"
)

// Action names a single remote call of a save
type Action string

const (
	ActionUpdateCourse  Action = "update_course"
	ActionDeleteLesson  Action = "delete_lesson"
	ActionCreateSection Action = "create_section"
	ActionUpdateSection Action = "update_section"
	ActionCreateLesson  Action = "create_lesson"
	ActionUpdateLesson  Action = "update_lesson"
	ActionDeleteQuiz    Action = "delete_quiz"
	ActionCreateQuiz    Action = "create_quiz"
	ActionDeleteSection Action = "delete_section"
)

// Step is one remote call of a save
// EntityID is the id of the entity the call is about, temporary for creates.
// SectionID is the owning section of lesson and quiz steps and may be temporary until applied
type Step struct {
	Action    Action                 `json:"action"`
	EntityID  string                 `json:"entityId,omitempty"`
	SectionID string                 `json:"sectionId,omitempty"`
	Course    *models.CourseRequest  `json:"course,omitempty"`
	Section   *models.SectionRequest `json:"section,omitempty"`
	Lesson    *models.LessonRequest  `json:"lesson,omitempty"`
	Quiz      *models.QuizPayload    `json:"quiz,omitempty"`
}

// SyncPlan is the ordered list of calls converging a persisted course with a draft
type SyncPlan struct {
	CourseID string `json:"courseId"`
	Steps    []Step `json:"steps"`
	// KnownSectionIDs are the persisted section ids the plan was computed against
	KnownSectionIDs []string `json:"knownSectionIds"`
}

// Count returns the number of steps with the given action
func (p *SyncPlan) Count(action Action) int {
	count := 0
	for _, step := range p.Steps {
		if step.Action == action {
			count++
		}
	}
	return count
}

// Plan computes the calls that converge original with draft
// The order is: course update, lesson deletions in surviving sections, then per draft section
// its create or update followed by its lesson calls and quiz calls, and finally section deletions.
// Unchanged sections and lessons produce no step. Only entities of the draft base are deleted,
// so sections and lessons added by someone else after the draft was loaded survive. Plan does no I/O.
func Plan(original *models.Course, draft *Draft) *SyncPlan {
	plan := &SyncPlan{CourseID: original.ID}

	originalSections := make(map[string]*models.Section, len(original.Sections))
	originalLessons := make(map[string]lessonRef)
	for i := range original.Sections {
		section := &original.Sections[i]
		originalSections[section.ID] = section
		plan.KnownSectionIDs = append(plan.KnownSectionIDs, section.ID)
		for j := range section.Lessons {
			originalLessons[section.Lessons[j].ID] = lessonRef{lesson: &section.Lessons[j], sectionID: section.ID}
		}
	}

	baseSections := make(map[string]bool, len(draft.Base.SectionIDs))
	for _, id := range draft.Base.SectionIDs {
		baseSections[id] = true
	}
	baseLessons := make(map[string]bool, len(draft.Base.LessonIDs))
	for _, id := range draft.Base.LessonIDs {
		baseLessons[id] = true
	}

	draftSections := make(map[string]bool, len(draft.Sections))
	draftLessons := make(map[string]bool)
	for _, section := range draft.Sections {
		draftSections[section.ID] = true
		for _, lesson := range section.Lessons {
			draftLessons[lesson.ID] = true
		}
	}

	// 1. course scalars, always sent
	plan.Steps = append(plan.Steps, Step{
		Action:   ActionUpdateCourse,
		EntityID: original.ID,
		Course: &models.CourseRequest{
			Title:       draft.Title,
			Description: draft.Description,
			Tags:        draft.Tags,
		},
	})

	// 2. lessons gone from the draft, in sections that survive
	// Lessons of removed sections go away with their section. A lesson moved to another
	// section is still in the draft and is updated instead.
	for _, section := range original.Sections {
		if !draftSections[section.ID] {
			continue
		}
		for _, lesson := range section.Lessons {
			if baseLessons[lesson.ID] && !draftLessons[lesson.ID] {
				plan.Steps = append(plan.Steps, Step{
					Action:    ActionDeleteLesson,
					EntityID:  lesson.ID,
					SectionID: section.ID,
				})
			}
		}
	}

	// 3. draft sections in order, each followed by its children
	for i := range draft.Sections {
		section := &draft.Sections[i]
		request := section.request()

		if models.IsTempID(section.ID) {
			plan.Steps = append(plan.Steps, Step{Action: ActionCreateSection, EntityID: section.ID, Section: &request})
		} else if sectionChanged(originalSections[section.ID], section) {
			plan.Steps = append(plan.Steps, Step{Action: ActionUpdateSection, EntityID: section.ID, Section: &request})
		}

		for j := range section.Lessons {
			lesson := &section.Lessons[j]
			lessonRequest := lesson.request(section.ID)

			if models.IsTempID(lesson.ID) {
				plan.Steps = append(plan.Steps, Step{
					Action:    ActionCreateLesson,
					EntityID:  lesson.ID,
					SectionID: section.ID,
					Lesson:    &lessonRequest,
				})
				continue
			}
			if lessonChanged(originalLessons[lesson.ID], lesson, section.ID) {
				plan.Steps = append(plan.Steps, Step{
					Action:    ActionUpdateLesson,
					EntityID:  lesson.ID,
					SectionID: section.ID,
					Lesson:    &lessonRequest,
				})
			}
		}

		if section.PendingQuiz != nil {
			// There is no in-place quiz update, a persisted quiz is replaced
			if section.HasQuiz && !models.IsTempID(section.ID) {
				plan.Steps = append(plan.Steps, Step{Action: ActionDeleteQuiz, SectionID: section.ID})
			}
			plan.Steps = append(plan.Steps, Step{Action: ActionCreateQuiz, SectionID: section.ID, Quiz: section.PendingQuiz})
		}
	}

	// 4. persisted sections gone from the draft
	for _, section := range original.Sections {
		if baseSections[section.ID] && !draftSections[section.ID] {
			plan.Steps = append(plan.Steps, Step{Action: ActionDeleteSection, EntityID: section.ID})
		}
	}

	return plan
}

type lessonRef struct {
	lesson    *models.Lesson
	sectionID string
}

func sectionChanged(original *models.Section, draft *DraftSection) bool {
	if original == nil {
		return true
	}
	return original.Title != draft.Title ||
		original.Description != draft.Description ||
		original.SortOrder != draft.SortOrder
}

func lessonChanged(original lessonRef, draft *DraftLesson, sectionID string) bool {
	if original.lesson == nil {
		return true
	}
	return original.sectionID != sectionID ||
		original.lesson.Title != draft.Title ||
		original.lesson.Content != draft.Content ||
		original.lesson.VideoURL != draft.VideoURL ||
		original.lesson.SortOrder != draft.SortOrder
}

// ChildSteps returns the steps that depend on the section with the given id
func (p *SyncPlan) ChildSteps(sectionID string) []Step {
	var steps []Step
	for _, step := range p.Steps {
		if step.SectionID == sectionID && step.Action != ActionDeleteLesson {
			steps = append(steps, step)
		}
	}
	return slices.Clip(steps)
}
