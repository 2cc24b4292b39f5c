package editor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/olp/portal/internal/apiclient"
	"github.com/olp/portal/internal/models"
	"go.uber.org/zap"
)

// ErrSectionUnresolved is returned when the id of a created section cannot be told apart
// after the course re-fetch
var ErrSectionUnresolved = errors.New("created section could not be resolved")

// ActionResolveSection is journaled when the id of a created section cannot be resolved
// It is never part of a plan
const ActionResolveSection Action = "resolve_section"

// sectionCreatedError is a failure that happened after the section create reached the platform
type sectionCreatedError struct {
	err error
}

func (e *sectionCreatedError) Error() string {
	return e.err.Error()
}

func (e *sectionCreatedError) Unwrap() error {
	return e.err
}

// CourseAPI is the subset of the platform API the editor calls
type CourseAPI interface {
	GetCourse(ctx context.Context, courseID string) (*models.Course, error)
	CreateCourse(ctx context.Context, req models.CourseRequest) (*models.Course, error)
	UpdateCourse(ctx context.Context, courseID string, req models.CourseRequest) (*models.Course, error)
	CreateSection(ctx context.Context, courseID string, req models.SectionRequest) (*models.Course, error)
	UpdateSection(ctx context.Context, courseID, sectionID string, req models.SectionRequest) (*models.Course, error)
	DeleteSection(ctx context.Context, courseID, sectionID string) (*models.Course, error)
	CreateLesson(ctx context.Context, courseID string, req models.LessonRequest) (*models.Course, error)
	UpdateLesson(ctx context.Context, courseID, lessonID string, req models.LessonRequest) (*models.Course, error)
	DeleteLesson(ctx context.Context, courseID, lessonID string) (*models.Course, error)
	CreateQuiz(ctx context.Context, sectionID string, payload *models.QuizPayload) (*models.Quiz, error)
	DeleteSectionQuiz(ctx context.Context, sectionID string) error
}

// Journal records every remote call of a save
type Journal interface {
	// Record stores one journal entry
	Record(ctx context.Context, entry *models.SyncEntry) error
}

// NopJournal discards entries, used when no database is configured
type NopJournal struct{}

// Record does nothing
func (NopJournal) Record(ctx context.Context, entry *models.SyncEntry) error {
	return nil
}

// Result describes a completed save
type Result struct {
	RunID    string            `json:"runId"`
	CourseID string            `json:"courseId"`
	Applied  int               `json:"applied"`
	Resolved map[string]string `json:"resolved"`
}

// ApplyError tells which step of a save failed
// Steps before it were applied and are not rolled back
type ApplyError struct {
	RunID   string
	Index   int
	Step    Step
	Applied int
	Err     error
}

func (e *ApplyError) Error() string {
	if e.Applied > e.Index {
		return fmt.Sprintf("step %d (%s %s) was applied but could not be completed: %v",
			e.Index+1, e.Step.Action, e.Step.target(), e.Err)
	}
	return fmt.Sprintf("step %d (%s %s) failed after %d applied steps: %v",
		e.Index+1, e.Step.Action, e.Step.target(), e.Applied, e.Err)
}

func (e *ApplyError) Unwrap() error {
	return e.Err
}

// UserMessage is the text shown when a save fails
func (e *ApplyError) UserMessage() string {
	var created *sectionCreatedError
	if errors.Is(e.Err, ErrSectionUnresolved) || errors.As(e.Err, &created) {
		return "The new section was saved but could not be identified. Reload the course before editing further."
	}
	return "Failed to save changes: " + apiclient.UserMessage(e.Err)
}

func (s Step) target() string {
	if s.EntityID != "" {
		return s.EntityID
	}
	return s.SectionID
}

// Applier executes sync plans step by step
type Applier struct {
	journal Journal
	logger  *zap.Logger
}

// NewApplier creates a new applier
func NewApplier(journal Journal, logger *zap.Logger) *Applier {
	if journal == nil {
		journal = NopJournal{}
	}
	return &Applier{
		journal: journal,
		logger:  logger,
	}
}

// run is the state of one plan execution
type run struct {
	id       string
	courseID string
	username string
	api      CourseAPI
	known    map[string]struct{}
	resolved map[string]string
}

// Apply executes the plan sequentially
// The first failing call aborts the remaining steps and is returned as *ApplyError.
// Created sections are resolved through a course re-fetch: the one section id that was not
// known before the create is the new one. Any other outcome aborts before child calls fire.
func (a *Applier) Apply(ctx context.Context, api CourseAPI, plan *SyncPlan, username string) (*Result, error) {
	r := &run{
		id:       uuid.New().String(),
		courseID: plan.CourseID,
		username: username,
		api:      api,
		known:    make(map[string]struct{}, len(plan.KnownSectionIDs)),
		resolved: make(map[string]string),
	}
	for _, id := range plan.KnownSectionIDs {
		r.known[id] = struct{}{}
	}

	a.logger.Info("applying course changes",
		zap.String("run_id", r.id),
		zap.String("course_id", plan.CourseID),
		zap.Int("steps", len(plan.Steps)),
	)

	for i, step := range plan.Steps {
		resolvedID, err := a.applyStep(ctx, r, step)
		if err != nil {
			applied := i
			var created *sectionCreatedError
			if errors.As(err, &created) {
				// the section exists on the platform, only its id is unknown
				applied = i + 1
				a.record(ctx, r, i+1, step, "", nil)
				a.record(ctx, r, i+2, Step{Action: ActionResolveSection, EntityID: step.EntityID}, "", err)
			} else {
				a.record(ctx, r, i+1, step, "", err)
			}
			a.logger.Error("course changes aborted",
				zap.String("run_id", r.id),
				zap.String("course_id", plan.CourseID),
				zap.String("action", string(step.Action)),
				zap.String("entity_id", step.target()),
				zap.Int("applied", applied),
				zap.Int("skipped", len(plan.Steps)-i-1),
				zap.Error(err),
			)
			if step.Action == ActionCreateSection {
				a.logger.Warn("child calls of unresolved section not issued",
					zap.String("run_id", r.id),
					zap.String("section_id", step.EntityID),
					zap.Int("children", len(plan.ChildSteps(step.EntityID))),
				)
			}
			return nil, &ApplyError{RunID: r.id, Index: i, Step: step, Applied: applied, Err: err}
		}
		a.record(ctx, r, i+1, step, resolvedID, nil)
	}

	a.logger.Info("course changes applied",
		zap.String("run_id", r.id),
		zap.String("course_id", plan.CourseID),
		zap.Int("applied", len(plan.Steps)),
	)

	return &Result{
		RunID:    r.id,
		CourseID: plan.CourseID,
		Applied:  len(plan.Steps),
		Resolved: r.resolved,
	}, nil
}

// applyStep issues the call of one step and returns the resolved id of created sections
func (a *Applier) applyStep(ctx context.Context, r *run, step Step) (string, error) {
	api := r.api

	switch step.Action {
	case ActionUpdateCourse:
		_, err := api.UpdateCourse(ctx, r.courseID, *step.Course)
		return "", err

	case ActionDeleteLesson:
		_, err := api.DeleteLesson(ctx, r.courseID, step.EntityID)
		return "", err

	case ActionCreateSection:
		return a.createSection(ctx, r, step)

	case ActionUpdateSection:
		_, err := api.UpdateSection(ctx, r.courseID, step.EntityID, *step.Section)
		return "", err

	case ActionCreateLesson, ActionUpdateLesson:
		sectionID, err := r.sectionID(step.SectionID)
		if err != nil {
			return "", err
		}
		request := *step.Lesson
		request.SectionID = sectionID
		if step.Action == ActionCreateLesson {
			_, err = api.CreateLesson(ctx, r.courseID, request)
		} else {
			_, err = api.UpdateLesson(ctx, r.courseID, step.EntityID, request)
		}
		return "", err

	case ActionDeleteQuiz:
		sectionID, err := r.sectionID(step.SectionID)
		if err != nil {
			return "", err
		}
		return "", api.DeleteSectionQuiz(ctx, sectionID)

	case ActionCreateQuiz:
		sectionID, err := r.sectionID(step.SectionID)
		if err != nil {
			return "", err
		}
		_, err = api.CreateQuiz(ctx, sectionID, step.Quiz)
		return "", err

	case ActionDeleteSection:
		_, err := api.DeleteSection(ctx, r.courseID, step.EntityID)
		return "", err
	}

	return "", fmt.Errorf("unknown action %q", step.Action)
}

// createSection creates the section, re-fetches the course and resolves the new id
func (a *Applier) createSection(ctx context.Context, r *run, step Step) (string, error) {
	if _, err := r.api.CreateSection(ctx, r.courseID, *step.Section); err != nil {
		return "", err
	}

	course, err := r.api.GetCourse(ctx, r.courseID)
	if err != nil {
		return "", &sectionCreatedError{err: fmt.Errorf("failed to re-fetch course: %w", err)}
	}

	var candidates []string
	for _, section := range course.Sections {
		if _, ok := r.known[section.ID]; !ok {
			candidates = append(candidates, section.ID)
		}
	}
	if len(candidates) != 1 || models.IsTempID(candidates[0]) {
		return "", &sectionCreatedError{
			err: fmt.Errorf("%w: %d new sections found for %s", ErrSectionUnresolved, len(candidates), step.EntityID),
		}
	}

	resolved := candidates[0]
	for id := range course.SectionIDs() {
		r.known[id] = struct{}{}
	}
	r.resolved[step.EntityID] = resolved

	a.logger.Debug("section resolved",
		zap.String("run_id", r.id),
		zap.String("temp_id", step.EntityID),
		zap.String("section_id", resolved),
	)
	return resolved, nil
}

// sectionID maps a temporary section id to the resolved one
func (r *run) sectionID(id string) (string, error) {
	if !models.IsTempID(id) {
		return id, nil
	}
	resolved, ok := r.resolved[id]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrSectionUnresolved, id)
	}
	return resolved, nil
}

func (a *Applier) record(ctx context.Context, r *run, seq int, step Step, resolvedID string, stepErr error) {
	entry := &models.SyncEntry{
		RunID:      r.id,
		CourseID:   r.courseID,
		Seq:        seq,
		Action:     string(step.Action),
		EntityID:   step.target(),
		ResolvedID: resolvedID,
		Status:     models.SyncStatusApplied,
		Username:   r.username,
		CreatedAt:  time.Now().UTC(),
	}
	if stepErr != nil {
		entry.Status = models.SyncStatusFailed
		entry.Message = stepErr.Error()
	}

	// A journal outage must not fail a save that reached the platform
	if err := a.journal.Record(ctx, entry); err != nil {
		a.logger.Error("failed to record sync journal entry",
			zap.String("run_id", r.id),
			zap.Int("seq", entry.Seq),
			zap.Error(err),
		)
	}
}
