// Package quizbuilder collects quiz questions into the payload of the quiz create call
package quizbuilder

import (
	"context"
	"fmt"
	"strings"

	"github.com/olp/portal/internal/models"
	"github.com/olp/portal/libs/validation"
)

// OptionSlots is the number of option inputs offered per question
const OptionSlots = 4

// Question is a question being edited, blank option slots are dropped from the payload
type Question struct {
	Question      string              `json:"question"`
	Options       [OptionSlots]string `json:"options"`
	CorrectAnswer string              `json:"correctAnswer"`
}

// Builder holds the quiz being edited for one section
type Builder struct {
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
	// Editing marks that the section already has a persisted quiz to replace
	Editing bool `json:"editing"`
}

// New starts an empty quiz for a section, titled after it, with one blank question
func New(sectionTitle string) *Builder {
	return &Builder{
		Title:     sectionTitle + " Quiz",
		Questions: []Question{{}},
	}
}

// FromQuiz starts editing a persisted quiz
// Questions with more options than slots keep the first ones
func FromQuiz(quiz *models.Quiz) *Builder {
	payload := quiz.ToPayload()
	b := &Builder{
		Title:     payload.Title,
		Questions: make([]Question, 0, len(payload.Questions)),
		Editing:   true,
	}
	for _, q := range payload.Questions {
		question := Question{Question: q.Question, CorrectAnswer: q.CorrectAnswer}
		copy(question.Options[:], q.Options)
		b.Questions = append(b.Questions, question)
	}
	return b
}

// AddQuestion appends a blank question and returns its index
func (b *Builder) AddQuestion() int {
	b.Questions = append(b.Questions, Question{})
	return len(b.Questions) - 1
}

// RemoveQuestion removes the question at index
func (b *Builder) RemoveQuestion(index int) {
	if index < 0 || index >= len(b.Questions) {
		return
	}
	b.Questions = append(b.Questions[:index], b.Questions[index+1:]...)
}

// Payload builds the create payload, keeping only non-blank options
func (b *Builder) Payload() *models.QuizPayload {
	payload := &models.QuizPayload{
		Title:     strings.TrimSpace(b.Title),
		Questions: make([]models.QuestionPayload, 0, len(b.Questions)),
	}
	for _, q := range b.Questions {
		options := make([]string, 0, OptionSlots)
		for _, option := range q.Options {
			if strings.TrimSpace(option) != "" {
				options = append(options, option)
			}
		}
		payload.Questions = append(payload.Questions, models.QuestionPayload{
			Question:      q.Question,
			Options:       options,
			CorrectAnswer: q.CorrectAnswer,
		})
	}
	return payload
}

// QuizAPI is the subset of the platform API the builder calls
type QuizAPI interface {
	CreateQuiz(ctx context.Context, sectionID string, payload *models.QuizPayload) (*models.Quiz, error)
	DeleteSectionQuiz(ctx context.Context, sectionID string) error
}

// Outcome is the result of a submit
// Deferred is set for sections not saved yet, the payload travels with the draft until the
// section exists. Otherwise Quiz holds the created quiz and the caller reloads the section.
type Outcome struct {
	Deferred *models.QuizPayload `json:"deferred,omitempty"`
	Quiz     *models.Quiz        `json:"quiz,omitempty"`
	Replaced bool                `json:"replaced"`
	Reload   bool                `json:"reload"`
}

// Submit validates the payload and persists it for the section
// There is no quiz update call, in edit mode the old quiz is deleted before the new one is created
func (b *Builder) Submit(ctx context.Context, api QuizAPI, sectionID string) (*Outcome, error) {
	payload := b.Payload()
	if err := validation.Struct(payload); err != nil {
		return nil, err
	}

	if models.IsTempID(sectionID) {
		return &Outcome{Deferred: payload}, nil
	}

	if b.Editing {
		if err := api.DeleteSectionQuiz(ctx, sectionID); err != nil {
			return nil, fmt.Errorf("failed to delete old quiz: %w", err)
		}
	}

	quiz, err := api.CreateQuiz(ctx, sectionID, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to create quiz: %w", err)
	}

	return &Outcome{Quiz: quiz, Replaced: b.Editing, Reload: true}, nil
}
