package models

// Quiz is a persisted section quiz
type Quiz struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Questions []QuizQuestion `json:"questions"`
}

// QuizQuestion is a persisted question with its options
type QuizQuestion struct {
	ID            string       `json:"id"`
	Question      string       `json:"question"`
	Options       []QuizOption `json:"options"`
	CorrectAnswer string       `json:"correctAnswer,omitempty"`
}

// QuizOption is a single answer option
type QuizOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// QuizPayload is the body of the quiz create call
type QuizPayload struct {
	Title     string            `json:"title" validate:"notblank"`
	Questions []QuestionPayload `json:"questions" validate:"min=1,dive"`
}

// QuestionPayload is a question of a quiz create call
// The correct answer is matched against the options by text equality
type QuestionPayload struct {
	Question      string   `json:"question" validate:"notblank"`
	Options       []string `json:"options" validate:"min=2,max=4,dive,notblank"`
	CorrectAnswer string   `json:"correctAnswer" validate:"notblank"`
}

// ToPayload converts a persisted quiz back into an editable payload
func (q *Quiz) ToPayload() *QuizPayload {
	payload := &QuizPayload{
		Title:     q.Title,
		Questions: make([]QuestionPayload, 0, len(q.Questions)),
	}
	for _, question := range q.Questions {
		options := make([]string, 0, len(question.Options))
		for _, option := range question.Options {
			options = append(options, option.Text)
		}
		payload.Questions = append(payload.Questions, QuestionPayload{
			Question:      question.Question,
			Options:       options,
			CorrectAnswer: question.CorrectAnswer,
		})
	}
	return payload
}

// QuizAnswers maps question IDs to selected option IDs
type QuizAnswers map[string]string

// QuizResult is the graded outcome of a quiz submission
type QuizResult struct {
	Score          int  `json:"score"`
	CorrectAnswers int  `json:"correctAnswers"`
	TotalQuestions int  `json:"totalQuestions"`
	Percentage     int  `json:"percentage"`
	Passed         bool `json:"passed"`
	AttemptCount   int  `json:"attemptCount"`
}

// QuizStatus is the latest attempt state of a quiz
// Score is nil when the quiz was never attempted
type QuizStatus struct {
	Score        *int `json:"score,omitempty"`
	Passed       bool `json:"passed"`
	AttemptCount int  `json:"attemptCount"`
}

// QuizState is the display state of a quiz in the learning player
type QuizState string

const (
	QuizStateNotAttempted QuizState = "NOT_ATTEMPTED"
	QuizStatePassed       QuizState = "PASSED"
	QuizStateFailed       QuizState = "FAILED"
)

// State derives the display state from an optional status
func (s *QuizStatus) State() QuizState {
	if s == nil || s.Score == nil {
		return QuizStateNotAttempted
	}
	if s.Passed {
		return QuizStatePassed
	}
	return QuizStateFailed
}
