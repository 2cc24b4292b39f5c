package models

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/olp/portal/libs/validation"
)

const correctAnswerTag = "correct_answer"

func init() {
	validation.RegisterStructRule(questionStructValidation, correctAnswerTag, "{0} must match one of the options", QuestionPayload{})
}

// questionStructValidation checks that the correct answer is the text of one of the options
func questionStructValidation(sl validator.StructLevel) {
	question, ok := sl.Current().Interface().(QuestionPayload)
	if !ok || strings.TrimSpace(question.CorrectAnswer) == "" {
		return
	}
	for _, option := range question.Options {
		if option == question.CorrectAnswer {
			return
		}
	}
	sl.ReportError(question.CorrectAnswer, "correctAnswer", "CorrectAnswer", correctAnswerTag, "")
}
