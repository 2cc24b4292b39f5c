package models

import "math"

// Progress is the lesson completion state of a student in a course
type Progress struct {
	CourseID           string   `json:"courseId"`
	CompletedLessons   int      `json:"completedLessons"`
	TotalLessons       int      `json:"totalLessons"`
	ProgressPercent    float64  `json:"progressPercent"`
	CompletedLessonIDs []string `json:"completedLessonIds"`
}

// IsCompleted reports whether the lesson is already completed
func (p *Progress) IsCompleted(lessonID string) bool {
	for _, id := range p.CompletedLessonIDs {
		if id == lessonID {
			return true
		}
	}
	return false
}

// MarkCompleted records the lesson as completed and reports whether anything changed
// Marking an already completed lesson leaves the count untouched
func (p *Progress) MarkCompleted(lessonID string) bool {
	if p.IsCompleted(lessonID) {
		return false
	}
	p.CompletedLessonIDs = append(p.CompletedLessonIDs, lessonID)
	p.CompletedLessons++
	p.ProgressPercent = p.Percent()
	return true
}

// Percent derives the completion percentage rounded to one decimal
func (p *Progress) Percent() float64 {
	if p.TotalLessons <= 0 {
		return 0
	}
	ratio := float64(p.CompletedLessons) / float64(p.TotalLessons) * 100
	return math.Round(ratio*10) / 10
}

// CertificateEligible reports whether every lesson of the course is completed
func (p *Progress) CertificateEligible() bool {
	return p.TotalLessons > 0 && p.CompletedLessons == p.TotalLessons
}

// SectionCompleted reports whether every lesson of the section is completed
// An empty section is never completed
func (p *Progress) SectionCompleted(section Section) bool {
	if len(section.Lessons) == 0 {
		return false
	}
	for _, lesson := range section.Lessons {
		if !p.IsCompleted(lesson.ID) {
			return false
		}
	}
	return true
}

// FirstIncompleteLesson returns the first lesson in course order that is not completed
func (p *Progress) FirstIncompleteLesson(course *Course) *Lesson {
	for i := range course.Sections {
		for j := range course.Sections[i].Lessons {
			lesson := &course.Sections[i].Lessons[j]
			if !p.IsCompleted(lesson.ID) {
				return lesson
			}
		}
	}
	return nil
}
