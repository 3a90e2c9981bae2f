package ledger

import "time"

// Attempt is one scored quiz submission for a (student, coursework) pair.
// Immutable once appended, except for the Submitted flag which records
// whether this attempt's score was the one last pushed to the platform.
type Attempt struct {
	ID             string    `json:"id"`
	StudentID      string    `json:"student_id"`
	CourseID       string    `json:"course_id"`
	CourseworkID   string    `json:"coursework_id"`
	AttemptNumber  int       `json:"attempt_number"`
	CorrectAnswers int       `json:"correct_answers"`
	TotalQuestions int       `json:"total_questions"`
	Percentage     float64   `json:"percentage"`
	Points         int       `json:"points"`
	CompletedAt    time.Time `json:"completed_at"`
	Submitted      bool      `json:"submitted"`
}

// SubmissionSummary is the single mutable row per (student, coursework):
// the best score seen across attempts plus remote-submission status.
// Created on first successful platform push, updated in place afterwards.
// Reset flags the row but never clears the recorded best.
type SubmissionSummary struct {
	StudentID            string     `json:"student_id"`
	CourseID             string     `json:"course_id"`
	CourseworkID         string     `json:"coursework_id"`
	BestScore            float64    `json:"best_score"`
	BestPoints           int        `json:"best_points"`
	BestAttempt          int        `json:"best_attempt"`
	SubmittedToClassroom bool       `json:"submitted_to_classroom"`
	LastSubmittedAt      *time.Time `json:"last_submitted_at,omitempty"`
	Reset                bool       `json:"reset"`
	ResetAt              *time.Time `json:"reset_at,omitempty"`
}
