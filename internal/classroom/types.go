// Package classroom abstracts the external grading platform: roster and
// membership checks, coursework metadata, and the grade push itself.
package classroom

import "context"

type CourseInfo struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	OwnerID        string `json:"owner_id"`
	EnrollmentCode string `json:"enrollment_code,omitempty"`
}

type CourseworkInfo struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	// MaxPoints is nil when the platform does not expose a point scale
	// for the coursework; callers fall back to a 1:1 scale.
	MaxPoints *float64 `json:"max_points,omitempty"`
	State     string   `json:"state,omitempty"`
}

type Student struct {
	UserID string            `json:"user_id"`
	Name   string            `json:"name,omitempty"`
	Email  string            `json:"email,omitempty"`
	Extra  map[string]string `json:"extra,omitempty"`
}

type SubmitResult struct {
	Success       bool    `json:"success"`
	SubmissionID  string  `json:"submission_id,omitempty"`
	AssignedGrade float64 `json:"assigned_grade,omitempty"`
	State         string  `json:"state,omitempty"`
	Error         string  `json:"error,omitempty"`
}

// Classroom is the capability the grade-sync workflows need from the
// platform. Implementations: the REST client (online) and the
// roster-table backed SQLClassroom (offline).
type Classroom interface {
	IsStudentEnrolled(ctx context.Context, courseID, userID string) (bool, error)
	IsTeacher(ctx context.Context, courseID, userID string) (bool, error)
	CourseInfo(ctx context.Context, courseID string) (CourseInfo, error)
	CourseworkInfo(ctx context.Context, courseID, courseworkID string) (CourseworkInfo, error)
	ListStudents(ctx context.Context, courseID string) ([]Student, error)
	SubmitGrade(ctx context.Context, courseID, courseworkID, userID string, grade float64) (SubmitResult, error)
}
