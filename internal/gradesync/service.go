// Package gradesync holds the attempt-tracking core: the grade submission
// orchestrator, the attempt history query, and the teacher reset workflow.
package gradesync

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/edukit/classroom-sync/internal/audit"
	"github.com/edukit/classroom-sync/internal/classroom"
	"github.com/edukit/classroom-sync/internal/ledger"
	"github.com/edukit/classroom-sync/internal/scoring"
)

var (
	ErrNotEnrolled   = errors.New("student not enrolled in course")
	ErrNotAuthorized = errors.New("only teachers can reset attempts")
)

const DefaultMaxAttempts = 3

type Clock func() time.Time

type Service struct {
	store       ledger.Store
	events      *audit.EventRepo // optional; nil disables audit writes
	maxAttempts int
	now         Clock
	keys        *keyLock
}

func New(store ledger.Store, events *audit.EventRepo, maxAttempts int, now Clock) *Service {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if now == nil {
		now = time.Now
	}
	return &Service{
		store:       store,
		events:      events,
		maxAttempts: maxAttempts,
		now:         now,
		keys:        newKeyLock(),
	}
}

type SubmitRequest struct {
	StudentID      string `json:"student_id"`
	CourseID       string `json:"course_id"`
	CourseworkID   string `json:"coursework_id"`
	CorrectAnswers int    `json:"correct_answers"`
	TotalQuestions int    `json:"total_questions"`
}

type SubmitOutcome struct {
	Success              bool    `json:"success"`
	Percentage           float64 `json:"percentage"`
	Points               int     `json:"points"`
	AttemptNumber        int     `json:"attempt_number"`
	RemainingAttempts    int     `json:"remaining_attempts"`
	SubmittedToClassroom bool    `json:"submitted_to_classroom"`
	BestScore            float64 `json:"best_score"`
	BestPoints           int     `json:"best_points"`
	Error                string  `json:"error,omitempty"`
}

type AttemptHistory struct {
	Attempts          []ledger.Attempt `json:"attempts"`
	RemainingAttempts int              `json:"remaining_attempts"`
	BestScore         *float64         `json:"best_score"`
}

type ResetRequest struct {
	TeacherID    string `json:"teacher_id"`
	StudentID    string `json:"student_id"`
	CourseID     string `json:"course_id"`
	CourseworkID string `json:"coursework_id"`
}

type ResetOutcome struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	StudentID string `json:"student_id"`
	Deleted   int    `json:"deleted"`
}

func attemptKey(studentID, courseworkID string) string {
	return studentID + "|" + courseworkID
}

// SubmitGrade records a new attempt and pushes the best score to date to
// the classroom platform. The attempt write is durable before the remote
// call is made; a remote failure is reported in the outcome and never
// rolls the attempt back, nor does it refund the attempt slot.
func (s *Service) SubmitGrade(ctx context.Context, gc classroom.Classroom, req SubmitRequest) (SubmitOutcome, error) {
	enrolled, err := gc.IsStudentEnrolled(ctx, req.CourseID, req.StudentID)
	if err != nil {
		return SubmitOutcome{}, fmt.Errorf("enrollment check: %w", err)
	}
	if !enrolled {
		return SubmitOutcome{}, ErrNotEnrolled
	}

	key := attemptKey(req.StudentID, req.CourseworkID)

	// Steps between counting attempts and appending the new one must be
	// serialized per key, or racing submissions could blow the cap.
	unlock := s.keys.Lock(key)
	existing, err := s.store.ListAttempts(ctx, req.StudentID, req.CourseworkID)
	if err != nil {
		unlock()
		return SubmitOutcome{}, fmt.Errorf("list attempts: %w", err)
	}
	if len(existing) >= s.maxAttempts {
		unlock()
		return SubmitOutcome{}, ledger.ErrAttemptLimit
	}

	pct, err := scoring.Percentage(req.CorrectAnswers, req.TotalQuestions)
	if err != nil {
		unlock()
		return SubmitOutcome{}, err
	}
	attempt := ledger.Attempt{
		ID:             uuid.NewString(),
		StudentID:      req.StudentID,
		CourseID:       req.CourseID,
		CourseworkID:   req.CourseworkID,
		CorrectAnswers: req.CorrectAnswers,
		TotalQuestions: req.TotalQuestions,
		Percentage:     pct,
		Points:         scoring.Points(req.CorrectAnswers),
		CompletedAt:    s.now().UTC(),
	}
	attempt, err = s.store.AppendAttempt(ctx, attempt, s.maxAttempts)
	unlock()
	if err != nil {
		return SubmitOutcome{}, fmt.Errorf("append attempt: %w", err)
	}

	best, err := scoring.BestOf(append(existing, attempt))
	if err != nil {
		return SubmitOutcome{}, err
	}

	outcome := SubmitOutcome{
		Percentage:        attempt.Percentage,
		Points:            attempt.Points,
		AttemptNumber:     attempt.AttemptNumber,
		RemainingAttempts: s.maxAttempts - attempt.AttemptNumber,
		BestScore:         best.Percentage,
		BestPoints:        best.Points,
	}

	// The attempt is durable from here on. Remote trouble is reported in
	// the outcome, never thrown past it.
	maxPoints := float64(req.TotalQuestions)
	if cw, err := gc.CourseworkInfo(ctx, req.CourseID, req.CourseworkID); err != nil {
		log.Printf("gradesync: coursework info unavailable for %s/%s, using 1:1 scale: %v",
			req.CourseID, req.CourseworkID, err)
	} else if cw.MaxPoints != nil {
		maxPoints = *cw.MaxPoints
	}
	grade, err := scoring.ToExternalScale(best.Points, req.TotalQuestions, maxPoints)
	if err != nil {
		return s.submitFailed(ctx, outcome, req, attempt, err), nil
	}

	res, err := gc.SubmitGrade(ctx, req.CourseID, req.CourseworkID, req.StudentID, grade)
	if err != nil || !res.Success {
		if err == nil {
			err = errors.New(res.Error)
		}
		return s.submitFailed(ctx, outcome, req, attempt, err), nil
	}

	submittedAt := s.now().UTC()
	if err := s.store.UpsertSummary(ctx, ledger.SubmissionSummary{
		StudentID:            req.StudentID,
		CourseID:             req.CourseID,
		CourseworkID:         req.CourseworkID,
		BestScore:            best.Percentage,
		BestPoints:           best.Points,
		BestAttempt:          best.AttemptNumber,
		SubmittedToClassroom: true,
		LastSubmittedAt:      &submittedAt,
	}); err != nil {
		return SubmitOutcome{}, fmt.Errorf("upsert summary: %w", err)
	}
	if err := s.store.MarkAttemptSubmitted(ctx, attempt.ID); err != nil {
		return SubmitOutcome{}, fmt.Errorf("mark attempt submitted: %w", err)
	}

	outcome.Success = true
	outcome.SubmittedToClassroom = true
	s.logEvent(ctx, audit.TypeGradeSubmitted, attemptKey(req.StudentID, req.CourseworkID), map[string]any{
		"attempt_number": attempt.AttemptNumber,
		"assigned_grade": grade,
		"submission_id":  res.SubmissionID,
	})
	return outcome, nil
}

func (s *Service) submitFailed(ctx context.Context, outcome SubmitOutcome, req SubmitRequest, attempt ledger.Attempt, cause error) SubmitOutcome {
	log.Printf("gradesync: remote submit failed student=%s coursework=%s attempt=%d: %v",
		req.StudentID, req.CourseworkID, attempt.AttemptNumber, cause)
	s.logEvent(ctx, audit.TypeSubmitFailed, attemptKey(req.StudentID, req.CourseworkID), map[string]any{
		"attempt_number": attempt.AttemptNumber,
		"error":          cause.Error(),
	})
	outcome.Error = cause.Error()
	return outcome
}

// Attempts reports the ledger for one (student, coursework) key: history
// in attempt order, remaining budget, and the best percentage so far.
func (s *Service) Attempts(ctx context.Context, studentID, courseworkID string) (AttemptHistory, error) {
	attempts, err := s.store.ListAttempts(ctx, studentID, courseworkID)
	if err != nil {
		return AttemptHistory{}, fmt.Errorf("list attempts: %w", err)
	}
	h := AttemptHistory{
		Attempts:          attempts,
		RemainingAttempts: s.maxAttempts - len(attempts),
	}
	if len(attempts) > 0 {
		best, err := scoring.BestOf(attempts)
		if err != nil {
			return AttemptHistory{}, err
		}
		h.BestScore = &best.Percentage
	}
	return h, nil
}

// ResetAttempts clears a student's ledger for one coursework and flags the
// summary as reset. The summary's recorded best and its
// submitted_to_classroom flag survive the reset: they are audit history.
func (s *Service) ResetAttempts(ctx context.Context, gc classroom.Classroom, req ResetRequest) (ResetOutcome, error) {
	isTeacher, err := gc.IsTeacher(ctx, req.CourseID, req.TeacherID)
	if err != nil {
		return ResetOutcome{}, fmt.Errorf("teacher check: %w", err)
	}
	if !isTeacher {
		return ResetOutcome{}, ErrNotAuthorized
	}

	deleted, err := s.store.DeleteAttempts(ctx, req.StudentID, req.CourseworkID)
	if err != nil {
		return ResetOutcome{}, fmt.Errorf("delete attempts: %w", err)
	}
	if err := s.store.MarkSummaryReset(ctx, req.StudentID, req.CourseworkID, s.now().UTC()); err != nil {
		return ResetOutcome{}, fmt.Errorf("mark reset: %w", err)
	}

	s.logEvent(ctx, audit.TypeAttemptsReset, attemptKey(req.StudentID, req.CourseworkID), map[string]any{
		"teacher_id": req.TeacherID,
		"deleted":    deleted,
	})
	return ResetOutcome{
		Success:   true,
		Message:   fmt.Sprintf("Reset %d attempts for student", deleted),
		StudentID: req.StudentID,
		Deleted:   deleted,
	}, nil
}

func (s *Service) logEvent(ctx context.Context, typ, key string, data any) {
	if s.events == nil {
		return
	}
	if err := s.events.Append(ctx, typ, key, data); err != nil {
		log.Printf("gradesync: audit append failed (%s %s): %v", typ, key, err)
	}
}
