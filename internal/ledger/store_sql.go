package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

func (s *SQLStore) AppendAttempt(ctx context.Context, a Attempt, maxAttempts int) (Attempt, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Attempt{}, err
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM attempts WHERE student_id=$1 AND coursework_id=$2`,
		a.StudentID, a.CourseworkID).Scan(&count); err != nil {
		return Attempt{}, err
	}
	if count >= maxAttempts {
		return Attempt{}, ErrAttemptLimit
	}
	a.AttemptNumber = count + 1

	// UNIQUE(student_id, coursework_id, attempt_number) backstops writers
	// that raced past the count on engines without serializable isolation.
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO attempts
		  (id, student_id, course_id, coursework_id, attempt_number,
		   correct_answers, total_questions, percentage, points, completed_at, submitted)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		a.ID, a.StudentID, a.CourseID, a.CourseworkID, a.AttemptNumber,
		a.CorrectAnswers, a.TotalQuestions, a.Percentage, a.Points, a.CompletedAt.Unix(), a.Submitted,
	); err != nil {
		return Attempt{}, fmt.Errorf("append attempt: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Attempt{}, err
	}
	return a, nil
}

func (s *SQLStore) ListAttempts(ctx context.Context, studentID, courseworkID string) ([]Attempt, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, student_id, course_id, coursework_id, attempt_number,
		       correct_answers, total_questions, percentage, points, completed_at, submitted
		FROM attempts
		WHERE student_id=$1 AND coursework_id=$2
		ORDER BY attempt_number ASC`, studentID, courseworkID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Attempt
	for rows.Next() {
		var a Attempt
		var completed int64
		if err := rows.Scan(&a.ID, &a.StudentID, &a.CourseID, &a.CourseworkID, &a.AttemptNumber,
			&a.CorrectAnswers, &a.TotalQuestions, &a.Percentage, &a.Points, &completed, &a.Submitted); err != nil {
			return nil, err
		}
		a.CompletedAt = time.Unix(completed, 0).UTC()
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLStore) MarkAttemptSubmitted(ctx context.Context, attemptID string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE attempts SET submitted=$1 WHERE id=$2`, true, attemptID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.New("attempt not found")
	}
	return nil
}

func (s *SQLStore) DeleteAttempts(ctx context.Context, studentID, courseworkID string) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM attempts WHERE student_id=$1 AND coursework_id=$2`, studentID, courseworkID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (s *SQLStore) GetSummary(ctx context.Context, studentID, courseworkID string) (SubmissionSummary, error) {
	var sum SubmissionSummary
	var lastSubmitted, resetAt sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT student_id, course_id, coursework_id, best_score, best_points, best_attempt,
		       submitted_to_classroom, last_submitted_at, reset, reset_at
		FROM submissions
		WHERE student_id=$1 AND coursework_id=$2`, studentID, courseworkID).
		Scan(&sum.StudentID, &sum.CourseID, &sum.CourseworkID, &sum.BestScore, &sum.BestPoints, &sum.BestAttempt,
			&sum.SubmittedToClassroom, &lastSubmitted, &sum.Reset, &resetAt)
	if errors.Is(err, sql.ErrNoRows) {
		return SubmissionSummary{}, ErrSummaryNotFound
	}
	if err != nil {
		return SubmissionSummary{}, err
	}
	if lastSubmitted.Valid {
		t := time.Unix(lastSubmitted.Int64, 0).UTC()
		sum.LastSubmittedAt = &t
	}
	if resetAt.Valid {
		t := time.Unix(resetAt.Int64, 0).UTC()
		sum.ResetAt = &t
	}
	return sum, nil
}

func (s *SQLStore) UpsertSummary(ctx context.Context, sum SubmissionSummary) error {
	var lastSubmitted sql.NullInt64
	if sum.LastSubmittedAt != nil {
		lastSubmitted = sql.NullInt64{Int64: sum.LastSubmittedAt.Unix(), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO submissions
		  (student_id, course_id, coursework_id, best_score, best_points, best_attempt,
		   submitted_to_classroom, last_submitted_at, reset)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (student_id, coursework_id)
		DO UPDATE SET
			best_score=EXCLUDED.best_score,
			best_points=EXCLUDED.best_points,
			best_attempt=EXCLUDED.best_attempt,
			submitted_to_classroom=EXCLUDED.submitted_to_classroom,
			last_submitted_at=EXCLUDED.last_submitted_at`,
		sum.StudentID, sum.CourseID, sum.CourseworkID, sum.BestScore, sum.BestPoints, sum.BestAttempt,
		sum.SubmittedToClassroom, lastSubmitted, false)
	return err
}

func (s *SQLStore) MarkSummaryReset(ctx context.Context, studentID, courseworkID string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE submissions SET reset=$1, reset_at=$2
		WHERE student_id=$3 AND coursework_id=$4`,
		true, at.Unix(), studentID, courseworkID)
	return err
}
