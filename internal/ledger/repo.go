package ledger

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrAttemptLimit: the attempt budget for the key is exhausted.
	ErrAttemptLimit = errors.New("attempt limit exceeded")
	// ErrSummaryNotFound: no submission summary exists for the key yet.
	ErrSummaryNotFound = errors.New("submission summary not found")
)

// Store persists the attempt ledger and the per-key submission summary.
type Store interface {
	// AppendAttempt assigns the next attempt number for the attempt's
	// (student, coursework) key and inserts it, refusing with
	// ErrAttemptLimit once maxAttempts records exist. Number assignment
	// and the cap check happen in one transaction.
	AppendAttempt(ctx context.Context, a Attempt, maxAttempts int) (Attempt, error)

	// ListAttempts returns all attempts for the key ordered by
	// attempt_number ascending.
	ListAttempts(ctx context.Context, studentID, courseworkID string) ([]Attempt, error)

	// MarkAttemptSubmitted flips the attempt's submitted flag.
	MarkAttemptSubmitted(ctx context.Context, attemptID string) error

	// DeleteAttempts removes every attempt for the key and reports how
	// many rows went away.
	DeleteAttempts(ctx context.Context, studentID, courseworkID string) (int, error)

	GetSummary(ctx context.Context, studentID, courseworkID string) (SubmissionSummary, error)

	// UpsertSummary creates the summary row on first success and updates
	// it in place on later ones.
	UpsertSummary(ctx context.Context, s SubmissionSummary) error

	// MarkSummaryReset flags an existing summary as reset without
	// touching its recorded best. Missing summaries are not an error.
	MarkSummaryReset(ctx context.Context, studentID, courseworkID string, at time.Time) error
}
