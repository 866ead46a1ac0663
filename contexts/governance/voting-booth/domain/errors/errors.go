package errors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidInput          = errors.New("invalid voting input")
	ErrNotRegisteredVoter    = errors.New("identity is not a registered voter for this election")
	ErrTransportFailure      = errors.New("session registry unavailable")
	ErrElectionNotFound      = errors.New("election not found")
	ErrSessionNotFound       = errors.New("election session not found")
	ErrSessionNotOngoing     = errors.New("election session is not ongoing")
	ErrItemNotFound          = errors.New("voting item not found")
	ErrOptionNotFound        = errors.New("voting option not found")
	ErrItemKindMismatch      = errors.New("operation does not match voting item kind")
	ErrAbstainNotAllowed     = errors.New("abstain is not allowed on position items")
	ErrMaxSelectionsExceeded = errors.New("maximum selections exceeded")
	ErrIncompleteBallot      = errors.New("ballot is incomplete")
	ErrPartialSubmission     = errors.New("ballot submission partially failed")
	ErrDuplicateVote         = errors.New("vote already recorded")
	ErrNotVoting             = errors.New("booth is not in voting state")
	ErrSubmissionInFlight    = errors.New("a submission is already in flight")
	ErrIdempotencyConflict   = errors.New("outbox event conflict")
)

// IncompleteBallotError lists the items that block submission, in session order.
type IncompleteBallotError struct {
	ItemIDs []string
}

func (e *IncompleteBallotError) Error() string {
	return fmt.Sprintf("%s: %s", ErrIncompleteBallot.Error(), strings.Join(e.ItemIDs, ", "))
}

func (e *IncompleteBallotError) Is(target error) bool {
	return target == ErrIncompleteBallot
}

// PartialSubmissionError reports how many vote records were written before
// the first failed write. Written records are not retracted.
type PartialSubmissionError struct {
	Committed int
	Intended  int
	Err       error
}

func (e *PartialSubmissionError) Error() string {
	return fmt.Sprintf("%s: %d of %d vote records committed: %v",
		ErrPartialSubmission.Error(), e.Committed, e.Intended, e.Err)
}

func (e *PartialSubmissionError) Is(target error) bool {
	return target == ErrPartialSubmission
}

func (e *PartialSubmissionError) Unwrap() error {
	return e.Err
}
