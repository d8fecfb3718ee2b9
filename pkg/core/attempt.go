package core

import "time"

// AttemptOutcome classifies what one strategy attempt produced.
type AttemptOutcome int

const (
	OutcomeResolved  AttemptOutcome = iota // candidate produced and verified
	OutcomeNotFound                        // strategy had no candidate
	OutcomeAbsent                          // candidate matched zero elements
	OutcomeAmbiguous                       // candidate matched more than one element
	OutcomeTimedOut                        // attempt exceeded its time box
	OutcomeFaulted                         // infrastructure fault, chain aborted
)

// String returns the string representation of AttemptOutcome.
func (o AttemptOutcome) String() string {
	switch o {
	case OutcomeResolved:
		return "resolved"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeAbsent:
		return "absent"
	case OutcomeAmbiguous:
		return "ambiguous"
	case OutcomeTimedOut:
		return "timed_out"
	case OutcomeFaulted:
		return "faulted"
	default:
		return "unknown"
	}
}

// Success returns true if the attempt produced a usable locator.
func (o AttemptOutcome) Success() bool {
	return o == OutcomeResolved
}

// Attempt records one strategy try during a resolve call. Attempts are
// diagnostic only and never persisted.
type Attempt struct {
	SemanticID SemanticID     `json:"semanticId"`
	Strategy   string         `json:"strategy"`
	Outcome    AttemptOutcome `json:"-"`
	OutcomeStr string         `json:"outcome"`
	Duration   time.Duration  `json:"duration"`
}

// NewAttempt builds an attempt record with the outcome string filled in.
func NewAttempt(id SemanticID, strategy string, outcome AttemptOutcome, d time.Duration) Attempt {
	return Attempt{
		SemanticID: id,
		Strategy:   strategy,
		Outcome:    outcome,
		OutcomeStr: outcome.String(),
		Duration:   d,
	}
}
