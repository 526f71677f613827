package oracle

// Outcome is the typed result state of an oracle request. A request never
// surfaces a transport error to callers: the worst case is a timed-out
// outcome consumed as "no signal".
type Outcome int

// Request outcomes.
const (
	// OutcomeSucceeded means the request accumulated a usable result.
	OutcomeSucceeded Outcome = iota
	// OutcomeTimedOut means no usable result arrived before the deadline,
	// including transport failures. Callers treat this as "no signal".
	OutcomeTimedOut
	// OutcomeSuperseded means a newer request generation replaced this one
	// while it was in flight; its result must be discarded.
	OutcomeSuperseded
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeTimedOut:
		return "timed out"
	case OutcomeSuperseded:
		return "superseded"
	default:
		return "unknown"
	}
}
