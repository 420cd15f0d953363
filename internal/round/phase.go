package round

// Phase is the state of the round currently in play.
type Phase int

// Round phases. A round moves Idle -> Presenting -> (Resolved | TimedOut) ->
// Retracting -> Idle; Won is terminal.
const (
	PhaseIdle Phase = iota
	PhasePresenting
	PhaseResolved
	PhaseTimedOut
	PhaseRetracting
	PhaseWon
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePresenting:
		return "presenting"
	case PhaseResolved:
		return "resolved"
	case PhaseTimedOut:
		return "timed_out"
	case PhaseRetracting:
		return "retracting"
	case PhaseWon:
		return "won"
	default:
		return "unknown"
	}
}
