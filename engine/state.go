package engine

// State tracks a trade request through its lifecycle:
// received → validating → {rejected | applying} → {committed | rolled back}.
// It drives log fields only; the executor's control flow is sequential.
type State int

const (
	StateReceived State = iota
	StateValidating
	StateRejected
	StateApplying
	StateCommitted
	StateRolledBack
)

func (s State) String() string {
	switch s {
	case StateReceived:
		return "RECEIVED"
	case StateValidating:
		return "VALIDATING"
	case StateRejected:
		return "REJECTED"
	case StateApplying:
		return "APPLYING"
	case StateCommitted:
		return "COMMITTED"
	case StateRolledBack:
		return "ROLLED_BACK"
	default:
		return "UNKNOWN"
	}
}
