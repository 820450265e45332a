package checkout

// Status tracks a settlement flow through its life.
type Status string

const (
	StatusIdle       Status = "IDLE"
	StatusPricing    Status = "PRICING"
	StatusSubmitting Status = "SUBMITTING"
	StatusCommitted  Status = "COMMITTED"
	StatusFailed     Status = "FAILED"
)

func (s Status) IsTerminal() bool {
	return s == StatusCommitted
}

// String representation (for logging)
func (s Status) String() string {
	return string(s)
}

var transitions = map[Status][]Status{
	StatusIdle:       {StatusPricing, StatusSubmitting},
	StatusPricing:    {StatusPricing, StatusSubmitting, StatusIdle},
	StatusSubmitting: {StatusCommitted, StatusFailed},
	StatusFailed:     {StatusIdle},
}

// CanTransitionTo reports whether moving from one status to another is a
// legal step of the settlement state machine.
func CanTransitionTo(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
