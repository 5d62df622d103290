package loan

// Status is the lifecycle state of a borrow transaction. Persisted as the
// stable string codes below.
type Status string

const (
	StatusActive   Status = "active"
	StatusReturned Status = "returned"
	StatusOverdue  Status = "overdue"
	StatusLost     Status = "lost"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusReturned, StatusOverdue, StatusLost:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the loan has been finalized. Fines are set once
// on the transition into a terminal state and never recomputed afterwards.
func (s Status) IsTerminal() bool {
	return s == StatusReturned || s == StatusOverdue || s == StatusLost
}

func StatusFromCode(code string) (Status, error) {
	s := Status(code)
	if !s.IsValid() {
		return "", ErrInvalidStatusCode
	}
	return s, nil
}
