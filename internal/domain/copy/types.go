package copy

// Status is the lifecycle state of a physical copy. Values are persisted as
// the stable string codes below; never rely on declaration order.
type Status string

const (
	StatusAvailable   Status = "available"
	StatusOnLoan      Status = "on_loan"
	StatusMaintenance Status = "maintenance"
	// StatusWithdrawn is terminal: a withdrawn copy never returns to
	// circulation. The upstream catalog's SCRAPPED/DISCARDED pair collapses
	// into this single state.
	StatusWithdrawn Status = "withdrawn"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusAvailable, StatusOnLoan, StatusMaintenance, StatusWithdrawn:
		return true
	default:
		return false
	}
}

func StatusFromCode(code string) (Status, error) {
	s := Status(code)
	if !s.IsValid() {
		return "", ErrInvalidStatusCode
	}
	return s, nil
}
