package reservation

// Status is the lifecycle state of a waiting-list entry. Persisted as the
// stable string codes below.
type Status string

const (
	StatusWaiting   Status = "waiting"
	StatusNotified  Status = "notified"
	StatusExpired   Status = "expired"
	StatusCancelled Status = "cancelled"
	StatusFulfilled Status = "fulfilled"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusWaiting, StatusNotified, StatusExpired, StatusCancelled, StatusFulfilled:
		return true
	default:
		return false
	}
}

// IsActive reports whether the reservation still holds a place in the queue.
func (s Status) IsActive() bool {
	return s == StatusWaiting || s == StatusNotified
}

func StatusFromCode(code string) (Status, error) {
	s := Status(code)
	if !s.IsValid() {
		return "", ErrInvalidStatusCode
	}
	return s, nil
}
