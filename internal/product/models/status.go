package models

// Status is the lifecycle state of a product.
type Status string

const (
	StatusPendingVerification Status = "pending_verification"
	StatusActive              Status = "active"
	StatusRejected            Status = "rejected"
)

// IsValid reports whether s is one of the known statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusPendingVerification, StatusActive, StatusRejected:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is allowed from s.
func (s Status) IsTerminal() bool {
	return s == StatusActive || s == StatusRejected
}

// CanTransitionTo reports whether s may move to target.
// Only pending_verification -> active and pending_verification -> rejected exist.
func (s Status) CanTransitionTo(target Status) bool {
	if s != StatusPendingVerification {
		return false
	}
	return target == StatusActive || target == StatusRejected
}

func (s Status) String() string {
	return string(s)
}
