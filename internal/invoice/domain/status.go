package domain

import "fmt"

// Status represents the invoice lifecycle state. Exactly one state holds at
// any time; the tri-state is a single enum, not three independent flags.
type Status string

const (
	StatusDraft   Status = "draft"
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
)

// AllowedStatuses lists every valid status value, in lifecycle order.
func AllowedStatuses() []Status {
	return []Status{StatusDraft, StatusPending, StatusPaid}
}

// Valid reports whether s is one of the allowed statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPending, StatusPaid:
		return true
	default:
		return false
	}
}

func (s Status) IsDraft() bool   { return s == StatusDraft }
func (s Status) IsPending() bool { return s == StatusPending }
func (s Status) IsPaid() bool    { return s == StatusPaid }

// ParseStatus validates a raw status value. Unknown values are a validation
// failure naming the allowed set, never silently ignored.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", &ValidationErrors{Errors: []FieldError{{
			Field:   "status",
			Code:    "invalid_status",
			Message: fmt.Sprintf("status must be one of: %s, %s, %s", StatusDraft, StatusPending, StatusPaid),
		}}}
	}
	return s, nil
}

// SetStatus moves the invoice to target. Any state may move to any other
// state, including back from paid to pending; there is no terminal state.
func (i *Invoice) SetStatus(target Status) error {
	if !target.Valid() {
		_, err := ParseStatus(string(target))
		return err
	}
	i.Status = target
	return nil
}
