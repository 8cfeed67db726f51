package orders

import (
	"errors"
	"fmt"
	"strings"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusDispatched Status = "dispatched"
)

// FilterAll is the view-only pseudo-status. It is never persisted.
const FilterAll = "All"

var ErrInvalidStatus = errors.New("invalid order status")

// Statuses lists the persisted values in display order.
var Statuses = []Status{
	StatusPending,
	StatusProcessing,
	StatusCompleted,
	StatusCancelled,
	StatusDispatched,
}

// FilterLabels is the filter bar: All followed by every status.
var FilterLabels = []string{
	FilterAll,
	string(StatusPending),
	string(StatusProcessing),
	string(StatusCompleted),
	string(StatusCancelled),
	string(StatusDispatched),
}

func ParseStatus(s string) (Status, error) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

func (s Status) Valid() bool {
	_, err := ParseStatus(string(s))
	return err == nil
}

// Label capitalises the first letter: "pending" -> "Pending".
func Label(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ValidFilter reports whether label is one of FilterLabels.
func ValidFilter(label string) bool {
	for _, l := range FilterLabels {
		if l == label {
			return true
		}
	}
	return false
}
