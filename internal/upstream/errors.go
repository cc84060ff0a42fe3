package upstream

import (
	"errors"
	"fmt"
)

// Error is a failed call to a named boundary. Status is zero for transport
// failures and for calls rejected by an open circuit.
type Error struct {
	Boundary string
	Status   int
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d: %s", e.Boundary, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Boundary, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var ue *Error
	if errors.As(err, &ue) {
		return ue.Status
	}
	return 0
}
