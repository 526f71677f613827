// Package optimizer searches for skill loadouts maximizing simulated
// performance under a skill-point budget and target thresholds.
package optimizer

import "fmt"

// Error represents an error that occurs while preparing or running an
// optimization session.
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}
