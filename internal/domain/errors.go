package domain

import "fmt"

// InvalidInputError indicates a structurally malformed message reached the
// core. The request is rejected and no session state is mutated.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid input: %s", e.Reason)
}

// ErrInvalidInput creates an invalid input error for the given field.
func ErrInvalidInput(field, reason string) *InvalidInputError {
	return &InvalidInputError{Field: field, Reason: reason}
}

// UnknownTransitionError indicates the agent was asked to respond from a
// stage outside the machine. Callers downgrade it to a neutral reply with
// the stage held; it is never surfaced to the adapter.
type UnknownTransitionError struct {
	Stage Stage
}

func (e *UnknownTransitionError) Error() string {
	return fmt.Sprintf("unknown session transition from stage %s", e.Stage)
}

// CallbackDeliveryError reports that the terminal report could not be
// delivered after exhausting all attempts. It is logged and swallowed by the
// store; it never affects the session's concluded state.
type CallbackDeliveryError struct {
	SessionID string
	Attempts  int
	Err       error
}

func (e *CallbackDeliveryError) Error() string {
	return fmt.Sprintf("callback delivery for session %s failed after %d attempts: %v",
		e.SessionID, e.Attempts, e.Err)
}

func (e *CallbackDeliveryError) Unwrap() error {
	return e.Err
}
