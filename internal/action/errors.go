package action

import "errors"

// Failure taxonomy shared by the executor, session and browser packages.
// Callers match with errors.Is; producers wrap with fmt.Errorf("...: %w").
var (
	// ErrInvalidInput marks a malformed locator or request, caught before the session is touched
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidParameters marks a request missing a parameter its kind requires
	ErrInvalidParameters = errors.New("invalid parameters")
	// ErrElementNotFound means the bounded wait expired with no matching element
	ErrElementNotFound = errors.New("element not found")
	// ErrSessionUnavailable means there is no live browser session
	ErrSessionUnavailable = errors.New("session unavailable")
	// ErrExecution wraps a failure of the underlying gesture against the live document
	ErrExecution = errors.New("execution error")
	// ErrUnsupported is returned by drivers that cannot perform a kind
	ErrUnsupported = errors.New("unsupported action")
	// ErrSessionStart means the browser could not be launched or connected
	ErrSessionStart = errors.New("session start failed")
)
