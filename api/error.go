package api

import "fmt"

// Error is the only failure type API operations expose to callers. It carries
// a human-readable message describing what was missing or invalid; callers
// must not parse it to drive logic beyond display.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func errorf(format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}
