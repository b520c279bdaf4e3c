package radarcord

import (
	"errors"
	"fmt"
)

const defaultErrorMessage = "Something went wrong with radarcord!"

// Sentinel errors, reachable with errors.Is through *Error
var (
	ErrNotReady           = errors.New("client is not ready")
	ErrWebhookUnsupported = errors.New("messenger does not support webhooks")
)

// Error is the single failure kind raised by the client and the notifier.
// StatusCode and Body are set when the failure comes from a non-2xx response.
type Error struct {
	Message    string
	StatusCode int
	Body       string
	Err        error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = defaultErrorMessage
	}
	return "[RADARCORD] " + msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(cause error, format string, args ...interface{}) *Error {
	return &Error{
		Message: fmt.Sprintf(format, args...),
		Err:     cause,
	}
}

func notReadyError() *Error {
	return newError(ErrNotReady, "The client is not ready, please try this again in your ready event!")
}

func badStatusError(status int, body []byte) *Error {
	return &Error{
		Message:    fmt.Sprintf("Request code %d: %s", status, string(body)),
		StatusCode: status,
		Body:       string(body),
	}
}

// ArgumentError reports programmer misuse at construction time, such as a nil
// connection or an empty channel id. It is never returned for runtime failures.
type ArgumentError struct {
	Arg      string
	Expected string
	Got      string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %s: expected %s, got %s instead", e.Arg, e.Expected, e.Got)
}
