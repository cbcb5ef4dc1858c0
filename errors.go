package accelerator

import (
	"errors"
	"fmt"
)

// ErrClientGone is returned when the client disconnected or could not be written to.
var ErrClientGone = errors.New("client went away")

// ProtocolError is a violation of the http.Handler contract by the upstream handler.
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string {
	return "upstream protocol error: " + e.Reason
}

// ErrNoResponseStart is returned when the upstream handler returned without declaring a status.
var ErrNoResponseStart = &ProtocolError{Reason: "handler returned without writing a response"}

// UpstreamError is returned when the upstream handler panicked or aborted the response.
type UpstreamError struct {
	// Started is true if the status had already been sent to the client.
	Started bool
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Started {
		return fmt.Sprintf("upstream failed after response start: %v", e.Err)
	}
	return fmt.Sprintf("upstream failed: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
