package realtime

import "fmt"

// TransportError is a channel-level failure (connect, send, receive).
// Fatal for the exchange; there is no reconnect or retry.
type TransportError struct {
	Stage string
	Err   error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("realtime transport (%s): %v", e.Stage, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RemoteProtocolError is an error event reported by the remote side.
type RemoteProtocolError struct {
	Code    string
	Message string
}

func (e *RemoteProtocolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("realtime protocol error [%s]: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("realtime protocol error: %s", e.Message)
}

// EmptyResponseError means a well-formed session produced zero audio
// bytes. Surfaced distinctly from protocol errors: it is a logic
// fault, not a network one.
type EmptyResponseError struct{}

func (e *EmptyResponseError) Error() string {
	return "realtime session completed with no audio"
}
