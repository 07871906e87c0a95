package api

import "fmt"

// TransportError is a network-level failure: connection, timeout, TLS or a
// non-success HTTP status. Never retried; firmware payloads are large and
// the service makes no partial-retransmission guarantees.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.Err != nil && e.StatusCode != 0:
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: status %d", e.Op, e.StatusCode)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolError is a well-formed response missing something the workflow
// needs, e.g. a firmware POST accepted without any task identifier.
type ProtocolError struct {
	Resource string
	Reason   string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s: %s", e.Resource, e.Reason)
}
