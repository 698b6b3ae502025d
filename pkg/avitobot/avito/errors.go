// Package avito – errors.go defines the transport error taxonomy.
//
// The client never retries; callers decide whether an error means "retry
// after a token refresh" (ErrUnauthorized), "try again next cycle"
// (ConnectionError) or "no usable data this cycle" (ProtocolError).
package avito

import (
	"errors"
	"fmt"
)

// ErrUnauthorized is the authorization failure signature: the API answered,
// but the response envelope is missing the key the endpoint is documented to
// return. Avito responds this way to expired tokens instead of a clean 401
// in some deployments, so a missing key and an explicit 401/403 are treated
// the same.
var ErrUnauthorized = errors.New("avito: unauthorized (expected envelope key missing)")

// ConnectionError is a network-level failure: DNS, dial, TLS, timeout.
// The caller retries at the next poll cycle, never inside the call.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("avito: %s: connection failed: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// ProtocolError is a malformed or unexpected response: invalid JSON, an
// unexpected status code, a body that does not match the endpoint contract.
// Treated by callers as "no data this cycle".
type ProtocolError struct {
	Op     string
	Detail string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("avito: %s: protocol error: %s", e.Op, e.Detail)
}
