// ABOUTME: Network error taxonomy for the remote schedule client.
// ABOUTME: Every failure is a *NetworkError tagged with a Kind for errors.As.
package remote

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a remote failure.
type ErrorKind string

const (
	KindInvalidURL ErrorKind = "invalid_url"
	KindAuth       ErrorKind = "auth"
	KindTransport  ErrorKind = "transport"
	KindHTTPStatus ErrorKind = "http_status"
	KindDecode     ErrorKind = "decode"
	KindRemote     ErrorKind = "remote"
	KindTooLarge   ErrorKind = "too_large"
)

// NetworkError describes a failed remote call. It is never retried by the
// client; callers decide.
type NetworkError struct {
	Kind       ErrorKind
	Op         string
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	msg := fmt.Sprintf("%s %s: %s", e.Op, e.Kind, e.URL)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a *NetworkError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var ne *NetworkError
	return errors.As(err, &ne) && ne.Kind == kind
}
