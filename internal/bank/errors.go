package bank

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSearchCriteria is returned before any request is sent when
	// the search input is not a criterion or a collection of criteria.
	ErrInvalidSearchCriteria = errors.New("invalid search criteria")

	// ErrRemoteRequestFailed matches every *RemoteRequestFailedError.
	ErrRemoteRequestFailed = errors.New("remote request failed")
)

// RemoteRequestFailedError reports a transport error, a non-2xx status, or a
// response body that could not be decoded.
type RemoteRequestFailedError struct {
	Method string
	Path   string
	Status int
	Err    error
}

func (e *RemoteRequestFailedError) Error() string {
	switch {
	case e.Err != nil && e.Status != 0:
		return fmt.Sprintf("%s %s: status %d: %v", e.Method, e.Path, e.Status, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
	default:
		return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Path, e.Status)
	}
}

func (e *RemoteRequestFailedError) Unwrap() error { return e.Err }

func (e *RemoteRequestFailedError) Is(target error) bool {
	return target == ErrRemoteRequestFailed
}
