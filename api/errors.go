// ABOUTME: Error types returned by the contacts REST client
// ABOUTME: Every failed call surfaces as RequestFailedError naming the operation
package api

import (
	"errors"
	"fmt"
)

// ErrNotFound is wrapped by RequestFailedError when the server answers 404.
var ErrNotFound = errors.New("contact not found")

// Operation names carried by RequestFailedError.
const (
	OpFetchContacts = "fetch contacts"
	OpFetchContact  = "fetch contact"
	OpCreateContact = "create contact"
	OpUpdateContact = "update contact"
	OpDeleteContact = "delete contact"
	OpSearch        = "search contacts"
	OpSort          = "sort contacts"
	OpTotalCount    = "fetch total count"
	OpRecent        = "fetch recent contacts"
	OpExport        = "export contacts"
)

// RequestFailedError reports a call that did not succeed, whether the cause was
// the network, a non-2xx status or an undecodable body.
type RequestFailedError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *RequestFailedError) Error() string {
	return "failed to " + e.Op
}

func (e *RequestFailedError) Unwrap() error {
	return e.Err
}

// Detail includes the status code and cause, for logs.
func (e *RequestFailedError) Detail() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("failed to %s: status %d: %v", e.Op, e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("failed to %s: status %d", e.Op, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
	}
	return e.Error()
}

func failed(op string, status int, err error) *RequestFailedError {
	return &RequestFailedError{Op: op, StatusCode: status, Err: err}
}
