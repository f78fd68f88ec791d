// ABOUTME: Network fault classification for remote API failures
// ABOUTME: Maps transport and HTTP errors into a small closed taxonomy
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
)

// FaultKind is the closed taxonomy every API failure is reduced to.
type FaultKind int

const (
	FaultUnknown FaultKind = iota
	FaultOffline
	FaultNetworkError
	FaultTimeout
	FaultServerError
	FaultUnauthorized
)

func (k FaultKind) String() string {
	switch k {
	case FaultOffline:
		return "offline"
	case FaultNetworkError:
		return "network_error"
	case FaultTimeout:
		return "timeout"
	case FaultServerError:
		return "server_error"
	case FaultUnauthorized:
		return "unauthorized"
	default:
		return "unknown"
	}
}

// Fault is a classified API failure. Status carries the HTTP status code
// when the server responded at all, zero otherwise.
type Fault struct {
	Kind   FaultKind
	Status int
	Err    error
}

func (f *Fault) Error() string {
	if f.Status != 0 {
		return fmt.Sprintf("%s (HTTP %d): %v", f.Kind, f.Status, f.Err)
	}
	return fmt.Sprintf("%s: %v", f.Kind, f.Err)
}

func (f *Fault) Unwrap() error { return f.Err }

// SilentlyRetryable reports whether a background refresh should swallow
// this fault and simply wait for the next scheduled tick. Unauthorized is
// never retried silently; it hands off to session-expiry handling instead.
func (f *Fault) SilentlyRetryable() bool {
	switch f.Kind {
	case FaultOffline, FaultNetworkError, FaultTimeout, FaultServerError:
		return true
	}
	return false
}

// Message returns the human-readable text surfaced for user-initiated
// operations.
func (f *Fault) Message() string {
	switch f.Kind {
	case FaultOffline:
		return "You appear to be offline. Check your connection and try again."
	case FaultNetworkError:
		return "Could not reach the server. Check your connection and try again."
	case FaultTimeout:
		return "The server took too long to respond. Try again in a moment."
	case FaultServerError:
		return fmt.Sprintf("The server reported an error (HTTP %d). Try again later.", f.Status)
	case FaultUnauthorized:
		return "Your session has expired. Run 'rally login' to sign in again."
	default:
		if f.Err != nil {
			return fmt.Sprintf("Unexpected error: %v", f.Err)
		}
		return "Unexpected error."
	}
}

// Classifier turns raw transport failures into Faults. Offline is an
// optional host-connectivity probe; when nil, connectivity loss shows up
// as a plain network error.
type Classifier struct {
	Offline func() bool
}

// Classify reduces a transport-level error (no HTTP response was received)
// to a Fault. Classification order: offline probe, deadline, transport
// rejection, unknown.
func (c *Classifier) Classify(err error) *Fault {
	var f *Fault
	if errors.As(err, &f) {
		return f
	}

	if c != nil && c.Offline != nil && c.Offline() {
		return &Fault{Kind: FaultOffline, Err: err}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &Fault{Kind: FaultTimeout, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Fault{Kind: FaultTimeout, Err: err}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &Fault{Kind: FaultNetworkError, Err: err}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return &Fault{Kind: FaultNetworkError, Err: err}
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return &Fault{Kind: FaultNetworkError, Err: err}
	}

	return &Fault{Kind: FaultUnknown, Err: err}
}

// ClassifyStatus reduces a non-2xx HTTP response to a Fault.
func ClassifyStatus(status int, body string) *Fault {
	err := fmt.Errorf("server returned %d: %s", status, body)
	switch {
	case status == 401:
		return &Fault{Kind: FaultUnauthorized, Status: status, Err: err}
	case status >= 500:
		return &Fault{Kind: FaultServerError, Status: status, Err: err}
	default:
		return &Fault{Kind: FaultUnknown, Status: status, Err: err}
	}
}

// IsUnauthorized reports whether err is a classified 401.
func IsUnauthorized(err error) bool {
	var f *Fault
	return errors.As(err, &f) && f.Kind == FaultUnauthorized
}
