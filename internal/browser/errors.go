package browser

import (
	"context"
	"errors"
	"net"
	"strings"
)

// Failure taxonomy. Every primitive maps library-level failures onto one of
// these so callers can match with errors.Is; the underlying cause text is
// always preserved in the wrapped message.
var (
	// ErrNotFound means no browser executable could be located.
	ErrNotFound = errors.New("browser executable not found")
	// ErrLaunchFailed means the browser process could not be started or connected to.
	ErrLaunchFailed = errors.New("browser launch failed")
	// ErrTimeout means a navigation, selector or mark wait exceeded its bound.
	ErrTimeout = errors.New("timeout")
	// ErrElementNotFound means no element matched the selector within the wait bound.
	ErrElementNotFound = errors.New("element not found")
	// ErrInteractionFailed means the element was found but the interaction failed.
	ErrInteractionFailed = errors.New("interaction failed")
	// ErrScriptError means the evaluated script threw or produced a non-serializable value.
	ErrScriptError = errors.New("script error")
	// ErrAuditFailed means the audit engine errored or returned a malformed report.
	ErrAuditFailed = errors.New("audit failed")
	// ErrUpstream wraps any other automation-library failure.
	ErrUpstream = errors.New("upstream browser error")
)

// isConnectionError reports whether err indicates the browser connection is
// gone and the session should be discarded and relaunched.
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, net.ErrClosed) {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "use of closed network connection") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "connection reset by peer") ||
		strings.Contains(msg, "websocket: close") ||
		strings.Contains(msg, "eof")
}

// isTimeout reports whether err is a deadline expiry from a bounded wait.
func isTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
