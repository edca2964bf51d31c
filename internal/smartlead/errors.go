package smartlead

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrAuthRejected is returned when the credential is refused in every encoding or mid-run
	ErrAuthRejected = errors.New("auth rejected")
	// ErrRateLimitExhausted is returned after too many consecutive 429 responses
	ErrRateLimitExhausted = errors.New("rate limit retries exhausted")
	// ErrUpstreamUnavailable is returned on 5xx responses and transport failures
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrMalformedResponse is returned on unexpected statuses and unparsable bodies
	ErrMalformedResponse = errors.New("malformed response")
)

// APIError carries the diagnostic context of a failed upstream request.
// It unwraps to one of the sentinel errors above.
type APIError struct {
	Kind       error
	StatusCode int
	Offset     int
	Message    string
	Body       string // truncated
}

func (e *APIError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Kind.Error())
	fmt.Fprintf(&sb, " (status %d, offset %d)", e.StatusCode, e.Offset)
	if e.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Message)
	}
	if e.Body != "" {
		sb.WriteString(" body: ")
		sb.WriteString(e.Body)
	}
	return sb.String()
}

func (e *APIError) Unwrap() error {
	return e.Kind
}

// IsAuthError reports whether err (or any error in its chain) is an auth rejection.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrAuthRejected)
}

// authSignals are body fragments the upstream uses for a bad credential
var authSignals = []string{"invalid token", "jwt malformed", "jwt expired"}

func signalsAuthFailure(text string) bool {
	lc := strings.ToLower(text)
	for _, s := range authSignals {
		if strings.Contains(lc, s) {
			return true
		}
	}
	return false
}
