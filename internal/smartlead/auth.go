package smartlead

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// AuthScheme is a candidate encoding of the credential in the Authorization header
type AuthScheme string

const (
	SchemeRaw    AuthScheme = "raw"
	SchemeBearer AuthScheme = "bearer"
)

// AuthHeader is a concrete Authorization header value for one scheme.
// Once negotiated it is reused unchanged for every request of a run.
type AuthHeader struct {
	Scheme AuthScheme
	Value  string
}

// Apply sets the Authorization header on req
func (h AuthHeader) Apply(req *http.Request) {
	req.Header.Set("Authorization", h.Value)
}

// String hides the credential
func (h AuthHeader) String() string {
	return string(h.Scheme)
}

// NormalizeCredential trims the credential and strips a pasted "Bearer " prefix
func NormalizeCredential(credential string) string {
	credential = strings.TrimSpace(credential)
	if len(credential) > 7 && strings.EqualFold(credential[:7], "bearer ") {
		credential = strings.TrimSpace(credential[7:])
	}
	return credential
}

// CandidateHeaders returns the encodings to try, in order: raw value, then "Bearer <value>"
func CandidateHeaders(credential string) []AuthHeader {
	token := NormalizeCredential(credential)
	return []AuthHeader{
		{Scheme: SchemeRaw, Value: token},
		{Scheme: SchemeBearer, Value: "Bearer " + token},
	}
}

// Prober issues a minimal request with the given header and returns nil
// when the endpoint answers with a success envelope.
type Prober interface {
	Probe(ctx context.Context, h AuthHeader) error
}

// ProberFunc adapts a function to the Prober interface
type ProberFunc func(ctx context.Context, h AuthHeader) error

// Probe calls f(ctx, h)
func (f ProberFunc) Probe(ctx context.Context, h AuthHeader) error {
	return f(ctx, h)
}

// Negotiate tries each candidate header in order and returns the first one the
// prober accepts. A failing candidate only moves on to the next one; the
// negotiation fails with ErrAuthRejected once every candidate has failed.
func Negotiate(ctx context.Context, credential string, p Prober) (AuthHeader, error) {
	if NormalizeCredential(credential) == "" {
		return AuthHeader{}, fmt.Errorf("%w: empty credential", ErrAuthRejected)
	}

	var reasons []string
	for _, candidate := range CandidateHeaders(credential) {
		err := p.Probe(ctx, candidate)
		if err == nil {
			return candidate, nil
		}
		if ctx.Err() != nil {
			return AuthHeader{}, fmt.Errorf("auth negotiation aborted: %w", ctx.Err())
		}
		reasons = append(reasons, fmt.Sprintf("%s: %v", candidate.Scheme, err))
	}

	return AuthHeader{}, fmt.Errorf("%w: no authorization format accepted (%s)",
		ErrAuthRejected, strings.Join(reasons, "; "))
}
