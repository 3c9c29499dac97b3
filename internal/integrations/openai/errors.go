package openai

import (
	"errors"
	"fmt"
	"net/http"
)

// GatewayErrorKind classifies a gateway fault so callers can decide retry
// policy themselves. The gateway never retries on their behalf.
type GatewayErrorKind string

const (
	// KindRateLimited marks a provider rate-limit signal (HTTP 429).
	KindRateLimited GatewayErrorKind = "RATE_LIMITED"
	// KindProviderFault marks any other provider-reported or transport fault.
	KindProviderFault GatewayErrorKind = "PROVIDER_FAULT"
	// KindNoResponse marks a well-formed provider reply that carried no
	// usable payload. This is a program-level condition, distinct from a
	// fault the provider reported itself.
	KindNoResponse GatewayErrorKind = "NO_RESPONSE"
)

// GatewayError is the tagged fault type returned by every gateway operation.
type GatewayError struct {
	Kind  GatewayErrorKind
	Model string
	Err   error
}

func (e *GatewayError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("openai: %s (model %s)", e.Kind, e.Model)
	}
	return fmt.Sprintf("openai: %s (model %s): %v", e.Kind, e.Model, e.Err)
}

func (e *GatewayError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// HTTPStatusError captures non-2xx upstream responses with status-aware context.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// classify wraps an upstream error in a GatewayError, mapping HTTP 429 to
// KindRateLimited and everything else to KindProviderFault.
func classify(model string, err error) *GatewayError {
	kind := KindProviderFault
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusTooManyRequests {
		kind = KindRateLimited
	}
	return &GatewayError{Kind: kind, Model: model, Err: err}
}
