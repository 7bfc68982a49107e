package ai

import (
	"fmt"
)

// UnsupportedProviderError is returned when a ProviderKind has no registered
// adapter, or when an adapter does not implement the requested capability
// (for example embeddings on a backend without an embeddings endpoint).
// It is fatal: the call cannot succeed by retrying.
type UnsupportedProviderError struct {
	Kind    ProviderKind
	Feature string // empty for "unknown provider kind", else the missing capability
}

func (e *UnsupportedProviderError) Error() string {
	if e.Feature != "" {
		return fmt.Sprintf("provider %q does not support %s", e.Kind, e.Feature)
	}
	return fmt.Sprintf("unsupported provider kind %q", e.Kind)
}

// MissingCredentialError is returned at construction time when no API key was
// supplied explicitly and the provider's environment variable is not set.
type MissingCredentialError struct {
	EnvVar string // the variable that was consulted; empty for ProviderCustom
}

func (e *MissingCredentialError) Error() string {
	if e.EnvVar == "" {
		return "no API key provided"
	}
	return fmt.Sprintf("no API key provided and %s environment variable is not set", e.EnvVar)
}

// MalformedResponseError indicates the provider answered with a 2xx status
// but the body could not be parsed or lacked required fields. Body holds a
// truncated preview of the offending payload for debugging.
type MalformedResponseError struct {
	Reason string
	Body   string
	Err    error // underlying decode error, if any
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed provider response: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed provider response: %s", e.Reason)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// StreamError is an in-band error frame delivered by the provider while a
// stream was in progress. It terminates the stream at the failing frame;
// chunks yielded before it remain valid.
type StreamError struct {
	Code    string // provider error type, e.g. "overloaded_error"
	Message string
}

func (e *StreamError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("provider stream error (%s): %s", e.Code, e.Message)
	}
	return fmt.Sprintf("provider stream error: %s", e.Message)
}

// HTTPError is a non-2xx provider response. Message is the human-readable
// detail extracted from the provider's error envelope when present; Body is
// a truncated copy of the raw payload.
type HTTPError struct {
	StatusCode int
	Message    string
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("provider returned status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("provider returned status %d: %s", e.StatusCode, e.Body)
}

// Temporary reports whether the status is worth retrying: 429 rate limits
// and 5xx server-side failures.
func (e *HTTPError) Temporary() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

// TimeoutError indicates a network operation exceeded its deadline. It is
// distinct from provider-reported errors and is caller-retriable.
type TimeoutError struct {
	Op  string // "connect", "request", "stream read"
	Err error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out: %v", e.Op, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }
