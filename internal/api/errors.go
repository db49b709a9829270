package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind is the closed classification of request failures. Callers
// switch on the kind to decide retry/abort/drop semantics instead of
// probing status codes at every call site.
type ErrorKind int

const (
	// KindBadRequest covers non-retryable 4xx responses other than the
	// kinds below (400, 405, 422, ...).
	KindBadRequest ErrorKind = iota
	// KindAuth covers 401/403: missing or invalid credentials or scope.
	// Fatal for the session; never retried.
	KindAuth
	// KindNotFound covers 404. Callers treat it as "resource gone", not
	// as a loop failure.
	KindNotFound
	// KindRateLimit covers 429. Transient.
	KindRateLimit
	// KindServer covers 5xx. Transient.
	KindServer
	// KindTimeout covers connect/read timeouts and other transport
	// failures. Transient.
	KindTimeout
	// KindParse covers malformed payloads and records.
	KindParse
)

// String returns the kind's wire-friendly name.
func (k ErrorKind) String() string {
	switch k {
	case KindBadRequest:
		return "bad_request"
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not_found"
	case KindRateLimit:
		return "rate_limit"
	case KindServer:
		return "server"
	case KindTimeout:
		return "timeout"
	case KindParse:
		return "parse"
	default:
		return "unknown"
	}
}

// APIError represents a failed request against the Trading212 API.
type APIError struct {
	Kind       ErrorKind
	StatusCode int    // zero for transport-level failures
	Message    string // broker error message, or status text
	Body       []byte // raw response body, nil for transport failures
	Err        error  // underlying transport error, if any
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("trading212 %s error: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("trading212 api error %d (%s): %s", e.StatusCode, e.Kind, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

// IsRetryable returns true if the error should trigger a retry.
func (e *APIError) IsRetryable() bool {
	switch e.Kind {
	case KindRateLimit, KindServer, KindTimeout:
		return true
	}
	return false
}

// classifyStatus maps an HTTP status onto the closed error kinds.
func classifyStatus(code int) ErrorKind {
	switch {
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return KindAuth
	case code == http.StatusNotFound:
		return KindNotFound
	case code == http.StatusTooManyRequests:
		return KindRateLimit
	case code >= 500:
		return KindServer
	default:
		return KindBadRequest
	}
}

// errorPayload is the broker's error body. Drafts of the API disagree on
// the field name, so both are read.
type errorPayload struct {
	Message      string `json:"message"`
	ErrorMessage string `json:"errorMessage"`
}

// newStatusError builds an APIError from a non-2xx response, preferring
// the broker's error message and falling back to raw body text.
func newStatusError(code int, body []byte) *APIError {
	msg := http.StatusText(code)
	var payload errorPayload
	if err := json.Unmarshal(body, &payload); err == nil {
		switch {
		case payload.Message != "":
			msg = payload.Message
		case payload.ErrorMessage != "":
			msg = payload.ErrorMessage
		}
	} else if len(body) > 0 {
		msg = string(body)
	}
	return &APIError{
		Kind:       classifyStatus(code),
		StatusCode: code,
		Message:    msg,
		Body:       body,
	}
}

// newTransportError wraps a transport-level failure (dial, TLS, read,
// deadline) as a timeout-class transient error.
func newTransportError(err error) *APIError {
	return &APIError{
		Kind:    KindTimeout,
		Message: err.Error(),
		Err:     err,
	}
}

// AsAPIError unwraps err to an *APIError if one is in the chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsNotFound reports whether err is a 404 from the broker.
func IsNotFound(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Kind == KindNotFound
}

// IsAuth reports whether err is a credentials/scope failure.
func IsAuth(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Kind == KindAuth
}
