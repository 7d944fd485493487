package client

import "fmt"

// Kind classifies a failed portal call.
type Kind string

const (
	// KindForbidden is an authorization failure (HTTP 403) on a privileged
	// call.
	KindForbidden Kind = "forbidden"
	// KindHTTP is any other non-success status.
	KindHTTP Kind = "http"
	// KindBusinessRule is an HTTP success whose body reports success=false;
	// the message is the server's own.
	KindBusinessRule Kind = "business-rule"
	// KindMalformedResponse is a response whose shape violates the expected
	// contract, e.g. a missing items array.
	KindMalformedResponse Kind = "malformed-response"
	// KindNonJSON is a content-type mismatch; the message is the raw body.
	KindNonJSON Kind = "non-json"
)

// Error is the failure type every client operation returns. Callers branch on
// Kind; the message is ready to show to the user.
type Error struct {
	Kind       Kind
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindForbidden:
		return "you don't have permission"
	case KindHTTP:
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	default:
		return e.Message
	}
}

// IsKind reports whether err is a client Error of the given kind.
func IsKind(err error, kind Kind) bool {
	ce, ok := err.(*Error)
	return ok && ce.Kind == kind
}

func forbiddenError(message string) *Error {
	return &Error{Kind: KindForbidden, StatusCode: 403, Message: message}
}

func httpError(status int) *Error {
	return &Error{Kind: KindHTTP, StatusCode: status, Message: fmt.Sprintf("HTTP %d", status)}
}

func businessRuleError(message string) *Error {
	return &Error{Kind: KindBusinessRule, Message: message}
}

func malformedError(message string) *Error {
	return &Error{Kind: KindMalformedResponse, Message: message}
}

func nonJSONError(body string) *Error {
	return &Error{Kind: KindNonJSON, Message: body}
}
