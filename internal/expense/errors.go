package expense

import (
	"errors"
	"net/http"
)

// Kind classifies a failure for the boundary layer. Callers use it to decide
// whether to fix their input, resize an upload, retry, or give up.
type Kind string

const (
	// KindInvalidInput means the caller must correct the request.
	KindInvalidInput Kind = "invalid_input"
	// KindPayloadTooLarge means the uploaded asset exceeds the hard limit.
	KindPayloadTooLarge Kind = "payload_too_large"
	// KindUpstream covers generation-backend and OCR-engine failures,
	// including output that fails extraction or validation. Transient.
	KindUpstream Kind = "upstream"
	// KindEmptyOCR means the bill image yielded no legible text.
	KindEmptyOCR Kind = "empty_ocr"
	// KindInternal is anything unanticipated.
	KindInternal Kind = "internal"
)

// Error carries a caller-facing message and a classification. The wrapped
// cause is kept for logs only and never reaches the caller.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func invalidInput(message string) *Error {
	return &Error{Kind: KindInvalidInput, Message: message}
}

func payloadTooLarge(message string) *Error {
	return &Error{Kind: KindPayloadTooLarge, Message: message}
}

func upstream(message string, err error) *Error {
	return &Error{Kind: KindUpstream, Message: message, Err: err}
}

func emptyOCR(message string) *Error {
	return &Error{Kind: KindEmptyOCR, Message: message}
}

func internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf classifies any error. Unclassified errors are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// CallerMessage returns the message safe to surface to the caller.
func CallerMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "Internal server error"
}

// HTTPStatus maps a kind to its response status.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindPayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case KindUpstream:
		return http.StatusBadGateway
	case KindEmptyOCR:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
