package pesapal

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Xebarter/Clevers-Website-sub000/pkg/payload"
)

const (
	ErrCodeTimeout           = "TIMEOUT"
	ErrCodeNetwork           = "NETWORK_ERROR"
	ErrCodeMissingTrackingID = "MISSING_TRACKING_ID"
	ErrCodeMissingToken      = "MISSING_TOKEN"
	ErrCodeInvalidResponse   = "INVALID_RESPONSE"
)

var (
	ErrAuthConfiguration = errors.New("AUTH_CONFIGURATION")
	ErrAuthRequest       = errors.New("AUTH_REQUEST_FAILED")
	ErrGateway           = errors.New("GATEWAY_ERROR")
	ErrInvalidRequest    = errors.New("INVALID_REQUEST")
)

// Error describes a failed exchange with the gateway. Kind is ErrAuthRequest or ErrGateway;
// Code, Type and Message carry the gateway's own error object when it sent one.
type Error struct {
	Kind       error
	StatusCode int
	Code       string
	Type       string
	Message    string
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())

	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (http %d)", e.StatusCode)
	}

	var details []string
	for _, d := range []string{e.Type, e.Code, e.Message} {
		if d != "" {
			details = append(details, d)
		}
	}

	if len(details) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(details, " / "))
	}

	return b.String()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}

	return []error{e.Kind, e.Err}
}

func transportError(kind error, err error) *Error {
	code := ErrCodeNetwork
	if errors.Is(err, context.DeadlineExceeded) {
		code = ErrCodeTimeout
	}

	return &Error{Kind: kind, Code: code, Message: err.Error(), Err: err}
}

// responseError builds an Error from a gateway reply. Pesapal nests failures under an
// "error" object; some deployments put message/status at the top level instead.
func responseError(kind error, statusCode int, body map[string]any) *Error {
	e := &Error{Kind: kind, StatusCode: statusCode}

	if obj, ok := payload.Object(body, "error"); ok {
		e.Type = payload.String(obj, "error_type", "errorType", "type")
		e.Code = payload.String(obj, "code")
		e.Message = payload.String(obj, "message")
	}

	if e.Message == "" {
		e.Message = payload.String(body, "message", "error", "title")
	}

	return e
}

// gatewayErrorObject reports whether body carries a populated error object. Successful
// Pesapal replies include "error" with all fields null.
func gatewayErrorObject(body map[string]any) bool {
	obj, ok := payload.Object(body, "error")
	if !ok {
		return payload.String(body, "error") != ""
	}

	return payload.String(obj, "code") != "" || payload.String(obj, "message") != "" ||
		payload.String(obj, "error_type", "errorType") != ""
}

func configurationError(missing string) error {
	return fmt.Errorf("%w: %s is not set", ErrAuthConfiguration, missing)
}
