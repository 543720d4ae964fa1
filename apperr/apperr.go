package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed, status-aware application error.
type Error struct {
	Code    string         `json:"code"`
	Message string         `json:"message,omitempty"`
	Status  int            `json:"-"`
	Fields  map[string]any `json:"fields,omitempty"`
	Err     error          `json:"-"`
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	return "error"
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Newf builds on a sentinel with a formatted message, keeping its code and status.
func Newf(base *Error, format string, args ...any) *Error {
	if base == nil {
		base = ErrInternal
	}
	e := *base
	e.Message = fmt.Sprintf(format, args...)
	return &e
}

func Wrap(err error, base *Error, message string) *Error {
	if err == nil {
		return nil
	}
	if base == nil {
		base = ErrInternal
	}
	e := *base
	if message != "" {
		e.Message = message
	}
	e.Err = err
	return &e
}

func WithFields(base *Error, fields map[string]any) *Error {
	if base == nil {
		return nil
	}
	e := *base
	e.Fields = fields
	return &e
}

func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) && e != nil {
		return e, true
	}
	return nil, false
}

func Status(err error) int {
	if e, ok := As(err); ok && e.Status != 0 {
		return e.Status
	}
	return http.StatusInternalServerError
}

func Code(err error) string {
	if e, ok := As(err); ok && e.Code != "" {
		return e.Code
	}
	return "internal_error"
}

func Message(err error) string {
	if e, ok := As(err); ok {
		if e.Message != "" {
			return e.Message
		}
		if e.Err != nil {
			return e.Err.Error()
		}
		return e.Code
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

func Payload(err error) map[string]any {
	if err == nil {
		return map[string]any{}
	}
	if e, ok := As(err); ok {
		payload := map[string]any{
			"code":    Code(e),
			"message": Message(e),
		}
		if len(e.Fields) > 0 {
			payload["fields"] = e.Fields
		}
		return payload
	}
	return map[string]any{
		"code":    "internal_error",
		"message": err.Error(),
	}
}

var (
	ErrBadRequest  = New("bad_request", http.StatusBadRequest, "")
	ErrValidation  = New("validation_error", http.StatusBadRequest, "")
	ErrNotFound    = New("not_found", http.StatusNotFound, "")
	ErrUnknownSite = New("unknown_site", http.StatusNotFound, "")
	ErrSimulation  = New("simulation_failed", http.StatusInternalServerError, "simulation failed")
	ErrInternal    = New("internal_error", http.StatusInternalServerError, "")
	ErrUnavailable = New("service_unavailable", http.StatusServiceUnavailable, "")
	ErrDatabase    = New("database_error", http.StatusInternalServerError, "")
)
