package failure

import (
	"errors"
	"fmt"
	"strings"
)

// Phase identifies the lifecycle step an error belongs to.
type Phase string

const (
	PhaseConfig  Phase = "config"
	PhaseAuth    Phase = "auth"
	PhaseSession Phase = "session"
	PhaseMessage Phase = "message"
	PhaseCleanup Phase = "cleanup"
)

// Error represents a stable, phase-categorized connector failure.
type Error struct {
	Phase Phase
	// Field names the missing or invalid configuration field (config phase only).
	Field string
	// Code is the upstream error code when the remote side reported one.
	Code        string
	Description string
	// Status is the HTTP status of the failed exchange, zero when the request
	// never produced a response.
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(string(e.Phase))
	b.WriteString(" error")
	if e.Status > 0 {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}

	detail := e.Description
	if detail == "" && e.Err != nil {
		detail = e.Err.Error()
	}
	if e.Code != "" && e.Code != detail {
		b.WriteString(": ")
		b.WriteString(e.Code)
	}
	if detail != "" {
		b.WriteString(": ")
		b.WriteString(detail)
	}

	return b.String()
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Config reports a missing or invalid configuration field.
func Config(field string, description string) error {
	return &Error{Phase: PhaseConfig, Field: field, Description: description}
}

// Auth reports a failed token exchange.
func Auth(code string, description string, status int, err error) error {
	return &Error{Phase: PhaseAuth, Code: code, Description: description, Status: status, Err: err}
}

// Session reports a failed session open.
func Session(description string, status int, err error) error {
	return &Error{Phase: PhaseSession, Description: description, Status: status, Err: err}
}

// Message reports a failed turn exchange.
func Message(description string, status int, err error) error {
	return &Error{Phase: PhaseMessage, Description: description, Status: status, Err: err}
}

// Cleanup reports a failed session close. Callers log these and move on.
func Cleanup(description string, err error) error {
	return &Error{Phase: PhaseCleanup, Description: description, Err: err}
}

// PhaseOf returns the phase of a categorized error, or "" when err carries none.
func PhaseOf(err error) Phase {
	if err == nil {
		return ""
	}

	var categorized *Error
	if errors.As(err, &categorized) {
		return categorized.Phase
	}

	return ""
}

// Is reports whether err is a categorized error of the given phase.
func Is(err error, phase Phase) bool {
	return PhaseOf(err) == phase
}

// FieldOf returns the configuration field named by a config-phase error.
func FieldOf(err error) string {
	var categorized *Error
	if errors.As(err, &categorized) {
		return categorized.Field
	}
	return ""
}
