// Package wherrors defines the runtime's error taxonomy as kinds, not Go
// types: every subsystem boundary classifies a failure into one of eight
// kinds and looks up its policy and user-facing message here, the same
// shape as the teacher's BridgeStateHumanErrors map, keyed by our own
// Kind enum instead of Matrix bridge state codes.
package wherrors

import "errors"

// Kind is one of the eight error-handling policy buckets (§7).
type Kind string

const (
	KindTransientIO          Kind = "transient_io"
	KindValidation           Kind = "validation"
	KindIsolationViolation   Kind = "isolation_violation"
	KindMalformedStructured  Kind = "malformed_structured_output"
	KindSensitiveTopicBlocked Kind = "sensitive_topic_blocked"
	KindPrivacyBlocked       Kind = "privacy_blocked"
	KindModerationTimeout    Kind = "moderation_timeout"
	KindFatal                Kind = "fatal_config"
)

func (k Kind) Valid() bool {
	switch k {
	case KindTransientIO, KindValidation, KindIsolationViolation, KindMalformedStructured,
		KindSensitiveTopicBlocked, KindPrivacyBlocked, KindModerationTimeout, KindFatal:
		return true
	default:
		return false
	}
}

// HumanMessages gives a short user-visible message for the kinds that are
// ever surfaced to a user; kinds absent here are never shown (they resolve
// to a character's configured default error line, or are silently dropped).
var HumanMessages = map[Kind]string{
	KindValidation:        "That message couldn't be sent as-is.",
	KindModerationTimeout: "",
}

// Error carries a Kind alongside the underlying cause, so callers can
// classify with errors.As without string-matching messages.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New wraps err with a Kind. A nil err still produces a classifiable
// sentinel, useful at validation boundaries that have no underlying cause.
func New(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// Is reports whether err (or anything it wraps) carries the given Kind.
func Is(err error, kind Kind) bool {
	var we *Error
	if errors.As(err, &we) {
		return we.Kind == kind
	}
	return false
}

// KindOf extracts the Kind from err, returning ok=false if err isn't a
// classified wherrors.Error.
func KindOf(err error) (Kind, bool) {
	var we *Error
	if errors.As(err, &we) {
		return we.Kind, true
	}
	return "", false
}
