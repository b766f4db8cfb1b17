package stoat

import (
	"errors"
	"fmt"
	"time"
)

// Kind discriminates the three top-level error categories a caller can
// observe from this module, per the error taxonomy: semantic failures
// returned by the server (Api), transport/protocol failures (Transport),
// and frames that failed to decode (Decode).
type Kind int

const (
	KindAPI Kind = iota
	KindTransport
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindAPI:
		return "api"
	case KindTransport:
		return "transport"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Error is the error type returned by every fallible operation in this
// module. It wraps either an ApiError (Kind == KindAPI), an underlying
// transport error (Kind == KindTransport), or a decode failure
// (Kind == KindDecode).
type Error struct {
	Kind Kind
	API  *APIError // set iff Kind == KindAPI
	Err  error     // underlying cause for Transport/Decode, or nil
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindAPI:
		return "stoat: api: " + e.API.Error()
	case KindTransport:
		return fmt.Sprintf("stoat: transport: %v", e.Err)
	case KindDecode:
		return fmt.Sprintf("stoat: decode: %v", e.Err)
	default:
		return "stoat: unknown error"
	}
}

func (e *Error) Unwrap() error {
	if e.Kind == KindAPI {
		return e.API
	}
	return e.Err
}

// NewTransportError wraps err as a Transport-kind Error.
func NewTransportError(err error) *Error {
	return &Error{Kind: KindTransport, Err: err}
}

// NewDecodeError wraps err as a Decode-kind Error.
func NewDecodeError(err error) *Error {
	return &Error{Kind: KindDecode, Err: err}
}

// NewAPIError wraps api as an Api-kind Error.
func NewAPIError(api *APIError) *Error {
	return &Error{Kind: KindAPI, API: api}
}

// RetryAfter constructs the cooperative rate-limit signal: an Api-kind
// Error whose APIError.Type is "RetryAfter". The governor (package
// ratelimit) and the HTTP facade both produce this; it is never slept on
// automatically (spec §4.B, §7).
func RetryAfter(d time.Duration) *Error {
	return NewAPIError(&APIError{Type: "RetryAfter", Duration: d})
}

// APIError is the tagged union of semantic failures the server (or the
// local governor/validators, which fail in the same shape) can report.
// Only the fields relevant to Type are populated; the rest are zero.
//
// The full variant set mirrors the original implementation's
// volty-http/src/error.rs rather than the smaller set spec.md enumerates
// inline, per SPEC_FULL.md §12.
type APIError struct {
	Type string `json:"type"`

	// MissingPermission, MissingUserPermission
	Permission string `json:"permission,omitempty"`

	// Unknown{User,Channel,Message,Server,Attachment} reuse Type to carry
	// which entity kind was missing; no extra field needed.

	// FailedValidation
	ValidationErrors map[string]string `json:"errors,omitempty"`

	// RetryAfter
	Duration time.Duration `json:"retry_after,omitempty"`

	// TooMany{Attachments,Replies,Channels,Embeds,Emoji,Roles,Servers}, GroupTooLarge
	Max int `json:"max,omitempty"`

	// DatabaseError
	Operation string `json:"operation,omitempty"`
	With      string `json:"with,omitempty"`
}

func (e *APIError) Error() string {
	switch e.Type {
	case "MissingPermission", "MissingUserPermission":
		return fmt.Sprintf("%s: %s", e.Type, e.Permission)
	case "FailedValidation":
		return fmt.Sprintf("FailedValidation: %v", e.ValidationErrors)
	case "RetryAfter":
		return fmt.Sprintf("RetryAfter: %s", e.Duration)
	case "DatabaseError":
		return fmt.Sprintf("DatabaseError: %s on %s", e.Operation, e.With)
	case "":
		return "LabelMe"
	default:
		return e.Type
	}
}

// Is reports whether target names the same APIError.Type, so callers can
// write errors.Is(err, &stoat.APIError{Type: "UsernameTaken"}).
func (e *APIError) Is(target error) bool {
	var t *APIError
	if errors.As(target, &t) {
		return t.Type == e.Type
	}
	return false
}

// Well-known APIError.Type values. Not an exhaustive enum at the type
// level (the wire union is open-ended, per §9's open question about
// accepting unknown tags) but these are the ones this module's own
// validators and governor raise directly, plus the entity/state errors
// named in spec §7.
const (
	ErrTypeLabelMe                   = "LabelMe"
	ErrTypeNotElevated                = "NotElevated"
	ErrTypeNotPrivileged              = "NotPrivileged"
	ErrTypeNotOwner                   = "NotOwner"
	ErrTypeCannotGiveMissingPerms     = "CannotGiveMissingPermissions"
	ErrTypeUnknownUser                = "UnknownUser"
	ErrTypeUnknownChannel             = "UnknownChannel"
	ErrTypeUnknownMessage             = "UnknownMessage"
	ErrTypeUnknownServer              = "UnknownServer"
	ErrTypeUnknownAttachment          = "UnknownAttachment"
	ErrTypeFailedValidation           = "FailedValidation"
	ErrTypeRetryAfter                 = "RetryAfter"
	ErrTypeAlreadyFriends             = "AlreadyFriends"
	ErrTypeBlocked                    = "Blocked"
	ErrTypeBotIsPrivate               = "BotIsPrivate"
	ErrTypeEmptyMessage               = "EmptyMessage"
	ErrTypePayloadTooLarge            = "PayloadTooLarge"
	ErrTypeTooManyAttachments         = "TooManyAttachments"
	ErrTypeTooManyReplies             = "TooManyReplies"
	ErrTypeTooManyChannels            = "TooManyChannels"
	ErrTypeTooManyEmbeds              = "TooManyEmbeds"
	ErrTypeTooManyEmoji               = "TooManyEmoji"
	ErrTypeTooManyRoles               = "TooManyRoles"
	ErrTypeTooManyServers             = "TooManyServers"
	ErrTypeDuplicateNonce             = "DuplicateNonce"
	ErrTypeInvalidOperation           = "InvalidOperation"
	ErrTypeNotFound                   = "NotFound"
	ErrTypeNoEffect                   = "NoEffect"
	ErrTypeBanned                     = "Banned"
	ErrTypeInvalidRole                = "InvalidRole"
	ErrTypeDatabaseError              = "DatabaseError"
	ErrTypeInternalError              = "InternalError"
	ErrTypeInvalidSession             = "InvalidSession"
	ErrTypeInvalidCredentials         = "InvalidCredentials"
	ErrTypeInvalidProperty            = "InvalidProperty"
	ErrTypeInvalidUsername            = "InvalidUsername"
	ErrTypeUsernameTaken              = "UsernameTaken"
	ErrTypeIsBot                      = "IsBot"
	ErrTypeReachedMaximumBots         = "ReachedMaximumBots"
	ErrTypeCannotEditMessage          = "CannotEditMessage"
	ErrTypeCannotJoinCall             = "CannotJoinCall"
	ErrTypeCannotRemoveYourself       = "CannotRemoveYourself"
	ErrTypeGroupTooLarge              = "GroupTooLarge"
	ErrTypeAlreadyInGroup             = "AlreadyInGroup"
	ErrTypeNotInGroup                 = "NotInGroup"
	ErrTypeCannotReportYourself       = "CannotReportYourself"
	ErrTypeAlreadyOnboarded           = "AlreadyOnboarded"
	ErrTypeVosoUnavailable            = "VosoUnavailable"
)
