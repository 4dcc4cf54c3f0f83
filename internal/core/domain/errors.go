package domain

import (
	"context"
	"errors"
)

// Domain errors represent failures a tool invocation can end with.
// Infrastructure adapters wrap these so callers can classify with errors.Is.
var (
	// ErrUnknownTool indicates no tool is registered under the requested name.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrInvalidArgument indicates missing, mistyped or unexpected arguments.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrMissingCredential indicates a required API key is not configured.
	// It is only ever returned at start-up.
	ErrMissingCredential = errors.New("missing credential")

	// ErrRateLimited indicates the upstream API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrUnauthorized indicates the upstream API rejected the credentials
	// or the account has no remaining credit.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUpstream indicates the upstream API failed or returned an unusable response.
	ErrUpstream = errors.New("upstream error")

	// ErrTimeout indicates the call was cancelled or exceeded its deadline.
	ErrTimeout = errors.New("timeout")

	// Registry Errors.

	// ErrDuplicateTool indicates a tool name is already registered.
	ErrDuplicateTool = errors.New("tool already registered")

	// ErrRegistrySealed indicates a registration after start-up completed.
	ErrRegistrySealed = errors.New("registry is sealed")

	// ErrInvalidDescriptor indicates a malformed tool descriptor.
	ErrInvalidDescriptor = errors.New("invalid tool descriptor")
)

// ErrorKind is a short machine-readable classification of a failed invocation.
type ErrorKind string

const (
	KindUnknownTool       ErrorKind = "unknown_tool"
	KindInvalidArgument   ErrorKind = "invalid_argument"
	KindMissingCredential ErrorKind = "missing_credential"
	KindRateLimited       ErrorKind = "rate_limited"
	KindUnauthorized      ErrorKind = "unauthorized"
	KindUpstream          ErrorKind = "upstream_error"
	KindTimeout           ErrorKind = "timeout"
)

// KindOf classifies err. Unclassified errors are reported as upstream errors,
// since anything not caught earlier happened while talking to the provider.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnknownTool):
		return KindUnknownTool
	case errors.Is(err, ErrInvalidArgument):
		return KindInvalidArgument
	case errors.Is(err, ErrMissingCredential):
		return KindMissingCredential
	case errors.Is(err, ErrRateLimited):
		return KindRateLimited
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrTimeout),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return KindTimeout
	default:
		return KindUpstream
	}
}
