// Package armadaerrors contains the typed errors returned by jobwatch for conditions callers
// branch on, and helpers for classifying errors returned by Armada gRPC services.
//
// Wrap these with github.com/pkg/errors as they propagate; callers look through the chain with
// errors.As.
package armadaerrors

import (
	"fmt"

	"github.com/pkg/errors"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrNotFound is returned whenever some resource isn't found.
// Type and Message are optional and are omitted from the error message if not provided.
type ErrNotFound struct {
	Type    string // Resource type, e.g., "job" or "context"
	Value   string // Resource name, e.g., "my-job-id"
	Message string
}

func (err *ErrNotFound) Error() (s string) {
	if err.Type != "" {
		s = fmt.Sprintf("%s %q does not exist", err.Type, err.Value)
	} else {
		s = fmt.Sprintf("%q does not exist", err.Value)
	}
	if err.Message != "" {
		return s + fmt.Sprintf("; %s", err.Message)
	}
	return s
}

// ErrInvalidArgument is returned on invalid argument or configuration value.
// Message is optional and is omitted from the error message if not provided.
type ErrInvalidArgument struct {
	Name    string      // Name of the field referred to, e.g., "store.type"
	Value   interface{} // The invalid value that was provided
	Message string      // Why the value is invalid
}

func (err *ErrInvalidArgument) Error() string {
	if err.Message == "" {
		return fmt.Sprintf("value %q is invalid for field %q", err.Value, err.Name)
	}
	return fmt.Sprintf("value %q is invalid for field %q; %s", err.Value, err.Name, err.Message)
}

// ErrNotConfigured is returned when an operation needs a setting that is absent,
// e.g. browsing job sets without a Lookout URL.
type ErrNotConfigured struct {
	Setting string
	Message string
}

func (err *ErrNotConfigured) Error() string {
	if err.Message == "" {
		return fmt.Sprintf("%s is not configured", err.Setting)
	}
	return fmt.Sprintf("%s is not configured; %s", err.Setting, err.Message)
}

// CodeFromError maps an error to a gRPC code.
// Uses errors.As to look through the chain of errors, as opposed to just considering the topmost error in the chain.
func CodeFromError(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	if s, ok := status.FromError(errors.Cause(err)); ok {
		return s.Code()
	}
	{
		var e *ErrNotFound
		if errors.As(err, &e) {
			return codes.NotFound
		}
	}
	{
		var e *ErrInvalidArgument
		if errors.As(err, &e) {
			return codes.InvalidArgument
		}
	}
	{
		var e *ErrNotConfigured
		if errors.As(err, &e) {
			return codes.FailedPrecondition
		}
	}
	return codes.Unknown
}

// IsUnavailable reports whether err means the server could not be reached.
func IsUnavailable(err error) bool {
	code := CodeFromError(err)
	return code == codes.Unavailable || code == codes.DeadlineExceeded
}
