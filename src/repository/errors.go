package repository

import (
	"errors"
	"fmt"
)

var (
	ErrAuthFailed     = errors.New("authentication failed")
	ErrBuildNotFound  = errors.New("build not found")
	ErrRateLimited    = errors.New("rate limited")
	ErrNetworkTimeout = errors.New("network timeout")
	ErrUnknownLine    = errors.New("unknown job line")
)

// DownloadError is returned by every BuildRepository call.
type DownloadError struct {
	Op    string // e.g. "job result"
	Job   string
	Build int // 0 when the call is not about a single build
	Err   error
}

func (e *DownloadError) Error() string {
	if e.Build > 0 {
		return fmt.Sprintf("%s %s #%d: %v", e.Op, e.Job, e.Build, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Job, e.Err)
}

func (e *DownloadError) Unwrap() error {
	return e.Err
}

// UserError wraps errors with user-friendly messages
type UserError struct {
	Message string
	Hint    string
	Err     error
}

func (e *UserError) Error() string {
	msg := e.Message
	if e.Hint != "" {
		msg += "\n\nHint: " + e.Hint
	}
	if e.Err != nil {
		msg += fmt.Sprintf("\n\nDetails: %v", e.Err)
	}
	return msg
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// WrapError converts repository errors to user-friendly messages.
// Errors already wrapped as *UserError are returned unchanged.
func WrapError(err error) error {
	if err == nil {
		return nil
	}

	var userErr *UserError
	if errors.As(err, &userErr) {
		return err
	}

	if errors.Is(err, ErrUnknownLine) {
		return &UserError{
			Message: "Unknown job line",
			Hint:    "Use one of: stable, unstable",
			Err:     err,
		}
	}

	if errors.Is(err, ErrAuthFailed) {
		return &UserError{
			Message: "The build server rejected the request",
			Hint:    "Check JENKINS_URL; the launcher only needs anonymous read access.",
			Err:     err,
		}
	}

	if errors.Is(err, ErrBuildNotFound) {
		return &UserError{
			Message: "Build not found",
			Hint:    "Run `launcher versions` to list the builds that are available.",
			Err:     err,
		}
	}

	if errors.Is(err, ErrNetworkTimeout) || errors.Is(err, ErrRateLimited) {
		return &UserError{
			Message: "The build server did not answer in time",
			Hint:    "Retry later or raise JENKINS_TIMEOUT.",
			Err:     err,
		}
	}

	return err
}
