// Package client implements the typed API client for the ideas service.
// This file centralizes the client-level error taxonomy so callers can branch
// on failure classes without inspecting transport details.
//
// The taxonomy is deliberately small:
//   - RequestError (matches ErrRequestFailed): any non-2xx status, transport
//     failure, timeout, or an empty body where one was expected. Carries the
//     HTTP status code when one is known.
//   - DecodeError (matches ErrDecodeFailed): the response body did not match
//     the expected shape.
//   - Cancellation: a context.Canceled from the caller passes through
//     untranslated so controllers can filter superseded work silently.
//
// The client never retries; every failure is surfaced to the caller exactly
// once.
package client

import (
	"errors"
	"fmt"
)

// Sentinel classes for errors.Is checks.
var (
	// ErrRequestFailed matches any RequestError.
	ErrRequestFailed = errors.New("request failed")

	// ErrDecodeFailed matches any DecodeError.
	ErrDecodeFailed = errors.New("response decode failed")

	// ErrEmptyTitle is returned by CreateIdea for a blank title.
	ErrEmptyTitle = errors.New("idea title is empty")

	// ErrEmptyComment is returned by AddComment for a blank body.
	ErrEmptyComment = errors.New("comment body is empty")
)

// RequestError is the normalized failure for a request that did not produce
// a usable success response.
type RequestError struct {
	// Op names the failing operation ("list ideas", "vote", ...).
	Op string
	// StatusCode is the HTTP status when one was received, 0 otherwise
	// (connection failure, timeout).
	StatusCode int
	// Err is the underlying transport error, nil for plain HTTP failures.
	Err error
}

// Error implements error.
func (e *RequestError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("%s: request failed: %v (status %d)", e.Op, e.Err, e.StatusCode)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: request failed with status %d", e.Op, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: request failed: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: request failed", e.Op)
	}
}

// Unwrap exposes the underlying transport error.
func (e *RequestError) Unwrap() error { return e.Err }

// Is reports a match for the ErrRequestFailed class.
func (e *RequestError) Is(target error) bool { return target == ErrRequestFailed }

// DecodeError reports a response body that did not match the expected shape.
type DecodeError struct {
	// Op names the failing operation.
	Op string
	// Err is the underlying JSON error.
	Err error
}

// Error implements error.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: decoding response: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying JSON error.
func (e *DecodeError) Unwrap() error { return e.Err }

// Is reports a match for the ErrDecodeFailed class.
func (e *DecodeError) Is(target error) bool { return target == ErrDecodeFailed }
