/*
 * Copyright 2026 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package api

import (
	"errors"
	"fmt"
)

// Kind classifies a failed backend call.
type Kind string

const (
	KindValidation Kind = "validation"
	KindConflict   Kind = "conflict"
	KindNotFound   Kind = "not_found"
	KindNetwork    Kind = "network"
)

// Error is a classified backend failure. Message is the backend's detail
// string when it sent one, otherwise a generic message for the operation.
type Error struct {
	Kind       Kind
	StatusCode int
	Message    string
	Err        error

	// Existing is the already-registered user returned with a conflict.
	Existing *User
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so the kind sentinels below work
// with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}

	return t.Kind == e.Kind && t.StatusCode == 0 && t.Message == ""
}

// Kind sentinels for errors.Is.
var (
	ErrValidation = &Error{Kind: KindValidation}
	ErrConflict   = &Error{Kind: KindConflict}
	ErrNotFound   = &Error{Kind: KindNotFound}
	ErrNetwork    = &Error{Kind: KindNetwork}
)

var (
	ErrNotCSV           = errors.New("not a csv file")
	ErrNoFile           = errors.New("no file selected")
	ErrInvalidTimestamp = errors.New("invalid timestamp")
	ErrEmptyBaseURL     = errors.New("api base url is required")
)

// KindOf returns the kind of a classified error, or KindNetwork for anything
// unclassified.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}

	return KindNetwork
}

// Message returns the user-facing text for err.
func Message(err error) string {
	var partial *PartialIntakeError
	if errors.As(err, &partial) {
		return partial.Error()
	}

	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}

	return "An unexpected error occurred"
}

// PartialIntakeError reports that the user step of an intake succeeded (or
// resolved to an existing user) but the record step failed. The user exists
// on the backend; resubmitting only needs the record.
type PartialIntakeError struct {
	User User
	Err  error
}

func (e *PartialIntakeError) Error() string {
	return fmt.Sprintf("Your details were saved, but the health record could not be created: %s", Message(e.Err))
}

func (e *PartialIntakeError) Unwrap() error {
	return e.Err
}

func newError(kind Kind, status int, message string, err error) *Error {
	return &Error{Kind: kind, StatusCode: status, Message: message, Err: err}
}
