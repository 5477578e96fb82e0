package service

import "errors"

var (
	// ErrIngestionFailure means a file could not be downloaded or converted to text.
	ErrIngestionFailure = errors.New("ingestion failure")
	// ErrNoQuestionsFound means extraction worked but produced no question lines.
	ErrNoQuestionsFound = errors.New("no questions found")
	// ErrUnauthorizedAction covers admin-only controls and other users' buttons.
	ErrUnauthorizedAction = errors.New("unauthorized action")
	// ErrStaleSessionReference means a control no longer matches the caller's session.
	ErrStaleSessionReference = errors.New("stale session reference")
	// ErrPersistenceFailure wraps any durable store error.
	ErrPersistenceFailure = errors.New("persistence failure")

	ErrNotRegistered       = errors.New("user is not registered")
	ErrAlreadyRegistered   = errors.New("user is already registered")
	ErrNoActiveQuestionSet = errors.New("no active question set")
	ErrInvalidName         = errors.New("name too short")
)
