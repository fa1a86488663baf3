package model

import "errors"

var (
	// ErrNotFound is returned by repositories when a record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrEmptyTranscript means speech-to-text produced no usable text. The
	// attempt is over; the operator has to re-record.
	ErrEmptyTranscript = errors.New("empty transcription")

	// ErrEmptyCompletion means the language model returned an empty answer.
	ErrEmptyCompletion = errors.New("empty completion")

	// ErrTranscriptionUnsupported is returned by AI backends that can only
	// do chat completions.
	ErrTranscriptionUnsupported = errors.New("transcription not supported by this AI backend")

	// Token verification errors used by the auth middleware.
	ErrTokenInvalid   = errors.New("token is invalid")
	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenMalformed = errors.New("token is malformed")
)
