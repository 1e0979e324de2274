package domain

import "errors"

var (
	ErrNoTranscript  = errors.New("no transcript file in archive")
	ErrMediaNotFound = errors.New("media entry not found in archive")
	ErrUnknownWindow = errors.New("unrecognized time window")
	ErrNoFrame       = errors.New("no frame available")
	ErrEmptyReply    = errors.New("summarizer returned no choices")
	ErrInvalidAPIKey = errors.New("summarizer rejected the API key")
	ErrModelNotFound = errors.New("model not found")
	ErrActiveRequest = errors.New("active request exists")
	ErrUserNotFound  = errors.New("user not found")
)
