package model

import "errors"

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrProviderUnavailable  = errors.New("provider unavailable")
	ErrNoResults            = errors.New("no results")
	ErrUnknownTool          = errors.New("unknown tool")
	ErrLockTimeout          = errors.New("timed out waiting for conversation lock")
	ErrEmptyQuery           = errors.New("query is empty")
)
