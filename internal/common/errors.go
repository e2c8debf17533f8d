package common

import "errors"

// Business logic errors
var (
	// General errors
	ErrNotFound  = errors.New("resource not found")
	ErrForbidden = errors.New("forbidden")

	// Validation errors
	ErrInvalidInput     = errors.New("invalid input")
	ErrSelfConversation = errors.New("cannot start a conversation with yourself")
	ErrEmptyContent     = errors.New("text message requires content")
	ErrReplyMismatch    = errors.New("reply target belongs to another conversation")

	// Auth errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")

	// Messaging errors
	ErrConversationNotFound = errors.New("conversation not found")
	ErrMessageNotFound      = errors.New("message not found")
	ErrReceiverNotFound     = errors.New("receiver not found")
	ErrNotParticipant       = errors.New("not a participant of this conversation")
	ErrMessagingBlocked     = errors.New("messaging to this member is not allowed")

	// Storage errors
	ErrConflict       = errors.New("conflicting concurrent write")
	ErrStorageFailure = errors.New("storage failure")
)
