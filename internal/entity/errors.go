package entity

import "errors"

// Domain errors
var (
	// Request errors
	ErrInvalidInput      = errors.New("invalid input")
	ErrNoFile            = errors.New("no file provided")
	ErrPayloadTooLarge   = errors.New("payload too large")
	ErrInvalidExtension  = errors.New("invalid file extension")
	ErrUnsupportedFormat = errors.New("unsupported export format")

	// Auth errors
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Document errors
	ErrDocumentNotFound = errors.New("document not found")
	ErrBlobNotFound     = errors.New("blob not found")

	// Conversation errors
	ErrConversationNotFound = errors.New("conversation not found")

	// Upstream errors
	ErrRetrievalFailure    = errors.New("retrieval failure")
	ErrUpstreamFailure     = errors.New("upstream failure")
	ErrSpeechNotRecognized = errors.New("speech not recognized")

	// Infrastructure errors
	ErrStorageUnavailable = errors.New("storage unavailable")
)
