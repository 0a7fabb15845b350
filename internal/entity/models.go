package entity

import (
	"time"
)

// AnonymousUserID is stored on turns whose caller did not identify itself.
const AnonymousUserID = "anonymous"

// FallbackAnswer replaces a blank answer from either answer backend.
const FallbackAnswer = "Lo siento, no pude generar una respuesta."

// ConversationTurn is one question/answer exchange. Turns are immutable and
// ordered by CreatedAt within a conversation.
type ConversationTurn struct {
	ID             string    `json:"id,omitempty"`
	ConversationID string    `json:"conversationId"`
	UserID         string    `json:"userId"`
	Question       string    `json:"question"`
	Answer         string    `json:"answer"`
	ResponseTimeMs int64     `json:"responseTimeMs"`
	CreatedAt      time.Time `json:"createdAt"`
}

type DocumentStatus string

const (
	DocumentStatusPending DocumentStatus = "pending"
	DocumentStatusIndexed DocumentStatus = "indexed"
)

type Document struct {
	ID          string     `json:"documentId"`
	Filename    string     `json:"filename"`
	BlobKey     string     `json:"-"`
	BlobURL     string     `json:"blobUrl"`
	ContentType string     `json:"contentType,omitempty"`
	Size        int64      `json:"size"`
	Indexed     bool       `json:"indexed"`
	UploadedAt  time.Time  `json:"uploadedAt"`
	IndexedAt   *time.Time `json:"indexedAt,omitempty"`
	TotalChunks *int       `json:"totalChunks,omitempty"`
	IndexError  *string    `json:"indexError,omitempty"`
}

func (d *Document) Status() DocumentStatus {
	if d.Indexed {
		return DocumentStatusIndexed
	}
	return DocumentStatusPending
}

// Passage is a retrieved chunk of text. It is never persisted.
type Passage struct {
	Text              string  `json:"text"`
	EmbeddingDistance float32 `json:"embeddingDistance"`
}

// Chunk is a piece of a document prepared for the vector store.
type Chunk struct {
	DocumentID string
	Index      int
	Text       string
	Embedding  []float32
}

// Principal is the identity behind an admin session token.
type Principal struct {
	Username  string    `json:"username"`
	LoginTime time.Time `json:"loginTime"`
}

type ConversationStats struct {
	TotalConversations   int64
	ConversationsLast24h int64
	AvgResponseTimeMs    float64
}

type Stats struct {
	TotalConversations   int64 `json:"totalConversations"`
	TotalDocuments       int64 `json:"totalDocuments"`
	AvgResponseTime      int64 `json:"avgResponseTime"`
	ConversationsLast24h int64 `json:"conversationsLast24h"`
}
