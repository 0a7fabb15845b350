package entity

import "time"

type AskRequest struct {
	Query          string `json:"query"`
	ConversationID string `json:"conversationId,omitempty"`
	UserID         string `json:"userId,omitempty"`
}

// Answer is the result of a successful orchestrated query.
type Answer struct {
	Text           string
	ConversationID string
	ResponseTimeMs int64
	AnsweredAt     time.Time
}

type AskResponse struct {
	Answer         string `json:"answer"`
	ConversationID string `json:"conversationId"`
	ResponseTimeMs int64  `json:"responseTimeMs"`
	Timestamp      string `json:"timestamp"`
}

type HistoryResponse struct {
	Conversations []*ConversationTurn `json:"conversations"`
}
