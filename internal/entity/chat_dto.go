package entity

// MessageRequest is the body of POST /api/messages. Audio, when present,
// replaces Message with its transcript.
type MessageRequest struct {
	Message        string `json:"message,omitempty"`
	AudioBase64    string `json:"audioBase64,omitempty"`
	WantAudio      bool   `json:"wantAudio,omitempty"`
	ConversationID string `json:"conversationId,omitempty"`
	UserID         string `json:"userId,omitempty"`
}

type MessageResponse struct {
	Reply          string `json:"reply"`
	AudioBase64    string `json:"audioBase64,omitempty"`
	AudioFormat    string `json:"audioFormat,omitempty"`
	Transcript     string `json:"transcript,omitempty"`
	ConversationID string `json:"conversationId"`
}

// ChatMessage is one inbound message on a chat channel.
type ChatMessage struct {
	ConversationID string
	UserID         string
	Text           string
	Audio          []byte
	WantAudio      bool
}

// ChatReply carries the answer text and, when requested and available,
// its spoken rendition.
type ChatReply struct {
	Text           string
	Transcript     string
	ConversationID string
	Audio          []byte
	AudioFormat    string
}
