package models

import "time"

// Role identifies who produced a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation is a titled, ordered sequence of messages. IsHistory marks
// conversations rebuilt from backend history rather than created locally.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	IsHistory bool      `json:"is_history,omitempty"`
}

// HistoryRecord is one question/answer exchange as the backend stores it.
// Field names match the QA service's history DTO.
type HistoryRecord struct {
	ID         string `json:"id"`
	UserID     string `json:"userId"`
	SessionID  string `json:"sessionId"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	CreateTime string `json:"createTime"`
}

// QARequest is the body of a question to the backend. SessionID correlates
// sequential questions in one conversation on the backend side.
type QARequest struct {
	UserID    int64  `json:"userId"`
	Question  string `json:"question"`
	SessionID string `json:"sessionId"`
}
