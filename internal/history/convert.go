// Package history maps backend history records onto the client's
// conversation model.
package history

import (
	"time"

	"github.com/RichardoC/Chat-i/internal/models"
)

const (
	// PlaceholderTitle is used when a record carries no question text.
	PlaceholderTitle = "History chat"

	titleLimit      = 30
	truncationMark  = "..."
	userSuffix      = "_user"
	assistantSuffix = "_assistant"
)

// createTime layouts the backend has been observed to emit, tried in order.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Convert builds a two-message conversation (question, answer) from one
// history record. Missing or malformed fields degrade to defaults; Convert
// never fails. Message ids are derived from the record id so converting the
// same record twice yields identical messages.
func Convert(rec models.HistoryRecord) models.Conversation {
	id := rec.SessionID
	if id == "" {
		id = rec.ID
	}

	ts := parseCreateTime(rec.CreateTime)

	return models.Conversation{
		ID:    id,
		Title: TitleFor(rec.Question),
		Messages: []models.Message{
			{
				ID:        rec.ID + userSuffix,
				Role:      models.RoleUser,
				Content:   rec.Question,
				Timestamp: ts,
			},
			{
				ID:        rec.ID + assistantSuffix,
				Role:      models.RoleAssistant,
				Content:   rec.Answer,
				Timestamp: ts,
			},
		},
		CreatedAt: ts,
		UpdatedAt: ts,
		IsHistory: true,
	}
}

// TitleFor derives a sidebar title from question text: the first 30 runes,
// with "..." appended when the question is longer. Empty questions get the
// placeholder title.
func TitleFor(question string) string {
	if question == "" {
		return PlaceholderTitle
	}
	return Truncate(question)
}

// Truncate applies the title truncation rule without the empty-string
// placeholder, for callers that title a conversation from its first message.
func Truncate(content string) string {
	runes := []rune(content)
	if len(runes) <= titleLimit {
		return content
	}
	return string(runes[:titleLimit]) + truncationMark
}

func parseCreateTime(s string) time.Time {
	if s != "" {
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t
			}
		}
	}
	return time.Now()
}
