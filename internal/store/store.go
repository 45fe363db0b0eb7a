// Package store holds the in-memory conversation collection and the active
// conversation pointer. Persistence lives on the backend; this store only
// reconciles what the backend returns with what the user created locally.
package store

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/RichardoC/Chat-i/internal/history"
	"github.com/RichardoC/Chat-i/internal/ident"
	"github.com/RichardoC/Chat-i/internal/models"
	"go.uber.org/zap"
)

// NewChatTitle is the placeholder title for a conversation with no messages.
const NewChatTitle = "New chat"

// Store is an ordered collection of conversations plus the id of the one
// currently displayed. Order is display order: descending UpdatedAt, stable
// on ties. All methods are safe for concurrent use.
type Store struct {
	mu            sync.Mutex
	conversations []models.Conversation
	activeID      string

	idgen  *ident.Generator
	logger *zap.Logger
	now    func() time.Time
}

func New(idgen *ident.Generator, logger *zap.Logger) *Store {
	return &Store{
		idgen:  idgen,
		logger: logger,
		now:    time.Now,
	}
}

// ReconcileWithHistory converts each record and merges the result into the
// collection. Server records win ties on id; local conversations whose id the
// server does not know survive untouched. The active conversation pointer is
// not altered, even when the conversation it names was overwritten.
func (s *Store) ReconcileWithHistory(records []models.HistoryRecord) {
	if len(records) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	merged := make([]models.Conversation, 0, len(records)+len(s.conversations))
	seen := make(map[string]struct{}, len(records)+len(s.conversations))

	// Server data first so stale local copies of the same conversation
	// never shadow it.
	for _, rec := range records {
		conv := history.Convert(rec)
		if _, ok := seen[conv.ID]; ok {
			continue
		}
		seen[conv.ID] = struct{}{}
		merged = append(merged, conv)
	}
	for _, conv := range s.conversations {
		if _, ok := seen[conv.ID]; ok {
			continue
		}
		seen[conv.ID] = struct{}{}
		merged = append(merged, conv)
	}

	s.conversations = merged
	s.resortLocked()

	s.logger.Debug("reconciled history",
		zap.Int("records", len(records)),
		zap.Int("conversations", len(s.conversations)))
}

// Create allocates an empty conversation, inserts it at the front and makes
// it active. A generated id that collides with an existing conversation is
// regenerated once before insertion.
func (s *Store) Create() models.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.idgen.Generate("conv")
	if s.indexOfLocked(id) >= 0 {
		id = s.idgen.Generate("conv")
	}

	now := s.now()
	conv := models.Conversation{
		ID:        id,
		Title:     NewChatTitle,
		Messages:  []models.Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.conversations = append([]models.Conversation{conv}, s.conversations...)
	s.activeID = conv.ID
	return conv
}

// Select makes id the active conversation. Unknown ids are accepted; lookups
// through Active simply find nothing until a valid id is selected.
func (s *Store) Select(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeID = id
}

// Delete removes the conversation with the given id, clearing the active
// pointer if it referenced it.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOfLocked(id)
	if i < 0 {
		return
	}
	s.conversations = append(s.conversations[:i], s.conversations[i+1:]...)
	if s.activeID == id {
		s.activeID = ""
	}
}

// Rename sets a conversation's title to the trimmed value and bumps
// UpdatedAt. An empty title after trimming is a no-op.
func (s *Store) Rename(id, title string) {
	title = strings.TrimSpace(title)
	if title == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOfLocked(id)
	if i < 0 {
		return
	}
	s.conversations[i].Title = title
	s.conversations[i].UpdatedAt = s.now()
	s.resortLocked()
}

// AppendMessage appends a message with a fresh id and current timestamp to
// the named conversation and bumps its UpdatedAt. When conversationID is
// empty or unknown nothing changes and ok is false.
func (s *Store) AppendMessage(conversationID string, role models.Role, content string) (models.Message, bool) {
	if conversationID == "" {
		return models.Message{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOfLocked(conversationID)
	if i < 0 {
		return models.Message{}, false
	}

	msg := models.Message{
		ID:        s.idgen.Generate("msg"),
		Role:      role,
		Content:   content,
		Timestamp: s.now(),
	}
	s.conversations[i].Messages = append(s.conversations[i].Messages, msg)
	s.conversations[i].UpdatedAt = msg.Timestamp
	s.resortLocked()
	return msg, true
}

// SetTitleFromFirstMessage titles the conversation from its first outgoing
// message, truncated the same way history titles are. Empty content keeps
// the placeholder title. No-op for empty or unknown ids.
func (s *Store) SetTitleFromFirstMessage(conversationID, content string) {
	if conversationID == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOfLocked(conversationID)
	if i < 0 {
		return
	}

	title := history.Truncate(content)
	if title == "" {
		title = NewChatTitle
	}
	s.conversations[i].Title = title
	s.conversations[i].UpdatedAt = s.now()
	s.resortLocked()
}

// Conversations returns a copy of the collection in display order.
func (s *Store) Conversations() []models.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Conversation, len(s.conversations))
	copy(out, s.conversations)
	return out
}

// Get returns the conversation with the given id.
func (s *Store) Get(id string) (models.Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOfLocked(id); i >= 0 {
		return s.conversations[i], true
	}
	return models.Conversation{}, false
}

// Active returns the active conversation, if the active id names one.
func (s *Store) Active() (models.Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activeID == "" {
		return models.Conversation{}, false
	}
	if i := s.indexOfLocked(s.activeID); i >= 0 {
		return s.conversations[i], true
	}
	return models.Conversation{}, false
}

// ActiveID returns the active conversation id, "" when none is selected.
func (s *Store) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conversations)
}

func (s *Store) indexOfLocked(id string) int {
	for i := range s.conversations {
		if s.conversations[i].ID == id {
			return i
		}
	}
	return -1
}

// resortLocked re-establishes display order: descending UpdatedAt, original
// relative order preserved on equal timestamps.
func (s *Store) resortLocked() {
	sort.SliceStable(s.conversations, func(i, j int) bool {
		return s.conversations[i].UpdatedAt.After(s.conversations[j].UpdatedAt)
	})
}
