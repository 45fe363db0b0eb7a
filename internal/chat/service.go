// Package chat orchestrates the conversation store, session binder and QA
// client into the send/load/delete flows the UI drives.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/RichardoC/Chat-i/internal/config"
	"github.com/RichardoC/Chat-i/internal/models"
	"github.com/RichardoC/Chat-i/internal/session"
	"github.com/RichardoC/Chat-i/internal/store"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// ErrNotAuthenticated is returned when a question is sent without a
// configured user. No network call is made in that case.
var ErrNotAuthenticated = errors.New("not authenticated")

const loginRequiredMessage = "Please log in before using the chat."

// QAClient is the backend surface the service depends on.
type QAClient interface {
	History(ctx context.Context, userID string) ([]models.HistoryRecord, error)
	DeleteHistory(ctx context.Context, conversationID string) error
	Ask(ctx context.Context, req models.QARequest) (string, error)
}

type Service struct {
	store  *store.Store
	binder *session.Binder
	client QAClient
	cfg    config.Config
	logger *zap.Logger
}

func New(st *store.Store, binder *session.Binder, client QAClient, cfg config.Config, logger *zap.Logger) *Service {
	return &Service{
		store:  st,
		binder: binder,
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

func (s *Service) Store() *store.Store { return s.store }

// LoadHistory fetches the user's history and reconciles it into the store.
// Without a configured user there is nothing to fetch. An empty or missing
// history leaves the store as it was.
func (s *Service) LoadHistory(ctx context.Context) error {
	if !s.cfg.Authenticated() {
		return nil
	}

	records, err := s.client.History(ctx, strconv.FormatInt(s.cfg.UserID, 10))
	if err != nil {
		s.logger.Error("failed to load conversation history", zap.Error(err))
		return err
	}
	if len(records) == 0 {
		return nil
	}

	s.store.ReconcileWithHistory(records)
	return nil
}

// Send submits a question in the active conversation and returns the
// assistant message that was appended: the answer on success, a transcript
// visible failure note otherwise. With no active conversation a new one is
// created first. Failures come back both in the transcript and as the error
// value.
func (s *Service) Send(ctx context.Context, content string) (models.Message, error) {
	if !s.cfg.Authenticated() {
		if id := s.store.ActiveID(); id != "" {
			if msg, ok := s.store.AppendMessage(id, models.RoleAssistant, loginRequiredMessage); ok {
				return msg, ErrNotAuthenticated
			}
		}
		return models.Message{
			Role:    models.RoleAssistant,
			Content: loginRequiredMessage,
		}, ErrNotAuthenticated
	}

	conv, ok := s.store.Active()
	if !ok {
		conv = s.store.Create()
	}

	sessionID := s.binder.Bind(conv.ID)

	if len(conv.Messages) == 0 {
		s.store.SetTitleFromFirstMessage(conv.ID, content)
	}
	s.store.AppendMessage(conv.ID, models.RoleUser, content)

	answer, err := s.client.Ask(ctx, models.QARequest{
		UserID:    s.cfg.UserID,
		Question:  content,
		SessionID: sessionID,
	})

	// The conversation may have been deleted while the request was in
	// flight; a late answer must not resurrect it.
	if _, alive := s.store.Get(conv.ID); !alive {
		s.logger.Debug("discarding answer for deleted conversation",
			zap.String("conversationId", conv.ID))
		return models.Message{}, err
	}

	if err != nil {
		s.logger.Error("failed to send question",
			zap.Error(err),
			zap.String("conversationId", conv.ID),
			zap.String("sessionId", sessionID))
		msg, _ := s.store.AppendMessage(conv.ID, models.RoleAssistant,
			fmt.Sprintf("Sorry, something went wrong sending your message: %v", err))
		return msg, err
	}

	msg, _ := s.store.AppendMessage(conv.ID, models.RoleAssistant, answer)
	return msg, nil
}

// NewChat creates an empty conversation and makes it active.
func (s *Service) NewChat() models.Conversation {
	return s.store.Create()
}

// SelectConversation switches the active conversation.
func (s *Service) SelectConversation(id string) {
	s.store.Select(id)
}

// RenameConversation retitles a conversation.
func (s *Service) RenameConversation(id, title string) {
	s.store.Rename(id, title)
}

// DeleteConversation removes a conversation on the backend and then locally.
// If the backend refuses, the local copy stays so the user can retry.
func (s *Service) DeleteConversation(ctx context.Context, id string) error {
	if err := s.client.DeleteHistory(ctx, id); err != nil {
		s.logger.Error("failed to delete conversation",
			zap.Error(err),
			zap.String("conversationId", id))
		return err
	}
	s.store.Delete(id)
	return nil
}

// ClearHistory deletes every server-sourced conversation, remotely and
// locally. Failures are collected per conversation; the ones that fail stay
// in the store.
func (s *Service) ClearHistory(ctx context.Context) error {
	var errs error
	for _, conv := range s.store.Conversations() {
		if !conv.IsHistory {
			continue
		}
		if err := s.DeleteConversation(ctx, conv.ID); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("conversation %s: %w", conv.ID, err))
		}
	}
	return errs
}
