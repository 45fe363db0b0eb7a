package store

import (
	"fmt"
	"testing"
	"time"

	"github.com/RichardoC/Chat-i/internal/ident"
	"github.com/RichardoC/Chat-i/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore() *Store {
	return New(ident.New(), zap.NewNop())
}

func record(id, question string, createTime string) models.HistoryRecord {
	return models.HistoryRecord{
		ID:         id,
		SessionID:  id,
		Question:   question,
		Answer:     "answer to " + question,
		CreateTime: createTime,
	}
}

func ids(convs []models.Conversation) []string {
	out := make([]string, len(convs))
	for i, c := range convs {
		out[i] = c.ID
	}
	return out
}

func TestReconcileNoDuplicates(t *testing.T) {
	s := newTestStore()

	s.ReconcileWithHistory([]models.HistoryRecord{
		record("a", "first", "2024-01-01T10:00:00Z"),
		record("b", "second", "2024-01-01T11:00:00Z"),
	})
	s.ReconcileWithHistory([]models.HistoryRecord{
		record("a", "first again", "2024-01-02T10:00:00Z"),
		record("c", "third", "2024-01-02T11:00:00Z"),
	})

	seen := map[string]int{}
	for _, id := range ids(s.Conversations()) {
		seen[id]++
	}
	for id, n := range seen {
		assert.Equal(t, 1, n, "conversation %s appears %d times", id, n)
	}
	assert.Equal(t, 3, s.Len())
}

func TestReconcilePreservesLocalConversations(t *testing.T) {
	s := newTestStore()
	local := s.Create()

	s.ReconcileWithHistory([]models.HistoryRecord{
		record("srv", "from server", "2024-01-01T10:00:00Z"),
	})

	got, ok := s.Get(local.ID)
	require.True(t, ok, "local conversation dropped by reconcile")
	assert.Equal(t, local.Title, got.Title)
}

func TestReconcileServerWins(t *testing.T) {
	s := newTestStore()
	s.ReconcileWithHistory([]models.HistoryRecord{
		record("x", "old question", "2024-01-01T10:00:00Z"),
	})
	s.Rename("x", "locally renamed")

	s.ReconcileWithHistory([]models.HistoryRecord{
		record("x", "server question", "2024-01-03T10:00:00Z"),
	})

	got, ok := s.Get("x")
	require.True(t, ok)
	assert.Equal(t, "server question", got.Title)
	assert.True(t, got.IsHistory)
}

func TestReconcileKeepsActivePointer(t *testing.T) {
	s := newTestStore()
	conv := s.Create()

	s.ReconcileWithHistory([]models.HistoryRecord{
		record("srv", "hello", "2024-01-01T10:00:00Z"),
	})

	assert.Equal(t, conv.ID, s.ActiveID())
}

func TestReconcileSortsByUpdatedAtDescending(t *testing.T) {
	s := newTestStore()

	s.ReconcileWithHistory([]models.HistoryRecord{
		record("old", "old", "2023-06-01T10:00:00Z"),
		record("newest", "newest", "2024-06-01T10:00:00Z"),
		record("mid", "mid", "2024-01-01T10:00:00Z"),
	})

	assert.Equal(t, []string{"newest", "mid", "old"}, ids(s.Conversations()))
}

func TestReconcileStableOnEqualTimestamps(t *testing.T) {
	s := newTestStore()

	s.ReconcileWithHistory([]models.HistoryRecord{
		record("a", "a", "2024-01-01T10:00:00Z"),
		record("b", "b", "2024-01-01T10:00:00Z"),
		record("c", "c", "2024-01-01T10:00:00Z"),
	})

	assert.Equal(t, []string{"a", "b", "c"}, ids(s.Conversations()))
}

func TestCreateUniqueAndActive(t *testing.T) {
	s := newTestStore()

	for i := 0; i < 50; i++ {
		conv := s.Create()
		assert.Equal(t, conv.ID, s.ActiveID())
	}
	assert.Equal(t, 50, s.Len())

	seen := map[string]struct{}{}
	for _, id := range ids(s.Conversations()) {
		_, dup := seen[id]
		require.False(t, dup)
		seen[id] = struct{}{}
	}
}

func TestCreateInsertsAtFront(t *testing.T) {
	s := newTestStore()
	s.ReconcileWithHistory([]models.HistoryRecord{
		record("srv", "hello", "2024-01-01T10:00:00Z"),
	})

	conv := s.Create()
	assert.Equal(t, conv.ID, s.Conversations()[0].ID)
	assert.Equal(t, NewChatTitle, conv.Title)
	assert.Empty(t, conv.Messages)
}

func TestSelectUnknownIDLeavesNoActiveConversation(t *testing.T) {
	s := newTestStore()
	s.Create()

	s.Select("does-not-exist")

	assert.Equal(t, "does-not-exist", s.ActiveID())
	_, ok := s.Active()
	assert.False(t, ok)
}

func TestDeleteClearsActivePointer(t *testing.T) {
	s := newTestStore()
	conv := s.Create()

	s.Delete(conv.ID)

	assert.Equal(t, "", s.ActiveID())
	assert.Equal(t, 0, s.Len())
}

func TestDeleteOtherConversationKeepsActive(t *testing.T) {
	s := newTestStore()
	first := s.Create()
	second := s.Create()

	s.Delete(first.ID)

	assert.Equal(t, second.ID, s.ActiveID())
}

func TestRename(t *testing.T) {
	s := newTestStore()
	conv := s.Create()

	s.Rename(conv.ID, "  shopping list  ")

	got, _ := s.Get(conv.ID)
	assert.Equal(t, "shopping list", got.Title)
}

func TestRenameEmptyIsNoOp(t *testing.T) {
	s := newTestStore()
	conv := s.Create()

	s.Rename(conv.ID, "   ")

	got, _ := s.Get(conv.ID)
	assert.Equal(t, NewChatTitle, got.Title)
}

func TestRenameBumpsUpdatedAtAndResorts(t *testing.T) {
	s := newTestStore()
	s.ReconcileWithHistory([]models.HistoryRecord{
		record("a", "a", "2024-01-02T10:00:00Z"),
		record("b", "b", "2024-01-01T10:00:00Z"),
	})
	require.Equal(t, []string{"a", "b"}, ids(s.Conversations()))

	s.Rename("b", "bumped")

	assert.Equal(t, []string{"b", "a"}, ids(s.Conversations()))
}

func TestAppendMessage(t *testing.T) {
	s := newTestStore()
	conv := s.Create()

	msg, ok := s.AppendMessage(conv.ID, models.RoleUser, "hello there")
	require.True(t, ok)
	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, models.RoleUser, msg.Role)

	got, _ := s.Get(conv.ID)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "hello there", got.Messages[0].Content)
	assert.False(t, got.UpdatedAt.Before(msg.Timestamp))
}

func TestAppendMessageEmptyIDIsNoOp(t *testing.T) {
	s := newTestStore()
	s.Create()
	before := s.Conversations()

	_, ok := s.AppendMessage("", models.RoleUser, "hello")
	assert.False(t, ok)
	assert.Equal(t, before, s.Conversations())
}

func TestAppendMessageUnknownIDIsNoOp(t *testing.T) {
	s := newTestStore()
	s.Create()
	before := s.Conversations()

	_, ok := s.AppendMessage("nope", models.RoleUser, "hello")
	assert.False(t, ok)
	assert.Equal(t, before, s.Conversations())
}

func TestAppendMessageOnlyTouchesTarget(t *testing.T) {
	s := newTestStore()
	first := s.Create()
	second := s.Create()

	s.AppendMessage(first.ID, models.RoleUser, "to first")

	got, _ := s.Get(second.ID)
	assert.Empty(t, got.Messages)
}

func TestSetTitleFromFirstMessage(t *testing.T) {
	s := newTestStore()
	conv := s.Create()

	s.SetTitleFromFirstMessage(conv.ID, "how do I cook rice without a rice cooker")

	got, _ := s.Get(conv.ID)
	assert.Equal(t, "how do I cook rice without a r...", got.Title)
	assert.Len(t, []rune(got.Title), 33)
}

func TestSetTitleFromFirstMessageShort(t *testing.T) {
	s := newTestStore()
	conv := s.Create()

	s.SetTitleFromFirstMessage(conv.ID, "hi")

	got, _ := s.Get(conv.ID)
	assert.Equal(t, "hi", got.Title)
}

func TestSetTitleFromFirstMessageEmptyID(t *testing.T) {
	s := newTestStore()
	s.Create()

	s.SetTitleFromFirstMessage("", "anything")
	// nothing to assert beyond not panicking and titles unchanged
	for _, conv := range s.Conversations() {
		assert.Equal(t, NewChatTitle, conv.Title)
	}
}

func TestMutationsKeepDescendingOrder(t *testing.T) {
	s := newTestStore()
	s.ReconcileWithHistory([]models.HistoryRecord{
		record("a", "a", "2024-01-03T10:00:00Z"),
		record("b", "b", "2024-01-02T10:00:00Z"),
		record("c", "c", "2024-01-01T10:00:00Z"),
	})

	s.AppendMessage("c", models.RoleUser, "bump")

	convs := s.Conversations()
	for i := 1; i < len(convs); i++ {
		assert.False(t, convs[i-1].UpdatedAt.Before(convs[i].UpdatedAt),
			"order violated at %d: %v", i, ids(convs))
	}
	assert.Equal(t, "c", convs[0].ID)
}

func TestConversationsReturnsCopy(t *testing.T) {
	s := newTestStore()
	s.Create()

	convs := s.Conversations()
	convs[0].Title = "mutated"

	got := s.Conversations()
	assert.Equal(t, NewChatTitle, got[0].Title)
}

func TestCreateTimestamps(t *testing.T) {
	s := newTestStore()
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	conv := s.Create()
	assert.True(t, conv.CreatedAt.Equal(fixed))
	assert.True(t, conv.UpdatedAt.Equal(fixed))
}

func TestManyConversationsNoDuplicateIDs(t *testing.T) {
	s := newTestStore()

	var records []models.HistoryRecord
	for i := 0; i < 200; i++ {
		records = append(records, record(fmt.Sprintf("r%d", i%50), "q", "2024-01-01T10:00:00Z"))
	}
	s.ReconcileWithHistory(records)
	s.ReconcileWithHistory(records)

	assert.Equal(t, 50, s.Len())
}
