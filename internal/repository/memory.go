package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/juampibolanio/trofi-chat-service/internal/models"
)

// MemoryRepository is an in-process Repository for tests and local runs
// without a database.
type MemoryRepository struct {
	mu       sync.Mutex
	chats    map[string]*models.Chat
	messages map[string][]*models.Message // chatID -> msgs in insertion order
	seq      int
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		chats:    make(map[string]*models.Chat),
		messages: make(map[string][]*models.Message),
	}
}

func (r *MemoryRepository) CreateChatIfAbsent(_ context.Context, chat *models.Chat) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.chats[chat.ID]; ok {
		return false, nil
	}
	cp := *chat
	cp.ReadBy = copyFlags(chat.ReadBy)
	cp.DeletedBy = copyFlags(chat.DeletedBy)
	r.chats[chat.ID] = &cp
	return true, nil
}

func (r *MemoryRepository) GetChat(_ context.Context, chatID string) (*models.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.chats[chatID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	cp.ReadBy = copyFlags(c.ReadBy)
	cp.DeletedBy = copyFlags(c.DeletedBy)
	return &cp, nil
}

func (r *MemoryRepository) ListChatsForUser(_ context.Context, uid string) ([]models.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Chat{}
	for _, c := range r.chats {
		if !c.HasParticipant(uid) || c.DeletedBy[uid] {
			continue
		}
		cp := *c
		cp.ReadBy = copyFlags(c.ReadBy)
		cp.DeletedBy = copyFlags(c.DeletedBy)
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	return out, nil
}

func (r *MemoryRepository) TouchChat(_ context.Context, chatID, lastMessage string, ts int64, readBy map[string]bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.chats[chatID]
	if !ok {
		return ErrNotFound
	}
	c.LastMessage = lastMessage
	c.Timestamp = ts
	c.ReadBy = copyFlags(readBy)
	return nil
}

func (r *MemoryRepository) SetChatDeleted(_ context.Context, chatID, uid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.chats[chatID]
	if !ok {
		return ErrNotFound
	}
	if c.DeletedBy == nil {
		c.DeletedBy = map[string]bool{}
	}
	c.DeletedBy[uid] = true
	return nil
}

func (r *MemoryRepository) SetChatRead(_ context.Context, chatID, uid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.chats[chatID]
	if !ok {
		return ErrNotFound
	}
	if c.ReadBy == nil {
		c.ReadBy = map[string]bool{}
	}
	c.ReadBy[uid] = true
	return nil
}

func (r *MemoryRepository) InsertMessage(_ context.Context, m *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.ID == "" {
		r.seq++
		m.ID = fmt.Sprintf("%016d", r.seq)
	}
	cp := *m
	r.messages[m.ChatID] = append(r.messages[m.ChatID], &cp)
	return nil
}

func (r *MemoryRepository) GetMessage(_ context.Context, chatID, messageID string) (*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages[chatID] {
		if m.ID == messageID {
			cp := *m
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryRepository) ListMessages(_ context.Context, chatID string, limit int64) ([]models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	msgs := append([]*models.Message(nil), r.messages[chatID]...)
	sort.SliceStable(msgs, func(i, j int) bool {
		if msgs[i].Timestamp != msgs[j].Timestamp {
			return msgs[i].Timestamp < msgs[j].Timestamp
		}
		return msgs[i].ID < msgs[j].ID
	})
	if limit > 0 && int64(len(msgs)) > limit {
		msgs = msgs[int64(len(msgs))-limit:]
	}
	out := make([]models.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, *m)
	}
	return out, nil
}

func (r *MemoryRepository) RemoveMessage(_ context.Context, chatID, messageID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	msgs := r.messages[chatID]
	for i, m := range msgs {
		if m.ID == messageID {
			r.messages[chatID] = append(msgs[:i], msgs[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func copyFlags(in map[string]bool) map[string]bool {
	out := make(map[string]bool, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
