package repository

import (
	"context"
	"errors"

	"github.com/juampibolanio/trofi-chat-service/internal/models"
)

// ErrNotFound is returned when a chat or message does not exist.
var ErrNotFound = errors.New("not found")

// Repository is the document-store adapter for chat and message records.
type Repository interface {
	// CreateChatIfAbsent writes the chat only if no record exists at its id.
	// It reports whether this call created the record.
	CreateChatIfAbsent(ctx context.Context, chat *models.Chat) (bool, error)
	GetChat(ctx context.Context, chatID string) (*models.Chat, error)
	// ListChatsForUser returns the chats uid participates in and has not
	// soft-deleted, most recently active first.
	ListChatsForUser(ctx context.Context, uid string) ([]models.Chat, error)
	// TouchChat updates the chat's last-message snapshot, activity timestamp
	// and read-state in one write.
	TouchChat(ctx context.Context, chatID, lastMessage string, ts int64, readBy map[string]bool) error
	// SetChatDeleted marks the chat hidden for uid only.
	SetChatDeleted(ctx context.Context, chatID, uid string) error
	// SetChatRead marks the chat read for uid only.
	SetChatRead(ctx context.Context, chatID, uid string) error

	InsertMessage(ctx context.Context, m *models.Message) error
	GetMessage(ctx context.Context, chatID, messageID string) (*models.Message, error)
	// ListMessages returns the most recent limit messages of the chat in
	// ascending timestamp order.
	ListMessages(ctx context.Context, chatID string, limit int64) ([]models.Message, error)
	RemoveMessage(ctx context.Context, chatID, messageID string) error
}
