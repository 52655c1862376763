package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/juampibolanio/trofi-chat-service/internal/apperr"
	"github.com/juampibolanio/trofi-chat-service/internal/events"
	"github.com/juampibolanio/trofi-chat-service/internal/metrics"
	"github.com/juampibolanio/trofi-chat-service/internal/models"
	"github.com/juampibolanio/trofi-chat-service/internal/repository"
)

const defaultMessageLimit = 50

// ChatCache caches per-user chat lists.
type ChatCache interface {
	GetChats(ctx context.Context, uid string) ([]models.Chat, bool)
	SetChats(ctx context.Context, uid string, chats []models.Chat)
	Invalidate(ctx context.Context, uids ...string)
}

// ChatService owns chat creation, message send/receive, read-state and
// per-user soft delete. It holds no mutable state; one instance is shared
// by all request handlers.
type ChatService struct {
	repo   repository.Repository
	cache  ChatCache      // optional
	mirror *events.Mirror // optional
	log    *zap.SugaredLogger
}

func NewChatService(repo repository.Repository, c ChatCache, mirror *events.Mirror, log *zap.SugaredLogger) *ChatService {
	return &ChatService{repo: repo, cache: c, mirror: mirror, log: log}
}

func nowMillis() int64 { return time.Now().UnixMilli() }

// CreateChat creates the chat for the pair if it does not exist yet and
// returns its id. Calling it again for the same pair is a no-op that
// returns the same id. An optional first message is written only by the
// caller that actually created the chat.
func (s *ChatService) CreateChat(ctx context.Context, senderID, receiverID, content string) (string, error) {
	chatID, err := ResolveChatID(senderID, receiverID)
	if err != nil {
		return "", err
	}
	content = strings.TrimSpace(content)

	participants := []string{senderID, receiverID}
	if participants[1] < participants[0] {
		participants[0], participants[1] = participants[1], participants[0]
	}

	ts := nowMillis()
	chat := &models.Chat{
		ID:           chatID,
		Participants: participants,
		LastMessage:  content,
		Timestamp:    ts,
		ReadBy:       map[string]bool{senderID: true},
		DeletedBy:    map[string]bool{},
	}

	created, err := s.repo.CreateChatIfAbsent(ctx, chat)
	if err != nil {
		return "", apperr.Storage("could not create chat", err)
	}
	if !created {
		return chatID, nil
	}

	if content != "" {
		msg := &models.Message{
			ChatID:    chatID,
			SenderID:  senderID,
			Content:   content,
			Timestamp: ts,
		}
		if err := s.repo.InsertMessage(ctx, msg); err != nil {
			return "", apperr.Storage("could not write initial message", err)
		}
	}

	metrics.ChatsCreated.Inc()
	s.mirror.ChatCreated(chat)
	s.invalidate(ctx, senderID, receiverID)
	return chatID, nil
}

// SendMessage appends a message to an existing chat and refreshes the
// chat's last-message snapshot. The two writes are not transactional: a
// failure after the insert leaves correct history with stale metadata.
func (s *ChatService) SendMessage(ctx context.Context, chatID, senderID, content string) (*models.Message, error) {
	if chatID == "" || senderID == "" || content == "" {
		return nil, apperr.Validation("chatId, senderId and content are required")
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.Validation("content must not be empty")
	}
	if utf8.RuneCountInString(content) > models.MaxContentLength {
		return nil, apperr.Validation(fmt.Sprintf("content must not exceed %d characters", models.MaxContentLength))
	}

	chat, err := s.getChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasParticipant(senderID) {
		return nil, apperr.Authorization("sender is not a participant of this chat")
	}

	msg := &models.Message{
		ChatID:    chatID,
		SenderID:  senderID,
		Content:   content,
		Timestamp: nowMillis(),
	}
	if err := s.repo.InsertMessage(ctx, msg); err != nil {
		return nil, apperr.Storage("could not send message", err)
	}

	// the non-sender is marked unread so the chat resurfaces in their list
	readBy := map[string]bool{senderID: true}
	if peer := chat.Peer(senderID); peer != "" {
		readBy[peer] = false
	}
	if err := s.repo.TouchChat(ctx, chatID, content, msg.Timestamp, readBy); err != nil {
		s.log.Errorw("chat metadata update failed after message insert",
			"chat_id", chatID, "message_id", msg.ID, "err", err)
		return nil, apperr.Storage("could not update chat", err)
	}

	metrics.MessagesSent.Inc()
	s.mirror.MessageSent(msg)
	s.invalidate(ctx, chat.Participants...)
	return msg, nil
}

// GetMessages returns the most recent limit messages of the chat in
// ascending timestamp order. limit defaults to 50 when not positive.
func (s *ChatService) GetMessages(ctx context.Context, chatID string, limit int64) ([]models.Message, error) {
	if chatID == "" {
		return nil, apperr.Validation("chatId is required")
	}
	if limit <= 0 {
		limit = defaultMessageLimit
	}
	if _, err := s.getChat(ctx, chatID); err != nil {
		return nil, err
	}
	msgs, err := s.repo.ListMessages(ctx, chatID, limit)
	if err != nil {
		return nil, apperr.Storage("could not load messages", err)
	}
	return msgs, nil
}

// GetUserChats returns the chats uid participates in and has not soft
// deleted, most recently active first.
func (s *ChatService) GetUserChats(ctx context.Context, uid string) ([]models.Chat, error) {
	if uid == "" {
		return nil, apperr.Validation("userId is required")
	}
	if s.cache != nil {
		if chats, ok := s.cache.GetChats(ctx, uid); ok {
			return chats, nil
		}
	}
	chats, err := s.repo.ListChatsForUser(ctx, uid)
	if err != nil {
		return nil, apperr.Storage("could not load chats", err)
	}
	if s.cache != nil {
		s.cache.SetChats(ctx, uid, chats)
	}
	return chats, nil
}

// DeleteMessage hard-removes a message. Only its author may do so. The
// parent chat's last-message snapshot is deliberately left untouched.
func (s *ChatService) DeleteMessage(ctx context.Context, chatID, messageID, uid string) error {
	if chatID == "" || messageID == "" || uid == "" {
		return apperr.Validation("chatId, messageId and userId are required")
	}
	msg, err := s.repo.GetMessage(ctx, chatID, messageID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("message not found")
		}
		return apperr.Storage("could not load message", err)
	}
	if msg.SenderID != uid {
		return apperr.Authorization("only the sender can delete this message")
	}
	if err := s.repo.RemoveMessage(ctx, chatID, messageID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("message not found")
		}
		return apperr.Storage("could not delete message", err)
	}
	return nil
}

// DeleteChat hides the chat from uid's list. The other participant and
// the message history are unaffected.
func (s *ChatService) DeleteChat(ctx context.Context, chatID, uid string) error {
	if chatID == "" || uid == "" {
		return apperr.Validation("chatId and userId are required")
	}
	chat, err := s.getChat(ctx, chatID)
	if err != nil {
		return err
	}
	if !chat.HasParticipant(uid) {
		return apperr.Authorization("user is not a participant of this chat")
	}
	if err := s.repo.SetChatDeleted(ctx, chatID, uid); err != nil {
		return apperr.Storage("could not delete chat", err)
	}
	s.invalidate(ctx, uid)
	return nil
}

// MarkAsRead records that uid has seen the chat's latest state.
func (s *ChatService) MarkAsRead(ctx context.Context, chatID, uid string) error {
	if chatID == "" || uid == "" {
		return apperr.Validation("chatId and userId are required")
	}
	chat, err := s.getChat(ctx, chatID)
	if err != nil {
		return err
	}
	if err := s.repo.SetChatRead(ctx, chatID, uid); err != nil {
		return apperr.Storage("could not mark chat as read", err)
	}
	// readBy shows up in both participants' chat lists
	s.invalidate(ctx, chat.Participants...)
	return nil
}

func (s *ChatService) getChat(ctx context.Context, chatID string) (*models.Chat, error) {
	chat, err := s.repo.GetChat(ctx, chatID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("chat not found")
		}
		return nil, apperr.Storage("could not load chat", err)
	}
	return chat, nil
}

func (s *ChatService) invalidate(ctx context.Context, uids ...string) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, uids...)
	}
}
