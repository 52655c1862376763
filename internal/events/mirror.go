package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/juampibolanio/trofi-chat-service/internal/kafka"
	"github.com/juampibolanio/trofi-chat-service/internal/models"
)

// MessageSentEvent mirrors a sent message to the analytics pipeline.
type MessageSentEvent struct {
	EventID   string `json:"event_id"`
	ChatID    string `json:"chat_id"`
	MessageID string `json:"message_id"`
	SenderID  string `json:"sender_id"`
	Length    int    `json:"length"`
	Timestamp int64  `json:"timestamp"`
}

// Mirror forwards chat activity to external sinks. Every publish is
// best-effort: failures are logged and never reach the caller. A nil
// Mirror is a no-op, so tests and broker-less deployments skip it.
type Mirror struct {
	producer *kafka.Producer
	pub      *Publisher
	log      *zap.SugaredLogger
}

func NewMirror(producer *kafka.Producer, pub *Publisher, log *zap.SugaredLogger) *Mirror {
	return &Mirror{producer: producer, pub: pub, log: log}
}

func (m *Mirror) ChatCreated(chat *models.Chat) {
	if m == nil || m.pub == nil {
		return
	}
	ev := ChatCreatedEvent{
		EventID:      uuid.NewString(),
		ChatID:       chat.ID,
		Participants: chat.Participants,
		Timestamp:    chat.Timestamp,
	}
	if err := m.pub.PublishChatCreated(ev); err != nil {
		m.log.Warnw("publish chat.created", "chat_id", chat.ID, "err", err)
	}
}

func (m *Mirror) MessageSent(msg *models.Message) {
	if m == nil || m.producer == nil {
		return
	}
	ev := MessageSentEvent{
		EventID:   uuid.NewString(),
		ChatID:    msg.ChatID,
		MessageID: msg.ID,
		SenderID:  msg.SenderID,
		Length:    len(msg.Content),
		Timestamp: msg.Timestamp,
	}
	b, _ := json.Marshal(ev)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.producer.Publish(ctx, msg.ChatID, b); err != nil {
		m.log.Warnw("publish message.sent", "chat_id", msg.ChatID, "err", err)
	}
}
