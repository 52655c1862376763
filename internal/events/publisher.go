package events

import (
	"encoding/json"

	"github.com/nats-io/nats.go"
)

// ChatCreatedEvent is published on the chat.created subject when a new
// conversation record is written.
type ChatCreatedEvent struct {
	EventID      string   `json:"event_id"`
	ChatID       string   `json:"chat_id"`
	Participants []string `json:"participants"`
	Timestamp    int64    `json:"timestamp"`
}

type Publisher struct {
	nc *nats.Conn
}

func NewPublisher(url string) (*Publisher, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, err
	}
	return &Publisher{nc: nc}, nil
}

func (p *Publisher) Close() {
	if p != nil && p.nc != nil {
		p.nc.Close()
	}
}

func (p *Publisher) PublishChatCreated(ev ChatCreatedEvent) error {
	if p == nil || p.nc == nil {
		return nil
	}
	b, _ := json.Marshal(ev)
	return p.nc.Publish("chat.created", b)
}
