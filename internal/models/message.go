package models

// MaxContentLength bounds message content after trimming.
const MaxContentLength = 500

type Message struct {
	ID        string `bson:"_id" json:"id"`
	ChatID    string `bson:"chat_id" json:"-"`
	SenderID  string `bson:"sender_id" json:"senderId"`
	Content   string `bson:"content" json:"content"`
	Timestamp int64  `bson:"timestamp" json:"timestamp"` // epoch ms
}
