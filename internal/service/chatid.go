package service

import (
	"github.com/juampibolanio/trofi-chat-service/internal/apperr"
)

const chatIDSeparator = "_"

// ResolveChatID derives the canonical chat id for a participant pair.
// The pair is sorted first, so both call orders yield the same id and a
// pair can never own more than one chat.
func ResolveChatID(senderID, receiverID string) (string, error) {
	if senderID == "" || receiverID == "" {
		return "", apperr.Validation("senderId and receiverId are required")
	}
	if senderID == receiverID {
		return "", apperr.Validation("cannot start a chat with yourself")
	}
	a, b := senderID, receiverID
	if b < a {
		a, b = b, a
	}
	return a + chatIDSeparator + b, nil
}
