package models

// Chat is a two-party conversation. Its ID is derived from the sorted
// participant pair, so at most one chat exists per pair.
type Chat struct {
	ID           string          `bson:"_id" json:"id"`
	Participants []string        `bson:"participants" json:"participants"` // sorted, always 2
	LastMessage  string          `bson:"last_message" json:"lastMessage"`
	Timestamp    int64           `bson:"timestamp" json:"timestamp"` // epoch ms of last activity
	ReadBy       map[string]bool `bson:"read_by" json:"readBy"`
	DeletedBy    map[string]bool `bson:"deleted_by" json:"deletedBy"`
}

// HasParticipant reports whether uid is one of the chat's two members.
func (c *Chat) HasParticipant(uid string) bool {
	for _, p := range c.Participants {
		if p == uid {
			return true
		}
	}
	return false
}

// Peer returns the other participant, or "" if uid is not a member.
func (c *Chat) Peer(uid string) string {
	for _, p := range c.Participants {
		if p != uid {
			return p
		}
	}
	return ""
}
