package models

import "time"

type ChatType string

const (
	ChatTypeIndividual ChatType = "individual"
	ChatTypeProject    ChatType = "project"
	ChatTypeGroup      ChatType = "group"
)

type ChatStatus string

const (
	ChatStatusPending   ChatStatus = "pending"
	ChatStatusApproved  ChatStatus = "approved"
	ChatStatusWithAdmin ChatStatus = "with_admin"
)

// Chat is the canonical chat record produced by normalization. Messages keep
// the order the server sent them in.
type Chat struct {
	ID           string        `json:"id"`
	Type         ChatType      `json:"type"`
	Name         string        `json:"name,omitempty"`
	ProjectID    string        `json:"projectId,omitempty"`
	Participants []Participant `json:"participants"`
	Messages     []Message     `json:"messages"`
	Status       ChatStatus    `json:"status"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

type Participant struct {
	ID       string `json:"id"`
	Username string `json:"username,omitempty"`
	FullName string `json:"fullName,omitempty"`
	Role     Role   `json:"role,omitempty"`
}

// Message is immutable once created except for Read. ReadKnown is false when
// the backend sent no read flag at all.
type Message struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	SenderName string    `json:"senderName,omitempty"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
	Read       bool      `json:"read"`
	ReadKnown  bool      `json:"-"`
}

// Unread reports whether the backend flagged the message as not read.
func (m Message) Unread() bool {
	return m.ReadKnown && !m.Read
}

// HasParticipant reports whether userID takes part in the chat.
func (c Chat) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p.ID == userID {
			return true
		}
	}
	return false
}
