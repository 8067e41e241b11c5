package chat

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/workbridg/workbridg-web/internal/models"
)

var ErrMissingChatID = errors.New("chat has no id")

// The backend serializes chats differently per endpoint: populated or bare
// references, camelCase or snake_case timestamps, "read" or "isRead".
type rawChat struct {
	ID             string            `json:"_id"`
	AltID          string            `json:"id"`
	Type           models.ChatType   `json:"type"`
	ChatType       models.ChatType   `json:"chatType"`
	Name           string            `json:"name"`
	GroupName      string            `json:"groupName"`
	Project        json.RawMessage   `json:"project"`
	ProjectID      string            `json:"projectId"`
	Participants   []json.RawMessage `json:"participants"`
	Messages       []rawMessage      `json:"messages"`
	Status         models.ChatStatus `json:"status"`
	UpdatedAt      *time.Time        `json:"updatedAt"`
	UpdatedAtSnake *time.Time        `json:"updated_at"`
}

type rawMessage struct {
	ID             string          `json:"_id"`
	AltID          string          `json:"id"`
	Sender         json.RawMessage `json:"sender"`
	SenderID       string          `json:"senderId"`
	Content        string          `json:"content"`
	Text           string          `json:"text"`
	CreatedAt      *time.Time      `json:"createdAt"`
	CreatedAtSnake *time.Time      `json:"created_at"`
	Timestamp      *time.Time      `json:"timestamp"`
	Read           *bool           `json:"read"`
	IsRead         *bool           `json:"isRead"`
}

type rawUser struct {
	ID       string          `json:"_id"`
	AltID    string          `json:"id"`
	Username string          `json:"username"`
	FullName string          `json:"fullName"`
	Role     models.Role     `json:"role"`
	User     json.RawMessage `json:"user"`
}

// Normalize turns one backend chat object into the canonical record.
func Normalize(raw json.RawMessage) (models.Chat, error) {
	var rc rawChat
	if err := json.Unmarshal(raw, &rc); err != nil {
		return models.Chat{}, fmt.Errorf("failed to decode chat: %w", err)
	}

	chat := models.Chat{
		ID:     firstNonEmpty(rc.ID, rc.AltID),
		Type:   rc.Type,
		Name:   firstNonEmpty(rc.Name, rc.GroupName),
		Status: rc.Status,
	}
	if chat.ID == "" {
		return models.Chat{}, ErrMissingChatID
	}
	if chat.Type == "" {
		chat.Type = rc.ChatType
	}

	chat.ProjectID = rc.ProjectID
	if chat.ProjectID == "" && len(rc.Project) > 0 {
		if p, ok := decodeRef(rc.Project); ok {
			chat.ProjectID = p.ID
			if chat.Name == "" {
				var titled struct {
					Title string `json:"title"`
				}
				_ = json.Unmarshal(rc.Project, &titled)
				chat.Name = titled.Title
			}
		}
	}

	chat.Participants = make([]models.Participant, 0, len(rc.Participants))
	for _, rp := range rc.Participants {
		if p, ok := decodeRef(rp); ok {
			chat.Participants = append(chat.Participants, p)
		}
	}

	names := make(map[string]string, len(chat.Participants))
	for _, p := range chat.Participants {
		names[p.ID] = displayName(p)
	}

	chat.Messages = make([]models.Message, 0, len(rc.Messages))
	for _, rm := range rc.Messages {
		chat.Messages = append(chat.Messages, normalizeMessage(rm, names))
	}

	if chat.Type == "" {
		switch {
		case chat.ProjectID != "":
			chat.Type = models.ChatTypeProject
		case len(chat.Participants) > 2:
			chat.Type = models.ChatTypeGroup
		default:
			chat.Type = models.ChatTypeIndividual
		}
	}
	if chat.Status == "" {
		chat.Status = models.ChatStatusPending
	}

	switch {
	case rc.UpdatedAt != nil:
		chat.UpdatedAt = *rc.UpdatedAt
	case rc.UpdatedAtSnake != nil:
		chat.UpdatedAt = *rc.UpdatedAtSnake
	case len(chat.Messages) > 0:
		chat.UpdatedAt = chat.Messages[len(chat.Messages)-1].CreatedAt
	}

	return chat, nil
}

// NormalizeAll normalizes a chat list, keeping server order. Entries that
// cannot be decoded are skipped and reported through the returned count.
func NormalizeAll(raws []json.RawMessage) ([]models.Chat, int) {
	chats := make([]models.Chat, 0, len(raws))
	skipped := 0
	for _, raw := range raws {
		chat, err := Normalize(raw)
		if err != nil {
			skipped++
			continue
		}
		chats = append(chats, chat)
	}
	return chats, skipped
}

// NormalizeMessage decodes a single message as returned by the post-message
// endpoint.
func NormalizeMessage(raw json.RawMessage) (models.Message, error) {
	var rm rawMessage
	if err := json.Unmarshal(raw, &rm); err != nil {
		return models.Message{}, fmt.Errorf("failed to decode message: %w", err)
	}
	return normalizeMessage(rm, nil), nil
}

func normalizeMessage(rm rawMessage, names map[string]string) models.Message {
	msg := models.Message{
		ID:       firstNonEmpty(rm.ID, rm.AltID),
		SenderID: rm.SenderID,
		Content:  firstNonEmpty(rm.Content, rm.Text),
	}

	if len(rm.Sender) > 0 {
		if sender, ok := decodeRef(rm.Sender); ok {
			msg.SenderID = sender.ID
			msg.SenderName = displayName(sender)
		}
	}
	if msg.SenderName == "" {
		msg.SenderName = names[msg.SenderID]
	}

	switch {
	case rm.CreatedAt != nil:
		msg.CreatedAt = *rm.CreatedAt
	case rm.CreatedAtSnake != nil:
		msg.CreatedAt = *rm.CreatedAtSnake
	case rm.Timestamp != nil:
		msg.CreatedAt = *rm.Timestamp
	}

	switch {
	case rm.Read != nil:
		msg.Read, msg.ReadKnown = *rm.Read, true
	case rm.IsRead != nil:
		msg.Read, msg.ReadKnown = *rm.IsRead, true
	}
	return msg
}

// decodeRef accepts either a bare id string or a (possibly wrapped) user or
// resource object.
func decodeRef(raw json.RawMessage) (models.Participant, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return models.Participant{}, false
	}

	if raw[0] == '"' {
		var id string
		if err := json.Unmarshal(raw, &id); err != nil || id == "" {
			return models.Participant{}, false
		}
		return models.Participant{ID: id}, true
	}

	var ru rawUser
	if err := json.Unmarshal(raw, &ru); err != nil {
		return models.Participant{}, false
	}
	if len(ru.User) > 0 {
		inner, ok := decodeRef(ru.User)
		if ok && inner.Role == "" {
			inner.Role = ru.Role
		}
		return inner, ok
	}

	p := models.Participant{
		ID:       firstNonEmpty(ru.ID, ru.AltID),
		Username: ru.Username,
		FullName: ru.FullName,
		Role:     ru.Role,
	}
	return p, p.ID != ""
}

func displayName(p models.Participant) string {
	return firstNonEmpty(p.FullName, p.Username)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
