package chat

import (
	"strings"
	"time"

	"github.com/workbridg/workbridg-web/internal/constants"
	"github.com/workbridg/workbridg-web/internal/models"
)

// ComparisonKey derives the equality guard for a chat list: every chat's id
// and update time, in list order.
func ComparisonKey(chats []models.Chat) string {
	var b strings.Builder
	for i, c := range chats {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(c.ID)
		b.WriteByte('@')
		b.WriteString(c.UpdatedAt.UTC().Format(time.RFC3339Nano))
	}
	return b.String()
}

// UnreadCount counts messages someone else sent that the backend flagged as
// not read. A message without a read flag is not counted.
func UnreadCount(c models.Chat, userID string) int {
	n := 0
	for _, m := range c.Messages {
		if m.Unread() && m.SenderID != userID {
			n++
		}
	}
	return n
}

func TotalUnread(chats []models.Chat, userID string) int {
	total := 0
	for _, c := range chats {
		total += UnreadCount(c, userID)
	}
	return total
}

// MarkAllRead returns a copy of c with every message flagged read.
func MarkAllRead(c models.Chat) models.Chat {
	msgs := make([]models.Message, len(c.Messages))
	for i, m := range c.Messages {
		m.Read, m.ReadKnown = true, true
		msgs[i] = m
	}
	c.Messages = msgs
	return c
}

// AppendMessage returns a copy of c with m at the end of the thread, unless a
// message with the same id is already there.
func AppendMessage(c models.Chat, m models.Message) models.Chat {
	if m.ID != "" {
		for _, existing := range c.Messages {
			if existing.ID == m.ID {
				return c
			}
		}
	}
	msgs := make([]models.Message, len(c.Messages), len(c.Messages)+1)
	copy(msgs, c.Messages)
	c.Messages = append(msgs, m)
	if m.CreatedAt.After(c.UpdatedAt) {
		c.UpdatedAt = m.CreatedAt
	}
	return c
}

// Find returns the chat with the given id.
func Find(chats []models.Chat, id string) (models.Chat, bool) {
	for _, c := range chats {
		if c.ID == id {
			return c, true
		}
	}
	return models.Chat{}, false
}

// ParseDeepLink extracts the chat id from a "#messages:<chatId>" fragment.
// The leading '#' is optional.
func ParseDeepLink(fragment string) (string, bool) {
	fragment = strings.TrimPrefix(strings.TrimSpace(fragment), "#")
	if !strings.HasPrefix(fragment, constants.MessagesHashPrefix) {
		return "", false
	}
	id := strings.TrimSpace(strings.TrimPrefix(fragment, constants.MessagesHashPrefix))
	return id, id != ""
}

// Select resolves the chat to show for a deep link. When the fragment does
// not name a loaded chat, current is returned unchanged.
func Select(chats []models.Chat, fragment, current string) string {
	id, ok := ParseDeepLink(fragment)
	if !ok {
		return current
	}
	if _, found := Find(chats, id); !found {
		return current
	}
	return id
}

// DeepLink builds the fragment that selects a chat.
func DeepLink(chatID string) string {
	return "#" + constants.MessagesHashPrefix + chatID
}
