package dto

import (
	"github.com/workbridg/workbridg-web/internal/chat"
	"github.com/workbridg/workbridg-web/internal/models"
)

// ChatDTO is a normalized chat with its unread badge for the viewing user
type ChatDTO struct {
	models.Chat
	Unread   int    `json:"unread"`
	DeepLink string `json:"deep_link"`
}

// ChatListResponse represents the chat list of the viewing user. Key is the
// comparison key of the list; clients send it back as ?since= to poll.
type ChatListResponse struct {
	Chats          []ChatDTO `json:"chats"`
	Key            string    `json:"key"`
	Changed        bool      `json:"changed"`
	SelectedChatID string    `json:"selected_chat_id,omitempty"`
	TotalUnread    int       `json:"total_unread"`
}

// ToChatDTO converts a normalized chat for userID
func ToChatDTO(c models.Chat, userID string) ChatDTO {
	if c.Participants == nil {
		c.Participants = []models.Participant{}
	}
	if c.Messages == nil {
		c.Messages = []models.Message{}
	}
	return ChatDTO{
		Chat:     c,
		Unread:   chat.UnreadCount(c, userID),
		DeepLink: chat.DeepLink(c.ID),
	}
}

// ToChatListResponse converts a chat list for userID
func ToChatListResponse(chats []models.Chat, userID string) ChatListResponse {
	items := make([]ChatDTO, len(chats))
	for i, c := range chats {
		items[i] = ToChatDTO(c, userID)
	}
	return ChatListResponse{
		Chats:       items,
		Key:         chat.ComparisonKey(chats),
		Changed:     true,
		TotalUnread: chat.TotalUnread(chats, userID),
	}
}
