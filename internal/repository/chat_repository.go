package repository

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/workbridg/workbridg-web/internal/backend"
)

// HTTPChatRepository implements ChatRepository against the backend API
type HTTPChatRepository struct {
	client *backend.Client
}

// NewChatRepository creates a new ChatRepository
func NewChatRepository(client *backend.Client) ChatRepository {
	return &HTTPChatRepository{client: client}
}

func chatPath(id string, rest ...string) string {
	p := "/chats/" + url.PathEscape(id)
	for _, r := range rest {
		p += "/" + r
	}
	return p
}

func (r *HTTPChatRepository) ListByUser(ctx context.Context, userID string) ([]json.RawMessage, error) {
	var chats []json.RawMessage
	if err := r.client.Do(ctx, http.MethodGet, "/chats/user/"+url.PathEscape(userID), nil, nil, &chats); err != nil {
		return nil, err
	}
	return chats, nil
}

func (r *HTTPChatRepository) Create(ctx context.Context, input ChatInput) (json.RawMessage, error) {
	return r.call(ctx, http.MethodPost, "/chats", input)
}

func (r *HTTPChatRepository) PostMessage(ctx context.Context, chatID, content string) (json.RawMessage, error) {
	return r.call(ctx, http.MethodPost, chatPath(chatID, "messages"), map[string]string{"content": content})
}

func (r *HTTPChatRepository) MarkRead(ctx context.Context, chatID string) error {
	return r.client.Do(ctx, http.MethodPatch, chatPath(chatID, "read"), nil, nil, nil)
}

func (r *HTTPChatRepository) AddAdmin(ctx context.Context, chatID string) (json.RawMessage, error) {
	return r.call(ctx, http.MethodPost, chatPath(chatID, "add-admin"), nil)
}

func (r *HTTPChatRepository) Approve(ctx context.Context, chatID string) (json.RawMessage, error) {
	return r.call(ctx, http.MethodPatch, chatPath(chatID, "approve"), nil)
}

func (r *HTTPChatRepository) CreateGroup(ctx context.Context, input GroupInput) (json.RawMessage, error) {
	return r.call(ctx, http.MethodPost, "/chats/group", input)
}

func (r *HTTPChatRepository) AddParticipant(ctx context.Context, chatID, userID string) (json.RawMessage, error) {
	return r.call(ctx, http.MethodPost, chatPath(chatID, "participants"), map[string]string{"userId": userID})
}

func (r *HTTPChatRepository) RemoveParticipant(ctx context.Context, chatID, userID string) (json.RawMessage, error) {
	return r.call(ctx, http.MethodDelete, chatPath(chatID, "participants", url.PathEscape(userID)), nil)
}

func (r *HTTPChatRepository) call(ctx context.Context, method, path string, in interface{}) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := r.client.Do(ctx, method, path, nil, in, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}
