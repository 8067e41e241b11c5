package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/workbridg/workbridg-web/internal/backend"
	"github.com/workbridg/workbridg-web/internal/chat"
	"github.com/workbridg/workbridg-web/internal/constants"
	"github.com/workbridg/workbridg-web/internal/models"
	"github.com/workbridg/workbridg-web/internal/poller"
	"github.com/workbridg/workbridg-web/internal/repository"
)

var (
	ErrChatNotFound        = errors.New("chat not found")
	ErrMessageEmpty        = errors.New("message cannot be empty")
	ErrMessageTooLong      = errors.New("message is too long")
	ErrInvalidChatType     = errors.New("chat type must be individual, project or group")
	ErrParticipantRequired = errors.New("a participant is required")
	ErrCannotChatWithSelf  = errors.New("you cannot start a chat with yourself")
	ErrProjectRequired     = errors.New("a project is required for a project chat")
	ErrGroupNameRequired   = errors.New("group name is required")
	ErrGroupTooSmall       = errors.New("a group needs at least two participants")
)

// ChatService handles chat listing, polling and messaging
type ChatService struct {
	chatRepo     repository.ChatRepository
	pollInterval time.Duration
	log          logrus.FieldLogger
}

// NewChatService creates a new ChatService
func NewChatService(chatRepo repository.ChatRepository, pollInterval time.Duration, log logrus.FieldLogger) *ChatService {
	return &ChatService{
		chatRepo:     chatRepo,
		pollInterval: pollInterval,
		log:          log,
	}
}

// ChatList is a user's normalized chat list and its comparison key
type ChatList struct {
	Chats          []models.Chat
	Key            string
	SelectedChatID string
}

// ListChatsInput selects whose chats to load. Fragment is a "#messages:<id>"
// deep link; when it names a loaded chat it replaces Current as selection.
type ListChatsInput struct {
	UserID   string
	Fragment string
	Current  string
}

// StartChatInput represents input for opening a chat
type StartChatInput struct {
	Type          models.ChatType
	ParticipantID string
	ProjectID     string
}

// CreateGroupInput represents input for creating a group chat
type CreateGroupInput struct {
	Name           string
	ParticipantIDs []string
	ProjectID      string
}

// List returns the user's chats in server order
func (s *ChatService) List(ctx context.Context, input ListChatsInput) (*ChatList, error) {
	chats, err := s.fetch(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	return &ChatList{
		Chats:          chats,
		Key:            chat.ComparisonKey(chats),
		SelectedChatID: chat.Select(chats, input.Fragment, input.Current),
	}, nil
}

// Poll loads the chat list and reports whether its key differs from since.
func (s *ChatService) Poll(ctx context.Context, userID, since string) (*ChatList, bool, error) {
	list, err := s.List(ctx, ListChatsInput{UserID: userID})
	if err != nil {
		return nil, false, err
	}
	return list, list.Key != since, nil
}

// NewPoller returns a poller over the user's chat list. The context given to
// its Run method must carry the session credentials.
func (s *ChatService) NewPoller(userID, since string) *poller.Poller {
	fetch := func(ctx context.Context) ([]models.Chat, error) {
		return s.fetch(ctx, userID)
	}
	return poller.New(fetch, poller.Config{
		Interval:   s.pollInterval,
		InitialKey: since,
	}, s.log.WithField("user_id", userID))
}

// Send posts a message and returns the thread with the server's message
// appended.
func (s *ChatService) Send(ctx context.Context, userID, chatID, content string) (*models.Chat, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrMessageEmpty
	}
	if len([]rune(content)) > constants.MaxMessageLength {
		return nil, ErrMessageTooLong
	}

	raw, err := s.chatRepo.PostMessage(ctx, chatID, content)
	if err != nil {
		return nil, chatError(err, "failed to send message")
	}

	// Some endpoints answer with the whole chat, others with the new message.
	if hasMessages(raw) {
		c, err := chat.Normalize(raw)
		if err == nil {
			return &c, nil
		}
	}

	current, err := s.find(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}
	msg, err := chat.NormalizeMessage(raw)
	if err != nil {
		s.log.WithError(err).WithField("chat_id", chatID).Warn("Unreadable message in send response")
		return current, nil
	}
	if msg.SenderID == "" {
		msg.SenderID = userID
	}
	updated := chat.AppendMessage(*current, msg)
	return &updated, nil
}

// MarkRead flags every message in the chat read and returns the chat with
// the flags applied.
func (s *ChatService) MarkRead(ctx context.Context, userID, chatID string) (*models.Chat, error) {
	if err := s.chatRepo.MarkRead(ctx, chatID); err != nil {
		return nil, chatError(err, "failed to mark chat read")
	}

	current, err := s.find(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}
	read := chat.MarkAllRead(*current)
	return &read, nil
}

// StartChat opens an individual or project chat for userID
func (s *ChatService) StartChat(ctx context.Context, userID string, input StartChatInput) (*models.Chat, error) {
	if input.Type == "" {
		input.Type = models.ChatTypeIndividual
	}

	switch input.Type {
	case models.ChatTypeIndividual:
		if input.ParticipantID == "" {
			return nil, ErrParticipantRequired
		}
		if input.ParticipantID == userID {
			return nil, ErrCannotChatWithSelf
		}
	case models.ChatTypeProject:
		if input.ProjectID == "" {
			return nil, ErrProjectRequired
		}
	default:
		return nil, ErrInvalidChatType
	}

	raw, err := s.chatRepo.Create(ctx, repository.ChatInput{
		Type:          input.Type,
		ParticipantID: input.ParticipantID,
		ProjectID:     input.ProjectID,
	})
	if err != nil {
		return nil, chatError(err, "failed to start chat")
	}
	return normalizeOne(raw)
}

// AddAdmin asks an admin to join the chat
func (s *ChatService) AddAdmin(ctx context.Context, chatID string) (*models.Chat, error) {
	raw, err := s.chatRepo.AddAdmin(ctx, chatID)
	if err != nil {
		return nil, chatError(err, "failed to add admin")
	}
	return normalizeOne(raw)
}

// Approve unlocks messaging in a pending chat
func (s *ChatService) Approve(ctx context.Context, chatID string) (*models.Chat, error) {
	raw, err := s.chatRepo.Approve(ctx, chatID)
	if err != nil {
		return nil, chatError(err, "failed to approve chat")
	}
	return normalizeOne(raw)
}

// CreateGroup creates a group chat
func (s *ChatService) CreateGroup(ctx context.Context, input CreateGroupInput) (*models.Chat, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrGroupNameRequired
	}
	participants := cleanList(input.ParticipantIDs)
	if len(participants) < 2 {
		return nil, ErrGroupTooSmall
	}

	raw, err := s.chatRepo.CreateGroup(ctx, repository.GroupInput{
		Name:           name,
		ParticipantIDs: participants,
		ProjectID:      input.ProjectID,
	})
	if err != nil {
		return nil, chatError(err, "failed to create group")
	}
	return normalizeOne(raw)
}

// AddParticipant adds a user to a chat
func (s *ChatService) AddParticipant(ctx context.Context, chatID, userID string) (*models.Chat, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrParticipantRequired
	}
	raw, err := s.chatRepo.AddParticipant(ctx, chatID, userID)
	if err != nil {
		return nil, chatError(err, "failed to add participant")
	}
	return normalizeOne(raw)
}

// RemoveParticipant removes a user from a chat
func (s *ChatService) RemoveParticipant(ctx context.Context, chatID, userID string) (*models.Chat, error) {
	raw, err := s.chatRepo.RemoveParticipant(ctx, chatID, userID)
	if err != nil {
		return nil, chatError(err, "failed to remove participant")
	}
	return normalizeOne(raw)
}

// fetch loads and normalizes a user's chats. A 404 means no chats yet.
func (s *ChatService) fetch(ctx context.Context, userID string) ([]models.Chat, error) {
	raws, err := s.chatRepo.ListByUser(ctx, userID)
	if err != nil {
		if backend.IsNotFound(err) {
			return []models.Chat{}, nil
		}
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}

	chats, skipped := chat.NormalizeAll(raws)
	if skipped > 0 {
		s.log.WithFields(logrus.Fields{
			"user_id": userID,
			"skipped": skipped,
		}).Warn("Dropped unreadable chats")
	}
	return chats, nil
}

func (s *ChatService) find(ctx context.Context, userID, chatID string) (*models.Chat, error) {
	chats, err := s.fetch(ctx, userID)
	if err != nil {
		return nil, err
	}
	c, ok := chat.Find(chats, chatID)
	if !ok {
		return nil, ErrChatNotFound
	}
	return &c, nil
}

func normalizeOne(raw json.RawMessage) (*models.Chat, error) {
	c, err := chat.Normalize(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to read chat: %w", err)
	}
	return &c, nil
}

func hasMessages(raw json.RawMessage) bool {
	var probe struct {
		Messages json.RawMessage `json:"messages"`
	}
	return json.Unmarshal(raw, &probe) == nil && len(probe.Messages) > 0
}

func chatError(err error, msg string) error {
	switch backend.StatusOf(err) {
	case http.StatusNotFound:
		return ErrChatNotFound
	case http.StatusForbidden:
		return ErrNotPermitted
	}
	return fmt.Errorf("%s: %w", msg, err)
}
