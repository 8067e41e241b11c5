package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/workbridg/workbridg-web/internal/backend"
	"github.com/workbridg/workbridg-web/internal/chat"
	"github.com/workbridg/workbridg-web/internal/constants"
	"github.com/workbridg/workbridg-web/internal/dto"
	apierrors "github.com/workbridg/workbridg-web/internal/errors"
	"github.com/workbridg/workbridg-web/internal/logging"
	"github.com/workbridg/workbridg-web/internal/metrics"
	"github.com/workbridg/workbridg-web/internal/middleware"
	"github.com/workbridg/workbridg-web/internal/models"
	"github.com/workbridg/workbridg-web/internal/poller"
	"github.com/workbridg/workbridg-web/internal/services"
)

type ChatHandler struct {
	chatService *services.ChatService
	heartbeat   time.Duration
	log         logrus.FieldLogger
}

func NewChatHandler(chatService *services.ChatService, log logrus.FieldLogger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		heartbeat:   constants.ChatStreamHeartbeat,
		log:         log,
	}
}

// ListChats returns the caller's chats. With ?since=<key> it answers
// changed=false and no chats when nothing moved since that key. ?hash= takes
// the page's location fragment and ?selected= the currently open chat.
func (h *ChatHandler) ListChats(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	since := c.Query("since")

	list, changed, err := h.chatService.Poll(c.Request.Context(), userID, since)
	if err != nil {
		h.respondChatError(c, err)
		return
	}
	if since != "" && !changed {
		c.JSON(http.StatusOK, dto.ChatListResponse{
			Chats:   []dto.ChatDTO{},
			Key:     list.Key,
			Changed: false,
		})
		return
	}

	response := dto.ToChatListResponse(list.Chats, userID)
	response.SelectedChatID = chat.Select(list.Chats, c.Query("hash"), c.Query("selected"))
	c.JSON(http.StatusOK, response)
}

// StreamChats pushes the caller's chat list as server-sent events whenever
// it changes. Events: "chats" with a chat list, "error" when a poll failed,
// "logout" when the session expired, after which the stream ends.
func (h *ChatHandler) StreamChats(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	log := logging.FromContext(c, h.log).WithField("user_id", userID)

	// The poller refreshes tokens in its own goroutine; rotated tokens are
	// copied back to the session from this one.
	sessionTokens := middleware.NewSessionTokens(sessions.Default(c))
	tokens := backend.NewMemoryTokens(sessionTokens.Tokens())
	seen := tokens.Tokens()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	ctx = backend.WithTokens(ctx, tokens)

	events := make(chan poller.Event)
	p := h.chatService.NewPoller(userID, c.Query("since"))
	go func() {
		defer close(events)
		if err := p.Run(ctx, events); err != nil && !errors.Is(err, context.Canceled) {
			log.WithError(err).Debug("Chat stream poller stopped")
		}
	}()

	metrics.ActiveChatStreams.Inc()
	defer metrics.ActiveChatStreams.Dec()

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")

	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-events:
			if !ok {
				return false
			}
			if current := tokens.Tokens(); current != seen {
				seen = current
				if err := sessionTokens.SetTokens(current); err != nil {
					log.WithError(err).Warn("Failed to store refreshed tokens")
				}
			}

			switch ev.Type {
			case poller.EventSnapshot:
				c.SSEvent("chats", dto.ToChatListResponse(ev.Chats, userID))
			case poller.EventError:
				c.SSEvent("error", gin.H{"message": pageErrorMessage(ev.Err)})
			case poller.EventLogout:
				if err := middleware.EndSession(c); err != nil {
					log.WithError(err).Warn("Failed to clear session")
				}
				c.SSEvent("logout", gin.H{"redirect": apierrors.LoginPath})
				return false
			}
			return true
		case <-heartbeat.C:
			c.SSEvent("ping", p.Key())
			return true
		case <-ctx.Done():
			return false
		}
	})
}

// StartChat opens an individual or project chat with another user
func (h *ChatHandler) StartChat(c *gin.Context) {
	type StartChatRequest struct {
		Type          string `json:"type"`
		ParticipantID string `json:"participant_id"`
		ProjectID     string `json:"project_id"`
	}

	var req StartChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	userID, _ := middleware.GetUserID(c)
	result, err := h.chatService.StartChat(c.Request.Context(), userID, services.StartChatInput{
		Type:          models.ChatType(req.Type),
		ParticipantID: req.ParticipantID,
		ProjectID:     req.ProjectID,
	})
	if err != nil {
		h.respondChatError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToChatDTO(*result, userID))
}

// SendMessage posts a message and returns the updated thread
func (h *ChatHandler) SendMessage(c *gin.Context) {
	type SendMessageRequest struct {
		Content string `json:"content" form:"content"`
	}

	var req SendMessageRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return
	}

	userID, _ := middleware.GetUserID(c)
	thread, err := h.chatService.Send(c.Request.Context(), userID, c.Param("id"), req.Content)
	if err != nil {
		h.respondChatError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToChatDTO(*thread, userID))
}

// MarkRead marks every message of a chat read
func (h *ChatHandler) MarkRead(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	thread, err := h.chatService.MarkRead(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.respondChatError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToChatDTO(*thread, userID))
}

// AddAdmin brings an admin into the chat
func (h *ChatHandler) AddAdmin(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	result, err := h.chatService.AddAdmin(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondChatError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToChatDTO(*result, userID))
}

// ApproveChat unlocks messaging in a pending chat
func (h *ChatHandler) ApproveChat(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	result, err := h.chatService.Approve(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondChatError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToChatDTO(*result, userID))
}

// CreateGroup creates a group chat
func (h *ChatHandler) CreateGroup(c *gin.Context) {
	type CreateGroupRequest struct {
		Name           string   `json:"name"`
		ParticipantIDs []string `json:"participant_ids"`
		ProjectID      string   `json:"project_id"`
	}

	var req CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	userID, _ := middleware.GetUserID(c)
	result, err := h.chatService.CreateGroup(c.Request.Context(), services.CreateGroupInput{
		Name:           req.Name,
		ParticipantIDs: req.ParticipantIDs,
		ProjectID:      req.ProjectID,
	})
	if err != nil {
		h.respondChatError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToChatDTO(*result, userID))
}

// AddParticipant adds a user to a chat
func (h *ChatHandler) AddParticipant(c *gin.Context) {
	type AddParticipantRequest struct {
		UserID string `json:"user_id"`
	}

	var req AddParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	userID, _ := middleware.GetUserID(c)
	result, err := h.chatService.AddParticipant(c.Request.Context(), c.Param("id"), req.UserID)
	if err != nil {
		h.respondChatError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToChatDTO(*result, userID))
}

// RemoveParticipant removes a user from a chat
func (h *ChatHandler) RemoveParticipant(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	result, err := h.chatService.RemoveParticipant(c.Request.Context(), c.Param("id"), c.Param("userId"))
	if err != nil {
		h.respondChatError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToChatDTO(*result, userID))
}

func (h *ChatHandler) respondChatError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrChatNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrNotPermitted):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrMessageTooLong):
		apierrors.BadRequest(c, fmt.Sprintf("Message must be at most %d characters", constants.MaxMessageLength))
	case errors.Is(err, services.ErrMessageEmpty),
		errors.Is(err, services.ErrInvalidChatType),
		errors.Is(err, services.ErrParticipantRequired),
		errors.Is(err, services.ErrCannotChatWithSelf),
		errors.Is(err, services.ErrProjectRequired),
		errors.Is(err, services.ErrGroupNameRequired),
		errors.Is(err, services.ErrGroupTooSmall):
		apierrors.BadRequest(c, err.Error())
	default:
		logging.FromContext(c, h.log).WithError(err).Warn("Chat request failed")
		respondUpstreamError(c, h.log, err)
	}
}
