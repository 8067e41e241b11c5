package constants

import "time"

// Session and context keys
const (
	SessionCookieName = "workbridg_session"

	ContextKeyUserID    = "user_id"
	ContextKeyUsername  = "username"
	ContextKeyRole      = "role"
	ContextKeyRequestID = "request_id"

	SessionKeyAccessToken  = "access_token"
	SessionKeyRefreshToken = "refresh_token"
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Chat
const (
	DefaultChatPollInterval = 5 * time.Second
	MessagesHashPrefix      = "messages:"
	MaxMessageLength        = 5000
	ChatStreamHeartbeat     = 25 * time.Second
)

// Backend
const (
	DefaultBackendTimeout    = 10 * time.Second
	AccessTokenExpiredMarker = "access token expired"
	RefreshTokenPath         = "/users/refresh-token"
)

// Validation
const (
	MinPasswordLength   = 8
	MaxRemarkLength     = 2000
	MaxDraftBriefLength = 4000
)
