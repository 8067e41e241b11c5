package middleware

import (
	"fmt"
	"sync"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/workbridg/workbridg-web/internal/constants"
	"github.com/workbridg/workbridg-web/internal/models"
)

// SessionTokens keeps a user's backend tokens in their gin session, so a
// refresh made by the backend client outlives the request. With the cookie
// store a refresh during a streamed response cannot be written back; the
// next request refreshes again.
type SessionTokens struct {
	mu      sync.Mutex
	session sessions.Session
}

func NewSessionTokens(session sessions.Session) *SessionTokens {
	return &SessionTokens{session: session}
}

func (s *SessionTokens) Tokens() models.Tokens {
	s.mu.Lock()
	defer s.mu.Unlock()

	access, _ := s.session.Get(constants.SessionKeyAccessToken).(string)
	refresh, _ := s.session.Get(constants.SessionKeyRefreshToken).(string)
	return models.Tokens{AccessToken: access, RefreshToken: refresh}
}

func (s *SessionTokens) SetTokens(tokens models.Tokens) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session.Set(constants.SessionKeyAccessToken, tokens.AccessToken)
	s.session.Set(constants.SessionKeyRefreshToken, tokens.RefreshToken)
	if err := s.session.Save(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// StartSession stores the signed-in user and tokens in the session.
func StartSession(c *gin.Context, user models.User, tokens models.Tokens) error {
	session := sessions.Default(c)
	session.Clear()
	session.Set(constants.ContextKeyUserID, user.ID)
	session.Set(constants.ContextKeyUsername, user.Username)
	session.Set(constants.ContextKeyRole, string(user.Role))
	session.Set(constants.SessionKeyAccessToken, tokens.AccessToken)
	session.Set(constants.SessionKeyRefreshToken, tokens.RefreshToken)
	if err := session.Save(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	c.Set(constants.ContextKeyUserID, user.ID)
	c.Set(constants.ContextKeyUsername, user.Username)
	c.Set(constants.ContextKeyRole, user.Role)
	return nil
}

// EndSession removes the authentication session.
func EndSession(c *gin.Context) error {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	c.Set(constants.ContextKeyUserID, "")
	c.Set(constants.ContextKeyUsername, "")
	c.Set(constants.ContextKeyRole, models.Role(""))
	return nil
}
