package backend

import (
	"context"
	"net/http"

	"github.com/workbridg/workbridg-web/internal/models"
)

// AuthResult is the outcome of a login: the user and the issued tokens.
type AuthResult struct {
	User   models.User
	Tokens models.Tokens
}

// Authenticate posts credentials to path and collects the tokens the backend
// issues, from the body or from Set-Cookie headers.
func (c *Client) Authenticate(ctx context.Context, path string, in interface{}) (*AuthResult, error) {
	resp, err := c.roundTrip(ctx, http.MethodPost, path, nil, in)
	if err != nil {
		return nil, err
	}

	var payload struct {
		User         models.User `json:"user"`
		AccessToken  string      `json:"accessToken"`
		RefreshToken string      `json:"refreshToken"`
	}
	if err := decode(resp, &payload); err != nil {
		return nil, err
	}

	tokens := mergeCookieTokens(models.Tokens{
		AccessToken:  payload.AccessToken,
		RefreshToken: payload.RefreshToken,
	}, resp.cookies)

	return &AuthResult{User: payload.User, Tokens: tokens}, nil
}
