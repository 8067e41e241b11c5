package repository

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/workbridg/workbridg-web/internal/backend"
	"github.com/workbridg/workbridg-web/internal/models"
)

// HTTPUserRepository implements UserRepository against the backend API
type HTTPUserRepository struct {
	client *backend.Client
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(client *backend.Client) UserRepository {
	return &HTTPUserRepository{client: client}
}

func (r *HTTPUserRepository) Login(ctx context.Context, input LoginInput) (*backend.AuthResult, error) {
	if input.Identifier != "" {
		if strings.Contains(input.Identifier, "@") {
			input.Email = input.Identifier
		} else {
			input.Username = input.Identifier
		}
	}
	return r.client.Authenticate(ctx, "/users/login", input)
}

// Register creates the account and then logs in, since the backend's
// register endpoint does not issue tokens.
func (r *HTTPUserRepository) Register(ctx context.Context, input RegisterInput) (*backend.AuthResult, error) {
	if err := r.client.Do(ctx, http.MethodPost, "/users/register", nil, input, nil); err != nil {
		return nil, err
	}
	return r.Login(ctx, LoginInput{Username: input.Username, Password: input.Password})
}

func (r *HTTPUserRepository) Logout(ctx context.Context) error {
	return r.client.Do(ctx, http.MethodPost, "/users/logout", nil, nil, nil)
}

func (r *HTTPUserRepository) Current(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := r.client.Do(ctx, http.MethodGet, "/users/current-user", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *HTTPUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.client.Do(ctx, http.MethodGet, "/users/"+url.PathEscape(id), nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *HTTPUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.client.Do(ctx, http.MethodGet, "/users/username/"+url.PathEscape(username), nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
