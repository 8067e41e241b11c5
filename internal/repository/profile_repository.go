package repository

import (
	"context"
	"net/http"
	"net/url"

	"github.com/workbridg/workbridg-web/internal/backend"
	"github.com/workbridg/workbridg-web/internal/models"
)

// HTTPProfileRepository implements ProfileRepository against the backend API
type HTTPProfileRepository struct {
	client *backend.Client
}

// NewProfileRepository creates a new ProfileRepository
func NewProfileRepository(client *backend.Client) ProfileRepository {
	return &HTTPProfileRepository{client: client}
}

// SaveDetails posts to /profiles/freelancer or /profiles/client and returns
// the refreshed user.
func (r *HTTPProfileRepository) SaveDetails(ctx context.Context, role models.Role, details models.UserDetails) (*models.User, error) {
	var user models.User
	if err := r.client.Do(ctx, http.MethodPost, "/profiles/"+string(role), nil, details, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *HTTPProfileRepository) FindByUserID(ctx context.Context, userID string) (*models.UserDetails, error) {
	var details models.UserDetails
	if err := r.client.Do(ctx, http.MethodGet, "/profiles/"+url.PathEscape(userID), nil, nil, &details); err != nil {
		return nil, err
	}
	return &details, nil
}
