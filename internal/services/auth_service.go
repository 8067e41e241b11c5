package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strings"

	"github.com/workbridg/workbridg-web/internal/backend"
	"github.com/workbridg/workbridg-web/internal/constants"
	"github.com/workbridg/workbridg-web/internal/models"
	"github.com/workbridg/workbridg-web/internal/repository"
)

var (
	ErrIdentifierRequired  = errors.New("username or email is required")
	ErrPasswordRequired    = errors.New("password is required")
	ErrPasswordTooShort    = errors.New("password too short")
	ErrUsernameRequired    = errors.New("username is required")
	ErrInvalidEmail        = errors.New("email address is invalid")
	ErrInvalidRole         = errors.New("role must be freelancer or client")
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrUserExists          = errors.New("username or email already registered")
	ErrUserNotFound        = errors.New("user not found")
	ErrSkillsRequired      = errors.New("at least one skill is required")
	ErrInvalidHourlyRate   = errors.New("hourly rate cannot be negative")
	ErrCompanyNameRequired = errors.New("company name is required")
	ErrNoProfileDetails    = errors.New("this role has no profile details")
)

// AuthService handles authentication and profile business logic.
type AuthService struct {
	userRepo    repository.UserRepository
	profileRepo repository.ProfileRepository
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, profileRepo repository.ProfileRepository) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		profileRepo: profileRepo,
	}
}

// LoginInput holds the login form: a username or an email, and a password.
type LoginInput struct {
	Identifier string
	Password   string
}

// RegisterInput represents the required information to create an account.
type RegisterInput struct {
	Username string
	Email    string
	FullName string
	Password string
	Role     models.Role
}

// Login authenticates against the backend and returns the user and tokens.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*backend.AuthResult, error) {
	identifier := strings.TrimSpace(input.Identifier)
	if identifier == "" {
		return nil, ErrIdentifierRequired
	}
	if input.Password == "" {
		return nil, ErrPasswordRequired
	}

	result, err := s.userRepo.Login(ctx, repository.LoginInput{
		Identifier: identifier,
		Password:   input.Password,
	})
	if err != nil {
		switch backend.StatusOf(err) {
		case http.StatusUnauthorized, http.StatusNotFound, http.StatusBadRequest:
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to log in: %w", err)
	}
	return result, nil
}

// Register creates a freelancer or client account and logs it in. Admin
// accounts are provisioned on the backend only.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*backend.AuthResult, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, ErrUsernameRequired
	}
	email := strings.TrimSpace(input.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}
	if input.Role != models.RoleFreelancer && input.Role != models.RoleClient {
		return nil, ErrInvalidRole
	}

	result, err := s.userRepo.Register(ctx, repository.RegisterInput{
		Username: strings.ToLower(username),
		Email:    email,
		FullName: strings.TrimSpace(input.FullName),
		Password: input.Password,
		Role:     input.Role,
	})
	if err != nil {
		if backend.StatusOf(err) == http.StatusConflict {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to register: %w", err)
	}
	return result, nil
}

// Logout invalidates the session on the backend. A session the backend
// already dropped counts as logged out.
func (s *AuthService) Logout(ctx context.Context) error {
	err := s.userRepo.Logout(ctx)
	if err == nil || errors.Is(err, backend.ErrSessionExpired) {
		return nil
	}
	return fmt.Errorf("failed to log out: %w", err)
}

// CurrentUser returns the user owning the session credentials.
func (s *AuthService) CurrentUser(ctx context.Context) (*models.User, error) {
	user, err := s.userRepo.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load current user: %w", err)
	}
	return user, nil
}

// SetDetailsInput holds the role-specific profile form.
type SetDetailsInput struct {
	Skills         []string
	Bio            string
	Experience     string
	HourlyRate     float64
	Portfolio      string
	CompanyName    string
	CompanyWebsite string
	Industry       string
}

// SetDetails validates and saves the profile for the user's role.
func (s *AuthService) SetDetails(ctx context.Context, role models.Role, input SetDetailsInput) (*models.User, error) {
	var details models.UserDetails

	switch role {
	case models.RoleFreelancer:
		skills := cleanList(input.Skills)
		if len(skills) == 0 {
			return nil, ErrSkillsRequired
		}
		if input.HourlyRate < 0 {
			return nil, ErrInvalidHourlyRate
		}
		details = models.UserDetails{
			Skills:     skills,
			Bio:        strings.TrimSpace(input.Bio),
			Experience: strings.TrimSpace(input.Experience),
			HourlyRate: input.HourlyRate,
			Portfolio:  strings.TrimSpace(input.Portfolio),
		}
	case models.RoleClient:
		name := strings.TrimSpace(input.CompanyName)
		if name == "" {
			return nil, ErrCompanyNameRequired
		}
		details = models.UserDetails{
			CompanyName:    name,
			CompanyWebsite: strings.TrimSpace(input.CompanyWebsite),
			Industry:       strings.TrimSpace(input.Industry),
		}
	default:
		return nil, ErrNoProfileDetails
	}

	user, err := s.profileRepo.SaveDetails(ctx, role, details)
	if err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}
	if user.Details == nil {
		user.Details = &details
	}
	user.DetailsComplete = true
	return user, nil
}

// PublicProfile returns a user and their profile details by username.
func (s *AuthService) PublicProfile(ctx context.Context, username string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrUserNotFound
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if backend.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if user.Details == nil && user.Role != models.RoleAdmin {
		details, err := s.profileRepo.FindByUserID(ctx, user.ID)
		switch {
		case err == nil:
			user.Details = details
		case !backend.IsNotFound(err):
			return nil, fmt.Errorf("failed to load profile: %w", err)
		}
	}
	return user, nil
}

// cleanList trims entries and drops blanks and duplicates.
func cleanList(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		key := strings.ToLower(item)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}
