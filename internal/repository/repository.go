package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/workbridg/workbridg-web/internal/backend"
	"github.com/workbridg/workbridg-web/internal/models"
)

// UserRepository defines access to the backend's /users resources
type UserRepository interface {
	// Login authenticates with username or email and returns the issued tokens
	Login(ctx context.Context, input LoginInput) (*backend.AuthResult, error)

	// Register creates an account and logs it in
	Register(ctx context.Context, input RegisterInput) (*backend.AuthResult, error)

	// Logout invalidates the session's refresh token on the backend
	Logout(ctx context.Context) error

	// Current returns the user owning the credentials in ctx
	Current(ctx context.Context) (*models.User, error)

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id string) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

// ProfileRepository defines access to role-specific profile details
type ProfileRepository interface {
	// SaveDetails creates or replaces the details for the current user's role
	SaveDetails(ctx context.Context, role models.Role, details models.UserDetails) (*models.User, error)

	// FindByUserID returns the profile details of a user
	FindByUserID(ctx context.Context, userID string) (*models.UserDetails, error)
}

// ProjectRepository defines access to the backend's /projects resources
type ProjectRepository interface {
	List(ctx context.Context, filter ProjectFilter) ([]models.Project, error)
	ListForUser(ctx context.Context, userID string) ([]models.Project, error)
	FindByID(ctx context.Context, id string) (*models.Project, error)
	Create(ctx context.Context, input ProjectInput) (*models.Project, error)
	Update(ctx context.Context, id string, input ProjectInput) (*models.Project, error)
	UpdateStatus(ctx context.Context, id string, status models.ProjectStatus) (*models.Project, error)

	// Apply submits a freelancer's bid on a project
	Apply(ctx context.Context, projectID string, input ApplicationInput) (*models.Application, error)

	ListApplications(ctx context.Context, projectID string) ([]models.Application, error)
	ListPendingApplications(ctx context.Context) ([]models.Application, error)
	ApproveApplication(ctx context.Context, applicationID string) error
	RejectApplication(ctx context.Context, applicationID string) error

	// AddRemark appends to the project's remark log
	AddRemark(ctx context.Context, projectID, content string) (*models.Project, error)
}

// ChatRepository defines access to the backend's /chats resources. Chats are
// returned undecoded; their shape varies between endpoints.
type ChatRepository interface {
	ListByUser(ctx context.Context, userID string) ([]json.RawMessage, error)
	Create(ctx context.Context, input ChatInput) (json.RawMessage, error)
	PostMessage(ctx context.Context, chatID, content string) (json.RawMessage, error)
	MarkRead(ctx context.Context, chatID string) error
	AddAdmin(ctx context.Context, chatID string) (json.RawMessage, error)
	Approve(ctx context.Context, chatID string) (json.RawMessage, error)
	CreateGroup(ctx context.Context, input GroupInput) (json.RawMessage, error)
	AddParticipant(ctx context.Context, chatID, userID string) (json.RawMessage, error)
	RemoveParticipant(ctx context.Context, chatID, userID string) (json.RawMessage, error)
}

// LoginInput holds credentials; Identifier is a username or an email.
type LoginInput struct {
	Identifier string `json:"-"`
	Username   string `json:"username,omitempty"`
	Email      string `json:"email,omitempty"`
	Password   string `json:"password"`
}

type RegisterInput struct {
	Username string      `json:"username"`
	Email    string      `json:"email"`
	FullName string      `json:"fullName"`
	Password string      `json:"password"`
	Role     models.Role `json:"role"`
}

// ProjectFilter holds filtering options for listing projects
type ProjectFilter struct {
	Status models.ProjectStatus
	Search string
	Page   int
	Limit  int
}

type ProjectInput struct {
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	Payment     *float64   `json:"payment,omitempty"`
}

type ApplicationInput struct {
	ProposedDeadline time.Time `json:"proposedDeadline"`
	ProposedPayment  float64   `json:"proposedPayment"`
	CoverLetter      string    `json:"coverLetter,omitempty"`
}

type ChatInput struct {
	Type          models.ChatType `json:"type"`
	ParticipantID string          `json:"participantId,omitempty"`
	ProjectID     string          `json:"projectId,omitempty"`
}

type GroupInput struct {
	Name           string   `json:"name"`
	ParticipantIDs []string `json:"participants"`
	ProjectID      string   `json:"projectId,omitempty"`
}
