package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/workbridg/workbridg-web/internal/backend"
	"github.com/workbridg/workbridg-web/internal/constants"
	"github.com/workbridg/workbridg-web/internal/models"
	"github.com/workbridg/workbridg-web/internal/repository"
)

var (
	ErrProjectNotFound     = errors.New("project not found")
	ErrApplicationNotFound = errors.New("application not found")
	ErrTitleRequired       = errors.New("title is required")
	ErrDescriptionRequired = errors.New("description is required")
	ErrInvalidDeadline     = errors.New("deadline must be a date such as 2025-01-31")
	ErrDeadlineInPast      = errors.New("deadline cannot be in the past")
	ErrInvalidPayment      = errors.New("payment must be a positive number")
	ErrInvalidStatus       = errors.New("unknown project status")
	ErrRemarkEmpty         = errors.New("remark cannot be empty")
	ErrRemarkTooLong       = errors.New("remark is too long")
	ErrAlreadyApplied      = errors.New("you already applied to this project")
	ErrNotPermitted        = errors.New("you are not allowed to do this")
)

var deadlineLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04",
	time.RFC3339,
	time.RFC3339Nano,
}

// ProjectService handles project and application business logic
type ProjectService struct {
	projectRepo repository.ProjectRepository
	now         func() time.Time
}

// NewProjectService creates a new ProjectService
func NewProjectService(projectRepo repository.ProjectRepository) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		now:         time.Now,
	}
}

// ListProjectsInput represents filters for listing projects
type ListProjectsInput struct {
	// Mine lists the projects UserID created or is assigned to
	Mine   bool
	UserID string
	Status string
	Search string
	Page   int
	Limit  int
}

// CreateProjectInput holds the project form as submitted
type CreateProjectInput struct {
	Title       string
	Description string
	Deadline    string
	Payment     string
}

// UpdateProjectInput holds the fields to change; nil leaves a field alone
type UpdateProjectInput struct {
	Title       *string
	Description *string
	Deadline    *string
	Payment     *string
}

// ApplyInput holds the apply form as submitted. Payment stays a string until
// validated so malformed input never reaches the backend.
type ApplyInput struct {
	ProjectID        string
	ProposedDeadline string
	ProposedPayment  string
	CoverLetter      string
}

// List returns projects matching the filter
func (s *ProjectService) List(ctx context.Context, input ListProjectsInput) ([]models.Project, error) {
	var (
		projects []models.Project
		err      error
	)
	if input.Mine {
		projects, err = s.projectRepo.ListForUser(ctx, input.UserID)
	} else {
		filter := repository.ProjectFilter{
			Search: strings.TrimSpace(input.Search),
			Page:   input.Page,
			Limit:  input.Limit,
		}
		if input.Status != "" {
			status := models.ProjectStatus(input.Status)
			if !status.Valid() {
				return nil, ErrInvalidStatus
			}
			filter.Status = status
		}
		projects, err = s.projectRepo.List(ctx, filter)
	}

	if err != nil {
		if backend.IsNotFound(err) {
			return []models.Project{}, nil
		}
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	if projects == nil {
		projects = []models.Project{}
	}
	return projects, nil
}

// Get returns a project by ID
func (s *ProjectService) Get(ctx context.Context, id string) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		return nil, projectError(err, "failed to find project")
	}
	return project, nil
}

// Create validates and creates a project
func (s *ProjectService) Create(ctx context.Context, input CreateProjectInput) (*models.Project, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, ErrDescriptionRequired
	}

	repoInput := repository.ProjectInput{Title: title, Description: description}
	if strings.TrimSpace(input.Deadline) != "" {
		deadline, err := s.parseDeadline(input.Deadline)
		if err != nil {
			return nil, err
		}
		repoInput.Deadline = &deadline
	}
	if strings.TrimSpace(input.Payment) != "" {
		payment, err := parsePayment(input.Payment)
		if err != nil {
			return nil, err
		}
		repoInput.Payment = &payment
	}

	project, err := s.projectRepo.Create(ctx, repoInput)
	if err != nil {
		return nil, projectError(err, "failed to create project")
	}
	return project, nil
}

// Update changes the given project fields
func (s *ProjectService) Update(ctx context.Context, id string, input UpdateProjectInput) (*models.Project, error) {
	var repoInput repository.ProjectInput

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrTitleRequired
		}
		repoInput.Title = title
	}
	if input.Description != nil {
		description := strings.TrimSpace(*input.Description)
		if description == "" {
			return nil, ErrDescriptionRequired
		}
		repoInput.Description = description
	}
	if input.Deadline != nil {
		deadline, err := s.parseDeadline(*input.Deadline)
		if err != nil {
			return nil, err
		}
		repoInput.Deadline = &deadline
	}
	if input.Payment != nil {
		payment, err := parsePayment(*input.Payment)
		if err != nil {
			return nil, err
		}
		repoInput.Payment = &payment
	}

	project, err := s.projectRepo.Update(ctx, id, repoInput)
	if err != nil {
		return nil, projectError(err, "failed to update project")
	}
	return project, nil
}

// UpdateStatus requests a status change. Any known status may be requested;
// the backend decides whether the transition is allowed.
func (s *ProjectService) UpdateStatus(ctx context.Context, id, status string) (*models.Project, error) {
	next := models.ProjectStatus(strings.TrimSpace(status))
	if !next.Valid() {
		return nil, ErrInvalidStatus
	}

	project, err := s.projectRepo.UpdateStatus(ctx, id, next)
	if err != nil {
		return nil, projectError(err, "failed to update project status")
	}
	return project, nil
}

// Apply validates a freelancer's bid and submits it. Validation failures
// return before any backend call.
func (s *ProjectService) Apply(ctx context.Context, input ApplyInput) (*models.Application, error) {
	payment, err := parsePayment(input.ProposedPayment)
	if err != nil {
		return nil, err
	}
	deadline, err := s.parseDeadline(input.ProposedDeadline)
	if err != nil {
		return nil, err
	}

	application, err := s.projectRepo.Apply(ctx, input.ProjectID, repository.ApplicationInput{
		ProposedDeadline: deadline,
		ProposedPayment:  payment,
		CoverLetter:      strings.TrimSpace(input.CoverLetter),
	})
	if err != nil {
		if backend.StatusOf(err) == http.StatusConflict {
			return nil, ErrAlreadyApplied
		}
		return nil, projectError(err, "failed to apply to project")
	}
	return application, nil
}

// Applications returns the applications submitted to a project
func (s *ProjectService) Applications(ctx context.Context, projectID string) ([]models.Application, error) {
	applications, err := s.projectRepo.ListApplications(ctx, projectID)
	if err != nil {
		if backend.IsNotFound(err) {
			return []models.Application{}, nil
		}
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return nonNilApplications(applications), nil
}

// PendingApplications returns every application awaiting an admin decision
func (s *ProjectService) PendingApplications(ctx context.Context) ([]models.Application, error) {
	applications, err := s.projectRepo.ListPendingApplications(ctx)
	if err != nil {
		if backend.IsNotFound(err) {
			return []models.Application{}, nil
		}
		return nil, fmt.Errorf("failed to list pending applications: %w", err)
	}
	return nonNilApplications(applications), nil
}

// Approve approves an application and returns the pending list as the
// backend reports it afterwards.
func (s *ProjectService) Approve(ctx context.Context, applicationID string) ([]models.Application, error) {
	if err := s.projectRepo.ApproveApplication(ctx, applicationID); err != nil {
		return nil, applicationError(err, "failed to approve application")
	}
	return s.PendingApplications(ctx)
}

// Reject rejects an application and returns the refreshed pending list.
func (s *ProjectService) Reject(ctx context.Context, applicationID string) ([]models.Application, error) {
	if err := s.projectRepo.RejectApplication(ctx, applicationID); err != nil {
		return nil, applicationError(err, "failed to reject application")
	}
	return s.PendingApplications(ctx)
}

// AddRemark appends a remark to the project's log
func (s *ProjectService) AddRemark(ctx context.Context, projectID, content string) (*models.Project, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrRemarkEmpty
	}
	if len([]rune(content)) > constants.MaxRemarkLength {
		return nil, ErrRemarkTooLong
	}

	project, err := s.projectRepo.AddRemark(ctx, projectID, content)
	if err != nil {
		return nil, projectError(err, "failed to add remark")
	}
	return project, nil
}

// parseDeadline accepts a date or a timestamp. Dates mean the end of that
// day, so today is a valid deadline.
func (s *ProjectService) parseDeadline(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range deadlineLayouts {
		t, err := time.Parse(layout, raw)
		if err != nil {
			continue
		}
		if layout == "2006-01-02" {
			t = t.Add(24*time.Hour - time.Second)
		}
		if t.Before(s.now()) {
			return time.Time{}, ErrDeadlineInPast
		}
		return t, nil
	}
	return time.Time{}, ErrInvalidDeadline
}

func parsePayment(raw string) (float64, error) {
	amount, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return 0, ErrInvalidPayment
	}
	return amount, nil
}

func projectError(err error, msg string) error {
	switch backend.StatusOf(err) {
	case http.StatusNotFound:
		return ErrProjectNotFound
	case http.StatusForbidden:
		return ErrNotPermitted
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func applicationError(err error, msg string) error {
	switch backend.StatusOf(err) {
	case http.StatusNotFound:
		return ErrApplicationNotFound
	case http.StatusForbidden:
		return ErrNotPermitted
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func nonNilApplications(applications []models.Application) []models.Application {
	if applications == nil {
		return []models.Application{}
	}
	return applications
}
