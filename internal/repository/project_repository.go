package repository

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/workbridg/workbridg-web/internal/backend"
	"github.com/workbridg/workbridg-web/internal/models"
)

// HTTPProjectRepository implements ProjectRepository against the backend API
type HTTPProjectRepository struct {
	client *backend.Client
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(client *backend.Client) ProjectRepository {
	return &HTTPProjectRepository{client: client}
}

func projectPath(id string, rest ...string) string {
	p := "/projects/" + url.PathEscape(id)
	for _, r := range rest {
		p += "/" + r
	}
	return p
}

func (r *HTTPProjectRepository) List(ctx context.Context, filter ProjectFilter) ([]models.Project, error) {
	query := url.Values{}
	if filter.Status != "" {
		query.Set("status", string(filter.Status))
	}
	if filter.Search != "" {
		query.Set("search", filter.Search)
	}
	if filter.Page > 0 {
		query.Set("page", strconv.Itoa(filter.Page))
	}
	if filter.Limit > 0 {
		query.Set("limit", strconv.Itoa(filter.Limit))
	}

	var projects []models.Project
	if err := r.client.Do(ctx, http.MethodGet, "/projects", query, nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *HTTPProjectRepository) ListForUser(ctx context.Context, userID string) ([]models.Project, error) {
	var projects []models.Project
	if err := r.client.Do(ctx, http.MethodGet, "/projects/user/"+url.PathEscape(userID), nil, nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *HTTPProjectRepository) FindByID(ctx context.Context, id string) (*models.Project, error) {
	var project models.Project
	if err := r.client.Do(ctx, http.MethodGet, projectPath(id), nil, nil, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *HTTPProjectRepository) Create(ctx context.Context, input ProjectInput) (*models.Project, error) {
	var project models.Project
	if err := r.client.Do(ctx, http.MethodPost, "/projects", nil, input, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *HTTPProjectRepository) Update(ctx context.Context, id string, input ProjectInput) (*models.Project, error) {
	var project models.Project
	if err := r.client.Do(ctx, http.MethodPatch, projectPath(id), nil, input, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *HTTPProjectRepository) UpdateStatus(ctx context.Context, id string, status models.ProjectStatus) (*models.Project, error) {
	var project models.Project
	body := map[string]models.ProjectStatus{"status": status}
	if err := r.client.Do(ctx, http.MethodPatch, projectPath(id, "status"), nil, body, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *HTTPProjectRepository) Apply(ctx context.Context, projectID string, input ApplicationInput) (*models.Application, error) {
	var application models.Application
	if err := r.client.Do(ctx, http.MethodPost, projectPath(projectID, "apply"), nil, input, &application); err != nil {
		return nil, err
	}
	return &application, nil
}

func (r *HTTPProjectRepository) ListApplications(ctx context.Context, projectID string) ([]models.Application, error) {
	var applications []models.Application
	if err := r.client.Do(ctx, http.MethodGet, projectPath(projectID, "applications"), nil, nil, &applications); err != nil {
		return nil, err
	}
	return applications, nil
}

func (r *HTTPProjectRepository) ListPendingApplications(ctx context.Context) ([]models.Application, error) {
	var applications []models.Application
	query := url.Values{"status": []string{string(models.ApplicationStatusPending)}}
	if err := r.client.Do(ctx, http.MethodGet, "/projects/applications", query, nil, &applications); err != nil {
		return nil, err
	}
	return applications, nil
}

func (r *HTTPProjectRepository) ApproveApplication(ctx context.Context, applicationID string) error {
	return r.client.Do(ctx, http.MethodPost, "/projects/applications/"+url.PathEscape(applicationID)+"/approve", nil, nil, nil)
}

func (r *HTTPProjectRepository) RejectApplication(ctx context.Context, applicationID string) error {
	return r.client.Do(ctx, http.MethodPost, "/projects/applications/"+url.PathEscape(applicationID)+"/reject", nil, nil, nil)
}

func (r *HTTPProjectRepository) AddRemark(ctx context.Context, projectID, content string) (*models.Project, error) {
	var project models.Project
	body := map[string]string{"content": content}
	if err := r.client.Do(ctx, http.MethodPost, projectPath(projectID, "remarks"), nil, body, &project); err != nil {
		return nil, err
	}
	return &project, nil
}
