package dto

import (
	"time"

	"github.com/workbridg/workbridg-web/internal/models"
)

// ProjectListResponse represents a page of projects
type ProjectListResponse struct {
	Projects []models.Project `json:"projects"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

// ApplicationListResponse is returned by application listings and after an
// application decision, always as read back from the server
type ApplicationListResponse struct {
	Applications []models.Application `json:"applications"`
}

// ProjectDraftDTO is a suggested project generated from a free-text brief
type ProjectDraftDTO struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Deadline    *time.Time `json:"deadline"`
}
