package models

import "time"

type ProjectStatus string

const (
	ProjectStatusUnassigned ProjectStatus = "unassigned"
	ProjectStatusPending    ProjectStatus = "pending"
	ProjectStatusInProgress ProjectStatus = "in-progress"
	ProjectStatusCompleted  ProjectStatus = "completed"
	ProjectStatusCancelled  ProjectStatus = "cancelled"
)

// Valid reports whether s is a status the backend understands. No transition
// rules are applied here.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectStatusUnassigned, ProjectStatusPending, ProjectStatusInProgress,
		ProjectStatusCompleted, ProjectStatusCancelled:
		return true
	}
	return false
}

type Project struct {
	ID          string        `json:"_id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Status      ProjectStatus `json:"status"`
	Deadline    *time.Time    `json:"deadline,omitempty"`
	CreatedBy   *UserRef      `json:"createdBy,omitempty"`
	AssignedTo  *UserRef      `json:"assignedTo,omitempty"`
	Payment     Payment       `json:"payment"`
	Remarks     []Remark      `json:"remarks,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// UserRef is the trimmed user object the backend embeds in other resources.
type UserRef struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	FullName string `json:"fullName,omitempty"`
	Role     Role   `json:"role,omitempty"`
}

type Payment struct {
	Amount float64 `json:"amount"`
	Status string  `json:"status,omitempty"`
}

type Remark struct {
	Author    *UserRef  `json:"author,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "pending"
	ApplicationStatusApproved ApplicationStatus = "approved"
	ApplicationStatusRejected ApplicationStatus = "rejected"
)

// Application is a freelancer's bid on an open project.
type Application struct {
	ID               string            `json:"_id"`
	ProjectID        string            `json:"projectId"`
	Project          *Project          `json:"project,omitempty"`
	Freelancer       *UserRef          `json:"freelancer,omitempty"`
	ProposedDeadline time.Time         `json:"proposedDeadline"`
	ProposedPayment  float64           `json:"proposedPayment"`
	CoverLetter      string            `json:"coverLetter,omitempty"`
	Status           ApplicationStatus `json:"status"`
	CreatedAt        time.Time         `json:"createdAt"`
}
