package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/workbridg/workbridg-web/internal/constants"
	"github.com/workbridg/workbridg-web/internal/dto"
	apierrors "github.com/workbridg/workbridg-web/internal/errors"
	"github.com/workbridg/workbridg-web/internal/logging"
	"github.com/workbridg/workbridg-web/internal/middleware"
	"github.com/workbridg/workbridg-web/internal/services"
	"github.com/workbridg/workbridg-web/internal/utils"
)

type ProjectHandler struct {
	projectService *services.ProjectService
	draftService   *services.DraftService
	log            logrus.FieldLogger
}

// NewProjectHandler creates a ProjectHandler. draftService may be nil, in
// which case drafting answers 503.
func NewProjectHandler(projectService *services.ProjectService, draftService *services.DraftService, log logrus.FieldLogger) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		draftService:   draftService,
		log:            log,
	}
}

// ListProjects returns projects. With mine=true it lists the caller's own
// projects, otherwise it filters by status and search text.
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	params := utils.GetPaginationParams(c)

	projects, err := h.projectService.List(c.Request.Context(), services.ListProjectsInput{
		Mine:   c.Query("mine") == "true",
		UserID: userID,
		Status: c.Query("status"),
		Search: c.Query("search"),
		Page:   params.Page,
		Limit:  params.Limit,
	})
	if err != nil {
		h.respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ProjectListResponse{
		Projects: projects,
		Page:     params.Page,
		PageSize: params.Limit,
	})
}

// GetProject returns a single project
func (h *ProjectHandler) GetProject(c *gin.Context) {
	project, err := h.projectService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondProjectError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// CreateProject creates a project on behalf of a client
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	type CreateProjectRequest struct {
		Title       string      `json:"title" form:"title"`
		Description string      `json:"description" form:"description"`
		Deadline    string      `json:"deadline" form:"deadline"`
		Payment     looseString `json:"payment" form:"payment"`
	}

	var req CreateProjectRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return
	}

	project, err := h.projectService.Create(c.Request.Context(), services.CreateProjectInput{
		Title:       req.Title,
		Description: req.Description,
		Deadline:    req.Deadline,
		Payment:     string(req.Payment),
	})
	if err != nil {
		h.respondProjectError(c, err)
		return
	}
	c.JSON(http.StatusCreated, project)
}

// UpdateProject changes the fields present in the request
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	type UpdateProjectRequest struct {
		Title       *string      `json:"title"`
		Description *string      `json:"description"`
		Deadline    *string      `json:"deadline"`
		Payment     *looseString `json:"payment"`
	}

	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	project, err := h.projectService.Update(c.Request.Context(), c.Param("id"), services.UpdateProjectInput{
		Title:       req.Title,
		Description: req.Description,
		Deadline:    req.Deadline,
		Payment:     req.Payment.ptr(),
	})
	if err != nil {
		h.respondProjectError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// UpdateStatus requests a project status change
func (h *ProjectHandler) UpdateStatus(c *gin.Context) {
	type UpdateStatusRequest struct {
		Status string `json:"status" form:"status" binding:"required"`
	}

	var req UpdateStatusRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return
	}

	project, err := h.projectService.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		h.respondProjectError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// Apply submits a freelancer's application. Payment and deadline are
// validated here; malformed values never reach the backend.
func (h *ProjectHandler) Apply(c *gin.Context) {
	type ApplyRequest struct {
		ProposedDeadline string      `json:"proposed_deadline" form:"proposed_deadline"`
		ProposedPayment  looseString `json:"proposed_payment" form:"proposed_payment"`
		CoverLetter      string      `json:"cover_letter" form:"cover_letter"`
	}

	var req ApplyRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return
	}

	application, err := h.projectService.Apply(c.Request.Context(), services.ApplyInput{
		ProjectID:        c.Param("id"),
		ProposedDeadline: req.ProposedDeadline,
		ProposedPayment:  string(req.ProposedPayment),
		CoverLetter:      req.CoverLetter,
	})
	if err != nil {
		h.respondProjectError(c, err)
		return
	}
	c.JSON(http.StatusCreated, application)
}

// ListApplications returns the applications submitted to a project
func (h *ProjectHandler) ListApplications(c *gin.Context) {
	applications, err := h.projectService.Applications(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondProjectError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ApplicationListResponse{Applications: applications})
}

// ListPendingApplications returns applications awaiting a decision
func (h *ProjectHandler) ListPendingApplications(c *gin.Context) {
	applications, err := h.projectService.PendingApplications(c.Request.Context())
	if err != nil {
		h.respondProjectError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ApplicationListResponse{Applications: applications})
}

// ApproveApplication approves an application and returns the pending list
// re-read from the server
func (h *ProjectHandler) ApproveApplication(c *gin.Context) {
	applications, err := h.projectService.Approve(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondProjectError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ApplicationListResponse{Applications: applications})
}

// RejectApplication rejects an application and returns the pending list
// re-read from the server
func (h *ProjectHandler) RejectApplication(c *gin.Context) {
	applications, err := h.projectService.Reject(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondProjectError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ApplicationListResponse{Applications: applications})
}

// AddRemark appends a remark to a project
func (h *ProjectHandler) AddRemark(c *gin.Context) {
	type RemarkRequest struct {
		Content string `json:"content" form:"content"`
	}

	var req RemarkRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return
	}

	project, err := h.projectService.AddRemark(c.Request.Context(), c.Param("id"), req.Content)
	if err != nil {
		h.respondProjectError(c, err)
		return
	}
	c.JSON(http.StatusCreated, project)
}

// DraftProject suggests a project from a free-text brief
func (h *ProjectHandler) DraftProject(c *gin.Context) {
	if h.draftService == nil {
		apierrors.ServiceUnavailable(c, "Project drafting is not configured")
		return
	}

	type DraftRequest struct {
		Brief string `json:"brief" form:"brief"`
	}

	var req DraftRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return
	}

	draft, err := h.draftService.DraftProject(c.Request.Context(), req.Brief)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBriefRequired):
			apierrors.BadRequest(c, err.Error())
		case errors.Is(err, services.ErrBriefTooLong):
			apierrors.BadRequest(c, fmt.Sprintf("Brief must be at most %d characters", constants.MaxDraftBriefLength))
		default:
			logging.FromContext(c, h.log).WithError(err).Warn("Project draft failed")
			apierrors.BadGateway(c, "Could not draft a project right now")
		}
		return
	}

	c.JSON(http.StatusOK, dto.ProjectDraftDTO{
		Title:       draft.Title,
		Description: draft.Description,
		Deadline:    draft.Deadline,
	})
}

func (h *ProjectHandler) respondProjectError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrProjectNotFound),
		errors.Is(err, services.ErrApplicationNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrNotPermitted):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrAlreadyApplied):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrDescriptionRequired),
		errors.Is(err, services.ErrInvalidDeadline),
		errors.Is(err, services.ErrDeadlineInPast),
		errors.Is(err, services.ErrInvalidPayment),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrRemarkEmpty):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrRemarkTooLong):
		apierrors.BadRequest(c, fmt.Sprintf("Remark must be at most %d characters", constants.MaxRemarkLength))
	default:
		logging.FromContext(c, h.log).WithError(err).Warn("Project request failed")
		respondUpstreamError(c, h.log, err)
	}
}
