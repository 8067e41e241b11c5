package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/workbridg/workbridg-web/internal/constants"
	"github.com/workbridg/workbridg-web/internal/dto"
	"github.com/workbridg/workbridg-web/internal/logging"
	"github.com/workbridg/workbridg-web/internal/middleware"
	"github.com/workbridg/workbridg-web/internal/models"
	"github.com/workbridg/workbridg-web/internal/services"
)

// PageHandler renders the public pages and the role dashboards.
type PageHandler struct {
	authService    *services.AuthService
	projectService *services.ProjectService
	chatService    *services.ChatService
	log            logrus.FieldLogger
}

func NewPageHandler(
	authService *services.AuthService,
	projectService *services.ProjectService,
	chatService *services.ChatService,
	log logrus.FieldLogger,
) *PageHandler {
	return &PageHandler{
		authService:    authService,
		projectService: projectService,
		chatService:    chatService,
		log:            log,
	}
}

// viewer is the signed-in user as the page layout sees it
type viewer struct {
	ID        string
	Username  string
	Role      string
	Dashboard string
}

// renderPage renders a template inside the shared layout. data may be nil.
func renderPage(c *gin.Context, status int, name, title string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Title"] = title
	data["Year"] = time.Now().Year()
	if userID, ok := middleware.GetUserID(c); ok {
		role := middleware.GetRole(c)
		data["Viewer"] = viewer{
			ID:        userID,
			Username:  middleware.GetUsername(c),
			Role:      string(role),
			Dashboard: role.DashboardPath(),
		}
	}
	c.HTML(status, name, data)
}

func (h *PageHandler) Home(c *gin.Context) {
	renderPage(c, http.StatusOK, "home.html", "Workbridg", nil)
}

func (h *PageHandler) About(c *gin.Context) {
	renderPage(c, http.StatusOK, "about.html", "About", nil)
}

func (h *PageHandler) HowItWorks(c *gin.Context) {
	renderPage(c, http.StatusOK, "how_it_works.html", "How it works", nil)
}

// NotFound renders the 404 page for unknown routes.
func (h *PageHandler) NotFound(c *gin.Context) {
	renderPage(c, http.StatusNotFound, "error.html", "Page not found", gin.H{
		"Message": "The page you are looking for does not exist.",
	})
}

// Dashboard sends the user to the dashboard of their role. A session with
// an unknown role cannot own a dashboard and is ended.
func (h *PageHandler) Dashboard(c *gin.Context) {
	role := middleware.GetRole(c)
	if !role.Valid() {
		if err := middleware.EndSession(c); err != nil {
			logging.FromContext(c, h.log).WithError(err).Error("Failed to clear session")
		}
		c.Redirect(http.StatusSeeOther, "/login")
		return
	}
	c.Redirect(http.StatusSeeOther, role.DashboardPath())
}

// FreelancerDashboard lists open projects and the freelancer's own work.
func (h *PageHandler) FreelancerDashboard(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	ctx := c.Request.Context()
	data := gin.H{}

	open, err := h.projectService.List(ctx, services.ListProjectsInput{
		Status: string(models.ProjectStatusUnassigned),
		Search: c.Query("search"),
		Limit:  constants.DefaultPageSize,
	})
	if h.pageFailed(c, err, data) {
		return
	}
	data["OpenProjects"] = open
	data["Search"] = c.Query("search")

	mine, err := h.projectService.List(ctx, services.ListProjectsInput{Mine: true, UserID: userID})
	if h.pageFailed(c, err, data) {
		return
	}
	data["MyProjects"] = mine

	if !h.addUnread(c, userID, data) {
		return
	}
	renderPage(c, http.StatusOK, "dashboard_freelancer.html", "Freelancer dashboard", data)
}

// ClientDashboard lists the client's projects with their applications.
func (h *PageHandler) ClientDashboard(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	data := gin.H{}

	mine, err := h.projectService.List(c.Request.Context(), services.ListProjectsInput{Mine: true, UserID: userID})
	if h.pageFailed(c, err, data) {
		return
	}
	data["MyProjects"] = mine
	data["Statuses"] = projectStatuses

	if !h.addUnread(c, userID, data) {
		return
	}
	renderPage(c, http.StatusOK, "dashboard_client.html", "Client dashboard", data)
}

// AdminDashboard lists pending applications and every project.
func (h *PageHandler) AdminDashboard(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	ctx := c.Request.Context()
	data := gin.H{}

	pending, err := h.projectService.PendingApplications(ctx)
	if h.pageFailed(c, err, data) {
		return
	}
	data["Applications"] = pending

	projects, err := h.projectService.List(ctx, services.ListProjectsInput{
		Status: c.Query("status"),
		Limit:  constants.MaxPageSize,
	})
	if errors.Is(err, services.ErrInvalidStatus) {
		data["Error"] = "Unknown project status filter"
		err = nil
	}
	if h.pageFailed(c, err, data) {
		return
	}
	data["Projects"] = projects
	data["Statuses"] = projectStatuses

	if !h.addUnread(c, userID, data) {
		return
	}
	renderPage(c, http.StatusOK, "dashboard_admin.html", "Admin dashboard", data)
}

// Messages renders the chat workspace. The chat query parameter preselects
// a thread; the browser also honours "#messages:<id>" fragments.
func (h *PageHandler) Messages(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	data := gin.H{}

	list, err := h.chatService.List(c.Request.Context(), services.ListChatsInput{
		UserID:  userID,
		Current: c.Query("chat"),
	})
	if h.pageFailed(c, err, data) {
		return
	}
	if list != nil {
		response := dto.ToChatListResponse(list.Chats, userID)
		response.SelectedChatID = list.SelectedChatID
		data["Chats"] = response.Chats
		data["Key"] = response.Key
		data["TotalUnread"] = response.TotalUnread
		data["SelectedChatID"] = list.SelectedChatID
		for _, item := range response.Chats {
			if item.ID == list.SelectedChatID {
				selected := item
				data["Selected"] = &selected
			}
		}
	}
	data["IsAdmin"] = middleware.GetRole(c) == models.RoleAdmin
	renderPage(c, http.StatusOK, "messages.html", "Messages", data)
}

// PublicProfile renders a user's public profile.
func (h *PageHandler) PublicProfile(c *gin.Context) {
	user, err := h.authService.PublicProfile(c.Request.Context(), c.Param("username"))
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			renderPage(c, http.StatusNotFound, "error.html", "Profile not found", gin.H{
				"Message": "No user goes by that name.",
			})
			return
		}
		if pageSessionExpired(c, h.log, err) {
			return
		}
		logging.FromContext(c, h.log).WithError(err).Warn("Failed to load profile")
		renderPage(c, http.StatusBadGateway, "error.html", "Profile unavailable", gin.H{
			"Message": pageErrorMessage(err),
		})
		return
	}
	renderPage(c, http.StatusOK, "profile.html", user.Username, gin.H{
		"Profile": dto.ToPublicProfileDTO(*user),
	})
}

// pageFailed handles a failed section load. An expired session ends the
// request with a redirect; anything else becomes an inline error and the
// page keeps rendering.
func (h *PageHandler) pageFailed(c *gin.Context, err error, data gin.H) bool {
	if err == nil {
		return false
	}
	if pageSessionExpired(c, h.log, err) {
		return true
	}
	logging.FromContext(c, h.log).WithError(err).Warn("Failed to load dashboard section")
	data["Error"] = pageErrorMessage(err)
	return false
}

func (h *PageHandler) addUnread(c *gin.Context, userID string, data gin.H) bool {
	list, err := h.chatService.List(c.Request.Context(), services.ListChatsInput{UserID: userID})
	if err != nil {
		return !h.pageFailed(c, err, data)
	}
	data["Unread"] = dto.ToChatListResponse(list.Chats, userID).TotalUnread
	return true
}

var projectStatuses = []models.ProjectStatus{
	models.ProjectStatusUnassigned,
	models.ProjectStatusPending,
	models.ProjectStatusInProgress,
	models.ProjectStatusCompleted,
	models.ProjectStatusCancelled,
}
