package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/workbridg/workbridg-web/internal/middleware"
	"github.com/workbridg/workbridg-web/internal/models"
)

// Handlers groups every handler served by the router.
type Handlers struct {
	Auth    *AuthHandler
	Pages   *PageHandler
	Project *ProjectHandler
	Chat    *ChatHandler
	Health  *HealthHandler
}

// Register mounts pages, form posts, the JSON API and the operational
// endpoints. Session middleware must already be installed on r.
func (h Handlers) Register(r *gin.Engine) {
	r.GET("/health", h.Health.Health)
	r.GET("/readyz", h.Health.Ready)

	// Public pages
	r.GET("/", h.Pages.Home)
	r.GET("/about", h.Pages.About)
	r.GET("/how-it-works", h.Pages.HowItWorks)
	r.GET("/u/:username", h.Pages.PublicProfile)
	r.NoRoute(h.Pages.NotFound)

	// Auth forms
	r.GET("/login", h.Auth.LoginPage)
	r.POST("/login", h.Auth.Login)
	r.GET("/register", h.Auth.RegisterPage)
	r.POST("/register", h.Auth.Register)
	r.POST("/logout", h.Auth.Logout)

	// Signed-in pages
	pages := r.Group("")
	pages.Use(middleware.RequirePageAuth())
	{
		pages.GET("/set-details", h.Auth.SetDetailsPage)
		pages.POST("/set-details", h.Auth.SetDetails)
		pages.GET("/dashboard", h.Pages.Dashboard)
		pages.GET("/dashboard/freelancer", middleware.RequireDashboardRole(models.RoleFreelancer), h.Pages.FreelancerDashboard)
		pages.GET("/dashboard/client", middleware.RequireDashboardRole(models.RoleClient), h.Pages.ClientDashboard)
		pages.GET("/dashboard/admin", middleware.RequireDashboardRole(models.RoleAdmin), h.Pages.AdminDashboard)
		pages.GET("/dashboard/messages", h.Pages.Messages)
	}

	api := r.Group("/api")
	api.Use(middleware.RequireAuth())
	{
		api.GET("/me", h.Auth.Me)

		projects := api.Group("/projects")
		{
			projects.GET("", h.Project.ListProjects)
			projects.POST("", middleware.RequireRole(models.RoleClient, models.RoleAdmin), h.Project.CreateProject)
			projects.POST("/draft", middleware.RequireRole(models.RoleClient, models.RoleAdmin), h.Project.DraftProject)
			projects.GET("/:id", h.Project.GetProject)
			projects.PATCH("/:id", middleware.RequireRole(models.RoleClient, models.RoleAdmin), h.Project.UpdateProject)
			projects.PATCH("/:id/status", middleware.RequireRole(models.RoleClient, models.RoleAdmin), h.Project.UpdateStatus)
			projects.POST("/:id/apply", middleware.RequireRole(models.RoleFreelancer), h.Project.Apply)
			projects.GET("/:id/applications", middleware.RequireRole(models.RoleClient, models.RoleAdmin), h.Project.ListApplications)
			projects.POST("/:id/remarks", h.Project.AddRemark)
		}

		applications := api.Group("/applications")
		applications.Use(middleware.RequireRole(models.RoleAdmin))
		{
			applications.GET("", h.Project.ListPendingApplications)
			applications.POST("/:id/approve", h.Project.ApproveApplication)
			applications.POST("/:id/reject", h.Project.RejectApplication)
		}

		chats := api.Group("/chats")
		{
			chats.GET("", h.Chat.ListChats)
			chats.GET("/stream", h.Chat.StreamChats)
			chats.POST("", h.Chat.StartChat)
			chats.POST("/group", middleware.RequireRole(models.RoleAdmin), h.Chat.CreateGroup)
			chats.POST("/:id/messages", h.Chat.SendMessage)
			chats.PATCH("/:id/read", h.Chat.MarkRead)
			chats.POST("/:id/admin", h.Chat.AddAdmin)
			chats.PATCH("/:id/approve", middleware.RequireRole(models.RoleAdmin), h.Chat.ApproveChat)
			chats.POST("/:id/participants", h.Chat.AddParticipant)
			chats.DELETE("/:id/participants/:userId", h.Chat.RemoveParticipant)
		}
	}
}
