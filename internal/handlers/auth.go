package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/workbridg/workbridg-web/internal/backend"
	"github.com/workbridg/workbridg-web/internal/constants"
	"github.com/workbridg/workbridg-web/internal/dto"
	"github.com/workbridg/workbridg-web/internal/logging"
	"github.com/workbridg/workbridg-web/internal/middleware"
	"github.com/workbridg/workbridg-web/internal/models"
	"github.com/workbridg/workbridg-web/internal/services"
	"github.com/workbridg/workbridg-web/internal/utils"
)

// AuthHandler serves the login, registration and profile-details forms.
type AuthHandler struct {
	authService *services.AuthService
	log         logrus.FieldLogger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		log:         log,
	}
}

// LoginPage renders the login form.
func (h *AuthHandler) LoginPage(c *gin.Context) {
	if _, ok := middleware.GetUserID(c); ok {
		c.Redirect(http.StatusSeeOther, middleware.GetRole(c).DashboardPath())
		return
	}
	renderPage(c, http.StatusOK, "login.html", "Log in", gin.H{
		"Next": c.Query("next"),
	})
}

// Login authenticates the user and initializes the session.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginForm struct {
		Identifier string `form:"identifier"`
		Password   string `form:"password"`
		Next       string `form:"next"`
	}

	var form LoginForm
	if err := c.ShouldBind(&form); err != nil {
		renderPage(c, http.StatusBadRequest, "login.html", "Log in", gin.H{"Error": "Invalid form submission"})
		return
	}

	result, err := h.authService.Login(c.Request.Context(), services.LoginInput{
		Identifier: form.Identifier,
		Password:   form.Password,
	})
	if err != nil {
		status, msg := authErrorStatus(err)
		if status >= http.StatusInternalServerError {
			logging.FromContext(c, h.log).WithError(err).Error("Login failed")
		}
		renderPage(c, status, "login.html", "Log in", gin.H{
			"Error":      msg,
			"Identifier": form.Identifier,
			"Next":       form.Next,
		})
		return
	}

	if err := middleware.StartSession(c, result.User, result.Tokens); err != nil {
		logging.FromContext(c, h.log).WithError(err).Error("Failed to save session")
		renderPage(c, http.StatusInternalServerError, "login.html", "Log in", gin.H{"Error": "Failed to save session"})
		return
	}

	c.Redirect(http.StatusSeeOther, afterLogin(result.User, form.Next))
}

// RegisterPage renders the registration form.
func (h *AuthHandler) RegisterPage(c *gin.Context) {
	if _, ok := middleware.GetUserID(c); ok {
		c.Redirect(http.StatusSeeOther, middleware.GetRole(c).DashboardPath())
		return
	}
	renderPage(c, http.StatusOK, "register.html", "Create an account", gin.H{
		"Role": c.DefaultQuery("role", string(models.RoleFreelancer)),
	})
}

// Register creates an account, signs it in and continues to profile details.
func (h *AuthHandler) Register(c *gin.Context) {
	type RegisterForm struct {
		Username string `form:"username"`
		Email    string `form:"email"`
		FullName string `form:"full_name"`
		Password string `form:"password"`
		Role     string `form:"role"`
	}

	var form RegisterForm
	if err := c.ShouldBind(&form); err != nil {
		renderPage(c, http.StatusBadRequest, "register.html", "Create an account", gin.H{
			"Error": "Invalid form submission",
			"Role":  string(models.RoleFreelancer),
		})
		return
	}

	result, err := h.authService.Register(c.Request.Context(), services.RegisterInput{
		Username: form.Username,
		Email:    form.Email,
		FullName: form.FullName,
		Password: form.Password,
		Role:     models.Role(form.Role),
	})
	if err != nil {
		status, msg := authErrorStatus(err)
		if status >= http.StatusInternalServerError {
			logging.FromContext(c, h.log).WithError(err).Error("Registration failed")
		}
		renderPage(c, status, "register.html", "Create an account", gin.H{
			"Error":    msg,
			"Username": form.Username,
			"Email":    form.Email,
			"FullName": form.FullName,
			"Role":     form.Role,
		})
		return
	}

	if err := middleware.StartSession(c, result.User, result.Tokens); err != nil {
		logging.FromContext(c, h.log).WithError(err).Error("Failed to save session")
		renderPage(c, http.StatusInternalServerError, "register.html", "Create an account", gin.H{"Error": "Failed to save session"})
		return
	}

	c.Redirect(http.StatusSeeOther, "/set-details")
}

// Logout ends the session here and on the backend.
func (h *AuthHandler) Logout(c *gin.Context) {
	if _, ok := middleware.GetUserID(c); ok {
		if err := h.authService.Logout(c.Request.Context()); err != nil {
			logging.FromContext(c, h.log).WithError(err).Warn("Backend logout failed")
		}
	}
	if err := middleware.EndSession(c); err != nil {
		logging.FromContext(c, h.log).WithError(err).Error("Failed to clear session")
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// SetDetailsPage renders the role-specific profile form.
func (h *AuthHandler) SetDetailsPage(c *gin.Context) {
	role := middleware.GetRole(c)
	if role == models.RoleAdmin {
		c.Redirect(http.StatusSeeOther, role.DashboardPath())
		return
	}

	data := gin.H{"Role": string(role)}
	user, err := h.authService.CurrentUser(c.Request.Context())
	if err != nil {
		if pageSessionExpired(c, h.log, err) {
			return
		}
		data["Error"] = pageErrorMessage(err)
	} else if user.Details != nil {
		data["Details"] = user.Details
		data["Skills"] = strings.Join(user.Details.Skills, ", ")
	}
	renderPage(c, http.StatusOK, "set_details.html", "Complete your profile", data)
}

// SetDetails saves the profile form.
func (h *AuthHandler) SetDetails(c *gin.Context) {
	type DetailsForm struct {
		Skills         string `form:"skills"`
		Bio            string `form:"bio"`
		Experience     string `form:"experience"`
		HourlyRate     string `form:"hourly_rate"`
		Portfolio      string `form:"portfolio"`
		CompanyName    string `form:"company_name"`
		CompanyWebsite string `form:"company_website"`
		Industry       string `form:"industry"`
	}

	role := middleware.GetRole(c)
	var form DetailsForm
	if err := c.ShouldBind(&form); err != nil {
		renderPage(c, http.StatusBadRequest, "set_details.html", "Complete your profile", gin.H{"Role": string(role), "Error": "Invalid form submission"})
		return
	}

	input := services.SetDetailsInput{
		Skills:         strings.Split(form.Skills, ","),
		Bio:            form.Bio,
		Experience:     form.Experience,
		Portfolio:      form.Portfolio,
		CompanyName:    form.CompanyName,
		CompanyWebsite: form.CompanyWebsite,
		Industry:       form.Industry,
	}
	if rate := strings.TrimSpace(form.HourlyRate); rate != "" {
		parsed, err := strconv.ParseFloat(rate, 64)
		if err != nil {
			renderPage(c, http.StatusBadRequest, "set_details.html", "Complete your profile", gin.H{
				"Role":  string(role),
				"Error": "Hourly rate must be a number",
			})
			return
		}
		input.HourlyRate = parsed
	}

	if _, err := h.authService.SetDetails(c.Request.Context(), role, input); err != nil {
		if pageSessionExpired(c, h.log, err) {
			return
		}
		status, msg := authErrorStatus(err)
		renderPage(c, status, "set_details.html", "Complete your profile", gin.H{
			"Role":   string(role),
			"Error":  msg,
			"Skills": form.Skills,
		})
		return
	}

	c.Redirect(http.StatusSeeOther, role.DashboardPath())
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.authService.CurrentUser(c.Request.Context())
	if err != nil {
		respondUpstreamError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// afterLogin picks where a fresh session lands: an explicit local next, the
// profile form while details are missing, or the role dashboard.
func afterLogin(user models.User, next string) string {
	if !user.DetailsComplete && user.Role != models.RoleAdmin {
		return "/set-details"
	}
	return utils.SafeRedirect(next, user.Role.DashboardPath())
}

// authErrorStatus maps auth service errors onto a status and a message
// suitable for the form.
func authErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrPasswordTooShort):
		return http.StatusBadRequest, fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength)
	case errors.Is(err, services.ErrIdentifierRequired),
		errors.Is(err, services.ErrPasswordRequired),
		errors.Is(err, services.ErrUsernameRequired),
		errors.Is(err, services.ErrInvalidEmail),
		errors.Is(err, services.ErrInvalidRole),
		errors.Is(err, services.ErrSkillsRequired),
		errors.Is(err, services.ErrInvalidHourlyRate),
		errors.Is(err, services.ErrCompanyNameRequired),
		errors.Is(err, services.ErrNoProfileDetails):
		return http.StatusBadRequest, capitalize(err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized, capitalize(err.Error())
	case errors.Is(err, services.ErrUserExists):
		return http.StatusConflict, capitalize(err.Error())
	case errors.Is(err, backend.ErrUnavailable):
		return http.StatusServiceUnavailable, pageErrorMessage(err)
	default:
		var be *backend.Error
		if errors.As(err, &be) && be.Status < http.StatusInternalServerError && be.Message != "" {
			return http.StatusBadRequest, be.Message
		}
		return http.StatusBadGateway, pageErrorMessage(err)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
