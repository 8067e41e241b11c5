package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workbridg/workbridg-web/internal/constants"
	"github.com/workbridg/workbridg-web/internal/models"
)

// newRouter wires sessions and a /login-as/:role endpoint that signs in a
// user with that role.
func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(sessions.Sessions(constants.SessionCookieName, cookie.NewStore([]byte("secret"))))
	r.Use(LoadSession())
	r.GET("/login-as/:role", func(c *gin.Context) {
		user := models.User{ID: "u-" + c.Param("role"), Username: "someone", Role: models.Role(c.Param("role"))}
		if err := StartSession(c, user, models.Tokens{AccessToken: "a1", RefreshToken: "r1"}); err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusNoContent)
	})
	r.POST("/logout", func(c *gin.Context) {
		if err := EndSession(c); err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusNoContent)
	})
	return r
}

func loginAs(t *testing.T, r *gin.Engine, role string) []*http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login-as/"+role, nil))
	require.Equal(t, http.StatusNoContent, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}

func serve(r *gin.Engine, method, path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireDashboardRole_RedirectsToOwnDashboard(t *testing.T) {
	r := newRouter()
	for _, role := range []models.Role{models.RoleFreelancer, models.RoleClient, models.RoleAdmin} {
		r.GET(role.DashboardPath(), RequirePageAuth(), RequireDashboardRole(role), func(c *gin.Context) {
			c.String(http.StatusOK, "dashboard")
		})
	}

	cookies := loginAs(t, r, "client")

	w := serve(r, http.MethodGet, "/dashboard/freelancer", cookies)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/dashboard/client", w.Header().Get("Location"))

	w = serve(r, http.MethodGet, "/dashboard/admin", cookies)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/dashboard/client", w.Header().Get("Location"))

	w = serve(r, http.MethodGet, "/dashboard/client", cookies)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequirePageAuth_RedirectsAnonymousToLogin(t *testing.T) {
	r := newRouter()
	r.GET("/dashboard/messages", RequirePageAuth(), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, http.MethodGet, "/dashboard/messages", nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login?next=%2Fdashboard%2Fmessages", w.Header().Get("Location"))
}

func TestRequireAuth_RejectsAnonymousAPIRequests(t *testing.T) {
	r := newRouter()
	r.GET("/api/me", RequireAuth(), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, http.MethodGet, "/api/me", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "/login", body["redirect"])
}

func TestRequireRole_Forbids(t *testing.T) {
	r := newRouter()
	r.GET("/api/applications", RequireAuth(), RequireRole(models.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodGet, "/api/applications", loginAs(t, r, "freelancer")).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/api/applications", loginAs(t, r, "admin")).Code)
}

func TestLoadSession_ExposesUserAndTokens(t *testing.T) {
	r := newRouter()
	r.GET("/whoami", func(c *gin.Context) {
		userID, _ := GetUserID(c)
		tokens := NewSessionTokens(sessions.Default(c)).Tokens()
		c.JSON(http.StatusOK, gin.H{
			"id":      userID,
			"role":    GetRole(c),
			"name":    GetUsername(c),
			"access":  tokens.AccessToken,
			"refresh": tokens.RefreshToken,
		})
	})

	cookies := loginAs(t, r, "admin")
	w := serve(r, http.MethodGet, "/whoami", cookies)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"u-admin","role":"admin","name":"someone","access":"a1","refresh":"r1"}`, w.Body.String())
}

func TestSessionTokens_SetTokensPersists(t *testing.T) {
	r := newRouter()
	r.GET("/rotate", func(c *gin.Context) {
		store := NewSessionTokens(sessions.Default(c))
		if err := store.SetTokens(models.Tokens{AccessToken: "a2", RefreshToken: "r2"}); err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusNoContent)
	})
	r.GET("/tokens", func(c *gin.Context) {
		c.JSON(http.StatusOK, NewSessionTokens(sessions.Default(c)).Tokens())
	})

	w := serve(r, http.MethodGet, "/rotate", loginAs(t, r, "client"))
	require.Equal(t, http.StatusNoContent, w.Code)

	w = serve(r, http.MethodGet, "/tokens", w.Result().Cookies())
	assert.JSONEq(t, `{"accessToken":"a2","refreshToken":"r2"}`, w.Body.String())
}

func TestEndSession_ClearsUser(t *testing.T) {
	r := newRouter()
	r.GET("/api/me", RequireAuth(), func(c *gin.Context) { c.Status(http.StatusOK) })

	cookies := loginAs(t, r, "client")
	w := serve(r, http.MethodPost, "/logout", cookies)
	require.Equal(t, http.StatusNoContent, w.Code)

	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/api/me", w.Result().Cookies()).Code)
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(constants.ContextKeyRequestID)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := uuid.Parse(w.Body.String())
	require.NoError(t, err)
	assert.Equal(t, w.Body.String(), w.Header().Get(RequestIDHeader))

	inbound := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, inbound)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, inbound, w.Body.String())
}

func TestLoginRedirect(t *testing.T) {
	assert.Equal(t, "/login", LoginRedirect("/"))
	assert.Equal(t, "/login", LoginRedirect("/login"))
	assert.Equal(t, "/login?next=%2Fdashboard", LoginRedirect("/dashboard"))
}
