package handlers

import (
	"net/http"
	"net/url"

	"github.com/workbridg/workbridg-web/internal/dto"
)

func (suite *HandlerTestSuite) TestLogin_RedirectsToRoleDashboard() {
	w := suite.postForm("/login", url.Values{"identifier": {"cara"}, "password": {"password123"}})

	suite.Equal(http.StatusSeeOther, w.Code)
	suite.Equal("/dashboard/client", w.Header().Get("Location"))
	suite.NotEmpty(suite.cookies)
}

func (suite *HandlerTestSuite) TestLogin_FollowsLocalNext() {
	w := suite.postForm("/login", url.Values{
		"identifier": {"fred"},
		"password":   {"password123"},
		"next":       {"/dashboard/messages"},
	})

	suite.Equal(http.StatusSeeOther, w.Code)
	suite.Equal("/dashboard/messages", w.Header().Get("Location"))
}

func (suite *HandlerTestSuite) TestLogin_IgnoresForeignNext() {
	w := suite.postForm("/login", url.Values{
		"identifier": {"fred"},
		"password":   {"password123"},
		"next":       {"//evil.example.com"},
	})

	suite.Equal(http.StatusSeeOther, w.Code)
	suite.Equal("/dashboard/freelancer", w.Header().Get("Location"))
}

func (suite *HandlerTestSuite) TestLogin_IncompleteProfileGoesToSetDetails() {
	w := suite.postForm("/login", url.Values{"identifier": {"newb"}, "password": {"password123"}})

	suite.Equal(http.StatusSeeOther, w.Code)
	suite.Equal("/set-details", w.Header().Get("Location"))
}

func (suite *HandlerTestSuite) TestLogin_InvalidCredentials() {
	w := suite.postForm("/login", url.Values{"identifier": {"fred"}, "password": {"wrong-password"}})

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.Contains(w.Body.String(), "Invalid username or password")
	suite.Empty(suite.cookies)
}

func (suite *HandlerTestSuite) TestLogin_MissingIdentifier() {
	w := suite.postForm("/login", url.Values{"password": {"password123"}})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), "Username or email is required")
}

func (suite *HandlerTestSuite) TestLoginPage_SignedInGoesToDashboard() {
	suite.login("ada")

	w := suite.get("/login")

	suite.Equal(http.StatusSeeOther, w.Code)
	suite.Equal("/dashboard/admin", w.Header().Get("Location"))
}

func (suite *HandlerTestSuite) TestMe_ReturnsSessionUser() {
	suite.login("fred")

	w := suite.get("/api/me")

	suite.Require().Equal(http.StatusOK, w.Code)
	var user dto.UserDTO
	suite.decode(w, &user)
	suite.Equal("u-freelancer", user.ID)
	suite.Equal("/dashboard/freelancer", user.Dashboard)
}

func (suite *HandlerTestSuite) TestLogout_ClearsSession() {
	suite.login("fred")

	w := suite.postForm("/logout", nil)
	suite.Equal(http.StatusSeeOther, w.Code)
	suite.Equal("/", w.Header().Get("Location"))

	w = suite.get("/api/me")
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *HandlerTestSuite) TestSetDetails_RejectsNonNumericRate() {
	suite.login("newb")

	w := suite.postForm("/set-details", url.Values{"skills": {"go"}, "hourly_rate": {"lots"}})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), "Hourly rate must be a number")
}

func (suite *HandlerTestSuite) TestSetDetails_RequiresLogin() {
	w := suite.get("/set-details")

	suite.Equal(http.StatusSeeOther, w.Code)
	suite.Equal("/login?next=%2Fset-details", w.Header().Get("Location"))
}
