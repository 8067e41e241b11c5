package handlers

import (
	"net/http"
)

func (suite *HandlerTestSuite) TestDashboard_RedirectsToRoleDashboard() {
	suite.login("fred")

	w := suite.get("/dashboard")

	suite.Equal(http.StatusSeeOther, w.Code)
	suite.Equal("/dashboard/freelancer", w.Header().Get("Location"))
}

func (suite *HandlerTestSuite) TestDashboard_OtherRolesAreSentHome() {
	cases := []struct {
		user     string
		path     string
		location string
	}{
		{"fred", "/dashboard/client", "/dashboard/freelancer"},
		{"fred", "/dashboard/admin", "/dashboard/freelancer"},
		{"cara", "/dashboard/freelancer", "/dashboard/client"},
		{"ada", "/dashboard/client", "/dashboard/admin"},
	}

	for _, tc := range cases {
		suite.Run(tc.user+tc.path, func() {
			suite.cookies = map[string]*http.Cookie{}
			suite.login(tc.user)

			w := suite.get(tc.path)

			suite.Equal(http.StatusSeeOther, w.Code)
			suite.Equal(tc.location, w.Header().Get("Location"))
		})
	}
}

func (suite *HandlerTestSuite) TestDashboard_AnonymousGoesToLogin() {
	w := suite.get("/dashboard/messages")

	suite.Equal(http.StatusSeeOther, w.Code)
	suite.Equal("/login?next=%2Fdashboard%2Fmessages", w.Header().Get("Location"))
}

func (suite *HandlerTestSuite) TestFreelancerDashboard_Renders() {
	suite.login("fred")

	w := suite.get("/dashboard/freelancer")

	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), "Landing page")
	suite.Contains(w.Body.String(), `data-apply="p1"`)
	suite.Contains(w.Body.String(), `<span class="badge">2</span>`)
}

func (suite *HandlerTestSuite) TestAdminDashboard_ListsPendingApplications() {
	suite.login("ada")

	w := suite.get("/dashboard/admin")

	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), `data-application="a1"`)
	suite.Contains(w.Body.String(), `data-application="a2"`)
}

func (suite *HandlerTestSuite) TestClientDashboard_Renders() {
	suite.login("cara")

	w := suite.get("/dashboard/client")

	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), "Post a project")
}

func (suite *HandlerTestSuite) TestMessages_PreselectsChat() {
	suite.login("fred")

	w := suite.get("/dashboard/messages?chat=c1")

	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), `data-selected="c1"`)
	suite.Contains(w.Body.String(), "Are you free?")
}

func (suite *HandlerTestSuite) TestDashboard_ExpiredSessionRedirectsToLogin() {
	suite.login("fred")
	suite.backend.revoke()

	w := suite.get("/dashboard/freelancer")

	suite.Equal(http.StatusSeeOther, w.Code)
	suite.Equal("/login?next=%2Fdashboard%2Ffreelancer", w.Header().Get("Location"))
}

func (suite *HandlerTestSuite) TestPublicPages() {
	for _, path := range []string{"/", "/about", "/how-it-works", "/login", "/register"} {
		w := suite.get(path)
		suite.Equal(http.StatusOK, w.Code, path)
	}
}

func (suite *HandlerTestSuite) TestUnknownRoute() {
	w := suite.get("/no-such-page")

	suite.Equal(http.StatusNotFound, w.Code)
	suite.Contains(w.Body.String(), "Page not found")
}

func (suite *HandlerTestSuite) TestPublicProfile_UnknownUser() {
	w := suite.get("/u/ghost")

	suite.Equal(http.StatusNotFound, w.Code)
	suite.Contains(w.Body.String(), "Profile not found")
}

func (suite *HandlerTestSuite) TestHealth() {
	w := suite.get("/health")
	suite.Equal(http.StatusOK, w.Code)

	w = suite.get("/readyz")
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), `"backend":"ok"`)
}
