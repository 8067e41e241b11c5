package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/workbridg/workbridg-web/internal/dto"
	apierrors "github.com/workbridg/workbridg-web/internal/errors"
)

func (suite *HandlerTestSuite) TestApply_NonNumericPaymentNeverReachesBackend() {
	suite.login("fred")

	w := suite.sendJSON(http.MethodPost, "/api/projects/p1/apply", gin.H{
		"proposed_deadline": time.Now().AddDate(0, 1, 0).Format("2006-01-02"),
		"proposed_payment":  "a lot",
	})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal(0, suite.backend.applyCalls)
}

func (suite *HandlerTestSuite) TestApply_NumericPayment() {
	suite.login("fred")

	w := suite.sendJSON(http.MethodPost, "/api/projects/p1/apply", gin.H{
		"proposed_deadline": time.Now().AddDate(0, 1, 0).Format("2006-01-02"),
		"proposed_payment":  450,
		"cover_letter":      "I bake and I code",
	})

	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	suite.Equal(1, suite.backend.applyCalls)
	suite.Contains(w.Body.String(), `"proposedPayment":450`)
}

func (suite *HandlerTestSuite) TestApply_ClientsAreForbidden() {
	suite.login("cara")

	w := suite.sendJSON(http.MethodPost, "/api/projects/p1/apply", gin.H{"proposed_payment": 100})

	suite.Equal(http.StatusForbidden, w.Code)
	suite.Equal(0, suite.backend.applyCalls)
}

func (suite *HandlerTestSuite) TestListProjects() {
	suite.login("fred")

	w := suite.get("/api/projects?status=unassigned&limit=500")

	suite.Require().Equal(http.StatusOK, w.Code)
	var resp dto.ProjectListResponse
	suite.decode(w, &resp)
	suite.Len(resp.Projects, 1)
	suite.Equal(1, resp.Page)
	suite.Equal(20, resp.PageSize)
}

func (suite *HandlerTestSuite) TestListProjects_UnknownStatus() {
	suite.login("fred")

	w := suite.get("/api/projects?status=archived")

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestUpdateStatus_UnknownStatusStaysLocal() {
	suite.login("cara")

	w := suite.sendJSON(http.MethodPatch, "/api/projects/p1/status", gin.H{"status": "archived"})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal(0, suite.backend.statusCalls)
}

func (suite *HandlerTestSuite) TestUpdateStatus_MissingStatusListsField() {
	suite.login("cara")

	w := suite.sendJSON(http.MethodPatch, "/api/projects/p1/status", gin.H{})

	suite.Require().Equal(http.StatusBadRequest, w.Code)
	var resp apierrors.APIError
	suite.decode(w, &resp)
	suite.Equal(apierrors.ErrCodeInvalidInput, resp.Code)
	suite.Equal(map[string]interface{}{"Status": "required"}, resp.Details)
	suite.Equal(0, suite.backend.statusCalls)
}

func (suite *HandlerTestSuite) TestCreateProject_MalformedBody() {
	suite.login("cara")

	req := httptest.NewRequest(http.MethodPost, "/api/projects", strings.NewReader(`{"title": }`))
	req.Header.Set("Content-Type", "application/json")
	w := suite.do(req)

	suite.Require().Equal(http.StatusBadRequest, w.Code)
	var resp apierrors.APIError
	suite.decode(w, &resp)
	suite.Equal(apierrors.ErrCodeInvalidFormat, resp.Code)
}

func (suite *HandlerTestSuite) TestUpdateStatus_AnyKnownStatusIsForwarded() {
	suite.login("cara")

	w := suite.sendJSON(http.MethodPatch, "/api/projects/p1/status", gin.H{"status": "completed"})

	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	suite.Equal(1, suite.backend.statusCalls)
	suite.Contains(w.Body.String(), `"status":"completed"`)
}

func (suite *HandlerTestSuite) TestApproveApplication_ReturnsServerList() {
	suite.login("ada")

	w := suite.sendJSON(http.MethodPost, "/api/applications/a1/approve", nil)

	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var resp dto.ApplicationListResponse
	suite.decode(w, &resp)
	suite.Require().Len(resp.Applications, 1)
	suite.Equal("a2", resp.Applications[0].ID)
}

func (suite *HandlerTestSuite) TestRejectApplication_UnknownApplication() {
	suite.login("ada")

	w := suite.sendJSON(http.MethodPost, "/api/applications/nope/reject", nil)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *HandlerTestSuite) TestApplications_AdminOnly() {
	suite.login("fred")

	w := suite.get("/api/applications")

	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *HandlerTestSuite) TestDraftProject_DisabledWithoutKey() {
	suite.login("cara")

	w := suite.sendJSON(http.MethodPost, "/api/projects/draft", gin.H{"brief": "A website for my bakery"})

	suite.Equal(http.StatusServiceUnavailable, w.Code)
}

func (suite *HandlerTestSuite) TestAPI_RejectsAnonymous() {
	w := suite.get("/api/projects")

	suite.Require().Equal(http.StatusUnauthorized, w.Code)
	var resp apierrors.APIError
	suite.decode(w, &resp)
	suite.Equal(apierrors.LoginPath, resp.Redirect)
}

func (suite *HandlerTestSuite) TestAPI_ExpiredSessionAnswers401AndClearsSession() {
	suite.login("fred")
	suite.backend.revoke()

	w := suite.get("/api/projects")

	suite.Require().Equal(http.StatusUnauthorized, w.Code)
	var resp apierrors.APIError
	suite.decode(w, &resp)
	suite.Equal(apierrors.ErrCodeSessionExpired, resp.Code)
	suite.Equal("/login", resp.Redirect)

	// The session is gone, so the next call is rejected before the backend
	w = suite.get("/api/me")
	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.decode(w, &resp)
	suite.Equal(apierrors.ErrCodeUnauthorized, resp.Code)
}
