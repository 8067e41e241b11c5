package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"github.com/workbridg/workbridg-web/internal/backend"
	apierrors "github.com/workbridg/workbridg-web/internal/errors"
	"github.com/workbridg/workbridg-web/internal/logging"
	"github.com/workbridg/workbridg-web/internal/middleware"
)

// respondUpstreamError answers an API request that failed on the backend.
// An expired session is also cleared.
func respondUpstreamError(c *gin.Context, log logrus.FieldLogger, err error) {
	_ = c.Error(err)
	if errors.Is(err, backend.ErrSessionExpired) {
		endSession(c, log)
	}
	if !apierrors.RespondBackendError(c, err) {
		apierrors.InternalError(c, "")
	}
}

// pageSessionExpired clears an expired session and sends the browser to the
// login page. It reports whether err was a session expiry.
func pageSessionExpired(c *gin.Context, log logrus.FieldLogger, err error) bool {
	if !errors.Is(err, backend.ErrSessionExpired) {
		return false
	}
	endSession(c, log)
	c.Redirect(http.StatusSeeOther, middleware.LoginRedirect(c.Request.URL.RequestURI()))
	return true
}

func endSession(c *gin.Context, log logrus.FieldLogger) {
	if err := middleware.EndSession(c); err != nil {
		logging.FromContext(c, log).WithError(err).Warn("Failed to clear session")
	}
}

// respondBindError answers a request whose body or form could not be bound.
// Validation failures list the offending fields.
func respondBindError(c *gin.Context, err error) {
	var fieldErrs validator.ValidationErrors
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &fieldErrs):
		details := make(map[string]string, len(fieldErrs))
		for _, fe := range fieldErrs {
			details[fe.Field()] = fe.Tag()
		}
		apierrors.BadRequestWithDetails(c, "Invalid request body", details)
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		apierrors.InvalidFormat(c, "")
	default:
		apierrors.BadRequest(c, "Invalid request body")
	}
}

// pageErrorMessage is the inline message shown when part of a page failed
// to load. The rest of the page still renders.
func pageErrorMessage(err error) string {
	switch {
	case errors.Is(err, backend.ErrUnavailable):
		return "The Workbridg service is unreachable right now. Please try again shortly."
	case backend.StatusOf(err) >= http.StatusInternalServerError:
		return "The Workbridg service ran into a problem. Please try again."
	default:
		return "Something went wrong while loading this page."
	}
}

// looseString accepts a JSON string or a bare JSON value such as a number
// and keeps its text, so form values reach validation unchanged.
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = looseString(v)
		return nil
	}
	if string(b) == "null" {
		*s = ""
		return nil
	}
	*s = looseString(b)
	return nil
}

func (s *looseString) ptr() *string {
	if s == nil {
		return nil
	}
	v := string(*s)
	return &v
}
