package handlers

import (
	"net/http"
	"waypoint/internal/errs"
	"waypoint/internal/middleware"
	"waypoint/internal/models"

	"github.com/gin-gonic/gin"
)

// CurrentUser pulls the logged-in user that LoadUser put on the context.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	user, exists := c.Get(middleware.CheckUserKey)
	if !exists {
		return nil, false
	}
	return user.(*models.User), true
}

var statusByCode = map[string]int{
	errs.EINVALID:      http.StatusBadRequest,
	errs.ENOTFOUND:     http.StatusNotFound,
	errs.EUNAUTHORIZED: http.StatusUnauthorized,
	errs.ECONFLICT:     http.StatusConflict,
	errs.EUNAVAILABLE:  http.StatusServiceUnavailable,
	errs.EINTERNAL:     http.StatusInternalServerError,
}

// JSONError maps an application error to its HTTP status and body.
func JSONError(c *gin.Context, err error) {
	status, ok := statusByCode[errs.ErrorCode(err)]
	if !ok {
		status = http.StatusInternalServerError
	}
	c.JSON(status, gin.H{"error": errs.ErrorMessage(err)})
}
