package helpers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dumbledor90/lumi-auctions-webapp/internal/auctionerrors"
	"github.com/dumbledor90/lumi-auctions-webapp/utils"
)

// StatusForError maps domain errors to the HTTP status of the rendered
// error page. Ownership failures are a blanket forbidden, never a not-found.
func StatusForError(err error) (int, string) {
	switch {
	case errors.Is(err, auctionerrors.ErrForbidden):
		return http.StatusForbidden, "You don't have permission to do that."
	case errors.Is(err, auctionerrors.ErrListingNotFound):
		return http.StatusNotFound, "Listing not found."
	case errors.Is(err, auctionerrors.ErrUserNotFound):
		return http.StatusNotFound, "User not found."
	default:
		return http.StatusInternalServerError, "Something went wrong."
	}
}

// RenderError renders the shared error page for a domain error and logs it.
func RenderError(c *gin.Context, handlerName string, err error) {
	status, message := StatusForError(err)
	c.HTML(status, "error.html", gin.H{
		"Status":  status,
		"Message": message,
	})
	utils.Warn(handlerName+": request failed", map[string]any{
		"handler": handlerName,
		"status":  status,
		"error":   err.Error(),
	})
}

// ParsePage reads the "page" query parameter, defaulting to 1.
func ParsePage(c *gin.Context) int {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}
