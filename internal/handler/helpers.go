package handler

import (
	"errors"
	"net/http"

	"recruitment_portal/internal/logger"
	"recruitment_portal/internal/middleware"

	"github.com/gin-gonic/gin"
)

var errNoIdentity = errors.New("authenticated user not found in context")

// getAuthUser returns the id and role attached by the JWT middleware
func getAuthUser(c *gin.Context) (string, string, error) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return "", "", errNoIdentity
	}
	role, ok := middleware.GetRole(c)
	if !ok {
		return "", "", errNoIdentity
	}
	return userID, role, nil
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
}

// internalError logs the detailed error and answers with a generic message
func internalError(c *gin.Context, msg string, err error) {
	_ = c.Error(err)
	logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg(msg)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}
