package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ravgen/rav-api/internal/middleware"
	"github.com/ravgen/rav-api/internal/models"
	appErrors "github.com/ravgen/rav-api/pkg/errors"
	"github.com/ravgen/rav-api/pkg/response"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// teacherID resolves the authenticated teacher or writes a 401.
func teacherID(c *gin.Context) (string, bool) {
	claims := claimsFromContext(c)
	if claims == nil || claims.TeacherID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		c.Abort()
		return "", false
	}
	return claims.TeacherID, true
}
