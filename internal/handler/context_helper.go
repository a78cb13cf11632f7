package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/studytrack/studytrack-api/internal/middleware"
	"github.com/studytrack/studytrack-api/internal/models"
)

// claimsFromContext pulls the JWT claims the auth middleware stored.
// A nil return on a protected route means the middleware was bypassed;
// callers treat it as unauthorized.
func claimsFromContext(c *gin.Context) *models.JWTClaims {
	claims, _ := c.Get(middleware.ContextUserKey)
	if claims, ok := claims.(*models.JWTClaims); ok {
		return claims
	}
	return nil
}
