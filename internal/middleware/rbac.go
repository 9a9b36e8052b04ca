package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/salatech/promotion-service/internal/model"
	"github.com/salatech/promotion-service/internal/response"
)

// RequirePermission checks that the admin JWT carries the required
// permission.
func RequirePermission(perm model.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		if !claims.HasPermission(string(perm)) {
			response.AbortFail(c, http.StatusForbidden, response.ErrPermissionDenied)
			return
		}

		c.Next()
	}
}
