package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/auth"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/constants"
	apperrors "github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/errors"
)

// RequireAuth is a middleware that validates JWT bearer tokens and stores the
// token's user session in the context
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(constants.HeaderAuthorization)
		if authHeader == "" {
			abortUnauthorized(c, "No authorization token provided")
			return
		}

		// Extract token (format: "Bearer <token>")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			abortUnauthorized(c, "Invalid authorization header format")
			return
		}

		claims, err := auth.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			abortUnauthorized(c, err.Error())
			return
		}

		c.Set(constants.ContextKeyUser, claims.User)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, reason string) {
	err := apperrors.NewUnauthorizedError(reason)
	resp := apperrors.ToResponse(err)
	c.AbortWithStatusJSON(apperrors.GetHTTPStatus(err), gin.H{
		constants.ResponseError: resp.Message,
		"message":               resp.Message,
		"code":                  resp.Code,
		"data":                  nil,
	})
}
