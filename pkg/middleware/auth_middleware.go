package middleware

import (
	stderrors "errors"
	"strings"

	"github.com/TanakaNakamura/factory-erp-api/internal/auth"
	"github.com/TanakaNakamura/factory-erp-api/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	UsernameContextKey = "username"
	UserIDContextKey   = "user_id"
	RoleContextKey     = "role"
)

// AuthMiddleware validates JWT tokens
func AuthMiddleware(jwtManager *auth.JWTManager, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Warn("Missing authorization header",
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
			)
			abortWith(c, errors.NewUnauthorized("missing authorization header", "Header: Authorization"))
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortWith(c, errors.NewUnauthorized("invalid authorization header format", "Expected: Bearer <token>"))
			return
		}

		claims, err := jwtManager.ValidateToken(parts[1])
		if err != nil {
			if stderrors.Is(err, auth.ErrExpiredToken) {
				abortWith(c, errors.NewUnauthorized("token expired", "Token has expired, please login again"))
				return
			}
			abortWith(c, errors.NewUnauthorized("invalid token", err.Error()))
			return
		}

		c.Set(UsernameContextKey, claims.Username)
		c.Set(UserIDContextKey, claims.Subject)
		c.Set(RoleContextKey, string(claims.Role))

		c.Next()
	}
}

// RequireRoles lets the request through only for the listed roles.
// It must run after AuthMiddleware.
func RequireRoles(logger *zap.Logger, roles ...auth.Role) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[string(r)] = struct{}{}
	}
	return func(c *gin.Context) {
		role := c.GetString(RoleContextKey)
		if _, ok := allowed[role]; !ok {
			logger.Warn("Forbidden",
				zap.String("username", c.GetString(UsernameContextKey)),
				zap.String("role", role),
				zap.String("path", c.Request.URL.Path),
			)
			abortWith(c, errors.NewForbidden(role))
			return
		}
		c.Next()
	}
}

// CurrentUsername returns the authenticated username
func CurrentUsername(c *gin.Context) string {
	return c.GetString(UsernameContextKey)
}

func abortWith(c *gin.Context, stdErr *errors.StandardError) {
	c.AbortWithStatusJSON(stdErr.HTTPStatus(), stdErr)
}
