package middleware

import (
	"strings"

	"account-service/internal/services"
	apperrors "account-service/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const AccessTokenCookie = "accessToken"

// AccessTokenParser validates an access token.
type AccessTokenParser interface {
	ParseAccessToken(token string) (services.AccessClaims, error)
}

// AuthMiddleware accepts the access token from the accessToken cookie or an
// Authorization bearer header, in that order.
func AuthMiddleware(parser AccessTokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractAccessToken(c)
		claims, err := parser.ParseAccessToken(token)
		if err != nil {
			_ = c.Error(apperrors.Unauthorized("Unauthorized request"))
			c.Abort()
			return
		}

		accountID, err := uuid.Parse(claims.AccountID)
		if err != nil {
			_ = c.Error(apperrors.Unauthorized("Invalid access token"))
			c.Abort()
			return
		}

		ctx := services.WithAccountContext(c.Request.Context(), accountID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func extractAccessToken(c *gin.Context) string {
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie != "" {
		return cookie
	}
	return extractBearer(c)
}

func extractBearer(c *gin.Context) string {
	value := c.GetHeader("Authorization")
	parts := strings.SplitN(value, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
