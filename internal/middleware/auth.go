package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/safetour/routeguard/internal/logger"
	"github.com/safetour/routeguard/pkg/response"
)

// ContextSubjectKey holds the verified token subject in the gin context
const ContextSubjectKey = "auth_subject"

// Auth verifies HS256 bearer tokens. An empty secret disables the check.
// Tokens are issued elsewhere; only the signature, expiry and not-before
// claims are checked here.
func Auth(secret string) gin.HandlerFunc {
	if secret == "" {
		return func(c *gin.Context) { c.Next() }
	}

	key := []byte(secret)
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)

	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			raw = c.Query("token") // browsers cannot set headers on websocket upgrades
		}
		if raw == "" {
			response.Unauthorized(c, "Missing bearer token")
			c.Abort()
			return
		}

		claims := &jwt.RegisteredClaims{}
		_, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
			return key, nil
		})
		if err != nil {
			msg := "Invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "Token expired"
			}
			logger.L().Debug("auth_rejected", "ip", c.ClientIP(), "err", err)
			response.Unauthorized(c, msg)
			c.Abort()
			return
		}

		c.Set(ContextSubjectKey, claims.Subject)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}
