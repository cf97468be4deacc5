package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"care-attendance/internal/platform/apierr"
)

const CtxSubjectKey = "subject"

// RequireAuth checks "Authorization: Bearer <token>" and stores the token
// subject in the gin context.
func RequireAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" {
			abort(c, "missing Authorization header")
			return
		}

		parts := strings.SplitN(h, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abort(c, "invalid Authorization header")
			return
		}
		tokenStr := strings.TrimSpace(parts[1])
		if tokenStr == "" {
			abort(c, "empty token")
			return
		}

		var claims jwt.RegisteredClaims
		token, err := jwt.ParseWithClaims(tokenStr, &claims, func(*jwt.Token) (any, error) {
			return secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
		if err != nil || !token.Valid {
			abort(c, "invalid token")
			return
		}
		if claims.Subject != Subject {
			abort(c, "invalid subject")
			return
		}

		c.Set(CtxSubjectKey, claims.Subject)
		c.Next()
	}
}

func abort(c *gin.Context, msg string) {
	apierr.Respond(c, apierr.ErrUnauthenticated(msg))
	c.Abort()
}
