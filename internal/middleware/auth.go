package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"foodstore/internal/auth"
)

const principalKey = "principal"

// AuthGuard validates the bearer token and stores the caller in the context.
// With adminOnly set, non-admin callers are refused with 403.
func AuthGuard(secret string, adminOnly bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		lg := zctx.From(c.Request.Context())

		raw, err := auth.BearerToken(c.GetHeader("Authorization"))
		if err != nil {
			lg.Info("Missing token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Access denied. No token provided."})
			return
		}

		principal, err := auth.ParseToken(raw, secret)
		if err != nil {
			lg.Info("Token validation failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
			return
		}

		if adminOnly && !principal.IsAdmin {
			lg.Info("Non-admin on admin route", zap.String("user_id", principal.UserID.Hex()))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Access denied. Admin only."})
			return
		}

		c.Set(principalKey, principal)
		c.Request = c.Request.WithContext(zctx.With(c.Request.Context(),
			zap.String("user_id", principal.UserID.Hex()),
		))
		c.Next()
	}
}

func UserAuth(secret string) gin.HandlerFunc {
	return AuthGuard(secret, false)
}

func AdminAuth(secret string) gin.HandlerFunc {
	return AuthGuard(secret, true)
}

// PrincipalFrom returns the caller stored by AuthGuard.
func PrincipalFrom(c *gin.Context) (auth.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return auth.Principal{}, false
	}
	p, ok := v.(auth.Principal)
	return p, ok
}
