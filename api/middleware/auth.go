package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/mediagrab-go/internal/domain"
	"go.uber.org/zap"
)

const userKey = "user"

// Auth rejects requests without a bearer token the verifier accepts and
// stores the resolved identity on the context
func Auth(verifier domain.CredentialVerifier, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortAuth(c, domain.NewError(domain.ErrKindAuth, "authenticate", domain.ErrMissingToken))
			return
		}

		user, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			log.Warn("Authentication failed",
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()),
				zap.Error(err))
			if domain.KindOf(err) != domain.ErrKindAuth {
				err = domain.NewError(domain.ErrKindAuth, "authenticate", domain.ErrInvalidToken)
			}
			abortAuth(c, err)
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

// CurrentUser returns the identity set by Auth, or nil
func CurrentUser(c *gin.Context) *domain.UserIdentity {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	user, _ := v.(*domain.UserIdentity)
	return user
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func abortAuth(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success":    false,
		"error":      domain.MessageOf(err),
		"error_kind": domain.ErrKindAuth,
	})
}
