package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	callerKey = "caller"

	// CallerHeader carries the caller identity when no JWT secret is set.
	// Only use this behind a trusted proxy.
	CallerHeader = "X-Caller-Identity"
)

// IdentityConfig selects how the caller is identified. With a Secret, an
// HS256 bearer token is required and its subject is the caller. Without
// one, CallerHeader is trusted.
type IdentityConfig struct {
	Secret []byte
}

// IdentityMiddleware resolves the caller and stores it in the gin context.
// Requests without an identity are rejected with 401.
func IdentityMiddleware(cfg IdentityConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, err := resolveCaller(cfg, c.Request)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": err.Error(),
				"kind":  "unauthorized",
			})
			return
		}
		c.Set(callerKey, caller)
		c.Next()
	}
}

// CallerFrom returns the identity set by IdentityMiddleware.
func CallerFrom(c *gin.Context) (string, bool) {
	v, ok := c.Get(callerKey)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}

// SignIdentity issues an HS256 token whose subject is caller.
func SignIdentity(secret []byte, caller string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   caller,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now.Add(-5 * time.Second)),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		Issuer:    "strategystore",
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func resolveCaller(cfg IdentityConfig, r *http.Request) (string, error) {
	if len(cfg.Secret) == 0 {
		caller := strings.TrimSpace(r.Header.Get(CallerHeader))
		if caller == "" {
			return "", errors.New("missing caller identity")
		}
		return caller, nil
	}

	tok := bearerToken(r.Header.Get("Authorization"))
	if tok == "" {
		return "", errors.New("missing bearer token")
	}
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(tok, &claims, func(t *jwt.Token) (any, error) {
		return cfg.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return "", errors.New("invalid token")
	}
	if claims.Subject == "" {
		return "", errors.New("token has no subject")
	}
	return claims.Subject, nil
}

func bearerToken(v string) string {
	parts := strings.SplitN(strings.TrimSpace(v), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
