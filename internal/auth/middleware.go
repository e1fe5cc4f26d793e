package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"immosearch/internal/config"
)

const userContextKey = "auth.user"

// Middleware verifies the bearer token on every request and stores the
// resulting identity in the gin context. When authentication is disabled in
// config, every request runs as the anonymous user.
func Middleware(cfg *config.Config, cache *KeyCache) gin.HandlerFunc {
	issuer := cfg.GetKeycloakIssuer()

	return func(c *gin.Context) {
		if !cfg.Auth.Enabled {
			c.Set(userContextKey, AnonymousUser())
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "missing bearer token",
			})
			c.Abort()
			return
		}
		raw := strings.TrimPrefix(header, "Bearer ")

		token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
			if t.Method.Alg() != jwt.SigningMethodRS256.Alg() {
				return nil, fmt.Errorf("unexpected signing method %s", t.Method.Alg())
			}
			kid, _ := t.Header["kid"].(string)
			if kid == "" {
				return nil, fmt.Errorf("token has no key id")
			}
			return cache.Key(c.Request.Context(), kid)
		}, jwt.WithIssuer(issuer), jwt.WithValidMethods([]string{"RS256"}))
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "invalid token",
			})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "invalid token claims",
			})
			c.Abort()
			return
		}

		c.Set(userContextKey, userFromClaims(claims))
		c.Next()
	}
}

// CurrentUser returns the identity the middleware stored for this request.
func CurrentUser(c *gin.Context) TokenUser {
	if v, ok := c.Get(userContextKey); ok {
		if user, ok := v.(TokenUser); ok {
			return user
		}
	}
	return AnonymousUser()
}

func userFromClaims(claims jwt.MapClaims) TokenUser {
	user := TokenUser{
		UserID:   claimString(claims, "sub"),
		Username: claimString(claims, "preferred_username"),
		Email:    claimString(claims, "email"),
		Name:     claimString(claims, "name"),
		Groups:   claimStrings(claims, "groups"),
	}
	if user.UserID == "" {
		return AnonymousUser()
	}
	if access, ok := claims["realm_access"].(map[string]interface{}); ok {
		if roles, ok := access["roles"].([]interface{}); ok {
			for _, r := range roles {
				if s, ok := r.(string); ok {
					user.Roles = append(user.Roles, s)
				}
			}
		}
	}
	return user
}

func claimString(claims jwt.MapClaims, key string) string {
	if s, ok := claims[key].(string); ok {
		return s
	}
	return ""
}

func claimStrings(claims jwt.MapClaims, key string) []string {
	raw, ok := claims[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
