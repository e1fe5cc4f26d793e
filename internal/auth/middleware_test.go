package auth

import (
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"immosearch/internal/config"
)

func testConfig(enabled bool) *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			Enabled:      enabled,
			KeycloakURL:  "https://auth.example.com",
			Realm:        "test",
			JWKSCacheTTL: 3600,
		},
	}
}

func signToken(t *testing.T, key *rsa.PrivateKey, kid string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = kid
	signed, err := token.SignedString(key)
	require.NoError(t, err)
	return signed
}

func newTestRouter(cfg *config.Config, cache *KeyCache) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Middleware(cfg, cache))
	router.GET("/whoami", func(c *gin.Context) {
		user := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"user_id": user.UserID, "anonymous": user.IsAnonymous})
	})
	return router
}

func TestMiddleware_DisabledAuthRunsAnonymous(t *testing.T) {
	router := newTestRouter(testConfig(false), NewKeyCache("http://unused", time.Hour))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "anonymous", body["user_id"])
	assert.Equal(t, true, body["anonymous"])
}

func TestMiddleware_ValidToken(t *testing.T) {
	key := newTestKey(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(jwksFor("kid-1", &key.PublicKey))
	}))
	defer srv.Close()

	cfg := testConfig(true)
	router := newTestRouter(cfg, NewKeyCache(srv.URL, time.Hour))

	token := signToken(t, key, "kid-1", jwt.MapClaims{
		"sub":                "user-42",
		"preferred_username": "ana",
		"iss":                cfg.GetKeycloakIssuer(),
		"exp":                time.Now().Add(time.Hour).Unix(),
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "user-42", body["user_id"])
	assert.Equal(t, false, body["anonymous"])
}

func TestMiddleware_Rejections(t *testing.T) {
	key := newTestKey(t)
	otherKey := newTestKey(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(jwksFor("kid-1", &key.PublicKey))
	}))
	defer srv.Close()

	cfg := testConfig(true)
	issuer := cfg.GetKeycloakIssuer()

	tests := []struct {
		name  string
		token string
	}{
		{
			name:  "missing header",
			token: "",
		},
		{
			name:  "garbage token",
			token: "not-a-jwt",
		},
		{
			name: "wrong signing key",
			token: signToken(t, otherKey, "kid-1", jwt.MapClaims{
				"sub": "u", "iss": issuer, "exp": time.Now().Add(time.Hour).Unix(),
			}),
		},
		{
			name: "wrong issuer",
			token: signToken(t, key, "kid-1", jwt.MapClaims{
				"sub": "u", "iss": "https://evil.example.com/realms/test", "exp": time.Now().Add(time.Hour).Unix(),
			}),
		},
		{
			name: "expired",
			token: signToken(t, key, "kid-1", jwt.MapClaims{
				"sub": "u", "iss": issuer, "exp": time.Now().Add(-time.Hour).Unix(),
			}),
		},
		{
			name: "unknown kid",
			token: signToken(t, key, "kid-missing", jwt.MapClaims{
				"sub": "u", "iss": issuer, "exp": time.Now().Add(time.Hour).Unix(),
			}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(cfg, NewKeyCache(srv.URL, time.Hour))

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}
