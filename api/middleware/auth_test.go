package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/pkg/auth"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

var testJWT = config.JWTConfig{Secret: "secret", Issuer: "storefront-test", ExpirationMinutes: 60}

func mintTestToken(t *testing.T, cfg config.JWTConfig, now time.Time, userID uuid.UUID, role enums.Role) string {
	t.Helper()
	token, err := auth.MintAccessToken(cfg, now, auth.AccessTokenPayload{UserID: userID, Username: "tester", Role: role})
	require.NoError(t, err)
	return token
}

func TestAuthRejectsMissingOrMalformedHeader(t *testing.T) {
	handler := Auth(testJWT, nil)(okHandler)
	for _, header := range []string{"", "Token abc", "Bearer "} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, header)
		env := decodeEnvelope(t, rec)
		assert.False(t, env.Success)
		assert.Equal(t, "Missing or malformed bearer token", env.Message)
	}
}

func TestAuthRejectsInvalidAndExpiredTokens(t *testing.T) {
	handler := Auth(testJWT, nil)(okHandler)

	expired := mintTestToken(t, testJWT, time.Now().Add(-2*time.Hour), uuid.New(), enums.RoleCustomer)
	otherIssuer := mintTestToken(t, config.JWTConfig{Secret: "secret", Issuer: "elsewhere", ExpirationMinutes: 60}, time.Now(), uuid.New(), enums.RoleCustomer)
	wrongSecret := mintTestToken(t, config.JWTConfig{Secret: "other", Issuer: testJWT.Issuer, ExpirationMinutes: 60}, time.Now(), uuid.New(), enums.RoleCustomer)

	for name, token := range map[string]string{"garbage": "invalid", "expired": expired, "issuer": otherIssuer, "secret": wrongSecret} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, name)
		assert.Equal(t, "Invalid or expired token", decodeEnvelope(t, rec).Message, name)
	}
}

func TestAuthSeedsPrincipal(t *testing.T) {
	userID := uuid.New()
	token := mintTestToken(t, testJWT, time.Now(), userID, enums.RoleAdmin)

	var got *Principal
	handler := Auth(testJWT, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, userID, got.UserID)
	assert.Equal(t, "tester", got.Username)
	assert.Equal(t, enums.RoleAdmin, got.Role)
}

func TestContextHelpersWithoutPrincipal(t *testing.T) {
	ctx := httptest.NewRequest(http.MethodGet, "/", nil).Context()
	assert.Nil(t, PrincipalFromContext(ctx))
	assert.Empty(t, UserIDFromContext(ctx))

	id := uuid.New()
	ctx = WithPrincipal(ctx, &Principal{UserID: id, Role: enums.RoleCustomer})
	assert.Equal(t, id.String(), UserIDFromContext(ctx))
	assert.Equal(t, enums.RoleCustomer, PrincipalFromContext(ctx).Role)
}
