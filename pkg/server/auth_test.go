package server

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/go-jose/go-jose/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testIssuer   = "https://issuer.example.com"
	testAudience = "test-audience"
)

// oidcTest signs ID tokens with a throwaway key and verifies them with a
// static key set.
type oidcTest struct {
	key      *rsa.PrivateKey
	signer   jose.Signer
	verifier tokenVerifier
}

func setupOIDCTest(t *testing.T) *oidcTest {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	signer, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.RS256, Key: key},
		(&jose.SignerOptions{}).WithType("JWT"),
	)
	require.NoError(t, err)
	keySet := &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{&key.PublicKey}}
	return &oidcTest{
		key:      key,
		signer:   signer,
		verifier: oidc.NewVerifier(testIssuer, keySet, &oidc.Config{ClientID: testAudience}).Verify,
	}
}

func (o *oidcTest) token(t *testing.T, claims map[string]any) string {
	t.Helper()
	now := time.Now()
	full := map[string]any{
		"iss": testIssuer,
		"aud": testAudience,
		"sub": "1234",
		"iat": now.Unix(),
		"exp": now.Add(time.Hour).Unix(),
	}
	for k, v := range claims {
		full[k] = v
	}
	payload, err := json.Marshal(full)
	require.NoError(t, err)
	jws, err := o.signer.Sign(payload)
	require.NoError(t, err)
	raw, err := jws.CompactSerialize()
	require.NoError(t, err)
	return raw
}

func TestOperatorMiddleware(t *testing.T) {
	o := setupOIDCTest(t)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Operator", operatorEmail(r))
		w.WriteHeader(http.StatusOK)
	})

	newSrv := func() *Server {
		return &Server{
			adminEmails:  []string{"admin@example.com"},
			oidcVerifier: o.verifier,
		}
	}

	serve := func(srv *Server, authHeader string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", "/api/prices", nil)
		if authHeader != "" {
			req.Header.Set("Authorization", authHeader)
		}
		w := httptest.NewRecorder()
		srv.operatorMiddleware(handler).ServeHTTP(w, req)
		return w
	}

	t.Run("Bypass", func(t *testing.T) {
		srv := newSrv()
		srv.bypassAuth = true
		w := serve(srv, "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("X-Operator"))
	})

	t.Run("Missing Header", func(t *testing.T) {
		w := serve(newSrv(), "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Not Bearer", func(t *testing.T) {
		w := serve(newSrv(), "Basic dXNlcjpwYXNz")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Garbage Token", func(t *testing.T) {
		w := serve(newSrv(), "Bearer not-a-jwt")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Wrong Audience", func(t *testing.T) {
		tok := o.token(t, map[string]any{"email": "admin@example.com", "aud": "someone-else"})
		w := serve(newSrv(), "Bearer "+tok)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Expired", func(t *testing.T) {
		tok := o.token(t, map[string]any{
			"email": "admin@example.com",
			"iat":   time.Now().Add(-2 * time.Hour).Unix(),
			"exp":   time.Now().Add(-time.Hour).Unix(),
		})
		w := serve(newSrv(), "Bearer "+tok)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("No Email", func(t *testing.T) {
		tok := o.token(t, nil)
		w := serve(newSrv(), "Bearer "+tok)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Unverified Email", func(t *testing.T) {
		tok := o.token(t, map[string]any{"email": "admin@example.com", "email_verified": false})
		w := serve(newSrv(), "Bearer "+tok)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Not An Admin", func(t *testing.T) {
		tok := o.token(t, map[string]any{"email": "user@example.com", "email_verified": true})
		w := serve(newSrv(), "Bearer "+tok)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("No Verifier", func(t *testing.T) {
		srv := newSrv()
		srv.oidcVerifier = nil
		tok := o.token(t, map[string]any{"email": "admin@example.com"})
		w := serve(srv, "Bearer "+tok)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Admin", func(t *testing.T) {
		tok := o.token(t, map[string]any{"email": "Admin@Example.com", "email_verified": true})
		w := serve(newSrv(), "Bearer "+tok)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Admin@Example.com", w.Header().Get("X-Operator"))
	})
}

func TestIsAdmin(t *testing.T) {
	srv := &Server{adminEmails: []string{"a@example.com", "B@example.com"}}
	assert.True(t, srv.isAdmin("a@example.com"))
	assert.True(t, srv.isAdmin("b@EXAMPLE.com"))
	assert.False(t, srv.isAdmin("c@example.com"))
	assert.False(t, srv.isAdmin(""))
	assert.False(t, (&Server{}).isAdmin("a@example.com"))
}
