package middleware

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"livestock-ledger/internal/platform/logger"
	"livestock-ledger/internal/ports/auth"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
)

type stubVerifier struct {
	claims auth.Claims
	err    error
}

func (s stubVerifier) Verify(_ context.Context, _ string) (auth.Claims, error) {
	return s.claims, s.err
}

func claimsProbe(t *testing.T, want bool, wantClaims auth.Claims) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, ok := GetClaims(r.Context())
		assert.Equal(t, want, ok)
		if want {
			assert.Equal(t, wantClaims, c)
		}
	})
}

func TestAuthContext_DevHeaders(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Debug-User-ID", "u-1")
	req.Header.Set("X-Debug-Organization-ID", "org-1")

	h := AuthContext(nil)(claimsProbe(t, true, auth.Claims{UserID: "u-1", OrganizationID: "org-1"}))
	h.ServeHTTP(httptest.NewRecorder(), req)

	h = AuthContext(nil)(claimsProbe(t, false, auth.Claims{}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
}

func TestAuthContext_Verifier(t *testing.T) {
	want := auth.Claims{UserID: "u-2", OrganizationID: "org-2"}

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer tok")
	AuthContext(stubVerifier{claims: want})(claimsProbe(t, true, want)).ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer bad")
	AuthContext(stubVerifier{err: errors.New("nope")})(claimsProbe(t, false, auth.Claims{})).ServeHTTP(httptest.NewRecorder(), req)
}

func TestRequireUser(t *testing.T) {
	rec := httptest.NewRecorder()
	_, ok := RequireUser(rec, httptest.NewRequest("GET", "/", nil))
	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest("GET", "/", nil)
	req = req.WithContext(WithClaims(req.Context(), auth.Claims{UserID: "u-1"}))
	c, ok := RequireUser(httptest.NewRecorder(), req)
	assert.True(t, ok)
	assert.Equal(t, "u-1", c.UserID)
}

func TestRequestLog_WritesStatusAndRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Options{Level: logger.Info, Output: &buf})

	h := chimw.RequestID(RequestLog(log)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("POST", "/sales/bulk", nil))

	out := buf.String()
	assert.Contains(t, out, "status=409")
	assert.Contains(t, out, "path=/sales/bulk")
	assert.Contains(t, out, "request_id=")
}
