package middleware

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// allowlistStatus runs one request from remoteAddr through an allowlist built
// from cidrs and reports the resulting status code.
func allowlistStatus(cidrs []string, remoteAddr string) int {
	handler := IPAllowlist(cidrs, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil)
	req.RemoteAddr = remoteAddr
	handler.ServeHTTP(rec, req)
	return rec.Code
}

func TestIPAllowlist(t *testing.T) {
	privateRanges := []string{"10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"}

	tests := []struct {
		name       string
		cidrs      []string
		remoteAddr string
		want       int
	}{
		{"loopback allowed", []string{"127.0.0.0/8"}, "127.0.0.1:42100", http.StatusOK},
		{"outside range denied", []string{"10.0.0.0/8"}, "192.168.1.1:42100", http.StatusForbidden},
		{"10.x in private ranges", privateRanges, "10.1.2.3:42100", http.StatusOK},
		{"172.16.x in private ranges", privateRanges, "172.16.5.5:42100", http.StatusOK},
		{"192.168.x in private ranges", privateRanges, "192.168.1.1:42100", http.StatusOK},
		{"public ip denied", privateRanges, "8.8.8.8:42100", http.StatusForbidden},
		{"ipv6 loopback", []string{"::1/128"}, "[::1]:42100", http.StatusOK},
		{"remote addr without port", []string{"127.0.0.0/8"}, "127.0.0.1", http.StatusOK},
		{"empty allowlist denies everyone", nil, "127.0.0.1:42100", http.StatusForbidden},
		{"bad cidr skipped, good one kept", []string{"not-a-cidr", "127.0.0.0/8"}, "127.0.0.1:42100", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, allowlistStatus(tt.cidrs, tt.remoteAddr))
		})
	}
}

func TestIPAllowlist_DenialBody(t *testing.T) {
	handler := IPAllowlist([]string{"10.0.0.0/8"}, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil)
	req.RemoteAddr = "203.0.113.7:42100"
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)

	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Contains(t, body, "error")
}

func pprofStatus(t *testing.T, path, remoteAddr string, cidrs []string) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	RegisterPprof(r, cidrs, discardLogger())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = remoteAddr
	r.ServeHTTP(rec, req)
	return rec
}

func TestRegisterPprof_IndexFromAllowedIP(t *testing.T) {
	rec := pprofStatus(t, "/debug/pprof/", "127.0.0.1:42100", []string{"127.0.0.0/8"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "pprof")
}

func TestRegisterPprof_DeniedOutsideAllowlist(t *testing.T) {
	rec := pprofStatus(t, "/debug/pprof/", "203.0.113.7:42100", []string{"10.0.0.0/8"})

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRegisterPprof_NamedProfiles(t *testing.T) {
	// heap is served through the catch-all Index route.
	for _, path := range []string{"/debug/pprof/cmdline", "/debug/pprof/symbol", "/debug/pprof/heap"} {
		rec := pprofStatus(t, path, "127.0.0.1:42100", []string{"127.0.0.0/8"})
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}
