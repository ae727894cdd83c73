package httpclient

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	apperrors "github.com/giovannicg/INMEDT/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func upstreamResponse(statusCode int, body string) *http.Response {
	return &http.Response{
		StatusCode: statusCode,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func errorEnvelope(code, message string) string {
	return `{"error":{"code":"` + code + `","message":"` + message + `"}}`
}

func TestParseResponseError_MapsStructuredStatuses(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		code     string
		message  string
		sentinel error
	}{
		{"not found", http.StatusNotFound, "NOT_FOUND", "token not found", apperrors.ErrNotFound},
		{"bad request", http.StatusBadRequest, "INVALID_INPUT", "malformed id_token", apperrors.ErrInvalidInput},
		{"conflict", http.StatusConflict, "CONFLICT", "token already exchanged", apperrors.ErrConflict},
		{"unauthorized", http.StatusUnauthorized, "UNAUTHORIZED", "invalid token", apperrors.ErrUnauthorized},
		{"forbidden", http.StatusForbidden, "FORBIDDEN", "audience mismatch", apperrors.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := upstreamResponse(tt.status, errorEnvelope(tt.code, tt.message))
			err := ParseResponseError(resp, "google-tokeninfo")
			require.Error(t, err)

			var appErr *apperrors.AppError
			require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
			assert.Equal(t, tt.status, appErr.Status)
			assert.True(t, errors.Is(err, tt.sentinel))
		})
	}
}

func TestParseResponseError_QualifiesMessageWithUpstream(t *testing.T) {
	resp := upstreamResponse(http.StatusUnauthorized, errorEnvelope("UNAUTHORIZED", "invalid token"))
	err := ParseResponseError(resp, "google-tokeninfo")
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Contains(t, appErr.Message, "google-tokeninfo")
}

func TestParseResponseError_ServerErrorsStayGeneric(t *testing.T) {
	// 5xx from the upstream must not masquerade as a local AppError.
	for _, status := range []int{http.StatusInternalServerError, http.StatusBadGateway} {
		resp := upstreamResponse(status, errorEnvelope("UPSTREAM_DOWN", "temporarily unavailable"))
		err := ParseResponseError(resp, "google-tokeninfo")
		require.Error(t, err)

		var appErr *apperrors.AppError
		assert.False(t, errors.As(err, &appErr))
		assert.Contains(t, err.Error(), "google-tokeninfo")
		assert.Contains(t, err.Error(), "temporarily unavailable")
	}
}

func TestParseResponseError_UnstructuredBody(t *testing.T) {
	resp := upstreamResponse(http.StatusBadGateway, "Bad Gateway: upstream connection refused")
	err := ParseResponseError(resp, "google-tokeninfo")
	require.Error(t, err)

	assert.Contains(t, err.Error(), "google-tokeninfo")
	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), "upstream connection refused")
}

func TestParseResponseError_EmptyBody(t *testing.T) {
	resp := upstreamResponse(http.StatusInternalServerError, "")
	err := ParseResponseError(resp, "google-tokeninfo")
	require.Error(t, err)

	assert.Contains(t, err.Error(), "500")
}

func TestParseResponseError_HTMLBody(t *testing.T) {
	resp := upstreamResponse(http.StatusBadGateway, "<html><body><h1>502 Bad Gateway</h1></body></html>")
	err := ParseResponseError(resp, "google-tokeninfo")
	require.Error(t, err)

	assert.Contains(t, err.Error(), "502")
}

func TestParseResponseError_NullErrorFallsBack(t *testing.T) {
	resp := upstreamResponse(http.StatusBadRequest, `{"error":null}`)
	err := ParseResponseError(resp, "google-tokeninfo")
	require.Error(t, err)

	var appErr *apperrors.AppError
	assert.False(t, errors.As(err, &appErr))
	assert.Contains(t, err.Error(), "400")
}

func TestParseResponseError_UnmappedStatusKeepsCode(t *testing.T) {
	resp := upstreamResponse(http.StatusTooManyRequests, errorEnvelope("RATE_LIMITED", "slow down"))
	err := ParseResponseError(resp, "google-tokeninfo")
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusTooManyRequests, appErr.Status)
	assert.Equal(t, "RATE_LIMITED", appErr.Code)
}

func TestIsClientError(t *testing.T) {
	for _, status := range []int{400, 401, 403, 404, 409, 422, 429, 499} {
		assert.True(t, IsClientError(status), "status %d", status)
	}
	for _, status := range []int{200, 201, 204, 301, 399, 500, 501, 502, 503} {
		assert.False(t, IsClientError(status), "status %d", status)
	}
}
