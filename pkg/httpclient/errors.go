package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/giovannicg/INMEDT/pkg/errors"
)

// upstreamErrorBody matches the {"error":{...}} envelope used by the API and
// by compatible upstreams.
type upstreamErrorBody struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ParseResponseError turns a non-2xx response from an upstream call into an
// error. Structured error bodies keep their code and message; anything else
// becomes a plain error quoting the status and raw body. The body is read at
// most to 1 MB and always closed.
func ParseResponseError(resp *http.Response, upstream string) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", upstream, resp.StatusCode, err)
	}

	var parsed upstreamErrorBody
	if json.Unmarshal(body, &parsed) == nil && parsed.Error != nil {
		return upstreamAppError(resp.StatusCode, parsed.Error.Code, parsed.Error.Message, upstream)
	}

	return fmt.Errorf("%s returned status %d: %s", upstream, resp.StatusCode, string(body))
}

// upstreamAppError preserves the upstream's error semantics in the local
// error taxonomy so callers can branch with errors.Is.
func upstreamAppError(status int, code, message, upstream string) error {
	qualified := fmt.Sprintf("%s: %s", upstream, message)

	switch {
	case status == http.StatusNotFound:
		return apperrors.NotFound(upstream, message)
	case status == http.StatusBadRequest:
		return apperrors.InvalidInput(qualified)
	case status == http.StatusConflict:
		return apperrors.Conflict(qualified)
	case status == http.StatusUnauthorized:
		return apperrors.Unauthorized(qualified)
	case status == http.StatusForbidden:
		return apperrors.Forbidden(qualified)
	case status >= 500:
		return fmt.Errorf("%s server error (%d/%s): %s", upstream, status, code, message)
	default:
		return &apperrors.AppError{
			Code:    code,
			Message: qualified,
			Status:  status,
		}
	}
}

// IsClientError reports whether status is a 4xx. A 4xx from tokeninfo means
// the token itself is bad, not that Google is down, so callers treat the two
// ranges differently.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}
