package ai

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/custodia-labs/gamefit/internal/core/domain"
)

// maxErrorBody bounds how much of an error response is quoted in errors.
const maxErrorBody = 256

// statusError maps a non-200 provider response onto domain errors.
// A rejected credential wraps ErrUnauthorized so the job does not retry it.
func statusError(provider string, status int, detail string) error {
	if len(detail) > maxErrorBody {
		detail = detail[:maxErrorBody]
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%s: %w: status %d: %s", provider, domain.ErrUnauthorized, status, detail)
	case status == http.StatusTooManyRequests || status >= 500:
		return fmt.Errorf("%s: %w: status %d: %s", provider, domain.ErrServiceUnavailable, status, detail)
	default:
		return fmt.Errorf("%s API returned status %d: %s", provider, status, detail)
	}
}

// redactKey strips the API key from transport errors.
func redactKey(err error, key string) error {
	var uerr *url.Error
	if key == "" || !errors.As(err, &uerr) {
		return err
	}
	return &url.Error{
		Op:  uerr.Op,
		URL: strings.ReplaceAll(uerr.URL, url.QueryEscape(key), "REDACTED"),
		Err: uerr.Err,
	}
}
