package azdo

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// APIError is a service call that reached the API and was rejected.
type APIError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: service returned %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: service returned %d: %s", e.Op, e.StatusCode, e.Body)
}

// IsSystemic reports whether an error dooms every subsequent call alike, as
// opposed to failing one item. Transport failures (DNS, refused connections,
// timeouts) and authentication rejections are systemic; a 404 or 409 on one
// point is not.
func IsSystemic(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusUnauthorized ||
			apiErr.StatusCode == http.StatusForbidden
	}

	// Errors that never produced an HTTP status reached no further than the
	// transport.
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
