package donation

import (
	"errors"
	"fmt"
)

// ErrCampaignNotFound is returned when a campaign id matches nothing.
var ErrCampaignNotFound = errors.New("campaign not found")

// APIError is a non-2xx response from the platform.
type APIError struct {
	StatusCode int
	Message    string // server-provided message, may be empty
	RetryAfter int    // seconds, from Retry-After on 429 responses
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error %d", e.StatusCode)
}

// IsStatus reports whether err carries an APIError with the given status.
func IsStatus(err error, statusCode int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == statusCode
}
