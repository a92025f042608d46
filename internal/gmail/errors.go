package gmail

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
)

// Sentinel errors for the Gmail error taxonomy. Callers use errors.Is to
// distinguish missing messages from permission or quota problems.
var (
	// ErrNotFound indicates the requested message, thread, or label does not exist.
	ErrNotFound = errors.New("not found")

	// ErrRateLimited indicates the Gmail API rejected the request due to quota.
	ErrRateLimited = errors.New("rate limited")

	// ErrPermission indicates the token lacks access to the requested resource.
	ErrPermission = errors.New("permission denied")
)

// wrapAPIError maps a googleapi error onto the sentinel taxonomy, keeping the
// original error in the chain.
func wrapAPIError(op string, err error) error {
	if err == nil {
		return nil
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusNotFound:
			return fmt.Errorf("%s: %w: %v", op, ErrNotFound, err)
		case http.StatusTooManyRequests:
			return fmt.Errorf("%s: %w: %v", op, ErrRateLimited, err)
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%s: %w: %v", op, ErrPermission, err)
		}
	}

	return fmt.Errorf("%s: %w", op, err)
}

// isRetryable reports whether an API error is worth retrying.
// Only quota errors and server-side failures qualify; 4xx responses other
// than 429 will fail the same way on every attempt.
func isRetryable(err error) bool {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= 500
}
