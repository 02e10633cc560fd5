package scholar

import (
	"errors"
	"fmt"
)

// Sentinel errors distinguishing why a year could not be counted. Callers
// check them with errors.Is; a failed year is skipped, never recorded as
// zero.
var (
	// ErrBlocked means the provider served a captcha or traffic-check page
	// instead of results.
	ErrBlocked = errors.New("provider blocked the request")

	// ErrNoCount means the response rendered fine but no result-count
	// string was found (page variant, empty page).
	ErrNoCount = errors.New("result count not found in response")
)

// StatusError reports a non-success HTTP status from the provider.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("provider returned HTTP %d", e.Code)
}

// Temporary reports whether the status is worth retrying.
func (e *StatusError) Temporary() bool {
	switch e.Code {
	case 429, 500, 502, 503, 504:
		return true
	}
	return false
}
