package httpclient

import (
	"errors"
	"fmt"
)

// StatusError reports a non-success HTTP status together with the response
// body, so callers can classify preconditions (412), missing resources
// (404), and anything else the server had to say.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.StatusCode)
}

// IsStatus reports whether err carries a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}
