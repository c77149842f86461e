package davclient

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/anhofer/libgroupdav/internal/httpclient"
	"github.com/anhofer/libgroupdav/internal/multistatus"
)

// MutationStatus classifies the outcome of a mutation or deletion.
// NotFound and Conflict are expected outcomes callers branch on, not
// failures.
type MutationStatus int

const (
	StatusUpdated MutationStatus = iota
	StatusDeleted
	StatusNotFound
	StatusConflict
)

func (s MutationStatus) String() string {
	switch s {
	case StatusUpdated:
		return "updated"
	case StatusDeleted:
		return "deleted"
	case StatusNotFound:
		return "not found"
	case StatusConflict:
		return "conflict"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// MutationResult reports what a conditional write did. On success Etag is
// the server's new entity tag (empty when the server omits it from the
// write response); on Conflict it is the stale tag the write carried, so
// the caller can re-locate and decide whether to retry.
type MutationResult struct {
	Status  MutationStatus
	Href    string
	Etag    string
	Message string
}

// CreatedObject is the location and entity tag of a freshly created
// record.
type CreatedObject struct {
	UID  string
	Href string
	Etag string
}

// ParseError reports a malformed server payload, either the multistatus
// XML or an embedded record body. It indicates a server incompatibility,
// not a caller mistake.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse server data: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ServerError reports an HTTP status outside the classified set, together
// with the response body for diagnosis.
type ServerError struct {
	StatusCode int
	Body       string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server returned status %d", e.StatusCode)
}

// wrapError converts internal transport and decoding failures into their
// public forms. Transport errors pass through untouched.
func wrapError(err error) error {
	var se *httpclient.StatusError
	if errors.As(err, &se) {
		return &ServerError{StatusCode: se.StatusCode, Body: se.Body}
	}
	var pe *multistatus.ParseError
	if errors.As(err, &pe) {
		return &ParseError{Err: pe}
	}
	return err
}

func notFoundResult(uid string) *MutationResult {
	return &MutationResult{
		Status:  StatusNotFound,
		Message: fmt.Sprintf("no object with UID %q", uid),
	}
}

// classifyWrite maps the server's answer to a conditional write onto the
// tagged result: 2xx is the requested success status, 412 means the
// caller's token went stale, 404 means the object vanished between locate
// and write. Anything else surfaces as an error with the server's status
// and body.
func classifyWrite(success MutationStatus, href, sentEtag, newEtag string, err error) (*MutationResult, error) {
	if err == nil {
		return &MutationResult{Status: success, Href: href, Etag: newEtag}, nil
	}

	var se *httpclient.StatusError
	if errors.As(err, &se) {
		switch se.StatusCode {
		case http.StatusPreconditionFailed:
			return &MutationResult{
				Status:  StatusConflict,
				Href:    href,
				Etag:    sentEtag,
				Message: fmt.Sprintf("etag %s no longer matches the stored object", sentEtag),
			}, nil
		case http.StatusNotFound:
			return &MutationResult{
				Status:  StatusNotFound,
				Href:    href,
				Message: "object disappeared before the write",
			}, nil
		}
		return nil, &ServerError{StatusCode: se.StatusCode, Body: se.Body}
	}

	return nil, err
}
