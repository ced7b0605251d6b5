package confluence

import "fmt"

// NotFoundError is a 404 from the content lookup endpoint. A missing page is
// reported as an empty result list, so a 404 here means the org name or
// space key is wrong.
type NotFoundError struct {
	URL string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("confluence returned 404 for %s (check the org name and space key)", e.URL)
}

// RemoteError is any non-2xx response from a create, update, delete, or
// upload call. The status and response body are kept so the operator can see
// what the service rejected.
type RemoteError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("confluence request to %s failed with status %d: %s", e.URL, e.StatusCode, e.Body)
}
