package understat

import "fmt"

type FetchStatus int

const (
	// FetchOK means the source answered, the player list may still be empty.
	FetchOK FetchStatus = iota
	// FetchExhausted means every attempt failed with a retryable error.
	FetchExhausted
	// FetchPermanent means an attempt failed in a way retrying cannot fix.
	FetchPermanent
)

func (s FetchStatus) String() string {
	switch s {
	case FetchOK:
		return "ok"
	case FetchExhausted:
		return "exhausted"
	case FetchPermanent:
		return "permanent"
	default:
		return fmt.Sprintf("FetchStatus(%d)", int(s))
	}
}

type FetchResult struct {
	Status   FetchStatus
	Players  []map[string]any
	Attempts int
	// the last error seen, nil when Status is FetchOK
	Err error
}

// Failed is true for every status but FetchOK.
func (r FetchResult) Failed() bool {
	return r.Status != FetchOK
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code   int
	Status string
	// title of the returned page, if it was an HTML page
	Title string
}

func (e StatusError) Error() string {
	if e.Title != "" {
		return fmt.Sprintf("unexpected status %s (%q)", e.Status, e.Title)
	}
	return fmt.Sprintf("unexpected status %s", e.Status)
}

// retryable is false for client errors that will not change on a retry,
// timeouts and rate limiting are still worth another attempt.
func (e StatusError) retryable() bool {
	if e.Code >= 400 && e.Code < 500 {
		return e.Code == 408 || e.Code == 429
	}
	return true
}
