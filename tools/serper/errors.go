package serper

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized the API key was rejected
	ErrUnauthorized = errors.New("serper: unauthorized")
	// ErrRateLimited the API key is out of quota or throttled
	ErrRateLimited = errors.New("serper: rate limited")
	// ErrNetwork the request did not complete
	ErrNetwork = errors.New("serper: network error")
	// ErrUpstream any other unexpected response
	ErrUpstream = errors.New("serper: upstream error")
)

// SearchError describes a failed query
type SearchError struct {
	Query      string
	StatusCode int
	Err        error
}

func (e *SearchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("search %q failed with status %d: %v", e.Query, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("search %q failed: %v", e.Query, e.Err)
}

func (e *SearchError) Unwrap() error {
	return e.Err
}

func statusError(query string, status int, body string) *SearchError {
	var kind error
	switch {
	case status == 401 || status == 403:
		kind = ErrUnauthorized
	case status == 429:
		kind = ErrRateLimited
	default:
		kind = ErrUpstream
	}
	err := kind
	if body != "" {
		err = fmt.Errorf("%w: %s", kind, body)
	}
	return &SearchError{Query: query, StatusCode: status, Err: err}
}
