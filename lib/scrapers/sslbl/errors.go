package sslbl

import "fmt"

// FetchError is returned when a page could not be retrieved, either
// because the request failed or the server answered with a non 2xx status.
type FetchError struct {
	Url string
	// zero when no response was received
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("can not open %s (status %d): %v", e.Url, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("can not open %s: %v", e.Url, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
