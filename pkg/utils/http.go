// Package utils provides common utility functions.
package utils

import "net/http"

// UserAgent identifies the worker to upstream and downstream services.
const UserAgent = "feedsync/1.0"

// BuildHeaders creates HTTP headers with defaults. Custom values replace
// the defaults for the same key.
func BuildHeaders(accept string, custom http.Header) http.Header {
	headers := http.Header{}

	// Add default headers
	headers.Set("User-Agent", UserAgent)

	if accept != "" {
		headers.Set("Accept", accept)
	}

	// Add custom headers
	for key, values := range custom {
		headers.Del(key)

		for _, v := range values {
			headers.Add(key, v)
		}
	}

	return headers
}
