// CLAUDE:SUMMARY Response-hardening middleware stack for the JSON API: HEAD→GET, security headers, body cap.
// Package shield provides the HTTP middleware applied in front of the API.
package shield

import "net/http"

// APIStack returns the standard middleware stack for the JSON API, outermost first.
func APIStack(maxBody int64) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		HeadToGet,
		SecurityHeaders(DefaultHeaders()),
		MaxBody(maxBody),
	}
}
