package linklist

import (
	"net/url"
	"strings"
)

// ValidURL reports whether an inline link target is kept: an http or https
// URL, or a pure in-document fragment such as "#intro".
func ValidURL(raw string) bool {
	if strings.HasPrefix(raw, "#") {
		return true
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return true
	}
	return false
}
