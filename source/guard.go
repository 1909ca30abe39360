package source

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// ErrUnsafeScheme is returned for targets that are not http or https.
var ErrUnsafeScheme = errors.New("source: only http and https are allowed")

// ErrPrivateAddress is returned for targets on loopback, link-local or
// private networks.
var ErrPrivateAddress = errors.New("source: target resolves to a private or loopback address")

// ValidateURL is the default URL guard: http(s) only, a host is required, and
// neither the literal host nor any of its resolved addresses may be internal.
// Resolution failures are let through; the request itself will fail.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("source: invalid URL: %w", err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return ErrUnsafeScheme
	}
	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("source: URL has no host")
	}

	if ip := net.ParseIP(host); ip != nil {
		if internalIP(ip) {
			return ErrPrivateAddress
		}
		return nil
	}

	addrs, err := net.LookupHost(host)
	if err != nil {
		return nil
	}
	for _, a := range addrs {
		if ip := net.ParseIP(a); ip != nil && internalIP(ip) {
			return ErrPrivateAddress
		}
	}
	return nil
}

func internalIP(ip net.IP) bool {
	return ip.IsLoopback() ||
		ip.IsPrivate() ||
		ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast()
}
