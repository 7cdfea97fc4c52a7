// Package match implements suffix-aware host matching against domain lists.
package match

import (
	"net/url"
	"strings"
)

// Host extracts the normalized host from a raw URL: lower-cased, with a
// single leading "www." stripped. Malformed or relative URLs yield "".
func Host(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}

// HostMatches reports whether host h matches pattern p: exact equality or h
// being a subdomain of p. Both sides are normalized the way Host normalizes.
func HostMatches(h, p string) bool {
	p = strings.ToLower(strings.TrimSpace(p))
	p = strings.TrimPrefix(p, "www.")
	if h == "" || p == "" {
		return false
	}
	return h == p || strings.HasSuffix(h, "."+p)
}

// URLMatches reports whether the URL's host matches any pattern in the list.
// A URL that does not parse matches nothing.
func URLMatches(rawURL string, patterns []string) bool {
	host := Host(rawURL)
	if host == "" {
		return false
	}
	for _, p := range patterns {
		if HostMatches(host, p) {
			return true
		}
	}
	return false
}
