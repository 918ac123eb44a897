// Package cookies parses upstream Set-Cookie headers, accumulates them across a
// redirect chain, and rewrites them so a browser on another origin can store and
// replay them.
package cookies

import (
	"fmt"
	"net/http"
	"strings"
)

// Parse parses a single Set-Cookie header value.
func Parse(raw string) (*http.Cookie, error) {
	c, err := http.ParseSetCookie(raw)
	if err != nil {
		return nil, fmt.Errorf("parse set-cookie: %w", err)
	}
	return c, nil
}

// Normalize returns a copy of c rewritten for browser-side storage on the relay's
// origin: Path defaults to "/", Domain is dropped, SameSite is forced to None,
// Secure is set and HttpOnly is cleared so client script can read the value.
// Expiry attributes are left untouched.
func Normalize(c *http.Cookie) *http.Cookie {
	out := *c
	if out.Path == "" {
		out.Path = "/"
	}
	out.Domain = ""
	out.SameSite = http.SameSiteNoneMode
	out.Secure = true
	out.HttpOnly = false
	out.Raw = ""
	out.Unparsed = nil
	return &out
}

// NormalizeAll normalizes every cookie in cs.
func NormalizeAll(cs []*http.Cookie) []*http.Cookie {
	out := make([]*http.Cookie, 0, len(cs))
	for _, c := range cs {
		out = append(out, Normalize(c))
	}
	return out
}

// IsNormalized reports whether c satisfies the browser-facing invariants.
func IsNormalized(c *http.Cookie) bool {
	return c.Path != "" &&
		c.Domain == "" &&
		c.SameSite == http.SameSiteNoneMode &&
		c.Secure &&
		!c.HttpOnly
}

// Install writes each cookie to w as a Set-Cookie header.
func Install(w http.ResponseWriter, cs []*http.Cookie) {
	for _, c := range cs {
		http.SetCookie(w, c)
	}
}

// Names returns the cookie names present in a Cookie request header, in order.
// Malformed pairs are skipped rather than failing the whole header.
func Names(cookieHeader string) []string {
	var names []string
	for _, part := range strings.Split(cookieHeader, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, _, _ := strings.Cut(part, "=")
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		names = append(names, name)
	}
	return names
}
