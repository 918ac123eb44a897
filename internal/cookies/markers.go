package cookies

import "strings"

// MarkerSet is a set of cookie-name prefixes that identify upstream
// authentication cookies.
type MarkerSet []string

// DefaultAuthMarkers are the prefixes of the cookies the upstream site sets on a
// signed-in browser: profile, auth, session, opt-in and play-session cookies.
var DefaultAuthMarkers = MarkerSet{
	"pl_profile",
	"pl_auth",
	"sessionid",
	"pl_optin",
	"PLAY_SESSION",
}

// Match reports whether name starts with one of the markers.
func (m MarkerSet) Match(name string) bool {
	for _, prefix := range m {
		if prefix != "" && strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// AnyIn reports whether any cookie named in the Cookie header matches a marker.
// Only cookie names are inspected, so a value that happens to contain a marker
// does not count.
func (m MarkerSet) AnyIn(cookieHeader string) bool {
	for _, name := range Names(cookieHeader) {
		if m.Match(name) {
			return true
		}
	}
	return false
}
