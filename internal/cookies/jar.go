package cookies

import (
	"errors"
	"net/http"
	"strings"
)

// Jar is an ordered sequence of cookies accumulated across a redirect chain.
// Add never deduplicates; duplicate names are coalesced only when the jar is
// serialized, with the last value observed winning.
type Jar struct {
	cookies []*http.Cookie
}

// NewJar creates an empty jar.
func NewJar() *Jar {
	return &Jar{}
}

// Add appends cookies to the jar.
func (j *Jar) Add(cs ...*http.Cookie) {
	j.cookies = append(j.cookies, cs...)
}

// AddSetCookies parses every Set-Cookie header in h and appends the results.
// Unparsable headers are skipped and reported in the returned error; the
// cookies that did parse are kept.
func (j *Jar) AddSetCookies(h http.Header) (int, error) {
	var errs []error
	added := 0
	for _, raw := range h.Values("Set-Cookie") {
		c, err := Parse(raw)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		j.cookies = append(j.cookies, c)
		added++
	}
	return added, errors.Join(errs...)
}

// Len returns the number of cookies in the jar, duplicates included.
func (j *Jar) Len() int {
	return len(j.cookies)
}

// All returns every cookie in insertion order.
func (j *Jar) All() []*http.Cookie {
	out := make([]*http.Cookie, len(j.cookies))
	copy(out, j.cookies)
	return out
}

// Unique returns one cookie per name. Each name keeps the position of its first
// appearance and the value of its last.
func (j *Jar) Unique() []*http.Cookie {
	index := make(map[string]int, len(j.cookies))
	out := make([]*http.Cookie, 0, len(j.cookies))
	for _, c := range j.cookies {
		if i, ok := index[c.Name]; ok {
			out[i] = c
			continue
		}
		index[c.Name] = len(out)
		out = append(out, c)
	}
	return out
}

// Header renders the jar as a Cookie request header value.
func (j *Jar) Header() string {
	unique := j.Unique()
	pairs := make([]string, 0, len(unique))
	for _, c := range unique {
		pairs = append(pairs, c.Name+"="+c.Value)
	}
	return strings.Join(pairs, "; ")
}
