package relay

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/tjfontaine/fantasy-relay/internal/cookies"
	"github.com/tjfontaine/fantasy-relay/internal/upstream"
)

// Termination says why a redirect chain stopped.
type Termination string

const (
	TerminatedNonRedirect     Termination = "non_redirect"
	TerminatedHopCap          Termination = "hop_cap"
	TerminatedMissingLocation Termination = "missing_location"
)

// Hop is one request issued while following a chain.
type Hop struct {
	Index    int    `json:"index"`
	URL      string `json:"url"`
	Status   int    `json:"status"`
	Location string `json:"location,omitempty"`
}

// Chain is the outcome of following redirects from an initial response.
type Chain struct {
	Hops        []Hop
	Final       *upstream.Response
	Termination Termination
}

// RedirectChainFollower follows Location headers by hand, sending the cookies
// collected so far on every hop and merging each hop's Set-Cookie into the jar.
type RedirectChainFollower struct {
	fetcher Fetcher
	maxHops int
	logger  *slog.Logger
}

// NewRedirectChainFollower creates a follower that issues at most maxHops requests.
func NewRedirectChainFollower(f Fetcher, maxHops int, logger *slog.Logger) *RedirectChainFollower {
	if maxHops < 0 {
		maxHops = 0
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedirectChainFollower{fetcher: f, maxHops: maxHops, logger: logger}
}

// Follow walks the chain starting at start. Cookies from start itself are the
// caller's to add to jar before calling. The returned chain is populated even
// when an error interrupts it.
func (f *RedirectChainFollower) Follow(ctx context.Context, start *upstream.Response, jar *cookies.Jar) (*Chain, error) {
	chain := &Chain{Final: start}
	cur := start

	for {
		if !cur.IsRedirect() {
			chain.Termination = TerminatedNonRedirect
			break
		}
		location := cur.Header.Get("Location")
		if location == "" {
			chain.Termination = TerminatedMissingLocation
			break
		}
		if len(chain.Hops) >= f.maxHops {
			chain.Termination = TerminatedHopCap
			break
		}

		next, err := resolveLocation(cur.URL, location)
		if err != nil {
			return chain, err
		}

		resp, err := f.fetcher.Get(ctx, next, jar.Header())
		if err != nil {
			return chain, fmt.Errorf("redirect hop %d: %w", len(chain.Hops)+1, err)
		}
		if _, err := jar.AddSetCookies(resp.Header); err != nil {
			f.logger.Debug("skipped unparsable cookie on redirect hop",
				slog.Int("hop", len(chain.Hops)+1),
				slog.String("error", err.Error()))
		}

		chain.Hops = append(chain.Hops, Hop{
			Index:    len(chain.Hops) + 1,
			URL:      next,
			Status:   resp.StatusCode,
			Location: resp.Header.Get("Location"),
		})
		chain.Final = resp
		cur = resp
	}

	return chain, nil
}

func resolveLocation(base *url.URL, location string) (string, error) {
	loc, err := url.Parse(location)
	if err != nil {
		return "", fmt.Errorf("invalid Location %q: %w", location, err)
	}
	if base == nil {
		if !loc.IsAbs() {
			return "", fmt.Errorf("relative Location %q without a base URL", location)
		}
		return loc.String(), nil
	}
	return base.ResolveReference(loc).String(), nil
}
