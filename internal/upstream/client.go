// Package upstream is a typed client for the fantasy-sports site the relay
// borrows authentication from. The site's API is unofficial; endpoints and
// payload shapes are documented in types.go as observed.
package upstream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tjfontaine/fantasy-relay/internal/domain"
)

const (
	DefaultLoginURL     = "https://users.premierleague.com/accounts/login/"
	DefaultAPIBaseURL   = "https://fantasy.premierleague.com"
	DefaultCrestBaseURL = "https://resources.premierleague.com/premierleague/badges/70"
	DefaultApp          = "plfpl-web"
	DefaultRedirectURI  = "https://fantasy.premierleague.com/a/login"
	DefaultUserAgent    = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	DefaultTimeout      = 10 * time.Second

	maxBodyBytes = 8 << 20
)

const (
	acceptJSON = "application/json, text/plain, */*"
	acceptHTML = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
)

// ClientOption configures the client.
type ClientOption func(*Client)

// WithLoginURL sets the login form URL.
func WithLoginURL(loginURL string) ClientOption {
	return func(c *Client) {
		c.loginURL = loginURL
	}
}

// WithAPIBaseURL sets the API host.
func WithAPIBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.apiBaseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithCrestBaseURL sets the base URL crest images are served from.
func WithCrestBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.crestBaseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithHTTPClient sets a custom HTTP client. Redirect following is always
// disabled on the client actually used.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithUserAgent overrides the browser User-Agent sent upstream.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithLoginApp sets the fixed client parameters the login form expects.
func WithLoginApp(app, redirectURI string) ClientOption {
	return func(c *Client) {
		c.app = app
		c.redirectURI = redirectURI
	}
}

// Client talks to the upstream login and API hosts with browser-like headers.
type Client struct {
	loginURL     string
	apiBaseURL   string
	crestBaseURL string
	app          string
	redirectURI  string
	userAgent    string
	timeout      time.Duration
	httpClient   *http.Client
}

// NewClient creates a new upstream client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		loginURL:     DefaultLoginURL,
		apiBaseURL:   DefaultAPIBaseURL,
		crestBaseURL: DefaultCrestBaseURL,
		app:          DefaultApp,
		redirectURI:  DefaultRedirectURI,
		userAgent:    DefaultUserAgent,
		timeout:      DefaultTimeout,
		httpClient:   http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}

	// The relay reads Set-Cookie off every 3xx itself.
	hc := *c.httpClient
	hc.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	c.httpClient = &hc

	return c
}

// Response is a fully read upstream response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	URL        *url.URL
}

// OK reports whether the status is 200.
func (r *Response) OK() bool {
	return r.StatusCode == http.StatusOK
}

// IsRedirect reports whether the status is one of the 3xx codes that carry a Location.
func (r *Response) IsRedirect() bool {
	switch r.StatusCode {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}

// Excerpt returns at most n bytes of the body for diagnostics.
func (r *Response) Excerpt(n int) string {
	return Excerpt(r.Body, n)
}

// Excerpt truncates body to n bytes.
func Excerpt(body []byte, n int) string {
	if len(body) <= n {
		return string(body)
	}
	return string(body[:n]) + "..."
}

// PostLogin submits credentials to the login form. The raw response is returned
// whatever its status; a 302 means the credentials were accepted.
func (c *Client) PostLogin(ctx context.Context, login, password string) (*Response, error) {
	form := url.Values{}
	form.Set("login", login)
	form.Set("password", password)
	form.Set("app", c.app)
	form.Set("redirect_uri", c.redirectURI)
	form.Set("state", "")
	form.Set("scope", "")
	form.Set("response_type", "code")

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.loginURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(httpReq, acceptHTML, "")
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.do(httpReq)
}

// Get issues a GET with browser headers and the given Cookie header.
func (c *Client) Get(ctx context.Context, rawURL, cookieHeader string) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(httpReq, acceptJSON, cookieHeader)

	return c.do(httpReq)
}

func (c *Client) do(httpReq *http.Request) (*Response, error) {
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
		URL:        httpReq.URL,
	}, nil
}

func (c *Client) setHeaders(req *http.Request, accept, cookieHeader string) {
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", accept)
	req.Header.Set("Accept-Language", "en-GB,en;q=0.9")
	req.Header.Set("Referer", c.apiBaseURL+"/")
	req.Header.Set("Origin", c.apiBaseURL)
	if cookieHeader != "" {
		req.Header.Set("Cookie", cookieHeader)
	}
}

// MeURL is the current-user profile endpoint.
func (c *Client) MeURL() string {
	return c.apiBaseURL + "/api/me/"
}

// MyTeamURL is the owner-only team management endpoint.
func (c *Client) MyTeamURL(accountID int) string {
	return c.apiBaseURL + "/api/my-team/" + strconv.Itoa(accountID) + "/"
}

// EntryURL is the public entry endpoint.
func (c *Client) EntryURL(accountID int) string {
	return c.apiBaseURL + "/api/entry/" + strconv.Itoa(accountID) + "/"
}

// PicksURL is a gameweek's picks for an entry.
func (c *Client) PicksURL(accountID, gameweek int) string {
	return fmt.Sprintf("%s/api/entry/%d/event/%d/picks/", c.apiBaseURL, accountID, gameweek)
}

// BootstrapURL is the static reference data endpoint.
func (c *Client) BootstrapURL() string {
	return c.apiBaseURL + "/api/bootstrap-static/"
}

// FixturesURL lists fixtures, filtered to one gameweek when gameweek > 0.
func (c *Client) FixturesURL(gameweek int) string {
	if gameweek > 0 {
		return c.apiBaseURL + "/api/fixtures/?event=" + strconv.Itoa(gameweek)
	}
	return c.apiBaseURL + "/api/fixtures/"
}

// CrestURL is the badge image for a team code.
func (c *Client) CrestURL(teamCode int) string {
	return fmt.Sprintf("%s/t%d.png", c.crestBaseURL, teamCode)
}

// FetchBootstrap returns the raw bootstrap payload.
func (c *Client) FetchBootstrap(ctx context.Context) ([]byte, error) {
	resp, err := c.Get(ctx, c.BootstrapURL(), "")
	if err != nil {
		return nil, domain.ErrUpstreamUnavailable("bootstrap request failed").WithCause(err)
	}
	if !resp.OK() {
		return nil, domain.ErrResourceFetch(fmt.Sprintf("bootstrap returned status %d", resp.StatusCode)).
			WithUpstreamStatus(resp.StatusCode)
	}
	if _, err := DecodeBootstrap(resp.Body); err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// Fixtures returns the fixtures of one gameweek (all fixtures when gameweek is 0).
func (c *Client) Fixtures(ctx context.Context, gameweek int) ([]Fixture, error) {
	resp, err := c.Get(ctx, c.FixturesURL(gameweek), "")
	if err != nil {
		return nil, domain.ErrUpstreamUnavailable("fixtures request failed").WithCause(err)
	}
	if !resp.OK() {
		return nil, domain.ErrResourceFetch(fmt.Sprintf("fixtures returned status %d", resp.StatusCode)).
			WithUpstreamStatus(resp.StatusCode)
	}
	return DecodeFixtures(resp.Body)
}

// Crest fetches a badge image. It returns the bytes and their content type.
func (c *Client) Crest(ctx context.Context, teamCode int) ([]byte, string, error) {
	resp, err := c.Get(ctx, c.CrestURL(teamCode), "")
	if err != nil {
		return nil, "", domain.ErrUpstreamUnavailable("crest request failed").WithCause(err)
	}
	if !resp.OK() {
		return nil, "", domain.ErrResourceFetch(fmt.Sprintf("crest returned status %d", resp.StatusCode)).
			WithUpstreamStatus(resp.StatusCode)
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(resp.Body)
	}
	return resp.Body, contentType, nil
}
