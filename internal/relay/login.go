package relay

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/tjfontaine/fantasy-relay/internal/cookies"
	"github.com/tjfontaine/fantasy-relay/internal/domain"
	"github.com/tjfontaine/fantasy-relay/internal/upstream"
)

const excerptLen = 200

// Credentials are the user's upstream login. They live for one Login call.
type Credentials struct {
	Login    string
	Password string
}

// LoginResult is a successful login. Cookies are already normalized and are
// meant to be installed on the browser-facing response.
type LoginResult struct {
	DisplayName string
	AccountID   int
	Message     string
	Cookies     []*http.Cookie
	Chain       *Chain
}

// BotDetector recognizes bot-protection pages by body substrings. It is a
// heuristic: an unrecognized challenge is reported as a plain rejection.
type BotDetector struct {
	Markers []string
}

// DefaultBotDetector matches the challenge texts the upstream has been seen to serve.
func DefaultBotDetector() BotDetector {
	return BotDetector{Markers: []string{"enable js", "captcha"}}
}

// Detect reports whether body contains any marker, case-insensitively.
func (d BotDetector) Detect(body []byte) bool {
	lower := bytes.ToLower(body)
	for _, m := range d.Markers {
		if m != "" && bytes.Contains(lower, []byte(strings.ToLower(m))) {
			return true
		}
	}
	return false
}

// Login establishes an upstream session with creds. Every failure is terminal
// for the call and is returned as a *domain.RelayError; nothing is retried.
func (r *Relay) Login(ctx context.Context, creds Credentials) (*LoginResult, error) {
	if creds.Login == "" || creds.Password == "" {
		return nil, domain.ErrInvalidRequest("login and password are required")
	}

	resp, err := r.upstream.PostLogin(ctx, creds.Login, creds.Password)
	if err != nil {
		return nil, domain.ErrUpstreamUnavailable("login request failed").WithCause(err)
	}

	switch {
	case resp.StatusCode == http.StatusForbidden && r.bot.Detect(resp.Body):
		r.logger.Warn("login blocked by bot protection", slog.Int("upstream_status", resp.StatusCode))
		return nil, domain.ErrBotProtection("upstream requires an interactive login").
			WithUpstreamStatus(resp.StatusCode).
			WithDetail(r.detail(resp, creds))
	case resp.StatusCode != http.StatusFound:
		r.logger.Warn("login rejected", slog.Int("upstream_status", resp.StatusCode))
		return nil, domain.ErrAuthenticationRejected("upstream did not accept the login").
			WithUpstreamStatus(resp.StatusCode).
			WithDetail(r.detail(resp, creds))
	}

	jar := cookies.NewJar()
	if _, err := jar.AddSetCookies(resp.Header); err != nil {
		r.logger.Debug("skipped unparsable login cookie", slog.String("error", err.Error()))
	}

	chain, err := r.follower.Follow(ctx, resp, jar)
	if err != nil {
		return nil, domain.ErrUpstreamUnavailable("following login redirects failed").WithCause(err)
	}
	r.logger.Debug("login redirect chain complete",
		slog.Int("hops", len(chain.Hops)),
		slog.String("termination", string(chain.Termination)),
		slog.Int("cookies", jar.Len()))

	if jar.Len() == 0 {
		return nil, domain.ErrNoCookies("login completed without any cookies")
	}

	normalized := cookies.NormalizeAll(jar.Unique())

	player, meResp, err := r.whoami(ctx, cookieHeader(normalized))
	if err != nil {
		return nil, domain.ErrUpstreamUnavailable("session validation request failed").WithCause(err)
	}
	if !meResp.OK() || player == nil {
		return nil, domain.ErrSessionValidation("upstream did not recognize the new session").
			WithUpstreamStatus(meResp.StatusCode)
	}

	r.logger.Info("login succeeded", slog.Int("account_id", player.AccountID()))

	return &LoginResult{
		DisplayName: player.DisplayName(),
		AccountID:   player.AccountID(),
		Message:     fmt.Sprintf("Signed in as %s", player.DisplayName()),
		Cookies:     normalized,
		Chain:       chain,
	}, nil
}

// whoami asks the profile endpoint who cookieHeader belongs to. The player is
// nil when the response is not OK or carries no user record; err is only set
// for transport failures.
func (r *Relay) whoami(ctx context.Context, cookieHeader string) (*upstream.MePlayer, *upstream.Response, error) {
	resp, err := r.upstream.Get(ctx, r.upstream.MeURL(), cookieHeader)
	if err != nil {
		return nil, nil, err
	}
	if !resp.OK() {
		return nil, resp, nil
	}
	me, err := upstream.DecodeMe(resp.Body)
	if err != nil {
		r.logger.Debug("profile payload did not parse", slog.String("error", err.Error()))
		return nil, resp, nil
	}
	return me.Player, resp, nil
}

// detail returns a diagnostic excerpt of resp when diagnostics are enabled.
// Credentials are scrubbed in case the upstream echoes the submitted form.
func (r *Relay) detail(resp *upstream.Response, creds Credentials) string {
	if !r.diagnostics {
		return ""
	}
	body := redact(string(resp.Body), creds.Password, creds.Login)
	return fmt.Sprintf("status %d: %s", resp.StatusCode, upstream.Excerpt([]byte(body), excerptLen))
}

// redact replaces every raw or form-encoded occurrence of secrets in body.
// It must run on the whole body so a truncated excerpt cannot keep a prefix.
func redact(body string, secrets ...string) string {
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		for _, form := range []string{secret, url.QueryEscape(secret), url.PathEscape(secret)} {
			body = strings.ReplaceAll(body, form, "[redacted]")
		}
	}
	return body
}

func cookieHeader(cs []*http.Cookie) string {
	jar := cookies.NewJar()
	jar.Add(cs...)
	return jar.Header()
}
