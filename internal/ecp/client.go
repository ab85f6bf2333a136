// Package ecp implements the device's external control protocol: stateless
// POST commands for deep-link launch, deep-link input, keypresses and
// character entry. A nil error means protocol-level acceptance only; whether
// the application actually reached the requested state is observed separately
// through the beacon stream.
package ecp

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	launchTimeout   = 10 * time.Second
	keypressTimeout = 5 * time.Second

	// TypeDelay is the default delay between characters when typing full
	// strings. On-screen keyboards drop characters when fed faster than this.
	TypeDelay = 100 * time.Millisecond
)

// ContentParams carries the deep-link query parameters.
type ContentParams struct {
	ContentID string
	MediaType string
}

func (p ContentParams) query() string {
	q := url.Values{}
	if p.ContentID != "" {
		q.Set("contentId", p.ContentID)
	}
	if p.MediaType != "" {
		q.Set("mediaType", p.MediaType)
	}
	return q.Encode()
}

// Client issues control commands to a single device. It never retries and
// never inspects beacons.
type Client struct {
	base   string
	launch *http.Client // launch/input round trips
	key    *http.Client // keypress/character round trips
	log    zerolog.Logger
}

func New(base string, logger zerolog.Logger) *Client {
	return &Client{
		base:   strings.TrimRight(base, "/"),
		launch: &http.Client{Timeout: launchTimeout},
		key:    &http.Client{Timeout: keypressTimeout},
		log:    logger,
	}
}

// Launch sends a deep-link launch for the given app with content parameters.
func (c *Client) Launch(ctx context.Context, appID string, params ContentParams) error {
	path := "/launch/" + url.PathEscape(appID)
	if q := params.query(); q != "" {
		path += "?" + q
	}
	return c.post(ctx, c.launch, "launch", path)
}

// LaunchApp sends a plain launch with no content parameters, used to warm the
// app up before an input test and by automation scripts.
func (c *Client) LaunchApp(ctx context.Context, appID string) error {
	return c.post(ctx, c.launch, "launch", "/launch/"+url.PathEscape(appID))
}

// Input sends a deep-link input command to the already-running app.
func (c *Client) Input(ctx context.Context, params ContentParams) error {
	path := "/input"
	if q := params.query(); q != "" {
		path += "?" + q
	}
	return c.post(ctx, c.launch, "input", path)
}

// Keypress sends a single named key.
func (c *Client) Keypress(ctx context.Context, key string) error {
	return c.post(ctx, c.key, "keypress", "/keypress/"+url.PathEscape(key))
}

// Literal sends one character as a Lit_ keypress. Every byte outside the
// unreserved set is percent-encoded, so reserved path characters like '@'
// travel as "%40" on the wire.
func (c *Client) Literal(ctx context.Context, r rune) error {
	return c.post(ctx, c.key, "literal", "/keypress/Lit_"+escapeChar(r))
}

// TypeText emulates on-screen keyboard entry by sending one Literal per rune
// with a fixed inter-character delay. A non-positive delay falls back to
// TypeDelay. Entry stops at the first failed character.
func (c *Client) TypeText(ctx context.Context, text string, delay time.Duration) error {
	if delay <= 0 {
		delay = TypeDelay
	}
	for i, r := range text {
		if i > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.Literal(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

const upperhex = "0123456789ABCDEF"

// escapeChar percent-encodes every byte of the rune's UTF-8 form except the
// RFC 3986 unreserved set. Stricter than url.PathEscape, which passes
// reserved sub-delimiters like '@' through unescaped.
func escapeChar(r rune) string {
	var b strings.Builder
	for _, c := range []byte(string(r)) {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9',
			c == '-', c == '_', c == '.', c == '~':
			b.WriteByte(c)
		default:
			b.WriteByte('%')
			b.WriteByte(upperhex[c>>4])
			b.WriteByte(upperhex[c&0xf])
		}
	}
	return b.String()
}

func (c *Client) post(ctx context.Context, hc *http.Client, op, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, nil)
	if err != nil {
		observeCommand(op, outcomeError)
		return wrapError(op, 0, "", err)
	}
	res, err := hc.Do(req)
	if err != nil {
		observeCommand(op, outcomeError)
		return wrapError(op, 0, "", err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 256))
		observeCommand(op, outcomeRejected)
		return wrapError(op, res.StatusCode, strings.TrimSpace(string(body)), nil)
	}
	observeCommand(op, outcomeAccepted)
	c.log.Debug().Str("op", op).Str("path", path).Msg("command accepted")
	return nil
}
