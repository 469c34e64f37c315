// Package understat provides the scrape client for Understat league pages
// and the extractor that recovers the JSON payloads they embed in inline
// script tags.
//
// Understat has no public API: players and matches data live in JavaScript
// variable assignments inside the league page HTML. The client fetches the
// page, locates the script block carrying a known marker, and hands the
// script text to ExtractVar.
package understat

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

// ErrPayloadNotLocated reports that a page known to exist carried no script
// with the expected marker, or the marker script had no extractable
// variable. This is deliberately distinct from an empty-but-present data
// array, which is a legitimate result.
var ErrPayloadNotLocated = errors.New("understat: payload not located on page")

// Marker substrings identifying the script blocks on a league page.
const (
	PlayersMarker = "playersData"
	MatchesMarker = "matchesData"
)

// Client scrapes Understat league pages.
type Client struct {
	rc      *resty.Client
	baseURL string
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewClient creates an Understat scrape client. Pass an existing
// *resty.Client to reuse its connection pool; nil creates one with a 60s
// timeout. userAgent is sent on every request — Understat serves reduced
// pages to clients without a browser identity. pacing is the minimum
// interval between requests; the first request on a fresh client also waits
// one full interval, matching the courtesy delay the site expects before a
// scrape session.
func NewClient(rc *resty.Client, baseURL, userAgent string, pacing time.Duration, logger *slog.Logger) *Client {
	if rc == nil {
		rc = resty.New().SetTimeout(60 * time.Second)
	}
	if userAgent != "" {
		rc.SetHeader("User-Agent", userAgent)
	}
	if logger == nil {
		logger = slog.Default()
	}
	limit := rate.Inf
	if pacing > 0 {
		limit = rate.Every(pacing)
	}
	limiter := rate.NewLimiter(limit, 1)
	// Spend the initial token so the first Wait blocks for a full interval.
	limiter.Allow()
	return &Client{
		rc:      rc,
		baseURL: baseURL,
		limiter: limiter,
		logger:  logger,
	}
}

// LeaguePage fetches and parses /league/{league}/{season}.
func (c *Client) LeaguePage(ctx context.Context, league string, season int) (*goquery.Document, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	u := fmt.Sprintf("%s/league/%s/%d", c.baseURL, league, season)

	resp, err := c.rc.R().SetContext(ctx).Get(u)
	if err != nil {
		return nil, fmt.Errorf("http request %s: %w", u, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("understat %s/%d returned %d", league, season, resp.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, fmt.Errorf("parse league page HTML: %w", err)
	}

	c.logger.Debug("fetched understat league page", "league", league, "season", season, "bytes", len(resp.Body()))
	return doc, nil
}

// FindScript returns the text of the first inline script block containing
// the marker substring, or ErrPayloadNotLocated when no block matches.
func FindScript(doc *goquery.Document, marker string) (string, error) {
	var script string
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		if strings.Contains(text, marker) {
			script = text
			return false
		}
		return true
	})
	if script == "" {
		return "", fmt.Errorf("%w: no script with marker %q", ErrPayloadNotLocated, marker)
	}
	return script, nil
}

// LeagueVar fetches a league page and extracts the embedded variable from
// the script block identified by marker. A page that exists but yields no
// payload is a hard ErrPayloadNotLocated failure — silently returning zero
// rows would be indistinguishable from a season with no data.
func (c *Client) LeagueVar(ctx context.Context, league string, season int, marker, name string) (interface{}, error) {
	doc, err := c.LeaguePage(ctx, league, season)
	if err != nil {
		return nil, err
	}
	script, err := FindScript(doc, marker)
	if err != nil {
		return nil, err
	}
	v, err := ExtractVar(script, name)
	if errors.Is(err, ErrVarNotFound) {
		return nil, fmt.Errorf("%w: %s in %s/%d", ErrPayloadNotLocated, name, league, season)
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}
