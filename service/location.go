package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	ipLocationEndpoint    = "https://ipapi.co/json/"
	ipWhoIsEndpoint       = "https://ipwho.is/"
	ipInfoEndpoint        = "https://ipinfo.io/json"
	locationErrorSnippetN = 120
)

// Position is a resolved driver position.
type Position struct {
	Latitude  float64
	Longitude float64
	City      string
	Region    string
	Country   string
	Source    string
}

// ipProvider is an IP geolocation endpoint. All supported providers
// answer with a flat JSON object decoded into ipLookup.
type ipProvider struct {
	name     string
	endpoint string
}

var defaultIPProviders = []ipProvider{
	{name: "ipapi", endpoint: ipLocationEndpoint},
	{name: "ipwhois", endpoint: ipWhoIsEndpoint},
	{name: "ipinfo", endpoint: ipInfoEndpoint},
}

// Locator resolves where the driver's bus is. A fixed position from
// configuration (a GPS fix fed in by the vehicle unit) wins; otherwise
// IP geolocation providers are tried in order.
type Locator struct {
	httpClient *http.Client
	fixed      *Position
	providers  []ipProvider
	logger     *slog.Logger
}

// NewLocator creates a Locator. fixed may be nil.
func NewLocator(httpClient *http.Client, fixed *Position, logger *slog.Logger) *Locator {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 8 * time.Second}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Locator{
		httpClient: httpClient,
		fixed:      fixed,
		providers:  defaultIPProviders,
		logger:     logger,
	}
}

// Locate resolves the current position.
func (l *Locator) Locate(ctx context.Context) (Position, error) {
	if err := ctx.Err(); err != nil {
		return Position{}, err
	}
	if l.fixed != nil {
		pos := *l.fixed
		if strings.TrimSpace(pos.Source) == "" {
			pos.Source = "configured"
		}
		return pos, nil
	}

	pos, err := l.locateWithProviders(ctx)
	if err != nil {
		return Position{}, err
	}
	l.logger.Info("position resolved by ip geolocation", "source", pos.Source, "city", pos.City)
	return pos, nil
}

// ReportDriverLocation resolves the position and posts it as the
// driver's live location.
func (c *Client) ReportDriverLocation(ctx context.Context, locator *Locator) (Position, error) {
	if locator == nil {
		return Position{}, errors.New("no locator configured")
	}
	pos, err := locator.Locate(ctx)
	if err != nil {
		return Position{}, fmt.Errorf("resolve position: %w", err)
	}
	if err := c.UpdateDriverLocation(ctx, pos.Latitude, pos.Longitude); err != nil {
		return Position{}, err
	}
	return pos, nil
}

func (l *Locator) locateWithProviders(ctx context.Context) (Position, error) {
	if len(l.providers) == 0 {
		return Position{}, errors.New("no location providers configured")
	}

	failures := make([]string, 0, len(l.providers))
	for _, provider := range l.providers {
		pos, err := l.lookup(ctx, provider)
		if err == nil {
			return pos, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Position{}, ctxErr
		}
		l.logger.Debug("location provider failed", "provider", provider.name, "error", err)
		failures = append(failures, provider.name+": "+err.Error())
	}
	return Position{}, fmt.Errorf("all location providers failed (%s)", strings.Join(failures, " | "))
}

func (l *Locator) lookup(ctx context.Context, provider ipProvider) (Position, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, provider.endpoint, nil)
	if err != nil {
		return Position{}, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", defaultUserAgent)

	res, err := l.httpClient.Do(req)
	if err != nil {
		return Position{}, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, 64<<10))
	if err != nil {
		return Position{}, fmt.Errorf("read location response: %w", err)
	}
	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		if text := plainSnippet(body); text != "" {
			return Position{}, fmt.Errorf("%s: %s", res.Status, text)
		}
		return Position{}, errors.New(res.Status)
	}

	var payload ipLookup
	if err := json.Unmarshal(body, &payload); err != nil {
		return Position{}, fmt.Errorf("decode location response: %w", err)
	}
	pos, err := payload.position()
	if err != nil {
		return Position{}, err
	}
	pos.Source = provider.name
	return pos, nil
}

// ipLookup is the union of the provider response fields. ipapi and
// ipwhois send latitude/longitude; ipinfo sends loc as "lat,lng".
// Failures come as success:false, error:true with a reason, or an
// error object.
type ipLookup struct {
	Latitude    *float64        `json:"latitude"`
	Longitude   *float64        `json:"longitude"`
	Loc         string          `json:"loc"`
	City        string          `json:"city"`
	Region      string          `json:"region"`
	Country     string          `json:"country"`
	CountryName string          `json:"country_name"`
	Success     *bool           `json:"success"`
	Message     string          `json:"message"`
	Reason      string          `json:"reason"`
	Error       json.RawMessage `json:"error"`
	Bogon       bool            `json:"bogon"`
}

func (p ipLookup) position() (Position, error) {
	if err := p.failure(); err != nil {
		return Position{}, err
	}

	pos := Position{City: p.City, Region: p.Region, Country: p.Country}
	if p.CountryName != "" {
		pos.Country = p.CountryName
	}
	switch {
	case p.Latitude != nil && p.Longitude != nil:
		pos.Latitude, pos.Longitude = *p.Latitude, *p.Longitude
	case p.Loc != "":
		lat, lng, err := ParseCoordinates(p.Loc)
		if err != nil {
			return Position{}, err
		}
		pos.Latitude, pos.Longitude = lat, lng
	}
	if pos.Latitude == 0 && pos.Longitude == 0 {
		return Position{}, errors.New("provider returned empty coordinates")
	}
	return pos, nil
}

func (p ipLookup) failure() error {
	if p.Bogon {
		return errors.New("bogon IP")
	}
	if p.Success != nil && !*p.Success {
		return errors.New(firstNonEmpty(p.Message, "provider returned unsuccessful response"))
	}
	if len(p.Error) == 0 || string(p.Error) == "null" || string(p.Error) == "false" {
		return nil
	}
	var detail struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(p.Error, &detail)
	return errors.New(firstNonEmpty(detail.Message, p.Reason, "unknown error"))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// ParseCoordinates parses a "lat,lng" pair.
func ParseCoordinates(raw string) (float64, float64, error) {
	parts := strings.Split(strings.TrimSpace(raw), ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid coordinates %q", raw)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("parse latitude: %w", err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("parse longitude: %w", err)
	}
	return lat, lng, nil
}

// plainSnippet returns a short single-line version of a text error body.
// HTML block pages yield nothing.
func plainSnippet(body []byte) string {
	text := strings.TrimSpace(string(body))
	lower := strings.ToLower(text)
	if strings.Contains(lower, "<html") || strings.Contains(lower, "<!doctype") {
		return ""
	}
	text = strings.Join(strings.Fields(text), " ")
	if len(text) > locationErrorSnippetN {
		text = text[:locationErrorSnippetN]
	}
	return text
}
