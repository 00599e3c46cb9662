// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// DefaultBaseURL is the Google Places web service root.
const DefaultBaseURL = "https://maps.googleapis.com/maps/api/place"

var (
	ErrUpstream  = errors.New("places upstream error")
	ErrNoResults = errors.New("no restaurants found nearby")
	ErrNoAPIKey  = errors.New("places api key not configured")
)

// Restaurant is a validated nearby-search result.
type Restaurant struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Rating         float64 `json:"rating"`
	Address        string  `json:"address"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	PriceLevel     int     `json:"price_level"`
	PhotoReference string  `json:"photo_reference,omitempty"`
}

// NearbyQuery describes one nearby search.
type NearbyQuery struct {
	Lat          float64
	Lng          float64
	RadiusMeters int
	MinRating    float64
}

// Client talks to the places API.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	logger     *slog.Logger
}

func NewClient(httpClient *http.Client, apiKey, baseURL string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		httpClient: httpClient,
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
	}
}

// Enabled reports whether the client has an API key.
func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != ""
}

// nearbyResponse mirrors the nearbysearch JSON shape.
type nearbyResponse struct {
	Results      []placeResult `json:"results"`
	Status       string        `json:"status"`
	ErrorMessage string        `json:"error_message"`
}

type placeResult struct {
	PlaceID  string `json:"place_id"`
	Name     string `json:"name"`
	Geometry *struct {
		Location *struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
	Rating     *float64 `json:"rating"`
	PriceLevel *int     `json:"price_level"`
	Vicinity   string   `json:"vicinity"`
	Photos     []struct {
		PhotoReference string `json:"photo_reference"`
	} `json:"photos"`
}

// Nearby returns restaurants around the query point rated at least
// q.MinRating, in API order.
func (c *Client) Nearby(ctx context.Context, q NearbyQuery) ([]Restaurant, error) {
	if !c.Enabled() {
		return nil, ErrNoAPIKey
	}

	params := url.Values{}
	params.Set("location", formatCoord(q.Lat)+","+formatCoord(q.Lng))
	params.Set("radius", strconv.Itoa(q.RadiusMeters))
	params.Set("type", "restaurant")
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/nearbysearch/json?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", ErrUpstream, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var decoded nearbyResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", ErrUpstream, err)
	}
	if decoded.Status != "OK" && decoded.Status != "ZERO_RESULTS" {
		msg := decoded.ErrorMessage
		if msg == "" {
			msg = "unknown error"
		}
		return nil, fmt.Errorf("%w: %s: %s", ErrUpstream, decoded.Status, msg)
	}

	out := make([]Restaurant, 0, len(decoded.Results))
	dropped := 0
	for _, raw := range decoded.Results {
		r, ok := raw.validate()
		if !ok {
			dropped++
			continue
		}
		if raw.Rating == nil || r.Rating < q.MinRating {
			continue
		}
		out = append(out, r)
	}
	if dropped > 0 {
		c.logger.WarnContext(ctx, "dropped malformed place results", "count", dropped)
	}

	if len(out) == 0 {
		return nil, ErrNoResults
	}
	return out, nil
}

// validate converts a raw result, rejecting entries that cannot be placed on
// a map or shown by name.
func (p placeResult) validate() (Restaurant, bool) {
	if strings.TrimSpace(p.PlaceID) == "" || strings.TrimSpace(p.Name) == "" {
		return Restaurant{}, false
	}
	if p.Geometry == nil || p.Geometry.Location == nil {
		return Restaurant{}, false
	}
	lat, lng := p.Geometry.Location.Lat, p.Geometry.Location.Lng
	if !ValidCoordinate(lat, lng) {
		return Restaurant{}, false
	}

	r := Restaurant{
		ID:        p.PlaceID,
		Name:      strings.TrimSpace(p.Name),
		Address:   p.Vicinity,
		Latitude:  lat,
		Longitude: lng,
	}
	if p.Rating != nil {
		r.Rating = *p.Rating
	}
	if p.PriceLevel != nil {
		r.PriceLevel = *p.PriceLevel
	}
	if len(p.Photos) > 0 {
		r.PhotoReference = p.Photos[0].PhotoReference
	}
	return r, true
}

// PhotoURL returns the photo endpoint URL for a reference, or "" when either
// the reference or the API key is missing.
func (c *Client) PhotoURL(photoReference string, maxWidth int) string {
	if photoReference == "" || !c.Enabled() {
		return ""
	}
	if maxWidth <= 0 {
		maxWidth = 400
	}
	params := url.Values{}
	params.Set("maxwidth", strconv.Itoa(maxWidth))
	params.Set("photoreference", photoReference)
	params.Set("key", c.apiKey)
	return c.baseURL + "/photo?" + params.Encode()
}

// ValidCoordinate reports whether lat/lng is a finite point on the globe.
func ValidCoordinate(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
