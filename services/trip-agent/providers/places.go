package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultPlaceLimit = 10

// Place is the normalized point-of-interest shape handed back to tools.
type Place struct {
	Name     string `json:"name"`
	Kind     string `json:"kind,omitempty"`
	Address  string `json:"address,omitempty"`
	Distance int    `json:"distance_m,omitempty"`
}

// OpenTripMap queries the OpenTripMap places API: a geoname lookup to resolve
// the city, then a radius search filtered by kinds.
type OpenTripMap struct {
	BaseURL string
	APIKey  string
	RadiusM int
	client  *http.Client
}

func NewOpenTripMap(baseURL, apiKey string, timeout time.Duration) *OpenTripMap {
	return &OpenTripMap{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		RadiusM: 5000,
		client:  &http.Client{Timeout: timeout},
	}
}

func (o *OpenTripMap) Name() string { return "opentripmap" }

// Category names used by the place-search tools map to OpenTripMap kinds.
var openTripMapKinds = map[string]string{
	"attractions": "interesting_places",
	"restaurants": "foods",
	"activities":  "sport,amusements",
	"transport":   "transport",
}

type otmGeonameResponse struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

type otmRadiusResponse struct {
	Features []struct {
		Properties struct {
			Name  string  `json:"name"`
			Kinds string  `json:"kinds"`
			Dist  float64 `json:"dist"`
		} `json:"properties"`
	} `json:"features"`
}

func (o *OpenTripMap) Fetch(ctx context.Context, q Query) (any, error) {
	if o.APIKey == "" {
		return nil, fmt.Errorf("opentripmap api key not configured")
	}
	city := strings.TrimSpace(q.City)
	if city == "" {
		return nil, fmt.Errorf("city is empty")
	}
	kinds, ok := openTripMapKinds[q.Category]
	if !ok {
		kinds = "interesting_places"
	}

	geoURL := fmt.Sprintf("%s/0.1/en/places/geoname?name=%s&apikey=%s",
		o.BaseURL, url.QueryEscape(city), url.QueryEscape(o.APIKey))
	var geo otmGeonameResponse
	if err := getJSON(ctx, o.client, geoURL, &geo); err != nil {
		return nil, fmt.Errorf("geoname %s: %w", city, err)
	}
	if geo.Lat == 0 && geo.Lon == 0 {
		return nil, fmt.Errorf("geoname %s: no coordinates", city)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = defaultPlaceLimit
	}
	radiusURL := fmt.Sprintf("%s/0.1/en/places/radius?radius=%d&lon=%f&lat=%f&kinds=%s&rate=2&limit=%d&apikey=%s",
		o.BaseURL, o.RadiusM, geo.Lon, geo.Lat, url.QueryEscape(kinds), limit, url.QueryEscape(o.APIKey))
	var radius otmRadiusResponse
	if err := getJSON(ctx, o.client, radiusURL, &radius); err != nil {
		return nil, fmt.Errorf("radius %s: %w", city, err)
	}

	places := make([]Place, 0, len(radius.Features))
	for _, feature := range radius.Features {
		props := feature.Properties
		if strings.TrimSpace(props.Name) == "" {
			continue
		}
		places = append(places, Place{
			Name:     props.Name,
			Kind:     props.Kinds,
			Distance: int(props.Dist),
		})
	}
	if len(places) == 0 {
		return nil, fmt.Errorf("radius %s: no named places", city)
	}
	return places, nil
}

// Nominatim is the fallback place backend using OpenStreetMap's free-text
// search. It returns coarser results than a kinds-filtered radius query.
type Nominatim struct {
	BaseURL   string
	UserAgent string
	client    *http.Client
}

func NewNominatim(baseURL string, timeout time.Duration) *Nominatim {
	return &Nominatim{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		UserAgent: "trip-agent/1.0",
		client:    &http.Client{Timeout: timeout},
	}
}

func (n *Nominatim) Name() string { return "nominatim" }

type nominatimEntry struct {
	DisplayName string `json:"display_name"`
	Type        string `json:"type"`
	Class       string `json:"class"`
}

var nominatimTerms = map[string]string{
	"attractions": "tourist attraction",
	"restaurants": "restaurant",
	"activities":  "things to do",
	"transport":   "train station",
}

func (n *Nominatim) Fetch(ctx context.Context, q Query) (any, error) {
	city := strings.TrimSpace(q.City)
	if city == "" {
		return nil, fmt.Errorf("city is empty")
	}
	term, ok := nominatimTerms[q.Category]
	if !ok {
		term = "tourist attraction"
	}
	limit := q.Limit
	if limit <= 0 {
		limit = defaultPlaceLimit
	}

	reqURL := fmt.Sprintf("%s/search?q=%s&format=json&limit=%d",
		n.BaseURL, url.QueryEscape(term+" in "+city), limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	// Nominatim's usage policy requires an identifying User-Agent.
	req.Header.Set("User-Agent", n.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	var entries []nominatimEntry
	if err := decodeJSON(resp, &entries); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("search %s in %s: no results", term, city)
	}

	places := make([]Place, 0, len(entries))
	for _, entry := range entries {
		name := entry.DisplayName
		if idx := strings.Index(name, ","); idx > 0 {
			name = name[:idx]
		}
		places = append(places, Place{
			Name:    name,
			Kind:    entry.Class + ":" + entry.Type,
			Address: entry.DisplayName,
		})
	}
	return places, nil
}
