package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Geocoder resolves a free-text address against a Nominatim-compatible
// search endpoint. Lookups fail soft: any error yields the configured
// fallback point instead of blocking a pickup, trading precision for
// availability.
type Geocoder struct {
	hc       *http.Client
	baseURL  string
	fallback Point
}

func NewGeocoder(baseURL string, fallback Point) *Geocoder {
	return &Geocoder{
		hc:       &http.Client{Timeout: 3 * time.Second},
		baseURL:  baseURL,
		fallback: fallback,
	}
}

// Resolve geocodes address. It never returns an error; failures are logged
// and answered with the fallback point.
func (g *Geocoder) Resolve(ctx context.Context, address string) Point {
	p, err := g.lookup(ctx, address)
	if err != nil {
		log.Printf("geocode: lookup %q failed, using fallback: %v", address, err)
		return g.fallback
	}
	return p
}

func (g *Geocoder) lookup(ctx context.Context, address string) (Point, error) {
	u, err := url.Parse(g.baseURL)
	if err != nil {
		return Point{}, err
	}
	q := u.Query()
	q.Set("format", "json")
	q.Set("q", address)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Point{}, err
	}
	// Nominatim's usage policy requires an identifying user agent.
	req.Header.Set("User-Agent", "ShareBite-FoodBank/1.0 (contact@sharebite.ca)")

	res, err := g.hc.Do(req)
	if err != nil {
		return Point{}, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return Point{}, err
	}
	if res.StatusCode >= 400 {
		return Point{}, fmt.Errorf("geocode status=%d", res.StatusCode)
	}
	// Nominatim answers rate limits with an HTML page, not JSON.
	if strings.HasPrefix(strings.TrimSpace(string(body)), "<") {
		return Point{}, errors.New("non-JSON response, possible rate limit")
	}

	var results []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.Unmarshal(body, &results); err != nil {
		return Point{}, err
	}
	if len(results) == 0 {
		return Point{}, errors.New("unable to geocode address")
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return Point{}, err
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return Point{}, err
	}
	return Point{Lat: lat, Lon: lon}, nil
}
