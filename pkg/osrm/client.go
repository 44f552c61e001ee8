// Package osrm talks to an OSRM-compatible walking router and classifies
// its responses for wheelchair accessibility.
package osrm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// DefaultBaseURL is the public OSRM demo instance.
const DefaultBaseURL = "https://router.project-osrm.org"

// ErrUnavailable covers every upstream failure: network errors, non-2xx
// statuses and non-"Ok" response codes. Callers treat it as a signal to
// fall back, never as a fatal error.
var ErrUnavailable = errors.New("routing service unavailable")

// Client issues walking-profile route requests.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// NewClient creates a client for the given OSRM base URL. An empty base
// URL selects the public instance.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: timeout},
	}
}

// Response is the subset of the OSRM route response the service consumes.
type Response struct {
	Code    string  `json:"code"`
	Message string  `json:"message"`
	Routes  []Route `json:"routes"`
}

// Route is a single routed alternative.
type Route struct {
	Distance float64           `json:"distance"` // meters
	Duration float64           `json:"duration"` // seconds
	Geometry *geojson.Geometry `json:"geometry"`
	Legs     []Leg             `json:"legs"`
}

// Leg is the stretch between two waypoints.
type Leg struct {
	Distance float64 `json:"distance"`
	Duration float64 `json:"duration"`
	Steps    []Step  `json:"steps"`
}

// Step is one maneuver-delimited stretch of a leg.
type Step struct {
	Name     string            `json:"name"`
	Distance float64           `json:"distance"`
	Duration float64           `json:"duration"`
	Geometry *geojson.Geometry `json:"geometry"`
	Maneuver Maneuver          `json:"maneuver"`
	Tags     StepTags          `json:"tags"`
}

// Maneuver is the turn instruction metadata for a step.
type Maneuver struct {
	Type     string `json:"type"`
	Modifier string `json:"modifier"`
	Exit     int    `json:"exit"`
}

// StepTags carries the road tags used for barrier classification.
type StepTags struct {
	Highway string `json:"highway"`
	Access  string `json:"access"`
	Foot    string `json:"foot"`
}

// Line returns the route geometry as a LineString, or nil when the
// upstream omitted it.
func (r *Route) Line() orb.LineString {
	if r.Geometry == nil {
		return nil
	}
	ls, ok := r.Geometry.Geometry().(orb.LineString)
	if !ok {
		return nil
	}
	return ls
}

// Line returns the step geometry as a LineString, or nil.
func (s *Step) Line() orb.LineString {
	if s.Geometry == nil {
		return nil
	}
	ls, ok := s.Geometry.Geometry().(orb.LineString)
	if !ok {
		return nil
	}
	return ls
}

// Steps flattens the first route's first-leg steps. Missing data yields an
// empty slice, not an error.
func (r *Response) Steps() []Step {
	if len(r.Routes) == 0 || len(r.Routes[0].Legs) == 0 {
		return nil
	}
	return r.Routes[0].Legs[0].Steps
}

// FetchOptions tunes a route request.
type FetchOptions struct {
	// Steps requests per-maneuver step data (needed for navigation and
	// barrier classification).
	Steps bool
}

// FetchRoute requests a walking route between two (lon, lat) points.
// Any failure, including an upstream code other than "Ok", wraps
// ErrUnavailable.
func (c *Client) FetchRoute(ctx context.Context, start, end orb.Point, opts FetchOptions) (*Response, error) {
	url := fmt.Sprintf("%s/route/v1/walking/%f,%f;%f,%f?overview=full&geometries=geojson",
		c.baseURL, start.Lon(), start.Lat(), end.Lon(), end.Lat())
	if opts.Steps {
		url += "&steps=true"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	return parse(resp.Body)
}

// parse decodes and validates an OSRM body. It is the single place the
// upstream shape is trusted; everything downstream works on typed data.
func parse(body io.Reader) (*Response, error) {
	var out Response
	if err := json.NewDecoder(body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrUnavailable, err)
	}
	if out.Code != "Ok" {
		return nil, fmt.Errorf("%w: code %q", ErrUnavailable, out.Code)
	}
	if len(out.Routes) == 0 {
		return nil, fmt.Errorf("%w: no routes", ErrUnavailable)
	}
	return &out, nil
}
