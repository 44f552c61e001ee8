package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/paulmach/orb"

	"accessnav/pkg/ai"
	"accessnav/pkg/dataset"
	"accessnav/pkg/nav"
	"accessnav/pkg/osrm"
	"accessnav/pkg/roadgraph"
	"accessnav/pkg/route"
)

type downRouter struct{}

func (downRouter) FetchRoute(_ context.Context, _, _ orb.Point, _ osrm.FetchOptions) (*osrm.Response, error) {
	return nil, osrm.ErrUnavailable
}

type stubAnalyzer struct{}

func (stubAnalyzer) AnalyzeReport(_ context.Context, _ string) ai.Analysis {
	return ai.Analysis{Category: "construction", Severity: "high", Confidence: 0.8}
}

// newTestServer wires the full stack with the external router down, so
// every request exercises the fallback paths deterministically.
func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := dataset.Open("")
	if err != nil {
		t.Fatalf("dataset.Open: %v", err)
	}
	composer := route.NewComposer(downRouter{}, roadgraph.Hualien(), store, quiet)
	sessions := nav.NewStore(nav.DefaultMaxAge, time.Hour)
	t.Cleanup(sessions.Close)
	navman := nav.NewManager(sessions, downRouter{}, composer, quiet)

	return NewServer(composer, navman, store, stubAnalyzer{}, "*", quiet)
}

func doJSON(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t)
	w := doJSON(t, s, http.MethodGet, "/api/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"ok":true`) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestHandleRouteFallback(t *testing.T) {
	s := newTestServer(t)
	body := `{"start":[121.606,23.975],"end":[121.611,23.979],"params":{"maximum_incline":0.08,"minimum_width":0.9}}`
	w := doJSON(t, s, http.MethodPost, "/api/route", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Normal                   json.RawMessage `json:"normal"`
		Accessible               json.RawMessage `json:"accessible"`
		HasAccessibleAlternative bool            `json:"has_accessible_alternative"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Normal) == 0 || string(resp.Normal) == "null" {
		t.Error("normal route missing")
	}
	if string(resp.Accessible) != "null" {
		t.Errorf("accessible = %s, want null without a ramp near the destination", resp.Accessible)
	}
	if resp.HasAccessibleAlternative {
		t.Error("has_accessible_alternative = true")
	}
	if !strings.Contains(string(resp.Normal), "graph-fallback") {
		t.Errorf("normal route source missing: %s", resp.Normal)
	}
	if !strings.Contains(string(resp.Normal), "FeatureCollection") {
		t.Error("normal route is not GeoJSON")
	}
}

func TestHandleRouteBadCoords(t *testing.T) {
	s := newTestServer(t)
	tests := []struct {
		name string
		body string
	}{
		{"lat out of range", `{"start":[121.606,95.0],"end":[121.611,23.979]}`},
		{"short pair", `{"start":[121.606],"end":[121.611,23.979]}`},
		{"missing start", `{"end":[121.611,23.979]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, s, http.MethodPost, "/api/route", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
			if !strings.Contains(w.Body.String(), "bad_coords") {
				t.Errorf("body = %s", w.Body.String())
			}
		})
	}
}

func TestHandleRouteAccessibleMode(t *testing.T) {
	s := newTestServer(t)
	body := `{"start":[121.606,23.975],"end":[121.611,23.979],"mode":"accessible"}`
	w := doJSON(t, s, http.MethodPost, "/api/route", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Accessible               json.RawMessage `json:"accessible"`
		HasAccessibleAlternative bool            `json:"has_accessible_alternative"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if string(resp.Accessible) == "null" || !resp.HasAccessibleAlternative {
		t.Error("accessible variant missing in accessible mode")
	}
}

func TestHandleFacilities(t *testing.T) {
	s := newTestServer(t)
	w := doJSON(t, s, http.MethodGet, "/api/accessible-facilities", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp dataset.FacilitySet
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Ramps) == 0 || len(resp.Elevators) == 0 || len(resp.Toilets) == 0 {
		t.Errorf("facility set incomplete: %+v", resp)
	}
}

func TestNavigationLifecycle(t *testing.T) {
	s := newTestServer(t)

	// Start.
	w := doJSON(t, s, http.MethodPost, "/api/navigation/start",
		`{"start":[121.606,23.975],"end":[121.611,23.979],"route_type":"accessible"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("start status = %d, body: %s", w.Code, w.Body.String())
	}
	var started navStartResponse
	if err := json.Unmarshal(w.Body.Bytes(), &started); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if started.NavigationID == "" || started.TotalSteps != 3 {
		t.Fatalf("start response = %+v", started)
	}

	// Position update near the destination on the final step.
	posBody := `{"navigation_id":"` + started.NavigationID + `","current_position":[121.611,23.979],"current_step":2}`
	w = doJSON(t, s, http.MethodPost, "/api/navigation/position", posBody)
	if w.Code != http.StatusOK {
		t.Fatalf("position status = %d", w.Code)
	}
	var update nav.Update
	json.Unmarshal(w.Body.Bytes(), &update)
	if !update.StepCompleted || update.Progress != 100 {
		t.Errorf("update = %+v", update)
	}

	// Stop, then the session is gone.
	w = doJSON(t, s, http.MethodPost, "/api/navigation/stop",
		`{"navigation_id":"`+started.NavigationID+`"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("stop status = %d", w.Code)
	}
	w = doJSON(t, s, http.MethodPost, "/api/navigation/position", posBody)
	if w.Code != http.StatusNotFound {
		t.Errorf("position after stop status = %d, want 404", w.Code)
	}
	if !strings.Contains(w.Body.String(), "session_not_found") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestNavigationPositionNegativeStep(t *testing.T) {
	s := newTestServer(t)
	w := doJSON(t, s, http.MethodPost, "/api/navigation/start",
		`{"start":[121.606,23.975],"end":[121.611,23.979]}`)
	var started navStartResponse
	if err := json.Unmarshal(w.Body.Bytes(), &started); err != nil {
		t.Fatalf("decode: %v", err)
	}

	w = doJSON(t, s, http.MethodPost, "/api/navigation/position",
		`{"navigation_id":"`+started.NavigationID+`","current_position":[121.606,23.975],"current_step":-3}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "invalid_request") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestNavigationStartMissingParams(t *testing.T) {
	s := newTestServer(t)
	w := doJSON(t, s, http.MethodPost, "/api/navigation/start", `{"start":[121.606,23.975]}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "missing_params") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestNavigationRecalculate(t *testing.T) {
	s := newTestServer(t)
	w := doJSON(t, s, http.MethodPost, "/api/navigation/recalculate",
		`{"current_position":[121.608,23.977],"end":[121.611,23.979],"route_type":"normal"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp navRecalculateResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Recalculated || resp.TotalSteps == 0 || resp.RouteGeometry == nil {
		t.Errorf("response = %+v", resp)
	}
}

func TestObstacleReportAndList(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/obstacles/report",
		`{"type":"unknown","location":[121.605,23.979],"description":"sidewalk dug up"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("report status = %d, body: %s", w.Code, w.Body.String())
	}
	var reported obstacleReportResponse
	if err := json.Unmarshal(w.Body.Bytes(), &reported); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reported.Success || reported.Obstacle.Type != "construction" {
		t.Errorf("report response = %+v", reported)
	}

	// Area query finds it.
	w = doJSON(t, s, http.MethodGet, "/api/obstacles?lon=121.605&lat=23.979&radius=200", "")
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), reported.Obstacle.ID) {
		t.Errorf("area list missing the report: %s", w.Body.String())
	}

	// Resolve, then the area query no longer returns it.
	w = doJSON(t, s, http.MethodPost, "/api/obstacles/resolve",
		`{"id":"`+reported.Obstacle.ID+`","resolved_by":"crew"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("resolve status = %d", w.Code)
	}
	w = doJSON(t, s, http.MethodGet, "/api/obstacles?lon=121.605&lat=23.979&radius=200", "")
	if strings.Contains(w.Body.String(), reported.Obstacle.ID) {
		t.Error("resolved obstacle still listed in area query")
	}

	// Unknown id resolves to 404.
	w = doJSON(t, s, http.MethodPost, "/api/obstacles/resolve", `{"id":"obs_missing"}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("resolve unknown status = %d, want 404", w.Code)
	}
}
