package roadgraph

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"

	"accessnav/pkg/geo"
)

// buildChainGraph creates a 4-node graph with a short chain 1-2-3 and a
// long detour 1-4-3.
//
//	1 --- 2 --- 3
//	 \         /
//	  \--- 4--/   (far to the north)
func buildChainGraph(t *testing.T) *Graph {
	t.Helper()
	g := New()
	g.AddNode(Node{ID: 1, Point: orb.Point{121.600, 23.970}, Label: "a"})
	g.AddNode(Node{ID: 2, Point: orb.Point{121.601, 23.970}, Label: "b"})
	g.AddNode(Node{ID: 3, Point: orb.Point{121.602, 23.970}, Label: "c"})
	g.AddNode(Node{ID: 4, Point: orb.Point{121.601, 23.980}, Label: "detour"})
	g.AddEdge(1, 2, "short road", ClassMain)
	g.AddEdge(2, 3, "short road", ClassMain)
	g.AddEdge(1, 4, "long road", ClassSide)
	g.AddEdge(4, 3, "long road", ClassSide)
	return g
}

func TestAddEdgeBothDirections(t *testing.T) {
	g := buildChainGraph(t)
	// 4 undirected edges → 8 directed entries.
	if got := g.EdgeCount(); got != 8 {
		t.Errorf("EdgeCount = %d, want 8", got)
	}
}

func TestShortestPathOptimal(t *testing.T) {
	g := buildChainGraph(t)

	path, err := g.ShortestPath(1, 3)
	if err != nil {
		t.Fatalf("ShortestPath: %v", err)
	}

	want := []int{1, 2, 3}
	if len(path) != len(want) {
		t.Fatalf("path = %v, want %v", path, want)
	}
	for i := range want {
		if path[i] != want[i] {
			t.Fatalf("path = %v, want %v", path, want)
		}
	}

	// Path length equals the sum of the two chain edges.
	n1, _ := g.Node(1)
	n2, _ := g.Node(2)
	n3, _ := g.Node(3)
	wantLen := geo.Haversine(n1.Point, n2.Point) + geo.Haversine(n2.Point, n3.Point)
	var gotLen float64
	for i := 1; i < len(path); i++ {
		a, _ := g.Node(path[i-1])
		b, _ := g.Node(path[i])
		gotLen += geo.Haversine(a.Point, b.Point)
	}
	if math.Abs(gotLen-wantLen) > 1e-6 {
		t.Errorf("path length = %.2f, want %.2f", gotLen, wantLen)
	}
}

func TestShortestPathDisconnected(t *testing.T) {
	g := New()
	g.AddNode(Node{ID: 1, Point: orb.Point{121.600, 23.970}})
	g.AddNode(Node{ID: 2, Point: orb.Point{121.601, 23.970}})
	g.AddNode(Node{ID: 3, Point: orb.Point{121.700, 23.990}})
	g.AddEdge(1, 2, "road", ClassMain)

	if _, err := g.ShortestPath(1, 3); err != ErrNoPath {
		t.Errorf("err = %v, want ErrNoPath", err)
	}
}

func TestNearest(t *testing.T) {
	g := buildChainGraph(t)

	id, ok := g.Nearest(orb.Point{121.6005, 23.9701})
	if !ok {
		t.Fatal("Nearest returned not ok on a populated graph")
	}
	if id != 1 && id != 2 {
		t.Errorf("Nearest = %d, want 1 or 2", id)
	}

	id, ok = g.Nearest(orb.Point{121.60201, 23.97001})
	if !ok || id != 3 {
		t.Errorf("Nearest = %d ok=%v, want 3", id, ok)
	}

	if _, ok := New().Nearest(orb.Point{0, 0}); ok {
		t.Error("Nearest on empty graph reported ok")
	}
}

func TestPathCollectsRoads(t *testing.T) {
	g := buildChainGraph(t)

	res, err := g.Path(orb.Point{121.6, 23.97}, orb.Point{121.602, 23.97})
	if err != nil {
		t.Fatalf("Path: %v", err)
	}
	if len(res.Line) != 3 {
		t.Errorf("line has %d points, want 3", len(res.Line))
	}
	if len(res.Roads) != 1 || res.Roads[0] != "short road" {
		t.Errorf("Roads = %v, want [short road]", res.Roads)
	}
	if len(res.Classes) != 1 || res.Classes[0] != ClassMain {
		t.Errorf("Classes = %v, want [main]", res.Classes)
	}
}

func TestHualienNetwork(t *testing.T) {
	g := Hualien()
	if g.NodeCount() != 15 {
		t.Errorf("NodeCount = %d, want 15", g.NodeCount())
	}

	// The downtown grid is connected end to end.
	path, err := g.ShortestPath(1, 13)
	if err != nil {
		t.Fatalf("ShortestPath(1, 13): %v", err)
	}
	if len(path) < 2 {
		t.Errorf("path too short: %v", path)
	}

	// Nodes 14/15 sit on a disconnected stub of Guolian 1st Rd.
	if _, err := g.ShortestPath(1, 14); err != ErrNoPath {
		t.Errorf("ShortestPath(1, 14) err = %v, want ErrNoPath", err)
	}
}

func TestWheelchairAccessible(t *testing.T) {
	tests := []struct {
		name string
		tags osm.Tags
		want bool
	}{
		{"footway", osm.Tags{{Key: "highway", Value: "footway"}}, true},
		{"residential", osm.Tags{{Key: "highway", Value: "residential"}}, true},
		{"steps", osm.Tags{{Key: "highway", Value: "steps"}}, false},
		{"track", osm.Tags{{Key: "highway", Value: "track"}}, false},
		{"no highway tag", osm.Tags{{Key: "name", Value: "somewhere"}}, false},
		{
			"access no",
			osm.Tags{{Key: "highway", Value: "footway"}, {Key: "access", Value: "no"}},
			false,
		},
		{
			"foot no",
			osm.Tags{{Key: "highway", Value: "residential"}, {Key: "foot", Value: "no"}},
			false,
		},
		{
			"pedestrian area",
			osm.Tags{{Key: "highway", Value: "pedestrian"}, {Key: "area", Value: "yes"}},
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WheelchairAccessible(tt.tags); got != tt.want {
				t.Errorf("WheelchairAccessible = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	path := t.TempDir() + "/graph.json"

	if err := buildChainGraph(t).SaveSnapshot(path); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}

	if loaded.NodeCount() != 4 {
		t.Errorf("NodeCount = %d, want 4", loaded.NodeCount())
	}
	if loaded.EdgeCount() != 8 {
		t.Errorf("EdgeCount = %d, want 8", loaded.EdgeCount())
	}
	if path, err := loaded.ShortestPath(1, 3); err != nil || len(path) != 3 {
		t.Errorf("ShortestPath after reload = %v, %v", path, err)
	}
}
