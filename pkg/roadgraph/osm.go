package roadgraph

import (
	"context"
	"fmt"
	"io"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
)

// walkableHighways lists highway tag values a wheelchair user can take.
// steps and track are deliberately absent; they are the same tags the
// barrier classifier rejects on live routes.
var walkableHighways = map[string]bool{
	"footway":       true,
	"pedestrian":    true,
	"living_street": true,
	"residential":   true,
	"service":       true,
	"primary":       true,
	"primary_link":  true,
	"secondary":     true,
	"tertiary":      true,
	"unclassified":  true,
}

// mainHighways marks the highway values recorded as "main" edges.
var mainHighways = map[string]bool{
	"primary":      true,
	"primary_link": true,
	"secondary":    true,
	"tertiary":     true,
}

// WheelchairAccessible returns true if the way is usable with a wheelchair.
func WheelchairAccessible(tags osm.Tags) bool {
	hw := tags.Find("highway")
	if !walkableHighways[hw] {
		return false
	}

	// Area highways (plazas) have no linear geometry to route over.
	if tags.Find("area") == "yes" {
		return false
	}

	access := tags.Find("access")
	if access == "no" || access == "private" {
		return false
	}
	if tags.Find("foot") == "no" {
		return false
	}

	return true
}

// wayInfo holds parsed way data collected during pass 1.
type wayInfo struct {
	NodeIDs []osm.NodeID
	Road    string
	Class   string
}

// LoadPBF reads an OSM PBF extract and builds a fallback road graph from
// its wheelchair-accessible ways. The reader is consumed twice (ways, then
// nodes), so it must implement io.ReadSeeker. Intended for small city
// extracts; the result replaces the embedded Hualien table at startup.
func LoadPBF(ctx context.Context, rs io.ReadSeeker) (*Graph, error) {
	// Pass 1: collect accessible ways and the node ids they reference.
	referenced := make(map[osm.NodeID]struct{})
	var ways []wayInfo

	scanner := osmpbf.New(ctx, rs, 1)
	scanner.SkipNodes = true
	scanner.SkipRelations = true

	for scanner.Scan() {
		w, ok := scanner.Object().(*osm.Way)
		if !ok {
			continue
		}
		if !WheelchairAccessible(w.Tags) || len(w.Nodes) < 2 {
			continue
		}

		road := w.Tags.Find("name")
		if road == "" {
			road = "unnamed road"
		}
		class := ClassSide
		if mainHighways[w.Tags.Find("highway")] {
			class = ClassMain
		}

		nodeIDs := make([]osm.NodeID, len(w.Nodes))
		for i, wn := range w.Nodes {
			nodeIDs[i] = wn.ID
			referenced[wn.ID] = struct{}{}
		}
		ways = append(ways, wayInfo{NodeIDs: nodeIDs, Road: road, Class: class})
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("pass 1 (ways): %w", err)
	}
	scanner.Close()

	// Pass 2: coordinates for referenced nodes only.
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek for pass 2: %w", err)
	}

	coords := make(map[osm.NodeID]orb.Point, len(referenced))

	scanner = osmpbf.New(ctx, rs, 1)
	scanner.SkipWays = true
	scanner.SkipRelations = true

	for scanner.Scan() {
		n, ok := scanner.Object().(*osm.Node)
		if !ok {
			continue
		}
		if _, needed := referenced[n.ID]; !needed {
			continue
		}
		coords[n.ID] = orb.Point{n.Lon, n.Lat}
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("pass 2 (nodes): %w", err)
	}
	scanner.Close()

	// Assemble the graph with compact sequential ids.
	g := New()
	idOf := make(map[osm.NodeID]int, len(coords))
	nextID := 1

	register := func(osmID osm.NodeID, road string) (int, bool) {
		pt, ok := coords[osmID]
		if !ok {
			return 0, false
		}
		if id, ok := idOf[osmID]; ok {
			return id, true
		}
		id := nextID
		nextID++
		idOf[osmID] = id
		g.AddNode(Node{ID: id, Point: pt, Label: road})
		return id, true
	}

	for _, w := range ways {
		for i := 0; i < len(w.NodeIDs)-1; i++ {
			from, ok1 := register(w.NodeIDs[i], w.Road)
			to, ok2 := register(w.NodeIDs[i+1], w.Road)
			if !ok1 || !ok2 {
				continue
			}
			g.AddEdge(from, to, w.Road, w.Class)
		}
	}

	return g, nil
}
