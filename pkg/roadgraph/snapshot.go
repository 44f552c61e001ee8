package roadgraph

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/paulmach/orb"
)

// snapshot is the JSON file form of a road graph. Edges appear once; the
// loader re-inserts both directions.
type snapshot struct {
	Nodes []snapshotNode `json:"nodes"`
	Edges []snapshotEdge `json:"edges"`
}

type snapshotNode struct {
	ID    int     `json:"id"`
	Lon   float64 `json:"lon"`
	Lat   float64 `json:"lat"`
	Label string  `json:"label,omitempty"`
}

type snapshotEdge struct {
	From  int    `json:"from"`
	To    int    `json:"to"`
	Road  string `json:"road"`
	Class string `json:"class"`
}

// LoadSnapshot reads a road graph from a JSON snapshot file.
func LoadSnapshot(path string) (*Graph, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read graph snapshot: %w", err)
	}
	var snap snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("parse graph snapshot: %w", err)
	}

	g := New()
	for _, n := range snap.Nodes {
		g.AddNode(Node{ID: n.ID, Point: orb.Point{n.Lon, n.Lat}, Label: n.Label})
	}
	for _, e := range snap.Edges {
		g.AddEdge(e.From, e.To, e.Road, e.Class)
	}
	return g, nil
}

// SaveSnapshot writes the graph to a JSON snapshot file. Each undirected
// edge is written once, from the lower node id.
func (g *Graph) SaveSnapshot(path string) error {
	var snap snapshot
	for _, n := range g.Nodes() {
		snap.Nodes = append(snap.Nodes, snapshotNode{
			ID: n.ID, Lon: n.Point.Lon(), Lat: n.Point.Lat(), Label: n.Label,
		})
	}
	for from, edges := range g.adj {
		for _, e := range edges {
			if from < e.To {
				snap.Edges = append(snap.Edges, snapshotEdge{
					From: from, To: e.To, Road: e.Road, Class: e.Class,
				})
			}
		}
	}

	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write graph snapshot: %w", err)
	}
	return nil
}
