// Package roadgraph holds the fixed fallback road network and its
// shortest-path engine. The network is tiny (tens of nodes), so the
// structures favor clarity over the CSR/heap machinery a real routing
// graph would need: adjacency map, linear frontier scan, linear snap.
package roadgraph

import (
	"errors"
	"math"

	"github.com/paulmach/orb"

	"accessnav/pkg/geo"
)

// ErrNoPath is returned when the two snapped nodes are not connected.
var ErrNoPath = errors.New("no connecting road between points")

// Edge classes, from the source road table.
const (
	ClassMain = "main"
	ClassSide = "side"
)

// Node is a named point in the road network.
type Node struct {
	ID    int       `json:"id"`
	Point orb.Point `json:"point"`
	Label string    `json:"label"`
}

// Edge is one directed half of a road segment. Weight is the haversine
// distance between the endpoints in meters.
type Edge struct {
	To     int     `json:"to"`
	Road   string  `json:"road"`
	Class  string  `json:"class"`
	Weight float64 `json:"weight"`
}

// Graph is an undirected road network. Build it once per process; reads
// are safe for concurrent use.
type Graph struct {
	nodes map[int]Node
	adj   map[int][]Edge
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[int]Node),
		adj:   make(map[int][]Edge),
	}
}

// AddNode registers a node, replacing any previous node with the same id.
func (g *Graph) AddNode(n Node) {
	g.nodes[n.ID] = n
}

// AddEdge connects two registered nodes in both directions. The weight is
// the haversine distance between them; edges referencing unknown nodes are
// ignored.
func (g *Graph) AddEdge(from, to int, road, class string) {
	fn, ok1 := g.nodes[from]
	tn, ok2 := g.nodes[to]
	if !ok1 || !ok2 {
		return
	}
	w := geo.Haversine(fn.Point, tn.Point)
	g.adj[from] = append(g.adj[from], Edge{To: to, Road: road, Class: class, Weight: w})
	g.adj[to] = append(g.adj[to], Edge{To: from, Road: road, Class: class, Weight: w})
}

// Node returns the node with the given id.
func (g *Graph) Node(id int) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of directed edges in the graph.
func (g *Graph) EdgeCount() int {
	var n int
	for _, edges := range g.adj {
		n += len(edges)
	}
	return n
}

// Nodes returns all nodes in unspecified order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n)
	}
	return out
}

// Nearest returns the id of the node closest to p, using the planar
// scaled-degrees approximation (sufficient to pick a snap candidate at
// city scale). ok is false only when the graph is empty.
func (g *Graph) Nearest(p orb.Point) (id int, ok bool) {
	best := math.Inf(1)
	for nid, n := range g.nodes {
		dLon := n.Point.Lon() - p.Lon()
		dLat := n.Point.Lat() - p.Lat()
		d := math.Sqrt(dLon*dLon+dLat*dLat) * 111000
		if d < best || (d == best && (!ok || nid < id)) {
			best = d
			id = nid
			ok = true
		}
	}
	return id, ok
}

// ShortestPath runs Dijkstra from startID to endID and returns the node id
// sequence, start and end inclusive. The frontier is scanned linearly;
// with this many nodes a heap buys nothing. Returns ErrNoPath when the
// graph is disconnected between the two nodes.
func (g *Graph) ShortestPath(startID, endID int) ([]int, error) {
	if _, ok := g.nodes[startID]; !ok {
		return nil, ErrNoPath
	}
	if _, ok := g.nodes[endID]; !ok {
		return nil, ErrNoPath
	}

	dist := make(map[int]float64, len(g.nodes))
	prev := make(map[int]int, len(g.nodes))
	frontier := make(map[int]struct{}, len(g.nodes))
	for id := range g.nodes {
		dist[id] = math.Inf(1)
		frontier[id] = struct{}{}
	}
	dist[startID] = 0

	for len(frontier) > 0 {
		current := -1
		best := math.Inf(1)
		for id := range frontier {
			if dist[id] < best {
				best = dist[id]
				current = id
			}
		}
		if current == -1 {
			// Everything left is unreachable.
			break
		}
		if current == endID {
			return g.reconstruct(prev, startID, endID), nil
		}
		delete(frontier, current)

		for _, e := range g.adj[current] {
			alt := dist[current] + e.Weight
			if alt < dist[e.To] {
				dist[e.To] = alt
				prev[e.To] = current
			}
		}
	}

	return nil, ErrNoPath
}

// reconstruct walks the predecessor map backward from endID.
func (g *Graph) reconstruct(prev map[int]int, startID, endID int) []int {
	path := []int{endID}
	node := endID
	for node != startID {
		p, ok := prev[node]
		if !ok {
			return nil
		}
		path = append(path, p)
		node = p
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Path snaps both endpoints to their nearest nodes and returns the
// shortest path between them.
type PathResult struct {
	NodeIDs []int
	// Line holds the snapped node coordinates only; the caller stitches
	// the original start and end points around it.
	Line orb.LineString
	// Roads lists the distinct road names traversed, in encounter order.
	Roads []string
	// Classes lists the distinct edge classes traversed.
	Classes []string
}

// Path computes the fallback path between two arbitrary points.
func (g *Graph) Path(start, end orb.Point) (*PathResult, error) {
	startID, ok := g.Nearest(start)
	if !ok {
		return nil, ErrNoPath
	}
	endID, ok := g.Nearest(end)
	if !ok {
		return nil, ErrNoPath
	}

	ids, err := g.ShortestPath(startID, endID)
	if err != nil {
		return nil, err
	}

	res := &PathResult{NodeIDs: ids}
	seenRoad := make(map[string]bool)
	seenClass := make(map[string]bool)
	for i, id := range ids {
		n := g.nodes[id]
		res.Line = append(res.Line, n.Point)
		if i == 0 {
			continue
		}
		if e, ok := g.edgeBetween(ids[i-1], id); ok {
			if !seenRoad[e.Road] {
				seenRoad[e.Road] = true
				res.Roads = append(res.Roads, e.Road)
			}
			if !seenClass[e.Class] {
				seenClass[e.Class] = true
				res.Classes = append(res.Classes, e.Class)
			}
		}
	}
	return res, nil
}

func (g *Graph) edgeBetween(from, to int) (Edge, bool) {
	for _, e := range g.adj[from] {
		if e.To == to {
			return e, true
		}
	}
	return Edge{}, false
}
