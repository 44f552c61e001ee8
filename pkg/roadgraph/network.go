package roadgraph

import "github.com/paulmach/orb"

// The built-in Hualien city network. It exists so routing keeps working
// when the external router is down; it is not a real map. Coordinates
// trace the downtown grid between the train station and Dongdamen.
var hualienNodes = []Node{
	{ID: 1, Point: orb.Point{121.602, 23.974}, Label: "Zhongshan Rd start"},
	{ID: 2, Point: orb.Point{121.603, 23.975}, Label: "Zhongshan Rd mid"},
	{ID: 3, Point: orb.Point{121.604, 23.976}, Label: "Zhongshan Rd end"},
	{ID: 4, Point: orb.Point{121.605, 23.977}, Label: "Zhongshan/Zhongzheng junction"},
	{ID: 5, Point: orb.Point{121.606, 23.978}, Label: "Zhongzheng Rd start"},
	{ID: 6, Point: orb.Point{121.607, 23.976}, Label: "Zhongzheng Rd mid"},
	{ID: 7, Point: orb.Point{121.608, 23.977}, Label: "Zhongzheng Rd end"},
	{ID: 8, Point: orb.Point{121.609, 23.978}, Label: "Zhongzheng/Guolian 1st junction"},
	{ID: 9, Point: orb.Point{121.610, 23.979}, Label: "Guolian 1st Rd start"},
	{ID: 10, Point: orb.Point{121.604, 23.980}, Label: "Guolian 1st Rd mid"},
	{ID: 11, Point: orb.Point{121.605, 23.981}, Label: "Guolian 1st Rd end"},
	{ID: 12, Point: orb.Point{121.606, 23.982}, Label: "Linsen Rd start"},
	{ID: 13, Point: orb.Point{121.607, 23.983}, Label: "Linsen Rd mid"},
	{ID: 14, Point: orb.Point{121.608, 23.973}, Label: "near Hualien station"},
	{ID: 15, Point: orb.Point{121.609, 23.974}, Label: "old railway park"},
}

type edgeSpec struct {
	from, to int
	road     string
	class    string
}

var hualienEdges = []edgeSpec{
	{1, 2, "Zhongshan Rd", ClassMain},
	{2, 3, "Zhongshan Rd", ClassMain},
	{3, 4, "Zhongshan Rd", ClassMain},
	{4, 5, "Zhongshan Rd", ClassMain},
	{5, 6, "Zhongzheng Rd", ClassMain},
	{6, 7, "Zhongzheng Rd", ClassMain},
	{7, 8, "Zhongzheng Rd", ClassMain},
	{8, 9, "Zhongzheng Rd", ClassMain},
	{9, 10, "Guolian 1st Rd", ClassMain},
	{10, 11, "Guolian 1st Rd", ClassMain},
	{11, 12, "Guolian 1st Rd", ClassMain},
	{12, 13, "Linsen Rd", ClassMain},
	{14, 15, "Guolian 1st Rd", ClassMain},
	{4, 6, "connector", ClassSide},
	{8, 10, "connector", ClassSide},
}

// Hualien builds the embedded fallback network.
func Hualien() *Graph {
	g := New()
	for _, n := range hualienNodes {
		g.AddNode(n)
	}
	for _, e := range hualienEdges {
		g.AddEdge(e.from, e.to, e.road, e.class)
	}
	return g
}
