package graph

import "math"

// Layout geometry. Ranks flow left to right; rank separation exceeds the
// node width and node separation exceeds the node height, so boxes in a
// laid-out graph cannot overlap.
const (
	nodeWidth  = 220.0
	nodeHeight = 120.0
	rankSep    = 320.0
	nodeSep    = 160.0
	marginX    = 80.0
	marginY    = 80.0
)

// layout assigns a position to every node. Graphs without edges get a
// simple left-to-right row. Graphs with edges get a rank layering; when the
// edge set is cyclic or a coordinate comes out non-finite, the row
// placement is used instead — a worse picture beats no picture.
func (d *Deriver) layout(g *VisualGraph) {
	if len(g.Nodes) == 0 {
		return
	}
	if len(g.Edges) == 0 {
		linearLayout(g)
		return
	}
	if !rankedLayout(g) {
		d.logger().Warn("ranked layout failed, using linear fallback", "nodes", len(g.Nodes))
		linearLayout(g)
	}
}

// linearLayout places nodes in declaration order on one row.
func linearLayout(g *VisualGraph) {
	for i := range g.Nodes {
		g.Nodes[i].Position = Position{
			X: marginX + float64(i)*(nodeWidth+nodeSep),
			Y: marginY,
		}
	}
}

// rankedLayout assigns each node the longest-path rank from the graph's
// sources (Kahn's ordering), then spreads ranks along x and nodes within a
// rank along y. Returns false when the edge set has a cycle.
func rankedLayout(g *VisualGraph) bool {
	indegree := make(map[string]int, len(g.Nodes))
	succ := make(map[string][]string, len(g.Nodes))
	for _, n := range g.Nodes {
		indegree[n.ID] = 0
	}
	for _, e := range g.Edges {
		succ[e.Source] = append(succ[e.Source], e.Target)
		indegree[e.Target]++
	}

	rank := make(map[string]int, len(g.Nodes))
	var queue []string
	for _, n := range g.Nodes {
		if indegree[n.ID] == 0 {
			queue = append(queue, n.ID)
			rank[n.ID] = 0
		}
	}

	processed := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		processed++
		for _, next := range succ[id] {
			if rank[id]+1 > rank[next] {
				rank[next] = rank[id] + 1
			}
			indegree[next]--
			if indegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}
	if processed < len(g.Nodes) {
		return false // cycle
	}

	// Row index within each rank follows node declaration order.
	perRank := make(map[int]int)
	for i := range g.Nodes {
		r := rank[g.Nodes[i].ID]
		row := perRank[r]
		perRank[r] = row + 1

		pos := Position{
			X: marginX + float64(r)*rankSep,
			Y: marginY + float64(row)*(nodeHeight+nodeSep),
		}
		if !finite(pos.X) || !finite(pos.Y) {
			return false
		}
		g.Nodes[i].Position = pos
	}
	return true
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
