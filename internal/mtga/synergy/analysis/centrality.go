package analysis

import (
	"errors"
	"math"

	gonumgraph "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
)

// ErrNotConverged is returned when power iteration exhausts its budget.
var ErrNotConverged = errors.New("eigenvector centrality did not converge")

// minDistance replaces zero edge weights on shortest-path views.
const minDistance = 1e-9

// distanceView reads edge weights as path lengths. Zero weights are lifted to
// minDistance so shortest-path enumeration never sees zero-length cycles.
type distanceView struct {
	gonumgraph.WeightedUndirected
}

func (d distanceView) Weight(xid, yid int64) (float64, bool) {
	w, ok := d.WeightedUndirected.Weight(xid, yid)
	if !ok || xid == yid {
		return w, ok
	}
	return math.Max(w, minDistance), true
}

func (a *Analyzer) shortestPaths() (distanceView, path.AllShortest) {
	view := distanceView{a.g.Weighted()}
	return view, path.DijkstraAllPaths(view)
}

// BetweennessCentrality returns weighted shortest-path betweenness, normalized
// by the number of ordered pairs excluding the node itself.
func (a *Analyzer) BetweennessCentrality() map[string]float64 {
	if a.degenerate() {
		return map[string]float64{}
	}
	view, paths := a.shortestPaths()
	return a.betweenness(view, paths)
}

func (a *Analyzer) betweenness(view distanceView, paths path.AllShortest) map[string]float64 {
	n := a.g.NodeCount()
	raw := network.BetweennessWeighted(view, paths)

	// gonum counts each unordered pair in both directions.
	var scale float64
	if n > 2 {
		scale = 1 / float64((n-1)*(n-2))
	}

	out := make(map[string]float64, n)
	for _, node := range a.g.Nodes() {
		id := node.ID()
		gid, _ := a.g.GonumID(id)
		out[id] = raw[gid] * scale
	}
	return out
}

// ClosenessCentrality returns weighted closeness with the Wasserman-Faust
// correction for disconnected graphs: (r/Σd) × (r/(n-1)), where r is the
// number of nodes reachable from the card.
//
// Edge weights are path lengths, so the value is unbounded: it exceeds 1
// whenever the average distance to reachable cards is below 1, and a
// zero-weight edge counts as minDistance.
func (a *Analyzer) ClosenessCentrality() map[string]float64 {
	if a.degenerate() {
		return map[string]float64{}
	}
	_, paths := a.shortestPaths()
	return a.closeness(paths)
}

func (a *Analyzer) closeness(paths path.AllShortest) map[string]float64 {
	nodes := a.g.Nodes()
	n := len(nodes)
	out := make(map[string]float64, n)

	for _, u := range nodes {
		uid, _ := a.g.GonumID(u.ID())
		var total float64
		var reachable int
		for _, v := range nodes {
			if u == v {
				continue
			}
			vid, _ := a.g.GonumID(v.ID())
			d := paths.Weight(uid, vid)
			if math.IsInf(d, 1) {
				continue
			}
			total += d
			reachable++
		}

		var c float64
		if total > 0 {
			r := float64(reachable)
			c = (r / total) * (r / float64(n-1))
		}
		out[u.ID()] = c
	}
	return out
}

// PageRank runs weighted PageRank over a directed view in which every edge
// carries flow both ways. Zero-weight edges carry no flow.
func (a *Analyzer) PageRank() map[string]float64 {
	if a.degenerate() {
		return map[string]float64{}
	}

	directed := simple.NewWeightedDirectedGraph(0, 0)
	for _, node := range a.g.Nodes() {
		gid, _ := a.g.GonumID(node.ID())
		directed.AddNode(simple.Node(gid))
	}
	for _, e := range a.g.Edges() {
		if e.Weight <= 0 {
			continue
		}
		src, _ := a.g.GonumID(e.Source)
		dst, _ := a.g.GonumID(e.Target)
		directed.SetWeightedEdge(simple.WeightedEdge{F: simple.Node(src), T: simple.Node(dst), W: e.Weight})
		directed.SetWeightedEdge(simple.WeightedEdge{F: simple.Node(dst), T: simple.Node(src), W: e.Weight})
	}

	ranks := network.PageRank(directed, a.opts.PageRankDamping, a.opts.PageRankTolerance)

	out := make(map[string]float64, len(ranks))
	for gid, r := range ranks {
		if id, ok := a.g.CardID(gid); ok {
			out[id] = r
		}
	}
	return out
}

// EigenvectorCentrality runs weighted power iteration. It returns an empty map
// when the graph is degenerate or iteration does not converge.
func (a *Analyzer) EigenvectorCentrality() map[string]float64 {
	out, err := a.eigenvector()
	if err != nil {
		return map[string]float64{}
	}
	return out
}

// eigenvector iterates x ← (A + I)x with 2-norm normalization until the L1
// change falls below n×tolerance.
func (a *Analyzer) eigenvector() (map[string]float64, error) {
	if a.degenerate() {
		return map[string]float64{}, nil
	}

	ids := a.g.NodeIDs()
	n := len(ids)
	pos := make(map[string]int, n)
	for i, id := range ids {
		pos[id] = i
	}

	type link struct {
		to     int
		weight float64
	}
	adjacency := make([][]link, n)
	for _, e := range a.g.Edges() {
		i, j := pos[e.Source], pos[e.Target]
		adjacency[i] = append(adjacency[i], link{to: j, weight: e.Weight})
		adjacency[j] = append(adjacency[j], link{to: i, weight: e.Weight})
	}

	x := make([]float64, n)
	for i := range x {
		x[i] = 1 / float64(n)
	}
	next := make([]float64, n)
	threshold := float64(n) * a.opts.EigenvectorTolerance

	for iter := 0; iter < a.opts.EigenvectorMaxIter; iter++ {
		copy(next, x)
		for i, links := range adjacency {
			for _, l := range links {
				next[l.to] += x[i] * l.weight
			}
		}

		var norm float64
		for _, v := range next {
			norm += v * v
		}
		norm = math.Sqrt(norm)
		if norm == 0 {
			norm = 1
		}

		var change float64
		for i := range next {
			next[i] /= norm
			change += math.Abs(next[i] - x[i])
		}
		x, next = next, x

		if change < threshold {
			out := make(map[string]float64, n)
			for i, id := range ids {
				out[id] = x[i]
			}
			return out, nil
		}
	}
	return nil, ErrNotConverged
}

// Clustering returns the weighted clustering coefficient per node: the
// geometric mean of normalized triangle weights over all neighbor pairs.
func (a *Analyzer) Clustering() map[string]float64 {
	if a.degenerate() {
		return map[string]float64{}
	}

	var maxWeight float64
	for _, e := range a.g.Edges() {
		maxWeight = math.Max(maxWeight, e.Weight)
	}

	out := make(map[string]float64, a.g.NodeCount())
	for _, id := range a.g.NodeIDs() {
		neighbors := a.g.Neighbors(id)
		k := len(neighbors)
		if k < 2 || maxWeight == 0 {
			out[id] = 0
			continue
		}

		var sum float64
		for i := 0; i < k; i++ {
			for j := i + 1; j < k; j++ {
				vw, ok := a.g.Edge(neighbors[i], neighbors[j])
				if !ok {
					continue
				}
				uv, _ := a.g.Edge(id, neighbors[i])
				uw, _ := a.g.Edge(id, neighbors[j])
				sum += math.Cbrt((uv.Weight / maxWeight) * (uw.Weight / maxWeight) * (vw.Weight / maxWeight))
			}
		}
		out[id] = 2 * sum / float64(k*(k-1))
	}
	return out
}

// AverageClustering is the mean clustering over all nodes; 0 below three nodes.
func (a *Analyzer) AverageClustering() float64 {
	return a.averageClustering(a.Clustering())
}

func (a *Analyzer) averageClustering(clustering map[string]float64) float64 {
	n := a.g.NodeCount()
	if n < 3 {
		return 0
	}
	var total float64
	for _, c := range clustering {
		total += c
	}
	return total / float64(n)
}
