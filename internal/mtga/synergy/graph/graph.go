// Package graph holds the merged synergy graph of a collection: one node per
// unique card and one undirected edge per interacting card pair.
//
// Edge records (types, weight, description) live in the Graph itself; adjacency
// is mirrored into a gonum weighted undirected graph so analysis can run gonum
// algorithms directly over it.
package graph

import (
	"sort"

	gonumgraph "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/ramonehamilton/seers-orb/internal/mtga/cards"
	"github.com/ramonehamilton/seers-orb/internal/mtga/synergy"
)

// Entry is a card plus the per-collection attributes mirrored on its node.
type Entry struct {
	Card        *cards.Card
	Quantity    int
	Category    string
	IsCommander bool
}

// Node is one unique card in the graph.
type Node struct {
	Entry

	id int64 // gonum node id, stable for the node's lifetime
}

// ID returns the card ID of the node.
func (n *Node) ID() string {
	return n.Card.ID
}

// Edge is the merged summary of every interaction between two cards.
// Source and Target keep the orientation of the first interaction seen.
type Edge struct {
	Source      string
	Target      string
	Types       []synergy.InteractionType
	Weight      float64
	Description string
}

// PrimaryType returns the first interaction type merged into the edge.
func (e *Edge) PrimaryType() (synergy.InteractionType, bool) {
	if len(e.Types) == 0 {
		return 0, false
	}
	return e.Types[0], true
}

// HasType reports whether t was merged into the edge.
func (e *Edge) HasType(t synergy.InteractionType) bool {
	for _, existing := range e.Types {
		if existing == t {
			return true
		}
	}
	return false
}

// Pair is an unordered card pair, reported in edge orientation.
type Pair struct {
	Source string
	Target string
}

type pairKey struct {
	lo, hi string
}

func keyOf(a, b string) pairKey {
	if b < a {
		a, b = b, a
	}
	return pairKey{lo: a, hi: b}
}

// Graph is the synergy graph. It is not safe for concurrent mutation; callers
// build it on one goroutine and may then read it concurrently.
type Graph struct {
	nodes []*Node
	index map[string]*Node
	byGID map[int64]*Node
	next  int64

	edges map[pairKey]*Edge
	order []pairKey

	adj *simple.WeightedUndirectedGraph
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		index: make(map[string]*Node),
		byGID: make(map[int64]*Node),
		edges: make(map[pairKey]*Edge),
		adj:   simple.NewWeightedUndirectedGraph(0, 0),
	}
}

// Build creates one node per unique card. Later duplicates of an ID are ignored.
func Build(entries []Entry) *Graph {
	g := New()
	for _, e := range entries {
		g.AddCard(e)
	}
	return g
}

// FromCards builds a graph from bare cards with a quantity of one each.
func FromCards(cs []*cards.Card) *Graph {
	g := New()
	for _, c := range cs {
		g.AddCard(Entry{Card: c, Quantity: 1})
	}
	return g
}

// AddCard adds a node for the entry's card. It returns false when the card is
// nil or already present.
func (g *Graph) AddCard(e Entry) bool {
	if e.Card == nil {
		return false
	}
	if _, ok := g.index[e.Card.ID]; ok {
		return false
	}
	n := &Node{Entry: e, id: g.next}
	g.next++
	g.nodes = append(g.nodes, n)
	g.index[e.Card.ID] = n
	g.byGID[n.id] = n
	g.adj.AddNode(simple.Node(n.id))
	return true
}

// RemoveCard deletes a node and every edge touching it.
func (g *Graph) RemoveCard(id string) bool {
	n, ok := g.index[id]
	if !ok {
		return false
	}
	for _, other := range g.Neighbors(id) {
		g.RemoveInteraction(id, other)
	}
	g.adj.RemoveNode(n.id)
	delete(g.index, id)
	delete(g.byGID, n.id)
	for i, existing := range g.nodes {
		if existing == n {
			g.nodes = append(g.nodes[:i], g.nodes[i+1:]...)
			break
		}
	}
	return true
}

// Ingest merges interactions into the graph. Interactions that reference an
// unknown card or connect a card to itself are skipped.
func (g *Graph) Ingest(interactions []synergy.Interaction) {
	for _, in := range interactions {
		g.merge(in)
	}
}

// AddCustomInteraction merges a user-defined interaction through the same path
// as detected ones. It reports whether the interaction was applied.
func (g *Graph) AddCustomInteraction(in synergy.Interaction) bool {
	return g.merge(in)
}

func (g *Graph) merge(in synergy.Interaction) bool {
	src, ok := g.index[in.SourceID]
	if !ok {
		return false
	}
	dst, ok := g.index[in.TargetID]
	if !ok || src == dst {
		return false
	}

	weight := synergy.ClampWeight(in.Weight)
	key := keyOf(in.SourceID, in.TargetID)

	e, exists := g.edges[key]
	if !exists {
		e = &Edge{
			Source:      in.SourceID,
			Target:      in.TargetID,
			Types:       []synergy.InteractionType{in.Type},
			Weight:      weight,
			Description: in.Description,
		}
		g.edges[key] = e
		g.order = append(g.order, key)
	} else {
		if !e.HasType(in.Type) {
			e.Types = append(e.Types, in.Type)
		}
		if weight > e.Weight {
			e.Weight = weight
		}
		if e.Description == "" {
			e.Description = in.Description
		}
	}

	g.adj.SetWeightedEdge(simple.WeightedEdge{
		F: simple.Node(src.id),
		T: simple.Node(dst.id),
		W: e.Weight,
	})
	return true
}

// RemoveInteraction deletes the edge between a and b. Missing edges are a no-op.
func (g *Graph) RemoveInteraction(a, b string) bool {
	key := keyOf(a, b)
	if _, ok := g.edges[key]; !ok {
		return false
	}
	delete(g.edges, key)
	for i, k := range g.order {
		if k == key {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
	g.adj.RemoveEdge(g.index[a].id, g.index[b].id)
	return true
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of merged edges.
func (g *Graph) EdgeCount() int { return len(g.order) }

// Nodes returns the nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// NodeIDs returns the card IDs in insertion order.
func (g *Graph) NodeIDs() []string {
	ids := make([]string, len(g.nodes))
	for i, n := range g.nodes {
		ids[i] = n.Card.ID
	}
	return ids
}

// Node looks up a node by card ID.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.index[id]
	return n, ok
}

// Edges returns the edges in creation order.
func (g *Graph) Edges() []*Edge {
	out := make([]*Edge, len(g.order))
	for i, k := range g.order {
		out[i] = g.edges[k]
	}
	return out
}

// Edge returns the edge between a and b in either orientation.
func (g *Graph) Edge(a, b string) (*Edge, bool) {
	e, ok := g.edges[keyOf(a, b)]
	return e, ok
}

// Degree returns the number of edges touching id; unknown cards have degree 0.
func (g *Graph) Degree(id string) int {
	n, ok := g.index[id]
	if !ok {
		return 0
	}
	return g.adj.From(n.id).Len()
}

// Neighbors returns the cards sharing an edge with id, in node insertion order.
func (g *Graph) Neighbors(id string) []string {
	n, ok := g.index[id]
	if !ok {
		return nil
	}
	adjacent := gonumgraph.NodesOf(g.adj.From(n.id))
	sort.Slice(adjacent, func(i, j int) bool { return adjacent[i].ID() < adjacent[j].ID() })

	ids := make([]string, len(adjacent))
	for i, a := range adjacent {
		ids[i] = g.byGID[a.ID()].Card.ID
	}
	return ids
}

// NodeInteractionTypes returns every interaction type on edges touching id,
// in enum order.
func (g *Graph) NodeInteractionTypes(id string) []synergy.InteractionType {
	seen := make(map[synergy.InteractionType]bool)
	for _, other := range g.Neighbors(id) {
		e, _ := g.Edge(id, other)
		for _, t := range e.Types {
			seen[t] = true
		}
	}
	var types []synergy.InteractionType
	for _, t := range synergy.AllInteractionTypes {
		if seen[t] {
			types = append(types, t)
		}
	}
	return types
}

// PairsByType returns the card pairs whose edge carries t, in edge order.
func (g *Graph) PairsByType(t synergy.InteractionType) []Pair {
	var pairs []Pair
	for _, e := range g.Edges() {
		if e.HasType(t) {
			pairs = append(pairs, Pair{Source: e.Source, Target: e.Target})
		}
	}
	return pairs
}

// Isolated returns cards with no edges, in node order.
func (g *Graph) Isolated() []string {
	var ids []string
	for _, n := range g.nodes {
		if g.adj.From(n.id).Len() == 0 {
			ids = append(ids, n.Card.ID)
		}
	}
	return ids
}

// NodeDegree pairs a card with its edge count.
type NodeDegree struct {
	ID     string
	Degree int
}

// MostConnected returns up to topN cards ordered by degree, highest first.
// Ties keep node insertion order.
func (g *Graph) MostConnected(topN int) []NodeDegree {
	if topN <= 0 {
		return nil
	}
	degrees := make([]NodeDegree, len(g.nodes))
	for i, n := range g.nodes {
		degrees[i] = NodeDegree{ID: n.Card.ID, Degree: g.adj.From(n.id).Len()}
	}
	sort.SliceStable(degrees, func(i, j int) bool { return degrees[i].Degree > degrees[j].Degree })
	if len(degrees) > topN {
		degrees = degrees[:topN]
	}
	return degrees
}

// Density is edges over the maximum possible edges; 0 below two nodes.
func (g *Graph) Density() float64 {
	n := len(g.nodes)
	if n < 2 {
		return 0
	}
	return float64(len(g.order)) / (float64(n) * float64(n-1) / 2)
}

// Components returns the connected components. Components are ordered by
// their earliest node and list their cards in node order.
func (g *Graph) Components() [][]string {
	raw := topo.ConnectedComponents(g.adj)
	components := make([][]string, 0, len(raw))
	firsts := make([]int64, 0, len(raw))
	for _, comp := range raw {
		sort.Slice(comp, func(i, j int) bool { return comp[i].ID() < comp[j].ID() })
		ids := make([]string, len(comp))
		for i, n := range comp {
			ids[i] = g.byGID[n.ID()].Card.ID
		}
		components = append(components, ids)
		firsts = append(firsts, comp[0].ID())
	}
	sort.Sort(byFirst{components: components, firsts: firsts})
	return components
}

type byFirst struct {
	components [][]string
	firsts     []int64
}

func (b byFirst) Len() int           { return len(b.components) }
func (b byFirst) Less(i, j int) bool { return b.firsts[i] < b.firsts[j] }
func (b byFirst) Swap(i, j int) {
	b.components[i], b.components[j] = b.components[j], b.components[i]
	b.firsts[i], b.firsts[j] = b.firsts[j], b.firsts[i]
}

// Weighted exposes the adjacency as a read-only gonum graph. Node IDs map back
// to cards through CardID.
func (g *Graph) Weighted() gonumgraph.WeightedUndirected {
	return g.adj
}

// CardID maps a gonum node ID back to its card ID.
func (g *Graph) CardID(gid int64) (string, bool) {
	n, ok := g.byGID[gid]
	if !ok {
		return "", false
	}
	return n.Card.ID, true
}

// GonumID maps a card ID to its gonum node ID.
func (g *Graph) GonumID(id string) (int64, bool) {
	n, ok := g.index[id]
	if !ok {
		return 0, false
	}
	return n.id, true
}
