// Package analysis computes graph metrics over a finished synergy graph:
// centralities, clustering, components, communities and the aggregate report.
//
// The analyzer never mutates the graph and every method returns a defined
// value for degenerate graphs (empty maps or zero below two nodes).
package analysis

import (
	"sort"

	"github.com/ramonehamilton/seers-orb/internal/mtga/synergy/graph"
)

// Composite score coefficients for key-card ranking.
const (
	degreeCoefficient      = 0.3
	betweennessCoefficient = 0.3
	pageRankCoefficient    = 0.3
	clusteringCoefficient  = 0.1
)

// Options tunes the analyzer. Zero fields take their defaults.
type Options struct {
	TopN int
	// WeakLinkThreshold is the degree centrality below which a card is a
	// weak link. Nil takes the default; zero reports no weak links.
	WeakLinkThreshold    *float64
	EigenvectorMaxIter   int
	EigenvectorTolerance float64
	PageRankDamping      float64
	PageRankTolerance    float64
}

// DefaultOptions returns the default analyzer options.
func DefaultOptions() Options {
	return Options{
		TopN:                 10,
		WeakLinkThreshold:    Threshold(0.3),
		EigenvectorMaxIter:   500,
		EigenvectorTolerance: 1e-6,
		PageRankDamping:      0.85,
		PageRankTolerance:    1e-6,
	}
}

// Threshold returns a pointer to v for Options.WeakLinkThreshold.
func Threshold(v float64) *float64 {
	return &v
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.TopN <= 0 {
		o.TopN = d.TopN
	}
	if o.WeakLinkThreshold == nil || *o.WeakLinkThreshold < 0 {
		o.WeakLinkThreshold = d.WeakLinkThreshold
	} else {
		o.WeakLinkThreshold = Threshold(*o.WeakLinkThreshold)
	}
	if o.EigenvectorMaxIter <= 0 {
		o.EigenvectorMaxIter = d.EigenvectorMaxIter
	}
	if o.EigenvectorTolerance <= 0 {
		o.EigenvectorTolerance = d.EigenvectorTolerance
	}
	if o.PageRankDamping <= 0 || o.PageRankDamping >= 1 {
		o.PageRankDamping = d.PageRankDamping
	}
	if o.PageRankTolerance <= 0 {
		o.PageRankTolerance = d.PageRankTolerance
	}
	return o
}

// Analyzer computes metrics over one graph snapshot.
type Analyzer struct {
	g    *graph.Graph
	opts Options
}

// New creates an analyzer for g.
func New(g *graph.Graph, opts Options) *Analyzer {
	if g == nil {
		g = graph.New()
	}
	return &Analyzer{g: g, opts: opts.withDefaults()}
}

// Options returns the effective options.
func (a *Analyzer) Options() Options {
	return a.opts
}

func (a *Analyzer) degenerate() bool {
	return a.g.NodeCount() < 2
}

// DegreeCentrality returns degree / (n-1) per node.
func (a *Analyzer) DegreeCentrality() map[string]float64 {
	if a.degenerate() {
		return map[string]float64{}
	}
	scale := 1 / float64(a.g.NodeCount()-1)
	out := make(map[string]float64, a.g.NodeCount())
	for _, id := range a.g.NodeIDs() {
		out[id] = float64(a.g.Degree(id)) * scale
	}
	return out
}

// SynergyScore is density×0.5 + average edge weight×0.5, in [0, 1].
func (a *Analyzer) SynergyScore() float64 {
	if a.degenerate() {
		return 0
	}
	var total float64
	edges := a.g.Edges()
	for _, e := range edges {
		total += e.Weight
	}
	var avg float64
	if len(edges) > 0 {
		avg = total / float64(len(edges))
	}
	return a.g.Density()*0.5 + avg*0.5
}

// ConnectedComponents partitions the nodes into connected components.
func (a *Analyzer) ConnectedComponents() [][]string {
	return a.g.Components()
}

// InteractionDistribution counts edges per interaction type. An edge carrying
// several types counts once for each.
func (a *Analyzer) InteractionDistribution() map[string]int {
	out := make(map[string]int)
	for _, e := range a.g.Edges() {
		for _, t := range e.Types {
			out[t.String()]++
		}
	}
	return out
}

// Metrics is the per-card breakdown behind a key-card ranking.
type Metrics struct {
	Composite   float64 `json:"composite"`
	Degree      float64 `json:"degree"`
	Betweenness float64 `json:"betweenness"`
	PageRank    float64 `json:"pagerank"`
	Clustering  float64 `json:"clustering"`
}

// KeyCard is one ranked card.
type KeyCard struct {
	CardID  string  `json:"card_id"`
	Name    string  `json:"name"`
	Metrics Metrics `json:"metrics"`
}

// WeakLink is a card with low connectivity.
type WeakLink struct {
	CardID string `json:"card_id"`
	Name   string `json:"name"`
}

// KeyCards ranks cards by composite score and returns at most topN of them.
func (a *Analyzer) KeyCards(topN int) []KeyCard {
	return a.rankKeyCards(topN, a.DegreeCentrality(), a.BetweennessCentrality(), a.PageRank(), a.Clustering())
}

func (a *Analyzer) rankKeyCards(topN int, degree, betweenness, pagerank, clustering map[string]float64) []KeyCard {
	if topN <= 0 {
		return []KeyCard{}
	}
	ranked := make([]KeyCard, 0, a.g.NodeCount())
	for _, n := range a.g.Nodes() {
		id := n.ID()
		m := Metrics{
			Degree:      degree[id],
			Betweenness: betweenness[id],
			PageRank:    pagerank[id],
			Clustering:  clustering[id],
		}
		m.Composite = m.Degree*degreeCoefficient +
			m.Betweenness*betweennessCoefficient +
			m.PageRank*pageRankCoefficient +
			m.Clustering*clusteringCoefficient
		ranked = append(ranked, KeyCard{CardID: id, Name: n.Card.Name, Metrics: m})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Metrics.Composite > ranked[j].Metrics.Composite
	})
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}

// WeakLinks returns cards whose degree centrality is below threshold, in node order.
func (a *Analyzer) WeakLinks(threshold float64) []WeakLink {
	return a.weakLinks(threshold, a.DegreeCentrality())
}

func (a *Analyzer) weakLinks(threshold float64, degree map[string]float64) []WeakLink {
	links := []WeakLink{}
	for _, n := range a.g.Nodes() {
		d, ok := degree[n.ID()]
		if ok && d < threshold {
			links = append(links, WeakLink{CardID: n.ID(), Name: n.Card.Name})
		}
	}
	return links
}
