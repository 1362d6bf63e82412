package analysis

import (
	"math"

	"golang.org/x/sync/errgroup"
)

// Centrality holds the primary centrality maps of a report.
type Centrality struct {
	Degree      map[string]float64 `json:"degree"`
	Betweenness map[string]float64 `json:"betweenness"`
	PageRank    map[string]float64 `json:"pagerank"`
}

// Report is the full-analysis summary. Scores are rounded to 3 decimals.
type Report struct {
	SynergyScore            float64        `json:"synergy_score"`
	AverageClustering       float64        `json:"average_clustering"`
	NumComponents           int            `json:"num_components"`
	Communities             [][]string     `json:"communities"`
	KeyCards                []KeyCard      `json:"key_cards"`
	WeakLinks               []WeakLink     `json:"weak_links"`
	InteractionDistribution map[string]int `json:"interaction_distribution"`
	Centrality              Centrality     `json:"centrality"`
}

// Analysis is a report plus the secondary centralities and run diagnostics.
// Closeness and eigenvector values are rounded like the report.
type Analysis struct {
	Report      *Report
	Closeness   map[string]float64
	Eigenvector map[string]float64

	// EigenvectorConverged is false when power iteration ran out of budget.
	EigenvectorConverged bool
	// CommunityFallback is true when communities are connected components
	// because modularity optimization failed.
	CommunityFallback bool
}

// Report runs the full analysis and returns its summary.
func (a *Analyzer) Report() *Report {
	return a.Run().Report
}

// Run computes every metric once. Independent metrics are computed
// concurrently over the read-only graph.
func (a *Analyzer) Run() *Analysis {
	var degree, betweenness, closeness, pagerank, clustering, eigenvector map[string]float64
	var eigenErr error
	var communities [][]string
	var fellBack bool

	var g errgroup.Group
	g.Go(func() error {
		degree = a.DegreeCentrality()
		return nil
	})
	g.Go(func() error {
		if a.degenerate() {
			betweenness, closeness = map[string]float64{}, map[string]float64{}
			return nil
		}
		view, paths := a.shortestPaths()
		betweenness = a.betweenness(view, paths)
		closeness = a.closeness(paths)
		return nil
	})
	g.Go(func() error {
		pagerank = a.PageRank()
		return nil
	})
	g.Go(func() error {
		clustering = a.Clustering()
		return nil
	})
	g.Go(func() error {
		eigenvector, eigenErr = a.eigenvector()
		return nil
	})
	g.Go(func() error {
		communities, fellBack = a.communities()
		return nil
	})
	_ = g.Wait() // metric goroutines never fail

	if eigenErr != nil {
		eigenvector = map[string]float64{}
	}

	keyCards := a.rankKeyCards(a.opts.TopN, degree, betweenness, pagerank, clustering)
	for i := range keyCards {
		m := &keyCards[i].Metrics
		m.Composite = round3(m.Composite)
		m.Degree = round3(m.Degree)
		m.Betweenness = round3(m.Betweenness)
		m.PageRank = round3(m.PageRank)
		m.Clustering = round3(m.Clustering)
	}

	report := &Report{
		SynergyScore:            round3(a.SynergyScore()),
		AverageClustering:       round3(a.averageClustering(clustering)),
		NumComponents:           len(a.g.Components()),
		Communities:             communities,
		KeyCards:                keyCards,
		WeakLinks:               a.weakLinks(*a.opts.WeakLinkThreshold, degree),
		InteractionDistribution: a.InteractionDistribution(),
		Centrality: Centrality{
			Degree:      roundMap(degree),
			Betweenness: roundMap(betweenness),
			PageRank:    roundMap(pagerank),
		},
	}

	return &Analysis{
		Report:               report,
		Closeness:            roundMap(closeness),
		Eigenvector:          roundMap(eigenvector),
		EigenvectorConverged: eigenErr == nil,
		CommunityFallback:    fellBack,
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func roundMap(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = round3(v)
	}
	return out
}
