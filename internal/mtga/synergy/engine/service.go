// Package engine runs the synergy pipeline for a collection: interaction
// detection, graph construction, replay of stored user edits, analysis and
// report persistence.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/ramonehamilton/seers-orb/internal/config"
	"github.com/ramonehamilton/seers-orb/internal/metrics"
	"github.com/ramonehamilton/seers-orb/internal/mtga/collection"
	"github.com/ramonehamilton/seers-orb/internal/mtga/synergy"
	"github.com/ramonehamilton/seers-orb/internal/mtga/synergy/analysis"
	"github.com/ramonehamilton/seers-orb/internal/mtga/synergy/graph"
	"github.com/ramonehamilton/seers-orb/internal/mtga/synergy/weighting"
	"github.com/ramonehamilton/seers-orb/internal/storage/models"
	"github.com/ramonehamilton/seers-orb/internal/storage/repository"
)

// Engine errors.
var (
	ErrNoStorage   = errors.New("graph edits require storage")
	ErrUnknownCard = errors.New("card is not in the collection")
	ErrSelfPair    = errors.New("an interaction needs two different cards")
	ErrNilInput    = errors.New("collection is nil")
)

// Service runs analyses. It is safe for concurrent use; every call builds
// its own graph.
type Service struct {
	cfg      *config.Config
	detector *synergy.Detector
	weighter *weighting.Weighter
	edits    repository.GraphEditRepository
	reports  repository.ReportRepository
	logger   *zap.Logger
	metrics  *metrics.AnalysisMetrics
}

// Option configures a Service.
type Option func(*Service)

// WithEditRepository enables persistence and replay of user graph edits.
func WithEditRepository(r repository.GraphEditRepository) Option {
	return func(s *Service) {
		s.edits = r
	}
}

// WithReportRepository enables storing report snapshots.
func WithReportRepository(r repository.ReportRepository) Option {
	return func(s *Service) {
		s.reports = r
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.AnalysisMetrics) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithTagExtractor replaces the weighter's keyword tagger.
func WithTagExtractor(e weighting.TagExtractor) Option {
	return func(s *Service) {
		s.weighter = newWeighter(s.cfg, e)
	}
}

// New creates a service from cfg; nil uses the defaults.
func New(cfg *config.Config, opts ...Option) *Service {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	s := &Service{
		cfg:      cfg,
		detector: synergy.NewDetector(synergy.WithWorkers(cfg.Analysis.DetectorWorkers)),
		weighter: newWeighter(cfg, weighting.NewKeywordTagger()),
		logger:   zap.NewNop(),
		metrics:  metrics.NewAnalysisMetrics(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("engine")
	return s
}

func newWeighter(cfg *config.Config, e weighting.TagExtractor) *weighting.Weighter {
	return weighting.New(
		weighting.WithCategoryWeights(cfg.Weights.Categories),
		weighting.WithNameBonus(cfg.Weights.NameBonus),
		weighting.WithTagExtractor(e),
	)
}

// Metrics returns the service's metrics collector.
func (s *Service) Metrics() *metrics.AnalysisMetrics {
	return s.metrics
}

func (s *Service) analysisOptions() analysis.Options {
	a := s.cfg.Analysis
	return analysis.Options{
		TopN:                 a.TopN,
		WeakLinkThreshold:    analysis.Threshold(a.WeakLinkThreshold),
		EigenvectorMaxIter:   a.EigenvectorMaxIter,
		EigenvectorTolerance: a.EigenvectorTolerance,
		PageRankDamping:      a.PageRankDamping,
		PageRankTolerance:    a.PageRankTolerance,
	}
}

// BuildStats describes one graph build.
type BuildStats struct {
	Interactions int   `json:"interactions"`
	EditsApplied int   `json:"edits_applied"`
	EditsSkipped int   `json:"edits_skipped"`
	DetectMillis int64 `json:"detect_ms"`
	BuildMillis  int64 `json:"build_ms"`
}

// BuildGraph detects interactions among the collection's unique cards, builds
// the graph and replays the collection's stored edits on top.
func (s *Service) BuildGraph(ctx context.Context, col *collection.Collection) (*graph.Graph, error) {
	g, _, err := s.buildGraph(ctx, col)
	return g, err
}

func (s *Service) buildGraph(ctx context.Context, col *collection.Collection) (*graph.Graph, BuildStats, error) {
	var stats BuildStats
	if col == nil {
		return nil, stats, ErrNilInput
	}

	start := time.Now()
	interactions := s.detector.Detect(col.UniqueCards())
	detectTime := time.Since(start)
	s.metrics.DetectLatency.Record(detectTime)
	s.metrics.InteractionsDetected.Add(uint64(len(interactions)))
	stats.Interactions = len(interactions)
	stats.DetectMillis = detectTime.Milliseconds()

	buildStart := time.Now()
	entries := make([]graph.Entry, 0, len(col.Entries))
	for _, e := range col.Entries {
		entries = append(entries, graph.Entry{
			Card:        e.Card,
			Quantity:    e.Quantity,
			Category:    e.Category,
			IsCommander: col.IsCommander(e.Card.ID),
		})
	}
	g := graph.Build(entries)
	g.Ingest(interactions)

	if s.edits != nil {
		edits, err := s.edits.List(ctx, col.ID)
		if err != nil {
			s.metrics.StorageErrors.Add(1)
			return nil, stats, fmt.Errorf("failed to load graph edits: %w", err)
		}
		stats.EditsApplied, stats.EditsSkipped = s.replay(g, edits)
		s.metrics.EditsReplayed.Add(uint64(stats.EditsApplied))
	}

	buildTime := time.Since(buildStart)
	s.metrics.BuildLatency.Record(buildTime)
	stats.BuildMillis = buildTime.Milliseconds()

	s.logger.Debug("graph built",
		zap.String("collection", col.ID),
		zap.Int("nodes", g.NodeCount()),
		zap.Int("edges", g.EdgeCount()),
		zap.Int("interactions", stats.Interactions),
		zap.Int("edits_applied", stats.EditsApplied),
		zap.Duration("detect", detectTime),
		zap.Duration("build", buildTime),
	)
	return g, stats, nil
}

// replay applies stored edits in order. Edits naming cards that have left the
// collection no longer apply and are skipped.
func (s *Service) replay(g *graph.Graph, edits []*models.GraphEdit) (applied, skipped int) {
	for _, edit := range edits {
		ok := false
		switch edit.Kind {
		case models.EditKindAdd:
			t, err := synergy.ParseInteractionType(edit.InteractionType)
			if err != nil {
				s.logger.Warn("skipping stored edit", zap.Int64("edit", edit.ID), zap.Error(err))
				break
			}
			ok = g.AddCustomInteraction(synergy.Interaction{
				SourceID:    edit.SourceID,
				TargetID:    edit.TargetID,
				Type:        t,
				Weight:      edit.Weight,
				Description: edit.Description,
			})
		case models.EditKindRemove:
			ok = g.RemoveInteraction(edit.SourceID, edit.TargetID)
		}
		if ok {
			applied++
		} else {
			skipped++
		}
	}
	return applied, skipped
}

// EdgeScore is the weighter's score for one graph edge.
type EdgeScore struct {
	Source string   `json:"source"`
	Target string   `json:"target"`
	Score  float64  `json:"score"`
	Tags   []string `json:"tags"`
}

// Diagnostics reports how an analysis ran.
type Diagnostics struct {
	BuildStats
	EigenvectorConverged bool  `json:"eigenvector_converged"`
	CommunityFallback    bool  `json:"community_fallback"`
	AnalyzeMillis        int64 `json:"analyze_ms"`
}

// Result is the outcome of one analysis.
type Result struct {
	CollectionID   string             `json:"collection_id"`
	CollectionName string             `json:"collection_name"`
	Graph          *graph.Export      `json:"graph"`
	Report         *analysis.Report   `json:"report"`
	Closeness      map[string]float64 `json:"closeness"`
	Eigenvector    map[string]float64 `json:"eigenvector"`
	EdgeScores     []EdgeScore        `json:"edge_scores"`
	SnapshotID     string             `json:"snapshot_id,omitempty"`
	Diagnostics    Diagnostics        `json:"diagnostics"`
}

// Analyze builds the collection's graph and runs the full analysis. When a
// report repository is configured the report is stored; a storage failure is
// logged and leaves SnapshotID empty.
func (s *Service) Analyze(ctx context.Context, col *collection.Collection) (*Result, error) {
	start := time.Now()

	g, stats, err := s.buildGraph(ctx, col)
	if err != nil {
		return nil, err
	}

	analyzeStart := time.Now()
	run := analysis.New(g, s.analysisOptions()).Run()
	analyzeTime := time.Since(analyzeStart)
	s.metrics.AnalyzeLatency.Record(analyzeTime)

	if run.CommunityFallback {
		s.metrics.CommunityFallbacks.Add(1)
		s.logger.Warn("community detection fell back to connected components", zap.String("collection", col.ID))
	}
	if !run.EigenvectorConverged && g.NodeCount() > 1 {
		s.metrics.EigenvectorFailures.Add(1)
		s.logger.Debug("eigenvector centrality did not converge", zap.String("collection", col.ID))
	}

	result := &Result{
		CollectionID:   col.ID,
		CollectionName: col.Name,
		Graph:          g.Export(),
		Report:         run.Report,
		Closeness:      run.Closeness,
		Eigenvector:    run.Eigenvector,
		EdgeScores:     s.scoreEdges(g),
		Diagnostics: Diagnostics{
			BuildStats:           stats,
			EigenvectorConverged: run.EigenvectorConverged,
			CommunityFallback:    run.CommunityFallback,
			AnalyzeMillis:        analyzeTime.Milliseconds(),
		},
	}

	if s.reports != nil {
		id, err := s.storeSnapshot(ctx, col, g, run.Report)
		if err != nil {
			s.metrics.StorageErrors.Add(1)
			s.logger.Warn("failed to store report snapshot", zap.String("collection", col.ID), zap.Error(err))
		}
		result.SnapshotID = id
	}

	s.metrics.AnalysesRun.Add(1)
	s.metrics.TotalLatency.Time(start)
	s.logger.Info("analysis complete",
		zap.String("collection", col.ID),
		zap.Int("nodes", g.NodeCount()),
		zap.Int("edges", g.EdgeCount()),
		zap.Float64("synergy_score", run.Report.SynergyScore),
		zap.Duration("elapsed", time.Since(start)),
	)
	return result, nil
}

// scoreEdges scores each edge with its interaction types plus the pair's
// shared tags.
func (s *Service) scoreEdges(g *graph.Graph) []EdgeScore {
	scores := make([]EdgeScore, 0, g.EdgeCount())
	for _, e := range g.Edges() {
		src, _ := g.Node(e.Source)
		dst, _ := g.Node(e.Target)

		tags := make([]string, 0, len(e.Types))
		for _, t := range e.Types {
			tags = append(tags, t.String())
		}
		tags = append(tags, s.weighter.PairTags(src.Card, dst.Card)...)

		scores = append(scores, EdgeScore{
			Source: e.Source,
			Target: e.Target,
			Score:  math.Round(s.weighter.Score(src.Card, dst.Card, tags)*1000) / 1000,
			Tags:   tags,
		})
	}
	return scores
}

func (s *Service) storeSnapshot(ctx context.Context, col *collection.Collection, g *graph.Graph, report *analysis.Report) (string, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}
	snapshot := &models.ReportSnapshot{
		CollectionID:   col.ID,
		CollectionName: col.Name,
		NodeCount:      g.NodeCount(),
		EdgeCount:      g.EdgeCount(),
		SynergyScore:   report.SynergyScore,
		ReportJSON:     data,
	}
	if err := s.reports.Save(ctx, snapshot); err != nil {
		return "", err
	}
	if keep := s.cfg.Storage.KeepReports; keep > 0 {
		if _, err := s.reports.Prune(ctx, col.ID, keep); err != nil {
			return snapshot.ID, fmt.Errorf("failed to prune snapshots: %w", err)
		}
	}
	return snapshot.ID, nil
}
