package metrics

import (
	"sync/atomic"
	"time"
)

// AnalysisMetrics tracks the cost and outcome of synergy analyses.
type AnalysisMetrics struct {
	// Stage latencies
	DetectLatency  *Histogram
	BuildLatency   *Histogram
	AnalyzeLatency *Histogram
	TotalLatency   *Histogram

	// Counters
	AnalysesRun          atomic.Uint64
	InteractionsDetected atomic.Uint64
	EditsReplayed        atomic.Uint64
	CommunityFallbacks   atomic.Uint64
	EigenvectorFailures  atomic.Uint64
	StorageErrors        atomic.Uint64

	startTime time.Time
}

// NewAnalysisMetrics creates a metrics collector.
func NewAnalysisMetrics() *AnalysisMetrics {
	return &AnalysisMetrics{
		DetectLatency:  NewHistogram(1000),
		BuildLatency:   NewHistogram(1000),
		AnalyzeLatency: NewHistogram(1000),
		TotalLatency:   NewHistogram(1000),
		startTime:      time.Now(),
	}
}

// AnalysisStats is a snapshot of AnalysisMetrics.
type AnalysisStats struct {
	DetectLatency  LatencyStats `json:"detect_latency"`
	BuildLatency   LatencyStats `json:"build_latency"`
	AnalyzeLatency LatencyStats `json:"analyze_latency"`
	TotalLatency   LatencyStats `json:"total_latency"`

	AnalysesRun          uint64 `json:"analyses_run"`
	InteractionsDetected uint64 `json:"interactions_detected"`
	EditsReplayed        uint64 `json:"edits_replayed"`
	CommunityFallbacks   uint64 `json:"community_fallbacks"`
	EigenvectorFailures  uint64 `json:"eigenvector_failures"`
	StorageErrors        uint64 `json:"storage_errors"`

	Uptime string `json:"uptime"`
}

// Stats returns a snapshot of the current statistics.
func (m *AnalysisMetrics) Stats() *AnalysisStats {
	return &AnalysisStats{
		DetectLatency:        m.DetectLatency.Stats(),
		BuildLatency:         m.BuildLatency.Stats(),
		AnalyzeLatency:       m.AnalyzeLatency.Stats(),
		TotalLatency:         m.TotalLatency.Stats(),
		AnalysesRun:          m.AnalysesRun.Load(),
		InteractionsDetected: m.InteractionsDetected.Load(),
		EditsReplayed:        m.EditsReplayed.Load(),
		CommunityFallbacks:   m.CommunityFallbacks.Load(),
		EigenvectorFailures:  m.EigenvectorFailures.Load(),
		StorageErrors:        m.StorageErrors.Load(),
		Uptime:               time.Since(m.startTime).Round(time.Second).String(),
	}
}
