package engine

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ramonehamilton/seers-orb/internal/config"
	"github.com/ramonehamilton/seers-orb/internal/mtga/cards"
	"github.com/ramonehamilton/seers-orb/internal/mtga/collection"
	"github.com/ramonehamilton/seers-orb/internal/mtga/synergy"
	"github.com/ramonehamilton/seers-orb/internal/storage"
	"github.com/ramonehamilton/seers-orb/internal/storage/models"
	"github.com/ramonehamilton/seers-orb/internal/storage/repository"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// threeCardCollection is a sacrifice outlet, a creature with a death trigger
// and an anthem that cares about creatures.
func threeCardCollection() *collection.Collection {
	col := collection.New("Three Cards", "")
	col.Add(&cards.Card{ID: "card1", Name: "Card1", TypeLine: "Artifact", OracleText: "Sacrifice a creature: Add {B}.", CMC: 2}, 1, "")
	col.Add(&cards.Card{ID: "card2", Name: "Card2", TypeLine: "Creature — Zombie", OracleText: "When this creature dies, draw a card.", CMC: 3, Keywords: []string{"Flying"}}, 1, "")
	col.Add(&cards.Card{ID: "card3", Name: "Card3", TypeLine: "Enchantment", OracleText: "Creatures with flying get +1/+1.", CMC: 2}, 1, "")
	return col
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Analysis.DetectorWorkers = 1
	return cfg
}

func withStorage(t *testing.T, cfg *config.Config, opts ...Option) *Service {
	t.Helper()

	db, err := storage.OpenMemory(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	opts = append([]Option{WithEditRepository(db.GraphEdits()), WithReportRepository(db.Reports())}, opts...)
	return New(cfg, opts...)
}

func TestAnalyze_ThreeCardScenario(t *testing.T) {
	svc := New(testConfig())

	result, err := svc.Analyze(context.Background(), threeCardCollection())
	require.NoError(t, err)

	assert.Equal(t, 3, result.Graph.Stats.NodeCount)
	assert.Equal(t, 2, result.Graph.Stats.EdgeCount)
	assert.Equal(t, 1, result.Graph.Stats.ComponentCount)

	require.Len(t, result.Graph.Edges, 2)
	first := result.Graph.Edges[0]
	assert.Equal(t, "card1", first.Source)
	assert.Equal(t, "card2", first.Target)
	assert.Equal(t, 0.8, first.Weight)
	assert.Equal(t, []synergy.InteractionType{synergy.DeathChain, synergy.SacrificeOutlet, synergy.TypeMatters}, first.InteractionTypes)
	assert.Equal(t, synergy.DeathChain.Color(), first.Color)

	report := result.Report
	assert.Equal(t, 0.683, report.SynergyScore)
	assert.Equal(t, 1.0, report.Centrality.Degree["card2"])
	assert.Equal(t, 0.5, report.Centrality.Degree["card1"])
	require.NotEmpty(t, report.KeyCards)
	assert.Equal(t, "card2", report.KeyCards[0].CardID)
	assert.Empty(t, report.WeakLinks)
	assert.Equal(t, 1, report.InteractionDistribution["death_chain"])
	assert.Equal(t, 2, report.InteractionDistribution["type_matters"])

	require.Len(t, result.EdgeScores, 2)
	assert.Equal(t, []string{"death_chain", "sacrifice_outlet", "type_matters"}, result.EdgeScores[0].Tags[:3])
	assert.GreaterOrEqual(t, result.EdgeScores[0].Score, 3.0)

	assert.Equal(t, 4, result.Diagnostics.Interactions)
	assert.Empty(t, result.SnapshotID, "no report repository configured")
	assert.Equal(t, uint64(1), svc.Metrics().AnalysesRun.Load())
	assert.Equal(t, uint64(4), svc.Metrics().InteractionsDetected.Load())

	data, err := json.Marshal(result)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"edge_scores"`)
	assert.Contains(t, string(data), `"interactions":4`)
}

func TestAnalyze_EmptyAndNil(t *testing.T) {
	svc := New(nil)

	_, err := svc.Analyze(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNilInput)

	result, err := svc.Analyze(context.Background(), collection.New("Empty", ""))
	require.NoError(t, err)
	assert.Equal(t, 0, result.Graph.Stats.NodeCount)
	assert.Equal(t, 0.0, result.Report.SynergyScore)
	assert.Empty(t, result.Report.KeyCards)
	assert.Empty(t, result.EdgeScores)
}

func TestAnalyze_ZeroWeakLinkThresholdIsHonored(t *testing.T) {
	col := collection.New("Pair", "")
	col.Add(&cards.Card{ID: "a", Name: "A", TypeLine: "Land"}, 1, "")
	col.Add(&cards.Card{ID: "b", Name: "B", TypeLine: "Land"}, 1, "")

	cfg := testConfig()
	cfg.Analysis.WeakLinkThreshold = 0
	require.NoError(t, cfg.Validate())

	result, err := New(cfg).Analyze(context.Background(), col)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Graph.Stats.EdgeCount)
	assert.Empty(t, result.Report.WeakLinks)

	result, err = New(testConfig()).Analyze(context.Background(), col)
	require.NoError(t, err)
	assert.Len(t, result.Report.WeakLinks, 2)
}

func TestAnalyze_CommanderFlag(t *testing.T) {
	col := threeCardCollection()
	col.Commander = "card2"

	g, err := New(testConfig()).BuildGraph(context.Background(), col)
	require.NoError(t, err)

	n, ok := g.Node("card2")
	require.True(t, ok)
	assert.True(t, n.IsCommander)
	n, _ = g.Node("card1")
	assert.False(t, n.IsCommander)
}

func TestEdits_ReplayedOnRebuild(t *testing.T) {
	ctx := context.Background()
	svc := withStorage(t, testConfig())
	col := threeCardCollection()

	require.NoError(t, svc.AddCustomInteraction(ctx, col, synergy.Interaction{
		SourceID:    "card1",
		TargetID:    "card3",
		Type:        synergy.CombosWith,
		Weight:      1.4,
		Description: "Tested combo",
	}))
	require.NoError(t, svc.RemoveInteraction(ctx, col, "card2", "card3"))

	edits, err := svc.Edits(ctx, col.ID)
	require.NoError(t, err)
	require.Len(t, edits, 2)
	assert.Equal(t, 1.0, edits[0].Weight, "weights are clamped before storage")

	for i := 0; i < 2; i++ {
		g, err := svc.BuildGraph(ctx, col)
		require.NoError(t, err)

		custom, ok := g.Edge("card3", "card1")
		require.True(t, ok)
		assert.Equal(t, 1.0, custom.Weight)
		assert.Equal(t, "Tested combo", custom.Description)

		_, ok = g.Edge("card2", "card3")
		assert.False(t, ok, "removed edge stays removed after rebuild")
		_, ok = g.Edge("card1", "card2")
		assert.True(t, ok)
	}

	result, err := svc.Analyze(ctx, col)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Diagnostics.EditsApplied)
	assert.Equal(t, 0, result.Diagnostics.EditsSkipped)

	n, err := svc.ResetEdits(ctx, col.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	g, err := svc.BuildGraph(ctx, col)
	require.NoError(t, err)
	_, ok := g.Edge("card2", "card3")
	assert.True(t, ok, "detected edge returns after reset")
}

func TestEdits_SkippedWhenCardLeaves(t *testing.T) {
	ctx := context.Background()
	svc := withStorage(t, testConfig())
	col := threeCardCollection()

	require.NoError(t, svc.AddCustomInteraction(ctx, col, synergy.Interaction{SourceID: "card1", TargetID: "card3", Type: synergy.Protects, Weight: 0.5}))
	require.True(t, col.Remove("card3", 1))

	result, err := svc.Analyze(ctx, col)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Diagnostics.EditsApplied)
	assert.Equal(t, 1, result.Diagnostics.EditsSkipped)
	assert.Equal(t, 2, result.Graph.Stats.NodeCount)
}

func TestEdits_Validation(t *testing.T) {
	ctx := context.Background()
	col := threeCardCollection()

	noStore := New(testConfig())
	assert.ErrorIs(t, noStore.AddCustomInteraction(ctx, col, synergy.Interaction{SourceID: "card1", TargetID: "card2"}), ErrNoStorage)
	assert.ErrorIs(t, noStore.RemoveInteraction(ctx, col, "card1", "card2"), ErrNoStorage)
	_, err := noStore.Edits(ctx, col.ID)
	assert.ErrorIs(t, err, ErrNoStorage)
	_, err = noStore.ResetEdits(ctx, col.ID)
	assert.ErrorIs(t, err, ErrNoStorage)
	_, err = noStore.LatestReport(ctx, col.ID)
	assert.ErrorIs(t, err, ErrNoStorage)

	svc := withStorage(t, testConfig())
	assert.ErrorIs(t, svc.AddCustomInteraction(ctx, col, synergy.Interaction{SourceID: "card1", TargetID: "card1"}), ErrSelfPair)
	assert.ErrorIs(t, svc.AddCustomInteraction(ctx, col, synergy.Interaction{SourceID: "card1", TargetID: "nope"}), ErrUnknownCard)
	assert.ErrorIs(t, svc.AddCustomInteraction(ctx, col, synergy.Interaction{SourceID: "card1", TargetID: "card2", Type: synergy.InteractionType(99)}), synergy.ErrUnknownInteractionType)
	assert.ErrorIs(t, svc.RemoveInteraction(ctx, nil, "card1", "card2"), ErrNilInput)

	edits, err := svc.Edits(ctx, col.ID)
	require.NoError(t, err)
	assert.Empty(t, edits)
}

func TestAnalyze_StoresAndPrunesSnapshots(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.Storage.KeepReports = 2
	svc := withStorage(t, cfg)
	col := threeCardCollection()

	var last *Result
	for i := 0; i < 3; i++ {
		result, err := svc.Analyze(ctx, col)
		require.NoError(t, err)
		require.NotEmpty(t, result.SnapshotID)
		last = result
	}

	stored, err := svc.LatestReport(ctx, col.ID)
	require.NoError(t, err)
	assert.Equal(t, last.SnapshotID, stored.ID)
	assert.Equal(t, last.Report.SynergyScore, stored.Report.SynergyScore)
	assert.Equal(t, last.Report.KeyCards, stored.Report.KeyCards)

	_, err = svc.LatestReport(ctx, "other")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

type failingReports struct {
	repository.ReportRepository
}

func (failingReports) Save(context.Context, *models.ReportSnapshot) error {
	return errors.New("disk full")
}

func TestAnalyze_SnapshotFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	svc := New(testConfig(), WithReportRepository(failingReports{}), WithLogger(zap.New(core)))

	result, err := svc.Analyze(context.Background(), threeCardCollection())
	require.NoError(t, err)
	assert.Empty(t, result.SnapshotID)
	assert.Equal(t, uint64(1), svc.Metrics().StorageErrors.Load())

	entries := logs.FilterMessage("failed to store report snapshot").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "engine", entries[0].LoggerName)
}

func TestWithTagExtractor(t *testing.T) {
	svc := New(testConfig(), WithTagExtractor(nil))

	result, err := svc.Analyze(context.Background(), threeCardCollection())
	require.NoError(t, err)
	for _, es := range result.EdgeScores {
		for _, tag := range es.Tags {
			_, err := synergy.ParseInteractionType(tag)
			assert.NoError(t, err, "only interaction types without an extractor, got %q", tag)
		}
	}
}
