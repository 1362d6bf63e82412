package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ramonehamilton/seers-orb/internal/mtga/cards"
	"github.com/ramonehamilton/seers-orb/internal/mtga/collection"
	"github.com/ramonehamilton/seers-orb/internal/mtga/synergy/engine"
	"github.com/ramonehamilton/seers-orb/internal/mtga/synergy/graph"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type env struct {
	dir    string
	config string
	deck   string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	dir := t.TempDir()

	e := &env{
		dir:    dir,
		config: filepath.Join(dir, "config.toml"),
		deck:   filepath.Join(dir, "deck.json"),
	}
	cfg := fmt.Sprintf(`
[analysis]
detector_workers = 1

[storage]
enabled = true
path = %q
keep_reports = 5

[log]
level = "error"
`, filepath.Join(dir, "data", "orb.db"))
	require.NoError(t, os.WriteFile(e.config, []byte(cfg), 0o644))

	col := collection.New("Aristocrats", "")
	col.Add(&cards.Card{ID: "card1", Name: "Card1", TypeLine: "Artifact", OracleText: "Sacrifice a creature: Add {B}.", CMC: 2}, 1, "")
	col.Add(&cards.Card{ID: "card2", Name: "Card2", TypeLine: "Creature — Zombie", OracleText: "When this creature dies, draw a card.", CMC: 3, Keywords: []string{"Flying"}}, 1, "")
	col.Add(&cards.Card{ID: "card3", Name: "Card3", TypeLine: "Enchantment", OracleText: "Creatures with flying get +1/+1.", CMC: 2}, 1, "")
	require.NoError(t, collection.Save(e.deck, col))
	return e
}

func (e *env) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root, a := newRootCommand()
	t.Cleanup(func() { _ = a.close() })

	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--config", e.config}, args...))
	err := root.ExecuteContext(context.Background())
	_ = a.close()
	return out.String(), err
}

func (e *env) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, args...)
	require.NoError(t, err, "seers-orb %s", strings.Join(args, " "))
	return out
}

func (e *env) analyze(t *testing.T) *engine.Result {
	t.Helper()
	var result engine.Result
	require.NoError(t, json.Unmarshal([]byte(e.mustRun(t, "analyze", e.deck, "--json")), &result))
	return &result
}

func TestAnalyze_Summary(t *testing.T) {
	e := newEnv(t)

	out := e.mustRun(t, "analyze", e.deck)
	assert.Contains(t, out, "Aristocrats")
	assert.Contains(t, out, "0.683")
	assert.Contains(t, out, "Card2")
	assert.Contains(t, out, "death_chain")
	assert.Contains(t, out, "Snapshot:")
}

func TestAnalyze_JSONAndOutputFile(t *testing.T) {
	e := newEnv(t)
	output := filepath.Join(e.dir, "out", "result.json")

	out := e.mustRun(t, "analyze", e.deck, "--json", "--output", output)

	var result engine.Result
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 3, result.Graph.Stats.NodeCount)
	assert.Equal(t, 2, result.Graph.Stats.EdgeCount)
	assert.NotEmpty(t, result.SnapshotID)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.JSONEq(t, out, string(data))
}

func TestAnalyze_NoStore(t *testing.T) {
	e := newEnv(t)

	var result engine.Result
	out := e.mustRun(t, "--no-store", "analyze", e.deck, "--json")
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Empty(t, result.SnapshotID)
	assert.NoFileExists(t, filepath.Join(e.dir, "data", "orb.db"))

	_, err := e.run(t, "--no-store", "interaction", "add", e.deck, "card1", "card3", "combos_with")
	assert.ErrorIs(t, err, engine.ErrNoStorage)
}

func TestAnalyze_Errors(t *testing.T) {
	e := newEnv(t)

	_, err := e.run(t, "analyze")
	assert.Error(t, err)

	_, err = e.run(t, "analyze", filepath.Join(e.dir, "missing.json"))
	assert.Error(t, err)

	_, err = e.run(t, "analyze", filepath.Join(e.dir, "deck.csv"))
	assert.ErrorIs(t, err, collection.ErrUnknownFormat)
}

func TestInteraction_Lifecycle(t *testing.T) {
	e := newEnv(t)

	out := e.mustRun(t, "interaction", "add", e.deck, "Card1", "card3", "combos_with", "--weight", "0.9", "--description", "loop")
	assert.Contains(t, out, "added combos_with: card1 -> card3 (0.90)")
	e.mustRun(t, "interaction", "remove", e.deck, "card3", "CARD2")

	out = e.mustRun(t, "interaction", "list", e.deck)
	assert.Contains(t, out, "combos_with")
	assert.Contains(t, out, "remove")

	result := e.analyze(t)
	assert.Equal(t, 2, result.Graph.Stats.EdgeCount)
	assert.Equal(t, 2, result.Diagnostics.EditsApplied)

	out = e.mustRun(t, "interaction", "reset", e.deck)
	assert.Contains(t, out, "deleted 2 graph edits")
	assert.Contains(t, e.mustRun(t, "interaction", "list", e.deck), "no graph edits")
}

func TestInteraction_Errors(t *testing.T) {
	e := newEnv(t)

	_, err := e.run(t, "interaction", "add", e.deck, "card1", "Nope", "combos_with")
	assert.ErrorIs(t, err, engine.ErrUnknownCard)

	_, err = e.run(t, "interaction", "add", e.deck, "card1", "card2", "best_friends")
	assert.Error(t, err)

	_, err = e.run(t, "interaction", "remove", e.deck, "card1", "card1")
	assert.ErrorIs(t, err, engine.ErrSelfPair)
}

func TestInteraction_Types(t *testing.T) {
	out := newEnv(t).mustRun(t, "interaction", "types")
	assert.Contains(t, out, "combos_with")
	assert.Contains(t, out, "death_chain")
}

func TestReport(t *testing.T) {
	e := newEnv(t)

	_, err := e.run(t, "report", e.deck)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run analyze first")

	first := e.analyze(t)
	second := e.analyze(t)

	var stored engine.StoredReport
	require.NoError(t, json.Unmarshal([]byte(e.mustRun(t, "report", e.deck)), &stored))
	assert.Equal(t, second.SnapshotID, stored.ID)
	assert.Equal(t, second.Report.SynergyScore, stored.Report.SynergyScore)

	out := e.mustRun(t, "report", e.deck, "--history", "10")
	assert.Contains(t, out, first.SnapshotID)
	assert.Contains(t, out, second.SnapshotID)

	require.NoError(t, json.Unmarshal([]byte(e.mustRun(t, "report", e.deck, "--id", first.SnapshotID)), &stored))
	assert.Equal(t, first.SnapshotID, stored.ID)
}

func TestExport(t *testing.T) {
	e := newEnv(t)

	var export graph.Export
	require.NoError(t, json.Unmarshal([]byte(e.mustRun(t, "export", e.deck)), &export))
	assert.Len(t, export.Nodes, 3)
	assert.Len(t, export.Edges, 2)

	deck := filepath.Join(e.dir, "deck.txt")
	e.mustRun(t, "export", e.deck, "--deck", "--output", deck)
	data, err := os.ReadFile(deck)
	require.NoError(t, err)
	assert.Contains(t, string(data), "1 Card1")
}

func TestDB(t *testing.T) {
	e := newEnv(t)

	assert.Contains(t, e.mustRun(t, "db", "migrate"), "schema version 1")

	e.mustRun(t, "interaction", "add", e.deck, "card1", "card3", "protects")
	e.analyze(t)

	backup := strings.TrimSpace(e.mustRun(t, "db", "backup"))
	assert.FileExists(t, backup)
	assert.Equal(t, filepath.Join(e.dir, "data", "backups"), filepath.Dir(backup))
	assert.Contains(t, e.mustRun(t, "db", "backups"), filepath.Base(backup))

	assert.Contains(t, e.mustRun(t, "db", "purge", e.deck), "deleted 1 graph edits and 1 reports")
}

func TestConfig(t *testing.T) {
	e := newEnv(t)
	path := filepath.Join(e.dir, "fresh", "config.toml")

	out, err := e.run(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "keep_reports = 5")

	root, a := newRootCommand()
	t.Cleanup(func() { _ = a.close() })
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"--config", path, "config", "init"})
	require.NoError(t, root.ExecuteContext(context.Background()))
	assert.FileExists(t, path)

	err = Execute(context.Background(), []string{"--config", path, "--log-level", "error", "config", "init"})
	assert.Error(t, err, "init refuses to overwrite")
}

func TestVersion(t *testing.T) {
	out := newEnv(t).mustRun(t, "--version")
	assert.Equal(t, "dev\n", out)
}
