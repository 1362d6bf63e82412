package graph

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/seers-orb/internal/mtga/cards"
	"github.com/ramonehamilton/seers-orb/internal/mtga/synergy"
)

func testCards() []*cards.Card {
	return []*cards.Card{
		{ID: "a", Name: "Altar", TypeLine: "Artifact", CMC: 2, Colors: []string{}},
		{ID: "b", Name: "Bear", TypeLine: "Creature — Bear", CMC: 2, Colors: []string{"G"}},
		{ID: "c", Name: "Counterspell", TypeLine: "Instant", CMC: 2, Colors: []string{"U"}},
		{ID: "d", Name: "Divination", TypeLine: "Sorcery", CMC: 3, Colors: []string{"U"}},
	}
}

func interaction(src, dst string, typ synergy.InteractionType, weight float64, desc string) synergy.Interaction {
	return synergy.Interaction{SourceID: src, TargetID: dst, Type: typ, Weight: weight, Description: desc}
}

func TestBuild_UniqueNodes(t *testing.T) {
	cs := testCards()
	g := Build([]Entry{
		{Card: cs[0], Quantity: 1},
		{Card: cs[1], Quantity: 4, Category: "creatures", IsCommander: true},
		{Card: cs[1], Quantity: 2},
		{Card: nil},
	})

	if g.NodeCount() != 2 {
		t.Fatalf("NodeCount() = %d, want 2", g.NodeCount())
	}
	n, ok := g.Node("b")
	require.True(t, ok)
	assert.Equal(t, 4, n.Quantity, "first entry wins")
	assert.True(t, n.IsCommander)
	assert.Equal(t, []string{"a", "b"}, g.NodeIDs())
}

func TestIngest_MergesByUnorderedPair(t *testing.T) {
	g := FromCards(testCards())

	g.Ingest([]synergy.Interaction{
		interaction("a", "b", synergy.TypeMatters, 0.6, "first"),
		interaction("b", "a", synergy.Tutors, 0.9, "second"),
	})

	if g.EdgeCount() != 1 {
		t.Fatalf("EdgeCount() = %d, want 1", g.EdgeCount())
	}
	e, ok := g.Edge("b", "a")
	require.True(t, ok)
	assert.Equal(t, 0.9, e.Weight)
	assert.Equal(t, []synergy.InteractionType{synergy.TypeMatters, synergy.Tutors}, e.Types)
	assert.Equal(t, "first", e.Description, "first description is kept")
	assert.Equal(t, "a", e.Source)
	assert.Equal(t, "b", e.Target)

	w := g.Weighted()
	ga, _ := g.GonumID("a")
	gb, _ := g.GonumID("b")
	weight, ok := w.Weight(ga, gb)
	require.True(t, ok)
	assert.Equal(t, 0.9, weight, "gonum mirror tracks the merged weight")
}

func TestIngest_LowerWeightDoesNotReduce(t *testing.T) {
	g := FromCards(testCards())
	g.Ingest([]synergy.Interaction{
		interaction("a", "b", synergy.DeathChain, 0.8, ""),
		interaction("a", "b", synergy.SacrificeOutlet, 0.7, "later"),
	})

	e, _ := g.Edge("a", "b")
	assert.Equal(t, 0.8, e.Weight)
	assert.Equal(t, "later", e.Description, "an empty description is filled by the next non-empty one")
}

func TestIngest_Idempotent(t *testing.T) {
	batch := []synergy.Interaction{
		interaction("a", "b", synergy.DeathChain, 0.8, "x"),
		interaction("a", "b", synergy.SacrificeOutlet, 0.7, "y"),
		interaction("c", "d", synergy.Tribal, 0.5, "z"),
	}

	once := FromCards(testCards())
	once.Ingest(batch)

	twice := FromCards(testCards())
	twice.Ingest(batch)
	twice.Ingest(batch)

	if diff := cmp.Diff(once.Edges(), twice.Edges()); diff != "" {
		t.Errorf("second ingest changed edges (-once +twice):\n%s", diff)
	}
}

func TestIngest_SkipsUnknownAndSelfEdges(t *testing.T) {
	g := FromCards(testCards())
	g.Ingest([]synergy.Interaction{
		interaction("a", "zzz", synergy.Synergy, 0.5, ""),
		interaction("a", "a", synergy.Synergy, 0.5, ""),
	})
	assert.Equal(t, 0, g.EdgeCount())
}

func TestAddCustomInteraction(t *testing.T) {
	g := FromCards(testCards())

	assert.True(t, g.AddCustomInteraction(interaction("c", "d", synergy.CombosWith, 1.5, "user combo")))
	assert.False(t, g.AddCustomInteraction(interaction("c", "missing", synergy.CombosWith, 1, "")))

	e, ok := g.Edge("c", "d")
	require.True(t, ok)
	assert.Equal(t, 1.0, e.Weight, "weights are clamped to 1")
	assert.Equal(t, []synergy.InteractionType{synergy.CombosWith}, e.Types)
}

func TestRemoveInteraction(t *testing.T) {
	g := FromCards(testCards())
	g.Ingest([]synergy.Interaction{interaction("a", "b", synergy.Synergy, 0.5, "")})

	assert.False(t, g.RemoveInteraction("a", "c"), "missing edge is a no-op")
	assert.False(t, g.RemoveInteraction("x", "y"), "unknown cards are a no-op")
	assert.True(t, g.RemoveInteraction("b", "a"))
	assert.Equal(t, 0, g.EdgeCount())
	assert.Equal(t, 0, g.Degree("a"))
	assert.Empty(t, g.Neighbors("a"))
}

func TestRemoveCard(t *testing.T) {
	g := FromCards(testCards())
	g.Ingest([]synergy.Interaction{
		interaction("a", "b", synergy.Synergy, 0.5, ""),
		interaction("b", "c", synergy.Synergy, 0.5, ""),
	})

	require.True(t, g.RemoveCard("b"))
	assert.False(t, g.RemoveCard("b"))
	assert.Equal(t, 3, g.NodeCount())
	assert.Equal(t, 0, g.EdgeCount())
	assert.Equal(t, []string{"a", "c", "d"}, g.NodeIDs())
	assert.Equal(t, []string{"a", "c", "d"}, g.Isolated())
}

func TestQueries(t *testing.T) {
	g := FromCards(testCards())
	g.Ingest([]synergy.Interaction{
		interaction("c", "b", synergy.Tribal, 0.5, ""),
		interaction("b", "a", synergy.DeathChain, 0.8, ""),
		interaction("a", "b", synergy.Tribal, 0.7, ""),
	})

	t.Run("neighbors in node order", func(t *testing.T) {
		assert.Equal(t, []string{"a", "c"}, g.Neighbors("b"))
		assert.Nil(t, g.Neighbors("unknown"))
	})

	t.Run("node interaction types", func(t *testing.T) {
		assert.Equal(t, []synergy.InteractionType{synergy.Tribal, synergy.DeathChain}, g.NodeInteractionTypes("b"))
		assert.Empty(t, g.NodeInteractionTypes("d"))
	})

	t.Run("pairs by type", func(t *testing.T) {
		assert.Equal(t, []Pair{{Source: "c", Target: "b"}, {Source: "b", Target: "a"}}, g.PairsByType(synergy.Tribal))
		assert.Empty(t, g.PairsByType(synergy.Tutors))
	})

	t.Run("isolated", func(t *testing.T) {
		assert.Equal(t, []string{"d"}, g.Isolated())
	})

	t.Run("most connected", func(t *testing.T) {
		got := g.MostConnected(3)
		want := []NodeDegree{{ID: "b", Degree: 2}, {ID: "a", Degree: 1}, {ID: "c", Degree: 1}}
		assert.Equal(t, want, got)
		assert.Nil(t, g.MostConnected(0))
		assert.Len(t, g.MostConnected(100), 4)
	})

	t.Run("components", func(t *testing.T) {
		assert.Equal(t, [][]string{{"a", "b", "c"}, {"d"}}, g.Components())
	})
}

func TestDensity(t *testing.T) {
	tests := []struct {
		name  string
		cards []*cards.Card
		edges []synergy.Interaction
		want  float64
	}{
		{"empty", nil, nil, 0},
		{"single node", testCards()[:1], nil, 0},
		{"no edges", testCards(), nil, 0},
		{
			"two of six edges",
			testCards(),
			[]synergy.Interaction{
				interaction("a", "b", synergy.Synergy, 1, ""),
				interaction("c", "d", synergy.Synergy, 1, ""),
			},
			2.0 / 6.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := FromCards(tt.cards)
			g.Ingest(tt.edges)
			assert.InDelta(t, tt.want, g.Density(), 1e-12)
		})
	}
}

func TestExport(t *testing.T) {
	cs := testCards()
	cs[0].ImageURI = "https://img.example/altar.jpg"
	g := Build([]Entry{
		{Card: cs[0], Quantity: 1, Category: "ramp"},
		{Card: cs[1], Quantity: 3, IsCommander: true},
		{Card: cs[2], Quantity: 2},
		{Card: &cards.Card{ID: "x", Name: "Token"}, Quantity: 1},
	})
	g.Ingest([]synergy.Interaction{
		interaction("a", "b", synergy.DeathChain, 0.8, "sac"),
		interaction("a", "b", synergy.SacrificeOutlet, 0.7, ""),
	})

	out := g.Export()

	require.Len(t, out.Nodes, 4)
	altar := out.Nodes[0]
	assert.Equal(t, ExportNode{
		ID:       "a",
		Label:    "Altar",
		TypeTags: []string{cards.TypeArtifact},
		Cost:     2,
		Colors:   []string{},
		Quantity: 1,
		Category: "ramp",
		ImageRef: "https://img.example/altar.jpg",
		Color:    "#9E9E9E",
		Size:     35,
	}, altar)
	assert.Equal(t, "#4CAF50", out.Nodes[1].Color)
	assert.True(t, out.Nodes[1].IsCommander)
	assert.Equal(t, 30, out.Nodes[2].Size)
	assert.Equal(t, DefaultNodeColor, out.Nodes[3].Color)
	assert.Equal(t, []string{}, out.Nodes[3].TypeTags)

	require.Len(t, out.Edges, 1)
	edge := out.Edges[0]
	assert.Equal(t, "a-b", edge.ID)
	assert.Equal(t, synergy.DeathChain.Color(), edge.Color)
	assert.Equal(t, "Death Trigger Chain", edge.Label)
	assert.Equal(t, 0.8, edge.Weight)

	assert.Equal(t, Stats{NodeCount: 4, EdgeCount: 1, Density: 1.0 / 6.0, ComponentCount: 3}, out.Stats)

	data, err := json.Marshal(out.Edges[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), `"interaction_types":["death_chain","sacrifice_outlet"]`)
}

func TestTypeColor_PriorityOrder(t *testing.T) {
	// Artifact creatures are colored as creatures.
	assert.Equal(t, "#4CAF50", TypeColor([]string{cards.TypeCreature, cards.TypeArtifact}))
	assert.Equal(t, "#8D6E63", TypeColor([]string{cards.TypeLand}))
	assert.Equal(t, DefaultNodeColor, TypeColor(nil))
}

func TestAdjacencyMatrix(t *testing.T) {
	g := FromCards(testCards()[:3])
	g.Ingest([]synergy.Interaction{interaction("c", "a", synergy.Synergy, 0.4, "")})

	ids, matrix := g.AdjacencyMatrix()
	assert.Equal(t, []string{"a", "b", "c"}, ids)
	assert.Equal(t, [][]float64{
		{0, 0, 0.4},
		{0, 0, 0},
		{0.4, 0, 0},
	}, matrix)
}

func TestEmptyGraph(t *testing.T) {
	g := New()
	assert.Equal(t, 0, g.Degree("nope"))
	assert.Empty(t, g.Isolated())
	assert.Empty(t, g.Components())

	out := g.Export()
	assert.Equal(t, Stats{}, out.Stats)
	assert.NotNil(t, out.Nodes)
	assert.NotNil(t, out.Edges)
}
