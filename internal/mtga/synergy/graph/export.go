package graph

import (
	"github.com/ramonehamilton/seers-orb/internal/mtga/cards"
	"github.com/ramonehamilton/seers-orb/internal/mtga/synergy"
)

// Node sizing for the presentation layer.
const (
	BaseNodeSize    = 30
	NodeSizePerEdge = 5
)

// DefaultNodeColor is used for cards with none of the known card types.
const DefaultNodeColor = "#607D8B"

var typeColors = map[string]string{
	cards.TypeCreature:     "#4CAF50",
	cards.TypeLand:         "#8D6E63",
	cards.TypeInstant:      "#2196F3",
	cards.TypeSorcery:      "#F44336",
	cards.TypeArtifact:     "#9E9E9E",
	cards.TypeEnchantment:  "#9C27B0",
	cards.TypePlaneswalker: "#FF9800",
}

// TypeColor returns the node color for the first known type in typeTags.
func TypeColor(typeTags []string) string {
	for _, t := range typeTags {
		if c, ok := typeColors[t]; ok {
			return c
		}
	}
	return DefaultNodeColor
}

// ExportNode is a node as consumed by the presentation layer.
type ExportNode struct {
	ID          string   `json:"id"`
	Label       string   `json:"label"`
	TypeTags    []string `json:"type_tags"`
	Cost        float64  `json:"cost"`
	Colors      []string `json:"colors"`
	Quantity    int      `json:"quantity"`
	Category    string   `json:"category"`
	ImageRef    string   `json:"image_ref"`
	IsCommander bool     `json:"is_commander"`
	Color       string   `json:"color"`
	Size        int      `json:"size"`
}

// ExportEdge is an edge as consumed by the presentation layer.
type ExportEdge struct {
	ID               string                    `json:"id"`
	Source           string                    `json:"source"`
	Target           string                    `json:"target"`
	InteractionTypes []synergy.InteractionType `json:"interaction_types"`
	Weight           float64                   `json:"weight"`
	Description      string                    `json:"description"`
	Color            string                    `json:"color"`
	Label            string                    `json:"label"`
}

// Stats are aggregate graph figures.
type Stats struct {
	NodeCount      int     `json:"node_count"`
	EdgeCount      int     `json:"edge_count"`
	Density        float64 `json:"density"`
	ComponentCount int     `json:"component_count"`
}

// Export is the full presentation structure of a graph.
type Export struct {
	Nodes []ExportNode `json:"nodes"`
	Edges []ExportEdge `json:"edges"`
	Stats Stats        `json:"stats"`
}

// Export renders nodes, edges and stats in graph order.
func (g *Graph) Export() *Export {
	out := &Export{
		Nodes: make([]ExportNode, 0, len(g.nodes)),
		Edges: make([]ExportEdge, 0, len(g.order)),
	}

	for _, n := range g.nodes {
		typeTags := n.Card.Types()
		if typeTags == nil {
			typeTags = []string{}
		}
		colors := n.Card.Colors
		if colors == nil {
			colors = []string{}
		}
		out.Nodes = append(out.Nodes, ExportNode{
			ID:          n.Card.ID,
			Label:       n.Card.Name,
			TypeTags:    typeTags,
			Cost:        n.Card.CMC,
			Colors:      colors,
			Quantity:    n.Quantity,
			Category:    n.Category,
			ImageRef:    n.Card.ImageURI,
			IsCommander: n.IsCommander,
			Color:       TypeColor(typeTags),
			Size:        BaseNodeSize + NodeSizePerEdge*g.Degree(n.Card.ID),
		})
	}

	for _, e := range g.Edges() {
		color, label := synergy.DefaultEdgeColor, synergy.Synergy.Label()
		if primary, ok := e.PrimaryType(); ok {
			color, label = primary.Color(), primary.Label()
		}
		types := make([]synergy.InteractionType, len(e.Types))
		copy(types, e.Types)
		out.Edges = append(out.Edges, ExportEdge{
			ID:               e.Source + "-" + e.Target,
			Source:           e.Source,
			Target:           e.Target,
			InteractionTypes: types,
			Weight:           e.Weight,
			Description:      e.Description,
			Color:            color,
			Label:            label,
		})
	}

	out.Stats = Stats{
		NodeCount:      len(g.nodes),
		EdgeCount:      len(g.order),
		Density:        g.Density(),
		ComponentCount: len(g.Components()),
	}
	return out
}

// AdjacencyMatrix returns the node IDs and the symmetric weight matrix in the
// same order. Missing edges are 0.
func (g *Graph) AdjacencyMatrix() ([]string, [][]float64) {
	ids := g.NodeIDs()
	pos := make(map[string]int, len(ids))
	for i, id := range ids {
		pos[id] = i
	}

	matrix := make([][]float64, len(ids))
	for i := range matrix {
		matrix[i] = make([]float64, len(ids))
	}
	for _, e := range g.Edges() {
		i, j := pos[e.Source], pos[e.Target]
		matrix[i][j] = e.Weight
		matrix[j][i] = e.Weight
	}
	return ids, matrix
}
