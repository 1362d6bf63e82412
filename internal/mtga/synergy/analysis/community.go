package analysis

import (
	"fmt"
	"sort"

	gonumgraph "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/community"
)

// Communities partitions the cards with Louvain modularity optimization.
// Below two nodes the whole node set is one community; when optimization
// fails the connected components are returned instead. The partition is a
// heuristic and may vary between runs.
func (a *Analyzer) Communities() [][]string {
	communities, _ := a.communities()
	return communities
}

// communities also reports whether the components fallback was used after a
// failed optimization.
func (a *Analyzer) communities() (communities [][]string, fellBack bool) {
	switch n := a.g.NodeCount(); {
	case n == 0:
		return [][]string{}, false
	case n == 1:
		return [][]string{a.g.NodeIDs()}, false
	}

	var total float64
	for _, e := range a.g.Edges() {
		total += e.Weight
	}
	// Modularity is undefined without edge weight; every card stands alone.
	if total == 0 {
		return a.g.Components(), false
	}

	raw, err := detectCommunities(a.g.Weighted())
	if err != nil || len(raw) == 0 {
		return a.g.Components(), true
	}
	return a.orderCommunities(raw), false
}

// detectCommunities is replaced in tests to force the fallback.
var detectCommunities = modularize

func modularize(g gonumgraph.Graph) (communities [][]gonumgraph.Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("community detection: %v", r)
		}
	}()
	return community.Modularize(g, 1, nil).Communities(), nil
}

// orderCommunities maps gonum nodes back to card IDs. Cards keep node order
// within a community and communities are ordered by their earliest card.
func (a *Analyzer) orderCommunities(raw [][]gonumgraph.Node) [][]string {
	out := make([][]string, 0, len(raw))
	for _, comm := range raw {
		if len(comm) == 0 {
			continue
		}
		sort.Slice(comm, func(i, j int) bool { return comm[i].ID() < comm[j].ID() })
		ids := make([]string, 0, len(comm))
		for _, node := range comm {
			if id, ok := a.g.CardID(node.ID()); ok {
				ids = append(ids, id)
			}
		}
		if len(ids) > 0 {
			out = append(out, ids)
		}
	}

	first := func(c []string) int64 {
		gid, _ := a.g.GonumID(c[0])
		return gid
	}
	sort.SliceStable(out, func(i, j int) bool { return first(out[i]) < first(out[j]) })
	return out
}
