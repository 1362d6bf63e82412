// Package synergy detects heuristic interactions between Magic cards.
//
// Detection evaluates a fixed table of rules over every unordered pair of
// unique cards. It is a best-effort classifier, not a rules engine.
package synergy

import (
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/ramonehamilton/seers-orb/internal/mtga/cards"
)

// Detector evaluates a rule table over card pairs.
type Detector struct {
	rules   []Rule
	workers int
}

// DetectorOption configures a Detector.
type DetectorOption func(*Detector)

// WithRules replaces the default rule table.
func WithRules(rules []Rule) DetectorOption {
	return func(d *Detector) {
		d.rules = rules
	}
}

// WithWorkers sets how many goroutines share the pairwise scan.
// Zero or negative uses GOMAXPROCS; one scans sequentially.
func WithWorkers(n int) DetectorOption {
	return func(d *Detector) {
		d.workers = n
	}
}

// NewDetector creates a detector with the default rule table.
func NewDetector(opts ...DetectorOption) *Detector {
	d := &Detector{
		rules:   DefaultRules(),
		workers: 1,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.workers <= 0 {
		d.workers = runtime.GOMAXPROCS(0)
	}
	return d
}

// Detect returns all interactions among the given cards using the default rules.
func Detect(cs []*cards.Card) []Interaction {
	return NewDetector().Detect(cs)
}

// Detect finds every interaction between the unique cards in cs.
// Cards are de-duplicated by ID (first occurrence wins) and nil entries are skipped.
// The result order depends only on the input order: pairs (i, j) with i < j in
// input order, rules in table order, forward direction before reverse.
func (d *Detector) Detect(cs []*cards.Card) []Interaction {
	facts := uniqueFacts(cs)
	if len(facts) < 2 {
		return nil
	}

	// One bucket per outer index keeps the merge order identical to a
	// sequential scan regardless of which worker finishes first.
	buckets := make([][]Interaction, len(facts))

	scanRow := func(i int) {
		var row []Interaction
		for j := i + 1; j < len(facts); j++ {
			row = append(row, d.DetectPair(facts[i], facts[j])...)
		}
		buckets[i] = row
	}

	if d.workers == 1 || len(facts) < 3 {
		for i := range facts {
			scanRow(i)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(d.workers)
		for i := range facts {
			g.Go(func() error {
				scanRow(i)
				return nil
			})
		}
		_ = g.Wait() // rows never fail
	}

	var interactions []Interaction
	for _, row := range buckets {
		interactions = append(interactions, row...)
	}
	return interactions
}

// DetectPair evaluates every rule for one pair of cards.
func (d *Detector) DetectPair(a, b *Facts) []Interaction {
	var out []Interaction
	for i := range d.rules {
		rule := &d.rules[i]
		if rule.Symmetric {
			if rule.Applies(a, b) {
				out = append(out, newInteraction(rule, a, b, true))
			}
			continue
		}
		if rule.Applies(a, b) {
			out = append(out, newInteraction(rule, a, b, false))
		}
		if rule.Applies(b, a) {
			out = append(out, newInteraction(rule, b, a, false))
		}
	}
	return out
}

func newInteraction(rule *Rule, src, dst *Facts, bidirectional bool) Interaction {
	in := Interaction{
		SourceID:      src.Card.ID,
		TargetID:      dst.Card.ID,
		Type:          rule.Type,
		Weight:        ClampWeight(rule.Weight(src, dst)),
		Bidirectional: bidirectional,
	}
	if rule.Describe != nil {
		in.Description = rule.Describe(src, dst)
	}
	return in
}

func uniqueFacts(cs []*cards.Card) []*Facts {
	seen := make(map[string]bool, len(cs))
	facts := make([]*Facts, 0, len(cs))
	for _, c := range cs {
		if c == nil || seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		facts = append(facts, NewFacts(c))
	}
	return facts
}

// ClampWeight keeps a weight inside [0, 1]. NaN becomes 0.
func ClampWeight(w float64) float64 {
	switch {
	case math.IsNaN(w), w < 0:
		return 0
	case w > 1:
		return 1
	}
	return w
}
