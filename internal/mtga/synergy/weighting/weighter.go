// Package weighting scores card pairs from category tags:
//
//	S(A,B) = Σ alpha(category(tag)) + C
//
// where alpha comes from a per-category weight table and C is a bonus added
// once when either card names the other in its rules text.
package weighting

import (
	"strings"

	"github.com/ramonehamilton/seers-orb/internal/mtga/cards"
)

// DefaultNameBonus is the constant C added for a direct name reference.
const DefaultNameBonus = 5.0

var defaultCategoryWeights = map[string]float64{
	CategoryEvasion:    1.2,
	CategoryCombat:     1.1,
	CategoryProtection: 1.3,
	CategorySpeed:      1.1,
	CategoryRecursion:  1.5,
	CategoryEconomy:    1.4,
	CategoryAdvantage:  1.3,
	CategoryRemoval:    1.2,
	CategoryTokens:     1.5,
	CategoryCounters:   1.5,
	CategoryGraveyard:  1.4,
	CategoryOther:      1.0,
}

// DefaultCategoryWeights returns a copy of the built-in alpha table.
func DefaultCategoryWeights() map[string]float64 {
	out := make(map[string]float64, len(defaultCategoryWeights))
	for k, v := range defaultCategoryWeights {
		out[k] = v
	}
	return out
}

// Weighter computes pair scores. It is immutable after construction.
type Weighter struct {
	weights   map[string]float64
	nameBonus float64
	extractor TagExtractor
}

// Option configures a Weighter.
type Option func(*Weighter)

// WithCategoryWeights overrides a subset of the default alphas. Category names
// are matched case-insensitively; categories not named keep their default.
func WithCategoryWeights(overrides map[string]float64) Option {
	return func(w *Weighter) {
		for k, v := range overrides {
			w.weights[strings.ToLower(k)] = v
		}
	}
}

// WithNameBonus sets the constant C.
func WithNameBonus(c float64) Option {
	return func(w *Weighter) {
		w.nameBonus = c
	}
}

// WithTagExtractor sets the extractor used by PairTags. Nil disables text
// extraction.
func WithTagExtractor(e TagExtractor) Option {
	return func(w *Weighter) {
		w.extractor = e
	}
}

// New creates a weighter with the default table, the default name bonus and
// the lexicon keyword tagger.
func New(opts ...Option) *Weighter {
	w := &Weighter{
		weights:   DefaultCategoryWeights(),
		nameBonus: DefaultNameBonus,
		extractor: NewKeywordTagger(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Weights returns a copy of the effective alpha table.
func (w *Weighter) Weights() map[string]float64 {
	out := make(map[string]float64, len(w.weights))
	for k, v := range w.weights {
		out[k] = v
	}
	return out
}

// NameBonus returns the constant C.
func (w *Weighter) NameBonus() float64 {
	return w.nameBonus
}

// Alpha returns the weight of a tag's category, falling back to "other".
func (w *Weighter) Alpha(tag string) float64 {
	if alpha, ok := w.weights[Category(tag)]; ok {
		return alpha
	}
	return w.weights[CategoryOther]
}

// Score computes S(A,B) for the given tags. Every tag contributes its alpha,
// repeated tags included.
func (w *Weighter) Score(a, b *cards.Card, tags []string) float64 {
	var score float64
	for _, tag := range tags {
		score += w.Alpha(tag)
	}
	if DirectReference(a, b) {
		score += w.nameBonus
	}
	return score
}

// PairTags returns the shared tags of two cards using the configured extractor.
func (w *Weighter) PairTags(a, b *cards.Card) []string {
	return SharedTags(a, b, w.extractor)
}

// DirectReference reports whether either card's name appears verbatim in the
// other's rules text. Empty names never match.
func DirectReference(a, b *cards.Card) bool {
	if a == nil || b == nil {
		return false
	}
	return names(a, b) || names(b, a)
}

func names(from, to *cards.Card) bool {
	return from.Name != "" && strings.Contains(to.OracleText, from.Name)
}
