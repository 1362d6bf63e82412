package weighting

import (
	"regexp"
	"strings"

	"github.com/ramonehamilton/seers-orb/internal/mtga/cards"
)

// Tag categories. CategoryOther catches every unrecognized tag.
const (
	CategoryEvasion    = "evasion"
	CategoryCombat     = "combat"
	CategoryProtection = "protection"
	CategorySpeed      = "speed"
	CategoryRecursion  = "recursion"
	CategoryEconomy    = "economy"
	CategoryAdvantage  = "advantage"
	CategoryRemoval    = "removal"
	CategoryTokens     = "tokens"
	CategoryCounters   = "counters"
	CategoryGraveyard  = "graveyard"
	CategoryOther      = "other"
)

// categoryOrder is the lookup order for keywords listed under several categories.
var categoryOrder = []string{
	CategoryEvasion,
	CategoryCombat,
	CategoryProtection,
	CategorySpeed,
	CategoryRecursion,
	CategoryEconomy,
	CategoryAdvantage,
	CategoryRemoval,
	CategoryTokens,
	CategoryCounters,
	CategoryGraveyard,
}

// lexicon maps each category to the lower-cased keywords and actions it covers.
var lexicon = map[string][]string{
	CategoryEvasion: {
		"flying", "menace", "trample", "intimidate", "fear", "skulk", "horsemanship",
		"shadow", "plainswalk", "islandwalk", "swampwalk", "mountainwalk", "forestwalk",
		"landwalk", "unblockable",
	},
	CategoryCombat: {
		"first strike", "double strike", "deathtouch", "vigilance", "reach", "trample",
		"rampage", "flanking", "bushido", "battle cry", "melee", "mentor", "training",
	},
	CategoryProtection: {
		"hexproof", "shroud", "indestructible", "protection", "ward", "defender",
		"absorb", "regenerate",
	},
	CategorySpeed: {"haste", "flash", "split second"},
	CategoryRecursion: {
		"persist", "undying", "unearth", "embalm", "eternalize", "encore", "escape",
		"retrace", "jump-start", "flashback", "aftermath", "recover", "dredge", "scavenge",
	},
	CategoryEconomy: {
		"convoke", "delve", "affinity", "improvise", "assist", "bargain", "offering",
		"treasure", "gold",
	},
	CategoryAdvantage: {
		"investigate", "clue", "cycling", "monarch", "initiative", "cascade", "discover",
		"explore", "scry", "surveil", "fateseal",
	},
	CategoryRemoval: {"destroy", "exile", "fight", "bite", "sacrifice", "annihilator"},
	CategoryTokens: {
		"populate", "proliferate", "amass", "incubate", "fabricate", "living weapon",
		"afterlife", "create",
	},
	CategoryCounters: {
		"proliferate", "support", "bolster", "adapt", "outlast", "evolve", "graft",
		"modular", "scavenge", "devour", "riot", "mentor",
	},
	CategoryGraveyard: {
		"mill", "surveil", "dredge", "delve", "escape", "flashback", "unearth",
		"threshold", "delirium",
	},
}

// keywordCategory resolves each keyword to the first category listing it.
var keywordCategory = func() map[string]string {
	m := make(map[string]string)
	for _, category := range categoryOrder {
		for _, k := range lexicon[category] {
			if _, ok := m[k]; !ok {
				m[k] = category
			}
		}
	}
	return m
}()

// Categories returns the known categories in lookup order, followed by "other".
func Categories() []string {
	out := make([]string, 0, len(categoryOrder)+1)
	out = append(out, categoryOrder...)
	return append(out, CategoryOther)
}

// Category returns the category of a tag. A tag naming a category maps to
// itself; a lexicon keyword maps to its first category; anything else is "other".
func Category(tag string) string {
	t := strings.ToLower(strings.TrimSpace(tag))
	if t == CategoryOther {
		return CategoryOther
	}
	if _, ok := lexicon[t]; ok {
		return t
	}
	if c, ok := keywordCategory[t]; ok {
		return c
	}
	return CategoryOther
}

// TagExtractor finds tags in rules text. Implementations may return tags in any
// case; duplicates are tolerated.
type TagExtractor interface {
	ExtractTags(text string) []string
}

type keywordPattern struct {
	keyword string
	pattern *regexp.Regexp
}

// KeywordTagger extracts lexicon keywords from text by whole-word,
// case-insensitive matching.
type KeywordTagger struct {
	patterns []keywordPattern
}

// NewKeywordTagger compiles the lexicon into matchers.
func NewKeywordTagger() *KeywordTagger {
	t := &KeywordTagger{}
	seen := make(map[string]bool)
	for _, category := range categoryOrder {
		for _, k := range lexicon[category] {
			if seen[k] {
				continue
			}
			seen[k] = true
			t.patterns = append(t.patterns, keywordPattern{
				keyword: k,
				pattern: regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(k) + `\b`),
			})
		}
	}
	return t
}

// ExtractTags returns the lexicon keywords present in text, in lexicon order.
// "Flash" does not match inside "Flashback".
func (t *KeywordTagger) ExtractTags(text string) []string {
	if text == "" {
		return nil
	}
	var tags []string
	for _, kp := range t.patterns {
		if kp.pattern.MatchString(text) {
			tags = append(tags, kp.keyword)
		}
	}
	return tags
}

// SharedTags collects the tags two cards have in common: keyword abilities on
// both cards, then tags the extractor finds in both rules texts. A nil
// extractor limits the result to shared keywords.
func SharedTags(a, b *cards.Card, extractor TagExtractor) []string {
	if a == nil || b == nil {
		return nil
	}

	var tags []string
	seen := make(map[string]bool)
	add := func(tag string) {
		if !seen[tag] {
			seen[tag] = true
			tags = append(tags, tag)
		}
	}

	bKeywords := make(map[string]bool, len(b.Keywords))
	for _, k := range b.Keywords {
		bKeywords[strings.ToLower(k)] = true
	}
	for _, k := range a.Keywords {
		if lk := strings.ToLower(k); bKeywords[lk] {
			add(lk)
		}
	}

	if extractor == nil {
		return tags
	}
	inB := make(map[string]bool)
	for _, tag := range extractor.ExtractTags(b.OracleText) {
		inB[strings.ToLower(tag)] = true
	}
	for _, tag := range extractor.ExtractTags(a.OracleText) {
		if lt := strings.ToLower(tag); inB[lt] {
			add(lt)
		}
	}
	return tags
}
