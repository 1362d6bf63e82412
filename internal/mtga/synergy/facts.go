package synergy

import (
	"regexp"
	"strings"

	"github.com/ramonehamilton/seers-orb/internal/mtga/cards"
)

// Oracle text patterns used by the rule table. Patterns keep the card's own
// capitalization and accept either case on the leading letter.
var (
	sacrificeOutletPatterns = compileAll(
		`[Ss]acrifice a creature`,
		`[Ss]acrifice another`,
		`[Ss]acrifice a permanent`,
		`, [Ss]acrifice a`,
	)

	diesTriggerPatterns = compileAll(
		`[Ww]henever .* dies`,
		`[Ww]hen .* dies`,
		`[Ww]henever another .* dies`,
		`[Ww]henever a creature dies`,
	)

	blinkPatterns = compileAll(
		`[Ee]xile .* then return`,
		`[Ee]xile target .* [Rr]eturn`,
		`[Ff]licker`,
	)

	counterAddPatterns = compileAll(
		`[Pp]ut .* \+1/\+1 counter`,
		`[Ee]nters .* with .* \+1/\+1 counter`,
	)
)

// tutorPattern pairs a searchable card type with the text that finds it.
type tutorPattern struct {
	cardType string
	pattern  *regexp.Regexp
}

var tutorPatterns = []tutorPattern{
	{cards.TypeCreature, regexp.MustCompile(`[Ss]earch .* for a creature`)},
	{cards.TypeArtifact, regexp.MustCompile(`[Ss]earch .* for an artifact`)},
	{cards.TypeEnchantment, regexp.MustCompile(`[Ss]earch .* for an enchantment`)},
	{cards.TypeLand, regexp.MustCompile(`[Ss]earch .* for a .* land`)},
	{cards.TypeInstant, regexp.MustCompile(`[Ss]earch .* for an instant`)},
	{cards.TypeSorcery, regexp.MustCompile(`[Ss]earch .* for a sorcery`)},
}

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, expr := range exprs {
		out[i] = regexp.MustCompile(expr)
	}
	return out
}

func anyMatch(text string, patterns []*regexp.Regexp) bool {
	if text == "" {
		return false
	}
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// Facts is a precomputed, normalized view of one card. Rules are written as
// predicates over Facts so they never touch raw text or regular expressions.
type Facts struct {
	Card *cards.Card

	// LowerText is the rules text lower-cased; empty when the card has none.
	LowerText string
	Keywords  map[string]bool

	CardTypes       map[string]bool
	CreatureTypes   []string
	ReferencedTypes map[string]bool

	IsCreature bool
	IsLand     bool
	CMC        float64

	SacrificeOutlet bool // "sacrifice a creature/permanent" costs
	DiesTrigger     bool // "whenever ... dies"
	DeathTrigger    bool // dies or put-into-graveyard trigger (fodder check)
	Blink           bool
	ETBTrigger      bool
	AddsCounters    bool
	CaresCounters   bool
	ProducesMana    bool
	GrantsAbility   bool // "target creature gains"
	LifegainPayoff  bool // "whenever you gain life"
	TutorTypes      []string
}

// NewFacts derives the normalized view of a card. A nil card yields empty facts.
func NewFacts(card *cards.Card) *Facts {
	if card == nil {
		card = &cards.Card{}
	}
	text := card.OracleText
	lower := strings.ToLower(text)

	f := &Facts{
		Card:            card,
		LowerText:       lower,
		Keywords:        make(map[string]bool, len(card.Keywords)),
		CardTypes:       make(map[string]bool),
		ReferencedTypes: make(map[string]bool),
		CreatureTypes:   card.CreatureTypes(),
		IsCreature:      card.IsCreature(),
		IsLand:          card.IsLand(),
		CMC:             card.CMC,
		SacrificeOutlet: anyMatch(text, sacrificeOutletPatterns),
		DiesTrigger:     anyMatch(text, diesTriggerPatterns),
		DeathTrigger:    card.HasDeathTrigger(),
		Blink:           anyMatch(text, blinkPatterns),
		ETBTrigger:      card.HasETBTrigger(),
		AddsCounters:    anyMatch(text, counterAddPatterns),
		CaresCounters:   card.HasCounterSynergy(),
		ProducesMana:    card.ProducesMana(),
		GrantsAbility:   strings.Contains(lower, "target creature gains"),
		LifegainPayoff:  strings.Contains(lower, "whenever you gain life"),
	}

	for _, k := range card.Keywords {
		f.Keywords[strings.ToLower(k)] = true
	}
	for _, t := range card.Types() {
		f.CardTypes[t] = true
	}
	for _, t := range card.ReferencedTypes() {
		f.ReferencedTypes[t] = true
	}
	if text != "" {
		for _, tp := range tutorPatterns {
			if tp.pattern.MatchString(text) {
				f.TutorTypes = append(f.TutorTypes, tp.cardType)
			}
		}
	}

	return f
}

// HasKeyword checks a lower-cased keyword.
func (f *Facts) HasKeyword(keyword string) bool {
	return f.Keywords[keyword]
}

// MentionsWord reports whether the lower-cased text contains word at a word start.
// Plural forms ("Zombies") match; substrings inside other words ("itself") do not.
func (f *Facts) MentionsWord(word string) bool {
	if f.LowerText == "" || word == "" {
		return false
	}
	needle := strings.ToLower(word)
	text := f.LowerText
	for offset := 0; ; {
		idx := strings.Index(text[offset:], needle)
		if idx < 0 {
			return false
		}
		pos := offset + idx
		if pos == 0 || !isWordByte(text[pos-1]) {
			return true
		}
		offset = pos + 1
	}
}

func isWordByte(b byte) bool {
	return b == '_' || b == '-' || b == '\'' ||
		(b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}
