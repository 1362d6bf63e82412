package synergy

import (
	"fmt"
	"math"
	"strings"

	"github.com/ramonehamilton/seers-orb/internal/mtga/cards"
)

// Rule is one heuristic in the detection table. Directional rules are tried
// with each card of a pair as the source; symmetric rules are tried once and
// produce a bidirectional interaction.
type Rule struct {
	Name      string
	Type      InteractionType
	Symmetric bool

	// Applies reports whether src provides this interaction to dst.
	Applies func(src, dst *Facts) bool
	// Weight returns the interaction strength in [0, 1].
	Weight func(src, dst *Facts) float64
	// Describe returns a human-readable explanation.
	Describe func(src, dst *Facts) string
}

func fixed(w float64) func(src, dst *Facts) float64 {
	return func(_, _ *Facts) float64 { return w }
}

// DefaultRules returns the built-in rule table, in evaluation order.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:    "death_chain",
			Type:    DeathChain,
			Applies: func(src, dst *Facts) bool { return src.SacrificeOutlet && dst.DiesTrigger },
			Weight:  fixed(0.8),
			Describe: func(src, dst *Facts) string {
				return fmt.Sprintf("%s can sacrifice creatures to trigger %s", name(src), name(dst))
			},
		},
		{
			Name: "sacrifice_outlet",
			Type: SacrificeOutlet,
			Applies: func(src, dst *Facts) bool {
				return src.SacrificeOutlet && dst.IsCreature && dst.DeathTrigger
			},
			Weight: fixed(0.7),
			Describe: func(src, dst *Facts) string {
				return fmt.Sprintf("%s can sacrifice %s for value", name(src), name(dst))
			},
		},
		{
			Name:    "etb_chain",
			Type:    ETBChain,
			Applies: func(src, dst *Facts) bool { return src.Blink && dst.ETBTrigger },
			Weight:  fixed(0.85),
			Describe: func(src, dst *Facts) string {
				return fmt.Sprintf("%s can reuse %s's ETB", name(src), name(dst))
			},
		},
		{
			Name:    "counter_source",
			Type:    CounterSynergy,
			Applies: func(src, dst *Facts) bool { return src.AddsCounters && dst.CaresCounters },
			Weight:  fixed(0.75),
			Describe: func(src, dst *Facts) string {
				return fmt.Sprintf("%s adds counters for %s", name(src), name(dst))
			},
		},
		{
			Name:      "counter_shared",
			Type:      CounterSynergy,
			Symmetric: true,
			Applies: func(a, b *Facts) bool {
				return a.CaresCounters && b.CaresCounters && (a.AddsCounters || b.AddsCounters)
			},
			Weight: fixed(0.7),
			Describe: func(a, b *Facts) string {
				return fmt.Sprintf("Both %s and %s work with counters", name(a), name(b))
			},
		},
		{
			Name:      "tribal_shared",
			Type:      Tribal,
			Symmetric: true,
			Applies: func(a, b *Facts) bool {
				return a.IsCreature && b.IsCreature && len(sharedTypes(a, b)) > 0
			},
			Weight: fixed(0.5),
			Describe: func(a, b *Facts) string {
				return "Both are " + strings.Join(sharedTypes(a, b), ", ")
			},
		},
		{
			Name:    "tribal_reference",
			Type:    Tribal,
			Applies: func(src, dst *Facts) bool { return len(mentionedTypes(src, dst)) > 0 },
			Weight:  fixed(0.7),
			Describe: func(src, dst *Facts) string {
				return fmt.Sprintf("%s cares about %s", name(src), strings.Join(mentionedTypes(src, dst), ", "))
			},
		},
		{
			Name:    "type_matters",
			Type:    TypeMatters,
			Applies: func(src, dst *Facts) bool { return len(caredTypes(src, dst)) > 0 },
			Weight:  fixed(0.6),
			Describe: func(src, dst *Facts) string {
				return fmt.Sprintf("%s cares about %s", name(src), strings.Join(caredTypes(src, dst), ", "))
			},
		},
		{
			Name: "mana_enables",
			Type: ManaEnables,
			Applies: func(src, dst *Facts) bool {
				return src.ProducesMana && !dst.IsLand && dst.CMC >= 4
			},
			Weight: func(_, dst *Facts) float64 {
				return math.Min(0.4+dst.CMC*0.05, 0.8)
			},
			Describe: func(src, dst *Facts) string {
				return fmt.Sprintf("%s helps cast %s", name(src), name(dst))
			},
		},
		{
			Name: "first_strike_deathtouch",
			Type: Buffs,
			Applies: func(src, dst *Facts) bool {
				return dst.HasKeyword("deathtouch") &&
					(src.HasKeyword("first strike") || src.HasKeyword("double strike")) &&
					src.GrantsAbility
			},
			Weight: fixed(0.75),
			Describe: func(_, _ *Facts) string {
				return "First strike + deathtouch combo"
			},
		},
		{
			Name: "lifelink_payoff",
			Type: Enables,
			Applies: func(src, dst *Facts) bool {
				return src.HasKeyword("lifelink") && dst.LifegainPayoff
			},
			Weight: fixed(0.7),
			Describe: func(src, dst *Facts) string {
				return fmt.Sprintf("%s triggers %s", name(src), name(dst))
			},
		},
		{
			Name:    "tutor",
			Type:    Tutors,
			Applies: func(src, dst *Facts) bool { return len(findableTypes(src, dst)) > 0 },
			Weight:  fixed(0.9),
			Describe: func(src, dst *Facts) string {
				return fmt.Sprintf("%s can find %s", name(src), name(dst))
			},
		},
	}
}

func name(f *Facts) string {
	return f.Card.Name
}

// sharedTypes returns creature types both cards have, in a's order.
func sharedTypes(a, b *Facts) []string {
	var shared []string
	for _, ta := range a.CreatureTypes {
		for _, tb := range b.CreatureTypes {
			if ta == tb {
				shared = appendUnique(shared, ta)
				break
			}
		}
	}
	return shared
}

// mentionedTypes returns dst's creature types named in src's text.
func mentionedTypes(src, dst *Facts) []string {
	var mentioned []string
	for _, t := range dst.CreatureTypes {
		if src.MentionsWord(t) {
			mentioned = appendUnique(mentioned, t)
		}
	}
	return mentioned
}

// caredTypes returns card types src's text references that dst actually is.
func caredTypes(src, dst *Facts) []string {
	var matches []string
	for _, t := range cards.AllTypes {
		if src.ReferencedTypes[t] && dst.CardTypes[t] {
			matches = append(matches, t)
		}
	}
	return matches
}

// findableTypes returns the types src can search for that appear on dst's type line.
func findableTypes(src, dst *Facts) []string {
	var matches []string
	for _, t := range src.TutorTypes {
		if dst.Card.HasType(t) {
			matches = append(matches, t)
		}
	}
	return matches
}

func appendUnique(list []string, s string) []string {
	for _, existing := range list {
		if existing == s {
			return list
		}
	}
	return append(list, s)
}
