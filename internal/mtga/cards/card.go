package cards

import (
	"regexp"
	"strings"
)

// Card represents the rules-relevant facts about a Magic card.
// Cards are immutable once constructed and referenced by ID.
type Card struct {
	// Identity (Scryfall ID or any caller-chosen unique key)
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`

	// Mana information
	ManaCost string  `json:"mana_cost" yaml:"mana_cost"`
	CMC      float64 `json:"cmc" yaml:"cmc"` // Converted mana cost

	// Colors and identity
	Colors        []string `json:"colors" yaml:"colors"`
	ColorIdentity []string `json:"color_identity" yaml:"color_identity"`

	// Type line, e.g. "Legendary Creature — Elf Druid"
	TypeLine string `json:"type_line" yaml:"type_line"`

	// Rules text and keyword abilities
	OracleText string   `json:"oracle_text,omitempty" yaml:"oracle_text,omitempty"`
	Keywords   []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`

	// Power/Toughness (for creatures)
	Power     string `json:"power,omitempty" yaml:"power,omitempty"`
	Toughness string `json:"toughness,omitempty" yaml:"toughness,omitempty"`

	// Imagery
	ImageURI string `json:"image_uri,omitempty" yaml:"image_uri,omitempty"`

	SetCode   string `json:"set,omitempty" yaml:"set,omitempty"`
	Collector string `json:"collector_number,omitempty" yaml:"collector_number,omitempty"`
	Rarity    string `json:"rarity,omitempty" yaml:"rarity,omitempty"`
}

// Card types recognized on a type line, in display priority order.
const (
	TypeCreature     = "Creature"
	TypeLand         = "Land"
	TypeInstant      = "Instant"
	TypeSorcery      = "Sorcery"
	TypeArtifact     = "Artifact"
	TypeEnchantment  = "Enchantment"
	TypePlaneswalker = "Planeswalker"
)

// AllTypes lists the card types in the order they are reported by Types.
var AllTypes = []string{
	TypeCreature,
	TypeLand,
	TypeInstant,
	TypeSorcery,
	TypeArtifact,
	TypeEnchantment,
	TypePlaneswalker,
}

var (
	producesManaPattern = regexp.MustCompile(`[Aa]dd\s+\{[WUBRGC\d]\}`)

	etbPatterns = []*regexp.Regexp{
		regexp.MustCompile(`[Ww]hen .* enters the battlefield`),
		regexp.MustCompile(`[Ww]hen .* enters`),
		regexp.MustCompile(`[Ee]nters the battlefield`),
	}

	deathTriggerPatterns = []*regexp.Regexp{
		regexp.MustCompile(`[Ww]hen .* dies`),
		regexp.MustCompile(`[Ww]henever .* dies`),
		regexp.MustCompile(`[Ww]hen .* is put into a graveyard`),
	}

	canSacrificePatterns = []*regexp.Regexp{
		regexp.MustCompile(`[Ss]acrifice a`),
		regexp.MustCompile(`[Ss]acrifice another`),
		regexp.MustCompile(`, [Ss]acrifice`),
	}

	tutorPattern = regexp.MustCompile(`[Ss]earch your library`)

	drawPatterns = []*regexp.Regexp{
		regexp.MustCompile(`[Dd]raw a card`),
		regexp.MustCompile(`[Dd]raw \d+ cards`),
		regexp.MustCompile(`[Dd]raw cards`),
		regexp.MustCompile(`[Dd]raws a card`),
	}

	counterSynergyPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\+1/\+1 counter`),
		regexp.MustCompile(`[Pp]roliferate`),
		regexp.MustCompile(`[Dd]ouble the number of .* counters`),
		regexp.MustCompile(`[Ff]or each .* counter`),
	}
)

// subtypeSeparators split a type line into card types and subtypes.
var subtypeSeparators = []string{"—", " - "}

// HasType reports whether the type line contains the given card type.
func (c *Card) HasType(cardType string) bool {
	return strings.Contains(c.TypeLine, cardType)
}

// IsCreature checks if card is a creature.
func (c *Card) IsCreature() bool { return c.HasType(TypeCreature) }

// IsLand checks if card is a land.
func (c *Card) IsLand() bool { return c.HasType(TypeLand) }

// IsInstant checks if card is an instant.
func (c *Card) IsInstant() bool { return c.HasType(TypeInstant) }

// IsSorcery checks if card is a sorcery.
func (c *Card) IsSorcery() bool { return c.HasType(TypeSorcery) }

// IsArtifact checks if card is an artifact.
func (c *Card) IsArtifact() bool { return c.HasType(TypeArtifact) }

// IsEnchantment checks if card is an enchantment.
func (c *Card) IsEnchantment() bool { return c.HasType(TypeEnchantment) }

// IsPlaneswalker checks if card is a planeswalker.
func (c *Card) IsPlaneswalker() bool { return c.HasType(TypePlaneswalker) }

// Types returns the card types present on the type line.
func (c *Card) Types() []string {
	var types []string
	for _, t := range AllTypes {
		if c.HasType(t) {
			types = append(types, t)
		}
	}
	return types
}

// Subtypes returns the words after the type line separator
// ("Creature — Elf Druid" yields ["Elf", "Druid"]).
func (c *Card) Subtypes() []string {
	for _, sep := range subtypeSeparators {
		idx := strings.Index(c.TypeLine, sep)
		if idx < 0 {
			continue
		}
		rest := c.TypeLine[idx+len(sep):]
		// Double-faced cards join faces with "//"
		if cut := strings.Index(rest, "//"); cut >= 0 {
			rest = rest[:cut]
		}
		return strings.Fields(rest)
	}
	return nil
}

// CreatureTypes returns the subtypes of a creature card. Non-creatures have none.
func (c *Card) CreatureTypes() []string {
	if !c.IsCreature() {
		return nil
	}
	return c.Subtypes()
}

// ReferencedTypes returns the card types mentioned anywhere in the rules text.
func (c *Card) ReferencedTypes() []string {
	if c.OracleText == "" {
		return nil
	}
	lower := strings.ToLower(c.OracleText)

	var types []string
	for _, t := range AllTypes {
		if strings.Contains(lower, strings.ToLower(t)) {
			types = append(types, t)
		}
	}
	return types
}

// HasKeyword checks the keyword list case-insensitively.
func (c *Card) HasKeyword(keyword string) bool {
	for _, k := range c.Keywords {
		if strings.EqualFold(k, keyword) {
			return true
		}
	}
	return false
}

// ProducesMana checks if card can produce mana.
func (c *Card) ProducesMana() bool {
	if c.IsLand() {
		return true
	}
	return producesManaPattern.MatchString(c.OracleText)
}

// HasETBTrigger checks for enters-the-battlefield triggers.
func (c *Card) HasETBTrigger() bool {
	return matchesAny(c.OracleText, etbPatterns)
}

// HasDeathTrigger checks for death/dies triggers.
func (c *Card) HasDeathTrigger() bool {
	return matchesAny(c.OracleText, deathTriggerPatterns)
}

// CanSacrifice checks if card can sacrifice permanents.
func (c *Card) CanSacrifice() bool {
	return matchesAny(c.OracleText, canSacrificePatterns)
}

// IsTutor checks if card can search its controller's library.
func (c *Card) IsTutor() bool {
	return tutorPattern.MatchString(c.OracleText)
}

// DrawsCards checks if card draws cards.
func (c *Card) DrawsCards() bool {
	return matchesAny(c.OracleText, drawPatterns)
}

// HasCounterSynergy checks whether the card cares about +1/+1 counters.
func (c *Card) HasCounterSynergy() bool {
	return matchesAny(c.OracleText, counterSynergyPatterns)
}

func matchesAny(text string, patterns []*regexp.Regexp) bool {
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
