package synergy

import (
	"errors"
	"fmt"
)

// InteractionType identifies why two cards work together.
type InteractionType int

// The closed set of interaction types. Values are stable and persisted by name.
const (
	CombosWith InteractionType = iota
	Enables
	Synergy
	Protects
	Buffs
	Tutors
	ManaEnables
	DrawsInto
	Tribal
	TypeMatters
	SacrificeFodder
	SacrificeOutlet
	CounterSynergy
	ETBChain
	DeathChain
)

// AllInteractionTypes lists every interaction type in declaration order.
var AllInteractionTypes = []InteractionType{
	CombosWith,
	Enables,
	Synergy,
	Protects,
	Buffs,
	Tutors,
	ManaEnables,
	DrawsInto,
	Tribal,
	TypeMatters,
	SacrificeFodder,
	SacrificeOutlet,
	CounterSynergy,
	ETBChain,
	DeathChain,
}

// ErrUnknownInteractionType is returned when parsing an unrecognized tag.
var ErrUnknownInteractionType = errors.New("unknown interaction type")

// DefaultEdgeColor is used when a type has no visual mapping.
const DefaultEdgeColor = "#888888"

// String returns the snake_case tag used in exports and storage.
func (t InteractionType) String() string {
	switch t {
	case CombosWith:
		return "combos_with"
	case Enables:
		return "enables"
	case Synergy:
		return "synergy"
	case Protects:
		return "protects"
	case Buffs:
		return "buffs"
	case Tutors:
		return "tutors"
	case ManaEnables:
		return "mana_enables"
	case DrawsInto:
		return "draws_into"
	case Tribal:
		return "tribal"
	case TypeMatters:
		return "type_matters"
	case SacrificeFodder:
		return "sacrifice_fodder"
	case SacrificeOutlet:
		return "sacrifice_outlet"
	case CounterSynergy:
		return "counter_synergy"
	case ETBChain:
		return "etb_chain"
	case DeathChain:
		return "death_chain"
	}
	return fmt.Sprintf("interaction_type(%d)", int(t))
}

// Color returns the hex color used to draw edges of this type.
func (t InteractionType) Color() string {
	switch t {
	case CombosWith:
		return "#FF6B6B"
	case Enables:
		return "#4ECDC4"
	case Synergy:
		return "#45B7D1"
	case Protects:
		return "#96CEB4"
	case Buffs:
		return "#FFEAA7"
	case Tutors:
		return "#DDA0DD"
	case ManaEnables:
		return "#F7DC6F"
	case DrawsInto:
		return "#85C1E9"
	case Tribal:
		return "#F39C12"
	case TypeMatters:
		return "#9B59B6"
	case SacrificeFodder:
		return "#E74C3C"
	case SacrificeOutlet:
		return "#C0392B"
	case CounterSynergy:
		return "#2ECC71"
	case ETBChain:
		return "#1ABC9C"
	case DeathChain:
		return "#34495E"
	}
	return DefaultEdgeColor
}

// Label returns the human-readable name of the type.
func (t InteractionType) Label() string {
	switch t {
	case CombosWith:
		return "Combos With"
	case Enables:
		return "Enables"
	case Synergy:
		return "Synergy"
	case Protects:
		return "Protects"
	case Buffs:
		return "Buffs"
	case Tutors:
		return "Tutors For"
	case ManaEnables:
		return "Provides Mana For"
	case DrawsInto:
		return "Draws Into"
	case Tribal:
		return "Tribal Synergy"
	case TypeMatters:
		return "Type Matters"
	case SacrificeFodder:
		return "Sacrifice Fodder"
	case SacrificeOutlet:
		return "Sacrifice Outlet"
	case CounterSynergy:
		return "Counter Synergy"
	case ETBChain:
		return "ETB Chain"
	case DeathChain:
		return "Death Trigger Chain"
	}
	return t.String()
}

// Valid reports whether t is a member of the closed set.
func (t InteractionType) Valid() bool {
	return t >= CombosWith && t <= DeathChain
}

// ParseInteractionType converts a snake_case tag back to its type.
func ParseInteractionType(s string) (InteractionType, error) {
	for _, t := range AllInteractionTypes {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownInteractionType, s)
}

// MarshalText encodes the type as its tag.
func (t InteractionType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownInteractionType, int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText decodes a tag produced by MarshalText.
func (t *InteractionType) UnmarshalText(b []byte) error {
	parsed, err := ParseInteractionType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Interaction is a directed, typed, weighted relationship between two cards.
// Source provides the effect, Target benefits from it.
type Interaction struct {
	SourceID      string          `json:"source_id"`
	TargetID      string          `json:"target_id"`
	Type          InteractionType `json:"interaction_type"`
	Weight        float64         `json:"weight"` // 0.0 to 1.0
	Description   string          `json:"description,omitempty"`
	Bidirectional bool            `json:"bidirectional"`
}
