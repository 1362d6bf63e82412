package collection

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ramonehamilton/seers-orb/internal/mtga/cards"
	"github.com/ramonehamilton/seers-orb/internal/mtga/cards/fuzzy"
)

// Catalog resolves card names to card records. It is built from a Scryfall
// card list and used for text imports.
type Catalog struct {
	byName map[string][]*cards.Card
	names  []string
	size   int
}

// NewCatalog indexes cards by lower-cased name. Double-faced cards are also
// indexed under their front face name.
func NewCatalog(cs []*cards.Card) *Catalog {
	cat := &Catalog{byName: make(map[string][]*cards.Card)}
	for _, c := range cs {
		if c == nil {
			continue
		}
		cat.size++
		name := strings.ToLower(c.Name)
		if _, seen := cat.byName[name]; !seen {
			cat.names = append(cat.names, c.Name)
		}
		cat.byName[name] = append(cat.byName[name], c)
		if front, _, ok := strings.Cut(c.Name, " // "); ok {
			key := strings.ToLower(front)
			cat.byName[key] = append(cat.byName[key], c)
		}
	}
	return cat
}

// LoadCatalog reads a Scryfall JSON card array (for example a bulk data file).
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	cs, err := decodeScryfallList(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}
	return NewCatalog(cs), nil
}

// Len returns the number of cards in the catalog.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return c.size
}

// Lookup finds a card by name, case-insensitively. When setCode is given a
// printing from that set is preferred.
func (c *Catalog) Lookup(name, setCode string) (*cards.Card, bool) {
	if c == nil {
		return nil, false
	}
	candidates := c.byName[strings.ToLower(strings.TrimSpace(name))]
	if len(candidates) == 0 {
		return nil, false
	}
	if setCode != "" {
		for _, card := range candidates {
			if strings.EqualFold(card.SetCode, setCode) {
				return card, true
			}
		}
	}
	return candidates[0], true
}

// Suggest returns catalog names close to a name that failed to resolve.
func (c *Catalog) Suggest(name string) []string {
	if c == nil {
		return nil
	}
	matches := fuzzy.Rank(name, c.names, fuzzy.DefaultOptions())
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Text
	}
	return out
}

func decodeScryfallList(data []byte) ([]*cards.Card, error) {
	var raw []cards.ScryfallCard
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	out := make([]*cards.Card, 0, len(raw))
	for i := range raw {
		out = append(out, raw[i].ToCard())
	}
	return out, nil
}
