// Package collection models a user's card collection and loads it from disk.
package collection

import (
	"github.com/google/uuid"

	"github.com/ramonehamilton/seers-orb/internal/mtga/cards"
)

// Default collection metadata.
const (
	DefaultName   = "Untitled Collection"
	DefaultFormat = "commander"
)

// Entry is one card in a collection with its quantity and optional category.
type Entry struct {
	Card     *cards.Card `json:"card" yaml:"card"`
	Quantity int         `json:"quantity" yaml:"quantity"`
	Category string      `json:"category,omitempty" yaml:"category,omitempty"`
}

// Collection is an ordered set of unique cards. Entries keep insertion order.
type Collection struct {
	ID        string   `json:"id" yaml:"id"`
	Name      string   `json:"name" yaml:"name"`
	Format    string   `json:"format" yaml:"format"`
	Commander string   `json:"commander,omitempty" yaml:"commander,omitempty"` // card ID
	Entries   []*Entry `json:"cards" yaml:"cards"`
}

// New creates an empty collection with a fresh ID.
func New(name, format string) *Collection {
	if name == "" {
		name = DefaultName
	}
	if format == "" {
		format = DefaultFormat
	}
	return &Collection{
		ID:     uuid.NewString(),
		Name:   name,
		Format: format,
	}
}

// Entry returns the entry for a card ID.
func (c *Collection) Entry(cardID string) (*Entry, bool) {
	for _, e := range c.Entries {
		if e.Card.ID == cardID {
			return e, true
		}
	}
	return nil, false
}

// Add adds quantity copies of card. An existing card only gains quantity;
// its category is kept.
func (c *Collection) Add(card *cards.Card, quantity int, category string) {
	if card == nil || quantity <= 0 {
		return
	}
	if e, ok := c.Entry(card.ID); ok {
		e.Quantity += quantity
		return
	}
	c.Entries = append(c.Entries, &Entry{Card: card, Quantity: quantity, Category: category})
}

// Remove takes quantity copies of a card out, dropping the entry when none remain.
func (c *Collection) Remove(cardID string, quantity int) bool {
	e, ok := c.Entry(cardID)
	if !ok {
		return false
	}
	e.Quantity -= quantity
	if e.Quantity <= 0 {
		c.drop(cardID)
	}
	return true
}

// SetQuantity sets a card's quantity; zero or less removes it.
func (c *Collection) SetQuantity(cardID string, quantity int) bool {
	e, ok := c.Entry(cardID)
	if !ok {
		return false
	}
	if quantity <= 0 {
		c.drop(cardID)
		return true
	}
	e.Quantity = quantity
	return true
}

// SetCategory sets a card's user-defined category.
func (c *Collection) SetCategory(cardID, category string) bool {
	e, ok := c.Entry(cardID)
	if !ok {
		return false
	}
	e.Category = category
	return true
}

func (c *Collection) drop(cardID string) {
	for i, e := range c.Entries {
		if e.Card.ID == cardID {
			c.Entries = append(c.Entries[:i], c.Entries[i+1:]...)
			return
		}
	}
}

// UniqueCards returns one card per entry, in insertion order.
func (c *Collection) UniqueCards() []*cards.Card {
	out := make([]*cards.Card, len(c.Entries))
	for i, e := range c.Entries {
		out[i] = e.Card
	}
	return out
}

// TotalCards returns the sum of all quantities.
func (c *Collection) TotalCards() int {
	var total int
	for _, e := range c.Entries {
		total += e.Quantity
	}
	return total
}

// IsCommander reports whether cardID is the collection's commander.
func (c *Collection) IsCommander(cardID string) bool {
	return c.Commander != "" && c.Commander == cardID
}

// normalize repairs a decoded collection: nil cards are dropped, duplicate
// IDs are merged, quantities default to one and a missing ID is generated.
func (c *Collection) normalize() {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Name == "" {
		c.Name = DefaultName
	}
	if c.Format == "" {
		c.Format = DefaultFormat
	}

	entries := c.Entries
	c.Entries = nil
	for _, e := range entries {
		if e == nil || e.Card == nil || e.Card.ID == "" {
			continue
		}
		quantity := e.Quantity
		if quantity <= 0 {
			quantity = 1
		}
		c.Add(e.Card, quantity, e.Category)
	}
}
