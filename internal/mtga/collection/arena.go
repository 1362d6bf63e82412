package collection

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Text import errors.
var (
	ErrEmptyImport = errors.New("empty import text")
	ErrNoCatalog   = errors.New("text import requires a card catalog")
	ErrNoCards     = errors.New("no cards could be imported")
)

// Section categories assigned to imported entries.
const (
	CategoryCommander = "commander"
	CategorySideboard = "sideboard"
	CategoryCompanion = "companion"
)

var (
	// "4 Lightning Bolt (M21) 123", "4x Lightning Bolt" or "4 Lightning Bolt"
	leadingQuantityLine = regexp.MustCompile(`^(\d+)x?\s+([^(]+?)(?:\s+\(([A-Za-z0-9]+)\)(?:\s+(\S+))?)?$`)
	// "Lightning Bolt x4"
	trailingQuantityLine = regexp.MustCompile(`^(.+?)\s+x(\d+)$`)
)

// ImportResult is a collection parsed from text plus what could not be resolved.
type ImportResult struct {
	Collection *Collection
	Unresolved []string
	Warnings   []string
}

type textLine struct {
	quantity int
	name     string
	setCode  string
}

func parseTextLine(line string) (textLine, bool) {
	if m := leadingQuantityLine.FindStringSubmatch(line); m != nil {
		if q, err := strconv.Atoi(m[1]); err == nil {
			return textLine{quantity: q, name: strings.TrimSpace(m[2]), setCode: m[3]}, true
		}
	}
	if m := trailingQuantityLine.FindStringSubmatch(line); m != nil {
		if q, err := strconv.Atoi(m[2]); err == nil {
			return textLine{quantity: q, name: strings.TrimSpace(m[1])}, true
		}
	}
	return textLine{}, false
}

// sectionHeader maps a header line to its category.
func sectionHeader(line string) (category string, ok bool) {
	switch strings.ToLower(strings.TrimSuffix(line, ":")) {
	case "deck", "main", "mainboard":
		return "", true
	case "commander":
		return CategoryCommander, true
	case "sideboard":
		return CategorySideboard, true
	case "companion":
		return CategoryCompanion, true
	}
	return "", false
}

// ParseText imports a deck list in MTG Arena export or plain text format,
// resolving card names against catalog.
//
//	Commander
//	1 Meren of Clan Nel Toth (C15) 49
//
//	Deck
//	4 Lightning Bolt (M21) 123
//	Shock x3
//
// In Arena exports without headers, the first blank line after main deck
// cards starts the sideboard. Lines starting with "//" or "#" are comments.
func ParseText(input string, catalog *Catalog, name string) (*ImportResult, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, ErrEmptyImport
	}
	if catalog == nil {
		return nil, ErrNoCatalog
	}

	result := &ImportResult{Collection: New(name, "")}
	section := ""
	sawMain := false
	headers := false

	for i, raw := range strings.Split(input, "\n") {
		line := strings.TrimSpace(raw)

		if line == "" {
			// Arena separates the sideboard with a blank line when there are no headers.
			if !headers && section == "" && sawMain {
				section = CategorySideboard
			}
			continue
		}
		if strings.HasPrefix(line, "//") || strings.HasPrefix(line, "#") {
			continue
		}
		if category, ok := sectionHeader(line); ok {
			section = category
			headers = true
			continue
		}

		parsed, ok := parseTextLine(line)
		if !ok {
			result.Warnings = append(result.Warnings, fmt.Sprintf("line %d: could not parse '%s'", i+1, line))
			continue
		}
		if section == "" {
			sawMain = true
		}

		card, found := catalog.Lookup(parsed.name, parsed.setCode)
		if !found {
			result.Unresolved = append(result.Unresolved, parsed.name)
			warning := fmt.Sprintf("line %d: card '%s' not found in catalog", i+1, parsed.name)
			if suggestions := catalog.Suggest(parsed.name); len(suggestions) > 0 {
				warning += fmt.Sprintf(" (did you mean %s?)", strings.Join(suggestions, ", "))
			}
			result.Warnings = append(result.Warnings, warning)
			continue
		}

		result.Collection.Add(card, parsed.quantity, section)
		if section == CategoryCommander && result.Collection.Commander == "" {
			result.Collection.Commander = card.ID
		}
	}

	if len(result.Collection.Entries) == 0 {
		return result, ErrNoCards
	}
	return result, nil
}

// ExportText renders a collection in MTG Arena export format: commander,
// main deck, companion and sideboard sections.
func ExportText(c *Collection) string {
	var sb strings.Builder

	writeSection := func(header string, match func(*Entry) bool) {
		var lines []string
		for _, e := range c.Entries {
			if !match(e) {
				continue
			}
			line := fmt.Sprintf("%d %s", e.Quantity, e.Card.Name)
			if e.Card.SetCode != "" && e.Card.Collector != "" {
				line += fmt.Sprintf(" (%s) %s", strings.ToUpper(e.Card.SetCode), e.Card.Collector)
			}
			lines = append(lines, line)
		}
		if len(lines) == 0 {
			return
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(header + "\n")
		for _, line := range lines {
			sb.WriteString(line + "\n")
		}
	}

	isCommander := func(e *Entry) bool {
		return c.IsCommander(e.Card.ID) || e.Category == CategoryCommander
	}
	writeSection("Commander", isCommander)
	writeSection("Deck", func(e *Entry) bool {
		return !isCommander(e) && e.Category != CategorySideboard && e.Category != CategoryCompanion
	})
	writeSection("Companion", func(e *Entry) bool { return !isCommander(e) && e.Category == CategoryCompanion })
	writeSection("Sideboard", func(e *Entry) bool { return !isCommander(e) && e.Category == CategorySideboard })

	return sb.String()
}
