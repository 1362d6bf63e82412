package models

import "time"

// Graph edit kinds.
const (
	EditKindAdd    = "add"
	EditKindRemove = "remove"
)

// GraphEdit is a user change to a collection's synergy graph. Edits are
// replayed in ID order after auto-detection.
type GraphEdit struct {
	ID              int64
	CollectionID    string
	Kind            string // add, remove
	SourceID        string
	TargetID        string
	InteractionType string // snake_case tag, empty for removals
	Weight          float64
	Description     string
	CreatedAt       time.Time
}

// ReportSnapshot is a stored analysis report.
type ReportSnapshot struct {
	ID             string
	CollectionID   string
	CollectionName string
	NodeCount      int
	EdgeCount      int
	SynergyScore   float64
	ReportJSON     []byte
	CreatedAt      time.Time
}
