package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ramonehamilton/seers-orb/internal/mtga/collection"
	"github.com/ramonehamilton/seers-orb/internal/mtga/synergy"
	"github.com/ramonehamilton/seers-orb/internal/mtga/synergy/analysis"
	"github.com/ramonehamilton/seers-orb/internal/storage/models"
	"github.com/ramonehamilton/seers-orb/internal/storage/repository"
)

func (s *Service) checkPair(col *collection.Collection, a, b string) error {
	if col == nil {
		return ErrNilInput
	}
	if s.edits == nil {
		return ErrNoStorage
	}
	if a == b {
		return ErrSelfPair
	}
	for _, id := range []string{a, b} {
		if _, ok := col.Entry(id); !ok {
			return fmt.Errorf("%w: %s", ErrUnknownCard, id)
		}
	}
	return nil
}

// AddCustomInteraction records a user-defined interaction for the collection.
// It is merged into the graph on every rebuild, after detection.
func (s *Service) AddCustomInteraction(ctx context.Context, col *collection.Collection, in synergy.Interaction) error {
	if err := s.checkPair(col, in.SourceID, in.TargetID); err != nil {
		return err
	}
	if !in.Type.Valid() {
		return fmt.Errorf("%w: %d", synergy.ErrUnknownInteractionType, int(in.Type))
	}

	edit := &models.GraphEdit{
		CollectionID:    col.ID,
		Kind:            models.EditKindAdd,
		SourceID:        in.SourceID,
		TargetID:        in.TargetID,
		InteractionType: in.Type.String(),
		Weight:          synergy.ClampWeight(in.Weight),
		Description:     in.Description,
	}
	if err := s.edits.Append(ctx, edit); err != nil {
		s.metrics.StorageErrors.Add(1)
		return fmt.Errorf("failed to store custom interaction: %w", err)
	}
	s.logger.Info("custom interaction added",
		zap.String("collection", col.ID),
		zap.String("source", in.SourceID),
		zap.String("target", in.TargetID),
		zap.Stringer("type", in.Type),
	)
	return nil
}

// RemoveInteraction records the removal of the edge between a and b. The
// removal applies to every rebuild until the edits are reset.
func (s *Service) RemoveInteraction(ctx context.Context, col *collection.Collection, a, b string) error {
	if err := s.checkPair(col, a, b); err != nil {
		return err
	}

	edit := &models.GraphEdit{
		CollectionID: col.ID,
		Kind:         models.EditKindRemove,
		SourceID:     a,
		TargetID:     b,
	}
	if err := s.edits.Append(ctx, edit); err != nil {
		s.metrics.StorageErrors.Add(1)
		return fmt.Errorf("failed to store interaction removal: %w", err)
	}
	s.logger.Info("interaction removed", zap.String("collection", col.ID), zap.String("a", a), zap.String("b", b))
	return nil
}

// Edits returns the collection's stored edits in replay order.
func (s *Service) Edits(ctx context.Context, collectionID string) ([]*models.GraphEdit, error) {
	if s.edits == nil {
		return nil, ErrNoStorage
	}
	return s.edits.List(ctx, collectionID)
}

// ResetEdits deletes the collection's stored edits and returns how many were removed.
func (s *Service) ResetEdits(ctx context.Context, collectionID string) (int64, error) {
	if s.edits == nil {
		return 0, ErrNoStorage
	}
	n, err := s.edits.Clear(ctx, collectionID)
	if err != nil {
		return 0, fmt.Errorf("failed to reset graph edits: %w", err)
	}
	return n, nil
}

// StoredReport is a report snapshot decoded from storage.
type StoredReport struct {
	ID        string           `json:"id"`
	CreatedAt time.Time        `json:"created_at"`
	Report    *analysis.Report `json:"report"`
}

// LatestReport returns the newest stored report of a collection.
// It returns repository.ErrNotFound when none exists.
func (s *Service) LatestReport(ctx context.Context, collectionID string) (*StoredReport, error) {
	if s.reports == nil {
		return nil, ErrNoStorage
	}
	snapshot, err := s.reports.Latest(ctx, collectionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load report: %w", err)
	}

	var report analysis.Report
	if err := json.Unmarshal(snapshot.ReportJSON, &report); err != nil {
		return nil, fmt.Errorf("failed to decode report %s: %w", snapshot.ID, err)
	}
	return &StoredReport{ID: snapshot.ID, CreatedAt: snapshot.CreatedAt, Report: &report}, nil
}
