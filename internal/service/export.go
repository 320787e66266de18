package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkordes/wanderlogue/backend/internal/domain"
	"github.com/pkordes/wanderlogue/backend/internal/tripquery"
)

// Export returns the owner's trips matching q flattened into export rows,
// one per media item. Trips without media contribute one row.
func (s *TripService) Export(ctx context.Context, ownerID uuid.UUID, q tripquery.Query) ([]domain.ExportRow, error) {
	trips, err := s.List(ctx, ownerID, q)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.Export: %w", err)
	}
	return domain.BuildExport(trips), nil
}
