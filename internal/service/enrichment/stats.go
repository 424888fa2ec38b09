package enrichment

import (
	"context"
	"fmt"

	"github.com/heartmarshall/matterdesk-backend/internal/domain"
	"github.com/heartmarshall/matterdesk-backend/internal/service/guard"
)

// Stats returns the caller's event counts by AI status.
func (s *Service) Stats(ctx context.Context) (domain.EnrichmentStats, error) {
	userID, err := guard.Caller(ctx)
	if err != nil {
		return domain.EnrichmentStats{}, err
	}
	stats, err := s.events.CountByStatus(ctx, userID)
	if err != nil {
		return domain.EnrichmentStats{}, fmt.Errorf("enrichment.Stats: %w", err)
	}
	return stats, nil
}
