package subindexer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/goodnatureofminers/pixelnode/internal/pixel/model"
)

// Table is the fixed dispatch table of subindexers run for every block.
type Table []Subindexer

// NewTable returns the announcement and confirmation subindexers.
func NewTable(params model.IndexingParams, logger *zap.Logger) Table {
	return Table{
		NewAnnouncementsIndexer(params.Confirmations, logger),
		NewConfirmationIndexer(params.Confirmations),
	}
}

// Extract runs every subindexer over block and merges their events.
func (t Table) Extract(ctx context.Context, block *model.Block, view View) (Events, error) {
	var events Events
	for _, s := range t {
		e, err := s.Extract(ctx, block, view)
		if err != nil {
			return Events{}, fmt.Errorf("%s subindexer: %w", s.Name(), err)
		}
		events.merge(e)
	}
	return events, nil
}
