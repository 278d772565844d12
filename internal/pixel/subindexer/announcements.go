package subindexer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/goodnatureofminers/pixelnode/internal/pixel/model"
	"github.com/goodnatureofminers/pixelnode/internal/pixel/protocol"
)

// AnnouncementsIndexer decodes issue, freeze and unfreeze markers and reports
// the observed announcements that reach the confirmation depth.
type AnnouncementsIndexer struct {
	confirmations uint64
	logger        *zap.Logger
}

// NewAnnouncementsIndexer creates an AnnouncementsIndexer. With a depth of one
// announcements take effect in the block that mines them.
func NewAnnouncementsIndexer(confirmations uint64, logger *zap.Logger) *AnnouncementsIndexer {
	if confirmations == 0 {
		confirmations = 1
	}
	return &AnnouncementsIndexer{confirmations: confirmations, logger: logger.Named("announcements")}
}

func (a *AnnouncementsIndexer) Name() string { return "announcements" }

// Extract returns the announcements of the block and the earlier ones that
// take effect with it. Malformed markers are logged and skipped.
func (a *AnnouncementsIndexer) Extract(ctx context.Context, block *model.Block, view View) (Events, error) {
	var events Events
	for _, tx := range block.Txs {
		if err := ctx.Err(); err != nil {
			return Events{}, err
		}
		anns, errs := protocol.TxAnnouncements(tx)
		for _, err := range errs {
			a.logger.Warn("skipping malformed announcement",
				zap.Uint64("height", block.Height),
				zap.Stringer("txid", tx.TxHash()),
				zap.Error(err))
		}
		events.Announcements = append(events.Announcements, anns...)
	}

	// Effective once height - mined + 1 >= confirmations.
	if block.Height+1 < a.confirmations {
		return events, nil
	}
	threshold := block.Height + 1 - a.confirmations
	if threshold == block.Height {
		events.ActivateObserved = true
		threshold--
	}
	if threshold == 0 {
		return events, nil
	}
	activated, err := view.PendingAnnouncementsUpTo(ctx, threshold)
	if err != nil {
		return Events{}, fmt.Errorf("lookup pending announcements: %w", err)
	}
	events.Activated = activated
	return events, nil
}
