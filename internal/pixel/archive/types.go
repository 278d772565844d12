package archive

import (
	"context"
	"time"

	"github.com/goodnatureofminers/pixelnode/internal/pixel/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	Metrics interface {
		Observe(operation string, rows int, err error, started time.Time)
	}
	Writer interface {
		InsertBlocks(ctx context.Context, rows []BlockRow) error
		InsertTransactions(ctx context.Context, rows []TransactionRow) error
		InsertAnnouncements(ctx context.Context, rows []AnnouncementRow) error
		DeleteAbove(ctx context.Context, network model.Network, height uint64) error
	}
)
