// Package archive mirrors indexing results into ClickHouse for analytics.
// It only consumes event bus events and never affects indexing.
package archive

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"

	"github.com/goodnatureofminers/pixelnode/internal/pixel/model"
)

// Repository writes archive rows to ClickHouse.
type Repository struct {
	conn    clickhouse.Conn
	metrics Metrics
}

// NewRepository opens a ClickHouse connection for dsn.
func NewRepository(dsn string, metrics Metrics) (*Repository, error) {
	if dsn == "" {
		return nil, errors.New("clickhouse dsn is required")
	}

	options, err := clickhouse.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse clickhouse dsn: %w", err)
	}

	conn, err := clickhouse.Open(options)
	if err != nil {
		return nil, fmt.Errorf("open clickhouse connection: %w", err)
	}

	return &Repository{conn: conn, metrics: metrics}, nil
}

// Ping checks the connection.
func (r *Repository) Ping(ctx context.Context) error {
	if err := r.conn.Ping(ctx); err != nil {
		return fmt.Errorf("ping clickhouse: %w", err)
	}
	return nil
}

// Close closes the connection.
func (r *Repository) Close() error {
	return r.conn.Close()
}

// InsertBlocks stores block rows.
func (r *Repository) InsertBlocks(ctx context.Context, rows []BlockRow) error {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("insert_blocks", len(rows), err, start)
	}()

	if len(rows) == 0 {
		return nil
	}

	const query = `
INSERT INTO pixel_blocks (
	network,
	height,
	hash,
	transactions,
	announcements,
	confirmed,
	rejected,
	indexed_at
) VALUES`

	batch, err := r.conn.PrepareBatch(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare blocks batch: %w", err)
	}

	for _, row := range rows {
		if err = batch.Append(
			string(row.Network),
			row.Height,
			row.Hash,
			row.Transactions,
			row.Announcements,
			row.Confirmed,
			row.Rejected,
			row.IndexedAt,
		); err != nil {
			return fmt.Errorf("append block: %w", err)
		}
	}

	if err = batch.Send(); err != nil {
		return fmt.Errorf("insert blocks: %w", err)
	}
	return nil
}

// InsertTransactions stores confirmed and rejected transaction rows.
func (r *Repository) InsertTransactions(ctx context.Context, rows []TransactionRow) error {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("insert_transactions", len(rows), err, start)
	}()

	if len(rows) == 0 {
		return nil
	}

	const query = `
INSERT INTO pixel_transactions (
	network,
	txid,
	status,
	reason,
	detail,
	mined_height,
	height,
	block_hash,
	outputs,
	indexed_at
) VALUES`

	batch, err := r.conn.PrepareBatch(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare transactions batch: %w", err)
	}

	for _, row := range rows {
		if err = batch.Append(
			string(row.Network),
			row.TxID,
			row.Status,
			row.Reason,
			row.Detail,
			row.MinedHeight,
			row.Height,
			row.BlockHash,
			row.Outputs,
			row.IndexedAt,
		); err != nil {
			return fmt.Errorf("append transaction: %w", err)
		}
	}

	if err = batch.Send(); err != nil {
		return fmt.Errorf("insert transactions: %w", err)
	}
	return nil
}

// InsertAnnouncements stores announcement rows.
func (r *Repository) InsertAnnouncements(ctx context.Context, rows []AnnouncementRow) error {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("insert_announcements", len(rows), err, start)
	}()

	if len(rows) == 0 {
		return nil
	}

	const query = `
INSERT INTO pixel_announcements (
	network,
	txid,
	vout,
	kind,
	chroma,
	amount,
	target_txid,
	target_vout,
	height,
	block_hash,
	indexed_at
) VALUES`

	batch, err := r.conn.PrepareBatch(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare announcements batch: %w", err)
	}

	for _, row := range rows {
		if err = batch.Append(
			string(row.Network),
			row.TxID,
			row.Vout,
			row.Kind,
			row.Chroma,
			row.Amount,
			row.TargetTxID,
			row.TargetVout,
			row.Height,
			row.BlockHash,
			row.IndexedAt,
		); err != nil {
			return fmt.Errorf("append announcement: %w", err)
		}
	}

	if err = batch.Send(); err != nil {
		return fmt.Errorf("insert announcements: %w", err)
	}
	return nil
}

var archiveTables = []string{"pixel_blocks", "pixel_transactions", "pixel_announcements"}

// DeleteAbove removes the rows of blocks above height after a reorg.
func (r *Repository) DeleteAbove(ctx context.Context, network model.Network, height uint64) error {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("delete_above", 0, err, start)
	}()

	for _, table := range archiveTables {
		query := fmt.Sprintf("DELETE FROM %s WHERE network = ? AND height > ?", table)
		if err = r.conn.Exec(ctx, query, string(network), height); err != nil {
			return fmt.Errorf("delete from %s above %d: %w", table, height, err)
		}
	}
	return nil
}
