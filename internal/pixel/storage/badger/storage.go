// Package badger is the durable store of the indexer: transaction states,
// inventory, announcements, the frozen set, the chroma registry and the
// loading progress, all mutated through single badger transactions.
package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/dgraph-io/badger/v3/options"
	"github.com/timshannon/badgerhold/v4"
	"go.uber.org/zap"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrOutOfOrder is returned when a commit does not extend the stored progress.
	ErrOutOfOrder = errors.New("block does not extend committed progress")
)

// Metrics records storage operations.
type Metrics interface {
	Observe(operation string, err error, started time.Time)
}

// StorageError is a failed storage operation.
type StorageError struct {
	Op     string
	Height uint64
	Err    error
}

func (e *StorageError) Error() string {
	if e.Height > 0 {
		return fmt.Sprintf("storage %s at height %d: %v", e.Op, e.Height, e.Err)
	}
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Storage is the badger backed store. Reads may run concurrently; writes are
// expected from a single committing goroutine.
type Storage struct {
	store   *badgerhold.Store
	metrics Metrics
	logger  *zap.Logger
}

// Open opens or creates the store in dir.
func Open(dir string, logger *zap.Logger, metrics Metrics) (*Storage, error) {
	opts := badger.DefaultOptions(dir)
	opts.Compression = options.ZSTD
	return open(opts, logger, metrics)
}

// OpenInMemory opens a store that lives only as long as the process.
func OpenInMemory(logger *zap.Logger, metrics Metrics) (*Storage, error) {
	return open(badger.DefaultOptions("").WithInMemory(true), logger, metrics)
}

func open(opts badger.Options, logger *zap.Logger, metrics Metrics) (*Storage, error) {
	logger = logger.Named("storage")
	opts.Logger = newBadgerLogger(logger)

	store, err := badgerhold.Open(badgerhold.Options{
		Encoder:          badgerhold.DefaultEncode,
		Decoder:          badgerhold.DefaultDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
	if err != nil {
		return nil, fmt.Errorf("open badger store: %w", err)
	}
	return &Storage{store: store, metrics: metrics, logger: logger}, nil
}

// Close flushes and closes the store.
func (s *Storage) Close() error {
	return s.store.Close()
}

func (s *Storage) view(ctx context.Context, op string, fn func(txn *badger.Txn) error) (err error) {
	started := time.Now()
	defer func() {
		s.metrics.Observe(op, err, started)
	}()
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.store.Badger().View(fn); err != nil {
		return &StorageError{Op: op, Err: err}
	}
	return nil
}

func (s *Storage) update(ctx context.Context, op string, height uint64, fn func(txn *badger.Txn) error) (err error) {
	started := time.Now()
	defer func() {
		s.metrics.Observe(op, err, started)
	}()
	if err := ctx.Err(); err != nil {
		return err
	}

	txn := s.store.Badger().NewTransaction(true)
	defer txn.Discard()

	if err := fn(txn); err != nil {
		return &StorageError{Op: op, Height: height, Err: err}
	}
	if err := txn.Commit(); err != nil {
		return &StorageError{Op: op, Height: height, Err: fmt.Errorf("commit transaction: %w", err)}
	}
	return nil
}
