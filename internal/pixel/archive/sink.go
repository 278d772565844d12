package archive

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/goodnatureofminers/pixelnode/internal/eventbus"
	"github.com/goodnatureofminers/pixelnode/internal/pixel/model"
	"github.com/goodnatureofminers/pixelnode/pkg/batcher"
)

const (
	defaultFlushSize     = 1000
	defaultFlushInterval = 5 * time.Second
	defaultFlushRPS      = 20
	subscriberCapacity   = 4096
)

// SinkConfig tunes the archive batching.
type SinkConfig struct {
	FlushSize     int
	FlushInterval time.Duration
	FlushRPS      int
}

// DefaultSinkConfig returns the batching used by the node.
func DefaultSinkConfig() SinkConfig {
	return SinkConfig{
		FlushSize:     defaultFlushSize,
		FlushInterval: defaultFlushInterval,
		FlushRPS:      defaultFlushRPS,
	}
}

// Sink subscribes to indexing events and writes them to the archive in batches.
// A reorg flushes what is buffered and deletes the rows above the fork.
type Sink struct {
	writer  Writer
	network model.Network
	cfg     SinkConfig
	logger  *zap.Logger
	now     func() time.Time

	blocksRecv        *eventbus.Receiver[model.BlockIndexed]
	transactionsRecv  *eventbus.Receiver[model.TxConfirmed]
	rejectedRecv      *eventbus.Receiver[model.TxRejected]
	announcementsRecv *eventbus.Receiver[model.AnnouncementObserved]
	reorgRecv         *eventbus.Receiver[model.Reorged]

	blocks        *batcher.Batcher[BlockRow]
	transactions  *batcher.Batcher[TransactionRow]
	announcements *batcher.Batcher[AnnouncementRow]
}

// NewSink subscribes to bus. Events published before Run are buffered.
func NewSink(bus *eventbus.Bus, writer Writer, network model.Network, cfg SinkConfig, logger *zap.Logger) *Sink {
	if cfg.FlushSize < 1 {
		cfg.FlushSize = defaultFlushSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = defaultFlushInterval
	}
	if cfg.FlushRPS < 1 {
		cfg.FlushRPS = defaultFlushRPS
	}
	return &Sink{
		writer:            writer,
		network:           network,
		cfg:               cfg,
		logger:            logger.Named("archive"),
		now:               func() time.Time { return time.Now().UTC() },
		blocksRecv:        eventbus.Subscribe[model.BlockIndexed](bus, subscriberCapacity),
		transactionsRecv:  eventbus.Subscribe[model.TxConfirmed](bus, subscriberCapacity),
		rejectedRecv:      eventbus.Subscribe[model.TxRejected](bus, subscriberCapacity),
		announcementsRecv: eventbus.Subscribe[model.AnnouncementObserved](bus, subscriberCapacity),
		reorgRecv:         eventbus.Subscribe[model.Reorged](bus, subscriberCapacity),
	}
}

// Run consumes events until ctx is canceled or the bus is closed. Buffered
// rows are flushed before it returns.
func (s *Sink) Run(ctx context.Context) error {
	defer s.unsubscribe()
	s.start(ctx)
	defer s.stop()

	blocks := s.blocksRecv.C()
	confirmed := s.transactionsRecv.C()
	rejected := s.rejectedRecv.C()
	announcements := s.announcementsRecv.C()
	reorgs := s.reorgRecv.C()

	for blocks != nil || confirmed != nil || rejected != nil || announcements != nil || reorgs != nil {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-blocks:
			if !ok {
				blocks = nil
				continue
			}
			s.addBlock(ctx, ev)

		case ev, ok := <-confirmed:
			if !ok {
				confirmed = nil
				continue
			}
			s.addConfirmed(ctx, ev)

		case ev, ok := <-rejected:
			if !ok {
				rejected = nil
				continue
			}
			s.addRejected(ctx, ev)

		case ev, ok := <-announcements:
			if !ok {
				announcements = nil
				continue
			}
			s.addAnnouncement(ctx, ev)

		case ev, ok := <-reorgs:
			if !ok {
				reorgs = nil
				continue
			}
			s.reorg(ctx, ev)
		}
	}
	return nil
}

func (s *Sink) addBlock(ctx context.Context, ev model.BlockIndexed) {
	s.dropped(ctx, "block", s.blocks.Add(ctx, blockRow(s.network, ev, s.now())))
}

func (s *Sink) addConfirmed(ctx context.Context, ev model.TxConfirmed) {
	s.dropped(ctx, "transaction", s.transactions.Add(ctx, confirmedRow(s.network, ev, s.now())))
}

func (s *Sink) addRejected(ctx context.Context, ev model.TxRejected) {
	s.dropped(ctx, "transaction", s.transactions.Add(ctx, rejectedRow(s.network, ev, s.now())))
}

func (s *Sink) addAnnouncement(ctx context.Context, ev model.AnnouncementObserved) {
	s.dropped(ctx, "announcement", s.announcements.Add(ctx, announcementRow(s.network, ev, s.now())))
}

func (s *Sink) dropped(ctx context.Context, kind string, err error) {
	if err != nil && ctx.Err() == nil {
		s.logger.Warn("archive row dropped", zap.String("kind", kind), zap.Error(err))
	}
}

// reorg writes the rows queued before the rollback so none of them lands
// after the delete. Events are published in order, so everything published
// before ev is already waiting on the receivers.
func (s *Sink) reorg(ctx context.Context, ev model.Reorged) {
	s.pending(ctx)
	for _, flush := range []func(context.Context) error{s.blocks.Flush, s.transactions.Flush, s.announcements.Flush} {
		if err := flush(ctx); err != nil {
			s.logger.Warn("archive rows not flushed before rollback", zap.Error(err))
		}
	}

	if err := s.writer.DeleteAbove(ctx, s.network, ev.Fork.Height); err != nil {
		s.logger.Error("archive rows above fork not deleted",
			zap.Uint64("fork_height", ev.Fork.Height),
			zap.Error(err))
		return
	}
	s.logger.Info("archive rolled back", zap.Uint64("fork_height", ev.Fork.Height), zap.Uint64("from_height", ev.From.Height))
}

func (s *Sink) pending(ctx context.Context) {
	blocks := s.blocksRecv.C()
	confirmed := s.transactionsRecv.C()
	rejected := s.rejectedRecv.C()
	announcements := s.announcementsRecv.C()

	for {
		select {
		case ev, ok := <-blocks:
			if !ok {
				blocks = nil
				continue
			}
			s.addBlock(ctx, ev)
		case ev, ok := <-confirmed:
			if !ok {
				confirmed = nil
				continue
			}
			s.addConfirmed(ctx, ev)
		case ev, ok := <-rejected:
			if !ok {
				rejected = nil
				continue
			}
			s.addRejected(ctx, ev)
		case ev, ok := <-announcements:
			if !ok {
				announcements = nil
				continue
			}
			s.addAnnouncement(ctx, ev)
		default:
			return
		}
	}
}

func (s *Sink) start(ctx context.Context) {
	s.blocks = batcher.New(s.logger.Named("blocks"), s.writer.InsertBlocks, s.cfg.FlushSize, s.cfg.FlushInterval, s.cfg.FlushRPS)
	s.transactions = batcher.New(s.logger.Named("transactions"), s.writer.InsertTransactions, s.cfg.FlushSize, s.cfg.FlushInterval, s.cfg.FlushRPS)
	s.announcements = batcher.New(s.logger.Named("announcements"), s.writer.InsertAnnouncements, s.cfg.FlushSize, s.cfg.FlushInterval, s.cfg.FlushRPS)
	s.blocks.Start(ctx)
	s.transactions.Start(ctx)
	s.announcements.Start(ctx)
}

func (s *Sink) stop() {
	s.announcements.Stop()
	s.transactions.Stop()
	s.blocks.Stop()
}

func (s *Sink) unsubscribe() {
	s.blocksRecv.Close()
	s.transactionsRecv.Close()
	s.rejectedRecv.Close()
	s.announcementsRecv.Close()
	s.reorgRecv.Close()
}
