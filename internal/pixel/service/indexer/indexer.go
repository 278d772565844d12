// Package indexer drives the per block pipeline: fetch, extract, check,
// commit and publish. A single goroutine runs it; storage is written only
// from the commit stage.
package indexer

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goodnatureofminers/pixelnode/internal/clock"
	"github.com/goodnatureofminers/pixelnode/internal/eventbus"
	"github.com/goodnatureofminers/pixelnode/internal/pixel/chain"
	"github.com/goodnatureofminers/pixelnode/internal/pixel/model"
	"github.com/goodnatureofminers/pixelnode/internal/pixel/subindexer"
)

// Indexer is the block indexer.
type Indexer struct {
	params   model.IndexingParams
	loader   Loader
	store    Store
	resolver Resolver
	verifier Verifier
	table    Extractor
	bus      *eventbus.Bus
	metrics  Metrics
	logger   *zap.Logger

	backoff clock.Backoff
	sleep   func(context.Context, time.Duration) error
	wake    chan struct{}
}

// New builds an Indexer. params is copied and never changes afterwards.
func New(
	params model.IndexingParams,
	loader Loader,
	store Store,
	resolver Resolver,
	verifier Verifier,
	table Extractor,
	bus *eventbus.Bus,
	metrics Metrics,
	logger *zap.Logger,
) (*Indexer, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if metrics == nil {
		return nil, errors.New("indexer metrics is required")
	}
	return &Indexer{
		params:   params,
		loader:   loader,
		store:    store,
		resolver: resolver,
		verifier: verifier,
		table:    table,
		bus:      bus,
		metrics:  metrics,
		logger:   logger.Named("indexer").With(zap.String("network", string(params.Network))),
		backoff:  clock.Backoff{Base: params.RetryBackoff, Max: params.MaxBackoff},
		sleep:    clock.SleepWithContext,
		wake:     make(chan struct{}, 1),
	}, nil
}

// Wake interrupts an idle wait so the source is polled immediately.
func (i *Indexer) Wake() {
	select {
	case i.wake <- struct{}{}:
	default:
	}
}

// Run indexes blocks until ctx is canceled or a fatal error occurs. Failed
// stages are retried from fetch with bounded backoff; once RetryCeiling
// consecutive attempts failed a *FatalError is returned.
func (i *Indexer) Run(ctx context.Context) error {
	p := i.loader.Progress()
	i.logger.Info("indexer started",
		zap.Uint64("height", p.Height),
		zap.Stringer("hash", p.Hash),
		zap.Uint64("confirmations", i.params.Confirmations))

	failures := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := i.step(ctx)
		switch {
		case err == nil:
			failures = 0
			continue
		case errors.Is(err, chain.ErrNoMoreBlocks):
			failures = 0
			if err := i.idle(ctx); err != nil {
				return err
			}
			continue
		case ctx.Err() != nil:
			return ctx.Err()
		}

		var fatal *FatalError
		if errors.As(err, &fatal) {
			i.logger.Error("indexer stopped", zap.Error(fatal))
			return fatal
		}

		se := stageOf(err)
		failures++
		if failures > i.params.RetryCeiling {
			fatal = se.fatal()
			i.logger.Error("retry ceiling reached", zap.Int("attempts", failures), zap.Error(fatal))
			return fatal
		}
		delay := i.backoff.Delay(failures)
		i.metrics.ObserveRetry(se.stage)
		i.logger.Warn("block processing failed, retrying",
			zap.String("stage", se.stage),
			zap.Uint64("height", se.height),
			zap.Int("attempt", failures),
			zap.Duration("backoff", delay),
			zap.Error(se.err))
		if err := i.sleep(ctx, delay); err != nil {
			return err
		}
	}
}

func (i *Indexer) idle(ctx context.Context) error {
	woken, err := clock.WaitWithContext(ctx, i.params.PollInterval, i.wake)
	if woken {
		i.logger.Debug("woken before poll interval")
	}
	return err
}

// step fetches the next block and either indexes it or handles a reorg.
func (i *Indexer) step(ctx context.Context) error {
	started := time.Now()
	block, err := i.loader.Next(ctx)

	var (
		reorg   *chain.ReorgError
		tooDeep *chain.ReorgTooDeepError
	)
	switch {
	case err == nil:
		i.metrics.ObserveStage(stageFetch, nil, started)
		return i.index(ctx, block)
	case errors.Is(err, chain.ErrNoMoreBlocks):
		return err
	case errors.As(err, &reorg):
		return i.rollback(ctx, reorg)
	}

	i.metrics.ObserveStage(stageFetch, err, started)
	if errors.As(err, &tooDeep) {
		return &FatalError{Stage: stageFetch, Height: tooDeep.Height, Hash: tooDeep.Hash, Err: err}
	}
	return &stageError{stage: stageFetch, height: i.loader.Progress().Height + 1, err: err}
}

func (i *Indexer) rollback(ctx context.Context, reorg *chain.ReorgError) error {
	started := time.Now()
	err := i.store.Rollback(ctx, reorg.Fork)
	i.metrics.ObserveStage(stageRollback, err, started)
	if err != nil {
		return &stageError{stage: stageRollback, height: reorg.Fork.Height, hash: reorg.Fork.Hash, err: err}
	}

	i.loader.Reset(reorg.Fork)
	i.metrics.ObserveReorg(reorg.Depth())
	i.logger.Warn("rolled back to common ancestor",
		zap.Uint64("from_height", reorg.Tip.Height),
		zap.Stringer("from_hash", reorg.Tip.Hash),
		zap.Uint64("fork_height", reorg.Fork.Height),
		zap.Stringer("fork_hash", reorg.Fork.Hash),
		zap.Uint64("depth", reorg.Depth()))
	eventbus.Publish(i.bus, model.Reorged{From: reorg.Tip, Fork: reorg.Fork})
	return nil
}

// index runs extract, check and commit for one block and publishes its
// events once the commit succeeded.
func (i *Indexer) index(ctx context.Context, block *model.Block) (err error) {
	started := time.Now()
	candidates := 0
	defer func() {
		i.metrics.ObserveBlock(err, block.Height, candidates, started)
	}()

	events, snapshot, err := i.extract(ctx, block)
	if err != nil {
		return err
	}

	plan, err := newBlockPlan(block, events, snapshot)
	if err != nil {
		return err
	}
	candidates = len(plan.candidates)

	if err := i.check(ctx, plan); err != nil {
		return err
	}

	commit, result := plan.commit()
	stageStarted := time.Now()
	err = i.store.Commit(ctx, commit)
	i.metrics.ObserveStage(stageCommit, err, stageStarted)
	if err != nil {
		return &stageError{stage: stageCommit, height: block.Height, hash: block.Hash, err: err}
	}
	i.loader.Accept(block.Progress())

	i.publish(block, result)
	i.logger.Info("block indexed",
		zap.Uint64("height", block.Height),
		zap.Stringer("hash", block.Hash),
		zap.Int("transactions", len(block.Txs)),
		zap.Int("announcements", len(result.announcements)),
		zap.Int("confirmed", len(result.confirmed)),
		zap.Int("rejected", len(result.rejected)))
	return nil
}

// extract runs the subindexers and takes the authorization snapshot the
// candidates of this block are verified against.
func (i *Indexer) extract(ctx context.Context, block *model.Block) (subindexer.Events, *model.Snapshot, error) {
	started := time.Now()
	var (
		events   subindexer.Events
		snapshot *model.Snapshot
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		events, err = i.table.Extract(gctx, block, i.store)
		return err
	})
	g.Go(func() error {
		var err error
		snapshot, err = i.store.Snapshot(gctx)
		return err
	})
	err := g.Wait()
	i.metrics.ObserveStage(stageExtract, err, started)
	if err != nil {
		return subindexer.Events{}, nil, &stageError{stage: stageExtract, height: block.Height, hash: block.Hash, err: err}
	}
	return events, snapshot, nil
}

func (i *Indexer) check(ctx context.Context, plan *blockPlan) error {
	if len(plan.candidates) == 0 {
		return nil
	}
	block := plan.block

	started := time.Now()
	resolved, err := i.resolver.Resolve(ctx, block, plan.txs())
	i.metrics.ObserveStage(stageResolve, err, started)
	if err != nil {
		return &stageError{stage: stageResolve, height: block.Height, hash: block.Hash, err: err}
	}
	plan.attach(resolved)

	started = time.Now()
	verdicts, err := i.verifier.CheckBatch(ctx, plan.candidates)
	i.metrics.ObserveStage(stageCheck, err, started)
	if err != nil {
		return &stageError{stage: stageCheck, height: block.Height, hash: block.Hash, err: err}
	}
	plan.verdicts = verdicts
	return nil
}

func (i *Indexer) publish(block *model.Block, r blockResult) {
	for _, ann := range r.announcements {
		eventbus.Publish(i.bus, model.AnnouncementObserved{Announcement: ann, Height: block.Height, BlockHash: block.Hash})
	}
	for _, c := range r.confirmed {
		eventbus.Publish(i.bus, c)
	}
	for _, rej := range r.rejected {
		eventbus.Publish(i.bus, rej)
	}
	eventbus.Publish(i.bus, model.BlockIndexed{
		Height:        block.Height,
		Hash:          block.Hash,
		Transactions:  len(block.Txs),
		Announcements: len(r.announcements),
		Confirmed:     len(r.confirmed),
		Rejected:      len(r.rejected),
	})
}
