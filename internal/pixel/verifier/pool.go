package verifier

import (
	"context"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"go.uber.org/zap"

	"github.com/goodnatureofminers/pixelnode/internal/pixel/model"
	"github.com/goodnatureofminers/pixelnode/pkg/workerpool"
)

// Pool runs the engine on a fixed set of workers behind a bounded queue.
type Pool struct {
	engine  *Engine
	workers *workerpool.Pool[*Candidate, model.Verdict]
	metrics Metrics
	logger  *zap.Logger
}

// NewPool starts workers verification goroutines with a queue of capacity items.
func NewPool(engine *Engine, workers, capacity int, metrics Metrics, logger *zap.Logger) *Pool {
	p := &Pool{
		engine:  engine,
		metrics: metrics,
		logger:  logger.Named("verifier"),
	}
	p.workers = workerpool.New(workers, capacity, p.verify)
	return p
}

func (p *Pool) verify(_ context.Context, c *Candidate) (model.Verdict, error) {
	started := time.Now()
	verdict := p.engine.Verify(c)
	p.metrics.ObserveVerify(verdict, started)
	if !verdict.Valid {
		p.logger.Debug("transaction rejected",
			zap.Stringer("txid", c.TxID),
			zap.String("reason", string(verdict.Reason)),
			zap.String("detail", verdict.Detail))
	}
	return verdict, nil
}

// CheckBatch verifies candidates and returns their verdicts in input order.
// Candidates must be ordered by chain position: a transaction spending an
// output of another candidate comes after it. A candidate whose in-batch
// parent is rejected is rejected as well.
func (p *Pool) CheckBatch(ctx context.Context, candidates []*Candidate) ([]model.Verdict, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	batch := make(map[model.OutPoint]BatchOutput)
	for i, c := range candidates {
		if c.AuthorizeOnly {
			continue
		}
		for vout, proof := range c.Bundle.Outputs {
			batch[model.OutPoint{TxID: c.TxID, Vout: vout}] = BatchOutput{Pixel: proof.Pixel(), Position: i}
		}
	}

	handles := make([]*workerpool.Handle[model.Verdict], len(candidates))
	for i, c := range candidates {
		c.Position = i
		c.Batch = batch
		h, err := p.workers.Submit(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("submit %s: %w", c.TxID, err)
		}
		handles[i] = h
	}

	verdicts := make([]model.Verdict, len(candidates))
	for i, h := range handles {
		v, err := h.Result(ctx)
		if err != nil {
			return nil, fmt.Errorf("await %s: %w", candidates[i].TxID, err)
		}
		verdicts[i] = v
	}

	propagateRejections(candidates, verdicts)
	return verdicts, nil
}

// Close stops the workers after queued candidates are verified.
func (p *Pool) Close() {
	p.workers.Close()
}

// propagateRejections rejects candidates spending pixels of a rejected
// candidate earlier in the batch. Iteration in batch order makes it transitive.
func propagateRejections(candidates []*Candidate, verdicts []model.Verdict) {
	position := make(map[chainhash.Hash]int, len(candidates))
	for i, c := range candidates {
		if c.AuthorizeOnly {
			continue
		}
		if verdicts[i].Valid {
			for _, idx := range sortedKeys(c.Bundle.Inputs) {
				if c.Bundle.Inputs[idx].Pixel().IsEmpty() || int(idx) >= len(c.Tx.TxIn) {
					continue
				}
				j, ok := position[c.Tx.TxIn[idx].PreviousOutPoint.Hash]
				if !ok || verdicts[j].Valid {
					continue
				}
				verdicts[i] = model.Invalid(model.ReasonInvalidParent,
					fmt.Sprintf("parent %s rejected in the same batch", candidates[j].TxID))
				break
			}
		}
		position[c.TxID] = i
	}
}
