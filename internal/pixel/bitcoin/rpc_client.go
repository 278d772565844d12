package bitcoin

import (
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// ObservedClient wraps an RPC client with metrics instrumentation.
type ObservedClient struct {
	client     RPCClient
	rpcMetrics RPCMetrics
}

// NewObservedClient constructs an instrumented RPC client.
func NewObservedClient(client RPCClient, rpcMetrics RPCMetrics) *ObservedClient {
	return &ObservedClient{
		client:     client,
		rpcMetrics: rpcMetrics,
	}
}

// GetBlockCount returns the height of the best block.
func (r *ObservedClient) GetBlockCount() (count int64, err error) {
	started := time.Now()
	defer func() {
		r.rpcMetrics.Observe("get_block_count", err, started)
	}()
	return r.client.GetBlockCount()
}

// GetBlockHash returns the hash of the best chain block at a height.
func (r *ObservedClient) GetBlockHash(blockHeight int64) (hash *chainhash.Hash, err error) {
	started := time.Now()
	defer func() {
		r.rpcMetrics.Observe("get_block_hash", err, started)
	}()
	return r.client.GetBlockHash(blockHeight)
}

// GetBlock returns the raw block with the given hash.
func (r *ObservedClient) GetBlock(blockHash *chainhash.Hash) (block *wire.MsgBlock, err error) {
	started := time.Now()
	defer func() {
		r.rpcMetrics.Observe("get_block", err, started)
	}()
	return r.client.GetBlock(blockHash)
}

// GetRawTransaction returns a transaction by id. The node needs a transaction
// index for transactions outside its mempool.
func (r *ObservedClient) GetRawTransaction(txHash *chainhash.Hash) (tx *btcutil.Tx, err error) {
	started := time.Now()
	defer func() {
		r.rpcMetrics.Observe("get_raw_transaction", err, started)
	}()
	return r.client.GetRawTransaction(txHash)
}
