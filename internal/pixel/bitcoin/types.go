// Package bitcoin implements the chain source over a bitcoind compatible JSON-RPC node.
package bitcoin

import (
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

// RPCClient is the subset of the btcd rpcclient used by the source.
type RPCClient interface {
	GetBlockCount() (int64, error)
	GetBlockHash(blockHeight int64) (*chainhash.Hash, error)
	GetBlock(blockHash *chainhash.Hash) (*wire.MsgBlock, error)
	GetRawTransaction(txHash *chainhash.Hash) (*btcutil.Tx, error)
}

// RPCMetrics records metrics for RPC calls.
type RPCMetrics interface {
	Observe(operation string, err error, started time.Time)
}
