package bitcoin

import (
	"context"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"

	"github.com/goodnatureofminers/pixelnode/internal/pixel/model"
	"github.com/goodnatureofminers/pixelnode/pkg/safe"
)

// ErrTxNotFound is returned when the node does not know a transaction.
var ErrTxNotFound = errors.New("transaction not found")

// Source implements chain.Source over a bitcoin node.
type Source struct {
	rpc RPCClient
}

// NewSource creates a Source.
func NewSource(rpc RPCClient) *Source {
	return &Source{rpc: rpc}
}

// BestHeight returns the height of the node's best block.
func (s *Source) BestHeight(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	count, err := s.rpc.GetBlockCount()
	if err != nil {
		return 0, err
	}
	height, err := safe.Uint64(count)
	if err != nil {
		return 0, fmt.Errorf("block count overflow: %w", err)
	}
	return height, nil
}

// BlockHash returns the hash of the best chain block at height.
func (s *Source) BlockHash(ctx context.Context, height uint64) (chainhash.Hash, error) {
	h, err := safe.Int64(height)
	if err != nil {
		return chainhash.Hash{}, fmt.Errorf("block height exceeds rpc limit: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return chainhash.Hash{}, err
	}
	hash, err := s.rpc.GetBlockHash(h)
	if err != nil {
		return chainhash.Hash{}, fmt.Errorf("get block hash at height %d: %w", height, err)
	}
	return *hash, nil
}

// Block fetches the best chain block at height.
func (s *Source) Block(ctx context.Context, height uint64) (*model.Block, error) {
	hash, err := s.BlockHash(ctx, height)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	msg, err := s.rpc.GetBlock(&hash)
	if err != nil {
		return nil, fmt.Errorf("get block %s: %w", hash, err)
	}
	if got := msg.BlockHash(); got != hash {
		return nil, fmt.Errorf("block %s: node returned %s", hash, got)
	}
	return model.BlockFromWire(height, msg), nil
}

// TxOut returns the output at op, spent or not.
func (s *Source) TxOut(ctx context.Context, op model.OutPoint) (*wire.TxOut, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tx, err := s.rpc.GetRawTransaction(&op.TxID)
	if err != nil {
		var rpcErr *btcjson.RPCError
		if errors.As(err, &rpcErr) && rpcErr.Code == btcjson.ErrRPCNoTxInfo {
			return nil, fmt.Errorf("tx %s: %w", op.TxID, ErrTxNotFound)
		}
		return nil, fmt.Errorf("get raw transaction %s: %w", op.TxID, err)
	}
	outs := tx.MsgTx().TxOut
	if int(op.Vout) >= len(outs) {
		return nil, fmt.Errorf("tx %s has %d outputs, want index %d", op.TxID, len(outs), op.Vout)
	}
	return outs[op.Vout], nil
}

// ChainParams returns the btcd parameters of a network.
func ChainParams(network model.Network) (*chaincfg.Params, error) {
	switch network {
	case model.NetworkMainnet:
		return &chaincfg.MainNetParams, nil
	case model.NetworkTestnet:
		return &chaincfg.TestNet3Params, nil
	case model.NetworkRegtest:
		return &chaincfg.RegressionNetParams, nil
	case model.NetworkSignet:
		return &chaincfg.SigNetParams, nil
	default:
		return nil, fmt.Errorf("unsupported network %q", network)
	}
}

// CheckNetwork verifies that the node serves the chain of network.
func (s *Source) CheckNetwork(ctx context.Context, network model.Network) error {
	params, err := ChainParams(network)
	if err != nil {
		return err
	}
	genesis, err := s.BlockHash(ctx, 0)
	if err != nil {
		return err
	}
	if genesis != *params.GenesisHash {
		return fmt.Errorf("node genesis %s does not match %s genesis %s", genesis, network, params.GenesisHash)
	}
	return nil
}
