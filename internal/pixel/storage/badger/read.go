package badger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/dgraph-io/badger/v3"
	"github.com/timshannon/badgerhold/v4"

	"github.com/goodnatureofminers/pixelnode/internal/pixel/model"
	"github.com/goodnatureofminers/pixelnode/internal/pixel/protocol"
)

// SubmitPending records tx as pending together with its proof bundle. A
// transaction already mined on the best chain keeps its block position.
// Submitting a known transaction is a no-op; it reports whether tx was new.
func (s *Storage) SubmitPending(ctx context.Context, tx *wire.MsgTx, bundle protocol.ProofBundle, seen time.Time) (bool, error) {
	raw, err := serializeTx(tx)
	if err != nil {
		return false, err
	}
	proofs, err := protocol.EncodeBundle(bundle)
	if err != nil {
		return false, fmt.Errorf("encode proofs: %w", err)
	}

	txid := tx.TxHash()
	created := false
	err = s.update(ctx, "submit_pending", 0, func(txn *badger.Txn) error {
		var existing txRecord
		err := s.store.TxGet(txn, txKey(txid), &existing)
		if err == nil {
			return nil
		}
		if !errors.Is(err, badgerhold.ErrNotFound) {
			return fmt.Errorf("get tx %s: %w", txid, err)
		}
		rec := txRecord{
			TxID:      txid,
			Status:    uint8(model.TxPending),
			Tx:        raw,
			Proofs:    proofs,
			FirstSeen: seen.UTC(),
		}
		var pos positionRecord
		err = s.store.TxGet(txn, txKey(txid), &pos)
		switch {
		case err == nil:
			rec.MinedHeight = pos.Height
			rec.MinedIndex = pos.Index
			rec.MinedHash = pos.BlockHash
		case !errors.Is(err, badgerhold.ErrNotFound):
			return fmt.Errorf("get position of %s: %w", txid, err)
		}
		created = true
		return s.store.TxInsert(txn, txKey(txid), rec)
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

// GetTxState returns the state of txid or ErrNotFound.
func (s *Storage) GetTxState(ctx context.Context, txid chainhash.Hash) (model.TxState, error) {
	var rec txRecord
	err := s.view(ctx, "get_tx_state", func(txn *badger.Txn) error {
		return s.store.TxGet(txn, txKey(txid), &rec)
	})
	if errors.Is(err, badgerhold.ErrNotFound) {
		return model.TxState{}, fmt.Errorf("tx %s: %w", txid, ErrNotFound)
	}
	if err != nil {
		return model.TxState{}, err
	}
	return rec.model(), nil
}

// PendingByTxIDs returns the pending states among ids.
func (s *Storage) PendingByTxIDs(ctx context.Context, ids []chainhash.Hash) (map[chainhash.Hash]model.TxState, error) {
	out := make(map[chainhash.Hash]model.TxState)
	err := s.view(ctx, "pending_by_txids", func(txn *badger.Txn) error {
		for _, id := range ids {
			var rec txRecord
			err := s.store.TxGet(txn, txKey(id), &rec)
			if errors.Is(err, badgerhold.ErrNotFound) {
				continue
			}
			if err != nil {
				return fmt.Errorf("get tx %s: %w", id, err)
			}
			if model.TxStatus(rec.Status) == model.TxPending {
				out[id] = rec.model()
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// PendingMinedUpTo returns pending transactions mined at or below height,
// ordered by chain position.
func (s *Storage) PendingMinedUpTo(ctx context.Context, height uint64) ([]model.TxState, error) {
	var recs []txRecord
	err := s.view(ctx, "pending_mined_up_to", func(txn *badger.Txn) error {
		query := badgerhold.Where("Status").Eq(uint8(model.TxPending)).
			And("MinedHeight").Gt(uint64(0)).
			And("MinedHeight").Le(height)
		return s.store.TxFind(txn, &recs, query)
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(recs, func(i, j int) bool {
		if recs[i].MinedHeight != recs[j].MinedHeight {
			return recs[i].MinedHeight < recs[j].MinedHeight
		}
		return recs[i].MinedIndex < recs[j].MinedIndex
	})
	out := make([]model.TxState, len(recs))
	for i, r := range recs {
		out[i] = r.model()
	}
	return out, nil
}

// InventoryOutputs returns the known inventory outputs among ops, spent or not.
func (s *Storage) InventoryOutputs(ctx context.Context, ops []model.OutPoint) (map[model.OutPoint]model.InventoryOutput, error) {
	out := make(map[model.OutPoint]model.InventoryOutput)
	err := s.view(ctx, "inventory_outputs", func(txn *badger.Txn) error {
		for _, op := range ops {
			var rec inventoryRecord
			err := s.store.TxGet(txn, outPointKey(op), &rec)
			if errors.Is(err, badgerhold.ErrNotFound) {
				continue
			}
			if err != nil {
				return fmt.Errorf("get output %s: %w", op, err)
			}
			out[op] = rec.model()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Snapshot returns the frozen set and chroma registry as of the last commit.
func (s *Storage) Snapshot(ctx context.Context) (*model.Snapshot, error) {
	var (
		progress progressRecord
		frozen   []frozenRecord
		chromas  []chromaRecord
	)
	err := s.view(ctx, "snapshot", func(txn *badger.Txn) error {
		if err := s.store.TxGet(txn, progressKey, &progress); err != nil && !errors.Is(err, badgerhold.ErrNotFound) {
			return fmt.Errorf("get progress: %w", err)
		}
		if err := s.store.TxFind(txn, &frozen, nil); err != nil {
			return fmt.Errorf("find frozen outputs: %w", err)
		}
		if err := s.store.TxFind(txn, &chromas, nil); err != nil {
			return fmt.Errorf("find chromas: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ops := make([]model.FrozenOutput, len(frozen))
	for i, f := range frozen {
		ops[i] = f.model()
	}
	infos := make([]model.ChromaInfo, len(chromas))
	for i, c := range chromas {
		infos[i] = c.model()
	}
	return model.NewSnapshot(progress.Height, ops, infos), nil
}

// Announcements returns the observed announcements in chain order, including
// those still waiting for confirmations.
func (s *Storage) Announcements(ctx context.Context) ([]model.Announcement, error) {
	var recs []announcementRecord
	err := s.view(ctx, "announcements", func(txn *badger.Txn) error {
		var err error
		recs, err = s.announcementLog(txn)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make([]model.Announcement, len(recs))
	for i, r := range recs {
		out[i] = r.model()
	}
	return out, nil
}

// PendingAnnouncementsUpTo returns the announcements mined at or below height
// that have not taken effect yet, in chain order.
func (s *Storage) PendingAnnouncementsUpTo(ctx context.Context, height uint64) ([]model.Announcement, error) {
	var recs []announcementRecord
	err := s.view(ctx, "pending_announcements_up_to", func(txn *badger.Txn) error {
		query := badgerhold.Where("ActivatedHeight").Eq(uint64(0)).And("Height").Le(height)
		return s.store.TxFind(txn, &recs, query)
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(recs, func(i, j int) bool { return chainOrder(recs[i], recs[j]) })
	out := make([]model.Announcement, len(recs))
	for i, r := range recs {
		out[i] = r.model()
	}
	return out, nil
}

// Progress returns the last committed block. It is zero before the first commit.
func (s *Storage) Progress(ctx context.Context) (model.Progress, error) {
	var rec progressRecord
	err := s.view(ctx, "progress", func(txn *badger.Txn) error {
		err := s.store.TxGet(txn, progressKey, &rec)
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil
		}
		return err
	})
	if err != nil {
		return model.Progress{}, err
	}
	return model.Progress{Height: rec.Height, Hash: rec.Hash}, nil
}

// BlockHash returns the hash committed at height or ErrNotFound.
func (s *Storage) BlockHash(ctx context.Context, height uint64) (chainhash.Hash, error) {
	var rec blockRecord
	err := s.view(ctx, "block_hash", func(txn *badger.Txn) error {
		return s.store.TxGet(txn, height, &rec)
	})
	if errors.Is(err, badgerhold.ErrNotFound) {
		return chainhash.Hash{}, fmt.Errorf("block at height %d: %w", height, ErrNotFound)
	}
	if err != nil {
		return chainhash.Hash{}, err
	}
	return rec.Hash, nil
}

func (s *Storage) announcementLog(txn *badger.Txn) ([]announcementRecord, error) {
	var recs []announcementRecord
	if err := s.store.TxFind(txn, &recs, nil); err != nil {
		return nil, fmt.Errorf("find announcements: %w", err)
	}
	sort.Slice(recs, func(i, j int) bool { return chainOrder(recs[i], recs[j]) })
	return recs, nil
}

func chainOrder(a, b announcementRecord) bool {
	if a.Height != b.Height {
		return a.Height < b.Height
	}
	return a.Position < b.Position
}
