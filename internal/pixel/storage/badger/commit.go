package badger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/dgraph-io/badger/v3"
	"github.com/timshannon/badgerhold/v4"
	"go.uber.org/zap"

	"github.com/goodnatureofminers/pixelnode/internal/pixel/model"
	"github.com/goodnatureofminers/pixelnode/pkg/safe"
)

// Commit applies every effect of one block in a single transaction. The block
// must extend the stored progress.
func (s *Storage) Commit(ctx context.Context, c model.BlockCommit) error {
	height := c.Block.Height
	return s.update(ctx, "commit", height, func(txn *badger.Txn) error {
		if err := s.checkExtends(txn, c); err != nil {
			return err
		}
		for _, m := range c.Included {
			pos := positionRecord{TxID: m.TxID, Height: height, Index: m.Index, BlockHash: c.Block.Hash}
			if err := s.store.TxUpsert(txn, txKey(m.TxID), pos); err != nil {
				return fmt.Errorf("place tx %s: %w", m.TxID, err)
			}
		}
		for _, m := range c.Mined {
			if err := s.markMined(txn, m, c.Block); err != nil {
				return err
			}
		}
		for _, v := range c.Verdicts {
			if err := s.applyVerdict(txn, v, height); err != nil {
				return err
			}
		}
		for i, ann := range c.Observed {
			if err := s.store.TxUpsert(txn, ann.ID(), newAnnouncementRecord(ann, height, i)); err != nil {
				return fmt.Errorf("insert announcement %s: %w", ann.ID(), err)
			}
		}
		for _, ann := range c.Activated {
			if err := s.activate(txn, ann, height); err != nil {
				return err
			}
		}
		for _, out := range c.Created {
			out.CreatedHeight = height
			if err := s.store.TxUpsert(txn, outPointKey(out.OutPoint), newInventoryRecord(out)); err != nil {
				return fmt.Errorf("insert output %s: %w", out.OutPoint, err)
			}
		}
		for _, sp := range c.Spent {
			if err := s.markSpent(txn, sp, height); err != nil {
				return err
			}
		}

		block := blockRecord{Height: height, Hash: c.Block.Hash, PrevHash: c.PrevHash}
		if err := s.store.TxUpsert(txn, height, block); err != nil {
			return fmt.Errorf("insert block: %w", err)
		}
		if err := s.store.TxUpsert(txn, progressKey, progressRecord{Height: height, Hash: c.Block.Hash}); err != nil {
			return fmt.Errorf("update progress: %w", err)
		}
		return nil
	})
}

func (s *Storage) checkExtends(txn *badger.Txn, c model.BlockCommit) error {
	var progress progressRecord
	err := s.store.TxGet(txn, progressKey, &progress)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("get progress: %w", err)
	}
	if c.Block.Height != progress.Height+1 || c.PrevHash != progress.Hash {
		return fmt.Errorf("%w: committed %d/%s, got %d with parent %s",
			ErrOutOfOrder, progress.Height, progress.Hash, c.Block.Height, c.PrevHash)
	}
	return nil
}

func (s *Storage) markMined(txn *badger.Txn, m model.MinedTx, block model.Progress) error {
	var rec txRecord
	err := s.store.TxGet(txn, txKey(m.TxID), &rec)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("get tx %s: %w", m.TxID, err)
	}
	if model.TxStatus(rec.Status) != model.TxPending {
		return nil
	}
	rec.MinedHeight = block.Height
	rec.MinedIndex = m.Index
	rec.MinedHash = block.Hash
	if err := s.store.TxUpdate(txn, txKey(m.TxID), rec); err != nil {
		return fmt.Errorf("mark tx %s mined: %w", m.TxID, err)
	}
	return nil
}

// applyVerdict moves a pending state forward. States that are no longer
// pending are left untouched.
func (s *Storage) applyVerdict(txn *badger.Txn, v model.TxVerdict, height uint64) error {
	var rec txRecord
	err := s.store.TxGet(txn, txKey(v.TxID), &rec)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("get tx %s: %w", v.TxID, err)
	}
	if model.TxStatus(rec.Status) != model.TxPending {
		return nil
	}
	status := v.Verdict.Status()
	rec.Status = uint8(status)
	rec.setVerdict(v.Verdict)
	rec.CheckedHeight = height
	if status == model.TxIndexed {
		rec.IndexedHeight = height
	}
	if err := s.store.TxUpdate(txn, txKey(v.TxID), rec); err != nil {
		return fmt.Errorf("update tx %s: %w", v.TxID, err)
	}
	return nil
}

// activate makes an observed announcement take effect at height.
func (s *Storage) activate(txn *badger.Txn, ann model.Announcement, height uint64) error {
	var rec announcementRecord
	if err := s.store.TxGet(txn, ann.ID(), &rec); err != nil {
		return fmt.Errorf("get announcement %s: %w", ann.ID(), err)
	}
	if rec.ActivatedHeight > 0 {
		return nil
	}
	rec.ActivatedHeight = height
	if err := s.store.TxUpdate(txn, ann.ID(), rec); err != nil {
		return fmt.Errorf("activate announcement %s: %w", ann.ID(), err)
	}
	return s.applyAnnouncement(txn, rec.model(), height)
}

// applyAnnouncement changes the chroma registry or the frozen set. Freezes of
// a chroma that was never issued are ignored.
func (s *Storage) applyAnnouncement(txn *badger.Txn, ann model.Announcement, height uint64) error {
	switch ann.Kind {
	case model.AnnouncementIssue:
		var rec chromaRecord
		err := s.store.TxGet(txn, ann.Chroma.String(), &rec)
		switch {
		case errors.Is(err, badgerhold.ErrNotFound):
			rec = chromaRecord{Chroma: ann.Chroma, RegisteredHeight: height}
		case err != nil:
			return fmt.Errorf("get chroma %s: %w", ann.Chroma, err)
		}
		supply, err := safe.AddUint64(rec.TotalSupply, ann.Amount)
		if err != nil {
			s.logger.Warn("chroma supply saturated", zap.Stringer("chroma", ann.Chroma), zap.String("announcement", ann.ID()))
			supply = math.MaxUint64
		}
		rec.TotalSupply = supply
		if err := s.store.TxUpsert(txn, ann.Chroma.String(), rec); err != nil {
			return fmt.Errorf("register chroma %s: %w", ann.Chroma, err)
		}
	case model.AnnouncementFreeze, model.AnnouncementUnfreeze:
		err := s.store.TxGet(txn, ann.Chroma.String(), &chromaRecord{})
		if errors.Is(err, badgerhold.ErrNotFound) {
			s.logger.Info("announcement of an unregistered chroma ignored",
				zap.String("announcement", ann.ID()), zap.Stringer("kind", ann.Kind))
			return nil
		}
		if err != nil {
			return fmt.Errorf("get chroma %s: %w", ann.Chroma, err)
		}
		key := frozenKey(ann.Target, ann.Chroma)
		if ann.Kind == model.AnnouncementFreeze {
			rec := frozenRecord{TxID: ann.Target.TxID, Vout: ann.Target.Vout, Chroma: ann.Chroma, FrozenBy: ann.ID(), Height: height}
			if err := s.store.TxUpsert(txn, key, rec); err != nil {
				return fmt.Errorf("freeze %s: %w", ann.Target, err)
			}
			return nil
		}
		err = s.store.TxDelete(txn, key, frozenRecord{})
		if err != nil && !errors.Is(err, badgerhold.ErrNotFound) {
			return fmt.Errorf("unfreeze %s: %w", ann.Target, err)
		}
	default:
		return fmt.Errorf("announcement %s: unknown kind", ann.ID())
	}
	return nil
}

// markSpent records the spender of an inventory output. The first spender on
// the best chain wins; a later entry for the same spender only updates whether
// the pixels were burned.
func (s *Storage) markSpent(txn *badger.Txn, sp model.SpentOutput, height uint64) error {
	var rec inventoryRecord
	err := s.store.TxGet(txn, outPointKey(sp.OutPoint), &rec)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("get output %s: %w", sp.OutPoint, err)
	}
	if rec.SpentHeight > 0 && rec.SpentBy != sp.SpentBy {
		s.logger.Warn("output already spent by another transaction",
			zap.Stringer("outpoint", sp.OutPoint),
			zap.Stringer("spent_by", rec.SpentBy),
			zap.Stringer("spender", sp.SpentBy))
		return nil
	}
	if rec.SpentHeight == 0 {
		rec.SpentBy = sp.SpentBy
		rec.SpentHeight = height
	}
	switch {
	case sp.Burned && rec.BurnedHeight == 0:
		rec.BurnedHeight = height
	case !sp.Burned:
		rec.BurnedHeight = 0
	}
	if err := s.store.TxUpdate(txn, outPointKey(sp.OutPoint), rec); err != nil {
		return fmt.Errorf("spend output %s: %w", sp.OutPoint, err)
	}
	return nil
}

// Rollback reverts every effect committed above fork and resets the progress
// to fork. The frozen set and the chroma registry are rebuilt from the
// announcements that remain active.
func (s *Storage) Rollback(ctx context.Context, fork model.Progress) error {
	f := fork.Height
	return s.update(ctx, "rollback", f, func(txn *badger.Txn) error {
		if err := s.rollbackTxStates(txn, f); err != nil {
			return err
		}
		if err := s.rollbackInventory(txn, f); err != nil {
			return err
		}

		if err := s.store.TxDeleteMatching(txn, positionRecord{}, badgerhold.Where("Height").Gt(f)); err != nil {
			return fmt.Errorf("delete positions: %w", err)
		}
		if err := s.rollbackAnnouncements(txn, f); err != nil {
			return err
		}
		if err := s.rebuildAuthorization(txn); err != nil {
			return err
		}

		if err := s.store.TxDeleteMatching(txn, blockRecord{}, badgerhold.Where("Height").Gt(f)); err != nil {
			return fmt.Errorf("delete blocks: %w", err)
		}
		if err := s.store.TxUpsert(txn, progressKey, progressRecord{Height: f, Hash: fork.Hash}); err != nil {
			return fmt.Errorf("reset progress: %w", err)
		}
		return nil
	})
}

func (s *Storage) rollbackTxStates(txn *badger.Txn, f uint64) error {
	var recs []txRecord
	query := badgerhold.Where("MinedHeight").Gt(f).
		Or(badgerhold.Where("CheckedHeight").Gt(f)).
		Or(badgerhold.Where("IndexedHeight").Gt(f))
	if err := s.store.TxFind(txn, &recs, query); err != nil {
		return fmt.Errorf("find transactions above %d: %w", f, err)
	}
	for _, rec := range recs {
		if rec.CheckedHeight > f || rec.IndexedHeight > f {
			rec.Status = uint8(model.TxPending)
			rec.setVerdict(model.Verdict{})
			rec.CheckedHeight = 0
			rec.IndexedHeight = 0
		}
		if rec.MinedHeight > f {
			rec.MinedHeight = 0
			rec.MinedIndex = 0
			rec.MinedHash = chainhash.Hash{}
		}
		if err := s.store.TxUpdate(txn, txKey(rec.TxID), rec); err != nil {
			return fmt.Errorf("reset tx %s: %w", rec.TxID, err)
		}
	}
	return nil
}

func (s *Storage) rollbackInventory(txn *badger.Txn, f uint64) error {
	if err := s.store.TxDeleteMatching(txn, inventoryRecord{}, badgerhold.Where("CreatedHeight").Gt(f)); err != nil {
		return fmt.Errorf("delete outputs: %w", err)
	}
	var spent []inventoryRecord
	query := badgerhold.Where("SpentHeight").Gt(f).Or(badgerhold.Where("BurnedHeight").Gt(f))
	if err := s.store.TxFind(txn, &spent, query); err != nil {
		return fmt.Errorf("find spent outputs: %w", err)
	}
	for _, rec := range spent {
		if rec.SpentHeight > f {
			rec.SpentBy = chainhash.Hash{}
			rec.SpentHeight = 0
			rec.BurnedHeight = 0
		}
		if rec.BurnedHeight > f {
			rec.BurnedHeight = 0
		}
		op := model.OutPoint{TxID: rec.TxID, Vout: rec.Vout}
		if err := s.store.TxUpdate(txn, outPointKey(op), rec); err != nil {
			return fmt.Errorf("unspend output %s: %w", op, err)
		}
	}
	return nil
}

func (s *Storage) rollbackAnnouncements(txn *badger.Txn, f uint64) error {
	if err := s.store.TxDeleteMatching(txn, announcementRecord{}, badgerhold.Where("Height").Gt(f)); err != nil {
		return fmt.Errorf("delete announcements: %w", err)
	}
	var activated []announcementRecord
	if err := s.store.TxFind(txn, &activated, badgerhold.Where("ActivatedHeight").Gt(f)); err != nil {
		return fmt.Errorf("find activated announcements: %w", err)
	}
	for _, rec := range activated {
		rec.ActivatedHeight = 0
		id := rec.model().ID()
		if err := s.store.TxUpdate(txn, id, rec); err != nil {
			return fmt.Errorf("deactivate announcement %s: %w", id, err)
		}
	}
	return nil
}

func (s *Storage) rebuildAuthorization(txn *badger.Txn) error {
	if err := s.store.TxDeleteMatching(txn, frozenRecord{}, nil); err != nil {
		return fmt.Errorf("clear frozen outputs: %w", err)
	}
	if err := s.store.TxDeleteMatching(txn, chromaRecord{}, nil); err != nil {
		return fmt.Errorf("clear chromas: %w", err)
	}
	var active []announcementRecord
	if err := s.store.TxFind(txn, &active, badgerhold.Where("ActivatedHeight").Gt(uint64(0))); err != nil {
		return fmt.Errorf("find active announcements: %w", err)
	}
	sort.Slice(active, func(i, j int) bool {
		if active[i].ActivatedHeight != active[j].ActivatedHeight {
			return active[i].ActivatedHeight < active[j].ActivatedHeight
		}
		return chainOrder(active[i], active[j])
	})
	for _, rec := range active {
		if err := s.applyAnnouncement(txn, rec.model(), rec.ActivatedHeight); err != nil {
			return err
		}
	}
	return nil
}

func serializeTx(tx *wire.MsgTx) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(tx.SerializeSize())
	if err := tx.Serialize(&buf); err != nil {
		return nil, fmt.Errorf("serialize tx: %w", err)
	}
	return buf.Bytes(), nil
}
