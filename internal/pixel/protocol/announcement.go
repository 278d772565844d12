// Package protocol implements the on-chain encodings of the pixel protocol:
// announcement markers, pixel key tweaks and transfer proofs.
package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/goodnatureofminers/pixelnode/internal/pixel/model"
)

// AnnouncementMagic prefixes every announcement data push.
var AnnouncementMagic = []byte("pxl")

const (
	headerSize       = 4 // magic + kind
	issuePayloadSize = model.ChromaSize + 8
	targetSize       = model.ChromaSize + chainhash.HashSize + 4
)

// ErrMalformedAnnouncement is returned for markers carrying the magic but an invalid body.
var ErrMalformedAnnouncement = errors.New("malformed announcement")

// EncodeAnnouncement serializes the data push of an announcement.
func EncodeAnnouncement(a model.Announcement) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(AnnouncementMagic)
	buf.WriteByte(byte(a.Kind))
	buf.Write(a.Chroma[:])

	switch a.Kind {
	case model.AnnouncementIssue:
		var amount [8]byte
		binary.BigEndian.PutUint64(amount[:], a.Amount)
		buf.Write(amount[:])
	case model.AnnouncementFreeze, model.AnnouncementUnfreeze:
		buf.Write(a.Target.TxID[:])
		var vout [4]byte
		binary.BigEndian.PutUint32(vout[:], a.Target.Vout)
		buf.Write(vout[:])
	default:
		return nil, fmt.Errorf("%w: kind %s", ErrMalformedAnnouncement, a.Kind)
	}
	return buf.Bytes(), nil
}

// AnnouncementScript builds the OP_RETURN output script carrying a.
func AnnouncementScript(a model.Announcement) ([]byte, error) {
	data, err := EncodeAnnouncement(a)
	if err != nil {
		return nil, err
	}
	return txscript.NullDataScript(data)
}

// DecodeAnnouncement parses an output script. ok is false when the script is
// not an announcement at all; err is set when it carries the magic but is invalid.
func DecodeAnnouncement(txid chainhash.Hash, vout uint32, pkScript []byte) (ann model.Announcement, ok bool, err error) {
	data, found := nullData(pkScript)
	if !found || !bytes.HasPrefix(data, AnnouncementMagic) {
		return model.Announcement{}, false, nil
	}
	if len(data) < headerSize+model.ChromaSize {
		return model.Announcement{}, true, fmt.Errorf("%w: %d bytes", ErrMalformedAnnouncement, len(data))
	}

	ann = model.Announcement{
		TxID: txid,
		Vout: vout,
		Kind: model.AnnouncementKind(data[3]),
	}
	body := data[headerSize:]
	copy(ann.Chroma[:], body[:model.ChromaSize])

	switch ann.Kind {
	case model.AnnouncementIssue:
		if len(body) != issuePayloadSize {
			return model.Announcement{}, true, fmt.Errorf("%w: issue payload of %d bytes", ErrMalformedAnnouncement, len(body))
		}
		ann.Amount = binary.BigEndian.Uint64(body[model.ChromaSize:])
		if ann.Amount == 0 {
			return model.Announcement{}, true, fmt.Errorf("%w: zero issue amount", ErrMalformedAnnouncement)
		}
	case model.AnnouncementFreeze, model.AnnouncementUnfreeze:
		if len(body) != targetSize {
			return model.Announcement{}, true, fmt.Errorf("%w: %s payload of %d bytes", ErrMalformedAnnouncement, ann.Kind, len(body))
		}
		copy(ann.Target.TxID[:], body[model.ChromaSize:model.ChromaSize+chainhash.HashSize])
		ann.Target.Vout = binary.BigEndian.Uint32(body[model.ChromaSize+chainhash.HashSize:])
	default:
		return model.Announcement{}, true, fmt.Errorf("%w: kind %d", ErrMalformedAnnouncement, data[3])
	}
	return ann, true, nil
}

// TxAnnouncements returns the valid announcements of tx and the errors of
// malformed markers.
func TxAnnouncements(tx *wire.MsgTx) ([]model.Announcement, []error) {
	var (
		anns []model.Announcement
		errs []error
	)
	txid := tx.TxHash()
	for vout, out := range tx.TxOut {
		ann, ok, err := DecodeAnnouncement(txid, uint32(vout), out.PkScript)
		if !ok {
			continue
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("output %d: %w", vout, err))
			continue
		}
		anns = append(anns, ann)
	}
	return anns, errs
}

// nullData returns the single data push of an OP_RETURN script.
func nullData(script []byte) ([]byte, bool) {
	tok := txscript.MakeScriptTokenizer(0, script)
	if !tok.Next() || tok.Opcode() != txscript.OP_RETURN {
		return nil, false
	}
	if !tok.Next() {
		return nil, false
	}
	data := tok.Data()
	if tok.Next() || tok.Err() != nil {
		return nil, false
	}
	return data, true
}
