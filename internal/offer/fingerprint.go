package offer

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"

	"github.com/ethereum/go-ethereum/common"
)

// Fingerprint identifies an offer by its content: every coin spend (coin id,
// serialized reveal and solution) in order, then the aggregated signature.
// Re-encoding the same document with other whitespace or key order does not
// change it. ok is false when raw is not an offer document.
func Fingerprint(raw []byte) (fp common.Hash, ok bool) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil || len(doc.CoinSpends) == 0 {
		return common.Hash{}, false
	}
	h := sha256.New()
	var n [4]byte
	binary.BigEndian.PutUint32(n[:], uint32(len(doc.CoinSpends)))
	h.Write(n[:])
	for _, cs := range doc.CoinSpends {
		if cs.PuzzleReveal == nil || cs.Solution == nil {
			return common.Hash{}, false
		}
		id := cs.Coin.ID()
		h.Write(id[:])
		h.Write(cs.PuzzleReveal.Serialize())
		h.Write(cs.Solution.Serialize())
	}
	h.Write(doc.AggregatedSignature[:])
	return common.BytesToHash(h.Sum(nil)), true
}
