package ledger

import (
	"github.com/fxamacker/cbor/v2"

	"github.com/leptonlabs/go-lepton/common/types"
)

// Wallet is the per-account ledger record. Name is fixed at creation,
// Balance never goes below zero, and HistoryLen counts the transactions
// applied to this wallet in block order.
type Wallet struct {
	Address    types.Address `json:"address"`
	Name       string        `json:"name"`
	Balance    uint64        `json:"balance"`
	HistoryLen uint64        `json:"historyLen"`
}

// Db records must encode identically on every node, so the CBOR encode
// mode is pinned to the canonical form.
var dbEncMode, _ = cbor.CanonicalEncOptions().EncMode()

func (w *Wallet) DbSerialize() ([]byte, error) {
	return dbEncMode.Marshal(w)
}

func (w *Wallet) DbDeserialize(buf []byte) error {
	return cbor.Unmarshal(buf, w)
}

func (w *Wallet) Copy() *Wallet {
	c := *w
	return &c
}
