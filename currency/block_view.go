package currency

import (
	"github.com/syndtr/goleveldb/leveldb"

	"github.com/leptonlabs/go-lepton/chain_db"
	"github.com/leptonlabs/go-lepton/common/types"
	"github.com/leptonlabs/go-lepton/ledger"
)

// blockView is the mutable state of one in-progress block. Handlers
// read through it so they see the effects of earlier transactions in
// the same block, and stage their writes into it; nothing reaches the
// committed store (or queries) until the whole block commits in one
// batch.
type blockView struct {
	chainDb *chain_db.ChainDb

	batch  *leveldb.Batch
	staged map[types.Address]*ledger.Wallet
}

func newBlockView(chainDb *chain_db.ChainDb) *blockView {
	return &blockView{
		chainDb: chainDb,

		batch:  new(leveldb.Batch),
		staged: make(map[types.Address]*ledger.Wallet),
	}
}

// getWallet returns a private copy; mutations only take effect once the
// handler stages them back.
func (view *blockView) getWallet(address types.Address) (*ledger.Wallet, error) {
	if wallet, ok := view.staged[address]; ok {
		return wallet.Copy(), nil
	}
	return view.chainDb.GetWallet(address)
}

// stage records a handler's full effect. Handlers call it exactly once,
// after every check has passed, so a failed transaction stages nothing.
func (view *blockView) stage(wallets ...*ledger.Wallet) error {
	for _, wallet := range wallets {
		if err := view.chainDb.Wallet.WriteWallet(view.batch, wallet); err != nil {
			return err
		}
		view.staged[wallet.Address] = wallet
	}
	return nil
}
