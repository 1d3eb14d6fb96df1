package access

import (
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/leptonlabs/go-lepton/chain_db/database"
	"github.com/leptonlabs/go-lepton/common/types"
	"github.com/leptonlabs/go-lepton/ledger"
)

type Wallet struct {
	db *leveldb.DB
}

func NewWallet(db *leveldb.DB) *Wallet {
	return &Wallet{
		db: db,
	}
}

func WalletKey(address types.Address) []byte {
	return database.EncodeKey(database.DBKP_WALLET, address.Bytes())
}

func (walletAccess *Wallet) WriteWallet(batch *leveldb.Batch, wallet *ledger.Wallet) error {
	data, err := wallet.DbSerialize()
	if err != nil {
		return err
	}

	batch.Put(WalletKey(wallet.Address), data)
	return nil
}

// GetWallet returns nil with no error when the address has no wallet.
func (walletAccess *Wallet) GetWallet(address types.Address) (*ledger.Wallet, error) {
	data, dgErr := walletAccess.db.Get(WalletKey(address), nil)
	if dgErr != nil {
		if dgErr != leveldb.ErrNotFound {
			return nil, dgErr
		}
		return nil, nil
	}

	wallet := &ledger.Wallet{}
	if dsErr := wallet.DbDeserialize(data); dsErr != nil {
		return nil, dsErr
	}

	return wallet, nil
}

func (walletAccess *Wallet) IterateWallets(visit func(wallet *ledger.Wallet) bool) error {
	prefix := database.EncodeKey(database.DBKP_WALLET)
	iter := walletAccess.db.NewIterator(util.BytesPrefix(prefix), nil)
	defer iter.Release()

	for iter.Next() {
		wallet := &ledger.Wallet{}
		if err := wallet.DbDeserialize(iter.Value()); err != nil {
			return err
		}
		if !visit(wallet) {
			break
		}
	}

	return iter.Error()
}
