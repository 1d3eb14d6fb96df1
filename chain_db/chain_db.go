package chain_db

import (
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"github.com/inconshreveable/log15"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"

	"github.com/leptonlabs/go-lepton/chain_db/access"
	"github.com/leptonlabs/go-lepton/chain_db/database"
	"github.com/leptonlabs/go-lepton/common/types"
	"github.com/leptonlabs/go-lepton/ledger"
)

const walletCacheSize = 10 * 10000

// ChainDb is the committed ledger state. All mutation goes through
// Commit with a batch assembled by the block executor, so readers only
// ever observe whole blocks.
type ChainDb struct {
	db *leveldb.DB

	Wallet *access.Wallet

	// commitMu orders cache fills against commits. A reader that read
	// the pre-block value from leveldb must not install it into the
	// cache after Commit has purged; otherwise queries would keep
	// serving the stale wallet until the next purge.
	commitMu    sync.RWMutex
	walletCache *lru.Cache

	log log15.Logger
}

func NewChainDb(dbDir string) (*ChainDb, error) {
	db, err := database.NewLevelDb(dbDir)
	if err != nil {
		return nil, errors.WithMessage(err, "database.NewLevelDb failed")
	}

	return newChainDb(db)
}

// NewMemChainDb is NewChainDb over in-memory storage.
func NewMemChainDb() (*ChainDb, error) {
	db, err := database.NewMemoryDb()
	if err != nil {
		return nil, errors.WithMessage(err, "database.NewMemoryDb failed")
	}

	return newChainDb(db)
}

func newChainDb(db *leveldb.DB) (*ChainDb, error) {
	walletCache, err := lru.New(walletCacheSize)
	if err != nil {
		return nil, err
	}

	return &ChainDb{
		db: db,

		Wallet: access.NewWallet(db),

		walletCache: walletCache,

		log: log15.New("module", "chain_db"),
	}, nil
}

func (chainDb *ChainDb) Db() *leveldb.DB {
	return chainDb.db
}

// GetWallet reads committed state only.
func (chainDb *ChainDb) GetWallet(address types.Address) (*ledger.Wallet, error) {
	chainDb.commitMu.RLock()
	defer chainDb.commitMu.RUnlock()

	if value, ok := chainDb.walletCache.Get(address); ok {
		return value.(*ledger.Wallet).Copy(), nil
	}

	wallet, err := chainDb.Wallet.GetWallet(address)
	if err != nil {
		return nil, err
	}
	if wallet != nil {
		chainDb.walletCache.Add(address, wallet.Copy())
	}

	return wallet, nil
}

// Commit writes one block's mutations atomically. The wallet cache is
// dropped rather than patched; it refills from committed state on read.
func (chainDb *ChainDb) Commit(batch *leveldb.Batch) error {
	chainDb.commitMu.Lock()
	defer chainDb.commitMu.Unlock()

	if err := chainDb.db.Write(batch, nil); err != nil {
		return errors.WithMessage(err, "db.Write failed")
	}

	chainDb.walletCache.Purge()
	chainDb.log.Debug("batch committed", "len", batch.Len())
	return nil
}

func (chainDb *ChainDb) Close() error {
	chainDb.commitMu.Lock()
	defer chainDb.commitMu.Unlock()

	chainDb.walletCache.Purge()
	return chainDb.db.Close()
}
