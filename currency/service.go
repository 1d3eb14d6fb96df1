package currency

import (
	"sync"

	"github.com/inconshreveable/log15"
	"github.com/pkg/errors"
	"go.uber.org/atomic"

	"github.com/leptonlabs/go-lepton/chain_db"
	"github.com/leptonlabs/go-lepton/common/types"
	"github.com/leptonlabs/go-lepton/ledger"
)

// InitialBalance is credited to every freshly created wallet.
const InitialBalance = 100

// Service is the deterministic core of the currency: it gates
// submissions into the pending pool, applies externally-ordered blocks
// to the ledger store, and serves committed wallet state.
//
// Accepting a submission and applying it are two separate events. The
// hash returned by Submit only acknowledges receipt; the outcome of the
// transaction is observable through GetWallet after some block includes
// it.
type Service struct {
	chainDb *chain_db.ChainDb
	pool    *Pool

	// serializes ApplyBlock; handlers do read-modify-write on shared
	// wallet state and must never interleave
	applyMu sync.Mutex

	submitted atomic.Uint64
	applied   atomic.Uint64
	rejected  atomic.Uint64

	// sum of all wallet balances in committed state, maintained for the
	// conservation check
	totalSupply atomic.Uint64

	log log15.Logger
}

func NewService(chainDb *chain_db.ChainDb, pool *Pool) (*Service, error) {
	s := &Service{
		chainDb: chainDb,
		pool:    pool,

		log: log15.New("module", "currency"),
	}

	var supply uint64
	err := chainDb.Wallet.IterateWallets(func(wallet *ledger.Wallet) bool {
		supply += wallet.Balance
		return true
	})
	if err != nil {
		return nil, errors.WithMessage(err, "IterateWallets failed")
	}
	s.totalSupply.Store(supply)

	return s, nil
}

func (s *Service) Pool() *Pool {
	return s.pool
}

// Submit verifies the envelope and hands it to the pending pool. The
// returned hash is the transaction's identity; it is NOT evidence that
// the transaction will be applied. A transfer of zero is rejected here:
// it could never move funds and would only pollute wallet history.
func (s *Service) Submit(tx *ledger.Transaction) (types.Hash, error) {
	switch tx.Kind {
	case ledger.TxTypeCreateWallet:
	case ledger.TxTypeTransfer:
		if tx.Amount == 0 {
			return types.ZERO_HASH, ErrNonPositiveAmount
		}
	default:
		return types.ZERO_HASH, ErrUnknownTxType
	}

	if !tx.VerifySignature() {
		return types.ZERO_HASH, ErrInvalidSignature
	}

	hash := tx.ComputeHash()
	if err := s.pool.Add(tx); err != nil {
		// identical envelope already pending; the ack is the same
		return hash, nil
	}
	s.submitted.Inc()

	s.log.Debug("transaction accepted into pool", "hash", hash, "kind", tx.Kind)
	return hash, nil
}

// GetWallet reads the latest committed state. A missing wallet is
// ErrWalletNotFound, never a zero-balance wallet.
func (s *Service) GetWallet(address types.Address) (*ledger.Wallet, error) {
	wallet, err := s.chainDb.GetWallet(address)
	if err != nil {
		return nil, errors.WithMessage(err, "chainDb.GetWallet failed")
	}
	if wallet == nil {
		return nil, ErrWalletNotFound
	}
	return wallet, nil
}

// TotalSupply is the expected sum of all committed wallet balances.
func (s *Service) TotalSupply() uint64 {
	return s.totalSupply.Load()
}

// VerifySupply recomputes the balance sum from the store and compares
// it against the maintained total. A mismatch means the conservation
// invariant broke, which is a defect, not a condition to retry.
func (s *Service) VerifySupply() error {
	var supply uint64
	err := s.chainDb.Wallet.IterateWallets(func(wallet *ledger.Wallet) bool {
		supply += wallet.Balance
		return true
	})
	if err != nil {
		return errors.WithMessage(err, "IterateWallets failed")
	}

	if expected := s.totalSupply.Load(); supply != expected {
		return errors.Errorf("total supply mismatch: store has %d, expected %d", supply, expected)
	}
	return nil
}

func (s *Service) Stats() (submitted, applied, rejected uint64) {
	return s.submitted.Load(), s.applied.Load(), s.rejected.Load()
}
