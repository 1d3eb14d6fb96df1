package currency

import (
	"sync"

	"github.com/leptonlabs/go-lepton/common/types"
	"github.com/leptonlabs/go-lepton/ledger"
)

// Pool holds submitted-but-not-yet-ordered transactions. Acceptance
// into the pool is a receipt, not a promise: validation against ledger
// state happens only when an ordering layer drains the pool into a
// block.
type Pool struct {
	mu sync.Mutex

	pending map[types.Hash]*ledger.Transaction
	order   []types.Hash
}

func NewPool() *Pool {
	return &Pool{
		pending: make(map[types.Hash]*ledger.Transaction),
	}
}

// Add deduplicates by transaction hash; resubmitting an identical
// envelope is not an error a caller can act on differently, so it
// reports ErrTxAlreadyPending only to let the submit path count it.
func (pool *Pool) Add(tx *ledger.Transaction) error {
	hash := tx.ComputeHash()

	pool.mu.Lock()
	defer pool.mu.Unlock()

	if _, ok := pool.pending[hash]; ok {
		return ErrTxAlreadyPending
	}

	pool.pending[hash] = tx
	pool.order = append(pool.order, hash)
	return nil
}

// Drain removes and returns up to max pending transactions in
// submission order. max <= 0 drains everything.
func (pool *Pool) Drain(max int) []*ledger.Transaction {
	pool.mu.Lock()
	defer pool.mu.Unlock()

	count := len(pool.order)
	if max > 0 && max < count {
		count = max
	}
	if count == 0 {
		return nil
	}

	txs := make([]*ledger.Transaction, 0, count)
	for _, hash := range pool.order[:count] {
		txs = append(txs, pool.pending[hash])
		delete(pool.pending, hash)
	}
	pool.order = pool.order[count:]

	return txs
}

func (pool *Pool) Size() int {
	pool.mu.Lock()
	defer pool.mu.Unlock()

	return len(pool.order)
}
