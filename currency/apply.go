package currency

import (
	"math"

	"github.com/pkg/errors"

	"github.com/leptonlabs/go-lepton/ledger"
)

// ApplyBlock runs every transaction of an ordered block against the
// ledger, one at a time, and commits the surviving effects as a single
// batch. A transaction failing validation is skipped and logged; it
// never aborts the block. The returned error only reports store faults.
//
// Ordering between blocks belongs to the external consensus layer;
// within a block the supplied order is the only source of determinism.
func (s *Service) ApplyBlock(txs []*ledger.Transaction) error {
	s.applyMu.Lock()
	defer s.applyMu.Unlock()

	view := newBlockView(s.chainDb)

	var created uint64
	for _, tx := range txs {
		err := s.applyTransaction(view, tx)
		if err != nil {
			if !isRejection(err) {
				return errors.WithMessage(err, "block application failed")
			}
			s.rejected.Inc()
			s.log.Info("transaction rejected", "hash", tx.ComputeHash(), "kind", tx.Kind, "reason", err)
			continue
		}

		if tx.Kind == ledger.TxTypeCreateWallet {
			created++
		}
		s.applied.Inc()
	}

	if err := s.chainDb.Commit(view.batch); err != nil {
		return errors.WithMessage(err, "chainDb.Commit failed")
	}
	s.totalSupply.Add(created * InitialBalance)

	return nil
}

func (s *Service) applyTransaction(view *blockView, tx *ledger.Transaction) error {
	switch tx.Kind {
	case ledger.TxTypeCreateWallet:
		return s.applyCreateWallet(view, tx)
	case ledger.TxTypeTransfer:
		return s.applyTransfer(view, tx)
	}
	return ErrUnknownTxType
}

func (s *Service) applyCreateWallet(view *blockView, tx *ledger.Transaction) error {
	existing, err := view.getWallet(tx.From)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrWalletExists
	}

	return view.stage(&ledger.Wallet{
		Address: tx.From,
		Name:    tx.Name,
		Balance: InitialBalance,
	})
}

func (s *Service) applyTransfer(view *blockView, tx *ledger.Transaction) error {
	if tx.Amount == 0 {
		return ErrNonPositiveAmount
	}

	sender, err := view.getWallet(tx.From)
	if err != nil {
		return err
	}
	if sender == nil {
		return ErrSenderUnknown
	}

	// A self-transfer moves nothing but still counts as one history
	// entry on the wallet.
	receiver := sender
	if tx.To != tx.From {
		receiver, err = view.getWallet(tx.To)
		if err != nil {
			return err
		}
		if receiver == nil {
			return ErrReceiverUnknown
		}
	}

	if sender.Balance < tx.Amount {
		return ErrInsufficientFunds
	}
	if receiver != sender && receiver.Balance > math.MaxUint64-tx.Amount {
		return ErrBalanceOverflow
	}

	sender.Balance -= tx.Amount
	receiver.Balance += tx.Amount
	sender.HistoryLen++
	if receiver != sender {
		receiver.HistoryLen++
	}

	return view.stage(sender, receiver)
}
