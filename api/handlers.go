package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/leptonlabs/go-lepton/common/types"
	"github.com/leptonlabs/go-lepton/currency"
	"github.com/leptonlabs/go-lepton/ledger"
)

// TransactionResponse acknowledges receipt into the pending pool. The
// hash is not evidence of success; callers poll the wallet route to
// observe the committed effect.
type TransactionResponse struct {
	TxHash types.Hash `json:"txHash"`
}

type StatusResponse struct {
	PendingTxs  int    `json:"pendingTxs"`
	Submitted   uint64 `json:"submitted"`
	Applied     uint64 `json:"applied"`
	Rejected    uint64 `json:"rejected"`
	TotalSupply uint64 `json:"totalSupply"`
}

func (s *Server) handleCreateWallet(w http.ResponseWriter, r *http.Request) {
	s.handleSubmit(w, r, ledger.TxTypeCreateWallet)
}

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	s.handleSubmit(w, r, ledger.TxTypeTransfer)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request, kind ledger.TransactionType) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var tx ledger.Transaction
	if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
		s.log.Info("failed to decode transaction", "err", err)
		http.Error(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}

	if tx.Kind != kind {
		http.Error(w, "Wrong transaction kind for this route", http.StatusBadRequest)
		return
	}

	hash, err := s.svc.Submit(&tx)
	if err != nil {
		s.log.Info("submission rejected", "kind", tx.Kind, "err", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.writeJson(w, &TransactionResponse{TxHash: hash})
}

func (s *Server) handleGetWallet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	hexAddr := strings.TrimPrefix(r.URL.Path, "/api/v1/wallet/")
	address, err := types.HexToAddress(hexAddr)
	if err != nil {
		http.Error(w, "Invalid wallet address", http.StatusBadRequest)
		return
	}

	wallet, err := s.svc.GetWallet(address)
	if err != nil {
		if err == currency.ErrWalletNotFound {
			http.Error(w, "Wallet not found", http.StatusNotFound)
			return
		}
		s.log.Error("wallet query failed", "address", address, "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	s.writeJson(w, wallet)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	submitted, applied, rejected := s.svc.Stats()
	s.writeJson(w, &StatusResponse{
		PendingTxs:  s.svc.Pool().Size(),
		Submitted:   submitted,
		Applied:     applied,
		Rejected:    rejected,
		TotalSupply: s.svc.TotalSupply(),
	})
}

func (s *Server) writeJson(w http.ResponseWriter, value interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(value); err != nil {
		s.log.Error("failed to encode response", "err", err)
	}
}
