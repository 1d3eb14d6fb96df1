package ledger

import (
	"encoding/binary"

	"github.com/inconshreveable/log15"
	"golang.org/x/crypto/ed25519"

	"github.com/leptonlabs/go-lepton/common/types"
	"github.com/leptonlabs/go-lepton/crypto"
)

var transactionLog = log15.New("module", "ledger/transaction")

type TransactionType byte

const (
	TxTypeCreateWallet TransactionType = iota + 1
	TxTypeTransfer
)

func (t TransactionType) String() string {
	switch t {
	case TxTypeCreateWallet:
		return "CreateWallet"
	case TxTypeTransfer:
		return "Transfer"
	}
	return "Unknown"
}

// Transaction is the signed envelope around one of the two payload
// kinds. From is the signer's public key; for CreateWallet it names the
// wallet being opened, for Transfer it names the sender.
type Transaction struct {
	Kind TransactionType `json:"kind"`
	From types.Address   `json:"from"`

	// CreateWallet payload
	Name string `json:"name,omitempty"`

	// Transfer payload. Seed only distinguishes otherwise-identical
	// transfers so repeated legitimate payments hash differently.
	To     types.Address `json:"to,omitempty"`
	Amount uint64        `json:"amount,omitempty"`
	Seed   uint64        `json:"seed,omitempty"`

	Signature []byte `json:"signature"`
}

func NewCreateWallet(from types.Address, name string) *Transaction {
	return &Transaction{
		Kind: TxTypeCreateWallet,
		From: from,
		Name: name,
	}
}

func NewTransfer(from, to types.Address, amount, seed uint64) *Transaction {
	return &Transaction{
		Kind:   TxTypeTransfer,
		From:   from,
		To:     to,
		Amount: amount,
		Seed:   seed,
	}
}

// hashSource is the canonical byte encoding of the payload. Fields are
// concatenated in a fixed order behind one-byte tags; no map iteration
// or platform-dependent representation is involved, so the hash is
// stable across processes.
func (tx *Transaction) hashSource() []byte {
	var numBuf [8]byte

	source := make([]byte, 0, 128)

	// Kind
	source = append(source, byte(tx.Kind))

	// From
	source = append(source, byte(1))
	source = append(source, tx.From.Bytes()...)

	switch tx.Kind {
	case TxTypeCreateWallet:
		// Name
		source = append(source, byte(2))
		source = append(source, []byte(tx.Name)...)
	case TxTypeTransfer:
		// To
		source = append(source, byte(2))
		source = append(source, tx.To.Bytes()...)

		// Amount
		source = append(source, byte(3))
		binary.BigEndian.PutUint64(numBuf[:], tx.Amount)
		source = append(source, numBuf[:]...)

		// Seed
		source = append(source, byte(4))
		binary.BigEndian.PutUint64(numBuf[:], tx.Seed)
		source = append(source, numBuf[:]...)
	}

	return source
}

// ComputeHash derives the transaction's identity. It doubles as the
// message the envelope signature covers.
func (tx *Transaction) ComputeHash() types.Hash {
	hash, _ := types.BytesToHash(crypto.Hash256(tx.hashSource()))
	return hash
}

func (tx *Transaction) Sign(priv ed25519.PrivateKey) {
	tx.Signature = crypto.Sign(priv, tx.ComputeHash().Bytes())
}

func (tx *Transaction) VerifySignature() bool {
	isVerified, verifyErr := crypto.VerifySig(tx.From.PublicKey(), tx.ComputeHash().Bytes(), tx.Signature)
	if verifyErr != nil {
		transactionLog.Error("crypto.VerifySig failed, error is "+verifyErr.Error(), "method", "VerifySignature")
	}
	return isVerified
}
