package currency

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/syndtr/goleveldb/leveldb"
	"go.uber.org/goleak"
	"golang.org/x/crypto/ed25519"

	"github.com/leptonlabs/go-lepton/chain_db"
	"github.com/leptonlabs/go-lepton/common/types"
	"github.com/leptonlabs/go-lepton/ledger"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type testAccount struct {
	addr types.Address
	priv ed25519.PrivateKey
}

func newTestAccount(t *testing.T) testAccount {
	addr, priv, err := types.CreateAddress()
	require.NoError(t, err)
	return testAccount{addr: addr, priv: priv}
}

func newTestService(t *testing.T) *Service {
	chainDb, err := chain_db.NewMemChainDb()
	require.NoError(t, err)
	t.Cleanup(func() {
		chainDb.Close()
	})

	svc, err := NewService(chainDb, NewPool())
	require.NoError(t, err)
	return svc
}

func signedCreate(acc testAccount, name string) *ledger.Transaction {
	tx := ledger.NewCreateWallet(acc.addr, name)
	tx.Sign(acc.priv)
	return tx
}

func signedTransfer(from testAccount, to types.Address, amount, seed uint64) *ledger.Transaction {
	tx := ledger.NewTransfer(from.addr, to, amount, seed)
	tx.Sign(from.priv)
	return tx
}

// submit puts the transaction into the pool and checks that the ack is
// the transaction's own hash, mirroring the external contract: the ack
// proves receipt, not success.
func submit(t *testing.T, svc *Service, tx *ledger.Transaction) types.Hash {
	hash, err := svc.Submit(tx)
	require.NoError(t, err)
	require.Equal(t, tx.ComputeHash(), hash)
	return hash
}

func TestCreateWallet(t *testing.T) {
	svc := newTestService(t)
	alice := newTestAccount(t)

	submit(t, svc, signedCreate(alice, "Alice"))

	// accepted into the pool is not applied
	_, err := svc.GetWallet(alice.addr)
	assert.Equal(t, ErrWalletNotFound, err)

	require.NoError(t, svc.ApplyBlock(svc.Pool().Drain(0)))

	wallet, err := svc.GetWallet(alice.addr)
	require.NoError(t, err)
	assert.Equal(t, alice.addr, wallet.Address)
	assert.Equal(t, "Alice", wallet.Name)
	assert.Equal(t, uint64(100), wallet.Balance)
	assert.Equal(t, uint64(0), wallet.HistoryLen)

	assert.Equal(t, uint64(100), svc.TotalSupply())
	assert.NoError(t, svc.VerifySupply())
}

func TestTransfer(t *testing.T) {
	svc := newTestService(t)
	alice := newTestAccount(t)
	bob := newTestAccount(t)

	submit(t, svc, signedCreate(alice, "Alice"))
	submit(t, svc, signedCreate(bob, "Bob"))
	require.NoError(t, svc.ApplyBlock(svc.Pool().Drain(0)))

	wallet, err := svc.GetWallet(alice.addr)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), wallet.Balance)
	wallet, err = svc.GetWallet(bob.addr)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), wallet.Balance)

	submit(t, svc, signedTransfer(alice, bob.addr, 10, 0))
	require.NoError(t, svc.ApplyBlock(svc.Pool().Drain(0)))

	wallet, err = svc.GetWallet(alice.addr)
	require.NoError(t, err)
	assert.Equal(t, uint64(90), wallet.Balance)
	assert.Equal(t, uint64(1), wallet.HistoryLen)

	wallet, err = svc.GetWallet(bob.addr)
	require.NoError(t, err)
	assert.Equal(t, uint64(110), wallet.Balance)
	assert.Equal(t, uint64(1), wallet.HistoryLen)

	// transfers move value, they never mint it
	assert.Equal(t, uint64(200), svc.TotalSupply())
	assert.NoError(t, svc.VerifySupply())
}

func TestTransferOvercharge(t *testing.T) {
	svc := newTestService(t)
	alice := newTestAccount(t)
	bob := newTestAccount(t)

	submit(t, svc, signedCreate(alice, "Alice"))
	submit(t, svc, signedCreate(bob, "Bob"))
	require.NoError(t, svc.ApplyBlock(svc.Pool().Drain(0)))

	submit(t, svc, signedTransfer(alice, bob.addr, 110, 0))
	require.NoError(t, svc.ApplyBlock(svc.Pool().Drain(0)))

	wallet, err := svc.GetWallet(alice.addr)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), wallet.Balance)
	assert.Equal(t, uint64(0), wallet.HistoryLen)

	wallet, err = svc.GetWallet(bob.addr)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), wallet.Balance)

	_, _, rejected := svc.Stats()
	assert.Equal(t, uint64(1), rejected)
	assert.NoError(t, svc.VerifySupply())
}

func TestTransferFromNonexistingWallet(t *testing.T) {
	svc := newTestService(t)
	alice := newTestAccount(t)
	bob := newTestAccount(t)

	// Alice's creation is submitted but withheld from the block, so her
	// wallet doesn't exist when the transfer runs.
	submit(t, svc, signedCreate(alice, "Alice"))
	bobCreate := signedCreate(bob, "Bob")
	submit(t, svc, bobCreate)
	require.NoError(t, svc.ApplyBlock([]*ledger.Transaction{bobCreate}))

	_, err := svc.GetWallet(alice.addr)
	assert.Equal(t, ErrWalletNotFound, err)

	transfer := signedTransfer(alice, bob.addr, 10, 0)
	submit(t, svc, transfer)
	require.NoError(t, svc.ApplyBlock([]*ledger.Transaction{transfer}))

	wallet, err := svc.GetWallet(bob.addr)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), wallet.Balance)

	_, err = svc.GetWallet(alice.addr)
	assert.Equal(t, ErrWalletNotFound, err)
}

func TestTransferToNonexistingWallet(t *testing.T) {
	svc := newTestService(t)
	alice := newTestAccount(t)
	bob := newTestAccount(t)

	aliceCreate := signedCreate(alice, "Alice")
	submit(t, svc, aliceCreate)
	submit(t, svc, signedCreate(bob, "Bob"))
	require.NoError(t, svc.ApplyBlock([]*ledger.Transaction{aliceCreate}))

	transfer := signedTransfer(alice, bob.addr, 10, 0)
	require.NoError(t, svc.ApplyBlock([]*ledger.Transaction{transfer}))

	wallet, err := svc.GetWallet(alice.addr)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), wallet.Balance)
	assert.Equal(t, uint64(0), wallet.HistoryLen)
}

func TestDuplicateCreateWallet(t *testing.T) {
	svc := newTestService(t)
	alice := newTestAccount(t)

	require.NoError(t, svc.ApplyBlock([]*ledger.Transaction{signedCreate(alice, "Alice")}))

	// drain some balance so a successful re-create would be visible
	bob := newTestAccount(t)
	require.NoError(t, svc.ApplyBlock([]*ledger.Transaction{
		signedCreate(bob, "Bob"),
		signedTransfer(alice, bob.addr, 30, 0),
	}))

	require.NoError(t, svc.ApplyBlock([]*ledger.Transaction{signedCreate(alice, "Alice again")}))

	wallet, err := svc.GetWallet(alice.addr)
	require.NoError(t, err)
	assert.Equal(t, "Alice", wallet.Name)
	assert.Equal(t, uint64(70), wallet.Balance)
	assert.Equal(t, uint64(1), wallet.HistoryLen)

	_, _, rejected := svc.Stats()
	assert.Equal(t, uint64(1), rejected)
	assert.NoError(t, svc.VerifySupply())
}

// Self-transfer is accepted as a no-op on the balance and counts once
// in the wallet's history.
func TestSelfTransfer(t *testing.T) {
	svc := newTestService(t)
	alice := newTestAccount(t)

	require.NoError(t, svc.ApplyBlock([]*ledger.Transaction{signedCreate(alice, "Alice")}))
	require.NoError(t, svc.ApplyBlock([]*ledger.Transaction{signedTransfer(alice, alice.addr, 40, 0)}))

	wallet, err := svc.GetWallet(alice.addr)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), wallet.Balance)
	assert.Equal(t, uint64(1), wallet.HistoryLen)
	assert.NoError(t, svc.VerifySupply())
}

func TestTransferOverflow(t *testing.T) {
	svc := newTestService(t)
	alice := newTestAccount(t)
	bob := newTestAccount(t)

	require.NoError(t, svc.ApplyBlock([]*ledger.Transaction{
		signedCreate(alice, "Alice"),
		signedCreate(bob, "Bob"),
	}))

	// push Bob's balance to the edge behind the service's back
	hugeBalance := uint64(math.MaxUint64 - 5)
	batch := new(leveldb.Batch)
	require.NoError(t, svc.chainDb.Wallet.WriteWallet(batch, &ledger.Wallet{
		Address: bob.addr,
		Name:    "Bob",
		Balance: hugeBalance,
	}))
	require.NoError(t, svc.chainDb.Commit(batch))

	require.NoError(t, svc.ApplyBlock([]*ledger.Transaction{signedTransfer(alice, bob.addr, 10, 0)}))

	wallet, err := svc.GetWallet(alice.addr)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), wallet.Balance)

	wallet, err = svc.GetWallet(bob.addr)
	require.NoError(t, err)
	assert.Equal(t, hugeBalance, wallet.Balance)

	_, _, rejected := svc.Stats()
	assert.Equal(t, uint64(1), rejected)
}

func TestSubmitRejections(t *testing.T) {
	svc := newTestService(t)
	alice := newTestAccount(t)
	bob := newTestAccount(t)

	// zero amount never reaches the pool
	zero := signedTransfer(alice, bob.addr, 0, 0)
	_, err := svc.Submit(zero)
	assert.Equal(t, ErrNonPositiveAmount, err)

	// unsigned envelope
	unsigned := ledger.NewCreateWallet(alice.addr, "Alice")
	_, err = svc.Submit(unsigned)
	assert.Equal(t, ErrInvalidSignature, err)

	// tampered after signing
	tampered := signedTransfer(alice, bob.addr, 10, 0)
	tampered.Amount = 1000
	_, err = svc.Submit(tampered)
	assert.Equal(t, ErrInvalidSignature, err)

	// unknown kind
	unknown := &ledger.Transaction{Kind: 99, From: alice.addr}
	_, err = svc.Submit(unknown)
	assert.Equal(t, ErrUnknownTxType, err)

	assert.Equal(t, 0, svc.Pool().Size())
}

func TestSubmitDedup(t *testing.T) {
	svc := newTestService(t)
	alice := newTestAccount(t)

	tx := signedCreate(alice, "Alice")
	hash1 := submit(t, svc, tx)
	hash2 := submit(t, svc, tx)

	assert.Equal(t, hash1, hash2)
	assert.Equal(t, 1, svc.Pool().Size())

	submitted, _, _ := svc.Stats()
	assert.Equal(t, uint64(1), submitted)
}

// Later transactions in a block see the effects of earlier ones.
func TestSameBlockSequence(t *testing.T) {
	svc := newTestService(t)
	alice := newTestAccount(t)
	bob := newTestAccount(t)

	require.NoError(t, svc.ApplyBlock([]*ledger.Transaction{
		signedCreate(alice, "Alice"),
		signedCreate(bob, "Bob"),
		signedTransfer(alice, bob.addr, 10, 0),
	}))

	wallet, err := svc.GetWallet(alice.addr)
	require.NoError(t, err)
	assert.Equal(t, uint64(90), wallet.Balance)

	wallet, err = svc.GetWallet(bob.addr)
	require.NoError(t, err)
	assert.Equal(t, uint64(110), wallet.Balance)

	assert.Equal(t, uint64(200), svc.TotalSupply())
	assert.NoError(t, svc.VerifySupply())
}

// A rejected transaction is local: earlier effects in the block stay,
// later transactions still run.
func TestRejectionDoesNotAbortBlock(t *testing.T) {
	svc := newTestService(t)
	alice := newTestAccount(t)
	bob := newTestAccount(t)
	ghost := newTestAccount(t)

	require.NoError(t, svc.ApplyBlock([]*ledger.Transaction{
		signedCreate(alice, "Alice"),
		signedTransfer(ghost, alice.addr, 10, 0),
		signedCreate(bob, "Bob"),
	}))

	_, err := svc.GetWallet(alice.addr)
	assert.NoError(t, err)
	_, err = svc.GetWallet(bob.addr)
	assert.NoError(t, err)

	_, applied, rejected := svc.Stats()
	assert.Equal(t, uint64(2), applied)
	assert.Equal(t, uint64(1), rejected)
}

// Sum of balances == created wallets × initial balance, whatever mix of
// transfers ran in between.
func TestBalanceConservation(t *testing.T) {
	svc := newTestService(t)

	accounts := make([]testAccount, 6)
	creates := make([]*ledger.Transaction, 0, len(accounts))
	for i := range accounts {
		accounts[i] = newTestAccount(t)
		creates = append(creates, signedCreate(accounts[i], "w"))
	}
	require.NoError(t, svc.ApplyBlock(creates))
	assert.Equal(t, uint64(len(accounts))*InitialBalance, svc.TotalSupply())

	var seed uint64
	var txs []*ledger.Transaction
	for i := range accounts {
		for j := range accounts {
			seed++
			txs = append(txs, signedTransfer(accounts[i], accounts[j].addr, uint64(7+i+j), seed))
		}
	}
	require.NoError(t, svc.ApplyBlock(txs))

	assert.Equal(t, uint64(len(accounts))*InitialBalance, svc.TotalSupply())
	assert.NoError(t, svc.VerifySupply())
}

// A restarted service recomputes the supply from committed state.
func TestSupplyRecoveredFromStore(t *testing.T) {
	chainDb, err := chain_db.NewMemChainDb()
	require.NoError(t, err)
	t.Cleanup(func() {
		chainDb.Close()
	})

	svc, err := NewService(chainDb, NewPool())
	require.NoError(t, err)

	alice := newTestAccount(t)
	bob := newTestAccount(t)
	require.NoError(t, svc.ApplyBlock([]*ledger.Transaction{
		signedCreate(alice, "Alice"),
		signedCreate(bob, "Bob"),
		signedTransfer(alice, bob.addr, 25, 0),
	}))

	restarted, err := NewService(chainDb, NewPool())
	require.NoError(t, err)
	assert.Equal(t, uint64(200), restarted.TotalSupply())
	assert.NoError(t, restarted.VerifySupply())
}
