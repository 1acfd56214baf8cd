package wallet

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTransaction(t *testing.T, payer solana.PublicKey, signers ...solana.PublicKey) *solana.Transaction {
	t.Helper()
	metas := solana.AccountMetaSlice{solana.NewAccountMeta(payer, true, true)}
	for _, s := range signers {
		metas = append(metas, solana.NewAccountMeta(s, true, true))
	}
	ix := solana.NewInstruction(solana.SystemProgramID, metas, []byte{0})
	tx, err := solana.NewTransaction([]solana.Instruction{ix}, solana.Hash{1}, solana.TransactionPayer(payer))
	require.NoError(t, err)
	return tx
}

func TestSecretRoundTrip(t *testing.T) {
	w, err := Generate()
	require.NoError(t, err)

	fromB58, err := FromSecret(w.SecretBase58())
	require.NoError(t, err)
	assert.Equal(t, w.PublicKey(), fromB58.PublicKey())

	path := filepath.Join(t.TempDir(), "dev.json")
	require.NoError(t, w.SaveToFile(path))
	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, w.PublicKey(), loaded.PublicKey())
}

func TestFromSecretRejectsBadLength(t *testing.T) {
	_, err := FromSecret("[1,2,3]")
	assert.Error(t, err)

	_, err = NewWallet("not-base58-0OIl")
	assert.Error(t, err)
}

func TestLoadOrCreate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "wallet.json")

	first, created, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.True(t, created)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	second, created, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.PublicKey(), second.PublicKey())
}

func TestPartialSignKeepsOtherSignatures(t *testing.T) {
	payer, err := Generate()
	require.NoError(t, err)
	mint, err := NewKeypair()
	require.NoError(t, err)

	tx := testTransaction(t, payer.PublicKey(), mint.PublicKey())
	assert.Len(t, MissingSigners(tx), 2)

	require.NoError(t, PartialSign(tx, mint))
	assert.Equal(t, []solana.PublicKey{payer.PublicKey()}, MissingSigners(tx))

	require.NoError(t, payer.SignTransaction(context.Background(), tx))
	assert.Empty(t, MissingSigners(tx))
	require.NoError(t, tx.VerifySignatures())
}

func TestPartialSignRejectsStranger(t *testing.T) {
	payer, err := Generate()
	require.NoError(t, err)
	stranger, err := NewKeypair()
	require.NoError(t, err)

	tx := testTransaction(t, payer.PublicKey())
	err = PartialSign(tx, stranger)
	assert.True(t, errors.Is(err, ErrNotSigner))
}
