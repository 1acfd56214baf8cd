package yamlstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rovshanmuradov/hookswap/internal/storage"
	"github.com/rovshanmuradov/hookswap/internal/storage/models"
)

func TestSessionPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state", "session.yaml")

	s, err := NewStorage(path, zaptest.NewLogger(t))
	require.NoError(t, err)

	_, err = s.LoadSession(ctx)
	assert.True(t, errors.Is(err, storage.ErrNotFound))

	require.NoError(t, s.SaveSession(ctx, &models.Session{
		Network: "devnet",
		MintA:   "MintA111",
		Pool:    "Pool111",
		Stage:   "pool",
	}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	reopened, err := NewStorage(path, zaptest.NewLogger(t))
	require.NoError(t, err)
	session, err := reopened.LoadSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "MintA111", session.MintA)
	assert.Equal(t, "pool", session.Stage)
	assert.False(t, session.UpdatedAt.IsZero())

	require.NoError(t, reopened.ResetSession(ctx))
	_, err = reopened.LoadSession(ctx)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestTransactionsHistory(t *testing.T) {
	ctx := context.Background()
	s, err := NewStorage(filepath.Join(t.TempDir(), "session.yaml"), zaptest.NewLogger(t))
	require.NoError(t, err)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, sig := range []string{"a", "b", "c"} {
		require.NoError(t, s.SaveTransaction(ctx, &models.Transaction{
			Signature: sig,
			Operation: "swap_exact_tokens_for_tokens",
			Status:    models.StatusConfirmed,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	txs, err := s.ListTransactions(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "c", txs[0].Signature)
	assert.Equal(t, "b", txs[1].Signature)

	txs, err = s.ListTransactions(ctx, 10, 5)
	require.NoError(t, err)
	assert.Empty(t, txs)

	tx, err := s.GetTransaction(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, tx.Status)

	_, err = s.GetTransaction(ctx, "zzz")
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestHistoryIsBounded(t *testing.T) {
	ctx := context.Background()
	s, err := NewStorage(filepath.Join(t.TempDir(), "session.yaml"), zaptest.NewLogger(t))
	require.NoError(t, err)

	for i := 0; i < maxHistory+5; i++ {
		require.NoError(t, s.SaveTransaction(ctx, &models.Transaction{Signature: string(rune('a' + i%26))}))
	}
	txs, err := s.ListTransactions(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, txs, maxHistory)
}

func TestCorruptFileIsReported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	require.NoError(t, os.WriteFile(path, []byte("session: [unclosed"), 0o600))

	_, err := NewStorage(path, zaptest.NewLogger(t))
	assert.Error(t, err)
}
