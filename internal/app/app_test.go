package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rovshanmuradov/hookswap/internal/config"
	"github.com/rovshanmuradov/hookswap/internal/storage/models"
	"github.com/rovshanmuradov/hookswap/internal/storage/yamlstore"
	"github.com/rovshanmuradov/hookswap/internal/workflow"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		RPCURL:                "http://127.0.0.1:8899",
		Network:               "localnet",
		Commitment:            "confirmed",
		ConfirmationTimeoutMs: 1000,
		PollIntervalMs:        100,
		SendRetries:           1,
		DefaultSolFee:         config.DefaultSolFee,
		DevWallet:             config.WalletConfig{Path: filepath.Join(dir, "wallet.json")},
		SessionPath:           filepath.Join(dir, "session.yaml"),
		Log:                   config.LogConfig{File: filepath.Join(dir, "hookswap.log"), MaxSizeMB: 1},
	}
}

func TestNewCreatesWalletOnce(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	first, err := New(ctx, cfg, Options{})
	require.NoError(t, err)
	addr := first.Wallet.PublicKey()
	require.NoError(t, first.Close())
	assert.FileExists(t, cfg.DevWallet.Path)

	second, err := New(ctx, cfg, Options{})
	require.NoError(t, err)
	defer second.Close()
	assert.Equal(t, addr, second.Wallet.PublicKey())
	assert.Equal(t, addr, second.DEX.Payer())
	assert.Equal(t, workflow.StageStart, second.Tracker.Current())
}

func TestNewRestoresSession(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	store, err := yamlstore.NewStorage(cfg.SessionPath, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, store.SaveSession(ctx, &models.Session{
		Network: "localnet",
		MintA:   "So11111111111111111111111111111111111111112",
		MintB:   "TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb",
		Stage:   "minted",
	}))

	a, err := New(ctx, cfg, Options{TUI: true, BufferSize: 50})
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, workflow.StageMinted, a.Runner.Stage())
	assert.Equal(t, "So11111111111111111111111111111111111111112", a.Scenario.Session().MintA.String())
	require.NotNil(t, a.LogBuffer)

	total, _ := a.LogBuffer.GetStats()
	assert.NotZero(t, total, "TUI logger must feed the buffer")
}

func TestNewRejectsBadSecret(t *testing.T) {
	cfg := testConfig(t)
	cfg.DevWallet.SecretKey = "not-a-key"

	_, err := New(context.Background(), cfg, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dev_wallet.secret_key")
}

func TestShutdownOrder(t *testing.T) {
	sh := NewShutdownHandler(zaptest.NewLogger(t), time.Second)
	var order []string
	sh.AddFunc("store", func() error { order = append(order, "store"); return nil })
	sh.AddFunc("buffer", func() error { order = append(order, "buffer"); return nil })
	sh.AddFunc("ui", func() error { order = append(order, "ui"); return errors.New("boom") })

	err := sh.Shutdown(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ui: boom")
	assert.Equal(t, []string{"ui", "buffer", "store"}, order)

	// второй вызов ничего не закрывает
	require.NoError(t, sh.Shutdown(context.Background()))
	assert.Len(t, order, 3)
}

func TestShutdownTimeout(t *testing.T) {
	sh := NewShutdownHandler(zaptest.NewLogger(t), 20*time.Millisecond)
	release := make(chan struct{})
	defer close(release)
	sh.AddFunc("stuck", func() error { <-release; return nil })

	err := sh.Shutdown(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shutdown timeout")
}
