package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rovshanmuradov/hookswap/internal/config"
	"github.com/rovshanmuradov/hookswap/internal/dex/hookamm"
	apperrors "github.com/rovshanmuradov/hookswap/internal/errors"
	"github.com/rovshanmuradov/hookswap/internal/storage/models"
	"github.com/rovshanmuradov/hookswap/internal/storage/yamlstore"
)

var (
	testMintA = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
	testMintB = solana.MustPublicKeyFromBase58("TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb")
)

// isolate уводит все пути конфигурации во временную директорию.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("HOOKSWAP_DEV_WALLET_PATH", filepath.Join(dir, "wallet.json"))
	t.Setenv("HOOKSWAP_SESSION_PATH", filepath.Join(dir, "session.yaml"))
	t.Setenv("HOOKSWAP_LOG_FILE", filepath.Join(dir, "hookswap.log"))
	t.Setenv("HOOKSWAP_RPC_URL", "http://127.0.0.1:8899")
	return dir
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	c := &cli{v: config.New(), ctx: context.Background()}
	root := newRootCmd(c)
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	_ = c.close()
	return out.String(), errOut.String(), err
}

func TestDerivePool(t *testing.T) {
	isolate(t)

	out, _, err := execute(t, "derive", "pool", testMintA.String(), testMintB.String())
	require.NoError(t, err)

	want, err := hookamm.GetDefaultConfig().DerivePoolAddresses(testMintA, testMintB)
	require.NoError(t, err)
	assert.Contains(t, out, want.AMM.String())
	assert.Contains(t, out, want.Pool.String())
	assert.Contains(t, out, want.VaultA.String())
	assert.Contains(t, out, want.VaultB.String())
}

func TestDeriveRejectsBadKey(t *testing.T) {
	isolate(t)

	_, _, err := execute(t, "derive", "hook", "not-base58!")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInvalidInput, apperrors.KindOf(err))
	assert.Equal(t, 2, exitCode(err))
}

func TestRPCFlagOverridesConfig(t *testing.T) {
	isolate(t)

	_, _, err := execute(t, "--rpc", "ftp://example.com", "derive", "ata", testMintA.String(), testMintB.String())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rpc_url")
}

func TestSessionShowEmpty(t *testing.T) {
	isolate(t)

	out, _, err := execute(t, "session", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "no saved session")
}

func TestHistoryCSVExport(t *testing.T) {
	dir := isolate(t)

	store, err := yamlstore.NewStorage(filepath.Join(dir, "session.yaml"), zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, store.SaveTransaction(context.Background(), &models.Transaction{
		Signature:        "sig-1",
		Operation:        "create_pool",
		Status:           models.StatusConfirmed,
		AlreadyProcessed: true,
		ExecutionTime:    1.5,
		CreatedAt:        time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}))

	csvPath := filepath.Join(dir, "history.csv")
	out, _, err := execute(t, "history", "--csv", csvPath)
	require.NoError(t, err)
	assert.Contains(t, out, "exported 1 transactions")

	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "timestamp,operation,status,kind,signature,wallet,already_processed,elapsed_s,error", lines[0])
	assert.Equal(t, "2025-01-02T03:04:05Z,create_pool,confirmed,,sig-1,,true,1.500,", lines[1])
}

func TestLogsTail(t *testing.T) {
	dir := isolate(t)
	var b strings.Builder
	for i := 0; i < 10; i++ {
		b.WriteString("line ")
		b.WriteByte(byte('0' + i))
		b.WriteByte('\n')
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hookswap.log"), []byte(b.String()), 0o600))

	out, _, err := execute(t, "logs", "-n", "3")
	require.NoError(t, err)
	assert.Equal(t, "line 7\nline 8\nline 9\n", out)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 2, exitCode(apperrors.InvalidInput("bad")))
	assert.Equal(t, 3, exitCode(apperrors.Timeout("sig", time.Second)))
	assert.Equal(t, 1, exitCode(apperrors.Submission(assert.AnError, nil)))
}

func TestDeriveCounterUpdate(t *testing.T) {
	isolate(t)
	src := solana.NewWallet().PublicKey()
	dst := solana.NewWallet().PublicKey()

	out, _, err := execute(t, "derive", "counter-update", testMintA.String(), "1500", src.String(), dst.String())
	require.NoError(t, err)

	counter, err := hookamm.DeriveMintTradeCounter(hookamm.CounterHookProgramID, testMintA)
	require.NoError(t, err)
	assert.Contains(t, out, "program        "+hookamm.CounterHookProgramID.String())
	assert.Contains(t, out, counter.Address.String()+" writable=true signer=false")
	assert.Contains(t, out, "decoded        amount=1500 source="+src.String()+" destination="+dst.String())
}

func TestProgramByName(t *testing.T) {
	hc := hookamm.GetDefaultConfig()

	pk, err := programByName(hc, "hook")
	require.NoError(t, err)
	assert.Equal(t, hookamm.CounterHookProgramID, pk)

	pk, err = programByName(hc, "")
	require.NoError(t, err)
	assert.True(t, pk.IsZero())

	_, err = programByName(hc, "nope")
	assert.Equal(t, apperrors.KindInvalidInput, apperrors.KindOf(err))
}
