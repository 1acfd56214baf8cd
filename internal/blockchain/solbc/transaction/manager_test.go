package transaction

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rovshanmuradov/hookswap/internal/blockchain/blockchaintest"
	apperrors "github.com/rovshanmuradov/hookswap/internal/errors"
	"github.com/rovshanmuradov/hookswap/internal/wallet"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func transferIx(from, to solana.PublicKey) solana.Instruction {
	return solana.NewInstruction(solana.SystemProgramID, solana.AccountMetaSlice{
		solana.NewAccountMeta(from, true, true),
		solana.NewAccountMeta(to, true, false),
	}, []byte{2, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0})
}

func newTestManager(t *testing.T) (*Manager, *blockchaintest.MockClient, *wallet.Wallet) {
	t.Helper()
	client := new(blockchaintest.MockClient)
	client.On("GetRecentBlockhash", mock.Anything).Return(solana.Hash{9, 9, 9}, nil)
	w, err := wallet.Generate()
	require.NoError(t, err)
	return NewManager(client, zaptest.NewLogger(t), testConfig()), client, w
}

func TestSendAndConfirmAlreadyProcessedIsSuccess(t *testing.T) {
	tm, client, w := newTestManager(t)

	var sent *solana.Transaction
	client.On("SendTransactionWithOpts", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(1).(*solana.Transaction) }).
		Return(solana.Signature{}, errors.New("Transaction simulation failed: This transaction has already been processed"))
	client.On("GetSignatureStatuses", mock.Anything, mock.Anything).
		Return(blockchaintest.Status(rpc.ConfirmationStatusConfirmed, nil), nil)
	client.On("GetTransaction", mock.Anything, mock.Anything).
		Return(&rpc.GetTransactionResult{Meta: &rpc.TransactionMeta{LogMessages: []string{"Program log: ok"}}}, nil)

	status, err := tm.SendAndConfirm(context.Background(), []solana.Instruction{transferIx(w.PublicKey(), solana.NewWallet().PublicKey())}, w)

	require.NoError(t, err)
	require.NotNil(t, sent)
	assert.True(t, status.AlreadyProcessed)
	assert.Equal(t, sent.Signatures[0], status.Signature)
	assert.Equal(t, []string{"Program log: ok"}, status.Logs)
	client.AssertNumberOfCalls(t, "SendTransactionWithOpts", 1)
}

func TestSubmitAlreadyProcessedReturnsEmbeddedSignature(t *testing.T) {
	tm, client, w := newTestManager(t)
	var embedded solana.Signature
	for i := range embedded {
		embedded[i] = byte(i + 1)
	}
	client.On("SendTransactionWithOpts", mock.Anything, mock.Anything, mock.Anything).
		Return(solana.Signature{}, fmt.Errorf(
			"Transaction simulation failed: This transaction has already been processed, signature: %s", embedded))

	tx, err := tm.BuildTransaction(context.Background(), []solana.Instruction{transferIx(w.PublicKey(), solana.NewWallet().PublicKey())}, w.PublicKey())
	require.NoError(t, err)
	require.NoError(t, tm.Sign(context.Background(), tx, w))

	sig, already, err := tm.Submit(context.Background(), tx)
	require.NoError(t, err)
	assert.True(t, already)
	assert.Equal(t, embedded, sig)
	assert.NotEqual(t, tx.Signatures[0], sig)
	client.AssertNumberOfCalls(t, "SendTransactionWithOpts", 1)
}

func TestSendAndConfirmAlreadyProcessedUsesEmbeddedSignature(t *testing.T) {
	tm, client, w := newTestManager(t)
	embedded := solana.Signature{7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7}
	client.On("SendTransactionWithOpts", mock.Anything, mock.Anything, mock.Anything).
		Return(solana.Signature{}, errors.New(
			"Transaction simulation failed: This transaction has already been processed, signature: "+embedded.String()))
	client.On("GetSignatureStatuses", mock.Anything, mock.Anything).
		Return(blockchaintest.Status(rpc.ConfirmationStatusConfirmed, nil), nil)
	client.On("GetTransaction", mock.Anything, embedded).
		Return(&rpc.GetTransactionResult{Meta: &rpc.TransactionMeta{LogMessages: []string{"Program log: ok"}}}, nil)

	status, err := tm.SendAndConfirm(context.Background(), []solana.Instruction{transferIx(w.PublicKey(), solana.NewWallet().PublicKey())}, w)

	require.NoError(t, err)
	assert.True(t, status.AlreadyProcessed)
	assert.Equal(t, embedded, status.Signature)
	client.AssertCalled(t, "GetTransaction", mock.Anything, embedded)
}

func TestSubmitRetriesTransportErrorsWithSameBytes(t *testing.T) {
	tm, client, w := newTestManager(t)
	want := solana.Signature{4, 2}

	var first, second []byte
	client.On("SendTransactionWithOpts", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			raw, _ := args.Get(1).(*solana.Transaction).MarshalBinary()
			first = raw
		}).
		Return(solana.Signature{}, fmt.Errorf("post: %w", timeoutErr{})).Once()
	client.On("SendTransactionWithOpts", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			raw, _ := args.Get(1).(*solana.Transaction).MarshalBinary()
			second = raw
		}).
		Return(want, nil).Once()

	tx, err := tm.BuildTransaction(context.Background(), []solana.Instruction{transferIx(w.PublicKey(), solana.NewWallet().PublicKey())}, w.PublicKey())
	require.NoError(t, err)
	require.NoError(t, tm.Sign(context.Background(), tx, w))

	sig, already, err := tm.Submit(context.Background(), tx)
	require.NoError(t, err)
	assert.False(t, already)
	assert.Equal(t, want, sig)
	assert.Equal(t, first, second)
	client.AssertNumberOfCalls(t, "SendTransactionWithOpts", 2)
}

func TestSubmitDoesNotRetryRejection(t *testing.T) {
	tm, client, w := newTestManager(t)
	rejection := &jsonrpc.RPCError{
		Code:    -32002,
		Message: "Transaction simulation failed",
		Data: map[string]interface{}{"logs": []interface{}{
			"Program log: AnchorError occurred. Error Code: InvalidFee. Error Number: 6000. Error Message: Invalid fee amount.",
		}},
	}
	client.On("SendTransactionWithOpts", mock.Anything, mock.Anything, mock.Anything).Return(solana.Signature{}, rejection)

	_, err := tm.SendAndConfirm(context.Background(), []solana.Instruction{transferIx(w.PublicKey(), solana.NewWallet().PublicKey())}, w)

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrSubmission))
	assert.Contains(t, err.Error(), "InvalidFee (6000)")
	assert.Len(t, apperrors.LogsOf(err), 1)
	client.AssertNumberOfCalls(t, "SendTransactionWithOpts", 1)
}

func TestSubmitGivesUpAfterMaxRetries(t *testing.T) {
	tm, client, w := newTestManager(t)
	client.On("SendTransactionWithOpts", mock.Anything, mock.Anything, mock.Anything).
		Return(solana.Signature{}, errors.New("HTTP 429 Too Many Requests"))

	_, err := tm.SendAndConfirm(context.Background(), []solana.Instruction{transferIx(w.PublicKey(), solana.NewWallet().PublicKey())}, w)

	assert.True(t, errors.Is(err, apperrors.ErrSubmission))
	client.AssertNumberOfCalls(t, "SendTransactionWithOpts", testConfig().MaxRetries)
}

func TestSendAndConfirmOnChainFailureCarriesLogs(t *testing.T) {
	tm, client, w := newTestManager(t)
	client.On("SendTransactionWithOpts", mock.Anything, mock.Anything, mock.Anything).Return(solana.Signature{5}, nil)
	client.On("GetSignatureStatuses", mock.Anything, mock.Anything).
		Return(blockchaintest.Status(rpc.ConfirmationStatusConfirmed, map[string]interface{}{"InstructionError": []interface{}{0, "Custom"}}), nil)
	client.On("GetTransaction", mock.Anything, mock.Anything).
		Return(&rpc.GetTransactionResult{Meta: &rpc.TransactionMeta{LogMessages: []string{
			"Program log: AnchorError occurred. Error Code: SlippageExceeded. Error Number: 6003. Error Message: Slippage exceeded.",
		}}}, nil)

	_, err := tm.SendAndConfirm(context.Background(), []solana.Instruction{transferIx(w.PublicKey(), solana.NewWallet().PublicKey())}, w)

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrOnChainFailure))
	assert.Contains(t, err.Error(), "SlippageExceeded")
	assert.NotEmpty(t, apperrors.LogsOf(err))
}

func TestSendAndConfirmWithExtraSigner(t *testing.T) {
	tm, client, w := newTestManager(t)
	mint, err := wallet.NewKeypair()
	require.NoError(t, err)

	client.On("SendTransactionWithOpts", mock.Anything, mock.MatchedBy(func(tx *solana.Transaction) bool {
		return len(wallet.MissingSigners(tx)) == 0 && tx.VerifySignatures() == nil
	}), mock.Anything).Return(solana.Signature{6}, nil)
	client.On("GetSignatureStatuses", mock.Anything, mock.Anything).
		Return(blockchaintest.Status(rpc.ConfirmationStatusConfirmed, nil), nil)
	client.On("GetTransaction", mock.Anything, mock.Anything).Return(nil, errors.New("not yet indexed"))

	ix := solana.NewInstruction(solana.SystemProgramID, solana.AccountMetaSlice{
		solana.NewAccountMeta(w.PublicKey(), true, true),
		solana.NewAccountMeta(mint.PublicKey(), true, true),
	}, []byte{0})

	status, err := tm.SendAndConfirm(context.Background(), []solana.Instruction{ix}, w, mint)
	require.NoError(t, err)
	assert.Equal(t, solana.Signature{6}, status.Signature)
	assert.Nil(t, status.Logs)
}

func TestBuildTransactionRejectsEmpty(t *testing.T) {
	tm, _, w := newTestManager(t)
	_, err := tm.BuildTransaction(context.Background(), nil, w.PublicKey())
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}
