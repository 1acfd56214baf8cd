package transaction

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/hookswap/internal/blockchain/blockchaintest"
	apperrors "github.com/rovshanmuradov/hookswap/internal/errors"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.RetryDelay = time.Millisecond
	cfg.PollInterval = 5 * time.Millisecond
	cfg.ConfirmationTime = 200 * time.Millisecond
	return cfg
}

func TestReached(t *testing.T) {
	tests := []struct {
		have, want rpc.ConfirmationStatusType
		ok         bool
	}{
		{rpc.ConfirmationStatusProcessed, rpc.ConfirmationStatusConfirmed, false},
		{rpc.ConfirmationStatusConfirmed, rpc.ConfirmationStatusConfirmed, true},
		{rpc.ConfirmationStatusFinalized, rpc.ConfirmationStatusConfirmed, true},
		{rpc.ConfirmationStatusFinalized, rpc.ConfirmationStatusProcessed, true},
		{rpc.ConfirmationStatusConfirmed, rpc.ConfirmationStatusFinalized, false},
		{"", rpc.ConfirmationStatusProcessed, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.ok, Reached(tt.have, tt.want), "%s >= %s", tt.have, tt.want)
	}
}

func TestAwaitConfirmationPendingThenConfirmed(t *testing.T) {
	client := new(blockchaintest.MockClient)
	client.On("GetSignatureStatuses", mock.Anything, mock.Anything).Return(blockchaintest.Pending(), nil).Twice()
	client.On("GetSignatureStatuses", mock.Anything, mock.Anything).Return(nil, errors.New("503 Service Unavailable")).Once()
	client.On("GetSignatureStatuses", mock.Anything, mock.Anything).
		Return(blockchaintest.Status(rpc.ConfirmationStatusFinalized, nil), nil)

	m := NewMonitor(client, zap.NewNop(), testConfig())
	status, err := m.AwaitConfirmation(context.Background(), solana.Signature{7}, 0, rpc.ConfirmationStatusConfirmed)

	require.NoError(t, err)
	assert.Equal(t, rpc.ConfirmationStatusFinalized, status.Level)
	assert.Equal(t, uint64(100), status.Slot)
	client.AssertNumberOfCalls(t, "GetSignatureStatuses", 4)
}

func TestAwaitConfirmationOnChainFailure(t *testing.T) {
	client := new(blockchaintest.MockClient)
	instrErr := map[string]interface{}{"InstructionError": []interface{}{0, map[string]interface{}{"Custom": 6003}}}
	client.On("GetSignatureStatuses", mock.Anything, mock.Anything).
		Return(blockchaintest.Status(rpc.ConfirmationStatusProcessed, instrErr), nil)

	m := NewMonitor(client, zap.NewNop(), testConfig())
	_, err := m.AwaitConfirmation(context.Background(), solana.Signature{1}, 0, "")

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrOnChainFailure))
	assert.False(t, errors.Is(err, apperrors.ErrTimeout))
	assert.Contains(t, err.Error(), "6003")
}

func TestAwaitConfirmationTimeoutIsDistinct(t *testing.T) {
	client := new(blockchaintest.MockClient)
	client.On("GetSignatureStatuses", mock.Anything, mock.Anything).
		Return(blockchaintest.Status(rpc.ConfirmationStatusProcessed, nil), nil)

	m := NewMonitor(client, zap.NewNop(), testConfig())
	_, err := m.AwaitConfirmation(context.Background(), solana.Signature{2}, 30*time.Millisecond, rpc.ConfirmationStatusConfirmed)

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrTimeout))
	assert.False(t, errors.Is(err, apperrors.ErrOnChainFailure))

	var ce *apperrors.ClientError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, solana.Signature{2}.String(), ce.Signature)
}

func TestAwaitConfirmationCallerCancel(t *testing.T) {
	client := new(blockchaintest.MockClient)
	client.On("GetSignatureStatuses", mock.Anything, mock.Anything).Return(blockchaintest.Pending(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	m := NewMonitor(client, zap.NewNop(), testConfig())
	_, err := m.AwaitConfirmation(ctx, solana.Signature{3}, time.Second, "")

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, errors.Is(err, apperrors.ErrTimeout))
}
