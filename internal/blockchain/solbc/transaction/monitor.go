// internal/blockchain/solbc/transaction/monitor.go
package transaction

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	apperrors "github.com/rovshanmuradov/hookswap/internal/errors"
)

// StatusSource – источник статусов подписей (RPC клиент или тестовая заглушка).
type StatusSource interface {
	GetSignatureStatuses(ctx context.Context, signatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error)
}

// LevelRank упорядочивает уровни подтверждения: processed < confirmed < finalized.
func LevelRank(level rpc.ConfirmationStatusType) int {
	switch level {
	case rpc.ConfirmationStatusProcessed:
		return 1
	case rpc.ConfirmationStatusConfirmed:
		return 2
	case rpc.ConfirmationStatusFinalized:
		return 3
	default:
		return 0
	}
}

// Reached сообщает, достиг ли уровень have запрошенного уровня want.
func Reached(have, want rpc.ConfirmationStatusType) bool {
	rank := LevelRank(have)
	return rank > 0 && rank >= LevelRank(want)
}

// Monitor опрашивает сеть, пока транзакция не достигнет нужного уровня подтверждения.
type Monitor struct {
	source StatusSource
	logger *zap.Logger
	config Config
}

func NewMonitor(source StatusSource, logger *zap.Logger, config Config) *Monitor {
	if config.PollInterval <= 0 {
		config.PollInterval = time.Second
	}
	if config.ConfirmationTime <= 0 {
		config.ConfirmationTime = 60 * time.Second
	}
	if config.Level == "" {
		config.Level = rpc.ConfirmationStatusConfirmed
	}
	return &Monitor{
		source: source,
		logger: logger.Named("tx-monitor"),
		config: config,
	}
}

// GetTransactionStatus возвращает текущий статус подписи или nil, если сеть её ещё не видела.
func (m *Monitor) GetTransactionStatus(ctx context.Context, signature solana.Signature) (*Status, error) {
	response, err := m.source.GetSignatureStatuses(ctx, signature)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction status: %w", err)
	}

	if response == nil || len(response.Value) == 0 || response.Value[0] == nil {
		return nil, nil
	}

	status := response.Value[0]
	txStatus := &Status{
		Signature: signature,
		Level:     status.ConfirmationStatus,
		Slot:      status.Slot,
		Err:       status.Err,
		Timestamp: time.Now(),
	}
	if status.Confirmations != nil {
		txStatus.Confirmations = *status.Confirmations
	}
	return txStatus, nil
}

// AwaitConfirmation ждёт, пока подпись достигнет уровня level (или выше), не дольше timeout.
// Нулевые timeout и level берутся из конфигурации.
//
// Ошибка исполнения в статусе возвращается как OnChainFailure сразу, без ожидания.
// Истечение окна возвращается как Timeout: исход транзакции при этом неизвестен.
// Сбои самого запроса статуса не прерывают ожидание.
func (m *Monitor) AwaitConfirmation(
	ctx context.Context,
	signature solana.Signature,
	timeout time.Duration,
	level rpc.ConfirmationStatusType,
) (*Status, error) {
	if timeout <= 0 {
		timeout = m.config.ConfirmationTime
	}
	if level == "" {
		level = m.config.Level
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(m.config.PollInterval)
	defer ticker.Stop()

	for {
		status, err := m.GetTransactionStatus(waitCtx, signature)
		switch {
		case err != nil:
			m.logger.Warn("Confirmation check failed",
				zap.String("signature", signature.String()),
				zap.Error(err))
		case status == nil:
			// сеть ещё не видела подпись
		case status.Err != nil:
			return status, apperrors.OnChainFailure(signature.String(), status.Err, nil)
		case Reached(status.Level, level):
			m.logger.Debug("Transaction confirmed",
				zap.String("signature", signature.String()),
				zap.String("level", string(status.Level)),
				zap.Uint64("slot", status.Slot))
			return status, nil
		}

		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, apperrors.Timeout(signature.String(), timeout)
		case <-ticker.C:
		}
	}
}
