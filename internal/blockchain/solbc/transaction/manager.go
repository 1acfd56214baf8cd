// internal/blockchain/solbc/transaction/manager.go
package transaction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/hookswap/internal/blockchain"
	"github.com/rovshanmuradov/hookswap/internal/blockchain/solbc"
	apperrors "github.com/rovshanmuradov/hookswap/internal/errors"
	"github.com/rovshanmuradov/hookswap/internal/wallet"
)

// Manager собирает, подписывает, отправляет транзакции и ждёт их подтверждения.
type Manager struct {
	client    blockchain.Client
	logger    *zap.Logger
	config    Config
	validator *Validator
	monitor   *Monitor
	analyzer  *solbc.ErrorAnalyzer
}

func NewManager(client blockchain.Client, logger *zap.Logger, config Config) *Manager {
	if config.MaxRetries <= 0 {
		config.MaxRetries = 1
	}
	return &Manager{
		client:    client,
		logger:    logger.Named("tx-manager"),
		config:    config,
		validator: NewValidator(logger),
		monitor:   NewMonitor(client, logger, config),
		analyzer:  solbc.NewErrorAnalyzer(logger),
	}
}

// Monitor возвращает монитор подтверждений менеджера.
func (tm *Manager) Monitor() *Monitor {
	return tm.monitor
}

// BuildTransaction собирает инструкции в одну атомарную транзакцию с актуальным blockhash.
// Порядок инструкций и аккаунтов сохраняется как есть.
func (tm *Manager) BuildTransaction(ctx context.Context, instructions []solana.Instruction, payer solana.PublicKey) (*solana.Transaction, error) {
	if len(instructions) == 0 {
		return nil, apperrors.InvalidInput("transaction needs at least one instruction")
	}

	blockhash, err := tm.client.GetRecentBlockhash(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindSubmission, err, "failed to get recent blockhash")
	}

	tx, err := solana.NewTransaction(instructions, blockhash, solana.TransactionPayer(payer))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindEncoding, err, "failed to compile transaction")
	}
	return tx, nil
}

// Sign подписывает транзакцию сначала дополнительными ключами (свежие минты), затем кошельком.
func (tm *Manager) Sign(ctx context.Context, tx *solana.Transaction, signer wallet.Signer, extra ...solana.PrivateKey) error {
	if len(extra) > 0 {
		if err := wallet.PartialSign(tx, extra...); err != nil {
			return fmt.Errorf("failed to sign with generated keys: %w", err)
		}
	}
	if err := signer.SignTransaction(ctx, tx); err != nil {
		return fmt.Errorf("wallet rejected signing: %w", err)
	}
	return nil
}

// Submit отправляет подписанную транзакцию. Транспортные сбои повторяются с теми же байтами
// не более MaxRetries раз. Ответ "already processed" считается успешной отправкой;
// второе возвращаемое значение сообщает именно об этом случае.
func (tm *Manager) Submit(ctx context.Context, tx *solana.Transaction) (solana.Signature, bool, error) {
	alreadyProcessed := false
	attempt := 0

	operation := func() (solana.Signature, error) {
		attempt++
		signature, err := tm.client.SendTransactionWithOpts(ctx, tx, blockchain.TransactionOptions{
			SkipPreflight:       tm.config.SkipPreflight,
			PreflightCommitment: tm.config.Commitment,
			MaxRetries:          tm.config.NodeRetries,
		})
		if err == nil {
			return signature, nil
		}

		if solbc.IsAlreadyProcessed(err) {
			alreadyProcessed = true
			recovered := solbc.RecoverSignature(err, tx)
			tm.logger.Info("Transaction already processed, treating as sent",
				zap.String("signature", recovered.String()),
				zap.Int("attempt", attempt))
			return recovered, nil
		}

		logs := solbc.ExtractLogs(err)
		subErr := apperrors.Submission(err, logs)
		if anchorErr, ok := solbc.FindAnchorError(logs); ok {
			subErr.Message = anchorErr.String()
		}

		if !solbc.IsRetryable(err) {
			tm.logger.Debug("RPC error analysis",
				zap.String("analysis", tm.analyzer.FormatErrorAnalysis(tm.analyzer.AnalyzeRPCError(err))))
			return solana.Signature{}, backoff.Permanent(subErr)
		}

		tm.logger.Warn("Retrying transaction send",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", tm.config.MaxRetries),
			zap.Error(err))
		return solana.Signature{}, subErr
	}

	signature, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewConstantBackOff(tm.config.RetryDelay)),
		backoff.WithMaxTries(uint(tm.config.MaxRetries)),
	)
	if err != nil {
		return solana.Signature{}, false, err
	}
	return signature, alreadyProcessed, nil
}

// SendAndConfirm проходит полный путь: сборка, подпись, проверка, отправка, ожидание подтверждения, логи.
func (tm *Manager) SendAndConfirm(
	ctx context.Context,
	instructions []solana.Instruction,
	signer wallet.Signer,
	extra ...solana.PrivateKey,
) (*Status, error) {
	started := time.Now()

	tx, err := tm.BuildTransaction(ctx, instructions, signer.PublicKey())
	if err != nil {
		return nil, err
	}

	if err := tm.Sign(ctx, tx, signer, extra...); err != nil {
		return nil, err
	}

	if err := tm.validator.ValidateTransaction(tx); err != nil {
		tm.logger.Error("Transaction validation failed", zap.Error(err))
		return nil, apperrors.Wrap(apperrors.KindInvalidInput, err, "transaction validation failed")
	}

	signature, alreadyProcessed, err := tm.Submit(ctx, tx)
	if err != nil {
		tm.logger.Error("Failed to send transaction", zap.Error(err))
		return nil, err
	}
	tm.logger.Info("Transaction sent",
		zap.String("signature", signature.String()),
		zap.Bool("already_processed", alreadyProcessed))

	status, err := tm.monitor.AwaitConfirmation(ctx, signature, 0, "")
	if err != nil {
		tm.logger.Error("Transaction confirmation failed",
			zap.String("signature", signature.String()),
			zap.Error(err))
		return nil, tm.enrichFailure(ctx, signature, err)
	}

	status.AlreadyProcessed = alreadyProcessed
	if logs, err := tm.FetchLogs(ctx, signature); err == nil {
		status.Logs = logs
	} else {
		tm.logger.Debug("Transaction logs unavailable",
			zap.String("signature", signature.String()),
			zap.Error(err))
	}

	tm.logger.Info("Transaction confirmed",
		zap.String("signature", signature.String()),
		zap.String("level", string(status.Level)),
		zap.Duration("elapsed", time.Since(started)))
	return status, nil
}

// FetchLogs читает логи программ подтверждённой транзакции.
func (tm *Manager) FetchLogs(ctx context.Context, signature solana.Signature) ([]string, error) {
	result, err := tm.client.GetTransaction(ctx, signature)
	if err != nil {
		return nil, err
	}
	if result == nil || result.Meta == nil {
		return nil, nil
	}
	return result.Meta.LogMessages, nil
}

// enrichFailure дополняет OnChainFailure логами транзакции и ошибкой Anchor, если её удалось найти.
func (tm *Manager) enrichFailure(ctx context.Context, signature solana.Signature, err error) error {
	var ce *apperrors.ClientError
	if !errors.As(err, &ce) || ce.Kind != apperrors.KindOnChainFailure {
		return err
	}

	logs, logErr := tm.FetchLogs(ctx, signature)
	if logErr != nil || len(logs) == 0 {
		return err
	}

	detail := ce.Message
	if anchorErr, ok := solbc.FindAnchorError(logs); ok {
		detail = fmt.Sprintf("%s: %s", detail, anchorErr)
	}
	return apperrors.OnChainFailure(signature.String(), detail, logs)
}

// ConfirmSignature ждёт подтверждения уже отправленной подписи (например, airdrop).
func (tm *Manager) ConfirmSignature(ctx context.Context, signature solana.Signature, level rpc.ConfirmationStatusType) (*Status, error) {
	return tm.monitor.AwaitConfirmation(ctx, signature, 0, level)
}
