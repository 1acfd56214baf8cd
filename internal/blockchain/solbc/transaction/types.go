// internal/blockchain/solbc/transaction/types.go
package transaction

import (
	"errors"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

var (
	ErrInvalidSignature   = errors.New("invalid transaction signature")
	ErrInvalidBlockhash   = errors.New("invalid blockhash")
	ErrInvalidInstruction = errors.New("invalid instruction")
	ErrMissingSigner      = errors.New("transaction is missing a required signature")
)

// Config управляет отправкой и ожиданием подтверждения транзакций.
type Config struct {
	// MaxRetries – число попыток отправки одних и тех же подписанных байт.
	MaxRetries int
	RetryDelay time.Duration
	// ConfirmationTime – окно ожидания подтверждения.
	ConfirmationTime time.Duration
	PollInterval     time.Duration
	SkipPreflight    bool
	// Commitment используется для preflight и чтения blockhash.
	Commitment rpc.CommitmentType
	// Level – минимальный уровень подтверждения, который считается успехом.
	Level rpc.ConfirmationStatusType
	// NodeRetries передаётся узлу как maxRetries при рассылке транзакции.
	NodeRetries uint
}

// DefaultConfig возвращает значения по умолчанию.
func DefaultConfig() Config {
	return Config{
		MaxRetries:       3,
		RetryDelay:       500 * time.Millisecond,
		ConfirmationTime: 60 * time.Second,
		PollInterval:     time.Second,
		SkipPreflight:    true,
		Commitment:       rpc.CommitmentConfirmed,
		Level:            rpc.ConfirmationStatusConfirmed,
		NodeRetries:      3,
	}
}

// Status описывает подтверждённую транзакцию.
type Status struct {
	Signature     solana.Signature
	Level         rpc.ConfirmationStatusType
	Confirmations uint64
	Slot          uint64
	// Err – ошибка исполнения программы, если сеть её сообщила.
	Err interface{}
	// AlreadyProcessed выставлен, если узел сообщил, что уже видел эту транзакцию.
	AlreadyProcessed bool
	Logs             []string
	Timestamp        time.Time
}
