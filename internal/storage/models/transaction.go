// internal/storage/models/transaction.go
package models

import "time"

// Transaction – запись истории отправленных операций.
type Transaction struct {
	Signature        string            `yaml:"signature"`
	Operation        string            `yaml:"operation"`
	WalletAddress    string            `yaml:"wallet"`
	Status           string            `yaml:"status"`
	Kind             string            `yaml:"kind,omitempty"`
	ErrorMessage     string            `yaml:"error,omitempty"`
	AlreadyProcessed bool              `yaml:"already_processed,omitempty"`
	Addresses        map[string]string `yaml:"addresses,omitempty"`
	ExecutionTime    float64           `yaml:"execution_time_sec"`
	CreatedAt        time.Time         `yaml:"created_at"`
}

// Статусы транзакции.
const (
	StatusConfirmed = "confirmed"
	StatusFailed    = "failed"
	// StatusUnknown – подтверждение не дождались, транзакция могла пройти.
	StatusUnknown = "unknown"
)
