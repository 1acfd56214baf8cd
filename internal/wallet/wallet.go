// ==================================
// File: internal/wallet/wallet.go
// ==================================
package wallet

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

// ErrNotSigner возвращается, когда ключ не входит в число обязательных подписантов транзакции.
var ErrNotSigner = errors.New("key is not a required signer of this transaction")

// Signer – сторона, способная подписать транзакцию своим ключом.
// Реализация может быть локальным ключом или внешним кошельком.
type Signer interface {
	PublicKey() solana.PublicKey
	SignTransaction(ctx context.Context, tx *solana.Transaction) error
}

// Wallet представляет кошелёк Solana на локальной паре ключей.
type Wallet struct {
	privateKey solana.PrivateKey
	publicKey  solana.PublicKey
}

var _ Signer = (*Wallet)(nil)

// NewWallet создаёт новый кошелёк из base58-encoded приватного ключа.
func NewWallet(privateKeyBase58 string) (*Wallet, error) {
	privateKeyBytes, err := base58.Decode(strings.TrimSpace(privateKeyBase58))
	if err != nil {
		return nil, fmt.Errorf("failed to decode private key: %w", err)
	}
	return fromBytes(privateKeyBytes)
}

// FromPrivateKey оборачивает существующий ключ.
func FromPrivateKey(pk solana.PrivateKey) *Wallet {
	return &Wallet{privateKey: pk, publicKey: pk.PublicKey()}
}

// Generate создаёт кошелёк со случайным ключом.
func Generate() (*Wallet, error) {
	pk, err := NewKeypair()
	if err != nil {
		return nil, err
	}
	return FromPrivateKey(pk), nil
}

// NewKeypair создаёт свежую пару ключей (новый минт, LP минт).
func NewKeypair() (solana.PrivateKey, error) {
	pk, err := solana.NewRandomPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate keypair: %w", err)
	}
	return pk, nil
}

// FromSecret принимает секрет в base58 или в формате JSON массива байт (solana-keygen).
func FromSecret(secret string) (*Wallet, error) {
	secret = strings.TrimSpace(secret)
	if strings.HasPrefix(secret, "[") {
		var raw []byte
		if err := json.Unmarshal([]byte(secret), &raw); err != nil {
			return nil, fmt.Errorf("failed to parse keypair: %w", err)
		}
		return fromBytes(raw)
	}
	return NewWallet(secret)
}

// LoadFromFile загружает кошелёк из JSON файла (формат Solana CLI).
func LoadFromFile(path string) (*Wallet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read keypair file: %w", err)
	}
	return FromSecret(string(data))
}

// LoadOrCreate загружает dev-кошелёк из path, а если файла нет, создаёт и сохраняет новый.
// Второе значение сообщает, был ли кошелёк только что создан.
func LoadOrCreate(path string) (*Wallet, bool, error) {
	w, err := LoadFromFile(path)
	if err == nil {
		return w, false, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, false, err
	}

	w, err = Generate()
	if err != nil {
		return nil, false, err
	}
	if err := w.SaveToFile(path); err != nil {
		return nil, false, err
	}
	return w, true, nil
}

func fromBytes(raw []byte) (*Wallet, error) {
	if len(raw) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("invalid private key length: expected %d bytes, got %d", ed25519.PrivateKeySize, len(raw))
	}
	pk := solana.PrivateKey(raw)
	return FromPrivateKey(pk), nil
}

// PublicKey возвращает публичный ключ кошелька.
func (w *Wallet) PublicKey() solana.PublicKey {
	return w.publicKey
}

// PrivateKey возвращает приватный ключ кошелька.
func (w *Wallet) PrivateKey() solana.PrivateKey {
	return w.privateKey
}

// SecretBase58 возвращает приватный ключ в base58 (для экспорта dev-кошелька).
func (w *Wallet) SecretBase58() string {
	return base58.Encode(w.privateKey)
}

// SignTransaction подписывает транзакцию ключом кошелька, не трогая остальные подписи.
func (w *Wallet) SignTransaction(_ context.Context, tx *solana.Transaction) error {
	return PartialSign(tx, w.privateKey)
}

// SaveToFile сохраняет пару ключей в JSON файл (формат Solana CLI).
func (w *Wallet) SaveToFile(path string) error {
	keypair := make([]int, len(w.privateKey))
	for i, b := range w.privateKey {
		keypair[i] = int(b)
	}
	data, err := json.Marshal(keypair)
	if err != nil {
		return fmt.Errorf("failed to marshal keypair: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create wallet dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write keypair file: %w", err)
	}
	return nil
}

// String возвращает строковое представление кошелька (его публичный ключ).
func (w *Wallet) String() string {
	return w.publicKey.String()
}

// PartialSign подписывает сообщение транзакции каждым ключом и кладёт подпись
// в слот, соответствующий позиции ключа среди обязательных подписантов.
// Подписи других участников сохраняются.
func PartialSign(tx *solana.Transaction, keys ...solana.PrivateKey) error {
	message, err := tx.Message.MarshalBinary()
	if err != nil {
		return fmt.Errorf("failed to serialize message: %w", err)
	}

	required := int(tx.Message.Header.NumRequiredSignatures)
	if len(tx.Message.AccountKeys) < required {
		return fmt.Errorf("message declares %d signers but has %d keys", required, len(tx.Message.AccountKeys))
	}
	if len(tx.Signatures) != required {
		sigs := make([]solana.Signature, required)
		copy(sigs, tx.Signatures)
		tx.Signatures = sigs
	}

	signers := tx.Message.AccountKeys[:required]
	for _, key := range keys {
		pub := key.PublicKey()
		idx := -1
		for i, s := range signers {
			if s.Equals(pub) {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("%w: %s", ErrNotSigner, pub)
		}
		sig, err := key.Sign(message)
		if err != nil {
			return fmt.Errorf("failed to sign with %s: %w", pub, err)
		}
		tx.Signatures[idx] = sig
	}
	return nil
}

// MissingSigners возвращает обязательных подписантов, чей слот подписи ещё пуст.
func MissingSigners(tx *solana.Transaction) []solana.PublicKey {
	required := int(tx.Message.Header.NumRequiredSignatures)
	var missing []solana.PublicKey
	for i := 0; i < required && i < len(tx.Message.AccountKeys); i++ {
		if i >= len(tx.Signatures) || tx.Signatures[i] == (solana.Signature{}) {
			missing = append(missing, tx.Message.AccountKeys[i])
		}
	}
	return missing
}
