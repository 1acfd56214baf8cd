// internal/storage/yamlstore/yamlstore.go
package yamlstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/rovshanmuradov/hookswap/internal/storage"
	"github.com/rovshanmuradov/hookswap/internal/storage/models"
)

// maxHistory – сколько последних транзакций хранится в файле.
const maxHistory = 200

type document struct {
	Session      *models.Session       `yaml:"session,omitempty"`
	Transactions []*models.Transaction `yaml:"transactions,omitempty"`
}

// yamlStorage реализует интерфейс Storage поверх одного YAML файла.
type yamlStorage struct {
	path   string
	mu     sync.Mutex
	doc    document
	logger *zap.Logger
}

// NewStorage открывает файл сессии; отсутствующий файл – пустая сессия.
func NewStorage(path string, logger *zap.Logger) (storage.Storage, error) {
	s := &yamlStorage{
		path:   path,
		logger: logger.Named("session-store"),
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		s.logger.Debug("Session file not found, starting fresh", zap.String("path", path))
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	if err := yaml.Unmarshal(data, &s.doc); err != nil {
		return nil, fmt.Errorf("failed to parse session file %s: %w", path, err)
	}
	return s, nil
}

// flush пишет документ во временный файл и атомарно заменяет основной.
func (s *yamlStorage) flush() error {
	data, err := yaml.Marshal(&s.doc)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create session dir: %w", err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return os.Rename(tmp, s.path)
}

func (s *yamlStorage) LoadSession(_ context.Context) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc.Session == nil {
		return nil, storage.ErrNotFound
	}
	cp := *s.doc.Session
	return &cp, nil
}

func (s *yamlStorage) SaveSession(_ context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *session
	cp.UpdatedAt = time.Now().UTC()
	s.doc.Session = &cp
	return s.flush()
}

func (s *yamlStorage) ResetSession(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Session = nil
	return s.flush()
}

func (s *yamlStorage) SaveTransaction(_ context.Context, tx *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *tx
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	s.doc.Transactions = append(s.doc.Transactions, &cp)
	if n := len(s.doc.Transactions); n > maxHistory {
		s.doc.Transactions = s.doc.Transactions[n-maxHistory:]
	}
	return s.flush()
}

func (s *yamlStorage) GetTransaction(_ context.Context, signature string) (*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.doc.Transactions) - 1; i >= 0; i-- {
		if s.doc.Transactions[i].Signature == signature {
			cp := *s.doc.Transactions[i]
			return &cp, nil
		}
	}
	return nil, storage.ErrNotFound
}

// ListTransactions возвращает историю от новых к старым.
func (s *yamlStorage) ListTransactions(_ context.Context, limit, offset int) ([]*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// в обратном порядке добавления, чтобы при равном времени новые шли первыми
	txs := make([]*models.Transaction, 0, len(s.doc.Transactions))
	for i := len(s.doc.Transactions) - 1; i >= 0; i-- {
		txs = append(txs, s.doc.Transactions[i])
	}
	sort.SliceStable(txs, func(i, j int) bool { return txs[i].CreatedAt.After(txs[j].CreatedAt) })

	if offset >= len(txs) {
		return nil, nil
	}
	txs = txs[offset:]
	if limit > 0 && limit < len(txs) {
		txs = txs[:limit]
	}
	return txs, nil
}
