// internal/workflow/runner.go
package workflow

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/hookswap/internal/dex/hookamm"
	apperrors "github.com/rovshanmuradov/hookswap/internal/errors"
	"github.com/rovshanmuradov/hookswap/internal/storage"
	"github.com/rovshanmuradov/hookswap/internal/storage/models"
)

// Step – один шаг сценария: одна транзакция.
type Step struct {
	Name string
	// Stage, которой сценарий достигает после успеха шага. StageStart – без изменения.
	Stage Stage
	Run   func(ctx context.Context) (*hookamm.OpResult, error)
	// Apply забирает адреса, созданные шагом. Вызывается после перехода стадии.
	Apply func(ctx context.Context, op *hookamm.OpResult) error
}

// Runner выполняет шаги строго последовательно: следующий шаг не начинается,
// пока не получен результат предыдущего. Первая ошибка останавливает сценарий.
type Runner struct {
	busy     atomic.Bool
	tracker  *Tracker
	store    storage.Storage
	logger   *zap.Logger
	wallet   string
	onResult func(Result)
}

// NewRunner создаёт раннер. store может быть nil – тогда история не пишется.
func NewRunner(tracker *Tracker, store storage.Storage, wallet string, logger *zap.Logger) *Runner {
	if tracker == nil {
		tracker = NewTracker(StageStart)
	}
	return &Runner{
		tracker: tracker,
		store:   store,
		wallet:  wallet,
		logger:  logger.Named("workflow"),
	}
}

// OnResult задаёт обработчик результатов шагов (UI прогресс).
func (r *Runner) OnResult(fn func(Result)) {
	r.onResult = fn
}

func (r *Runner) Busy() bool {
	return r.busy.Load()
}

func (r *Runner) Stage() Stage {
	return r.tracker.Current()
}

func (r *Runner) Tracker() *Tracker {
	return r.tracker
}

// Run выполняет шаги сценария name. Повторный вызов во время выполнения получает ErrBusy.
// Возвращает результаты выполненных шагов и ошибку упавшего шага.
func (r *Runner) Run(ctx context.Context, name string, steps []Step) ([]Result, error) {
	if !r.busy.CompareAndSwap(false, true) {
		return nil, apperrors.New(apperrors.KindBusy, name+": another workflow is in progress")
	}
	defer r.busy.Store(false)

	runID := uuid.NewString()
	logger := r.logger.With(zap.String("workflow", name), zap.String("run_id", runID))
	logger.Info("Workflow started", zap.Int("steps", len(steps)), zap.Stringer("stage", r.tracker.Current()))

	results := make([]Result, 0, len(steps))
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			res := FromError(step.Name, err)
			results = append(results, res)
			r.emit(res)
			return results, err
		}

		logger.Info("Step started", zap.Int("index", i+1), zap.String("step", step.Name))
		started := time.Now()
		op, err := step.Run(ctx)
		if err != nil {
			res := FromError(step.Name, err)
			res.Elapsed = time.Since(started)
			results = append(results, res)
			r.record(ctx, res)
			r.emit(res)
			logger.Error("Step failed",
				zap.String("step", step.Name),
				zap.String("kind", string(res.Kind)),
				zap.Error(err))
			return results, err
		}

		res := FromOp(step.Name, op)
		if res.Elapsed == 0 {
			res.Elapsed = time.Since(started)
		}
		if step.Stage != StageStart && r.tracker.Advance(step.Stage) {
			logger.Info("Stage reached", zap.Stringer("stage", step.Stage))
		}
		if step.Apply != nil {
			if err := step.Apply(ctx, op); err != nil {
				// транзакция уже прошла, шаг считается успешным
				logger.Warn("Failed to persist step output", zap.String("step", step.Name), zap.Error(err))
			}
		}
		results = append(results, res)
		r.record(ctx, res)
		r.emit(res)
		logger.Info("Step completed",
			zap.String("step", step.Name),
			zap.String("signature", res.Signature),
			zap.Bool("already_processed", res.AlreadyProcessed))
	}

	logger.Info("Workflow completed", zap.Stringer("stage", r.tracker.Current()))
	return results, nil
}

func (r *Runner) emit(res Result) {
	if r.onResult != nil {
		r.onResult(res)
	}
}

// record пишет шаг в историю транзакций. Ошибки хранилища только логируются.
func (r *Runner) record(ctx context.Context, res Result) {
	if r.store == nil || res.Signature == "" {
		return
	}
	status := models.StatusConfirmed
	switch {
	case res.Kind == apperrors.KindTimeout:
		status = models.StatusUnknown
	case !res.Success:
		status = models.StatusFailed
	}
	tx := &models.Transaction{
		Signature:        res.Signature,
		Operation:        res.Step,
		WalletAddress:    r.wallet,
		Status:           status,
		Kind:             string(res.Kind),
		ErrorMessage:     res.Error,
		AlreadyProcessed: res.AlreadyProcessed,
		Addresses:        res.Addresses,
		ExecutionTime:    res.Elapsed.Seconds(),
	}
	if err := r.store.SaveTransaction(ctx, tx); err != nil {
		r.logger.Warn("Failed to save transaction history", zap.Error(err))
	}
}
