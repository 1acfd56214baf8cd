// internal/workflow/result.go
package workflow

import (
	"errors"
	"time"

	"github.com/rovshanmuradov/hookswap/internal/dex/hookamm"
	apperrors "github.com/rovshanmuradov/hookswap/internal/errors"
)

// Result – единая форма итога шага для UI и CLI. Ошибки нижних слоёв сюда не протекают.
type Result struct {
	Step             string
	Success          bool
	Signature        string
	AlreadyProcessed bool
	Error            string
	Kind             apperrors.Kind
	Logs             []string
	Addresses        map[string]string
	Elapsed          time.Duration
}

// FromOp превращает подтверждённую операцию в Result.
func FromOp(step string, op *hookamm.OpResult) Result {
	r := Result{Step: step, Success: true}
	if op == nil {
		return r
	}
	r.Signature = op.Signature.String()
	r.AlreadyProcessed = op.AlreadyProcessed
	r.Logs = op.Logs
	r.Elapsed = op.Elapsed
	if len(op.Addresses) > 0 {
		r.Addresses = make(map[string]string, len(op.Addresses))
		for k, v := range op.Addresses {
			r.Addresses[k] = v.String()
		}
	}
	return r
}

// FromError превращает ошибку любого слоя в неуспешный Result.
func FromError(step string, err error) Result {
	r := Result{
		Step:  step,
		Error: err.Error(),
		Kind:  apperrors.KindOf(err),
		Logs:  apperrors.LogsOf(err),
	}
	var ce *apperrors.ClientError
	if errors.As(err, &ce) && ce.Signature != "" {
		r.Signature = ce.Signature
	}
	return r
}

// Summary – короткое объяснение для пользователя по виду ошибки.
func (r Result) Summary() string {
	if r.Success {
		if r.AlreadyProcessed {
			return "already done"
		}
		return "confirmed"
	}
	switch r.Kind {
	case apperrors.KindInsufficientBalance:
		return "insufficient funds"
	case apperrors.KindAlreadyProcessed:
		return "already done"
	case apperrors.KindTimeout:
		return "network timeout, outcome unknown"
	case apperrors.KindOnChainFailure:
		return "rejected on chain"
	case apperrors.KindSubmission:
		return "network rejected the transaction"
	case apperrors.KindInvalidInput:
		return "invalid input"
	case apperrors.KindBusy:
		return "another workflow is running"
	case apperrors.KindDecode:
		return "unexpected account data"
	default:
		return "failed"
	}
}
