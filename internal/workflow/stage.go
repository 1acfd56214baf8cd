// internal/workflow/stage.go
package workflow

import (
	"fmt"
	"sync"
)

// Stage – прогресс сценария. Стадии идут строго вперёд.
type Stage int

const (
	StageStart Stage = iota
	StageMinted
	StageAMM
	StagePool
	StageDeposit
	StageSwap
)

var stageNames = [...]string{"start", "minted", "amm", "pool", "deposit", "swap"}

func (s Stage) String() string {
	if s < StageStart || s > StageSwap {
		return fmt.Sprintf("stage(%d)", int(s))
	}
	return stageNames[s]
}

// ParseStage разбирает имя стадии из сохранённой сессии.
func ParseStage(name string) (Stage, error) {
	if name == "" {
		return StageStart, nil
	}
	for i, n := range stageNames {
		if n == name {
			return Stage(i), nil
		}
	}
	return StageStart, fmt.Errorf("unknown stage %q", name)
}

// Tracker хранит текущую стадию.
type Tracker struct {
	mu    sync.RWMutex
	stage Stage
}

func NewTracker(initial Stage) *Tracker {
	return &Tracker{stage: initial}
}

func (t *Tracker) Current() Stage {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.stage
}

// Advance переводит трекер на стадию to, если она дальше текущей.
// Возвращает true, если стадия изменилась.
func (t *Tracker) Advance(to Stage) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if to <= t.stage || to > StageSwap {
		return false
	}
	t.stage = to
	return true
}
