// Package variance is the decision-variance layer: probability-controlled,
// deliberately suboptimal choices layered over the heuristic planners so the
// opponent plays like a person. Every roll goes through one seeded source,
// so a fixed seed replays the same imperfections and a disabled layer
// never deviates.
package variance

import (
	"fmt"
	"math/rand"

	"github.com/emberdeck/duelist/internal/config"
	"go.uber.org/zap"
)

// Kind names a variance decision, reported to observers when it fires.
type Kind string

const (
	KindSecondBest       Kind = "SECOND_BEST"
	KindThirdBest        Kind = "THIRD_BEST"
	KindReconsider       Kind = "RECONSIDER"
	KindOrderShuffle     Kind = "ORDER_SHUFFLE"
	KindSkipAttack       Kind = "SKIP_ATTACK"
	KindIgnoreProtection Kind = "IGNORE_PROTECTION"
	KindFaceMistake      Kind = "FACE_MISTAKE"
	KindSkipTurn         Kind = "SKIP_TURN"
	KindHold             Kind = "HOLD"
	KindEarlyStop        Kind = "EARLY_STOP"
)

// Observer is notified whenever a variance decision fires.
type Observer func(kind Kind)

// Variance rolls every randomized decision of the planners.
type Variance struct {
	params   config.VarianceConfig
	rng      *rand.Rand
	enabled  bool
	logger   *zap.Logger
	observer Observer
}

// Option customizes a Variance.
type Option func(*Variance)

// WithObserver registers a callback for fired decisions.
func WithObserver(obs Observer) Option {
	return func(v *Variance) { v.observer = obs }
}

// WithLogger sets the logger used for fired decisions.
func WithLogger(logger *zap.Logger) Option {
	return func(v *Variance) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// New validates params and creates a Variance seeded with seed.
func New(params config.VarianceConfig, seed int64, opts ...Option) (*Variance, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("variance: %w", err)
	}
	v := &Variance{
		params:  params,
		rng:     rand.New(rand.NewSource(seed)),
		enabled: params.Enabled,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Disabled returns a Variance that never deviates from the best choice.
func Disabled() *Variance {
	return &Variance{
		rng:    rand.New(rand.NewSource(0)),
		logger: zap.NewNop(),
	}
}

// Enabled reports whether randomized deviations are active.
func (v *Variance) Enabled() bool {
	return v != nil && v.enabled
}

// Roll returns true with probability p. A disabled layer only returns true
// for certainties.
func (v *Variance) Roll(p float64) bool {
	if p >= 1 {
		return true
	}
	if !v.Enabled() || p <= 0 {
		return false
	}
	return v.rng.Float64() < p
}

func (v *Variance) fire(kind Kind, p float64) bool {
	if !v.Roll(p) {
		return false
	}
	v.logger.Debug("variance fired", zap.String("kind", string(kind)), zap.Float64("probability", p))
	if v.observer != nil {
		v.observer(kind)
	}
	return true
}

// Chance rolls an externally configured probability and reports it under kind.
func (v *Variance) Chance(kind Kind, p float64) bool {
	return v.fire(kind, p)
}

// PickRank returns which rank of a best-first candidate list to take: 0
// normally, 1 or 2 with the configured second/third-best probabilities when
// that many candidates exist.
func (v *Variance) PickRank(n int) int {
	if n <= 1 || !v.Enabled() {
		return 0
	}
	r := v.rng.Float64()
	lower := 0.0
	if n > 2 {
		if r < v.params.ThirdBestProbability {
			v.report(KindThirdBest)
			return 2
		}
		lower = v.params.ThirdBestProbability
	}
	if r >= lower && r < lower+v.params.SecondBestProbability {
		v.report(KindSecondBest)
		return 1
	}
	return 0
}

// Reconsider may move a chosen index to an adjacent candidate.
func (v *Variance) Reconsider(idx, n int) int {
	if n <= 1 || idx < 0 || idx >= n {
		return idx
	}
	if !v.fire(KindReconsider, v.params.ReconsiderProbability) {
		return idx
	}
	switch {
	case idx == 0:
		return 1
	case idx == n-1:
		return idx - 1
	case v.rng.Intn(2) == 0:
		return idx - 1
	default:
		return idx + 1
	}
}

// PartialShuffle may swap a few adjacent entries of an ordered sequence of
// length n. swap follows the sort.Interface convention.
func (v *Variance) PartialShuffle(n int, swap func(i, j int)) bool {
	if n < 2 || !v.fire(KindOrderShuffle, v.params.OrderShuffleProbability) {
		return false
	}
	swaps := 1 + v.rng.Intn((n+1)/2)
	for k := 0; k < swaps; k++ {
		i := v.rng.Intn(n - 1)
		swap(i, i+1)
	}
	return true
}

// Perturb adds a bounded random term of at most ScoreVariance*|score|.
func (v *Variance) Perturb(score float64) float64 {
	if !v.Enabled() || v.params.ScoreVariance <= 0 {
		return score
	}
	magnitude := score
	if magnitude < 0 {
		magnitude = -magnitude
	}
	return score + (v.rng.Float64()*2-1)*magnitude*v.params.ScoreVariance
}

// SkipAttack decides whether an attacker sits out this phase.
func (v *Variance) SkipAttack() bool {
	return v.fire(KindSkipAttack, v.params.SkipAttackProbability)
}

// IgnoreProtection decides whether last-unit protection is ignored.
func (v *Variance) IgnoreProtection() bool {
	return v.fire(KindIgnoreProtection, v.params.IgnoreProtectionProbability)
}

// FaceMistake decides whether to strike the life total despite the risk.
func (v *Variance) FaceMistake() bool {
	return v.fire(KindFaceMistake, v.params.FaceMistakeProbability)
}

// SkipTurn decides whether to play no cards this turn.
func (v *Variance) SkipTurn() bool {
	return v.fire(KindSkipTurn, v.params.SkipTurnProbability)
}

func (v *Variance) report(kind Kind) {
	v.logger.Debug("variance fired", zap.String("kind", string(kind)))
	if v.observer != nil {
		v.observer(kind)
	}
}
