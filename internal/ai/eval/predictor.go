package eval

import (
	"math"

	"github.com/emberdeck/duelist/internal/game"
)

// Features is the numeric summary of a snapshot fed to a Predictor.
type Features struct {
	ControlRatio        float64
	SelfHealthRatio     float64
	OpponentHealthRatio float64
	UnitDiff            float64
	HandDiff            float64
	ManaDiff            float64
	Turn                float64
}

// Vector returns the features in a fixed order.
func (f Features) Vector() []float64 {
	return []float64{
		f.ControlRatio,
		f.SelfHealthRatio,
		f.OpponentHealthRatio,
		f.UnitDiff,
		f.HandDiff,
		f.ManaDiff,
		f.Turn,
	}
}

// ExtractFeatures summarizes a snapshot. A nil snapshot yields zero features.
func ExtractFeatures(state *game.BoardState) Features {
	if state == nil {
		return Features{}
	}
	return Features{
		ControlRatio:        sanitize(math.Min(state.ControlRatio(), 10)),
		SelfHealthRatio:     state.SelfHealthRatio(),
		OpponentHealthRatio: state.OpponentHealthRatio(),
		UnitDiff:            float64(len(state.SelfUnits) - len(state.OpponentUnits)),
		HandDiff:            float64(state.SelfHandSize - state.OpponentHandSize),
		ManaDiff:            float64(state.SelfMana - state.OpponentMana),
		Turn:                float64(state.TurnCount),
	}
}

// Predictor estimates the probability that self wins from a snapshot.
type Predictor interface {
	PredictWinProbability(f Features) float64
}

// NullPredictor knows nothing and always answers 0.5.
type NullPredictor struct{}

// PredictWinProbability implements Predictor.
func (NullPredictor) PredictWinProbability(Features) float64 { return 0.5 }

// LinearPredictor is a logistic model over Features.Vector.
type LinearPredictor struct {
	Weights []float64
	Bias    float64
}

// PredictWinProbability implements Predictor. Missing weights count as zero.
func (p LinearPredictor) PredictWinProbability(f Features) float64 {
	z := p.Bias
	for i, x := range f.Vector() {
		if i < len(p.Weights) {
			z += p.Weights[i] * x
		}
	}
	return sanitize(1 / (1 + math.Exp(-z)))
}
