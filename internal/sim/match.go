package sim

import (
	"context"
	"fmt"
	"strconv"

	"github.com/emberdeck/duelist/internal/ai"
	"github.com/emberdeck/duelist/internal/ai/eval"
	"github.com/emberdeck/duelist/internal/config"
	"github.com/emberdeck/duelist/internal/game"
	"github.com/emberdeck/duelist/internal/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Draw is the Result.Winner of a drawn match.
const Draw = "DRAW"

// Result summarizes a finished match.
type Result struct {
	MatchID  string `json:"match_id"`
	Seed     int64  `json:"seed"`
	Winner   string `json:"winner"`
	Rounds   int    `json:"rounds"`
	Checksum string `json:"checksum"`
}

type matchOptions struct {
	sink      telemetry.Sink
	predictor eval.Predictor
	observer  func(Snapshot)
	logger    *zap.Logger
}

// MatchOption customizes a Match.
type MatchOption func(*matchOptions)

// WithSink receives every telemetry event of the match.
func WithSink(sink telemetry.Sink) MatchOption {
	return func(o *matchOptions) { o.sink = sink }
}

// WithPredictor gives both controllers a win predictor.
func WithPredictor(p eval.Predictor) MatchOption {
	return func(o *matchOptions) { o.predictor = p }
}

// WithObserver is called with every snapshot the match records.
func WithObserver(fn func(Snapshot)) MatchOption {
	return func(o *matchOptions) { o.observer = fn }
}

// WithLogger sets the match logger.
func WithLogger(logger *zap.Logger) MatchOption {
	return func(o *matchOptions) { o.logger = logger }
}

// Match pits two AI controllers against each other on one engine.
type Match struct {
	id          string
	seed        int64
	engine      *Engine
	controllers [2]*ai.Controller
	replay      *Replay
	sink        telemetry.Sink
	observer    func(Snapshot)
	logger      *zap.Logger
}

// MatchID derives a stable match ID from a seed.
func MatchID(seed int64) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("duelist-match-"+strconv.FormatInt(seed, 10))).String()
}

// NewMatch sets up a fresh match with random decks drawn from catalog.
func NewMatch(cfg *config.Config, catalog *Catalog, seed int64, opts ...MatchOption) (*Match, error) {
	o := applyOptions(opts)
	id := MatchID(seed)
	engine := NewEngine(id, catalog, RulesFrom(cfg.Simulation), seed, o.logger)
	return newMatch(cfg, engine, seed, o)
}

// NewScenarioMatch sets up a match starting from a scenario.
func NewScenarioMatch(cfg *config.Config, catalog *Catalog, sc *Scenario, opts ...MatchOption) (*Match, error) {
	o := applyOptions(opts)
	engine, err := NewScenarioEngine(sc, catalog, RulesFrom(cfg.Simulation), o.logger)
	if err != nil {
		return nil, err
	}
	return newMatch(cfg, engine, sc.Seed, o)
}

func applyOptions(opts []MatchOption) matchOptions {
	o := matchOptions{sink: telemetry.Nop, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.sink == nil {
		o.sink = telemetry.Nop
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return o
}

func newMatch(cfg *config.Config, engine *Engine, seed int64, o matchOptions) (*Match, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: config is nil", config.ErrInvalidConfig)
	}
	m := &Match{
		id:       engine.MatchID(),
		seed:     seed,
		engine:   engine,
		replay:   NewReplay(engine.MatchID(), seed),
		sink:     o.sink,
		observer: o.observer,
		logger:   o.logger.With(zap.String("match_id", engine.MatchID())),
	}
	for i := range m.controllers {
		side := game.Side(i)
		aiCfg := cfg.AI
		aiCfg.Seed = cfg.AI.Seed + 2*seed + int64(i)
		c, err := ai.NewController(side, aiCfg, ai.Dependencies{
			Source:    engine,
			Executor:  engine,
			Sink:      o.sink,
			Predictor: o.predictor,
		}, o.logger, ai.WithMatchID(m.id))
		if err != nil {
			return nil, fmt.Errorf("failed to create controller for %s: %w", side, err)
		}
		m.controllers[i] = c
	}
	return m, nil
}

// ID returns the match ID.
func (m *Match) ID() string { return m.id }

// Engine exposes the engine, mostly for tests.
func (m *Match) Engine() *Engine { return m.engine }

// Replay returns the recording of the match so far.
func (m *Match) Replay() *Replay { return m.replay }

// Run plays turns until a side dies or the turn limit is reached. It only
// fails when ctx is done.
func (m *Match) Run(ctx context.Context) (Result, error) {
	m.sink.Notify(m.event(telemetry.EventMatchStarted))
	m.logger.Debug("match started", zap.Int64("seed", m.seed))
	m.record()

	for !m.engine.Over() {
		if err := ctx.Err(); err != nil {
			return m.result(), err
		}
		if m.engine.TurnLimitReached() {
			m.engine.Concede()
			break
		}
		side := m.engine.BeginTurn()
		if !m.engine.Over() {
			if err := m.controllers[side].RunTurn(ctx); err != nil {
				return m.result(), fmt.Errorf("turn %d of %s: %w", m.engine.Round(), side, err)
			}
		}
		m.engine.EndTurn()
		m.record()
	}

	res := m.result()
	end := m.event(telemetry.EventMatchEnded)
	end.Data = res.Winner
	end.Turn = res.Rounds
	m.sink.Notify(end)
	m.logger.Info("match finished",
		zap.String("winner", res.Winner),
		zap.Int("rounds", res.Rounds),
		zap.String("checksum", res.Checksum))
	return res, nil
}

func (m *Match) record() {
	s := m.engine.Snapshot()
	m.replay.Record(s)
	if m.observer != nil {
		m.observer(s)
	}
}

func (m *Match) result() Result {
	winner := Draw
	if w, ok := m.engine.Winner(); ok {
		winner = w.String()
	}
	return Result{
		MatchID:  m.id,
		Seed:     m.seed,
		Winner:   winner,
		Rounds:   m.engine.Round(),
		Checksum: m.replay.Checksum(),
	}
}

func (m *Match) event(t telemetry.EventType) telemetry.Event {
	evt := telemetry.NewEvent(t, "", "", "")
	evt.MatchID = m.id
	evt.Turn = m.engine.Round()
	return evt
}
