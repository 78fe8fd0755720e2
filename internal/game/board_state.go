package game

// DefaultMaxBoardSlots is the number of unit slots per side.
const DefaultMaxBoardSlots = 6

// BoardState is a disposable per-turn snapshot seen from SelfSide. It is
// rebuilt from the StateSource after every board-changing action and never
// patched in place; only a ControlEvaluator writes the derived fields.
type BoardState struct {
	SelfSide Side

	SelfUnits     []Unit
	OpponentUnits []Unit

	SelfHealth        int
	SelfMaxHealth     int
	OpponentHealth    int
	OpponentMaxHealth int

	TurnCount        int
	SelfMana         int
	OpponentMana     int
	SelfHandSize     int
	OpponentHandSize int
	SelfDeckSize     int
	OpponentDeckSize int

	IsOpponentFirstNextTurn bool
	MaxBoardSlots           int

	// Derived
	SelfBoardControl       float64
	OpponentBoardControl   float64
	CardAdvantage          int
	LethalNextTurn         bool
	SelfLethal             bool
	CriticalHealth         bool
	OpponentCriticalHealth bool
}

// ControlEvaluator recomputes the derived fields of a snapshot.
type ControlEvaluator interface {
	ApplyControl(state *BoardState)
}

// BuildBoardState snapshots the source from self's point of view. It returns
// nil when the source is missing. ctrl may be nil, leaving control at zero.
func BuildBoardState(source StateSource, self Side, ctrl ControlEvaluator) *BoardState {
	if source == nil {
		return nil
	}
	selfStatus := source.Status(self)
	oppStatus := source.Status(self.Opponent())
	turn := source.Turn()

	state := &BoardState{
		SelfSide:                self,
		SelfUnits:               AliveUnits(source.GetActiveUnits(self)),
		OpponentUnits:           AliveUnits(source.GetActiveUnits(self.Opponent())),
		SelfHealth:              selfStatus.Health,
		SelfMaxHealth:           selfStatus.MaxHealth,
		OpponentHealth:          oppStatus.Health,
		OpponentMaxHealth:       oppStatus.MaxHealth,
		TurnCount:               turn.TurnCount,
		SelfMana:                selfStatus.Mana,
		OpponentMana:            oppStatus.Mana,
		SelfHandSize:            selfStatus.HandSize,
		OpponentHandSize:        oppStatus.HandSize,
		SelfDeckSize:            selfStatus.DeckSize,
		OpponentDeckSize:        oppStatus.DeckSize,
		IsOpponentFirstNextTurn: turn.FirstNextTurn != self,
		MaxBoardSlots:           DefaultMaxBoardSlots,
	}
	state.Recompute(ctrl)
	return state
}

// Recompute clears and re-derives every derived field from the units.
func (s *BoardState) Recompute(ctrl ControlEvaluator) {
	if s == nil {
		return
	}
	s.SelfBoardControl = 0
	s.OpponentBoardControl = 0
	s.LethalNextTurn = false
	s.SelfLethal = false
	s.CriticalHealth = false
	s.OpponentCriticalHealth = false
	s.CardAdvantage = s.SelfHandSize - s.OpponentHandSize
	if ctrl != nil {
		ctrl.ApplyControl(s)
	}
}

// Clone returns a deep copy so callers can simulate without touching s.
func (s *BoardState) Clone() *BoardState {
	if s == nil {
		return nil
	}
	c := *s
	c.SelfUnits = append([]Unit(nil), s.SelfUnits...)
	c.OpponentUnits = append([]Unit(nil), s.OpponentUnits...)
	return &c
}

// Units returns the unit list of a side.
func (s *BoardState) Units(side Side) []Unit {
	if s == nil {
		return nil
	}
	if side == s.SelfSide {
		return s.SelfUnits
	}
	return s.OpponentUnits
}

// Health returns the life total of a side.
func (s *BoardState) Health(side Side) int {
	if s == nil {
		return 0
	}
	if side == s.SelfSide {
		return s.SelfHealth
	}
	return s.OpponentHealth
}

// MaxHealth returns the maximum life total of a side.
func (s *BoardState) MaxHealth(side Side) int {
	if s == nil {
		return 0
	}
	if side == s.SelfSide {
		return s.SelfMaxHealth
	}
	return s.OpponentMaxHealth
}

// FindUnit looks a unit up on either side.
func (s *BoardState) FindUnit(id string) (Unit, bool) {
	if s == nil || id == "" {
		return Unit{}, false
	}
	for _, u := range s.SelfUnits {
		if u.ID == id {
			return u, true
		}
	}
	for _, u := range s.OpponentUnits {
		if u.ID == id {
			return u, true
		}
	}
	return Unit{}, false
}

// FreeSlot returns the lowest unoccupied slot of a side, or -1 when full.
func (s *BoardState) FreeSlot(side Side) int {
	if s == nil {
		return -1
	}
	slots := s.MaxBoardSlots
	if slots <= 0 {
		slots = DefaultMaxBoardSlots
	}
	used := make(map[int]bool, slots)
	for _, u := range s.Units(side) {
		used[u.Slot] = true
	}
	for i := 0; i < slots; i++ {
		if !used[i] {
			return i
		}
	}
	return -1
}

// ControlRatio returns self control over opponent control. An empty
// opposing board with any self presence counts as a large lead.
func (s *BoardState) ControlRatio() float64 {
	if s == nil {
		return 1
	}
	if s.OpponentBoardControl <= 0 {
		if s.SelfBoardControl <= 0 {
			return 1
		}
		return 10
	}
	return s.SelfBoardControl / s.OpponentBoardControl
}

// SelfLeads reports whether board control favors self.
func (s *BoardState) SelfLeads() bool {
	return s != nil && s.SelfBoardControl > s.OpponentBoardControl
}

// SelfHealthRatio returns self health over max health.
func (s *BoardState) SelfHealthRatio() float64 {
	return ratio(s.SelfHealth, s.SelfMaxHealth)
}

// OpponentHealthRatio returns opponent health over max health.
func (s *BoardState) OpponentHealthRatio() float64 {
	return ratio(s.OpponentHealth, s.OpponentMaxHealth)
}

func ratio(v, max int) float64 {
	if max <= 0 {
		return 1
	}
	return float64(v) / float64(max)
}
