package telemetry

import (
	"sort"
	"sync"
)

// DecisionStats aggregates what one side's AI did.
type DecisionStats struct {
	Turns           int            `json:"turns"`
	CardsPlayed     int            `json:"cards_played"`
	CardsDropped    int            `json:"cards_dropped"`
	EmptyCardPhases int            `json:"empty_card_phases"`
	Attacks         int            `json:"attacks"`
	AttacksDropped  int            `json:"attacks_dropped"`
	Replans         int            `json:"replans"`
	Kills           int            `json:"kills"`
	FaceDamage      int            `json:"face_damage"`
	Variance        map[string]int `json:"variance"`
}

// Merge adds other into s.
func (s *DecisionStats) Merge(other DecisionStats) {
	s.Turns += other.Turns
	s.CardsPlayed += other.CardsPlayed
	s.CardsDropped += other.CardsDropped
	s.EmptyCardPhases += other.EmptyCardPhases
	s.Attacks += other.Attacks
	s.AttacksDropped += other.AttacksDropped
	s.Replans += other.Replans
	s.Kills += other.Kills
	s.FaceDamage += other.FaceDamage
	if len(other.Variance) > 0 && s.Variance == nil {
		s.Variance = make(map[string]int, len(other.Variance))
	}
	for k, v := range other.Variance {
		s.Variance[k] += v
	}
}

// VarianceKinds returns the fired variance kinds sorted by name.
func (s DecisionStats) VarianceKinds() []string {
	kinds := make([]string, 0, len(s.Variance))
	for k := range s.Variance {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// DecisionWatcher builds DecisionStats for one side.
type DecisionWatcher struct {
	BaseWatcher
	mu    sync.Mutex
	stats DecisionStats
}

// NewDecisionWatcher creates a watcher for side.
func NewDecisionWatcher(side string) *DecisionWatcher {
	return &DecisionWatcher{
		BaseWatcher: NewBaseWatcher(WatcherScopeSide, side, "DecisionWatcher"),
		stats:       DecisionStats{Variance: make(map[string]int)},
	}
}

// Watch implements Watcher.
func (w *DecisionWatcher) Watch(event Event) {
	if !w.Accepts(event) {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	switch event.Type {
	case EventTurnStarted:
		w.stats.Turns++
	case EventCardPlayed:
		w.stats.CardsPlayed++
	case EventCardDropped:
		w.stats.CardsDropped++
	case EventCardPhaseEmpty:
		w.stats.EmptyCardPhases++
	case EventAttackExecuted:
		w.stats.Attacks++
	case EventAttackDropped:
		w.stats.AttacksDropped++
	case EventAttackReplanned:
		w.stats.Replans++
	case EventUnitDied:
		w.stats.Kills++
	case EventLifeTotalDamaged:
		w.stats.FaceDamage += event.Amount
	case EventVarianceFired:
		w.stats.Variance[event.Data]++
	}
}

// Reset clears the collected stats.
func (w *DecisionWatcher) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stats = DecisionStats{Variance: make(map[string]int)}
}

// Stats returns a copy of the collected stats.
func (w *DecisionWatcher) Stats() DecisionStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := w.stats
	out.Variance = make(map[string]int, len(w.stats.Variance))
	for k, v := range w.stats.Variance {
		out.Variance[k] = v
	}
	return out
}

// MatchResult is what a MatchWatcher records from EventMatchEnded.
type MatchResult struct {
	MatchID string
	Winner  string
	Turns   int
}

// MatchWatcher records finished matches.
type MatchWatcher struct {
	BaseWatcher
	mu      sync.Mutex
	results []MatchResult
}

// NewMatchWatcher creates a match-scoped watcher.
func NewMatchWatcher() *MatchWatcher {
	return &MatchWatcher{BaseWatcher: NewBaseWatcher(WatcherScopeMatch, "", "MatchWatcher")}
}

// Watch implements Watcher.
func (w *MatchWatcher) Watch(event Event) {
	if event.Type != EventMatchEnded {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.results = append(w.results, MatchResult{MatchID: event.MatchID, Winner: event.Data, Turns: event.Turn})
}

// Reset clears recorded results.
func (w *MatchWatcher) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.results = nil
}

// Results returns the recorded results.
func (w *MatchWatcher) Results() []MatchResult {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]MatchResult(nil), w.results...)
}

// Wins counts results won by side.
func (w *MatchWatcher) Wins(side string) int {
	n := 0
	for _, r := range w.Results() {
		if r.Winner == side {
			n++
		}
	}
	return n
}
