// Package telemetry carries observational events out of the AI. Nothing in
// here feeds back into decisions.
package telemetry

import (
	"time"

	"github.com/google/uuid"
)

// EventType indicates the category of a telemetry event.
type EventType string

const (
	// Match flow
	EventMatchStarted EventType = "MATCH_STARTED"
	EventMatchEnded   EventType = "MATCH_ENDED"
	EventTurnStarted  EventType = "TURN_STARTED"

	// Card phase
	EventCardPlanReady  EventType = "CARD_PLAN_READY"
	EventCardPlayed     EventType = "CARD_PLAYED"
	EventCardDropped    EventType = "CARD_DROPPED"
	EventCardPhaseEmpty EventType = "CARD_PHASE_EMPTY"

	// Attack phase
	EventAttackPlanReady  EventType = "ATTACK_PLAN_READY"
	EventAttackExecuted   EventType = "ATTACK_EXECUTED"
	EventAttackDropped    EventType = "ATTACK_DROPPED"
	EventAttackReplanned  EventType = "ATTACK_REPLANNED"
	EventUnitDied         EventType = "UNIT_DIED"
	EventLifeTotalDamaged EventType = "LIFE_TOTAL_DAMAGED"

	// Decision internals
	EventVarianceFired EventType = "VARIANCE_FIRED"
	EventPrediction    EventType = "PREDICTION"
	EventPhaseSkipped  EventType = "PHASE_SKIPPED"
)

// Event is one observation. Side is the acting side ("A" or "B").
type Event struct {
	Type      EventType         `json:"type"`
	ID        string            `json:"id"`
	MatchID   string            `json:"match_id,omitempty"`
	Side      string            `json:"side,omitempty"`
	Turn      int               `json:"turn,omitempty"`
	SourceID  string            `json:"source_id,omitempty"`
	TargetID  string            `json:"target_id,omitempty"`
	Amount    int               `json:"amount,omitempty"`
	Score     float64           `json:"score,omitempty"`
	Flag      bool              `json:"flag,omitempty"`
	Data      string            `json:"data,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// NewEvent creates an event with a fresh ID and timestamp.
func NewEvent(eventType EventType, side, sourceID, targetID string) Event {
	return Event{
		Type:      eventType,
		ID:        uuid.NewString(),
		Side:      side,
		SourceID:  sourceID,
		TargetID:  targetID,
		Timestamp: time.Now(),
	}
}

// NewEventWithAmount creates an event carrying a numeric value.
func NewEventWithAmount(eventType EventType, side, sourceID, targetID string, amount int) Event {
	evt := NewEvent(eventType, side, sourceID, targetID)
	evt.Amount = amount
	return evt
}

// WithMeta returns a copy of e with key set in its metadata.
func (e Event) WithMeta(key, value string) Event {
	meta := make(map[string]string, len(e.Metadata)+1)
	for k, v := range e.Metadata {
		meta[k] = v
	}
	meta[key] = value
	e.Metadata = meta
	return e
}

// Sink receives events. Notify must never block the caller.
type Sink interface {
	Notify(event Event)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(Event)

// Notify calls f.
func (f SinkFunc) Notify(event Event) { f(event) }

// Nop discards every event.
var Nop Sink = SinkFunc(func(Event) {})
