package targeting

import (
	"fmt"

	"github.com/emberdeck/duelist/internal/game"
)

// TargetValidator validates that chosen targets are still legal against a
// fresh snapshot. Targets are never frozen at planning time.
type TargetValidator struct {
	state *game.BoardState
}

// NewTargetValidator creates a validator over a snapshot.
func NewTargetValidator(state *game.BoardState) *TargetValidator {
	return &TargetValidator{state: state}
}

// ValidateCardTarget checks a play target for a card.
func (tv *TargetValidator) ValidateCardTarget(card game.Card, target game.PlayTarget) error {
	if tv == nil || tv.state == nil {
		return fmt.Errorf("target validator not initialized")
	}

	if card.IsMonster() {
		if target.Slot < 0 {
			return fmt.Errorf("monster %s needs a board slot", card.Name)
		}
		for _, u := range tv.state.SelfUnits {
			if u.Slot == target.Slot {
				return fmt.Errorf("slot %d is occupied", target.Slot)
			}
		}
		return nil
	}

	req := RequirementFor(card)
	if !req.IsTargeted() {
		if target.UnitID != "" {
			return fmt.Errorf("spell %s takes no target", card.Name)
		}
		return nil
	}

	for _, u := range LegalTargets(card, tv.state) {
		if u.ID == target.UnitID {
			return nil
		}
	}
	if _, found := tv.state.FindUnit(target.UnitID); !found {
		return fmt.Errorf("target %s not found", target.UnitID)
	}
	return fmt.Errorf("target %s is not legal for %s (%s)", target.UnitID, card.Name, req.Description)
}

// ValidateAttack checks that attacker can still strike target.
func (tv *TargetValidator) ValidateAttack(attackerID string, target game.Target) error {
	if tv == nil || tv.state == nil {
		return fmt.Errorf("target validator not initialized")
	}

	attacker, found := tv.state.FindUnit(attackerID)
	if !found || attacker.Side != tv.state.SelfSide {
		return fmt.Errorf("attacker %s not found", attackerID)
	}
	if !attacker.CanAttack() {
		return fmt.Errorf("attacker %s cannot attack", attackerID)
	}

	units, lifeTotalOpen := LegalAttackTargets(tv.state.OpponentUnits)
	if target.IsLifeTotal() {
		if !lifeTotalOpen {
			return fmt.Errorf("life total is protected by taunt")
		}
		return nil
	}
	for _, u := range units {
		if u.ID == target.UnitID {
			return nil
		}
	}
	return fmt.Errorf("target %s is not attackable", target.UnitID)
}
