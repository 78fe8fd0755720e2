package planner

import (
	"github.com/emberdeck/duelist/internal/game"
)

// PlannedAttack is one entry of an attack plan.
type PlannedAttack struct {
	Attacker game.Unit
	Target   game.Target
	Score    float64
	Reason   string
}

// AttackContext is the working copy of an attack phase. Simulated outcomes
// are applied to it as the plan is built so later choices see earlier kills.
type AttackContext struct {
	Attackers []game.Unit
	Defenders []game.Unit
	SelfUnits []game.Unit
	LifeTotal int
	State     *game.BoardState
	Valid     bool
}

// NewAttackContext copies the inputs, dropping dead and zero-attack
// attackers and dead defenders.
func NewAttackContext(attackers, defenders []game.Unit, lifeTotal int, state *game.BoardState) *AttackContext {
	c := &AttackContext{
		Defenders: game.AliveUnits(defenders),
		LifeTotal: lifeTotal,
		State:     state,
		Valid:     state != nil,
	}
	for i := range attackers {
		if attackers[i].CanAttack() {
			c.Attackers = append(c.Attackers, attackers[i])
		}
	}
	if state != nil {
		c.SelfUnits = game.AliveUnits(state.SelfUnits)
	}
	if len(c.SelfUnits) == 0 {
		c.SelfUnits = game.AliveUnits(attackers)
	}
	return c
}

// Clone returns an independent copy. State is shared and never mutated.
func (c *AttackContext) Clone() *AttackContext {
	if c == nil {
		return nil
	}
	return &AttackContext{
		Attackers: append([]game.Unit(nil), c.Attackers...),
		Defenders: append([]game.Unit(nil), c.Defenders...),
		SelfUnits: append([]game.Unit(nil), c.SelfUnits...),
		LifeTotal: c.LifeTotal,
		State:     c.State,
		Valid:     c.Valid,
	}
}

// Attacker returns the current simulated copy of an attacker.
func (c *AttackContext) Attacker(id string) (game.Unit, bool) {
	for i := range c.Attackers {
		if c.Attackers[i].ID == id {
			return c.Attackers[i], c.Attackers[i].CanAttack()
		}
	}
	return game.Unit{}, false
}

// Defender returns the current simulated copy of a defender.
func (c *AttackContext) Defender(id string) (game.Unit, bool) {
	for i := range c.Defenders {
		if c.Defenders[i].ID == id {
			return c.Defenders[i], true
		}
	}
	return game.Unit{}, false
}

// LivingSelfUnits counts self units still alive in the simulation.
func (c *AttackContext) LivingSelfUnits() int {
	return len(game.AliveUnits(c.SelfUnits))
}

// AvailableDamage sums the damage the remaining attackers can still deal.
func (c *AttackContext) AvailableDamage() int {
	return game.AvailableDamage(c.Attackers)
}

// IsLethal reports whether the remaining attackers can clear every Taunt
// unit and still reach the life total.
func (c *AttackContext) IsLethal() bool {
	return game.IsLethal(c.AvailableDamage(), c.Defenders, c.LifeTotal)
}

// Resolve applies the predicted outcome of an attack and reports whether the
// target died. Life-total strikes lower LifeTotal.
func (c *AttackContext) Resolve(attackerID string, target game.Target) bool {
	ai := c.attackerIndex(attackerID)
	if ai < 0 {
		return false
	}
	attacker := c.Attackers[ai]
	attacker.RemainingAttacks--

	killed := false
	if target.IsLifeTotal() {
		c.LifeTotal -= attacker.Attack
		killed = c.LifeTotal <= 0
	} else if di := c.defenderIndex(target.UnitID); di >= 0 {
		defender := c.Defenders[di]
		attacker.Health -= game.CounterDamage(&attacker, &defender)
		defender.Health -= game.DamageTaken(&defender, attacker.Attack)
		killed = defender.Health <= 0
		c.Defenders[di] = defender

		if splash := game.SplashDamage(&attacker); splash > 0 {
			for i := range c.Defenders {
				if i != di {
					c.Defenders[i].Health -= game.DamageTaken(&c.Defenders[i], splash)
				}
			}
		}
		c.Defenders = game.AliveUnits(c.Defenders)
	}

	if attacker.Health <= 0 {
		attacker.IsDead = true
	}
	c.Attackers[ai] = attacker
	for i := range c.SelfUnits {
		if c.SelfUnits[i].ID == attacker.ID {
			c.SelfUnits[i].Health = attacker.Health
			c.SelfUnits[i].IsDead = attacker.IsDead
		}
	}
	return killed
}

func (c *AttackContext) unit(id string) (game.Unit, bool) {
	if i := c.attackerIndex(id); i >= 0 {
		return c.Attackers[i], true
	}
	return game.Unit{}, false
}

func (c *AttackContext) attackerIndex(id string) int {
	for i := range c.Attackers {
		if c.Attackers[i].ID == id {
			return i
		}
	}
	return -1
}

func (c *AttackContext) defenderIndex(id string) int {
	for i := range c.Defenders {
		if c.Defenders[i].ID == id {
			return i
		}
	}
	return -1
}
