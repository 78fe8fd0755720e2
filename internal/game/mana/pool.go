package mana

import (
	"fmt"
)

// Pool is the mana a side can still spend this turn. The AI uses it as a
// budget while selecting cards; the reference engine uses it as the real
// pool.
type Pool struct {
	available int
	spent     int
}

// NewPool creates a pool holding amount mana.
func NewPool(amount int) *Pool {
	if amount < 0 {
		amount = 0
	}
	return &Pool{available: amount}
}

// Available returns the mana left.
func (p *Pool) Available() int {
	if p == nil {
		return 0
	}
	return p.available
}

// Spent returns the mana spent since the pool was created or refilled.
func (p *Pool) Spent() int {
	if p == nil {
		return 0
	}
	return p.spent
}

// CanAfford reports whether cost can be paid.
func (p *Pool) CanAfford(cost int) bool {
	return p != nil && cost >= 0 && cost <= p.available
}

// Spend pays cost, returning false (and changing nothing) when unaffordable.
func (p *Pool) Spend(cost int) bool {
	if !p.CanAfford(cost) {
		return false
	}
	p.available -= cost
	p.spent += cost
	return true
}

// Pay is Spend with an error for callers that surface failures.
func (p *Pool) Pay(cost int) error {
	if cost < 0 {
		return fmt.Errorf("negative mana cost %d", cost)
	}
	if !p.Spend(cost) {
		return fmt.Errorf("insufficient mana: need %d, have %d", cost, p.Available())
	}
	return nil
}

// Refill resets the pool to amount, as at the start of a turn.
func (p *Pool) Refill(amount int) {
	if amount < 0 {
		amount = 0
	}
	p.available = amount
	p.spent = 0
}

// Empty drains the pool.
func (p *Pool) Empty() {
	p.available = 0
}
