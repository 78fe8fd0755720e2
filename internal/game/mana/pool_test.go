package mana

import (
	"testing"
)

func TestPool_Spend(t *testing.T) {
	pool := NewPool(5)

	if !pool.Spend(2) {
		t.Error("Expected to spend 2 mana")
	}
	if pool.Available() != 3 {
		t.Errorf("Expected 3 mana remaining, got %d", pool.Available())
	}
	if pool.Spent() != 2 {
		t.Errorf("Expected 2 mana spent, got %d", pool.Spent())
	}

	// Try to spend more than available
	if pool.Spend(4) {
		t.Error("Expected to fail spending 4 mana when only 3 available")
	}
	if pool.Available() != 3 {
		t.Errorf("Failed spend must not change the pool, got %d", pool.Available())
	}
}

func TestPool_NegativeAmounts(t *testing.T) {
	pool := NewPool(-3)
	if pool.Available() != 0 {
		t.Errorf("Expected negative start to clamp to 0, got %d", pool.Available())
	}
	if pool.CanAfford(-1) {
		t.Error("Negative cost must not be affordable")
	}
	if err := pool.Pay(-1); err == nil {
		t.Error("Expected error paying negative cost")
	}
}

func TestPool_PayError(t *testing.T) {
	pool := NewPool(1)
	if err := pool.Pay(2); err == nil {
		t.Error("Expected insufficient mana error")
	}
	if err := pool.Pay(1); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestPool_RefillAndEmpty(t *testing.T) {
	pool := NewPool(2)
	pool.Spend(2)

	pool.Refill(4)
	if pool.Available() != 4 || pool.Spent() != 0 {
		t.Errorf("Expected refill to 4/0, got %d/%d", pool.Available(), pool.Spent())
	}

	pool.Empty()
	if pool.Available() != 0 {
		t.Error("Expected pool to be empty")
	}
}

func TestPool_Nil(t *testing.T) {
	var pool *Pool
	if pool.CanAfford(0) {
		t.Error("Nil pool must not afford anything")
	}
	if pool.Available() != 0 {
		t.Error("Nil pool has no mana")
	}
}
