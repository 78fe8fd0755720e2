package game

// Combat rules shared by the reference engine and the AI evaluators.

// DamageTaken returns the damage a unit actually suffers from an incoming
// amount. Tough halves damage, rounding up.
func DamageTaken(u *Unit, amount int) int {
	if amount <= 0 {
		return 0
	}
	if u.Has(KeywordTough) {
		return (amount + 1) / 2
	}
	return amount
}

// DamageToKill returns the raw damage required to kill the unit.
func DamageToKill(u *Unit) int {
	if !u.Alive() {
		return 0
	}
	if u.Has(KeywordTough) {
		return 2*u.Health - 1
	}
	return u.Health
}

// SplashDamage returns the damage an Overwhelm attacker deals to every other
// unit on its target's side.
func SplashDamage(attacker *Unit) int {
	if !attacker.Has(KeywordOverwhelm) || attacker.Attack <= 0 {
		return 0
	}
	if attacker.Attack/2 < 1 {
		return 1
	}
	return attacker.Attack / 2
}

// WouldKill reports whether attacker kills defender with a single strike.
func WouldKill(attacker, defender *Unit) bool {
	if !attacker.Alive() || !defender.Alive() {
		return false
	}
	return DamageTaken(defender, attacker.Attack) >= defender.Health
}

// CounterDamage returns the damage the defender deals back to the attacker.
func CounterDamage(attacker, defender *Unit) int {
	if attacker.Has(KeywordRanged) || !defender.Alive() {
		return 0
	}
	return DamageTaken(attacker, defender.Attack)
}

// DiesToCounter reports whether the attacker dies to the defender's counter.
func DiesToCounter(attacker, defender *Unit) bool {
	return attacker.Alive() && CounterDamage(attacker, defender) >= attacker.Health
}

// HasTaunt reports whether any living unit in the list has Taunt.
func HasTaunt(units []Unit) bool {
	for i := range units {
		if units[i].Alive() && units[i].Has(KeywordTaunt) {
			return true
		}
	}
	return false
}

// TauntUnits returns the living Taunt units of a list.
func TauntUnits(units []Unit) []Unit {
	out := make([]Unit, 0)
	for i := range units {
		if units[i].Alive() && units[i].Has(KeywordTaunt) {
			out = append(out, units[i])
		}
	}
	return out
}

// AliveUnits filters out dead, unplaced and zero-health units.
func AliveUnits(units []Unit) []Unit {
	out := make([]Unit, 0, len(units))
	for i := range units {
		if units[i].Alive() {
			out = append(out, units[i])
		}
	}
	return out
}

// AvailableDamage sums damage living units can still deal this turn.
func AvailableDamage(units []Unit) int {
	total := 0
	for i := range units {
		if units[i].CanAttack() {
			total += units[i].Attack * units[i].RemainingAttacks
		}
	}
	return total
}

// ProjectedDamage sums one attack from every living unit, the damage a side
// threatens on its next turn.
func ProjectedDamage(units []Unit) int {
	total := 0
	for i := range units {
		if units[i].Alive() {
			total += units[i].Attack
		}
	}
	return total
}

// TauntClearance is the damage needed to remove every Taunt unit.
func TauntClearance(units []Unit) int {
	total := 0
	for i := range units {
		if units[i].Alive() && units[i].Has(KeywordTaunt) {
			total += DamageToKill(&units[i])
		}
	}
	return total
}

// IsLethal reports whether damage, after clearing the defenders' Taunt units,
// reaches the defending life total.
func IsLethal(damage int, defenders []Unit, lifeTotal int) bool {
	if damage <= 0 {
		return false
	}
	return damage-TauntClearance(defenders) >= lifeTotal
}

// BurnTicks is the number of times a burn effect deals its damage.
func BurnTicks(card Card) int {
	if card.Duration < 1 {
		return 1
	}
	return card.Duration
}

// DrawCount is the number of cards a draw effect draws.
func DrawCount(card Card) int {
	if card.EffectValue < 1 {
		return 1
	}
	return card.EffectValue
}

// BloodpriceDamage is the damage a bloodprice effect deals to the opposing
// life total; the caster pays BloodpriceCost life.
func BloodpriceDamage(card Card) int {
	return card.EffectValue * 2
}

// BloodpriceCost is the life a bloodprice effect costs its caster.
func BloodpriceCost(card Card) int {
	return card.EffectValue
}
