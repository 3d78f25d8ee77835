package game

import "Broadside/internal/defs"

// Outcome classifies the result of applying damage to a unit, in the order a
// resolver reports it: a sunk unit stays sunk, a sinking blow wins over a
// crippling one, a crippling blow over a plain hit.
type Outcome string

const (
	OutcomeMiss        Outcome = "MISS"
	OutcomeHit         Outcome = "HIT"
	OutcomeCritical    Outcome = "CRITICAL"
	OutcomeSunk        Outcome = "SUNK"
	OutcomeAlreadySunk Outcome = "ALREADY_SUNK"
	OutcomeCountered   Outcome = "COUNTERED"
)

type UnitCell struct {
	Cell Cell
	Hit  bool
}

// Unit is one placed ship or structure. It occupies exactly Def.Size
// contiguous cells along its orientation axis and is never removed from its
// owner's fleet: a sunk unit keeps its cells so the opponent can confirm the
// kill and win checks can enumerate the whole fleet.
type Unit struct {
	ID       string
	OwnerID  string
	Def      defs.UnitDef
	Anchor   Cell
	Vertical bool
	Cells    []UnitCell
	HP       int
	MaxHP    int
	Sunk     bool
	Immobile bool

	// Countdown state, all in turns of the owning player.
	ChargeTurns   int // charge-gated weapons fire only at zero
	RevealedTurns int // forced visibility to the opponent
	JamTurns      int // self-stealth, or a disrupted detector
}

func newUnit(owner string, def defs.UnitDef, anchor Cell, vertical bool, maxHP int) *Unit {
	u := &Unit{
		ID:          RandId("u"),
		OwnerID:     owner,
		Def:         def,
		Anchor:      anchor,
		Vertical:    vertical,
		HP:          maxHP,
		MaxHP:       maxHP,
		ChargeTurns: def.Charge,
	}
	for _, c := range footprint(anchor, def.Size, vertical) {
		u.Cells = append(u.Cells, UnitCell{Cell: c})
	}
	return u
}

func (u *Unit) OccupiesCell(c Cell) bool {
	for _, uc := range u.Cells {
		if uc.Cell == c {
			return true
		}
	}
	return false
}

func (u *Unit) ratio() float64 {
	if u.MaxHP == 0 {
		return 0
	}
	return float64(u.HP) / float64(u.MaxHP)
}

// ApplyDamage subtracts amount from HP (floored at zero), marks the impacted
// cell when one is given, and classifies the result. A unit whose HP ratio
// falls below threshold is immobilized until healed back over it; a unit at
// zero HP sinks permanently.
func (u *Unit) ApplyDamage(amount int, at *Cell, threshold float64) Outcome {
	if u.Sunk {
		return OutcomeAlreadySunk
	}
	u.HP -= amount
	if u.HP < 0 {
		u.HP = 0
	}
	if at != nil {
		for i := range u.Cells {
			if u.Cells[i].Cell == *at {
				u.Cells[i].Hit = true
			}
		}
	}
	if u.HP == 0 {
		u.Sunk = true
		u.Immobile = true
		return OutcomeSunk
	}
	if u.ratio() < threshold {
		u.Immobile = true
		return OutcomeCritical
	}
	return OutcomeHit
}

// Heal restores HP (clamped to max) and clears immobilization once the ratio
// is back at or above threshold. Sunk units cannot be healed.
func (u *Unit) Heal(amount int, threshold float64) {
	if u.Sunk {
		return
	}
	u.HP += amount
	if u.HP > u.MaxHP {
		u.HP = u.MaxHP
	}
	if u.ratio() >= threshold {
		u.Immobile = false
	}
}

// Destroy sinks the unit outright regardless of remaining HP.
func (u *Unit) Destroy() Outcome {
	if u.Sunk {
		return OutcomeAlreadySunk
	}
	u.HP = 0
	u.Sunk = true
	u.Immobile = true
	return OutcomeSunk
}

// Relocate moves the unit to a new anchor and orientation, rebuilding its
// cell list. Hit markers do not survive relocation; HP does.
func (u *Unit) Relocate(anchor Cell, vertical bool) {
	u.Anchor = anchor
	u.Vertical = vertical
	u.Cells = u.Cells[:0]
	for _, c := range footprint(anchor, u.Def.Size, vertical) {
		u.Cells = append(u.Cells, UnitCell{Cell: c})
	}
}

func (u *Unit) tickCountdowns() {
	if u.ChargeTurns > 0 {
		u.ChargeTurns--
	}
	if u.RevealedTurns > 0 {
		u.RevealedTurns--
	}
	if u.JamTurns > 0 {
		u.JamTurns--
	}
}
