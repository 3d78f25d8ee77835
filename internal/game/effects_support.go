package game

import "Broadside/internal/defs"

// repairHandler restores a fraction of max HP to one owned, unsunk unit.
// Healing past the critical threshold clears immobilization.
type repairHandler struct{}

func (repairHandler) Apply(r *Room, actor *Player, p EffectParams) (*EffectResult, error) {
	u, err := ownedActiveUnit(actor, p.UnitID)
	if err != nil {
		return nil, err
	}
	if u.HP == u.MaxHP {
		return nil, ErrNothingToRepair
	}
	amount := int(float64(u.MaxHP) * p.Item.Fraction)
	if amount < 1 {
		amount = 1
	}
	u.Heal(amount, r.Defs.Tun.CriticalThreshold)
	return &EffectResult{Outcome: OutcomeHit, Units: []string{u.ID}, Note: "repaired"}, nil
}

// lineScanHandler reveals every enemy unit intersecting a chosen row or
// column. A defender holding chaff consumes it and blocks the reveal.
// Jammed units stay hidden from passive scans.
type lineScanHandler struct{}

func (lineScanHandler) Apply(r *Room, actor *Player, p EffectParams) (*EffectResult, error) {
	if p.Axis != "row" && p.Axis != "col" {
		return nil, ErrInvalidTarget
	}
	limit := r.Terrain.H
	if p.Axis == "col" {
		limit = r.Terrain.W
	}
	if p.Index < 0 || p.Index >= limit {
		return nil, ErrOutOfBounds
	}
	opp := r.Opponent(actor.ID)
	if opp == nil {
		return nil, ErrNotInRoom
	}

	if chaffID := r.findPassiveCounter(opp, defs.EffectScanJam); chaffID != "" {
		opp.RemoveItem(chaffID)
		return &EffectResult{Outcome: OutcomeCountered, Note: "chaff"}, nil
	}

	result := &EffectResult{Outcome: OutcomeMiss, Note: "scan"}
	for _, u := range opp.Fleet {
		if u.Sunk || u.JamTurns > 0 {
			continue
		}
		for _, uc := range u.Cells {
			onLine := (p.Axis == "row" && uc.Cell.Y == p.Index) || (p.Axis == "col" && uc.Cell.X == p.Index)
			if onLine {
				u.RevealedTurns = r.Defs.Tun.RevealTurns
				result.Outcome = OutcomeHit
				result.Units = append(result.Units, u.ID)
				result.Cells = append(result.Cells, uc.Cell)
				break
			}
		}
	}
	return result, nil
}

// relocateHandler teleports one owned mobile unit within a bounded Manhattan
// distance. The jump forcibly reveals the unit for a few turns as the cost
// of use.
type relocateHandler struct{}

func (relocateHandler) Apply(r *Room, actor *Player, p EffectParams) (*EffectResult, error) {
	u, err := ownedActiveUnit(actor, p.UnitID)
	if err != nil {
		return nil, err
	}
	if !u.Def.Mobile() {
		return nil, ErrStructureImmobile
	}
	if u.Immobile {
		return nil, ErrImmobilized
	}
	dest := Cell{X: p.X, Y: p.Y}
	if Manhattan(u.Anchor, dest) > p.Item.Range {
		return nil, ErrOutOfRange
	}
	if err := r.validatePlacement(actor, u, dest, p.Vertical); err != nil {
		return nil, err
	}
	u.Relocate(dest, p.Vertical)
	u.RevealedTurns = r.Defs.Tun.RevealTurns
	return &EffectResult{Outcome: OutcomeHit, Units: []string{u.ID}, Cells: []Cell{dest}, Note: "relocated"}, nil
}

// decoyHandler spawns a low-durability decoy unit under the actor's
// ownership at a legal position.
type decoyHandler struct{}

func (decoyHandler) Apply(r *Room, actor *Player, p EffectParams) (*EffectResult, error) {
	def, ok := r.Defs.Unit(r.Defs.Tun.DecoyCode)
	if !ok {
		return nil, ErrUnknownUnitCode
	}
	anchor := Cell{X: p.X, Y: p.Y}
	probe := newUnit(actor.ID, def, anchor, p.Vertical, def.MaxHP)
	if err := r.validatePlacement(actor, probe, anchor, p.Vertical); err != nil {
		return nil, err
	}
	actor.Fleet = append(actor.Fleet, probe)
	return &EffectResult{Outcome: OutcomeHit, Units: []string{probe.ID}, Cells: []Cell{anchor}, Note: "decoy"}, nil
}

// hijackHandler transfers ownership of an enemy structure to the actor. The
// boarding platform must be an unsunk owned unit in range, the target must
// not sit inside an active guard zone, and the platform is forcibly revealed
// by the attempt.
type hijackHandler struct{}

func (hijackHandler) Apply(r *Room, actor *Player, p EffectParams) (*EffectResult, error) {
	platform, err := ownedActiveUnit(actor, p.UnitID)
	if err != nil {
		return nil, err
	}
	opp := r.Opponent(actor.ID)
	if opp == nil {
		return nil, ErrNotInRoom
	}
	target := opp.UnitByID(p.TargetID)
	if target == nil || target.Sunk {
		return nil, ErrInvalidTarget
	}
	if target.Def.Type != defs.TypeStructure {
		return nil, ErrNotAStructure
	}
	if Chebyshev(platform.Anchor, target.Anchor) > p.Item.Range {
		return nil, ErrOutOfRange
	}
	if opp.Guard.Active && unitWithin(target, opp.Guard.Center, opp.Guard.Radius) {
		return nil, ErrGuarded
	}

	// Atomic ownership transfer, room-mediated: the unit reference moves
	// between fleets in one operation.
	for i, u := range opp.Fleet {
		if u == target {
			opp.Fleet = append(opp.Fleet[:i], opp.Fleet[i+1:]...)
			break
		}
	}
	target.OwnerID = actor.ID
	actor.Fleet = append(actor.Fleet, target)
	platform.RevealedTurns = r.Defs.Tun.RevealTurns
	return &EffectResult{Outcome: OutcomeHit, Units: []string{target.ID, platform.ID}, Note: "hijacked"}, nil
}

// guardZoneHandler installs the positional anti-hijack shield.
type guardZoneHandler struct{}

func (guardZoneHandler) Apply(r *Room, actor *Player, p EffectParams) (*EffectResult, error) {
	center := Cell{X: p.X, Y: p.Y}
	if !r.Terrain.InBounds(center.X, center.Y) {
		return nil, ErrOutOfBounds
	}
	actor.Guard = GuardZone{
		Active: true,
		Center: center,
		Radius: p.Item.Radius,
		Turns:  p.Item.Duration,
	}
	return &EffectResult{Outcome: OutcomeHit, Cells: []Cell{center}, Note: "guard zone"}, nil
}

// radarHandler sweeps a radius around an owned detector unit, revealing
// enemy units inside it. The active sweep burns through jamming: swept units
// lose their stealth along with their cover.
type radarHandler struct{}

func (radarHandler) Apply(r *Room, actor *Player, p EffectParams) (*EffectResult, error) {
	emitter, err := ownedActiveUnit(actor, p.UnitID)
	if err != nil {
		return nil, err
	}
	if !emitter.Def.Detector {
		return nil, ErrInvalidTarget
	}
	if emitter.JamTurns > 0 {
		return nil, ErrJammed
	}
	opp := r.Opponent(actor.ID)
	if opp == nil {
		return nil, ErrNotInRoom
	}
	result := &EffectResult{Outcome: OutcomeMiss, Note: "radar"}
	for _, u := range opp.Fleet {
		if u.Sunk || !unitWithin(u, emitter.Anchor, p.Item.Radius) {
			continue
		}
		u.JamTurns = 0
		u.RevealedTurns = r.Defs.Tun.RevealTurns
		result.Outcome = OutcomeHit
		result.Units = append(result.Units, u.ID)
	}
	return result, nil
}

// jammerHandler stealths the acting unit and disrupts enemy detector units
// within the radius for the same duration.
type jammerHandler struct{}

func (jammerHandler) Apply(r *Room, actor *Player, p EffectParams) (*EffectResult, error) {
	u, err := ownedActiveUnit(actor, p.UnitID)
	if err != nil {
		return nil, err
	}
	u.JamTurns = p.Item.Duration
	u.RevealedTurns = 0
	result := &EffectResult{Outcome: OutcomeHit, Units: []string{u.ID}, Note: "jamming"}
	if opp := r.Opponent(actor.ID); opp != nil {
		for _, enemy := range opp.Fleet {
			if enemy.Sunk || !enemy.Def.Detector {
				continue
			}
			if unitWithin(enemy, u.Anchor, p.Item.Radius) {
				enemy.JamTurns = p.Item.Duration
				result.Units = append(result.Units, enemy.ID)
			}
		}
	}
	return result, nil
}
