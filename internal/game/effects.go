package game

import "Broadside/internal/defs"

// EffectParams carries the caller-supplied targeting for an item or skill.
// Which fields matter depends on the effect kind; handlers validate what
// they need and ignore the rest.
type EffectParams struct {
	UnitID   string `json:"unitId,omitempty"`   // acting/owned unit
	TargetID string `json:"targetId,omitempty"` // enemy unit
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Vertical bool   `json:"vertical,omitempty"`
	Axis     string `json:"axis,omitempty"` // "row" or "col" for line scans
	Index    int    `json:"index"`

	Item defs.ItemDef `json:"-"` // filled by the room before dispatch
}

// EffectResult describes what an effect did, for logging and the visual
// side-channel. It never carries authoritative state.
type EffectResult struct {
	Outcome Outcome  `json:"outcome"`
	Units   []string `json:"units,omitempty"` // affected unit ids
	Cells   []Cell   `json:"cells,omitempty"` // revealed or impacted cells
	Note    string   `json:"note,omitempty"`
}

// Handler resolves one effect kind. A handler either fully validates and
// mutates, or returns an error having touched nothing.
type Handler interface {
	Apply(r *Room, actor *Player, p EffectParams) (*EffectResult, error)
}

type Registry map[defs.EffectKind]Handler

// NewRegistry wires every built-in effect family. Dispatch is keyed by the
// definition's effect tag, so new items reuse handlers without code changes
// here.
func NewRegistry() Registry {
	return Registry{
		defs.EffectRepair:       repairHandler{},
		defs.EffectLineScan:     lineScanHandler{},
		defs.EffectRelocate:     relocateHandler{},
		defs.EffectDecoy:        decoyHandler{},
		defs.EffectHijack:       hijackHandler{},
		defs.EffectGuardZone:    guardZoneHandler{},
		defs.EffectRadar:        radarHandler{},
		defs.EffectStrike:       strikeHandler{},
		defs.EffectBarrage:      areaDamageHandler{},
		defs.EffectNuke:         nukeHandler{},
		defs.EffectSelfDestruct: selfDestructHandler{},
		defs.EffectJammer:       jammerHandler{},
	}
}

// strongerOutcome keeps the most severe classification for multi-unit
// effects.
func strongerOutcome(a, b Outcome) Outcome {
	rank := map[Outcome]int{
		OutcomeMiss:        0,
		OutcomeCountered:   0,
		OutcomeAlreadySunk: 0,
		OutcomeHit:         1,
		OutcomeCritical:    2,
		OutcomeSunk:        3,
	}
	if rank[b] > rank[a] {
		return b
	}
	return a
}

// areaDamage applies dmg to every unsunk unit within radius (Chebyshev) of
// the epicenter, on the sides selected. exclude skips the detonating unit.
func (r *Room) areaDamage(actorID string, epicenter Cell, radius, dmg int, hitOwn, hitEnemy bool, exclude *Unit) *EffectResult {
	result := &EffectResult{Outcome: OutcomeMiss}
	for _, p := range r.Players {
		own := p.ID == actorID
		if own && !hitOwn {
			continue
		}
		if !own && !hitEnemy {
			continue
		}
		for _, u := range p.Fleet {
			if u == exclude || u.Sunk {
				continue
			}
			if !unitWithin(u, epicenter, radius) {
				continue
			}
			out := u.ApplyDamage(dmg, nil, r.Defs.Tun.CriticalThreshold)
			result.Outcome = strongerOutcome(result.Outcome, out)
			result.Units = append(result.Units, u.ID)
		}
	}
	result.Cells = append(result.Cells, epicenter)
	return result
}

// unitWithin reports whether any cell of the unit lies within radius of the
// epicenter.
func unitWithin(u *Unit, epicenter Cell, radius int) bool {
	for _, uc := range u.Cells {
		if Chebyshev(uc.Cell, epicenter) <= radius {
			return true
		}
	}
	return false
}

// ownedActiveUnit resolves params.UnitID to an unsunk unit of the actor.
func ownedActiveUnit(actor *Player, unitID string) (*Unit, error) {
	u := actor.UnitByID(unitID)
	if u == nil || u.Sunk {
		return nil, ErrInvalidTarget
	}
	return u, nil
}
