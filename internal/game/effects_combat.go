package game

// strikeHandler schedules a delayed elimination: after the countdown the
// designated enemy unit is destroyed outright, unless it became illegal
// first (sunk by other means), in which case the event silently lapses.
type strikeHandler struct{}

func (strikeHandler) Apply(r *Room, actor *Player, p EffectParams) (*EffectResult, error) {
	opp := r.Opponent(actor.ID)
	if opp == nil {
		return nil, ErrNotInRoom
	}
	target := opp.UnitByID(p.TargetID)
	if target == nil || target.Sunk {
		return nil, ErrInvalidTarget
	}
	r.Pending = append(r.Pending, PendingEvent{
		Kind:         "sabotage",
		ActorID:      actor.ID,
		TargetUnitID: target.ID,
		TurnsLeft:    p.Item.Duration,
	})
	return &EffectResult{Outcome: OutcomeHit, Units: []string{target.ID}, Note: "sabotage planted"}, nil
}

// areaDamageHandler is the small-radius burst. The item definition decides
// whether it spares the actor's own units.
type areaDamageHandler struct{}

func (areaDamageHandler) Apply(r *Room, actor *Player, p EffectParams) (*EffectResult, error) {
	epicenter := Cell{X: p.X, Y: p.Y}
	if !r.Terrain.InBounds(epicenter.X, epicenter.Y) {
		return nil, ErrOutOfBounds
	}
	return r.areaDamage(actor.ID, epicenter, p.Item.Radius, p.Item.Damage, p.Item.FriendlyFire, true, nil), nil
}

// nukeHandler is the charge-gated large burst. It needs an unsunk owned
// charge structure at zero, resets the charge on use, and hits both sides.
type nukeHandler struct{}

func (nukeHandler) Apply(r *Room, actor *Player, p EffectParams) (*EffectResult, error) {
	epicenter := Cell{X: p.X, Y: p.Y}
	if !r.Terrain.InBounds(epicenter.X, epicenter.Y) {
		return nil, ErrOutOfBounds
	}
	var battery *Unit
	for _, u := range actor.Fleet {
		if !u.Sunk && u.Def.Charge > 0 {
			battery = u
			break
		}
	}
	if battery == nil {
		return nil, ErrInvalidTarget
	}
	if battery.ChargeTurns > 0 {
		return nil, ErrNotCharged
	}
	battery.ChargeTurns = battery.Def.Charge
	result := r.areaDamage(actor.ID, epicenter, p.Item.Radius, p.Item.Damage, true, true, nil)
	result.Note = "nuke"
	return result, nil
}

// selfDestructHandler scuttles a critically damaged unit, blasting nearby
// enemies. Usable only at or below the critical HP ratio.
type selfDestructHandler struct{}

func (selfDestructHandler) Apply(r *Room, actor *Player, p EffectParams) (*EffectResult, error) {
	u, err := ownedActiveUnit(actor, p.UnitID)
	if err != nil {
		return nil, err
	}
	if u.ratio() > r.Defs.Tun.CriticalThreshold {
		return nil, ErrNotCritical
	}
	u.Destroy()
	result := r.areaDamage(actor.ID, u.Anchor, p.Item.Radius, p.Item.Damage, false, true, u)
	result.Outcome = OutcomeSunk
	result.Units = append([]string{u.ID}, result.Units...)
	result.Note = "scuttled"
	return result, nil
}
