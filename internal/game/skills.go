package game

import (
	"time"

	"Broadside/internal/defs"
)

// ActivateSkill fires the player's one-shot commander skill. Unlike items, a
// skill never consumes the turn; the one-shot flag is set on every branch
// that gets past the gate checks, including logical no-ops.
func (r *Room) ActivateSkill(playerID string) (*EffectResult, error) {
	if r.Phase != PhaseBattle {
		return nil, ErrNotInBattle
	}
	if r.CurrentTurnID() != playerID {
		return nil, ErrNotYourTurn
	}
	p := r.Players[playerID]
	if p == nil {
		return nil, ErrNotInRoom
	}
	if p.CommanderID == "" {
		return nil, ErrNoCommander
	}
	if p.CommanderUsed {
		return nil, ErrSkillUsed
	}
	cdr, ok := r.Defs.Commander(p.CommanderID)
	if !ok {
		return nil, ErrUnknownCommander
	}

	// Used even if the branch below turns out to be a no-op.
	p.CommanderUsed = true

	var result *EffectResult
	var err error
	switch cdr.Skill {
	case defs.SkillVision:
		result = r.applyVisionSkill(p, cdr)
	case defs.SkillReveal:
		p.FullReveal = true
		r.scheduleRevealExpiry(p, time.Duration(r.Defs.Tun.RevealSeconds*float64(time.Second)))
		result = &EffectResult{Outcome: OutcomeHit, Note: "full reveal"}
	case defs.SkillRepair:
		result, err = r.applyRepairSkill(p)
	default:
		return nil, ErrUnknownCommander
	}
	if err != nil {
		r.bump()
		return nil, err
	}

	r.appendLog(LogEntry{Actor: playerID, Outcome: result.Outcome, Note: string(cdr.Skill)})
	r.broadcast("effect_trigger", map[string]any{"effect": string(cdr.Skill), "actor": playerID})
	r.bump()
	return result, nil
}

// applyVisionSkill is a timed sensor boost: it reveals enemy units within an
// extended vision radius of the player's unsunk units and keeps re-sweeping
// at each of the player's turn starts while VisionTurns runs, so enemies that
// move into range later are caught too.
func (r *Room) applyVisionSkill(p *Player, cdr defs.CommanderDef) *EffectResult {
	p.VisionTurns = cdr.Duration
	result := &EffectResult{Outcome: OutcomeMiss, Note: "vision boost"}
	if seen := r.revealWithinVision(p, cdr.Duration); len(seen) > 0 {
		result.Outcome = OutcomeHit
		result.Units = seen
	}
	return result
}

// revealWithinVision marks unsunk, unjammed enemy units inside the extended
// vision radius of p's unsunk units as revealed for at least turns. It only
// ever raises a countdown, never shortens one already running. Returns the
// ids of units newly or re-marked.
func (r *Room) revealWithinVision(p *Player, turns int) []string {
	opp := r.Opponent(p.ID)
	if opp == nil {
		return nil
	}
	var seen []string
	for _, enemy := range opp.Fleet {
		if enemy.Sunk || enemy.JamTurns > 0 {
			continue
		}
		for _, own := range p.Fleet {
			if own.Sunk {
				continue
			}
			if unitWithin(enemy, own.Anchor, own.Def.Vision+1) {
				if enemy.RevealedTurns < turns {
					enemy.RevealedTurns = turns
				}
				seen = append(seen, enemy.ID)
				break
			}
		}
	}
	return seen
}

// applyRepairSkill fully heals the player's most-damaged undestroyed unit.
// With nothing damaged the skill fails, but it is still spent.
func (r *Room) applyRepairSkill(p *Player) (*EffectResult, error) {
	var worst *Unit
	for _, u := range p.Fleet {
		if u.Sunk || u.HP == u.MaxHP {
			continue
		}
		if worst == nil || u.MaxHP-u.HP > worst.MaxHP-worst.HP {
			worst = u
		}
	}
	if worst == nil {
		return nil, ErrNothingToRepair
	}
	worst.Heal(worst.MaxHP, r.Defs.Tun.CriticalThreshold)
	return &EffectResult{Outcome: OutcomeHit, Units: []string{worst.ID}, Note: "field repair"}, nil
}
