package game

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"Broadside/internal/defs"
)

type Phase string

const (
	PhaseLobby  Phase = "LOBBY"
	PhaseSetup  Phase = "SETUP"
	PhaseBattle Phase = "BATTLE"
	PhaseEnded  Phase = "ENDED"
)

const MaxPlayers = 2

// LogEntry is one append-only combat log record. Covert entries carry
// placement coordinates the opponent must never see; the projector filters
// them out of the other side's view.
type LogEntry struct {
	Turn    int     `json:"turn"`
	Actor   string  `json:"actor"`
	X       int     `json:"x"`
	Y       int     `json:"y"`
	Outcome Outcome `json:"outcome"`
	Note    string  `json:"note,omitempty"`
	Covert  bool    `json:"-"`
}

// PendingEvent is a scheduled future effect, ticked once per turn inside
// NextTurn and executed when the countdown reaches zero. Events whose target
// has become illegal are dropped silently; nobody is waiting on them.
type PendingEvent struct {
	Kind         string
	ActorID      string
	TargetUnitID string
	TurnsLeft    int
}

type ShipPlacement struct {
	Code     string `json:"code"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Vertical bool   `json:"vertical"`
}

type ShotResult struct {
	Outcome Outcome `json:"outcome"`
	UnitID  string  `json:"unitId,omitempty"`
	X       int     `json:"x"`
	Y       int     `json:"y"`
}

// Room is the authoritative session: the only mutator of cross-player state.
// Every command against a room runs with Mu held, so commands are serialized
// in arrival order and never interleave.
type Room struct {
	ID      string
	Mu      sync.Mutex
	Defs    *defs.Table
	Terrain *Terrain
	Players map[string]*Player

	Phase     Phase
	order     []string // turn order, fixed when battle starts
	turnIdx   int
	TurnCount int

	Log     []LogEntry
	Pending []PendingEvent

	Winner    string
	WinReason string

	// StateVersion bumps on every observable mutation; the transport send
	// loop only re-broadcasts when it changes.
	StateVersion uint64

	effects Registry
	logger  zerolog.Logger
}

func newRoom(id string, table *defs.Table, seed int64, logger zerolog.Logger) *Room {
	tun := table.Tun
	return &Room{
		ID:      id,
		Defs:    table,
		Terrain: GenerateTerrain(tun.BoardW, tun.BoardH, tun.ReefCount, seed),
		Players: map[string]*Player{},
		Phase:   PhaseLobby,
		effects: NewRegistry(),
		logger:  logger.With().Str("room", id).Logger(),
	}
}

func (r *Room) bump() { r.StateVersion++ }

// CurrentTurnID returns the id of the turn holder, or "" outside battle.
func (r *Room) CurrentTurnID() string {
	if r.Phase != PhaseBattle || len(r.order) == 0 {
		return ""
	}
	return r.order[r.turnIdx]
}

// Opponent returns the other participant, or nil before both slots fill.
func (r *Room) Opponent(playerID string) *Player {
	for id, p := range r.Players {
		if id != playerID {
			return p
		}
	}
	return nil
}

func (r *Room) appendLog(e LogEntry) {
	e.Turn = r.TurnCount
	r.Log = append(r.Log, e)
}

func (r *Room) broadcast(msgType string, payload any) {
	for _, p := range r.Players {
		p.SendMessage(msgType, payload)
	}
}

// AddPlayer joins a participant. The second join moves the room into SETUP;
// commander selection, shopping, and deployment all remain open until battle.
func (r *Room) AddPlayer(name string) (*Player, error) {
	if r.Phase != PhaseLobby && r.Phase != PhaseSetup {
		return nil, ErrWrongPhase
	}
	if len(r.Players) >= MaxPlayers {
		return nil, ErrRoomFull
	}
	p := NewPlayer(RandId("p"), name, r.Defs.Tun.StartPoints)
	r.Players[p.ID] = p
	if len(r.Players) == MaxPlayers {
		r.Phase = PhaseSetup
	}
	r.logger.Info().Str("player", p.ID).Str("name", name).Msg("player joined")
	r.bump()
	return p, nil
}

func (r *Room) SelectCommander(playerID, commanderID string) error {
	p := r.Players[playerID]
	if p == nil {
		return ErrNotInRoom
	}
	if r.Phase != PhaseLobby && r.Phase != PhaseSetup {
		return ErrCommanderLocked
	}
	if _, ok := r.Defs.Commander(commanderID); !ok {
		return ErrUnknownCommander
	}
	p.CommanderID = commanderID
	r.bump()
	return nil
}

func (r *Room) BuyItem(playerID, itemID string) error {
	p := r.Players[playerID]
	if p == nil {
		return ErrNotInRoom
	}
	if r.Phase != PhaseLobby && r.Phase != PhaseSetup {
		return ErrWrongPhase
	}
	item, ok := r.Defs.Item(itemID)
	if !ok {
		return ErrUnknownItem
	}
	if p.Points < item.Cost {
		return ErrInsufficientPoints
	}
	if len(p.Inventory) >= r.Defs.Tun.InventoryCap {
		return ErrInventoryFull
	}
	p.Points -= item.Cost
	p.Inventory = append(p.Inventory, itemID)
	r.bump()
	return nil
}

// DeployFleet validates the whole requested fleet and replaces the player's
// existing fleet atomically: any invalid ship rejects the entire request and
// leaves prior state untouched. Opposing fleets may overlap in board space;
// fog of war hides that from both sides.
func (r *Room) DeployFleet(playerID string, ships []ShipPlacement) error {
	p := r.Players[playerID]
	if p == nil {
		return ErrNotInRoom
	}
	if r.Phase != PhaseLobby && r.Phase != PhaseSetup {
		return ErrWrongPhase
	}
	if len(ships) == 0 {
		return ErrUnknownUnitCode
	}

	bonus := 0
	if cdr, ok := r.Defs.Commander(p.CommanderID); ok {
		bonus = cdr.HPBonusPct
	}

	claimed := make(map[Cell]bool)
	fleet := make([]*Unit, 0, len(ships))
	for _, s := range ships {
		def, ok := r.Defs.Unit(s.Code)
		if !ok {
			return ErrUnknownUnitCode
		}
		anchor := Cell{X: s.X, Y: s.Y}
		for _, c := range footprint(anchor, def.Size, s.Vertical) {
			if !r.Terrain.InBounds(c.X, c.Y) {
				return ErrOutOfBounds
			}
			if r.Terrain.Blocked(c.X, c.Y) {
				return ErrBlockedTerrain
			}
			if claimed[c] {
				return ErrOverlap
			}
			claimed[c] = true
		}
		maxHP := def.MaxHP + def.MaxHP*bonus/100
		fleet = append(fleet, newUnit(playerID, def, anchor, s.Vertical, maxHP))
	}

	p.Fleet = fleet
	p.Ready = true
	r.bump()
	r.maybeStartBattle()
	return nil
}

// maybeStartBattle fires SETUP -> BATTLE exactly once, when both slots are
// filled and both fleets are down. Turn order is fixed at this instant.
func (r *Room) maybeStartBattle() {
	if r.Phase == PhaseBattle || r.Phase == PhaseEnded {
		return
	}
	if len(r.Players) < MaxPlayers {
		return
	}
	for _, p := range r.Players {
		if !p.Ready {
			return
		}
	}
	r.order = r.order[:0]
	for id := range r.Players {
		r.order = append(r.order, id)
	}
	// Map iteration order is random; that randomness picks who goes first.
	r.turnIdx = 0
	r.TurnCount = 1
	r.Phase = PhaseBattle
	r.logger.Info().Str("first", r.order[0]).Msg("battle started")
	r.broadcast("game_started", map[string]any{"first": r.order[0]})
	r.bump()
}

// FireShot resolves a direct shot at (x, y). A defender holding a flare
// consumes it to nullify the shot; the turn still advances. At most one unit
// is ever hit per shot.
func (r *Room) FireShot(attackerID string, x, y int, preferredUnitID string) (*ShotResult, error) {
	if r.Phase != PhaseBattle {
		return nil, ErrNotInBattle
	}
	if r.CurrentTurnID() != attackerID {
		return nil, ErrNotYourTurn
	}
	attacker := r.Players[attackerID]
	defender := r.Opponent(attackerID)
	if attacker == nil || defender == nil {
		return nil, ErrNotInRoom
	}
	if !r.Terrain.InBounds(x, y) {
		return nil, ErrOutOfBounds
	}

	if flareID := r.findPassiveCounter(defender, defs.EffectFlare); flareID != "" {
		defender.RemoveItem(flareID)
		r.appendLog(LogEntry{Actor: attackerID, X: x, Y: y, Outcome: OutcomeCountered, Note: "flare"})
		r.broadcast("effect_trigger", map[string]any{"effect": "flare", "x": x, "y": y})
		r.bump()
		r.NextTurn()
		return &ShotResult{Outcome: OutcomeCountered, X: x, Y: y}, nil
	}

	cell := Cell{X: x, Y: y}
	target := r.resolveTargetAt(defender, cell, preferredUnitID)

	result := &ShotResult{Outcome: OutcomeMiss, X: x, Y: y}
	if target != nil {
		result.Outcome = target.ApplyDamage(r.Defs.Tun.ShotDamage, &cell, r.Defs.Tun.CriticalThreshold)
		result.UnitID = target.ID
		r.rewardAttacker(attacker, result.Outcome)
	}
	r.appendLog(LogEntry{Actor: attackerID, X: x, Y: y, Outcome: result.Outcome})
	r.bump()

	if r.checkWin(attackerID) {
		return result, nil
	}
	r.NextTurn()
	return result, nil
}

// resolveTargetAt finds the unsunk defender unit at the cell. The preferred
// unit id is honored only when that unit actually occupies the cell.
func (r *Room) resolveTargetAt(defender *Player, cell Cell, preferredUnitID string) *Unit {
	if preferredUnitID != "" {
		if u := defender.UnitByID(preferredUnitID); u != nil && !u.Sunk && u.OccupiesCell(cell) {
			return u
		}
	}
	return defender.UnitAt(cell)
}

func (r *Room) rewardAttacker(attacker *Player, outcome Outcome) {
	tun := r.Defs.Tun
	switch outcome {
	case OutcomeHit, OutcomeCritical:
		attacker.Points += tun.HitReward
	case OutcomeSunk:
		attacker.Points += tun.HitReward + tun.SinkBonus
	}
}

// findPassiveCounter returns the id of an inventory item with the given
// passive effect kind, or "".
func (r *Room) findPassiveCounter(p *Player, kind defs.EffectKind) string {
	for _, id := range p.Inventory {
		if item, ok := r.Defs.Item(id); ok && item.Effect == kind {
			return id
		}
	}
	return ""
}

// UseItem dispatches to the effect handler named by the item's definition.
// A handler failure aborts with no mutation and no turn cost; success
// consumes the item and always costs the turn.
func (r *Room) UseItem(playerID, itemID string, params EffectParams) (*EffectResult, error) {
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
	if !p.HasItem(itemID) {
		return nil, ErrItemNotOwned
	}
	item, ok := r.Defs.Item(itemID)
	if !ok {
		return nil, ErrUnknownItem
	}
	if item.Effect.Passive() {
		return nil, ErrPassiveItem
	}
	handler, ok := r.effects[item.Effect]
	if !ok {
		return nil, ErrUnknownItem
	}

	params.Item = item
	result, err := handler.Apply(r, p, params)
	if err != nil {
		return nil, err
	}

	p.RemoveItem(itemID)
	r.appendLog(LogEntry{Actor: playerID, X: params.X, Y: params.Y, Outcome: result.Outcome, Note: string(item.Effect), Covert: item.Effect.Covert()})
	trigger := map[string]any{"effect": string(item.Effect), "actor": playerID, "x": params.X, "y": params.Y}
	if item.Effect.Covert() {
		// Hidden placements must not announce their coordinates to the room.
		p.SendMessage("effect_trigger", trigger)
	} else {
		r.broadcast("effect_trigger", trigger)
	}
	r.bump()

	if r.checkWin(playerID) {
		return result, nil
	}
	r.NextTurn()
	return result, nil
}

// MoveUnit is plain self-navigation: Manhattan-bounded by the unit's move
// allowance, refused for immobilized units and structures, and it costs the
// turn. Unlike the jump drive it does not force a reveal.
func (r *Room) MoveUnit(playerID, unitID string, x, y int) error {
	if r.Phase != PhaseBattle {
		return ErrNotInBattle
	}
	if r.CurrentTurnID() != playerID {
		return ErrNotYourTurn
	}
	p := r.Players[playerID]
	if p == nil {
		return ErrNotInRoom
	}
	u := p.UnitByID(unitID)
	if u == nil || u.Sunk {
		return ErrInvalidTarget
	}
	if !u.Def.Mobile() {
		return ErrStructureImmobile
	}
	if u.Immobile {
		return ErrImmobilized
	}
	dest := Cell{X: x, Y: y}
	if Manhattan(u.Anchor, dest) > u.Def.Move {
		return ErrOutOfRange
	}
	if err := r.validatePlacement(p, u, dest, u.Vertical); err != nil {
		return err
	}
	u.Relocate(dest, u.Vertical)
	r.appendLog(LogEntry{Actor: playerID, X: x, Y: y, Outcome: OutcomeMiss, Note: "move"})
	r.bump()
	r.NextTurn()
	return nil
}

// validatePlacement checks that a unit footprint at the anchor stays on the
// board, off reefs, and clear of the player's own other units.
func (r *Room) validatePlacement(p *Player, moving *Unit, anchor Cell, vertical bool) error {
	for _, c := range footprint(anchor, moving.Def.Size, vertical) {
		if !r.Terrain.InBounds(c.X, c.Y) {
			return ErrOutOfBounds
		}
		if r.Terrain.Blocked(c.X, c.Y) {
			return ErrBlockedTerrain
		}
		for _, other := range p.Fleet {
			if other == moving {
				continue
			}
			if other.OccupiesCell(c) {
				return ErrOverlap
			}
		}
	}
	return nil
}

// NextTurn advances circularly over the two participants. Entering a turn
// decrements that player's countdown state and drains pending events by one
// tick, executing whichever reach zero.
func (r *Room) NextTurn() {
	if r.Phase != PhaseBattle || len(r.order) == 0 {
		return
	}
	r.turnIdx = (r.turnIdx + 1) % len(r.order)
	r.TurnCount++
	if entering := r.Players[r.order[r.turnIdx]]; entering != nil {
		entering.tickTurnStart()
		if entering.VisionTurns > 0 {
			// The sensor boost sweeps again each turn it is active, so an
			// enemy that sailed into range since activation is caught too.
			r.revealWithinVision(entering, entering.VisionTurns)
		}
	}
	r.tickPendingEvents()
	r.bump()
}

func (r *Room) tickPendingEvents() {
	remaining := r.Pending[:0]
	var due []PendingEvent
	for _, ev := range r.Pending {
		ev.TurnsLeft--
		if ev.TurnsLeft <= 0 {
			due = append(due, ev)
		} else {
			remaining = append(remaining, ev)
		}
	}
	r.Pending = remaining
	for _, ev := range due {
		r.executePendingEvent(ev)
		if r.Phase != PhaseBattle {
			return
		}
	}
}

func (r *Room) executePendingEvent(ev PendingEvent) {
	target := r.findUnit(ev.TargetUnitID)
	if target == nil || target.Sunk {
		// Target became illegal before the countdown expired; drop it.
		r.logger.Info().Str("kind", ev.Kind).Str("target", ev.TargetUnitID).Msg("pending event invalidated")
		r.appendLog(LogEntry{Actor: ev.ActorID, Outcome: OutcomeAlreadySunk, Note: ev.Kind + " invalidated"})
		return
	}
	target.Destroy()
	r.appendLog(LogEntry{Actor: ev.ActorID, X: target.Anchor.X, Y: target.Anchor.Y, Outcome: OutcomeSunk, Note: ev.Kind})
	r.broadcast("effect_trigger", map[string]any{"effect": ev.Kind, "unit": target.ID})
	r.bump()
	r.checkWin(ev.ActorID)
}

// findUnit looks a unit up across both fleets.
func (r *Room) findUnit(unitID string) *Unit {
	for _, p := range r.Players {
		if u := p.UnitByID(unitID); u != nil {
			return u
		}
	}
	return nil
}

// checkWin ends the battle if a resolving action left either fleet entirely
// sunk. The actor wins ties: if their own last unit went down in the same
// resolution, losing your whole fleet to your own action is still a loss.
func (r *Room) checkWin(actorID string) bool {
	if r.Phase != PhaseBattle {
		return r.Phase == PhaseEnded
	}
	actor := r.Players[actorID]
	opponent := r.Opponent(actorID)
	if actor != nil && actor.AllSunk() {
		r.endBattle(opponent.ID, "fleet destroyed")
		return true
	}
	if opponent != nil && opponent.AllSunk() {
		r.endBattle(actorID, "fleet destroyed")
		return true
	}
	return false
}

func (r *Room) endBattle(winnerID, reason string) {
	r.Phase = PhaseEnded
	r.Winner = winnerID
	r.WinReason = reason
	r.stopRevealTimers()
	r.logger.Info().Str("winner", winnerID).Str("reason", reason).Msg("game over")
	r.broadcast("game_over", map[string]any{"winner": winnerID, "reason": reason})
	r.bump()
}

// HandleDisconnect resolves a dropped connection. During battle it is a
// forfeit; earlier it just frees the slot. Returns true when the room is
// empty and eligible for teardown.
func (r *Room) HandleDisconnect(playerID string) bool {
	p := r.Players[playerID]
	if p == nil {
		return len(r.Players) == 0
	}
	switch r.Phase {
	case PhaseBattle:
		if opp := r.Opponent(playerID); opp != nil {
			r.endBattle(opp.ID, "opponent disconnected")
		} else {
			r.Phase = PhaseEnded
		}
		return true
	case PhaseEnded:
		delete(r.Players, playerID)
		return len(r.Players) == 0
	default:
		delete(r.Players, playerID)
		if r.Phase == PhaseSetup {
			r.Phase = PhaseLobby
		}
		r.bump()
		return len(r.Players) == 0
	}
}

func (r *Room) stopRevealTimers() {
	for _, p := range r.Players {
		p.revealToken++
		p.FullReveal = false
	}
}

// scheduleRevealExpiry arms the wall-clock expiry for the full-map reveal
// skill. The token check makes a stale callback a no-op if the room ended or
// the player left before it fired.
func (r *Room) scheduleRevealExpiry(p *Player, d time.Duration) {
	p.revealToken++
	token := p.revealToken
	time.AfterFunc(d, func() {
		r.Mu.Lock()
		defer r.Mu.Unlock()
		current, ok := r.Players[p.ID]
		if !ok || current != p || p.revealToken != token {
			return
		}
		p.FullReveal = false
		r.bump()
	})
}
