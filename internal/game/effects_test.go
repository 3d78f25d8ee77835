package game

import (
	"testing"

	"Broadside/internal/defs"
)

func itemDef(t *testing.T, r *Room, id string) defs.ItemDef {
	t.Helper()
	item, ok := r.Defs.Item(id)
	if !ok {
		t.Fatalf("unknown item %s", id)
	}
	return item
}

func TestRepairHealsAndClearsImmobilization(t *testing.T) {
	r := newTestRoom(t)
	first, _ := startBattle(t, r)
	ca := first.Fleet[1] // 8 HP
	ca.ApplyDamage(5, nil, r.Defs.Tun.CriticalThreshold)
	if !ca.Immobile {
		t.Fatalf("expected critical damage to immobilize")
	}

	item := itemDef(t, r, "repair_kit") // heals half of max
	res, err := repairHandler{}.Apply(r, first, EffectParams{UnitID: ca.ID, Item: item})
	if err != nil {
		t.Fatalf("repair: %v", err)
	}
	if res.Outcome != OutcomeHit {
		t.Fatalf("unexpected outcome %s", res.Outcome)
	}
	if ca.HP != 7 {
		t.Fatalf("expected 3+4 hp, got %d", ca.HP)
	}
	if ca.Immobile {
		t.Fatalf("healing past the threshold clears immobilization")
	}

	ca.HP = ca.MaxHP
	if _, err := (repairHandler{}).Apply(r, first, EffectParams{UnitID: ca.ID, Item: item}); err != ErrNothingToRepair {
		t.Fatalf("expected ErrNothingToRepair, got %v", err)
	}
}

func TestLineScanRevealsRow(t *testing.T) {
	r := newTestRoom(t)
	first, second := startBattle(t, r)
	item := itemDef(t, r, "sonar_ping")

	row := second.Fleet[0].Anchor.Y
	res, err := lineScanHandler{}.Apply(r, first, EffectParams{Axis: "row", Index: row, Item: item})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if res.Outcome != OutcomeHit {
		t.Fatalf("expected a reveal, got %s", res.Outcome)
	}
	if second.Fleet[0].RevealedTurns != r.Defs.Tun.RevealTurns {
		t.Fatalf("scanned unit must carry the reveal countdown")
	}
	if second.Fleet[1].RevealedTurns != 0 {
		t.Fatalf("off-row unit must stay hidden")
	}

	if _, err := (lineScanHandler{}).Apply(r, first, EffectParams{Axis: "diag", Index: 0, Item: item}); err != ErrInvalidTarget {
		t.Fatalf("expected ErrInvalidTarget for a bad axis, got %v", err)
	}
	if _, err := (lineScanHandler{}).Apply(r, first, EffectParams{Axis: "row", Index: 99, Item: item}); err != ErrOutOfBounds {
		t.Fatalf("expected ErrOutOfBounds, got %v", err)
	}
}

func TestLineScanCounteredByChaff(t *testing.T) {
	r := newTestRoom(t)
	first, second := startBattle(t, r)
	second.Inventory = append(second.Inventory, "chaff")
	item := itemDef(t, r, "sonar_ping")

	res, err := lineScanHandler{}.Apply(r, first, EffectParams{Axis: "row", Index: second.Fleet[0].Anchor.Y, Item: item})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if res.Outcome != OutcomeCountered {
		t.Fatalf("expected COUNTERED, got %s", res.Outcome)
	}
	if second.HasItem("chaff") {
		t.Fatalf("chaff must be consumed")
	}
	if second.Fleet[0].RevealedTurns != 0 {
		t.Fatalf("a countered scan reveals nothing")
	}
}

func TestLineScanSkipsJammedUnits(t *testing.T) {
	r := newTestRoom(t)
	first, second := startBattle(t, r)
	second.Fleet[0].JamTurns = 2
	item := itemDef(t, r, "sonar_ping")

	res, err := lineScanHandler{}.Apply(r, first, EffectParams{Axis: "row", Index: second.Fleet[0].Anchor.Y, Item: item})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if res.Outcome != OutcomeMiss {
		t.Fatalf("jammed units stay hidden from passive scans, got %s", res.Outcome)
	}
}

func TestRelocateJumpForcesReveal(t *testing.T) {
	r := newTestRoom(t)
	first, _ := startBattle(t, r)
	dd := first.Fleet[0]
	item := itemDef(t, r, "jump_drive") // range 5

	far := EffectParams{UnitID: dd.ID, X: dd.Anchor.X + 6, Y: dd.Anchor.Y, Item: item}
	if _, err := (relocateHandler{}).Apply(r, first, far); err != ErrOutOfRange {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}

	dest := Cell{X: dd.Anchor.X + 5, Y: dd.Anchor.Y}
	if _, err := (relocateHandler{}).Apply(r, first, EffectParams{UnitID: dd.ID, X: dest.X, Y: dest.Y, Item: item}); err != nil {
		t.Fatalf("jump: %v", err)
	}
	if dd.Anchor != dest {
		t.Fatalf("expected anchor %v, got %v", dest, dd.Anchor)
	}
	if dd.RevealedTurns != r.Defs.Tun.RevealTurns {
		t.Fatalf("a jump must force a reveal")
	}
}

func TestDecoySpawnsFleetUnit(t *testing.T) {
	r := newTestRoom(t)
	first, _ := startBattle(t, r)
	item := itemDef(t, r, "decoy_buoy")
	before := len(first.Fleet)

	res, err := decoyHandler{}.Apply(r, first, EffectParams{X: 7, Y: 7, Item: item})
	if err != nil {
		t.Fatalf("decoy: %v", err)
	}
	if len(first.Fleet) != before+1 {
		t.Fatalf("expected a new fleet unit")
	}
	spawned := first.UnitByID(res.Units[0])
	if spawned == nil || spawned.Def.Code != r.Defs.Tun.DecoyCode {
		t.Fatalf("expected a decoy unit, got %+v", spawned)
	}
	if spawned.OwnerID != first.ID {
		t.Fatalf("decoy must belong to the actor")
	}
}

func TestHijackTransfersStructure(t *testing.T) {
	r := newTestRoom(t)
	a, b := addTwoPlayers(t, r)
	aFleet := append(standardFleet(true), ShipPlacement{Code: "RS", X: 5, Y: 5})
	bFleet := append(standardFleet(false), ShipPlacement{Code: "RS", X: 5, Y: 9})
	if err := r.DeployFleet(a.ID, aFleet); err != nil {
		t.Fatalf("deploy a: %v", err)
	}
	if err := r.DeployFleet(b.ID, bFleet); err != nil {
		t.Fatalf("deploy b: %v", err)
	}
	first := r.Players[r.CurrentTurnID()]
	second := r.Opponent(first.ID)
	item := itemDef(t, r, "boarding_party") // range 6

	platform := first.Fleet[0]
	station := second.Fleet[2]
	// Bring the platform within boarding range of the station.
	platform.Relocate(Cell{X: 5, Y: 7}, false)

	ship := second.Fleet[0]
	if _, err := (hijackHandler{}).Apply(r, first, EffectParams{UnitID: platform.ID, TargetID: ship.ID, Item: item}); err != ErrNotAStructure {
		t.Fatalf("expected ErrNotAStructure, got %v", err)
	}

	res, err := hijackHandler{}.Apply(r, first, EffectParams{UnitID: platform.ID, TargetID: station.ID, Item: item})
	if err != nil {
		t.Fatalf("hijack: %v", err)
	}
	if res.Outcome != OutcomeHit {
		t.Fatalf("unexpected outcome %s", res.Outcome)
	}
	if station.OwnerID != first.ID {
		t.Fatalf("ownership must transfer")
	}
	if first.UnitByID(station.ID) == nil || second.UnitByID(station.ID) != nil {
		t.Fatalf("the unit must move between fleets")
	}
	if platform.RevealedTurns != r.Defs.Tun.RevealTurns {
		t.Fatalf("boarding reveals the platform")
	}
}

func TestGuardZoneBlocksHijack(t *testing.T) {
	r := newTestRoom(t)
	a, b := addTwoPlayers(t, r)
	aFleet := append(standardFleet(true), ShipPlacement{Code: "RS", X: 5, Y: 5})
	bFleet := append(standardFleet(false), ShipPlacement{Code: "RS", X: 5, Y: 9})
	if err := r.DeployFleet(a.ID, aFleet); err != nil {
		t.Fatalf("deploy a: %v", err)
	}
	if err := r.DeployFleet(b.ID, bFleet); err != nil {
		t.Fatalf("deploy b: %v", err)
	}
	first := r.Players[r.CurrentTurnID()]
	second := r.Opponent(first.ID)

	guard := itemDef(t, r, "aegis_field")
	station := second.Fleet[2]
	if _, err := (guardZoneHandler{}).Apply(r, second, EffectParams{X: station.Anchor.X, Y: station.Anchor.Y, Item: guard}); err != nil {
		t.Fatalf("guard: %v", err)
	}
	if !second.Guard.Active || second.Guard.Radius != guard.Radius {
		t.Fatalf("guard zone not installed: %+v", second.Guard)
	}

	board := itemDef(t, r, "boarding_party")
	platform := first.Fleet[0]
	platform.Relocate(Cell{X: 5, Y: 7}, false)
	if _, err := (hijackHandler{}).Apply(r, first, EffectParams{UnitID: platform.ID, TargetID: station.ID, Item: board}); err != ErrGuarded {
		t.Fatalf("expected ErrGuarded, got %v", err)
	}
	if station.OwnerID != second.ID {
		t.Fatalf("guarded structure must stay put")
	}
}

func TestRadarSweepBurnsThroughJamming(t *testing.T) {
	r := newTestRoom(t)
	first, second := startBattle(t, r)
	item := itemDef(t, r, "radar_sweep") // radius 4
	emitter := first.Fleet[0]           // DD, detector

	ca := first.Fleet[1]
	if _, err := (radarHandler{}).Apply(r, first, EffectParams{UnitID: ca.ID, Item: item}); err != ErrInvalidTarget {
		t.Fatalf("expected ErrInvalidTarget for a non-detector, got %v", err)
	}

	target := second.Fleet[0]
	target.JamTurns = 3
	target.Relocate(Cell{X: emitter.Anchor.X + 2, Y: emitter.Anchor.Y + 2}, false)

	res, err := radarHandler{}.Apply(r, first, EffectParams{UnitID: emitter.ID, Item: item})
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if res.Outcome != OutcomeHit {
		t.Fatalf("expected a reveal, got %s", res.Outcome)
	}
	if target.JamTurns != 0 || target.RevealedTurns != r.Defs.Tun.RevealTurns {
		t.Fatalf("an active sweep clears jamming and reveals, got jam=%d reveal=%d", target.JamTurns, target.RevealedTurns)
	}

	emitter.JamTurns = 1
	if _, err := (radarHandler{}).Apply(r, first, EffectParams{UnitID: emitter.ID, Item: item}); err != ErrJammed {
		t.Fatalf("expected ErrJammed for a disrupted emitter, got %v", err)
	}
}

func TestJammerStealthsSelfAndDisruptsDetectors(t *testing.T) {
	r := newTestRoom(t)
	first, second := startBattle(t, r)
	item := itemDef(t, r, "ecm_burst") // radius 3, duration 2

	u := first.Fleet[1]
	u.RevealedTurns = 2
	enemyDD := second.Fleet[0]
	enemyDD.Relocate(Cell{X: u.Anchor.X + 2, Y: u.Anchor.Y - 1}, false)

	res, err := jammerHandler{}.Apply(r, first, EffectParams{UnitID: u.ID, Item: item})
	if err != nil {
		t.Fatalf("jam: %v", err)
	}
	if u.JamTurns != item.Duration || u.RevealedTurns != 0 {
		t.Fatalf("jamming stealths the actor and cancels its reveal, got jam=%d reveal=%d", u.JamTurns, u.RevealedTurns)
	}
	if enemyDD.JamTurns != item.Duration {
		t.Fatalf("a detector inside the radius must be disrupted")
	}
	if len(res.Units) != 2 {
		t.Fatalf("expected both units in the result, got %v", res.Units)
	}
}

func TestBarrageHitsThreeByThreeSquare(t *testing.T) {
	r := newTestRoom(t)
	first, second := startBattle(t, r)
	item := itemDef(t, r, "mortar_shell") // damage 2, radius 1

	dd := second.Fleet[0]
	ca := second.Fleet[1]
	epicenter := Cell{X: dd.Anchor.X + 1, Y: dd.Anchor.Y + 1}
	// dd at Chebyshev 1, ca two rows below dd so also within 1 of the epicenter.
	res, err := areaDamageHandler{}.Apply(r, first, EffectParams{X: epicenter.X, Y: epicenter.Y, Item: item})
	if err != nil {
		t.Fatalf("barrage: %v", err)
	}
	if dd.HP != dd.MaxHP-item.Damage || ca.HP != ca.MaxHP-item.Damage {
		t.Fatalf("both units in the blast square take damage, got dd=%d ca=%d", dd.HP, ca.HP)
	}
	if res.Outcome != OutcomeHit {
		t.Fatalf("unexpected outcome %s", res.Outcome)
	}

	// Friendly units are spared when the item does not allow friendly fire.
	for _, u := range first.Fleet {
		if u.HP != u.MaxHP {
			t.Fatalf("friendly unit damaged by a no-friendly-fire barrage")
		}
	}
}

func TestNukeRequiresChargedBattery(t *testing.T) {
	r := newTestRoom(t)
	a, b := addTwoPlayers(t, r)
	aFleet := append(standardFleet(true), ShipPlacement{Code: "SG", X: 8, Y: 0})
	bFleet := append(standardFleet(false), ShipPlacement{Code: "SG", X: 8, Y: 12})
	if err := r.DeployFleet(a.ID, aFleet); err != nil {
		t.Fatalf("deploy a: %v", err)
	}
	if err := r.DeployFleet(b.ID, bFleet); err != nil {
		t.Fatalf("deploy b: %v", err)
	}
	first := r.Players[r.CurrentTurnID()]
	second := r.Opponent(first.ID)
	item := itemDef(t, r, "orbital_lance")

	battery := first.Fleet[2]
	if battery.ChargeTurns != battery.Def.Charge {
		t.Fatalf("charge structures deploy uncharged, got %d", battery.ChargeTurns)
	}
	if _, err := (nukeHandler{}).Apply(r, first, EffectParams{X: 7, Y: 7, Item: item}); err != ErrNotCharged {
		t.Fatalf("expected ErrNotCharged, got %v", err)
	}

	battery.ChargeTurns = 0
	target := second.Fleet[1]
	if _, err := (nukeHandler{}).Apply(r, first, EffectParams{X: target.Anchor.X, Y: target.Anchor.Y, Item: item}); err != nil {
		t.Fatalf("nuke: %v", err)
	}
	if target.HP != target.MaxHP-item.Damage {
		t.Fatalf("expected %d damage, hp=%d", item.Damage, target.HP)
	}
	if battery.ChargeTurns != battery.Def.Charge {
		t.Fatalf("firing must reset the charge countdown")
	}
}

func TestSelfDestructRequiresCriticalState(t *testing.T) {
	r := newTestRoom(t)
	first, second := startBattle(t, r)
	item := itemDef(t, r, "scuttle_charge") // damage 3, radius 1

	dd := first.Fleet[0]
	if _, err := (selfDestructHandler{}).Apply(r, first, EffectParams{UnitID: dd.ID, Item: item}); err != ErrNotCritical {
		t.Fatalf("expected ErrNotCritical at full health, got %v", err)
	}

	dd.ApplyDamage(3, nil, r.Defs.Tun.CriticalThreshold) // 2/5, below threshold
	enemy := second.Fleet[0]
	enemy.Relocate(Cell{X: dd.Anchor.X + 1, Y: dd.Anchor.Y}, false)

	res, err := selfDestructHandler{}.Apply(r, first, EffectParams{UnitID: dd.ID, Item: item})
	if err != nil {
		t.Fatalf("scuttle: %v", err)
	}
	if !dd.Sunk {
		t.Fatalf("scuttling sinks the unit")
	}
	if res.Outcome != OutcomeSunk {
		t.Fatalf("unexpected outcome %s", res.Outcome)
	}
	if enemy.HP != enemy.MaxHP-item.Damage {
		t.Fatalf("adjacent enemy takes blast damage, hp=%d", enemy.HP)
	}
	// Own units are never caught in the scuttle blast.
	if first.Fleet[1].HP != first.Fleet[1].MaxHP {
		t.Fatalf("friendly unit damaged by a scuttle")
	}
}

func TestChargeCountdownTicksOnOwnerTurns(t *testing.T) {
	r := newTestRoom(t)
	a, b := addTwoPlayers(t, r)
	aFleet := append(standardFleet(true), ShipPlacement{Code: "SG", X: 8, Y: 0})
	bFleet := append(standardFleet(false), ShipPlacement{Code: "SG", X: 8, Y: 12})
	if err := r.DeployFleet(a.ID, aFleet); err != nil {
		t.Fatalf("deploy a: %v", err)
	}
	if err := r.DeployFleet(b.ID, bFleet); err != nil {
		t.Fatalf("deploy b: %v", err)
	}
	first := r.Players[r.CurrentTurnID()]
	second := r.Opponent(first.ID)
	battery := first.Fleet[2]
	start := battery.ChargeTurns

	passTurn(t, r, first) // entering second's turn ticks second's fleet only
	if battery.ChargeTurns != start {
		t.Fatalf("opponent turns must not tick the charge")
	}
	passTurn(t, r, second) // entering first's turn ticks the battery
	if battery.ChargeTurns != start-1 {
		t.Fatalf("expected charge %d, got %d", start-1, battery.ChargeTurns)
	}
}
