// Package defs holds the static game data: unit, item, and commander
// definitions plus the tunable constants. A Table is loaded once at startup
// and treated as immutable for the lifetime of every room that reads it.
package defs

type UnitType string

const (
	TypeShip      UnitType = "SHIP"
	TypeStructure UnitType = "STRUCTURE"
)

// EffectKind tags an item or commander skill with the handler that resolves it.
type EffectKind string

const (
	EffectRepair       EffectKind = "repair"
	EffectLineScan     EffectKind = "line_scan"
	EffectRelocate     EffectKind = "relocate"
	EffectDecoy        EffectKind = "decoy"
	EffectHijack       EffectKind = "hijack"
	EffectGuardZone    EffectKind = "guard_zone"
	EffectRadar        EffectKind = "radar"
	EffectStrike       EffectKind = "strike"
	EffectBarrage      EffectKind = "barrage"
	EffectNuke         EffectKind = "nuke"
	EffectSelfDestruct EffectKind = "self_destruct"
	EffectJammer       EffectKind = "jammer"

	// Passive counters are consumed by the server, never played directly.
	EffectFlare   EffectKind = "flare"
	EffectScanJam EffectKind = "scan_jam"

	SkillVision EffectKind = "skill_vision"
	SkillReveal EffectKind = "skill_reveal"
	SkillRepair EffectKind = "skill_repair"
)

// Passive reports whether the item only triggers as an automatic counter.
func (k EffectKind) Passive() bool {
	return k == EffectFlare || k == EffectScanJam
}

// Covert reports whether playing the item must stay hidden from the opponent.
// Decoys, guard zones, and jammers are only useful while the other side does
// not know where (or that) they were placed, so their targeting never enters
// shared state.
func (k EffectKind) Covert() bool {
	return k == EffectDecoy || k == EffectGuardZone || k == EffectJammer
}

type UnitDef struct {
	Code     string   `json:"code" mapstructure:"code"`
	Name     string   `json:"name" mapstructure:"name"`
	Size     int      `json:"size" mapstructure:"size"`
	MaxHP    int      `json:"maxHp" mapstructure:"maxHp"`
	Vision   int      `json:"vision" mapstructure:"vision"`
	Move     int      `json:"move" mapstructure:"move"`
	Cost     int      `json:"cost" mapstructure:"cost"`
	Type     UnitType `json:"type" mapstructure:"type"`
	Charge   int      `json:"charge" mapstructure:"charge"`     // turns between nuke shots, 0 = not charge-gated
	Detector bool     `json:"detector" mapstructure:"detector"` // emits detection; jammers target these
}

func (d UnitDef) Mobile() bool { return d.Type == TypeShip }

type ItemDef struct {
	ID           string     `json:"id" mapstructure:"id"`
	Name         string     `json:"name" mapstructure:"name"`
	Cost         int        `json:"cost" mapstructure:"cost"`
	Effect       EffectKind `json:"effect" mapstructure:"effect"`
	Damage       int        `json:"damage" mapstructure:"damage"`
	Radius       int        `json:"radius" mapstructure:"radius"`
	Range        int        `json:"range" mapstructure:"range"`
	Duration     int        `json:"duration" mapstructure:"duration"` // turns, effect dependent
	Fraction     float64    `json:"fraction" mapstructure:"fraction"` // heal fraction of max HP
	FriendlyFire bool       `json:"friendlyFire" mapstructure:"friendlyFire"`
}

type CommanderDef struct {
	ID         string     `json:"id" mapstructure:"id"`
	Name       string     `json:"name" mapstructure:"name"`
	Skill      EffectKind `json:"skill" mapstructure:"skill"`
	HPBonusPct int        `json:"hpBonusPct" mapstructure:"hpBonusPct"` // flat max-HP bonus applied at deployment
	Duration   int        `json:"duration" mapstructure:"duration"`     // turns for skill_vision
}

type Tunables struct {
	BoardW            int     `json:"boardW" mapstructure:"boardW"`
	BoardH            int     `json:"boardH" mapstructure:"boardH"`
	ReefCount         int     `json:"reefCount" mapstructure:"reefCount"`
	CriticalThreshold float64 `json:"criticalThreshold" mapstructure:"criticalThreshold"`
	StartPoints       int     `json:"startPoints" mapstructure:"startPoints"`
	InventoryCap      int     `json:"inventoryCap" mapstructure:"inventoryCap"`
	ShotDamage        int     `json:"shotDamage" mapstructure:"shotDamage"`
	HitReward         int     `json:"hitReward" mapstructure:"hitReward"`
	SinkBonus         int     `json:"sinkBonus" mapstructure:"sinkBonus"`
	RevealTurns       int     `json:"revealTurns" mapstructure:"revealTurns"`
	RevealSeconds     float64 `json:"revealSeconds" mapstructure:"revealSeconds"`
	DecoyCode         string  `json:"decoyCode" mapstructure:"decoyCode"`
}

// Table is the immutable definitions lookup handed to every room.
type Table struct {
	Units      map[string]UnitDef
	Items      map[string]ItemDef
	Commanders map[string]CommanderDef
	Tun        Tunables
}

func (t *Table) Unit(code string) (UnitDef, bool) {
	d, ok := t.Units[code]
	return d, ok
}

func (t *Table) Item(id string) (ItemDef, bool) {
	d, ok := t.Items[id]
	return d, ok
}

func (t *Table) Commander(id string) (CommanderDef, bool) {
	d, ok := t.Commanders[id]
	return d, ok
}

// Default returns the built-in table used when no definitions file is present.
func Default() *Table {
	units := []UnitDef{
		{Code: "CV", Name: "Carrier", Size: 5, MaxHP: 12, Vision: 2, Move: 2, Cost: 0, Type: TypeShip},
		{Code: "BB", Name: "Battleship", Size: 4, MaxHP: 10, Vision: 2, Move: 2, Cost: 0, Type: TypeShip},
		{Code: "CA", Name: "Cruiser", Size: 3, MaxHP: 8, Vision: 3, Move: 3, Cost: 0, Type: TypeShip},
		{Code: "SS", Name: "Submarine", Size: 3, MaxHP: 6, Vision: 2, Move: 3, Cost: 0, Type: TypeShip},
		{Code: "DD", Name: "Destroyer", Size: 2, MaxHP: 5, Vision: 3, Move: 4, Cost: 0, Type: TypeShip, Detector: true},
		{Code: "DY", Name: "Decoy Buoy", Size: 1, MaxHP: 1, Vision: 0, Move: 0, Cost: 0, Type: TypeShip},
		{Code: "FT", Name: "Sea Fort", Size: 2, MaxHP: 9, Vision: 2, Move: 0, Cost: 0, Type: TypeStructure},
		{Code: "RS", Name: "Radar Station", Size: 1, MaxHP: 4, Vision: 5, Move: 0, Cost: 0, Type: TypeStructure, Detector: true},
		{Code: "SG", Name: "Siege Gun", Size: 2, MaxHP: 7, Vision: 1, Move: 0, Cost: 0, Type: TypeStructure, Charge: 3},
	}
	items := []ItemDef{
		{ID: "repair_kit", Name: "Repair Kit", Cost: 2, Effect: EffectRepair, Fraction: 0.5},
		{ID: "sonar_ping", Name: "Sonar Ping", Cost: 2, Effect: EffectLineScan},
		{ID: "jump_drive", Name: "Jump Drive", Cost: 3, Effect: EffectRelocate, Range: 5},
		{ID: "decoy_buoy", Name: "Decoy Buoy", Cost: 1, Effect: EffectDecoy},
		{ID: "boarding_party", Name: "Boarding Party", Cost: 4, Effect: EffectHijack, Range: 6},
		{ID: "aegis_field", Name: "Aegis Field", Cost: 3, Effect: EffectGuardZone, Radius: 3, Duration: 4},
		{ID: "radar_sweep", Name: "Radar Sweep", Cost: 2, Effect: EffectRadar, Radius: 4},
		{ID: "saboteur", Name: "Saboteur", Cost: 4, Effect: EffectStrike, Duration: 4},
		{ID: "mortar_shell", Name: "Mortar Shell", Cost: 3, Effect: EffectBarrage, Damage: 2, Radius: 1},
		{ID: "orbital_lance", Name: "Orbital Lance", Cost: 5, Effect: EffectNuke, Damage: 4, Radius: 2, FriendlyFire: true},
		{ID: "scuttle_charge", Name: "Scuttle Charge", Cost: 2, Effect: EffectSelfDestruct, Damage: 3, Radius: 1},
		{ID: "ecm_burst", Name: "ECM Burst", Cost: 2, Effect: EffectJammer, Radius: 3, Duration: 2},
		{ID: "flare", Name: "Flare", Cost: 1, Effect: EffectFlare},
		{ID: "chaff", Name: "Chaff", Cost: 1, Effect: EffectScanJam},
	}
	commanders := []CommanderDef{
		{ID: "drake", Name: "Admiral Drake", Skill: SkillVision, Duration: 3},
		{ID: "vega", Name: "Commander Vega", Skill: SkillReveal},
		{ID: "moreau", Name: "Captain Moreau", Skill: SkillRepair, HPBonusPct: 10},
	}

	t := &Table{
		Units:      make(map[string]UnitDef, len(units)),
		Items:      make(map[string]ItemDef, len(items)),
		Commanders: make(map[string]CommanderDef, len(commanders)),
		Tun: Tunables{
			BoardW:            15,
			BoardH:            15,
			ReefCount:         8,
			CriticalThreshold: 0.5,
			StartPoints:       10,
			InventoryCap:      6,
			ShotDamage:        2,
			HitReward:         1,
			SinkBonus:         3,
			RevealTurns:       2,
			RevealSeconds:     10,
			DecoyCode:         "DY",
		},
	}
	for _, u := range units {
		t.Units[u.Code] = u
	}
	for _, it := range items {
		t.Items[it.ID] = it
	}
	for _, c := range commanders {
		t.Commanders[c.ID] = c
	}
	return t
}
