package game

// OutboundMessage is an event frame queued for one participant and drained by
// the transport layer's send loop.
type OutboundMessage struct {
	Type    string
	Payload any
}

// GuardZone is the deployable anti-hijack shield: structures within Radius of
// Center cannot be boarded while Turns > 0.
type GuardZone struct {
	Active bool
	Center Cell
	Radius int
	Turns  int
}

// Player holds one participant's economy, inventory, fleet, and active timed
// effects. All mutation happens under the owning room's lock.
type Player struct {
	ID    string
	Name  string
	Ready bool

	Points    int
	Inventory []string // item ids, multiset, bounded by the inventory cap
	Fleet     []*Unit  // insertion order = deployment order

	CommanderID   string
	CommanderUsed bool

	// Timed effects, counted in this player's turns.
	VisionTurns int
	Guard       GuardZone

	// Wall-clock full-map reveal. revealToken invalidates a stale expiry
	// callback after the skill is re-armed or the room is torn down.
	FullReveal  bool
	revealToken int

	pending []OutboundMessage
}

func NewPlayer(id, name string, points int) *Player {
	return &Player{ID: id, Name: name, Points: points}
}

func (p *Player) SendMessage(msgType string, payload any) {
	p.pending = append(p.pending, OutboundMessage{Type: msgType, Payload: payload})
}

func (p *Player) ConsumePendingMessages() []OutboundMessage {
	if len(p.pending) == 0 {
		return nil
	}
	out := p.pending
	p.pending = nil
	return out
}

// HasItem reports whether the inventory holds at least one of the item.
func (p *Player) HasItem(itemID string) bool {
	for _, id := range p.Inventory {
		if id == itemID {
			return true
		}
	}
	return false
}

// RemoveItem consumes one instance of the item, returning false if none held.
func (p *Player) RemoveItem(itemID string) bool {
	for i, id := range p.Inventory {
		if id == itemID {
			p.Inventory = append(p.Inventory[:i], p.Inventory[i+1:]...)
			return true
		}
	}
	return false
}

// UnitByID finds a unit in this player's fleet.
func (p *Player) UnitByID(unitID string) *Unit {
	for _, u := range p.Fleet {
		if u.ID == unitID {
			return u
		}
	}
	return nil
}

// UnitAt returns the first unsunk unit occupying the cell, or nil.
func (p *Player) UnitAt(c Cell) *Unit {
	for _, u := range p.Fleet {
		if !u.Sunk && u.OccupiesCell(c) {
			return u
		}
	}
	return nil
}

// AllSunk reports the loss condition: every deployed unit sunk. An empty
// fleet is not a loss; it just means the player has not deployed yet.
func (p *Player) AllSunk() bool {
	if len(p.Fleet) == 0 {
		return false
	}
	for _, u := range p.Fleet {
		if !u.Sunk {
			return false
		}
	}
	return true
}

// tickTurnStart decrements this player's per-turn countdowns as their turn
// begins: unit charge/reveal/jam timers, the vision buff, and the guard zone.
func (p *Player) tickTurnStart() {
	for _, u := range p.Fleet {
		u.tickCountdowns()
	}
	if p.VisionTurns > 0 {
		p.VisionTurns--
	}
	if p.Guard.Active {
		p.Guard.Turns--
		if p.Guard.Turns <= 0 {
			p.Guard = GuardZone{}
		}
	}
}
