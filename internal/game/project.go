package game

// View is the fog-of-war-filtered projection of room state for one viewer.
// It is built fresh from copies on every call; nothing in it aliases the
// authoritative model.
type View struct {
	RoomID    string
	Phase     Phase
	Turn      string // current turn holder's player id
	TurnCount int

	You      PlayerView
	Opponent *OpponentView

	Log       []LogEntry
	Winner    string
	WinReason string
}

type PlayerView struct {
	ID            string
	Name          string
	Ready         bool
	Points        int
	Inventory     []string
	CommanderID   string
	CommanderUsed bool
	VisionTurns   int
	Guard         *GuardView
	Units         []UnitView
}

type OpponentView struct {
	ID    string
	Name  string
	Ready bool
	Units []UnitView // only what the viewer has earned: sunk or revealed
}

type GuardView struct {
	X      int
	Y      int
	Radius int
	Turns  int
}

type CellView struct {
	X   int
	Y   int
	Hit bool
}

type UnitView struct {
	ID            string
	Code          string
	Name          string
	X             int
	Y             int
	Vertical      bool
	Cells         []CellView
	HP            int
	MaxHP         int
	Sunk          bool
	Immobile      bool
	Structure     bool
	ChargeTurns   int
	RevealedTurns int
	JamTurns      int
}

// Project builds the viewer's state. The viewer always sees their own full
// fleet, inventory, points, and every log entry they authored. Opponent units
// appear only when sunk or under a forced-reveal countdown (jamming suppresses
// the reveal), and the opponent's covert log entries are withheld entirely;
// coordinates of anything else never leave the server. revealAll bypasses both
// filters for the time-boxed full-reveal skill only.
func Project(r *Room, viewerID string, revealAll bool) *View {
	v := &View{
		RoomID:    r.ID,
		Phase:     r.Phase,
		Turn:      r.CurrentTurnID(),
		TurnCount: r.TurnCount,
		Log:       projectLog(r.Log, viewerID, revealAll),
		Winner:    r.Winner,
		WinReason: r.WinReason,
	}

	viewer := r.Players[viewerID]
	if viewer != nil {
		v.You = PlayerView{
			ID:            viewer.ID,
			Name:          viewer.Name,
			Ready:         viewer.Ready,
			Points:        viewer.Points,
			Inventory:     append([]string(nil), viewer.Inventory...),
			CommanderID:   viewer.CommanderID,
			CommanderUsed: viewer.CommanderUsed,
			VisionTurns:   viewer.VisionTurns,
		}
		if viewer.Guard.Active {
			v.You.Guard = &GuardView{
				X:      viewer.Guard.Center.X,
				Y:      viewer.Guard.Center.Y,
				Radius: viewer.Guard.Radius,
				Turns:  viewer.Guard.Turns,
			}
		}
		for _, u := range viewer.Fleet {
			v.You.Units = append(v.You.Units, unitView(u))
		}
	}

	if opp := r.Opponent(viewerID); opp != nil {
		ov := &OpponentView{ID: opp.ID, Name: opp.Name, Ready: opp.Ready}
		for _, u := range opp.Fleet {
			if !revealAll && !visibleToOpponent(u) {
				continue
			}
			ov.Units = append(ov.Units, unitView(u))
		}
		v.Opponent = ov
	}
	return v
}

// projectLog copies the combat log for one viewer. Covert entries record
// where a hidden placement went down, so only their author gets them back.
func projectLog(log []LogEntry, viewerID string, revealAll bool) []LogEntry {
	out := make([]LogEntry, 0, len(log))
	for _, e := range log {
		if e.Covert && e.Actor != viewerID && !revealAll {
			continue
		}
		out = append(out, e)
	}
	return out
}

// visibleToOpponent is the fog-of-war rule: sunk units are public, revealed
// units show while their countdown runs and they are not jamming.
func visibleToOpponent(u *Unit) bool {
	if u.Sunk {
		return true
	}
	return u.RevealedTurns > 0 && u.JamTurns == 0
}

func unitView(u *Unit) UnitView {
	uv := UnitView{
		ID:            u.ID,
		Code:          u.Def.Code,
		Name:          u.Def.Name,
		X:             u.Anchor.X,
		Y:             u.Anchor.Y,
		Vertical:      u.Vertical,
		HP:            u.HP,
		MaxHP:         u.MaxHP,
		Sunk:          u.Sunk,
		Immobile:      u.Immobile,
		Structure:     !u.Def.Mobile(),
		ChargeTurns:   u.ChargeTurns,
		RevealedTurns: u.RevealedTurns,
		JamTurns:      u.JamTurns,
	}
	for _, uc := range u.Cells {
		uv.Cells = append(uv.Cells, CellView{X: uc.Cell.X, Y: uc.Cell.Y, Hit: uc.Hit})
	}
	return uv
}
