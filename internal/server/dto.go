package server

import "Broadside/internal/game"

type cellDTO struct {
	X   int  `json:"x"`
	Y   int  `json:"y"`
	Hit bool `json:"hit,omitempty"`
}

type unitDTO struct {
	ID            string    `json:"id"`
	Code          string    `json:"code"`
	Name          string    `json:"name"`
	X             int       `json:"x"`
	Y             int       `json:"y"`
	Vertical      bool      `json:"vertical"`
	Cells         []cellDTO `json:"cells"`
	HP            int       `json:"hp"`
	MaxHP         int       `json:"max_hp"`
	Sunk          bool      `json:"sunk"`
	Immobile      bool      `json:"immobile"`
	Structure     bool      `json:"structure"`
	ChargeTurns   int       `json:"charge_turns,omitempty"`
	RevealedTurns int       `json:"revealed_turns,omitempty"`
	JamTurns      int       `json:"jam_turns,omitempty"`
}

type guardDTO struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Radius int `json:"radius"`
	Turns  int `json:"turns"`
}

type selfDTO struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Ready         bool      `json:"ready"`
	Points        int       `json:"points"`
	Inventory     []string  `json:"inventory"`
	CommanderID   string    `json:"commander_id,omitempty"`
	CommanderUsed bool      `json:"commander_used"`
	VisionTurns   int       `json:"vision_turns,omitempty"`
	Guard         *guardDTO `json:"guard,omitempty"`
	Units         []unitDTO `json:"units"`
}

type opponentDTO struct {
	ID    string    `json:"id"`
	Name  string    `json:"name"`
	Ready bool      `json:"ready"`
	Units []unitDTO `json:"units"`
}

type logEntryDTO struct {
	Turn    int    `json:"turn"`
	Actor   string `json:"actor"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Outcome string `json:"outcome"`
	Note    string `json:"note,omitempty"`
}

type gameStateDTO struct {
	RoomID    string        `json:"room_id"`
	Phase     string        `json:"phase"`
	Turn      string        `json:"turn,omitempty"`
	TurnCount int           `json:"turn_count"`
	Me        selfDTO       `json:"me"`
	Opponent  *opponentDTO  `json:"opponent,omitempty"`
	Log       []logEntryDTO `json:"log"`
	Winner    string        `json:"winner,omitempty"`
	WinReason string        `json:"win_reason,omitempty"`
}

type roomInfoDTO struct {
	RoomID   string  `json:"room_id"`
	PlayerID string  `json:"player_id"`
	W        int     `json:"w"`
	H        int     `json:"h"`
	Terrain  [][]int `json:"terrain"`
}

func unitToDTO(u game.UnitView) unitDTO {
	dto := unitDTO{
		ID:            u.ID,
		Code:          u.Code,
		Name:          u.Name,
		X:             u.X,
		Y:             u.Y,
		Vertical:      u.Vertical,
		HP:            u.HP,
		MaxHP:         u.MaxHP,
		Sunk:          u.Sunk,
		Immobile:      u.Immobile,
		Structure:     u.Structure,
		ChargeTurns:   u.ChargeTurns,
		RevealedTurns: u.RevealedTurns,
		JamTurns:      u.JamTurns,
	}
	for _, c := range u.Cells {
		dto.Cells = append(dto.Cells, cellDTO{X: c.X, Y: c.Y, Hit: c.Hit})
	}
	return dto
}

func viewToDTO(v *game.View) gameStateDTO {
	dto := gameStateDTO{
		RoomID:    v.RoomID,
		Phase:     string(v.Phase),
		Turn:      v.Turn,
		TurnCount: v.TurnCount,
		Winner:    v.Winner,
		WinReason: v.WinReason,
		Me: selfDTO{
			ID:            v.You.ID,
			Name:          v.You.Name,
			Ready:         v.You.Ready,
			Points:        v.You.Points,
			Inventory:     v.You.Inventory,
			CommanderID:   v.You.CommanderID,
			CommanderUsed: v.You.CommanderUsed,
			VisionTurns:   v.You.VisionTurns,
		},
	}
	if v.You.Guard != nil {
		dto.Me.Guard = &guardDTO{X: v.You.Guard.X, Y: v.You.Guard.Y, Radius: v.You.Guard.Radius, Turns: v.You.Guard.Turns}
	}
	for _, u := range v.You.Units {
		dto.Me.Units = append(dto.Me.Units, unitToDTO(u))
	}
	if v.Opponent != nil {
		opp := &opponentDTO{ID: v.Opponent.ID, Name: v.Opponent.Name, Ready: v.Opponent.Ready}
		for _, u := range v.Opponent.Units {
			opp.Units = append(opp.Units, unitToDTO(u))
		}
		dto.Opponent = opp
	}
	for _, e := range v.Log {
		dto.Log = append(dto.Log, logEntryDTO{Turn: e.Turn, Actor: e.Actor, X: e.X, Y: e.Y, Outcome: string(e.Outcome), Note: e.Note})
	}
	return dto
}
