package game

import "errors"

// Rejected-command errors. Every one of these means the command was refused
// before any mutation: the caller may correct and retry, the turn is not
// consumed unless the operation says otherwise.
var (
	ErrRoomExists         = errors.New("room id already in use")
	ErrRoomFull           = errors.New("room is full")
	ErrNotInRoom          = errors.New("player is not in this room")
	ErrWrongPhase         = errors.New("operation not allowed in this phase")
	ErrNotInBattle        = errors.New("battle has not started")
	ErrNotYourTurn        = errors.New("not your turn")
	ErrUnknownUnitCode    = errors.New("unknown unit code")
	ErrUnknownItem        = errors.New("unknown item")
	ErrUnknownCommander   = errors.New("unknown commander")
	ErrOutOfBounds        = errors.New("position outside the grid")
	ErrBlockedTerrain     = errors.New("position blocked by terrain")
	ErrOverlap            = errors.New("position overlaps your own fleet")
	ErrInsufficientPoints = errors.New("insufficient points")
	ErrInventoryFull      = errors.New("inventory is full")
	ErrItemNotOwned       = errors.New("item not in inventory")
	ErrPassiveItem        = errors.New("item triggers automatically and cannot be played")
	ErrInvalidTarget      = errors.New("invalid target")
	ErrOutOfRange         = errors.New("target out of range")
	ErrImmobilized        = errors.New("unit is immobilized")
	ErrNotAStructure      = errors.New("target is not a structure")
	ErrStructureImmobile  = errors.New("structures cannot move")
	ErrGuarded            = errors.New("target is protected by a guard zone")
	ErrNotCharged         = errors.New("weapon is still charging")
	ErrNotCritical        = errors.New("unit is not damaged enough to scuttle")
	ErrNoCommander        = errors.New("no commander selected")
	ErrSkillUsed          = errors.New("commander skill already used")
	ErrCommanderLocked    = errors.New("commander cannot change after battle starts")
	ErrNothingToRepair    = errors.New("no damaged unit to repair")
	ErrJammed             = errors.New("detector is jammed")
)
