package defs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// fileTable is the shape of the JSON definitions document. Every section is
// optional; anything absent keeps its built-in default.
type fileTable struct {
	Units      []UnitDef      `mapstructure:"units"`
	Items      []ItemDef      `mapstructure:"items"`
	Commanders []CommanderDef `mapstructure:"commanders"`
	Tunables   *Tunables      `mapstructure:"tunables"`
}

// Load reads a definitions document from path and merges it over the built-in
// table. A missing file is not an error: the defaults are returned unchanged,
// so the server runs without any configuration on disk.
func Load(path string) (*Table, error) {
	table := Default()
	if path == "" {
		return table, nil
	}
	cleanPath := filepath.Clean(path)
	if _, err := os.Stat(cleanPath); os.IsNotExist(err) {
		return table, nil
	}

	v := viper.New()
	v.SetConfigFile(cleanPath)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read definitions %q: %w", cleanPath, err)
	}
	var ft fileTable
	if err := v.Unmarshal(&ft); err != nil {
		return nil, fmt.Errorf("parse definitions %q: %w", cleanPath, err)
	}

	for _, u := range ft.Units {
		if err := validateUnit(u); err != nil {
			return nil, fmt.Errorf("definitions %q: %w", cleanPath, err)
		}
		table.Units[u.Code] = u
	}
	for _, it := range ft.Items {
		if it.ID == "" || it.Effect == "" {
			return nil, fmt.Errorf("definitions %q: item %q missing id or effect", cleanPath, it.ID)
		}
		table.Items[it.ID] = it
	}
	for _, c := range ft.Commanders {
		if c.ID == "" || c.Skill == "" {
			return nil, fmt.Errorf("definitions %q: commander %q missing id or skill", cleanPath, c.ID)
		}
		table.Commanders[c.ID] = c
	}
	if ft.Tunables != nil {
		table.Tun = mergeTunables(table.Tun, *ft.Tunables)
	}
	if _, ok := table.Units[table.Tun.DecoyCode]; !ok {
		return nil, fmt.Errorf("definitions %q: decoy code %q has no unit definition", cleanPath, table.Tun.DecoyCode)
	}
	return table, nil
}

func validateUnit(u UnitDef) error {
	if u.Code == "" {
		return fmt.Errorf("unit with empty code")
	}
	if u.Size < 1 {
		return fmt.Errorf("unit %q: size %d < 1", u.Code, u.Size)
	}
	if u.MaxHP < 1 {
		return fmt.Errorf("unit %q: maxHp %d < 1", u.Code, u.MaxHP)
	}
	if u.Type != TypeShip && u.Type != TypeStructure {
		return fmt.Errorf("unit %q: unknown type %q", u.Code, u.Type)
	}
	return nil
}

// mergeTunables keeps defaults for zero-valued fields so a partial tunables
// section only overrides what it names.
func mergeTunables(base, over Tunables) Tunables {
	if over.BoardW > 0 {
		base.BoardW = over.BoardW
	}
	if over.BoardH > 0 {
		base.BoardH = over.BoardH
	}
	if over.ReefCount > 0 {
		base.ReefCount = over.ReefCount
	}
	if over.CriticalThreshold > 0 {
		base.CriticalThreshold = over.CriticalThreshold
	}
	if over.StartPoints > 0 {
		base.StartPoints = over.StartPoints
	}
	if over.InventoryCap > 0 {
		base.InventoryCap = over.InventoryCap
	}
	if over.ShotDamage > 0 {
		base.ShotDamage = over.ShotDamage
	}
	if over.HitReward > 0 {
		base.HitReward = over.HitReward
	}
	if over.SinkBonus > 0 {
		base.SinkBonus = over.SinkBonus
	}
	if over.RevealTurns > 0 {
		base.RevealTurns = over.RevealTurns
	}
	if over.RevealSeconds > 0 {
		base.RevealSeconds = over.RevealSeconds
	}
	if over.DecoyCode != "" {
		base.DecoyCode = over.DecoyCode
	}
	return base
}
