package domain

// Operator represents a warehouse worker using a PDA device.
type Operator struct {
	ID          string `ch:"id" json:"id"`
	Name        string `ch:"name" json:"name"`
	PDAID       string `ch:"pda_id" json:"pda_id,omitempty"`
	Team        string `ch:"team" json:"team,omitempty"`
	Active      bool   `ch:"active" json:"active"`
	DailyTarget int64  `ch:"daily_target" json:"daily_target,omitempty"`
	Version     uint64 `ch:"version" json:"-"`
}
