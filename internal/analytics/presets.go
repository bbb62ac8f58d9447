package analytics

import "github.com/helioskrill/alma-control/internal/domain"

// ActivityPreset names a subset of categories that count as real work for
// gap detection.
type ActivityPreset struct {
	ID          string            `json:"id"`
	Label       string            `json:"label"`
	Description string            `json:"description"`
	Categories  []domain.Category `json:"categories"`
}

// ActivityPresets are the built-in activity profiles, in display order.
var ActivityPresets = []ActivityPreset{
	{
		ID:          "solo_picking",
		Label:       "Solo Picking",
		Description: "Only picking counts as operational activity",
		Categories:  []domain.Category{domain.CategoryPicking},
	},
	{
		ID:          "operativa",
		Label:       "Operativa completa",
		Description: "Picking + movements + inventory + entries + waste + tare",
		Categories: []domain.Category{
			domain.CategoryPicking,
			domain.CategoryMoveBobina,
			domain.CategoryMoveLote,
			domain.CategoryInventory,
			domain.CategoryEntry,
			domain.CategoryWaste,
			domain.CategoryTare,
		},
	},
	{
		ID:          "todo",
		Label:       "Todas las operaciones",
		Description: "Any PDA event, including printing, config and auth",
		Categories: []domain.Category{
			domain.CategoryPicking,
			domain.CategoryMoveBobina,
			domain.CategoryMoveLote,
			domain.CategoryInventory,
			domain.CategoryEntry,
			domain.CategoryWaste,
			domain.CategoryTare,
			domain.CategoryPrint,
			domain.CategoryConfig,
			domain.CategoryAuth,
		},
	},
}

// PresetByID looks up an activity preset by its identifier.
func PresetByID(id string) (ActivityPreset, bool) {
	for _, p := range ActivityPresets {
		if p.ID == id {
			return p, true
		}
	}
	return ActivityPreset{}, false
}
