package analytics

import (
	"strings"

	"github.com/helioskrill/alma-control/internal/domain"
)

// typeMapping associates a known device operation code with its canonical
// category. The table is ordered: on prefix/substring matching the first
// declared entry wins, so more specific codes must come before generic ones.
type typeMapping struct {
	code     string
	category domain.Category
}

// typeTable maps operation codes emitted by com.incod.AlonsoMercaderPDA to
// canonical categories. Extend with new entries as the vendor confirms
// additional codes; the classifier logic never needs to change.
var typeTable = []typeMapping{
	// Picking
	{"PICKING_FINISHED", domain.CategoryPicking},
	{"PICKING_STARTED", domain.CategoryPicking},
	{"PICKING_LINE", domain.CategoryPicking},
	{"PICKING_PARTIAL", domain.CategoryPicking},
	{"PICKING_CANCELLED", domain.CategoryPicking},
	{"ORDER_CLOSED", domain.CategoryPicking},
	{"ORDER_LINE", domain.CategoryPicking},
	{"CLOSE_ORDER", domain.CategoryPicking},
	{"FINISH_PICKING", domain.CategoryPicking},

	// Reel movements
	{"MOVE_BOBINA", domain.CategoryMoveBobina},
	{"MOVIMIENTO_BOBINA", domain.CategoryMoveBobina},
	{"MOV_BOBINA", domain.CategoryMoveBobina},

	// Lot movements
	{"MOVE_LOTE", domain.CategoryMoveLote},
	{"MOVIMIENTO_LOTE", domain.CategoryMoveLote},
	{"MOV_LOTE", domain.CategoryMoveLote},
	{"MOVE_STOCK", domain.CategoryMoveLote},

	// Inventory
	{"INVENTORY_START", domain.CategoryInventory},
	{"INVENTORY_LINE", domain.CategoryInventory},
	{"INVENTORY_CLOSE", domain.CategoryInventory},
	{"INVENTORY_FINISHED", domain.CategoryInventory},
	{"INVENTARIO", domain.CategoryInventory},
	{"INV_LINE", domain.CategoryInventory},

	// Goods entry
	{"ENTRY_GOODS", domain.CategoryEntry},
	{"ENTRY_LINE", domain.CategoryEntry},
	{"ENTRY_FINISHED", domain.CategoryEntry},
	{"ENTRADA", domain.CategoryEntry},
	{"GOODS_RECEIPT", domain.CategoryEntry},

	// Waste
	{"MERMA_REGISTER", domain.CategoryWaste},
	{"MERMA_LINE", domain.CategoryWaste},
	{"MERMA", domain.CategoryWaste},
	{"WASTE", domain.CategoryWaste},

	// Tare
	{"TARA_REGISTER", domain.CategoryTare},
	{"TARA_LINE", domain.CategoryTare},
	{"TARA", domain.CategoryTare},
	{"TARE", domain.CategoryTare},

	// Printing
	{"PRINT_LABEL", domain.CategoryPrint},
	{"PRINT_DOCUMENT", domain.CategoryPrint},
	{"IMPRIMIR", domain.CategoryPrint},
	{"PRINT", domain.CategoryPrint},

	// Configuration
	{"CONFIG", domain.CategoryConfig},
	{"CONFIGURACION", domain.CategoryConfig},
	{"SETUP", domain.CategoryConfig},

	// Authentication
	{"LOGIN", domain.CategoryAuth},
	{"LOGON", domain.CategoryAuth},
	{"LOGOUT", domain.CategoryAuth},
	{"LOGOFF", domain.CategoryAuth},
	{"SCAN", domain.CategoryAuth},
}

var codeNormalizer = strings.NewReplacer("-", "_", " ", "_")

// ClassifyCategory maps an arbitrary operation-type string to a canonical
// category. Exact match against the table first, then the first table entry
// that is a prefix of or contained in the normalized input. Unknown or empty
// values classify as OTHER.
func ClassifyCategory(opType string) domain.Category {
	if opType == "" {
		return domain.CategoryOther
	}

	upper := codeNormalizer.Replace(strings.ToUpper(opType))

	for _, m := range typeTable {
		if m.code == upper {
			return m.category
		}
	}

	for _, m := range typeTable {
		if strings.HasPrefix(upper, m.code) || strings.Contains(upper, m.code) {
			return m.category
		}
	}

	return domain.CategoryOther
}
