package domain

import "time"

// Category is the canonical bucket for a PDA operation type.
type Category string

const (
	CategoryPicking    Category = "PICKING"
	CategoryMoveBobina Category = "MOVE_BOBINA"
	CategoryMoveLote   Category = "MOVE_LOTE"
	CategoryInventory  Category = "INVENTORY"
	CategoryEntry      Category = "ENTRY"
	CategoryWaste      Category = "WASTE"
	CategoryTare       Category = "TARE"
	CategoryPrint      Category = "PRINT"
	CategoryConfig     Category = "CONFIG"
	CategoryAuth       Category = "AUTH"
	CategoryOther      Category = "OTHER"
)

// AllCategories lists every canonical category except OTHER, in display order.
var AllCategories = []Category{
	CategoryPicking,
	CategoryMoveBobina,
	CategoryMoveLote,
	CategoryInventory,
	CategoryEntry,
	CategoryWaste,
	CategoryTare,
	CategoryPrint,
	CategoryConfig,
	CategoryAuth,
}

// Event represents a canonical PDA event stored in ClickHouse.
// Timestamps are normalized to UTC instants at ingestion time.
type Event struct {
	EventID           string    `ch:"event_id" json:"id"`
	Timestamp         time.Time `ch:"timestamp" json:"timestamp"`
	SourceUserID      string    `ch:"source_user_id" json:"user_id"`
	OperatorID        string    `ch:"operator_id" json:"operator_id"`
	OperationType     string    `ch:"operation_type" json:"operation_type"`
	OperationCategory Category  `ch:"operation_category" json:"operation_category"`
	DocumentID        string    `ch:"document_id" json:"document_id"`
	DeviceID          string    `ch:"device_id" json:"device_id"`
	Source            string    `ch:"source" json:"source"`
	AppVersion        string    `ch:"app_version" json:"app_version,omitempty"`
	RawPayload        string    `ch:"raw_payload" json:"raw_payload,omitempty"`
	ProcessedAt       time.Time `ch:"processed_at" json:"-"`
	Version           uint64    `ch:"version" json:"-"`
}
