package models

import (
	"encoding/json"
	"time"
)

// Wholesaler идентифицирует схему фида поставщика.
type Wholesaler string

const (
	WholesalerJS   Wholesaler = "JS"
	WholesalerMADA Wholesaler = "MADA"
	WholesalerAREN Wholesaler = "AREN"
)

// RecordStatus — статус сырой записи фида.
// Переходы только Pending -> {Completed, Failed, Skipped}; обратные переходы
// возможны лишь ручным сбросом вне этого сервиса.
type RecordStatus string

const (
	RecordPending   RecordStatus = "Pending"
	RecordCompleted RecordStatus = "Completed"
	RecordFailed    RecordStatus = "Failed"
	RecordSkipped   RecordStatus = "Skipped"
)

// RawFeedRecord — сырая запись фида, созданная загрузчиком поставщика.
// Хранится в таблице raw_feed.records; движок сверки меняет только status.
type RawFeedRecord struct {
	ID         int             `json:"id"`
	Wholesaler Wholesaler      `json:"wholesaler_name"`
	SKU        string          `json:"sku"`
	Brand      string          `json:"brand"`
	Payload    json.RawMessage `json:"raw_payload"`
	Status     RecordStatus    `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}
