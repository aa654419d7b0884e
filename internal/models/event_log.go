package models

import (
	"time"

	"gorm.io/datatypes"
)

// EventLog keeps a best-effort local record of every event published on the
// notification channel. Rows are written after the publish attempt and are
// never read on the request path.
type EventLog struct {
	ID        string         `gorm:"primaryKey;type:uuid" json:"id"`
	Topic     string         `gorm:"size:128;index" json:"topic"`
	Payload   datatypes.JSON `json:"payload"`
	Published bool           `json:"published"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
}
