package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// UsageHistory is the append-only account event trail (logins, password and
// role changes).
type UsageHistory struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Timestamp time.Time      `gorm:"not null;index" json:"timestamp"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"userId"`
	UserEmail string         `gorm:"size:255;not null" json:"userEmail"`
	Action    string         `gorm:"size:100;not null" json:"action"`
	Metadata  datatypes.JSON `json:"metadata"`
}

func (UsageHistory) TableName() string {
	return "usage_history"
}

// ActivityLog records operator actions on lab devices.
type ActivityLog struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	User        string    `gorm:"size:255;not null" json:"user"`
	Action      string    `gorm:"size:255;not null" json:"action"`
	Device      string    `gorm:"size:255;not null" json:"device"`
	LabLocation string    `gorm:"size:255;not null" json:"labLocation"`
	Timestamp   time.Time `gorm:"not null;index" json:"timestamp"`
}
