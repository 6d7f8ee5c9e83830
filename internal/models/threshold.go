package models

import "time"

// Threshold bounds one sensor field of one channel.
type Threshold struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	ChannelID uint      `gorm:"not null;uniqueIndex:idx_thresholds_channel_field" json:"channelId"`
	FieldName string    `gorm:"size:100;not null;uniqueIndex:idx_thresholds_channel_field" json:"fieldName"`
	MinValue  float64   `gorm:"not null" json:"minValue"`
	MaxValue  float64   `gorm:"not null" json:"maxValue"`
	Unit      *string   `gorm:"size:20" json:"unit"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DefaultThreshold is the global fallback for a field name.
type DefaultThreshold struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	FieldName string    `gorm:"size:100;not null;uniqueIndex" json:"fieldName"`
	MinValue  float64   `gorm:"not null" json:"minValue"`
	MaxValue  float64   `gorm:"not null" json:"maxValue"`
	Unit      *string   `gorm:"size:20" json:"unit"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
