package models

import "time"

// FieldSlots is the number of generic reading slots a channel exposes.
const FieldSlots = 8

// Channel is a registered sensor source. IDs are assigned by the upstream
// platform (e.g. ThingSpeak), not by the database.
type Channel struct {
	ID          uint      `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Field1      string    `gorm:"size:100" json:"field1,omitempty"`
	Field2      string    `gorm:"size:100" json:"field2,omitempty"`
	Field3      string    `gorm:"size:100" json:"field3,omitempty"`
	Field4      string    `gorm:"size:100" json:"field4,omitempty"`
	Field5      string    `gorm:"size:100" json:"field5,omitempty"`
	Field6      string    `gorm:"size:100" json:"field6,omitempty"`
	Field7      string    `gorm:"size:100" json:"field7,omitempty"`
	Field8      string    `gorm:"size:100" json:"field8,omitempty"`
	LabID       *uint     `gorm:"index" json:"labId,omitempty"`
	LastEntryID int64     `gorm:"not null;default:0" json:"lastEntryId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// SlotLabels returns the labels of field1..field8 in slot order.
func (c *Channel) SlotLabels() [FieldSlots]string {
	return [FieldSlots]string{c.Field1, c.Field2, c.Field3, c.Field4, c.Field5, c.Field6, c.Field7, c.Field8}
}
