package models

import (
	"time"

	"github.com/google/uuid"
)

type Lab struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ManagerID   uuid.UUID `gorm:"type:uuid;not null;index" json:"managerId"`
	LabLocation string    `gorm:"size:255;not null" json:"labLocation"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Manager     *User     `gorm:"foreignKey:ManagerID" json:"manager,omitempty"`
}

// ApiKey authenticates devices of a lab. Only the sha256 of the key is kept;
// Prefix lets operators recognise a key without exposing it.
type ApiKey struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	LabID      uint       `gorm:"not null;index" json:"labId"`
	Name       string     `gorm:"size:100;not null" json:"name"`
	Prefix     string     `gorm:"size:12;not null" json:"prefix"`
	KeyHash    string     `gorm:"size:64;not null;uniqueIndex" json:"-"`
	Revoked    bool       `gorm:"not null;default:false" json:"revoked"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// Access grants a user visibility of a channel.
type Access struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_access_user_channel" json:"userId"`
	ChannelID uint       `gorm:"not null;uniqueIndex:idx_access_user_channel" json:"channelId"`
	GrantedBy *uuid.UUID `gorm:"type:uuid" json:"grantedBy,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func (Access) TableName() string {
	return "access"
}
