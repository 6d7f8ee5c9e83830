package dto

import (
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/models"
	"github.com/google/uuid"
)

type CreateChannelRequest struct {
	ID          uint    `json:"channelId"`
	Name        string  `json:"name"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Field1      string  `json:"field1"`
	Field2      string  `json:"field2"`
	Field3      string  `json:"field3"`
	Field4      string  `json:"field4"`
	Field5      string  `json:"field5"`
	Field6      string  `json:"field6"`
	Field7      string  `json:"field7"`
	Field8      string  `json:"field8"`
	LabID       *uint   `json:"labId"`
	LastEntryID int64   `json:"lastEntryId"`
}

type FeedsResponse struct {
	Feeds []models.Feed `json:"feeds"`
	Count int           `json:"count"`
}

type CreateLabRequest struct {
	ManagerID   uuid.UUID `json:"managerId"`
	LabLocation string    `json:"labLocation"`
}

type CreateApiKeyRequest struct {
	LabID uint   `json:"labId"`
	Name  string `json:"name"`
}

type ApiKeyCreatedResponse struct {
	ApiKey models.ApiKey `json:"apiKey"`
	Key    string        `json:"key"`
}

type GrantAccessRequest struct {
	UserIDs   []uuid.UUID `json:"userIds"`
	ChannelID uint        `json:"channelId"`
}

type GrantAccessResponse struct {
	Message        string          `json:"message"`
	AccessRecords  []models.Access `json:"accessRecords"`
	AlreadyGranted []uuid.UUID     `json:"alreadyGranted,omitempty"`
}

type RemoveAccessRequest struct {
	UserID    uuid.UUID `json:"userId"`
	ChannelID uint      `json:"channelId"`
}

type CreateActivityLogRequest struct {
	Action   string `json:"action"`
	Device   string `json:"device"`
	Location string `json:"location"`
}
