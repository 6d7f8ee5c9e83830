package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleAdmin         UserRole = "ADMIN"
	RoleSuperUser     UserRole = "SUPER_USER"
	RoleStandardUser  UserRole = "STANDARD_USER"
	RoleTemporaryUser UserRole = "TEMPORARY_USER"
)

// Valid reports whether r is one of the known roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleSuperUser, RoleStandardUser, RoleTemporaryUser:
		return true
	}
	return false
}

type UserStatus string

const (
	StatusActive   UserStatus = "ACTIVE"
	StatusInactive UserStatus = "INACTIVE"
)

// User is a dashboard account. Accounts are deactivated, never deleted.
type User struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Email            string     `gorm:"not null;size:255;uniqueIndex" json:"email"`
	Password         string     `gorm:"size:255" json:"-"`
	FirstName        string     `gorm:"size:100" json:"firstName"`
	LastName         string     `gorm:"size:100" json:"lastName"`
	Organisation     string     `gorm:"size:255" json:"organisation"`
	Avatar           string     `gorm:"size:500" json:"avatar"`
	UserRole         UserRole   `gorm:"size:20;not null;default:STANDARD_USER;index" json:"userRole"`
	Status           UserStatus `gorm:"size:20;not null;default:ACTIVE" json:"status"`
	ResetTokenHash   *string    `gorm:"size:64;index" json:"-"`
	ResetTokenExpiry *time.Time `json:"-"`

	PhoneNumber    string `gorm:"size:50" json:"phoneNumber"`
	AddressLine1   string `gorm:"size:255" json:"addressLine1"`
	AddressLine2   string `gorm:"size:255" json:"addressLine2"`
	City           string `gorm:"size:100" json:"city"`
	County         string `gorm:"size:100" json:"county"`
	Postcode       string `gorm:"size:20" json:"postcode"`
	Specialisation string `gorm:"size:255" json:"specialisation"`
	Description    string `gorm:"type:text" json:"description"`

	OrganisationRole         string `gorm:"size:100" json:"organisationRole"`
	OrganisationEmail        string `gorm:"size:255" json:"organisationEmail"`
	OrganisationPhoneNumber  string `gorm:"size:50" json:"organisationPhoneNumber"`
	OrganisationAddressLine1 string `gorm:"size:255" json:"organisationAddressLine1"`
	OrganisationAddressLine2 string `gorm:"size:255" json:"organisationAddressLine2"`
	OrganisationCity         string `gorm:"size:100" json:"organisationCity"`
	OrganisationCounty       string `gorm:"size:100" json:"organisationCounty"`
	OrganisationPostcode     string `gorm:"size:20" json:"organisationPostcode"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
