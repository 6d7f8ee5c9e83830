package dto

import (
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/models"
	"github.com/google/uuid"
)

type SignUpRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Organisation string `json:"organisation"`
	Avatar       string `json:"avatar"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type ResetRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// UpdateProfileRequest changes only the fields that are present.
type UpdateProfileRequest struct {
	FirstName      *string `json:"firstName"`
	LastName       *string `json:"lastName"`
	Email          *string `json:"email"`
	Organisation   *string `json:"organisation"`
	Avatar         *string `json:"avatar"`
	PhoneNumber    *string `json:"phoneNumber"`
	AddressLine1   *string `json:"addressLine1"`
	AddressLine2   *string `json:"addressLine2"`
	City           *string `json:"city"`
	County         *string `json:"county"`
	Postcode       *string `json:"postcode"`
	Specialisation *string `json:"specialisation"`
	Description    *string `json:"description"`
}

type UpdateOrganisationRequest struct {
	Organisation *string `json:"organisation"`
	Role         *string `json:"organisationRole"`
	Email        *string `json:"organisationEmail"`
	PhoneNumber  *string `json:"organisationPhoneNumber"`
	AddressLine1 *string `json:"organisationAddressLine1"`
	AddressLine2 *string `json:"organisationAddressLine2"`
	City         *string `json:"organisationCity"`
	County       *string `json:"organisationCounty"`
	Postcode     *string `json:"organisationPostcode"`
}

type AuthResponse struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	ExpiresIn    int64        `json:"expiresIn"`
	User         UserResponse `json:"user"`
}

type UserResponse struct {
	ID           uuid.UUID         `json:"id"`
	Email        string            `json:"email"`
	FirstName    string            `json:"firstName"`
	LastName     string            `json:"lastName"`
	Organisation string            `json:"organisation"`
	Avatar       string            `json:"avatar"`
	UserRole     models.UserRole   `json:"userRole"`
	Status       models.UserStatus `json:"status"`
}

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Organisation: u.Organisation,
		Avatar:       u.Avatar,
		UserRole:     u.UserRole,
		Status:       u.Status,
	}
}

type ProfileResponse struct {
	UserResponse
	PhoneNumber    string `json:"phoneNumber"`
	AddressLine1   string `json:"addressLine1"`
	AddressLine2   string `json:"addressLine2"`
	City           string `json:"city"`
	County         string `json:"county"`
	Postcode       string `json:"postcode"`
	Specialisation string `json:"specialisation"`
	Description    string `json:"description"`
}

func NewProfileResponse(u *models.User) ProfileResponse {
	return ProfileResponse{
		UserResponse:   NewUserResponse(u),
		PhoneNumber:    u.PhoneNumber,
		AddressLine1:   u.AddressLine1,
		AddressLine2:   u.AddressLine2,
		City:           u.City,
		County:         u.County,
		Postcode:       u.Postcode,
		Specialisation: u.Specialisation,
		Description:    u.Description,
	}
}

type OrganisationResponse struct {
	Organisation string `json:"organisation"`
	Role         string `json:"organisationRole"`
	Email        string `json:"organisationEmail"`
	PhoneNumber  string `json:"organisationPhoneNumber"`
	AddressLine1 string `json:"organisationAddressLine1"`
	AddressLine2 string `json:"organisationAddressLine2"`
	City         string `json:"organisationCity"`
	County       string `json:"organisationCounty"`
	Postcode     string `json:"organisationPostcode"`
}

func NewOrganisationResponse(u *models.User) OrganisationResponse {
	return OrganisationResponse{
		Organisation: u.Organisation,
		Role:         u.OrganisationRole,
		Email:        u.OrganisationEmail,
		PhoneNumber:  u.OrganisationPhoneNumber,
		AddressLine1: u.OrganisationAddressLine1,
		AddressLine2: u.OrganisationAddressLine2,
		City:         u.OrganisationCity,
		County:       u.OrganisationCounty,
		Postcode:     u.OrganisationPostcode,
	}
}

type SetRoleRequest struct {
	UserRole models.UserRole `json:"userRole"`
}

type UserIDsRequest struct {
	UserIDs []uuid.UUID `json:"userIds"`
}

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
	Redis     string `json:"redis,omitempty"`
}
