package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/auth"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrDeactivatedAccount = errors.New("account is deactivated")
	ErrInvalidToken       = errors.New("invalid or expired refresh token")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
	ErrUserNotFound       = errors.New("user not found")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrMissingFields      = errors.New("email, password, first name and organisation are required")
)

const minPasswordLength = 8

// ResetNotifier delivers password reset links.
type ResetNotifier interface {
	SendPasswordReset(ctx context.Context, user *models.User, link string) error
}

// LogResetNotifier writes reset links to the log. It only does so in
// development; elsewhere the link is dropped and an operator must wire a
// real notifier.
type LogResetNotifier struct {
	Development bool
}

func (n LogResetNotifier) SendPasswordReset(_ context.Context, user *models.User, link string) error {
	if !n.Development {
		slog.Warn("password reset requested but no notifier configured", "user_id", user.ID.String())
		return nil
	}
	slog.Info("password reset link", "user_id", user.ID.String(), "link", link)
	return nil
}

type AuthService struct {
	db       *gorm.DB
	cfg      *config.Config
	sessions *SessionStore
	notifier ResetNotifier
	now      func() time.Time
}

func NewAuthService(db *gorm.DB, cfg *config.Config, sessions *SessionStore, notifier ResetNotifier) *AuthService {
	return &AuthService{
		db:       db,
		cfg:      cfg,
		sessions: sessions,
		notifier: notifier,
		now:      time.Now,
	}
}

func (s *AuthService) SignUp(ctx context.Context, req *dto.SignUpRequest) (*models.User, error) {
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" || strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.Organisation) == "" {
		return nil, ErrMissingFields
	}
	if len(req.Password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Email:        req.Email,
		Password:     string(hash),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Organisation: strings.TrimSpace(req.Organisation),
		Avatar:       req.Avatar,
		UserRole:     models.RoleStandardUser,
		Status:       models.StatusActive,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &user, nil
}

// SignIn checks credentials, then account status, records the login and
// issues a token pair. Unknown email, missing hash and wrong password are
// indistinguishable; a deactivated account is reported separately.
func (s *AuthService) SignIn(ctx context.Context, req *dto.SignInRequest) (*dto.AuthResponse, error) {
	db := s.db.WithContext(ctx)

	var user models.User
	if err := db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to load user: %w", err)
		}
		metrics.LoginsTotal.WithLabelValues("invalid").Inc()
		return nil, ErrInvalidCredentials
	}

	if user.Password == "" {
		metrics.LoginsTotal.WithLabelValues("invalid").Inc()
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		metrics.LoginsTotal.WithLabelValues("invalid").Inc()
		return nil, ErrInvalidCredentials
	}
	if user.Status != models.StatusActive {
		metrics.LoginsTotal.WithLabelValues("deactivated").Inc()
		return nil, ErrDeactivatedAccount
	}

	if err := RecordUsage(db, &user, "Logged in", nil); err != nil {
		return nil, err
	}

	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	return s.generateTokenPair(db, &user)
}

func (s *AuthService) Refresh(ctx context.Context, req *dto.RefreshRequest) (*dto.AuthResponse, error) {
	db := s.db.WithContext(ctx)
	tokenHash := hashToken(req.RefreshToken)

	var stored models.RefreshToken
	if err := db.Where("token_hash = ? AND revoked = ?", tokenHash, false).First(&stored).Error; err != nil {
		return nil, ErrInvalidToken
	}

	if err := db.Model(&stored).Update("revoked", true).Error; err != nil {
		return nil, fmt.Errorf("failed to rotate refresh token: %w", err)
	}
	if s.now().After(stored.ExpiresAt) {
		return nil, ErrInvalidToken
	}

	var user models.User
	if err := db.First(&user, "id = ?", stored.UserID).Error; err != nil {
		return nil, ErrInvalidToken
	}
	if user.Status != models.StatusActive {
		return nil, ErrDeactivatedAccount
	}

	return s.generateTokenPair(db, &user)
}

// Logout revokes the refresh token and every access token issued so far.
func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID, req *dto.LogoutRequest) error {
	db := s.db.WithContext(ctx)
	if req.RefreshToken != "" {
		if err := db.Model(&models.RefreshToken{}).
			Where("token_hash = ? AND user_id = ?", hashToken(req.RefreshToken), userID).
			Update("revoked", true).Error; err != nil {
			return fmt.Errorf("failed to revoke refresh token: %w", err)
		}
	}
	return s.sessions.RevokeUser(ctx, userID, s.now())
}

func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, req *dto.ChangePasswordRequest) error {
	if len(req.NewPassword) < minPasswordLength {
		return ErrWeakPassword
	}

	db := s.db.WithContext(ctx)
	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		return ErrUserNotFound
	}
	if user.Password == "" || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)) != nil {
		return ErrInvalidCredentials
	}

	return s.setPassword(ctx, &user, req.NewPassword, "Changed password")
}

// RequestPasswordReset stores a one-hour reset token and hands the link to
// the notifier. Unknown emails succeed silently.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	db := s.db.WithContext(ctx)
	var user models.User
	if err := db.Where("email = ?", strings.TrimSpace(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("failed to load user: %w", err)
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}
	token := hex.EncodeToString(raw)
	tokenHash := hashToken(token)
	expiry := s.now().Add(s.cfg.PasswordResetExpiry)

	if err := db.Model(&user).Updates(map[string]interface{}{
		"reset_token_hash":   tokenHash,
		"reset_token_expiry": expiry,
	}).Error; err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	link := strings.TrimSuffix(s.cfg.PublicBaseURL, "/") + "/auth/reset-password/" + token
	return s.notifier.SendPasswordReset(ctx, &user, link)
}

func (s *AuthService) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error {
	if req.Token == "" {
		return ErrInvalidResetToken
	}
	if len(req.NewPassword) < minPasswordLength {
		return ErrWeakPassword
	}

	var user models.User
	err := s.db.WithContext(ctx).
		Where("reset_token_hash = ? AND reset_token_expiry > ?", hashToken(req.Token), s.now()).
		First(&user).Error
	if err != nil {
		return ErrInvalidResetToken
	}

	return s.setPassword(ctx, &user, req.NewPassword, "Reset password")
}

func (s *AuthService) setPassword(ctx context.Context, user *models.User, password, action string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(user).Updates(map[string]interface{}{
			"password":           string(hash),
			"reset_token_hash":   nil,
			"reset_token_expiry": nil,
		}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.RefreshToken{}).Where("user_id = ?", user.ID).Update("revoked", true).Error; err != nil {
			return err
		}
		return RecordUsage(tx, user, action, nil)
	})
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return s.sessions.RevokeUser(ctx, user.ID, s.now())
}

func (s *AuthService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UpdateProfile saves the personal fields present in req. An email change
// must not collide with another account.
func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *dto.UpdateProfileRequest) (*models.User, error) {
	updates := map[string]interface{}{}
	setTrimmed(updates, "first_name", req.FirstName)
	setTrimmed(updates, "last_name", req.LastName)
	setTrimmed(updates, "email", req.Email)
	setTrimmed(updates, "organisation", req.Organisation)
	setTrimmed(updates, "phone_number", req.PhoneNumber)
	setTrimmed(updates, "address_line1", req.AddressLine1)
	setTrimmed(updates, "address_line2", req.AddressLine2)
	setTrimmed(updates, "city", req.City)
	setTrimmed(updates, "county", req.County)
	setTrimmed(updates, "postcode", req.Postcode)
	setTrimmed(updates, "specialisation", req.Specialisation)
	if req.Avatar != nil {
		updates["avatar"] = *req.Avatar
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if email, ok := updates["email"]; ok && email == "" {
		return nil, validationf("email must not be empty")
	}
	return s.updateUser(ctx, userID, updates)
}

// UpdateOrganisation saves the organisation details present in req.
func (s *AuthService) UpdateOrganisation(ctx context.Context, userID uuid.UUID, req *dto.UpdateOrganisationRequest) (*models.User, error) {
	updates := map[string]interface{}{}
	setTrimmed(updates, "organisation", req.Organisation)
	setTrimmed(updates, "organisation_role", req.Role)
	setTrimmed(updates, "organisation_email", req.Email)
	setTrimmed(updates, "organisation_phone_number", req.PhoneNumber)
	setTrimmed(updates, "organisation_address_line1", req.AddressLine1)
	setTrimmed(updates, "organisation_address_line2", req.AddressLine2)
	setTrimmed(updates, "organisation_city", req.City)
	setTrimmed(updates, "organisation_county", req.County)
	setTrimmed(updates, "organisation_postcode", req.Postcode)
	return s.updateUser(ctx, userID, updates)
}

func (s *AuthService) updateUser(ctx context.Context, userID uuid.UUID, updates map[string]interface{}) (*models.User, error) {
	if len(updates) == 0 {
		return s.GetProfile(ctx, userID)
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if email, ok := updates["email"]; ok {
			var taken int64
			if err := tx.Model(&models.User{}).Where("email = ? AND id <> ?", email, userID).Count(&taken).Error; err != nil {
				return fmt.Errorf("failed to check email: %w", err)
			}
			if taken > 0 {
				return ErrEmailTaken
			}
		}
		result := tx.Model(&models.User{}).Where("id = ?", userID).Updates(updates)
		if result.Error != nil {
			return fmt.Errorf("failed to update user: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrUserNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetProfile(ctx, userID)
}

func setTrimmed(updates map[string]interface{}, column string, v *string) {
	if v != nil {
		updates[column] = strings.TrimSpace(*v)
	}
}

func (s *AuthService) generateTokenPair(db *gorm.DB, user *models.User) (*dto.AuthResponse, error) {
	accessToken, err := s.IssueAccessToken(user)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.generateRefreshToken(db, user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.cfg.JWTAccessExpiry.Seconds()),
		User:         dto.NewUserResponse(user),
	}, nil
}

// IssueAccessToken signs the user's current claims.
func (s *AuthService) IssueAccessToken(user *models.User) (string, error) {
	claims := auth.PrincipalFromUser(user).Claims(s.now(), s.cfg.JWTAccessExpiry)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *AuthService) generateRefreshToken(db *gorm.DB, user *models.User) (string, error) {
	rawBytes := make([]byte, 32)
	if _, err := rand.Read(rawBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	rawToken := base64.URLEncoding.EncodeToString(rawBytes)
	record := models.RefreshToken{
		UserID:    user.ID,
		TokenHash: hashToken(rawToken),
		ExpiresAt: s.now().Add(s.cfg.JWTRefreshExpiry),
	}

	if err := db.Create(&record).Error; err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}

	return rawToken, nil
}

// RecordUsage appends an account event to the usage history.
func RecordUsage(db *gorm.DB, user *models.User, action string, metadata map[string]interface{}) error {
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	meta, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to encode usage metadata: %w", err)
	}

	entry := models.UsageHistory{
		Timestamp: time.Now().UTC(),
		UserID:    user.ID,
		UserEmail: user.Email,
		Action:    action,
		Metadata:  datatypes.JSON(meta),
	}
	if err := db.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to record usage: %w", err)
	}
	return nil
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}
