// Package auth holds the session principal and the role checks shared by the
// page guard and the API middleware.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidSession = errors.New("invalid session token")

// Principal is the identity carried by a session token. Claims are embedded
// in the token, so a role or status change only shows up in a new token.
type Principal struct {
	ID           uuid.UUID         `json:"id"`
	Email        string            `json:"email"`
	FirstName    string            `json:"firstName"`
	LastName     string            `json:"lastName"`
	Organisation string            `json:"organisation"`
	Avatar       string            `json:"avatar"`
	Role         models.UserRole   `json:"userRole"`
	Status       models.UserStatus `json:"status"`
	IssuedAt     time.Time         `json:"-"`
}

func PrincipalFromUser(u *models.User) *Principal {
	return &Principal{
		ID:           u.ID,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Organisation: u.Organisation,
		Avatar:       u.Avatar,
		Role:         u.UserRole,
		Status:       u.Status,
	}
}

// Claims renders the principal as JWT claims valid for ttl from now.
func (p *Principal) Claims(now time.Time, ttl time.Duration) jwt.MapClaims {
	return jwt.MapClaims{
		"sub":          p.ID.String(),
		"email":        p.Email,
		"firstName":    p.FirstName,
		"lastName":     p.LastName,
		"organisation": p.Organisation,
		"avatar":       p.Avatar,
		"userRole":     string(p.Role),
		"status":       string(p.Status),
		"iat":          now.Unix(),
		"exp":          now.Add(ttl).Unix(),
	}
}

// PrincipalFromClaims rebuilds a principal from verified token claims.
func PrincipalFromClaims(claims jwt.MapClaims) (*Principal, error) {
	sub, _ := claims["sub"].(string)
	id, err := uuid.Parse(sub)
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject", ErrInvalidSession)
	}

	role, _ := claims["userRole"].(string)
	if !models.UserRole(role).Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidSession, role)
	}

	p := &Principal{
		ID:   id,
		Role: models.UserRole(role),
	}
	p.Email, _ = claims["email"].(string)
	p.FirstName, _ = claims["firstName"].(string)
	p.LastName, _ = claims["lastName"].(string)
	p.Organisation, _ = claims["organisation"].(string)
	p.Avatar, _ = claims["avatar"].(string)
	status, _ := claims["status"].(string)
	p.Status = models.UserStatus(status)

	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		p.IssuedAt = iat.Time
	}
	return p, nil
}

// ParseToken verifies an HS256 session token and returns its principal.
func ParseToken(secret []byte, raw string) (*Principal, error) {
	if raw == "" {
		return nil, ErrInvalidSession
	}
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidSession
	}
	return PrincipalFromClaims(claims)
}
