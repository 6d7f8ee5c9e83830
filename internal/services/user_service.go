package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrInvalidRole   = errors.New("invalid user role")
	ErrNoUsersGiven  = errors.New("userIds must not be empty")
	ErrSelfDemotion  = errors.New("admins cannot change their own role or status")
	ErrUsersNotFound = errors.New("one or more users not found")
)

// UserService administers accounts. Every role or status change revokes the
// affected user's outstanding sessions.
type UserService struct {
	db       *gorm.DB
	sessions *SessionStore
}

func NewUserService(db *gorm.DB, sessions *SessionStore) *UserService {
	return &UserService{db: db, sessions: sessions}
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *UserService) SetRole(ctx context.Context, actor, target uuid.UUID, role models.UserRole) (*models.User, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	if actor == target {
		return nil, ErrSelfDemotion
	}

	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, "id = ?", target).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		previous := user.UserRole
		if err := tx.Model(&user).Update("user_role", role).Error; err != nil {
			return err
		}
		user.UserRole = role
		return RecordUsage(tx, &user, "Role changed", map[string]interface{}{
			"from": previous,
			"to":   role,
			"by":   actor.String(),
		})
	})
	if err != nil {
		return nil, err
	}

	if err := s.sessions.RevokeUser(ctx, user.ID, time.Now()); err != nil {
		return nil, err
	}
	return &user, nil
}

// SetStatus activates or deactivates every listed user.
func (s *UserService) SetStatus(ctx context.Context, actor uuid.UUID, ids []uuid.UUID, status models.UserStatus) (int64, error) {
	if len(ids) == 0 {
		return 0, ErrNoUsersGiven
	}
	for _, id := range ids {
		if id == actor {
			return 0, ErrSelfDemotion
		}
	}

	action := "Activated"
	if status == models.StatusInactive {
		action = "Deactivated"
	}

	var users []models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id IN ?", ids).Find(&users).Error; err != nil {
			return err
		}
		if len(users) != len(uniqueIDs(ids)) {
			return ErrUsersNotFound
		}
		if err := tx.Model(&models.User{}).Where("id IN ?", ids).Update("status", status).Error; err != nil {
			return err
		}
		for i := range users {
			if err := RecordUsage(tx, &users[i], action, map[string]interface{}{"by": actor.String()}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	now := time.Now()
	for _, u := range users {
		if err := s.sessions.RevokeUser(ctx, u.ID, now); err != nil {
			return 0, err
		}
	}
	return int64(len(users)), nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
