package services

import (
	"context"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/auth"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetRole(t *testing.T) {
	db := testutil.NewDB(t)
	store, _ := newSessionStore(t)
	svc := NewUserService(db, store)
	ctx := context.Background()

	admin := testutil.CreateUser(t, db, "admin@example.com", "correct-horse", models.RoleAdmin, models.StatusActive)
	user := testutil.CreateUser(t, db, "user@example.com", "correct-horse", models.RoleStandardUser, models.StatusActive)
	issued := time.Now().Add(-time.Minute)

	updated, err := svc.SetRole(ctx, admin.ID, user.ID, models.RoleSuperUser)
	require.NoError(t, err)
	assert.Equal(t, models.RoleSuperUser, updated.UserRole)

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, "id = ?", user.ID).Error)
	assert.Equal(t, models.RoleSuperUser, reloaded.UserRole)

	revoked, err := store.IsRevoked(ctx, &auth.Principal{ID: user.ID, IssuedAt: issued})
	require.NoError(t, err)
	assert.True(t, revoked, "tokens carrying the old role must be rejected")

	var usage models.UsageHistory
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&usage).Error)
	assert.Equal(t, "Role changed", usage.Action)

	_, err = svc.SetRole(ctx, admin.ID, user.ID, models.UserRole("ROOT"))
	assert.ErrorIs(t, err, ErrInvalidRole)
	_, err = svc.SetRole(ctx, admin.ID, admin.ID, models.RoleStandardUser)
	assert.ErrorIs(t, err, ErrSelfDemotion)
	_, err = svc.SetRole(ctx, admin.ID, uuid.New(), models.RoleStandardUser)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSetStatus(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewUserService(db, nil)
	ctx := context.Background()

	admin := testutil.CreateUser(t, db, "admin@example.com", "correct-horse", models.RoleAdmin, models.StatusActive)
	a := testutil.CreateUser(t, db, "a@example.com", "correct-horse", models.RoleStandardUser, models.StatusActive)
	b := testutil.CreateUser(t, db, "b@example.com", "correct-horse", models.RoleStandardUser, models.StatusActive)

	n, err := svc.SetStatus(ctx, admin.ID, []uuid.UUID{a.ID, b.ID, a.ID}, models.StatusInactive)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	var inactive int64
	require.NoError(t, db.Model(&models.User{}).Where("status = ?", models.StatusInactive).Count(&inactive).Error)
	assert.Equal(t, int64(2), inactive)

	var actions []string
	require.NoError(t, db.Model(&models.UsageHistory{}).Pluck("action", &actions).Error)
	assert.Equal(t, []string{"Deactivated", "Deactivated"}, actions)

	_, err = svc.SetStatus(ctx, admin.ID, nil, models.StatusActive)
	assert.ErrorIs(t, err, ErrNoUsersGiven)
	_, err = svc.SetStatus(ctx, admin.ID, []uuid.UUID{admin.ID}, models.StatusInactive)
	assert.ErrorIs(t, err, ErrSelfDemotion)
	_, err = svc.SetStatus(ctx, admin.ID, []uuid.UUID{a.ID, uuid.New()}, models.StatusActive)
	assert.ErrorIs(t, err, ErrUsersNotFound)

	require.NoError(t, db.First(a, "id = ?", a.ID).Error)
	assert.Equal(t, models.StatusInactive, a.Status, "a failed batch changes nobody")
}
