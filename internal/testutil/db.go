// Package testutil provides database fixtures shared by package tests.
package testutil

import (
	"fmt"
	"testing"

	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a private in-memory SQLite database migrated with the
// production model list. A single connection keeps the memory database alive
// and serialises transactions the way a row lock would.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// CreateUser inserts an account with a bcrypt hash of password.
func CreateUser(t *testing.T, db *gorm.DB, email, password string, role models.UserRole, status models.UserStatus) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Email:     email,
		Password:  string(hash),
		FirstName: "Test",
		LastName:  "User",
		UserRole:  role,
		Status:    status,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateChannel inserts a channel with the given slot labels.
func CreateChannel(t *testing.T, db *gorm.DB, id uint, lastEntryID int64, labels ...string) *models.Channel {
	t.Helper()

	ch := &models.Channel{ID: id, Name: fmt.Sprintf("Channel %d", id), LastEntryID: lastEntryID}
	slots := []*string{&ch.Field1, &ch.Field2, &ch.Field3, &ch.Field4, &ch.Field5, &ch.Field6, &ch.Field7, &ch.Field8}
	for i, label := range labels {
		if i < len(slots) {
			*slots[i] = label
		}
	}
	require.NoError(t, db.Create(ch).Error)
	return ch
}
