package services

import (
	"context"
	"testing"

	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/auth"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelVisibility(t *testing.T) {
	db := testutil.NewDB(t)
	channels := NewChannelService(db)
	access := NewAccessService(db)
	ctx := context.Background()

	admin := testutil.CreateUser(t, db, "admin@example.com", "correct-horse", models.RoleAdmin, models.StatusActive)
	viewer := testutil.CreateUser(t, db, "viewer@example.com", "correct-horse", models.RoleStandardUser, models.StatusActive)
	testutil.CreateChannel(t, db, 1001, 0)
	testutil.CreateChannel(t, db, 2002, 0)

	adminP := auth.PrincipalFromUser(admin)
	viewerP := auth.PrincipalFromUser(viewer)

	ids, err := channels.VisibleIDs(ctx, adminP)
	require.NoError(t, err)
	assert.Nil(t, ids)

	list, err := channels.List(ctx, viewerP)
	require.NoError(t, err)
	assert.Empty(t, list)
	_, err = channels.Get(ctx, viewerP, 1001)
	assert.ErrorIs(t, err, ErrChannelNotFound)

	_, err = access.Grant(ctx, admin.ID, &dto.GrantAccessRequest{UserIDs: []uuid.UUID{viewer.ID}, ChannelID: 2002})
	require.NoError(t, err)

	list, err = channels.List(ctx, viewerP)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, uint(2002), list[0].ID)

	ch, err := channels.Get(ctx, viewerP, 2002)
	require.NoError(t, err)
	assert.Equal(t, "Channel 2002", ch.Name)

	list, err = channels.List(ctx, adminP)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestChannelCreate(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewChannelService(db)
	ctx := context.Background()

	ch, err := svc.Create(ctx, &dto.CreateChannelRequest{ID: 3003, Name: " Greenhouse ", Field1: "Temperature", LastEntryID: 42})
	require.NoError(t, err)
	assert.Equal(t, "Greenhouse", ch.Name)
	assert.Equal(t, int64(42), ch.LastEntryID)

	_, err = svc.Create(ctx, &dto.CreateChannelRequest{ID: 3003, Name: "Again"})
	assert.ErrorIs(t, err, ErrChannelExists)

	missingLab := uint(9)
	_, err = svc.Create(ctx, &dto.CreateChannelRequest{ID: 3004, Name: "Orphan", LabID: &missingLab})
	assert.ErrorIs(t, err, ErrLabNotFound)

	_, err = svc.Create(ctx, &dto.CreateChannelRequest{Name: "No id"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.Create(ctx, &dto.CreateChannelRequest{ID: 3005, Name: "Negative", LastEntryID: -1})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestChannelDelete_RemovesDependents(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewChannelService(db)
	alerts := NewAlertService(db)
	thresholds := NewThresholdService(db)
	ctx := context.Background()

	testutil.CreateChannel(t, db, 1001, 0)
	testutil.CreateChannel(t, db, 2002, 0)
	_, err := alerts.Ingest(ctx, alertRequest(1001, "field1"))
	require.NoError(t, err)
	_, err = alerts.Ingest(ctx, alertRequest(2002, "field1"))
	require.NoError(t, err)
	_, err = thresholds.Save(ctx, 1001, []dto.ThresholdInput{bound("field1", 0, 10)})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, 1001))
	assert.ErrorIs(t, svc.Delete(ctx, 1001), ErrChannelNotFound)

	assert.Equal(t, int64(1), countRows(t, db, &models.Channel{}))
	assert.Equal(t, int64(1), countRows(t, db, &models.Alert{}))
	assert.Equal(t, int64(1), countRows(t, db, &models.Feed{}))
	assert.Equal(t, int64(0), countRows(t, db, &models.Threshold{}))
}

func TestAccessGrantAndRemove(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewAccessService(db)
	ctx := context.Background()

	admin := testutil.CreateUser(t, db, "admin@example.com", "correct-horse", models.RoleAdmin, models.StatusActive)
	a := testutil.CreateUser(t, db, "a@example.com", "correct-horse", models.RoleStandardUser, models.StatusActive)
	b := testutil.CreateUser(t, db, "b@example.com", "correct-horse", models.RoleStandardUser, models.StatusActive)
	testutil.CreateChannel(t, db, 1001, 0)

	resp, err := svc.Grant(ctx, admin.ID, &dto.GrantAccessRequest{UserIDs: []uuid.UUID{a.ID}, ChannelID: 1001})
	require.NoError(t, err)
	assert.Equal(t, "Access granted to 1 user(s)", resp.Message)
	require.Len(t, resp.AccessRecords, 1)
	require.NotNil(t, resp.AccessRecords[0].GrantedBy)
	assert.Equal(t, admin.ID, *resp.AccessRecords[0].GrantedBy)

	resp, err = svc.Grant(ctx, admin.ID, &dto.GrantAccessRequest{UserIDs: []uuid.UUID{a.ID, b.ID}, ChannelID: 1001})
	require.NoError(t, err)
	assert.Len(t, resp.AccessRecords, 1)
	assert.Equal(t, []uuid.UUID{a.ID}, resp.AlreadyGranted)

	_, err = svc.Grant(ctx, admin.ID, &dto.GrantAccessRequest{UserIDs: []uuid.UUID{a.ID, b.ID}, ChannelID: 1001})
	assert.ErrorIs(t, err, ErrAlreadyGranted)
	_, err = svc.Grant(ctx, admin.ID, &dto.GrantAccessRequest{UserIDs: []uuid.UUID{a.ID}, ChannelID: 404})
	assert.ErrorIs(t, err, ErrChannelNotFound)
	_, err = svc.Grant(ctx, admin.ID, &dto.GrantAccessRequest{UserIDs: []uuid.UUID{uuid.New()}, ChannelID: 1001})
	assert.ErrorIs(t, err, ErrUsersNotFound)
	_, err = svc.Grant(ctx, admin.ID, &dto.GrantAccessRequest{ChannelID: 1001})
	assert.ErrorIs(t, err, ErrValidation)

	grants, err := svc.ListForUser(ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, grants, 1)

	require.NoError(t, svc.Remove(ctx, a.ID, 1001))
	assert.ErrorIs(t, svc.Remove(ctx, a.ID, 1001), ErrAccessNotFound)
}
