package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/qs3c/leaderfirst_server/internal/model"
	"github.com/qs3c/leaderfirst_server/internal/repository"
	"github.com/qs3c/leaderfirst_server/internal/testutil"
)

func TestSeedAdmin_CreateIsIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	users := repository.NewUserRepository(db)

	require.NoError(t, seedAdmin(users, "root@example.com", "supersecret", "Root", false, false, zap.NewNop()))
	require.NoError(t, seedAdmin(users, "root@example.com", "supersecret", "Root", false, false, zap.NewNop()))

	var count int64
	db.Model(&model.User{}).Where("email = ?", "root@example.com").Count(&count)
	assert.Equal(t, int64(1), count)

	user, err := users.GetByEmail("root@example.com")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, user.Role)
}

func TestSeedAdmin_DryRunWritesNothing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	users := repository.NewUserRepository(db)

	require.NoError(t, seedAdmin(users, "dry@example.com", "supersecret", "Root", false, true, zap.NewNop()))

	exists, err := users.ExistsByEmail("dry@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSeedAdmin_ExistingAccount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	users := repository.NewUserRepository(db)
	existing := testutil.TestUser(t, db, testutil.WithEmail("member@example.com"))

	err := seedAdmin(users, "member@example.com", "", "", false, false, zap.NewNop())
	assert.Error(t, err)

	require.NoError(t, seedAdmin(users, "member@example.com", "", "", true, false, zap.NewNop()))
	user, err := users.GetByID(existing.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, user.Role)
}

func TestSeedAdmin_ShortPassword(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	err := seedAdmin(repository.NewUserRepository(db), "short@example.com", "123", "Root", false, false, zap.NewNop())
	assert.Error(t, err)
}
