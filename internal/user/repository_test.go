package user

import (
	"context"
	"testing"

	"estate_market_backend/internal/common"
	"estate_market_backend/internal/platform/database"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepository(t *testing.T) Repository {
	t.Helper()
	db, err := database.OpenInMemory(&User{})
	require.NoError(t, err)
	return NewGORMRepository(db)
}

func TestRepository_CreateIsIdempotentPerID(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, &User{ID: "uid-1", Email: strPtr("  Jane@Example.com ")})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.Create(ctx, &User{ID: "uid-1"})
	require.NoError(t, err)
	assert.False(t, created)

	u, err := repo.FindByID(ctx, "uid-1")
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", *u.Email)
}

func TestRepository_FindByIDMissing(t *testing.T) {
	repo := setupRepository(t)
	_, err := repo.FindByID(context.Background(), "nobody")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestRepository_RolesAndSettingsRoundTrip(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, &User{
		ID:          "uid-2",
		Roles:       common.StringList{common.RoleAgent},
		Preferences: common.JSONMap{"currency": "USD"},
	})
	require.NoError(t, err)
	require.NoError(t, repo.UpdateFields(ctx, "uid-2", map[string]interface{}{
		"roles": common.StringList{common.RoleAgent, common.RoleAdmin},
	}))

	u, err := repo.FindByID(ctx, "uid-2")
	require.NoError(t, err)
	assert.Equal(t, common.StringList{common.RoleAgent, common.RoleAdmin}, u.Roles)
	assert.Equal(t, "USD", u.Preferences["currency"])
}

func TestRepository_UpdateFieldsMissingUser(t *testing.T) {
	repo := setupRepository(t)
	err := repo.UpdateFields(context.Background(), "ghost", map[string]interface{}{"bio": "x"})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestRepository_List(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		_, err := repo.Create(ctx, &User{ID: id})
		require.NoError(t, err)
	}

	users, total, err := repo.List(ctx, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, users, 2)
}

// Two distinct Firebase accounts must provision two distinct rows.
func TestService_ProvisionsDistinctFirebaseUsers(t *testing.T) {
	svc := newTestService(setupRepository(t))
	ctx := context.Background()

	u1, created1, err := svc.GetOrCreateUserFromFirebaseClaims(ctx, &firebaseauth.Token{
		UID:    "firebase-1",
		Claims: map[string]interface{}{"email": "user1@test.com", "name": "Test User One"},
	})
	require.NoError(t, err)
	u2, created2, err := svc.GetOrCreateUserFromFirebaseClaims(ctx, &firebaseauth.Token{
		UID:    "firebase-2",
		Claims: map[string]interface{}{"email": "user2@test.com", "name": "Test User Two"},
	})
	require.NoError(t, err)

	assert.True(t, created1)
	assert.True(t, created2)
	assert.NotEqual(t, u1.ID, u2.ID)

	again, created, err := svc.GetOrCreateUserFromFirebaseClaims(ctx, &firebaseauth.Token{
		UID:    "firebase-1",
		Claims: map[string]interface{}{"email": "user1@test.com", "name": "Renamed One"},
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "Renamed One", *again.DisplayName)

	profile, err := svc.GetProfile(ctx, "firebase-1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed One", *profile.DisplayName)
}
