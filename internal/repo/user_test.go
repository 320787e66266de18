package repo_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/wanderlogue/backend/internal/domain"
)

func userFixture() domain.User {
	return domain.User{
		Email:        "demo@wanderlogue.com",
		Username:     "demo_user",
		PasswordHash: "$2a$10$hash",
		FirstName:    "Demo",
		LastName:     "User",
	}
}

func TestUserRepo_CreateAndGet(t *testing.T) {
	_, users := newTestRepos(t)
	ctx := context.Background()

	created, err := users.Create(ctx, userFixture())
	require.NoError(t, err)

	byID, err := users.GetByID(ctx, created.ID)
	require.NoError(t, err)
	byEmail, err := users.GetByEmail(ctx, "DEMO@wanderlogue.com")
	require.NoError(t, err)

	assert.Equal(t, created.ID, byID.ID)
	assert.Equal(t, created.ID, byEmail.ID)
	assert.Equal(t, "$2a$10$hash", byID.PasswordHash)
}

func TestUserRepo_Create_DuplicateEmail(t *testing.T) {
	_, users := newTestRepos(t)
	ctx := context.Background()

	_, err := users.Create(ctx, userFixture())
	require.NoError(t, err)

	dup := userFixture()
	dup.Username = "someone_else"
	dup.Email = "Demo@Wanderlogue.com"
	_, err = users.Create(ctx, dup)

	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestUserRepo_GetByEmail_NotFound(t *testing.T) {
	_, users := newTestRepos(t)

	_, err := users.GetByEmail(context.Background(), "nobody@example.com")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserRepo_UpdateProfileAndPassword(t *testing.T) {
	_, users := newTestRepos(t)
	ctx := context.Background()

	created, err := users.Create(ctx, userFixture())
	require.NoError(t, err)

	updated, err := users.UpdateProfile(ctx, created.ID, domain.Profile{FirstName: "Ada", LastName: "L"})
	require.NoError(t, err)
	assert.Equal(t, "Ada", updated.FirstName)

	require.NoError(t, users.UpdatePassword(ctx, created.ID, "new-hash"))
	got, err := users.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", got.PasswordHash)

	assert.ErrorIs(t, users.UpdatePassword(ctx, uuid.New(), "x"), domain.ErrNotFound)
}
