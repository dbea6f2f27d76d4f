package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"tandem/internal/db"
)

func TestPasswordIsHashedBeforeSaving(t *testing.T) {
	repo := NewInMemoryUserRepository()
	service := NewService(repo)

	password := "Password@123"

	_, err := service.Register(context.Background(), "Test User", "test@example.com", password, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	user := repo.users["test@example.com"]
	if user == nil {
		t.Fatalf("user not found")
	}

	if user.Password == password {
		t.Fatalf("password was stored in plain text")
	}
}

func TestRegisterCreatesOwnedHousehold(t *testing.T) {
	repo := NewInMemoryUserRepository()
	service := NewService(repo)

	user, err := service.Register(context.Background(), "Ana", "ana@example.com", "pw", "")
	require.NoError(t, err)

	assert.Equal(t, RoleOwner, user.Role)
	require.NotEmpty(t, user.HouseholdID)
	assert.Equal(t, "Ana's household", repo.households[user.HouseholdID].Name)
}

func TestAddMemberJoinsHousehold(t *testing.T) {
	ctx := context.Background()
	service := NewService(NewInMemoryUserRepository())

	owner, err := service.Register(ctx, "Ana", "ana@example.com", "pw", "Flat 4")
	require.NoError(t, err)

	member, err := service.AddMember(ctx, owner.HouseholdID, "Ben", "ben@example.com", "pw2")
	require.NoError(t, err)
	assert.Equal(t, owner.HouseholdID, member.HouseholdID)
	assert.Equal(t, RoleMember, member.Role)

	_, err = service.AddMember(ctx, owner.HouseholdID, "Ben", "BEN@example.com", "pw2")
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	service := NewService(NewInMemoryUserRepository())

	_, err := service.Register(ctx, "Ana", "ana@example.com", "secret", "")
	require.NoError(t, err)

	user, err := service.Login(ctx, "ana@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "Ana", user.Name)

	_, err = service.Login(ctx, "ana@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = service.Login(ctx, "nobody@example.com", "secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSQLiteUserRepository(t *testing.T) {
	ctx := context.Background()
	conn, err := db.OpenSQLite(ctx, ":memory:", zaptest.NewLogger(t))
	require.NoError(t, err)
	defer conn.Close()

	service := NewService(NewSQLiteUserRepository(conn))

	owner, err := service.Register(ctx, "Ana", "ana@example.com", "secret", "")
	require.NoError(t, err)

	_, err = service.AddMember(ctx, owner.HouseholdID, "Ben", "ben@example.com", "pw")
	require.NoError(t, err)

	user, err := service.Login(ctx, "Ben@Example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, owner.HouseholdID, user.HouseholdID)

	_, err = service.Register(ctx, "Ana", "ana@example.com", "again", "")
	assert.ErrorIs(t, err, ErrEmailExists)
}
