package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csdept/internal/database/dbtest"
	"csdept/internal/pkg/jwt"
)

func setupTestService(t *testing.T) (*Service, Repository) {
	t.Helper()
	db := dbtest.Open(t, &User{})
	repo := NewRepository(db)
	return NewService(repo, jwt.New("test-secret", time.Hour)), repo
}

func TestCreateUserAndLogin(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	u, err := svc.CreateUser(ctx, CreateUserRequest{
		Name: "Office", Email: " Office@CS.example.edu ", Password: "s3cret-pass", Role: RoleManager,
	})
	require.NoError(t, err)
	assert.Equal(t, "office@cs.example.edu", u.Email)
	assert.True(t, u.IsActive)

	res, err := svc.Login(ctx, LoginRequest{Email: "OFFICE@cs.example.edu", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, RoleManager, res.User.Role)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()
	req := CreateUserRequest{Name: "A", Email: "a@cs.example.edu", Password: "password1", Role: RoleAdmin}

	_, err := svc.CreateUser(ctx, req)
	require.NoError(t, err)
	_, err = svc.CreateUser(ctx, req)
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
}

func TestCreateUser_InvalidRole(t *testing.T) {
	svc, _ := setupTestService(t)
	_, err := svc.CreateUser(context.Background(), CreateUserRequest{
		Name: "A", Email: "a@cs.example.edu", Password: "password1", Role: "student",
	})
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestLogin_WrongPasswordAndUnknownEmail(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()
	_, err := svc.CreateUser(ctx, CreateUserRequest{Name: "A", Email: "a@cs.example.edu", Password: "password1", Role: RoleAdmin})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginRequest{Email: "a@cs.example.edu", Password: "nope"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, LoginRequest{Email: "ghost@cs.example.edu", Password: "password1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_InactiveUser(t *testing.T) {
	svc, repo := setupTestService(t)
	ctx := context.Background()
	hash, err := HashPassword("password1")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, &User{Name: "Old", Email: "old@cs.example.edu", PasswordHash: hash, Role: RoleTeacher}))

	_, err = svc.Login(ctx, LoginRequest{Email: "old@cs.example.edu", Password: "password1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_LocksAfterRepeatedFailures(t *testing.T) {
	svc, repo := setupTestService(t)
	ctx := context.Background()
	u, err := svc.CreateUser(ctx, CreateUserRequest{Name: "A", Email: "a@cs.example.edu", Password: "password1", Role: RoleAdmin})
	require.NoError(t, err)

	for i := 1; i < maxFailedLoginAttempts; i++ {
		_, err = svc.Login(ctx, LoginRequest{Email: u.Email, Password: "wrong"})
		require.ErrorIs(t, err, ErrInvalidCredentials)
	}
	_, err = svc.Login(ctx, LoginRequest{Email: u.Email, Password: "wrong"})
	require.ErrorIs(t, err, ErrAccountLocked)

	// Correct password is still refused while locked.
	_, err = svc.Login(ctx, LoginRequest{Email: u.Email, Password: "password1"})
	assert.ErrorIs(t, err, ErrAccountLocked)

	// After the lock expires the counter resets on success.
	svc.now = func() time.Time { return time.Now().Add(lockoutDuration + time.Minute) }
	_, err = svc.Login(ctx, LoginRequest{Email: u.Email, Password: "password1"})
	require.NoError(t, err)

	stored, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.FailedLoginAttempts)
	assert.Nil(t, stored.LockedUntil)
}
