package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ikkim/screening-backend/internal/app/model"
	"github.com/ikkim/screening-backend/internal/app/repository"
	"github.com/ikkim/screening-backend/internal/db"
	apperrors "github.com/ikkim/screening-backend/internal/errors"
	"github.com/ikkim/screening-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
}

func newMemoryRevoker() *memoryRevoker {
	return &memoryRevoker{revoked: make(map[string]time.Duration)}
}

func (r *memoryRevoker) RevokeToken(_ context.Context, tokenID string, expiry time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revoked[tokenID] = expiry
	return nil
}

func (r *memoryRevoker) IsTokenRevoked(_ context.Context, tokenID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.revoked[tokenID]
	return ok, nil
}

type memoryPermissionCache struct {
	entries map[uint][]string
	sets    int
	failGet bool
}

func newMemoryPermissionCache() *memoryPermissionCache {
	return &memoryPermissionCache{entries: make(map[uint][]string)}
}

func (c *memoryPermissionCache) Get(_ context.Context, userID uint) ([]string, bool, error) {
	if c.failGet {
		return nil, false, errors.New("cache unavailable")
	}
	permissions, ok := c.entries[userID]
	return permissions, ok, nil
}

func (c *memoryPermissionCache) Set(_ context.Context, userID uint, permissions []string) error {
	c.sets++
	c.entries[userID] = permissions
	return nil
}

func (c *memoryPermissionCache) Invalidate(_ context.Context, userID uint) error {
	delete(c.entries, userID)
	return nil
}

type accountFixture struct {
	auth    AuthService
	users   UserService
	authz   AuthorizationService
	revoker *memoryRevoker
	cache   *memoryPermissionCache
}

func setupAccountTest(t *testing.T) *accountFixture {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	userRepo := repository.NewUserRepository(testDB)
	f := &accountFixture{
		revoker: newMemoryRevoker(),
		cache:   newMemoryPermissionCache(),
	}
	f.authz = NewAuthorizationService(userRepo, f.cache)
	f.users = NewUserService(userRepo, f.authz)
	f.auth = NewAuthService(userRepo, f.revoker, "test-jwt-secret", 15*time.Minute, 7*24*time.Hour)
	return f
}

func TestAuthService_Login(t *testing.T) {
	f := setupAccountTest(t)
	_, err := f.users.CreateUser(CreateUserInput{Username: "analyst", Email: "analyst@example.com", Password: "password123"})
	require.NoError(t, err)

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{"valid credentials", "analyst", "password123", nil},
		{"wrong password", "analyst", "wrongpass", ErrInvalidCredentials},
		{"unknown user", "nobody", "password123", ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, tokens, err := f.auth.Login(tt.username, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
				assert.Nil(t, tokens)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.username, user.Username)
			assert.NotEmpty(t, tokens.AccessToken)
			assert.NotEmpty(t, tokens.RefreshToken)
		})
	}
}

func TestAuthService_ValidateAccessToken(t *testing.T) {
	f := setupAccountTest(t)
	_, err := f.users.CreateUser(CreateUserInput{Username: "analyst", Password: "password123"})
	require.NoError(t, err)

	user, tokens, err := f.auth.Login("analyst", "password123")
	require.NoError(t, err)

	claims, err := f.auth.ValidateAccessToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	_, err = f.auth.ValidateAccessToken(tokens.RefreshToken)
	assert.ErrorIs(t, err, util.ErrInvalidToken)

	_, err = f.auth.ValidateAccessToken("not-a-token")
	assert.Error(t, err)
}

func TestAuthService_LogoutRevokesToken(t *testing.T) {
	f := setupAccountTest(t)
	_, err := f.users.CreateUser(CreateUserInput{Username: "analyst", Password: "password123"})
	require.NoError(t, err)

	_, tokens, err := f.auth.Login("analyst", "password123")
	require.NoError(t, err)
	claims, err := f.auth.ValidateAccessToken(tokens.AccessToken)
	require.NoError(t, err)

	require.NoError(t, f.auth.Logout(claims))
	assert.Contains(t, f.revoker.revoked, claims.ID)
	assert.LessOrEqual(t, f.revoker.revoked[claims.ID], 15*time.Minute)

	_, err = f.auth.ValidateAccessToken(tokens.AccessToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestAuthService_InactiveUserCannotLogin(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	defer db.CleanupTestDB(testDB)

	hash, err := util.HashPassword("password123")
	require.NoError(t, err)
	user := &model.User{Username: "former", PasswordHash: hash, IsActive: true}
	require.NoError(t, testDB.Create(user).Error)
	require.NoError(t, testDB.Model(user).Update("is_active", false).Error)

	auth := NewAuthService(repository.NewUserRepository(testDB), nil, "secret", time.Minute, time.Hour)
	_, _, err = auth.Login("former", "password123")
	assert.ErrorIs(t, err, ErrUserInactive)
}

func TestUserService_CreateUserValidation(t *testing.T) {
	f := setupAccountTest(t)

	_, err := f.users.CreateUser(CreateUserInput{Username: " ", Password: "password123"})
	assert.ErrorIs(t, err, apperrors.ErrFormatViolation)

	_, err = f.users.CreateUser(CreateUserInput{Username: "short", Password: "1234"})
	assert.ErrorIs(t, err, apperrors.ErrFormatViolation)

	user, err := f.users.CreateUser(CreateUserInput{Username: " padded ", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, "padded", user.Username)
	assert.NotEqual(t, "password123", user.PasswordHash)
}

func TestUserService_CreateRole(t *testing.T) {
	f := setupAccountTest(t)

	role, err := f.users.CreateRole("analyst", "reads matches", []model.Permission{
		model.PermViewMatches, model.PermViewMatches, model.PermViewPerson,
	})
	require.NoError(t, err)
	assert.Len(t, role.Permissions, 2)

	_, err = f.users.CreateRole("broken", "", []model.Permission{"drop_tables"})
	assert.ErrorIs(t, err, ErrUnknownPermission)
	assert.ErrorIs(t, err, apperrors.ErrFormatViolation)

	_, err = f.users.CreateRole("", "", nil)
	assert.ErrorIs(t, err, apperrors.ErrFormatViolation)
}

func TestAuthorizationService_HasPermission(t *testing.T) {
	f := setupAccountTest(t)

	user, err := f.users.CreateUser(CreateUserInput{Username: "analyst", Password: "password123"})
	require.NoError(t, err)
	role, err := f.users.CreateRole("analyst", "", []model.Permission{model.PermViewMatches})
	require.NoError(t, err)

	allowed, err := f.authz.HasPermission(user.ID, model.PermViewMatches)
	require.NoError(t, err)
	assert.False(t, allowed)

	// assigning a role drops the cached empty set
	require.NoError(t, f.users.AssignRole(user.ID, role.ID))

	allowed, err = f.authz.HasPermission(user.ID, model.PermViewMatches)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = f.authz.HasPermission(user.ID, model.PermManageConfig)
	require.NoError(t, err)
	assert.False(t, allowed)

	assert.Equal(t, []string{"view_matches"}, f.cache.entries[user.ID])
}

func TestAuthorizationService_CacheFailureFallsBackToDatabase(t *testing.T) {
	f := setupAccountTest(t)

	user, err := f.users.CreateUser(CreateUserInput{Username: "analyst", Password: "password123"})
	require.NoError(t, err)
	role, err := f.users.CreateRole("admin", "", model.AllPermissions)
	require.NoError(t, err)
	require.NoError(t, f.users.AssignRole(user.ID, role.ID))

	f.cache.failGet = true
	allowed, err := f.authz.HasPermission(user.ID, model.PermManageUsers)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestUserService_AssignRoleUnknownTargets(t *testing.T) {
	f := setupAccountTest(t)

	user, err := f.users.CreateUser(CreateUserInput{Username: "analyst", Password: "password123"})
	require.NoError(t, err)

	assert.ErrorIs(t, f.users.AssignRole(user.ID, 999), apperrors.ErrNotFound)

	role, err := f.users.CreateRole("viewer", "", []model.Permission{model.PermViewPerson})
	require.NoError(t, err)
	assert.ErrorIs(t, f.users.AssignRole(999, role.ID), ErrUserNotFound)
}
