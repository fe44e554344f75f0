package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/almnar0/almeshkat25/internal/apperr"
	"github.com/almnar0/almeshkat25/internal/models"
	"github.com/almnar0/almeshkat25/internal/repository"
	"github.com/almnar0/almeshkat25/internal/service"
)

func TestRegisterAndTokenRoundTrip(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	u, tok, err := e.auth.Register(ctx, service.RegisterInput{
		Name: "Huda", Email: "  Huda@Example.COM ", Password: "secret1", Role: models.RoleClient,
	})
	require.NoError(t, err)
	require.NotEmpty(t, tok)
	assert.Equal(t, "huda@example.com", u.Email)
	assert.True(t, u.Active)
	assert.Empty(t, u.PasswordHash, "responses never carry the hash")

	ident, err := e.auth.Authenticate(tok)
	require.NoError(t, err)
	assert.Equal(t, u.ID, ident.UserID)
	assert.Equal(t, models.RoleClient, ident.Role)
}

func TestRegisterValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, _, err := e.auth.Register(ctx, service.RegisterInput{
		Name: "A", Email: "not-an-email", Password: "123", Role: models.RoleAdmin,
	})
	require.Error(t, err)
	require.True(t, apperr.Is(err, apperr.Validation))
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Contains(t, ae.Fields, "name")
	assert.Contains(t, ae.Fields, "email")
	assert.Contains(t, ae.Fields, "password")
	assert.Contains(t, ae.Fields, "role", "admins cannot self-register")
}

func TestRegisterDuplicateEmailIsCaseInsensitive(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, _, err := e.auth.Register(ctx, service.RegisterInput{
		Name: "First", Email: "dup@example.com", Password: "secret1", Role: models.RoleClient,
	})
	require.NoError(t, err)

	_, _, err = e.auth.Register(ctx, service.RegisterInput{
		Name: "Second", Email: "DUP@example.com", Password: "secret1", Role: models.RoleTechnician,
	})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.DuplicateEmail))
}

func TestLogin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.register(t, "Client", "client@example.com", models.RoleClient)

	u, tok, err := e.auth.Login(ctx, "Client@Example.com", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, tok)
	assert.Empty(t, u.PasswordHash)

	_, _, err = e.auth.Login(ctx, "client@example.com", "wrong")
	assert.True(t, apperr.Is(err, apperr.InvalidCredentials))

	// Unknown email reports the same kind as a bad password.
	_, _, err = e.auth.Login(ctx, "ghost@example.com", "secret1")
	assert.True(t, apperr.Is(err, apperr.InvalidCredentials))
}

func TestLoginDisabledAccount(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, admin := e.register(t, "Admin", "admin@example.com", models.RoleAdmin)
	u, _ := e.register(t, "Client", "client@example.com", models.RoleClient)

	inactive := false
	_, err := e.auth.UpdateUser(ctx, admin, u.ID, service.UserUpdate{Active: &inactive})
	require.NoError(t, err)

	_, _, err = e.auth.Login(ctx, "client@example.com", "secret1")
	assert.True(t, apperr.Is(err, apperr.AccountDisabled))
}

func TestAuthenticateRejectsBadTokens(t *testing.T) {
	e := newEnv(t)

	_, err := e.auth.Authenticate("not.a.token")
	assert.True(t, apperr.Is(err, apperr.InvalidToken))

	other := service.NewAuthService(e.users, e.audit, "different-secret", time.Hour)
	_, tok, err := other.Register(context.Background(), service.RegisterInput{
		Name: "Eve", Email: "eve@example.com", Password: "secret1", Role: models.RoleClient,
	})
	require.NoError(t, err)
	_, err = e.auth.Authenticate(tok)
	assert.True(t, apperr.Is(err, apperr.InvalidToken), "token signed with another secret")
}

func TestUpdateUserPermissions(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, admin := e.register(t, "Admin", "admin@example.com", models.RoleAdmin)
	u, ident := e.register(t, "Client", "client@example.com", models.RoleClient)
	other, _ := e.register(t, "Other", "other@example.com", models.RoleClient)

	// Self-service edits work, but role and active are dropped silently.
	name := "Renamed"
	role := models.RoleAdmin
	inactive := false
	got, err := e.auth.UpdateUser(ctx, ident, u.ID, service.UserUpdate{
		Name: &name, Role: &role, Active: &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, models.RoleClient, got.Role)
	assert.True(t, got.Active)

	// Editing somebody else needs the admin role.
	_, err = e.auth.UpdateUser(ctx, ident, other.ID, service.UserUpdate{Name: &name})
	assert.True(t, apperr.Is(err, apperr.Forbidden))

	// Admins can promote.
	tech := models.RoleTechnician
	got, err = e.auth.UpdateUser(ctx, admin, u.ID, service.UserUpdate{Role: &tech})
	require.NoError(t, err)
	assert.Equal(t, models.RoleTechnician, got.Role)

	bogus := "superuser"
	_, err = e.auth.UpdateUser(ctx, admin, u.ID, service.UserUpdate{Role: &bogus})
	assert.True(t, apperr.Is(err, apperr.Validation))
}

func TestUpdateUserPasswordChange(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u, ident := e.register(t, "Client", "client@example.com", models.RoleClient)

	pw := "brand-new-pass"
	_, err := e.auth.UpdateUser(ctx, ident, u.ID, service.UserUpdate{Password: &pw})
	require.NoError(t, err)

	_, _, err = e.auth.Login(ctx, "client@example.com", "secret1")
	assert.True(t, apperr.Is(err, apperr.InvalidCredentials))
	_, _, err = e.auth.Login(ctx, "client@example.com", pw)
	assert.NoError(t, err)

	short := "123"
	_, err = e.auth.UpdateUser(ctx, ident, u.ID, service.UserUpdate{Password: &short})
	assert.True(t, apperr.Is(err, apperr.Validation))
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	require.NoError(t, service.EnsureAdmin(ctx, e.users, "Admin", "admin@example.com", "admin123"))
	require.NoError(t, service.EnsureAdmin(ctx, e.users, "Another", "another@example.com", "admin123"))

	admins, err := e.users.List(ctx, repository.UserFilter{Role: models.RoleAdmin})
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, "admin@example.com", admins[0].Email)

	_, _, err = e.auth.Login(ctx, "admin@example.com", "admin123")
	assert.NoError(t, err)
}
