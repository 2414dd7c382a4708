package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/desk-booking/internal/model"
	"github.com/iliyamo/desk-booking/internal/utils"
)

func TestAuth_RegisterLoginRefreshLogout(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil)

	s, err := f.auth.Register(ctx, "Jane Doe", " Jane@Company.com ", "password123")
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, s.User.Role)
	assert.Equal(t, "jane@company.com", s.User.Email)

	p, err := utils.ParseAccessToken("test", s.Access.Token)
	require.NoError(t, err)
	assert.Equal(t, s.User.ID, p.UserID)

	_, err = f.auth.Register(ctx, "Jane Again", "jane@company.com", "password123")
	requireKind(t, KindConflict, err)

	_, err = f.auth.Login(ctx, "jane@company.com", "wrong-password")
	requireKind(t, KindUnauthorized, err)
	_, err = f.auth.Login(ctx, "nobody@company.com", "password123")
	requireKind(t, KindUnauthorized, err)

	logged, err := f.auth.Login(ctx, "JANE@company.com", "password123")
	require.NoError(t, err)

	rotated, err := f.auth.Refresh(ctx, logged.Refresh.Raw)
	require.NoError(t, err)
	_, err = f.auth.Refresh(ctx, logged.Refresh.Raw)
	requireKind(t, KindUnauthorized, err)

	require.NoError(t, f.auth.Logout(ctx, nil, rotated.Refresh.Raw))
	_, err = f.auth.Refresh(ctx, rotated.Refresh.Raw)
	requireKind(t, KindUnauthorized, err)

	requireKind(t, KindInvalidInput, f.auth.Logout(ctx, nil, ""))
	pp := model.Principal{UserID: s.User.ID, Role: model.RoleUser}
	require.NoError(t, f.auth.Logout(ctx, &pp, ""))
	_, err = f.auth.Refresh(ctx, s.Refresh.Raw)
	requireKind(t, KindUnauthorized, err)
}

func TestAuth_RegisterValidation(t *testing.T) {
	f := newFixture(nil)
	_, err := f.auth.Register(context.Background(), "J", "not-an-email", "short")
	requireKind(t, KindInvalidInput, err)

	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Len(t, se.Fields, 3)
}

func TestAuth_ListUsers(t *testing.T) {
	f := newFixture(nil)
	f.db.addUser("Alice", model.RoleUser)
	f.db.addUser("Admin", model.RoleAdmin)

	admins, err := f.auth.ListUsers(context.Background(), model.RoleAdmin, "")
	require.NoError(t, err)
	require.Len(t, admins, 1)

	found, err := f.auth.ListUsers(context.Background(), "", "ALI")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Alice", found[0].Name)

	_, err = f.auth.ListUsers(context.Background(), "OWNER", "")
	requireKind(t, KindInvalidInput, err)
}
