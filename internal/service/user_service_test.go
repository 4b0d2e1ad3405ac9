package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"barriored/internal/model"
	"barriored/internal/moderation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserService() (*UserService, *memUsers, *memSessions) {
	users := newMemUsers()
	sessions := newMemSessions()
	communities := &memCommunities{rows: []model.Community{{ID: communityX, Slug: "la-14", IsActive: true}}}
	return NewUserService(users, sessions, &memLinks{}, communities, newTestIssuer(), UserConfig{}), users, sessions
}

const signupBody = `{"full_name":"Ana Gomez","email":"Ana@Example.com","password":"secreto123","community_id":1}`

func TestSignupAndLogin(t *testing.T) {
	svc, _, _ := newUserService()
	ctx := context.Background()

	user, pair, err := svc.Signup(ctx, []byte(signupBody))
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.Equal(t, moderation.RoleNeighbor, user.Role)
	assert.NotEqual(t, "secreto123", user.Password)
	require.NotNil(t, pair)

	_, _, err = svc.Signup(ctx, []byte(signupBody))
	assert.ErrorIs(t, err, moderation.ErrConflict)

	_, err = svc.Login(ctx, []byte(`{"email":"ana@example.com","password":"otra-clave"}`))
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, []byte(`{"email":"nadie@example.com","password":"secreto123"}`))
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	pair, err = svc.Login(ctx, []byte(`{"email":"ANA@example.com","password":"secreto123"}`))
	require.NoError(t, err)
	actor, err := svc.ResolveActor(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, actor.ID)
}

func TestSignupUnknownCommunity(t *testing.T) {
	svc, _, _ := newUserService()
	_, _, err := svc.Signup(context.Background(), []byte(`{"full_name":"Ana Gomez","email":"ana@example.com","password":"secreto123","community_id":9}`))
	var verr *moderation.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.True(t, verr.Has("community_id"))
}

func TestResolveActorRejectsReplacedSession(t *testing.T) {
	svc, _, _ := newUserService()
	ctx := context.Background()

	_, first, err := svc.Signup(ctx, []byte(signupBody))
	require.NoError(t, err)
	second, err := svc.Login(ctx, []byte(`{"email":"ana@example.com","password":"secreto123"}`))
	require.NoError(t, err)

	_, err = svc.ResolveActor(ctx, first.AccessToken)
	assert.ErrorIs(t, err, moderation.ErrUnauthenticated)
	_, err = svc.ResolveActor(ctx, second.AccessToken)
	assert.NoError(t, err)
	_, err = svc.ResolveActor(ctx, "not-a-token")
	assert.ErrorIs(t, err, moderation.ErrUnauthenticated)
}

func TestRefreshRotates(t *testing.T) {
	svc, _, sessions := newUserService()
	ctx := context.Background()

	user, pair, err := svc.Signup(ctx, []byte(signupBody))
	require.NoError(t, err)

	body := []byte(fmt.Sprintf(`{"refresh_token":%q}`, pair.RefreshToken))
	next, err := svc.Refresh(ctx, body)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)
	assert.Equal(t, next.AccessToken, sessions.access[user.ID])

	// 旧的 refresh token 不能再用
	_, err = svc.Refresh(ctx, body)
	assert.ErrorIs(t, err, moderation.ErrUnauthenticated)

	_, err = svc.ResolveActor(ctx, next.AccessToken)
	require.NoError(t, err)
}

func TestLogout(t *testing.T) {
	svc, _, _ := newUserService()
	ctx := context.Background()

	user, pair, err := svc.Signup(ctx, []byte(signupBody))
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Logout(ctx, moderation.Anonymous), moderation.ErrUnauthenticated)
	require.NoError(t, svc.Logout(ctx, user.Actor()))
	_, err = svc.ResolveActor(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, moderation.ErrUnauthenticated)
}

func TestMagicLinkRedeemOnce(t *testing.T) {
	svc, users, _ := newUserService()
	ctx := context.Background()

	user, err := svc.FindOrCreateByPhone(ctx, phone)
	require.NoError(t, err)
	again, err := svc.FindOrCreateByPhone(ctx, phone)
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
	assert.Len(t, users.rows, 1)

	link, err := svc.GenerateMagicLink(ctx, user.ID)
	require.NoError(t, err)
	assert.Contains(t, link, "/auth/v1/verify?token=")
	token, err := linkToken(link)
	require.NoError(t, err)

	pair, err := svc.RedeemLinkToken(ctx, token)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)

	_, err = svc.RedeemLinkToken(ctx, token)
	assert.ErrorIs(t, err, moderation.ErrUnauthenticated)
}
