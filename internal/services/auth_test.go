package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bitwiseee/superstudy-backend/internal/languages"
	"github.com/bitwiseee/superstudy-backend/internal/media"
	pkgerrors "github.com/bitwiseee/superstudy-backend/internal/pkg/errors"
	"github.com/bitwiseee/superstudy-backend/internal/pkg/logger"
	"github.com/bitwiseee/superstudy-backend/internal/repos"
	"github.com/bitwiseee/superstudy-backend/internal/types"
)

func newTestAuthService(t *testing.T, avatars AvatarService) (AuthService, *gorm.DB) {
	t.Helper()
	gdb := newTestDB(t)
	log := logger.NewNop()
	langs, err := languages.NewRegistry()
	require.NoError(t, err)

	svc := NewAuthService(
		gdb,
		repos.NewUserRepo(gdb, log),
		repos.NewUserProfileRepo(gdb, log),
		repos.NewUserProgressRepo(gdb, log),
		avatars,
		langs,
		log,
	)
	return svc, gdb
}

func TestRegisterAndLogin(t *testing.T) {
	svc, gdb := newTestAuthService(t, nil)
	ctx := context.Background()

	user := &types.User{
		Username: "Amina",
		Email:    "  Amina@Example.COM ",
		Password: "secret1",
	}
	require.NoError(t, svc.RegisterUser(ctx, user))

	assert.Equal(t, "amina@example.com", user.Email)
	assert.NotEqual(t, "secret1", user.Password, "password must be stored hashed")

	var profile types.UserProfile
	require.NoError(t, gdb.Where("user_id = ?", user.ID).First(&profile).Error)
	assert.Equal(t, "en", profile.PreferredLanguage)

	var progress types.UserProgress
	require.NoError(t, gdb.Where("user_id = ?", user.ID).First(&progress).Error)
	assert.Equal(t, 0, progress.Points)

	token, expiresIn, loggedIn, err := svc.LoginUser(ctx, "amina@example.com", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, 3600, expiresIn)
	assert.Equal(t, user.ID, loggedIn.ID)

	userID, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	svc, _ := newTestAuthService(t, nil)
	ctx := context.Background()

	first := &types.User{Username: "kofi", Email: "kofi@example.com", Password: "secret1"}
	require.NoError(t, svc.RegisterUser(ctx, first))

	sameName := &types.User{Username: "kofi", Email: "other@example.com", Password: "secret1"}
	err := svc.RegisterUser(ctx, sameName)
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrInvalidArgument)
	assert.Contains(t, err.Error(), "username already taken")

	sameEmail := &types.User{Username: "kofi2", Email: "KOFI@example.com", Password: "secret1"}
	err = svc.RegisterUser(ctx, sameEmail)
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrInvalidArgument)
	assert.Contains(t, err.Error(), "email already registered")
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestAuthService(t, nil)
	ctx := context.Background()

	err := svc.RegisterUser(ctx, &types.User{Username: "ada", Email: "ada@example.com", Password: "short"})
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrInvalidArgument)

	err = svc.RegisterUser(ctx, &types.User{Username: "", Email: "ada@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, pkgerrors.ErrInvalidArgument)

	err = svc.RegisterUser(ctx, &types.User{Username: "ada", Email: "not-an-email", Password: "secret1"})
	assert.ErrorIs(t, err, pkgerrors.ErrInvalidArgument)
}

func TestLoginFailures(t *testing.T) {
	svc, _ := newTestAuthService(t, nil)
	ctx := context.Background()

	user := &types.User{Username: "zuri", Email: "zuri@example.com", Password: "secret1"}
	require.NoError(t, svc.RegisterUser(ctx, user))

	_, _, _, err := svc.LoginUser(ctx, "zuri@example.com", "wrong-password")
	assert.ErrorIs(t, err, pkgerrors.ErrUnauthorized)

	_, _, _, err = svc.LoginUser(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, pkgerrors.ErrUnauthorized)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	svc, _ := newTestAuthService(t, nil)

	_, err := svc.ParseToken("not-a-jwt")
	assert.ErrorIs(t, err, pkgerrors.ErrUnauthorized)
}

func TestRegisterGeneratesAvatar(t *testing.T) {
	gdb := newTestDB(t)
	log := logger.NewNop()
	langs, err := languages.NewRegistry()
	require.NoError(t, err)

	store, err := media.NewStore(t.TempDir(), log)
	require.NoError(t, err)

	userRepo := repos.NewUserRepo(gdb, log)
	avatars := NewAvatarService(store, userRepo, log)
	svc := NewAuthService(
		gdb,
		userRepo,
		repos.NewUserProfileRepo(gdb, log),
		repos.NewUserProgressRepo(gdb, log),
		avatars,
		langs,
		log,
	)

	user := &types.User{
		Username:  "tayo",
		Email:     "tayo@example.com",
		Password:  "secret1",
		FirstName: "Tayo",
		LastName:  "Adeyemi",
	}
	require.NoError(t, svc.RegisterUser(context.Background(), user))

	require.NotEmpty(t, user.AvatarPath)
	assert.True(t, strings.HasPrefix(user.AvatarPath, "avatars/"), "got %q", user.AvatarPath)
	assert.True(t, strings.HasPrefix(user.AvatarURL, "/media/avatars/"), "got %q", user.AvatarURL)

	_, err = os.Stat(filepath.Join(store.Root(), filepath.FromSlash(user.AvatarPath)))
	require.NoError(t, err)

	stored, err := userRepo.GetByID(context.Background(), nil, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.AvatarPath, stored.AvatarPath)
}
