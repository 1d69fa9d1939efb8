package services

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
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
)

func newTestProfileService(t *testing.T) (UserProfileService, *gorm.DB) {
	t.Helper()
	gdb := newTestDB(t)
	log := logger.NewNop()
	store, err := media.NewStore(t.TempDir(), log)
	require.NoError(t, err)
	langs, err := languages.NewRegistry()
	require.NoError(t, err)

	userRepo := repos.NewUserRepo(gdb, log)
	profileRepo := repos.NewUserProfileRepo(gdb, log)
	avatar := NewAvatarService(store, userRepo, log)
	return NewUserProfileService(profileRepo, userRepo, avatar, langs, log), gdb
}

func TestProfileCreatedOnFirstGet(t *testing.T) {
	svc, gdb := newTestProfileService(t)
	user := seedUser(t, gdb, "chidi")

	view, err := svc.Get(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "en", view.Profile.PreferredLanguage)
	assert.Equal(t, "chidi", view.User.Username)

	again, err := svc.Get(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, view.Profile.ID, again.Profile.ID)
}

func TestUpdateLanguage(t *testing.T) {
	svc, gdb := newTestProfileService(t)
	user := seedUser(t, gdb, "adaeze")

	view, displayName, err := svc.UpdateLanguage(context.Background(), user.ID, " YO ")
	require.NoError(t, err)
	assert.Equal(t, "yo", view.Profile.PreferredLanguage)
	assert.Equal(t, "Yoruba", displayName)

	// Unknown code.
	_, _, err = svc.UpdateLanguage(context.Background(), user.ID, "xx")
	require.ErrorIs(t, err, pkgerrors.ErrInvalidArgument)

	// Voiced-only languages cannot be chosen as the profile preference.
	_, _, err = svc.UpdateLanguage(context.Background(), user.ID, "sw")
	require.ErrorIs(t, err, pkgerrors.ErrInvalidArgument)

	view, err = svc.Get(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "yo", view.Profile.PreferredLanguage)
}

func TestUpdateAvatarFromUpload(t *testing.T) {
	svc, gdb := newTestProfileService(t)
	user := seedUser(t, gdb, "emeka")

	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, color.RGBA{R: 30, G: 90, B: 180, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	updated, err := svc.UpdateAvatar(context.Background(), user.ID, buf.Bytes())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(updated.AvatarURL, "/media/avatars/"), updated.AvatarURL)

	_, err = svc.UpdateAvatar(context.Background(), user.ID, []byte("not-an-image"))
	require.ErrorIs(t, err, pkgerrors.ErrInvalidArgument)
}
