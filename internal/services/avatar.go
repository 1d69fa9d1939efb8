package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"os"
	"strings"
	"time"

	_ "image/jpeg"
	_ "image/png"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"gorm.io/gorm"

	"github.com/bitwiseee/superstudy-backend/internal/media"
	pkgerrors "github.com/bitwiseee/superstudy-backend/internal/pkg/errors"
	"github.com/bitwiseee/superstudy-backend/internal/pkg/logger"
	"github.com/bitwiseee/superstudy-backend/internal/repos"
	"github.com/bitwiseee/superstudy-backend/internal/types"
	"github.com/bitwiseee/superstudy-backend/internal/utils"
)

const avatarSize = 512

// avatarPalette backs the generated initials avatars; the color is picked
// deterministically from the user id so re-rendering never shifts it.
var avatarPalette = []color.NRGBA{
	{R: 0x1A, G: 0x7A, B: 0x5E, A: 0xFF},
	{R: 0xC0, G: 0x5C, B: 0x21, A: 0xFF},
	{R: 0x2B, G: 0x5D, B: 0xA8, A: 0xFF},
	{R: 0x8E, G: 0x44, B: 0xAD, A: 0xFF},
	{R: 0xB0, G: 0x3A, B: 0x48, A: 0xFF},
	{R: 0x3A, G: 0x6B, B: 0x35, A: 0xFF},
	{R: 0x4A, G: 0x4E, B: 0x69, A: 0xFF},
	{R: 0x94, G: 0x6B, B: 0x2D, A: 0xFF},
}

type AvatarService interface {
	CreateUserAvatar(ctx context.Context, tx *gorm.DB, user *types.User) error
	UpdateUserAvatarFromImage(ctx context.Context, tx *gorm.DB, user *types.User, raw []byte) error
	RenderInitialsAvatar(user *types.User) (bytes.Buffer, error)
}

type avatarService struct {
	store    *media.Store
	userRepo repos.UserRepo
	fontFace font.Face
	log      *logger.Logger
}

// NewAvatarService builds the avatar renderer. AVATAR_FONT points at a TTF
// used for the initials; without one the generated avatar is a plain colored
// disc.
func NewAvatarService(store *media.Store, userRepo repos.UserRepo, baseLog *logger.Logger) AvatarService {
	serviceLog := baseLog.With("service", "AvatarService")

	var face font.Face
	if fontPath := utils.GetEnv("AVATAR_FONT", "", serviceLog); strings.TrimSpace(fontPath) != "" {
		loaded, err := loadFontFace(fontPath, 206)
		if err != nil {
			serviceLog.Warn("could not load avatar font, rendering without initials", "font", fontPath, "error", err)
		} else {
			face = loaded
		}
	}

	return &avatarService{
		store:    store,
		userRepo: userRepo,
		fontFace: face,
		log:      serviceLog,
	}
}

func (as *avatarService) CreateUserAvatar(ctx context.Context, tx *gorm.DB, user *types.User) error {
	buf, err := as.RenderInitialsAvatar(user)
	if err != nil {
		return err
	}
	return as.storeAvatar(ctx, tx, user, buf.Bytes())
}

func (as *avatarService) UpdateUserAvatarFromImage(ctx context.Context, tx *gorm.DB, user *types.User, raw []byte) error {
	if user == nil || user.ID == uuid.Nil {
		return fmt.Errorf("user required")
	}

	processed, err := processUploadedAvatar(raw, avatarSize)
	if err != nil {
		return err
	}
	return as.storeAvatar(ctx, tx, user, processed.Bytes())
}

func (as *avatarService) RenderInitialsAvatar(user *types.User) (bytes.Buffer, error) {
	var buf bytes.Buffer

	dc := gg.NewContext(avatarSize, avatarSize)

	dc.DrawCircle(avatarSize/2, avatarSize/2, avatarSize/2)
	dc.Clip()

	dc.SetColor(avatarPalette[int(user.ID[0])%len(avatarPalette)])
	dc.DrawRectangle(0, 0, avatarSize, avatarSize)
	dc.Fill()

	if as.fontFace != nil {
		initials := avatarInitials(user)
		dc.SetFontFace(as.fontFace)
		tw, th := dc.MeasureString(initials)
		cx, cy := float64(avatarSize)/2, float64(avatarSize)/2
		dc.SetColor(color.White)
		dc.DrawString(initials, cx-tw/2, cy+th/2)
	}

	if err := dc.EncodePNG(&buf); err != nil {
		return buf, fmt.Errorf("failed to encode avatar PNG: %w", err)
	}
	return buf, nil
}

// storeAvatar writes a versioned file, points the user row at it and then
// best-effort removes the previous one.
func (as *avatarService) storeAvatar(ctx context.Context, tx *gorm.DB, user *types.User, data []byte) error {
	oldPath := strings.TrimSpace(user.AvatarPath)

	name := fmt.Sprintf("%s_%d.png", user.ID, time.Now().UnixNano())
	relPath, err := as.store.Save(media.SubdirAvatars, name, data)
	if err != nil {
		return fmt.Errorf("failed to store avatar: %w", err)
	}

	user.AvatarPath = relPath
	user.AvatarURL = as.store.URL(relPath)
	if err := as.userRepo.UpdateAvatar(ctx, tx, user.ID, user.AvatarPath, user.AvatarURL); err != nil {
		return fmt.Errorf("failed to save avatar on user: %w", err)
	}

	if oldPath != "" && oldPath != relPath {
		if err := as.store.Remove(oldPath); err != nil {
			as.log.Warn("failed to delete old avatar", "path", oldPath, "error", err)
		}
	}
	return nil
}

// processUploadedAvatar center-crops the image to a square, resizes it and
// clips it to a circle.
func processUploadedAvatar(raw []byte, size int) (bytes.Buffer, error) {
	var out bytes.Buffer

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return out, fmt.Errorf("%w: not a valid image: %v", pkgerrors.ErrInvalidArgument, err)
	}

	bounds := img.Bounds()
	side := bounds.Dx()
	if bounds.Dy() < side {
		side = bounds.Dy()
	}
	origin := image.Point{
		X: bounds.Min.X + (bounds.Dx()-side)/2,
		Y: bounds.Min.Y + (bounds.Dy()-side)/2,
	}

	cropped := image.NewRGBA(image.Rect(0, 0, side, side))
	draw.Draw(cropped, cropped.Bounds(), img, origin, draw.Src)

	resized := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(resized, resized.Bounds(), cropped, cropped.Bounds(), draw.Over, nil)

	dc := gg.NewContext(size, size)
	dc.DrawCircle(float64(size)/2, float64(size)/2, float64(size)/2)
	dc.Clip()
	dc.DrawImage(resized, 0, 0)

	if err := dc.EncodePNG(&out); err != nil {
		return out, fmt.Errorf("encode png: %w", err)
	}
	return out, nil
}

func avatarInitials(user *types.User) string {
	first := strings.TrimSpace(user.FirstName)
	last := strings.TrimSpace(user.LastName)

	if first == "" && last == "" {
		if name := strings.TrimSpace(user.Username); name != "" {
			return strings.ToUpper(string([]rune(name)[0]))
		}
		return "?"
	}

	initials := ""
	if first != "" {
		initials += strings.ToUpper(string([]rune(first)[0]))
	}
	if last != "" {
		initials += strings.ToUpper(string([]rune(last)[0]))
	}
	return initials
}

func loadFontFace(fontPath string, size float64) (font.Face, error) {
	fontBytes, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read font file: %w", err)
	}
	parsedFont, err := truetype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TTF: %w", err)
	}
	return truetype.NewFace(parsedFont, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	}), nil
}
