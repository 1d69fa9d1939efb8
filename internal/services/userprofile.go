package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bitwiseee/superstudy-backend/internal/languages"
	pkgerrors "github.com/bitwiseee/superstudy-backend/internal/pkg/errors"
	"github.com/bitwiseee/superstudy-backend/internal/pkg/logger"
	"github.com/bitwiseee/superstudy-backend/internal/repos"
	"github.com/bitwiseee/superstudy-backend/internal/types"
)

// ProfileView pairs a profile row with its account for API payloads.
type ProfileView struct {
	Profile *types.UserProfile
	User    *types.User
}

type UserProfileService interface {
	Get(ctx context.Context, userID uuid.UUID) (*ProfileView, error)
	UpdateLanguage(ctx context.Context, userID uuid.UUID, language string) (*ProfileView, string, error)
	UpdateAvatar(ctx context.Context, userID uuid.UUID, raw []byte) (*types.User, error)
}

type userProfileService struct {
	profileRepo   repos.UserProfileRepo
	userRepo      repos.UserRepo
	avatarService AvatarService
	langs         *languages.Registry
	log           *logger.Logger
}

func NewUserProfileService(
	profileRepo repos.UserProfileRepo,
	userRepo repos.UserRepo,
	avatarService AvatarService,
	langs *languages.Registry,
	baseLog *logger.Logger,
) UserProfileService {
	return &userProfileService{
		profileRepo:   profileRepo,
		userRepo:      userRepo,
		avatarService: avatarService,
		langs:         langs,
		log:           baseLog.With("service", "UserProfileService"),
	}
}

// Get loads the caller's profile and account. A missing profile row is
// created on the fly so accounts that predate profiles keep working.
func (ps *userProfileService) Get(ctx context.Context, userID uuid.UUID) (*ProfileView, error) {
	user, err := ps.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	profile, err := ps.getOrCreateProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ProfileView{Profile: profile, User: user}, nil
}

// UpdateLanguage stores a new preferred language and returns the updated
// view plus the language's display name.
func (ps *userProfileService) UpdateLanguage(ctx context.Context, userID uuid.UUID, language string) (*ProfileView, string, error) {
	language = strings.TrimSpace(strings.ToLower(language))
	if !ps.langs.IsProfileLanguage(language) {
		return nil, "", fmt.Errorf("%w: %q is not a valid language choice", pkgerrors.ErrInvalidArgument, language)
	}

	if _, err := ps.getOrCreateProfile(ctx, userID); err != nil {
		return nil, "", err
	}
	if err := ps.profileRepo.UpdateLanguage(ctx, nil, userID, language); err != nil {
		return nil, "", fmt.Errorf("failed to update language preference: %w", err)
	}

	view, err := ps.Get(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	return view, ps.langs.Name(language), nil
}

// UpdateAvatar replaces the caller's avatar with an uploaded image.
func (ps *userProfileService) UpdateAvatar(ctx context.Context, userID uuid.UUID, raw []byte) (*types.User, error) {
	user, err := ps.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	if err := ps.avatarService.UpdateUserAvatarFromImage(ctx, nil, user, raw); err != nil {
		return nil, err
	}
	return user, nil
}

func (ps *userProfileService) getOrCreateProfile(ctx context.Context, userID uuid.UUID) (*types.UserProfile, error) {
	profile, err := ps.profileRepo.GetByUserID(ctx, nil, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return ps.profileRepo.Create(ctx, nil, &types.UserProfile{
		UserID:            userID,
		PreferredLanguage: ps.langs.DefaultCode(),
	})
}
