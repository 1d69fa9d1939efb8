package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bitwiseee/superstudy-backend/internal/languages"
	pkgerrors "github.com/bitwiseee/superstudy-backend/internal/pkg/errors"
	"github.com/bitwiseee/superstudy-backend/internal/pkg/logger"
	"github.com/bitwiseee/superstudy-backend/internal/repos"
	"github.com/bitwiseee/superstudy-backend/internal/types"
	"github.com/bitwiseee/superstudy-backend/internal/utils"
)

type JWTClaims struct {
	jwt.RegisteredClaims
}

type AuthService interface {
	RegisterUser(ctx context.Context, user *types.User) error
	LoginUser(ctx context.Context, email, password string) (string, int, *types.User, error)
	ParseToken(tokenString string) (uuid.UUID, error)
}

type authService struct {
	db            *gorm.DB
	userRepo      repos.UserRepo
	profileRepo   repos.UserProfileRepo
	progressRepo  repos.UserProgressRepo
	avatarService AvatarService
	langs         *languages.Registry
	jwtSecretKey  string
	accessTTL     time.Duration
	log           *logger.Logger
}

func NewAuthService(
	db *gorm.DB,
	userRepo repos.UserRepo,
	profileRepo repos.UserProfileRepo,
	progressRepo repos.UserProgressRepo,
	avatarService AvatarService,
	langs *languages.Registry,
	baseLog *logger.Logger,
) AuthService {
	serviceLog := baseLog.With("service", "AuthService")

	secret := utils.GetEnv("JWT_SECRET", "", serviceLog)
	if secret == "" {
		serviceLog.Warn("JWT_SECRET is empty, signing tokens with a development key")
		secret = "insecure-dev-secret"
	}
	ttlSeconds := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, serviceLog)

	return &authService{
		db:            db,
		userRepo:      userRepo,
		profileRepo:   profileRepo,
		progressRepo:  progressRepo,
		avatarService: avatarService,
		langs:         langs,
		jwtSecretKey:  secret,
		accessTTL:     time.Duration(ttlSeconds) * time.Second,
		log:           serviceLog,
	}
}

// RegisterUser creates the account plus its profile and progress rows in one
// transaction. A generated initials avatar is attempted afterwards; failing
// to render one does not fail registration.
func (as *authService) RegisterUser(ctx context.Context, user *types.User) error {
	user.Username = utils.NormalizeUsername(user.Username)
	user.Email = utils.NormalizeEmail(user.Email)

	if vErr := utils.ValidateRegistration(utils.RegistrationInput{
		Username: user.Username,
		Email:    user.Email,
		Password: user.Password,
	}); vErr != nil {
		return fmt.Errorf("%w: %s", pkgerrors.ErrInvalidArgument, vErr.Error())
	}

	taken, err := as.userRepo.UsernameExists(ctx, nil, user.Username)
	if err != nil {
		return fmt.Errorf("failed to check username: %w", err)
	}
	if taken {
		return fmt.Errorf("%w: username already taken", pkgerrors.ErrInvalidArgument)
	}

	used, err := as.userRepo.EmailExists(ctx, nil, user.Email)
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if used {
		return fmt.Errorf("%w: email already registered", pkgerrors.ErrInvalidArgument)
	}

	hashed, hErr := utils.HashPassword(user.Password)
	if hErr != nil {
		return hErr
	}
	user.Password = hashed

	if err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, ucErr := as.userRepo.Create(ctx, tx, user); ucErr != nil {
			return fmt.Errorf("failed to create user: %w", ucErr)
		}
		if _, pcErr := as.profileRepo.Create(ctx, tx, &types.UserProfile{
			UserID:            user.ID,
			PreferredLanguage: as.langs.DefaultCode(),
		}); pcErr != nil {
			return fmt.Errorf("failed to create user profile: %w", pcErr)
		}
		if _, prErr := as.progressRepo.Create(ctx, tx, &types.UserProgress{UserID: user.ID}); prErr != nil {
			return fmt.Errorf("failed to create user progress: %w", prErr)
		}
		return nil
	}); err != nil {
		return err
	}

	if as.avatarService != nil {
		if aErr := as.avatarService.CreateUserAvatar(ctx, nil, user); aErr != nil {
			as.log.Warn("could not generate initials avatar", "user_id", user.ID, "error", aErr)
		}
	}
	return nil
}

func (as *authService) LoginUser(ctx context.Context, email, password string) (string, int, *types.User, error) {
	email = utils.NormalizeEmail(email)

	if vErr := utils.ValidateLogin(email, password); vErr != nil {
		return "", 0, nil, fmt.Errorf("%w: %s", pkgerrors.ErrInvalidArgument, vErr.Error())
	}

	user, err := as.userRepo.GetByEmail(ctx, nil, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", 0, nil, fmt.Errorf("%w: invalid credentials", pkgerrors.ErrUnauthorized)
		}
		return "", 0, nil, fmt.Errorf("failed to load user by email: %w", err)
	}

	if !utils.CheckPassword(user.Password, password) {
		return "", 0, nil, fmt.Errorf("%w: invalid credentials", pkgerrors.ErrUnauthorized)
	}

	token, genErr := as.generateAccessToken(user)
	if genErr != nil {
		return "", 0, nil, fmt.Errorf("failed to generate access token: %w", genErr)
	}
	return token, int(as.accessTTL.Seconds()), user, nil
}

func (as *authService) ParseToken(tokenString string) (uuid.UUID, error) {
	parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", pkgerrors.ErrUnauthorized, err)
	}

	claims, ok := parsedToken.Claims.(*JWTClaims)
	if !ok || !parsedToken.Valid {
		return uuid.Nil, fmt.Errorf("%w: invalid or expired token", pkgerrors.ErrUnauthorized)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid user id in token", pkgerrors.ErrUnauthorized)
	}
	return userID, nil
}

func (as *authService) generateAccessToken(user *types.User) (string, error) {
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}
