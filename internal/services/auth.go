package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/indecor/dreamspace-backend/internal/logger"
	"github.com/indecor/dreamspace-backend/internal/repos"
	"github.com/indecor/dreamspace-backend/internal/requestdata"
	"github.com/indecor/dreamspace-backend/internal/types"
)

type JWTClaims struct {
	jwt.RegisteredClaims
}

// RegisterInput carries the raw registration payload. PasswordConfirm must
// match Password before a user row is created.
type RegisterInput struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password2"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
}

type AuthService interface {
	RegisterUser(ctx context.Context, input RegisterInput) (*types.User, error)
	LoginUser(ctx context.Context, email, password string) (string, string, error)
	RefreshUser(ctx context.Context) (string, string, error)
	LogoutUser(ctx context.Context) error
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetAccessTTL() time.Duration
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	userTokenRepo repos.UserTokenRepo
	jwtSecretKey  string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	userTokenRepo repos.UserTokenRepo,
	jwtSecretKey string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	return &authService{
		db:            db,
		log:           log.With("service", "AuthService"),
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		jwtSecretKey:  jwtSecretKey,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (as *authService) RegisterUser(ctx context.Context, input RegisterInput) (*types.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, NewValidationError("email", "must be a valid email address")
	}
	if len(input.Password) < 8 {
		return nil, NewValidationError("password", "must be at least 8 characters")
	}
	if input.Password != input.PasswordConfirm {
		return nil, NewValidationError("password2", "passwords do not match")
	}
	exists, exErr := as.userRepo.EmailExists(ctx, nil, email)
	if exErr != nil {
		return nil, fmt.Errorf("failed to check email: %w", exErr)
	}
	if exists {
		return nil, NewValidationError("email", "already registered")
	}
	hashed, hErr := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if hErr != nil {
		return nil, fmt.Errorf("failed to hash password: %w", hErr)
	}
	user := &types.User{
		ID:        uuid.New(),
		Email:     email,
		Password:  string(hashed),
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
	}
	if err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, cErr := as.userRepo.Create(ctx, tx, []*types.User{user})
		return cErr
	}); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	as.log.Info("Registered user", "user_id", user.ID)
	return user, nil
}

func (as *authService) LoginUser(ctx context.Context, email, password string) (string, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	users, usErr := as.userRepo.GetByEmails(ctx, nil, []string{email})
	if usErr != nil {
		return "", "", fmt.Errorf("error retrieving user by email: %w", usErr)
	}
	if len(users) == 0 {
		return "", "", fmt.Errorf("invalid email or password")
	}
	user := users[0]
	if hErr := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); hErr != nil {
		return "", "", fmt.Errorf("invalid email or password")
	}

	var accessToken string
	var refreshToken string
	if err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if dErr := as.userTokenRepo.DeleteExpiredForUser(ctx, tx, user.ID); dErr != nil {
			return fmt.Errorf("failed to clear expired tokens: %w", dErr)
		}
		tok, genErr := as.generateAccessToken(user)
		if genErr != nil {
			return fmt.Errorf("failed to generate access token: %w", genErr)
		}
		accessToken = tok
		refreshToken = uuid.New().String()
		userToken := types.UserToken{
			ID:           uuid.New(),
			UserID:       user.ID,
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			ExpiresAt:    time.Now().Add(as.refreshTTL),
		}
		if _, ctErr := as.userTokenRepo.Create(ctx, tx, []*types.UserToken{&userToken}); ctErr != nil {
			return fmt.Errorf("failed to create user token: %w", ctErr)
		}
		return nil
	}); err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

func (as *authService) RefreshUser(ctx context.Context) (string, string, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return "", "", fmt.Errorf("no request data found in context")
	}
	if rd.RefreshToken == "" {
		return "", "", fmt.Errorf("refresh token not found in request data")
	}

	var accessToken string
	var newRefreshToken string
	err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, ftErr := as.userTokenRepo.GetByRefreshToken(ctx, tx, rd.RefreshToken)
		if ftErr != nil {
			return fmt.Errorf("error fetching refresh token: %w", ftErr)
		}
		if existing == nil {
			return fmt.Errorf("unknown refresh token")
		}
		if existing.ExpiresAt.Before(time.Now()) {
			if dErr := as.userTokenRepo.DeleteByIDs(ctx, tx, []uuid.UUID{existing.ID}); dErr != nil {
				as.log.Warn("Failed to delete expired refresh token", "error", dErr)
			}
			return fmt.Errorf("refresh token expired")
		}
		users, uErr := as.userRepo.GetByIDs(ctx, tx, []uuid.UUID{existing.UserID})
		if uErr != nil {
			return fmt.Errorf("failed to load user for refresh: %w", uErr)
		}
		if len(users) == 0 {
			return fmt.Errorf("no user found for the given refresh token")
		}
		user := users[0]
		tok, genErr := as.generateAccessToken(user)
		if genErr != nil {
			return fmt.Errorf("failed to generate access token: %w", genErr)
		}
		accessToken = tok
		newRefreshToken = uuid.New().String()
		newUserToken := types.UserToken{
			ID:           uuid.New(),
			UserID:       user.ID,
			AccessToken:  accessToken,
			RefreshToken: newRefreshToken,
			ExpiresAt:    time.Now().Add(as.refreshTTL),
		}
		if _, cErr := as.userTokenRepo.Create(ctx, tx, []*types.UserToken{&newUserToken}); cErr != nil {
			return fmt.Errorf("failed to create user token: %w", cErr)
		}
		if dErr := as.userTokenRepo.DeleteByIDs(ctx, tx, []uuid.UUID{existing.ID}); dErr != nil {
			return fmt.Errorf("failed to remove old refresh token: %w", dErr)
		}
		return nil
	})
	if err != nil {
		return "", "", err
	}
	return accessToken, newRefreshToken, nil
}

func (as *authService) LogoutUser(ctx context.Context) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return fmt.Errorf("no request data found in context")
	}
	if rd.TokenString == "" {
		return fmt.Errorf("token string in request data empty")
	}
	return as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, ftErr := as.userTokenRepo.GetByAccessToken(ctx, tx, rd.TokenString)
		if ftErr != nil {
			return fmt.Errorf("error finding user token: %w", ftErr)
		}
		if found == nil {
			return nil
		}
		if dErr := as.userTokenRepo.DeleteByIDs(ctx, tx, []uuid.UUID{found.ID}); dErr != nil {
			return fmt.Errorf("error deleting user token: %w", dErr)
		}
		return nil
	})
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

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, fmt.Errorf("empty token")
	}
	parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil {
		return ctx, fmt.Errorf("failed to parse token: %w", err)
	}
	claims, ok := parsedToken.Claims.(*JWTClaims)
	if !ok || !parsedToken.Valid {
		return ctx, fmt.Errorf("invalid or expired token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, fmt.Errorf("invalid user id in token: %w", err)
	}
	var refreshToken string
	found, ftErr := as.userTokenRepo.GetByAccessToken(ctx, nil, tokenString)
	if ftErr != nil {
		return ctx, fmt.Errorf("failed to fetch user token: %w", ftErr)
	}
	if found != nil {
		refreshToken = found.RefreshToken
	}
	rd := &requestdata.RequestData{
		TokenString:  tokenString,
		RefreshToken: refreshToken,
		UserID:       userID,
	}
	return requestdata.WithRequestData(ctx, rd), nil
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}
