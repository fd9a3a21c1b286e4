package services

import (
	"context"
	"errors"
	"time"

	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"taskhub/backend/internal/models"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type AuthService interface {
	Login(ctx context.Context, email, password string) (*models.User, error)
	GenerateToken(ctx context.Context, user *models.User) (string, string, error)
	RefreshToken(ctx context.Context, refreshToken uuid.UUID) (string, string, int64, error)
	Logout(ctx context.Context, refreshToken uuid.UUID) error
}

type AuthServiceImpl struct {
	db              *gorm.DB
	secret          []byte
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
}

func NewAuthService(db *gorm.DB, secret string, accessTokenTTL, refreshTokenTTL time.Duration) *AuthServiceImpl {
	return &AuthServiceImpl{
		db:              db,
		secret:          []byte(secret),
		accessTokenTTL:  accessTokenTTL,
		refreshTokenTTL: refreshTokenTTL,
	}
}

func VerifyPassword(hashedPassword, plainPassword string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainPassword))
	return err == nil
}

func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !VerifyPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// GenerateToken issues a signed access token carrying the user's id and
// global role, plus an opaque refresh token persisted with its expiry.
func (s *AuthServiceImpl) GenerateToken(ctx context.Context, user *models.User) (string, string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"role":    string(user.Role),
		"exp":     time.Now().Add(s.accessTokenTTL).Unix(),
	}
	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	accessTokenString, err := accessToken.SignedString(s.secret)
	if err != nil {
		return "", "", err
	}

	refreshToken := uuid.Must(uuid.NewV4())
	token := models.Token{
		ID:           uuid.Must(uuid.NewV4()),
		UserID:       user.ID,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(s.refreshTokenTTL),
	}
	if err := s.db.WithContext(ctx).Create(&token).Error; err != nil {
		return "", "", err
	}

	return accessTokenString, refreshToken.String(), nil
}

// RefreshToken rotates: the presented refresh token is consumed and a fresh
// access/refresh pair is issued.
func (s *AuthServiceImpl) RefreshToken(ctx context.Context, refreshToken uuid.UUID) (string, string, int64, error) {
	var token models.Token
	err := s.db.WithContext(ctx).
		Where("refresh_token = ? AND expires_at > ?", refreshToken, time.Now()).
		First(&token).Error
	if err != nil {
		return "", "", 0, err
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", token.UserID).Error; err != nil {
		return "", "", 0, err
	}

	accessToken, newRefreshToken, err := s.GenerateToken(ctx, &user)
	if err != nil {
		return "", "", 0, err
	}

	if err := s.db.WithContext(ctx).Delete(&token).Error; err != nil {
		return "", "", 0, err
	}

	return accessToken, newRefreshToken, int64(s.accessTokenTTL.Seconds()), nil
}

func (s *AuthServiceImpl) Logout(ctx context.Context, refreshToken uuid.UUID) error {
	return s.db.WithContext(ctx).
		Where("refresh_token = ?", refreshToken).
		Delete(&models.Token{}).Error
}
