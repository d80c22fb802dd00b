package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/vikasavnish/movein/internal/metrics"
	"github.com/vikasavnish/movein/internal/models"
	"github.com/vikasavnish/movein/internal/utils"
)

const tokenTTL = 60 * time.Minute

var (
	ErrUserExists         = errors.New("username or email already taken")
	ErrEmptyPassword      = errors.New("password must be non-empty")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

// ValidationError carries per-field messages for rejected input.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(e.Fields))
}

// AuthService defines the interface for authentication operations
type AuthService interface {
	Signup(ctx context.Context, req models.SignupRequest) (*models.User, error)
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	GenerateToken(user *models.User) (string, error)
	ParseToken(tokenString string) (*models.Claims, error)
}

// authService implements the AuthService interface
type authService struct {
	db        *gorm.DB
	secretKey []byte
}

// NewAuthService creates a new authentication service
func NewAuthService(db *gorm.DB, secretKey []byte) AuthService {
	return &authService{
		db:        db,
		secretKey: secretKey,
	}
}

// Signup hashes the password and stores a new user. The password check runs
// before anything touches the database.
func (s *authService) Signup(ctx context.Context, req models.SignupRequest) (*models.User, error) {
	if req.Password == "" {
		return nil, ErrEmptyPassword
	}
	req.Username = strings.TrimSpace(req.Username)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = strings.TrimSpace(req.Email)
	if fields := utils.Validate(req); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Username:       req.Username,
		HashedPassword: string(hashed),
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&models.User{}).
			Where("username = ? OR email = ?", user.Username, user.Email).
			Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return ErrUserExists
		}
		return tx.Create(&user).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		err = ErrUserExists
	}
	if err != nil {
		return nil, err
	}

	metrics.RecordCreated("users")
	log.Info().Uint("user_id", user.ID).Str("username", user.Username).Msg("user signed up")
	return &user, nil
}

// Authenticate verifies user credentials and returns the user if valid.
// An unknown username and a wrong password produce the same error.
func (s *authService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	var user models.User
	result := s.db.WithContext(ctx).Where("username = ?", username).First(&user)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if result.Error != nil {
		return nil, result.Error
	}

	// Check password
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return &user, nil
}

// GenerateToken creates a bearer token for API clients.
func (s *authService) GenerateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := &models.Claims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

// ParseToken validates a bearer token and returns its claims.
func (s *authService) ParseToken(tokenString string) (*models.Claims, error) {
	claims := &models.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
