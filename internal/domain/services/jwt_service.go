package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"noticeboard-http-service/internal/domain/models"
	"noticeboard-http-service/internal/infrastructure/config"
)

const tokenIssuer = "noticeboard-http-service"

// InterfaceJWTService issues and checks session tokens and runs the sign-in relay.
type InterfaceJWTService interface {
	GenerateToken(user *models.User) (string, time.Time, error)
	ValidateToken(tokenString string) (*JWTClaims, error)
	SignIn(ctx context.Context, input SignInInput) (*SignInResult, error)
	GetSession(ctx context.Context, tokenString string) (*Session, error)
}

// JWTClaims are the claims carried by a session token.
type JWTClaims struct {
	UserID uint   `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

type SignInInput struct {
	Email    string `json:"email" binding:"required,email,max=191"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Name     string `json:"name" binding:"max=100"`
}

type SignInResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
	Created   bool         `json:"created"`
}

// SessionUser is the user view embedded in a session.
type SessionUser struct {
	ID                uint   `json:"id"`
	Name              string `json:"name"`
	Email             string `json:"email"`
	Image             string `json:"image"`
	OrganisationID    *uint  `json:"organisationId"`
	BuildingComplexID *uint  `json:"buildingComplexId"`
}

// Session is what auth.getSession returns for a valid token.
type Session struct {
	User    SessionUser `json:"user"`
	Expires time.Time   `json:"expires"`
}

type JWTService struct {
	secretKey string
	ttl       time.Duration
	users     InterfaceUserService
	logger    *zap.Logger
}

func NewJWTService(cfg *config.Config, users InterfaceUserService, logger *zap.Logger) InterfaceJWTService {
	return &JWTService{
		secretKey: cfg.JWTSecretKey,
		ttl:       cfg.SessionTTL,
		users:     users,
		logger:    logger,
	}
}

// GenerateToken signs a session token for user.
func (s *JWTService) GenerateToken(user *models.User) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.ttl)

	claims := &JWTClaims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(user.ID),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.secretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ValidateToken verifies the signature and expiry of tokenString.
func (s *JWTService) ValidateToken(tokenString string) (*JWTClaims, error) {
	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secretKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// SignIn checks the password of an existing user, or creates the user on first sign-in.
func (s *JWTService) SignIn(ctx context.Context, input SignInInput) (*SignInResult, error) {
	email := NormalizeEmail(input.Email)
	created := false

	user, err := s.users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, ErrUserNotFound):
		hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		name := strings.TrimSpace(input.Name)
		if name == "" {
			name = strings.SplitN(email, "@", 2)[0]
		}
		user = &models.User{Name: name, Email: email, Password: string(hash)}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, err
		}
		created = true
		s.logger.Info("user created on first sign-in", zap.Uint("user_id", user.ID))
	case err != nil:
		return nil, err
	default:
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
			return nil, ErrPasswordIncorrect
		}
	}

	token, expiresAt, err := s.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	return &SignInResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
		Created:   created,
	}, nil
}

// GetSession returns nil when the token is missing, invalid, expired, or names a deleted user.
func (s *JWTService) GetSession(ctx context.Context, tokenString string) (*Session, error) {
	if tokenString == "" {
		return nil, nil
	}
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, nil
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if errors.Is(err, ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &Session{
		User: SessionUser{
			ID:                user.ID,
			Name:              user.Name,
			Email:             user.Email,
			Image:             user.Image,
			OrganisationID:    user.OrganisationID,
			BuildingComplexID: user.BuildingComplexID,
		},
		Expires: claims.ExpiresAt.Time,
	}, nil
}
