// Package auth supplies the identity collaborator: user registration,
// credential checks and HS256 access tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"pharmascout/internal/store"
)

// ErrInvalidCredentials covers both unknown emails and wrong passwords so
// callers cannot probe which one it was
var ErrInvalidCredentials = errors.New("incorrect email or password")

const accessTokenExpiry = 30 * time.Minute

// Identity is the authenticated caller handed to the evaluation entry points
type Identity struct {
	UserID string
	Email  string
}

// Service handles registration, login and token validation
type Service struct {
	store      *store.Store
	signingKey []byte
	issuer     string
}

// NewService creates an auth service backed by the given store
func NewService(st *store.Store, jwtSecret string) *Service {
	return &Service{
		store:      st,
		signingKey: []byte(jwtSecret),
		issuer:     "pharmascout",
	}
}

type claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// Register creates a new user account with a bcrypt-hashed password
func (s *Service) Register(ctx context.Context, email, password, firstName, lastName string) (*store.User, error) {
	if _, err := s.store.UserByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("email already registered")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := store.User{
		ID:           uuid.NewString(),
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: string(hash),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login verifies credentials and issues an access token
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.store.UserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", fmt.Errorf("lookup user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}
	return s.generateToken(user)
}

func (s *Service) generateToken(user *store.User) (string, error) {
	now := time.Now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(accessTokenExpiry)),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
		Email: user.Email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses an access token and returns the caller identity
func (s *Service) ValidateToken(tokenString string) (*Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.signingKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	c, ok := token.Claims.(*claims)
	if !ok {
		return nil, fmt.Errorf("unexpected claims type")
	}
	return &Identity{UserID: c.Subject, Email: c.Email}, nil
}
