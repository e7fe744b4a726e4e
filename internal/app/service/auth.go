package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/emirkoc/shortlink/internal/storage"
)

// TokenExp defines the lifetime of issued JWT tokens.
const TokenExp = 24 * time.Hour

// Claims represents the claims included in the JWT token. It embeds the
// RegisteredClaims from the JWT package and adds a custom UserID field.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// Auth realizes the authentication collaborator: register/login verify the
// identity against the user store, BuildJWTString and ParseRawJWT cover the
// token side consumed by middleware and interceptors.
type Auth struct {
	users  storage.UserStore
	secret []byte
}

func NewAuth(users storage.UserStore, secret string) *Auth {
	return &Auth{
		users:  users,
		secret: []byte(secret),
	}
}

// Register creates an account with a bcrypt-hashed password and returns it
// together with a fresh token.
func (a *Auth) Register(ctx context.Context, username, email, password string) (*storage.UserRecord, string, error) {
	if username == "" || email == "" || password == "" {
		return nil, "", ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user, err := a.users.CreateUser(ctx, storage.UserRecord{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		IsActive:     true,
	})
	if errors.Is(err, storage.ErrConflict) {
		return nil, "", ErrUserExists
	}
	if err != nil {
		return nil, "", err
	}

	token, err := a.BuildJWTString(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login verifies the credentials. Unknown users, disabled accounts and
// wrong passwords all map to ErrInvalidCredentials so the response does not
// leak which part failed.
func (a *Auth) Login(ctx context.Context, username, password string) (*storage.UserRecord, string, error) {
	user, err := a.users.FindByUsername(ctx, username)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}

	if !user.IsActive {
		return nil, "", ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := a.BuildJWTString(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Profile returns the account behind an authenticated user ID.
func (a *Auth) Profile(ctx context.Context, userID string) (*storage.UserRecord, error) {
	return a.users.FindUserByID(ctx, userID)
}

// BuildJWTString issues a signed token carrying the user ID.
func (a *Auth) BuildJWTString(userID string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(TokenExp)),
		},
		UserID: userID,
	})

	return token.SignedString(a.secret)
}

// ParseRawJWT validates a token string and returns its claims.
func (a *Auth) ParseRawJWT(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return a.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token or claims")
	}

	return claims, nil
}
