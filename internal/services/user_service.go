package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/storage"
)

type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// UserService handles registration and token issuance.
type UserService struct {
	store  storage.UserStore
	tokens *auth.TokenIssuer
}

func NewUserService(store storage.UserStore, tokens *auth.TokenIssuer) *UserService {
	return &UserService{store: store, tokens: tokens}
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (core.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return core.User{}, core.NewValidationError("", core.KindMissingField, "Username, email, and password are required")
	}
	if len(in.Password) > auth.MaxPasswordBytes {
		return core.User{}, core.NewValidationError("password", core.KindInvalidValue,
			fmt.Sprintf("Password must be at most %d bytes long", auth.MaxPasswordBytes))
	}

	if taken, err := s.store.UsernameExists(ctx, in.Username); err != nil {
		return core.User{}, fmt.Errorf("check username: %w", err)
	} else if taken {
		return core.User{}, duplicateUsername()
	}
	if taken, err := s.store.EmailExists(ctx, in.Email); err != nil {
		return core.User{}, fmt.Errorf("check email: %w", err)
	} else if taken {
		return core.User{}, duplicateEmail()
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return core.User{}, fmt.Errorf("hash password: %w", err)
	}
	u := core.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
	}
	if err := s.store.CreateUser(ctx, &u); err != nil {
		if errors.Is(err, core.ErrDuplicate) {
			return core.User{}, s.raceLoser(ctx, in)
		}
		return core.User{}, fmt.Errorf("create user: %w", err)
	}
	slog.InfoContext(ctx, "User registered", "user_id", u.ID, "username", u.Username)
	return u, nil
}

// Login checks the credentials and issues a token pair.
func (s *UserService) Login(ctx context.Context, username, password string) (auth.TokenPair, error) {
	u, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return auth.TokenPair{}, core.ErrInvalidCredentials
		}
		return auth.TokenPair{}, fmt.Errorf("load user: %w", err)
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return auth.TokenPair{}, core.ErrInvalidCredentials
	}
	pair, err := s.tokens.Issue(auth.Principal{UserID: u.ID, Username: u.Username})
	if err != nil {
		return auth.TokenPair{}, fmt.Errorf("issue tokens: %w", err)
	}
	return pair, nil
}

// Refresh exchanges a refresh token for a new access token.
func (s *UserService) Refresh(refreshToken string) (string, error) {
	return s.tokens.Refresh(refreshToken)
}

// raceLoser reports which unique field a concurrent registration took.
func (s *UserService) raceLoser(ctx context.Context, in RegisterInput) error {
	if taken, err := s.store.EmailExists(ctx, in.Email); err == nil && taken {
		if taken, err := s.store.UsernameExists(ctx, in.Username); err == nil && !taken {
			return duplicateEmail()
		}
	}
	return duplicateUsername()
}

func duplicateUsername() error {
	return core.NewValidationError("username", core.KindDuplicateUsername, "Username already exists")
}

func duplicateEmail() error {
	return core.NewValidationError("email", core.KindDuplicateEmail, "Email already exists")
}
