package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"storefront/auth"
	"storefront/database"
	"storefront/models"
)

const bcryptCost = 10

type UserService struct {
	users  database.UserRepository
	tokens database.TokenBlacklist
	issuer *auth.TokenManager
	log    *slog.Logger
	now    func() time.Time
}

func NewUserService(store *database.Store, issuer *auth.TokenManager, log *slog.Logger) *UserService {
	return &UserService{users: store.Users, tokens: store.Tokens, issuer: issuer, log: log, now: time.Now}
}

type Session struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

// Register creates a regular user account.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	return s.create(ctx, name, email, password, models.RoleUser)
}

func (s *UserService) create(ctx context.Context, name, email, password, role string) (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &models.User{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Email:     strings.TrimSpace(email),
		Password:  string(hashed),
		Role:      role,
		CreatedAt: s.now().UTC(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, fmt.Errorf("%w: email already registered", ErrConflict)
		}
		return nil, err
	}
	return u, nil
}

// Login checks the credentials and issues a bearer token.
func (s *UserService) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	}
	if u.IsBlocked {
		return nil, fmt.Errorf("%w: account is blocked", ErrForbidden)
	}

	token, exp, err := s.issuer.Issue(u.ID, u.Role)
	if err != nil {
		return nil, err
	}
	return &Session{User: u, Token: token, ExpiresAt: exp}, nil
}

// Logout revokes the token until it would have expired anyway.
func (s *UserService) Logout(ctx context.Context, token string) error {
	_, exp, err := s.issuer.Parse(token)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	return s.tokens.Revoke(ctx, token, exp)
}

func (s *UserService) Me(ctx context.Context, id auth.Identity) (*models.User, error) {
	u, err := s.users.FindByID(ctx, id.UserID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, missing("user")
	}
	return u, err
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}

func (s *UserService) SetBlocked(ctx context.Context, userID string, blocked bool) (*models.User, error) {
	id, err := parseID(userID, "user")
	if err != nil {
		return nil, err
	}
	u, err := s.users.SetBlocked(ctx, id, blocked)
	if errors.Is(err, database.ErrNotFound) {
		return nil, missing("user")
	}
	return u, err
}

// EnsureAdmin creates the bootstrap admin account unless the email is taken.
func (s *UserService) EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	_, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return err
	}
	if _, err := s.create(ctx, "Admin", email, password, models.RoleAdmin); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "bootstrap admin created", slog.String("email", email))
	return nil
}
