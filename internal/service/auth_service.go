package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"go.uber.org/zap"

	"github.com/iliyamo/desk-booking/internal/model"
	"github.com/iliyamo/desk-booking/internal/repository"
	"github.com/iliyamo/desk-booking/internal/utils"
)

// AuthConfig is the subset of configuration the auth flows need.
type AuthConfig struct {
	JWTSecret      string
	AccessTTLMin   int
	RefreshTTLDays int
	BcryptCost     int
}

// Session is the credential pair returned by register, login and refresh.
type Session struct {
	User    model.User
	Access  utils.AccessToken
	Refresh utils.RefreshToken
}

// AuthService registers users and issues tokens.
type AuthService struct {
	cfg    AuthConfig
	users  UserStore
	tokens TokenStore
	log    *zap.Logger
}

func NewAuthService(cfg AuthConfig, users UserStore, tokens TokenStore, log *zap.Logger) *AuthService {
	return &AuthService{cfg: cfg, users: users, tokens: tokens, log: log.Named("auth")}
}

// Register creates a USER account and signs it in.  There is no way to
// register an administrator.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (Session, error) {
	name = strings.TrimSpace(name)
	email = repository.NormalizeEmail(email)
	var fields []FieldError
	if len(name) < 2 {
		fields = append(fields, FieldError{Field: "name", Message: "name must be at least 2 characters"})
	}
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		fields = append(fields, FieldError{Field: "email", Message: "invalid email address"})
	}
	if len(password) < utils.MinPasswordLength {
		fields = append(fields, FieldError{Field: "password", Message: "password must be at least 8 characters"})
	}
	if len(fields) > 0 {
		return Session{}, &Error{Kind: KindInvalidInput, Message: "validation failed", Fields: fields}
	}

	id, err := s.users.Create(ctx, name, email, password, model.RoleUser, s.cfg.BcryptCost)
	if errors.Is(err, repository.ErrEmailExists) {
		return Session{}, conflict("email already registered")
	}
	if err != nil {
		return Session{}, s.fail("create user", err)
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return Session{}, s.fail("load user", err)
	}
	s.log.Info("user registered", zap.Uint64("user_id", id))
	return s.issue(ctx, u)
}

// Login verifies credentials.  Unknown emails and wrong passwords look the
// same to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (Session, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return Session{}, unauthorized("invalid credentials")
	}
	if err != nil {
		return Session{}, s.fail("load user", err)
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return Session{}, unauthorized("invalid credentials")
	}
	return s.issue(ctx, u)
}

// Refresh rotates a refresh token: the presented one is revoked and a new
// pair is issued.
func (s *AuthService) Refresh(ctx context.Context, raw string) (Session, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Session{}, invalid("refresh_token", "refresh_token is required")
	}
	uid, err := s.tokens.Consume(ctx, utils.HashRefreshRaw(raw))
	if errors.Is(err, repository.ErrInvalidToken) {
		return Session{}, unauthorized("invalid refresh token")
	}
	if err != nil {
		return Session{}, s.fail("consume refresh", err)
	}
	u, err := s.users.GetByID(ctx, uid)
	if errors.Is(err, repository.ErrUserNotFound) {
		return Session{}, unauthorized("invalid refresh token")
	}
	if err != nil {
		return Session{}, s.fail("load user", err)
	}
	return s.issue(ctx, u)
}

// Logout revokes one refresh token when raw is given, otherwise every
// refresh token of p.  At least one of the two is required.
func (s *AuthService) Logout(ctx context.Context, p *model.Principal, raw string) error {
	raw = strings.TrimSpace(raw)
	switch {
	case raw != "":
		if _, err := s.tokens.Consume(ctx, utils.HashRefreshRaw(raw)); err != nil {
			if errors.Is(err, repository.ErrInvalidToken) {
				return unauthorized("invalid refresh token")
			}
			return s.fail("revoke refresh", err)
		}
	case p != nil:
		if err := s.tokens.RevokeAllForUser(ctx, p.UserID); err != nil {
			return s.fail("revoke all", err)
		}
	default:
		return invalid("refresh_token", "provide Authorization header or refresh_token")
	}
	return nil
}

// Me returns the account behind p.
func (s *AuthService) Me(ctx context.Context, p model.Principal) (model.User, error) {
	u, err := s.users.GetByID(ctx, p.UserID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return u, unauthorized("account no longer exists")
	}
	if err != nil {
		return u, s.fail("load user", err)
	}
	return u, nil
}

// ListUsers is the admin user directory.
func (s *AuthService) ListUsers(ctx context.Context, role model.Role, search string) ([]model.UserSummary, error) {
	if role != "" && !role.Valid() {
		return nil, invalid("role", "role must be USER or ADMIN")
	}
	out, err := s.users.ListSummaries(ctx, role, search)
	if err != nil {
		return nil, s.fail("list users", err)
	}
	return out, nil
}

func (s *AuthService) issue(ctx context.Context, u model.User) (Session, error) {
	access, err := utils.NewAccessToken(s.cfg.JWTSecret, u.ID, u.Role, s.cfg.AccessTTLMin)
	if err != nil {
		return Session{}, s.fail("sign access token", err)
	}
	refresh, err := utils.NewRefreshToken(s.cfg.RefreshTTLDays)
	if err != nil {
		return Session{}, s.fail("generate refresh token", err)
	}
	if err := s.tokens.Save(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return Session{}, s.fail("store refresh token", err)
	}
	return Session{User: u, Access: access, Refresh: refresh}, nil
}

func (s *AuthService) fail(op string, err error) error {
	s.log.Error(op, zap.Error(err))
	return internal("internal error", err)
}
