package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/domain"
	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/platform/logger"
	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/ports"
)

// ErrInvalidCredentials is returned by Login for an unknown user or a wrong
// password.
var ErrInvalidCredentials = fmt.Errorf("%w: invalid username or password", domain.ErrUnauthenticated)

// Claims is the payload of an access token.
type Claims struct {
	Username    string `json:"username"`
	Role        string `json:"role"`
	ClassroomID string `json:"classroom_id,omitempty"`
	jwt.RegisteredClaims
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      domain.User `json:"user"`
}

// NewUser describes an account to create.
type NewUser struct {
	Username    string             `json:"username" validate:"required,min=3,max=50,alphanum"`
	Password    string             `json:"password" validate:"required,min=8,max=72"`
	FullName    string             `json:"full_name" validate:"max=100"`
	Role        domain.Role        `json:"role" validate:"required,oneof=admin class_president student"`
	ClassroomID domain.ClassroomID `json:"classroom_id" validate:"max=64"`
}

// AuthService authenticates users and issues and verifies HS256 tokens.
type AuthService struct {
	users  ports.UserRepository
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
	log    *logger.Logger
}

// NewAuthService creates the service. now defaults to time.Now and log may
// be nil.
func NewAuthService(users ports.UserRepository, cfg AuthConfig, now func() time.Time, log *logger.Logger) (*AuthService, error) {
	if len(cfg.JWTSecret) < 16 {
		return nil, fmt.Errorf("%w: jwt secret must be at least 16 bytes", domain.ErrInvalidConfiguration)
	}
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = logger.NewNop()
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &AuthService{
		users:  users,
		secret: []byte(cfg.JWTSecret),
		ttl:    ttl,
		issuer: cfg.Issuer,
		now:    now,
		log:    log.With("service", "AuthService"),
	}, nil
}

// Login checks the password against the stored bcrypt hash and issues a
// token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		verr := domain.NewValidationError("login")
		verr.AddError("username and password are required")
		return nil, verr
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.log.Info("login rejected", "username", username, "reason", "unknown user")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.log.Info("login rejected", "username", username, "reason", "wrong password")
		return nil, ErrInvalidCredentials
	}

	token, expires, err := s.IssueToken(user)
	if err != nil {
		return nil, err
	}
	s.log.Info("login succeeded", "username", username, "role", user.Role)
	return &LoginResult{Token: token, ExpiresAt: expires, User: user}, nil
}

// IssueToken signs an access token for user.
func (s *AuthService) IssueToken(user domain.User) (string, time.Time, error) {
	now := s.now()
	expires := now.Add(s.ttl)
	claims := &Claims{
		Username:    user.Username,
		Role:        string(user.Role),
		ClassroomID: string(user.ClassroomID),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expires, nil
}

// ParseToken verifies a token and returns the caller it identifies.
func (s *AuthService) ParseToken(token string) (domain.AuthContext, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return domain.AuthContext{}, &domain.AccessError{Resource: "token", Err: fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)}
	}

	auth := domain.AuthContext{
		UserID:      claims.Subject,
		Username:    claims.Username,
		Role:        domain.Role(claims.Role),
		ClassroomID: domain.ClassroomID(claims.ClassroomID),
	}
	if err := auth.RequireAuthenticated(); err != nil {
		return domain.AuthContext{}, err
	}
	return auth, nil
}

// CreateUser adds an account. Only admins may create accounts, and every
// non-admin account must belong to a classroom.
func (s *AuthService) CreateUser(ctx context.Context, auth domain.AuthContext, in NewUser) (domain.User, error) {
	if err := auth.RequireAdmin("users"); err != nil {
		return domain.User{}, err
	}
	return s.createUser(ctx, in)
}

// Bootstrap creates the first admin account. It is used by the CLI before
// any token exists.
func (s *AuthService) Bootstrap(ctx context.Context, username, password, fullName string) (domain.User, error) {
	return s.createUser(ctx, NewUser{Username: username, Password: password, FullName: fullName, Role: domain.RoleAdmin})
}

func (s *AuthService) createUser(ctx context.Context, in NewUser) (domain.User, error) {
	if err := validateInput("user", in); err != nil {
		return domain.User{}, err
	}
	if in.Role != domain.RoleAdmin && in.ClassroomID == "" {
		verr := domain.NewValidationError("user")
		verr.AddError(fmt.Sprintf("role %s requires a classroom_id", in.Role))
		return domain.User{}, verr
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}
	user, err := s.users.Create(ctx, domain.User{
		Username:     in.Username,
		PasswordHash: string(hash),
		FullName:     in.FullName,
		Role:         in.Role,
		ClassroomID:  in.ClassroomID,
	})
	if err != nil {
		return domain.User{}, err
	}
	s.log.Info("user created", "username", user.Username, "role", user.Role)
	return user, nil
}
