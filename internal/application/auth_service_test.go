package application

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/domain"
	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/ports"
	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/testutils"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time { return c.now }

func newAuthService(t *testing.T) (*AuthService, *testClock) {
	t.Helper()
	clock := &testClock{now: time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)}
	svc, err := NewAuthService(testutils.NewMemoryUsers(), AuthConfig{
		JWTSecret: testSecret,
		TokenTTL:  time.Hour,
		Issuer:    "classroom-cleanliness",
	}, clock.Now, nil)
	require.NoError(t, err)
	return svc, clock
}

func TestNewAuthService_ShortSecret(t *testing.T) {
	_, err := NewAuthService(testutils.NewMemoryUsers(), AuthConfig{JWTSecret: "short"}, nil, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
}

func TestAuthService_LoginRoundTrip(t *testing.T) {
	svc, clock := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Bootstrap(ctx, "admin", "correct-horse", "Admin")
	require.NoError(t, err)
	created, err := svc.CreateUser(ctx, adminAuth, NewUser{
		Username:    "pres7a",
		Password:    "battery-staple",
		FullName:    "Class President",
		Role:        domain.RoleClassPresident,
		ClassroomID: "7A",
	})
	require.NoError(t, err)
	assert.NotEqual(t, "battery-staple", created.PasswordHash)

	res, err := svc.Login(ctx, "pres7a", "battery-staple")
	require.NoError(t, err)
	assert.Equal(t, clock.now.Add(time.Hour), res.ExpiresAt)
	assert.Equal(t, created.ID, res.User.ID)

	auth, err := svc.ParseToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, domain.AuthContext{
		UserID:      created.ID,
		Username:    "pres7a",
		Role:        domain.RoleClassPresident,
		ClassroomID: "7A",
	}, auth)
}

func TestAuthService_LoginFailures(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()
	_, err := svc.Bootstrap(ctx, "admin", "correct-horse", "")
	require.NoError(t, err)

	tests := []struct {
		name     string
		username string
		password string
		wantIs   error
	}{
		{name: "wrong password", username: "admin", password: "nope-nope", wantIs: ErrInvalidCredentials},
		{name: "unknown user", username: "ghost", password: "correct-horse", wantIs: ErrInvalidCredentials},
		{name: "empty", username: " ", password: "", wantIs: domain.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(ctx, tt.username, tt.password)
			assert.ErrorIs(t, err, tt.wantIs)
		})
	}
	assert.ErrorIs(t, ErrInvalidCredentials, domain.ErrUnauthenticated)
}

func TestAuthService_ParseTokenRejects(t *testing.T) {
	svc, clock := newAuthService(t)
	user := domain.User{ID: "u1", Username: "admin", Role: domain.RoleAdmin}
	valid, _, err := svc.IssueToken(user)
	require.NoError(t, err)

	other, err := NewAuthService(testutils.NewMemoryUsers(), AuthConfig{JWTSecret: strings.Repeat("x", 32), Issuer: "classroom-cleanliness"}, clock.Now, nil)
	require.NoError(t, err)
	foreign, _, err := other.IssueToken(user)
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		Role:             "admin",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1", ExpiresAt: jwt.NewNumericDate(clock.now.Add(time.Hour))},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noRole, _, err := svc.IssueToken(domain.User{ID: "u2", Username: "x", Role: "janitor"})
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		skew  time.Duration
	}{
		{name: "garbage", token: "not-a-token"},
		{name: "other secret", token: foreign},
		{name: "alg none", token: unsigned},
		{name: "expired", token: valid, skew: 2 * time.Hour},
		{name: "unknown role", token: noRole},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := clock.now
			clock.now = base.Add(tt.skew)
			defer func() { clock.now = base }()

			_, err := svc.ParseToken(tt.token)
			assert.ErrorIs(t, err, domain.ErrUnauthenticated)
		})
	}

	_, err = svc.ParseToken(valid)
	assert.NoError(t, err)
}

func TestAuthService_CreateUser(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		auth   domain.AuthContext
		in     NewUser
		wantIs error
	}{
		{
			name:   "student cannot create users",
			auth:   student7A,
			in:     NewUser{Username: "bob", Password: "password1", Role: domain.RoleStudent, ClassroomID: "7A"},
			wantIs: domain.ErrForbidden,
		},
		{
			name:   "short password",
			auth:   adminAuth,
			in:     NewUser{Username: "bob", Password: "short", Role: domain.RoleStudent, ClassroomID: "7A"},
			wantIs: domain.ErrInvalidInput,
		},
		{
			name:   "unknown role",
			auth:   adminAuth,
			in:     NewUser{Username: "bob", Password: "password1", Role: "janitor"},
			wantIs: domain.ErrInvalidInput,
		},
		{
			name:   "student without classroom",
			auth:   adminAuth,
			in:     NewUser{Username: "bob", Password: "password1", Role: domain.RoleStudent},
			wantIs: domain.ErrInvalidInput,
		},
		{
			name: "admin creates student",
			auth: adminAuth,
			in:   NewUser{Username: "bob", Password: "password1", Role: domain.RoleStudent, ClassroomID: "7A"},
		},
		{
			name:   "duplicate username",
			auth:   adminAuth,
			in:     NewUser{Username: "bob", Password: "password2", Role: domain.RoleStudent, ClassroomID: "7B"},
			wantIs: ports.ErrDuplicateRecord,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateUser(ctx, tt.auth, tt.in)
			if tt.wantIs == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantIs)
		})
	}
}

func TestClassroomService(t *testing.T) {
	svc := NewClassroomService(testutils.NewMemoryClassrooms(testutils.Classrooms()...))
	ctx := context.Background()

	_, err := svc.Create(ctx, student7A, NewClassroom{Name: "Grade 9 - Molave", GradeLevel: "9"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.Create(ctx, adminAuth, NewClassroom{GradeLevel: "9"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	created, err := svc.Create(ctx, adminAuth, NewClassroom{ID: "9A", Name: "Grade 9 - Molave", GradeLevel: "9", Section: "Molave"})
	require.NoError(t, err)
	assert.Equal(t, domain.ClassroomID("9A"), created.ID)

	_, err = svc.Create(ctx, adminAuth, NewClassroom{ID: "9A", Name: "dup", GradeLevel: "9"})
	assert.ErrorIs(t, err, ports.ErrDuplicateRecord)

	grade7, err := svc.List(ctx, student7B, "7")
	require.NoError(t, err)
	assert.Len(t, grade7, 2)

	got, err := svc.Get(ctx, student7B, "9A")
	require.NoError(t, err)
	assert.Equal(t, "Molave", got.Section)

	_, err = svc.List(ctx, domain.AuthContext{}, "")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}
