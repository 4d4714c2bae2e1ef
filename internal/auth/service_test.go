package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"taplist/internal/shared/config"
	"taplist/internal/users"
	"taplist/pkg/logger"
)

type fakeAuthRepo struct {
	usersByEmail map[string]*users.User
	usersByID    map[string]*users.User
}

func newFakeAuthRepo() *fakeAuthRepo {
	return &fakeAuthRepo{
		usersByEmail: make(map[string]*users.User),
		usersByID:    make(map[string]*users.User),
	}
}

func (r *fakeAuthRepo) CreateUser(ctx context.Context, user *users.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	r.usersByEmail[user.Email] = user
	r.usersByID[user.ID.String()] = user
	return nil
}

func (r *fakeAuthRepo) GetUserByEmail(ctx context.Context, email string) (*users.User, error) {
	user, ok := r.usersByEmail[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (r *fakeAuthRepo) GetUserByID(ctx context.Context, id string) (*users.User, error) {
	user, ok := r.usersByID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (r *fakeAuthRepo) UpdateUserPassword(ctx context.Context, userID string, hashedPassword string) error {
	user, ok := r.usersByID[userID]
	if !ok {
		return ErrUserNotFound
	}
	user.Password = hashedPassword
	return nil
}

func (r *fakeAuthRepo) UpdateLandingPreference(ctx context.Context, userID string, preference string) error {
	user, ok := r.usersByID[userID]
	if !ok {
		return ErrUserNotFound
	}
	user.LandingPreference = preference
	return nil
}

func (r *fakeAuthRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	_, ok := r.usersByEmail[email]
	return ok, nil
}

type fakeClaimer struct {
	calls  []claimCall
	retErr error
}

type claimCall struct {
	anonVisitorID string
	userID        uuid.UUID
	signup        bool
}

func (c *fakeClaimer) ClaimOnAuth(ctx context.Context, anonVisitorID string, userID uuid.UUID, signup bool) error {
	c.calls = append(c.calls, claimCall{anonVisitorID, userID, signup})
	return c.retErr
}

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:           "test-secret",
			JWTExpiresIn:     15 * time.Minute,
			RefreshExpiresIn: 24 * time.Hour,
		},
	}
}

func testLogger() *logger.Logger {
	return &logger.Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func TestRegisterClaimsHistoryOnSignup(t *testing.T) {
	repo := newFakeAuthRepo()
	claimer := &fakeClaimer{}
	svc := NewService(repo, testConfig(), testLogger())
	svc.SetHistoryClaimer(claimer)

	resp, err := svc.Register(context.Background(), &RegisterRequest{
		FirstName:     "Alice",
		LastName:      "Nguyen",
		Email:         "alice@example.com",
		Password:      "secret123",
		AnonVisitorID: "anon-visitor-1",
	})
	require.NoError(t, err)
	require.NotNil(t, resp)

	require.Len(t, claimer.calls, 1)
	assert.Equal(t, "anon-visitor-1", claimer.calls[0].anonVisitorID)
	assert.True(t, claimer.calls[0].signup)
	assert.Equal(t, resp.User.ID, claimer.calls[0].userID.String())

	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Empty(t, resp.ClaimWarning)
	assert.Equal(t, "home", resp.User.LandingPreference)
}

func TestRegisterWithoutAnonIDSkipsClaim(t *testing.T) {
	repo := newFakeAuthRepo()
	claimer := &fakeClaimer{}
	svc := NewService(repo, testConfig(), testLogger())
	svc.SetHistoryClaimer(claimer)

	_, err := svc.Register(context.Background(), &RegisterRequest{
		FirstName: "Bob",
		LastName:  "Okafor",
		Email:     "bob@example.com",
		Password:  "secret123",
	})
	require.NoError(t, err)
	assert.Empty(t, claimer.calls)
}

func TestLoginClaimFailureDoesNotFailLogin(t *testing.T) {
	repo := newFakeAuthRepo()
	hashed, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)
	require.NoError(t, err)
	require.NoError(t, repo.CreateUser(context.Background(), &users.User{
		Email:    "alice@example.com",
		Password: string(hashed),
		Role:     users.RoleUser,
	}))

	claimer := &fakeClaimer{retErr: errors.New("claim store down")}
	svc := NewService(repo, testConfig(), testLogger())
	svc.SetHistoryClaimer(claimer)

	resp, err := svc.Login(context.Background(), &LoginRequest{
		Email:         "alice@example.com",
		Password:      "secret123",
		AnonVisitorID: "anon-visitor-1",
	})
	require.NoError(t, err)
	require.NotNil(t, resp)

	require.Len(t, claimer.calls, 1)
	assert.False(t, claimer.calls[0].signup)
	assert.Contains(t, resp.ClaimWarning, "claim store down")
}

func TestLoginWrongPassword(t *testing.T) {
	repo := newFakeAuthRepo()
	hashed, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)
	require.NoError(t, err)
	require.NoError(t, repo.CreateUser(context.Background(), &users.User{
		Email:    "alice@example.com",
		Password: string(hashed),
	}))

	svc := NewService(repo, testConfig(), testLogger())

	_, err = svc.Login(context.Background(), &LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateTokenRoundTrip(t *testing.T) {
	repo := newFakeAuthRepo()
	svc := NewService(repo, testConfig(), testLogger())

	resp, err := svc.Register(context.Background(), &RegisterRequest{
		FirstName: "Alice",
		LastName:  "Nguyen",
		Email:     "alice@example.com",
		Password:  "secret123",
	})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, "access", claims.Type)
	assert.Equal(t, "USER", claims.Role)

	_, err = svc.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUpdateLandingPreference(t *testing.T) {
	repo := newFakeAuthRepo()
	user := &users.User{Email: "alice@example.com", LandingPreference: "home"}
	require.NoError(t, repo.CreateUser(context.Background(), user))

	svc := NewService(repo, testConfig(), testLogger())

	err := svc.UpdateLandingPreference(context.Background(), user.ID.String(), &UpdateLandingRequest{
		LandingPreference: "list",
	})
	require.NoError(t, err)
	assert.Equal(t, "list", user.LandingPreference)

	err = svc.UpdateLandingPreference(context.Background(), user.ID.String(), &UpdateLandingRequest{
		LandingPreference: "https://evil.example.com",
	})
	assert.Error(t, err)
	assert.Equal(t, "list", user.LandingPreference)
}

func TestLandingResolverAdapter(t *testing.T) {
	repo := newFakeAuthRepo()
	resolver := NewLandingResolverAdapter(repo)

	cases := []struct {
		preference string
		want       string
	}{
		{"home", "/"},
		{"", "/"},
		{"list", "/list"},
		{"/recipes/weekly", "/recipes/weekly"},
	}

	for _, tc := range cases {
		user := &users.User{Email: uuid.NewString() + "@example.com", LandingPreference: tc.preference}
		require.NoError(t, repo.CreateUser(context.Background(), user))

		got, err := resolver.LandingPath(context.Background(), user.ID)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "preference %q", tc.preference)
	}

	_, err := resolver.LandingPath(context.Background(), uuid.New())
	assert.Error(t, err)
}
