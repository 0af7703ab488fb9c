package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/users"
	pkgAuth "github.com/angelmondragon/storefront-backend/pkg/auth"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/security"
)

type stubUserRepository struct {
	byUsername map[string]*models.User
	byEmail    map[string]*models.User
	created    *models.User
	createErr  error
	lookupErr  error
}

func newStubUserRepository() *stubUserRepository {
	return &stubUserRepository{
		byUsername: map[string]*models.User{},
		byEmail:    map[string]*models.User{},
	}
}

func (s *stubUserRepository) add(user *models.User) {
	s.byUsername[user.Username] = user
	s.byEmail[user.Email] = user
}

func (s *stubUserRepository) FindByUsername(_ context.Context, username string) (*models.User, error) {
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	if user, ok := s.byUsername[username]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	if user, ok := s.byEmail[email]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepository) Create(_ context.Context, dto users.CreateUserDTO) (*models.User, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	user := dto.ToModel()
	user.ID = uuid.New()
	user.CreatedAt = time.Now().UTC()
	s.add(user)
	s.created = user
	return user, nil
}

var testJWTConfig = config.JWTConfig{Secret: "secret", Issuer: "storefront", ExpirationMinutes: 30}

func buildTestService(t *testing.T, repo *stubUserRepository) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		JWTConfig:      testJWTConfig,
		PasswordConfig: config.PasswordConfig{BcryptCost: 4},
	})
	require.NoError(t, err)
	return svc
}

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{BcryptCost: 4})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

func TestNewServiceRequiresRepository(t *testing.T) {
	_, err := NewService(ServiceParams{JWTConfig: testJWTConfig})
	require.Error(t, err)
}

func TestRegisterCreatesCustomer(t *testing.T) {
	repo := newStubUserRepository()
	svc := buildTestService(t, repo)
	admin := "ADMIN"

	user, err := svc.Register(context.Background(), RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "Secret@123",
		Role:     &admin,
	})
	require.NoError(t, err)
	require.NotNil(t, repo.created)

	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, enums.RoleCustomer, repo.created.Role)
	assert.NotEqual(t, "Secret@123", repo.created.Password)
	assert.True(t, security.ComparePassword("Secret@123", repo.created.Password))
}

func TestRegisterRejectsPasswordOverBcryptLimit(t *testing.T) {
	repo := newStubUserRepository()
	svc := buildTestService(t, repo)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "Aa1@" + strings.Repeat("x", 80),
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Equal(t, []string{"Password cannot exceed 72 characters"}, typed.Details())
	assert.Nil(t, repo.created)
}

func TestRegisterChecksUsernameBeforeEmail(t *testing.T) {
	repo := newStubUserRepository()
	repo.add(&models.User{ID: uuid.New(), Username: "alice", Email: "alice@example.com"})
	svc := buildTestService(t, repo)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "Secret@123",
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
	assert.Equal(t, "Username already taken", typed.Message())
}

func TestRegisterRejectsTakenEmail(t *testing.T) {
	repo := newStubUserRepository()
	repo.add(&models.User{ID: uuid.New(), Username: "alice", Email: "alice@example.com"})
	svc := buildTestService(t, repo)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Username: "bob",
		Email:    "alice@example.com",
		Password: "Secret@123",
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
	assert.Equal(t, "Email is already registered", typed.Message())
	assert.Nil(t, repo.created)
}

func TestRegisterMapsInsertRace(t *testing.T) {
	repo := newStubUserRepository()
	repo.createErr = errors.New("UNIQUE constraint failed: users.email")
	svc := buildTestService(t, repo)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Username: "bob",
		Email:    "bob@example.com",
		Password: "Secret@123",
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
	assert.Equal(t, "Email is already registered", typed.Message())
}

func TestRegisterLookupFailureIsInternal(t *testing.T) {
	repo := newStubUserRepository()
	repo.lookupErr = errors.New("connection refused")
	svc := buildTestService(t, repo)

	_, err := svc.Register(context.Background(), RegisterRequest{Username: "bob", Email: "bob@example.com", Password: "Secret@123"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInternal))
}

func TestLoginIssuesToken(t *testing.T) {
	repo := newStubUserRepository()
	user := &models.User{
		ID:       uuid.New(),
		Username: "admin",
		Email:    "admin@example.com",
		Password: mustHashPassword(t, "Admin@123"),
		Role:     enums.RoleAdmin,
	}
	repo.add(user)
	svc := buildTestService(t, repo)

	result, err := svc.Login(context.Background(), LoginRequest{Email: "admin@example.com", Password: "Admin@123"})
	require.NoError(t, err)
	require.NotEmpty(t, result.Token.AccessToken)

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, result.Token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, enums.RoleAdmin, claims.Role)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	repo := newStubUserRepository()
	repo.add(&models.User{
		ID:       uuid.New(),
		Username: "alice",
		Email:    "alice@example.com",
		Password: mustHashPassword(t, "Secret@123"),
		Role:     enums.RoleCustomer,
	})
	svc := buildTestService(t, repo)

	_, unknownErr := svc.Login(context.Background(), LoginRequest{Email: "ghost@example.com", Password: "Secret@123"})
	_, wrongErr := svc.Login(context.Background(), LoginRequest{Email: "alice@example.com", Password: "Wrong@1234"})

	for _, err := range []error{unknownErr, wrongErr} {
		typed := pkgerrors.As(err)
		require.NotNil(t, typed)
		assert.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())
		assert.Equal(t, "Invalid credentials", typed.Message())
	}
}
