package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"noticeboard-http-service/internal/domain/models"
)

// memoryUsers is an in-memory InterfaceUserService.
type memoryUsers struct {
	byID   map[uint]*models.User
	nextID uint
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byID: map[uint]*models.User{}, nextID: 1}
}

func (m *memoryUsers) GetByID(_ context.Context, id uint) (*models.User, error) {
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, ErrUserNotFound
}

func (m *memoryUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range m.byID {
		if u.Email == NormalizeEmail(email) {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *memoryUsers) Create(_ context.Context, user *models.User) error {
	user.ID = m.nextID
	m.nextID++
	m.byID[user.ID] = user
	return nil
}

func (m *memoryUsers) UpdateUser(context.Context, uint, UpdateUserInput) (*models.User, error) {
	return nil, nil
}

func (m *memoryUsers) ListEmailsByOrganisation(context.Context, uint) ([]string, error) {
	return nil, nil
}

func newJWTFixture() (*JWTService, *memoryUsers) {
	users := newMemoryUsers()
	return NewJWTService(testConfig(), users, zap.NewNop()).(*JWTService), users
}

func TestSignIn_FirstSignInCreatesUser(t *testing.T) {
	svc, users := newJWTFixture()

	result, err := svc.SignIn(context.Background(), SignInInput{Email: " Manager@Example.com ", Password: "correct-horse"})
	require.NoError(t, err)

	assert.True(t, result.Created)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "manager@example.com", result.User.Email)
	assert.Equal(t, "manager", result.User.Name)
	assert.Nil(t, result.User.OrganisationID)
	require.Len(t, users.byID, 1)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(result.User.Password), []byte("correct-horse")))
}

func TestSignIn_ExistingUser(t *testing.T) {
	svc, _ := newJWTFixture()
	ctx := context.Background()
	_, err := svc.SignIn(ctx, SignInInput{Email: "manager@example.com", Password: "correct-horse", Name: "Sam"})
	require.NoError(t, err)

	result, err := svc.SignIn(ctx, SignInInput{Email: "manager@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.False(t, result.Created)
	assert.Equal(t, "Sam", result.User.Name)

	_, err = svc.SignIn(ctx, SignInInput{Email: "manager@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrPasswordIncorrect)
}

func TestGetSession(t *testing.T) {
	svc, users := newJWTFixture()
	ctx := context.Background()
	user := &models.User{Name: "Sam", Email: "sam@example.com", OrganisationID: uintPtr(9)}
	require.NoError(t, users.Create(ctx, user))

	token, expiresAt, err := svc.GenerateToken(user)
	require.NoError(t, err)

	session, err := svc.GetSession(ctx, token)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, user.ID, session.User.ID)
	assert.Equal(t, uintPtr(9), session.User.OrganisationID)
	assert.WithinDuration(t, expiresAt, session.Expires, time.Second)
}

func TestGetSession_NullForBadTokens(t *testing.T) {
	svc, _ := newJWTFixture()
	ctx := context.Background()

	session, err := svc.GetSession(ctx, "")
	assert.NoError(t, err)
	assert.Nil(t, session)

	session, err = svc.GetSession(ctx, "not-a-token")
	assert.NoError(t, err)
	assert.Nil(t, session)

	// Signed for a user that no longer exists.
	token, _, err := svc.GenerateToken(&models.User{BaseModel: models.BaseModel{ID: 42}, Email: "gone@example.com"})
	require.NoError(t, err)
	session, err = svc.GetSession(ctx, token)
	assert.NoError(t, err)
	assert.Nil(t, session)
}

func TestValidateToken_RejectsOtherSecretAndExpiry(t *testing.T) {
	svc, _ := newJWTFixture()

	claims := &JWTClaims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(svc.secretKey))
	require.NoError(t, err)
	_, err = svc.ValidateToken(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Hour))
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("another-secret-entirely"))
	require.NoError(t, err)
	_, err = svc.ValidateToken(forged)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
