package usecase

import (
	"testing"
	"time"

	authdomain "newsbox-backend/internal/auth/domain"
	authdto "newsbox-backend/internal/auth/dto"
	"newsbox-backend/pkg/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	users  map[string]*authdomain.User
	tokens map[string]*authdomain.RefreshToken
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:  make(map[string]*authdomain.User),
		tokens: make(map[string]*authdomain.RefreshToken),
	}
}

func (r *fakeUserRepo) Create(user *authdomain.User) error {
	user.ID = uuid.New().String()
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) FindByEmail(email string) (*authdomain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByID(id string) (*authdomain.User, error) {
	return r.users[id], nil
}

func (r *fakeUserRepo) Update(user *authdomain.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) SaveRefreshToken(token *authdomain.RefreshToken) error {
	r.tokens[token.Token] = token
	return nil
}

func (r *fakeUserRepo) FindRefreshToken(token string) (*authdomain.RefreshToken, error) {
	return r.tokens[token], nil
}

func (r *fakeUserRepo) DeleteRefreshToken(token string) error {
	delete(r.tokens, token)
	return nil
}

func (r *fakeUserRepo) DeleteRefreshTokensByUser(userID string) error {
	for key, t := range r.tokens {
		if t.UserID == userID {
			delete(r.tokens, key)
		}
	}
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  15 * time.Minute,
		JWTRefreshExpiry: 24 * time.Hour,
	}
}

func register(t *testing.T, uc AuthUsecase) *authdto.TokenResponse {
	t.Helper()
	resp, err := uc.Register(&authdto.RegisterRequest{
		Email:    "jane@example.com",
		Password: "hunter22",
		Name:     "Jane",
	})
	require.NoError(t, err)
	return resp
}

func TestRegisterAndLogin(t *testing.T) {
	uc := NewAuthUsecase(newFakeUserRepo(), testConfig())

	registered := register(t, uc)
	assert.NotEmpty(t, registered.AccessToken)
	assert.NotEmpty(t, registered.RefreshToken)
	assert.Equal(t, "jane@example.com", registered.User.Email)

	loggedIn, err := uc.Login(&authdto.LoginRequest{
		Email:    "jane@example.com",
		Password: "hunter22",
	})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, loggedIn.User.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	uc := NewAuthUsecase(newFakeUserRepo(), testConfig())
	register(t, uc)

	_, err := uc.Register(&authdto.RegisterRequest{
		Email:    "jane@example.com",
		Password: "other-password",
		Name:     "Other Jane",
	})
	assert.Error(t, err)
}

func TestLoginWrongPassword(t *testing.T) {
	uc := NewAuthUsecase(newFakeUserRepo(), testConfig())
	register(t, uc)

	_, err := uc.Login(&authdto.LoginRequest{
		Email:    "jane@example.com",
		Password: "wrong",
	})
	assert.Error(t, err)
}

func TestLoginUnknownEmail(t *testing.T) {
	uc := NewAuthUsecase(newFakeUserRepo(), testConfig())

	_, err := uc.Login(&authdto.LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever",
	})
	assert.Error(t, err)
}

func TestValidateTokenRoundTrip(t *testing.T) {
	uc := NewAuthUsecase(newFakeUserRepo(), testConfig())
	registered := register(t, uc)

	user, err := uc.ValidateToken(registered.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, user.ID)
}

func TestValidateTokenGarbage(t *testing.T) {
	uc := NewAuthUsecase(newFakeUserRepo(), testConfig())

	_, err := uc.ValidateToken("not-a-jwt")
	assert.Error(t, err)
}

func TestRefreshTokenIssuesNewPair(t *testing.T) {
	uc := NewAuthUsecase(newFakeUserRepo(), testConfig())
	registered := register(t, uc)

	refreshed, err := uc.RefreshToken(registered.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.Equal(t, registered.User.ID, refreshed.User.ID)
}

func TestRefreshAfterLogoutFails(t *testing.T) {
	uc := NewAuthUsecase(newFakeUserRepo(), testConfig())
	registered := register(t, uc)

	require.NoError(t, uc.Logout(registered.RefreshToken))

	_, err := uc.RefreshToken(registered.RefreshToken)
	assert.Error(t, err)
}
