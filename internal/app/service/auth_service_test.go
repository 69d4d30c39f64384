package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tabletime/tabletime-backend/internal/app/model"
	"github.com/tabletime/tabletime-backend/internal/app/repository"
	apperrors "github.com/tabletime/tabletime-backend/internal/errors"
	"github.com/tabletime/tabletime-backend/pkg/util"
)

type authScene struct {
	svc     AuthService
	store   *repository.Store
	f       *fixture
	mail    *fakeMailer
	assets  *fakeAssets
	revoker *fakeRevoker
}

func setupAuthServiceTest(t *testing.T) *authScene {
	store := setupStore(t)
	scene := &authScene{
		store:   store,
		f:       newFixture(t, store),
		mail:    &fakeMailer{},
		assets:  &fakeAssets{},
		revoker: &fakeRevoker{},
	}
	scene.svc = NewAuthService(store, scene.assets, scene.mail, scene.revoker, AuthConfig{
		JWTSecret:          "test-jwt-secret",
		AccessExpiry:       time.Hour,
		ConfirmationSecret: "test-confirmation-secret",
		ConfirmationExpiry: 24 * time.Hour,
		ResetExpiry:        time.Hour,
		BaseURL:            "http://localhost:8080/",
	})
	return scene
}

var linkToken = regexp.MustCompile(`href="[^"]*/(?:verify/|reset-password\?token=)([^"]+)"`)

func tokenFromMail(t *testing.T, m sentMail) string {
	match := linkToken.FindStringSubmatch(m.Body)
	require.Len(t, match, 2, "no link in %q", m.Body)
	return match[1]
}

func TestAuthService_SignupVerifySignin(t *testing.T) {
	s := setupAuthServiceTest(t)
	ctx := context.Background()

	img := imageFile("me.png")
	user, err := s.svc.Signup(ctx, SignupInput{
		Name:     "  Jane Doe ",
		Email:    "Jane@Example.com",
		Password: "secret123",
		Phone:    "0100",
	}, &img)
	require.NoError(t, err)
	assert.Equal(t, "jane doe", user.Name)
	assert.Equal(t, "jane@example.com", user.Email)
	assert.Equal(t, model.RoleUser, user.Role)
	assert.False(t, user.IsConfirmed)
	assert.NotEmpty(t, user.Image.PublicID)

	require.Len(t, s.mail.sent, 1)
	assert.Equal(t, "jane@example.com", s.mail.sent[0].To)
	assert.Contains(t, s.mail.sent[0].Body, "http://localhost:8080/api/v1/users/verify/")

	_, _, err = s.svc.Signin(ctx, "jane@example.com", "secret123")
	assert.ErrorIs(t, err, ErrEmailNotConfirmed)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	confirmed, err := s.svc.VerifyEmail(ctx, tokenFromMail(t, s.mail.sent[0]))
	require.NoError(t, err)
	assert.True(t, confirmed.IsConfirmed)

	_, err = s.svc.VerifyEmail(ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, _, err = s.svc.Signin(ctx, "jane@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)

	_, _, err = s.svc.Signin(ctx, "nobody@example.com", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	signedIn, token, err := s.svc.Signin(ctx, "JANE@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, signedIn.ID)
	claims, err := util.ValidateToken(token.AccessToken, "test-jwt-secret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, string(model.RoleUser), claims.Role)

	require.NoError(t, s.svc.Logout(ctx, token.AccessToken, token.ExpiresAt))
	assert.Contains(t, s.revoker.revoked, token.AccessToken)
}

func TestAuthService_Signup_Rejections(t *testing.T) {
	s := setupAuthServiceTest(t)
	ctx := context.Background()

	_, err := s.svc.Signup(ctx, SignupInput{Name: "bob", Email: "bob@example.com", Password: "secret123"}, nil)
	require.NoError(t, err)

	_, err = s.svc.Signup(ctx, SignupInput{Name: "bob", Email: "BOB@example.com", Password: "secret123"}, nil)
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)

	_, err = s.svc.Signup(ctx, SignupInput{Name: "eve", Email: "eve@example.com", Password: "x", Role: "admin"}, nil)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	s.mail.err = errors.New("smtp down")
	img := imageFile("carol.png")
	_, err = s.svc.Signup(ctx, SignupInput{Name: "carol", Email: "carol@example.com", Password: "secret123"}, &img)
	require.Error(t, err)
	_, err = s.store.Users.FindByEmail(ctx, "carol@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Len(t, s.assets.Destroyed(), 1)
}

func TestAuthService_Passwords(t *testing.T) {
	s := setupAuthServiceTest(t)
	ctx := context.Background()

	user, err := s.svc.Signup(ctx, SignupInput{Name: "kim", Email: "kim@example.com", Password: "first-pass"}, nil)
	require.NoError(t, err)
	require.NoError(t, s.store.Users.UpdateByID(ctx, user.ID, map[string]interface{}{"is_confirmed": true}))

	assert.ErrorIs(t, s.svc.ChangePassword(ctx, user.ID, "nope", "second-pass"), ErrWrongPassword)
	assert.ErrorIs(t, s.svc.ChangePassword(ctx, user.ID, "first-pass", "first-pass"), ErrSamePassword)
	require.NoError(t, s.svc.ChangePassword(ctx, user.ID, "first-pass", "second-pass"))

	require.NoError(t, s.svc.ForgotPassword(ctx, "unknown@example.com"))
	require.NoError(t, s.svc.ForgotPassword(ctx, "kim@example.com"))
	reset := s.mail.sent[len(s.mail.sent)-1]
	assert.True(t, strings.Contains(reset.Body, "reset-password?token="))
	token := tokenFromMail(t, reset)

	assert.ErrorIs(t, s.svc.ResetPassword(ctx, "bogus", "third-pass"), ErrResetTokenInvalid)
	require.NoError(t, s.svc.ResetPassword(ctx, token, "third-pass"))
	assert.ErrorIs(t, s.svc.ResetPassword(ctx, token, "fourth-pass"), ErrResetTokenInvalid)

	_, _, err = s.svc.Signin(ctx, "kim@example.com", "third-pass")
	require.NoError(t, err)
}

func TestAuthService_ResetTokenExpires(t *testing.T) {
	s := setupAuthServiceTest(t)
	ctx := context.Background()
	user := s.f.user(model.RoleUser)

	require.NoError(t, s.svc.ForgotPassword(ctx, user.Email))
	token := tokenFromMail(t, s.mail.sent[0])

	s.svc.(*authService).now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	assert.ErrorIs(t, s.svc.ResetPassword(ctx, token, "new-pass"), ErrResetTokenInvalid)
}

func TestAuthService_ProfileAndFavorites(t *testing.T) {
	s := setupAuthServiceTest(t)
	ctx := context.Background()
	user := s.f.user(model.RoleUser)
	oldImage := user.Image.PublicID
	first := s.f.restaurant(s.f.user(model.RoleRestaurantOwner))
	second := s.f.restaurant(s.f.user(model.RoleRestaurantOwner))

	name := "New Name"
	img := imageFile("new.png")
	updated, err := s.svc.UpdateProfile(ctx, user.ID, &name, nil, &img)
	require.NoError(t, err)
	assert.Equal(t, "new name", updated.Name)
	assert.NotEqual(t, oldImage, updated.Image.PublicID)
	assert.Equal(t, []string{oldImage}, s.assets.Destroyed())

	require.NoError(t, s.svc.AddFavorite(ctx, user.ID, first.ID))
	require.NoError(t, s.svc.AddFavorite(ctx, user.ID, second.ID))
	require.NoError(t, s.svc.AddFavorite(ctx, user.ID, second.ID))
	assert.ErrorIs(t, s.svc.AddFavorite(ctx, user.ID, 999), ErrRestaurantNotFound)

	favorites, err := s.svc.Favorites(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, favorites, 2)

	require.NoError(t, s.svc.RemoveFavorite(ctx, user.ID, first.ID))
	favorites, err = s.svc.Favorites(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, second.ID, favorites[0].ID)
}
