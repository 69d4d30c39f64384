package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/tabletime/tabletime-backend/internal/app/model"
	"github.com/tabletime/tabletime-backend/internal/app/repository"
	apperrors "github.com/tabletime/tabletime-backend/internal/errors"
	"github.com/tabletime/tabletime-backend/internal/storage"
	"github.com/tabletime/tabletime-backend/pkg/logger"
	"github.com/tabletime/tabletime-backend/pkg/mailer"
	"github.com/tabletime/tabletime-backend/pkg/util"
)

// TokenRevoker blacklists access tokens until they expire.
type TokenRevoker interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
}

type AuthConfig struct {
	JWTSecret          string
	AccessExpiry       time.Duration
	ConfirmationSecret string
	ConfirmationExpiry time.Duration
	ResetExpiry        time.Duration
	BaseURL            string
}

type SignupInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Role     model.UserRole
}

type AuthToken struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type AuthService interface {
	Signup(ctx context.Context, input SignupInput, image *storage.File) (*model.User, error)
	VerifyEmail(ctx context.Context, token string) (*model.User, error)
	Signin(ctx context.Context, email, password string) (*model.User, *AuthToken, error)
	Logout(ctx context.Context, token string, expiresAt time.Time) error
	GetProfile(ctx context.Context, userID uint) (*model.User, error)
	UpdateProfile(ctx context.Context, userID uint, name, phone *string, image *storage.File) (*model.User, error)
	ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	AddFavorite(ctx context.Context, userID, restaurantID uint) error
	RemoveFavorite(ctx context.Context, userID, restaurantID uint) error
	Favorites(ctx context.Context, userID uint) ([]model.Restaurant, error)
}

type authService struct {
	store   *repository.Store
	assets  storage.AssetStore
	mail    mailer.Mailer
	revoker TokenRevoker
	cfg     AuthConfig
	now     func() time.Time
}

// NewAuthService wires the account service. revoker may be nil when no blacklist is configured.
func NewAuthService(
	store *repository.Store,
	assets storage.AssetStore,
	mail mailer.Mailer,
	revoker TokenRevoker,
	cfg AuthConfig,
) AuthService {
	return &authService{
		store:   store,
		assets:  assets,
		mail:    mail,
		revoker: revoker,
		cfg:     cfg,
		now:     time.Now,
	}
}

func (s *authService) link(path string) string {
	return strings.TrimRight(s.cfg.BaseURL, "/") + "/api/v1/users/" + path
}

func (s *authService) Signup(ctx context.Context, input SignupInput, image *storage.File) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	role := input.Role
	if role == "" {
		role = model.RoleUser
	}
	if !role.Valid() {
		return nil, apperrors.Validation(apperrors.ValidationInvalidInput, "Role must be user or restaurantOwner")
	}

	logger.Info("Attempting user signup", map[string]interface{}{
		"email": email,
		"role":  role,
	})

	if _, err := s.store.Users.FindByEmail(ctx, email); err == nil {
		logger.Warn("Signup failed: email already exists", map[string]interface{}{
			"email": email,
		})
		return nil, ErrEmailAlreadyExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := util.HashPassword(input.Password)
	if err != nil {
		logger.Error("Failed to hash password", err, map[string]interface{}{
			"email": email,
		})
		return nil, err
	}

	var img model.Image
	if image != nil {
		if img, err = s.assets.Upload(ctx, *image, storage.FolderUser); err != nil {
			return nil, uploadError(err)
		}
	}

	user := &model.User{
		Name:         strings.ToLower(strings.TrimSpace(input.Name)),
		Email:        email,
		PasswordHash: hash,
		Phone:        strings.TrimSpace(input.Phone),
		Role:         role,
		Image:        img,
	}

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Users.Insert(ctx, user); err != nil {
			return constraintAs(err, ErrEmailAlreadyExists)
		}

		token, err := util.GenerateConfirmationToken(user.ID, user.Email, s.cfg.ConfirmationSecret, s.cfg.ConfirmationExpiry)
		if err != nil {
			return err
		}
		body := fmt.Sprintf(`<a href="%s">Click here to confirm your email</a>`, s.link("verify/"+token))
		if err := s.mail.Send(ctx, user.Email, "Verify your email", body); err != nil {
			logger.Error("Failed to send confirmation email", err, map[string]interface{}{
				"email": user.Email,
			})
			return apperrors.New(apperrors.KindInternal, apperrors.InternalExternalAPI, "Could not send confirmation email")
		}
		return nil
	})
	if err != nil {
		storage.DestroyBestEffort(context.WithoutCancel(ctx), s.assets, []model.Image{img})
		return nil, err
	}

	logger.Info("User signed up", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})
	return user, nil
}

func (s *authService) VerifyEmail(ctx context.Context, token string) (*model.User, error) {
	claims, err := util.ValidateConfirmationToken(token, s.cfg.ConfirmationSecret)
	if err != nil {
		logger.Warn("Invalid confirmation token", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, ErrInvalidToken
	}

	if err := s.store.Users.UpdateByID(ctx, claims.UserID, map[string]interface{}{"is_confirmed": true}); err != nil {
		return nil, notFoundAs(err, ErrUserNotFound)
	}

	logger.Info("Email confirmed", map[string]interface{}{
		"user_id": claims.UserID,
	})
	return s.GetProfile(ctx, claims.UserID)
}

func (s *authService) Signin(ctx context.Context, email, password string) (*model.User, *AuthToken, error) {
	logger.Info("Signin attempt", map[string]interface{}{
		"email": email,
	})

	user, err := s.store.Users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.Warn("Signin failed: user not found", map[string]interface{}{
				"email": email,
			})
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if !util.VerifyPassword(user.PasswordHash, password) {
		logger.Warn("Signin failed: invalid password", map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, nil, ErrInvalidCredentials
	}
	if !user.IsConfirmed {
		return nil, nil, ErrEmailNotConfirmed
	}

	token, expiresAt, err := util.GenerateAccessToken(user.ID, user.Email, string(user.Role), s.cfg.JWTSecret, s.cfg.AccessExpiry)
	if err != nil {
		logger.Error("Failed to generate access token", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, nil, err
	}

	logger.Info("User signed in", map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	})
	return user, &AuthToken{AccessToken: token, ExpiresAt: expiresAt}, nil
}

func (s *authService) Logout(ctx context.Context, token string, expiresAt time.Time) error {
	if s.revoker == nil {
		logger.Debug("Token blacklist disabled, logout is client side only")
		return nil
	}
	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	return s.revoker.Revoke(ctx, token, ttl)
}

func (s *authService) GetProfile(ctx context.Context, userID uint) (*model.User, error) {
	user, err := s.store.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, notFoundAs(err, ErrUserNotFound)
	}
	return user, nil
}

func (s *authService) UpdateProfile(ctx context.Context, userID uint, name, phone *string, image *storage.File) (*model.User, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	var img model.Image
	if image != nil {
		if img, err = s.assets.Upload(ctx, *image, storage.FolderUser); err != nil {
			return nil, uploadError(err)
		}
	}

	if name != nil {
		if n := strings.ToLower(strings.TrimSpace(*name)); n != "" {
			user.Name = n
		}
	}
	setIfPresent(&user.Phone, phone)
	var replaced model.Image
	if image != nil {
		replaced = user.Image
		user.Image = img
	}

	if err := s.store.Users.Save(ctx, user); err != nil {
		storage.DestroyBestEffort(context.WithoutCancel(ctx), s.assets, []model.Image{img})
		return nil, err
	}
	storage.DestroyBestEffort(ctx, s.assets, []model.Image{replaced})

	logger.Info("Profile updated", map[string]interface{}{
		"user_id": userID,
	})
	return user, nil
}

func (s *authService) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return err
	}
	if !util.VerifyPassword(user.PasswordHash, oldPassword) {
		return ErrWrongPassword
	}
	if oldPassword == newPassword {
		return ErrSamePassword
	}

	hash, err := util.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.store.Users.UpdateByID(ctx, userID, map[string]interface{}{"password_hash": hash}); err != nil {
		return notFoundAs(err, ErrUserNotFound)
	}

	logger.Info("Password changed", map[string]interface{}{
		"user_id": userID,
	})
	return nil
}

// ForgotPassword mails a reset link. Unknown emails succeed silently.
func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.store.Users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		logger.Info("Password reset requested for unknown email", map[string]interface{}{
			"email": email,
		})
		return nil
	}
	if err != nil {
		return err
	}

	token, err := util.GenerateSecureToken(32)
	if err != nil {
		return err
	}
	reset := &model.PasswordReset{
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: s.now().Add(s.cfg.ResetExpiry),
	}
	if err := s.store.PasswordResets.Insert(ctx, reset); err != nil {
		return err
	}

	body := fmt.Sprintf(
		`<p>You requested a password reset.</p><a href="%s">Reset password</a><p>If you did not request this, ignore this email.</p>`,
		s.link("reset-password?token="+token),
	)
	if err := s.mail.Send(ctx, user.Email, "Password reset request", body); err != nil {
		logger.Error("Failed to send password reset email", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return apperrors.New(apperrors.KindInternal, apperrors.InternalExternalAPI, "Could not send password reset email")
	}

	logger.Info("Password reset email sent", map[string]interface{}{
		"user_id": user.ID,
	})
	return nil
}

func (s *authService) ResetPassword(ctx context.Context, token, newPassword string) error {
	hash, err := util.HashPassword(newPassword)
	if err != nil {
		return err
	}

	return s.store.Transaction(ctx, func(tx *repository.Store) error {
		reset, err := tx.PasswordResets.FindByToken(ctx, token)
		if err != nil {
			return notFoundAs(err, ErrResetTokenInvalid)
		}
		if reset.Used || reset.Expired(s.now()) {
			return ErrResetTokenInvalid
		}

		if err := tx.Users.UpdateByID(ctx, reset.UserID, map[string]interface{}{"password_hash": hash}); err != nil {
			return notFoundAs(err, ErrUserNotFound)
		}
		if err := tx.PasswordResets.UpdateByID(ctx, reset.ID, map[string]interface{}{"used": true}); err != nil {
			return err
		}

		logger.Info("Password reset", map[string]interface{}{
			"user_id": reset.UserID,
		})
		return nil
	})
}

func (s *authService) AddFavorite(ctx context.Context, userID, restaurantID uint) error {
	if _, err := s.store.Restaurants.FindByID(ctx, restaurantID); err != nil {
		return notFoundAs(err, ErrRestaurantNotFound)
	}
	return s.store.Favorites.Add(ctx, userID, restaurantID)
}

func (s *authService) RemoveFavorite(ctx context.Context, userID, restaurantID uint) error {
	return s.store.Favorites.Remove(ctx, userID, restaurantID)
}

// Favorites returns the bookmarked restaurants, most recent first.
func (s *authService) Favorites(ctx context.Context, userID uint) ([]model.Restaurant, error) {
	ids, err := s.store.Favorites.RestaurantIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []model.Restaurant{}, nil
	}

	restaurants, err := s.store.Restaurants.FindMany(ctx, repository.Filter{"id": ids})
	if err != nil {
		return nil, err
	}
	byID := lo.KeyBy(restaurants, func(r model.Restaurant) uint { return r.ID })
	return lo.FilterMap(ids, func(id uint, _ int) (model.Restaurant, bool) {
		r, ok := byID[id]
		return r, ok
	}), nil
}
