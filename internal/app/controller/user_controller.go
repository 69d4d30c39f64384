package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/tabletime/tabletime-backend/internal/app/model"
	"github.com/tabletime/tabletime-backend/internal/app/service"
	"github.com/tabletime/tabletime-backend/internal/middleware"
	"github.com/tabletime/tabletime-backend/internal/response"
)

type UserController struct {
	authService service.AuthService
	cascade     service.CascadeService
}

func NewUserController(authService service.AuthService, cascade service.CascadeService) *UserController {
	return &UserController{
		authService: authService,
		cascade:     cascade,
	}
}

type SignupRequest struct {
	Name     string `json:"name" form:"name" binding:"required,min=3"`
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required,min=6"`
	Phone    string `json:"phone" form:"phone"`
	Role     string `json:"role" form:"role" binding:"omitempty,oneof=user restaurantOwner"`
}

type SigninRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	Name  *string `json:"name" form:"name" binding:"omitempty,min=3"`
	Phone *string `json:"phone" form:"phone"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

// Signup registers an account and mails its confirmation link
// POST /api/v1/users/signup
func (ctrl *UserController) Signup(c *gin.Context) {
	const location = "user.signup"

	var req SignupRequest
	if !bindOrReject(c, &req, location) {
		return
	}
	image, err := formFile(c, "image")
	if err != nil {
		rejectUpload(c, err, location)
		return
	}

	user, err := ctrl.authService.Signup(c.Request.Context(), service.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Role:     model.UserRole(req.Role),
	}, image)
	if err != nil {
		respondError(c, err, location)
		return
	}

	response.Created(c, "Account created, check your email to confirm it", user)
}

// VerifyEmail confirms an account from the mailed link
// GET /api/v1/users/verify/:token
func (ctrl *UserController) VerifyEmail(c *gin.Context) {
	user, err := ctrl.authService.VerifyEmail(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondError(c, err, "user.verify")
		return
	}
	response.OK(c, "Email confirmed", user)
}

// Signin exchanges credentials for an access token
// POST /api/v1/users/signin
func (ctrl *UserController) Signin(c *gin.Context) {
	const location = "user.signin"

	var req SigninRequest
	if !bindOrReject(c, &req, location) {
		return
	}

	user, token, err := ctrl.authService.Signin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err, location)
		return
	}

	response.OK(c, "Signed in", gin.H{
		"user":         user,
		"access_token": token.AccessToken,
		"expires_at":   token.ExpiresAt,
	})
}

// Logout revokes the presented access token
// POST /api/v1/users/logout
func (ctrl *UserController) Logout(c *gin.Context) {
	token, expiresAt, ok := middleware.GetToken(c)
	if !ok {
		respondError(c, service.ErrInvalidToken, "user.logout")
		return
	}
	if err := ctrl.authService.Logout(c.Request.Context(), token, expiresAt); err != nil {
		respondError(c, err, "user.logout")
		return
	}
	response.OK(c, "Logged out", nil)
}

// GET /api/v1/users/profile
func (ctrl *UserController) Profile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	user, err := ctrl.authService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "user.profile")
		return
	}
	response.OK(c, "Profile fetched", user)
}

// UpdateProfile changes name, phone or profile image
// PUT /api/v1/users/update
func (ctrl *UserController) UpdateProfile(c *gin.Context) {
	const location = "user.update"

	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req UpdateProfileRequest
	if !bindOrReject(c, &req, location) {
		return
	}
	image, err := formFile(c, "image")
	if err != nil {
		rejectUpload(c, err, location)
		return
	}

	user, err := ctrl.authService.UpdateProfile(c.Request.Context(), userID, req.Name, req.Phone, image)
	if err != nil {
		respondError(c, err, location)
		return
	}
	response.OK(c, "Profile updated", user)
}

// PATCH /api/v1/users/change-password
func (ctrl *UserController) ChangePassword(c *gin.Context) {
	const location = "user.change_password"

	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req ChangePasswordRequest
	if !bindOrReject(c, &req, location) {
		return
	}
	if err := ctrl.authService.ChangePassword(c.Request.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		respondError(c, err, location)
		return
	}
	response.OK(c, "Password changed", nil)
}

// ForgotPassword mails a reset link. The answer is the same whether or not the email is known.
// POST /api/v1/users/forgot-password
func (ctrl *UserController) ForgotPassword(c *gin.Context) {
	const location = "user.forgot_password"

	var req ForgotPasswordRequest
	if !bindOrReject(c, &req, location) {
		return
	}
	if err := ctrl.authService.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		respondError(c, err, location)
		return
	}
	response.OK(c, "If the email is registered, a reset link has been sent", nil)
}

// POST /api/v1/users/reset-password
func (ctrl *UserController) ResetPassword(c *gin.Context) {
	const location = "user.reset_password"

	var req ResetPasswordRequest
	if !bindOrReject(c, &req, location) {
		return
	}
	if err := ctrl.authService.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		respondError(c, err, location)
		return
	}
	response.OK(c, "Password has been reset", nil)
}

// DeleteAccount removes the caller and everything that depends on them
// DELETE /api/v1/users/delete-account
func (ctrl *UserController) DeleteAccount(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := ctrl.cascade.DeleteUser(c.Request.Context(), userID, userID); err != nil {
		respondError(c, err, "user.delete_account")
		return
	}
	response.OK(c, "Account deleted", nil)
}

// GET /api/v1/users/favorites
func (ctrl *UserController) Favorites(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	restaurants, err := ctrl.authService.Favorites(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "user.favorites")
		return
	}
	response.OK(c, "Favorites fetched", restaurants)
}

// POST /api/v1/users/favorites/:restaurantId
func (ctrl *UserController) AddFavorite(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	restaurantID, ok := parseID(c, "restaurantId")
	if !ok {
		return
	}
	if err := ctrl.authService.AddFavorite(c.Request.Context(), userID, restaurantID); err != nil {
		respondError(c, err, "user.add_favorite")
		return
	}
	response.OK(c, "Restaurant added to favorites", nil)
}

// DELETE /api/v1/users/favorites/:restaurantId
func (ctrl *UserController) RemoveFavorite(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	restaurantID, ok := parseID(c, "restaurantId")
	if !ok {
		return
	}
	if err := ctrl.authService.RemoveFavorite(c.Request.Context(), userID, restaurantID); err != nil {
		respondError(c, err, "user.remove_favorite")
		return
	}
	response.OK(c, "Restaurant removed from favorites", nil)
}
