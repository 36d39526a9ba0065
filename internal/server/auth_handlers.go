package server

import (
	"fmt"
	"strings"
	"time"

	"reclaimit/internal/middleware"
	"reclaimit/internal/models"
	"reclaimit/internal/service"
	"reclaimit/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type signupRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	RollNumber  string `json:"roll_number"`
	Password    string `json:"password"`
	Branch      string `json:"branch"`
	ContactInfo string `json:"contact_info"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup handles new user registration
func (s *Server) Signup(c *fiber.Ctx) error {
	var req signupRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.RollNumber = strings.ToUpper(strings.TrimSpace(req.RollNumber))

	if err := validation.ValidateName(req.Name); err != nil {
		return models.RespondWithError(c, err)
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		return models.RespondWithError(c, err)
	}
	if err := validation.ValidateRollNumber(req.RollNumber); err != nil {
		return models.RespondWithError(c, err)
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		return models.RespondWithError(c, err)
	}

	if existing, err := s.userRepo.GetByEmail(c.Context(), req.Email); err != nil {
		return models.RespondWithError(c, err)
	} else if existing != nil {
		return models.RespondWithError(c,
			models.NewValidationError("An account with this email already exists"))
	}
	if existing, err := s.userRepo.GetByRollNumber(c.Context(), req.RollNumber); err != nil {
		return models.RespondWithError(c, err)
	} else if existing != nil {
		return models.RespondWithError(c,
			models.NewValidationError("An account with this roll number already exists"))
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.RespondWithError(c, models.NewStorageError(err))
	}

	user := &models.User{
		Name:        req.Name,
		Email:       req.Email,
		Password:    string(hashed),
		RollNumber:  req.RollNumber,
		Branch:      strings.TrimSpace(req.Branch),
		ContactInfo: strings.TrimSpace(req.ContactInfo),
		Role:        models.RoleUser,
		Status:      models.UserStatusActive,
	}
	if err := s.userRepo.Create(c.Context(), user); err != nil {
		return models.RespondWithError(c, err)
	}

	token, err := s.generateToken(user)
	if err != nil {
		return models.RespondWithError(c, models.NewStorageError(err))
	}

	middleware.Logger.InfoContext(c.UserContext(), "user registered",
		"user_id", user.ID, "email", user.Email)

	user.Password = ""
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Account created successfully",
		"token":   token,
		"user":    user,
	})
}

// Login authenticates a user and issues a JWT
func (s *Server) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return models.RespondWithError(c,
			models.NewValidationError("Email and password are required"))
	}

	user, err := s.userRepo.GetByEmail(c.Context(), req.Email)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	// Same message for unknown email and wrong password.
	if user == nil {
		return models.RespondWithError(c,
			models.NewUnauthorizedError("Invalid email or password"))
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return models.RespondWithError(c,
			models.NewUnauthorizedError("Invalid email or password"))
	}
	if user.IsBlocked() {
		return models.RespondWithError(c,
			models.NewForbiddenError("Your account has been blocked. Contact the administrator."))
	}

	token, err := s.generateToken(user)
	if err != nil {
		return models.RespondWithError(c, models.NewStorageError(err))
	}

	middleware.Logger.InfoContext(c.UserContext(), "user logged in", "user_id", user.ID)

	user.Password = ""
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Logged in successfully",
		"token":   token,
		"user":    user,
	})
}

// GetMyProfile returns the authenticated user's account
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.userService.GetUserByID(c.Context(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	user.Password = ""
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"user":    user,
	})
}

// UpdateMyProfile updates the mutable fields of the authenticated user's
// account. Email, roll number and role are not editable here.
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req struct {
		Name        string `json:"name"`
		Branch      string `json:"branch"`
		ContactInfo string `json:"contact_info"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateProfile(c.Context(), service.UpdateProfileInput{
		UserID:      currentUserID(c),
		Name:        strings.TrimSpace(req.Name),
		Branch:      strings.TrimSpace(req.Branch),
		ContactInfo: strings.TrimSpace(req.ContactInfo),
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	user.Password = ""
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Profile updated successfully",
		"user":    user,
	})
}

// ChangeMyPassword replaces the authenticated user's password
func (s *Server) ChangeMyPassword(c *fiber.Ctx) error {
	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return models.RespondWithError(c,
			models.NewValidationError("Current and new passwords are required"))
	}

	if err := s.userService.ChangePassword(c.Context(), currentUserID(c), req.CurrentPassword, req.NewPassword); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Password changed successfully",
	})
}

// VerifyToken confirms the token is valid and returns the account it
// belongs to. Auth middleware has already done the work by the time this
// handler runs.
func (s *Server) VerifyToken(c *fiber.Ctx) error {
	user, err := s.userService.GetUserByID(c.Context(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	user.Password = ""
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"valid":   true,
		"user":    user,
	})
}

// RefreshToken issues a new token for the authenticated user, extending the
// session without a fresh login.
func (s *Server) RefreshToken(c *fiber.Ctx) error {
	user, err := s.userService.GetUserByID(c.Context(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}

	token, err := s.generateToken(user)
	if err != nil {
		return models.RespondWithError(c, models.NewStorageError(err))
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"token":   token,
	})
}

// Logout acknowledges the logout. Tokens are stateless, so the client
// discards its copy; there is no server-side session to tear down.
func (s *Server) Logout(c *fiber.Ctx) error {
	middleware.Logger.InfoContext(c.UserContext(), "user logged out", "user_id", currentUserID(c))
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Logged out successfully",
	})
}

func (s *Server) generateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": fmt.Sprintf("%d", user.ID),
		"iss": tokenIssuer,
		"aud": tokenAudience,
		"exp": now.Add(7 * 24 * time.Hour).Unix(),
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"jti": generateJTI(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

func generateJTI() string {
	return fmt.Sprintf("%d-%s", time.Now().Unix(), uuid.NewString()[:8])
}
