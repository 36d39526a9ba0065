package service

import (
	"context"

	"reclaimit/internal/models"
	"reclaimit/internal/repository"
	"reclaimit/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// UserService covers profile reads and edits. Registration and login live
// in the auth handlers; account moderation lives in AdminService.
type UserService struct {
	userRepo repository.UserRepository
}

// UpdateProfileInput carries a partial profile edit.
type UpdateProfileInput struct {
	UserID      uint
	Name        string
	Branch      string
	ContactInfo string
}

// NewUserService returns a new UserService.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	// Fresh read: the record is saved back whole, password hash included.
	user, err := s.userRepo.GetByIDFresh(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	const maxNameLen = 100

	if in.Name != "" {
		if len(in.Name) > maxNameLen {
			return nil, models.NewValidationError("Name too long (max 100 characters)")
		}
		user.Name = in.Name
	}
	if in.Branch != "" {
		user.Branch = in.Branch
	}
	if in.ContactInfo != "" {
		user.ContactInfo = in.ContactInfo
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword replaces the account password after verifying the current
// one. The new password must meet the signup policy.
func (s *UserService) ChangePassword(ctx context.Context, userID uint, current, next string) error {
	user, err := s.userRepo.GetByIDFresh(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(current)); err != nil {
		return models.NewUnauthorizedError("Current password is incorrect")
	}
	if err := validation.ValidatePassword(next); err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return models.NewStorageError(err)
	}
	user.Password = string(hashed)
	return s.userRepo.Update(ctx, user)
}
