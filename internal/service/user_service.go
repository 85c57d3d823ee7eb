package service

import (
	"context"
	"fmt"
	"strings"

	"runnerhub/internal/core/domain"
	"runnerhub/internal/core/ports"
	"runnerhub/pkg/apperror"

	"github.com/google/uuid"
)

type userService struct {
	userRepo ports.UserRepository
}

// NewUserService creates the profile service.
func NewUserService(userRepo ports.UserRepository) ports.UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get user: %w", err))
	}
	if user == nil {
		return nil, apperror.ErrNotFound("user")
	}
	return user, nil
}

// UpdateProfile applies only the allow-listed fields present in update.
func (s *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, update ports.ProfileUpdate) (*domain.User, error) {
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, apperror.Validation("name must not be empty")
		}
		if err := s.userRepo.UpdateProfile(ctx, userID, name); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("update profile: %w", err))
		}
	}
	return s.GetProfile(ctx, userID)
}

// UpdateLocation stores the last known position used by runner matching.
func (s *userService) UpdateLocation(ctx context.Context, userID uuid.UUID, loc domain.GeoPoint) (*domain.User, error) {
	if !loc.Valid() {
		return nil, apperror.Validation("location is out of range")
	}
	if err := s.userRepo.UpdateLocation(ctx, userID, loc); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update location: %w", err))
	}
	return s.GetProfile(ctx, userID)
}
