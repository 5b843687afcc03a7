package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/rexrel213/music-store-finally/internal/dto"
	"github.com/rexrel213/music-store-finally/internal/repository"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrWrongPassword  = errors.New("wrong current password")
	ErrAvatarNotFound = errors.New("avatar not found")
	ErrEmailTaken     = errors.New("email already taken")
)

type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) Profile(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, req dto.UpdateProfileRequest) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return ErrUserNotFound
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil && *req.Email != user.Email {
		existing, err := s.userRepo.GetByEmail(ctx, *req.Email)
		if err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if existing != nil {
			return ErrEmailTaken
		}
		user.Email = *req.Email
	}
	if req.Password != nil {
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password.OldPassword)); err != nil {
			return ErrWrongPassword
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		user.Password = string(hashed)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

func (s *UserService) DeleteProfile(ctx context.Context, userID uuid.UUID) error {
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func (s *UserService) UploadAvatar(ctx context.Context, userID uuid.UUID, data []byte) error {
	if err := s.userRepo.UpdateAvatar(ctx, userID, data); err != nil {
		return fmt.Errorf("upload avatar: %w", err)
	}
	return nil
}

func (s *UserService) Avatar(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	avatar, err := s.userRepo.GetAvatar(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get avatar: %w", err)
	}
	if len(avatar) == 0 {
		return nil, ErrAvatarNotFound
	}
	return avatar, nil
}
