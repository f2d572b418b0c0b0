package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkordes/wayfarer/internal/domain"
	"github.com/pkordes/wayfarer/internal/repo"
)

// UserService exposes profile reads and the friend set that drives the
// friends visibility tier.
type UserService struct {
	users repo.UserRepo
}

// NewUserService constructs a UserService.
func NewUserService(users repo.UserRepo) *UserService {
	return &UserService{users: users}
}

// GetByID returns a user.
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.UserService.GetByID: %w", err)
	}
	return u, nil
}

// AddFriend asks friendID to be userID's friend, or accepts when friendID
// asked first. A pending request grants nothing on friendID's lists.
func (s *UserService) AddFriend(ctx context.Context, userID, friendID uuid.UUID) (domain.FriendStatus, error) {
	if userID == friendID {
		return "", fmt.Errorf("service.UserService.AddFriend: %w: cannot befriend yourself", domain.ErrValidation)
	}
	if _, err := s.users.GetByID(ctx, friendID); err != nil {
		return "", fmt.Errorf("service.UserService.AddFriend: %w", err)
	}
	status, err := s.users.AddFriend(ctx, userID, friendID)
	if err != nil {
		return "", fmt.Errorf("service.UserService.AddFriend: %w", err)
	}
	return status, nil
}

// RemoveFriend ends a friendship, or withdraws or declines a request.
func (s *UserService) RemoveFriend(ctx context.Context, userID, friendID uuid.UUID) error {
	if err := s.users.RemoveFriend(ctx, userID, friendID); err != nil {
		return fmt.Errorf("service.UserService.RemoveFriend: %w", err)
	}
	return nil
}

// ListFriends returns the user's accepted friends.
func (s *UserService) ListFriends(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	ids, err := s.users.ListFriends(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.UserService.ListFriends: %w", err)
	}
	return ids, nil
}

// ListFriendRequests returns the users waiting for userID to accept.
func (s *UserService) ListFriendRequests(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	ids, err := s.users.ListFriendRequests(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.UserService.ListFriendRequests: %w", err)
	}
	return ids, nil
}
