package services

import (
	"context"

	"github.com/useraccounts/apiserver/types"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (types.User, error)
	GetByEmailOrUsername(ctx context.Context, email, username string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
}

// UserService encapsulates user use-cases.
type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (types.User, error) {
	return s.repo.GetByUsername(ctx, username)
}

func (s *UserService) GetByEmailOrUsername(ctx context.Context, email, username string) (types.User, error) {
	return s.repo.GetByEmailOrUsername(ctx, email, username)
}

func (s *UserService) Create(ctx context.Context, user types.User) (types.User, error) {
	return s.repo.Create(ctx, user)
}
