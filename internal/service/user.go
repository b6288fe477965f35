package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/capitalize-ai/mock-thread-api/internal/model"
	"github.com/capitalize-ai/mock-thread-api/internal/store"
	"github.com/capitalize-ai/mock-thread-api/pkg/logger"
)

// UserService manages the optional user registry.
type UserService struct {
	store  *store.Store
	logger *logger.Logger
}

// NewUserService creates a new user service.
func NewUserService(st *store.Store, log *logger.Logger) *UserService {
	return &UserService{store: st, logger: log}
}

// Create registers a user.
func (s *UserService) Create(ctx context.Context, req *model.CreateUserRequest) (*model.User, error) {
	u, ok := s.store.CreateUser(req.UserID, req.Email, req.FirstName, req.LastName, req.Role)
	if !ok {
		return nil, ErrUserExists
	}
	s.logger.Info("user created", zap.String("user_id", u.UserID))
	return u, nil
}

// Get returns a user by user id.
func (s *UserService) Get(ctx context.Context, userID string) (*model.User, error) {
	u, ok := s.store.GetUser(userID)
	if !ok {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// List returns all users.
func (s *UserService) List(ctx context.Context) []*model.User {
	return s.store.ListUsers()
}

// Delete removes a user.
func (s *UserService) Delete(ctx context.Context, userID string) error {
	if !s.store.DeleteUser(userID) {
		return ErrUserNotFound
	}
	return nil
}
