package service

import (
	"context"

	"github.com/SantaVM/bank-rest/internal/models"
	"github.com/SantaVM/bank-rest/internal/repository"
)

// FindUser returns a user by id.
func (s *Service) FindUser(ctx context.Context, id int64) (*models.User, error) {
	return s.store.FindUserByID(ctx, id)
}

// ListUsers returns a filtered page of users. Admin-only at the routing
// layer.
func (s *Service) ListUsers(ctx context.Context, filter repository.UserFilter, page repository.Page) ([]models.User, int64, error) {
	return s.store.ListUsers(ctx, filter, page)
}
