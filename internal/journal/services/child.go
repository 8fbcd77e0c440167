package services

import (
	"context"

	"github.com/distincto/journal/internal/journal/models"
	"github.com/distincto/journal/internal/journal/repositories/children"
)

// ChildService manages child profiles. Records keyed to a child by name are
// left in place when the profile is deleted; the owner decides separately
// what to do with history.
type ChildService struct {
	repo children.Repository
}

func NewChildService(repo children.Repository) *ChildService {
	return &ChildService{repo: repo}
}

func (s *ChildService) Save(ctx context.Context, child *models.Child) (int64, error) {
	return s.repo.Save(ctx, child)
}

func (s *ChildService) Get(ctx context.Context, id int64) (*models.Child, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ChildService) List(ctx context.Context) ([]*models.Child, error) {
	return s.repo.GetAll(ctx)
}

// Delete removes the profile; a missing id resolves without error.
func (s *ChildService) Delete(ctx context.Context, id int64) error {
	return s.repo.DeleteByID(ctx, id)
}
