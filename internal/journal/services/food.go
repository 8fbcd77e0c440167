package services

import (
	"context"
	"fmt"

	"github.com/distincto/journal/internal/journal/blob"
	"github.com/distincto/journal/internal/journal/models"
	"github.com/distincto/journal/internal/journal/repositories/fooditems"
	"github.com/distincto/journal/internal/logging"
)

// FoodService manages food items and their photo blobs.
type FoodService struct {
	repo   fooditems.Repository
	blobs  *blob.Store
	logger logging.Logger
}

func NewFoodService(repo fooditems.Repository, blobs *blob.Store, logger logging.Logger) *FoodService {
	return &FoodService{repo: repo, blobs: blobs, logger: logger}
}

// Save persists the item with the synced flag cleared.
func (s *FoodService) Save(ctx context.Context, item *models.FoodItem) (int64, error) {
	if !item.Category.Valid() {
		return 0, fmt.Errorf("invalid food category %q", item.Category)
	}
	item.Synced = false
	return s.repo.Save(ctx, item)
}

// SetCategory moves the item to another category, keeping every other field,
// and clears the synced flag so the change is uploaded.
func (s *FoodService) SetCategory(ctx context.Context, id int64, category models.FoodCategory) error {
	if !category.Valid() {
		return fmt.Errorf("invalid food category %q", category)
	}

	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if item == nil {
		return fmt.Errorf("food item %d not found", id)
	}

	item.Category = category
	item.Synced = false
	_, err = s.repo.Save(ctx, item)
	return err
}

func (s *FoodService) ListByChild(ctx context.Context, childName string) ([]*models.FoodItem, error) {
	return s.repo.GetAllByChild(ctx, childName)
}

// Delete removes the item and, when one is attached, its photo blob.
func (s *FoodService) Delete(ctx context.Context, id int64) error {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if item == nil {
		return nil
	}

	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return err
	}
	if item.ImageFile != "" {
		if err := s.blobs.Delete(ctx, item.ImageFile); err != nil {
			s.logger.Warn(ctx, "failed to delete food photo", "path", item.ImageFile, "error", err)
		}
	}
	return nil
}

// AttachPhoto stores the image blob and links its path on the item.
func (s *FoodService) AttachPhoto(ctx context.Context, item *models.FoodItem, data []byte, contentType string) error {
	path, err := s.blobs.Save(ctx, item.ChildName, "", data, contentType)
	if err != nil {
		return err
	}
	item.ImageFile = path
	_, err = s.Save(ctx, item)
	return err
}
