package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/csentein/P6-Sentein-Clement/internal/domain"
	"github.com/google/uuid"
)

const (
	minHeat = 1
	maxHeat = 10
)

func validateDetails(d domain.ItemDetails) error {
	required := []struct{ field, value string }{
		{"name", d.Name},
		{"manufacturer", d.Manufacturer},
		{"description", d.Description},
		{"mainPepper", d.MainPepper},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidItem, r.field)
		}
	}
	if d.Heat < minHeat || d.Heat > maxHeat {
		return fmt.Errorf("%w: heat must be between %d and %d", ErrInvalidItem, minHeat, maxHeat)
	}
	return nil
}

func (s *Service) ListItems(ctx context.Context) ([]*domain.Item, error) {
	return s.items.List(ctx)
}

func (s *Service) GetItem(ctx context.Context, itemID uuid.UUID) (*domain.Item, error) {
	return s.items.GetByID(ctx, itemID)
}

// CreateItem stores the image, then the item owned by ownerID with empty
// tallies. imageBaseURL is the public prefix images are served under.
func (s *Service) CreateItem(ctx context.Context, ownerID string, details domain.ItemDetails, image *domain.Upload, imageBaseURL string) (*domain.Item, error) {
	if err := validateDetails(details); err != nil {
		return nil, err
	}
	if image == nil {
		return nil, ErrImageRequired
	}

	name, err := s.images.Save(ctx, *image)
	if err != nil {
		return nil, err
	}
	details.ImageURL = domain.ImageURL(imageBaseURL, name)

	item := domain.NewItem(ownerID, details, s.clock.Now())
	if err := s.items.Create(ctx, item); err != nil {
		s.removeImage(ctx, name)
		return nil, err
	}

	slog.InfoContext(ctx, "Item created", "item_id", item.ID, "user_id", ownerID)
	return item, nil
}

// UpdateItem replaces the item's details. Votes and ownership never change.
// With a new image the old file is removed after the update succeeds;
// without one the current image is kept.
func (s *Service) UpdateItem(ctx context.Context, callerID string, itemID uuid.UUID, details domain.ItemDetails, image *domain.Upload, imageBaseURL string) (*domain.Item, error) {
	existing, err := s.ownedItem(ctx, callerID, itemID)
	if err != nil {
		return nil, err
	}
	if err := validateDetails(details); err != nil {
		return nil, err
	}

	details.ImageURL = existing.ImageURL
	var newImage string
	if image != nil {
		newImage, err = s.images.Save(ctx, *image)
		if err != nil {
			return nil, err
		}
		details.ImageURL = domain.ImageURL(imageBaseURL, newImage)
	}

	updated, err := s.items.UpdateDetails(ctx, itemID, details)
	if err != nil {
		if newImage != "" {
			s.removeImage(ctx, newImage)
		}
		return nil, err
	}

	if newImage != "" {
		s.removeImage(ctx, domain.ImageFileName(existing.ImageURL))
	}
	return updated, nil
}

// DeleteItem removes the item and then its image file.
func (s *Service) DeleteItem(ctx context.Context, callerID string, itemID uuid.UUID) error {
	existing, err := s.ownedItem(ctx, callerID, itemID)
	if err != nil {
		return err
	}

	if err := s.items.Delete(ctx, itemID); err != nil {
		return err
	}

	s.removeImage(ctx, domain.ImageFileName(existing.ImageURL))
	slog.InfoContext(ctx, "Item deleted", "item_id", itemID, "user_id", callerID)
	return nil
}

func (s *Service) ownedItem(ctx context.Context, callerID string, itemID uuid.UUID) (*domain.Item, error) {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID != callerID {
		return nil, ErrForbidden
	}
	return item, nil
}

// removeImage is best effort: a leftover file is logged, never fatal.
func (s *Service) removeImage(ctx context.Context, name string) {
	if name == "" {
		return
	}
	if err := s.images.Remove(ctx, name); err != nil && !errors.Is(err, domain.ErrImageNotFound) {
		slog.WarnContext(ctx, "Failed to remove image", "image", name, "error", err)
	}
}
