package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mindleafapp/mindleaf/internal/domain"
	apperrors "github.com/mindleafapp/mindleaf/internal/errors"
	"github.com/mindleafapp/mindleaf/internal/id"
	"github.com/mindleafapp/mindleaf/internal/store"
)

// TagService manages the tag catalog: the seeded built-ins plus the user's
// custom tags.
type TagService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewTagService creates a new tag service.
func NewTagService(s *store.Store, logger *slog.Logger) *TagService {
	return &TagService{
		store:  s,
		logger: logger,
	}
}

// GetAll returns every tag.
func (s *TagService) GetAll(ctx context.Context) ([]*domain.Tag, error) {
	return s.store.Tags.All(ctx)
}

// GetByCategory returns all tags in one category.
func (s *TagService) GetByCategory(ctx context.Context, category domain.TagCategory) ([]*domain.Tag, error) {
	if !category.Valid() {
		return nil, apperrors.Validationf("unknown tag category %q", category)
	}
	return s.store.Tags.ByIndex(ctx, "category", string(category))
}

// GetCustom returns the user's own tags.
func (s *TagService) GetCustom(ctx context.Context) ([]*domain.Tag, error) {
	return s.store.Tags.ByIndex(ctx, "is_custom", store.BoolKey(true))
}

// CreateCustom adds a user-defined tag. Names are unique case-insensitively
// against the existing catalog.
func (s *TagService) CreateCustom(ctx context.Context, name string, category domain.TagCategory, color string) (*domain.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.Validation("tag name is required")
	}
	if !category.Valid() {
		return nil, apperrors.Validationf("unknown tag category %q", category)
	}

	tagID, err := id.Generate("tag")
	if err != nil {
		return nil, err
	}

	tag := &domain.Tag{
		ID:       tagID,
		Name:     name,
		Category: category,
		Color:    color,
		IsCustom: true,
	}

	err = s.store.Update(ctx, func(tx *store.Tx) error {
		existing, err := s.store.Tags.AllTx(tx)
		if err != nil {
			return err
		}
		for _, t := range existing {
			if strings.EqualFold(t.Name, name) {
				return apperrors.AlreadyExists("tag " + name + " already exists")
			}
		}
		return s.store.Tags.CreateTx(tx, tag)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("custom tag created", "tag_id", tag.ID, "name", tag.Name)
	return tag, nil
}

// Delete removes a custom tag. Built-in tags cannot be deleted.
func (s *TagService) Delete(ctx context.Context, tagID string) error {
	return s.store.Update(ctx, func(tx *store.Tx) error {
		tag, err := s.store.Tags.GetTx(tx, tagID)
		if err != nil {
			return err
		}
		if !tag.IsCustom {
			return apperrors.Validation("built-in tags cannot be deleted")
		}
		return s.store.Tags.DeleteTx(tx, tagID)
	})
}

// Search matches tags whose name contains the query, case-insensitive.
func (s *TagService) Search(ctx context.Context, query string) ([]*domain.Tag, error) {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return nil, nil
	}

	tags, err := s.store.Tags.All(ctx)
	if err != nil {
		return nil, err
	}

	var matched []*domain.Tag
	for _, t := range tags {
		if strings.Contains(strings.ToLower(t.Name), needle) {
			matched = append(matched, t)
		}
	}
	return matched, nil
}
