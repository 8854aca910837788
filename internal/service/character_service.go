package service

import (
	"context"
	"fmt"
	"strings"

	app_errors "fantasy-ai/backend/internal/errors"
	"fantasy-ai/backend/internal/model"
)

// CategoryLister exposes the static category catalog.
type CategoryLister interface {
	Categories() []model.Category
}

// CharacterLister resolves characters for listing screens.
type CharacterLister interface {
	CharacterResolver
	ByCategory(ctx context.Context, category string) ([]*model.Character, error)
}

// CharacterService handles the browsing side of the app: categories and characters.
type CharacterService struct {
	characters CharacterLister
	categories CategoryLister
}

func NewCharacterService(characters CharacterLister, categories CategoryLister) *CharacterService {
	return &CharacterService{characters: characters, categories: categories}
}

// Categories returns the catalog in display order.
func (s *CharacterService) Categories() []model.Category {
	return s.categories.Categories()
}

// Get resolves one character.
func (s *CharacterService) Get(ctx context.Context, id string) (*model.Character, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: character id is required", app_errors.ErrValidation)
	}
	ch, err := s.characters.Resolve(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("could not resolve character: %w", err)
	}
	if ch == nil {
		return nil, fmt.Errorf("%w: character %s", app_errors.ErrNotFound, id)
	}
	return ch, nil
}

// ByCategory lists the characters serving a category.
func (s *CharacterService) ByCategory(ctx context.Context, category string) ([]*model.Character, error) {
	if strings.TrimSpace(category) == "" {
		return nil, fmt.Errorf("%w: category is required", app_errors.ErrValidation)
	}
	chars, err := s.characters.ByCategory(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("could not list characters: %w", err)
	}
	if chars == nil {
		chars = []*model.Character{}
	}
	return chars, nil
}
