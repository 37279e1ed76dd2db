package query

import (
	"context"
	"fmt"

	"github.com/tair/tip-favorites/internal/favorite/domain"
)

// SearchFavoritesQuery represents the query to search a user's favorites
type SearchFavoritesQuery struct {
	UserID   string
	Criteria domain.SearchCriteria
}

// SearchFavoritesHandler handles the search favorites query
type SearchFavoritesHandler struct {
	repo  domain.FavoriteRepository
	users domain.UserReader
}

// NewSearchFavoritesHandler creates a new search favorites handler
func NewSearchFavoritesHandler(repo domain.FavoriteRepository, users domain.UserReader) *SearchFavoritesHandler {
	return &SearchFavoritesHandler{repo: repo, users: users}
}

// Handle executes the search favorites query
func (h *SearchFavoritesHandler) Handle(ctx context.Context, q SearchFavoritesQuery) (*domain.FavoritePage, error) {
	if err := domain.ValidateID("user", q.UserID); err != nil {
		return nil, err
	}

	criteria, err := q.Criteria.Normalize()
	if err != nil {
		return nil, err
	}

	if _, err := h.users.FindByID(ctx, q.UserID); err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	page, err := h.repo.SearchUserFavorites(ctx, q.UserID, criteria)
	if err != nil {
		return nil, fmt.Errorf("failed to search favorites: %w", err)
	}
	return page, nil
}
