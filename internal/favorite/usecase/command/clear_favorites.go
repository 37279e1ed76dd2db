package command

import (
	"context"
	"fmt"

	"github.com/tair/tip-favorites/internal/favorite/domain"
	"github.com/tair/tip-favorites/pkg/logger"
)

// ClearFavoritesCommand represents the command to drop all of a user's bookmarks
type ClearFavoritesCommand struct {
	UserID string
}

// ClearFavoritesHandler handles the clear favorites command
type ClearFavoritesHandler struct {
	repo  domain.FavoriteRepository
	users domain.UserReader
}

// NewClearFavoritesHandler creates a new clear favorites handler
func NewClearFavoritesHandler(repo domain.FavoriteRepository, users domain.UserReader) *ClearFavoritesHandler {
	return &ClearFavoritesHandler{repo: repo, users: users}
}

// Handle removes every favorite of the user and returns how many were
// removed. On failure, favorites removed by earlier chunks stay removed and
// the command can be issued again.
func (h *ClearFavoritesHandler) Handle(ctx context.Context, cmd ClearFavoritesCommand) (int, error) {
	if err := domain.ValidateID("user", cmd.UserID); err != nil {
		return 0, err
	}
	if _, err := h.users.FindByID(ctx, cmd.UserID); err != nil {
		return 0, fmt.Errorf("failed to load user: %w", err)
	}

	removed, err := h.repo.RemoveAllForUser(ctx, cmd.UserID)
	if err != nil {
		logger.Error(ctx).
			Err(err).
			Str("user_id", cmd.UserID).
			Int("removed", removed).
			Msg("Clearing favorites failed part way")
		return removed, fmt.Errorf("failed to clear favorites: %w", err)
	}

	logger.Info(ctx).
		Str("user_id", cmd.UserID).
		Int("removed", removed).
		Msg("Favorites cleared")
	return removed, nil
}
