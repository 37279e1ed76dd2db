package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/tair/tip-favorites/internal/favorite/domain"
	"github.com/tair/tip-favorites/pkg/logger"
)

// RemoveFavoriteCommand represents the command to drop a bookmark
type RemoveFavoriteCommand struct {
	UserID string
	TipID  string
}

// RemoveFavoriteHandler handles the remove favorite command
type RemoveFavoriteHandler struct {
	repo  domain.FavoriteRepository
	users domain.UserReader
}

// NewRemoveFavoriteHandler creates a new remove favorite handler
func NewRemoveFavoriteHandler(repo domain.FavoriteRepository, users domain.UserReader) *RemoveFavoriteHandler {
	return &RemoveFavoriteHandler{repo: repo, users: users}
}

// Handle executes the remove favorite command. A favorite that does not
// exist is reported as not found and nothing is written.
func (h *RemoveFavoriteHandler) Handle(ctx context.Context, cmd RemoveFavoriteCommand) error {
	if err := domain.ValidateID("user", cmd.UserID); err != nil {
		return err
	}
	if err := domain.ValidateID("tip", cmd.TipID); err != nil {
		return err
	}

	if _, err := h.users.FindByID(ctx, cmd.UserID); err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}

	if _, err := h.repo.Get(ctx, cmd.UserID, cmd.TipID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("tip %s is not in this user's favorites: %w", cmd.TipID, domain.ErrNotFound)
		}
		return fmt.Errorf("failed to check favorite: %w", err)
	}

	removed, err := h.repo.Remove(ctx, cmd.UserID, cmd.TipID)
	if err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	if !removed {
		// deleted concurrently between the check and the delete
		logger.Debug(ctx).
			Str("user_id", cmd.UserID).
			Str("tip_id", cmd.TipID).
			Msg("Favorite already gone")
	}

	logger.Info(ctx).
		Str("user_id", cmd.UserID).
		Str("tip_id", cmd.TipID).
		Msg("Favorite removed")
	return nil
}
