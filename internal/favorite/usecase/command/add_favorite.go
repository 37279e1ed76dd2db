package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tair/tip-favorites/internal/favorite/domain"
	"github.com/tair/tip-favorites/pkg/logger"
)

// AddFavoriteCommand represents the command to bookmark a tip
type AddFavoriteCommand struct {
	UserID string
	TipID  string
}

// AddFavoriteHandler handles the add favorite command
type AddFavoriteHandler struct {
	repo  domain.FavoriteRepository
	users domain.UserReader
	tips  domain.TipReader
	now   func() time.Time
}

// NewAddFavoriteHandler creates a new add favorite handler
func NewAddFavoriteHandler(repo domain.FavoriteRepository, users domain.UserReader, tips domain.TipReader) *AddFavoriteHandler {
	return &AddFavoriteHandler{repo: repo, users: users, tips: tips, now: time.Now}
}

// Handle executes the add favorite command. Two racing adds of the same
// pair leave one record, but both may see no existing favorite, or the
// loser may get a conflict.
func (h *AddFavoriteHandler) Handle(ctx context.Context, cmd AddFavoriteCommand) (*domain.FavoriteWithTip, error) {
	if err := domain.ValidateID("user", cmd.UserID); err != nil {
		return nil, err
	}
	if err := domain.ValidateID("tip", cmd.TipID); err != nil {
		return nil, err
	}

	if _, err := h.users.FindByID(ctx, cmd.UserID); err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	tip, err := h.tips.FindByID(ctx, cmd.TipID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tip: %w", err)
	}

	// the upsert alone cannot tell us the pair was already there
	_, err = h.repo.Get(ctx, cmd.UserID, cmd.TipID)
	switch {
	case err == nil:
		return nil, fmt.Errorf("tip %s is already in this user's favorites: %w", cmd.TipID, domain.ErrConflict)
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("failed to check favorite: %w", err)
	}

	favorite := domain.NewFavorite(cmd.UserID, cmd.TipID, h.now())
	if err := h.repo.Add(ctx, favorite); err != nil {
		return nil, fmt.Errorf("failed to add favorite: %w", err)
	}

	logger.Info(ctx).
		Str("user_id", cmd.UserID).
		Str("tip_id", cmd.TipID).
		Msg("Favorite added")

	detail, err := h.repo.WithTipDetail(ctx, favorite, tip)
	if err != nil {
		// the favorite is stored; answer without the category name
		logger.Warn(ctx).
			Err(err).
			Str("tip_id", cmd.TipID).
			Msg("Failed to resolve favorite details")
		plain := domain.NewFavoriteWithTip(*favorite, *tip)
		return &plain, nil
	}
	return detail, nil
}
