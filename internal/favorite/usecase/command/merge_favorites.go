package command

import (
	"context"
	"fmt"
	"time"

	"github.com/tair/tip-favorites/internal/favorite/domain"
	"github.com/tair/tip-favorites/pkg/logger"
)

// DefaultMaxMergeSize caps the number of ids accepted by one merge
const DefaultMaxMergeSize = 1000

// MergeFavoritesCommand represents the command to fold a client-side
// favorites list into the user's stored favorites
type MergeFavoritesCommand struct {
	UserID string
	TipIDs []string
}

// MergeFavoritesHandler handles the merge favorites command
type MergeFavoritesHandler struct {
	repo    domain.FavoriteRepository
	users   domain.UserReader
	tips    domain.TipReader
	maxSize int
	now     func() time.Time
}

// NewMergeFavoritesHandler creates a new merge favorites handler
func NewMergeFavoritesHandler(repo domain.FavoriteRepository, users domain.UserReader, tips domain.TipReader, maxSize int) *MergeFavoritesHandler {
	if maxSize <= 0 {
		maxSize = DefaultMaxMergeSize
	}
	return &MergeFavoritesHandler{repo: repo, users: users, tips: tips, maxSize: maxSize, now: time.Now}
}

// Handle executes the merge. Bad ids are reported per id and never fail the
// call; ids already favorited are skipped. Merging the same list twice adds
// nothing the second time.
func (h *MergeFavoritesHandler) Handle(ctx context.Context, cmd MergeFavoritesCommand) (*domain.MergeOutcome, error) {
	if err := domain.ValidateID("user", cmd.UserID); err != nil {
		return nil, err
	}
	if len(cmd.TipIDs) > h.maxSize {
		return nil, fmt.Errorf("cannot merge %d tips, the limit is %d: %w", len(cmd.TipIDs), h.maxSize, domain.ErrInvalidArgument)
	}

	if _, err := h.users.FindByID(ctx, cmd.UserID); err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	outcome := &domain.MergeOutcome{
		TotalReceived: len(cmd.TipIDs),
		Failed:        []domain.MergeFailure{},
	}

	candidates := make([]string, 0, len(cmd.TipIDs))
	seen := make(map[string]struct{}, len(cmd.TipIDs))
	for _, id := range cmd.TipIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		if err := domain.ValidateID("tip", id); err != nil {
			outcome.Failed = append(outcome.Failed, domain.MergeFailure{TipID: id, Reason: domain.ReasonInvalidTipID})
			continue
		}
		candidates = append(candidates, id)
	}
	if len(candidates) == 0 {
		return outcome, nil
	}

	tips, err := h.tips.FindByIDs(ctx, candidates)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve tips: %w", err)
	}

	valid := make([]string, 0, len(candidates))
	for _, id := range candidates {
		if _, ok := tips[id]; !ok {
			outcome.Failed = append(outcome.Failed, domain.MergeFailure{TipID: id, Reason: domain.ReasonTipNotFound})
			continue
		}
		valid = append(valid, id)
	}
	if len(valid) == 0 {
		return outcome, nil
	}

	existing, err := h.repo.ExistingSubset(ctx, cmd.UserID, valid)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing favorites: %w", err)
	}
	already := make(map[string]struct{}, len(existing))
	for _, id := range existing {
		already[id] = struct{}{}
	}

	toAdd := make([]string, 0, len(valid))
	for _, id := range valid {
		if _, ok := already[id]; ok {
			outcome.Skipped++
			continue
		}
		toAdd = append(toAdd, id)
	}

	if len(toAdd) > 0 {
		added, err := h.repo.AddBatch(ctx, cmd.UserID, toAdd, h.now())
		if err != nil {
			logger.Error(ctx).
				Err(err).
				Str("user_id", cmd.UserID).
				Int("committed", added).
				Int("requested", len(toAdd)).
				Msg("Favorites merge failed part way")
			return nil, fmt.Errorf("failed to add merged favorites: %w", err)
		}
		outcome.Added = added
	}

	logger.Info(ctx).
		Str("user_id", cmd.UserID).
		Int("received", outcome.TotalReceived).
		Int("added", outcome.Added).
		Int("skipped", outcome.Skipped).
		Int("failed", len(outcome.Failed)).
		Msg("Favorites merged")

	return outcome, nil
}
