package domain

import (
	"context"
	"time"
)

// FavoriteStore defines the contract for favorites data access
type FavoriteStore interface {
	Get(ctx context.Context, userID, tipID string) (*Favorite, error)
	Add(ctx context.Context, favorite *Favorite) error
	Remove(ctx context.Context, userID, tipID string) (bool, error)
	Search(ctx context.Context, userID string, criteria SearchCriteria) ([]string, int64, error)
	ListByUser(ctx context.Context, userID string) ([]Favorite, error)
	ExistingSubset(ctx context.Context, userID string, tipIDs []string) ([]string, error)
	AddBatch(ctx context.Context, userID string, tipIDs []string, addedAt time.Time) (int, error)
	RemoveAllForUser(ctx context.Context, userID string) (int, error)
}

// FavoriteRepository adds tip-aware reads on top of the store
type FavoriteRepository interface {
	FavoriteStore
	SearchUserFavorites(ctx context.Context, userID string, criteria SearchCriteria) (*FavoritePage, error)
	WithTipDetail(ctx context.Context, favorite *Favorite, tip *Tip) (*FavoriteWithTip, error)
}
