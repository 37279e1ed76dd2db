package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/tip-favorites/internal/favorite/domain"
	"github.com/tair/tip-favorites/internal/favorite/favoritetest"
	"github.com/tair/tip-favorites/internal/favorite/repository"
)

func TestSearchFavoritesHandler(t *testing.T) {
	store := favoritetest.NewStore()
	tips := favoritetest.NewTips(
		domain.Tip{ID: "a", Title: "Alpha", CategoryID: "c1"},
		domain.Tip{ID: "b", Title: "Beta", CategoryID: "c1"},
		domain.Tip{ID: "c", Title: "Gamma", CategoryID: "c2"},
	)
	categories := favoritetest.NewCategories(map[string]string{"c1": "One", "c2": "Two"})
	users := favoritetest.Users{"u1": {ID: "u1"}}
	h := NewSearchFavoritesHandler(repository.NewFavoritesRepository(store, tips, categories), users)
	ctx := context.Background()

	now := time.Now()
	_, err := store.AddBatch(ctx, "u1", []string{"a", "b", "c"}, now)
	require.NoError(t, err)

	page, err := h.Handle(ctx, SearchFavoritesQuery{
		UserID:   "u1",
		Criteria: domain.SearchCriteria{CategoryID: "c1", SortBy: domain.SortByTitle, SortDirection: "ASC", PageSize: 1, PageNumber: 2},
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "b", page.Items[0].TipID)
	assert.Equal(t, "One", page.Items[0].CategoryName)
	assert.Equal(t, 2, page.TotalItems)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, 2, page.PageNumber)
	assert.Equal(t, 1, page.PageSize)
}

func TestSearchFavoritesHandler_Errors(t *testing.T) {
	store := favoritetest.NewStore()
	repo := repository.NewFavoritesRepository(store, favoritetest.NewTips(), favoritetest.NewCategories(nil))
	h := NewSearchFavoritesHandler(repo, favoritetest.Users{"u1": {ID: "u1"}})
	ctx := context.Background()

	_, err := h.Handle(ctx, SearchFavoritesQuery{UserID: "ghost"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = h.Handle(ctx, SearchFavoritesQuery{UserID: "u1", Criteria: domain.SearchCriteria{SortDirection: "sideways"}})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = h.Handle(ctx, SearchFavoritesQuery{UserID: ""})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}
