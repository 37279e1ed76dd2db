package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/tip-favorites/internal/favorite/domain"
	"github.com/tair/tip-favorites/internal/favorite/favoritetest"
)

var base = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	store      *favoritetest.Store
	tips       *favoritetest.Tips
	categories *favoritetest.Categories
	repo       *FavoritesRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store: favoritetest.NewStore(),
		tips: favoritetest.NewTips(
			domain.Tip{ID: "go-ctx", Title: "Pass context first", Description: "Always thread ctx", CategoryID: "c-go", Tags: []string{"go", "context"}, CreatedAt: base.Add(-72 * time.Hour)},
			domain.Tip{ID: "go-err", Title: "Wrap errors", Description: "Use %w", CategoryID: "c-go", Tags: []string{"go", "errors"}, CreatedAt: base.Add(-48 * time.Hour)},
			domain.Tip{ID: "sql-idx", Title: "Index foreign keys", Description: "Joins get slow otherwise", CategoryID: "c-db", Tags: []string{"sql"}, CreatedAt: base.Add(-96 * time.Hour)},
			domain.Tip{ID: "k8s-ready", Title: "Add readiness checks", Description: "Avoid traffic to cold pods", CategoryID: "c-ops", Tags: []string{"kubernetes"}, CreatedAt: base.Add(-24 * time.Hour)},
		),
		categories: favoritetest.NewCategories(map[string]string{"c-go": "Go", "c-db": "Databases", "c-ops": "Operations"}),
	}
	f.repo = NewFavoritesRepository(f.store, f.tips, f.categories)
	return f
}

func (f *fixture) favorite(t *testing.T, userID, tipID string, addedAt time.Time) {
	t.Helper()
	require.NoError(t, f.store.Add(context.Background(), domain.NewFavorite(userID, tipID, addedAt)))
}

func tipIDsOf(items []domain.FavoriteWithTip) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.TipID
	}
	return ids
}

func TestSearchUserFavorites_DefaultSortIsMostRecentlyAdded(t *testing.T) {
	f := newFixture(t)
	f.favorite(t, "u1", "go-ctx", base)
	f.favorite(t, "u1", "sql-idx", base.Add(time.Minute))
	f.favorite(t, "u1", "k8s-ready", base.Add(2*time.Minute))
	f.favorite(t, "u2", "go-err", base)

	page, err := f.repo.SearchUserFavorites(context.Background(), "u1", domain.SearchCriteria{})
	require.NoError(t, err)

	assert.Equal(t, []string{"k8s-ready", "sql-idx", "go-ctx"}, tipIDsOf(page.Items))
	assert.Equal(t, 3, page.TotalItems)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, 1, page.PageNumber)
	assert.Equal(t, domain.DefaultPageSize, page.PageSize)
	assert.Equal(t, "Operations", page.Items[0].CategoryName)
	assert.Equal(t, base.Add(2*time.Minute), page.Items[0].AddedAt)
}

func TestSearchUserFavorites_Filters(t *testing.T) {
	f := newFixture(t)
	for i, id := range []string{"go-ctx", "go-err", "sql-idx", "k8s-ready"} {
		f.favorite(t, "u1", id, base.Add(time.Duration(i)*time.Minute))
	}
	ctx := context.Background()

	tests := []struct {
		name     string
		criteria domain.SearchCriteria
		want     []string
	}{
		{"category", domain.SearchCriteria{CategoryID: "c-go", SortBy: domain.SortByTitle, SortDirection: domain.SortAsc}, []string{"go-ctx", "go-err"}},
		{"term in title is case insensitive", domain.SearchCriteria{Term: "WRAP"}, []string{"go-err"}},
		{"term in description", domain.SearchCriteria{Term: "cold pods"}, []string{"k8s-ready"}},
		{"term in tag", domain.SearchCriteria{Term: "kube"}, []string{"k8s-ready"}},
		{"any of tags", domain.SearchCriteria{Tags: []string{"sql", "errors"}, SortBy: domain.SortByTitle, SortDirection: domain.SortAsc}, []string{"sql-idx", "go-err"}},
		{"tag and category", domain.SearchCriteria{Tags: []string{"sql", "errors"}, CategoryID: "c-db"}, []string{"sql-idx"}},
		{"no match", domain.SearchCriteria{Term: "rust"}, []string{}},
		{"tip created desc", domain.SearchCriteria{SortBy: domain.SortByCreatedAt}, []string{"k8s-ready", "go-err", "go-ctx", "sql-idx"}},
		{"added asc", domain.SearchCriteria{SortDirection: domain.SortAsc}, []string{"go-ctx", "go-err", "sql-idx", "k8s-ready"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := f.repo.SearchUserFavorites(ctx, "u1", tt.criteria)
			require.NoError(t, err)
			assert.Equal(t, tt.want, tipIDsOf(page.Items))
			assert.Equal(t, len(tt.want), page.TotalItems)
		})
	}
}

func TestSearchUserFavorites_PagesReproduceFilteredSetOnce(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 23; i++ {
		id := fmt.Sprintf("tip%02d", i)
		category := "c-go"
		if i%3 == 0 {
			category = "c-db"
		}
		f.tips.Put(domain.Tip{ID: id, Title: fmt.Sprintf("Tip %02d", i), CategoryID: category, CreatedAt: base})
		f.favorite(t, "u1", id, base.Add(time.Duration(i)*time.Second))
	}
	ctx := context.Background()

	full, err := f.repo.SearchUserFavorites(ctx, "u1", domain.SearchCriteria{CategoryID: "c-go", PageSize: 100})
	require.NoError(t, err)
	require.Equal(t, 15, full.TotalItems)

	var collected []string
	for page := 1; page <= 4; page++ {
		result, err := f.repo.SearchUserFavorites(ctx, "u1", domain.SearchCriteria{CategoryID: "c-go", PageNumber: page, PageSize: 4})
		require.NoError(t, err)
		assert.Equal(t, 15, result.TotalItems)
		assert.Equal(t, 4, result.TotalPages)
		collected = append(collected, tipIDsOf(result.Items)...)
	}
	assert.Equal(t, tipIDsOf(full.Items), collected)

	beyond, err := f.repo.SearchUserFavorites(ctx, "u1", domain.SearchCriteria{CategoryID: "c-go", PageNumber: 5, PageSize: 4})
	require.NoError(t, err)
	assert.Empty(t, beyond.Items)
	assert.Equal(t, 15, beyond.TotalItems)
}

func TestSearchUserFavorites_OneBatchedLookupPerRequest(t *testing.T) {
	f := newFixture(t)
	for i, id := range []string{"go-ctx", "go-err", "sql-idx", "k8s-ready"} {
		f.favorite(t, "u1", id, base.Add(time.Duration(i)*time.Minute))
	}

	page, err := f.repo.SearchUserFavorites(context.Background(), "u1", domain.SearchCriteria{PageSize: 3})
	require.NoError(t, err)
	require.Len(t, page.Items, 3)

	assert.Equal(t, 1, f.tips.FindByIDsCalls)
	assert.Zero(t, f.tips.FindByIDCalls)
	assert.Equal(t, 1, f.categories.NamesByIDsCalls)
	for _, item := range page.Items {
		assert.NotEmpty(t, item.CategoryName)
	}
}

func TestSearchUserFavorites_SkipsDeletedTips(t *testing.T) {
	f := newFixture(t)
	f.favorite(t, "u1", "go-ctx", base)
	f.favorite(t, "u1", "go-err", base.Add(time.Minute))
	f.tips.Delete("go-err")

	page, err := f.repo.SearchUserFavorites(context.Background(), "u1", domain.SearchCriteria{})
	require.NoError(t, err)
	assert.Equal(t, []string{"go-ctx"}, tipIDsOf(page.Items))
	assert.Equal(t, 1, page.TotalItems)
}

func TestSearchUserFavorites_ReflectsCurrentTipState(t *testing.T) {
	f := newFixture(t)
	f.favorite(t, "u1", "go-ctx", base)
	f.tips.Put(domain.Tip{ID: "go-ctx", Title: "Context goes first", CategoryID: "c-go", CreatedAt: base})

	page, err := f.repo.SearchUserFavorites(context.Background(), "u1", domain.SearchCriteria{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Context goes first", page.Items[0].Title)
}

func TestSearchUserFavorites_EmptyMakesNoLookups(t *testing.T) {
	f := newFixture(t)

	page, err := f.repo.SearchUserFavorites(context.Background(), "u1", domain.SearchCriteria{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Zero(t, page.TotalPages)
	assert.Zero(t, f.tips.FindByIDsCalls)
	assert.Zero(t, f.categories.NamesByIDsCalls)
}

func TestSearchUserFavorites_InvalidSort(t *testing.T) {
	f := newFixture(t)

	_, err := f.repo.SearchUserFavorites(context.Background(), "u1", domain.SearchCriteria{SortBy: "popularity"})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestSearchUserFavorites_PageBeyondEndIsEmpty(t *testing.T) {
	f := newFixture(t)
	f.favorite(t, "u1", "go-ctx", base)

	for _, pageNumber := range []int{2, 500000000000000001} {
		var page *domain.FavoritePage
		var err error
		require.NotPanics(t, func() {
			page, err = f.repo.SearchUserFavorites(context.Background(), "u1", domain.SearchCriteria{PageNumber: pageNumber, PageSize: 20})
		})
		require.NoError(t, err)
		assert.Empty(t, page.Items)
		assert.Equal(t, 1, page.TotalItems)
		assert.Equal(t, 1, page.TotalPages)
	}
}

func TestWithTipDetail(t *testing.T) {
	f := newFixture(t)
	tip, err := f.tips.FindByID(context.Background(), "sql-idx")
	require.NoError(t, err)

	detail, err := f.repo.WithTipDetail(context.Background(), domain.NewFavorite("u1", "sql-idx", base), tip)
	require.NoError(t, err)
	assert.Equal(t, "Index foreign keys", detail.Title)
	assert.Equal(t, "Databases", detail.CategoryName)
	assert.Equal(t, []string{"sql"}, detail.Tags)
	assert.Equal(t, base, detail.AddedAt)
}
