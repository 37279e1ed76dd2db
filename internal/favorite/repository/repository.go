package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/tair/tip-favorites/internal/favorite/domain"
)

// FavoritesRepository joins the favorites store with the tip and category
// read side. Filtering by tip attributes happens in memory because the
// store cannot filter favorites by fields of another collection, so a
// search costs one read of all the user's favorites.
type FavoritesRepository struct {
	domain.FavoriteStore
	tips       domain.TipReader
	categories domain.CategoryReader
}

var _ domain.FavoriteRepository = (*FavoritesRepository)(nil)

// NewFavoritesRepository creates a new favorites repository
func NewFavoritesRepository(store domain.FavoriteStore, tips domain.TipReader, categories domain.CategoryReader) *FavoritesRepository {
	return &FavoritesRepository{
		FavoriteStore: store,
		tips:          tips,
		categories:    categories,
	}
}

// SearchUserFavorites filters, sorts and pages the user's favorites by the
// attributes of their tips.
func (r *FavoritesRepository) SearchUserFavorites(ctx context.Context, userID string, criteria domain.SearchCriteria) (*domain.FavoritePage, error) {
	criteria, err := criteria.Normalize()
	if err != nil {
		return nil, err
	}

	// paging raw favorites would be wrong once tip filters apply
	favorites, err := r.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}

	page := &domain.FavoritePage{
		Items:      []domain.FavoriteWithTip{},
		PageNumber: criteria.PageNumber,
		PageSize:   criteria.PageSize,
	}
	if len(favorites) == 0 {
		return page, nil
	}

	ids := make([]string, len(favorites))
	for i, f := range favorites {
		ids[i] = f.TipID
	}
	tips, err := r.tips.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load favorite tips: %w", err)
	}

	matched := make([]domain.FavoriteWithTip, 0, len(favorites))
	for _, f := range favorites {
		tip, ok := tips[f.TipID]
		if !ok {
			// tip deleted since it was favorited
			continue
		}
		if !matches(tip, criteria) {
			continue
		}
		matched = append(matched, domain.NewFavoriteWithTip(f, tip))
	}

	sortFavorites(matched, criteria.SortBy, criteria.SortDirection)

	page.TotalItems = len(matched)
	page.TotalPages = domain.TotalPages(len(matched), criteria.PageSize)

	start := criteria.Offset()
	if start < 0 || start >= len(matched) {
		return page, nil
	}
	end := start + criteria.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	page.Items = matched[start:end]

	if err := r.attachCategoryNames(ctx, page.Items); err != nil {
		return nil, err
	}
	return page, nil
}

// WithTipDetail joins favorite with tip and the tip's category name
func (r *FavoritesRepository) WithTipDetail(ctx context.Context, favorite *domain.Favorite, tip *domain.Tip) (*domain.FavoriteWithTip, error) {
	item := []domain.FavoriteWithTip{domain.NewFavoriteWithTip(*favorite, *tip)}
	if err := r.attachCategoryNames(ctx, item); err != nil {
		return nil, err
	}
	return &item[0], nil
}

// attachCategoryNames resolves all category names of items in one lookup
func (r *FavoritesRepository) attachCategoryNames(ctx context.Context, items []domain.FavoriteWithTip) error {
	seen := make(map[string]struct{})
	var ids []string
	for _, item := range items {
		if item.CategoryID == "" {
			continue
		}
		if _, ok := seen[item.CategoryID]; ok {
			continue
		}
		seen[item.CategoryID] = struct{}{}
		ids = append(ids, item.CategoryID)
	}
	if len(ids) == 0 {
		return nil
	}

	names, err := r.categories.NamesByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to load category names: %w", err)
	}
	for i := range items {
		items[i].CategoryName = names[items[i].CategoryID]
	}
	return nil
}

// matches applies the term, category and tag filters. A tip matches the tag
// filter when it carries any of the requested tags.
func matches(tip domain.Tip, c domain.SearchCriteria) bool {
	if c.CategoryID != "" && tip.CategoryID != c.CategoryID {
		return false
	}

	if len(c.Tags) > 0 && !hasAnyTag(tip.Tags, c.Tags) {
		return false
	}

	if c.Term != "" {
		term := strings.ToLower(c.Term)
		if !strings.Contains(strings.ToLower(tip.Title), term) &&
			!strings.Contains(strings.ToLower(tip.Description), term) &&
			!hasTagContaining(tip.Tags, term) {
			return false
		}
	}
	return true
}

func hasAnyTag(tags, wanted []string) bool {
	for _, tag := range tags {
		for _, w := range wanted {
			if strings.EqualFold(tag, w) {
				return true
			}
		}
	}
	return false
}

func hasTagContaining(tags []string, term string) bool {
	for _, tag := range tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}

// sortFavorites orders items by field and direction; tip id breaks ties so
// that paging is deterministic.
func sortFavorites(items []domain.FavoriteWithTip, field, direction string) {
	compare := func(a, b domain.FavoriteWithTip) int {
		switch field {
		case domain.SortByTitle:
			return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		case domain.SortByCreatedAt:
			return a.TipCreatedAt.Compare(b.TipCreatedAt)
		default:
			return a.AddedAt.Compare(b.AddedAt)
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		c := compare(items[i], items[j])
		if direction == domain.SortDesc {
			c = -c
		}
		if c != 0 {
			return c < 0
		}
		return items[i].TipID < items[j].TipID
	})
}
