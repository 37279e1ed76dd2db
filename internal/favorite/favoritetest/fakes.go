// Package favoritetest provides in-memory implementations of the favorites
// store and of its collaborators, for tests.
package favoritetest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/tair/tip-favorites/internal/favorite/domain"
)

// Store is an in-memory domain.FavoriteStore keyed by the composite key.
type Store struct {
	mu        sync.Mutex
	favorites map[string]domain.Favorite

	// AddBatchErr, when set, makes AddBatch fail after committing
	// AddBatchCommitBeforeErr ids.
	AddBatchErr             error
	AddBatchCommitBeforeErr int

	ExistingSubsetCalls int
	AddBatchCalls       int
	ListByUserCalls     int
}

var _ domain.FavoriteStore = (*Store)(nil)

// NewStore returns an empty store
func NewStore() *Store {
	return &Store{favorites: make(map[string]domain.Favorite)}
}

// Count returns the number of stored favorites of userID
func (s *Store) Count(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, f := range s.favorites {
		if f.UserID == userID {
			n++
		}
	}
	return n
}

func (s *Store) Get(_ context.Context, userID, tipID string) (*domain.Favorite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.favorites[domain.FavoriteKey(userID, tipID)]
	if !ok {
		return nil, fmt.Errorf("favorite %s: %w", domain.FavoriteKey(userID, tipID), domain.ErrNotFound)
	}
	return &f, nil
}

func (s *Store) Add(_ context.Context, favorite *domain.Favorite) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	favorite.ID = domain.FavoriteKey(favorite.UserID, favorite.TipID)
	s.favorites[favorite.ID] = *favorite
	return nil
}

func (s *Store) Remove(_ context.Context, userID, tipID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := domain.FavoriteKey(userID, tipID)
	_, ok := s.favorites[key]
	delete(s.favorites, key)
	return ok, nil
}

func (s *Store) Search(ctx context.Context, userID string, criteria domain.SearchCriteria) ([]string, int64, error) {
	criteria, err := criteria.Normalize()
	if err != nil {
		return nil, 0, err
	}
	all, _ := s.list(userID)
	if criteria.SortDirection == domain.SortAsc {
		for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
			all[i], all[j] = all[j], all[i]
		}
	}

	ids := []string{}
	for i := criteria.Offset(); i < len(all) && len(ids) < criteria.PageSize; i++ {
		ids = append(ids, all[i].TipID)
	}
	return ids, int64(len(all)), nil
}

func (s *Store) ListByUser(_ context.Context, userID string) ([]domain.Favorite, error) {
	s.mu.Lock()
	s.ListByUserCalls++
	s.mu.Unlock()
	return s.list(userID)
}

func (s *Store) list(userID string) ([]domain.Favorite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []domain.Favorite{}
	for _, f := range s.favorites {
		if f.UserID == userID {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].TipID < out[j].TipID
	})
	return out, nil
}

func (s *Store) ExistingSubset(_ context.Context, userID string, tipIDs []string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ExistingSubsetCalls++
	existing := []string{}
	seen := make(map[string]struct{})
	for _, id := range tipIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := s.favorites[domain.FavoriteKey(userID, id)]; ok {
			existing = append(existing, id)
		}
	}
	return existing, nil
}

func (s *Store) AddBatch(_ context.Context, userID string, tipIDs []string, addedAt time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.AddBatchCalls++
	committed := 0
	for _, id := range tipIDs {
		if s.AddBatchErr != nil && committed == s.AddBatchCommitBeforeErr {
			return committed, &domain.InfrastructureError{Op: "add favorites batch", Err: s.AddBatchErr}
		}
		f := domain.NewFavorite(userID, id, addedAt)
		s.favorites[f.ID] = *f
		committed++
	}
	return committed, nil
}

func (s *Store) RemoveAllForUser(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, f := range s.favorites {
		if f.UserID == userID {
			delete(s.favorites, key)
			removed++
		}
	}
	return removed, nil
}

// Users is an in-memory domain.UserReader
type Users map[string]domain.User

func (u Users) FindByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := u[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	return &user, nil
}

// Tips is an in-memory domain.TipReader that counts its calls
type Tips struct {
	mu   sync.Mutex
	tips map[string]domain.Tip

	FindByIDCalls  int
	FindByIDsCalls int
	Err            error
}

var _ domain.TipReader = (*Tips)(nil)

// NewTips returns a reader over tips
func NewTips(tips ...domain.Tip) *Tips {
	t := &Tips{tips: make(map[string]domain.Tip)}
	for _, tip := range tips {
		t.tips[tip.ID] = tip
	}
	return t
}

// Put adds or replaces a tip
func (t *Tips) Put(tip domain.Tip) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tips[tip.ID] = tip
}

// Delete removes a tip
func (t *Tips) Delete(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.tips, id)
}

func (t *Tips) FindByID(_ context.Context, id string) (*domain.Tip, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.FindByIDCalls++
	if t.Err != nil {
		return nil, t.Err
	}
	tip, ok := t.tips[id]
	if !ok {
		return nil, fmt.Errorf("tip %s: %w", id, domain.ErrNotFound)
	}
	return &tip, nil
}

func (t *Tips) FindByIDs(_ context.Context, ids []string) (map[string]domain.Tip, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.FindByIDsCalls++
	if t.Err != nil {
		return nil, t.Err
	}
	found := make(map[string]domain.Tip, len(ids))
	for _, id := range ids {
		if tip, ok := t.tips[id]; ok {
			found[id] = tip
		}
	}
	return found, nil
}

// Categories is an in-memory domain.CategoryReader that counts its calls
type Categories struct {
	mu    sync.Mutex
	names map[string]string

	NamesByIDsCalls int
	Err             error
}

var _ domain.CategoryReader = (*Categories)(nil)

// NewCategories returns a reader over id -> name
func NewCategories(names map[string]string) *Categories {
	return &Categories{names: names}
}

func (c *Categories) NamesByIDs(_ context.Context, ids []string) (map[string]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.NamesByIDsCalls++
	if c.Err != nil {
		return nil, c.Err
	}
	out := make(map[string]string, len(ids))
	for _, id := range ids {
		if name, ok := c.names[id]; ok {
			out[id] = name
		}
	}
	return out, nil
}
