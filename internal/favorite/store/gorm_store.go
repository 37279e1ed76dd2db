package store

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tair/tip-favorites/internal/favorite/domain"
	"github.com/tair/tip-favorites/pkg/batch"
	"github.com/tair/tip-favorites/pkg/database"
)

// Limits are the structural limits of the favorites collection.
type Limits struct {
	// MaxInValues is the largest value set a single IN query may carry.
	MaxInValues int
	// MaxBatchWrites is the largest number of writes in one atomic batch.
	MaxBatchWrites int
}

// DefaultLimits returns the production store limits
func DefaultLimits() Limits {
	return Limits{MaxInValues: 10, MaxBatchWrites: 500}
}

func (l Limits) withDefaults() Limits {
	def := DefaultLimits()
	if l.MaxInValues <= 0 {
		l.MaxInValues = def.MaxInValues
	}
	if l.MaxBatchWrites <= 0 {
		l.MaxBatchWrites = def.MaxBatchWrites
	}
	return l
}

var upsertByKey = clause.OnConflict{
	Columns:   []clause.Column{{Name: "id"}},
	UpdateAll: true,
}

// GormFavoriteStore implements domain.FavoriteStore using GORM
type GormFavoriteStore struct {
	db     *gorm.DB
	table  string
	limits Limits
}

var _ domain.FavoriteStore = (*GormFavoriteStore)(nil)

// NewGormFavoriteStore creates a favorites store on the namespaced favorites table
func NewGormFavoriteStore(db *gorm.DB, ns database.Namespace, limits Limits) *GormFavoriteStore {
	return &GormFavoriteStore{
		db:     db,
		table:  ns.Table(domain.Favorite{}.TableName()),
		limits: limits.withDefaults(),
	}
}

// Table returns the name of the backing table
func (s *GormFavoriteStore) Table() string {
	return s.table
}

// Migrate creates the favorites table and its owner index
func (s *GormFavoriteStore) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Table(s.table).AutoMigrate(&domain.Favorite{}); err != nil {
		return fail("migrate favorites", err)
	}
	stmt := fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s_user_added_idx ON %s (user_id, created_at)", s.table, s.table)
	if err := s.db.WithContext(ctx).Exec(stmt).Error; err != nil {
		return fail("migrate favorites", err)
	}
	return nil
}

func (s *GormFavoriteStore) collection(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Table(s.table)
}

// Get reads one favorite by its composite key
func (s *GormFavoriteStore) Get(ctx context.Context, userID, tipID string) (*domain.Favorite, error) {
	key := domain.FavoriteKey(userID, tipID)

	var favorite domain.Favorite
	err := s.collection(ctx).Where("id = ?", key).Take(&favorite).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("favorite %s: %w", key, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fail("get favorite", err)
	}
	return &favorite, nil
}

// Add upserts favorite by its composite key. Writing the same pair twice
// leaves a single row.
func (s *GormFavoriteStore) Add(ctx context.Context, favorite *domain.Favorite) error {
	favorite.ID = domain.FavoriteKey(favorite.UserID, favorite.TipID)
	if err := s.collection(ctx).Clauses(upsertByKey).Create(favorite).Error; err != nil {
		return fail("add favorite", err)
	}
	return nil
}

// Remove deletes the favorite of the pair and reports whether a row was removed
func (s *GormFavoriteStore) Remove(ctx context.Context, userID, tipID string) (bool, error) {
	result := s.collection(ctx).
		Where("id = ?", domain.FavoriteKey(userID, tipID)).
		Delete(&domain.Favorite{})
	if result.Error != nil {
		return false, fail("remove favorite", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// Search returns one page of the user's favorite tip ids ordered by the
// time they were added, plus the user's total favorite count.
func (s *GormFavoriteStore) Search(ctx context.Context, userID string, criteria domain.SearchCriteria) ([]string, int64, error) {
	criteria, err := criteria.Normalize()
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := s.collection(ctx).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, fail("count favorites", err)
	}

	tipIDs := []string{}
	err = s.collection(ctx).
		Where("user_id = ?", userID).
		Order(addedOrder(criteria.SortDirection)).
		Offset(criteria.Offset()).
		Limit(criteria.PageSize).
		Pluck("tip_id", &tipIDs).Error
	if err != nil {
		return nil, 0, fail("search favorites", err)
	}
	return tipIDs, total, nil
}

// ListByUser returns all favorites of the user, most recently added first
func (s *GormFavoriteStore) ListByUser(ctx context.Context, userID string) ([]domain.Favorite, error) {
	favorites := []domain.Favorite{}
	err := s.collection(ctx).
		Where("user_id = ?", userID).
		Order(addedOrder(domain.SortDesc)).
		Find(&favorites).Error
	if err != nil {
		return nil, fail("list favorites", err)
	}
	return favorites, nil
}

// ExistingSubset returns the tip ids among tipIDs the user has already
// favorited. Candidates are checked MaxInValues at a time.
func (s *GormFavoriteStore) ExistingSubset(ctx context.Context, userID string, tipIDs []string) ([]string, error) {
	existing := []string{}
	err := batch.ForEachChunk(ctx, unique(tipIDs), s.limits.MaxInValues, func(ctx context.Context, chunk []string) error {
		var found []string
		if err := s.collection(ctx).
			Where("user_id = ? AND tip_id IN ?", userID, chunk).
			Pluck("tip_id", &found).Error; err != nil {
			return err
		}
		existing = append(existing, found...)
		return nil
	})
	if err != nil {
		return nil, fail("check existing favorites", err)
	}
	return existing, nil
}

// AddBatch writes one favorite per tip id, MaxBatchWrites rows per
// transaction. Chunks run in order; when one fails, the rows of earlier
// chunks stay committed and their count is returned with the error.
func (s *GormFavoriteStore) AddBatch(ctx context.Context, userID string, tipIDs []string, addedAt time.Time) (int, error) {
	committed := 0
	err := batch.ForEachChunk(ctx, unique(tipIDs), s.limits.MaxBatchWrites, func(ctx context.Context, chunk []string) error {
		rows := make([]domain.Favorite, 0, len(chunk))
		for _, tipID := range chunk {
			rows = append(rows, *domain.NewFavorite(userID, tipID, addedAt))
		}

		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return tx.Table(s.table).Clauses(upsertByKey).Create(&rows).Error
		})
		if err != nil {
			return err
		}
		committed += len(rows)
		return nil
	})
	if err != nil {
		return committed, fail(fmt.Sprintf("add favorites batch (%d committed)", committed), err)
	}
	return committed, nil
}

// RemoveAllForUser deletes every favorite of the user, MaxBatchWrites rows
// per transaction, and returns how many rows were removed.
func (s *GormFavoriteStore) RemoveAllForUser(ctx context.Context, userID string) (int, error) {
	var keys []string
	if err := s.collection(ctx).Where("user_id = ?", userID).Pluck("id", &keys).Error; err != nil {
		return 0, fail("list favorite keys", err)
	}

	removed := 0
	err := batch.ForEachChunk(ctx, keys, s.limits.MaxBatchWrites, func(ctx context.Context, chunk []string) error {
		var n int64
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			result := tx.Table(s.table).Where("id IN ?", chunk).Delete(&domain.Favorite{})
			n = result.RowsAffected
			return result.Error
		})
		if err != nil {
			return err
		}
		removed += int(n)
		return nil
	})
	if err != nil {
		return removed, fail(fmt.Sprintf("remove favorites batch (%d removed)", removed), err)
	}
	return removed, nil
}

func addedOrder(direction string) string {
	if direction == domain.SortAsc {
		return "created_at ASC, tip_id ASC"
	}
	return "created_at DESC, tip_id ASC"
}

// fail wraps a driver error as an infrastructure failure. Context errors
// pass through so callers can tell cancellation apart.
func fail(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &domain.InfrastructureError{Op: op, Err: errors.WithStack(err)}
}

func unique(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
