package catalog

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/tair/tip-favorites/internal/favorite/domain"
	"github.com/tair/tip-favorites/pkg/batch"
	"github.com/tair/tip-favorites/pkg/database"
)

// DefaultMaxInValues is the largest id set sent in one IN query
const DefaultMaxInValues = 10

// Tables holds the namespaced catalog table names
type Tables struct {
	Tips       string
	Categories string
	Users      string
}

// NewTables names the catalog tables inside ns
func NewTables(ns database.Namespace) Tables {
	return Tables{
		Tips:       ns.Table(Tip{}.TableName()),
		Categories: ns.Table(Category{}.TableName()),
		Users:      ns.Table(User{}.TableName()),
	}
}

// GormTipReader implements domain.TipReader
type GormTipReader struct {
	db          *gorm.DB
	table       string
	maxInValues int
}

var _ domain.TipReader = (*GormTipReader)(nil)

// NewGormTipReader creates a tip reader
func NewGormTipReader(db *gorm.DB, tables Tables, maxInValues int) *GormTipReader {
	if maxInValues <= 0 {
		maxInValues = DefaultMaxInValues
	}
	return &GormTipReader{db: db, table: tables.Tips, maxInValues: maxInValues}
}

// FindByID loads one live tip
func (r *GormTipReader) FindByID(ctx context.Context, id string) (*domain.Tip, error) {
	var tip Tip
	err := r.db.WithContext(ctx).Table(r.table).Where("id = ?", id).Take(&tip).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("tip %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, infra("find tip", err)
	}
	t := tip.toDomain()
	return &t, nil
}

// FindByIDs loads live tips, maxInValues ids per query
func (r *GormTipReader) FindByIDs(ctx context.Context, ids []string) (map[string]domain.Tip, error) {
	found := make(map[string]domain.Tip, len(ids))
	err := batch.ForEachChunk(ctx, ids, r.maxInValues, func(ctx context.Context, chunk []string) error {
		var tips []Tip
		if err := r.db.WithContext(ctx).Table(r.table).Where("id IN ?", chunk).Find(&tips).Error; err != nil {
			return err
		}
		for _, tip := range tips {
			found[tip.ID] = tip.toDomain()
		}
		return nil
	})
	if err != nil {
		return nil, infra("find tips", err)
	}
	return found, nil
}

// GormCategoryReader implements domain.CategoryReader
type GormCategoryReader struct {
	db          *gorm.DB
	table       string
	maxInValues int
}

var _ domain.CategoryReader = (*GormCategoryReader)(nil)

// NewGormCategoryReader creates a category reader
func NewGormCategoryReader(db *gorm.DB, tables Tables, maxInValues int) *GormCategoryReader {
	if maxInValues <= 0 {
		maxInValues = DefaultMaxInValues
	}
	return &GormCategoryReader{db: db, table: tables.Categories, maxInValues: maxInValues}
}

// NamesByIDs resolves category names, maxInValues ids per query
func (r *GormCategoryReader) NamesByIDs(ctx context.Context, ids []string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	err := batch.ForEachChunk(ctx, ids, r.maxInValues, func(ctx context.Context, chunk []string) error {
		var categories []Category
		if err := r.db.WithContext(ctx).Table(r.table).Where("id IN ?", chunk).Find(&categories).Error; err != nil {
			return err
		}
		for _, c := range categories {
			names[c.ID] = c.Name
		}
		return nil
	})
	if err != nil {
		return nil, infra("find categories", err)
	}
	return names, nil
}

// GormUserReader implements domain.UserReader
type GormUserReader struct {
	db    *gorm.DB
	table string
}

var _ domain.UserReader = (*GormUserReader)(nil)

// NewGormUserReader creates a user reader
func NewGormUserReader(db *gorm.DB, tables Tables) *GormUserReader {
	return &GormUserReader{db: db, table: tables.Users}
}

// FindByID loads one live user
func (r *GormUserReader) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var user User
	err := r.db.WithContext(ctx).Table(r.table).Where("id = ?", id).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, infra("find user", err)
	}
	return &domain.User{ID: user.ID, Username: user.Username}, nil
}

// Migrate creates the catalog tables. Production tables belong to other
// services; this is used by local setups and tests.
func Migrate(ctx context.Context, db *gorm.DB, tables Tables) error {
	for table, model := range map[string]interface{}{
		tables.Tips:       &Tip{},
		tables.Categories: &Category{},
		tables.Users:      &User{},
	} {
		if err := db.WithContext(ctx).Table(table).AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %s: %w", table, err)
		}
	}
	return nil
}

func infra(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &domain.InfrastructureError{Op: op, Err: errors.WithStack(err)}
}
