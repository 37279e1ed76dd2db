package favorite

import (
	"context"
	"fmt"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/tair/tip-favorites/internal/catalog"
	"github.com/tair/tip-favorites/internal/config"
	"github.com/tair/tip-favorites/internal/favorite/delivery/http"
	"github.com/tair/tip-favorites/internal/favorite/domain"
	"github.com/tair/tip-favorites/internal/favorite/repository"
	"github.com/tair/tip-favorites/internal/favorite/store"
	"github.com/tair/tip-favorites/internal/favorite/usecase/command"
	"github.com/tair/tip-favorites/internal/favorite/usecase/query"
	"github.com/tair/tip-favorites/pkg/auth"
	"github.com/tair/tip-favorites/pkg/database"
)

// ProvideNamespace provides the table namespace from the configured prefix
func ProvideNamespace(cfg *config.Config) (database.Namespace, error) {
	return database.NewNamespace(cfg.TablePrefix)
}

func provideLimits(cfg *config.Config) store.Limits {
	return store.Limits{MaxInValues: cfg.MaxInValues, MaxBatchWrites: cfg.MaxBatchWrites}
}

// ProvideFavoriteStore provides the traced gorm favorites store
func ProvideFavoriteStore(db *gorm.DB, ns database.Namespace, cfg *config.Config) domain.FavoriteStore {
	return store.NewTracingStore(store.NewGormFavoriteStore(db, ns, provideLimits(cfg)))
}

// ProvideTipReader provides the tip reader
func ProvideTipReader(db *gorm.DB, tables catalog.Tables, cfg *config.Config) domain.TipReader {
	return catalog.NewGormTipReader(db, tables, cfg.MaxInValues)
}

// ProvideUserReader provides the user reader
func ProvideUserReader(db *gorm.DB, tables catalog.Tables) domain.UserReader {
	return catalog.NewGormUserReader(db, tables)
}

// ProvideCategoryReader provides the category reader, cached in Redis when
// a client is configured
func ProvideCategoryReader(db *gorm.DB, tables catalog.Tables, client *redis.Client, cfg *config.Config) domain.CategoryReader {
	var cache catalog.NameCache
	if client != nil {
		cache = catalog.NewRedisNameCache(client)
	}
	return catalog.NewCachedCategoryReader(cache, catalog.NewGormCategoryReader(db, tables, cfg.MaxInValues), cfg.CategoryCacheTTL)
}

// ProvideFavoritesRepository provides the favorites repository
func ProvideFavoritesRepository(s domain.FavoriteStore, tips domain.TipReader, categories domain.CategoryReader) domain.FavoriteRepository {
	return repository.NewFavoritesRepository(s, tips, categories)
}

// ProvideMergeFavoritesHandler provides the merge handler with the configured size cap
func ProvideMergeFavoritesHandler(repo domain.FavoriteRepository, users domain.UserReader, tips domain.TipReader, cfg *config.Config) *command.MergeFavoritesHandler {
	return command.NewMergeFavoritesHandler(repo, users, tips, cfg.MaxMergeSize)
}

// ProvideTokenValidator provides the JWT validator
func ProvideTokenValidator(cfg *config.Config) http.TokenValidator {
	return auth.NewValidator(cfg.JWTSecret, cfg.JWTIssuer)
}

// Wire sets
var StorageSet = wire.NewSet(
	ProvideNamespace,
	ProvideFavoriteStore,
	catalog.NewTables,
	ProvideTipReader,
	ProvideUserReader,
	ProvideCategoryReader,
	ProvideFavoritesRepository,
)

var UseCaseSet = wire.NewSet(
	command.NewAddFavoriteHandler,
	command.NewRemoveFavoriteHandler,
	command.NewClearFavoritesHandler,
	ProvideMergeFavoritesHandler,
	query.NewSearchFavoritesHandler,
)

// Migrate creates the favorites table and, when enabled, the catalog tables
// the readers query.
func Migrate(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	ns, err := ProvideNamespace(cfg)
	if err != nil {
		return err
	}

	if err := store.NewGormFavoriteStore(db, ns, provideLimits(cfg)).Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate favorites: %w", err)
	}

	if cfg.MigrateCatalog {
		if err := catalog.Migrate(ctx, db, catalog.NewTables(ns)); err != nil {
			return fmt.Errorf("failed to migrate catalog: %w", err)
		}
	}
	return nil
}
