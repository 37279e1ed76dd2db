//go:build wireinject
// +build wireinject

package favorite

import (
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/tair/tip-favorites/internal/config"
	"github.com/tair/tip-favorites/internal/favorite/delivery/http"
)

// InitializeHTTPHandler initializes HTTP handler with all dependencies
func InitializeHTTPHandler(db *gorm.DB, client *redis.Client, cfg *config.Config, reg prometheus.Registerer) (*http.FavoriteHandler, error) {
	wire.Build(
		StorageSet,
		UseCaseSet,
		ProvideTokenValidator,
		http.NewFavoriteHandler,
	)
	return nil, nil
}
