package bootstrap

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/tentens-tech/lease-dashboard/internal/application"
	"github.com/tentens-tech/lease-dashboard/internal/config"
	"github.com/tentens-tech/lease-dashboard/internal/infrastructure/cache"
	"github.com/tentens-tech/lease-dashboard/internal/infrastructure/catalog"
	"github.com/tentens-tech/lease-dashboard/internal/infrastructure/catalog/etcd"
)

func newCatalog(cfg *config.Config) (catalog.Catalog, error) {
	switch cfg.Catalog.Type {
	case "etcd":
		etcdCatalog, err := etcd.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create etcd catalog, %w", err)
		}
		return etcdCatalog, nil
	case "static":
		services := map[string]string{}
		if cfg.Catalog.File != "" {
			fileCatalog, err := catalog.LoadFile(cfg.Catalog.File)
			if err != nil {
				return nil, err
			}
			services = fileCatalog.Services()
		}

		staticCatalog := catalog.Merge(services, cfg.Catalog.Services)
		log.Infof("Using static service catalog with %d services", len(staticCatalog.Services()))
		return staticCatalog, nil
	}

	return nil, fmt.Errorf("unsupported catalog type: %v", cfg.Catalog.Type)
}

func newCache(cfg *config.Config) *cache.Cache {
	log.Infof("Client handle cache size %d, ttl %v", cfg.Cache.Size, cfg.Cache.HandleTTL)
	return cache.New(cfg.Cache.Size)
}

func NewApplication(ctx context.Context, cfg *config.Config) (*application.Application, error) {
	serviceCatalog, err := newCatalog(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create service catalog: %w", err)
	}

	app := application.New(ctx, cfg, serviceCatalog, newCache(cfg))

	return app, nil
}
