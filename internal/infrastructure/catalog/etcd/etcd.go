package etcd

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tentens-tech/lease-dashboard/internal/config"
	"github.com/tentens-tech/lease-dashboard/internal/infrastructure/catalog"
	"go.etcd.io/etcd/client/pkg/v3/transport"
	clientv3 "go.etcd.io/etcd/client/v3"
)

const (
	DefaultDialTimeout    = 5 * time.Second
	DefaultRequestTimeout = 5 * time.Second
)

type getter interface {
	Get(ctx context.Context, key string, opts ...clientv3.OpOption) (*clientv3.GetResponse, error)
}

// Catalog resolves service endpoints stored under <prefix><service type>.
type Catalog struct {
	Cli    *clientv3.Client
	kv     getter
	prefix string
}

func New(cfg *config.Config) (*Catalog, error) {
	var tlsConfig *tls.Config
	if cfg.Catalog.Etcd.TLSEnabled {
		tlsInfo := transport.TLSInfo{
			TrustedCAFile: cfg.Catalog.Etcd.ServerCACertPath,
			CertFile:      cfg.Catalog.Etcd.ServerClientCertPath,
			KeyFile:       cfg.Catalog.Etcd.ServerClientKeyPath,
		}

		var err error
		tlsConfig, err = tlsInfo.ClientConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to create TLS configuration for etcd endpoints: %w", err)
		}
	}

	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   cfg.Catalog.Etcd.EtcdAddrList,
		DialTimeout: DefaultDialTimeout,
		TLS:         tlsConfig,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to etcd: %w", err)
	}

	log.Infof("Using etcd service catalog at %v with prefix %v", cfg.Catalog.Etcd.EtcdAddrList, cfg.Catalog.Etcd.Prefix)

	return &Catalog{Cli: cli, kv: cli, prefix: cfg.Catalog.Etcd.Prefix}, nil
}

func (c *Catalog) URLFor(ctx context.Context, serviceType string) (string, error) {
	key := c.prefix + serviceType

	getCtx, cancel := context.WithTimeout(ctx, DefaultRequestTimeout)
	resp, err := c.kv.Get(getCtx, key)
	cancel()
	if err != nil {
		return "", fmt.Errorf("failed to get key %v from etcd: %w", key, err)
	}

	if len(resp.Kvs) == 0 {
		log.Debugf("Catalog key %v does not exist", key)
		return "", fmt.Errorf("%w: %s", catalog.ErrServiceNotConfigured, serviceType)
	}

	url := strings.TrimSpace(string(resp.Kvs[0].Value))
	if url == "" {
		return "", fmt.Errorf("%w: %s", catalog.ErrServiceNotConfigured, serviceType)
	}

	return strings.TrimRight(url, "/"), nil
}

func (c *Catalog) Close() error {
	if c.Cli == nil {
		return nil
	}

	return c.Cli.Close()
}
