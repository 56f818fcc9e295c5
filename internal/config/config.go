package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultDebugMode                = false
	DefaultServerPort               = "8080"
	DefaultServerReadTimeout        = 10 * time.Second
	DefaultServerWriteTimeout       = 10 * time.Second
	DefaultServerIdleTimeout        = 120 * time.Second
	DefaultServerShutdownTimeout    = 10 * time.Second
	DefaultServerPPROFEnabled       = false
	DefaultCatalogType              = "static"
	DefaultCatalogServices          = ""
	DefaultCatalogFile              = ""
	DefaultEtcdAddrList             = "http://localhost:2379"
	DefaultEtcdTLSEnabled           = false
	DefaultEtcdServerCACertPath     = "/etc/etcd/ca.crt"
	DefaultEtcdServerClientCertPath = "/etc/etcd/client.crt"
	DefaultEtcdServerClientKeyPath  = "/etc/etcd/client.key"
	DefaultEtcdPrefix               = "/lease-dashboard/catalog/"
	DefaultReservationTimeout       = 30 * time.Second
	DefaultClientHandleTTL          = 5 * time.Minute
	DefaultCacheSize                = 1000
)

type Config struct {
	Server      ServerCfg
	Catalog     CatalogCfg
	Reservation ReservationCfg
	Cache       CacheCfg
	Debug       bool
}

type ServerCfg struct {
	Port         string
	PPROFEnabled bool
	Timeout      ServerTimeout
}

type ServerTimeout struct {
	Read     time.Duration
	Write    time.Duration
	Idle     time.Duration
	Shutdown time.Duration
}

type CatalogCfg struct {
	Type string `validate:"required" oneof:"static etcd"`
	// Services is the static catalog, service type to endpoint URL.
	Services map[string]string
	File     string
	Etcd     EtcdCfg
}

type EtcdCfg struct {
	EtcdAddrList         []string
	TLSEnabled           bool
	ServerCACertPath     string
	ServerClientCertPath string
	ServerClientKeyPath  string
	Prefix               string
}

type ReservationCfg struct {
	RequestTimeout time.Duration
}

type CacheCfg struct {
	HandleTTL time.Duration
	Size      int
}

func NewConfig() *Config {
	etcdEndpointsList, err := checkEtcdEndpointsList(getEnv("LEASE_DASHBOARD_ETCD_ADDR_LIST", DefaultEtcdAddrList))
	if err != nil {
		log.Fatal(err)
	}

	services, err := parseServices(getEnv("LEASE_DASHBOARD_CATALOG_SERVICES", DefaultCatalogServices))
	if err != nil {
		log.Fatal(err)
	}

	return &Config{
		Server: ServerCfg{
			Port:         getEnv("LEASE_DASHBOARD_SERVER_PORT", DefaultServerPort),
			PPROFEnabled: getEnv("LEASE_DASHBOARD_PPROF_ENABLED", bool(DefaultServerPPROFEnabled)),
			Timeout: ServerTimeout{
				Read:     getEnv("LEASE_DASHBOARD_SERVER_READ_TIMEOUT", DefaultServerReadTimeout),
				Write:    getEnv("LEASE_DASHBOARD_SERVER_WRITE_TIMEOUT", DefaultServerWriteTimeout),
				Idle:     getEnv("LEASE_DASHBOARD_SERVER_IDLE_TIMEOUT", DefaultServerIdleTimeout),
				Shutdown: getEnv("LEASE_DASHBOARD_SERVER_SHUTDOWN_TIMEOUT", DefaultServerShutdownTimeout),
			},
		},
		Catalog: CatalogCfg{
			Type:     getEnv("LEASE_DASHBOARD_CATALOG_TYPE", DefaultCatalogType),
			Services: services,
			File:     getEnv("LEASE_DASHBOARD_CATALOG_FILE", DefaultCatalogFile),
			Etcd: EtcdCfg{
				EtcdAddrList:         etcdEndpointsList,
				TLSEnabled:           getEnv("LEASE_DASHBOARD_ETCD_TLS", DefaultEtcdTLSEnabled),
				ServerCACertPath:     getEnv("LEASE_DASHBOARD_CA_CERT_PATH", DefaultEtcdServerCACertPath),
				ServerClientCertPath: getEnv("LEASE_DASHBOARD_CLIENT_CERT_PATH", DefaultEtcdServerClientCertPath),
				ServerClientKeyPath:  getEnv("LEASE_DASHBOARD_CLIENT_KEY_PATH", DefaultEtcdServerClientKeyPath),
				Prefix:               getEnv("LEASE_DASHBOARD_ETCD_PREFIX", DefaultEtcdPrefix),
			},
		},
		Reservation: ReservationCfg{
			RequestTimeout: getEnv("LEASE_DASHBOARD_RESERVATION_TIMEOUT", DefaultReservationTimeout),
		},
		Cache: CacheCfg{
			HandleTTL: getEnv("LEASE_DASHBOARD_CLIENT_HANDLE_TTL", DefaultClientHandleTTL),
			Size:      getEnv("LEASE_DASHBOARD_CACHE_SIZE", DefaultCacheSize),
		},
		Debug: getEnv("LEASE_DASHBOARD_DEBUG", bool(DefaultDebugMode)),
	}
}

func getEnv[T any](key string, defaultVal T) T {
	if value, exists := os.LookupEnv(key); exists {
		switch any(defaultVal).(type) {
		case string:
			return any(value).(T)
		case int:
			if intVal, err := strconv.Atoi(value); err == nil {
				return any(intVal).(T)
			}
		case bool:
			if boolVal, err := strconv.ParseBool(value); err == nil {
				return any(boolVal).(T)
			}
		case time.Duration:
			if durationVal, err := time.ParseDuration(value); err == nil {
				return any(durationVal).(T)
			}
		}
	}

	return defaultVal
}

func checkEtcdEndpointsList(etcdEndpointsList string) ([]string, error) {
	etcdEndpoints := strings.Split(etcdEndpointsList, ",")
	if len(etcdEndpoints) == 0 {
		return nil, fmt.Errorf("no etcd endpoints provided")
	}
	if strings.ContainsAny(etcdEndpointsList, ";|") {
		return nil, fmt.Errorf("invalid separator in etcd endpoints. Use comma (,) to separate endpoints")
	}

	for i, endpoint := range etcdEndpoints {
		if endpoint = strings.TrimSpace(endpoint); endpoint == "" {
			return nil, fmt.Errorf("empty etcd endpoint provided")
		}
		etcdEndpoints[i] = endpoint
	}

	return etcdEndpoints, nil
}

// parseServices reads a "type=url,type=url" list.
func parseServices(servicesList string) (map[string]string, error) {
	services := make(map[string]string)
	if strings.TrimSpace(servicesList) == "" {
		return services, nil
	}

	for _, entry := range strings.Split(servicesList, ",") {
		serviceType, url, found := strings.Cut(strings.TrimSpace(entry), "=")
		serviceType = strings.TrimSpace(serviceType)
		url = strings.TrimSpace(url)
		if !found || serviceType == "" || url == "" {
			return nil, fmt.Errorf("invalid catalog entry %q, expected type=url", entry)
		}
		services[serviceType] = url
	}

	return services, nil
}
