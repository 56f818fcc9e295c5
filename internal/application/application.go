package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/tentens-tech/lease-dashboard/internal/application/command/leasemanagement"
	"github.com/tentens-tech/lease-dashboard/internal/config"
	"github.com/tentens-tech/lease-dashboard/internal/infrastructure/cache"
	"github.com/tentens-tech/lease-dashboard/internal/infrastructure/catalog"
	"github.com/tentens-tech/lease-dashboard/internal/infrastructure/metrics"
	"github.com/tentens-tech/lease-dashboard/internal/infrastructure/reservation"
)

// ErrReservationNotConfigured is returned by lease operations when the
// catalog has no reservation service.
var ErrReservationNotConfigured = errors.New("reservation service is not configured")

// Request is the request or session context a dashboard view works in.
// Client handles are memoized per Request ID and Token until Release is
// called. ID must be generated server side, never taken from a caller.
type Request struct {
	ID      string
	Token   string
	Catalog catalog.Catalog

	idOnce sync.Once
}

func NewRequest(token string, serviceCatalog catalog.Catalog) *Request {
	return &Request{
		ID:      uuid.New().String(),
		Token:   token,
		Catalog: serviceCatalog,
	}
}

type Application struct {
	Ctx     context.Context
	Config  *config.Config
	Catalog catalog.Catalog
	Clients *cache.Cache

	newClient func(url, token string) *reservation.Client
	group     singleflight.Group
}

func New(ctx context.Context, cfg *config.Config, serviceCatalog catalog.Catalog, clients *cache.Cache) *Application {
	if clients == nil {
		clients = cache.New(cfg.Cache.Size)
	}

	return &Application{
		Ctx:     ctx,
		Config:  cfg,
		Catalog: serviceCatalog,
		Clients: clients,
		newClient: func(url, token string) *reservation.Client {
			return reservation.NewClient(url, token, cfg.Reservation.RequestTimeout)
		},
	}
}

// NewRequest starts a request context bound to the deployment catalog.
func (app *Application) NewRequest(token string) *Request {
	return NewRequest(token, app.Catalog)
}

// ReservationClient returns the reservation client memoized for req. When the
// catalog has no reservation service it returns a nil client and no error.
func (app *Application) ReservationClient(ctx context.Context, req *Request) (*reservation.Client, error) {
	key := req.handleKey()

	if handle, ok := app.Clients.Get(key); ok {
		metrics.ClientHandles.WithLabelValues(metrics.ClientHandleReused).Inc()
		return handle.(*reservation.Client), nil
	}

	value, err, _ := app.group.Do(key, func() (interface{}, error) {
		if handle, ok := app.Clients.Get(key); ok {
			metrics.ClientHandles.WithLabelValues(metrics.ClientHandleReused).Inc()
			return handle, nil
		}

		// Shared by every caller waiting on key: bound to the application context.
		url, err := app.catalogFor(req).URLFor(app.lookupContext(ctx), catalog.ServiceReservation)
		if err != nil {
			return nil, err
		}

		client := app.newClient(url, req.Token)
		app.Clients.Set(key, client, app.handleTTL())
		metrics.ClientHandles.WithLabelValues(metrics.ClientHandleCreated).Inc()
		log.Debugf("Reservation client created for request %v using url %v", req.ID, url)

		return client, nil
	})
	if errors.Is(err, catalog.ErrServiceNotConfigured) {
		metrics.ClientHandles.WithLabelValues(metrics.ClientHandleUnconfigured).Inc()
		log.Debug("No Reservation service is configured.")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve reservation service endpoint: %w", err)
	}

	return value.(*reservation.Client), nil
}

// Enabled reports whether the reservation service is available to req.
func (app *Application) Enabled(ctx context.Context, req *Request) (bool, error) {
	client, err := app.ReservationClient(ctx, req)
	if err != nil {
		return false, err
	}

	return client != nil, nil
}

// Release ends the request lifecycle and drops its memoized client.
func (app *Application) Release(req *Request) {
	if req == nil {
		return
	}

	app.Clients.Delete(req.handleKey())
}

func (app *Application) Close() error {
	app.Clients.Close()

	if closer, ok := app.Catalog.(io.Closer); ok {
		return closer.Close()
	}

	return nil
}

func (app *Application) LeaseList(ctx context.Context, req *Request) ([]leasemanagement.Lease, error) {
	client, err := app.leaseClient(ctx, req)
	if err != nil {
		return nil, err
	}

	return leasemanagement.List(ctx, client)
}

func (app *Application) LeaseGet(ctx context.Context, req *Request, leaseID string) (leasemanagement.Lease, error) {
	client, err := app.leaseClient(ctx, req)
	if err != nil {
		return leasemanagement.Lease{}, err
	}

	return leasemanagement.Get(ctx, client, leaseID)
}

func (app *Application) LeaseCreate(ctx context.Context, req *Request, name string, start, end time.Time, reservations, events []map[string]any) (leasemanagement.Lease, error) {
	client, err := app.leaseClient(ctx, req)
	if err != nil {
		return leasemanagement.Lease{}, err
	}

	return leasemanagement.Create(ctx, client, name, start, end, reservations, events)
}

func (app *Application) LeaseUpdate(ctx context.Context, req *Request, leaseID string, updates map[string]any) (leasemanagement.Lease, error) {
	client, err := app.leaseClient(ctx, req)
	if err != nil {
		return leasemanagement.Lease{}, err
	}

	return leasemanagement.Update(ctx, client, leaseID, updates)
}

func (app *Application) LeaseDelete(ctx context.Context, req *Request, leaseID string) error {
	client, err := app.leaseClient(ctx, req)
	if err != nil {
		return err
	}

	return leasemanagement.Delete(ctx, client, leaseID)
}

func (app *Application) leaseClient(ctx context.Context, req *Request) (leasemanagement.Client, error) {
	client, err := app.ReservationClient(ctx, req)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, ErrReservationNotConfigured
	}

	return client.Lease, nil
}

func (app *Application) catalogFor(req *Request) catalog.Catalog {
	if req.Catalog != nil {
		return req.Catalog
	}
	if app.Catalog != nil {
		return app.Catalog
	}

	return catalog.NewStatic(nil)
}

func (app *Application) lookupContext(ctx context.Context) context.Context {
	if app.Ctx != nil {
		return app.Ctx
	}

	return ctx
}

// handleKey assigns an ID on first use and binds the cache entry to the
// token, so a handle is never served to a caller holding another token.
func (r *Request) handleKey() string {
	r.idOnce.Do(func() {
		if r.ID == "" {
			r.ID = uuid.New().String()
		}
	})

	tokenSum := sha256.Sum256([]byte(r.Token))
	return r.ID + "/" + hex.EncodeToString(tokenSum[:])
}

func (app *Application) handleTTL() time.Duration {
	if app.Config == nil || app.Config.Cache.HandleTTL <= 0 {
		return config.DefaultClientHandleTTL
	}

	return app.Config.Cache.HandleTTL
}
