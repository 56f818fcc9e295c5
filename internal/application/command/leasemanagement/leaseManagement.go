package leasemanagement

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/tentens-tech/lease-dashboard/internal/infrastructure/reservation"
)

// DateLayout is the format the reservation service accepts for lease dates.
const DateLayout = "2006-01-02 15:04"

// Client is the lease API of a reservation service connection.
type Client interface {
	List(ctx context.Context) ([]reservation.Record, error)
	Get(ctx context.Context, id string) (reservation.Record, error)
	Create(ctx context.Context, name, start, end string, reservations, events []map[string]any) (reservation.Record, error)
	Update(ctx context.Context, id string, updates map[string]any) (reservation.Record, error)
	Delete(ctx context.Context, id string) error
}

// List and the other operations return client errors unchanged.
func List(ctx context.Context, client Client) ([]Lease, error) {
	records, err := client.List(ctx)
	if err != nil {
		return nil, err
	}

	leases := make([]Lease, 0, len(records))
	for _, record := range records {
		lease, err := NewLease(record)
		if err != nil {
			return nil, err
		}
		leases = append(leases, lease)
	}

	return leases, nil
}

func Get(ctx context.Context, client Client, id string) (Lease, error) {
	record, err := client.Get(ctx, id)
	if err != nil {
		return Lease{}, err
	}

	return NewLease(record)
}

func Create(ctx context.Context, client Client, name string, start, end time.Time, reservations, events []map[string]any) (Lease, error) {
	log.Debugf("Creating lease %v from %v to %v", name, start, end)
	record, err := client.Create(ctx, name, start.UTC().Format(DateLayout), end.UTC().Format(DateLayout), reservations, events)
	if err != nil {
		return Lease{}, err
	}

	return NewLease(record)
}

func Update(ctx context.Context, client Client, id string, updates map[string]any) (Lease, error) {
	log.Debugf("Updating lease %v", id)
	record, err := client.Update(ctx, id, updates)
	if err != nil {
		return Lease{}, err
	}

	return NewLease(record)
}

func Delete(ctx context.Context, client Client, id string) error {
	log.Debugf("Deleting lease %v", id)
	return client.Delete(ctx, id)
}
