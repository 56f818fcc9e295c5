package reservation

import (
	"context"
	"net/http"
	"net/url"

	"github.com/tentens-tech/lease-dashboard/internal/infrastructure/metrics"
)

type LeaseManager struct {
	client *Client
}

type leaseEnvelope struct {
	Lease Record `json:"lease"`
}

type leasesEnvelope struct {
	Leases []Record `json:"leases"`
}

type CreateLeaseRequest struct {
	Name         string           `json:"name"`
	StartDate    string           `json:"start_date"`
	EndDate      string           `json:"end_date"`
	Reservations []map[string]any `json:"reservations"`
	Events       []map[string]any `json:"events"`
}

func leasePath(id string) string {
	return "/leases/" + url.PathEscape(id)
}

func (m *LeaseManager) List(ctx context.Context) ([]Record, error) {
	var envelope leasesEnvelope
	if err := m.client.do(ctx, metrics.LeaseOperationList, http.MethodGet, "/leases", nil, &envelope); err != nil {
		return nil, err
	}

	return envelope.Leases, nil
}

func (m *LeaseManager) Get(ctx context.Context, id string) (Record, error) {
	var envelope leaseEnvelope
	if err := m.client.do(ctx, metrics.LeaseOperationGet, http.MethodGet, leasePath(id), nil, &envelope); err != nil {
		return nil, err
	}

	return envelope.Lease, nil
}

func (m *LeaseManager) Create(ctx context.Context, name, start, end string, reservations, events []map[string]any) (Record, error) {
	if reservations == nil {
		reservations = []map[string]any{}
	}
	if events == nil {
		events = []map[string]any{}
	}

	request := CreateLeaseRequest{
		Name:         name,
		StartDate:    start,
		EndDate:      end,
		Reservations: reservations,
		Events:       events,
	}

	var envelope leaseEnvelope
	if err := m.client.do(ctx, metrics.LeaseOperationCreate, http.MethodPost, "/leases", request, &envelope); err != nil {
		return nil, err
	}

	return envelope.Lease, nil
}

func (m *LeaseManager) Update(ctx context.Context, id string, updates map[string]any) (Record, error) {
	if updates == nil {
		updates = map[string]any{}
	}

	var envelope leaseEnvelope
	if err := m.client.do(ctx, metrics.LeaseOperationUpdate, http.MethodPut, leasePath(id), updates, &envelope); err != nil {
		return nil, err
	}

	return envelope.Lease, nil
}

func (m *LeaseManager) Delete(ctx context.Context, id string) error {
	return m.client.do(ctx, metrics.LeaseOperationDelete, http.MethodDelete, leasePath(id), nil, nil)
}
