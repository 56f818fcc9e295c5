package leasemanagement

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tentens-tech/lease-dashboard/internal/infrastructure/reservation"
)

type MockClient struct {
	listFunc   func(ctx context.Context) ([]reservation.Record, error)
	getFunc    func(ctx context.Context, id string) (reservation.Record, error)
	createFunc func(ctx context.Context, name, start, end string, reservations, events []map[string]any) (reservation.Record, error)
	updateFunc func(ctx context.Context, id string, updates map[string]any) (reservation.Record, error)
	deleteFunc func(ctx context.Context, id string) error
}

func (m *MockClient) List(ctx context.Context) ([]reservation.Record, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return nil, nil
}

func (m *MockClient) Get(ctx context.Context, id string) (reservation.Record, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id)
	}
	return reservation.Record{"id": id}, nil
}

func (m *MockClient) Create(ctx context.Context, name, start, end string, reservations, events []map[string]any) (reservation.Record, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, name, start, end, reservations, events)
	}
	return reservation.Record{"name": name, "start_date": start, "end_date": end}, nil
}

func (m *MockClient) Update(ctx context.Context, id string, updates map[string]any) (reservation.Record, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, updates)
	}
	record := reservation.Record{"id": id}
	for key, value := range updates {
		record[key] = value
	}
	return record, nil
}

func (m *MockClient) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func fullRecord() reservation.Record {
	return reservation.Record{
		"id":              "6f3e4b1c",
		"name":            "lease-1",
		"start_date":      "2030-01-01T10:00:00.000000",
		"end_date":        "2030-01-02T10:00:00.000000",
		"user_id":         "user-1",
		"project_id":      "project-1",
		"before_end_date": "2030-01-02T09:00:00.000000",
		"action":          "START",
		"status":          "IN_PROGRESS",
		"status_reason":   "Starting lease...",
		"trust_id":        "trust-1",
		"reservations":    []any{map[string]any{"resource_type": "physical:host"}},
		"created_at":      "2029-12-31T10:00:00.000000",
	}
}

func TestNewLeaseProjectsFixedAttributes(t *testing.T) {
	lease, err := NewLease(fullRecord())
	require.NoError(t, err)

	beforeEnd := time.Date(2030, 1, 2, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, Lease{
		ID:            "6f3e4b1c",
		Name:          "lease-1",
		StartDate:     time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2030, 1, 2, 10, 0, 0, 0, time.UTC),
		UserID:        "user-1",
		ProjectID:     "project-1",
		BeforeEndDate: &beforeEnd,
		Action:        ActionStart,
		Status:        StatusInProgress,
		StatusReason:  "Starting lease...",
	}, lease)
	assert.True(t, lease.InProgress())
}

func TestNewLeaseNullAndMissingFields(t *testing.T) {
	lease, err := NewLease(reservation.Record{
		"id":              "abc",
		"before_end_date": nil,
		"status_reason":   nil,
	})
	require.NoError(t, err)

	assert.Equal(t, "abc", lease.ID)
	assert.Nil(t, lease.BeforeEndDate)
	assert.True(t, lease.StartDate.IsZero())
	assert.Empty(t, lease.StatusReason)
}

func TestNewLeaseDateFormats(t *testing.T) {
	expected := time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)

	for _, value := range []string{
		"2030-01-01T10:00:00.000000",
		"2030-01-01T10:00:00",
		"2030-01-01T10:00:00Z",
		"2030-01-01T11:00:00+01:00",
		"2030-01-01 10:00:00",
		"2030-01-01 10:00",
	} {
		t.Run(value, func(t *testing.T) {
			lease, err := NewLease(reservation.Record{"start_date": value})
			require.NoError(t, err)
			assert.True(t, expected.Equal(lease.StartDate))
		})
	}
}

func TestNewLeaseInvalidDate(t *testing.T) {
	_, err := NewLease(reservation.Record{"end_date": "next tuesday"})
	assert.Error(t, err)
}

func TestNewLeaseUnknownActionPassesThrough(t *testing.T) {
	lease, err := NewLease(reservation.Record{"action": "MIGRATE", "status": "ERROR"})
	require.NoError(t, err)

	assert.Equal(t, Action("MIGRATE"), lease.Action)
	assert.False(t, lease.Action.Known())
	assert.False(t, lease.Status.Known())
	assert.True(t, ActionStop.Known())
	assert.True(t, StatusFailed.Known())
}

func TestList(t *testing.T) {
	tests := []struct {
		name          string
		records       []reservation.Record
		listError     error
		expectedNames []string
		expectedError error
	}{
		{
			name:          "Multiple leases",
			records:       []reservation.Record{{"name": "a"}, {"name": "b"}},
			expectedNames: []string{"a", "b"},
		},
		{
			name:          "No leases",
			records:       nil,
			expectedNames: []string{},
		},
		{
			name:          "Client failure",
			listError:     errors.New("connection refused"),
			expectedError: errors.New("connection refused"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &MockClient{
				listFunc: func(ctx context.Context) ([]reservation.Record, error) {
					return tt.records, tt.listError
				},
			}

			leases, err := List(context.Background(), client)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedError.Error(), err.Error())
			} else {
				assert.NoError(t, err)
				names := make([]string, 0, len(leases))
				for _, lease := range leases {
					names = append(names, lease.Name)
				}
				assert.Equal(t, tt.expectedNames, names)
			}
		})
	}
}

func TestGetPropagatesNotFoundUnchanged(t *testing.T) {
	notFound := &reservation.APIError{StatusCode: 404, Name: "LeaseNotFound", Message: "not found"}
	client := &MockClient{
		getFunc: func(ctx context.Context, id string) (reservation.Record, error) {
			return nil, notFound
		},
	}

	_, err := Get(context.Background(), client, "missing")

	assert.Same(t, notFound, err)
	assert.True(t, reservation.IsNotFound(err))
}

func TestGet(t *testing.T) {
	client := &MockClient{
		getFunc: func(ctx context.Context, id string) (reservation.Record, error) {
			record := fullRecord()
			record["id"] = id
			return record, nil
		},
	}

	lease, err := Get(context.Background(), client, "lease-42")

	assert.NoError(t, err)
	assert.Equal(t, "lease-42", lease.ID)
	assert.Equal(t, "lease-1", lease.Name)
}

func TestCreate(t *testing.T) {
	var (
		gotStart        string
		gotEnd          string
		gotReservations []map[string]any
	)
	client := &MockClient{
		createFunc: func(ctx context.Context, name, start, end string, reservations, events []map[string]any) (reservation.Record, error) {
			gotStart, gotEnd, gotReservations = start, end, reservations
			return reservation.Record{"id": "new", "name": name, "start_date": start, "end_date": end}, nil
		},
	}

	start := time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)
	reservations := []map[string]any{{"resource_type": "physical:host", "min": 1, "max": 2}}

	lease, err := Create(context.Background(), client, "name", start, end, reservations, nil)

	require.NoError(t, err)
	assert.Equal(t, "name", lease.Name)
	assert.Equal(t, "2030-01-01 10:00", gotStart)
	assert.Equal(t, "2030-01-02 10:00", gotEnd)
	assert.Equal(t, reservations, gotReservations)
	assert.True(t, start.Equal(lease.StartDate))
}

func TestCreateFormatsInUTC(t *testing.T) {
	var gotStart string
	client := &MockClient{
		createFunc: func(ctx context.Context, name, start, end string, reservations, events []map[string]any) (reservation.Record, error) {
			gotStart = start
			return reservation.Record{"name": name}, nil
		},
	}

	start := time.Date(2030, 1, 1, 12, 0, 0, 0, time.FixedZone("CEST", 2*60*60))

	_, err := Create(context.Background(), client, "name", start, start.Add(time.Hour), nil, nil)

	assert.NoError(t, err)
	assert.Equal(t, "2030-01-01 10:00", gotStart)
}

func TestUpdate(t *testing.T) {
	var gotUpdates map[string]any
	client := &MockClient{
		updateFunc: func(ctx context.Context, id string, updates map[string]any) (reservation.Record, error) {
			gotUpdates = updates
			return reservation.Record{"id": id, "name": updates["name"], "action": "UPDATE"}, nil
		},
	}

	updates := map[string]any{"name": "renamed", "prolong_for": "1d"}
	lease, err := Update(context.Background(), client, "lease-42", updates)

	require.NoError(t, err)
	assert.Equal(t, updates, gotUpdates)
	assert.Equal(t, "renamed", lease.Name)
	assert.Equal(t, ActionUpdate, lease.Action)
}

func TestUpdateError(t *testing.T) {
	conflict := &reservation.APIError{StatusCode: 409, Message: "lease is being updated"}
	client := &MockClient{
		updateFunc: func(ctx context.Context, id string, updates map[string]any) (reservation.Record, error) {
			return nil, conflict
		},
	}

	_, err := Update(context.Background(), client, "lease-42", nil)

	assert.Same(t, conflict, err)
}

func TestDelete(t *testing.T) {
	tests := []struct {
		name        string
		deleteError error
	}{
		{
			name: "Successful delete",
		},
		{
			name:        "Delete failure",
			deleteError: errors.New("delete error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotID string
			client := &MockClient{
				deleteFunc: func(ctx context.Context, id string) error {
					gotID = id
					return tt.deleteError
				},
			}

			err := Delete(context.Background(), client, "lease-42")

			assert.Equal(t, "lease-42", gotID)
			if tt.deleteError != nil {
				assert.Equal(t, tt.deleteError, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
