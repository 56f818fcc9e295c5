package leasemanagement

import (
	"fmt"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"
)

type Action string

const (
	ActionCreate Action = "CREATE"
	ActionDelete Action = "DELETE"
	ActionUpdate Action = "UPDATE"
	ActionStart  Action = "START"
	ActionStop   Action = "STOP"
)

type Status string

const (
	StatusInProgress Status = "IN_PROGRESS"
	StatusFailed     Status = "FAILED"
	StatusComplete   Status = "COMPLETE"
)

// Lease is a read-only projection of a reservation service lease. Fields the
// service returns beyond these are dropped.
type Lease struct {
	ID            string     `json:"id" mapstructure:"id"`
	Name          string     `json:"name" mapstructure:"name"`
	StartDate     time.Time  `json:"start_date" mapstructure:"start_date"`
	EndDate       time.Time  `json:"end_date" mapstructure:"end_date"`
	UserID        string     `json:"user_id" mapstructure:"user_id"`
	ProjectID     string     `json:"project_id" mapstructure:"project_id"`
	BeforeEndDate *time.Time `json:"before_end_date" mapstructure:"before_end_date"`
	Action        Action     `json:"action" mapstructure:"action"`
	Status        Status     `json:"status" mapstructure:"status"`
	StatusReason  string     `json:"status_reason" mapstructure:"status_reason"`
}

// Attributes lists the record fields a Lease exposes.
var Attributes = []string{
	"id", "name", "start_date", "end_date", "user_id", "project_id",
	"before_end_date", "action", "status", "status_reason",
}

var dateLayouts = []string{
	"2006-01-02T15:04:05.000000",
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

func (a Action) Known() bool {
	switch a {
	case ActionCreate, ActionDelete, ActionUpdate, ActionStart, ActionStop:
		return true
	}
	return false
}

func (s Status) Known() bool {
	switch s {
	case StatusInProgress, StatusFailed, StatusComplete:
		return true
	}
	return false
}

func (l Lease) InProgress() bool {
	return l.Status == StatusInProgress
}

// NewLease projects a raw service record onto a Lease.
func NewLease(record map[string]any) (Lease, error) {
	var lease Lease

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       stringToTimeHook,
		WeaklyTypedInput: true,
		Result:           &lease,
	})
	if err != nil {
		return Lease{}, err
	}

	if err = decoder.Decode(record); err != nil {
		return Lease{}, fmt.Errorf("failed to decode lease record: %w", err)
	}

	return lease, nil
}

func stringToTimeHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(time.Time{}) {
		return data, nil
	}

	return parseDate(reflect.ValueOf(data).String())
}

func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}

	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("unsupported date format %q", value)
}
