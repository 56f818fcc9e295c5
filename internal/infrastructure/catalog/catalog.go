package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	ServiceReservation = "reservation"
)

// ErrServiceNotConfigured is returned when the catalog has no endpoint for
// the requested service type.
var ErrServiceNotConfigured = errors.New("service not configured")

// Catalog maps logical service types to endpoint URLs for the current
// deployment.
type Catalog interface {
	URLFor(ctx context.Context, serviceType string) (string, error)
}

type Static struct {
	services map[string]string
}

func NewStatic(services map[string]string) *Static {
	copied := make(map[string]string, len(services))
	for serviceType, url := range services {
		copied[serviceType] = url
	}

	return &Static{services: copied}
}

func (s *Static) URLFor(_ context.Context, serviceType string) (string, error) {
	url, exists := s.services[serviceType]
	if !exists || strings.TrimSpace(url) == "" {
		return "", fmt.Errorf("%w: %s", ErrServiceNotConfigured, serviceType)
	}

	return strings.TrimRight(url, "/"), nil
}

type fileCatalog struct {
	Services map[string]string `yaml:"services"`
}

// LoadFile reads a YAML catalog of the form:
//
//	services:
//	  reservation: http://blazar:1234/v1
func LoadFile(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}

	var parsed fileCatalog
	if err = yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file %s: %w", path, err)
	}

	return NewStatic(parsed.Services), nil
}

// Merge returns a static catalog where entries of override win over base.
func Merge(base, override map[string]string) *Static {
	merged := make(map[string]string, len(base)+len(override))
	for serviceType, url := range base {
		merged[serviceType] = url
	}
	for serviceType, url := range override {
		merged[serviceType] = url
	}

	return NewStatic(merged)
}

func (s *Static) Services() map[string]string {
	copied := make(map[string]string, len(s.services))
	for serviceType, url := range s.services {
		copied[serviceType] = url
	}

	return copied
}
