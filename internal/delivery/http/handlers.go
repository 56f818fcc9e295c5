package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/tentens-tech/lease-dashboard/internal/application"
	"github.com/tentens-tech/lease-dashboard/internal/application/command/leasemanagement"
	"github.com/tentens-tech/lease-dashboard/internal/infrastructure/reservation"
)

const maxRequestBodyLen = 1 << 20

type createLeaseRequest struct {
	Name         string           `json:"name"`
	StartDate    time.Time        `json:"start_date"`
	EndDate      time.Time        `json:"end_date"`
	Reservations []map[string]any `json:"reservations"`
	Events       []map[string]any `json:"events"`
}

type leaseResponse struct {
	Lease leasemanagement.Lease `json:"lease"`
}

type leasesResponse struct {
	Leases []leasemanagement.Lease `json:"leases"`
}

func (s *Server) handleLeaseList(w http.ResponseWriter, r *http.Request, req *application.Request) {
	leases, err := s.app.LeaseList(r.Context(), req)
	if err != nil {
		writeLeaseError(w, req, err)
		return
	}

	writeJSON(w, http.StatusOK, leasesResponse{Leases: leases})
}

func (s *Server) handleLeaseGet(w http.ResponseWriter, r *http.Request, req *application.Request) {
	lease, err := s.app.LeaseGet(r.Context(), req, r.PathValue("id"))
	if err != nil {
		writeLeaseError(w, req, err)
		return
	}

	writeJSON(w, http.StatusOK, leaseResponse{Lease: lease})
}

func (s *Server) handleLeaseCreate(w http.ResponseWriter, r *http.Request, req *application.Request) {
	var body createLeaseRequest
	if err := decodeBody(w, r, &body); err != nil {
		log.Warnf("Failed to decode lease create body, request_id: %v, %v", req.ID, err)
		writeError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}

	lease, err := s.app.LeaseCreate(r.Context(), req, body.Name, body.StartDate, body.EndDate, body.Reservations, body.Events)
	if err != nil {
		writeLeaseError(w, req, err)
		return
	}

	writeJSON(w, http.StatusCreated, leaseResponse{Lease: lease})
}

func (s *Server) handleLeaseUpdate(w http.ResponseWriter, r *http.Request, req *application.Request) {
	var updates map[string]any
	if err := decodeBody(w, r, &updates); err != nil {
		log.Warnf("Failed to decode lease update body, request_id: %v, %v", req.ID, err)
		writeError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}

	lease, err := s.app.LeaseUpdate(r.Context(), req, r.PathValue("id"), updates)
	if err != nil {
		writeLeaseError(w, req, err)
		return
	}

	writeJSON(w, http.StatusOK, leaseResponse{Lease: lease})
}

func (s *Server) handleLeaseDelete(w http.ResponseWriter, r *http.Request, req *application.Request) {
	if err := s.app.LeaseDelete(r.Context(), req, r.PathValue("id")); err != nil {
		writeLeaseError(w, req, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func decodeBody(w http.ResponseWriter, r *http.Request, out any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyLen))
	return decoder.Decode(out)
}

func writeLeaseError(w http.ResponseWriter, req *application.Request, err error) {
	var apiErr *reservation.APIError

	switch {
	case errors.Is(err, application.ErrReservationNotConfigured):
		writeError(w, http.StatusServiceUnavailable, "reservation_not_configured", err.Error())
	case errors.As(err, &apiErr):
		log.Warnf("Reservation service error, request_id: %v, %v", req.ID, err)
		message := apiErr.Message
		if message == "" {
			message = http.StatusText(apiErr.StatusCode)
		}
		writeError(w, apiErr.StatusCode, "reservation_error", message)
	default:
		log.Errorf("Lease operation failed, request_id: %v, %v", req.ID, err)
		writeError(w, http.StatusInternalServerError, "internal_error", "lease operation failed")
	}
}
