package mock

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tentens-tech/lease-dashboard/internal/infrastructure/reservation"
)

const (
	APIVersionPath = "/v1"
	requestLayout  = "2006-01-02 15:04"
	responseLayout = "2006-01-02T15:04:05.000000"
	DefaultUserID  = "mock-user"
	DefaultProject = "mock-project"
)

// Service is an in-memory reservation service speaking the lease API.
type Service struct {
	// Token, when set, must be sent in the X-Auth-Token header.
	Token string

	mu       sync.RWMutex
	leases   map[string]reservation.Record
	requests int
	server   *httptest.Server
}

func New() *Service {
	s := &Service{
		leases: make(map[string]reservation.Record),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+APIVersionPath+"/leases", s.list)
	mux.HandleFunc("POST "+APIVersionPath+"/leases", s.create)
	mux.HandleFunc("GET "+APIVersionPath+"/leases/{id}", s.get)
	mux.HandleFunc("PUT "+APIVersionPath+"/leases/{id}", s.update)
	mux.HandleFunc("DELETE "+APIVersionPath+"/leases/{id}", s.delete)

	s.server = httptest.NewServer(s.authenticate(mux))

	return s
}

// URL is the endpoint a service catalog would advertise.
func (s *Service) URL() string {
	return s.server.URL + APIVersionPath
}

func (s *Service) Close() {
	s.server.Close()
}

// Seed stores a raw lease record as is and returns its id.
func (s *Service) Seed(record reservation.Record) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, _ := record["id"].(string)
	if id == "" {
		id = uuid.New().String()
		record["id"] = id
	}
	s.leases[id] = record

	return id
}

func (s *Service) Lease(id string) (reservation.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, exists := s.leases[id]
	return record, exists
}

func (s *Service) Requests() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.requests
}

func (s *Service) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests++
		s.mu.Unlock()

		if s.Token != "" && r.Header.Get(reservation.AuthTokenHeader) != s.Token {
			writeError(w, http.StatusUnauthorized, "Unauthorized", "The request you have made requires authentication.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Service) list(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	leases := make([]reservation.Record, 0, len(s.leases))
	for _, record := range s.leases {
		leases = append(leases, record)
	}
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, map[string]any{"leases": leases})
}

func (s *Service) get(w http.ResponseWriter, r *http.Request) {
	record, exists := s.Lease(r.PathValue("id"))
	if !exists {
		writeNotFound(w, r.PathValue("id"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"lease": record})
}

func (s *Service) create(w http.ResponseWriter, r *http.Request) {
	var request reservation.CreateLeaseRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, "MalformedRequestBody", err.Error())
		return
	}

	start, err := time.Parse(requestLayout, request.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "InvalidInput", "invalid start_date")
		return
	}
	end, err := time.Parse(requestLayout, request.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "InvalidInput", "invalid end_date")
		return
	}

	now := time.Now().UTC().Format(responseLayout)
	record := reservation.Record{
		"id":              uuid.New().String(),
		"name":            request.Name,
		"start_date":      start.Format(responseLayout),
		"end_date":        end.Format(responseLayout),
		"user_id":         DefaultUserID,
		"project_id":      DefaultProject,
		"before_end_date": nil,
		"action":          "CREATE",
		"status":          "COMPLETE",
		"status_reason":   "Successfully created lease",
		"reservations":    request.Reservations,
		"events":          request.Events,
		"trust_id":        uuid.New().String(),
		"created_at":      now,
		"updated_at":      nil,
		"degraded":        false,
	}

	s.mu.Lock()
	s.leases[record["id"].(string)] = record
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]any{"lease": record})
}

func (s *Service) update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var updates map[string]any
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		writeError(w, http.StatusBadRequest, "MalformedRequestBody", err.Error())
		return
	}

	s.mu.Lock()
	record, exists := s.leases[id]
	if !exists {
		s.mu.Unlock()
		writeNotFound(w, id)
		return
	}

	updated := make(reservation.Record, len(record)+len(updates))
	for key, value := range record {
		updated[key] = value
	}
	for key, value := range updates {
		if key == "id" {
			continue
		}
		updated[key] = value
	}
	updated["action"] = "UPDATE"
	updated["status"] = "COMPLETE"
	updated["updated_at"] = time.Now().UTC().Format(responseLayout)
	s.leases[id] = updated
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"lease": updated})
}

func (s *Service) delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	s.mu.Lock()
	_, exists := s.leases[id]
	delete(s.leases, id)
	s.mu.Unlock()

	if !exists {
		writeNotFound(w, id)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeNotFound(w http.ResponseWriter, id string) {
	writeError(w, http.StatusNotFound, "LeaseNotFound", "Object with {'lease_id': '"+strings.TrimSpace(id)+"'} not found")
}

func writeError(w http.ResponseWriter, status int, name, message string) {
	writeJSON(w, status, map[string]any{
		"error_code":    status,
		"error_name":    name,
		"error_message": message,
	})
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}
