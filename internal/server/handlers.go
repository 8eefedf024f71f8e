package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/medfinder/medfinder/internal/models"
)

func (s *Server) handleSymptomSearch(w http.ResponseWriter, r *http.Request) {
	var req models.SymptomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Debug("symptom search request",
		zap.String("query", req.Query), zap.Int("max_results", req.MaxResults))
	response := s.orchestrator.Search(r.Context(), req.Query, req.MaxResults)
	s.respondJSON(w, http.StatusOK, response)
}

type compositionRequest struct {
	Composition string `json:"composition"`
	MaxResults  int    `json:"max_results,omitempty"`
}

func (s *Server) handleCompositionSearch(w http.ResponseWriter, r *http.Request) {
	var req compositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Composition == "" {
		s.respondError(w, http.StatusBadRequest, "composition cannot be empty")
		return
	}
	if req.MaxResults <= 0 {
		req.MaxResults = 10
	}
	medicines, err := s.catalog.Match(req.Composition, req.MaxResults)
	if err != nil {
		s.logger.Error("composition search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if medicines == nil {
		medicines = []models.MedicineRecord{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"composition": req.Composition,
		"medicines":   medicines,
		"count":       len(medicines),
	})
}

func (s *Server) handleSimilarMedicines(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		s.respondError(w, http.StatusBadRequest, "name parameter is required")
		return
	}
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	medicines, err := s.catalog.SimilarMedicines(name, limit)
	if err != nil {
		s.respondError(w, http.StatusNotFound, err.Error())
		return
	}
	if medicines == nil {
		medicines = []models.MedicineRecord{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"name":         name,
		"alternatives": medicines,
		"count":        len(medicines),
	})
}

type availabilityRequest struct {
	Medicines []string `json:"medicines"`
}

func (s *Server) handleAvailability(w http.ResponseWriter, r *http.Request) {
	if s.availability == nil {
		s.respondError(w, http.StatusNotImplemented, "availability checks not enabled")
		return
	}
	var req availabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Medicines) == 0 {
		s.respondError(w, http.StatusBadRequest, "medicines cannot be empty")
		return
	}
	statuses := s.availability.CheckAll(r.Context(), req.Medicines)
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"availability": statuses})
}

type interactionsRequest struct {
	Medicines []string `json:"medicines"`
}

func (s *Server) handleInteractions(w http.ResponseWriter, r *http.Request) {
	if s.interactions == nil {
		s.respondError(w, http.StatusNotImplemented, "interaction checks not enabled")
		return
	}
	var req interactionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Medicines) < 2 {
		s.respondError(w, http.StatusBadRequest, "at least two medicines are required")
		return
	}
	results := s.interactions.CheckAll(r.Context(), req.Medicines)
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"pairs": results})
}

type suggestionsRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	if s.suggester == nil {
		s.respondError(w, http.StatusNotImplemented, "suggestions not enabled")
		return
	}
	var req suggestionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		s.respondError(w, http.StatusBadRequest, "name cannot be empty")
		return
	}
	result := s.suggester.Suggest(r.Context(), req.Name)
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"catalog_medicines": s.catalog.Size(),
		"uptime_seconds":    int(s.uptime().Seconds()),
	})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
