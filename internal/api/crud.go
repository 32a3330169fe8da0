package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/patrickwarner/opentripserve/internal/models"
)

// helper function to write JSON response
func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// ===== Vendors =====

func (s *Server) ListVendors(w http.ResponseWriter, r *http.Request) {
	if s.Catalog == nil {
		http.Error(w, "catalog unavailable", http.StatusInternalServerError)
		return
	}
	writeJSON(w, s.Catalog.GetAllVendors())
}

func (s *Server) CreateVendor(w http.ResponseWriter, r *http.Request) {
	if s.Catalog == nil {
		http.Error(w, "catalog unavailable", http.StatusInternalServerError)
		return
	}
	var vendor models.Vendor
	if err := json.NewDecoder(r.Body).Decode(&vendor); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if vendor.Name == "" || vendor.Destination == "" || vendor.BasePrice <= 0 {
		http.Error(w, "name, destination and a positive base_price required", http.StatusBadRequest)
		return
	}

	// First persist to PostgreSQL to get the ID
	if s.PG != nil {
		if err := s.PG.InsertVendor(&vendor); err != nil {
			s.Logger.Error("insert vendor to postgres", zap.Error(err))
			http.Error(w, "failed to persist vendor", http.StatusInternalServerError)
			return
		}
	}

	// Then insert into catalog with the ID from PostgreSQL
	if err := s.Catalog.InsertVendor(&vendor); err != nil {
		s.Logger.Error("insert vendor to catalog", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.notifyUpdate("vendor", "create", vendor.ID)
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, vendor)
}

func (s *Server) UpdateVendor(w http.ResponseWriter, r *http.Request) {
	if s.Catalog == nil {
		http.Error(w, "catalog unavailable", http.StatusInternalServerError)
		return
	}
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	var vendor models.Vendor
	if err := json.NewDecoder(r.Body).Decode(&vendor); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	vendor.ID = id

	// Update in catalog
	if err := s.Catalog.UpdateVendor(vendor); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			http.Error(w, "vendor not found", http.StatusNotFound)
			return
		}
		s.Logger.Error("update vendor in catalog", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	// Also update in PostgreSQL for persistence
	if s.PG != nil {
		if err := s.PG.UpdateVendor(vendor); err != nil {
			s.Logger.Error("update vendor in postgres", zap.Error(err))
			// Don't fail the request, the catalog is the source of truth
		}
	}

	s.notifyUpdate("vendor", "update", id)
	writeJSON(w, vendor)
}

func (s *Server) DeleteVendor(w http.ResponseWriter, r *http.Request) {
	if s.Catalog == nil {
		http.Error(w, "catalog unavailable", http.StatusInternalServerError)
		return
	}
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	// Delete from catalog
	if err := s.Catalog.DeleteVendor(id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			http.Error(w, "vendor not found", http.StatusNotFound)
			return
		}
		s.Logger.Error("delete vendor from catalog", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	// Also delete from PostgreSQL for persistence
	if s.PG != nil {
		if err := s.PG.DeleteVendor(id); err != nil {
			s.Logger.Error("delete vendor from postgres", zap.Error(err))
			// Don't fail the request, the catalog is the source of truth
		}
	}

	s.notifyUpdate("vendor", "delete", id)
	w.WriteHeader(http.StatusNoContent)
}

// ===== Activities =====

func (s *Server) ListActivities(w http.ResponseWriter, r *http.Request) {
	if s.Catalog == nil {
		http.Error(w, "catalog unavailable", http.StatusInternalServerError)
		return
	}
	if dest := r.URL.Query().Get("destination"); dest != "" {
		writeJSON(w, s.Catalog.GetActivitiesByDestination(dest))
		return
	}
	writeJSON(w, s.Catalog.GetAllActivities())
}

func (s *Server) CreateActivity(w http.ResponseWriter, r *http.Request) {
	if s.Catalog == nil {
		http.Error(w, "catalog unavailable", http.StatusInternalServerError)
		return
	}
	var activity models.StoredActivity
	if err := json.NewDecoder(r.Body).Decode(&activity); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if activity.Name == "" || activity.Destination == "" {
		http.Error(w, "name and destination required", http.StatusBadRequest)
		return
	}

	if s.PG != nil {
		if err := s.PG.InsertActivity(&activity); err != nil {
			s.Logger.Error("insert activity to postgres", zap.Error(err))
			http.Error(w, "failed to persist activity", http.StatusInternalServerError)
			return
		}
	}

	if err := s.Catalog.InsertActivity(&activity); err != nil {
		s.Logger.Error("insert activity to catalog", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.notifyUpdate("activity", "create", activity.ID)
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, activity)
}

func (s *Server) UpdateActivity(w http.ResponseWriter, r *http.Request) {
	if s.Catalog == nil {
		http.Error(w, "catalog unavailable", http.StatusInternalServerError)
		return
	}
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	var activity models.StoredActivity
	if err := json.NewDecoder(r.Body).Decode(&activity); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	activity.ID = id

	if err := s.Catalog.UpdateActivity(activity); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			http.Error(w, "activity not found", http.StatusNotFound)
			return
		}
		s.Logger.Error("update activity in catalog", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if s.PG != nil {
		if err := s.PG.UpdateActivity(activity); err != nil {
			s.Logger.Error("update activity in postgres", zap.Error(err))
		}
	}

	s.notifyUpdate("activity", "update", id)
	writeJSON(w, activity)
}

func (s *Server) DeleteActivity(w http.ResponseWriter, r *http.Request) {
	if s.Catalog == nil {
		http.Error(w, "catalog unavailable", http.StatusInternalServerError)
		return
	}
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := s.Catalog.DeleteActivity(id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			http.Error(w, "activity not found", http.StatusNotFound)
			return
		}
		s.Logger.Error("delete activity from catalog", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if s.PG != nil {
		if err := s.PG.DeleteActivity(id); err != nil {
			s.Logger.Error("delete activity from postgres", zap.Error(err))
		}
	}

	s.notifyUpdate("activity", "delete", id)
	w.WriteHeader(http.StatusNoContent)
}
