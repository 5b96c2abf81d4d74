package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	respond "github.com/chasebfreeman/track-analyzer-pro/internal/api/respond"
	"github.com/chasebfreeman/track-analyzer-pro/internal/model"
	"github.com/chasebfreeman/track-analyzer-pro/internal/services"
	"github.com/chasebfreeman/track-analyzer-pro/internal/trackday"
)

type ReadingHandler struct {
	svc *services.ReadingService
}

func NewReadingHandler(svc *services.ReadingService) *ReadingHandler {
	return &ReadingHandler{svc: svc}
}

func (h *ReadingHandler) CreateReading(w http.ResponseWriter, r *http.Request) {
	trackID := mux.Vars(r)["trackId"]
	var in model.TrackReading
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	in.TrackID = trackID
	out := h.svc.CreateReading(r.Context(), &in)
	if out == nil {
		respond.WriteInternalError(w, "reading not created")
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// ListReadings handles GET /api/tracks/{trackId}/readings?year=&grouped=.
// With grouped=true the response is partitioned into track-local day
// buckets, newest day first.
func (h *ReadingHandler) ListReadings(w http.ResponseWriter, r *http.Request) {
	trackID := mux.Vars(r)["trackId"]
	var year *int
	if raw := r.URL.Query().Get("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil {
			respond.WriteBadRequest(w, "year must be an integer")
			return
		}
		year = &y
	}
	readings := h.svc.GetReadingsForTrack(r.Context(), trackID, year)

	if r.URL.Query().Get("grouped") == "true" {
		flat := make([]model.TrackReading, len(readings))
		for i, rd := range readings {
			flat[i] = *rd
		}
		respond.WriteJSON(w, http.StatusOK, trackday.GroupByDay(flat))
		return
	}
	respond.WriteJSON(w, http.StatusOK, readings)
}

func (h *ReadingHandler) UpdateReading(w http.ResponseWriter, r *http.Request) {
	readingID := mux.Vars(r)["readingId"]
	var u model.ReadingUpdate
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	out := h.svc.UpdateReading(r.Context(), readingID, u)
	if out == nil {
		respond.WriteNotFound(w, "reading not updated")
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

func (h *ReadingHandler) DeleteReading(w http.ResponseWriter, r *http.Request) {
	readingID := mux.Vars(r)["readingId"]
	if !h.svc.DeleteReading(r.Context(), readingID) {
		respond.WriteNotFound(w, "reading not deleted")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListYears handles GET /api/years?trackId=.
func (h *ReadingHandler) ListYears(w http.ResponseWriter, r *http.Request) {
	trackID := r.URL.Query().Get("trackId")
	respond.WriteJSON(w, http.StatusOK, h.svc.GetAvailableYears(r.Context(), trackID))
}
