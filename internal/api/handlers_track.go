package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	respond "github.com/chasebfreeman/track-analyzer-pro/internal/api/respond"
	"github.com/chasebfreeman/track-analyzer-pro/internal/services"
)

type TrackHandler struct {
	svc *services.TrackService
}

func NewTrackHandler(svc *services.TrackService) *TrackHandler { return &TrackHandler{svc: svc} }

func (h *TrackHandler) CreateTrack(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name     string `json:"name"`
		Location string `json:"location"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	if in.Name == "" {
		respond.WriteBadRequest(w, "name required")
		return
	}
	t := h.svc.CreateTrack(r.Context(), in.Name, in.Location)
	if t == nil {
		respond.WriteInternalError(w, "track not created")
		return
	}
	respond.WriteJSON(w, http.StatusCreated, t)
}

func (h *TrackHandler) ListTracks(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSON(w, http.StatusOK, h.svc.GetAllTracks(r.Context()))
}

func (h *TrackHandler) DeleteTrack(w http.ResponseWriter, r *http.Request) {
	trackID := mux.Vars(r)["trackId"]
	if trackID == "" {
		respond.WriteBadRequest(w, "trackId required")
		return
	}
	if !h.svc.DeleteTrack(r.Context(), trackID) {
		respond.WriteNotFound(w, "track not deleted")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
