package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	respond "github.com/chasebfreeman/track-analyzer-pro/internal/api/respond"
	"github.com/chasebfreeman/track-analyzer-pro/internal/model"
	"github.com/chasebfreeman/track-analyzer-pro/internal/services"
	"github.com/chasebfreeman/track-analyzer-pro/internal/session"
)

type ProfileHandler struct {
	svc  *services.ProfileService
	sess *session.Session
}

func NewProfileHandler(svc *services.ProfileService, sess *session.Session) *ProfileHandler {
	return &ProfileHandler{svc: svc, sess: sess}
}

func (h *ProfileHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name  string `json:"name"`
		Pin   string `json:"pin"`
		Color string `json:"color,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	if in.Name == "" || in.Pin == "" {
		respond.WriteBadRequest(w, "name and pin required")
		return
	}
	p := h.svc.CreateUserProfile(r.Context(), in.Name, in.Pin, in.Color)
	if p == nil {
		respond.WriteInternalError(w, "profile not created")
		return
	}
	respond.WriteJSON(w, http.StatusCreated, p.Sanitized())
}

func (h *ProfileHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles := h.svc.GetUserProfiles(r.Context())
	out := make([]model.UserProfile, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, p.Sanitized())
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// VerifyPin handles POST /api/profiles/{profileId}/verify. A mismatched PIN
// is a normal false result, not an error status.
func (h *ProfileHandler) VerifyPin(w http.ResponseWriter, r *http.Request) {
	profileID := mux.Vars(r)["profileId"]
	var in struct {
		Pin string `json:"pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	ok := h.svc.VerifyUserPin(r.Context(), profileID, in.Pin)
	if ok {
		h.svc.UpdateLastLogin(r.Context(), profileID)
		// A verified PIN authenticates the session when this profile is the
		// selected one.
		if cur, _ := h.sess.Current(); cur != nil && cur.ID == profileID {
			h.sess.Login()
		}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]bool{"verified": ok})
}

func (h *ProfileHandler) ChangePin(w http.ResponseWriter, r *http.Request) {
	profileID := mux.Vars(r)["profileId"]
	var in struct {
		OldPin string `json:"oldPin"`
		NewPin string `json:"newPin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	if in.NewPin == "" {
		respond.WriteBadRequest(w, "newPin required")
		return
	}
	ok := h.svc.ChangeUserPin(r.Context(), profileID, in.OldPin, in.NewPin)
	respond.WriteJSON(w, http.StatusOK, map[string]bool{"changed": ok})
}

func (h *ProfileHandler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	profileID := mux.Vars(r)["profileId"]
	if !h.svc.DeleteUserProfile(r.Context(), profileID) {
		respond.WriteNotFound(w, "profile not deleted")
		return
	}
	// Deactivating the selected profile ends its session.
	if cur, _ := h.sess.Current(); cur != nil && cur.ID == profileID {
		_ = h.sess.Clear(r.Context())
	}
	w.WriteHeader(http.StatusNoContent)
}
