package api

import (
	"encoding/json"
	"net/http"

	respond "github.com/chasebfreeman/track-analyzer-pro/internal/api/respond"
	"github.com/chasebfreeman/track-analyzer-pro/internal/model"
	"github.com/chasebfreeman/track-analyzer-pro/internal/services"
	"github.com/chasebfreeman/track-analyzer-pro/internal/session"
)

// SessionHandler exposes the authentication flow over HTTP: a profile is
// selected, its PIN verified (see ProfileHandler.VerifyPin), and the session
// later logged out or cleared for a user switch.
type SessionHandler struct {
	svc  *services.ProfileService
	sess *session.Session
}

func NewSessionHandler(svc *services.ProfileService, sess *session.Session) *SessionHandler {
	return &SessionHandler{svc: svc, sess: sess}
}

type sessionView struct {
	State   session.State      `json:"state"`
	Profile *model.UserProfile `json:"profile,omitempty"`
}

func (h *SessionHandler) view() sessionView {
	cur, state := h.sess.Current()
	v := sessionView{State: state}
	if cur != nil {
		p := cur.Sanitized()
		v.Profile = &p
	}
	return v
}

// GetSession handles GET /api/session.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSON(w, http.StatusOK, h.view())
}

// SelectProfile handles POST /api/session/select. Selecting never
// authenticates; the PIN is verified in a separate step.
func (h *SessionHandler) SelectProfile(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ProfileID string `json:"profileId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.ProfileID == "" {
		respond.WriteBadRequest(w, "profileId required")
		return
	}
	p := h.svc.GetUserProfile(r.Context(), in.ProfileID)
	if p == nil || !p.IsActive {
		respond.WriteNotFound(w, "profile not found")
		return
	}
	// The persisted selection carries no PIN hash.
	selected := p.Sanitized()
	if err := h.sess.Select(r.Context(), &selected); err != nil {
		respond.WriteInternalError(w, "selection not persisted")
		return
	}
	respond.WriteJSON(w, http.StatusOK, h.view())
}

// Logout handles POST /api/session/logout: drops authentication but keeps
// the profile selected.
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sess.Logout()
	respond.WriteJSON(w, http.StatusOK, h.view())
}

// ClearSession handles DELETE /api/session (the switch-user flow).
func (h *SessionHandler) ClearSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sess.Clear(r.Context()); err != nil {
		respond.WriteInternalError(w, "session not cleared")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
