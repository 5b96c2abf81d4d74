package api

import (
	"net/http"

	respond "github.com/chasebfreeman/track-analyzer-pro/internal/api/respond"
	"github.com/chasebfreeman/track-analyzer-pro/internal/services"
)

type SyncHandler struct {
	svc *services.SyncService
}

func NewSyncHandler(svc *services.SyncService) *SyncHandler { return &SyncHandler{svc: svc} }

// TriggerSync handles POST /api/sync. The upload is not idempotent; callers
// own the decision to re-run it.
func (h *SyncHandler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.SyncLocalToRemote(r.Context()); err != nil {
		respond.WriteError(w, http.StatusBadGateway, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{"status": "synced"})
}
