package handlers

import (
	"net/http"

	"github.com/ternarybob/tresty/internal/interfaces"
)

// SchedulerHandler exposes background job status and manual triggers
type SchedulerHandler struct {
	schedulerService interfaces.SchedulerService
}

func NewSchedulerHandler(schedulerService interfaces.SchedulerService) *SchedulerHandler {
	return &SchedulerHandler{schedulerService: schedulerService}
}

// JobsHandler handles GET /api/jobs
func (h *SchedulerHandler) JobsHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"running": h.schedulerService.IsRunning(),
		"jobs":    h.schedulerService.GetAllJobStatuses(),
	})
}

// TriggerJobHandler handles POST /api/jobs/{name}/trigger
func (h *SchedulerHandler) TriggerJobHandler(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if _, exists := h.schedulerService.GetAllJobStatuses()[name]; !exists {
		WriteError(w, http.StatusNotFound, "Job not found")
		return
	}

	if err := h.schedulerService.TriggerJob(name); err != nil {
		WriteError(w, http.StatusConflict, err.Error())
		return
	}

	WriteJSON(w, http.StatusAccepted, map[string]string{
		"status":  "started",
		"message": "Job " + name + " triggered",
	})
}
