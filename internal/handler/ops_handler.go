package handler

import (
	"net/http"
)

// OpsHandler handles operational requests for the poll and delivery pipelines
type OpsHandler struct {
	scheduler SchedulerInterface
	poll      PollStatusInterface
}

// NewOpsHandler creates a new ops handler
func NewOpsHandler(scheduler SchedulerInterface, poll PollStatusInterface) *OpsHandler {
	return &OpsHandler{scheduler: scheduler, poll: poll}
}

// RunPoll godoc
// @Summary Trigger a price poll run
// @Description Start an immediate poll of all active products in the background
// @Tags operations
// @Accept json
// @Produce json
// @Success 202 {object} MessageResponse
// @Router /api/v1/poll/run [post]
func (h *OpsHandler) RunPoll(w http.ResponseWriter, r *http.Request) {
	h.scheduler.RunPollNow()
	respondJSON(w, http.StatusAccepted, MessageResponse{Message: "Price poll started"})
}

// RunDelivery godoc
// @Summary Trigger an alert delivery run
// @Description Start an immediate delivery of pending price alerts in the background
// @Tags operations
// @Accept json
// @Produce json
// @Success 202 {object} MessageResponse
// @Router /api/v1/delivery/run [post]
func (h *OpsHandler) RunDelivery(w http.ResponseWriter, r *http.Request) {
	h.scheduler.RunDeliveryNow()
	respondJSON(w, http.StatusAccepted, MessageResponse{Message: "Alert delivery started"})
}

// PollStatus godoc
// @Summary Get poll pipeline health
// @Description Get per-product fetch health and the next scheduled poll run
// @Tags operations
// @Accept json
// @Produce json
// @Success 200 {object} fetcher.HealthStatus
// @Router /api/v1/poll/status [get]
func (h *OpsHandler) PollStatus(w http.ResponseWriter, r *http.Request) {
	health := h.poll.GetHealthStatus(r.Context(), h.scheduler.GetNextPollRun())
	respondJSON(w, http.StatusOK, health)
}
