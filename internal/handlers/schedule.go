package handlers

import (
	"errors"
	"net/http"

	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

// UpdateScheduleRequest is the payload for PUT /api/v1/schedule.
type UpdateScheduleRequest struct {
	Enabled bool `json:"enabled" example:"true"`
	// Start of the silent window, HH:MM local time
	StartTime string `json:"startTime" binding:"required" example:"22:00"`
	// End of the silent window, HH:MM local time
	EndTime string `json:"endTime" binding:"required" example:"05:00"`
}

// @Summary      Get silent-time schedule
// @Tags         schedule
// @Produce      json
// @Success      200  {object}  models.ScheduleState
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/schedule [get]
// @Security     BearerAuth
func (h *Handler) getSchedule(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Schedule.State(c.Request.Context()))
}

// @Summary      Update silent-time schedule
// @Tags         schedule
// @Accept       json
// @Produce      json
// @Param        body  body      UpdateScheduleRequest  true  "Schedule"
// @Success      200   {object}  models.ScheduleState
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/v1/schedule [put]
// @Security     BearerAuth
func (h *Handler) updateSchedule(c *gin.Context) {
	var req UpdateScheduleRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	st, err := h.services.Schedule.Update(c.Request.Context(), req.Enabled, req.StartTime, req.EndTime)
	if err != nil {
		if errors.Is(err, service.ErrInvalidSchedule) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to update schedule", "schedule_update_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}
