package handlers

import (
	"errors"
	"net/http"

	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

// SendCommandRequest is the payload for POST /api/v1/commands.
type SendCommandRequest struct {
	DeviceID string `json:"device_id" binding:"required" example:"bantay-01"`
	// One of set-volume, rotate-head, set-sensitivity, enable-detection,
	// disable-detection, play-sound, trigger-alarm, restart
	Action string         `json:"action" binding:"required" example:"set-volume"`
	Params map[string]any `json:"params,omitempty"`
}

// @Summary      Send command
// @Description  Delivered at once when the device is reachable, otherwise queued for the next flush
// @Tags         commands
// @Accept       json
// @Produce      json
// @Param        body  body      SendCommandRequest  true  "Command payload"
// @Success      200   {object}  map[string]interface{}  "status, result, queue"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/v1/commands [post]
// @Security     BearerAuth
func (h *Handler) sendCommand(c *gin.Context) {
	var req SendCommandRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}

	res, err := h.services.Commands.SendCommand(c.Request.Context(), req.DeviceID, req.Action, req.Params)
	if err != nil {
		if errors.Is(err, service.ErrDeviceRequired) || errors.Is(err, service.ErrUnknownAction) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to send command", "command_send_failed", err,
			"action", req.Action)
		return
	}
	if h.log != nil {
		h.log.Infow("command_requested", "operator_id", operatorID(c), "device_id", req.DeviceID,
			"action", req.Action, "queued", res.Queued)
	}

	status := statusSent
	if res.Queued {
		status = statusQueued
	}
	c.JSON(http.StatusOK, gin.H{
		"status": status,
		"result": res,
		"queue":  h.services.Commands.Status(),
	})
}

// @Summary      Get command queue
// @Tags         commands
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status, pending"
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/commands/queue [get]
// @Security     BearerAuth
func (h *Handler) getQueue(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  h.services.Commands.Status(),
		"pending": h.services.Commands.Pending(),
	})
}

// @Summary      Flush command queue
// @Description  Attempts delivery of every queued command. Skipped when the device is unreachable or a flush is already running.
// @Tags         commands
// @Produce      json
// @Success      200  {object}  models.FlushReport
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/commands/flush [post]
// @Security     BearerAuth
func (h *Handler) flushQueue(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Commands.Flush(c.Request.Context()))
}
