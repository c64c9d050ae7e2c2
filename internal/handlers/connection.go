package handlers

import (
	"net/http"

	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/models"

	"github.com/gin-gonic/gin"
)

// SetModeRequest is an exported model for Swagger docs of the setMode payload.
type SetModeRequest struct {
	// Mode to set. Allowed: AUTO, ONLINE, OFFLINE (or 0, 1, 2)
	Mode string `json:"mode" binding:"required" example:"OFFLINE"`
}

// @Summary      Get connection view
// @Tags         connection
// @Produce      json
// @Success      200  {object}  models.ConnectionView
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/connection [get]
// @Security     BearerAuth
func (h *Handler) getConnection(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Connection.View())
}

// @Summary      Poll device status
// @Tags         connection
// @Produce      json
// @Success      200  {object}  models.ConnectionView
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/connection/poll [post]
// @Security     BearerAuth
func (h *Handler) pollConnection(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Connection.Poll(c.Request.Context()))
}

// @Summary      Set connection mode
// @Description  The preference is stored at once and pushed to the device in the background
// @Tags         connection
// @Accept       json
// @Produce      json
// @Param        body  body      SetModeRequest  true  "Mode payload"
// @Success      200   {object}  map[string]interface{}  "status, mode, connection"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/v1/connection/mode [post]
// @Security     BearerAuth
func (h *Handler) setMode(c *gin.Context) {
	var req SetModeRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	mode, err := models.ParseMode(req.Mode)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.services.Connection.SetMode(c.Request.Context(), mode); err != nil {
		h.logAndJSONError(c, http.StatusBadRequest, err.Error(), "connection_set_mode_failed", err, "mode", req.Mode)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":     statusModeSet,
		"mode":       mode.String(),
		"connection": h.services.Connection.View(),
	})
}

// @Summary      Force sync
// @Description  Asks the device to upload its offline detection backlog, then re-polls
// @Tags         connection
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "result, connection"
// @Failure      401  {object}  map[string]string
// @Failure      502  {object}  map[string]interface{}  "error, connection"
// @Router       /api/v1/connection/sync [post]
// @Security     BearerAuth
func (h *Handler) forceSync(c *gin.Context) {
	result, view, err := h.services.Connection.ForceSync(c.Request.Context())
	if err != nil {
		if h.log != nil {
			h.log.Errorw("connection_force_sync_failed", "err", err)
		}
		c.JSON(http.StatusBadGateway, gin.H{
			"error":      "force sync failed",
			"connection": view,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"result":     result,
		"connection": view,
	})
}
