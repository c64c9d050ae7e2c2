package handlers

import (
	"errors"
	"net/http"

	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/models"
	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

// @Summary      Ingest sensor snapshot
// @Description  Runs threshold alerts and recommendations against one reading
// @Tags         sensors
// @Accept       json
// @Produce      json
// @Param        body  body      models.SensorSnapshot  true  "Snapshot"
// @Success      200   {object}  service.IngestResult
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/v1/sensors [post]
// @Security     BearerAuth
func (h *Handler) ingestSensors(c *gin.Context) {
	var snap models.SensorSnapshot
	if ok := h.bindJSONOrBadRequest(c, &snap); !ok {
		return
	}
	res, err := h.services.Sensors.Ingest(c.Request.Context(), snap)
	if err != nil {
		if errors.Is(err, service.ErrEmptySnapshot) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to ingest snapshot", "sensor_ingest_failed", err)
		return
	}
	c.JSON(http.StatusOK, res)
}
