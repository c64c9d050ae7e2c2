package handlers

import (
	"errors"
	"net/http"

	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/models"
	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

// @Summary      Get notification preferences
// @Tags         preferences
// @Produce      json
// @Success      200  {object}  models.NotificationPreferences
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/notifications/preferences [get]
// @Security     BearerAuth
func (h *Handler) getNotificationPreferences(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Notifications.Preferences(c.Request.Context()))
}

// @Summary      Update notification preferences
// @Description  Categories omitted from the body keep their defaults. An omitted throttle block keeps the stored one
// @Tags         preferences
// @Accept       json
// @Produce      json
// @Param        body  body      models.NotificationPreferencesUpdate  true  "Preferences"
// @Success      200   {object}  models.NotificationPreferences
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/v1/notifications/preferences [put]
// @Security     BearerAuth
func (h *Handler) updateNotificationPreferences(c *gin.Context) {
	var req models.NotificationPreferencesUpdate
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	prefs, err := h.services.Notifications.UpdatePreferences(c.Request.Context(), req)
	if err != nil {
		h.preferencesError(c, "notification_preferences_update_failed", err)
		return
	}
	c.JSON(http.StatusOK, prefs)
}

// @Summary      Get recommendation preferences
// @Tags         preferences
// @Produce      json
// @Success      200  {object}  models.RecommendationPreferences
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/recommendations/preferences [get]
// @Security     BearerAuth
func (h *Handler) getRecommendationPreferences(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Recommendations.Preferences(c.Request.Context()))
}

// @Summary      Update recommendation preferences
// @Description  An omitted throttle block keeps the stored one
// @Tags         preferences
// @Accept       json
// @Produce      json
// @Param        body  body      models.RecommendationPreferencesUpdate  true  "Preferences"
// @Success      200   {object}  models.RecommendationPreferences
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/v1/recommendations/preferences [put]
// @Security     BearerAuth
func (h *Handler) updateRecommendationPreferences(c *gin.Context) {
	var req models.RecommendationPreferencesUpdate
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	prefs, err := h.services.Recommendations.UpdatePreferences(c.Request.Context(), req)
	if err != nil {
		h.preferencesError(c, "recommendation_preferences_update_failed", err)
		return
	}
	c.JSON(http.StatusOK, prefs)
}

func (h *Handler) preferencesError(c *gin.Context, logKey string, err error) {
	if errors.Is(err, service.ErrInvalidPreferences) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.logAndJSONError(c, http.StatusInternalServerError, "failed to update preferences", logKey, err)
}
