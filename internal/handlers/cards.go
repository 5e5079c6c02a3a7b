package handlers

import (
	"errors"
	"net/http"

	"heating_card/internal/models"
	"heating_card/internal/repository"
	"heating_card/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK = "ok"

	errCardNotFound    = "card not found"
	errUpdateConfig    = "failed to update card config"
	errMountCard       = "failed to mount card"
	errInvalidBodyPref = "invalid body: "
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// TapActionRequest selects what a tap on the card body does.
type TapActionRequest struct {
	// Any Home Assistant tap action; none disables taps
	Action string `json:"action" example:"more-info"`
}

// UpdateConfigRequest is a partial card config. Omitted fields are kept;
// an empty name clears the override.
type UpdateConfigRequest struct {
	Entity    *string           `json:"entity,omitempty" example:"climate.living_room_hm"`
	Name      *string           `json:"name,omitempty" example:"Living Room"`
	TapAction *TapActionRequest `json:"tap_action,omitempty"`
}

func (r UpdateConfigRequest) patch() service.ConfigPatch {
	p := service.ConfigPatch{Entity: r.Entity, Name: r.Name}
	if r.TapAction != nil {
		action := r.TapAction.Action
		p.TapAction = &action
	}
	return p
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      List cards
// @Tags         cards
// @Produce      json
// @Success      200  {array}   models.CardRecord
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/cards [get]
// @Security     BearerAuth
func (h *Handler) listCards(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.List(c.Request.Context()))
}

// @Summary      Get card
// @Tags         cards
// @Produce      json
// @Param        id   path      string  true  "Card id"
// @Success      200  {object}  models.CardRecord
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/cards/{id} [get]
// @Security     BearerAuth
func (h *Handler) getCard(c *gin.Context) {
	rec, err := h.services.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": errCardNotFound})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// @Summary      Update card config
// @Description  Applies a partial config and emits config-changed
// @Tags         cards
// @Accept       json
// @Produce      json
// @Param        id    path      string               true  "Card id"
// @Param        body  body      UpdateConfigRequest  true  "Config patch"
// @Success      200   {object}  models.CardRecord
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/v1/cards/{id}/config [put]
// @Security     BearerAuth
func (h *Handler) updateCardConfig(c *gin.Context) {
	var req UpdateConfigRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}

	id := c.Param("id")
	rec, err := h.services.UpdateConfig(c.Request.Context(), id, req.patch())
	switch {
	case err == nil:
		c.JSON(http.StatusOK, rec)
	case errors.Is(err, service.ErrSignalNotDelivered):
		// stored, only the announcement was lost
		if h.log != nil {
			h.log.Warnw("card_config_signal_failed", "card", id, "err", err)
		}
		c.JSON(http.StatusOK, rec)
	case errors.Is(err, repository.ErrCardNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": errCardNotFound})
	case errors.Is(err, models.ErrMissingEntity), errors.Is(err, service.ErrInvalidTapAction):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logAndJSONError(c, http.StatusInternalServerError, errUpdateConfig, "card_config_update_failed", err, "card", id)
	}
}

// @Summary      Card catalog
// @Description  Card types offered to the dashboard picker
// @Tags         cards
// @Produce      json
// @Success      200  {array}   card.CatalogEntry
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/catalog [get]
// @Security     BearerAuth
func (h *Handler) getCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Entries())
}
