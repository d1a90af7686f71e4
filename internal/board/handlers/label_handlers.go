package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dongwonkwak/boardly-sub001/internal/board/models"
	"github.com/dongwonkwak/boardly-sub001/internal/board/service"
	"github.com/dongwonkwak/boardly-sub001/internal/common/httpmw"
)

func (h *BoardHandlers) httpListLabels(c *gin.Context) {
	labels, err := h.service.ListLabels(c.Request.Context(), c.Param("id"), httpmw.RequesterID(c))
	if err != nil {
		writeError(c, h.logger, err, "list labels")
		return
	}
	if labels == nil {
		labels = []*models.Label{}
	}
	c.JSON(http.StatusOK, gin.H{"labels": labels})
}

func (h *BoardHandlers) httpCreateLabel(c *gin.Context) {
	var body service.CreateLabelRequest
	if !bindJSON(c, &body) {
		return
	}
	label, err := h.service.CreateLabel(c.Request.Context(), c.Param("id"), &body, httpmw.RequesterID(c))
	if err != nil {
		writeError(c, h.logger, err, "create label")
		return
	}
	c.JSON(http.StatusCreated, label)
}

func (h *BoardHandlers) httpUpdateLabel(c *gin.Context) {
	var body service.UpdateLabelRequest
	if !bindJSON(c, &body) {
		return
	}
	label, err := h.service.UpdateLabel(c.Request.Context(), c.Param("id"), &body, httpmw.RequesterID(c))
	if err != nil {
		writeError(c, h.logger, err, "update label")
		return
	}
	c.JSON(http.StatusOK, label)
}

func (h *BoardHandlers) httpDeleteLabel(c *gin.Context) {
	if err := h.service.DeleteLabel(c.Request.Context(), c.Param("id"), httpmw.RequesterID(c)); err != nil {
		writeError(c, h.logger, err, "delete label")
		return
	}
	c.Status(http.StatusNoContent)
}
