package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dongwonkwak/boardly-sub001/internal/board/models"
	"github.com/dongwonkwak/boardly-sub001/internal/board/service"
	apperrors "github.com/dongwonkwak/boardly-sub001/internal/common/errors"
	"github.com/dongwonkwak/boardly-sub001/internal/common/httpmw"
)

type moveCardRequest struct {
	TargetListID string `json:"target_list_id"`
	Position     *int   `json:"position"`
}

func (h *BoardHandlers) httpListCards(c *gin.Context) {
	cards, err := h.service.ListCards(c.Request.Context(), c.Param("id"), httpmw.RequesterID(c))
	if err != nil {
		writeError(c, h.logger, err, "list cards")
		return
	}
	if cards == nil {
		cards = []*models.Card{}
	}
	c.JSON(http.StatusOK, gin.H{"cards": cards, "total": len(cards)})
}

func (h *BoardHandlers) httpCreateCard(c *gin.Context) {
	var body service.CreateCardRequest
	if !bindJSON(c, &body) {
		return
	}
	card, err := h.service.CreateCard(c.Request.Context(), c.Param("id"), &body, httpmw.RequesterID(c))
	if err != nil {
		writeError(c, h.logger, err, "create card")
		return
	}
	c.JSON(http.StatusCreated, card)
}

func (h *BoardHandlers) httpGetCard(c *gin.Context) {
	card, err := h.service.GetCard(c.Request.Context(), c.Param("id"), httpmw.RequesterID(c))
	if err != nil {
		writeError(c, h.logger, err, "get card")
		return
	}
	c.JSON(http.StatusOK, card)
}

func (h *BoardHandlers) httpUpdateCard(c *gin.Context) {
	var body service.UpdateCardRequest
	if !bindJSON(c, &body) {
		return
	}
	card, err := h.service.UpdateCard(c.Request.Context(), c.Param("id"), &body, httpmw.RequesterID(c))
	if err != nil {
		writeError(c, h.logger, err, "update card")
		return
	}
	c.JSON(http.StatusOK, card)
}

func (h *BoardHandlers) httpMoveCard(c *gin.Context) {
	var body moveCardRequest
	if !bindJSON(c, &body) {
		return
	}
	if body.Position == nil {
		writeError(c, h.logger, apperrors.ValidationError("position", "position is required", nil), "move card")
		return
	}
	card, err := h.service.MoveCard(c.Request.Context(), c.Param("id"), &service.MoveCardRequest{
		TargetListID: body.TargetListID,
		Position:     *body.Position,
	}, httpmw.RequesterID(c))
	if err != nil {
		writeError(c, h.logger, err, "move card")
		return
	}
	c.JSON(http.StatusOK, card)
}

func (h *BoardHandlers) httpCloneCard(c *gin.Context) {
	var body service.CloneCardRequest
	if !bindJSON(c, &body) {
		return
	}
	card, err := h.service.CloneCard(c.Request.Context(), c.Param("id"), &body, httpmw.RequesterID(c))
	if err != nil {
		writeError(c, h.logger, err, "clone card")
		return
	}
	c.JSON(http.StatusCreated, card)
}

func (h *BoardHandlers) httpDeleteCard(c *gin.Context) {
	if err := h.service.DeleteCard(c.Request.Context(), c.Param("id"), httpmw.RequesterID(c)); err != nil {
		writeError(c, h.logger, err, "delete card")
		return
	}
	c.Status(http.StatusNoContent)
}
