package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dongwonkwak/boardly-sub001/internal/board/models"
	"github.com/dongwonkwak/boardly-sub001/internal/board/service"
	apperrors "github.com/dongwonkwak/boardly-sub001/internal/common/errors"
	"github.com/dongwonkwak/boardly-sub001/internal/common/httpmw"
)

type moveListRequest struct {
	Position *int `json:"position"`
}

func (h *BoardHandlers) httpListLists(c *gin.Context) {
	lists, err := h.service.GetBoardLists(c.Request.Context(), c.Param("id"), httpmw.RequesterID(c))
	if err != nil {
		writeError(c, h.logger, err, "list lists")
		return
	}
	c.JSON(http.StatusOK, lists)
}

func (h *BoardHandlers) httpCreateList(c *gin.Context) {
	var body service.CreateListRequest
	if !bindJSON(c, &body) {
		return
	}
	list, err := h.service.CreateBoardList(c.Request.Context(), c.Param("id"), &body, httpmw.RequesterID(c))
	if err != nil {
		writeError(c, h.logger, err, "create list")
		return
	}
	c.JSON(http.StatusCreated, list)
}

func (h *BoardHandlers) httpUpdateList(c *gin.Context) {
	var body service.UpdateListRequest
	if !bindJSON(c, &body) {
		return
	}
	list, err := h.service.UpdateBoardList(c.Request.Context(), c.Param("id"), &body, httpmw.RequesterID(c))
	if err != nil {
		writeError(c, h.logger, err, "update list")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *BoardHandlers) httpMoveList(c *gin.Context) {
	var body moveListRequest
	if !bindJSON(c, &body) {
		return
	}
	if body.Position == nil {
		writeError(c, h.logger, apperrors.ValidationError("position", "position is required", nil), "move list")
		return
	}
	lists, err := h.service.UpdateBoardListPosition(c.Request.Context(), c.Param("id"), *body.Position, httpmw.RequesterID(c))
	if err != nil {
		writeError(c, h.logger, err, "move list")
		return
	}
	if lists == nil {
		lists = []*models.BoardList{}
	}
	c.JSON(http.StatusOK, gin.H{"lists": lists})
}

func (h *BoardHandlers) httpDeleteList(c *gin.Context) {
	if err := h.service.DeleteBoardList(c.Request.Context(), c.Param("id"), httpmw.RequesterID(c)); err != nil {
		writeError(c, h.logger, err, "delete list")
		return
	}
	c.Status(http.StatusNoContent)
}
