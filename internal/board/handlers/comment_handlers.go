package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dongwonkwak/boardly-sub001/internal/board/models"
	"github.com/dongwonkwak/boardly-sub001/internal/board/service"
	"github.com/dongwonkwak/boardly-sub001/internal/common/httpmw"
)

type commentsResponse struct {
	Comments []*models.Comment `json:"comments"`
	Total    int               `json:"total"`
}

func newCommentsResponse(comments []*models.Comment) commentsResponse {
	if comments == nil {
		comments = []*models.Comment{}
	}
	return commentsResponse{Comments: comments, Total: len(comments)}
}

func (h *BoardHandlers) httpListCardComments(c *gin.Context) {
	comments, err := h.service.ListCardComments(c.Request.Context(), c.Param("id"), httpmw.RequesterID(c))
	if err != nil {
		writeError(c, h.logger, err, "list comments")
		return
	}
	c.JSON(http.StatusOK, newCommentsResponse(comments))
}

func (h *BoardHandlers) httpListMyComments(c *gin.Context) {
	comments, err := h.service.ListUserComments(c.Request.Context(), httpmw.RequesterID(c))
	if err != nil {
		writeError(c, h.logger, err, "list my comments")
		return
	}
	c.JSON(http.StatusOK, newCommentsResponse(comments))
}

func (h *BoardHandlers) httpCreateComment(c *gin.Context) {
	var body service.CommentRequest
	if !bindJSON(c, &body) {
		return
	}
	comment, err := h.service.CreateComment(c.Request.Context(), c.Param("id"), &body, httpmw.RequesterID(c))
	if err != nil {
		writeError(c, h.logger, err, "create comment")
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (h *BoardHandlers) httpGetComment(c *gin.Context) {
	comment, err := h.service.GetComment(c.Request.Context(), c.Param("id"), httpmw.RequesterID(c))
	if err != nil {
		writeError(c, h.logger, err, "get comment")
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (h *BoardHandlers) httpUpdateComment(c *gin.Context) {
	var body service.CommentRequest
	if !bindJSON(c, &body) {
		return
	}
	comment, err := h.service.UpdateComment(c.Request.Context(), c.Param("id"), &body, httpmw.RequesterID(c))
	if err != nil {
		writeError(c, h.logger, err, "update comment")
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (h *BoardHandlers) httpDeleteComment(c *gin.Context) {
	if err := h.service.DeleteComment(c.Request.Context(), c.Param("id"), httpmw.RequesterID(c)); err != nil {
		writeError(c, h.logger, err, "delete comment")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *BoardHandlers) httpGetDashboard(c *gin.Context) {
	dash, err := h.service.GetDashboard(c.Request.Context(), httpmw.RequesterID(c))
	if err != nil {
		writeError(c, h.logger, err, "get dashboard")
		return
	}
	c.JSON(http.StatusOK, dash)
}
