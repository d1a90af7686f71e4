// Package handlers exposes the board service over HTTP.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dongwonkwak/boardly-sub001/internal/board/models"
	"github.com/dongwonkwak/boardly-sub001/internal/board/service"
	"github.com/dongwonkwak/boardly-sub001/internal/common/httpmw"
	"github.com/dongwonkwak/boardly-sub001/internal/common/logger"
)

type BoardHandlers struct {
	service *service.Service
	logger  *logger.Logger
}

func NewBoardHandlers(svc *service.Service, log *logger.Logger) *BoardHandlers {
	return &BoardHandlers{
		service: svc,
		logger:  log.WithFields(zap.String("component", "board-handlers")),
	}
}

// RegisterBoardRoutes mounts the board, member, list, card, comment, label and dashboard routes on api,
// which is expected to be the authenticated /api/v1 group.
func RegisterBoardRoutes(api *gin.RouterGroup, svc *service.Service, log *logger.Logger) {
	handlers := NewBoardHandlers(svc, log)
	handlers.registerHTTP(api)
}

func (h *BoardHandlers) registerHTTP(api *gin.RouterGroup) {
	api.GET("/boards", h.httpListBoards)
	api.POST("/boards", h.httpCreateBoard)
	api.GET("/boards/:id", h.httpGetBoard)
	api.GET("/boards/:id/detail", h.httpGetBoardDetail)
	api.PATCH("/boards/:id", h.httpUpdateBoard)
	api.POST("/boards/:id/archive", h.httpArchiveBoard)
	api.POST("/boards/:id/unarchive", h.httpUnarchiveBoard)
	api.POST("/boards/:id/star", h.httpStarBoard)
	api.DELETE("/boards/:id/star", h.httpUnstarBoard)
	api.DELETE("/boards/:id", h.httpDeleteBoard)

	api.GET("/boards/:id/members", h.httpListMembers)
	api.POST("/boards/:id/members", h.httpAddMember)
	api.PATCH("/boards/:id/members/:userId", h.httpUpdateMemberRole)
	api.DELETE("/boards/:id/members/:userId", h.httpRemoveMember)

	api.GET("/boards/:id/lists", h.httpListLists)
	api.POST("/boards/:id/lists", h.httpCreateList)
	api.PATCH("/lists/:id", h.httpUpdateList)
	api.PUT("/lists/:id/position", h.httpMoveList)
	api.DELETE("/lists/:id", h.httpDeleteList)

	api.GET("/lists/:id/cards", h.httpListCards)
	api.POST("/lists/:id/cards", h.httpCreateCard)
	api.GET("/cards/:id", h.httpGetCard)
	api.PATCH("/cards/:id", h.httpUpdateCard)
	api.PUT("/cards/:id/position", h.httpMoveCard)
	api.POST("/cards/:id/clone", h.httpCloneCard)
	api.DELETE("/cards/:id", h.httpDeleteCard)

	api.GET("/cards/:id/comments", h.httpListCardComments)
	api.POST("/cards/:id/comments", h.httpCreateComment)
	api.GET("/comments/:id", h.httpGetComment)
	api.PATCH("/comments/:id", h.httpUpdateComment)
	api.DELETE("/comments/:id", h.httpDeleteComment)
	api.GET("/me/comments", h.httpListMyComments)
	api.GET("/dashboard", h.httpGetDashboard)

	api.GET("/boards/:id/labels", h.httpListLabels)
	api.POST("/boards/:id/labels", h.httpCreateLabel)
	api.PATCH("/labels/:id", h.httpUpdateLabel)
	api.DELETE("/labels/:id", h.httpDeleteLabel)
}

type listBoardsResponse struct {
	Boards []*models.Board `json:"boards"`
	Total  int             `json:"total"`
}

// HTTP handlers

func (h *BoardHandlers) httpListBoards(c *gin.Context) {
	boards, err := h.service.ListBoards(c.Request.Context(), httpmw.RequesterID(c), queryBool(c, "include_archived"))
	if err != nil {
		writeError(c, h.logger, err, "list boards")
		return
	}
	if boards == nil {
		boards = []*models.Board{}
	}
	c.JSON(http.StatusOK, listBoardsResponse{Boards: boards, Total: len(boards)})
}

func (h *BoardHandlers) httpCreateBoard(c *gin.Context) {
	var body service.CreateBoardRequest
	if !bindJSON(c, &body) {
		return
	}
	board, err := h.service.CreateBoard(c.Request.Context(), &body, httpmw.RequesterID(c))
	if err != nil {
		writeError(c, h.logger, err, "create board")
		return
	}
	c.JSON(http.StatusCreated, board)
}

func (h *BoardHandlers) httpGetBoard(c *gin.Context) {
	board, err := h.service.GetBoard(c.Request.Context(), c.Param("id"), httpmw.RequesterID(c))
	if err != nil {
		writeError(c, h.logger, err, "get board")
		return
	}
	c.JSON(http.StatusOK, board)
}

func (h *BoardHandlers) httpGetBoardDetail(c *gin.Context) {
	detail, err := h.service.GetBoardDetail(c.Request.Context(), c.Param("id"), httpmw.RequesterID(c))
	if err != nil {
		writeError(c, h.logger, err, "get board detail")
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *BoardHandlers) httpUpdateBoard(c *gin.Context) {
	var body service.UpdateBoardRequest
	if !bindJSON(c, &body) {
		return
	}
	board, err := h.service.UpdateBoard(c.Request.Context(), c.Param("id"), &body, httpmw.RequesterID(c))
	if err != nil {
		writeError(c, h.logger, err, "update board")
		return
	}
	c.JSON(http.StatusOK, board)
}

func (h *BoardHandlers) httpArchiveBoard(c *gin.Context) {
	board, err := h.service.ArchiveBoard(c.Request.Context(), c.Param("id"), httpmw.RequesterID(c))
	if err != nil {
		writeError(c, h.logger, err, "archive board")
		return
	}
	c.JSON(http.StatusOK, board)
}

func (h *BoardHandlers) httpUnarchiveBoard(c *gin.Context) {
	board, err := h.service.UnarchiveBoard(c.Request.Context(), c.Param("id"), httpmw.RequesterID(c))
	if err != nil {
		writeError(c, h.logger, err, "unarchive board")
		return
	}
	c.JSON(http.StatusOK, board)
}

func (h *BoardHandlers) httpStarBoard(c *gin.Context) {
	board, err := h.service.StarBoard(c.Request.Context(), c.Param("id"), httpmw.RequesterID(c))
	if err != nil {
		writeError(c, h.logger, err, "star board")
		return
	}
	c.JSON(http.StatusOK, board)
}

func (h *BoardHandlers) httpUnstarBoard(c *gin.Context) {
	board, err := h.service.UnstarBoard(c.Request.Context(), c.Param("id"), httpmw.RequesterID(c))
	if err != nil {
		writeError(c, h.logger, err, "unstar board")
		return
	}
	c.JSON(http.StatusOK, board)
}

func (h *BoardHandlers) httpDeleteBoard(c *gin.Context) {
	if err := h.service.DeleteBoard(c.Request.Context(), c.Param("id"), httpmw.RequesterID(c)); err != nil {
		writeError(c, h.logger, err, "delete board")
		return
	}
	c.Status(http.StatusNoContent)
}
