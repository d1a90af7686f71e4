package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dongwonkwak/boardly-sub001/internal/board/models"
	"github.com/dongwonkwak/boardly-sub001/internal/board/service"
	"github.com/dongwonkwak/boardly-sub001/internal/common/httpmw"
)

type updateMemberRoleRequest struct {
	Role string `json:"role"`
}

func (h *BoardHandlers) httpListMembers(c *gin.Context) {
	members, err := h.service.ListBoardMembers(c.Request.Context(), c.Param("id"), httpmw.RequesterID(c))
	if err != nil {
		writeError(c, h.logger, err, "list members")
		return
	}
	if members == nil {
		members = []*models.BoardMember{}
	}
	c.JSON(http.StatusOK, gin.H{"members": members, "total": len(members)})
}

func (h *BoardHandlers) httpAddMember(c *gin.Context) {
	var body service.AddMemberRequest
	if !bindJSON(c, &body) {
		return
	}
	member, err := h.service.AddBoardMember(c.Request.Context(), c.Param("id"), &body, httpmw.RequesterID(c))
	if err != nil {
		writeError(c, h.logger, err, "add member")
		return
	}
	c.JSON(http.StatusCreated, member)
}

func (h *BoardHandlers) httpUpdateMemberRole(c *gin.Context) {
	var body updateMemberRoleRequest
	if !bindJSON(c, &body) {
		return
	}
	member, err := h.service.UpdateBoardMemberRole(c.Request.Context(), c.Param("id"), c.Param("userId"), body.Role, httpmw.RequesterID(c))
	if err != nil {
		writeError(c, h.logger, err, "update member role")
		return
	}
	c.JSON(http.StatusOK, member)
}

func (h *BoardHandlers) httpRemoveMember(c *gin.Context) {
	if err := h.service.RemoveBoardMember(c.Request.Context(), c.Param("id"), c.Param("userId"), httpmw.RequesterID(c)); err != nil {
		writeError(c, h.logger, err, "remove member")
		return
	}
	c.Status(http.StatusNoContent)
}
