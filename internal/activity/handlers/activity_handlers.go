// Package handlers serves a board's activity feed over HTTP and websocket.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dongwonkwak/boardly-sub001/internal/activity"
	apperrors "github.com/dongwonkwak/boardly-sub001/internal/common/errors"
	"github.com/dongwonkwak/boardly-sub001/internal/common/httpmw"
	"github.com/dongwonkwak/boardly-sub001/internal/common/logger"
	"github.com/dongwonkwak/boardly-sub001/internal/events/bus"
)

// BoardReader authorizes feed access.
type BoardReader interface {
	RequireBoardRead(ctx context.Context, boardID, userID string) error
}

type ActivityHandlers struct {
	boards BoardReader
	store  activity.Store
	bus    bus.EventBus
	logger *logger.Logger
}

func NewActivityHandlers(boards BoardReader, store activity.Store, eventBus bus.EventBus, log *logger.Logger) *ActivityHandlers {
	return &ActivityHandlers{
		boards: boards,
		store:  store,
		bus:    eventBus,
		logger: log.WithFields(zap.String("component", "activity-handlers")),
	}
}

// RegisterActivityRoutes mounts the feed routes on the authenticated /api/v1 group.
func RegisterActivityRoutes(api *gin.RouterGroup, boards BoardReader, store activity.Store, eventBus bus.EventBus, log *logger.Logger) {
	handlers := NewActivityHandlers(boards, store, eventBus, log)
	api.GET("/boards/:id/activities", handlers.httpListActivities)
	api.GET("/boards/:id/activities/stream", handlers.wsStream)
}

type listActivitiesResponse struct {
	Activities []*activity.Activity `json:"activities"`
	NextBefore *time.Time           `json:"next_before,omitempty"`
}

func (h *ActivityHandlers) httpListActivities(c *gin.Context) {
	boardID := c.Param("id")
	if err := h.boards.RequireBoardRead(c.Request.Context(), boardID, httpmw.RequesterID(c)); err != nil {
		h.writeError(c, err)
		return
	}

	opts, err := parseListOptions(c)
	if err != nil {
		h.writeError(c, err)
		return
	}

	items, err := h.store.ListByBoard(c.Request.Context(), boardID, opts)
	if err != nil {
		h.writeError(c, apperrors.Internal("failed to list activities", err))
		return
	}
	resp := listActivitiesResponse{Activities: items}
	if resp.Activities == nil {
		resp.Activities = []*activity.Activity{}
	}
	if n := len(items); n > 0 && n == opts.Normalize().Limit {
		next := items[n-1].CreatedAt
		resp.NextBefore = &next
	}
	c.JSON(http.StatusOK, resp)
}

func parseListOptions(c *gin.Context) (activity.ListOptions, error) {
	var opts activity.ListOptions
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return opts, apperrors.ValidationError("limit", "limit must be a positive integer", raw)
		}
		opts.Limit = limit
	}
	if raw := c.Query("before"); raw != "" {
		before, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return opts, apperrors.ValidationError("before", "before must be an RFC 3339 timestamp", raw)
		}
		opts.Before = before
	}
	return opts, nil
}

func (h *ActivityHandlers) writeError(c *gin.Context, err error) {
	status := apperrors.GetHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.WithContext(c.Request.Context()).Error("activity request failed", zap.Error(err))
	}
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		c.JSON(status, gin.H{"error": "request failed", "code": apperrors.ErrCodeInternalError})
		return
	}
	body := gin.H{"error": appErr.Message, "code": appErr.Code}
	if appErr.Reason != "" {
		body["reason"] = appErr.Reason
	}
	c.JSON(status, body)
}
