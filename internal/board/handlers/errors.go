package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/dongwonkwak/boardly-sub001/internal/common/errors"
	"github.com/dongwonkwak/boardly-sub001/internal/common/logger"
)

// writeError renders err as {"error","code","reason"} with the status the error carries.
func writeError(c *gin.Context, log *logger.Logger, err error, op string) {
	status := apperrors.GetHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.WithContext(c.Request.Context()).Error(op+" failed", zap.Error(err))
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		c.JSON(status, gin.H{"error": op + " failed", "code": apperrors.ErrCodeInternalError})
		return
	}

	body := gin.H{"error": appErr.Message, "code": appErr.Code}
	if appErr.Reason != "" {
		body["reason"] = appErr.Reason
	}
	if len(appErr.Context) > 0 {
		body["context"] = appErr.Context
	}
	if len(appErr.Violations) > 0 {
		body["violations"] = appErr.Violations
	}
	c.JSON(status, body)
}

// bindJSON decodes the request body, answering 400 on malformed input.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid request body",
			"code":  apperrors.ErrCodeValidation,
		})
		return false
	}
	return true
}

func queryBool(c *gin.Context, key string) bool {
	v, err := strconv.ParseBool(c.Query(key))
	return err == nil && v
}
