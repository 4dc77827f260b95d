package api

import (
	"errors"
	"net/http"
	"time"

	"ScriptMaster-server/models"
	"ScriptMaster-server/pkg/logger"
	"ScriptMaster-server/service"
	"ScriptMaster-server/store"

	"github.com/gin-gonic/gin"
)

// Handler 汇总 HTTP 接口依赖
type Handler struct {
	projects     *service.ProjectService
	log          *logger.Logger
	pollInterval time.Duration
}

func NewHandler(projects *service.ProjectService, log *logger.Logger) *Handler {
	return &Handler{projects: projects, log: log, pollInterval: time.Second}
}

// SetPollInterval 调整 WebSocket 轮询任务状态的间隔
func (h *Handler) SetPollInterval(d time.Duration) {
	if d > 0 {
		h.pollInterval = d
	}
}

const (
	codeNotFound    = "NOT_FOUND"
	codeBadRequest  = "BAD_REQUEST"
	codeUnavailable = "UNAVAILABLE"
	codeInternal    = "INTERNAL"
)

// statusOf 错误类别到 HTTP 状态码
func statusOf(err error) (int, string) {
	if errors.Is(err, store.ErrNotFound) {
		return http.StatusNotFound, codeNotFound
	}
	if errors.Is(err, service.ErrPolisherUnavailable) {
		return http.StatusServiceUnavailable, codeUnavailable
	}
	kind := models.KindOf(err)
	switch kind {
	case models.KindInvalidDocument, models.KindReservedColumnName, models.KindUnknownCommand:
		return http.StatusBadRequest, string(kind)
	case models.KindTemplateMissing, models.KindLastTemplate, models.KindConfirmationRequired:
		return http.StatusConflict, string(kind)
	case models.KindEmptyProject:
		return http.StatusUnprocessableEntity, string(kind)
	}
	return http.StatusInternalServerError, codeInternal
}

func (h *Handler) fail(c *gin.Context, err error) {
	status, code := statusOf(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": code})
}

func badRequest(c *gin.Context, err error) {
	code := codeBadRequest
	if kind := models.KindOf(err); kind != "" {
		code = string(kind)
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": code})
}
