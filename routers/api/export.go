package api

import (
	"net/http"

	"ScriptMaster-server/export"
	"ScriptMaster-server/service"

	"github.com/gin-gonic/gin"
)

// 同步下载：GET /v1/api/projects/:project_id/export
func (h *Handler) DownloadExport(c *gin.Context) {
	name, html, err := h.projects.RenderExport(c.Request.Context(), c.Param("project_id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Content-Disposition", service.ContentDisposition(name))
	c.Data(http.StatusOK, export.ContentType, []byte(html))
}

// 异步导出：POST /v1/api/projects/:project_id/exports
func (h *Handler) EnqueueExport(c *gin.Context) {
	task, err := h.projects.EnqueueExport(c.Request.Context(), c.Param("project_id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"task_id": task.ID, "task": task})
}

// 导出历史：GET /v1/api/projects/:project_id/exports
func (h *Handler) ListExports(c *gin.Context) {
	records, err := h.projects.ListExports(c.Request.Context(), c.Param("project_id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exports": records})
}
