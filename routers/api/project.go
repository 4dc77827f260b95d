package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"ScriptMaster-server/engine"
	"ScriptMaster-server/models"

	"github.com/gin-gonic/gin"
)

// 项目列表：GET /v1/api/projects
func (h *Handler) ListProjects(c *gin.Context) {
	list, err := h.projects.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": list})
}

// 创建项目：{"title": "..."} 使用默认模版；{"document": {...}} 导入完整文档
func (h *Handler) CreateProject(c *gin.Context) {
	var req struct {
		Title    string          `json:"title"`
		Document json.RawMessage `json:"document"`
	}
	// 空请求体按默认标题创建
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err)
		return
	}

	var (
		p   *models.Project
		err error
	)
	if len(req.Document) > 0 && string(req.Document) != "null" {
		p, err = h.projects.Import(c.Request.Context(), req.Document)
	} else {
		title := req.Title
		if title == "" {
			title = "Lesson 1"
		}
		p, err = h.projects.Create(c.Request.Context(), title)
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *Handler) GetProject(c *gin.Context) {
	p, err := h.projects.Get(c.Request.Context(), c.Param("project_id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// 整体覆盖：PUT 的请求体即项目文档
func (h *Handler) UpdateProject(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.projects.Replace(c.Request.Context(), c.Param("project_id"), body)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) DeleteProject(c *gin.Context) {
	if err := h.projects.Delete(c.Request.Context(), c.Param("project_id")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// 执行命令：单个信封或 {"commands": [...]}，全部成功才保存
func (h *Handler) ApplyCommands(c *gin.Context) {
	var req struct {
		engine.Envelope
		Commands []engine.Envelope `json:"commands"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	envs := req.Commands
	if envs == nil {
		if req.Op == "" {
			badRequest(c, errors.New("missing op or commands"))
			return
		}
		envs = []engine.Envelope{req.Envelope}
	}
	cmds, err := engine.DecodeAll(envs)
	if err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.projects.ApplyCommands(c.Request.Context(), c.Param("project_id"), cmds...)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) NextLesson(c *gin.Context) {
	p, err := h.projects.NextLesson(c.Request.Context(), c.Param("project_id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// 润色环节描述：POST /projects/:project_id/segments/:segment_id/polish
func (h *Handler) PolishSegment(c *gin.Context) {
	p, err := h.projects.Polish(c.Request.Context(), c.Param("project_id"), c.Param("segment_id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

type typeOption struct {
	Label   models.AssetType `json:"label"`
	Formats []string         `json:"formats"`
}

// 类型标签与允许的格式
func (h *Handler) ListTypes(c *gin.Context) {
	out := make([]typeOption, 0, len(models.AllAssetTypes))
	for _, t := range models.AllAssetTypes {
		out = append(out, typeOption{Label: t, Formats: models.PermittedFormats(t)})
	}
	c.JSON(http.StatusOK, gin.H{"types": out, "ops": engine.Ops()})
}
