package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ScriptMaster-server/engine"
	"ScriptMaster-server/export"
	"ScriptMaster-server/models"
	"ScriptMaster-server/pkg/logger"
	"ScriptMaster-server/pkg/metrics"
	"ScriptMaster-server/store"

	"github.com/google/uuid"
)

// ProjectService 读取文档、执行命令、保存结果。同一项目的写操作串行
type ProjectService struct {
	store    *store.Store
	queue    Enqueuer
	polisher Polisher
	log      *logger.Logger
	locks    keyedMutex
}

// polisher 可以为 nil，此时润色接口返回 ErrPolisherUnavailable
func NewProjectService(st *store.Store, queue Enqueuer, polisher Polisher, log *logger.Logger) *ProjectService {
	return &ProjectService{store: st, queue: queue, polisher: polisher, log: log}
}

// Create 新建项目，带默认模版和课型
func (s *ProjectService) Create(ctx context.Context, title string) (*models.Project, error) {
	p := models.NewProject(title)
	if err := s.store.SaveProject(ctx, p); err != nil {
		return nil, err
	}
	s.log.Info("project created", "project_id", p.ID)
	return p, nil
}

// Import 从完整文档创建项目；ID 已被占用时分配新 ID
func (s *ProjectService) Import(ctx context.Context, data []byte) (*models.Project, error) {
	p, err := models.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	unlock := s.locks.Lock(p.ID)
	defer unlock()

	if _, err := s.store.LoadProject(ctx, p.ID); err == nil {
		p.ID = models.NewID()
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	if err := s.store.SaveProject(ctx, p); err != nil {
		return nil, err
	}
	s.log.Info("project imported", "project_id", p.ID, "segments", len(p.Segments))
	return p, nil
}

// Replace 用文档整体覆盖已有项目，文档中的 id 被忽略
func (s *ProjectService) Replace(ctx context.Context, id string, data []byte) (*models.Project, error) {
	p, err := models.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	unlock := s.locks.Lock(id)
	defer unlock()

	if _, err := s.store.LoadProject(ctx, id); err != nil {
		return nil, err
	}
	p.ID = id
	if err := s.store.SaveProject(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProjectService) Get(ctx context.Context, id string) (*models.Project, error) {
	return s.store.LoadProject(ctx, id)
}

func (s *ProjectService) List(ctx context.Context) ([]store.ProjectSummary, error) {
	return s.store.ListProjects(ctx)
}

func (s *ProjectService) Delete(ctx context.Context, id string) error {
	unlock := s.locks.Lock(id)
	defer unlock()
	return s.store.DeleteProject(ctx, id)
}

// ApplyCommands 原子执行：任何一条失败则文档保持不变
func (s *ProjectService) ApplyCommands(ctx context.Context, id string, cmds ...engine.Command) (*models.Project, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	p, err := s.store.LoadProject(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := engine.Apply(p, cmds...)
	for _, c := range cmds {
		metrics.CommandsTotal.WithLabelValues(c.Op(), metrics.Status(err)).Inc()
	}
	if err != nil {
		s.log.Debug("commands rejected", "project_id", id, "count", len(cmds), "error", err)
		return nil, err
	}
	if err := s.store.SaveProject(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

// NextLesson 基于现有项目生成下一课并保存
func (s *ProjectService) NextLesson(ctx context.Context, id string) (*models.Project, error) {
	p, err := s.store.LoadProject(ctx, id)
	if err != nil {
		return nil, err
	}
	next := engine.NextLesson(p)
	if err := s.store.SaveProject(ctx, next); err != nil {
		return nil, err
	}
	s.log.Info("next lesson created", "from", id, "project_id", next.ID)
	return next, nil
}

// RenderExport 同步导出，返回文件名与内容
func (s *ProjectService) RenderExport(ctx context.Context, id string) (fileName string, html string, err error) {
	start := time.Now()
	defer func() {
		metrics.ExportsTotal.WithLabelValues("sync", metrics.Status(err)).Inc()
		metrics.ExportDuration.WithLabelValues("sync").Observe(time.Since(start).Seconds())
	}()

	p, err := s.store.LoadProject(ctx, id)
	if err != nil {
		return "", "", err
	}
	html, err = export.Render(p)
	if err != nil {
		return "", "", err
	}
	return export.FileName(p), html, nil
}

// EnqueueExport 创建导出任务并投递到队列
func (s *ProjectService) EnqueueExport(ctx context.Context, id string) (*store.ExportTask, error) {
	if _, err := s.store.LoadProject(ctx, id); err != nil {
		return nil, err
	}
	task := &store.ExportTask{
		ID:        uuid.NewString(),
		ProjectID: id,
		Status:    store.TaskStatusPending,
		Message:   "导出任务已创建，等待执行",
	}
	if err := s.store.CreateExportTask(ctx, task); err != nil {
		return nil, err
	}
	if err := s.queue.EnqueueExport(task.ID); err != nil {
		reason := err.Error()
		now := time.Now()
		_ = s.store.UpdateExportTask(ctx, task.ID, store.TaskUpdate{
			Status:     store.TaskStatusFailed,
			Error:      &reason,
			FinishedAt: &now,
		})
		return nil, fmt.Errorf("enqueue export %s: %w", task.ID, err)
	}
	return task, nil
}

func (s *ProjectService) ListExports(ctx context.Context, id string) ([]store.ExportRecord, error) {
	return s.store.ListExportRecords(ctx, id)
}

func (s *ProjectService) GetTask(ctx context.Context, taskID string) (*store.ExportTask, error) {
	return s.store.GetExportTask(ctx, taskID)
}

// Polish 润色环节描述；失败时环节保持不变
func (s *ProjectService) Polish(ctx context.Context, projectID, segmentID string) (*models.Project, error) {
	if s.polisher == nil {
		return nil, ErrPolisherUnavailable
	}
	p, err := s.store.LoadProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	seg := p.Segment(segmentID)
	if seg == nil {
		return nil, fmt.Errorf("segment %s: %w", segmentID, store.ErrNotFound)
	}
	descriptions, err := s.polisher.Polish(ctx, *seg)
	if err != nil {
		s.log.Warn("polish failed", "project_id", projectID, "segment_id", segmentID, "error", err)
		return nil, fmt.Errorf("polish segment %s: %w", segmentID, err)
	}
	if len(descriptions) == 0 {
		return p, nil
	}
	return s.ApplyCommands(ctx, projectID, engine.SetDescriptions{SegmentID: segmentID, Descriptions: descriptions})
}
