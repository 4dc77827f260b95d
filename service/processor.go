package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ScriptMaster-server/config"
	"ScriptMaster-server/export"
	"ScriptMaster-server/models"
	"ScriptMaster-server/pkg/logger"
	"ScriptMaster-server/pkg/metrics"
	"ScriptMaster-server/store"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Processor 消费导出队列
type Processor struct {
	store   *store.Store
	storage ArtifactStorage
	log     *logger.Logger
}

func NewProcessor(st *store.Store, storage ArtifactStorage, log *logger.Logger) *Processor {
	return &Processor{store: st, storage: storage, log: log}
}

// StartProcessor 启动任务消费者，返回的 server 由调用方负责 Shutdown
func (p *Processor) StartProcessor(cfg *config.Config) *asynq.Server {
	srv := asynq.NewServer(
		redisOpt(cfg),
		asynq.Config{
			Concurrency: cfg.Export.Concurrency,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeExportProject, p.HandleExportTask)

	p.log.Info("starting export processor", "concurrency", cfg.Export.Concurrency)
	go func() {
		if err := srv.Run(mux); err != nil {
			p.log.Fatal("could not run export processor", "error", err)
		}
	}()
	return srv
}

// HandleExportTask 渲染脚本、上传 MinIO、写入导出历史
func (p *Processor) HandleExportTask(ctx context.Context, t *asynq.Task) (err error) {
	start := time.Now()
	defer func() {
		metrics.ExportsTotal.WithLabelValues("async", metrics.Status(err)).Inc()
		metrics.ExportDuration.WithLabelValues("async").Observe(time.Since(start).Seconds())
	}()

	var payload ExportPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}

	task, err := p.store.GetExportTask(ctx, payload.TaskID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("task %s not found: %w", payload.TaskID, asynq.SkipRetry)
		}
		return err
	}
	if task.Done() {
		return nil
	}
	log := p.log.With("task_id", task.ID, "project_id", task.ProjectID)
	log.Info("processing export task")

	now := time.Now()
	p.progress(ctx, task.ID, store.TaskUpdate{
		Status:    store.TaskStatusProcessing,
		Progress:  intPtr(10),
		Message:   strPtr("正在生成脚本..."),
		StartedAt: &now,
	})

	project, err := p.store.LoadProject(ctx, task.ProjectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			p.fail(ctx, task.ID, "项目不存在")
			return fmt.Errorf("project %s not found: %w", task.ProjectID, asynq.SkipRetry)
		}
		return p.retryable(ctx, task.ID, err)
	}

	html, stats, err := export.RenderWithStats(project)
	if err != nil {
		if errors.Is(err, models.ErrEmptyProject) {
			p.fail(ctx, task.ID, err.Error())
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return p.retryable(ctx, task.ID, err)
	}
	p.progress(ctx, task.ID, store.TaskUpdate{Progress: intPtr(60), Message: strPtr("正在上传文件...")})

	fileName := export.FileName(project)
	objectName := fmt.Sprintf("exports/%s/%s.xls", project.ID, task.ID)
	data := []byte(html)
	url, err := p.storage.Upload(ctx, objectName, export.ContentType, data, fileName)
	if err != nil {
		return p.retryable(ctx, task.ID, err)
	}

	result := store.ExportResult{
		FileName:   fileName,
		ObjectName: objectName,
		URL:        url,
		FileSize:   int64(len(data)),
	}
	record := &store.ExportRecord{
		ID:           uuid.NewString(),
		ProjectID:    project.ID,
		TaskID:       task.ID,
		FileName:     fileName,
		ObjectName:   objectName,
		URL:          url,
		FileSize:     result.FileSize,
		SegmentCount: stats.Segments,
		CreatedAt:    time.Now(),
	}
	if err := p.store.CreateExportRecord(ctx, record); err != nil {
		log.Warn("create export record failed", "error", err)
	}

	finished := time.Now()
	p.progress(ctx, task.ID, store.TaskUpdate{
		Status:     store.TaskStatusSuccess,
		Progress:   intPtr(100),
		Message:    strPtr(fmt.Sprintf("导出完成：%d 个环节，%d 行", stats.Segments, stats.Rows)),
		Result:     &result,
		FinishedAt: &finished,
	})
	log.Info("export task finished", "object", objectName, "rows", stats.Rows)
	return nil
}

// retryable 最后一次重试仍失败时把任务标记为 failed
func (p *Processor) retryable(ctx context.Context, taskID string, err error) error {
	retried, ok1 := asynq.GetRetryCount(ctx)
	maxRetry, ok2 := asynq.GetMaxRetry(ctx)
	if !ok1 || !ok2 || retried >= maxRetry {
		p.fail(ctx, taskID, err.Error())
	} else {
		p.progress(ctx, taskID, store.TaskUpdate{Message: strPtr(fmt.Sprintf("第 %d 次重试: %v", retried+1, err))})
	}
	return err
}

func (p *Processor) fail(ctx context.Context, taskID, reason string) {
	finished := time.Now()
	p.progress(ctx, taskID, store.TaskUpdate{
		Status:     store.TaskStatusFailed,
		Error:      &reason,
		FinishedAt: &finished,
	})
}

func (p *Processor) progress(ctx context.Context, taskID string, u store.TaskUpdate) {
	if err := p.store.UpdateExportTask(ctx, taskID, u); err != nil {
		p.log.Warn("update export task failed", "task_id", taskID, "error", err)
	}
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }
