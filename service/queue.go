package service

import (
	"encoding/json"
	"fmt"
	"time"

	"ScriptMaster-server/config"
	"ScriptMaster-server/pkg/logger"

	"github.com/hibiken/asynq"
)

const (
	TypeExportProject = "export:project"
)

type ExportPayload struct {
	TaskID string `json:"task_id"`
}

// Enqueuer 投递导出任务
type Enqueuer interface {
	EnqueueExport(taskID string) error
}

type Queue struct {
	client   *asynq.Client
	maxRetry int
	log      *logger.Logger
}

func redisOpt(cfg *config.Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
	}
}

// NewQueue 初始化
func NewQueue(cfg *config.Config, log *logger.Logger) *Queue {
	return &Queue{
		client:   asynq.NewClient(redisOpt(cfg)),
		maxRetry: cfg.Export.MaxRetry,
		log:      log,
	}
}

func (q *Queue) Close() error {
	return q.client.Close()
}

func NewExportTask(taskID string, maxRetry int) (*asynq.Task, error) {
	payload, err := json.Marshal(ExportPayload{TaskID: taskID})
	if err != nil {
		return nil, fmt.Errorf("marshal payload failed: %w", err)
	}
	return asynq.NewTask(TypeExportProject, payload,
		asynq.MaxRetry(maxRetry),
		asynq.Timeout(5*time.Minute),
		asynq.Retention(24*time.Hour), // 任务结果在 Redis 保留时间
	), nil
}

func (q *Queue) EnqueueExport(taskID string) error {
	task, err := NewExportTask(taskID, q.maxRetry)
	if err != nil {
		return err
	}
	info, err := q.client.Enqueue(task)
	if err != nil {
		return fmt.Errorf("enqueue failed: %w", err)
	}
	q.log.Info("export task enqueued", "task_id", taskID, "queue_id", info.ID)
	return nil
}
