package store

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// 导出任务状态
const (
	// pending: 已入队，等待执行器取走
	TaskStatusPending    = "pending"
	TaskStatusProcessing = "processing"
	TaskStatusSuccess    = "finished"
	TaskStatusFailed     = "failed"
)

type ExportTask struct {
	ID         string       `gorm:"primaryKey;type:varchar(64)" json:"id"`
	ProjectID  string       `gorm:"type:varchar(64);index" json:"projectId"`
	Status     string       `gorm:"type:varchar(32)" json:"status"`
	Progress   int          `json:"progress"`
	Message    string       `json:"message"`
	Result     ExportResult `gorm:"type:json" json:"result"`
	Error      string       `json:"error"`
	StartedAt  *time.Time   `json:"startedAt,omitempty"`
	FinishedAt *time.Time   `json:"finishedAt,omitempty"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

func (ExportTask) TableName() string {
	return "export_task"
}

// Done 任务已结束（成功或失败）
func (t *ExportTask) Done() bool {
	return t.Status == TaskStatusSuccess || t.Status == TaskStatusFailed
}

// ExportResult 仅保留最小资源定位信息
type ExportResult struct {
	FileName   string `json:"file_name,omitempty"`
	ObjectName string `json:"object_name,omitempty"`
	URL        string `json:"url,omitempty"`
	FileSize   int64  `json:"file_size,omitempty"`
}

// 实现 driver.Valuer 接口: Go Struct -> JSON String (存入数据库)
func (r ExportResult) Value() (driver.Value, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// 实现 sql.Scanner 接口: JSON String -> Go Struct (从数据库读取)
func (r *ExportResult) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, r)
	case string:
		if v == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), r)
	default:
		return fmt.Errorf("failed to unmarshal export result: %v", value)
	}
}

// TaskUpdate 部分更新，nil 字段不修改
type TaskUpdate struct {
	Status     string
	Progress   *int
	Message    *string
	Result     *ExportResult
	Error      *string
	StartedAt  *time.Time
	FinishedAt *time.Time
}

func (u TaskUpdate) columns() map[string]interface{} {
	sets := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if u.Status != "" {
		sets["status"] = u.Status
	}
	if u.Progress != nil {
		sets["progress"] = *u.Progress
	}
	if u.Message != nil {
		sets["message"] = *u.Message
	}
	if u.Result != nil {
		sets["result"] = *u.Result
	}
	if u.Error != nil {
		sets["error"] = *u.Error
	}
	if u.StartedAt != nil {
		sets["started_at"] = *u.StartedAt
	}
	if u.FinishedAt != nil {
		sets["finished_at"] = *u.FinishedAt
	}
	return sets
}

// ExportRecord 导出历史
type ExportRecord struct {
	ID           string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	ProjectID    string    `gorm:"type:varchar(64);index" json:"projectId"`
	TaskID       string    `gorm:"type:varchar(64)" json:"taskId"`
	FileName     string    `json:"fileName"`
	ObjectName   string    `json:"objectName"`
	URL          string    `gorm:"type:text" json:"url"`
	FileSize     int64     `json:"fileSize"`
	SegmentCount int       `json:"segmentCount"`
	CreatedAt    time.Time `gorm:"index" json:"createdAt"`
}

func (ExportRecord) TableName() string {
	return "export_record"
}
