package store

import (
	"time"

	"gorm.io/datatypes"
)

// ProjectDocument 一行保存一个完整的项目文档
type ProjectDocument struct {
	ID           string         `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Title        string         `gorm:"type:varchar(255)" json:"title"`
	Document     datatypes.JSON `json:"document"`
	SegmentCount int            `json:"segmentCount"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `gorm:"index" json:"updatedAt"`
}

func (ProjectDocument) TableName() string {
	return "project_document"
}

// ProjectSummary 列表页使用的摘要
type ProjectSummary struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	SegmentCount int    `json:"segmentCount"`
	UpdatedAt    int64  `json:"updatedAt"`
}
