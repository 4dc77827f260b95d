package models

import "github.com/google/uuid"

// NewID 生成全局唯一的实体 ID
func NewID() string {
	return uuid.NewString()
}
