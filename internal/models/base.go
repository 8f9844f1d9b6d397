package models

import (
	"time"
)

// BaseModel 基础模型（字符串主键的实体自带ID，这里只放时间戳）
type BaseModel struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
