package models

import "time"

// Role 角色模型，主键由名称派生（去变音符、去空格）
type Role struct {
	ID          string `gorm:"primaryKey;size:100" json:"id"`
	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `gorm:"size:255" json:"description"`
	IsActive    bool   `gorm:"default:true" json:"is_active"`
	IsSystem    bool   `gorm:"default:false" json:"is_system"` // 系统角色不可删除
	BaseModel

	// 关联关系
	Permissions []Permission `gorm:"many2many:role_permissions;" json:"permissions,omitempty"`
}

// RolePermission 角色权限关联表
type RolePermission struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	RoleID       string    `gorm:"not null;size:100;index" json:"role_id"`
	PermissionID string    `gorm:"not null;size:255;index" json:"permission_id"`
	CreatedAt    time.Time `json:"created_at"`
}
