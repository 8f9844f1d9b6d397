package models

import "time"

// Group 用户组模型，主键由名称派生（去变音符、去空格）
type Group struct {
	ID           string `gorm:"primaryKey;size:100" json:"id"`
	Name         string `gorm:"size:100;not null" json:"name"`
	Description  string `gorm:"size:255" json:"description"`
	IsActive     bool   `gorm:"default:true" json:"is_active"`
	TimeWindowID *uint  `json:"time_window_id"` // 可选的有效期窗口
	BaseModel

	// 关联关系
	TimeWindow *TimeWindow `gorm:"foreignKey:TimeWindowID" json:"time_window,omitempty"`
	Users      []User      `gorm:"foreignKey:GroupID" json:"users,omitempty"`
	Roles      []Role      `gorm:"many2many:group_roles;" json:"roles,omitempty"`
}

// GroupRole 用户组角色关联表（带备注）
type GroupRole struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	GroupID   string    `gorm:"not null;size:100;index" json:"group_id"`
	RoleID    string    `gorm:"not null;size:100;index" json:"role_id"`
	Note      string    `gorm:"size:255" json:"note"` // 分配备注
	CreatedAt time.Time `json:"created_at"`
}
