package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User 用户模型
type User struct {
	ID            string     `json:"id" gorm:"primaryKey;size:36"`
	Username      string     `json:"username" gorm:"unique;not null;size:50;index"`
	PasswordHash  string     `json:"-" gorm:"not null;size:255"`
	FullName      string     `json:"full_name" gorm:"not null;size:100"`
	Email         *string    `json:"email" gorm:"size:100"`
	SecurityLevel int        `json:"security_level" gorm:"not null;default:5"` // 1-5，越小权限越高
	Status        string     `json:"status" gorm:"default:'active';size:20"`
	GroupID       *string    `json:"group_id" gorm:"size:100;index"` // 至多属于一个用户组
	ManagerID     *string    `json:"manager_id" gorm:"size:36;index"` // 自引用的管理者链
	LastLoginAt   *time.Time `json:"last_login_at"`
	BaseModel

	// 关联关系
	Group   *Group `gorm:"foreignKey:GroupID" json:"group,omitempty"`
	Manager *User  `gorm:"foreignKey:ManagerID" json:"manager,omitempty"`
	Roles   []Role `gorm:"many2many:user_roles;" json:"roles,omitempty"`
}

// UserRole 用户角色关联表
type UserRole struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"not null;size:36;index" json:"user_id"`
	RoleID    string    `gorm:"not null;size:100;index" json:"role_id"`
	CreatedAt time.Time `json:"created_at"`
	CreatedBy string    `gorm:"size:36" json:"created_by"` // 谁分配的角色
}

// TableName 表名
func (u *User) TableName() string {
	return "users"
}

// 用户状态常量
const (
	UserStatusActive    = "active"
	UserStatusPending   = "pending"   // 等待首次登录
	UserStatusSuspended = "suspended" // 停用
	UserStatusDeleted   = "deleted"   // 软删除，行保留
)

// 安全等级边界
const (
	SecurityLevelAdmin = 1 // 最高权限
	SecurityLevelMin   = 5
)

// SetPassword 设置密码 - 数据操作方法
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

// CheckPassword 验证密码 - 数据操作方法
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}
