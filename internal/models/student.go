package models

// Student 学生模型
type Student struct {
	ID           string  `gorm:"primaryKey;size:36" json:"id"`
	Code         string  `gorm:"uniqueIndex;size:50;not null" json:"code"` // 学号
	FullName     string  `gorm:"size:100;not null" json:"full_name"`
	Email        *string `gorm:"size:100" json:"email"`
	DepartmentID *uint   `gorm:"index" json:"department_id"`
	ManagedByID  *string `gorm:"size:36;index" json:"managed_by_id"` // 负责该学生的用户
	Status       string  `gorm:"default:'active';size:20" json:"status"`
	BaseModel

	// 关联关系
	Department *Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
	ManagedBy  *User       `gorm:"foreignKey:ManagedByID" json:"managed_by,omitempty"`
}

// 学生状态常量
const (
	StudentStatusActive    = "active"
	StudentStatusSuspended = "suspended"
	StudentStatusGraduated = "graduated"
)
