package models

// Permission 权限模型
// 主键按 {动作ID}_{实体ID}_{角色ID} 拼接，三元组唯一
type Permission struct {
	ID           string  `gorm:"primaryKey;size:255" json:"id"`
	Code         string  `gorm:"size:150;not null;index" json:"code"` // 权限串，如 "READ.Students"
	Name         string  `gorm:"size:255" json:"name"`                // 由动作名+实体名合成
	ActionID     string  `gorm:"size:50;not null;index" json:"action_id"`
	EntityID     string  `gorm:"size:100;not null;index" json:"entity_id"`
	RoleID       *string `gorm:"size:100;index" json:"role_id"` // 可选：限定到某个角色
	IsActive     bool    `gorm:"default:true" json:"is_active"`
	TimeWindowID *uint   `json:"time_window_id"` // 可选的有效期窗口
	BaseModel

	// 关联关系
	Action     *Action     `gorm:"foreignKey:ActionID" json:"action,omitempty"`
	Entity     *Entity     `gorm:"foreignKey:EntityID" json:"entity,omitempty"`
	TimeWindow *TimeWindow `gorm:"foreignKey:TimeWindowID" json:"time_window,omitempty"`
}

// Action 动作模型，权限的动词部分
type Action struct {
	ID       string `gorm:"primaryKey;size:50" json:"id"` // 如 "READ"、"READ_SELF_MANAGED"
	Name     string `gorm:"size:100;not null" json:"name"`
	Code     string `gorm:"size:50" json:"code"`
	IsActive bool   `gorm:"default:true" json:"is_active"`
	BaseModel
}

// Entity 受保护的资源类别
type Entity struct {
	ID            string `gorm:"primaryKey;size:100" json:"id"` // 如 "Students"
	Name          string `gorm:"size:100;not null" json:"name"`
	SecurityLevel int    `gorm:"not null;default:5" json:"security_level"` // 访问该实体的等级门槛
	Type          string `gorm:"size:50" json:"type"`
	IsActive      bool   `gorm:"default:true" json:"is_active"`
	BaseModel
}

// 预定义动作常量
const (
	ActionRead            = "READ"
	ActionCreate          = "CREATE"
	ActionUpdate          = "UPDATE"
	ActionDelete          = "DELETE"
	ActionReadSelfManaged = "READ_SELF_MANAGED" // 只读管理子树内负责的对象
)
