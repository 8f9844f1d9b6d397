package models

import "time"

// 文档库（Mongo）中的读多写少集合

// SensorReading 传感器读数
type SensorReading struct {
	ID         string    `bson:"_id,omitempty" json:"id"`
	DeviceID   string    `bson:"device_id" json:"device_id"`
	Metric     string    `bson:"metric" json:"metric"`
	Value      float64   `bson:"value" json:"value"`
	Unit       string    `bson:"unit,omitempty" json:"unit,omitempty"`
	RecordedAt time.Time `bson:"recorded_at" json:"recorded_at"`
}

// Device 设备登记表条目
type Device struct {
	ID           string                 `bson:"_id" json:"id"`
	Name         string                 `bson:"name" json:"name"`
	Kind         string                 `bson:"kind" json:"kind"`
	Location     string                 `bson:"location,omitempty" json:"location,omitempty"`
	Attributes   map[string]interface{} `bson:"attributes,omitempty" json:"attributes,omitempty"`
	LastSeenAt   *time.Time             `bson:"last_seen_at,omitempty" json:"last_seen_at,omitempty"`
	RegisteredAt time.Time              `bson:"registered_at" json:"registered_at"`
}

// AuditEvent 审计事件（登录历史、鉴权拒绝等）
type AuditEvent struct {
	ID        string    `bson:"_id" json:"id"`
	Type      string    `bson:"type" json:"type"`
	UserID    string    `bson:"user_id,omitempty" json:"user_id,omitempty"`
	Username  string    `bson:"username,omitempty" json:"username,omitempty"`
	Detail    string    `bson:"detail,omitempty" json:"detail,omitempty"`
	ClientIP  string    `bson:"client_ip,omitempty" json:"client_ip,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// 审计事件类型常量
const (
	AuditLoginSuccess = "login_success"
	AuditLoginFailed  = "login_failed"
	AuditLogout       = "logout"
	AuditAccessDenied = "access_denied"
)
