package models

import "time"

// TimeWindow 有效期窗口，用户组和权限可引用
type TimeWindow struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	Name     string    `gorm:"size:100" json:"name"`
	StartsAt time.Time `gorm:"not null" json:"starts_at"`
	EndsAt   time.Time `gorm:"not null" json:"ends_at"`
	BaseModel
}

// Contains 判断时间点是否落在窗口内
func (w *TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.StartsAt) && t.Before(w.EndsAt)
}

// Expired 判断窗口是否已结束
func (w *TimeWindow) Expired(now time.Time) bool {
	return !now.Before(w.EndsAt)
}
