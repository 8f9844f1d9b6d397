package services

import (
	"testing"
	"time"

	"adminhub/internal/models"
)

func TestSweepDeactivatesExpiredWindows(t *testing.T) {
	db := setupTestDB(t)

	expired := &models.TimeWindow{
		Name:     "上学期",
		StartsAt: time.Now().Add(-48 * time.Hour),
		EndsAt:   time.Now().Add(-time.Hour),
	}
	if err := db.Create(expired).Error; err != nil {
		t.Fatalf("创建过期窗口失败: %v", err)
	}

	current := &models.TimeWindow{
		Name:     "本学期",
		StartsAt: time.Now().Add(-time.Hour),
		EndsAt:   time.Now().Add(48 * time.Hour),
	}
	if err := db.Create(current).Error; err != nil {
		t.Fatalf("创建有效窗口失败: %v", err)
	}

	expiredGroup := &models.Group{ID: "old", Name: "旧组", IsActive: true, TimeWindowID: &expired.ID}
	currentGroup := &models.Group{ID: "new", Name: "新组", IsActive: true, TimeWindowID: &current.ID}
	db.Create(expiredGroup)
	db.Create(currentGroup)

	seedAction(t, db, "READ", "查看")
	seedEntity(t, db, "Students", "学生")
	permission := &models.Permission{
		ID:           "READ_Students_",
		Code:         "READ.Students",
		ActionID:     "READ",
		EntityID:     "Students",
		IsActive:     true,
		TimeWindowID: &expired.ID,
	}
	db.Create(permission)

	sweeper := NewTimeWindowScheduler(db)
	sweeper.sweep()

	var g models.Group
	db.Where("id = ?", "old").First(&g)
	if g.IsActive {
		t.Error("有效期已过的用户组应被停用")
	}
	db.Where("id = ?", "new").First(&g)
	if !g.IsActive {
		t.Error("有效期内的用户组不应被停用")
	}

	var p models.Permission
	db.Where("id = ?", "READ_Students_").First(&p)
	if p.IsActive {
		t.Error("有效期已过的权限应被停用")
	}
}

func TestTimeWindowContains(t *testing.T) {
	window := models.TimeWindow{
		StartsAt: time.Now().Add(-time.Hour),
		EndsAt:   time.Now().Add(time.Hour),
	}
	if !window.Contains(time.Now()) {
		t.Error("当前时刻应在窗口内")
	}
	if window.Contains(time.Now().Add(2 * time.Hour)) {
		t.Error("窗口结束后不应包含")
	}
	if window.Expired(time.Now()) {
		t.Error("未过期的窗口不应判为过期")
	}
	if !window.Expired(time.Now().Add(2 * time.Hour)) {
		t.Error("结束后应判为过期")
	}
}
