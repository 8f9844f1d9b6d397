package services

import (
	"adminhub/internal/models"
	"adminhub/pkg/logger"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// TimeWindowScheduler 有效期窗口清扫器
// 周期性停用有效期已过的用户组和权限，让解析器的启用过滤与墙钟一致
type TimeWindowScheduler struct {
	db      *gorm.DB
	cron    *cron.Cron
	running bool
}

// NewTimeWindowScheduler 创建清扫器
func NewTimeWindowScheduler(db *gorm.DB) *TimeWindowScheduler {
	return &TimeWindowScheduler{
		db:   db,
		cron: cron.New(),
	}
}

// Start 启动清扫器，每分钟扫一次
func (s *TimeWindowScheduler) Start() error {
	if s.running {
		return fmt.Errorf("清扫器已经在运行")
	}

	logger.GetLogger().Info("启动有效期窗口清扫器")

	if _, err := s.cron.AddFunc("* * * * *", s.sweep); err != nil {
		return fmt.Errorf("添加清扫任务失败: %v", err)
	}

	// 启动时先清扫一轮，避免重启期间漏掉的过期窗口
	s.sweep()

	s.cron.Start()
	s.running = true
	return nil
}

// Stop 停止清扫器
func (s *TimeWindowScheduler) Stop() {
	if !s.running {
		return
	}
	logger.GetLogger().Info("停止有效期窗口清扫器")
	s.cron.Stop()
	s.running = false
}

// sweep 停用窗口已结束的用户组和权限
func (s *TimeWindowScheduler) sweep() {
	now := time.Now()

	var expiredIDs []uint
	if err := s.db.Model(&models.TimeWindow{}).
		Where("ends_at <= ?", now).
		Pluck("id", &expiredIDs).Error; err != nil {
		logger.GetLogger().Errorf("查询过期窗口失败: %v", err)
		return
	}
	if len(expiredIDs) == 0 {
		return
	}

	result := s.db.Model(&models.Group{}).
		Where("time_window_id IN ? AND is_active = ?", expiredIDs, true).
		Update("is_active", false)
	if result.Error != nil {
		logger.GetLogger().Errorf("停用过期用户组失败: %v", result.Error)
	} else if result.RowsAffected > 0 {
		logger.GetLogger().Infof("有效期已过，停用 %d 个用户组", result.RowsAffected)
	}

	result = s.db.Model(&models.Permission{}).
		Where("time_window_id IN ? AND is_active = ?", expiredIDs, true).
		Update("is_active", false)
	if result.Error != nil {
		logger.GetLogger().Errorf("停用过期权限失败: %v", result.Error)
	} else if result.RowsAffected > 0 {
		logger.GetLogger().Infof("有效期已过，停用 %d 条权限", result.RowsAffected)
	}
}
