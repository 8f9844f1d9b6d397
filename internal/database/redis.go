package database

import (
	"adminhub/pkg/config"
	"adminhub/pkg/revocation"
	"sync"
)

var (
	revocationInstance *revocation.Store
	revocationOnce     sync.Once
)

// GetRevocationStore 获取令牌吊销名单的单例实例
func GetRevocationStore() *revocation.Store {
	revocationOnce.Do(func() {
		cfg := config.GetConfig()
		revocationInstance = revocation.NewStore(&revocation.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
	})
	return revocationInstance
}

// CloseRevocationStore 关闭Redis连接
func CloseRevocationStore() error {
	if revocationInstance != nil {
		return revocationInstance.Close()
	}
	return nil
}
