package database

import (
	"adminhub/pkg/config"
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var (
	mongoClient *mongo.Client
	mongoDB     *mongo.Database
)

// 文档库集合名
const (
	CollSensorReadings = "sensor_readings"
	CollDevices        = "devices"
	CollAuditEvents    = "audit_events"
)

// InitializeMongo 初始化文档库连接
func InitializeMongo(cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return fmt.Errorf("连接文档库失败: %v", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("文档库不可达: %v", err)
	}

	mongoClient = client
	mongoDB = client.Database(cfg.Mongo.Database)
	return nil
}

// GetMongoDB 获取文档库实例
func GetMongoDB() *mongo.Database {
	return mongoDB
}

// CloseMongo 关闭文档库连接
func CloseMongo() error {
	if mongoClient == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return mongoClient.Disconnect(ctx)
}
