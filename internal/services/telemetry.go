package services

import (
	"adminhub/internal/database"
	"adminhub/internal/models"
	apperrors "adminhub/pkg/errors"
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TelemetryService 文档库中的传感器读数与设备登记表，读多写少
type TelemetryService struct {
	db *mongo.Database
}

func NewTelemetryService() *TelemetryService {
	return &TelemetryService{
		db: database.GetMongoDB(),
	}
}

// ========== 传感器读数 ==========

// ReadingFilter 读数查询条件
type ReadingFilter struct {
	DeviceID string
	Metric   string
	From     *time.Time
	To       *time.Time
}

// ListReadings 分页查询传感器读数
func (s *TelemetryService) ListReadings(ctx context.Context, filter ReadingFilter, page, pageSize int) ([]models.SensorReading, int64, error) {
	coll := s.db.Collection(database.CollSensorReadings)

	query := bson.M{}
	if filter.DeviceID != "" {
		query["device_id"] = filter.DeviceID
	}
	if filter.Metric != "" {
		query["metric"] = filter.Metric
	}
	if filter.From != nil || filter.To != nil {
		timeRange := bson.M{}
		if filter.From != nil {
			timeRange["$gte"] = *filter.From
		}
		if filter.To != nil {
			timeRange["$lt"] = *filter.To
		}
		query["recorded_at"] = timeRange
	}

	total, err := coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	find := options.Find().
		SetSort(bson.M{"recorded_at": -1}).
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize))

	cursor, err := coll.Find(ctx, query, find)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	readings := make([]models.SensorReading, 0, pageSize)
	if err := cursor.All(ctx, &readings); err != nil {
		return nil, 0, err
	}
	return readings, total, nil
}

// ========== 设备登记表 ==========

// ListDevices 分页查询设备
func (s *TelemetryService) ListDevices(ctx context.Context, kind string, page, pageSize int) ([]models.Device, int64, error) {
	coll := s.db.Collection(database.CollDevices)

	query := bson.M{}
	if kind != "" {
		query["kind"] = kind
	}

	total, err := coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	find := options.Find().
		SetSort(bson.M{"_id": 1}).
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize))

	cursor, err := coll.Find(ctx, query, find)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	devices := make([]models.Device, 0, pageSize)
	if err := cursor.All(ctx, &devices); err != nil {
		return nil, 0, err
	}
	return devices, total, nil
}

// GetDevice 根据ID获取设备
func (s *TelemetryService) GetDevice(ctx context.Context, id string) (*models.Device, error) {
	coll := s.db.Collection(database.CollDevices)

	var device models.Device
	err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(&device)
	if err == mongo.ErrNoDocuments {
		return nil, fmt.Errorf("设备不存在: %w", apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &device, nil
}

// UpsertDevice 登记或更新设备
func (s *TelemetryService) UpsertDevice(ctx context.Context, device *models.Device) error {
	coll := s.db.Collection(database.CollDevices)

	if device.RegisteredAt.IsZero() {
		device.RegisteredAt = time.Now()
	}

	opts := options.Replace().SetUpsert(true)
	_, err := coll.ReplaceOne(ctx, bson.M{"_id": device.ID}, device, opts)
	return err
}
