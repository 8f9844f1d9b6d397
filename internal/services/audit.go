package services

import (
	"adminhub/internal/database"
	"adminhub/internal/models"
	"adminhub/pkg/logger"
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AuditService 审计事件：写入文档库并广播给在线订阅者
type AuditService struct {
	coll *mongo.Collection

	// 进程内广播，websocket订阅者挂在这里
	subscribersLock sync.RWMutex
	subscribers     map[chan models.AuditEvent]struct{}
}

var (
	auditInstance *AuditService
	auditOnce     sync.Once
)

// GetAuditService 获取审计服务单例
func GetAuditService() *AuditService {
	auditOnce.Do(func() {
		auditInstance = &AuditService{
			subscribers: make(map[chan models.AuditEvent]struct{}),
		}
		if db := database.GetMongoDB(); db != nil {
			auditInstance.coll = db.Collection(database.CollAuditEvents)
		}
	})
	return auditInstance
}

// Record 记录一条审计事件，失败只记日志不阻断业务
func (s *AuditService) Record(eventType, userID, username, detail, clientIP string) {
	event := models.AuditEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		UserID:    userID,
		Username:  username,
		Detail:    detail,
		ClientIP:  clientIP,
		CreatedAt: time.Now(),
	}

	if s.coll != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := s.coll.InsertOne(ctx, event); err != nil {
			logger.GetLogger().Errorf("写入审计事件失败: %v", err)
		}
	}

	s.broadcast(event)
}

// List 分页查询审计事件
func (s *AuditService) List(ctx context.Context, userID, eventType string, page, pageSize int) ([]models.AuditEvent, int64, error) {
	if s.coll == nil {
		return []models.AuditEvent{}, 0, nil
	}

	filter := bson.M{}
	if userID != "" {
		filter["user_id"] = userID
	}
	if eventType != "" {
		filter["type"] = eventType
	}

	total, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	find := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize))

	cursor, err := s.coll.Find(ctx, filter, find)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	events := make([]models.AuditEvent, 0, pageSize)
	if err := cursor.All(ctx, &events); err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// Subscribe 订阅实时审计事件流
func (s *AuditService) Subscribe() chan models.AuditEvent {
	ch := make(chan models.AuditEvent, 64)
	s.subscribersLock.Lock()
	s.subscribers[ch] = struct{}{}
	s.subscribersLock.Unlock()
	return ch
}

// Unsubscribe 取消订阅
func (s *AuditService) Unsubscribe(ch chan models.AuditEvent) {
	s.subscribersLock.Lock()
	if _, ok := s.subscribers[ch]; ok {
		delete(s.subscribers, ch)
		close(ch)
	}
	s.subscribersLock.Unlock()
}

// broadcast 投递给所有订阅者，慢消费者直接丢弃避免阻塞请求
func (s *AuditService) broadcast(event models.AuditEvent) {
	s.subscribersLock.RLock()
	defer s.subscribersLock.RUnlock()
	for ch := range s.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}
