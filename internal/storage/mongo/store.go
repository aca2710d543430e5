package mongo

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"whisperwall/backend/internal/config"
	"whisperwall/backend/internal/domain"
	"whisperwall/backend/internal/storage"
)

const usersCollection = "users"

// Store MongoDB 存储实现
//
// 每个用户是一个文档，留言作为子文档数组内嵌其中，追加与删除
// 通过 $push / $pull 在单文档内原子完成。
type Store struct {
	client  *mongo.Client
	db      *mongo.Database
	timeout time.Duration
}

// userDoc 用户在 MongoDB 中的文档形态
type userDoc struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty"`
	Email                string             `bson:"email"`
	Username             string             `bson:"username"`
	UsernameLower        string             `bson:"usernameLower"`
	PasswordHash         string             `bson:"passwordHash"`
	IsVerified           bool               `bson:"isVerified"`
	VerifyCode           string             `bson:"verifyCode,omitempty"`
	VerifyCodeExpiry     time.Time          `bson:"verifyCodeExpiry,omitempty"`
	IsAcceptingMessages  bool               `bson:"isAcceptingMessages"`
	IsSendingAnonymously bool               `bson:"isSendingAnonymously"`
	Messages             []domain.Message   `bson:"messages"`
	CreatedAt            time.Time          `bson:"createdAt"`
	UpdatedAt            time.Time          `bson:"updatedAt"`
	LastLoginAt          *time.Time         `bson:"lastLoginAt,omitempty"`
}

// NewStore 创建 MongoDB 存储并建立连接
func NewStore(cfg config.MongoConfig) (*Store, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, err
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), timeout)
	defer pingCancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, err
	}

	s := &Store{
		client:  client,
		db:      client.Database(cfg.Database),
		timeout: timeout,
	}
	if err := s.ensureIndexes(); err != nil {
		return nil, err
	}
	return s, nil
}

// ensureIndexes 创建唯一索引
func (s *Store) ensureIndexes() error {
	ctx, cancel := s.opContext()
	defer cancel()

	unique := options.Index().SetUnique(true)
	_, err := s.users().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		{Keys: bson.D{{Key: "usernameLower", Value: 1}}, Options: unique},
	})
	return err
}

func (s *Store) users() *mongo.Collection {
	return s.db.Collection(usersCollection)
}

func (s *Store) opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

// CreateUser 创建用户
func (s *Store) CreateUser(user *domain.User) error {
	ctx, cancel := s.opContext()
	defer cancel()

	email := strings.ToLower(user.Email)
	usernameLower := strings.ToLower(user.Username)

	// 先做显式查重，保证返回的哨兵错误可区分冲突字段
	count, err := s.users().CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		return err
	}
	if count > 0 {
		return storage.ErrEmailExists
	}
	count, err = s.users().CountDocuments(ctx, bson.M{"usernameLower": usernameLower})
	if err != nil {
		return err
	}
	if count > 0 {
		return storage.ErrUsernameExists
	}

	now := time.Now()
	doc := userDoc{
		ID:                   primitive.NewObjectID(),
		Email:                email,
		Username:             user.Username,
		UsernameLower:        usernameLower,
		PasswordHash:         user.PasswordHash,
		IsVerified:           user.IsVerified,
		VerifyCode:           user.VerifyCode,
		VerifyCodeExpiry:     user.VerifyCodeExpiry,
		IsAcceptingMessages:  user.IsAcceptingMessages,
		IsSendingAnonymously: user.IsSendingAnonymously,
		Messages:             []domain.Message{},
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if _, err := s.users().InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return storage.ErrEmailExists
		}
		return err
	}

	user.ID = doc.ID.Hex()
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

// GetUserByID 根据 ID 获取用户
func (s *Store) GetUserByID(id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, storage.ErrInvalidID
	}

	ctx, cancel := s.opContext()
	defer cancel()
	return s.findOne(ctx, bson.M{"_id": oid})
}

// GetUserByEmail 根据邮箱获取用户
func (s *Store) GetUserByEmail(email string) (*domain.User, error) {
	ctx, cancel := s.opContext()
	defer cancel()
	return s.findOne(ctx, bson.M{"email": strings.ToLower(email)})
}

// GetUserByUsername 根据用户名获取用户
func (s *Store) GetUserByUsername(username string) (*domain.User, error) {
	ctx, cancel := s.opContext()
	defer cancel()
	return s.findOne(ctx, bson.M{"usernameLower": strings.ToLower(username)})
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var doc userDoc
	err := s.users().FindOne(ctx, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, storage.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}

// UpdateUser 更新用户（留言列表除外）
func (s *Store) UpdateUser(user *domain.User) error {
	oid, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		return storage.ErrInvalidID
	}

	ctx, cancel := s.opContext()
	defer cancel()

	update := bson.M{"$set": bson.M{
		"passwordHash":         user.PasswordHash,
		"isVerified":           user.IsVerified,
		"verifyCode":           user.VerifyCode,
		"verifyCodeExpiry":     user.VerifyCodeExpiry,
		"isAcceptingMessages":  user.IsAcceptingMessages,
		"isSendingAnonymously": user.IsSendingAnonymously,
		"updatedAt":            time.Now(),
	}}
	result, err := s.users().UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return storage.ErrUserNotFound
	}
	return nil
}

// UpdateLastLogin 更新最后登录时间
func (s *Store) UpdateLastLogin(userID string) error {
	return s.setFields(userID, bson.M{"lastLoginAt": time.Now()})
}

// SetAcceptingMessages 设置是否接收留言
func (s *Store) SetAcceptingMessages(userID string, accepting bool) error {
	return s.setFields(userID, bson.M{
		"isAcceptingMessages": accepting,
		"updatedAt":           time.Now(),
	})
}

// SetSendingAnonymously 设置是否匿名发送
func (s *Store) SetSendingAnonymously(userID string, anonymous bool) error {
	return s.setFields(userID, bson.M{
		"isSendingAnonymously": anonymous,
		"updatedAt":            time.Now(),
	})
}

func (s *Store) setFields(userID string, fields bson.M) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return storage.ErrInvalidID
	}

	ctx, cancel := s.opContext()
	defer cancel()

	result, err := s.users().UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return storage.ErrUserNotFound
	}
	return nil
}

// AppendMessage 为用户追加一条留言（$push 单文档原子操作）
func (s *Store) AppendMessage(ownerID string, message *domain.Message) error {
	oid, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return storage.ErrInvalidID
	}

	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}

	ctx, cancel := s.opContext()
	defer cancel()

	result, err := s.users().UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$push": bson.M{"messages": message}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return storage.ErrUserNotFound
	}
	return nil
}

// ListMessages 列出用户的全部留言（按插入顺序）
func (s *Store) ListMessages(ownerID string) ([]domain.Message, error) {
	oid, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return nil, storage.ErrInvalidID
	}

	ctx, cancel := s.opContext()
	defer cancel()

	var doc struct {
		Messages []domain.Message `bson:"messages"`
	}
	findErr := s.users().FindOne(ctx,
		bson.M{"_id": oid},
		options.FindOne().SetProjection(bson.M{"messages": 1}),
	).Decode(&doc)
	if findErr == mongo.ErrNoDocuments {
		return nil, storage.ErrUserNotFound
	}
	if findErr != nil {
		return nil, findErr
	}

	if doc.Messages == nil {
		return []domain.Message{}, nil
	}
	return doc.Messages, nil
}

// DeleteMessage 删除用户的一条留言（$pull 单文档原子操作）
//
// 匹配不到子文档时返回 ErrMessageNotFound，重复删除同一条留言是幂等的失败。
func (s *Store) DeleteMessage(ownerID, messageID string) error {
	oid, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return storage.ErrInvalidID
	}

	ctx, cancel := s.opContext()
	defer cancel()

	result, err := s.users().UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$pull": bson.M{"messages": bson.M{"_id": messageID}}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return storage.ErrUserNotFound
	}
	if result.ModifiedCount == 0 {
		return storage.ErrMessageNotFound
	}
	return nil
}

// Close 断开连接
func (s *Store) Close() error {
	ctx, cancel := s.opContext()
	defer cancel()
	return s.client.Disconnect(ctx)
}

// Health 健康检查
func (s *Store) Health() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return s.client.Ping(ctx, nil)
}

func (d *userDoc) toDomain() *domain.User {
	return &domain.User{
		ID:                   d.ID.Hex(),
		Email:                d.Email,
		Username:             d.Username,
		PasswordHash:         d.PasswordHash,
		IsVerified:           d.IsVerified,
		VerifyCode:           d.VerifyCode,
		VerifyCodeExpiry:     d.VerifyCodeExpiry,
		IsAcceptingMessages:  d.IsAcceptingMessages,
		IsSendingAnonymously: d.IsSendingAnonymously,
		Messages:             d.Messages,
		CreatedAt:            d.CreatedAt,
		UpdatedAt:            d.UpdatedAt,
		LastLoginAt:          d.LastLoginAt,
	}
}
