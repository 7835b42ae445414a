package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	tgmodels "github.com/go-telegram/bot/models"

	"forward_bot/internal/birthday"
	"forward_bot/internal/telegram/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrUserNotFound 用户不存在
var ErrUserNotFound = errors.New("user not found")

// MongoUserRepository 用户数据访问层（MongoDB 实现）
type MongoUserRepository struct {
	collection *mongo.Collection
}

// NewUserRepository 创建用户 Repository
func NewUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{
		collection: db.Collection("users"),
	}
}

// Upsert 创建或更新用户
// 身份字段（姓名、用户名）总是用 Telegram 当前值覆盖；updates 中的
// 可选字段按 last-write-wins 覆盖，不保留历史。
func (r *MongoUserRepository) Upsert(ctx context.Context, chatID int64, from *tgmodels.User, updates UserUpdates) error {
	if from == nil {
		return fmt.Errorf("telegram user is nil")
	}

	now := time.Now()
	filter := bson.M{
		"telegram_id": from.ID,
		"chat_id":     chatID,
	}

	setFields := bson.M{
		"first_name": from.FirstName,
		"last_name":  from.LastName,
		"username":   from.Username,
		"updated_at": now,
	}
	if updates.Birthday != nil {
		setFields["birthday"] = *updates.Birthday
	}

	update := bson.M{
		"$set": setFields,
		"$setOnInsert": bson.M{
			"created_at": now,
		},
	}

	opts := options.Update().SetUpsert(true)
	if _, err := r.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to upsert user %d in chat %d: %w", from.ID, chatID, err)
	}

	return nil
}

// GetByID 根据 (telegram_id, chat_id) 组合键获取用户
func (r *MongoUserRepository) GetByID(ctx context.Context, userID, chatID int64) (*models.User, error) {
	filter := bson.M{
		"telegram_id": userID,
		"chat_id":     chatID,
	}

	var user models.User
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d in chat %d: %w", userID, chatID, err)
	}

	return &user, nil
}

// ListWithBirthdays 列出某个群里已登记生日的用户
// 按归一化生日升序排序（参考年下的日序），与登记顺序无关。
func (r *MongoUserRepository) ListWithBirthdays(ctx context.Context, chatID int64) ([]*models.User, error) {
	filter := bson.M{
		"chat_id":  chatID,
		"birthday": bson.M{"$ne": nil},
	}
	opts := options.Find().SetSort(bson.D{{Key: "birthday", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list birthdays for chat %d: %w", chatID, err)
	}
	defer cursor.Close(ctx)

	var users []*models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode birthday users: %w", err)
	}

	return users, nil
}

// ListTodayBirthdays 列出今天过生日的 (chat, user)
// 按 chat_id 排序，调度器依赖这个顺序做相邻分组。
func (r *MongoUserRepository) ListTodayBirthdays(ctx context.Context) ([]BirthdayPerson, error) {
	filter := bson.M{"birthday": birthday.Today()}
	opts := options.Find().
		SetSort(bson.D{{Key: "chat_id", Value: 1}}).
		SetProjection(bson.D{{Key: "chat_id", Value: 1}, {Key: "telegram_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list today birthdays: %w", err)
	}
	defer cursor.Close(ctx)

	var people []BirthdayPerson
	if err := cursor.All(ctx, &people); err != nil {
		return nil, fmt.Errorf("failed to decode today birthdays: %w", err)
	}

	return people, nil
}

// EnsureIndexes 确保索引存在
func (r *MongoUserRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "telegram_id", Value: 1},
				{Key: "chat_id", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "birthday", Value: 1}},
		},
	}

	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}

	return nil
}
