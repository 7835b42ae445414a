package repository

import (
	"context"
	"errors"
	"fmt"

	"forward_bot/internal/telegram/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNoPicture 尚未设置欢迎图片
var ErrNoPicture = errors.New("no welcome picture stored")

// MongoPictureRepository 欢迎图片单槽存储（MongoDB 实现）
type MongoPictureRepository struct {
	collection *mongo.Collection
}

// NewPictureRepository 创建欢迎图片 Repository
func NewPictureRepository(db *mongo.Database) *MongoPictureRepository {
	return &MongoPictureRepository{
		collection: db.Collection("welcome_picture"),
	}
}

// Save 保存欢迎图片的 file id，替换之前的值
func (r *MongoPictureRepository) Save(ctx context.Context, fileID string) error {
	doc := models.WelcomePicture{
		ID:     models.WelcomePictureSlot,
		FileID: fileID,
	}

	opts := options.Replace().SetUpsert(true)
	filter := bson.M{"_id": models.WelcomePictureSlot}
	if _, err := r.collection.ReplaceOne(ctx, filter, doc, opts); err != nil {
		return fmt.Errorf("failed to save welcome picture: %w", err)
	}

	return nil
}

// Load 读取欢迎图片的 file id
func (r *MongoPictureRepository) Load(ctx context.Context) (string, error) {
	filter := bson.M{"_id": models.WelcomePictureSlot}

	var pic models.WelcomePicture
	err := r.collection.FindOne(ctx, filter).Decode(&pic)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", ErrNoPicture
	}
	if err != nil {
		return "", fmt.Errorf("failed to load welcome picture: %w", err)
	}

	return pic.FileID, nil
}
