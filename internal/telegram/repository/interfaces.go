package repository

import (
	"context"
	"time"

	tgmodels "github.com/go-telegram/bot/models"

	"forward_bot/internal/telegram/models"
)

// UserUpdates carries the optional fields Upsert writes on top of the
// identity fields taken from the Telegram user. Nil fields are left
// untouched; set fields are last-write-wins.
type UserUpdates struct {
	Birthday *time.Time
}

// BirthdayPerson identifies one member whose birthday is today.
type BirthdayPerson struct {
	ChatID int64 `bson:"chat_id"`
	UserID int64 `bson:"telegram_id"`
}

// UserRepository 用户数据访问接口
type UserRepository interface {
	// Upsert 创建或更新用户（按 telegram_id + chat_id 组合键）
	Upsert(ctx context.Context, chatID int64, from *tgmodels.User, updates UserUpdates) error

	// GetByID 根据组合键获取用户
	GetByID(ctx context.Context, userID, chatID int64) (*models.User, error)

	// ListWithBirthdays 列出某个群里已登记生日的用户，按生日排序
	ListWithBirthdays(ctx context.Context, chatID int64) ([]*models.User, error)

	// ListTodayBirthdays 列出今天过生日的 (chat, user)，按 chat_id 排序
	ListTodayBirthdays(ctx context.Context) ([]BirthdayPerson, error)

	// EnsureIndexes 确保索引存在
	EnsureIndexes(ctx context.Context) error
}

// PictureRepository 欢迎图片单槽存储接口
type PictureRepository interface {
	// Save 保存（替换）欢迎图片的 file id
	Save(ctx context.Context, fileID string) error

	// Load 读取欢迎图片的 file id；不存在时返回 ErrNoPicture
	Load(ctx context.Context) (string, error)
}
