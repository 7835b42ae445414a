package service

import (
	"context"
	"fmt"
	"strings"

	tgmodels "github.com/go-telegram/bot/models"

	"forward_bot/internal/birthday"
	"forward_bot/internal/telegram/repository"
)

const (
	calendarHeader      = "<b>Birthday calendar</b>\n"
	calendarPlaceholder = "Nothing to show yet!"
)

// BirthdayService 生日日历业务层
// 读写都走 UserRepository，本身不持有状态，可并发调用。
type BirthdayService struct {
	users repository.UserRepository
}

// NewBirthdayService 创建生日业务实例
func NewBirthdayService(users repository.UserRepository) *BirthdayService {
	return &BirthdayService{users: users}
}

// AddBirthday 解析生日字符串并写入用户记录（重复提交时覆盖）
// 格式错误原样返回 birthday.ErrInvalidFormat，由提交入口恢复。
func (s *BirthdayService) AddBirthday(ctx context.Context, from *tgmodels.User, chatID int64, raw string) error {
	date, err := birthday.Parse(raw)
	if err != nil {
		return err
	}

	updates := repository.UserUpdates{Birthday: &date}
	if err := s.users.Upsert(ctx, chatID, from, updates); err != nil {
		return fmt.Errorf("failed to store birthday: %w", err)
	}

	return nil
}

// CalendarText 渲染某个群的生日日历
// 用户按归一化日期升序排列；没有任何登记时渲染固定占位符。
func (s *BirthdayService) CalendarText(ctx context.Context, chatID int64) (string, error) {
	users, err := s.users.ListWithBirthdays(ctx, chatID)
	if err != nil {
		return "", err
	}

	if len(users) == 0 {
		return calendarHeader + calendarPlaceholder, nil
	}

	lines := make([]string, 0, len(users))
	for _, user := range users {
		lines = append(lines, fmt.Sprintf("•%s %s: %s",
			user.FirstName, user.Username, birthday.Format(*user.Birthday)))
	}

	return calendarHeader + strings.Join(lines, "\n"), nil
}

// TodayBirthdayPeople 今天过生日的 (chat, user) 列表，按 chat_id 排序
func (s *BirthdayService) TodayBirthdayPeople(ctx context.Context) ([]repository.BirthdayPerson, error) {
	return s.users.ListTodayBirthdays(ctx)
}
