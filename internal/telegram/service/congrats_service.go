package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"

	"forward_bot/internal/logger"
	"forward_bot/internal/telegram/markup"
	"forward_bot/internal/telegram/repository"
)

const congratsTemplate = "Happy birthday %s!"

// MemberClient 祝贺调度器需要的 Telegram API 子集
type MemberClient interface {
	GetChatMember(ctx context.Context, params *bot.GetChatMemberParams) (*tgmodels.ChatMember, error)
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*tgmodels.Message, error)
}

// CongratsService 当日生日祝贺调度器
// 每次调用发送当天的所有祝贺；不做跨调用去重，重复调用会重复发送，
// 由外部的日程（进程启动 + cron）保证每天只跑一次。
type CongratsService struct {
	birthdays *BirthdayService
	client    MemberClient
}

// NewCongratsService 创建祝贺调度器
func NewCongratsService(birthdays *BirthdayService, client MemberClient) *CongratsService {
	return &CongratsService{
		birthdays: birthdays,
		client:    client,
	}
}

// DispatchTodaysCongratulations 给每个有当日寿星的群发一条聚合祝贺
// 依赖查询结果按 chat_id 排序：只合并相邻的相同 chat_id，不做全量分组。
// 已退群的成员静默跳过；过滤后为空的群不发消息。
func (s *CongratsService) DispatchTodaysCongratulations(ctx context.Context) error {
	people, err := s.birthdays.TodayBirthdayPeople(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch today birthdays: %w", err)
	}

	for start := 0; start < len(people); {
		end := start
		for end < len(people) && people[end].ChatID == people[start].ChatID {
			end++
		}

		if err := s.congratulateChat(ctx, people[start].ChatID, people[start:end]); err != nil {
			return err
		}
		start = end
	}

	return nil
}

func (s *CongratsService) congratulateChat(ctx context.Context, chatID int64, people []repository.BirthdayPerson) error {
	mentions := make([]string, 0, len(people))
	for _, person := range people {
		member, err := s.client.GetChatMember(ctx, &bot.GetChatMemberParams{
			ChatID: chatID,
			UserID: person.UserID,
		})
		if err != nil {
			return fmt.Errorf("failed to resolve member %d in chat %d: %w", person.UserID, chatID, err)
		}

		if member.Type == tgmodels.ChatMemberTypeLeft {
			logger.L().Debugf("Skipping departed birthday member: chat_id=%d user_id=%d", chatID, person.UserID)
			continue
		}

		user := memberUser(member)
		if user == nil {
			continue
		}
		mentions = append(mentions, markup.UserLink(user))
	}

	if len(mentions) == 0 {
		return nil
	}

	_, err := s.client.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      fmt.Sprintf(congratsTemplate, strings.Join(mentions, ", ")),
		ParseMode: tgmodels.ParseModeHTML,
	})
	if err != nil {
		return fmt.Errorf("failed to send congratulation to chat %d: %w", chatID, err)
	}

	logger.L().Infof("Sent birthday congratulation: chat_id=%d members=%d", chatID, len(mentions))
	return nil
}

// memberUser 从 ChatMember 联合类型中取出用户
func memberUser(member *tgmodels.ChatMember) *tgmodels.User {
	switch member.Type {
	case tgmodels.ChatMemberTypeOwner:
		return member.Owner.User
	case tgmodels.ChatMemberTypeAdministrator:
		return &member.Administrator.User
	case tgmodels.ChatMemberTypeMember:
		return member.Member.User
	case tgmodels.ChatMemberTypeRestricted:
		return member.Restricted.User
	case tgmodels.ChatMemberTypeBanned:
		return member.Banned.User
	default:
		return nil
	}
}
